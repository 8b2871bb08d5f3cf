// Package accounts maintains account balances and other account information
// as a snapshot that can be hashed into a state root.
package accounts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ardanlabs/forkchain/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/rlp"
)

// Accounts manages a snapshot of the accounts who have transacted on
// the blockchain.
type Accounts struct {
	mu   sync.RWMutex
	info map[database.AccountID]database.Account
}

// New constructs an accounts snapshot from a set of starting balances.
func New(balances map[database.AccountID]uint64) *Accounts {
	act := Accounts{
		info: make(map[database.AccountID]database.Account, len(balances)),
	}

	for accountID, balance := range balances {
		act.info[accountID] = database.NewAccount(accountID, balance)
	}

	return &act
}

// FromList constructs an accounts snapshot from a list of accounts.
func FromList(list []database.Account) *Accounts {
	act := Accounts{
		info: make(map[database.AccountID]database.Account, len(list)),
	}

	for _, account := range list {
		act.info[account.AccountID] = account
	}

	return &act
}

// Clone makes a deep copy of the snapshot so it can be changed without
// affecting the original.
func (act *Accounts) Clone() *Accounts {
	return FromList(act.List())
}

// Get returns the account for the specified id.
func (act *Accounts) Get(accountID database.AccountID) (database.Account, bool) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	account, exists := act.info[accountID]
	return account, exists
}

// Copy makes a copy of the current information for all accounts.
func (act *Accounts) Copy() map[database.AccountID]database.Account {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[database.AccountID]database.Account, len(act.info))
	for accountID, account := range act.info {
		accounts[accountID] = account
	}
	return accounts
}

// List returns the accounts sorted by account id.
func (act *Accounts) List() []database.Account {
	act.mu.RLock()
	defer act.mu.RUnlock()

	list := make([]database.Account, 0, len(act.info))
	for _, account := range act.info {
		list = append(list, account)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].AccountID < list[j].AccountID
	})

	return list
}

// Root returns the state root for this snapshot. It's the merkle root of
// the accounts sorted by account id. An empty snapshot has the ZeroHash.
func (act *Accounts) Root() string {
	list := act.List()
	if len(list) == 0 {
		return signature.ZeroHash
	}

	leafs := make([]leaf, len(list))
	for i, account := range list {
		leafs[i] = leaf(account)
	}

	root, err := merkle.RootHex(leafs)
	if err != nil {
		return signature.ZeroHash
	}

	return root
}

// ApplyMiningReward gives the specified account the mining reward.
func (act *Accounts) ApplyMiningReward(beneficiaryID database.AccountID, reward uint64) {
	act.mu.Lock()
	defer act.mu.Unlock()

	account := act.info[beneficiaryID]
	account.AccountID = beneficiaryID
	account.Balance += reward

	act.info[beneficiaryID] = account
}

// ApplyTransaction performs the business logic for applying a transaction
// to the snapshot. The gas fee is always charged, even when the transaction
// fails the accounting checks, so the fee taken is returned in every case.
func (act *Accounts) ApplyTransaction(beneficiaryID database.AccountID, tx database.BlockTx) (uint64, error) {
	fromID, err := tx.FromAccount()
	if err != nil {
		return 0, fmt.Errorf("invalid signature, %s", err)
	}

	act.mu.Lock()
	defer act.mu.Unlock()

	from := act.info[fromID]
	from.AccountID = fromID

	bnfc := act.info[beneficiaryID]
	bnfc.AccountID = beneficiaryID

	// The account pays the gas fee regardless. Take the remaining balance
	// if the account doesn't hold enough for the full amount of gas.
	gasFee := tx.GasFee()
	if gasFee > from.Balance {
		gasFee = from.Balance
	}
	from.Balance -= gasFee
	bnfc.Balance += gasFee

	act.info[fromID] = from
	act.info[beneficiaryID] = bnfc

	if fromID == tx.ToID {
		return gasFee, fmt.Errorf("transaction invalid, sending money to yourself, from %s, to %s", fromID, tx.ToID)
	}

	if tx.Nonce <= from.Nonce {
		return gasFee, fmt.Errorf("transaction invalid, nonce too small, current %d, provided %d", from.Nonce, tx.Nonce)
	}

	if from.Balance == 0 || from.Balance < (tx.Value+tx.Tip) {
		return gasFee, fmt.Errorf("transaction invalid, insufficient funds, bal %d, needed %d", from.Balance, tx.Value+tx.Tip)
	}

	// The beneficiary could be the receiver so read it after the fee update.
	to := act.info[tx.ToID]
	to.AccountID = tx.ToID

	from.Balance -= tx.Value
	to.Balance += tx.Value
	from.Nonce = tx.Nonce
	act.info[fromID] = from
	act.info[tx.ToID] = to

	bnfc = act.info[beneficiaryID]
	from = act.info[fromID]
	from.Balance -= tx.Tip
	bnfc.Balance += tx.Tip
	act.info[fromID] = from
	act.info[beneficiaryID] = bnfc

	return gasFee, nil
}

// ValidateNonce checks the nonce of the transaction is larger than the last
// nonce used by the account who signed it.
func (act *Accounts) ValidateNonce(tx database.SignedTx) error {
	fromID, err := tx.FromAccount()
	if err != nil {
		return err
	}

	act.mu.RLock()
	account := act.info[fromID]
	act.mu.RUnlock()

	if tx.Nonce <= account.Nonce {
		return fmt.Errorf("invalid nonce, got %d, exp > %d", tx.Nonce, account.Nonce)
	}

	return nil
}

// =============================================================================

// Encode produces the binary form of the snapshot used by storage.
func Encode(act *Accounts) ([]byte, error) {
	return rlp.EncodeToBytes(act.List())
}

// Decode converts the binary form back into a snapshot.
func Decode(data []byte) (*Accounts, error) {
	var list []database.Account
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	return FromList(list), nil
}

// =============================================================================

// leaf makes an account usable as a merkle tree value.
type leaf database.Account

// Hash implements the merkle Hashable interface.
func (l leaf) Hash() ([]byte, error) {
	return signature.HashBytes(signature.Hash(database.Account(l)))
}
