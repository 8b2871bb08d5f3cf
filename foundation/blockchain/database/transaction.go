package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

// Tx is the transactional information between two parties.
type Tx struct {
	ChainID uint16    `json:"chain_id"`       // Ethereum: The chain id that is listed in the genesis file.
	Nonce   uint64    `json:"nonce"`          // Ethereum: Unique id for the transaction supplied by the user.
	ToID    AccountID `json:"to"`             // Ethereum: Account receiving the benefit of the transaction.
	Value   uint64    `json:"value"`          // Ethereum: Monetary value received from this transaction.
	Tip     uint64    `json:"tip"`            // Ethereum: Tip offered by the sender as an incentive to mine this transaction.
	Data    []byte    `json:"data,omitempty"` // Ethereum: Extra data related to the transaction.
}

// NewTx constructs a new transaction.
func NewTx(chainID uint16, nonce uint64, toID AccountID, value uint64, tip uint64, data []byte) (Tx, error) {
	if !toID.IsAccountID() {
		return Tx{}, errors.New("to account is not properly formatted")
	}

	tx := Tx{
		ChainID: chainID,
		Nonce:   nonce,
		ToID:    toID,
		Value:   value,
		Tip:     tip,
		Data:    data,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	if !tx.ToID.IsAccountID() {
		return SignedTx{}, errors.New("to account is not properly formatted")
	}

	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	signedTx := SignedTx{
		Tx: tx,
		V:  v,
		R:  r,
		S:  s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction. This is how clients like
// a wallet provide transactions for inclusion into the blockchain.
type SignedTx struct {
	Tx
	V *big.Int `json:"v"` // Ethereum: Recovery identifier, either 29 or 30.
	R *big.Int `json:"r"` // Ethereum: First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Ethereum: Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction has a proper signature that conforms to
// our standards and checks the format of the to account.
func (tx SignedTx) Validate(chainID uint16) error {
	if tx.ChainID != chainID {
		return fmt.Errorf("invalid chain id, got[%d] exp[%d]", tx.ChainID, chainID)
	}

	if !tx.ToID.IsAccountID() {
		return errors.New("invalid account for to account")
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return err
	}

	from, err := tx.FromAccount()
	if err != nil {
		return err
	}

	if from == tx.ToID {
		return fmt.Errorf("transaction invalid, sending money to yourself, from %s, to %s", from, tx.ToID)
	}

	return nil
}

// FromAccount extracts the account id that signed the transaction.
func (tx SignedTx) FromAccount() (AccountID, error) {
	address, err := signature.FromAddress(tx.Tx, tx.V, tx.R, tx.S)
	return AccountID(address), err
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	from, err := tx.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, tx.Nonce)
}

// =============================================================================

// BlockTx represents the transaction as it's recorded inside a block. This
// includes a timestamp and gas fees.
type BlockTx struct {
	SignedTx
	TimeStamp uint64 `json:"timestamp"` // Ethereum: The time the transaction was received.
	GasPrice  uint64 `json:"gas_price"` // Ethereum: The price of one unit of gas to be paid for fees.
	GasUnits  uint64 `json:"gas_units"` // Ethereum: The number of units of gas used for this transaction.
}

// NewBlockTx constructs a new block transaction.
func NewBlockTx(signedTx SignedTx, gasPrice uint64, unitsOfGas uint64) BlockTx {
	return BlockTx{
		SignedTx:  signedTx,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
		GasPrice:  gasPrice,
		GasUnits:  unitsOfGas,
	}
}

// ID returns the unique hash string that identifies this transaction.
func (tx BlockTx) ID() string {
	return signature.Hash(tx)
}

// Hash implements the merkle Hashable interface for providing a hash
// of a block transaction.
func (tx BlockTx) Hash() ([]byte, error) {
	return signature.HashBytes(tx.ID())
}

// GasFee returns the full fee the sender owes for this transaction.
func (tx BlockTx) GasFee() uint64 {
	return tx.GasPrice * tx.GasUnits
}

// =============================================================================

// Set of execution outcomes recorded in a TxInfo.
const (
	TxApplied = "applied"
	TxFailed  = "failed"
)

// TxInfo is the receipt produced by executing a transaction inside a
// specific block. The same transaction can carry one receipt per fork.
type TxInfo struct {
	TxHash      string `json:"tx_hash"`
	BlockHash   string `json:"block_hash"`
	BlockNumber uint64 `json:"block_number"`
	Index       uint64 `json:"index"`
	Status      string `json:"status"`
	GasFee      uint64 `json:"gas_fee"`
	Reason      string `json:"reason,omitempty"`
}
