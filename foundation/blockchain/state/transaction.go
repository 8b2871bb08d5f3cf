package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/chain"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// UpsertWalletTransaction accepts a transaction from a wallet, adds it to
// the mempool and shares it with the known peers.
func (s *State) UpsertWalletTransaction(signedTx database.SignedTx) error {
	tx := database.NewBlockTx(signedTx, s.genesis.GasPrice, 1)
	if err := s.UpsertMempool(tx); err != nil {
		return err
	}

	s.mu.RLock()
	b := s.broadcaster
	s.mu.RUnlock()

	if b != nil {
		b.ShareTx(tx)
	}

	return nil
}

// UpsertMempool checks the transaction against the head state and adds
// it to the mempool.
func (s *State) UpsertMempool(tx database.BlockTx) error {
	if err := tx.Validate(s.genesis.ChainID); err != nil {
		return err
	}

	from, err := tx.FromAccount()
	if err != nil {
		return err
	}

	account, _, err := s.QueryAccount(from)
	if err != nil {
		return err
	}

	if tx.Nonce <= account.Nonce {
		return fmt.Errorf("invalid nonce, got %d, exp > %d", tx.Nonce, account.Nonce)
	}

	const oneUnitOfGas = 1
	if tx.GasUnits != oneUnitOfGas {
		return fmt.Errorf("invalid gas units, got %d, exp %d", tx.GasUnits, oneUnitOfGas)
	}

	if tx.GasPrice < s.genesis.GasPrice {
		return fmt.Errorf("invalid gas price, got %d, exp >= %d", tx.GasPrice, s.genesis.GasPrice)
	}

	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return err
	}

	s.evHandler("state: UpsertMempool: tx[%s]: mempool[%d]", tx, n)

	return nil
}

// CreateBlockTemplate builds the next block on the head from the best
// transactions in the mempool. The header still has to be sealed.
func (s *State) CreateBlockTemplate(ctx context.Context) (chain.BlockTemplate, error) {
	trans := s.mempool.PickBest(s.genesis.TransPerBlock)
	return s.current().head.CreateBlockTemplate(ctx, s.beneficiaryID, trans)
}
