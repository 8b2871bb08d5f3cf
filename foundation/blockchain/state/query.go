package state

import (
	"sort"

	"github.com/ardanlabs/forkchain/foundation/blockchain/chain"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// HeadBranch returns the hash of the tip of the head branch.
func (s *State) HeadBranch() string {
	return s.current().head.TipHash()
}

// Branches returns the tip headers of the side branches, highest first.
func (s *State) Branches() []database.BlockHeader {
	snap := s.current()

	tips := make([]database.BlockHeader, 0, len(snap.branches))
	for _, branch := range snap.branches {
		tips = append(tips, branch.CurrentHeader())
	}

	sort.Slice(tips, func(i, j int) bool {
		if tips[i].Number != tips[j].Number {
			return tips[i].Number > tips[j].Number
		}
		return tips[i].Hash() < tips[j].Hash()
	})

	return tips
}

// CurrentHeader returns the header of the head tip.
func (s *State) CurrentHeader() database.BlockHeader {
	return s.current().head.CurrentHeader()
}

// HeadBlock returns the head tip block.
func (s *State) HeadBlock() (database.Block, error) {
	return s.current().head.HeadBlock()
}

// GetHeader returns the header for the specified block hash.
func (s *State) GetHeader(hash string) (database.BlockHeader, bool, error) {
	return s.current().head.GetHeader(hash)
}

// GetHeaderByNumber returns the header at the number on the head branch.
func (s *State) GetHeaderByNumber(number uint64) (database.BlockHeader, bool, error) {
	return s.current().head.GetHeaderByNumber(number)
}

// GetBlock returns the block for the specified hash.
func (s *State) GetBlock(hash string) (database.Block, bool, error) {
	return s.current().head.GetBlock(hash)
}

// GetBlockByNumber returns the block at the number on the head branch.
func (s *State) GetBlockByNumber(number uint64) (database.Block, bool, error) {
	return s.current().head.GetBlockByNumber(number)
}

// GetTransaction returns the transaction if the head branch includes it.
func (s *State) GetTransaction(txHash string) (database.BlockTx, bool, error) {
	return s.current().head.GetTransaction(txHash)
}

// GetTransactionInfo returns the receipt of the transaction on the head
// branch.
func (s *State) GetTransactionInfo(txHash string) (database.TxInfo, bool, error) {
	return s.current().head.GetTransactionInfo(txHash)
}

// ChainStateReader returns a view of the accounts at the head tip.
func (s *State) ChainStateReader() chain.StateView {
	return s.current().head.ChainStateReader()
}

// QueryAccount returns the account at the head tip.
func (s *State) QueryAccount(accountID database.AccountID) (database.Account, bool, error) {
	return s.ChainStateReader().Account(accountID)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks on the head branch between
// the two numbers inclusive.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) ([]database.Block, error) {
	head := s.current().head
	latest := head.CurrentHeader().Number

	if from == QueryLatest {
		from = latest
		to = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}
	if from > to {
		return nil, nil
	}

	blocks, err := head.BlocksAfter(from - min(from, 1))
	if err != nil {
		return nil, err
	}

	if from == 0 {
		genesis, found, err := head.GetBlockByNumber(0)
		if err != nil {
			return nil, err
		}
		if found {
			blocks = append([]database.Block{genesis}, blocks...)
		}
	}

	return blocks[:to-from+1], nil
}

// QueryBlocksByAccount returns the blocks on the head branch with
// transactions from or to the account, newest first.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) ([]database.Block, error) {
	blocks, err := s.current().head.BlocksAfter(0)
	if err != nil {
		return nil, err
	}

	var out []database.Block
	for i := len(blocks) - 1; i >= 0; i-- {
		for _, tx := range blocks[i].Trans {
			fromID, err := tx.FromAccount()
			if err != nil {
				continue
			}

			if fromID == accountID || tx.ToID == accountID {
				out = append(out, blocks[i])
				break
			}
		}
	}

	return out, nil
}
