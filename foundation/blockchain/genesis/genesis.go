// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time         `json:"date"`
	ChainID       uint16            `json:"chain_id"`        // The chain id represents an unique id for this running instance.
	TransPerBlock uint16            `json:"trans_per_block"` // The maximum number of transactions that can be in a block.
	Difficulty    uint16            `json:"difficulty"`      // How difficult it needs to be to solve the work problem.
	MiningReward  uint64            `json:"mining_reward"`   // Reward for mining a block.
	GasPrice      uint64            `json:"gas_price"`       // Fee paid for each transaction mined into a block.
	Balances      map[string]uint64 `json:"balances"`
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("read genesis: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decode genesis: %w", err)
	}

	return genesis, nil
}

// Accounts returns the starting account snapshot.
func (g Genesis) Accounts() (*accounts.Accounts, error) {
	balances := make(map[database.AccountID]uint64, len(g.Balances))
	for id, balance := range g.Balances {
		accountID, err := database.ToAccountID(id)
		if err != nil {
			return nil, fmt.Errorf("genesis balance: %w", err)
		}
		balances[accountID] = balance
	}

	return accounts.New(balances), nil
}

// Block returns the first block of the chain. Its state root commits to
// the genesis balances.
func (g Genesis) Block() (database.Block, *accounts.Accounts, error) {
	act, err := g.Accounts()
	if err != nil {
		return database.Block{}, nil, err
	}

	header := database.BlockHeader{
		Number:        0,
		PrevBlockHash: signature.ZeroHash,
		TimeStamp:     uint64(g.Date.UTC().UnixMilli()),
		Difficulty:    g.Difficulty,
		StateRoot:     act.Root(),
	}

	block, err := database.NewBlock(header, nil)
	if err != nil {
		return database.Block{}, nil, err
	}

	return block, act, nil
}
