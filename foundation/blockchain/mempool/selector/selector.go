// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyTip         = "tip"
	StrategyTipAdvanced = "tip_advanced"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyTip:         tipSelect,
	StrategyTipAdvanced: advancedTipSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// account and selects howMany of them in an order based on the functions
// strategy. All selector functions MUST respect nonce ordering.
type Func func(transactions map[database.AccountID][]database.BlockTx, howMany int) []database.BlockTx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// byNonce provides sorting support by the transaction nonce value.
type byNonce []database.BlockTx

func (bn byNonce) Len() int           { return len(bn) }
func (bn byNonce) Less(i, j int) bool { return bn[i].Nonce < bn[j].Nonce }
func (bn byNonce) Swap(i, j int)      { bn[i], bn[j] = bn[j], bn[i] }

// byTip provides sorting support by the transaction tip value, largest
// first.
type byTip []database.BlockTx

func (bt byTip) Len() int           { return len(bt) }
func (bt byTip) Less(i, j int) bool { return bt[i].Tip > bt[j].Tip }
func (bt byTip) Swap(i, j int)      { bt[i], bt[j] = bt[j], bt[i] }
