package selector

import (
	"sort"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// advancedTipSelect returns transactions with the best total tip while
// respecting the nonce for each account. It can take a low tip transaction
// when a high tip one from the same account is stuck behind it.
var advancedTipSelect = func(m map[database.AccountID][]database.BlockTx, howMany int) []database.BlockTx {
	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(byNonce(m[key]))
		}
	}

	final := []database.BlockTx{}

	at := newAdvancedTips(m, howMany)
	for from, num := range at.findBest() {
		final = append(final, m[from][:num]...)
	}

	return final
}

// =============================================================================

type advancedTips struct {
	howMany   int
	bestTip   uint64
	bestCount int
	bestPos   map[database.AccountID]int
	groupTips map[database.AccountID][]uint64
	groups    []database.AccountID
}

func newAdvancedTips(m map[database.AccountID][]database.BlockTx, howMany int) *advancedTips {
	groupTips := make(map[database.AccountID][]uint64, len(m))
	groups := make([]database.AccountID, 0, len(m))

	// groupTips[from][n] is the total tip of the first n transactions.
	for from, group := range m {
		groups = append(groups, from)

		tips := []uint64{0}
		for i, tx := range group {
			if i >= howMany {
				break
			}
			tips = append(tips, tips[i]+tx.Tip)
		}
		groupTips[from] = tips
	}

	return &advancedTips{
		howMany:   howMany,
		groupTips: groupTips,
		groups:    groups,
	}
}

func (at *advancedTips) findBest() map[database.AccountID]int {
	at.findBestTransactions(0, at.howMany, map[database.AccountID]int{}, 0)
	return at.bestPos
}

func (at *advancedTips) findBestTransactions(groupID int, left int, currPos map[database.AccountID]int, prevTip uint64) {
	count := at.howMany - left
	if prevTip > at.bestTip || (prevTip == at.bestTip && count > at.bestCount) {
		at.bestTip = prevTip
		at.bestCount = count
		at.bestPos = currPos
	}

	if groupID >= len(at.groups) {
		return
	}
	from := at.groups[groupID]

	for pos, tip := range at.groupTips[from] {
		if left-pos < 0 {
			break
		}

		newCurrPos := copyMap(currPos)
		newCurrPos[from] = pos
		at.findBestTransactions(groupID+1, left-pos, newCurrPos, prevTip+tip)
	}
}

func copyMap(m map[database.AccountID]int) map[database.AccountID]int {
	newCurrPos := make(map[database.AccountID]int, len(m)+1)
	for from, pos := range m {
		newCurrPos[from] = pos
	}

	return newCurrPos
}
