package selector

import (
	"sort"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// tipSelect returns transactions with the best tip while respecting the
// nonce for each account. Every account contributes its lowest nonce to a
// row, then its next nonce to the following row, and so on. Rows are
// taken in order and the last partial row is sorted by tip.
var tipSelect = func(m map[database.AccountID][]database.BlockTx, howMany int) []database.BlockTx {
	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(byNonce(m[key]))
		}
	}

	var rows [][]database.BlockTx
	for {
		var row []database.BlockTx
		for key := range m {
			if len(m[key]) > 0 {
				row = append(row, m[key][0])
				m[key] = m[key][1:]
			}
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}

	final := []database.BlockTx{}
	for _, row := range rows {
		need := howMany - len(final)
		if len(row) > need {
			sort.Sort(byTip(row))
			final = append(final, row[:need]...)
			break
		}
		final = append(final, row...)
	}

	return final
}
