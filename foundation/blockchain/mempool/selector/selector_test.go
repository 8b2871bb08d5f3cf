package selector_test

import (
	"sort"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/mempool/selector"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	signPavel = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	signBill  = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
	signEd    = "aed31b6b5a341af8f27e66fb0b7633cf20fc27049e3eb7f6f623a4655b719ebb"
)

func TestSelect(t *testing.T) {
	tran := func(hexKey string, nonce uint64, tip uint64) database.BlockTx {
		pk, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
		}

		tx, err := database.NewTx(1, nonce, "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76", 0, tip, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the transaction: %v", failed, err)
		}

		signedTx, err := tx.Sign(pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
		}

		return database.NewBlockTx(signedTx, 0, 0)
	}

	type test struct {
		name     string
		strategy string
		txs      []database.BlockTx
		howMany  int
		best     []database.BlockTx
	}

	tt := []test{
		{
			name:     "tip one from second row",
			strategy: selector.StrategyTip,
			txs: []database.BlockTx{
				tran(signPavel, 1, 25), tran(signPavel, 2, 75), tran(signPavel, 3, 50),
				tran(signBill, 1, 10), tran(signBill, 2, 5), tran(signBill, 3, 75),
				tran(signEd, 1, 5), tran(signEd, 2, 50), tran(signEd, 3, 25),
			},
			howMany: 4,
			best: []database.BlockTx{
				tran(signPavel, 1, 25), tran(signPavel, 2, 75),
				tran(signBill, 1, 10),
				tran(signEd, 1, 5),
			},
		},
		{
			name:     "tip everything",
			strategy: selector.StrategyTip,
			txs: []database.BlockTx{
				tran(signPavel, 2, 75), tran(signPavel, 1, 25),
				tran(signBill, 1, 10),
			},
			howMany: 3,
			best: []database.BlockTx{
				tran(signPavel, 1, 25), tran(signPavel, 2, 75),
				tran(signBill, 1, 10),
			},
		},
		{
			name:     "advanced all from first account",
			strategy: selector.StrategyTipAdvanced,
			txs: []database.BlockTx{
				tran(signPavel, 1, 1), tran(signPavel, 2, 2), tran(signPavel, 3, 3), tran(signPavel, 4, 3),
				tran(signBill, 1, 1), tran(signBill, 2, 4), tran(signBill, 3, 1),
			},
			howMany: 4,
			best: []database.BlockTx{
				tran(signPavel, 1, 1), tran(signPavel, 2, 2), tran(signPavel, 3, 3), tran(signPavel, 4, 3),
			},
		},
		{
			name:     "advanced stuck behind a low tip",
			strategy: selector.StrategyTipAdvanced,
			txs: []database.BlockTx{
				tran(signPavel, 1, 1), tran(signPavel, 2, 100),
				tran(signBill, 1, 20), tran(signBill, 2, 20),
			},
			howMany: 2,
			best: []database.BlockTx{
				tran(signPavel, 1, 1), tran(signPavel, 2, 100),
			},
		},
	}

	t.Log("Given the need to select the best transactions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transactions.", testID)
			{
				f := func(t *testing.T) {
					selectFn, err := selector.Retrieve(tst.strategy)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to retrieve the strategy: %v", failed, testID, err)
					}

					m := make(map[database.AccountID][]database.BlockTx)
					for _, tx := range tst.txs {
						from, err := tx.FromAccount()
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to recover the sender: %v", failed, testID, err)
						}
						m[from] = append(m[from], tx)
					}

					got := keys(t, selectFn(m, tst.howMany))
					exp := keys(t, tst.best)

					if len(got) != len(exp) {
						t.Fatalf("\t%s\tTest %d:\tShould get %d transactions, got %d.", failed, testID, len(exp), len(got))
					}
					for i := range got {
						if got[i] != exp[i] {
							t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
							t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould get back the right transactions.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right transactions.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestUnknownStrategy(t *testing.T) {
	t.Log("Given the need to select a strategy by name.")
	{
		if _, err := selector.Retrieve("unknown"); err == nil {
			t.Fatalf("\t%s\tShould fail for an unknown strategy.", failed)
		}
		t.Logf("\t%s\tShould fail for an unknown strategy.", success)
	}
}

// keys returns the sorted account:nonce pairs so results can be compared
// without depending on map iteration order.
func keys(t *testing.T, txs []database.BlockTx) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.String()
	}
	sort.Strings(out)

	return out
}
