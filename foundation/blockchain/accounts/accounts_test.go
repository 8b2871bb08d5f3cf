package accounts_test

import (
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	fromID  = database.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	toID    = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	minerID = database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")
)

func sign(t *testing.T, nonce uint64, value uint64, tip uint64, gas uint64) database.BlockTx {
	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	tx, err := database.NewTx(1, nonce, toID, value, tip, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the transaction: %v", failed, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
	}

	return database.NewBlockTx(signedTx, 1, gas)
}

func TestTransactions(t *testing.T) {
	type tx struct {
		nonce uint64
		value uint64
		tip   uint64
		fail  bool
	}

	type table struct {
		name        string
		minerReward uint64
		gas         uint64
		sheet       map[database.AccountID]uint64
		final       map[database.AccountID]uint64
		txs         []tx
	}

	tt := []table{
		{
			name:        "basic",
			minerReward: 100,
			gas:         80,
			sheet:       map[database.AccountID]uint64{fromID: 1000},
			final:       map[database.AccountID]uint64{fromID: 540, toID: 200, minerID: 360},
			txs: []tx{
				{nonce: 1, value: 100, tip: 50},
				{nonce: 2, value: 100, tip: 50},
			},
		},
		{
			name:        "insufficient",
			minerReward: 100,
			gas:         80,
			sheet:       map[database.AccountID]uint64{fromID: 100},
			final:       map[database.AccountID]uint64{fromID: 20, toID: 0, minerID: 180},
			txs: []tx{
				{nonce: 1, value: 100, tip: 50, fail: true},
			},
		},
		{
			name:        "nonce",
			minerReward: 0,
			gas:         10,
			sheet:       map[database.AccountID]uint64{fromID: 1000},
			final:       map[database.AccountID]uint64{fromID: 880, toID: 100, minerID: 20},
			txs: []tx{
				{nonce: 1, value: 100, tip: 0},
				{nonce: 1, value: 100, tip: 0, fail: true},
			},
		},
	}

	t.Log("Given the need to validate the transactions.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of accounts.", testID)
			{
				f := func(t *testing.T) {
					act := accounts.New(tst.sheet)

					for _, x := range tst.txs {
						_, err := act.ApplyTransaction(minerID, sign(t, x.nonce, x.value, x.tip, tst.gas))
						switch {
						case x.fail && err == nil:
							t.Fatalf("\t%s\tTest %d:\tShould fail to apply the transaction.", failed, testID)
						case !x.fail && err != nil:
							t.Fatalf("\t%s\tTest %d:\tShould be able to apply the transaction: %v", failed, testID, err)
						}
					}
					act.ApplyMiningReward(minerID, tst.minerReward)
					t.Logf("\t%s\tTest %d:\tShould be able to apply the transactions.", success, testID)

					for accountID, exp := range tst.final {
						account, _ := act.Get(accountID)
						if account.Balance != exp {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, account.Balance)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, exp)
							t.Errorf("\t%s\tTest %d:\tShould have the correct balance for %s.", failed, testID, accountID)
							continue
						}
						t.Logf("\t%s\tTest %d:\tShould have the correct balance for %s.", success, testID, accountID)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestRoot(t *testing.T) {
	t.Log("Given the need to hash account snapshots into a state root.")
	{
		t.Logf("\tTest 0:\tWhen handling snapshots.")
		{
			if root := accounts.New(nil).Root(); root != signature.ZeroHash {
				t.Fatalf("\t%s\tTest 0:\tShould get the zero hash for an empty snapshot, got %s", failed, root)
			}
			t.Logf("\t%s\tTest 0:\tShould get the zero hash for an empty snapshot.", success)

			act := accounts.New(map[database.AccountID]uint64{fromID: 1000, toID: 10})
			clone := act.Clone()
			if act.Root() != clone.Root() {
				t.Fatalf("\t%s\tTest 0:\tShould get the same root for a clone.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same root for a clone.", success)

			clone.ApplyMiningReward(minerID, 1)
			if act.Root() == clone.Root() {
				t.Fatalf("\t%s\tTest 0:\tShould get a different root after a change.", failed)
			}
			if _, exists := act.Get(minerID); exists {
				t.Fatalf("\t%s\tTest 0:\tShould not change the original snapshot.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould only change the clone.", success)

			data, err := accounts.Encode(clone)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode the snapshot: %v", failed, err)
			}
			decoded, err := accounts.Decode(data)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the snapshot: %v", failed, err)
			}
			if decoded.Root() != clone.Root() {
				t.Fatalf("\t%s\tTest 0:\tShould get the same root after decoding.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same root after decoding.", success)
		}
	}
}
