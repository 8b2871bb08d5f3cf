package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

const doc = `{
	"date": "2026-01-01T00:00:00.000000000Z",
	"chain_id": 1,
	"trans_per_block": 10,
	"difficulty": 6,
	"mining_reward": 700,
	"gas_price": 15,
	"balances": {
		"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 1000000,
		"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": 500
	}
}`

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("\t%s\tShould be able to write the genesis file: %v", failed, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Log("Given the need to load a genesis file.")
	{
		t.Logf("\tTest 0:\tWhen handling a valid file.")
		{
			gen, err := genesis.Load(writeFile(t, doc))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the file: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the file.", success)

			if gen.ChainID != 1 || gen.Difficulty != 6 || gen.MiningReward != 700 || gen.GasPrice != 15 {
				t.Fatalf("\t%s\tTest 0:\tShould decode the settings, got %+v", failed, gen)
			}
			t.Logf("\t%s\tTest 0:\tShould decode the settings.", success)

			block, act, err := gen.Block()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build the genesis block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to build the genesis block.", success)

			if !block.Header.IsGenesis() || block.Header.PrevBlockHash != signature.ZeroHash {
				t.Fatalf("\t%s\tTest 0:\tShould be a genesis header, got %+v", failed, block.Header)
			}
			t.Logf("\t%s\tTest 0:\tShould be a genesis header.", success)

			if block.Header.StateRoot != act.Root() {
				t.Logf("\t\tTest 0:\tgot: %s", block.Header.StateRoot)
				t.Logf("\t\tTest 0:\texp: %s", act.Root())
				t.Fatalf("\t%s\tTest 0:\tShould commit to the genesis balances.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould commit to the genesis balances.", success)

			id, _ := database.ToAccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
			account, exists := act.Get(id)
			if !exists || account.Balance != 500 {
				t.Fatalf("\t%s\tTest 0:\tShould hold the starting balance, got %+v", failed, account)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the starting balance.", success)

			again, _, err := gen.Block()
			if err != nil || again.Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould build the same block every time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould build the same block every time.", success)
		}

		t.Logf("\tTest 1:\tWhen handling bad input.")
		{
			if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould fail on a missing file.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail on a missing file.", success)

			if _, err := genesis.Load(writeFile(t, "{")); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould fail on a broken document.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail on a broken document.", success)

			gen := genesis.Genesis{Balances: map[string]uint64{"bill": 10}}
			if _, _, err := gen.Block(); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a bad account id.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a bad account id.", success)
		}
	}
}
