package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestLookup(t *testing.T) {
	t.Log("Given the need to name accounts from key files.")
	{
		t.Logf("\tTest 0:\tWhen the folder holds a miner key.")
		{
			dir := t.TempDir()

			pk, err := crypto.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a key: %v", failed, err)
			}
			if err := crypto.SaveECDSA(filepath.Join(dir, "miner1.ecdsa"), pk); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to save the key: %v", failed, err)
			}

			ns, err := nameservice.New(dir)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the folder: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the folder.", success)

			accountID := database.PublicKeyToAccountID(pk.PublicKey)
			if name := ns.Lookup(accountID); name != "miner1" {
				t.Fatalf("\t%s\tTest 0:\tShould name the account miner1, got %q", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould name the account miner1.", success)

			unknown := database.AccountID("0x00000000000000000000000000000000000000ff")
			if name := ns.Lookup(unknown); name != string(unknown) {
				t.Fatalf("\t%s\tTest 0:\tShould return the id for unknown accounts, got %q", failed, name)
			}
			t.Logf("\t%s\tTest 0:\tShould return the id for unknown accounts.", success)

			key, exists := ns.PrivateKey("miner1")
			if !exists || database.PublicKeyToAccountID(key.PublicKey) != accountID {
				t.Fatalf("\t%s\tTest 0:\tShould return the miner key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould return the miner key.", success)
		}
	}
}
