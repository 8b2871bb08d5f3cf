package executor_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/accounts"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/executor"
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

func TestTransfer(t *testing.T) {
	exec := executor.NewTransfer(1)
	header := database.BlockHeader{Number: 1, BeneficiaryID: minerID, MiningReward: 700}

	t.Log("Given the need to execute the transactions of a block.")
	{
		t.Logf("\tTest 0:\tWhen every transaction is valid.")
		{
			parent := accounts.New(map[database.AccountID]uint64{fromID: 1000})
			root := parent.Root()

			trans := []database.BlockTx{
				sign(t, 1, 1, 100),
				sign(t, 1, 2, 5000),
			}

			res, err := exec.Execute(context.Background(), parent, header, trans)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to execute the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to execute the block.", success)

			if len(res.Infos) != 2 || res.Infos[0].Status != database.TxApplied || res.Infos[1].Status != database.TxFailed {
				t.Fatalf("\t%s\tTest 0:\tShould get an applied and a failed receipt: %+v", failed, res.Infos)
			}
			if res.Infos[1].GasFee != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould charge gas for the failed transaction, got %d", failed, res.Infos[1].GasFee)
			}
			t.Logf("\t%s\tTest 0:\tShould get an applied and a failed receipt.", success)

			if res.StateRoot != res.Accounts.Root() {
				t.Fatalf("\t%s\tTest 0:\tShould return the root of the new state.", failed)
			}
			miner, _ := res.Accounts.Get(minerID)
			if miner.Balance != 702 {
				t.Fatalf("\t%s\tTest 0:\tShould pay the miner the reward and fees, got %d", failed, miner.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould pay the miner the reward and fees.", success)

			if parent.Root() != root {
				t.Fatalf("\t%s\tTest 0:\tShould not change the parent state.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not change the parent state.", success)
		}

		t.Logf("\tTest 1:\tWhen a transaction is for another chain.")
		{
			parent := accounts.New(map[database.AccountID]uint64{fromID: 1000})

			trans := []database.BlockTx{
				sign(t, 1, 1, 100),
				sign(t, 2, 2, 100),
			}

			_, err := exec.Execute(context.Background(), parent, header, trans)
			txErr, ok := executor.AsTxError(err)
			if !ok {
				t.Fatalf("\t%s\tTest 1:\tShould get a transaction error: %v", failed, err)
			}
			if txErr.Index != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould identify the bad transaction, got %d", failed, txErr.Index)
			}
			t.Logf("\t%s\tTest 1:\tShould identify the bad transaction.", success)
		}

		t.Logf("\tTest 2:\tWhen a transaction is repeated.")
		{
			parent := accounts.New(map[database.AccountID]uint64{fromID: 1000})
			tx := sign(t, 1, 1, 100)

			_, err := exec.Execute(context.Background(), parent, header, []database.BlockTx{tx, tx})
			if _, ok := executor.AsTxError(err); !ok {
				t.Fatalf("\t%s\tTest 2:\tShould reject the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the block.", success)
		}
	}
}

func sign(t *testing.T, chainID uint16, nonce uint64, value uint64) database.BlockTx {
	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	tx, err := database.NewTx(chainID, nonce, toID, value, 0, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the transaction: %v", failed, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
	}

	return database.NewBlockTx(signedTx, 1, 1)
}
