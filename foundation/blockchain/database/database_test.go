package database_test

import (
	"encoding/json"
	"testing"

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
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	toID     = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
)

// =============================================================================

func TestBlockEncoding(t *testing.T) {
	t.Log("Given the need to store blocks in binary form.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a block with transactions.", testID)
		{
			tx1 := sign(t, 1, nil)
			tx2 := sign(t, 2, []byte("payload"))

			block, err := database.NewBlock(database.BlockHeader{
				Number:        1,
				PrevBlockHash: signature.ZeroHash,
				TimeStamp:     1000,
				BeneficiaryID: toID,
				Difficulty:    1,
				MiningReward:  700,
				StateRoot:     signature.ZeroHash,
			}, []database.BlockTx{tx1, tx2})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct a block.", success, testID)

			data, err := database.EncodeBlock(block)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to encode the block.", success, testID)

			decoded, err := database.DecodeBlock(data)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to decode the block.", success, testID)

			if decoded.Hash() != block.Hash() {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, decoded.Hash())
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, block.Hash())
				t.Fatalf("\t%s\tTest %d:\tShould hash identically after decoding.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould hash identically after decoding.", success, testID)

			exp, _ := json.Marshal(block)
			got, _ := json.Marshal(decoded)
			if string(exp) != string(got) {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould compare equal after decoding.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould compare equal after decoding.", success, testID)

			if err := decoded.ValidateTransRoot(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid merkle root after decoding: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have a valid merkle root after decoding.", success, testID)

			for i, tx := range decoded.Trans {
				from, err := tx.FromAccount()
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould recover the sender of tx %d: %v", failed, testID, i, err)
				}
				if from != "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
					t.Fatalf("\t%s\tTest %d:\tShould recover the right sender of tx %d: %s", failed, testID, i, from)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould recover the senders after decoding.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen handling a block without transactions.", testID)
		{
			block, err := database.NewBlock(database.BlockHeader{Number: 3, PrevBlockHash: signature.ZeroHash}, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a block: %v", failed, testID, err)
			}

			if block.Header.TransRoot != signature.ZeroHash {
				t.Fatalf("\t%s\tTest %d:\tShould carry the zero hash as merkle root: %s", failed, testID, block.Header.TransRoot)
			}
			t.Logf("\t%s\tTest %d:\tShould carry the zero hash as merkle root.", success, testID)

			data, _ := database.EncodeBlock(block)
			decoded, err := database.DecodeBlock(data)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
			}

			if decoded.Trans != nil || decoded.Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest %d:\tShould compare equal after decoding.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould compare equal after decoding.", success, testID)
		}
	}
}

func TestBlockData(t *testing.T) {
	t.Log("Given the need to receive blocks from peers.")
	{
		block, err := database.NewBlock(database.BlockHeader{Number: 1, PrevBlockHash: signature.ZeroHash}, []database.BlockTx{sign(t, 1, nil)})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a block: %v", failed, err)
		}

		bd := database.NewBlockData(block)
		if _, err := database.ToBlock(bd); err != nil {
			t.Fatalf("\t%s\tShould accept block data with the right hash: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept block data with the right hash.", success)

		bd.Header.Nonce++
		if _, err := database.ToBlock(bd); err == nil {
			t.Fatalf("\t%s\tShould reject block data with the wrong hash.", failed)
		}
		t.Logf("\t%s\tShould reject block data with the wrong hash.", success)

		bd = database.NewBlockData(block)
		bd.Trans[0].Value++
		b, err := database.ToBlock(bd)
		if err != nil {
			t.Fatalf("\t%s\tShould convert block data: %v", failed, err)
		}
		if err := b.ValidateTransRoot(); err == nil {
			t.Fatalf("\t%s\tShould detect tampered transactions.", failed)
		}
		t.Logf("\t%s\tShould detect tampered transactions.", success)
	}
}

func TestAccountID(t *testing.T) {
	t.Log("Given the need to validate account ids.")
	{
		if _, err := database.ToAccountID(toID); err != nil {
			t.Fatalf("\t%s\tShould accept a valid account id: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a valid account id.", success)

		for _, bad := range []string{"", "0x12", "0xZZ1813E4B85e178A83e29B8E7bF26BD830a25f32"} {
			if _, err := database.ToAccountID(bad); err == nil {
				t.Fatalf("\t%s\tShould reject account id %q.", failed, bad)
			}
		}
		t.Logf("\t%s\tShould reject malformed account ids.", success)
	}
}

// =============================================================================

func sign(t *testing.T, nonce uint64, data []byte) database.BlockTx {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %v", err)
	}

	tx, err := database.NewTx(1, nonce, toID, 10, 1, data)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %v", err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("Should be able to sign a transaction: %v", err)
	}

	return database.NewBlockTx(signedTx, 1, 1)
}
