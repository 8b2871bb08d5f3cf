package consensus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/consensus"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestProofOfWork(t *testing.T) {
	ev := func(v string, args ...any) {}

	parent := database.BlockHeader{
		Number:        0,
		PrevBlockHash: signature.ZeroHash,
		TimeStamp:     1000,
		Difficulty:    1,
	}

	t.Log("Given the need to seal and validate proof of work headers.")
	{
		t.Logf("\tTest 0:\tWhen handling a header at difficulty 1.")
		{
			pow, err := consensus.Retrieve(consensus.POW, 1)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to retrieve the strategy: %v", failed, err)
			}

			header := database.BlockHeader{
				Number:        1,
				PrevBlockHash: parent.Hash(),
				TimeStamp:     2000,
				Difficulty:    pow.Difficulty(parent),
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			sealed, err := pow.Seal(ctx, header, ev)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to seal the header: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to seal the header.", success)

			if err := pow.ValidateHeader(sealed, parent); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the sealed header: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the sealed header.", success)

			late := sealed
			late.TimeStamp = parent.TimeStamp
			if err := pow.ValidateHeader(late, parent); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a header that changed after sealing.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a header that changed after sealing.", success)

			easy := sealed
			easy.Difficulty = 0
			if err := pow.ValidateHeader(easy, parent); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a header easier than its parent.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a header easier than its parent.", success)
		}

		t.Logf("\tTest 1:\tWhen the context is cancelled.")
		{
			pow := consensus.NewPOW(16)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := pow.Seal(ctx, database.BlockHeader{Difficulty: 16}, ev); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould stop sealing when cancelled.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould stop sealing when cancelled.", success)
		}
	}
}

func TestRetrieve(t *testing.T) {
	t.Log("Given the need to select a consensus strategy by name.")
	{
		if _, err := consensus.Retrieve("unknown", 0); err == nil {
			t.Fatalf("\t%s\tShould fail for an unknown strategy.", failed)
		}
		t.Logf("\t%s\tShould fail for an unknown strategy.", success)

		dev, err := consensus.Retrieve(consensus.Dev, 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to retrieve the development strategy: %v", failed, err)
		}
		if err := dev.ValidateHeader(database.BlockHeader{Number: 1}, database.BlockHeader{}); err != nil {
			t.Fatalf("\t%s\tShould accept any header in development: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept any header in development.", success)
	}
}
