package consensus

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// ProofOfWork requires the hash of a header to start with a difficulty
// number of zeros.
type ProofOfWork struct {
	difficulty uint16
}

// NewPOW constructs a proof of work strategy with the minimum difficulty
// new blocks will be produced with.
func NewPOW(difficulty uint16) *ProofOfWork {
	return &ProofOfWork{
		difficulty: difficulty,
	}
}

// Name returns the name of the strategy.
func (pow *ProofOfWork) Name() string {
	return POW
}

// Difficulty returns the difficulty for a block built on the parent.
func (pow *ProofOfWork) Difficulty(parent database.BlockHeader) uint16 {
	return max(pow.difficulty, parent.Difficulty)
}

// ValidateHeader checks the header solved the hash puzzle and follows
// the parent in difficulty and time.
func (pow *ProofOfWork) ValidateHeader(header database.BlockHeader, parent database.BlockHeader) error {
	if header.Difficulty < parent.Difficulty {
		return fmt.Errorf("block difficulty is less than parent block difficulty, parent %d, block %d", parent.Difficulty, header.Difficulty)
	}

	hash := header.Hash()
	if !isHashSolved(header.Difficulty, hash) {
		return fmt.Errorf("%s invalid block hash", hash)
	}

	if parent.TimeStamp > 0 && header.TimeStamp <= parent.TimeStamp {
		return fmt.Errorf("block timestamp is before parent block, parent %d, block %d", parent.TimeStamp, header.TimeStamp)
	}

	return nil
}

// Seal does the work of mining to find a nonce that solves the hash puzzle
// for the header. The nonce starts at a random point and is incremented
// until a solution is found or the context is cancelled.
func (pow *ProofOfWork) Seal(ctx context.Context, header database.BlockHeader, ev EventHandler) (database.BlockHeader, error) {
	ev("consensus: Seal: MINING: started: blk[%d]", header.Number)
	defer ev("consensus: Seal: MINING: completed: blk[%d]", header.Number)

	nBig, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return database.BlockHeader{}, fmt.Errorf("random nonce: %w", err)
	}
	header.Nonce = nBig.Uint64()

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("consensus: Seal: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("consensus: Seal: MINING: CANCELLED")
			return database.BlockHeader{}, ctx.Err()
		}

		hash := header.Hash()
		if !isHashSolved(header.Difficulty, hash) {
			header.Nonce++
			continue
		}

		ev("consensus: Seal: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", header.PrevBlockHash, hash)
		ev("consensus: Seal: MINING: attempts[%d]", attempts)

		return header, nil
	}
}

// isHashSolved checks the hash to make sure it complies with the POW
// rules. We need to match a difficulty number of 0's after the 0x prefix.
func isHashSolved(difficulty uint16, hash string) bool {
	const match = "0x00000000000000000"

	if len(hash) != 66 || int(difficulty) > len(match)-2 {
		return false
	}

	return hash[:difficulty+2] == match[:difficulty+2]
}
