package state_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"pgregory.net/rapid"
)

func TestForkChoiceProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bld := newBuilder(t)

		// Grow a random tree where every block picks an earlier block as
		// its parent.
		n := rapid.IntRange(1, 12).Draw(rt, "blocks")
		blocks := make([]database.Block, 0, n)
		hashes := []string{bld.genesis}
		children := map[string]int{}
		maxHeight := uint64(0)

		for i := range n {
			parent := rapid.SampledFrom(hashes).Draw(rt, "parent")
			block := bld.block(parent, uint64(i+1))

			blocks = append(blocks, block)
			hashes = append(hashes, block.Hash())
			children[parent]++
			maxHeight = max(maxHeight, block.Header.Number)
		}

		leaves := 0
		for _, block := range blocks {
			if children[block.Hash()] == 0 {
				leaves++
			}
		}

		st, err := state.New(config("", n))
		if err != nil {
			rt.Fatalf("start node: %v", err)
		}
		defer st.Shutdown()

		order := rapid.Permutation(blocks).Draw(rt, "order")
		for _, block := range order {
			if _, err := st.TryConnect(context.Background(), block); err != nil {
				rt.Fatalf("connect blk[%d]: %v", block.Header.Number, err)
			}
		}

		head := st.CurrentHeader()
		if head.Number != maxHeight {
			rt.Fatalf("head is at %d, highest block is %d", head.Number, maxHeight)
		}

		branches := st.Branches()
		if len(branches)+1 != leaves {
			rt.Fatalf("tracking %d side branches for %d leaves", len(branches), leaves)
		}
		for _, h := range branches {
			if h.Hash() == head.Hash() {
				rt.Fatalf("head %s is tracked as a side branch", head.Hash())
			}
			if h.Number > head.Number {
				rt.Fatalf("side branch %s is higher than the head", h.Hash())
			}
		}

		for number := uint64(0); number <= head.Number; number++ {
			h, found, err := st.GetHeaderByNumber(number)
			if err != nil || !found || h.Number != number {
				rt.Fatalf("head branch has no block %d: %v", number, err)
			}
		}

		for _, block := range blocks {
			outcome, err := st.TryConnect(context.Background(), block)
			if err != nil || outcome != state.OutcomeDuplicate {
				rt.Fatalf("reconnect blk[%d]: got %s: %v", block.Header.Number, outcome, err)
			}
		}
	})
}
