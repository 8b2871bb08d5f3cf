package state

import (
	"context"

	"github.com/ardanlabs/forkchain/foundation/blockchain/chain"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
)

// Outcome describes what happened to a block handed to TryConnect.
type Outcome int

// Set of outcomes for a connected block.
const (
	OutcomeDuplicate Outcome = iota
	OutcomeOrphan
	OutcomeExtended
	OutcomeReorg
	OutcomeSideBranch
)

var outcomeNames = map[Outcome]string{
	OutcomeDuplicate:  "duplicate",
	OutcomeOrphan:     "orphan",
	OutcomeExtended:   "extended",
	OutcomeReorg:      "reorg",
	OutcomeSideBranch: "side_branch",
}

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	if name, exists := outcomeNames[o]; exists {
		return name
	}
	return "unknown"
}

// HeadChanged reports if the outcome moved the head.
func (o Outcome) HeadChanged() bool {
	return o == OutcomeExtended || o == OutcomeReorg
}

// =============================================================================

// selectRequest asks the writer goroutine to run fork choice for a branch.
type selectRequest struct {
	candidate *chain.Branch
	block     database.Block
	notify    bool
	reply     chan selectResult
}

type selectResult struct {
	outcome Outcome
	err     error
}

// writer is the only goroutine that changes the head and the side
// branches.
func (s *State) writer() {
	s.evHandler("state: writer: G started")
	defer s.evHandler("state: writer: G completed")

	for {
		select {
		case req := <-s.selects:
			outcome, err := s.chooseHead(req.candidate, req.block, req.notify)
			req.reply <- selectResult{outcome: outcome, err: err}

		case <-s.shut:
			return
		}
	}
}

// selectHead hands the candidate branch to the writer goroutine and waits
// for the fork choice decision.
func (s *State) selectHead(ctx context.Context, candidate *chain.Branch, block database.Block, notify bool) (Outcome, error) {
	req := selectRequest{
		candidate: candidate,
		block:     block,
		notify:    notify,
		reply:     make(chan selectResult, 1),
	}

	select {
	case s.selects <- req:
	case <-s.shut:
		return OutcomeDuplicate, ErrShutdown
	case <-ctx.Done():
		return OutcomeDuplicate, ctx.Err()
	}

	// Once the writer has the request the decision is always completed.
	res := <-req.reply
	return res.outcome, res.err
}

// chooseHead runs on the writer goroutine. A candidate built on top of the
// head tip always becomes the head. A candidate from another fork point
// becomes the head only when its tip is strictly higher; the old head is
// kept as a side branch. Anything else is tracked as a side branch. A
// candidate whose tip is already part of a tracked branch changes nothing,
// and tracked tips that end up inside the candidate are dropped.
func (s *State) chooseHead(candidate *chain.Branch, block database.Block, notify bool) (Outcome, error) {
	snap := s.current()
	headTip := snap.head.TipHash()
	tipHash := candidate.TipHash()
	tip := candidate.CurrentHeader()
	head := snap.head.CurrentHeader()

	if tipHash == headTip {
		return OutcomeDuplicate, nil
	}
	if _, exists := snap.branches[tipHash]; exists {
		return OutcomeDuplicate, nil
	}

	// A child can reach fork choice before its parent does, so extending
	// the head is decided by ancestry and not only by the parent hash.
	extends := tip.PrevBlockHash == headTip
	if !extends && tip.Number > head.Number {
		var err error
		if extends, err = candidate.Contains(headTip); err != nil {
			return OutcomeDuplicate, err
		}
	}

	var outcome Outcome
	var ancestor database.BlockHeader

	switch {
	case extends:
		ancestor = head
		outcome = OutcomeExtended

	case tip.Number > head.Number:
		var err error
		if ancestor, err = chain.CommonAncestor(snap.head, candidate); err != nil {
			return OutcomeDuplicate, err
		}
		outcome = OutcomeReorg

	default:
		tracked, err := s.tracks(snap, tipHash)
		if err != nil {
			return OutcomeDuplicate, err
		}
		if tracked {
			s.evHandler("state: chooseHead: blk[%d]: %s: already inside a tracked branch", tip.Number, tipHash)
			return OutcomeDuplicate, nil
		}
		outcome = OutcomeSideBranch
	}

	next := snapshot{
		head:     snap.head,
		branches: make(map[string]*chain.Branch, len(snap.branches)+1),
	}
	for hash, branch := range snap.branches {
		inside, err := candidate.Contains(hash)
		if err != nil {
			return OutcomeDuplicate, err
		}
		if !inside {
			next.branches[hash] = branch
		}
	}

	switch outcome {
	case OutcomeExtended:
		next.head = candidate

	case OutcomeReorg:
		next.branches[headTip] = snap.head
		next.head = candidate

	case OutcomeSideBranch:
		next.branches[tipHash] = candidate
	}

	// The head is persisted before it's published.
	if outcome.HeadChanged() {
		path, err := candidate.HeadersAfter(ancestor.Number)
		if err != nil {
			return OutcomeDuplicate, err
		}
		if err := s.store.SetHead(tipHash, path); err != nil {
			return OutcomeDuplicate, &chain.StorageError{Op: "set head", Err: err}
		}
	}

	s.snap.Store(&next)

	headHeight.Set(float64(next.head.CurrentHeader().Number))
	sideBranches.Set(float64(len(next.branches)))
	if outcome == OutcomeReorg {
		reorgs.Inc()
	}

	s.evHandler("state: chooseHead: blk[%d]: %s: %s", tip.Number, tipHash, outcome)

	switch outcome {
	case OutcomeExtended:
		s.reconcileExtension(candidate, head.Number, block)

	case OutcomeReorg:
		s.reconcileReorg(snap.head, candidate, ancestor)
		s.evHandler("viewer: reorg: old head[%s]: new head[%s]", headTip, tipHash)
	}

	if notify && outcome.HeadChanged() {
		s.notify.ChanIn() <- block
	}

	return outcome, nil
}

// tracks reports if the block is already part of the head or of a side
// branch.
func (s *State) tracks(snap *snapshot, hash string) (bool, error) {
	onHead, err := snap.head.Contains(hash)
	if err != nil || onHead {
		return onHead, err
	}

	for _, branch := range snap.branches {
		onBranch, err := branch.Contains(hash)
		if err != nil || onBranch {
			return onBranch, err
		}
	}

	return false, nil
}

// reconcileExtension removes the transactions the new head blocks include
// from the mempool.
func (s *State) reconcileExtension(newHead *chain.Branch, from uint64, block database.Block) {
	if block.Header.Number == from+1 {
		s.mempool.Reconcile(block.Trans, nil)
		return
	}

	blocks, err := newHead.BlocksAfter(from)
	if err != nil {
		s.evHandler("state: reconcileExtension: ERROR: %s", err)
		return
	}

	var included []database.BlockTx
	for _, blk := range blocks {
		included = append(included, blk.Trans...)
	}

	s.mempool.Reconcile(included, nil)
}

// reconcileReorg puts the transactions from the abandoned blocks back
// into the mempool and removes the ones the new head includes.
func (s *State) reconcileReorg(oldHead *chain.Branch, newHead *chain.Branch, ancestor database.BlockHeader) {
	abandoned, err := oldHead.BlocksAfter(ancestor.Number)
	if err != nil {
		s.evHandler("state: reconcileReorg: ERROR: %s", err)
		return
	}

	adopted, err := newHead.BlocksAfter(ancestor.Number)
	if err != nil {
		s.evHandler("state: reconcileReorg: ERROR: %s", err)
		return
	}

	var restored, included []database.BlockTx
	for _, block := range abandoned {
		restored = append(restored, block.Trans...)
	}
	for _, block := range adopted {
		included = append(included, block.Trans...)
	}

	s.evHandler("state: reconcileReorg: fork point blk[%d]: restored[%d]: included[%d]", ancestor.Number, len(restored), len(included))

	s.mempool.Reconcile(included, restored)
}

// deliver hands head changes to the broadcaster in the order they
// happened.
func (s *State) deliver() {
	s.evHandler("state: deliver: G started")
	defer s.evHandler("state: deliver: G completed")

	for {
		select {
		case block := <-s.notify.ChanOut():
			s.mu.RLock()
			b := s.broadcaster
			s.mu.RUnlock()

			if b != nil {
				b.NotifyNewHead(block)
			}
			s.evHandler("viewer: new head: blk[%d]: %s", block.Header.Number, block.Hash())

		case <-s.shut:
			return
		}
	}
}
