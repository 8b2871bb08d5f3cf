package worker

import "context"

// Sync updates the peer list, mempool and blocks. Blocks are fetched from
// the first number after the common genesis so a peer on another fork is
// caught up through the normal fork choice.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {
		status, err := w.requestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: requestPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		w.addNewPeers(status.KnownPeers)

		pool, err := w.requestPeerMempool(pr)
		if err != nil {
			w.evHandler("worker: sync: requestPeerMempool: %s: ERROR: %s", pr.Host, err)
		}
		for _, tx := range pool {
			if err := w.state.UpsertMempool(tx); err != nil {
				w.evHandler("worker: sync: requestPeerMempool: %s: WARNING: %s", pr.Host, err)
			}
		}

		if status.HeadNumber <= w.state.CurrentHeader().Number {
			continue
		}

		if _, known, _ := w.state.GetHeader(status.HeadHash); known {
			continue
		}

		w.evHandler("worker: sync: requestPeerBlocks: %s: head[%d]", pr.Host, status.HeadNumber)

		blocks, err := w.requestPeerBlocks(pr, 1)
		if err != nil {
			w.evHandler("worker: sync: requestPeerBlocks: %s: ERROR: %s", pr.Host, err)
			continue
		}

		for _, block := range blocks {
			outcome, err := w.state.TryConnect(context.Background(), block)
			if err != nil {
				w.evHandler("worker: sync: blk[%d]: ERROR: %s", block.Header.Number, err)
				break
			}
			w.evHandler("worker: sync: blk[%d]: %s", block.Header.Number, outcome)
		}
	}
}
