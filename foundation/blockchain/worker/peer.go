package worker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
)

// peerOperations handles finding new peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list. Peers that don't answer are
// removed.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {
		status, err := w.requestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: requestPeerStatus: %s: ERROR: %s", pr.Host, err)
			w.state.RemoveKnownPeer(pr)
			continue
		}

		w.addNewPeers(status.KnownPeers)
	}
}

// addNewPeers takes the list of known peers and makes sure they are included
// in the nodes list of know peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	for _, pr := range knownPeers {

		// Don't add this running node to the known peer list.
		if pr.Match(w.state.RetrieveHost()) {
			continue
		}

		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: adding peer-node %s", pr.Host)
		}
	}
}

// =============================================================================

// requestPeerStatus asks the peer for its head and its peer list.
func (w *Worker) requestPeerStatus(pr peer.Peer) (peer.Status, error) {
	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	var status peer.Status
	if err := w.send(ctx, http.MethodGet, w.url(pr, "status"), nil, &status); err != nil {
		return peer.Status{}, err
	}

	w.evHandler("worker: requestPeerStatus: peer-node[%s]: head[%d]: %s", pr.Host, status.HeadNumber, status.HeadHash)

	return status, nil
}

// requestPeerMempool asks the peer for the transactions in its mempool.
func (w *Worker) requestPeerMempool(pr peer.Peer) ([]database.BlockTx, error) {
	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	var mempool []database.BlockTx
	if err := w.send(ctx, http.MethodGet, w.url(pr, "tx/list"), nil, &mempool); err != nil {
		return nil, err
	}

	return mempool, nil
}

// requestPeerBlocks asks the peer for its head branch from the specified
// number on.
func (w *Worker) requestPeerBlocks(pr peer.Peer, from uint64) ([]database.Block, error) {
	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	var data []database.BlockData
	if err := w.send(ctx, http.MethodGet, w.url(pr, fmt.Sprintf("block/list/%d/latest", from)), nil, &data); err != nil {
		return nil, err
	}

	blocks := make([]database.Block, len(data))
	for i, bd := range data {
		block, err := database.ToBlock(bd)
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}

	return blocks, nil
}
