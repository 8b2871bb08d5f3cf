package worker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
	"golang.org/x/sync/errgroup"
)

// shareTimeout bounds the time a single share with all peers can take.
const shareTimeout = 10 * time.Second

// shareTxOperations handles sharing new block transactions.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if !w.isShutdown() {
				w.broadcast("tx/submit", tx)
			}
		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return
		}
	}
}

// shareBlockOperations handles proposing new head blocks.
func (w *Worker) shareBlockOperations() {
	w.evHandler("worker: shareBlockOperations: G started")
	defer w.evHandler("worker: shareBlockOperations: G completed")

	for {
		select {
		case block := <-w.blockSharing:
			if !w.isShutdown() {
				w.broadcast("block/propose", database.NewBlockData(block))
				w.evHandler("viewer: proposed: blk[%d]: %s", block.Header.Number, block.Hash())
			}
		case <-w.shut:
			w.evHandler("worker: shareBlockOperations: received shut signal")
			return
		}
	}
}

// broadcast posts the value to the route on every known peer at the same
// time. A peer that fails is logged and skipped, there are no retries.
func (w *Worker) broadcast(route string, value any) {
	w.evHandler("worker: broadcast: %s: started", route)
	defer w.evHandler("worker: broadcast: %s: completed", route)

	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	var g errgroup.Group
	for _, pr := range w.state.RetrieveKnownPeers() {
		g.Go(func() error {
			if err := w.send(ctx, http.MethodPost, w.url(pr, route), value, nil); err != nil {
				w.evHandler("worker: broadcast: %s: %s: WARNING: %s", route, pr.Host, err)
				return nil
			}

			w.evHandler("worker: broadcast: %s: sent to peer[%s]", route, pr.Host)
			return nil
		})
	}

	g.Wait()
}

// url builds the address of a node route on the peer.
func (w *Worker) url(pr peer.Peer, route string) string {
	return fmt.Sprintf(w.baseURL, pr.Host) + "/" + route
}
