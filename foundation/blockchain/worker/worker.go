// Package worker implements mining, peer updates, and block and transaction
// sharing for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
)

// peerUpdateInterval represents the interval of finding new peer nodes.
const peerUpdateInterval = time.Minute

// maxShareRequests represents the max number of pending share requests for
// each kind of message. If a queue is full, new requests are dropped.
const maxShareRequests = 100

// =============================================================================

// Worker manages the background workflows for the blockchain and is the
// broadcaster the state tells about new heads.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ticker       *time.Ticker
	shut         chan struct{}
	startMining  chan struct{}
	cancelMining chan struct{}
	txSharing    chan database.BlockTx
	blockSharing chan database.Block
	evHandler    state.EventHandler
	baseURL      string
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	w := Worker{
		state:        st,
		ticker:       time.NewTicker(peerUpdateInterval),
		shut:         make(chan struct{}),
		startMining:  make(chan struct{}, 1),
		cancelMining: make(chan struct{}, 1),
		txSharing:    make(chan database.BlockTx, maxShareRequests),
		blockSharing: make(chan database.Block, maxShareRequests),
		evHandler:    evHandler,
		baseURL:      "http://%s/v1/node",
	}

	// Register this worker with the state package.
	st.SetBroadcaster(&w)

	// Update this node before starting any support G's.
	w.Sync()

	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.shareTxOperations,
		w.shareBlockOperations,
	}

	g := len(operations)
	w.wg.Add(g)

	hasStarted := make(chan bool)

	for _, op := range operations {
		go func() {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}()
	}

	for range g {
		<-hasStarted
	}

	// Transactions picked up during the sync may be waiting.
	w.SignalStartMining()

	return &w
}

// =============================================================================
// These methods implement the state.Broadcaster interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// NotifyNewHead queues the new head to be proposed to the known peers. Any
// mining on the old head is cancelled and started again on the new one.
// Heads are never dropped, when the queue is full the call waits for room
// or for shutdown. The state calls this from its own delivery goroutine.
func (w *Worker) NotifyNewHead(block database.Block) {
	select {
	case w.blockSharing <- block:
		w.evHandler("worker: NotifyNewHead: share blk[%d] signaled", block.Header.Number)
	case <-w.shut:
		w.evHandler("worker: NotifyNewHead: shutting down, blk[%d] won't be shared", block.Header.Number)
		return
	}

	w.SignalCancelMining()
	w.SignalStartMining()
}

// ShareTx queues a new transaction to be shared with the known peers and
// signals mining.
func (w *Worker) ShareTx(tx database.BlockTx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: ShareTx: share Tx signaled")
	default:
		w.evHandler("worker: ShareTx: queue full, transactions won't be shared")
	}

	w.SignalStartMining()
}

// =============================================================================

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- struct{}{}:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- struct{}{}:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
