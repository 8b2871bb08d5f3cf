// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/forkchain/business/web/errs"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/peer"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"github.com/ardanlabs/forkchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// SubmitNodeTransaction adds new node transactions to the mempool.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx database.BlockTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	h.Log.Infow("add tran", "traceid", web.GetTraceID(ctx), "sig:nonce", tx, "to", tx.ToID, "value", tx.Value, "tip", tx.Tip)
	if err := h.State.UpsertMempool(tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transactions added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block received from a peer and hands it to the
// chain engine. The outcome of fork choice is returned.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var blockData database.BlockData
	if err := web.Decode(r, &blockData); err != nil {
		return err
	}

	block, err := database.ToBlock(blockData)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode block: %w", err), http.StatusBadRequest)
	}

	outcome, err := h.State.TryConnect(ctx, block)
	if err != nil {
		if errors.Is(err, state.ErrShutdown) {
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return err
	}

	resp := struct {
		Status string `json:"status"`
		Head   string `json:"head"`
	}{
		Status: outcome.String(),
		Head:   h.State.HeadBranch(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlockTemplate returns a block built on the head from the mempool for an
// external miner to seal.
func (h Handlers) BlockTemplate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tmpl, err := h.State.CreateBlockTemplate(ctx)
	if err != nil {
		return err
	}

	resp := struct {
		Block database.BlockData `json:"block"`
		Infos []database.TxInfo  `json:"infos"`
	}{
		Block: database.NewBlockData(tmpl.Block),
		Infos: tmpl.Infos,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitPeer is called by a node so they can be added to the known peer list.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var pr peer.Peer
	if err := web.Decode(r, &pr); err != nil {
		return err
	}

	if !h.State.AddKnownPeer(pr) {
		h.Log.Infow("adding peer", "traceid", web.GetTraceID(ctx), "host", pr.Host, "status", "already known")
	}

	return web.Respond(ctx, w, nil, http.StatusOK)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// BlocksByNumber returns the blocks on the head branch based on the
// specified from/to values.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := parseNumber(web.Param(r, "from"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := parseNumber(web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks, err := h.State.QueryBlocksByNumber(from, to)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blockData := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		blockData[i] = database.NewBlockData(block)
	}

	return web.Respond(ctx, w, blockData, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// =============================================================================

// parseNumber converts a block number parameter. The word latest or an
// empty value means the head.
func parseNumber(s string) (uint64, error) {
	if s == "" || s == "latest" {
		return state.QueryLatest, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q", s)
	}

	return n, nil
}
