// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/forkchain/business/web/errs"
	"github.com/ardanlabs/forkchain/foundation/blockchain/database"
	"github.com/ardanlabs/forkchain/foundation/blockchain/state"
	"github.com/ardanlabs/forkchain/foundation/events"
	"github.com/ardanlabs/forkchain/foundation/nameservice"
	"github.com/ardanlabs/forkchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds new user transactions to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var signedTx database.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return err
	}

	h.Log.Infow("add user tran", "traceid", web.GetTraceID(ctx), "sig:nonce", signedTx, "to", signedTx.ToID, "value", signedTx.Value, "tip", signedTx.Tip)
	if err := h.State.UpsertWalletTransaction(signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transactions added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// Head returns the head tip and the tracked side branch tips.
func (h Handlers) Head(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	branches := h.State.Branches()

	ch := chainHead{
		Head:         toHeader(h.State.CurrentHeader()),
		SideBranches: make([]header, len(branches)),
		Uncommitted:  h.State.QueryMempoolLength(),
	}
	for i, bh := range branches {
		ch.SideBranches[i] = toHeader(bh)
	}

	return web.Respond(ctx, w, ch, http.StatusOK)
}

// Branches returns the tips of the side branches, highest first.
func (h Handlers) Branches(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	branches := h.State.Branches()

	tips := make([]header, len(branches))
	for i, bh := range branches {
		tips[i] = toHeader(bh)
	}

	return web.Respond(ctx, w, tips, http.StatusOK)
}

// BlockByHash returns any persisted block, on the head branch or not.
func (h Handlers) BlockByHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, found, err := h.State.GetBlock(web.Param(r, "hash"))
	if err != nil {
		return err
	}
	if !found {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusOK)
}

// BlockByNumber returns the block at the number on the head branch.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	blk, found, err := h.State.GetBlockByNumber(number)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusOK)
}

// BlocksByAccount returns the blocks on the head branch that carry a
// transaction for the account.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	dbBlocks, err := h.State.QueryBlocksByAccount(accountID)
	if err != nil {
		return err
	}

	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Transaction returns a transaction on the head branch and the receipt of
// its execution.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash := web.Param(r, "hash")

	tran, found, err := h.State.GetTransaction(hash)
	if err != nil {
		return err
	}
	if !found {
		return errs.NewTrusted(errors.New("transaction not found"), http.StatusNotFound)
	}

	info, _, err := h.State.GetTransactionInfo(hash)
	if err != nil {
		return err
	}

	t := h.toTx(tran)
	t.Proof = &info

	return web.Respond(ctx, w, t, http.StatusOK)
}

// Accounts returns the balances at the head for all accounts or the
// specified one.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	view := h.State.ChainStateReader()

	var accounts []database.Account
	switch param := web.Param(r, "account"); param {
	case "":
		all, err := view.Accounts()
		if err != nil {
			return err
		}
		for _, account := range all {
			accounts = append(accounts, account)
		}
		sort.Slice(accounts, func(i, j int) bool {
			return accounts[i].AccountID < accounts[j].AccountID
		})

	default:
		accountID, err := database.ToAccountID(param)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		account, found, err := view.Account(accountID)
		if err != nil {
			return err
		}
		if !found {
			return errs.NewTrusted(errors.New("account not found"), http.StatusNotFound)
		}
		accounts = append(accounts, account)
	}

	ai := actInfo{
		HeadBlock:   h.State.HeadBranch(),
		StateRoot:   view.Root(),
		Uncommitted: h.State.QueryMempoolLength(),
		Accounts:    make([]info, len(accounts)),
	}
	for i, account := range accounts {
		ai.Accounts[i] = info{
			Account: account.AccountID,
			Name:    h.NS.Lookup(account.AccountID),
			Balance: account.Balance,
			Nonce:   account.Nonce,
		}
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions, optionally only
// the ones from or to the account.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := database.AccountID(web.Param(r, "account"))

	mempool := h.State.RetrieveMempool()

	trans := make([]tx, 0, len(mempool))
	for _, tran := range mempool {
		t := h.toTx(tran)
		if acct != "" && acct != t.FromAccount && acct != t.To {
			continue
		}
		trans = append(trans, t)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// =============================================================================

func (h Handlers) toTx(tran database.BlockTx) tx {
	account, _ := tran.FromAccount()

	return tx{
		Hash:        tran.ID(),
		FromAccount: account,
		FromName:    h.NS.Lookup(account),
		To:          tran.ToID,
		ToName:      h.NS.Lookup(tran.ToID),
		ChainID:     tran.ChainID,
		Nonce:       tran.Nonce,
		Value:       tran.Value,
		Tip:         tran.Tip,
		Data:        tran.Data,
		TimeStamp:   tran.TimeStamp,
		GasPrice:    tran.GasPrice,
		GasUnits:    tran.GasUnits,
		Sig:         tran.SignatureString(),
	}
}

func (h Handlers) toBlock(blk database.Block) block {
	trans := make([]tx, len(blk.Trans))
	for i, tran := range blk.Trans {
		trans[i] = h.toTx(tran)
	}

	return block{
		Number:        blk.Header.Number,
		Hash:          blk.Hash(),
		PrevBlockHash: blk.Header.PrevBlockHash,
		TimeStamp:     blk.Header.TimeStamp,
		BeneficiaryID: blk.Header.BeneficiaryID,
		BeneficiaryNm: h.NS.Lookup(blk.Header.BeneficiaryID),
		Difficulty:    blk.Header.Difficulty,
		MiningReward:  blk.Header.MiningReward,
		Nonce:         blk.Header.Nonce,
		StateRoot:     blk.Header.StateRoot,
		TransRoot:     blk.Header.TransRoot,
		Transactions:  trans,
	}
}
