// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ledgerworks/blockchain/business/sys/validate"
	"github.com/ledgerworks/blockchain/business/web/errs"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/state"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
	"github.com/ledgerworks/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// CreateGenesis mints the initial balance into block 0 of an empty chain.
func (h Handlers) CreateGenesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req GenesisRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	addr, err := h.NS.Resolve(req.Address)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("create genesis", "traceid", v.TraceID, "address", addr, "amount", req.Amount)

	block, err := h.State.CreateGenesis(addr, req.Amount)
	if err != nil {
		if errors.Is(err, state.ErrChainNotEmpty) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("create genesis: %w", err)
	}

	return web.Respond(ctx, w, toBlockResponse(block), http.StatusCreated)
}

// Load re-reads the chain from storage, replacing the chain in memory.
func (h Handlers) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.Load(); err != nil {
		if errors.Is(err, database.ErrIntegrity) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("load: %w", err)
	}

	resp := LoadResponse{
		Length: len(h.State.Chain()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine runs the proof of work over the current pool and seals the result.
// The call returns once the block is sealed.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineNextBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, state.ErrStaleChallenge):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, state.ErrNoSealer):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mine: %w", err)
	}

	return web.Respond(ctx, w, toBlockResponse(block), http.StatusCreated)
}

// SignalMining asks the background worker to mine the pool.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("no mining worker running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Seal turns the current pool into the next block using a proof of work
// computed somewhere else.
func (h Handlers) Seal(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req SealRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	block, err := h.State.Seal(req.Hash, req.Nonce)
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}

	return web.Respond(ctx, w, toBlockResponse(block), http.StatusCreated)
}
