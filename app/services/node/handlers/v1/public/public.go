// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ledgerworks/blockchain/business/sys/validate"
	"github.com/ledgerworks/blockchain/business/web/errs"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/state"
	"github.com/ledgerworks/blockchain/foundation/events"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
	"github.com/ledgerworks/blockchain/foundation/web"
	"go.uber.org/zap"
)

// errNotAuthenticated is the only detail a caller gets when a signed
// transaction is rejected by the authenticator.
var errNotAuthenticated = errors.New("transaction could not be authenticated")

// Handlers manages the set of ledger endpoints.
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

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// Metaparameters returns the parameters for the block the pool will become.
func (h Handlers) Metaparameters(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Metaparams(), http.StatusOK)
}

// Pool returns the transactions waiting to be sealed.
func (h Handlers) Pool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.Pool()

	resp := pool{
		Count:        len(txs),
		Transactions: txs,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns every sealed block.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.Chain()

	resp := chain{
		Length: len(blocks),
		Blocks: make([]block, len(blocks)),
	}
	for i, b := range blocks {
		resp.Blocks[i] = toBlock(b)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the balance for the account, counting the pool.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := h.resolve(r)
	if err != nil {
		return err
	}

	exists, bal := h.State.BalanceOf(addr)

	resp := Balance{
		Address: addr,
		Name:    h.NS.Lookup(addr),
		Exists:  exists,
		Balance: bal,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transactions returns every transaction the account took part in,
// sealed ones first.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr, err := h.resolve(r)
	if err != nil {
		return err
	}

	exists, records := h.State.TransactionsOf(addr)

	resp := History{
		Address: addr,
		Name:    h.NS.Lookup(addr),
		Exists:  exists,
		Records: records,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Challenge issues the one time token the sender must sign its next
// transaction against.
func (h Handlers) Challenge(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req ChallengeRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	token, fee, err := h.State.IssueChallenge(ctx, req.Sender)
	if err != nil {
		if errors.Is(err, auth.ErrMalformedAddress) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("issue challenge: %w", err)
	}

	resp := Challenge{
		Sender:    database.Normalize(req.Sender),
		Nonce:     token,
		Fee:       fee,
		ExpiresIn: int(h.State.ChallengeTTL() / time.Second),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Submit authenticates a signed transaction and admits it to the pool.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req auth.Request
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "sender", req.Sender, "receiver", req.Receiver, "value", req.Value)

	outcome, err := h.State.AuthenticateAndAdmit(ctx, req)
	if err != nil {
		switch {
		case auth.IsAuthError(err):
			return errs.NewTrusted(errNotAuthenticated, http.StatusUnauthorized)
		case errors.Is(err, auth.ErrMissingField),
			errors.Is(err, auth.ErrMalformedAddress),
			errors.Is(err, auth.ErrInvalidValue),
			errors.Is(err, state.ErrValueBelowFee):
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("submit: %w", err)
	}

	if outcome != state.Admitted {
		return errs.NewTrusted(errors.New(outcome.String()), http.StatusUnprocessableEntity)
	}

	resp := SubmitResponse{
		Status: outcome.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// resolve turns the account path parameter, a name or an address, into
// an address.
func (h Handlers) resolve(r *http.Request) (database.Address, error) {
	addr, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return "", errs.NewTrusted(err, http.StatusBadRequest)
	}
	return addr, nil
}
