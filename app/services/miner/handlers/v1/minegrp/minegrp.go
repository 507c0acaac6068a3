// Package minegrp maintains the group of handlers for mining.
package minegrp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ledgerworks/blockchain/business/web/errs"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
	"github.com/ledgerworks/blockchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of mining endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Miner *miner.Miner
}

// Mine performs the proof of work for the posted challenge and returns the
// solution with the reward transactions appended to the pool. The search
// stops if the caller goes away.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ch miner.Challenge
	if err := web.Decode(r, &ch); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if ch.Difficulty < 0 || ch.Difficulty > 64 {
		return errs.NewTrusted(fmt.Errorf("difficulty %d out of range", ch.Difficulty), http.StatusBadRequest)
	}

	h.Log.Infow("mine", "traceid", v.TraceID, "index", ch.Index, "difficulty", ch.Difficulty, "pool", len(ch.Pool))

	sol, err := h.Miner.Mine(ctx, ch)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}

	return web.Respond(ctx, w, sol, http.StatusOK)
}
