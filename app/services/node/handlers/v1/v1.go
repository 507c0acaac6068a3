// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ledgerworks/blockchain/app/services/node/handlers/v1/private"
	"github.com/ledgerworks/blockchain/app/services/node/handlers/v1/public"
	"github.com/ledgerworks/blockchain/foundation/blockchain/state"
	"github.com/ledgerworks/blockchain/foundation/events"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
	"github.com/ledgerworks/blockchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/metaparameters", pbl.Metaparameters)
	app.Handle(http.MethodGet, version, "/pool", pbl.Pool)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/balance/:account", pbl.Balance)
	app.Handle(http.MethodGet, version, "/transactions/:account", pbl.Transactions)
	app.Handle(http.MethodPost, version, "/tx/challenge", pbl.Challenge)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.Submit)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/node/genesis", prv.CreateGenesis)
	app.Handle(http.MethodPost, version, "/node/load", prv.Load)
	app.Handle(http.MethodPost, version, "/node/mine", prv.Mine)
	app.Handle(http.MethodPost, version, "/node/mine/signal", prv.SignalMining)
	app.Handle(http.MethodPost, version, "/node/seal", prv.Seal)
}
