// Package handlers manages the different versions of the API.
package handlers

import (
	"net/http"
	"os"

	"github.com/ledgerworks/blockchain/app/services/miner/handlers/v1/minegrp"
	"github.com/ledgerworks/blockchain/business/web/mid"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
	"github.com/ledgerworks/blockchain/foundation/web"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Miner    *miner.Miner
}

// APIMux constructs a http.Handler with all application routes defined.
func APIMux(cfg MuxConfig) http.Handler {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Panics(),
	)

	mgh := minegrp.Handlers{
		Log:   cfg.Log,
		Miner: cfg.Miner,
	}

	const version = "v1"
	app.Handle(http.MethodPost, version, "/mine", mgh.Mine)

	return app
}
