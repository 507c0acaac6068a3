package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ledgerworks/blockchain/app/services/node/handlers"
	"github.com/ledgerworks/blockchain/foundation/blockchain/accounts"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	authmem "github.com/ledgerworks/blockchain/foundation/blockchain/auth/memory"
	"github.com/ledgerworks/blockchain/foundation/blockchain/auth/redisstore"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database/storage/disk"
	"github.com/ledgerworks/blockchain/foundation/blockchain/genesis"
	"github.com/ledgerworks/blockchain/foundation/blockchain/miner"
	"github.com/ledgerworks/blockchain/foundation/blockchain/state"
	"github.com/ledgerworks/blockchain/foundation/blockchain/worker"
	"github.com/ledgerworks/blockchain/foundation/events"
	"github.com/ledgerworks/blockchain/foundation/logger"
	"github.com/ledgerworks/blockchain/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
			PrivateSecret   string        `conf:"mask"`
		}
		State struct {
			DBPath         string        `conf:"default:zblock/blocks/"`
			GenesisPath    string        `conf:"default:zblock/genesis.json"`
			Querier        string        `conf:"default:scan,help:scan or index"`
			VerifyProof    bool          `conf:"default:false"`
			MiningInterval time.Duration `conf:"default:0s,help:0 disables the mining ticker"`
		}
		Miner struct {
			Mode    string        `conf:"default:local,help:local or remote"`
			Address string        `conf:"default:0xbee6ace826ec3de1b6349888b9151b92522f7f76"`
			Host    string        `conf:"default:http://0.0.0.0:4501"`
			Timeout time.Duration `conf:"default:10m"`
		}
		Auth struct {
			Store         string        `conf:"default:memory,help:memory or redis"`
			TTL           time.Duration `conf:"default:5m"`
			RedisHost     string        `conf:"default:0.0.0.0:6379"`
			RedisPassword string        `conf:"mask"`
			RedisDB       int           `conf:"default:0"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "single authority ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Blockchain Support

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Publish(s)
	}

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	strg, err := disk.New(cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open block storage: %w", err)
	}

	store, err := challengeStore(cfg.Auth.Store, cfg.Auth.RedisHost, cfg.Auth.RedisPassword, cfg.Auth.RedisDB)
	if err != nil {
		return err
	}

	sealer, err := newSealer(cfg.Miner.Mode, cfg.Miner.Address, cfg.Miner.Host, cfg.Miner.Timeout, ev)
	if err != nil {
		return err
	}

	var checker state.ProofChecker = state.TrustMiner{}
	if cfg.State.VerifyProof {
		checker = state.VerifyProof{}
	}

	var querier accounts.Querier
	switch cfg.State.Querier {
	case "scan":
		querier = accounts.NewScanner()
	case "index":
		querier = accounts.NewIndex()
	default:
		return fmt.Errorf("unknown querier %q", cfg.State.Querier)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	st, err := state.New(state.Config{
		Storage:       strg,
		Genesis:       gen,
		Authenticator: auth.New(store, cfg.Auth.TTL),
		Sealer:        sealer,
		ProofChecker:  checker,
		Querier:       querier,
		EvHandler:     ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the background mining workflow. The
	// worker will register itself with the state.
	worker.Run(st, cfg.State.MiningInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	if cfg.Web.PrivateSecret == "" {
		log.Infow("startup", "status", "no private secret set, operator routes will refuse every request")
	}

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Secret:   cfg.Web.PrivateSecret,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// challengeStore constructs the store that holds issued challenges.
func challengeStore(kind string, host string, password string, db int) (auth.Store, error) {
	switch kind {
	case "memory":
		return authmem.New(), nil

	case "redis":
		store := redisstore.New(host, password, db)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown challenge store %q", kind)
}

// newSealer constructs the component that performs the proof of work.
func newSealer(mode string, address string, host string, timeout time.Duration, ev func(v string, args ...any)) (state.Sealer, error) {
	switch mode {
	case "local":
		addr, err := database.ToAddress(address)
		if err != nil {
			return nil, fmt.Errorf("miner address: %w", err)
		}

		return miner.New(miner.Config{
			Address:   addr,
			Rand:      miner.SystemRand{},
			EvHandler: ev,
		}), nil

	case "remote":
		return miner.NewClient(host, timeout), nil
	}

	return nil, fmt.Errorf("unknown miner mode %q", mode)
}
