package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "vending_control/docs"
	"vending_control/internal/bus"
	"vending_control/internal/catalog"
	"vending_control/internal/console"
	"vending_control/internal/handlers"
	"vending_control/internal/logger"
	"vending_control/internal/machine"
	"vending_control/internal/relay"
	"vending_control/internal/repository"
	"vending_control/internal/server"
	"vending_control/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml, then init the singleton logger with the configured level
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log_level"))
	defer log.Flush()

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// identity material; without it the machine cannot authenticate anyone
	secret, admins := loadKeys(log)

	// wire dependencies
	repos := repository.NewRepository(db)
	store := service.NewSnapshotStore()
	services := service.NewService(repos, store, signingKey(log), viper.GetDuration("auth.token_ttl"))
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// relay connection and authenticated command queue
	client, err := relay.Dial(ctx, viper.GetString("relay.address"), secret, log)
	if err != nil {
		log.Fatalw("failed to connect to relay", "addr", viper.GetString("relay.address"), "err", err)
	}
	defer func() { _ = client.Close() }()

	authority, err := bus.NewAuthority(admins)
	if err != nil {
		log.Fatalw("invalid admin configuration", "err", err)
	}
	commandBus := bus.New(log, client, authority, viper.GetInt("queue.capacity"))
	go func() {
		if err := commandBus.Run(ctx); err != nil {
			log.Errorw("command bus stopped", "err", err)
		}
	}()

	// machine, console, and the single-owner control loop
	m := machine.New(log, catalog.New())
	input := console.New(log, os.Stdin, os.Stdout, store).Run(ctx)
	ctrl := machine.NewController(
		log, m,
		commandBus.Commands(), input,
		repos.EventRepo,
		bus.NewBroadcaster(log, client, authority.Admins()),
		store,
		machine.ControllerConfig{
			WatchdogTick: viper.GetDuration("watchdog.tick"),
			IdleTimeout:  viper.GetDuration("watchdog.idle_timeout"),
			OnTimeout:    viper.GetString("watchdog.on_timeout"),
		},
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil {
			log.Errorw("controller stopped", "err", err)
		}
	}()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, done, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

// loadKeys parses the machine secret key and the trusted admin public keys.
// Both are mandatory; a machine with no trusted admins would silently drop
// every remote command.
func loadKeys(log *logger.Logger) (relay.SecretKey, []relay.Identity) {
	secret, err := relay.ParseSecretKey(viper.GetString("machine.secret_key"))
	if err != nil {
		log.Fatalw("machine.secret_key missing or invalid", "err", err)
	}

	raw := viper.GetStringSlice("admins.public_keys")
	if len(raw) == 0 {
		log.Fatalw("admins.public_keys must list at least one key")
	}
	admins := make([]relay.Identity, 0, len(raw))
	for _, s := range raw {
		id, err := relay.ParseIdentity(s)
		if err != nil {
			log.Fatalw("invalid admin public key", "key", s, "err", err)
		}
		admins = append(admins, id)
	}
	return secret, admins
}

func signingKey(log *logger.Logger) string {
	key := viper.GetString("auth.signing_key")
	if key == "" {
		log.Fatalw("auth.signing_key must be set")
	}
	return key
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until a termination signal arrives or the control
// loop ends on its own (console exit, Shutdown command, idle shutdown policy),
// then performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, ctrlDone <-chan struct{}, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Infow("shutting down server...")
	case <-ctrlDone:
		log.Infow("control loop finished, shutting down server...")
	}

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
