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

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/logger"
	"finance-tracker/internal/router"
	"finance-tracker/internal/service"
	"finance-tracker/internal/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	// run migrations
	sqlBackend := cfg.Database.Transactions == config.BackendSQLite
	if err := database.AutoMigrate(db, sqlBackend); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	var txStore store.TransactionStore
	if sqlBackend {
		txStore = store.NewSQLTransactions(db)
		log.Info().Str("path", cfg.Database.Path).Msg("transactions stored in sqlite")
	} else {
		client, err := connectMongo(cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("disconnect mongo")
			}
		}()
		txStore = store.NewMongoTransactions(client.Database(cfg.Mongo.Database))
		log.Info().Str("database", cfg.Mongo.Database).Msg("transactions stored in mongo")
	}

	// setup router
	r := router.SetupRouter(cfg, log, router.Deps{
		Users:  store.NewUsers(db),
		Ledger: service.NewLedger(txStore),
		Pinger: txStore,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func connectMongo(cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := database.EnsureMongoIndexes(ctx, client.Database(cfg.Database)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return client, nil
}
