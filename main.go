package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fanhub/config"
	"fanhub/engine"
	"fanhub/gateway"
	"fanhub/identity"
	"fanhub/models"
	"fanhub/store"
	"fanhub/ui"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := config.Load()

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if cfg.GroupID == 0 {
		return fmt.Errorf("FANHUB_GROUP_ID is required")
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	session, err := identity.Attach(st, models.Address(cfg.Address), models.AuthToken(cfg.AuthToken))
	if err != nil {
		return fmt.Errorf("attach identity: %w", err)
	}

	contract := gateway.NewRPCContract(cfg.RPCURL)
	messages := gateway.NewHTTPMessages(cfg.MessageAPIURL)
	groupID := models.GroupID(cfg.GroupID)
	interval := time.Duration(cfg.PollIntervalMs) * time.Millisecond

	eng := engine.New(log)
	defer eng.Close()

	app := ui.NewApp(session, groupID, log)

	access := engine.NewAccessSynchronizer(eng, contract, app, log, engine.Inputs{
		Auth:    session.Auth,
		GroupID: groupID,
		Address: session.Address,
	}, interval)
	stream := engine.NewMessageStream(eng, messages, app, log, session.Auth, groupID, session.Address, interval)
	app.Bind(access, stream)

	// Warm the on-demand reads so the first member render has the
	// roster and pending list.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := access.Refresh(ctx); err != nil {
			log.Warn("initial refresh incomplete", zap.Error(err))
		}
	}()

	log.Info("starting",
		zap.Int64("group", cfg.GroupID),
		zap.String("address", string(session.Address)),
		zap.Duration("pollInterval", interval))

	return app.Run()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// The terminal belongs to the TUI; logs go to a file next to the db.
	cfg.OutputPaths = []string{"fanhub.log"}
	return cfg.Build()
}
