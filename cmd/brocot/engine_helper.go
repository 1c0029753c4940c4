package main

import (
	"fmt"

	"brocot/internal/config"
	"brocot/internal/logging"
	"brocot/internal/storage"
	"brocot/internal/tree"
)

// newLogger builds the CLI logger from the config and verbosity flags.
func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.LogLevel(cfg.Logging.Level)
	if verboseFlag {
		level = logging.DebugLevel
	}
	if quietFlag {
		// Error level still surfaces failures; routine chatter is gone.
		level = logging.ErrorLevel
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})
}

// openEngine loads config, opens the database, and builds an engine bound
// to the effective scope. The returned closer must run before exit.
func openEngine() (*tree.Engine, *storage.DB, func(), error) {
	cfg, err := config.LoadConfig(dirFlag)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)
	db, err := storage.Open(dirFlag, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	engine := tree.NewEngine(db, cfg, logger).WithScope(resolveScope(cfg.Scope))
	return engine, db, func() { _ = db.Close() }, nil
}
