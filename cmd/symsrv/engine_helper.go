package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"symsrv/internal/config"
	"symsrv/internal/resolver"
	"symsrv/internal/searchpath"
	"symsrv/internal/slogutil"
	"symsrv/internal/storage"
)

var (
	engineOnce   sync.Once
	sharedEngine *resolver.Engine
	sharedDB     *storage.DB
	engineErr    error
)

func configDir() string {
	if configDirFlag != "" {
		return configDirFlag
	}
	return config.DefaultDir()
}

// getEngine returns a shared resolution engine, lazily initialized from
// config.json, servers.toml, and the environment.
func getEngine() (*resolver.Engine, error) {
	engineOnce.Do(func() {
		dir := configDir()

		cfg, err := config.Load(dir)
		if err != nil {
			engineErr = fmt.Errorf("failed to load config: %w", err)
			return
		}

		logger, err := newLogger(cfg)
		if err != nil {
			engineErr = err
			return
		}

		elements := searchpath.Parse(cfg.SymbolPath)

		reg, err := config.LoadServers(filepath.Join(dir, "servers.toml"))
		if err != nil {
			engineErr = err
			return
		}
		elements = append(elements, reg.Elements()...)

		opts := resolver.Options{
			Elements: elements,
			CacheDir: cfg.CacheDir,
			Timeout:  time.Duration(cfg.TimeoutMs) * time.Millisecond,
			Logger:   logger,
		}

		if cfg.Inventory.Enabled {
			db, err := storage.Open(dir, logger)
			if err != nil {
				engineErr = fmt.Errorf("failed to open inventory: %w", err)
				return
			}
			sharedDB = db
			opts.Recorder = func(indexPath, source string, sizeBytes int64) {
				if err := db.RecordArtifact(indexPath, source, sizeBytes); err != nil {
					logger.Warn("Failed to record artifact", "indexPath", indexPath, "error", err)
				}
			}
		}

		sharedEngine = resolver.New(opts)
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared engine or exits on error.
func mustGetEngine() *resolver.Engine {
	engine, err := getEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine
}

// getInventory returns the inventory database, or an error when the
// inventory is disabled in config.
func getInventory() (*storage.DB, error) {
	if _, err := getEngine(); err != nil {
		return nil, err
	}
	if sharedDB == nil {
		return nil, fmt.Errorf("cache inventory is disabled (inventory.enabled=false)")
	}
	return sharedDB, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verboseFlag {
		level = slog.LevelDebug
	}

	if cfg.Logging.File != "" {
		logger, _, err := slogutil.NewFileLogger(cfg.Logging.File, level)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logger, nil
	}

	return slogutil.NewLogger(os.Stderr, level), nil
}
