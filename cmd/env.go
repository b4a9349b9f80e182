package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abhisek/opicdrill/internal/applog"
	"github.com/abhisek/opicdrill/internal/compose"
	"github.com/abhisek/opicdrill/internal/config"
	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/queue"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/seed"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// env holds the opened store and the services built on it.
type env struct {
	cfg    config.Config
	store  *store.Store
	logger *log.Logger

	lib       *library.Store
	provider  llm.Provider // nil when no LLM is configured
	generator *generate.Service
	composer  *compose.Composer
	queue     *queue.Manager
	policy    mastery.Policy

	closers []io.Closer
}

// setupOptions selects which parts of the environment to build.
type setupOptions struct {
	// fileLog sends logs to the log file instead of stderr. The TUI owns
	// the terminal, so interactive runs set it.
	fileLog bool

	// needLLM fails setup when no provider can be built.
	needLLM bool
}

// setup loads configuration, opens the store, loads the library and wires
// the generation services. The caller must Close the returned env.
func setup(cmd *cobra.Command, opts setupOptions) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	e := &env{cfg: cfg, policy: mastery.DefaultPolicy()}
	if opts.fileLog {
		logger, f, err := applog.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		e.logger = logger
		e.closers = append(e.closers, f)
	} else {
		logger, err := applog.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		e.logger = logger
	}

	st, err := store.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.logger.Debug("store opened", "driver", cfg.DBDriver)

	e.lib = library.NewStore(st.BlobRepo(), e.policy, e.logger)
	if err := e.lib.Load(ctx); err != nil {
		e.Close()
		return nil, err
	}
	if n, err := seed.Install(ctx, e.lib, time.Now()); err != nil {
		e.logger.Warn("install built-in patterns", "err", err)
	} else if n > 0 {
		e.logger.Info("installed built-in patterns", "count", n)
	}

	var src queue.Source
	if cfg.LLM.Provider == llm.BackendMock {
		cfg.LLM.Mock = generate.DemoProvider()
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), e.logger)
	switch {
	case err != nil && opts.needLLM:
		e.Close()
		return nil, err
	case err != nil:
		e.logger.Warn("LLM provider not configured; generation disabled", "err", err)
	default:
		genOpts := []generate.Option{generate.WithKeys(e.lib)}
		if cfg.Seed != 0 {
			genOpts = append(genOpts, generate.WithSeed(cfg.Seed))
		}
		e.provider = provider
		e.generator = generate.New(provider, generate.DefaultConfig(), genOpts...)
		e.composer = compose.New(e.generator, e.lib)
		src = e.generator
	}

	e.queue = queue.NewManager(queue.Options{
		Library: e.lib,
		Source:  src,
		Events:  st.EventRepo(),
		Blobs:   st.BlobRepo(),
		Policy:  e.policy,
		Logger:  e.logger,
		Seed:    cfg.Seed,
	})
	return e, nil
}

// deps returns the dependencies handed to the TUI screens.
func (e *env) deps() screen.Deps {
	return screen.Deps{
		Library:   e.lib,
		Queue:     e.queue,
		Composer:  e.composer,
		Generator: e.generator,
		Events:    e.store.EventRepo(),
		Policy:    e.policy,
		Logger:    e.logger,
	}
}

// Close waits for background refills, then releases the store and log file.
func (e *env) Close() {
	if e.queue != nil {
		e.queue.Wait()
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("close store", "err", err)
		}
	}
	for _, c := range e.closers {
		c.Close()
	}
}
