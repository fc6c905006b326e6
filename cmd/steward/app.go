package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/core"
	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/llm"
	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/transform"
)

const defaultConfigPath = "steward.toml"

// app holds the wired dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	gw      *driver.SQLGateway
	graph   *driver.MemgraphDriver
	steward *core.Steward
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.ResolveTables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp connects the warehouse and the optional graph store and language
// model. Callers must call close.
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Server.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	gw, err := driver.Open(cfg.Warehouse, log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, gw: gw}
	a.steward = core.NewSteward(gw, cfg, log)
	a.steward.Transform = transform.NewRunner(cfg.Transform, log)

	if cfg.Graph.URI != "" {
		g, err := driver.NewMemgraphDriver(ctx, cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, log)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		if err := g.BuildIndices(ctx); err != nil {
			log.Warn("failed to build graph indices", "error", err)
		}
		a.graph = g
		a.steward.Graph = g
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM, log)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if llmClient != nil {
		a.steward.WithLLM(llmClient)
		log.Info("language model enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.graph != nil {
		if err := a.graph.Close(ctx); err != nil {
			a.log.Warn("failed to close graph driver", "error", err)
		}
	}
	if err := a.gw.Close(); err != nil {
		a.log.Warn("failed to close warehouse", "error", err)
	}
	a.log.Sync()
}
