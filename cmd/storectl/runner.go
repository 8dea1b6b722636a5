/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/suparena/persistence/catalog"
	"github.com/suparena/persistence/config"
	"github.com/suparena/persistence/logging"
	"github.com/suparena/persistence/metrics"
)

// Runner holds the dependencies shared by every command
type Runner struct {
	output   io.Writer
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// RunnerOpts configures NewRunner
type RunnerOpts struct {
	Output io.Writer

	// Registry collects store metrics; a fresh registry is used when nil
	Registry *prometheus.Registry
}

// NewRunner creates a Runner
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	return &Runner{output: opts.Output, registry: opts.Registry}
}

// loadConfig reads the configuration and applies command line overrides
func (r *Runner) loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(config.Options{
		File:   cmd.String("config"),
		DotEnv: cmd.StringSlice("env-file"),
	})
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("kind") {
		cfg.Storage.Kind = cmd.String("kind")
	}
	if cmd.IsSet("provider") {
		cfg.Storage.Provider = cmd.String("provider")
	}
	if cmd.IsSet("connection") {
		cfg.Storage.ConnectionString = cmd.String("connection")
	}
	if cmd.IsSet("connection-name") {
		cfg.Storage.ConnectionStringName = cmd.String("connection-name")
	}
	if cmd.IsSet("file") {
		cfg.Storage.FilePath = cmd.String("file")
	}
	if cmd.IsSet("log-env") {
		cfg.Log.Env = cmd.String("log-env")
	}
	return cfg, nil
}

// open selects the data store and returns the catalog unit of work. The
// caller owns the returned unit of work and must close it.
func (r *Runner) open(ctx context.Context, cfg config.Config) (*catalog.UnitOfWork, *zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.Log.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if r.metrics == nil {
		m, err := metrics.New(r.registry)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		r.metrics = m
	}

	uow, err := catalog.Open(ctx, catalog.Options{Config: cfg, Logger: logger, Metrics: r.metrics})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return uow, logger, nil
}

// withCatalog loads configuration, opens the catalog and runs fn against it
func (r *Runner) withCatalog(ctx context.Context, cmd *cli.Command, fn func(*catalog.UnitOfWork, *zap.Logger) error) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	uow, logger, err := r.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := uow.Close(); err != nil {
			logger.Warn("failed to close data store", zap.Error(err))
		}
		_ = logger.Sync()
	}()
	return fn(uow, logger)
}

func (r *Runner) writeJSON(data any) error {
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}
