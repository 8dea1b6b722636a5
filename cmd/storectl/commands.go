/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/suparena/persistence"
	"github.com/suparena/persistence/catalog"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/httpapi"
	"github.com/suparena/persistence/metrics"
)

const shutdownTimeout = 10 * time.Second

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "storectl",
		Usage:   "Manage the product catalog in a file or database data store",
		Version: persistence.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a JSON, YAML or TOML configuration file",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
				Value: []string{".env"},
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Storage kind: File or Database",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Storage provider, e.g. Json, Xml, SqliteNative, PostgreSQL",
			},
			&cli.StringFlag{
				Name:  "connection",
				Usage: "Database connection string",
			},
			&cli.StringFlag{
				Name:  "connection-name",
				Usage: "Name of a configured connection string",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Data file path for file providers",
			},
			&cli.StringFlag{
				Name:  "log-env",
				Usage: "Logging profile: dev or prod",
			},
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		infoCommand, listCommand, addCommand, updateCommand, deleteCommand, migrateCommand, serveCommand, versionCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func infoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show the active data source",
		Action: r.Info,
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List products",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: r.List,
	}
}

func productFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Product name"},
		&cli.StringFlag{Name: "category", Usage: "Product category"},
		&cli.StringFlag{Name: "price", Usage: "Unit price, e.g. 19.99"},
		&cli.IntFlag{Name: "quantity", Usage: "Units in stock"},
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a product and save",
		Flags: append(productFlags(),
			&cli.IntFlag{Name: "id", Usage: "Product Id; 0 assigns the next free Id"},
		),
		Action: r.Add,
	}
}

func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Change fields of a product and save",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     productFlags(),
		Action:    r.Update,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a product and save",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Action:    r.Delete,
	}
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply database schema migrations",
		Action: r.Migrate,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address; defaults to http.addr from the configuration"},
			&cli.StringSliceFlag{Name: "cors", Usage: "Allowed CORS origins"},
		},
		Action: r.Serve,
	}
}

func versionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			r.writePlainln("%s", persistence.GetVersionInfo())
			return nil
		},
	}
}

// Info prints the active data source
func (r *Runner) Info(ctx context.Context, cmd *cli.Command) error {
	return r.withCatalog(ctx, cmd, func(uow *catalog.UnitOfWork, _ *zap.Logger) error {
		source := uow.Source()
		r.writePlainln("Data source: %s", source)

		products, err := uow.Products.GetAll(ctx)
		if err != nil {
			return err
		}
		r.writePlainln("Products:    %d", len(products))
		return nil
	})
}

// List prints every product
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	return r.withCatalog(ctx, cmd, func(uow *catalog.UnitOfWork, _ *zap.Logger) error {
		products, err := uow.Products.GetAll(ctx)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(products)
		}

		tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQUANTITY")
		for _, p := range products {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Quantity)
		}
		return tw.Flush()
	})
}

// Add inserts a product and saves the catalog
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	product := &catalog.Product{ID: int(cmd.Int("id"))}
	if err := applyProductFlags(cmd, product); err != nil {
		return err
	}
	if strings.TrimSpace(product.Name) == "" {
		return errors.NewValidationError("name", "is required")
	}
	product.Touch()

	return r.withCatalog(ctx, cmd, func(uow *catalog.UnitOfWork, _ *zap.Logger) error {
		result, err := uow.Products.Add(ctx, product)
		if err != nil {
			return err
		}
		if !result.Success {
			return stderrors.New(result.ErrorMessage)
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return err
		}
		r.writePlainln("Added product %d", product.ID)
		return nil
	})
}

// Update changes the fields given on the command line and saves the catalog
func (r *Runner) Update(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	return r.withCatalog(ctx, cmd, func(uow *catalog.UnitOfWork, _ *zap.Logger) error {
		existing, err := uow.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated := *existing
		if err := applyProductFlags(cmd, &updated); err != nil {
			return err
		}
		updated.Touch()

		result, err := uow.Products.Update(ctx, &updated)
		if err != nil {
			return err
		}
		if !result.Success {
			return stderrors.New(result.ErrorMessage)
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return err
		}
		r.writePlainln("Updated product %d", id)
		return nil
	})
}

// Delete removes a product and saves the catalog
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	return r.withCatalog(ctx, cmd, func(uow *catalog.UnitOfWork, _ *zap.Logger) error {
		result, err := uow.Products.DeleteByID(ctx, id)
		if err != nil {
			return err
		}
		if !result.Success {
			return stderrors.New(result.ErrorMessage)
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return err
		}
		r.writePlainln("Deleted product %d", id)
		return nil
	})
}

// Migrate opens the database store with migrations enabled
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Storage.IsDatabase() {
		return errors.NewConfigError("Storage.Kind", "migrate requires the %s kind, got %q", "Database", cfg.Storage.Kind)
	}
	cfg.Storage.AutoMigrate = true

	uow, logger, err := r.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer uow.Close()

	r.writePlainln("Migrated %s", uow.Source())
	return nil
}

// Serve runs the HTTP surface until ctx is canceled
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		cfg.HTTP.Addr = cmd.String("addr")
	}

	uow, logger, err := r.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer uow.Close()

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpapi.New(uow, httpapi.Options{
			AllowedOrigins: cmd.StringSlice("cors"),
			Metrics:        metrics.Handler(r.registry),
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", server.Addr), zap.Stringer("source", uow.Source()))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func applyProductFlags(cmd *cli.Command, p *catalog.Product) error {
	if cmd.IsSet("name") {
		p.Name = cmd.String("name")
	}
	if cmd.IsSet("category") {
		p.Category = cmd.String("category")
	}
	if cmd.IsSet("price") {
		price, err := decimal.NewFromString(cmd.String("price"))
		if err != nil {
			return errors.NewValidationError("price", err.Error())
		}
		p.Price = price
	}
	if cmd.IsSet("quantity") {
		p.Quantity = int(cmd.Int("quantity"))
	}
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
