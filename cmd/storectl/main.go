/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command storectl manages the product catalog through whichever data store
// the configuration selects.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/suparena/persistence/errors"
	_ "github.com/suparena/persistence/provider/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(NewRunner(RunnerOpts{}))
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "storectl: %v\n", err)
		if errors.IsConfigError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
