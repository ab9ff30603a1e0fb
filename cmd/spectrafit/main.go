// Command spectrafit fits peak models to one-dimensional spectra.
//
// Usage:
//
//	spectrafit DATA -i INPUT [flags]
//
// Examples:
//
//	spectrafit data.csv -i fit.yaml
//	spectrafit data.txt -i fit.json -o results/run1 -e0 0 -e1 5 --oversampling
//	spectrafit -v
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/spectrafit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.NewApp().Run(ctx, os.Args)
	stop()
	os.Exit(code)
}
