// Command ailab is a retrieval-augmented generation toolkit over hosted
// completion, embedding and vector search services.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ailab/internal/adapters/driving/cli"
	"github.com/custodia-labs/ailab/internal/app"
	"github.com/custodia-labs/ailab/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetRuntimeFactory(func(configDir string) (cli.Runtime, error) {
		return app.New(configDir)
	})

	if err := cli.Execute(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
