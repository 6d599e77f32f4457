package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"frameworks/api_tunnels/internal/app"
	"frameworks/api_tunnels/internal/cli"
	pkgconfig "frameworks/api_tunnels/pkg/config"
)

func main() {
	pkgconfig.LoadEnv(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(app.Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		cli.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
