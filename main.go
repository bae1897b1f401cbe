package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/km-arc/go-opengenerics/framework/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New()
	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "opengenerics: %v\n", err)
		os.Exit(1)
	}
}
