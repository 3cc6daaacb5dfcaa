package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	serviceName    = "gridiron"
	serviceVersion = "0.3.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	executeContext(ctx)
}
