package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"neo4jpg/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, "neo4jpg", os.Args[1:])
	stop()
	os.Exit(code)
}
