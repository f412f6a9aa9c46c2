package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/chapter-digest/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Ctrl+C stops long-running commands (speak, watch, dictation) cleanly.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	code := cli.Execute(ctx)
	cancel()
	os.Exit(code)
}
