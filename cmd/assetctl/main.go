// Command assetctl is the operator CLI for assetvault: it applies metadata
// migrations and lists, deletes or purges an owner's assets directly against
// the configured stores.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "assetctl: %v\n", err)
		os.Exit(1)
	}
}
