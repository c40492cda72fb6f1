// Command kvcache inspects and edits a kvcache namespace from the shell.
//
//	kvcache --config kvcache.yaml set greeting hello --ttl 60
//	kvcache get greeting
//	kvcache keys 'greet*'
//	kvcache status
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
