// ircecho - a minimal IRC bot that answers PINGs and echoes messages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ircecho/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ircecho: %v\n", err)
		os.Exit(1)
	}
}
