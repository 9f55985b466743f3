package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bkyle/usb-rw/pkg/ui"
)

var version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, ui.InfoStyle.Render("👋 Interrupted"))
	default:
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(fmt.Sprintf("❌ %v", err)))
		stop()
		os.Exit(1)
	}
}
