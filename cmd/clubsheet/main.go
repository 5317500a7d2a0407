// Command clubsheet runs club treasurer operations against a workbook.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clubsheet/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, config.FromEnv(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "clubsheet:", err)
		stop()
		os.Exit(1)
	}
}
