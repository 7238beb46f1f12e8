package utils

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rplus-dev/rplus/internal/logging"
)

// WatchInterval is the redraw interval of watch mode
const WatchInterval = 2 * time.Second

// RunWithWatch runs fn once, or in watch mode clears the screen and runs it
// every interval until SIGINT or SIGTERM. Errors after the first draw are
// logged and the loop continues.
func RunWithWatch(fn func() error, enableWatch bool, interval time.Duration) error {
	if !enableWatch {
		return fn()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Print("\033[2J\033[H") // Clear screen and move cursor to top
	if err := fn(); err != nil {
		return err
	}

	for {
		select {
		case <-ticker.C:
			fmt.Print("\033[2J\033[H")
			if err := fn(); err != nil {
				logging.Error("Error updating display: %v", err)
			}
		case <-ctx.Done():
			fmt.Println("\nWatch mode interrupted")
			return nil
		}
	}
}
