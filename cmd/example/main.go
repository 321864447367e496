// Package main runs a usage example of the supervisor: register heartbeating
// workers, start the watchdog, and shut down on signal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diego-miranda-ng/watchkeeper"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: watchkeeper.RenameLevels,
	}))

	sup := watchkeeper.New(
		watchkeeper.WithLogger(logger),
		watchkeeper.WithHeartbeatTimeout(3*time.Second),
		watchkeeper.WithPollInterval(300*time.Millisecond),
	)

	if err := sup.Register("main", tickerBody(500*time.Millisecond)); err != nil {
		fmt.Fprintln(os.Stderr, "register main:", err)
		os.Exit(1)
	}
	if err := sup.Register("fetcher", fetcherBody(logger)); err != nil {
		fmt.Fprintln(os.Stderr, "register fetcher:", err)
		os.Exit(1)
	}
	if err := sup.StartWatchdog("main"); err != nil {
		fmt.Fprintln(os.Stderr, "start watchdog:", err)
		os.Exit(1)
	}

	// Run until interrupt (Ctrl+C) or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("shutting down...")
	sup.StopWatchdog()
	sup.StopAll(2 * time.Second)
	fmt.Println("stopped")
}

// tickerBody heartbeats every tick until asked to stop.
func tickerBody(tick time.Duration) watchkeeper.Body {
	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		for {
			life.Heartbeat()
			if life.Wait(tick) {
				return watchkeeper.Cancelled()
			}
		}
	})
}

var errFlaky = errors.New("upstream unavailable")

// fetcherBody simulates calls to a flaky upstream, hardened with a circuit
// breaker and retry.
func fetcherBody(logger *slog.Logger) watchkeeper.Body {
	cb := watchkeeper.NewCircuitBreaker(3, 5*time.Second,
		watchkeeper.WithOnOpen(func() { logger.Warn("upstream circuit opened") }),
		watchkeeper.WithOnClose(func() { logger.Info("upstream circuit closed") }),
	)

	fetch := func(ctx context.Context) (int, error) {
		if rand.Intn(3) == 0 {
			return 0, errFlaky
		}
		return rand.Intn(100), nil
	}

	return watchkeeper.BodyFunc(func(life *watchkeeper.Lifeline) watchkeeper.Outcome {
		for {
			life.Heartbeat()

			n, err := watchkeeper.Guard(cb, func() (int, error) {
				return watchkeeper.Retry(context.Background(), fetch,
					watchkeeper.WithMaxRetries(2),
					watchkeeper.WithInitialDelay(50*time.Millisecond),
				)
			})
			switch {
			case errors.Is(err, watchkeeper.ErrCircuitOpen):
				logger.Warn("fetch skipped, circuit open")
			case err != nil:
				logger.Error("fetch failed", "error", err)
			default:
				logger.Debug("fetched", "value", n)
			}

			if life.Wait(time.Second) {
				return watchkeeper.Cancelled()
			}
		}
	})
}
