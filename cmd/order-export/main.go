// Command order-export writes the order history of one or more users to
// gzip-compressed JSON Lines files, one file per user.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/xenking/storefront-checkout/internal/client/rest"
)

func main() {
	var (
		backendURL  string
		users       string
		outDir      string
		concurrency int
		timeout     time.Duration
	)

	flag.StringVar(&backendURL, "backend-url", "", "base URL of the storefront backend (or STOREFRONT_BACKEND_BASE_URL env)")
	flag.StringVar(&users, "users", "", "comma-separated user ids to export")
	flag.StringVar(&outDir, "out", "exports", "output directory")
	flag.IntVar(&concurrency, "concurrency", 4, "users exported in parallel")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-request backend timeout")
	flag.Parse()

	if backendURL == "" {
		backendURL = os.Getenv("STOREFRONT_BACKEND_BASE_URL")
	}
	if backendURL == "" {
		slog.Error("backend URL is required: set --backend-url or STOREFRONT_BACKEND_BASE_URL")
		os.Exit(1)
	}
	userIDs := splitList(users)
	if len(userIDs) == 0 {
		slog.Error("at least one user id is required: set --users")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, err := rest.New(rest.Config{BaseURL: backendURL, Timeout: timeout})
	if err != nil {
		slog.Error("create backend client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	exp := &exporter{orders: client.Orders(), dir: outDir, concurrency: concurrency}
	if err := exp.run(ctx, userIDs); err != nil {
		slog.Error("order export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order export completed successfully", slog.Int("users", len(userIDs)))
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
