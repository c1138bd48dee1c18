package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/client/rest"
	"github.com/xenking/storefront-checkout/internal/domain/order"
	"github.com/xenking/storefront-checkout/internal/domain/payment"
	"github.com/xenking/storefront-checkout/internal/handler"
	"github.com/xenking/storefront-checkout/internal/session"
	"github.com/xenking/storefront-checkout/internal/storage/memory"
	"github.com/xenking/storefront-checkout/internal/storage/postgres"
	"github.com/xenking/storefront-checkout/internal/storage/redis"
	"github.com/xenking/storefront-checkout/pkg/health"
	"github.com/xenking/storefront-checkout/pkg/httpmiddleware"
)

const serviceName = "storefront-checkout"

// expiringStore is a session store that needs periodic sweeping.
type expiringStore interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("session_store", cfg.Session.Store),
	)

	healthSvc := health.New()

	// PostgreSQL pool + migrations, when configured.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		if pool, err = postgres.NewPool(ctx, cfg.DatabaseURL); err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	}

	// Session store.
	var repo session.Repository
	switch cfg.Session.Store {
	case StorePostgres:
		repo = postgres.NewSessionRepository(pool, cfg.Session.TTL)
	case StoreRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = client.Close() }()
		repo = redis.NewSessionRepository(client, cfg.Session.TTL)
	default:
		repo = memory.NewSessionRepository(cfg.Session.TTL)
	}
	healthSvc.AddReadinessCheck("session_store", 5*time.Second, health.PingCheck(repo))

	// Backend services.
	backend, err := rest.New(rest.Config{
		BaseURL:        cfg.Backend.BaseURL,
		Timeout:        cfg.Backend.Timeout,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create backend client")
	}
	healthSvc.AddReadinessCheck("backend", 5*time.Second, health.PingCheck(backend))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))

	carts := backend.Carts()
	orders := backend.Orders()

	// Sessions.
	metrics, err := session.NewMetrics(m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create metrics")
	}
	manager := session.NewManager(repo, session.Services{
		Carts:    carts,
		Profiles: backend.Profiles(),
		Payments: payment.NewCardConfirmer(cfg.Checkout.AllowTestCards),
		Submitter: order.NewSubmitter(orders, carts, order.SubmitterConfig{
			ClearRemoteCart: cfg.Checkout.ClearRemoteCart,
			TracerProvider:  m.TracerProvider(),
		}),
	}, metrics)

	if store, ok := repo.(expiringStore); ok && cfg.Session.CleanupInterval > 0 {
		go sweepSessions(ctx, store, cfg.Session.CleanupInterval)
	}

	// HTTP handlers.
	h := handler.NewHandler(manager, orders)
	api := h.Routes()
	if pool != nil && cfg.APIKeyPepper != "" {
		security := handler.NewSecurityHandler(postgres.NewAPIKeyRepository(pool), []byte(cfg.APIKeyPepper))
		api = httpmiddleware.Wrap(api, security.Middleware())
	} else {
		lg.Warn("API key auth disabled")
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.Backend.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", handler.APIKeyHeader, "api_key", httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Location"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument(serviceName, m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// sweepSessions deletes expired sessions until ctx is done.
func sweepSessions(ctx context.Context, store expiringStore, interval time.Duration) {
	lg := zctx.From(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				lg.Warn("Session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				lg.Info("Expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}
