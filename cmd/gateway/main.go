package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"microsite-gateway/internal/auth"
	iconfig "microsite-gateway/internal/config"
	"microsite-gateway/internal/correlation"
	"microsite-gateway/internal/gatekeeper"
	hhttp "microsite-gateway/internal/handler/http"
	"microsite-gateway/internal/observability/logging"
	"microsite-gateway/internal/observability/slo"
	"microsite-gateway/internal/observability/tracing"
	"microsite-gateway/internal/resilience/circuitbreaker"
	"microsite-gateway/internal/resilience/retry"
	"microsite-gateway/pkg/config"
	"microsite-gateway/pkg/ratelimit"
)

func main() {
	logger := initLogger()

	secret := validateSessionSecret(logger)

	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		logger.Error("failed to load gateway configuration", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Setup("microsite-gateway")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	store := initCounterStore(logger, cfg)
	components := setupGateway(logger, cfg, secret, store)

	runGateway(logger, cfg, components)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateSessionSecret validates SESSION_SECRET at startup.
// This prevents the gateway from starting with an empty or weak signing key.
func validateSessionSecret(logger *slog.Logger) []byte {
	secret, err := iconfig.ValidateSessionSecret()
	if err != nil {
		logger.Error("session secret validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	return secret
}

// initCounterStore builds the rate limit counter store for the configured
// backend and wraps it with circuit breaker protection.
func initCounterStore(logger *slog.Logger, cfg *config.GatewayConfig) *circuitbreaker.StoreCircuitBreaker {
	var backing ratelimit.AtomicCounterStore

	switch cfg.StoreBackend {
	case "redis":
		var store *ratelimit.RedisCounterStore
		err := retry.WithBackoff(context.Background(), retry.RedisConfig(), func() error {
			var connErr error
			store, connErr = ratelimit.NewRedisCounterStore(ratelimit.RedisConfig{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			return connErr
		})
		if err != nil {
			logger.Error("failed to connect to redis rate limit store",
				slog.String("addr", cfg.RedisAddr),
				slog.Any("error", err))
			os.Exit(1)
		}
		backing = store
		logger.Info("rate limit store: redis", slog.String("addr", cfg.RedisAddr))
	default:
		backing = ratelimit.NewMemoryCounterStore(nil)
		logger.Info("rate limit store: in-memory")
	}

	return circuitbreaker.NewStoreCircuitBreaker(backing)
}

// GatewayComponents holds everything runGateway needs to serve and shut down.
type GatewayComponents struct {
	Handler    http.Handler
	MetricsMux *http.ServeMux
	Store      *circuitbreaker.StoreCircuitBreaker
	Tracker    *slo.Tracker
	Limiters   map[gatekeeper.TrafficClass]*ratelimit.Limiter
	Pinger     hhttp.Pinger
}

// setupGateway wires the pipeline, the upstream proxy, and the middleware chain.
func setupGateway(logger *slog.Logger, cfg *config.GatewayConfig, secret []byte, store *circuitbreaker.StoreCircuitBreaker) *GatewayComponents {
	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		logger.Error("invalid upstream URL",
			slog.String("url", cfg.UpstreamURL),
			slog.Any("error", err))
		os.Exit(1)
	}

	identity, err := gatekeeper.NewIdentityExtractor(cfg.TrustedProxies)
	if err != nil {
		logger.Error("invalid trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if len(cfg.TrustedProxies) > 0 {
		logger.Info("trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(cfg.TrustedProxies)))
	} else {
		logger.Info("using RemoteAddr for client identity (proxy headers ignored)")
	}

	rlMetrics := ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	limiters := map[gatekeeper.TrafficClass]*ratelimit.Limiter{
		gatekeeper.TrafficAuth:    ratelimit.NewLimiter("auth", cfg.Policies.Auth, store, nil, rlMetrics),
		gatekeeper.TrafficPayment: ratelimit.NewLimiter("payment", cfg.Policies.Payment, store, nil, rlMetrics),
		gatekeeper.TrafficAPI:     ratelimit.NewLimiter("api", cfg.Policies.API, store, nil, rlMetrics),
		gatekeeper.TrafficPublic:  ratelimit.NewLimiter("public", cfg.Policies.Public, store, nil, rlMetrics),
	}
	logger.Info("rate limiting initialized",
		slog.Int("auth_limit", cfg.Policies.Auth.MaxRequests),
		slog.Duration("auth_window", cfg.Policies.Auth.Window),
		slog.Int("payment_limit", cfg.Policies.Payment.MaxRequests),
		slog.Int("api_limit", cfg.Policies.API.MaxRequests),
		slog.Int("public_limit", cfg.Policies.Public.MaxRequests))

	resolver := circuitbreaker.NewResolverCircuitBreaker(
		gatekeeper.NewStaticTenantResolver(cfg.PlatformDomains))

	pipeline := gatekeeper.NewPipeline(gatekeeper.Options{
		Limiters:       limiters,
		Verifier:       auth.NewVerifier(secret, cfg.TokenIssuer),
		Resolver:       resolver,
		Identity:       identity,
		SessionCookie:  cfg.SessionCookie,
		SessionCookies: cfg.SessionCookies,
		Metrics:        gatekeeper.NewMetrics(prometheus.DefaultRegisterer),
	})

	proxy := hhttp.NewUpstreamProxy(upstream, logger)
	pinger := &hhttp.UpstreamPinger{
		URL:    cfg.UpstreamURL,
		Client: &http.Client{Timeout: 2 * time.Second},
	}

	tracker := slo.NewTracker()
	handler := applyMiddleware(logger, tracker, cfg.MaxBodyBytes, pipeline.Handler(proxy))

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", hhttp.MetricsHandler())
	metricsMux.Handle("/healthz", &hhttp.HealthHandler{
		Version:  getVersion(),
		Upstream: pinger,
		Store:    store,
		Breaker:  store,
	})
	metricsMux.Handle("/readyz", &hhttp.ReadyHandler{Upstream: pinger})
	metricsMux.Handle("/livez", &hhttp.LiveHandler{})

	return &GatewayComponents{
		Handler:    handler,
		MetricsMux: metricsMux,
		Store:      store,
		Tracker:    tracker,
		Limiters:   limiters,
		Pinger:     pinger,
	}
}

// applyMiddleware wraps the pipeline with the ambient middleware chain.
// Order (outermost first): tracing → correlation ID → recovery → logging → metrics → body limit → pipeline.
func applyMiddleware(logger *slog.Logger, tracker *slo.Tracker, maxBodyBytes int64, handler http.Handler) http.Handler {
	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.LimitRequestBody(maxBodyBytes)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Logging(logger, tracker)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = correlation.Middleware(chain)
	chain = tracing.Middleware(chain)

	return chain
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// startScheduler starts the cron scheduler with the store sweep and the
// SLO flush jobs. Returns the scheduler for shutdown.
func startScheduler(logger *slog.Logger, cfg *config.GatewayConfig, components *GatewayComponents) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc(cfg.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := components.Store.Sweep(ctx, time.Now()); err != nil {
			logger.Warn("rate limit store sweep failed", slog.Any("error", err))
			return
		}
		if n, err := components.Store.KeyCount(ctx); err == nil {
			logger.Debug("rate limit store swept", slog.Int("active_keys", n))
		}
	})
	if err != nil {
		logger.Error("failed to schedule rate limit sweep",
			slog.String("schedule", cfg.SweepSchedule),
			slog.Any("error", err))
		os.Exit(1)
	}

	_, err = c.AddFunc("@every 1m", components.Tracker.Flush)
	if err != nil {
		logger.Error("failed to schedule SLO flush", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()
	logger.Info("background scheduler started",
		slog.String("sweep_schedule", cfg.SweepSchedule))
	return c
}

// runGateway starts the gateway and metrics servers and handles graceful shutdown.
func runGateway(logger *slog.Logger, cfg *config.GatewayConfig, components *GatewayComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for the upstream before accepting traffic; a dead upstream after
	// retries is logged but not fatal, the gateway serves 502s until it heals.
	if err := retry.WithBackoff(ctx, retry.UpstreamConfig(), func() error {
		return components.Pinger.Ping(ctx)
	}); err != nil {
		logger.Warn("upstream not reachable at startup, continuing anyway",
			slog.String("upstream", cfg.UpstreamURL),
			slog.Any("error", err))
	}

	scheduler := startScheduler(logger, cfg, components)

	gatewaySrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           components.MetricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gateway starting",
			slog.String("addr", cfg.ListenAddr),
			slog.String("upstream", cfg.UpstreamURL),
			slog.String("version", getVersion()))
		if err := gatewaySrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server starting", slog.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down gateway...")
	case <-gctx.Done():
		logger.Error("server failed, shutting down")
	}

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := gatewaySrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway shutdown failed", slog.Any("error", err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", slog.Any("error", err))
	}

	if err := g.Wait(); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}
