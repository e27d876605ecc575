package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/storefront-sim/internal/domain/order"
	"github.com/xenking/storefront-sim/internal/handler"
	"github.com/xenking/storefront-sim/internal/seed"
	"github.com/xenking/storefront-sim/internal/shop"
	"github.com/xenking/storefront-sim/internal/storage/memory"
	"github.com/xenking/storefront-sim/pkg/health"
	"github.com/xenking/storefront-sim/pkg/httpmiddleware"
)

const (
	healthInterval     = 10 * time.Second
	maxGoroutines      = 10_000
	maxGCPause         = 500 * time.Millisecond
	serviceName        = "storefront"
	readinessCheckName = "catalog"
)

// service is the wired application without its listener.
type service struct {
	shop    *shop.Shop
	health  *health.Health
	limiter *httpmiddleware.Limiter
	handler http.Handler
}

// newService builds the shop, loads seed data and assembles the HTTP handler.
func newService(
	ctx context.Context,
	lg *zap.Logger,
	mp metric.MeterProvider,
	tp trace.TracerProvider,
	cfg *Config,
) (*service, error) {
	s := shop.New(
		memory.NewProductRepository(),
		memory.NewCustomerRepository(),
		memory.NewOrderRepository(),
		order.NewSequence(cfg.Orders.FirstSequence),
	)

	if len(cfg.SeedFiles) > 0 {
		data, err := seed.Load(ctx, cfg.SeedFiles)
		if err != nil {
			return nil, errors.Wrap(err, "load seed")
		}
		if err := seed.Apply(ctx, s, data, cfg.Catalog.LowStockThreshold); err != nil {
			return nil, errors.Wrap(err, "apply seed")
		}
	}

	healthSvc := health.New()
	healthSvc.Register(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(maxGoroutines))
	healthSvc.Register(health.Liveness, "gc_pause", time.Second, health.GCPauseCheck(maxGCPause))
	if len(cfg.SeedFiles) > 0 {
		healthSvc.Register(health.Readiness, readinessCheckName, time.Second,
			health.MinCountCheck("products", 1, func(ctx context.Context) (int, error) {
				ps, err := s.AllProducts(ctx)
				return len(ps), err
			}),
		)
	}

	h, err := handler.New(s, handler.Config{
		RecommendLimit:    cfg.Recommend.DefaultLimit,
		LowStockThreshold: cfg.Catalog.LowStockThreshold,
	}, mp, tp)
	if err != nil {
		return nil, errors.Wrap(err, "create handler")
	}

	limiter := httpmiddleware.NewLimiter(httpmiddleware.RateLimitConfig{
		Max:    cfg.RateLimit.Max,
		Window: cfg.RateLimit.Window,
	})

	r := chi.NewRouter()
	r.Use(
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.RequestID(),
		httpmiddleware.Recovery(),
		httpmiddleware.LogRequests(),
		httpmiddleware.Labeler(),
	)
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)
	r.With(limiter.Middleware()).Mount("/api", h.Routes())

	return &service{
		shop:    s,
		health:  healthSvc,
		limiter: limiter,
		handler: otelhttp.NewHandler(r, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
		),
	}, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.Strings("seed_files", cfg.SeedFiles),
	)

	svc, err := newService(ctx, lg, m.MeterProvider(), m.TracerProvider(), cfg)
	if err != nil {
		return err
	}
	svc.health.Start(ctx, healthInterval)
	svc.health.SetReady(true)
	go svc.limiter.Run(ctx)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           svc.handler,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		svc.health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		svc.health.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
