package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/handler"
	"github.com/android254/droidconke-feeds/internal/middleware"
	"github.com/android254/droidconke-feeds/internal/network"
	"github.com/android254/droidconke-feeds/internal/redis"
	"github.com/android254/droidconke-feeds/internal/repository"
	"github.com/android254/droidconke-feeds/internal/service"
	"github.com/android254/droidconke-feeds/internal/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// newRouter wires the full handler chain for the given service.
func newRouter(svc service.ConferenceServiceInterface) http.Handler {
	mux := http.NewServeMux()
	handler.NewConferenceHandler(svc).Register(mux)

	var h http.Handler = middleware.RateLimitMiddleware(mux)
	h = middleware.AccessLog(h)
	h = middleware.RequestID(h)
	return otelhttp.NewHandler(h, "droidconke-feeds")
}

func newServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeout("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeout("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeout("write_timeout", 10*time.Second),
		IdleTimeout:       config.GetServerTimeout("idle_timeout", 30*time.Second),
	}
}

func main() {
	log := config.GetLogger()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if endpoint := config.GetTracingEndpoint(); endpoint != "" {
		tp, err := tracing.InitTracer(ctx, config.GetTracingServiceName(), endpoint)
		if err != nil {
			log.Warnw("Failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	client := network.NewHTTPClientFactory(network.NewTokenProviderFromConfig()).Create(nil)
	conferenceService := service.NewConferenceService(repository.NewConferenceRepository(client))

	middleware.StartRateLimiterCleanup(ctx)
	srv := newServer(newRouter(conferenceService))

	go func() {
		log.Infow("DroidconKE feeds server running", "port", config.GetServerPort(), "event", config.GetEventSlug())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetServerTimeout("shutdown_timeout", 10*time.Second))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Graceful shutdown failed", "error", err)
	}
	if err := redis.GetClient().Close(); err != nil {
		log.Errorw("Error closing redis client", "error", err)
	}
}
