package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"recommend-service/internal/config"
	"recommend-service/internal/directory"
	"recommend-service/internal/metrics"
	"recommend-service/internal/session"
	serverhttp "recommend-service/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg, errs := config.Load(os.Getenv("CONFIG_FILE"))
	logger := config.SetupLogger(cfg)
	for _, err := range errs {
		logger.Warn().Err(err).Msg("config: falling back to default")
	}

	backend, err := directory.ParseBackend(cfg.DBBackend)
	if err != nil {
		logger.Fatal().Err(err).Msg("directory backend")
	}
	store, err := directory.Open(context.Background(), directory.Options{Backend: backend, DSN: cfg.DBDSN}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open directory")
	}

	m := metrics.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := m.Register(reg); err != nil {
		logger.Fatal().Err(err).Msg("register metrics")
	}
	go countDirectoryEvents(store, m)

	var verifier *session.Verifier
	if cfg.JWTSecret != "" {
		verifier = session.NewVerifier(cfg.JWTSecret)
	} else {
		logger.Warn().Msg("JWT_SECRET is empty, all requests are anonymous")
	}

	r := serverhttp.NewRouter(cfg, logger, serverhttp.Services{
		Dir:      store,
		Verifier: verifier,
		Resolver: session.NewResolver(store, logger),
		Metrics:  m,
		Registry: reg,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().
		Str("addr", cfg.Addr()).
		Str("backend", string(store.Backend())).
		Int("top_n", cfg.TopN).
		Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
	// closes the change feed, which ends open websocket streams
	if err := store.Close(); err != nil {
		logger.Warn().Err(err).Msg("close directory")
	}
	logger.Info().Msg("bye")
}

func countDirectoryEvents(store *directory.Store, m *metrics.Metrics) {
	events, _ := store.Subscribe()
	for ev := range events {
		m.IncDirectoryEvent(string(ev.Kind))
	}
}
