package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditservice "riskboard/internal/audit/service"
	auditstore "riskboard/internal/audit/store"
	authservice "riskboard/internal/auth/service"
	"riskboard/internal/events"
	"riskboard/internal/platform/config"
	"riskboard/internal/platform/httpserver"
	"riskboard/internal/platform/logger"
	"riskboard/internal/platform/metrics"
	"riskboard/internal/platform/postgres"
	platformredis "riskboard/internal/platform/redis"
	reportservice "riskboard/internal/report/service"
	reportstore "riskboard/internal/report/store"
	riskservice "riskboard/internal/risk/service"
	riskstore "riskboard/internal/risk/store"
	httptransport "riskboard/internal/transport/http"
)

// main wires configuration, storage, the event bus, and the domain services,
// then runs the HTTP server until interrupted. Business logic stays in the
// internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	bus := events.NewBus(log, events.WithPanicCounter(m.HandlerFailures.Inc))

	if cfg.KafkaBrokers != "" {
		bridge, err := events.NewKafkaBridge(bus, cfg.KafkaBrokers, cfg.KafkaEventsTopic, log)
		if err != nil {
			log.Error("kafka bridge init failed", "error", err)
			os.Exit(1)
		}
		defer bridge.Close()
	}

	ctx := context.Background()

	var (
		risks   riskstore.Store
		audits  auditstore.Store
		reports reportstore.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		risks = riskstore.NewPostgres(db)
		audits = auditstore.NewPostgres(db)
		reports = reportstore.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		risks = riskstore.NewMemory()
		audits = auditstore.NewMemory()
		reports = reportstore.NewMemory()
	}

	cache, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
		risks = riskstore.NewCached(risks, cache, log)
		audits = auditstore.NewCached(audits, cache, log)
		reports = reportstore.NewCached(reports, cache, log)
	}

	riskSvc := riskservice.New(risks, bus, log, riskservice.WithMetrics(m))
	auditSvc := auditservice.New(audits, riskSvc, bus, log, auditservice.WithMetrics(m))
	feedbackSvc := auditservice.NewFeedback(audits, bus, log)
	reportSvc := reportservice.New(reports, riskSvc, auditSvc, log, reportservice.WithMetrics(m))

	authSvc, err := authservice.New(cfg.JWTSigningKey, log)
	if err != nil {
		log.Error("auth service init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Risks:    riskSvc,
		Audits:   auditSvc,
		Feedback: feedbackSvc,
		Reports:  reportSvc,
		Auth:     authSvc,
		Verifier: authSvc,
		Metrics:  m,
		Logger:   log,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting riskboard", "addr", cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	bus.Drain()
}
