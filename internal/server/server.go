// Package server exposes the oversight pipeline over HTTP/JSON.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsgate/opsgate/internal/alert"
	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/impact"
	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/oversight"
	"github.com/opsgate/opsgate/internal/perf"
	"github.com/opsgate/opsgate/internal/policy"
	"github.com/opsgate/opsgate/internal/resilience"
)

// Options holds server construction parameters.
type Options struct {
	Port       int    // overrides the config file port when non-zero
	ConfigPath string // empty falls back to ~/.opsgate/config.yaml
	Logger     *slog.Logger
}

// Server wires the oversight pipeline behind an HTTP API.
type Server struct {
	mu         sync.RWMutex
	appCfg     *config.Config
	cfgHash    string
	evaluator  *policy.Evaluator
	dispatcher *alert.Dispatcher

	composer *oversight.Composer
	assessor *impact.Assessor
	ledger   *audit.Ledger
	sink     *audit.Sink
	monitor  *resilience.Monitor
	tracker  *perf.Tracker
	logger   *slog.Logger
	opts     Options

	httpServer *http.Server
}

// New creates a server with the full pipeline loaded from configuration.
func New(opts Options) (*Server, error) {
	appCfg, cfgHash, err := config.LoadWithHash(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	evaluator, err := policy.NewEvaluator(appCfg.ActivePrinciples, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluator: %w", err)
	}

	var sink *audit.Sink
	if appCfg.AuditEnabled() && appCfg.AuditSink != "" {
		sink, err = audit.OpenSink(appCfg.AuditSink)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit sink: %w", err)
		}
	}

	var ledger *audit.Ledger
	if appCfg.AuditEnabled() {
		ledger = audit.NewLedger(sink, logger)
	}

	assessor := impact.NewAssessor()
	composer := oversight.NewComposer(evaluator, assessor, ledger, logger)

	var monitor *resilience.Monitor
	if appCfg.ResilienceEnabled() {
		selector := resilience.NewSelector(appCfg.RecoveryOverrides)
		monitor = resilience.NewMonitor(selector, resilience.PlanExecutor{}, logger)
	}

	s := &Server{
		appCfg:     appCfg,
		cfgHash:    cfgHash,
		evaluator:  evaluator,
		dispatcher: alert.NewDispatcher(appCfg.Alerts),
		composer:   composer,
		assessor:   assessor,
		ledger:     ledger,
		sink:       sink,
		monitor:    monitor,
		tracker:    perf.NewTracker(),
		logger:     logger,
		opts:       opts,
	}

	if monitor != nil {
		monitor.SetObserver(s.observeHealth)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	s.routes(router)

	port := opts.Port
	if port == 0 {
		port = appCfg.Server.Port
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/evaluate", s.handleEvaluate)
	v1.POST("/decide", s.handleDecide)
	v1.POST("/health", s.handleHealthCheck)
	v1.GET("/audit", s.handleAuditQuery)
	v1.GET("/audit/integrity", s.handleAuditIntegrity)
	v1.GET("/report", s.handleReport)
}

// Serve starts the HTTP server on the configured port. Blocks until stopped.
func (s *Server) Serve() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr, "config_hash", s.cfgHash)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ServeOn starts the HTTP server on the given listener. For testing.
func (s *Server) ServeOn(lis net.Listener) error {
	if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler returns the HTTP handler. For testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// GracefulStop shuts down the HTTP server, draining in-flight requests.
func (s *Server) GracefulStop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}

// Close cleans up resources.
func (s *Server) Close() error {
	if s.sink != nil {
		return s.sink.Close()
	}
	return nil
}

// ReloadConfig atomically swaps the evaluator and alert dispatcher from the
// config file. Audit and resilience wiring is fixed at startup; toggling
// those requires a restart. Called by the hot-reloader on file change.
func (s *Server) ReloadConfig() error {
	appCfg, cfgHash, err := config.LoadWithHash(s.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	evaluator, err := policy.NewEvaluator(appCfg.ActivePrinciples, s.logger)
	if err != nil {
		return fmt.Errorf("failed to rebuild evaluator: %w", err)
	}

	s.mu.Lock()
	s.appCfg = appCfg
	s.cfgHash = cfgHash
	s.evaluator = evaluator
	s.dispatcher = alert.NewDispatcher(appCfg.Alerts)
	s.mu.Unlock()

	s.composer.SetEvaluator(evaluator)

	if s.ledger != nil {
		_, _ = s.ledger.AppendEvent("", audit.EventPayload{
			EventType:   "config_reloaded",
			Description: "configuration reloaded from disk",
			Details:     map[string]any{"config_hash": cfgHash},
		})
	}
	return nil
}

// observeHealth is installed as the monitor's observer: it feeds Prometheus
// and dispatches webhook alerts for failing checks.
func (s *Server) observeHealth(check model.HealthCheck) {
	recordHealthMetrics(check)

	switch check.Status {
	case model.StatusCritical, model.StatusDegraded, model.StatusRecoveryFailed:
	default:
		return
	}

	s.mu.RLock()
	d := s.dispatcher
	s.mu.RUnlock()
	if d == nil {
		return
	}

	ev := alert.Event{
		Timestamp: check.CreatedAt.Format(audit.TimestampFormat),
		Kind:      string(check.Status),
		Component: check.Component,
		Score:     check.Score,
	}
	if check.Recovery != nil {
		ev.Detail = check.Recovery.Strategy
		if check.Recovery.Error != "" {
			ev.Detail = check.Recovery.Strategy + ": " + check.Recovery.Error
		}
	}
	d.Dispatch(ev)
}

func (s *Server) dispatchDenied(d model.Decision) {
	s.mu.RLock()
	disp := s.dispatcher
	s.mu.RUnlock()
	if disp == nil {
		return
	}
	disp.Dispatch(alert.Event{
		Timestamp: d.CreatedAt.Format(audit.TimestampFormat),
		Kind:      "denied",
		Operation: d.Operation,
		RiskLevel: string(d.Impact.RiskLevel),
		Guidance:  d.Guidance,
	})
}
