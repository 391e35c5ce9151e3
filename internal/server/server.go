// internal/server/server.go

// Package server exposes the report pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"healthreport-service/internal/common/config"
	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/report"
	"healthreport-service/internal/scoring"
	"healthreport-service/internal/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportBuilder runs the pipeline for one payload.
type ReportBuilder interface {
	BuildReport(ctx context.Context, payload scoring.AssessmentPayload, opts report.BuildOptions) (*report.Bundle, error)
}

// Server wires the HTTP surface: webhook ingestion, stored payload
// management, artifact retrieval, health and metrics.
type Server struct {
	config       *config.Config
	logger       logger.Logger
	builder      ReportBuilder
	store        *storage.Store
	errorHandler *errors.ErrorHandler
	httpServer   *http.Server
}

func New(cfg *config.Config, builder ReportBuilder, store *storage.Store, log logger.Logger) *Server {
	s := &Server{
		config:       cfg,
		logger:       log.WithFields(map[string]interface{}{"component": "http-server"}),
		builder:      builder,
		store:        store,
		errorHandler: errors.NewErrorHandler(log),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	return s
}

// Router builds the route table. Exposed separately so handler tests can
// drive it through httptest without binding a port.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/webhook", s.handleWebhook).Methods("POST")
	router.HandleFunc("/api/webhook-to-pdf", s.handleWebhookToPDF).Methods("POST")
	router.HandleFunc("/api/webhook-to-email", s.handleWebhookToEmail).Methods("POST")

	router.HandleFunc("/api/files", s.handleListFiles).Methods("GET")
	router.HandleFunc("/api/files/{name}", s.handleGetFile).Methods("GET")
	router.HandleFunc("/api/files/{name}/process", s.handleProcessFile).Methods("POST")
	router.HandleFunc("/api/files/{name}/email", s.handleEmailFile).Methods("POST")

	router.HandleFunc("/api/reports/{key}/pdf", s.handleGetReportPDF).Methods("GET")
	router.HandleFunc("/api/reports/{key}/chart", s.handleGetReportChart).Methods("GET")

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run() error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", map[string]interface{}{
			"addr": s.httpServer.Addr,
		})
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.config.Server.ShutdownTimeout))
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped", nil)
	return nil
}
