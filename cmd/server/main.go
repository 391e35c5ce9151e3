// cmd/server/main.go
package main

import (
	"context"

	"go.uber.org/zap"

	"healthreport-service/internal/common/aws"
	"healthreport-service/internal/common/config"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/common/observability"
	"healthreport-service/internal/mailer"
	"healthreport-service/internal/report"
	"healthreport-service/internal/report/chartgen"
	"healthreport-service/internal/report/pdfgen"
	"healthreport-service/internal/scoring"
	"healthreport-service/internal/server"
	"healthreport-service/internal/storage"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting report service...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// The scoring table is loaded once at startup; an invalid table is a
	// deployment fault and stops the process.
	table, err := scoring.LoadTable(cfg.Scoring.TablePath)
	if err != nil {
		zapLog.Fatal("scoring table load failed", zap.Error(err))
	}
	zapLog.Info("scoring table loaded",
		zap.String("path", cfg.Scoring.TablePath),
		zap.String("version", table.Version),
	)

	store, err := storage.NewStore(cfg.Storage.PayloadPath(), cfg.Storage.OutputPath(), log)
	if err != nil {
		zapLog.Fatal("storage init failed", zap.Error(err))
	}

	var sender mailer.Sender
	if cfg.Email.Enabled {
		sesClient, err := aws.NewSESClient(context.Background(), cfg.Email.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sender = mailer.NewSESMailer(sesClient, log)
		zapLog.Info("email delivery enabled", zap.String("region", cfg.Email.AWS.Region))
	} else {
		zapLog.Info("email delivery disabled")
	}

	orchestrator := report.NewOrchestrator(
		scoring.NewEngine(table, log),
		chartgen.NewRenderer(chartgen.LoadConfig(), log),
		pdfgen.NewRenderer(&pdfgen.Config{Title: cfg.Report.Title}, log),
		sender,
		&report.Config{
			OutputDir:    cfg.Storage.OutputPath(),
			FromEmail:    cfg.Email.FromEmail,
			EmailSubject: cfg.Email.Subject,
		},
		log,
	).WithObservability(obs)

	srv := server.New(cfg, orchestrator, store, log)
	if err := srv.Run(); err != nil {
		zapLog.Fatal("server failed", zap.Error(err))
	}
}
