// internal/report/orchestrator.go

// Package report orchestrates the assessment pipeline: score the payload,
// render the chart and PDF artifacts, then optionally deliver the report by
// email.
package report

import (
	"context"
	"fmt"
	"time"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/common/metrics"
	"healthreport-service/internal/common/observability"
	"healthreport-service/internal/common/validation"
	"healthreport-service/internal/mailer"
	"healthreport-service/internal/report/chartgen"
	"healthreport-service/internal/report/pdfgen"
	"healthreport-service/internal/scoring"
)

// Scorer computes a ScoreModel from a raw payload.
type Scorer interface {
	ComputeScore(payload scoring.AssessmentPayload) (*scoring.ScoreModel, error)
}

// ChartRenderer renders and publishes the category chart.
type ChartRenderer interface {
	Render(model *scoring.ScoreModel, outputDir, key string) (*chartgen.Result, error)
}

// PDFRenderer renders and publishes the report document.
type PDFRenderer interface {
	Render(model *scoring.ScoreModel, chartPNG []byte, outputDir, key string) (*pdfgen.Result, error)
}

// Config carries the delivery settings the orchestrator needs.
type Config struct {
	OutputDir    string
	FromEmail    string
	EmailSubject string
}

// Orchestrator runs the pipeline end to end. Stage policy:
//
//   - scoring failure aborts the build, no artifacts are produced
//   - chart failure degrades to a chart-less report
//   - PDF failure is fatal
//   - delivery failure returns the error alongside the finished bundle
type Orchestrator struct {
	scorer Scorer
	charts ChartRenderer
	pdfs   PDFRenderer
	sender mailer.Sender
	config *Config
	logger logger.Logger
	obs    *observability.Observability

	// now is swappable for deterministic key tests.
	now func() time.Time
}

func NewOrchestrator(scorer Scorer, charts ChartRenderer, pdfs PDFRenderer, sender mailer.Sender, config *Config, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		scorer: scorer,
		charts: charts,
		pdfs:   pdfs,
		sender: sender,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "orchestrator"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithObservability attaches the otel instruments. Nil is fine; recording is
// skipped.
func (o *Orchestrator) WithObservability(obs *observability.Observability) *Orchestrator {
	o.obs = obs
	return o
}

func (o *Orchestrator) record(ctx context.Context, status string, start time.Time) {
	if o.obs == nil {
		return
	}
	o.obs.RecordReportProcessed(ctx, status)
	o.obs.RecordReportDuration(ctx, time.Since(start), status)
}

// BuildReport runs the full pipeline for one payload. On a delivery failure
// the bundle is returned together with the DELIVERY_FAILED error, since the
// artifacts on disk are complete and valid.
func (o *Orchestrator) BuildReport(ctx context.Context, payload scoring.AssessmentPayload, opts BuildOptions) (*Bundle, error) {
	metrics.RequestsActive.Inc()
	defer metrics.RequestsActive.Dec()
	start := time.Now()

	if opts.OutputFormat != "" && opts.OutputFormat != "pdf" {
		return nil, errors.NewInvalidPayloadError(fmt.Sprintf("unsupported output format %q", opts.OutputFormat))
	}

	model, err := o.score(payload)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("invalid").Inc()
		o.record(ctx, "invalid", start)
		return nil, err
	}

	key := o.deriveKey(model)
	bundle := &Bundle{Key: key, ScoreModel: model}

	if opts.IncludeChart {
		o.renderChart(bundle)
	}

	if err := o.renderPDF(ctx, bundle); err != nil {
		metrics.ReportsGenerated.WithLabelValues("failed").Inc()
		o.record(ctx, "failed", start)
		return nil, err
	}

	metrics.ReportsGenerated.WithLabelValues("success").Inc()
	metrics.ReportStageDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	o.record(ctx, "success", start)

	o.logger.Info("report built", map[string]interface{}{
		"key":          key,
		"overallScore": model.OverallScore,
		"hasChart":     bundle.ChartPath != "",
	})

	if opts.RecipientEmail != "" || opts.Deliver {
		if err := o.deliver(ctx, bundle, payload, opts); err != nil {
			return bundle, err
		}
	}

	return bundle, nil
}

func (o *Orchestrator) score(payload scoring.AssessmentPayload) (*scoring.ScoreModel, error) {
	start := time.Now()
	model, err := o.scorer.ComputeScore(payload)
	metrics.ReportStageDuration.WithLabelValues("score").Observe(time.Since(start).Seconds())
	return model, err
}

// deriveKey uses the payload's submission time when present, so reprocessing
// a stored payload lands on the same key. Payloads without a timestamp get
// the current time.
func (o *Orchestrator) deriveKey(model *scoring.ScoreModel) string {
	ts := model.Metadata.SubmittedAt
	if ts.IsZero() {
		ts = o.now()
	}
	return DeriveKey(model.Metadata.Subject, ts)
}

// renderChart runs the chart stage and degrades on failure: the error is
// logged and counted, and the build continues without a chart.
func (o *Orchestrator) renderChart(bundle *Bundle) {
	start := time.Now()
	result, err := o.charts.Render(bundle.ScoreModel, o.config.OutputDir, bundle.Key)
	metrics.ReportStageDuration.WithLabelValues("chart").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ChartDegradations.Inc()
		o.logger.Warn("chart stage failed, continuing without chart", map[string]interface{}{
			"key":   bundle.Key,
			"error": err.Error(),
		})
		return
	}

	bundle.ChartPath = result.Path
	bundle.ChartBytes = result.Bytes
}

func (o *Orchestrator) renderPDF(ctx context.Context, bundle *Bundle) error {
	if err := ctx.Err(); err != nil {
		return errors.NewPDFRenderError(err)
	}

	start := time.Now()
	result, err := o.pdfs.Render(bundle.ScoreModel, bundle.ChartBytes, o.config.OutputDir, bundle.Key)
	metrics.ReportStageDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	bundle.PDFPath = result.Path
	bundle.PDFBytes = result.Bytes
	return nil
}

// deliver resolves the recipient and sends the report. The explicit option
// wins over any address found in the payload.
func (o *Orchestrator) deliver(ctx context.Context, bundle *Bundle, payload scoring.AssessmentPayload, opts BuildOptions) error {
	recipient := opts.RecipientEmail
	if recipient == "" {
		recipient, _ = scoring.ExtractEmail(payload)
	}
	if !validation.ValidateEmail(recipient) {
		metrics.EmailsSent.WithLabelValues("rejected").Inc()
		return errors.NewRecipientMissingError("no valid recipient email in request or payload")
	}

	if o.sender == nil {
		metrics.EmailsSent.WithLabelValues("disabled").Inc()
		return errors.NewDeliveryFailedError(recipient, fmt.Errorf("email delivery is not configured"))
	}

	subject := bundle.ScoreModel.Metadata.Subject
	if subject == "" {
		subject = "there"
	}
	msg := &mailer.Message{
		From:           o.config.FromEmail,
		To:             recipient,
		Subject:        o.config.EmailSubject,
		HTMLBody:       mailer.DefaultHTMLBody(subject, bundle.ScoreModel.OverallScore),
		Attachment:     bundle.PDFBytes,
		AttachmentName: bundle.Key + ".pdf",
	}

	start := time.Now()
	err := o.sender.Send(ctx, msg)
	metrics.ReportStageDuration.WithLabelValues("delivery").Observe(time.Since(start).Seconds())

	bundle.RecipientEmail = recipient
	if err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		return err
	}

	metrics.EmailsSent.WithLabelValues("success").Inc()
	bundle.Delivered = true
	return nil
}
