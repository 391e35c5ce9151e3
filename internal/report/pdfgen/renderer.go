// internal/report/pdfgen/renderer.go
package pdfgen

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/scoring"
	"healthreport-service/internal/storage"

	"github.com/go-pdf/fpdf"
)

// Result holds one rendered report: the published path and the document
// bytes.
type Result struct {
	Path  string `json:"path"`
	Bytes []byte `json:"-"`
}

type Config struct {
	Title string
}

func LoadConfig() *Config {
	return &Config{
		Title: "Health Assessment Report",
	}
}

// Color scheme
var (
	colorAccent = [3]int{26, 175, 108}
	colorDark   = [3]int{45, 55, 72}
	colorMuted  = [3]int{113, 128, 150}
	colorLight  = [3]int{247, 250, 252}
)

// Renderer produces the report PDF from a ScoreModel. The chart image is
// optional enrichment: a nil chart still yields a complete, valid document.
type Renderer struct {
	config *Config
	logger logger.Logger
}

func NewRenderer(config *Config, log logger.Logger) *Renderer {
	return &Renderer{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "pdf-renderer"}),
	}
}

// Render builds the document and atomically publishes it to
// <outputDir>/reports/<key>.pdf.
func (r *Renderer) Render(model *scoring.ScoreModel, chartPNG []byte, outputDir, key string) (*Result, error) {
	doc, err := r.RenderBytes(model, chartPNG)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(outputDir, "reports", key+".pdf")
	if err := storage.WriteFileAtomic(path, doc); err != nil {
		return nil, errors.NewPDFRenderError(fmt.Errorf("publish report %s: %w", path, err))
	}

	r.logger.Info("report rendered", map[string]interface{}{
		"path":     path,
		"hasChart": chartPNG != nil,
		"size":     len(doc),
	})

	return &Result{Path: path, Bytes: doc}, nil
}

// RenderBytes builds the document without touching the filesystem.
func (r *Renderer) RenderBytes(model *scoring.ScoreModel, chartPNG []byte) ([]byte, error) {
	if err := validateModel(model); err != nil {
		return nil, errors.NewPDFRenderError(err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.config.Title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	r.writeHeader(pdf, model)
	r.writeOverall(pdf, model)
	if chartPNG != nil {
		r.writeChart(pdf, chartPNG)
	}
	r.writeCategoryTable(pdf, model)
	r.writeFooter(pdf, model)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewPDFRenderError(err)
	}
	return buf.Bytes(), nil
}

// validateModel guards against models that violate the scoring invariants.
// These indicate an internal-consistency fault, not bad user input.
func validateModel(model *scoring.ScoreModel) error {
	if model == nil {
		return fmt.Errorf("nil score model")
	}
	if len(model.CategoryScores) == 0 {
		return fmt.Errorf("score model has no categories")
	}
	if math.IsNaN(model.OverallScore) || model.OverallScore < 0 || model.OverallScore > 100 {
		return fmt.Errorf("overall score %v out of range", model.OverallScore)
	}
	return nil
}

func (r *Renderer) writeHeader(pdf *fpdf.Fpdf, model *scoring.ScoreModel) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.CellFormat(0, 12, r.config.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	subject := model.Metadata.Subject
	if subject == "" {
		subject = "Anonymous"
	}
	line := subject
	if !model.Metadata.SubmittedAt.IsZero() {
		line = fmt.Sprintf("%s | %s", subject, model.Metadata.SubmittedAt.Format("January 2, 2006"))
	}
	pdf.CellFormat(0, 7, line, "", 1, "C", false, 0, "")

	pdf.SetDrawColor(colorAccent[0], colorAccent[1], colorAccent[2])
	pdf.SetLineWidth(0.6)
	pdf.Line(15, pdf.GetY()+3, 195, pdf.GetY()+3)
	pdf.Ln(8)
}

func (r *Renderer) writeOverall(pdf *fpdf.Fpdf, model *scoring.ScoreModel) {
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.CellFormat(0, 8, "Overall Score", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 34)
	pdf.SetTextColor(colorAccent[0], colorAccent[1], colorAccent[2])
	pdf.CellFormat(0, 16, formatScore(model.OverallScore), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	pdf.CellFormat(0, 5, "out of 100", "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func (r *Renderer) writeChart(pdf *fpdf.Fpdf, chartPNG []byte) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("score-chart", opts, bytes.NewReader(chartPNG))

	// 160mm wide, centered, aspect preserved via zero height
	pdf.ImageOptions("score-chart", 25, pdf.GetY(), 160, 0, true, opts, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) writeCategoryTable(pdf *fpdf.Fpdf, model *scoring.ScoreModel) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.CellFormat(0, 9, "Category Breakdown", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	// Header row
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(colorAccent[0], colorAccent[1], colorAccent[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(120, 8, "Category", "", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Score", "", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	for i, cs := range model.CategoryScores {
		fill := i%2 == 1
		pdf.SetFillColor(colorLight[0], colorLight[1], colorLight[2])
		pdf.CellFormat(120, 7, titleCase(cs.Name), "", 0, "L", fill, 0, "")
		pdf.CellFormat(60, 7, formatScore(cs.Score), "", 1, "R", fill, 0, "")
	}
	pdf.Ln(4)
}

func (r *Renderer) writeFooter(pdf *fpdf.Fpdf, model *scoring.ScoreModel) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(colorMuted[0], colorMuted[1], colorMuted[2])
	pdf.CellFormat(0, 5, fmt.Sprintf("Scoring table version %s", model.TableVersion), "", 1, "L", false, 0, "")
}

func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// titleCase renders snake_case category names as readable labels.
func titleCase(name string) string {
	out := []rune{}
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			out = append(out, r-('a'-'A'))
		} else {
			out = append(out, r)
		}
		upper = false
	}
	return string(out)
}
