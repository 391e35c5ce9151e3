// internal/report/models.go
package report

import "healthreport-service/internal/scoring"

// BuildOptions controls a single report build.
type BuildOptions struct {
	// IncludeChart requests the bar chart stage. Chart failures degrade to a
	// chart-less report rather than failing the build.
	IncludeChart bool `json:"includeChart"`

	// OutputFormat selects the report document format. Empty means "pdf",
	// which is the only supported value.
	OutputFormat string `json:"outputFormat,omitempty"`

	// RecipientEmail, when set, overrides any recipient found in the payload
	// and triggers email delivery after the artifacts are published.
	RecipientEmail string `json:"recipientEmail,omitempty"`

	// Deliver requests email delivery even without an explicit recipient
	// override, using the address extracted from the payload.
	Deliver bool `json:"deliver"`
}

// Bundle is the result of one report build: the score model plus the
// published artifacts.
type Bundle struct {
	Key            string              `json:"key"`
	ScoreModel     *scoring.ScoreModel `json:"scoreModel"`
	ChartPath      string              `json:"chartPath,omitempty"`
	ChartBytes     []byte              `json:"-"`
	PDFPath        string              `json:"pdfPath"`
	PDFBytes       []byte              `json:"-"`
	RecipientEmail string              `json:"recipientEmail,omitempty"`
	Delivered      bool                `json:"delivered"`
}

// Summary is the JSON shape returned to API clients.
type Summary struct {
	Key            string             `json:"key"`
	OverallScore   float64            `json:"overallScore"`
	CategoryScores map[string]float64 `json:"categoryScores"`
	ChartPath      string             `json:"chartPath,omitempty"`
	PDFPath        string             `json:"pdfPath"`
	Delivered      bool               `json:"delivered"`
}

// Summarize flattens a bundle for API responses.
func (b *Bundle) Summarize() *Summary {
	return &Summary{
		Key:            b.Key,
		OverallScore:   b.ScoreModel.OverallScore,
		CategoryScores: b.ScoreModel.CategoryMap(),
		ChartPath:      b.ChartPath,
		PDFPath:        b.PDFPath,
		Delivered:      b.Delivered,
	}
}
