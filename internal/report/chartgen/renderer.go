// internal/report/chartgen/renderer.go
package chartgen

import (
	"bytes"
	"fmt"
	"path/filepath"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/scoring"
	"healthreport-service/internal/storage"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Result holds one rendered chart: the published path and the raw PNG.
type Result struct {
	Path  string `json:"path"`
	Bytes []byte `json:"-"`
}

type Config struct {
	Width    int
	Height   int
	BarWidth int
}

func LoadConfig() *Config {
	return &Config{
		Width:    800,
		Height:   500,
		BarWidth: 70,
	}
}

// Renderer turns a ScoreModel into a category bar chart PNG. Rendering is
// deterministic for identical models: fixed dimensions, canonical category
// order, same numeric labels.
type Renderer struct {
	config *Config
	logger logger.Logger
}

func NewRenderer(config *Config, log logger.Logger) *Renderer {
	return &Renderer{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "chart-renderer"}),
	}
}

var barColor = drawing.ColorFromHex("1aaf6c")

// Render draws the chart and atomically publishes it to
// <outputDir>/charts/<key>.png. No partial file is ever visible at the
// final path.
func (r *Renderer) Render(model *scoring.ScoreModel, outputDir, key string) (*Result, error) {
	if model == nil || len(model.CategoryScores) == 0 {
		return nil, errors.NewChartRenderError(fmt.Errorf("no category scores to plot"))
	}

	png, err := r.renderPNG(model)
	if err != nil {
		return nil, errors.NewChartRenderError(err)
	}

	path := filepath.Join(outputDir, "charts", key+".png")
	if err := storage.WriteFileAtomic(path, png); err != nil {
		return nil, errors.NewChartRenderError(fmt.Errorf("publish chart %s: %w", path, err))
	}

	r.logger.Info("chart rendered", map[string]interface{}{
		"path":       path,
		"categories": len(model.CategoryScores),
		"size":       len(png),
	})

	return &Result{Path: path, Bytes: png}, nil
}

// RenderBytes draws the chart without touching the filesystem.
func (r *Renderer) RenderBytes(model *scoring.ScoreModel) ([]byte, error) {
	if model == nil || len(model.CategoryScores) == 0 {
		return nil, errors.NewChartRenderError(fmt.Errorf("no category scores to plot"))
	}
	png, err := r.renderPNG(model)
	if err != nil {
		return nil, errors.NewChartRenderError(err)
	}
	return png, nil
}

func (r *Renderer) renderPNG(model *scoring.ScoreModel) ([]byte, error) {
	bars := make([]chart.Value, 0, len(model.CategoryScores))
	for _, cs := range model.CategoryScores {
		bars = append(bars, chart.Value{
			Value: cs.Score,
			Label: fmt.Sprintf("%s (%.0f)", cs.Name, cs.Score),
			Style: chart.Style{
				FillColor:   barColor,
				StrokeColor: barColor,
			},
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Overall Score: %.1f / 100", model.OverallScore),
		Width:    r.config.Width,
		Height:   r.config.Height,
		BarWidth: r.config.BarWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
