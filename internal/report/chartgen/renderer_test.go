// internal/report/chartgen/renderer_test.go
package chartgen

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
	"healthreport-service/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestModel() *scoring.ScoreModel {
	return &scoring.ScoreModel{
		OverallScore: 56,
		CategoryScores: []scoring.CategoryScore{
			{Name: "sleep", Score: 80},
			{Name: "exercise", Score: 30},
			{Name: "diet", Score: 50},
		},
		Metadata: scoring.Metadata{
			Subject:     "subject-1",
			SubmittedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		},
		TableVersion: "test-v1",
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	return NewRenderer(LoadConfig(), logger.NewTestLogger(t))
}

func outputDir(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "charts"), 0o755))
	return dir
}

// ==========================
// Rendering Tests
// ==========================

func TestRenderer_Render_ProducesDecodablePNG(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := outputDir(t)

	result, err := renderer.Render(createTestModel(), dir, "subject-1_20260115T090000Z")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, filepath.Join(dir, "charts", "subject-1_20260115T090000Z.png"), result.Path)

	onDisk, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, result.Bytes, onDisk)

	img, err := png.Decode(bytes.NewReader(onDisk))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestRenderer_Render_Deterministic(t *testing.T) {
	renderer := newTestRenderer(t)

	first, err := renderer.RenderBytes(createTestModel())
	require.NoError(t, err)
	second, err := renderer.RenderBytes(createTestModel())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderer_Render_NoTempFilesLeftBehind(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := outputDir(t)

	_, err := renderer.Render(createTestModel(), dir, "subject-1_20260115T090000Z")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "charts"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "subject-1_20260115T090000Z.png", entries[0].Name())
}

// ==========================
// Failure Tests
// ==========================

func TestRenderer_Render_EmptyScores(t *testing.T) {
	renderer := newTestRenderer(t)

	tests := []struct {
		name  string
		model *scoring.ScoreModel
	}{
		{"nil model", nil},
		{"no categories", &scoring.ScoreModel{OverallScore: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render(tt.model, t.TempDir(), "key_20260101T000000Z")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeChartRenderFailed))
		})
	}
}

func TestRenderer_Render_UnwritableOutput(t *testing.T) {
	renderer := newTestRenderer(t)

	// charts/ subdirectory deliberately absent
	result, err := renderer.Render(createTestModel(), filepath.Join(t.TempDir(), "nope"), "key_20260101T000000Z")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeChartRenderFailed))
}
