// internal/report/pdfgen/renderer_test.go
package pdfgen

import (
	"bytes"
	"image"
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
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "reports"), 0o755))
	return dir
}

// createTestPNG encodes a small solid image for embedding tests.
func createTestPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 40, 25))
	for i := range img.Pix {
		img.Pix[i] = 0xcc
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// ==========================
// Rendering Tests
// ==========================

func TestRenderer_Render_WithoutChart(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := outputDir(t)

	result, err := renderer.Render(createTestModel(), nil, dir, "subject-1_20260115T090000Z")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, filepath.Join(dir, "reports", "subject-1_20260115T090000Z.pdf"), result.Path)

	onDisk, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, result.Bytes, onDisk)
	require.Greater(t, len(onDisk), 4)
	assert.Equal(t, "%PDF", string(onDisk[:4]))
}

func TestRenderer_Render_WithChart(t *testing.T) {
	renderer := newTestRenderer(t)

	plain, err := renderer.RenderBytes(createTestModel(), nil)
	require.NoError(t, err)
	withChart, err := renderer.RenderBytes(createTestModel(), createTestPNG(t))
	require.NoError(t, err)

	assert.Equal(t, "%PDF", string(withChart[:4]))
	// The embedded image has to show up as extra content.
	assert.Greater(t, len(withChart), len(plain))
}

func TestRenderer_Render_NoTempFilesLeftBehind(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := outputDir(t)

	_, err := renderer.Render(createTestModel(), nil, dir, "subject-1_20260115T090000Z")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "subject-1_20260115T090000Z.pdf", entries[0].Name())
}

func TestRenderer_Render_AnonymousSubject(t *testing.T) {
	renderer := newTestRenderer(t)
	model := createTestModel()
	model.Metadata.Subject = ""
	model.Metadata.SubmittedAt = time.Time{}

	doc, err := renderer.RenderBytes(model, nil)

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

// ==========================
// Failure Tests
// ==========================

func TestRenderer_Render_InvalidModel(t *testing.T) {
	renderer := newTestRenderer(t)

	tests := []struct {
		name  string
		model *scoring.ScoreModel
	}{
		{"nil model", nil},
		{"no categories", &scoring.ScoreModel{OverallScore: 50}},
		{"overall out of range", &scoring.ScoreModel{
			OverallScore:   120,
			CategoryScores: []scoring.CategoryScore{{Name: "sleep", Score: 80}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render(tt.model, nil, t.TempDir(), "key_20260101T000000Z")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodePDFRenderFailed))
		})
	}
}

func TestRenderer_Render_UnwritableOutput(t *testing.T) {
	renderer := newTestRenderer(t)

	// reports/ subdirectory deliberately absent
	result, err := renderer.Render(createTestModel(), nil, filepath.Join(t.TempDir(), "nope"), "key_20260101T000000Z")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePDFRenderFailed))
}
