// internal/scoring/engine_test.go
package scoring

import (
	"testing"
	"time"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func floatPtr(v float64) *float64 { return &v }

// createTestTable mirrors the documented reference table: three lifestyle
// categories on a 0-10 scale with weights 0.4/0.3/0.3.
func createTestTable() *Table {
	return &Table{
		Version: "test-v1",
		Categories: []Category{
			{Name: "sleep", Weight: 0.4, Scale: 10, Fields: []Field{{Key: "sleep"}}},
			{Name: "exercise", Weight: 0.3, Scale: 10, Fields: []Field{{Key: "exercise"}}},
			{Name: "diet", Weight: 0.3, Scale: 10, Fields: []Field{{Key: "diet"}}},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	return NewEngine(createTestTable(), logger.NewTestLogger(t))
}

// ==========================
// Core Scoring Tests
// ==========================

func TestEngine_ComputeScore_ReferencePayload(t *testing.T) {
	engine := newTestEngine(t)

	model, err := engine.ComputeScore(AssessmentPayload{
		"sleep":    8.0,
		"exercise": 3.0,
		"diet":     5.0,
	})

	require.NoError(t, err)
	require.Len(t, model.CategoryScores, 3)

	// 80*0.4 + 30*0.3 + 50*0.3 = 56
	assert.Equal(t, 56.0, model.OverallScore)
	assert.Equal(t, CategoryScore{Name: "sleep", Score: 80}, model.CategoryScores[0])
	assert.Equal(t, CategoryScore{Name: "exercise", Score: 30}, model.CategoryScores[1])
	assert.Equal(t, CategoryScore{Name: "diet", Score: 50}, model.CategoryScores[2])
	assert.Equal(t, "test-v1", model.TableVersion)
}

func TestEngine_ComputeScore_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	payload := AssessmentPayload{"sleep": 7.0, "exercise": 6.0, "diet": 4.0}

	first, err := engine.ComputeScore(payload)
	require.NoError(t, err)
	second, err := engine.ComputeScore(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_ComputeScore_CategoryOrderIsCanonical(t *testing.T) {
	engine := newTestEngine(t)

	// Input order must not leak into the model.
	model, err := engine.ComputeScore(AssessmentPayload{
		"diet":     5.0,
		"sleep":    8.0,
		"exercise": 3.0,
	})

	require.NoError(t, err)
	names := []string{}
	for _, cs := range model.CategoryScores {
		names = append(names, cs.Name)
	}
	assert.Equal(t, []string{"sleep", "exercise", "diet"}, names)
}

// ==========================
// Invalid Payload Tests
// ==========================

func TestEngine_ComputeScore_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload AssessmentPayload
	}{
		{"nil payload", nil},
		{"empty object", AssessmentPayload{}},
		{"only unknown keys", AssessmentPayload{"favorite_color": "blue"}},
		{"non numeric answers without lookup", AssessmentPayload{"sleep": "plenty"}},
	}

	engine := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := engine.ComputeScore(tt.payload)
			assert.Nil(t, model)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidPayload))
		})
	}
}

// ==========================
// Defaults & Clamping Tests
// ==========================

func TestEngine_ComputeScore_MissingCategoryUsesDefault(t *testing.T) {
	engine := newTestEngine(t)

	model, err := engine.ComputeScore(AssessmentPayload{
		"sleep": 8.0,
		"diet":  5.0,
	})

	require.NoError(t, err)
	// The missing category still appears, at the neutral default.
	score, ok := model.Category("exercise")
	require.True(t, ok)
	assert.Equal(t, 50.0, score)
	// 80*0.4 + 50*0.3 + 50*0.3 = 62
	assert.Equal(t, 62.0, model.OverallScore)
}

func TestEngine_ComputeScore_ConfiguredDefault(t *testing.T) {
	table := createTestTable()
	table.Categories[1].Default = floatPtr(0)
	engine := NewEngine(table, logger.NewTestLogger(t))

	model, err := engine.ComputeScore(AssessmentPayload{"sleep": 8.0, "diet": 5.0})

	require.NoError(t, err)
	score, _ := model.Category("exercise")
	assert.Equal(t, 0.0, score)
}

func TestEngine_ComputeScore_ClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		answer   float64
		expected float64
	}{
		{"above scale", 15, 100},
		{"negative", -3, 0},
		{"at scale", 10, 100},
		{"at zero", 0, 0},
	}

	engine := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := engine.ComputeScore(AssessmentPayload{"sleep": tt.answer})
			require.NoError(t, err)
			score, _ := model.Category("sleep")
			assert.Equal(t, tt.expected, score)
			assert.GreaterOrEqual(t, model.OverallScore, 0.0)
			assert.LessOrEqual(t, model.OverallScore, 100.0)
		})
	}
}

func TestEngine_ComputeScore_OverallRecomputable(t *testing.T) {
	engine := newTestEngine(t)
	model, err := engine.ComputeScore(AssessmentPayload{"sleep": 9.0, "exercise": 2.0, "diet": 7.0})
	require.NoError(t, err)

	assert.InDelta(t, model.OverallScore, engine.RecomputeOverall(model.CategoryScores), 0.05)
}

func TestEngine_RecomputeOverall_NameMatched(t *testing.T) {
	engine := newTestEngine(t)

	// Order does not matter; weights are resolved by category name.
	reordered := []CategoryScore{
		{Name: "diet", Score: 50},
		{Name: "sleep", Score: 80},
		{Name: "exercise", Score: 30},
	}
	assert.Equal(t, 56.0, engine.RecomputeOverall(reordered))

	// Partial and empty slices weight only what is present.
	assert.Equal(t, 32.0, engine.RecomputeOverall([]CategoryScore{{Name: "sleep", Score: 80}}))
	assert.Equal(t, 0.0, engine.RecomputeOverall(nil))

	// Unknown category names contribute nothing.
	assert.Equal(t, 0.0, engine.RecomputeOverall([]CategoryScore{{Name: "unknown", Score: 90}}))
}

// ==========================
// Multi-Field & Lookup Tests
// ==========================

func TestEngine_ComputeScore_MultiFieldAverage(t *testing.T) {
	table := &Table{
		Version: "multi-v1",
		Categories: []Category{
			{Name: "sleep", Weight: 1.0, Scale: 10, Fields: []Field{
				{Key: "sleep_hours"},
				{Key: "sleep_quality"},
			}},
		},
	}
	engine := NewEngine(table, logger.NewTestLogger(t))

	model, err := engine.ComputeScore(AssessmentPayload{
		"sleep_hours":   8.0,
		"sleep_quality": 6.0,
	})

	require.NoError(t, err)
	score, _ := model.Category("sleep")
	assert.Equal(t, 70.0, score)
}

func TestEngine_ComputeScore_CategoricalLookup(t *testing.T) {
	table := &Table{
		Version: "lookup-v1",
		Categories: []Category{
			{Name: "exercise", Weight: 1.0, Scale: 5, Fields: []Field{
				{Key: "workout_frequency", Lookup: map[string]float64{
					"Never":       0,
					"Sometimes":   2,
					"Most days":   4,
					"Every day":   5,
				}},
			}},
		},
	}
	engine := NewEngine(table, logger.NewTestLogger(t))

	model, err := engine.ComputeScore(AssessmentPayload{"workout_frequency": "Most days"})

	require.NoError(t, err)
	score, _ := model.Category("exercise")
	assert.Equal(t, 80.0, score)
}

// ==========================
// Hosted-Form Payload Tests
// ==========================

func TestEngine_ComputeScore_FormResponsePayload(t *testing.T) {
	engine := newTestEngine(t)

	payload := AssessmentPayload{
		"form_response": map[string]interface{}{
			"token":        "tok-123",
			"submitted_at": "2026-02-03T10:30:00Z",
			"answers": []interface{}{
				map[string]interface{}{
					"type":   "number",
					"number": 8.0,
					"field":  map[string]interface{}{"ref": "sleep"},
				},
				map[string]interface{}{
					"type":   "number",
					"number": 3.0,
					"field":  map[string]interface{}{"ref": "exercise"},
				},
				map[string]interface{}{
					"type":  "email",
					"email": "subject@example.com",
					"field": map[string]interface{}{"ref": "contact"},
				},
			},
		},
	}

	model, err := engine.ComputeScore(payload)

	require.NoError(t, err)
	assert.Equal(t, "tok-123", model.Metadata.Subject)
	assert.Equal(t, time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC), model.Metadata.SubmittedAt)
	sleep, _ := model.Category("sleep")
	assert.Equal(t, 80.0, sleep)

	email, ok := ExtractEmail(payload)
	require.True(t, ok)
	assert.Equal(t, "subject@example.com", email)
}

func TestExtractEmail_FlatKey(t *testing.T) {
	email, ok := ExtractEmail(AssessmentPayload{"email": "someone@example.com"})
	require.True(t, ok)
	assert.Equal(t, "someone@example.com", email)

	_, ok = ExtractEmail(AssessmentPayload{"email": "not-an-address"})
	assert.False(t, ok)
}

func TestExtractSubject_Fallbacks(t *testing.T) {
	assert.Equal(t, "alex", ExtractSubject(AssessmentPayload{"subject": "alex"}))
	assert.Equal(t, "sam", ExtractSubject(AssessmentPayload{"name": "sam"}))
	assert.Equal(t, "", ExtractSubject(AssessmentPayload{}))
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkEngine_ComputeScore(b *testing.B) {
	engine := NewEngine(createTestTable(), logger.NewNoOpLogger())
	payload := AssessmentPayload{"sleep": 8.0, "exercise": 3.0, "diet": 5.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ComputeScore(payload)
	}
}
