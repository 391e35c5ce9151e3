// internal/scoring/engine.go
package scoring

import (
	"math"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"
)

// Engine derives a ScoreModel from an assessment payload. It is pure with
// respect to process state: no I/O, no mutation of its inputs, identical
// payloads always produce identical models.
type Engine struct {
	table  *Table
	logger logger.Logger
}

// NewEngine builds an Engine around an already-validated table. Tables come
// from LoadTable or are injected directly by tests.
func NewEngine(table *Table, log logger.Logger) *Engine {
	return &Engine{
		table:  table,
		logger: log.WithFields(map[string]interface{}{"tableVersion": table.Version}),
	}
}

// ComputeScore scores a payload against the configured table. It fails with
// INVALID_PAYLOAD when the payload is nil or no category field could be
// derived from it at all; individual missing categories score their neutral
// default instead.
func (e *Engine) ComputeScore(payload AssessmentPayload) (*ScoreModel, error) {
	if payload == nil {
		return nil, errors.NewInvalidPayloadError("payload is not a JSON object")
	}

	flat := flatten(payload)

	scores := make([]CategoryScore, 0, len(e.table.Categories))
	derived := 0
	for _, cat := range e.table.Categories {
		score, present := e.scoreCategory(flat, cat)
		if present {
			derived++
		}
		scores = append(scores, CategoryScore{Name: cat.Name, Score: score})
	}

	if derived == 0 {
		return nil, errors.NewInvalidPayloadError("no scorable category fields present")
	}

	model := &ScoreModel{
		OverallScore:   e.RecomputeOverall(scores),
		CategoryScores: scores,
		Metadata: Metadata{
			Subject:     ExtractSubject(payload),
			SubmittedAt: ExtractSubmittedAt(payload),
			SourceRef:   ExtractSourceRef(payload),
		},
		TableVersion: e.table.Version,
	}

	e.logger.Debug("payload scored", map[string]interface{}{
		"overallScore":      model.OverallScore,
		"derivedCategories": derived,
		"subject":           model.Metadata.Subject,
	})

	return model, nil
}

// scoreCategory averages the category's present fields and normalizes onto
// [0,100]. Out-of-range raw answers are clamped, not rejected.
func (e *Engine) scoreCategory(flat map[string]interface{}, cat Category) (float64, bool) {
	sum := 0.0
	count := 0
	for _, field := range cat.Fields {
		if v, present := extractValue(flat, field); present && !math.IsNaN(v) {
			sum += v
			count++
		}
	}

	if count == 0 {
		return cat.DefaultScore(), false
	}

	raw := sum / float64(count)
	return clamp(round1(raw / cat.Scale * 100)), true
}

// RecomputeOverall computes the weighted aggregate of the given category
// scores. Weights are resolved by category name, so partial or reordered
// slices are safe; scores for names the table does not know contribute
// nothing. The table invariant (weights sum to 1.0, every score in [0,100])
// bounds the result to [0,100] for a full score set.
func (e *Engine) RecomputeOverall(scores []CategoryScore) float64 {
	weights := make(map[string]float64, len(e.table.Categories))
	for _, cat := range e.table.Categories {
		weights[cat.Name] = cat.Weight
	}

	total := 0.0
	for _, s := range scores {
		total += s.Score * weights[s.Name]
	}
	return clamp(round1(total))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
