// internal/scoring/models.go
package scoring

import "time"

// AssessmentPayload is the decoded JSON object submitted by a client.
// Unknown keys are ignored; missing category fields fall back to the
// category's neutral default.
type AssessmentPayload map[string]interface{}

// CategoryScore is one category's normalized score in [0,100].
type CategoryScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Metadata carries traceability fields; it is never used in scoring math.
type Metadata struct {
	Subject     string    `json:"subject,omitempty"`
	SubmittedAt time.Time `json:"submittedAt,omitempty"`
	SourceRef   string    `json:"sourceRef,omitempty"`
}

// ScoreModel is the computed result of scoring a payload. Category order is
// the canonical table order, not input order. Immutable after creation.
type ScoreModel struct {
	OverallScore   float64         `json:"overallScore"`
	CategoryScores []CategoryScore `json:"categoryScores"`
	Metadata       Metadata        `json:"metadata"`
	TableVersion   string          `json:"tableVersion"`
}

// Category returns the score for a named category.
func (m *ScoreModel) Category(name string) (float64, bool) {
	for _, cs := range m.CategoryScores {
		if cs.Name == name {
			return cs.Score, true
		}
	}
	return 0, false
}

// CategoryMap returns the category scores as a map for JSON summaries.
func (m *ScoreModel) CategoryMap() map[string]float64 {
	out := make(map[string]float64, len(m.CategoryScores))
	for _, cs := range m.CategoryScores {
		out[cs.Name] = cs.Score
	}
	return out
}
