// internal/scoring/config.go
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"healthreport-service/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// weightSumEpsilon bounds float drift when validating that weights sum to 1.
const weightSumEpsilon = 1e-6

// defaultNeutralScore is used when a category omits its own default.
const defaultNeutralScore = 50.0

// Table is the versioned category/weight configuration. Any change to it
// breaks comparability with historically computed scores, so the version
// must change with the content.
type Table struct {
	Version    string     `json:"version"`
	Categories []Category `json:"categories"`
}

// Category defines one scored category: its weight in the overall score, the
// raw answer scale (raw/scale maps to [0,1]), the neutral default used when
// no field is present, and the payload fields it draws from.
type Category struct {
	Name    string   `json:"name"`
	Weight  float64  `json:"weight"`
	Scale   float64  `json:"scale"`
	Default *float64 `json:"default,omitempty"`
	Fields  []Field  `json:"fields"`
}

// Field maps a payload key to a category. Lookup translates categorical
// string answers to raw numeric values on the category scale.
type Field struct {
	Key    string             `json:"key"`
	Lookup map[string]float64 `json:"lookup,omitempty"`
}

// DefaultScore returns the neutral score used when the category is absent.
func (c Category) DefaultScore() float64 {
	if c.Default != nil {
		return *c.Default
	}
	return defaultNeutralScore
}

const tableSchema = `{
	"type": "object",
	"required": ["version", "categories"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"categories": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "weight", "scale", "fields"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"weight": {"type": "number", "minimum": 0, "maximum": 1},
					"scale": {"type": "number", "minimum": 0, "exclusiveMinimum": true},
					"default": {"type": "number", "minimum": 0, "maximum": 100},
					"fields": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["key"],
							"properties": {
								"key": {"type": "string", "minLength": 1},
								"lookup": {
									"type": "object",
									"additionalProperties": {"type": "number"}
								}
							}
						}
					}
				}
			}
		}
	}
}`

// LoadTable reads, schema-validates, and semantically validates a scoring
// table. Every failure is a configuration error; callers are expected to
// fail fast at process start.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("read scoring table %s: %v", path, err))
	}
	return ParseTable(data)
}

// ParseTable validates and decodes scoring table JSON.
func ParseTable(data []byte) (*Table, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(tableSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("scoring table is not valid JSON: %v", err))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}
		return nil, errors.NewConfigurationError("scoring table schema violation: " + strings.Join(msgs, "; "))
	}

	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("decode scoring table: %v", err))
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks the invariants the schema cannot express: unique category
// names and weights summing to 1.0.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Categories))
	sum := 0.0
	for _, cat := range t.Categories {
		if seen[cat.Name] {
			return errors.NewConfigurationError(fmt.Sprintf("duplicate category %q in scoring table", cat.Name))
		}
		seen[cat.Name] = true
		sum += cat.Weight
	}

	if math.Abs(sum-1.0) > weightSumEpsilon {
		return errors.NewConfigurationError(fmt.Sprintf("category weights sum to %g, want 1.0", sum))
	}
	return nil
}
