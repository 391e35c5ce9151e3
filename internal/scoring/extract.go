// internal/scoring/extract.go
package scoring

import (
	"time"

	"healthreport-service/internal/common/validation"
)

// Payload extraction supports two shapes: a flat JSON object of
// key → answer, and the hosted-form webhook shape where answers live under
// form_response.answers with a field ref per answer.

// flatten reduces a payload to key → raw answer value. Hosted-form answers
// and hidden fields are merged in under their refs; top-level keys win.
func flatten(payload AssessmentPayload) map[string]interface{} {
	flat := make(map[string]interface{}, len(payload))

	if fr, ok := payload["form_response"].(map[string]interface{}); ok {
		if hidden, ok := fr["hidden"].(map[string]interface{}); ok {
			for k, v := range hidden {
				flat[k] = v
			}
		}
		if answers, ok := fr["answers"].([]interface{}); ok {
			for _, raw := range answers {
				answer, ok := raw.(map[string]interface{})
				if !ok {
					continue
				}
				ref := answerRef(answer)
				if ref == "" {
					continue
				}
				if val, ok := answerValue(answer); ok {
					flat[ref] = val
				}
			}
		}
	}

	for k, v := range payload {
		if k == "form_response" {
			continue
		}
		flat[k] = v
	}
	return flat
}

func answerRef(answer map[string]interface{}) string {
	field, ok := answer["field"].(map[string]interface{})
	if !ok {
		return ""
	}
	ref, _ := field["ref"].(string)
	return ref
}

func answerValue(answer map[string]interface{}) (interface{}, bool) {
	answerType, _ := answer["type"].(string)
	switch answerType {
	case "number":
		if n, ok := answer["number"].(float64); ok {
			return n, true
		}
	case "choice":
		if choice, ok := answer["choice"].(map[string]interface{}); ok {
			if label, ok := choice["label"].(string); ok {
				return label, true
			}
		}
	case "text", "short_text", "long_text":
		if s, ok := answer["text"].(string); ok {
			return s, true
		}
	case "email":
		if s, ok := answer["email"].(string); ok {
			return s, true
		}
	case "boolean":
		if b, ok := answer["boolean"].(bool); ok {
			return b, true
		}
	}
	return nil, false
}

// extractValue resolves one configured field from the flattened payload,
// returning the raw value on the category scale and whether it was present.
// "Missing vs zero" is never ambiguous: absence is the false return.
func extractValue(flat map[string]interface{}, field Field) (float64, bool) {
	raw, ok := flat[field.Key]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		if field.Lookup != nil {
			if mapped, ok := field.Lookup[v]; ok {
				return mapped, true
			}
		}
	}
	return 0, false
}

// ExtractEmail pulls a recipient address out of the payload: a top-level
// "email" key or a hosted-form email answer.
func ExtractEmail(payload AssessmentPayload) (string, bool) {
	if s, ok := payload["email"].(string); ok && validation.ValidateEmail(s) {
		return s, true
	}

	fr, ok := payload["form_response"].(map[string]interface{})
	if !ok {
		return "", false
	}
	answers, ok := fr["answers"].([]interface{})
	if !ok {
		return "", false
	}
	for _, raw := range answers {
		answer, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if t, _ := answer["type"].(string); t != "email" {
			continue
		}
		if s, ok := answer["email"].(string); ok && validation.ValidateEmail(s) {
			return s, true
		}
	}
	return "", false
}

// ExtractSubject resolves the subject identifier used for report keys:
// explicit top-level keys, then hosted-form hidden name, then the form
// response token.
func ExtractSubject(payload AssessmentPayload) string {
	for _, key := range []string{"subject", "name", "user"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}

	if fr, ok := payload["form_response"].(map[string]interface{}); ok {
		if hidden, ok := fr["hidden"].(map[string]interface{}); ok {
			if s, ok := hidden["name"].(string); ok && s != "" {
				return s
			}
		}
		if s, ok := fr["token"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ExtractSourceRef resolves an upstream event reference for traceability: a
// top-level "event_id" or the hosted-form event id.
func ExtractSourceRef(payload AssessmentPayload) string {
	if s, ok := payload["event_id"].(string); ok {
		return s
	}
	if fr, ok := payload["form_response"].(map[string]interface{}); ok {
		if s, ok := fr["event_id"].(string); ok {
			return s
		}
	}
	return ""
}

// ExtractSubmittedAt resolves the submission timestamp when the payload
// carries one; the zero time means "not present".
func ExtractSubmittedAt(payload AssessmentPayload) time.Time {
	candidates := []interface{}{payload["submitted_at"]}
	if fr, ok := payload["form_response"].(map[string]interface{}); ok {
		candidates = append(candidates, fr["submitted_at"])
	}

	for _, c := range candidates {
		s, ok := c.(string)
		if !ok {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
