// internal/common/validation/validate.go
package validation

import "regexp"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// payloadNamePattern restricts stored payload names to what the store writes.
var payloadNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+\.json$`)

// ValidatePayloadName validates a stored payload file name
func ValidatePayloadName(name string) bool {
	return payloadNamePattern.MatchString(name)
}

// reportKeyPattern matches keys produced by the report key derivation.
var reportKeyPattern = regexp.MustCompile(`^[a-z0-9-]+_[0-9TZ]+$`)

// ValidateReportKey validates a report artifact key
func ValidateReportKey(key string) bool {
	return reportKeyPattern.MatchString(key)
}
