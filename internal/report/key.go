// internal/report/key.go
package report

import (
	"strings"
	"time"
)

// keyTimeLayout is a compact UTC timestamp, filesystem and URL safe.
const keyTimeLayout = "20060102T150405Z"

// DeriveKey builds the deterministic report key for a subject and submission
// time. The same subject and timestamp always produce the same key, so
// reprocessing a stored payload overwrites its own artifacts instead of
// accumulating copies.
func DeriveKey(subject string, ts time.Time) string {
	return sanitizeSubject(subject) + "_" + ts.UTC().Format(keyTimeLayout)
}

// sanitizeSubject lowercases the subject and collapses everything outside
// [a-z0-9] into single hyphens. Empty or fully-stripped subjects become
// "anonymous".
func sanitizeSubject(subject string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(subject) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "anonymous"
	}
	return out
}
