package anthropic

import "strings"

// IsQuotaError reports whether an error is a quota or rate-limit failure.
// The API surfaces these with HTTP 429 or quota wording in the message; the
// extractor falls back immediately on them instead of retrying.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}
