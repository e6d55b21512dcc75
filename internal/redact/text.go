package redact

import "regexp"

// Compiled patterns for sensitive data detection in free text.
var (
	// Email addresses.
	emailRe = regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`)

	// Credentials: key=value pairs where key suggests a secret.
	credKVRe = regexp.MustCompile(`(?i)(?:password|passwd|secret|token|api_key|apikey|auth)[ \t]*[=:][ \t]*\S+`)
)

// Text masks emails and credential pairs in free-form text, such as the
// data summary recorded on audit operation entries.
func Text(s string) string {
	s = credKVRe.ReplaceAllString(s, "***")
	return emailRe.ReplaceAllString(s, "***")
}
