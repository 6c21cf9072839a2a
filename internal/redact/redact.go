// Package redact scrubs sensitive material from strings before they
// reach logs or error responses. Raw errors in this system can carry
// database URLs, SQL fragments, bcrypt hashes, JWTs, and user emails;
// everything logged through the shared response helpers passes through
// here first.
package redact

import "regexp"

// rule pairs a pattern with the placeholder that replaces its matches.
// Rules apply in order; earlier rules see the original text.
type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

var rules = []rule{
	// Connection URLs with embedded credentials (postgres://user:pw@host).
	{regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^@\s]+@[^\s]+`), "[REDACTED_URL]"},

	// Three-part JWTs.
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), "[REDACTED_JWT]"},

	// bcrypt hashes ($2a$, $2b$, $2y$ prefixes).
	{regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{20,}`), "[REDACTED_HASH]"},

	// password=..., password: ... style assignments.
	{regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token)\s*[=:]\s*['"]?[^'"\s&]{3,}`), "[REDACTED_CREDENTIAL]"},

	// Email addresses.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},

	// SQL statements leaked from the driver.
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b[\s\S]{0,200}?\b(FROM|INTO|SET|TABLE|WHERE)\b[^;'"]*`), "[REDACTED_SQL]"},

	// Filesystem paths.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), "[REDACTED_PATH]"},

	// host:port pairs from dial errors.
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`), "[REDACTED_HOST]"},
}

// String replaces every sensitive fragment in input with a placeholder.
func String(input string) string {
	if input == "" {
		return input
	}

	out := input
	for _, r := range rules {
		out = r.pattern.ReplaceAllString(out, r.placeholder)
	}
	return out
}

// Error redacts an error's message. Returns "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
