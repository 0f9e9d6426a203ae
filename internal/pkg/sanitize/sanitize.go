// Package sanitize masks credentials in error messages before they are logged,
// rendered into diagnostic markers or returned to clients.
package sanitize

import "regexp"

var (
	// Anthropic keys must be masked before the generic OpenAI pattern runs.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-_]+`)
	// Does not match already-masked values (they contain '*').
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9\-_]{10,}`)
	// Gemini keys travel as a query parameter and also appear bare (AIza...).
	googleQueryKeyPattern = regexp.MustCompile(`([?&]key=)[^&\s"']+`)
	googleKeyPattern      = regexp.MustCompile(`AIza[0-9A-Za-z\-_]{20,}`)

	dbPasswordPattern = regexp.MustCompile(`://([^:/\s]+):([^@\s]+)@`)
)

// String returns s with API keys and DSN passwords masked.
func String(s string) string {
	s = anthropicKeyPattern.ReplaceAllString(s, "sk-ant-****")
	s = openaiKeyPattern.ReplaceAllString(s, "sk-****")
	s = googleQueryKeyPattern.ReplaceAllString(s, "${1}****")
	s = googleKeyPattern.ReplaceAllString(s, "AIza****")
	s = dbPasswordPattern.ReplaceAllString(s, "://$1:****@")
	return s
}

// Error returns the masked message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
