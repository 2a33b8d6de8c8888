package sql

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
)

// UnsafeQueryError is returned by Guard.Check when a query may not run.
type UnsafeQueryError struct {
	Reason      string
	Fingerprint string // libinjection fingerprint, when a literal was flagged
}

func (e *UnsafeQueryError) Error() string {
	if e.Fingerprint != "" {
		return fmt.Sprintf("unsafe query: %s (fingerprint %s)", e.Reason, e.Fingerprint)
	}
	return "unsafe query: " + e.Reason
}

// Unwrap lets callers match apperrors.ErrUnsafeQuery.
func (e *UnsafeQueryError) Unwrap() error {
	return apperrors.ErrUnsafeQuery
}

// DefaultDeniedKeywords may not appear anywhere in an admitted query. Statements
// that cannot start with SELECT/WITH are already rejected by the first-keyword
// rule; this list catches writes nested inside one (SELECT ... INTO, data-modifying CTEs).
var DefaultDeniedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "MERGE",
	"DROP", "ALTER", "CREATE", "TRUNCATE",
	"GRANT", "REVOKE",
	"COPY", "PUT", "CALL", "EXEC", "EXECUTE", "USE",
	"INTO",
}

// Guard admits single read-only SELECT/WITH statements.
type Guard struct {
	denied map[string]bool
}

// NewGuard returns a guard that rejects DefaultDeniedKeywords plus any extra keywords.
func NewGuard(extraDenied ...string) *Guard {
	g := &Guard{denied: make(map[string]bool)}
	for _, kw := range DefaultDeniedKeywords {
		g.denied[kw] = true
	}
	for _, kw := range extraDenied {
		g.denied[strings.ToUpper(kw)] = true
	}
	return g
}

// Check normalizes q and returns it if it is safe to run, or an *UnsafeQueryError.
//
// Keywords are matched outside string literals, quoted identifiers and comments,
// so WHERE note = 'DROP' is fine. String literal contents go through libinjection.
func (g *Guard) Check(q string) (string, error) {
	res := ValidateAndNormalize(q)
	if res.Error != nil {
		return "", &UnsafeQueryError{Reason: "multiple statements"}
	}
	if res.NormalizedSQL == "" {
		return "", &UnsafeQueryError{Reason: "empty query"}
	}

	s := scan(res.NormalizedSQL)
	if s.unterminated {
		return "", &UnsafeQueryError{Reason: "unterminated string literal, identifier or comment"}
	}

	words := keywords(s.code)
	if len(words) == 0 {
		return "", &UnsafeQueryError{Reason: "no SQL keywords found"}
	}
	if words[0] != "SELECT" && words[0] != "WITH" {
		return "", &UnsafeQueryError{Reason: fmt.Sprintf("only SELECT or WITH queries are allowed, got %s", words[0])}
	}
	for _, w := range words {
		if g.denied[w] {
			return "", &UnsafeQueryError{Reason: fmt.Sprintf("%s is not allowed in read-only queries", w)}
		}
	}

	if hit := CheckLiterals(s.literals); hit != nil {
		return "", &UnsafeQueryError{Reason: "string literal looks like SQL injection", Fingerprint: hit.Fingerprint}
	}

	return res.NormalizedSQL, nil
}

// keywords splits code into upper-cased identifier-like words, dropping numbers.
func keywords(code string) []string {
	fields := strings.FieldsFunc(code, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$')
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if unicode.IsDigit([]rune(f)[0]) {
			continue
		}
		words = append(words, strings.ToUpper(f))
	}
	return words
}
