// Package sql provides SQL validation utilities and the read-only guard applied
// to model-generated queries before they reach the warehouse.
package sql

import (
	"errors"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")
)

// ValidationResult contains the normalized SQL and any validation errors.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize checks SQL for multiple statements and strips the trailing semicolon.
//
// The validation order is:
// 1. Strip trailing semicolon and whitespace (normalize)
// 2. Check for multiple statements (any remaining semicolons outside literals and comments)
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)
	if sqlQuery == "" {
		return ValidationResult{NormalizedSQL: sqlQuery}
	}

	normalized := stripTrailingSemicolon(sqlQuery)

	code := stripTrailingSemicolon(scan(normalized).code)
	if strings.ContainsRune(code, ';') {
		return ValidationResult{Error: ErrMultipleStatements}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace around it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}

// scanned is a query split into analyzable code and the string literals it contains.
type scanned struct {
	// code has comments removed, string literal bodies emptied ('') and
	// quoted identifiers blanked ("_"), so keyword checks only see SQL structure.
	code string
	// literals holds the unescaped contents of each single-quoted literal, in order.
	literals []string
	// unterminated is set when input ends inside a literal, identifier, or block comment.
	unterminated bool
}

func scan(q string) scanned {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateLineComment
		stateBlockComment
	)

	var (
		out     strings.Builder
		literal strings.Builder
		res     scanned
		state   = stateNormal
	)

	runes := []rune(q)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				state = stateSingleQuote
				literal.Reset()
			case c == '"':
				state = stateDoubleQuote
			case c == '-' && next == '-':
				state = stateLineComment
				i++
			case c == '/' && next == '*':
				state = stateBlockComment
				i++
			default:
				out.WriteRune(c)
			}
		case stateSingleQuote:
			switch {
			case c == '\\' && next != 0:
				literal.WriteRune(next)
				i++
			case c == '\'' && next == '\'':
				literal.WriteRune('\'')
				i++
			case c == '\'':
				res.literals = append(res.literals, literal.String())
				out.WriteString("''")
				state = stateNormal
			default:
				literal.WriteRune(c)
			}
		case stateDoubleQuote:
			if c == '"' && next == '"' {
				i++
			} else if c == '"' {
				out.WriteString(`"_"`)
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				out.WriteRune('\n')
				state = stateNormal
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				out.WriteRune(' ')
				state = stateNormal
				i++
			}
		}
	}

	res.unterminated = state == stateSingleQuote || state == stateDoubleQuote || state == stateBlockComment
	res.code = out.String()
	return res
}
