package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a string literal that libinjection flagged.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Value       string // The literal that was checked
}

// CheckLiteralForInjection runs libinjection over one string value.
//
// Model-generated SQL copies user wording into string literals (product names,
// store names, categories), so literals are where injected text would land.
// Returns nil if no injection is detected.
//
//	CheckLiteralForInjection("Organic Bananas")  // nil
//	CheckLiteralForInjection("' OR '1'='1")      // IsSQLi, Fingerprint "s&sos" (or similar)
func CheckLiteralForInjection(value string) *InjectionCheckResult {
	if value == "" {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Value:       value,
	}
}

// CheckLiterals returns the first flagged literal, or nil when all are clean.
func CheckLiterals(literals []string) *InjectionCheckResult {
	for _, lit := range literals {
		if result := CheckLiteralForInjection(lit); result != nil {
			return result
		}
	}
	return nil
}
