// Package strutil provides string utilities for identifier handling
// used throughout the Strata codebase.
package strutil

import (
	"strings"
	"unicode"
)

// NormalizeIdent lowercases an identifier and strips surrounding quotes.
// Both supported dialects fold unquoted identifiers, so comparisons
// happen on the normalized form.
func NormalizeIdent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, "`")
	return strings.ToLower(s)
}

// SplitIdentTokens splits an identifier into lowercase tokens on
// underscores, dashes, dots, spaces and camelCase boundaries.
// Examples:
//
//	account_id   -> [account id]
//	lastLoginAt  -> [last login at]
//	user-profile -> [user profile]
func SplitIdentTokens(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
		prev = r
	}
	flush()

	return tokens
}

// ToSnakeCase converts a string to snake_case.
// Examples: userName -> user_name, UserName -> user_name, HTTPServer -> http_server
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s) + 4)

	for i, r := range s {
		if unicode.IsUpper(r) {
			// Add underscore before uppercase letter if:
			// - Not at the start
			// - Previous char is lowercase, OR
			// - Next char exists and is lowercase (handles "HTTPServer" -> "http_server")
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteByte('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteByte('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else if r == '-' || r == ' ' {
			result.WriteByte('_')
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
