package migrate

import (
	"strings"
)

// SplitStatements splits SQL source into individual statements on
// top-level semicolons. It understands single and double quotes,
// line and block comments, PostgreSQL dollar-quoted bodies, and
// BEGIN...END trigger blocks, so a unit file may carry several
// statements including trigger definitions.
func SplitStatements(src string) []string {
	var statements []string
	var current strings.Builder

	// beginDepth tracks BEGIN...END nesting so semicolons inside a
	// trigger body do not terminate the statement.
	beginDepth := 0

	i := 0
	for i < len(src) {
		rest := src[i:]

		switch {
		case strings.HasPrefix(rest, "--"):
			end := strings.IndexByte(rest, '\n')
			if end == -1 {
				i = len(src)
				continue
			}
			current.WriteString(rest[:end+1])
			i += end + 1

		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest, "*/")
			if end == -1 {
				current.WriteString(rest)
				i = len(src)
				continue
			}
			current.WriteString(rest[:end+2])
			i += end + 2

		case rest[0] == '\'' || rest[0] == '"' || rest[0] == '`':
			quoted := scanQuoted(rest)
			current.WriteString(quoted)
			i += len(quoted)

		case rest[0] == '$':
			if tag := dollarTag(rest); tag != "" {
				closing := strings.Index(rest[len(tag):], tag)
				if closing == -1 {
					current.WriteString(rest)
					i = len(src)
					continue
				}
				body := rest[:len(tag)+closing+len(tag)]
				current.WriteString(body)
				i += len(body)
			} else {
				current.WriteByte('$')
				i++
			}

		case isWordBoundary(src, i) && hasKeyword(rest, "BEGIN"):
			beginDepth++
			current.WriteString(rest[:5])
			i += 5

		case isWordBoundary(src, i) && hasKeyword(rest, "CASE"):
			// CASE expressions close with END too.
			beginDepth++
			current.WriteString(rest[:4])
			i += 4

		case isWordBoundary(src, i) && hasKeyword(rest, "END"):
			if beginDepth > 0 {
				beginDepth--
			}
			current.WriteString(rest[:3])
			i += 3

		case rest[0] == ';':
			current.WriteByte(';')
			i++
			if beginDepth == 0 {
				if stmt := strings.TrimSpace(current.String()); !isEmptyStatement(stmt) {
					statements = append(statements, stmt)
				}
				current.Reset()
			}

		default:
			current.WriteByte(rest[0])
			i++
		}
	}

	if stmt := strings.TrimSpace(current.String()); !isEmptyStatement(stmt) {
		statements = append(statements, stmt)
	}

	return statements
}

// scanQuoted returns the quoted literal at the start of s, including both
// delimiters. Doubled quotes inside the literal are the escape form in
// both supported dialects.
func scanQuoted(s string) string {
	quote := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++ // escaped quote
			continue
		}
		return s[:i+1]
	}
	return s
}

// dollarTag returns the dollar-quote tag at the start of s ("$$",
// "$body$", ...), or "" if s does not start one.
func dollarTag(s string) string {
	if len(s) < 2 || s[0] != '$' {
		return ""
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '$' {
			return s[:i+1]
		}
		if !isTagChar(c) {
			return ""
		}
	}
	return ""
}

func isTagChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// hasKeyword reports whether s starts with the keyword (case-insensitive)
// followed by a non-identifier character or end of input.
func hasKeyword(s, kw string) bool {
	if len(s) < len(kw) {
		return false
	}
	if !strings.EqualFold(s[:len(kw)], kw) {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	return !isTagChar(s[len(kw)])
}

// isWordBoundary reports whether position i starts a new word in src.
func isWordBoundary(src string, i int) bool {
	if i == 0 {
		return true
	}
	return !isTagChar(src[i-1])
}

// isEmptyStatement reports whether stmt holds only comments or whitespace.
func isEmptyStatement(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == ";" || strings.HasPrefix(line, "--") {
			continue
		}
		return false
	}
	return true
}
