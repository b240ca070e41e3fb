package trigger

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/internal/strutil"
)

var (
	// SQLite: CREATE TRIGGER name ... ON table ... BEGIN body END;
	sqliteTriggerRe = regexp.MustCompile(
		`(?is)CREATE\s+(?:TEMP(?:ORARY)?\s+)?TRIGGER\s+(?:IF\s+NOT\s+EXISTS\s+)?("?[\w]+"?)\s.*?\bON\s+("?[\w]+"?).*?\bBEGIN\b(.*?)\bEND\s*;`)

	// PostgreSQL: CREATE FUNCTION name() RETURNS TRIGGER AS $tag$ ... $tag$
	postgresFunctionRe = regexp.MustCompile(
		`(?is)CREATE\s+(?:OR\s+REPLACE\s+)?FUNCTION\s+("?[\w.]+"?)\s*\([^)]*\)\s+RETURNS\s+TRIGGER\b`)

	// PostgreSQL: CREATE TRIGGER name ... ON table ... EXECUTE FUNCTION fn()
	postgresTriggerRe = regexp.MustCompile(
		`(?is)CREATE\s+(?:OR\s+REPLACE\s+)?(?:CONSTRAINT\s+)?TRIGGER\s+("?[\w]+"?).*?\bON\s+("?[\w.]+"?).*?EXECUTE\s+(?:FUNCTION|PROCEDURE)\s+("?[\w.]+"?)\s*\(`)

	// Dollar-quote opener: $$, $body$, ...
	dollarTagRe = regexp.MustCompile(`\$[A-Za-z0-9_]*\$`)

	// NEW.column / OLD.column, case-insensitive.
	rowRefRe = regexp.MustCompile(`(?i)\b(NEW|OLD)\s*\.\s*([A-Za-z_][A-Za-z0-9_]*)`)

	// INSERT INTO table (col, col, ...)
	insertRe = regexp.MustCompile(
		`(?is)INSERT\s+(?:OR\s+(?:REPLACE|IGNORE|ABORT|FAIL|ROLLBACK)\s+)?INTO\s+("?[\w.]+"?)\s*\(([^)]*)\)`)

	// UPDATE table SET assignments [WHERE ...]
	updateRe = regexp.MustCompile(
		`(?is)UPDATE\s+(?:OR\s+(?:REPLACE|IGNORE|ABORT|FAIL|ROLLBACK)\s+)?("?[\w.]+"?)\s+SET\s+(.*?)(?:\bWHERE\b|;|$)`)

	// One "col =" assignment inside a SET clause.
	setColumnRe = regexp.MustCompile(`(?i)(?:^|,)\s*"?([A-Za-z_][A-Za-z0-9_]*)"?\s*=`)
)

// ExtractTriggers pattern-matches trigger/function definitions out of a
// raw SQL artifact in the named dialect's grammar.
func ExtractTriggers(src, dialectName string) ([]Definition, error) {
	switch dialectName {
	case "sqlite", "sqlite3":
		return extractSQLite(src), nil
	case "postgres", "postgresql":
		return extractPostgres(src)
	default:
		return nil, sterr.New(sterr.ErrUnsupportedDialect, "no trigger grammar for dialect").
			With("dialect", dialectName)
	}
}

func extractSQLite(src string) []Definition {
	var defs []Definition
	for _, m := range sqliteTriggerRe.FindAllStringSubmatch(src, -1) {
		defs = append(defs, Definition{
			Name:    strutil.NormalizeIdent(m[1]),
			Table:   baseTable(m[2]),
			Body:    strings.TrimSpace(m[3]),
			Dialect: "sqlite",
		})
	}
	return defs
}

func extractPostgres(src string) ([]Definition, error) {
	// Pass 1: trigger functions and their dollar-quoted bodies.
	bodies := make(map[string]string)
	var order []string

	for _, loc := range postgresFunctionRe.FindAllStringSubmatchIndex(src, -1) {
		name := strutil.NormalizeIdent(baseTable(src[loc[2]:loc[3]]))
		body, ok := dollarQuotedBody(src[loc[1]:])
		if !ok {
			return nil, sterr.New(sterr.ErrTriggerParse,
				"trigger function body is not properly dollar-quoted").
				With("function", name).
				WithHelp("close the body with the same tag that opened it, e.g. $$ ... $$")
		}
		bodies[name] = strings.TrimSpace(body)
		order = append(order, name)
	}

	// Pass 2: trigger declarations naming a function.
	used := make(map[string]bool)
	var defs []Definition

	for _, m := range postgresTriggerRe.FindAllStringSubmatch(src, -1) {
		fn := strutil.NormalizeIdent(baseTable(m[3]))
		body := bodies[fn]
		used[fn] = true

		defs = append(defs, Definition{
			Name:    strutil.NormalizeIdent(m[1]),
			Table:   baseTable(m[2]),
			Body:    body,
			Dialect: "postgres",
		})
	}

	// Functions never wired to a trigger still get validated; their row
	// references will surface as ambiguous since no table is declared.
	for _, name := range order {
		if !used[name] {
			defs = append(defs, Definition{
				Name:    name,
				Body:    bodies[name],
				Dialect: "postgres",
			})
		}
	}

	return defs, nil
}

// dollarQuotedBody returns the contents of the first dollar-quoted block
// in s. Go's RE2 has no backreferences, so the closing tag is located by
// plain string search.
func dollarQuotedBody(s string) (string, bool) {
	open := dollarTagRe.FindStringIndex(s)
	if open == nil {
		return "", false
	}
	tag := s[open[0]:open[1]]

	rest := s[open[1]:]
	close := strings.Index(rest, tag)
	if close == -1 {
		return "", false
	}
	return rest[:close], true
}

// ExtractColumnReferences finds row-before (OLD.x) and row-after (NEW.x)
// column references in a trigger body, case-insensitively. Each context
// maps to a sorted, de-duplicated column list, so extraction is stable
// for a fixed input.
func ExtractColumnReferences(body string) map[Context][]string {
	seen := map[Context]map[string]bool{
		ContextRowBefore: {},
		ContextRowAfter:  {},
	}

	for _, m := range rowRefRe.FindAllStringSubmatch(body, -1) {
		ctx := ContextRowAfter
		if strings.EqualFold(m[1], "OLD") {
			ctx = ContextRowBefore
		}
		seen[ctx][strings.ToLower(m[2])] = true
	}

	refs := make(map[Context][]string)
	for ctx, cols := range seen {
		if len(cols) == 0 {
			continue
		}
		list := make([]string, 0, len(cols))
		for col := range cols {
			list = append(list, col)
		}
		sort.Strings(list)
		refs[ctx] = list
	}
	return refs
}

// ExtractWrittenColumns finds INSERT and UPDATE statement targets and
// their column lists inside a trigger body.
func ExtractWrittenColumns(body string) []WriteTarget {
	var targets []WriteTarget

	for _, m := range insertRe.FindAllStringSubmatch(body, -1) {
		var cols []string
		for _, raw := range strings.Split(m[2], ",") {
			if col := strutil.NormalizeIdent(raw); col != "" {
				cols = append(cols, col)
			}
		}
		targets = append(targets, WriteTarget{Table: baseTable(m[1]), Columns: cols})
	}

	for _, m := range updateRe.FindAllStringSubmatch(body, -1) {
		var cols []string
		for _, sm := range setColumnRe.FindAllStringSubmatch(m[2], -1) {
			cols = append(cols, strings.ToLower(sm[1]))
		}
		targets = append(targets, WriteTarget{Table: baseTable(m[1]), Columns: cols})
	}

	return targets
}

// baseTable strips quoting and any schema qualifier from a table name.
func baseTable(name string) string {
	name = strutil.NormalizeIdent(name)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
