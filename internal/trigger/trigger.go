// Package trigger validates hand-written SQL trigger/function artifacts
// against the live schema the migrations produce. It catches column-name
// drift that would otherwise only surface when a runtime code path fires
// the trigger.
//
// Extraction is a scoped pattern scanner, not a full SQL parser: the
// artifacts are internally authored in two fixed grammars (SQLite
// BEGIN...END triggers, PostgreSQL trigger functions), so statement-level
// pattern matching is sufficient and keeps the engine dependency-free of
// a grammar toolchain.
package trigger

// Context classifies where a column reference appears in a trigger body.
type Context string

const (
	// ContextRowBefore is an OLD.column reference.
	ContextRowBefore Context = "row-before"

	// ContextRowAfter is a NEW.column reference.
	ContextRowAfter Context = "row-after"
)

// Definition is one extracted trigger with its resolved source table.
type Definition struct {
	// Name is the trigger name, or the function name for a PostgreSQL
	// trigger function that no CREATE TRIGGER statement references.
	Name string

	// Table is the table the trigger fires on. Empty when the source
	// table could not be resolved.
	Table string

	// Body is the raw SQL between BEGIN and END (SQLite) or inside the
	// dollar-quoted function body (PostgreSQL).
	Body string

	// Dialect is the grammar the definition was extracted with.
	Dialect string
}

// WriteTarget is one INSERT or UPDATE inside a trigger body, with the
// columns it writes.
type WriteTarget struct {
	Table   string
	Columns []string
}

// Kind classifies a validation finding.
type Kind string

const (
	KindMissingTable  Kind = "missing-table"
	KindMissingColumn Kind = "missing-column"
	KindAmbiguous     Kind = "ambiguous"
)

// ValidationError is one drift finding. It is a pure value: validation
// never raises, callers decide whether findings fail the run.
type ValidationError struct {
	// Subject is the trigger or function name the finding belongs to.
	Subject string

	// Kind classifies the finding.
	Kind Kind

	// Message names the offending table or column and what the schema
	// actually offers.
	Message string

	// Suggestions are best-effort alternatives computed by token
	// overlap, not a guarantee of correctness.
	Suggestions []string
}
