// Package migrate loads ordered migration units and applies unapplied
// ones exactly once, each in its own transaction.
package migrate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
)

// TargetLatest applies every remaining unit.
const TargetLatest = "latest"

// Unit is one atomic, ordered schema-change artifact.
// Identity is the version token; ordering is total and determined by the
// token, never by load order. Units are immutable once released, since
// applied-version records reference them by token.
type Unit struct {
	// Token is the monotonically ordered version token, e.g. "004".
	Token string

	// Name is the human-readable description from the filename.
	Name string

	// Statements holds the schema statements for SQL units, in order.
	Statements []string

	// Apply is the imperative alternative to Statements. Exactly one of
	// the two is set. The callback runs inside the unit's transaction.
	Apply func(ctx context.Context, tx *sql.Tx) error

	// Source is the originating file path, or "registered" for Go units.
	Source string
}

// IsSQL reports whether the unit applies via SQL statements.
func (u *Unit) IsSQL() bool {
	return u.Apply == nil
}

// Checksum returns the SHA-256 over the unit's normalized statements.
// Imperative units have no stable byte representation and return "".
func (u *Unit) Checksum() string {
	if !u.IsSQL() || len(u.Statements) == 0 {
		return ""
	}
	h := sha256.New()
	for _, s := range u.Statements {
		h.Write([]byte(s))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
