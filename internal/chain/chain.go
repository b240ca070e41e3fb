// Package chain verifies migration chain integrity: the recorded
// checksums in the version store must match the unit files on disk.
// A merkle root over the chain gives a single comparable fingerprint;
// on divergence the per-unit comparison names the first edited unit.
package chain

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/strata/internal/migrate"
	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/internal/version"
)

// Entry is one unit's contribution to the chain.
type Entry struct {
	Token    string
	Checksum string
}

// CalculateHash implements merkletree.Content.
func (e Entry) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(e.Token + ":" + e.Checksum))
	return h[:], nil
}

// Equals implements merkletree.Content.
func (e Entry) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(Entry)
	if !ok {
		return false, nil
	}
	return e.Token == o.Token && e.Checksum == o.Checksum, nil
}

// Root computes the merkle root over the entries in order.
// An empty chain has a stable, well-known root.
func Root(entries []Entry) (string, error) {
	if len(entries) == 0 {
		h := sha256.Sum256(nil)
		return hex.EncodeToString(h[:]), nil
	}

	contents := make([]merkletree.Content, len(entries))
	for i, e := range entries {
		contents[i] = e
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return "", sterr.Wrap(sterr.ErrInternal, err, "failed to build chain merkle tree")
	}
	return hex.EncodeToString(tree.MerkleRoot()), nil
}

// DivergenceKind classifies a chain mismatch.
type DivergenceKind string

const (
	// KindEdited means a released unit's content changed after it was applied.
	KindEdited DivergenceKind = "edited"

	// KindMissing means an applied unit no longer exists on disk.
	KindMissing DivergenceKind = "missing-on-disk"
)

// Divergence is one mismatch between the store and the on-disk units.
type Divergence struct {
	Token    string
	Kind     DivergenceKind
	Recorded string
	Actual   string
}

// Compare checks every applied record against the on-disk unit with the
// same token. Imperative units and records without checksums are skipped:
// they have no stable byte representation to compare.
func Compare(applied []version.Record, units []migrate.Unit) []Divergence {
	byToken := make(map[string]*migrate.Unit, len(units))
	for i := range units {
		byToken[units[i].Token] = &units[i]
	}

	var diverged []Divergence
	for _, rec := range applied {
		if rec.Checksum == "" {
			continue
		}

		u, ok := byToken[rec.Token]
		if !ok {
			diverged = append(diverged, Divergence{
				Token:    rec.Token,
				Kind:     KindMissing,
				Recorded: rec.Checksum,
			})
			continue
		}

		if actual := u.Checksum(); actual != rec.Checksum {
			diverged = append(diverged, Divergence{
				Token:    rec.Token,
				Kind:     KindEdited,
				Recorded: rec.Checksum,
				Actual:   actual,
			})
		}
	}

	return diverged
}

// AppliedEntries converts applied records to chain entries.
func AppliedEntries(applied []version.Record) []Entry {
	entries := make([]Entry, len(applied))
	for i, rec := range applied {
		entries[i] = Entry{Token: rec.Token, Checksum: rec.Checksum}
	}
	return entries
}

// UnitEntries converts on-disk units to chain entries.
func UnitEntries(units []migrate.Unit) []Entry {
	entries := make([]Entry, len(units))
	for i := range units {
		entries[i] = Entry{Token: units[i].Token, Checksum: units[i].Checksum()}
	}
	return entries
}
