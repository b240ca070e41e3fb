package chain

import (
	"testing"

	"github.com/hlop3z/strata/internal/migrate"
	"github.com/hlop3z/strata/internal/version"
)

func TestRoot(t *testing.T) {
	entries := []Entry{
		{Token: "001", Checksum: "aaa"},
		{Token: "002", Checksum: "bbb"},
	}

	t.Run("deterministic", func(t *testing.T) {
		a, err := Root(entries)
		if err != nil {
			t.Fatalf("Root: %v", err)
		}
		b, err := Root(entries)
		if err != nil {
			t.Fatalf("Root: %v", err)
		}
		if a != b {
			t.Error("Root is not deterministic")
		}
		if a == "" {
			t.Error("Root is empty")
		}
	})

	t.Run("content sensitive", func(t *testing.T) {
		a, _ := Root(entries)
		edited := []Entry{
			{Token: "001", Checksum: "aaa"},
			{Token: "002", Checksum: "edited"},
		}
		b, _ := Root(edited)
		if a == b {
			t.Error("Root did not change when a checksum changed")
		}
	})

	t.Run("empty chain has stable root", func(t *testing.T) {
		a, err := Root(nil)
		if err != nil {
			t.Fatalf("Root: %v", err)
		}
		b, _ := Root([]Entry{})
		if a != b || a == "" {
			t.Errorf("empty roots differ: %q vs %q", a, b)
		}
	})
}

func TestCompare(t *testing.T) {
	units := []migrate.Unit{
		{Token: "001", Statements: []string{"CREATE TABLE a (id INTEGER)"}},
		{Token: "002", Statements: []string{"CREATE TABLE b (id INTEGER)"}},
	}

	t.Run("clean history", func(t *testing.T) {
		applied := []version.Record{
			{Token: "001", Checksum: units[0].Checksum()},
			{Token: "002", Checksum: units[1].Checksum()},
		}
		if diverged := Compare(applied, units); len(diverged) != 0 {
			t.Errorf("diverged = %+v, want none", diverged)
		}
	})

	t.Run("edited unit", func(t *testing.T) {
		applied := []version.Record{
			{Token: "001", Checksum: "recorded-before-the-edit"},
		}
		diverged := Compare(applied, units)
		if len(diverged) != 1 {
			t.Fatalf("got %d divergences, want 1", len(diverged))
		}
		d := diverged[0]
		if d.Kind != KindEdited || d.Token != "001" {
			t.Errorf("divergence = %+v", d)
		}
		if d.Actual != units[0].Checksum() {
			t.Errorf("Actual = %q", d.Actual)
		}
	})

	t.Run("missing on disk", func(t *testing.T) {
		applied := []version.Record{
			{Token: "001", Checksum: units[0].Checksum()},
			{Token: "009", Checksum: "deadbeef"},
		}
		diverged := Compare(applied, units)
		if len(diverged) != 1 || diverged[0].Kind != KindMissing {
			t.Errorf("diverged = %+v, want one missing-on-disk", diverged)
		}
	})

	t.Run("imperative records are skipped", func(t *testing.T) {
		applied := []version.Record{
			{Token: "001", Checksum: ""},
		}
		if diverged := Compare(applied, units); len(diverged) != 0 {
			t.Errorf("diverged = %+v, want none for empty checksum", diverged)
		}
	})
}

func TestEntryConversion(t *testing.T) {
	units := []migrate.Unit{
		{Token: "001", Statements: []string{"CREATE TABLE a (id INTEGER)"}},
	}
	applied := []version.Record{
		{Token: "001", Checksum: units[0].Checksum()},
	}

	ae := AppliedEntries(applied)
	ue := UnitEntries(units)

	aRoot, err := Root(ae)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	uRoot, err := Root(ue)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if aRoot != uRoot {
		t.Error("matching history should produce matching roots")
	}
}
