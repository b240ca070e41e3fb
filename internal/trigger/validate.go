package trigger

import (
	"context"
	"fmt"
	"strings"

	"github.com/hlop3z/strata/internal/introspect"
	"github.com/hlop3z/strata/internal/sterr"
)

// Validate cross-checks extracted trigger definitions against the live
// schema. For each written-column target it confirms the table exists and
// every column is present; for each NEW./OLD. reference it resolves the
// trigger's declared source table and confirms the column there.
//
// It never mutates the store: pure analysis over SQL text plus
// introspected schema. The returned error covers introspection failures
// only; drift findings come back as values.
func Validate(ctx context.Context, defs []Definition, ins introspect.Introspector) ([]ValidationError, error) {
	var findings []ValidationError

	for _, def := range defs {
		found, err := validateWrites(ctx, def, ins)
		if err != nil {
			return nil, err
		}
		findings = append(findings, found...)

		found, err = validateRowRefs(ctx, def, ins)
		if err != nil {
			return nil, err
		}
		findings = append(findings, found...)
	}

	return findings, nil
}

func validateWrites(ctx context.Context, def Definition, ins introspect.Introspector) ([]ValidationError, error) {
	var findings []ValidationError

	for _, target := range ExtractWrittenColumns(def.Body) {
		exists, err := ins.TableExists(ctx, target.Table)
		if err != nil {
			return nil, err
		}
		if !exists {
			tables, err := ins.Tables(ctx)
			if err != nil {
				return nil, err
			}
			finding := ValidationError{
				Subject: def.Name,
				Kind:    KindMissingTable,
				Message: fmt.Sprintf("trigger %q writes to table %q which does not exist", def.Name, target.Table),
			}
			if match, ok := sterr.FindClosestMatch(target.Table, tables); ok {
				finding.Suggestions = []string{match}
			}
			findings = append(findings, finding)
			continue
		}

		found, err := checkColumns(ctx, def.Name, target.Table, target.Columns, ins)
		if err != nil {
			return nil, err
		}
		findings = append(findings, found...)
	}

	return findings, nil
}

func validateRowRefs(ctx context.Context, def Definition, ins introspect.Introspector) ([]ValidationError, error) {
	refs := ExtractColumnReferences(def.Body)
	if len(refs) == 0 {
		return nil, nil
	}

	if def.Table == "" {
		return []ValidationError{{
			Subject: def.Name,
			Kind:    KindAmbiguous,
			Message: fmt.Sprintf("trigger function %q uses NEW/OLD but no CREATE TRIGGER declares its source table", def.Name),
		}}, nil
	}

	exists, err := ins.TableExists(ctx, def.Table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []ValidationError{{
			Subject: def.Name,
			Kind:    KindMissingTable,
			Message: fmt.Sprintf("trigger %q fires on table %q which does not exist", def.Name, def.Table),
		}}, nil
	}

	var findings []ValidationError
	// Deterministic order: row-after (NEW) then row-before (OLD).
	for _, refCtx := range []Context{ContextRowAfter, ContextRowBefore} {
		cols, ok := refs[refCtx]
		if !ok {
			continue
		}
		found, err := checkColumns(ctx, def.Name, def.Table, cols, ins)
		if err != nil {
			return nil, err
		}
		findings = append(findings, found...)
	}

	return findings, nil
}

// checkColumns reports every named column missing from the table's live
// snapshot, with the available columns and token-overlap suggestions.
func checkColumns(ctx context.Context, subject, table string, columns []string, ins introspect.Introspector) ([]ValidationError, error) {
	descriptors, err := ins.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	available := make([]string, len(descriptors))
	lookup := make(map[string]bool, len(descriptors))
	for i, d := range descriptors {
		available[i] = d.Name
		lookup[strings.ToLower(d.Name)] = true
	}

	var findings []ValidationError
	for _, col := range columns {
		if lookup[strings.ToLower(col)] {
			continue
		}
		findings = append(findings, ValidationError{
			Subject: subject,
			Kind:    KindMissingColumn,
			Message: fmt.Sprintf("trigger %q references column %q which does not exist in table %q (available: %s)",
				subject, col, table, strings.Join(available, ", ")),
			Suggestions: sterr.OverlapSuggestions(col, available),
		})
	}

	return findings, nil
}
