package migrate

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"time"

	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/lock"
	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/internal/version"
)

// Runner applies pending migration units against a database.
type Runner struct {
	db      *sql.DB
	dialect dialect.Dialect
	store   *version.Store

	// AllowGap disables the gap-free prefix check. Test fixtures use it
	// to jump to a target version; production runs never should.
	AllowGap bool
}

// RunResult reports what a run applied.
type RunResult struct {
	// Applied lists the tokens committed by this run, in order.
	Applied []string

	// Skipped lists tokens another process applied while this run was
	// in flight (unique-token conflict in the no-advisory-lock fallback).
	Skipped []string

	// Current is the highest applied token after the run.
	Current string
}

// NewRunner creates a migration runner.
// Returns nil if db or dialect is nil.
func NewRunner(db *sql.DB, d dialect.Dialect) *Runner {
	if db == nil || d == nil {
		return nil
	}
	return &Runner{
		db:      db,
		dialect: d,
		store:   version.NewStore(db, d),
	}
}

// Store exposes the runner's version store.
func (r *Runner) Store() *version.Store {
	return r.store
}

// Run applies every unapplied unit whose token is greater than the
// current version and at most target, each in its own transaction.
// target may be TargetLatest or a known version token.
//
// On a statement error only that unit's transaction rolls back; all
// previously committed units remain applied. Partial progress is safe
// because applied records always form a gap-free prefix of the unit
// sequence. Re-running with nothing pending is a no-op.
func (r *Runner) Run(ctx context.Context, units []Unit, target string) (*RunResult, error) {
	// Callers going through the loader get sorted units, but direct
	// callers may not. Order everything here so the prefix check and the
	// adjacent-duplicate scan see the sequence they assume.
	units = append([]Unit(nil), units...)
	sort.Slice(units, func(i, j int) bool { return units[i].Token < units[j].Token })

	if err := CheckTokens(units); err != nil {
		return nil, err
	}

	if err := r.store.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := r.store.Applied(ctx)
	if err != nil {
		return nil, err
	}

	if !r.AllowGap {
		if err := verifyPrefix(applied, units); err != nil {
			return nil, err
		}
	}

	current := ""
	if len(applied) > 0 {
		current = applied[len(applied)-1].Token
	}

	resolvedTarget, err := resolveTarget(units, target, current)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Current: current}

	for i := range units {
		u := &units[i]
		if u.Token <= current || u.Token > resolvedTarget {
			continue
		}

		switch err := r.applyOne(ctx, u); {
		case err == nil:
			result.Applied = append(result.Applied, u.Token)
			result.Current = u.Token
		case sterr.Is(err, sterr.ErrVersionRecord):
			// Another process won the race for this unit. Its commit is
			// the authoritative one; ours rolled back completely.
			slog.Info("migration unit already applied by another process",
				"token", u.Token, "name", u.Name)
			result.Skipped = append(result.Skipped, u.Token)
			result.Current = u.Token
		default:
			return nil, err
		}
	}

	return result, nil
}

// applyOne runs a single unit and its version record in one transaction.
// The record is inserted first so that, in the fallback coordination
// mode, a concurrent duplicate surfaces as a unique-token conflict here
// rather than as a confusing DDL error mid-unit.
func (r *Runner) applyOne(ctx context.Context, u *Unit) error {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return sterr.Wrap(sterr.ErrSQLTransaction, err, "failed to begin transaction").
			WithToken(u.Token)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := r.store.Record(ctx, tx, u.Token, u.Checksum(), time.Since(start)); err != nil {
		if lock.IsUniqueViolation(err) {
			return sterr.Wrap(sterr.ErrVersionRecord, err, "version token already recorded").
				WithToken(u.Token)
		}
		return sterr.Wrap(sterr.ErrVersionRecord, err, "failed to record applied version").
			WithToken(u.Token)
	}

	if u.IsSQL() {
		for _, stmt := range u.Statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return sterr.Wrap(sterr.ErrUnitApplyFailure, err, "migration unit failed").
					WithToken(u.Token).
					With("name", u.Name).
					WithSQL(stmt)
			}
		}
	} else {
		if err := u.Apply(ctx, tx); err != nil {
			return sterr.Wrap(sterr.ErrUnitApplyFailure, err, "migration unit failed").
				WithToken(u.Token).
				With("name", u.Name)
		}
	}

	if err := r.store.UpdateExecTime(ctx, tx, u.Token, time.Since(start)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if lock.IsUniqueViolation(err) {
			return sterr.Wrap(sterr.ErrVersionRecord, err, "version token already recorded").
				WithToken(u.Token)
		}
		return sterr.Wrap(sterr.ErrSQLTransaction, err, "failed to commit transaction").
			WithToken(u.Token)
	}
	committed = true

	slog.Debug("migration unit applied",
		"token", u.Token, "name", u.Name, "elapsed", time.Since(start))
	return nil
}

// verifyPrefix enforces the gap-free invariant: the applied records must
// be exactly the leading sub-sequence of the unit tokens. A recorded
// token that is missing on disk, or a hole in the sequence, means the
// unit set and the store have diverged.
func verifyPrefix(applied []version.Record, units []Unit) error {
	for i, rec := range applied {
		if i >= len(units) {
			return sterr.New(sterr.ErrVersionGap, "store has more applied records than known units").
				WithToken(rec.Token).
				WithHelp("a released unit was deleted; restore it")
		}
		if units[i].Token != rec.Token {
			return sterr.New(sterr.ErrVersionGap, "applied records are not a prefix of the unit sequence").
				With("expected", units[i].Token).
				With("recorded", rec.Token).
				WithHelp("released units are append-only; never renumber or remove them")
		}
		if rec.Checksum != "" && units[i].IsSQL() && units[i].Checksum() != rec.Checksum {
			return sterr.New(sterr.ErrChecksumDrift, "released unit was edited after being applied").
				WithToken(rec.Token).
				WithHelp("run 'strata verify' to list divergent units")
		}
	}
	return nil
}

// resolveTarget validates target and returns the effective upper bound.
func resolveTarget(units []Unit, target, current string) (string, error) {
	if len(units) == 0 {
		return current, nil
	}

	latest := units[len(units)-1].Token
	if target == "" || target == TargetLatest {
		return latest, nil
	}

	known := false
	for i := range units {
		if units[i].Token == target {
			known = true
			break
		}
	}
	if !known {
		e := sterr.New(sterr.ErrInvalidTarget, "target version token is not a known unit").
			With("target", target)
		tokens := make([]string, len(units))
		for i := range units {
			tokens[i] = units[i].Token
		}
		if hint := sterr.SuggestSimilar(target, tokens); hint != "" {
			e.WithHelp(hint)
		}
		return "", e
	}

	// Forward-only: reversal is out of scope for this engine.
	if current != "" && target < current {
		return "", sterr.New(sterr.ErrInvalidTarget, "target version is below the current version").
			With("target", target).
			With("current", current).
			WithHelp("this engine only applies forward; restore from backup to go back")
	}

	return target, nil
}
