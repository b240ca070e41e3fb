package sterr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	t.Run("code and message", func(t *testing.T) {
		err := New(ErrUnitApplyFailure, "migration unit failed")
		got := err.Error()
		if !strings.HasPrefix(got, "[E3001] migration unit failed") {
			t.Errorf("Error() = %q, want prefix [E3001]", got)
		}
	})

	t.Run("context is sorted", func(t *testing.T) {
		err := New(ErrUnitApplyFailure, "migration unit failed").
			WithToken("004").
			WithSQL("ALTER TABLE users DROP COLUMN email")
		got := err.Error()

		sqlIdx := strings.Index(got, "sql:")
		tokenIdx := strings.Index(got, "token:")
		if sqlIdx == -1 || tokenIdx == -1 {
			t.Fatalf("missing context keys in %q", got)
		}
		if sqlIdx > tokenIdx {
			t.Errorf("context keys not sorted: %q", got)
		}
	})

	t.Run("cause appears last", func(t *testing.T) {
		cause := errors.New("syntax error at or near DROP")
		err := Wrap(ErrSQLExecution, cause, "failed to execute statement")
		got := err.Error()
		if !strings.Contains(got, "cause: syntax error") {
			t.Errorf("Error() = %q, want cause line", got)
		}
	})
}

func TestErrorWrapping(t *testing.T) {
	t.Run("unwrap returns cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := Wrap(ErrInternal, cause, "wrapped")
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the cause through Unwrap")
		}
	})

	t.Run("wrap nil cause", func(t *testing.T) {
		err := Wrap(ErrInternal, nil, "no cause")
		if err.GetCause() != nil {
			t.Error("expected nil cause")
		}
	})

	t.Run("is matches by code", func(t *testing.T) {
		err := New(ErrLockTimeout, "lock not acquired")
		if !errors.Is(err, New(ErrLockTimeout, "different message")) {
			t.Error("errors with the same code should match")
		}
		if errors.Is(err, New(ErrLockRelease, "other code")) {
			t.Error("errors with different codes should not match")
		}
	})

	t.Run("wrapf formats", func(t *testing.T) {
		err := Wrapf(ErrUnitLoad, errors.New("eof"), "failed to read %s", "005_add_index.sql")
		if !strings.Contains(err.Error(), "005_add_index.sql") {
			t.Errorf("Wrapf did not format message: %q", err.Error())
		}
	})
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("plain"), ""},
		{"sterr", New(ErrVersionGap, "gap"), ErrVersionGap},
		{"wrapped sterr", fmt.Errorf("outer: %w", New(ErrDuplicateToken, "dup")), ErrDuplicateToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrVersionRecord, "token already recorded").WithToken("002")

	if !Is(err, ErrVersionRecord) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrVersionGap) {
		t.Error("Is should not match a different code")
	}
	if Is(nil, ErrVersionRecord) {
		t.Error("Is(nil) should be false")
	}
}

func TestWithHelp(t *testing.T) {
	err := New(ErrInvalidTarget, "unknown target").
		WithHelp("did you mean '004'?").
		WithHelp("run 'strata status' to list tokens")

	helps := err.Helps()
	if len(helps) != 2 {
		t.Fatalf("Helps() returned %d entries, want 2", len(helps))
	}
	if helps[0] != "did you mean '004'?" {
		t.Errorf("helps[0] = %q", helps[0])
	}
}

func TestStackCapture(t *testing.T) {
	err := New(ErrInternal, "something broke")
	if err.GetStack() == "" {
		t.Error("expected a captured stack trace")
	}
}
