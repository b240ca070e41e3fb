package sterr

import (
	"reflect"
	"testing"
)

// -----------------------------------------------------------------------------
// Levenshtein Distance Tests
// -----------------------------------------------------------------------------

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"token", "token", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"001", "002", 1},
		{"created_at", "craeted_at", 2},
		{"a", "b", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			got := levenshteinDistance(tt.s1, tt.s2)
			if got != tt.want {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// FindClosestMatch Tests
// -----------------------------------------------------------------------------

func TestFindClosestMatch(t *testing.T) {
	columns := []string{"id", "email", "created_at", "updated_at", "last_login_at"}

	tests := []struct {
		input   string
		wantOk  bool
		wantVal string
	}{
		{"emial", true, "email"},           // transposition
		{"created_a", true, "created_at"},  // missing letter
		{"updated_at", true, "updated_at"}, // exact
		{"completely_unrelated", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			match, ok := FindClosestMatch(tt.input, columns)
			if ok != tt.wantOk {
				t.Errorf("FindClosestMatch(%q) ok = %v, want %v", tt.input, ok, tt.wantOk)
			}
			if ok && match != tt.wantVal {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, match, tt.wantVal)
			}
		})
	}

	t.Run("empty options", func(t *testing.T) {
		if _, ok := FindClosestMatch("anything", nil); ok {
			t.Error("expected no match with empty options")
		}
	})
}

func TestSuggestSimilar(t *testing.T) {
	t.Run("close match", func(t *testing.T) {
		got := SuggestSimilar("emial", []string{"email", "id"})
		want := "did you mean 'email'?"
		if got != want {
			t.Errorf("SuggestSimilar() = %q, want %q", got, want)
		}
	})

	t.Run("no match", func(t *testing.T) {
		if got := SuggestSimilar("zzzzzzzz", []string{"email", "id"}); got != "" {
			t.Errorf("SuggestSimilar() = %q, want empty", got)
		}
	})
}

// -----------------------------------------------------------------------------
// OverlapSuggestions Tests
// -----------------------------------------------------------------------------

func TestOverlapSuggestions(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		candidates []string
		want       []string
	}{
		{
			// account_id splits into [account id]; "id" is the only
			// candidate sharing a token.
			name:       "account_id against activity table",
			input:      "account_id",
			candidates: []string{"id", "last_login_at"},
			want:       []string{"id"},
		},
		{
			name:       "shared trailing token",
			input:      "login_time",
			candidates: []string{"id", "last_login_at", "created_at"},
			want:       []string{"last_login_at"},
		},
		{
			name:       "multiple overlaps sorted",
			input:      "user_created_at",
			candidates: []string{"updated_at", "created_at", "user_id"},
			want:       []string{"created_at", "updated_at", "user_id"},
		},
		{
			name:       "no overlap",
			input:      "balance",
			candidates: []string{"id", "email"},
			want:       nil,
		},
		{
			name:       "empty input",
			input:      "",
			candidates: []string{"id"},
			want:       nil,
		},
		{
			name:       "camelCase input",
			input:      "lastLogin",
			candidates: []string{"last_login_at", "id"},
			want:       []string{"last_login_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapSuggestions(tt.input, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OverlapSuggestions(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
