package migrate

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "single statement",
			src:  "CREATE TABLE users (id INTEGER PRIMARY KEY);",
			want: []string{"CREATE TABLE users (id INTEGER PRIMARY KEY);"},
		},
		{
			name: "two statements",
			src:  "CREATE TABLE a (id INTEGER);\nCREATE TABLE b (id INTEGER);",
			want: []string{"CREATE TABLE a (id INTEGER);", "CREATE TABLE b (id INTEGER);"},
		},
		{
			name: "missing trailing semicolon",
			src:  "CREATE TABLE a (id INTEGER)",
			want: []string{"CREATE TABLE a (id INTEGER)"},
		},
		{
			name: "semicolon inside string literal",
			src:  "INSERT INTO notes (body) VALUES ('one; two');",
			want: []string{"INSERT INTO notes (body) VALUES ('one; two');"},
		},
		{
			name: "escaped quote inside literal",
			src:  "INSERT INTO notes (body) VALUES ('it''s; fine');",
			want: []string{"INSERT INTO notes (body) VALUES ('it''s; fine');"},
		},
		{
			name: "line comment with semicolon",
			src:  "-- setup; not a statement\nCREATE TABLE a (id INTEGER);",
			want: []string{"-- setup; not a statement\nCREATE TABLE a (id INTEGER);"},
		},
		{
			name: "comment-only input",
			src:  "-- nothing here\n/* still nothing */",
			want: nil,
		},
		{
			name: "empty statements dropped",
			src:  ";;\nCREATE TABLE a (id INTEGER);;",
			want: []string{"CREATE TABLE a (id INTEGER);"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitStatements(tt.src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitStatements() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSplitStatementsTriggerBody(t *testing.T) {
	src := `CREATE TABLE account_activity_times (id INTEGER PRIMARY KEY, last_login_at TEXT);
CREATE TRIGGER touch_login AFTER UPDATE ON accounts
BEGIN
    UPDATE account_activity_times SET last_login_at = datetime('now');
    UPDATE account_activity_times SET last_login_at = datetime('now') WHERE id = NEW.id;
END;`

	got := SplitStatements(src)
	if len(got) != 2 {
		t.Fatalf("got %d statements, want 2:\n%s", len(got), strings.Join(got, "\n---\n"))
	}
	if !strings.HasPrefix(got[1], "CREATE TRIGGER") || !strings.HasSuffix(got[1], "END;") {
		t.Errorf("trigger statement was split apart:\n%s", got[1])
	}
}

func TestSplitStatementsDollarQuoted(t *testing.T) {
	src := `CREATE FUNCTION touch() RETURNS TRIGGER AS $fn$
BEGIN
    NEW.updated_at = now();
    RETURN NEW;
END;
$fn$ LANGUAGE plpgsql;
CREATE TABLE after_fn (id INTEGER);`

	got := SplitStatements(src)
	if len(got) != 2 {
		t.Fatalf("got %d statements, want 2:\n%s", len(got), strings.Join(got, "\n---\n"))
	}
	if !strings.Contains(got[0], "$fn$ LANGUAGE plpgsql;") {
		t.Errorf("dollar-quoted body was split apart:\n%s", got[0])
	}
}

func TestSplitStatementsCaseExpression(t *testing.T) {
	src := `SELECT CASE WHEN x > 0 THEN 'pos' ELSE 'neg' END FROM t;
SELECT 1;`

	got := SplitStatements(src)
	if len(got) != 2 {
		t.Fatalf("got %d statements, want 2: %#v", len(got), got)
	}
}
