package migrate

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hlop3z/strata/internal/sterr"
)

// unitFilePattern matches versioned unit filenames: NNN_description.sql.
// The token is the digit prefix; zero-padding (or a timestamp) keeps
// lexical and numeric ordering aligned.
var unitFilePattern = regexp.MustCompile(`^(\d+)_([A-Za-z0-9_-]+)\.sql$`)

// LoadDir reads every versioned unit file in dir, in token order.
// A directory containing two artifacts with the same token is a fatal
// configuration error, detected before any statement executes.
func LoadDir(dir string) ([]Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, sterr.Wrap(sterr.ErrUnitLoad, err, "failed to read migrations directory").
			With("dir", dir)
	}

	var units []Unit
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := unitFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			// Non-unit files (README, .gitkeep) are ignored; .sql files
			// that merely fail the naming convention are not.
			if strings.HasSuffix(entry.Name(), ".sql") {
				return nil, sterr.New(sterr.ErrUnitLoad, "unit filename does not match NNN_description.sql").
					With("file", entry.Name()).
					WithHelp("rename it with a zero-padded numeric token prefix")
			}
			continue
		}

		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, sterr.Wrap(sterr.ErrUnitLoad, err, "failed to read unit file").
				With("file", path)
		}

		units = append(units, Unit{
			Token:      m[1],
			Name:       m[2],
			Statements: SplitStatements(string(src)),
			Source:     path,
		})
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Token < units[j].Token })

	if err := CheckTokens(units); err != nil {
		return nil, err
	}

	return units, nil
}

// Merge combines file-loaded units with programmatically registered ones
// and re-sorts by token. Duplicate tokens across the two sources are as
// fatal as duplicates within one.
func Merge(fileUnits, registered []Unit) ([]Unit, error) {
	units := make([]Unit, 0, len(fileUnits)+len(registered))
	units = append(units, fileUnits...)
	units = append(units, registered...)

	sort.Slice(units, func(i, j int) bool { return units[i].Token < units[j].Token })

	if err := CheckTokens(units); err != nil {
		return nil, err
	}
	return units, nil
}

// CheckTokens verifies that a token-sorted unit sequence has no duplicates.
func CheckTokens(units []Unit) error {
	for i := 1; i < len(units); i++ {
		if units[i].Token == units[i-1].Token {
			return sterr.New(sterr.ErrDuplicateToken, "two migration units share the same version token").
				WithToken(units[i].Token).
				With("first", units[i-1].Source).
				With("second", units[i].Source)
		}
	}
	return nil
}
