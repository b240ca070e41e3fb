package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/internal/trigger"
)

// PrintError writes a structured engine error with its code, context and
// help lines, rustc-style.
func PrintError(w io.Writer, err error) {
	var serr *sterr.Error
	if !asSterr(err, &serr) {
		fmt.Fprintf(w, "%s: %v\n", Error("error"), err)
		return
	}

	fmt.Fprintf(w, "%s[%s]%s %s\n", Error("error"), Code(string(serr.GetCode())), Dim(":"), serr.GetMessage())

	ctx := serr.GetContext()
	keys := sortedContextKeys(ctx)
	for _, k := range keys {
		if k == "helps" {
			continue
		}
		fmt.Fprintf(w, "  %s: %v\n", Dim(k), ctx[k])
	}

	if cause := serr.GetCause(); cause != nil {
		fmt.Fprintf(w, "  %s: %v\n", Dim("cause"), cause)
	}

	for _, help := range serr.Helps() {
		fmt.Fprintf(w, "%s: %s\n", Help("help"), help)
	}
}

// PrintFindings writes trigger validation findings, one block per finding,
// naming the trigger, the drift, and any suggested alternatives.
func PrintFindings(w io.Writer, findings []trigger.ValidationError) {
	for _, f := range findings {
		fmt.Fprintf(w, "%s[%s]%s %s\n", Error("error"), Code(string(f.Kind)), Dim(":"), f.Message)
		if len(f.Suggestions) > 0 {
			fmt.Fprintf(w, "%s: did you mean %s?\n", Help("help"), quoteAll(f.Suggestions))
		}
	}
	if len(findings) > 0 {
		fmt.Fprintf(w, "\n%s\n", Error(FormatCount(len(findings), "finding", "findings")))
	}
}

// FormatCount returns "N singular" or "N plural".
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}

func asSterr(err error, target **sterr.Error) bool {
	for err != nil {
		if e, ok := err.(*sterr.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func sortedContextKeys(ctx map[string]any) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	// Insertion sort; context maps are tiny.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
