package query

import (
	"fmt"

	"slotwise/internal/diag"
)

// Summary counts the outcomes of a batch.
type Summary struct {
	Total     int
	Passed    int
	Failed    int
	Errors    int
	Unchecked int
}

// OK reports whether every checked query passed and none errored.
func (s Summary) OK() bool { return s.Failed == 0 && s.Errors == 0 }

func (s Summary) String() string {
	return fmt.Sprintf("%d queries: %d passed, %d failed, %d errors, %d unchecked",
		s.Total, s.Passed, s.Failed, s.Errors, s.Unchecked)
}

// Check reports every failing outcome to r and summarizes the batch.
func Check(outcomes []Outcome, r diag.Reporter) Summary {
	var s Summary
	for _, o := range outcomes {
		s.Total++
		switch o.Status() {
		case StatusError:
			s.Errors++
			code := diag.QryMismatch
			if o.IsMalformed() {
				code = diag.QryMalformedType
			}
			diag.ReportError(r, code, o.Query.Subject, fmt.Sprintf("%s: %v", o.Query, o.Result.Err)).Emit()
		case StatusFailed:
			s.Failed++
			diag.ReportError(r, diag.QryMismatch, o.Query.Subject,
				fmt.Sprintf("%s: got %s, want %s", o.Query, o.Result.Outcome(), o.Query.Expect)).Emit()
		default:
			if o.Query.Checked() {
				s.Passed++
			} else {
				s.Unchecked++
			}
		}
	}
	return s
}
