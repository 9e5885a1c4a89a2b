package crosscheck

import (
	"fmt"

	"github.com/astromirror/natalengine/internal/types"
)

// BuildReport grades the accumulated issues into a final report.
// The overall status is the worst severity present: any error makes the
// status "error", otherwise any warning makes it "warn".
func BuildReport(issues []types.ValidationIssue) types.ValidationReport {
	var errs, warns int
	for _, is := range issues {
		switch is.Severity {
		case types.SeverityError:
			errs++
		case types.SeverityWarn:
			warns++
		}
	}

	status := types.StatusOK
	summary := "ok"
	switch {
	case errs > 0:
		status = types.StatusError
		summary = fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	case warns > 0:
		status = types.StatusWarn
		summary = fmt.Sprintf("%d warning(s)", warns)
	}

	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	return types.ValidationReport{
		Status:  status,
		Issues:  issues,
		Summary: summary,
	}
}
