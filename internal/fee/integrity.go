package fee

import (
	"context"
	"fmt"
	"sort"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
)

// IssueKind classifies one integrity finding.
type IssueKind string

const (
	// IssueStudentOverride flags a per-student row in the class fee table.
	// Student-specific amounts belong in student_discounts; rows like this
	// are the legacy bug class the discount design exists to prevent.
	IssueStudentOverride IssueKind = "STUDENT_OVERRIDE"

	// IssueBaseMismatch flags a class-level row whose base_amount differs
	// from amount. Class rows are immutable under concessions, so the two
	// must always be equal.
	IssueBaseMismatch IssueKind = "BASE_AMOUNT_MISMATCH"

	// IssueMissingClassFee flags a component that only exists as student
	// overrides, with no class-level baseline at all.
	IssueMissingClassFee IssueKind = "MISSING_CLASS_FEE"
)

// Issue is one integrity finding on a fee component.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	Component string    `json:"component"`
	RowID     string    `json:"row_id,omitempty"`
	Detail    string    `json:"detail"`
}

// IntegrityReport summarizes a structural check of one class's fee rows.
type IntegrityReport struct {
	ClassID           string  `json:"class_id"`
	AcademicYear      string  `json:"academic_year"`
	ComponentsChecked int     `json:"components_checked"`
	Healthy           bool    `json:"healthy"`
	Issues            []Issue `json:"issues"`
}

// VerifyIntegrity inspects the fee_structure rows of a class for the
// structural problems the concession design is meant to rule out. Read-only
// operator diagnostic; an empty structure is reported as healthy with zero
// components, not as an error.
func (e *Engine) VerifyIntegrity(ctx context.Context, tenantID, classID, academicYear string) (*IntegrityReport, error) {
	rows, err := e.store.ClassFees(ctx, store.Query{
		TenantID: tenantID,
		Filters: map[string]any{
			"class_id":      classID,
			"academic_year": academicYear,
		},
	})
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{
		ClassID:      classID,
		AcademicYear: academicYear,
		Issues:       []Issue{},
	}

	classLevel := make(map[string]bool)
	overridden := make(map[string]bool)
	for _, row := range rows {
		if row.IsClassLevel() {
			classLevel[row.FeeComponent] = true
			if !row.BaseAmount.Equal(row.Amount) {
				report.Issues = append(report.Issues, Issue{
					Kind:      IssueBaseMismatch,
					Component: row.FeeComponent,
					RowID:     row.ID,
					Detail: fmt.Sprintf("base_amount %s != amount %s on class-level row",
						row.BaseAmount.String(), row.Amount.String()),
				})
			}
			continue
		}
		overridden[row.FeeComponent] = true
		report.Issues = append(report.Issues, Issue{
			Kind:      IssueStudentOverride,
			Component: row.FeeComponent,
			RowID:     row.ID,
			Detail:    fmt.Sprintf("fee_structure row scoped to student %s; move to student_discounts", *row.StudentID),
		})
	}

	for component := range overridden {
		if !classLevel[component] {
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueMissingClassFee,
				Component: component,
				Detail:    "component exists only as student overrides; no class-level baseline",
			})
		}
	}

	sort.Slice(report.Issues, func(i, j int) bool {
		if report.Issues[i].Component != report.Issues[j].Component {
			return report.Issues[i].Component < report.Issues[j].Component
		}
		return report.Issues[i].Kind < report.Issues[j].Kind
	})
	report.ComponentsChecked = len(classLevel)
	report.Healthy = len(report.Issues) == 0
	return report, nil
}
