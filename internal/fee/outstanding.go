package fee

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
)

// PaymentStatus classifies one fee line against recorded payments.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"
)

// OutstandingLine is one fee component with its payment position.
type OutstandingLine struct {
	Component   string          `json:"component"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      PaymentStatus   `json:"status"`
}

// OrphanedPayment is a payment row that matched no fee component. Reported
// for operator visibility, never an error.
type OrphanedPayment struct {
	PaymentID    string          `json:"payment_id"`
	FeeComponent string          `json:"fee_component"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
}

// OutstandingSummary joins effective fees with recorded payments.
type OutstandingSummary struct {
	Lines            []OutstandingLine `json:"lines"`
	OrphanedPayments []OrphanedPayment `json:"orphaned_payments"`
	TotalDue         decimal.Decimal   `json:"total_due"`
	TotalPaid        decimal.Decimal   `json:"total_paid"`
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
}

// OutstandingFees computes what a student still owes per component: the
// effective (post-discount) fees minus payments recorded against them.
// Payments match a component by name, exact first and then normalized
// (case and whitespace); academic years are compared in normalized form and
// a payment with no year recorded matches any line. Each payment is consumed
// by at most one line. Pure read.
func (e *Engine) OutstandingFees(ctx context.Context, tenantID, studentID, classID, academicYear string) (*OutstandingSummary, error) {
	fees, err := e.EffectiveFees(ctx, tenantID, studentID, classID, academicYear)
	if err != nil {
		return nil, err
	}
	payments, err := e.store.Payments(ctx, store.Query{
		TenantID: tenantID,
		Filters:  map[string]any{"student_id": studentID},
	})
	if err != nil {
		return nil, err
	}

	inYear := payments[:0]
	for _, p := range payments {
		if yearMatches(p.AcademicYear, academicYear) {
			inYear = append(inYear, p)
		}
	}

	summary := &OutstandingSummary{
		Lines:            make([]OutstandingLine, 0, len(fees.Lines)),
		OrphanedPayments: []OrphanedPayment{},
	}
	used := make(map[string]bool)

	for _, line := range fees.Lines {
		paid := decimal.Zero
		for i := range inYear {
			p := &inYear[i]
			if used[p.ID] || !componentMatches(p.FeeComponent, line.Component) {
				continue
			}
			used[p.ID] = true
			paid = paid.Add(p.AmountPaid)
		}
		outstanding := clamp(line.FinalAmount.Sub(paid))
		summary.Lines = append(summary.Lines, OutstandingLine{
			Component:   line.Component,
			FinalAmount: line.FinalAmount,
			Paid:        paid,
			Outstanding: outstanding,
			Status:      paymentStatus(line.FinalAmount, paid),
		})
		summary.TotalDue = summary.TotalDue.Add(line.FinalAmount)
		summary.TotalPaid = summary.TotalPaid.Add(paid)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(outstanding)
	}

	for _, p := range inYear {
		if used[p.ID] {
			continue
		}
		summary.OrphanedPayments = append(summary.OrphanedPayments, OrphanedPayment{
			PaymentID:    p.ID,
			FeeComponent: p.FeeComponent,
			AmountPaid:   p.AmountPaid,
		})
	}
	return summary, nil
}

func componentMatches(payment, component string) bool {
	if payment == component {
		return true
	}
	return normalizeComponent(payment) == normalizeComponent(component)
}

func paymentStatus(due, paid decimal.Decimal) PaymentStatus {
	switch {
	case due.IsZero(), paid.GreaterThanOrEqual(due):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}
