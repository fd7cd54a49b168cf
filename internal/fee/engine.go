// Package fee computes effective per-student fees and manages concessions on
// top of an immutable class-level fee structure. The class fee table is never
// mutated by anything here: every concession lives in student_discounts and
// its effect is derived at read time.
package fee

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
)

// Engine performs fee and concession computations for one tenant at a time.
// It holds no mutable state: each call re-reads from the store, so two calls
// with no intervening writes return identical results.
type Engine struct {
	store store.Store
	log   *zap.Logger
}

// NewEngine builds an engine over the given store.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, log: zap.L().Named("fee")}
}

// Component is one class-level fee component with its baseline amount.
type Component struct {
	FeeComponent string          `json:"fee_component"`
	Amount       decimal.Decimal `json:"amount"`
}

// ClassComponents returns the class-level fee components for a class and
// academic year, sorted by amount descending with ties broken by component
// name ascending. The order is a correctness requirement for distribution,
// not a presentation choice. Fails with ErrNoFeeStructure when empty.
func (e *Engine) ClassComponents(ctx context.Context, tenantID, classID, academicYear string) ([]Component, error) {
	rows, err := e.store.ClassFees(ctx, store.Query{
		TenantID: tenantID,
		Filters: map[string]any{
			"class_id":      classID,
			"academic_year": academicYear,
			"student_id":    nil,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoFeeStructure
	}

	// Duplicate rows for the same component are summed; the schema allows
	// them even though a healthy structure has one row per component.
	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		totals[row.FeeComponent] = totals[row.FeeComponent].Add(row.Amount)
	}
	components := make([]Component, 0, len(totals))
	for name, amount := range totals {
		components = append(components, Component{FeeComponent: name, Amount: amount})
	}
	sort.Slice(components, func(i, j int) bool {
		if !components[i].Amount.Equal(components[j].Amount) {
			return components[i].Amount.GreaterThan(components[j].Amount)
		}
		return components[i].FeeComponent < components[j].FeeComponent
	})
	return components, nil
}

// FeeLine is one component of a student's computed fees.
type FeeLine struct {
	Component       string          `json:"component"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
}

// FeeTotals aggregates a fee computation.
type FeeTotals struct {
	TotalBase     decimal.Decimal `json:"total_base"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalFinal    decimal.Decimal `json:"total_final"`
}

// FeeSummary is the result of EffectiveFees: per-component lines plus totals.
type FeeSummary struct {
	Lines  []FeeLine `json:"lines"`
	Totals FeeTotals `json:"totals"`
}

// EffectiveFees computes what a student owes per component after applying
// active discounts to the class-level baseline. Pure read: nothing is
// written, and absence of data yields empty results rather than errors.
//
// Discount matching per component: a discount naming the component exactly
// wins over a global (empty-component) one; among several candidates the
// earliest by (created_at, id) wins. Percentage discounts take base*value/100,
// fixed discounts take min(value, base), and the final amount is clamped at
// zero.
func (e *Engine) EffectiveFees(ctx context.Context, tenantID, studentID, classID, academicYear string) (*FeeSummary, error) {
	rows, err := e.store.ClassFees(ctx, store.Query{
		TenantID: tenantID,
		Filters: map[string]any{
			"class_id":      classID,
			"academic_year": academicYear,
			"student_id":    nil,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &FeeSummary{Lines: []FeeLine{}}, nil
	}

	discounts, err := e.activeDiscounts(ctx, tenantID, studentID, classID, academicYear)
	if err != nil {
		return nil, err
	}

	components := groupComponents(rows)
	summary := &FeeSummary{Lines: make([]FeeLine, 0, len(components))}
	for _, comp := range components {
		line := FeeLine{Component: comp.FeeComponent, BaseAmount: comp.Amount}
		if d := bestDiscount(discounts, comp.FeeComponent); d != nil {
			line.DiscountApplied = discountAmount(d, comp.Amount)
		}
		line.FinalAmount = clamp(comp.Amount.Sub(line.DiscountApplied))
		summary.Lines = append(summary.Lines, line)

		summary.Totals.TotalBase = summary.Totals.TotalBase.Add(line.BaseAmount)
		summary.Totals.TotalDiscount = summary.Totals.TotalDiscount.Add(line.DiscountApplied)
		summary.Totals.TotalFinal = summary.Totals.TotalFinal.Add(line.FinalAmount)
	}
	return summary, nil
}

// activeDiscounts loads the student's active discounts for the class and
// filters by normalized academic year (rows with no year apply to all).
func (e *Engine) activeDiscounts(ctx context.Context, tenantID, studentID, classID, academicYear string) ([]model.StudentDiscount, error) {
	discounts, err := e.store.Discounts(ctx, store.Query{
		TenantID: tenantID,
		Filters: map[string]any{
			"student_id": studentID,
			"class_id":   classID,
			"is_active":  true,
		},
	})
	if err != nil {
		return nil, err
	}
	matched := discounts[:0]
	for _, d := range discounts {
		if yearMatches(d.AcademicYear, academicYear) {
			matched = append(matched, d)
		}
	}
	// Insertion order defines the tie-break when several discounts match
	// the same component.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

// bestDiscount picks the discount applied to a component: component-specific
// beats global, earlier insertion beats later.
func bestDiscount(discounts []model.StudentDiscount, component string) *model.StudentDiscount {
	var global *model.StudentDiscount
	for i := range discounts {
		d := &discounts[i]
		if d.FeeComponent == component {
			return d
		}
		if global == nil && d.AppliesToAllComponents() {
			global = d
		}
	}
	return global
}

// discountAmount evaluates one discount against a base amount. A discount
// never exceeds the base it applies to.
func discountAmount(d *model.StudentDiscount, base decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.DiscountType {
	case model.DiscountPercentage:
		amount = base.Mul(d.DiscountValue).Div(decimal.NewFromInt(100))
	case model.DiscountFixed:
		amount = d.DiscountValue
	}
	if amount.GreaterThan(base) {
		return base
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// clamp floors a computed amount at zero.
func clamp(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// groupComponents folds raw fee rows into unique components sorted by name,
// giving EffectiveFees a deterministic line order.
func groupComponents(rows []model.ClassFee) []Component {
	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		totals[row.FeeComponent] = totals[row.FeeComponent].Add(row.Amount)
	}
	components := make([]Component, 0, len(totals))
	for name, amount := range totals {
		components = append(components, Component{FeeComponent: name, Amount: amount})
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].FeeComponent < components[j].FeeComponent
	})
	return components
}

// normalizeComponent is the matching key used when joining payments to fee
// lines: lowercase with whitespace collapsed.
func normalizeComponent(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
