package fee

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
)

// ConcessionInput describes one concession grant request.
type ConcessionInput struct {
	TenantID      string             `json:"-"`
	StudentID     string             `json:"student_id" validate:"required"`
	ClassID       string             `json:"class_id" validate:"required"`
	AcademicYear  string             `json:"academic_year" validate:"required"`
	DiscountType  model.DiscountType `json:"discount_type" validate:"required"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	FeeComponent  string             `json:"fee_component"` // empty = all components
	Description   string             `json:"description"`
}

// DistributionEntry records how much of a lump concession one component
// absorbed.
type DistributionEntry struct {
	Component        string          `json:"component"`
	ComponentAmount  decimal.Decimal `json:"component_amount"`
	ConcessionAmount decimal.Decimal `json:"concession_amount"`
}

// DistributionResult reports how a lump concession was split across
// components. RemainingAmount is the part that could not be applied because
// it exceeded total billable fees; that is caller-visible information, not an
// error.
type DistributionResult struct {
	OriginalAmount   decimal.Decimal     `json:"original_amount"`
	TotalDistributed decimal.Decimal     `json:"total_distributed"`
	RemainingAmount  decimal.Decimal     `json:"remaining_amount"`
	Breakdown        []DistributionEntry `json:"breakdown"`
}

// ConcessionResult is the outcome of CreateConcession. Distribution is nil
// for the single-component path.
type ConcessionResult struct {
	CreatedDiscounts []model.StudentDiscount `json:"created_discounts"`
	Distribution     *DistributionResult     `json:"distribution,omitempty"`
}

// CreateConcession validates and writes a concession. A request naming a
// specific fee component becomes exactly one discount row. A request with no
// component is distributed across the class's components, highest amount
// first; percentage-typed requests are first converted to the equivalent
// fixed amount against the total of all components.
//
// Validation failures are returned before any store access. The distribution
// path writes row by row; if any insert fails, rows already written in this
// call are deleted again before the error is returned.
func (e *Engine) CreateConcession(ctx context.Context, in ConcessionInput) (*ConcessionResult, error) {
	if err := validateConcession(in); err != nil {
		return nil, err
	}

	if in.FeeComponent != "" {
		return e.createForComponent(ctx, in)
	}
	return e.createDistributed(ctx, in)
}

func validateConcession(in ConcessionInput) error {
	switch {
	case in.TenantID == "":
		return fmt.Errorf("%w: tenant_id", ErrMissingField)
	case in.StudentID == "":
		return fmt.Errorf("%w: student_id", ErrMissingField)
	case in.ClassID == "":
		return fmt.Errorf("%w: class_id", ErrMissingField)
	case in.AcademicYear == "":
		return fmt.Errorf("%w: academic_year", ErrMissingField)
	}
	if !in.DiscountType.IsValid() {
		return ErrInvalidDiscountType
	}
	if in.DiscountType == model.DiscountPercentage {
		if !in.DiscountValue.IsPositive() || in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidPercentage
		}
		return nil
	}
	if !in.DiscountValue.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// createForComponent is the specific-component path: one row, no
// distribution, regardless of how many components the class has.
func (e *Engine) createForComponent(ctx context.Context, in ConcessionInput) (*ConcessionResult, error) {
	d := model.StudentDiscount{
		StudentID:     in.StudentID,
		ClassID:       in.ClassID,
		AcademicYear:  in.AcademicYear,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		FeeComponent:  in.FeeComponent,
		Description:   in.Description,
		IsActive:      true,
		TenantID:      in.TenantID,
	}
	if err := e.store.InsertDiscount(ctx, &d); err != nil {
		return nil, err
	}
	e.log.Info("concession created",
		zap.String("student_id", in.StudentID),
		zap.String("fee_component", in.FeeComponent),
		zap.String("discount_type", string(in.DiscountType)),
		zap.String("discount_value", in.DiscountValue.String()))
	return &ConcessionResult{CreatedDiscounts: []model.StudentDiscount{d}}, nil
}

// createDistributed splits the concession across components sorted by amount
// descending. Later allocations depend on what earlier components absorbed,
// so the loop is deliberately sequential.
func (e *Engine) createDistributed(ctx context.Context, in ConcessionInput) (*ConcessionResult, error) {
	components, err := e.ClassComponents(ctx, in.TenantID, in.ClassID, in.AcademicYear)
	if err != nil {
		return nil, err
	}

	amount := in.DiscountValue
	if in.DiscountType == model.DiscountPercentage {
		total := decimal.Zero
		for _, c := range components {
			total = total.Add(c.Amount)
		}
		amount = total.Mul(in.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	}

	dist := planDistribution(components, amount)
	if len(dist.Breakdown) == 0 {
		// Zero-amount plan can only happen for a zero total structure;
		// nothing to write.
		return &ConcessionResult{CreatedDiscounts: []model.StudentDiscount{}, Distribution: dist}, nil
	}

	note := fmt.Sprintf("auto-distributed from concession of %s", dist.OriginalAmount.String())
	if in.Description != "" {
		note = in.Description + " (" + note + ")"
	}

	created := make([]model.StudentDiscount, 0, len(dist.Breakdown))
	for _, entry := range dist.Breakdown {
		// A cancelled context must not leave a half-written batch behind.
		if err := ctx.Err(); err != nil {
			return nil, e.rollback(ctx, in.TenantID, created, err)
		}
		d := model.StudentDiscount{
			StudentID:     in.StudentID,
			ClassID:       in.ClassID,
			AcademicYear:  in.AcademicYear,
			DiscountType:  model.DiscountFixed,
			DiscountValue: entry.ConcessionAmount,
			FeeComponent:  entry.Component,
			Description:   note,
			IsActive:      true,
			TenantID:      in.TenantID,
		}
		if err := e.store.InsertDiscount(ctx, &d); err != nil {
			return nil, e.rollback(ctx, in.TenantID, created, err)
		}
		created = append(created, d)
	}

	e.log.Info("concession distributed",
		zap.String("student_id", in.StudentID),
		zap.String("original_amount", dist.OriginalAmount.String()),
		zap.String("total_distributed", dist.TotalDistributed.String()),
		zap.String("remaining", dist.RemainingAmount.String()),
		zap.Int("components", len(dist.Breakdown)))
	return &ConcessionResult{CreatedDiscounts: created, Distribution: dist}, nil
}

// planDistribution allocates a lump amount greedily over components already
// sorted by amount descending. Each component absorbs at most its own
// amount; whatever is left when all components are exhausted stays in
// RemainingAmount.
func planDistribution(components []Component, amount decimal.Decimal) *DistributionResult {
	dist := &DistributionResult{
		OriginalAmount:  amount,
		RemainingAmount: amount,
		Breakdown:       []DistributionEntry{},
	}
	remaining := amount
	for _, c := range components {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, c.Amount)
		if !take.IsPositive() {
			continue
		}
		dist.Breakdown = append(dist.Breakdown, DistributionEntry{
			Component:        c.FeeComponent,
			ComponentAmount:  c.Amount,
			ConcessionAmount: take,
		})
		dist.TotalDistributed = dist.TotalDistributed.Add(take)
		remaining = remaining.Sub(take)
	}
	dist.RemainingAmount = remaining
	return dist
}

// rollback deletes rows already written by this call, then wraps the
// original cause. The compensating delete is the authoritative recovery
// mechanism; the underlying store has no multi-row transactions.
//
// The batch may have failed because the caller's context died, so the
// deletes run detached from its cancellation.
func (e *Engine) rollback(ctx context.Context, tenantID string, created []model.StudentDiscount, cause error) error {
	ctx = context.WithoutCancel(ctx)
	perr := &PartialWriteError{Cause: cause, Inserted: len(created)}
	for _, d := range created {
		n, err := e.store.DeleteDiscounts(ctx, store.Query{
			TenantID: tenantID,
			Filters:  map[string]any{"id": d.ID},
		})
		if err != nil || n == 0 {
			perr.RollbackFailed = true
			e.log.Error("compensating delete failed",
				zap.String("discount_id", d.ID),
				zap.Error(err))
			continue
		}
		perr.RolledBack++
	}
	e.log.Error("distribution write rolled back",
		zap.Int("inserted", perr.Inserted),
		zap.Int("rolled_back", perr.RolledBack),
		zap.Error(cause))
	return perr
}

// DeleteMode selects how a concession is removed.
type DeleteMode int

const (
	// SoftDelete deactivates the row; history is preserved.
	SoftDelete DeleteMode = iota
	// HardDelete removes the row entirely. Cleanup only.
	HardDelete
)

// DeleteConcession removes one discount. Class fee rows are never touched;
// the next EffectiveFees call simply reflects the removal.
func (e *Engine) DeleteConcession(ctx context.Context, tenantID, discountID string, mode DeleteMode) error {
	q := store.Query{TenantID: tenantID, Filters: map[string]any{"id": discountID}}
	var (
		n   int64
		err error
	)
	switch mode {
	case HardDelete:
		n, err = e.store.DeleteDiscounts(ctx, q)
	default:
		n, err = e.store.UpdateDiscounts(ctx, q, store.Patch{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	e.log.Info("concession deleted",
		zap.String("discount_id", discountID),
		zap.Bool("hard", mode == HardDelete))
	return nil
}

// ConcessionPatch is a partial update to an existing discount. Nil fields are
// left unchanged.
type ConcessionPatch struct {
	DiscountType  *model.DiscountType `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal    `json:"discount_value,omitempty"`
	Description   *string             `json:"description,omitempty"`
	IsActive      *bool               `json:"is_active,omitempty"`
}

// UpdateConcession patches one discount, re-validating value bounds against
// the row's effective type. Fails with ErrNotFound when the row does not
// exist in the caller's tenant.
func (e *Engine) UpdateConcession(ctx context.Context, tenantID, discountID string, patch ConcessionPatch) error {
	rows, err := e.store.Discounts(ctx, store.Query{
		TenantID: tenantID,
		Filters:  map[string]any{"id": discountID},
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	current := rows[0]

	effectiveType := current.DiscountType
	if patch.DiscountType != nil {
		if !patch.DiscountType.IsValid() {
			return ErrInvalidDiscountType
		}
		effectiveType = *patch.DiscountType
	}
	effectiveValue := current.DiscountValue
	if patch.DiscountValue != nil {
		effectiveValue = *patch.DiscountValue
	}
	if effectiveType == model.DiscountPercentage {
		if !effectiveValue.IsPositive() || effectiveValue.GreaterThan(decimal.NewFromInt(100)) {
			return ErrInvalidPercentage
		}
	} else if !effectiveValue.IsPositive() {
		return ErrInvalidAmount
	}

	update := store.Patch{"updated_at": time.Now()}
	if patch.DiscountType != nil {
		update["discount_type"] = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		update["discount_value"] = *patch.DiscountValue
	}
	if patch.Description != nil {
		update["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		update["is_active"] = *patch.IsActive
	}

	n, err := e.store.UpdateDiscounts(ctx, store.Query{
		TenantID: tenantID,
		Filters:  map[string]any{"id": discountID},
	}, update)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	e.log.Info("concession updated", zap.String("discount_id", discountID))
	return nil
}
