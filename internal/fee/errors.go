package fee

import (
	"errors"
	"fmt"
)

// Sentinel errors for business-rule failures. Validation errors are returned
// before any store access; callers match with errors.Is.
var (
	// ErrInvalidPercentage is returned for percentage discounts outside (0, 100].
	ErrInvalidPercentage = errors.New("percentage discount must be between 0 and 100")

	// ErrInvalidAmount is returned for non-positive fixed-amount discounts.
	ErrInvalidAmount = errors.New("fixed discount amount must be greater than zero")

	// ErrInvalidDiscountType is returned when the type is not one of the
	// enumerated values.
	ErrInvalidDiscountType = errors.New("discount type must be percentage or fixed_amount")

	// ErrMissingField is returned when a required identifier is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrNoFeeStructure is returned when a class has no fee rows for the
	// academic year, so there is nothing to discount against.
	ErrNoFeeStructure = errors.New("no fee structure defined for class and academic year")

	// ErrNotFound is returned for update/delete of a discount that does not
	// exist in the caller's tenant.
	ErrNotFound = errors.New("discount not found")
)

// PartialWriteError reports a failed multi-row distribution write. Rows
// inserted earlier in the same call are deleted before this is returned, so
// the batch is all-or-nothing from the caller's perspective. RollbackFailed
// is set only when a compensating delete itself failed, leaving rows behind.
type PartialWriteError struct {
	Cause          error
	Inserted       int
	RolledBack     int
	RollbackFailed bool
}

func (e *PartialWriteError) Error() string {
	if e.RollbackFailed {
		return fmt.Sprintf("distribution write failed after %d inserts and rollback also failed: %v",
			e.Inserted, e.Cause)
	}
	return fmt.Sprintf("distribution write failed after %d inserts (all rolled back): %v",
		e.Inserted, e.Cause)
}

func (e *PartialWriteError) Unwrap() error { return e.Cause }
