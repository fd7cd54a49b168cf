// Package store is the data-access boundary between the fee core and the
// shared Postgres schema. Reads and writes against tenant-partitioned tables
// go through a typed Query value, so there is no order-dependent query builder
// state anywhere in the core.
package store

import (
	"context"
	"errors"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
)

// ErrTenantRequired is returned when a tenant-scoped table is queried without
// a tenant id. Fee data must never be read or written cross-tenant.
var ErrTenantRequired = errors.New("store: tenant id required for tenant-scoped query")

// Query describes one read or write scope against a tenant-partitioned table.
// TenantID is mandatory for fee_structure, student_discounts and student_fees.
// A nil filter value matches SQL NULL (used to select class-level fee rows).
// Row order is unspecified; callers that need an order sort the result.
type Query struct {
	TenantID string
	Filters  map[string]any
}

// Patch is a partial column update applied by UpdateDiscounts.
type Patch map[string]any

// Store exposes the schema contract the fee core depends on. The schema
// itself (tables, migrations, row-level security) is owned by the backing
// service; implementations here only read and write within it.
//
// Read methods return freshly allocated slices that the caller owns and may
// modify; implementations must not retain or share them.
type Store interface {
	// UserByEmail looks up a user by case-insensitive email match.
	// Returns (nil, nil) when no account exists.
	UserByEmail(ctx context.Context, email string) (*model.User, error)

	// TenantByID returns the tenant or (nil, nil) when missing.
	TenantByID(ctx context.Context, id string) (*model.Tenant, error)

	// ClassFees returns fee_structure rows matching q.
	ClassFees(ctx context.Context, q Query) ([]model.ClassFee, error)

	// Discounts returns student_discounts rows matching q.
	Discounts(ctx context.Context, q Query) ([]model.StudentDiscount, error)

	// Payments returns student_fees rows matching q.
	Payments(ctx context.Context, q Query) ([]model.FeePayment, error)

	// InsertDiscount writes one discount row, assigning ID and CreatedAt
	// when unset. The row's TenantID must be populated by the caller.
	InsertDiscount(ctx context.Context, d *model.StudentDiscount) error

	// UpdateDiscounts applies patch to all discount rows matching q and
	// returns the number of rows changed.
	UpdateDiscounts(ctx context.Context, q Query, patch Patch) (int64, error)

	// DeleteDiscounts removes all discount rows matching q and returns the
	// number of rows removed.
	DeleteDiscounts(ctx context.Context, q Query) (int64, error)
}
