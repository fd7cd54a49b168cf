package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
)

// Memory is an in-process Store used by tests and local development. It
// mirrors the Gorm implementation's filter semantics, including nil-filter
// IS NULL matching and mandatory tenant scoping.
//
// InsertHook, when set, runs before each discount insert; returning an error
// aborts the insert. Tests use it to simulate mid-batch store failures.
type Memory struct {
	mu        sync.RWMutex
	users     []model.User
	tenants   []model.Tenant
	fees      []model.ClassFee
	discounts []model.StudentDiscount
	payments  []model.FeePayment

	InsertHook func(*model.StudentDiscount) error
}

func NewMemory() *Memory {
	return &Memory{}
}

// Seed helpers. Not part of the Store interface.

func (m *Memory) AddUser(u model.User)            { m.mu.Lock(); m.users = append(m.users, u); m.mu.Unlock() }
func (m *Memory) AddTenant(t model.Tenant)        { m.mu.Lock(); m.tenants = append(m.tenants, t); m.mu.Unlock() }
func (m *Memory) AddClassFee(f model.ClassFee)    { m.mu.Lock(); m.fees = append(m.fees, f); m.mu.Unlock() }
func (m *Memory) AddPayment(p model.FeePayment)   { m.mu.Lock(); m.payments = append(m.payments, p); m.mu.Unlock() }

// AllDiscounts returns a snapshot of every discount row, for test assertions.
func (m *Memory) AllDiscounts() []model.StudentDiscount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.StudentDiscount, len(m.discounts))
	copy(out, m.discounts)
	return out
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.users {
		if strings.EqualFold(m.users[i].Email, email) {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) TenantByID(_ context.Context, id string) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.tenants {
		if m.tenants[i].ID == id {
			t := m.tenants[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (m *Memory) ClassFees(_ context.Context, q Query) ([]model.ClassFee, error) {
	if q.TenantID == "" {
		return nil, ErrTenantRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ClassFee
	for _, f := range m.fees {
		if f.TenantID == q.TenantID && matchClassFee(f, q.Filters) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *Memory) Discounts(_ context.Context, q Query) ([]model.StudentDiscount, error) {
	if q.TenantID == "" {
		return nil, ErrTenantRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.StudentDiscount
	for _, d := range m.discounts {
		if d.TenantID == q.TenantID && matchDiscount(d, q.Filters) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) Payments(_ context.Context, q Query) ([]model.FeePayment, error) {
	if q.TenantID == "" {
		return nil, ErrTenantRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.FeePayment
	for _, p := range m.payments {
		if p.TenantID == q.TenantID && matchPayment(p, q.Filters) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) InsertDiscount(_ context.Context, d *model.StudentDiscount) error {
	if d.TenantID == "" {
		return ErrTenantRequired
	}
	if m.InsertHook != nil {
		if err := m.InsertHook(d); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	m.discounts = append(m.discounts, *d)
	return nil
}

func (m *Memory) UpdateDiscounts(_ context.Context, q Query, patch Patch) (int64, error) {
	if q.TenantID == "" {
		return 0, ErrTenantRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for i := range m.discounts {
		if m.discounts[i].TenantID != q.TenantID || !matchDiscount(m.discounts[i], q.Filters) {
			continue
		}
		applyDiscountPatch(&m.discounts[i], patch)
		changed++
	}
	return changed, nil
}

func (m *Memory) DeleteDiscounts(_ context.Context, q Query) (int64, error) {
	if q.TenantID == "" {
		return 0, ErrTenantRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []model.StudentDiscount
	var removed int64
	for _, d := range m.discounts {
		if d.TenantID == q.TenantID && matchDiscount(d, q.Filters) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	m.discounts = kept
	return removed, nil
}

func matchClassFee(f model.ClassFee, filters map[string]any) bool {
	for column, value := range filters {
		switch column {
		case "id":
			if f.ID != value.(string) {
				return false
			}
		case "class_id":
			if f.ClassID != value.(string) {
				return false
			}
		case "academic_year":
			if f.AcademicYear != value.(string) {
				return false
			}
		case "student_id":
			if value == nil {
				if f.StudentID != nil {
					return false
				}
			} else if f.StudentID == nil || *f.StudentID != value.(string) {
				return false
			}
		case "fee_component":
			if f.FeeComponent != value.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchDiscount(d model.StudentDiscount, filters map[string]any) bool {
	for column, value := range filters {
		switch column {
		case "id":
			if d.ID != value.(string) {
				return false
			}
		case "student_id":
			if d.StudentID != value.(string) {
				return false
			}
		case "class_id":
			if d.ClassID != value.(string) {
				return false
			}
		case "academic_year":
			if d.AcademicYear != value.(string) {
				return false
			}
		case "fee_component":
			if d.FeeComponent != value.(string) {
				return false
			}
		case "is_active":
			if d.IsActive != value.(bool) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchPayment(p model.FeePayment, filters map[string]any) bool {
	for column, value := range filters {
		switch column {
		case "student_id":
			if p.StudentID != value.(string) {
				return false
			}
		case "academic_year":
			if p.AcademicYear != value.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func applyDiscountPatch(d *model.StudentDiscount, patch Patch) {
	for column, value := range patch {
		switch column {
		case "is_active":
			d.IsActive = value.(bool)
		case "discount_type":
			d.DiscountType = value.(model.DiscountType)
		case "discount_value":
			d.DiscountValue = toDecimalPatchValue(value)
		case "description":
			d.Description = value.(string)
		case "fee_component":
			d.FeeComponent = value.(string)
		case "updated_at":
			d.UpdatedAt = value.(time.Time)
		}
	}
}

func toDecimalPatchValue(value any) decimal.Decimal {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, _ := decimal.NewFromString(v)
		return d
	default:
		return decimal.Zero
	}
}
