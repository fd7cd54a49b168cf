package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
)

// Gorm implements Store on a gorm Postgres connection.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an initialized gorm connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: user lookup: %w", result.Error)
	}
	return &user, nil
}

func (s *Gorm) TenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: tenant lookup: %w", result.Error)
	}
	return &tenant, nil
}

func (s *Gorm) ClassFees(ctx context.Context, q Query) ([]model.ClassFee, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return nil, err
	}
	var fees []model.ClassFee
	if result := tx.Find(&fees); result.Error != nil {
		return nil, fmt.Errorf("store: fee_structure read: %w", result.Error)
	}
	return fees, nil
}

func (s *Gorm) Discounts(ctx context.Context, q Query) ([]model.StudentDiscount, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return nil, err
	}
	var discounts []model.StudentDiscount
	if result := tx.Find(&discounts); result.Error != nil {
		return nil, fmt.Errorf("store: student_discounts read: %w", result.Error)
	}
	return discounts, nil
}

func (s *Gorm) Payments(ctx context.Context, q Query) ([]model.FeePayment, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return nil, err
	}
	var payments []model.FeePayment
	if result := tx.Find(&payments); result.Error != nil {
		return nil, fmt.Errorf("store: student_fees read: %w", result.Error)
	}
	return payments, nil
}

func (s *Gorm) InsertDiscount(ctx context.Context, d *model.StudentDiscount) error {
	if d.TenantID == "" {
		return ErrTenantRequired
	}
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if result := s.db.WithContext(ctx).Create(d); result.Error != nil {
		return fmt.Errorf("store: student_discounts insert: %w", result.Error)
	}
	return nil
}

func (s *Gorm) UpdateDiscounts(ctx context.Context, q Query, patch Patch) (int64, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return 0, err
	}
	result := tx.Model(&model.StudentDiscount{}).Updates(map[string]any(patch))
	if result.Error != nil {
		return 0, fmt.Errorf("store: student_discounts update: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *Gorm) DeleteDiscounts(ctx context.Context, q Query) (int64, error) {
	tx, err := s.scoped(ctx, q)
	if err != nil {
		return 0, err
	}
	result := tx.Delete(&model.StudentDiscount{})
	if result.Error != nil {
		return 0, fmt.Errorf("store: student_discounts delete: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// scoped translates a Query into a gorm chain. The tenant filter is applied
// first and unconditionally.
func (s *Gorm) scoped(ctx context.Context, q Query) (*gorm.DB, error) {
	if q.TenantID == "" {
		return nil, ErrTenantRequired
	}
	tx := s.db.WithContext(ctx).Where("tenant_id = ?", q.TenantID)
	for column, value := range q.Filters {
		if value == nil {
			tx = tx.Where(column + " IS NULL")
			continue
		}
		tx = tx.Where(column+" = ?", value)
	}
	return tx, nil
}
