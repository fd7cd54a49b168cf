package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// IsValid reports whether the value is one of the enumerated types.
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// StudentDiscount is a concession granted to one student on top of the
// class-level fee structure. An empty FeeComponent means the discount applies
// to every component. Discounts are soft-deleted via IsActive; the class fee
// table is never mutated when a discount is created or removed.
type StudentDiscount struct {
	ID            string          `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	StudentID     string          `json:"student_id" gorm:"type:uuid;index;not null"`
	ClassID       string          `json:"class_id" gorm:"type:uuid;index;not null"`
	AcademicYear  string          `json:"academic_year" gorm:"type:varchar(10);index"`
	DiscountType  DiscountType    `json:"discount_type" gorm:"type:varchar(20);not null"`
	DiscountValue decimal.Decimal `json:"discount_value" gorm:"type:numeric;not null"`
	FeeComponent  string          `json:"fee_component" gorm:"type:varchar(100)"`
	Description   string          `json:"description" gorm:"type:text"`
	IsActive      bool            `json:"is_active" gorm:"default:true"`
	TenantID      string          `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName maps the model onto the shared schema contract.
func (StudentDiscount) TableName() string { return "student_discounts" }

// AppliesToAllComponents reports whether the discount is a global one.
func (d *StudentDiscount) AppliesToAllComponents() bool { return d.FeeComponent == "" }
