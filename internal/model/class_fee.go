package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassFee is a fee_structure row. Rows with StudentID == nil are class-level
// fees: the baseline every student in the class owes for a named component in
// an academic year. Per-student rows in this table are a legacy bug class that
// VerifyIntegrity flags; student concessions belong in student_discounts.
//
// Class-level rows are immutable with respect to concessions: BaseAmount must
// always equal Amount, and effective fees are derived at read time.
type ClassFee struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	ClassID      string          `json:"class_id" gorm:"type:uuid;index;not null"`
	StudentID    *string         `json:"student_id,omitempty" gorm:"type:uuid;index"`
	AcademicYear string          `json:"academic_year" gorm:"type:varchar(10);index"`
	FeeComponent string          `json:"fee_component" gorm:"type:varchar(100);not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	BaseAmount   decimal.Decimal `json:"base_amount" gorm:"type:numeric;not null"`
	DueDate      *time.Time      `json:"due_date,omitempty" gorm:"type:date"`
	TenantID     string          `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName maps the model onto the shared schema contract.
func (ClassFee) TableName() string { return "fee_structure" }

// IsClassLevel reports whether the row is a class baseline rather than a
// legacy per-student override.
func (f *ClassFee) IsClassLevel() bool { return f.StudentID == nil }
