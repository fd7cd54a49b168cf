package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeePayment is a student_fees row: money actually received against a fee
// component. Payments are matched to fee structure lines at read time when
// computing outstanding balances.
type FeePayment struct {
	ID            string          `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	StudentID     string          `json:"student_id" gorm:"type:uuid;index;not null"`
	FeeComponent  string          `json:"fee_component" gorm:"type:varchar(100)"`
	AmountPaid    decimal.Decimal `json:"amount_paid" gorm:"type:numeric;not null"`
	PaymentDate   time.Time       `json:"payment_date" gorm:"type:date"`
	PaymentMode   string          `json:"payment_mode" gorm:"type:varchar(30)"`
	AcademicYear  string          `json:"academic_year" gorm:"type:varchar(10)"`
	ReceiptNumber string          `json:"receipt_number" gorm:"type:varchar(50)"`
	Remarks       string          `json:"remarks" gorm:"type:text"`
	TenantID      string          `json:"tenant_id" gorm:"type:uuid;index;not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName maps the model onto the shared schema contract.
func (FeePayment) TableName() string { return "student_fees" }
