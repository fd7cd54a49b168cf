package model

import (
	"time"
)

// User represents an application account. A user belongs to exactly one
// tenant for the lifetime of the account; TenantID is assigned at signup
// and is nil only for accounts the onboarding flow never finished.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	FullName  string    `json:"full_name" gorm:"type:varchar(100)"`
	TenantID  *string   `json:"tenant_id,omitempty" gorm:"type:uuid;index"`
	RoleID    *string   `json:"role_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName maps the model onto the shared schema contract.
func (User) TableName() string { return "users" }
