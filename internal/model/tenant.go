package model

import (
	"time"
)

// TenantStatus is the lifecycle state of a tenant account.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantInactive  TenantStatus = "inactive"
)

// Tenant represents an isolated school account. All business data is
// partitioned by tenant id. Tenants are created by the onboarding flow;
// this service only ever reads them.
type Tenant struct {
	ID        string       `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name      string       `json:"name" gorm:"type:varchar(100);not null"`
	Subdomain string       `json:"subdomain" gorm:"type:varchar(63);uniqueIndex"`
	Status    TenantStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName maps the model onto the shared schema contract.
func (Tenant) TableName() string { return "tenants" }

// IsActive reports whether the tenant may serve requests.
func (t *Tenant) IsActive() bool { return t.Status == TenantActive }
