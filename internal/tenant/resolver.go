// Package tenant resolves the acting principal's tenant context from an
// email address. Resolution never guesses: a principal either maps to exactly
// one active tenant or fails with a tagged, user-actionable error.
package tenant

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
)

// emailPattern is a basic syntax gate, not full RFC validation. The stored
// user record is the authority; this only rejects obvious garbage before a
// database round trip.
var emailPattern = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.)+[\w-]{2,}$`)

// Principal supplies the current authenticated email, typically backed by
// validated JWT claims. CurrentEmail returns an empty string when no session
// is active.
type Principal interface {
	CurrentEmail(ctx context.Context) (string, error)
}

// Resolution is a successful email-to-tenant mapping.
type Resolution struct {
	User   UserContext   `json:"user"`
	Tenant TenantContext `json:"tenant"`
}

// UserContext is the subset of the user row callers need after resolution.
type UserContext struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	RoleID   *string `json:"role_id,omitempty"`
}

// TenantContext is the subset of the tenant row callers need after resolution.
type TenantContext struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

// Resolver maps principals to tenants. It performs pure reads; retry policy
// belongs to the caller.
type Resolver struct {
	store store.Store
	log   *zap.Logger
}

// NewResolver builds a resolver over the given store.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st, log: zap.L().Named("tenant")}
}

// ResolveByEmail maps an email to its user and tenant. Failure modes, in
// check order: InvalidEmail, AccountNotFound, TenantNotAssigned,
// TenantConfigError, TenantInactive. At most one tenant is ever returned.
func (r *Resolver) ResolveByEmail(ctx context.Context, email string) (*Resolution, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, errInvalidEmail(email)
	}

	user, err := r.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		r.log.Warn("no account for email", zap.String("email", email))
		return nil, errAccountNotFound(email)
	}
	if user.TenantID == nil || *user.TenantID == "" {
		r.log.Warn("account has no tenant assignment",
			zap.String("email", email),
			zap.String("user_id", user.ID))
		return nil, errNotAssigned(email)
	}

	t, err := r.store.TenantByID(ctx, *user.TenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		// Data integrity problem: the user row points at a tenant that
		// does not exist.
		r.log.Error("user references missing tenant",
			zap.String("user_id", user.ID),
			zap.String("tenant_id", *user.TenantID))
		return nil, errConfigError(*user.TenantID)
	}
	if !t.IsActive() {
		r.log.Warn("tenant is not active",
			zap.String("tenant_id", t.ID),
			zap.String("status", string(t.Status)))
		return nil, errInactive(t.Status)
	}

	return &Resolution{
		User: UserContext{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			RoleID:   user.RoleID,
		},
		Tenant: TenantContext{
			ID:        t.ID,
			Name:      t.Name,
			Subdomain: t.Subdomain,
		},
	}, nil
}

// ResolveCurrent resolves the tenant of the currently authenticated
// principal. Fails with NotAuthenticated when no session is active.
func (r *Resolver) ResolveCurrent(ctx context.Context, principal Principal) (*Resolution, error) {
	email, err := principal.CurrentEmail(ctx)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, errNotAuthenticated()
	}
	return r.ResolveByEmail(ctx, email)
}
