package tenant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/model"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/store"
	"github.com/kennethjason07/schoolmangmentsystem-sub005/internal/tenant"
)

const (
	tenantID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	userID   = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

// staticPrincipal is a Principal backed by a fixed email.
type staticPrincipal string

func (p staticPrincipal) CurrentEmail(context.Context) (string, error) {
	return string(p), nil
}

func newTestResolver(t *testing.T) (*tenant.Resolver, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return tenant.NewResolver(mem), mem
}

func seedAssignedUser(mem *store.Memory, status model.TenantStatus) {
	tid := tenantID
	mem.AddTenant(model.Tenant{
		ID:        tenantID,
		Name:      "Greenfield Public School",
		Subdomain: "greenfield",
		Status:    status,
	})
	mem.AddUser(model.User{
		ID:       userID,
		Email:    "admin@greenfield.edu",
		FullName: "School Admin",
		TenantID: &tid,
	})
}

func assertCode(t *testing.T, err error, code tenant.Code) *tenant.Error {
	t.Helper()
	require.Error(t, err)
	var terr *tenant.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, code, terr.Code)
	assert.NotEmpty(t, terr.Suggestions, "every failure carries user guidance")
	return terr
}

func TestResolveByEmail_Success(t *testing.T) {
	resolver, mem := newTestResolver(t)
	seedAssignedUser(mem, model.TenantActive)

	res, err := resolver.ResolveByEmail(context.Background(), "admin@greenfield.edu")
	require.NoError(t, err)

	assert.Equal(t, userID, res.User.ID)
	assert.Equal(t, "admin@greenfield.edu", res.User.Email)
	assert.Equal(t, tenantID, res.Tenant.ID)
	assert.Equal(t, "Greenfield Public School", res.Tenant.Name)
	assert.Equal(t, "greenfield", res.Tenant.Subdomain)
}

func TestResolveByEmail_CaseInsensitiveMatch(t *testing.T) {
	resolver, mem := newTestResolver(t)
	seedAssignedUser(mem, model.TenantActive)

	res, err := resolver.ResolveByEmail(context.Background(), "Admin@Greenfield.EDU")
	require.NoError(t, err)
	assert.Equal(t, tenantID, res.Tenant.ID)
}

func TestResolveByEmail_InvalidEmail(t *testing.T) {
	resolver, _ := newTestResolver(t)

	for _, email := range []string{"", "not-an-email", "missing@domain", "@nodomain.com"} {
		_, err := resolver.ResolveByEmail(context.Background(), email)
		assertCode(t, err, tenant.CodeInvalidEmail)
	}
}

func TestResolveByEmail_AccountNotFound(t *testing.T) {
	resolver, mem := newTestResolver(t)
	seedAssignedUser(mem, model.TenantActive)

	_, err := resolver.ResolveByEmail(context.Background(), "nobody@greenfield.edu")
	terr := assertCode(t, err, tenant.CodeAccountNotFound)
	assert.Contains(t, terr.Message, "nobody@greenfield.edu")
}

func TestResolveByEmail_AccountNotFoundIsDeterministic(t *testing.T) {
	// An unknown email must fail the same way every time; there is no
	// fallback tenant to land in.
	resolver, mem := newTestResolver(t)
	seedAssignedUser(mem, model.TenantActive)

	for i := 0; i < 3; i++ {
		_, err := resolver.ResolveByEmail(context.Background(), "nobody@greenfield.edu")
		assert.True(t, errors.Is(err, &tenant.Error{Code: tenant.CodeAccountNotFound}))
	}
}

func TestResolveByEmail_TenantNotAssigned(t *testing.T) {
	resolver, mem := newTestResolver(t)
	mem.AddUser(model.User{ID: userID, Email: "new@school.edu"})

	_, err := resolver.ResolveByEmail(context.Background(), "new@school.edu")
	assertCode(t, err, tenant.CodeNotAssigned)
}

func TestResolveByEmail_EmptyTenantIDCountsAsUnassigned(t *testing.T) {
	resolver, mem := newTestResolver(t)
	empty := ""
	mem.AddUser(model.User{ID: userID, Email: "new@school.edu", TenantID: &empty})

	_, err := resolver.ResolveByEmail(context.Background(), "new@school.edu")
	assertCode(t, err, tenant.CodeNotAssigned)
}

func TestResolveByEmail_MissingTenantIsConfigError(t *testing.T) {
	resolver, mem := newTestResolver(t)
	ghost := "cccccccc-cccc-cccc-cccc-cccccccccccc"
	mem.AddUser(model.User{ID: userID, Email: "admin@school.edu", TenantID: &ghost})

	_, err := resolver.ResolveByEmail(context.Background(), "admin@school.edu")
	terr := assertCode(t, err, tenant.CodeConfigError)
	assert.Contains(t, terr.Message, ghost)
}

func TestResolveByEmail_InactiveTenant(t *testing.T) {
	for _, status := range []model.TenantStatus{model.TenantSuspended, model.TenantInactive} {
		resolver, mem := newTestResolver(t)
		seedAssignedUser(mem, status)

		_, err := resolver.ResolveByEmail(context.Background(), "admin@greenfield.edu")
		terr := assertCode(t, err, tenant.CodeInactive)
		assert.Equal(t, status, terr.Status)
	}
}

func TestResolveCurrent_NotAuthenticated(t *testing.T) {
	resolver, _ := newTestResolver(t)

	_, err := resolver.ResolveCurrent(context.Background(), staticPrincipal(""))
	assertCode(t, err, tenant.CodeNotAuthenticated)
}

func TestResolveCurrent_DelegatesToEmailResolution(t *testing.T) {
	resolver, mem := newTestResolver(t)
	seedAssignedUser(mem, model.TenantActive)

	res, err := resolver.ResolveCurrent(context.Background(), staticPrincipal("admin@greenfield.edu"))
	require.NoError(t, err)
	assert.Equal(t, tenantID, res.Tenant.ID)
}
