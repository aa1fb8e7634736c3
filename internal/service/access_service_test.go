package service

import (
	"context"
	"errors"
	"testing"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	apperrors "cricket-hub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService_Role(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	role, err := h.access.Role(ctx, adminSession)
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "admin", *role)

	role, err = h.access.Role(ctx, captainSession)
	require.NoError(t, err)
	assert.Nil(t, role)

	role, err = h.access.Role(ctx, domain.Session{})
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestAccessService_RoleIsCached(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	ok, err := h.access.IsAdmin(ctx, adminSession)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, h.mr.Exists(h.cache.Keys().KeyUserRole(adminSession.UserID)))

	// Served from cache even though the backend now fails
	h.store.FailQuery[gateway.TableUserRoles] = errors.New("down")
	ok, err = h.access.IsAdmin(ctx, adminSession)
	require.NoError(t, err)
	assert.True(t, ok)

	h.access.Forget(ctx, adminSession.UserID)
	_, err = h.access.IsAdmin(ctx, adminSession)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestAccessService_RequireAdmin(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		session domain.Session
		want    apperrors.ErrorType
	}{
		{name: "anonymous", session: domain.Session{}, want: apperrors.ErrorTypeAuthentication},
		{name: "not admin", session: captainSession, want: apperrors.ErrorTypeAuthorization},
		{name: "admin", session: adminSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.access.RequireAdmin(ctx, tt.session)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsType(err, tt.want), "got %v", err)
		})
	}
}

func TestAuditService_LogAndList(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	h.audit.Log(ctx, adminSession, domain.StructuredAction{Action: "delete", TargetTable: "teams", TargetID: "t1"})
	h.audit.Log(ctx, adminSession, domain.FreeTextAction{Description: "Moved final to Sunday"})

	entries, err := h.audit.List(ctx, adminSession, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	kinds := map[domain.AuditKind]domain.AuditEntry{}
	for _, e := range entries {
		assert.Equal(t, adminSession.UserID, e.AdminID)
		kinds[e.Kind] = e
	}
	assert.Equal(t, "t1", kinds[domain.AuditKindStructured].TargetID)
	assert.Equal(t, "Moved final to Sunday", kinds[domain.AuditKindFreeText].Details)
}

func TestAuditService_LogSwallowsFailures(t *testing.T) {
	h := newHarness(t, Options{})
	h.store.FailInsert["admin_audit_log"] = errors.New("down")

	assert.NotPanics(t, func() {
		h.audit.Log(context.Background(), adminSession, domain.FreeTextAction{Description: "x"})
	})
	assert.Empty(t, h.store.Rows("admin_audit_log"))
}

func TestSubmissionGuard(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	release, err := h.guard.Acquire(ctx, "team", "u1")
	require.NoError(t, err)

	_, err = h.guard.Acquire(ctx, "team", "u1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))

	other, err := h.guard.Acquire(ctx, "team", "u2")
	require.NoError(t, err)
	other()

	release()
	again, err := h.guard.Acquire(ctx, "team", "u1")
	require.NoError(t, err)
	again()
}

func TestSubmissionGuard_LocalFallback(t *testing.T) {
	guard := NewSubmissionGuard(nil, "test", newNopLogger())
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "entry", "u1")
	require.NoError(t, err)
	_, err = guard.Acquire(ctx, "entry", "u1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	release()

	release, err = guard.Acquire(ctx, "entry", "u1")
	require.NoError(t, err)
	release()
}
