package gateway_test

import (
	"context"
	"errors"
	"testing"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"
	"cricket-hub/internal/gateway/gatewaytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_CurrentUserRole(t *testing.T) {
	gw, store, _, _ := gatewaytest.NewGateway()
	store.Seed(gateway.TableUserRoles,
		gateway.Record{"user_id": "admin-1", "role": "admin"},
		gateway.Record{"user_id": "umpire-1", "role": "umpire"},
	)
	ctx := context.Background()

	tests := []struct {
		name    string
		session domain.Session
		role    string
		isAdmin bool
	}{
		{name: "admin", session: domain.Session{UserID: "admin-1", AccessToken: "t"}, role: "admin", isAdmin: true},
		{name: "other role", session: domain.Session{UserID: "umpire-1", AccessToken: "t"}, role: "umpire"},
		{name: "no role row", session: domain.Session{UserID: "player-1", AccessToken: "t"}},
		{name: "anonymous", session: domain.Session{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := gw.CurrentUserRole(ctx, tt.session)
			require.NoError(t, err)
			assert.Equal(t, tt.role, role)

			isAdmin, err := gw.IsCurrentUserAdmin(ctx, tt.session)
			require.NoError(t, err)
			assert.Equal(t, tt.isAdmin, isAdmin)
		})
	}
}

func TestGateway_RoleLookupRunsAsCaller(t *testing.T) {
	gw, store, _, _ := gatewaytest.NewGateway()

	_, err := gw.CurrentUserRole(context.Background(), domain.Session{UserID: "u1", AccessToken: "caller-token"})
	require.NoError(t, err)
	require.NotEmpty(t, store.Tokens)
	assert.Equal(t, "caller-token", store.Tokens[len(store.Tokens)-1])
}

func TestGateway_RoleLookupFailure(t *testing.T) {
	gw, store, _, _ := gatewaytest.NewGateway()
	store.FailQuery[gateway.TableUserRoles] = errors.New("connection reset")

	_, err := gw.IsCurrentUserAdmin(context.Background(), domain.Session{UserID: "u1", AccessToken: "t"})
	assert.Error(t, err)
}

func TestAccessTokenContext(t *testing.T) {
	ctx := context.Background()

	_, ok := gateway.AccessTokenFrom(ctx)
	assert.False(t, ok)

	assert.Equal(t, ctx, gateway.WithAccessToken(ctx, ""))

	token, ok := gateway.AccessTokenFrom(gateway.WithAccessToken(ctx, "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}
