// Package gateway is the persistence & auth boundary: table CRUD, the
// signed-in user, provider sign-in and file uploads.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"cricket-hub/internal/domain"
)

// ErrNotFound is returned when an update or delete matched no row
var ErrNotFound = errors.New("record not found")

// Record is one row keyed by column name
type Record map[string]interface{}

// Operator is a filter comparison
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// Filter restricts a query to rows where Column Op Value
type Filter struct {
	Column string
	Op     Operator
	Value  interface{}
}

// Eq is Column = value
func Eq(column string, value interface{}) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Gte is Column >= value
func Gte(column string, value interface{}) Filter {
	return Filter{Column: column, Op: OpGte, Value: value}
}

// In is Column IN (values...)
func In(column string, values ...interface{}) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// Order sorts by Column
type Order struct {
	Column string
	Desc   bool
}

// Asc sorts ascending
func Asc(column string) Order { return Order{Column: column} }

// Desc sorts descending
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query selects rows. Limit 0 means no limit.
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Store is table-level CRUD against the hosted database
type Store interface {
	Query(ctx context.Context, table string, q Query) ([]Record, error)
	Insert(ctx context.Context, table string, record Record) (Record, error)
	InsertMany(ctx context.Context, table string, records []Record) ([]Record, error)
	Update(ctx context.Context, table, id string, patch Record) (Record, error)
	Delete(ctx context.Context, table, id string) error
	DeleteWhere(ctx context.Context, table string, filters ...Filter) error
}

// Auth is the hosted auth service
type Auth interface {
	// CurrentUser returns nil, nil when the token carries no live session
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
	SignInWithProvider(provider, redirectTo string) (*domain.SignInRedirect, error)
	ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*domain.AuthTokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

// FileStore uploads files and returns their public URL
type FileStore interface {
	UploadFile(ctx context.Context, bucket, path, contentType string, data []byte) (string, error)
}

// TableUserRoles holds one role per user
const TableUserRoles = "user_roles"

// Gateway bundles the three collaborators plus role lookups
type Gateway struct {
	Store
	Auth
	FileStore
	adminRole string
}

// New assembles a gateway
func New(store Store, auth Auth, files FileStore, adminRole string) *Gateway {
	return &Gateway{Store: store, Auth: auth, FileStore: files, adminRole: adminRole}
}

// CurrentUserRole returns the caller's role or "" when none is assigned
func (g *Gateway) CurrentUserRole(ctx context.Context, session domain.Session) (string, error) {
	if session.Anonymous() {
		return "", nil
	}
	ctx = WithAccessToken(ctx, session.AccessToken)
	rows, err := g.Query(ctx, TableUserRoles, Query{
		Filters: []Filter{Eq("user_id", session.UserID)},
		Limit:   1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up role: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	role, _ := rows[0]["role"].(string)
	return role, nil
}

// IsCurrentUserAdmin reports whether the caller holds the admin role
func (g *Gateway) IsCurrentUserAdmin(ctx context.Context, session domain.Session) (bool, error) {
	role, err := g.CurrentUserRole(ctx, session)
	if err != nil {
		return false, err
	}
	return role != "" && role == g.adminRole, nil
}

// AdminRole is the role name treated as admin
func (g *Gateway) AdminRole() string {
	return g.adminRole
}

type accessTokenKey struct{}

// WithAccessToken makes Store calls on ctx run as the given user
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom returns the token set by WithAccessToken
func AccessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}
