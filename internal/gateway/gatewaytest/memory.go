// Package gatewaytest provides in-memory gateway collaborators for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"cricket-hub/internal/domain"
	"cricket-hub/internal/gateway"

	"github.com/google/uuid"
)

// MemoryStore is a gateway.Store kept in maps. Rows get a uuid id and a
// created_at when they have none. Fail* hooks force errors per table.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]gateway.Record
	clock  func() time.Time

	FailInsert map[string]error
	FailQuery  map[string]error
	FailUpdate map[string]error
	FailDelete map[string]error

	// Tokens records the access token seen by each call, in order
	Tokens []string
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:     map[string][]gateway.Record{},
		clock:      time.Now,
		FailInsert: map[string]error{},
		FailQuery:  map[string]error{},
		FailUpdate: map[string]error{},
		FailDelete: map[string]error{},
	}
}

// Seed inserts rows without running failure hooks
func (m *MemoryStore) Seed(table string, rows ...gateway.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tables[table] = append(m.tables[table], m.prepare(r))
	}
}

// Rows returns a copy of a table's rows
func (m *MemoryStore) Rows(table string) []gateway.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]gateway.Record, len(m.tables[table]))
	for i, r := range m.tables[table] {
		out[i] = clone(r)
	}
	return out
}

func (m *MemoryStore) seen(ctx context.Context) {
	token, _ := gateway.AccessTokenFrom(ctx)
	m.Tokens = append(m.Tokens, token)
}

// normalize round-trips through JSON so stored values look like decoded rows
func normalize(r gateway.Record) gateway.Record {
	raw, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	var out gateway.Record
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func clone(r gateway.Record) gateway.Record {
	return normalize(r)
}

func (m *MemoryStore) prepare(r gateway.Record) gateway.Record {
	r = normalize(r)
	if id, _ := r["id"].(string); id == "" {
		r["id"] = uuid.NewString()
	}
	if _, ok := r["created_at"]; !ok {
		r["created_at"] = m.clock().UTC().Format(time.RFC3339Nano)
	}
	return r
}

// Query implements gateway.Store
func (m *MemoryStore) Query(ctx context.Context, table string, q gateway.Query) ([]gateway.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(ctx)
	if err := m.FailQuery[table]; err != nil {
		return nil, err
	}

	var out []gateway.Record
	for _, r := range m.tables[table] {
		if matches(r, q.Filters) {
			out = append(out, clone(r))
		}
	}
	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := compare(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Insert implements gateway.Store
func (m *MemoryStore) Insert(ctx context.Context, table string, record gateway.Record) (gateway.Record, error) {
	rows, err := m.InsertMany(ctx, table, []gateway.Record{record})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// InsertMany implements gateway.Store
func (m *MemoryStore) InsertMany(ctx context.Context, table string, records []gateway.Record) ([]gateway.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(ctx)
	if err := m.FailInsert[table]; err != nil {
		return nil, err
	}
	out := make([]gateway.Record, 0, len(records))
	for _, r := range records {
		row := m.prepare(r)
		m.tables[table] = append(m.tables[table], row)
		out = append(out, clone(row))
	}
	return out, nil
}

// Update implements gateway.Store
func (m *MemoryStore) Update(ctx context.Context, table, id string, patch gateway.Record) (gateway.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(ctx)
	if err := m.FailUpdate[table]; err != nil {
		return nil, err
	}
	patch = normalize(patch)
	for _, r := range m.tables[table] {
		if r["id"] == id {
			for k, v := range patch {
				r[k] = v
			}
			return clone(r), nil
		}
	}
	return nil, gateway.ErrNotFound
}

// Delete implements gateway.Store
func (m *MemoryStore) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(ctx)
	if err := m.FailDelete[table]; err != nil {
		return err
	}
	rows := m.tables[table]
	for i, r := range rows {
		if r["id"] == id {
			m.tables[table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

// DeleteWhere implements gateway.Store
func (m *MemoryStore) DeleteWhere(ctx context.Context, table string, filters ...gateway.Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen(ctx)
	if len(filters) == 0 {
		return fmt.Errorf("delete from %s: refusing to delete without a filter", table)
	}
	if err := m.FailDelete[table]; err != nil {
		return err
	}
	kept := m.tables[table][:0]
	for _, r := range m.tables[table] {
		if !matches(r, filters) {
			kept = append(kept, r)
		}
	}
	m.tables[table] = kept
	return nil
}

func matches(r gateway.Record, filters []gateway.Filter) bool {
	for _, f := range filters {
		v := r[f.Column]
		switch f.Op {
		case gateway.OpIn:
			values, _ := f.Value.([]interface{})
			found := false
			for _, want := range values {
				if compare(v, want) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case gateway.OpEq:
			if compare(v, f.Value) != 0 {
				return false
			}
		case gateway.OpNeq:
			if compare(v, f.Value) == 0 {
				return false
			}
		case gateway.OpGt:
			if compare(v, f.Value) <= 0 {
				return false
			}
		case gateway.OpGte:
			if compare(v, f.Value) < 0 {
				return false
			}
		case gateway.OpLt:
			if compare(v, f.Value) >= 0 {
				return false
			}
		case gateway.OpLte:
			if compare(v, f.Value) > 0 {
				return false
			}
		}
	}
	return true
}

// compare orders times, then numbers, then strings
func compare(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func asTime(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		return t, err == nil
	}
	return time.Time{}, false
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// FakeAuth is a gateway.Auth backed by a token → user map
type FakeAuth struct {
	Users          map[string]*domain.User
	Err            error
	SignedOut      []string
	Exchanged      map[string]*domain.AuthTokens
	LastRedirectTo string
}

// NewFakeAuth returns an auth fake with no users
func NewFakeAuth() *FakeAuth {
	return &FakeAuth{Users: map[string]*domain.User{}, Exchanged: map[string]*domain.AuthTokens{}}
}

// CurrentUser implements gateway.Auth
func (f *FakeAuth) CurrentUser(_ context.Context, token string) (*domain.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Users[token], nil
}

// SignInWithProvider implements gateway.Auth
func (f *FakeAuth) SignInWithProvider(provider, redirectTo string) (*domain.SignInRedirect, error) {
	f.LastRedirectTo = redirectTo
	return &domain.SignInRedirect{
		URL:          "https://auth.test/authorize?provider=" + provider,
		CodeVerifier: "verifier",
	}, nil
}

// ExchangeCode implements gateway.Auth
func (f *FakeAuth) ExchangeCode(_ context.Context, code, _ string) (*domain.AuthTokens, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	tokens, ok := f.Exchanged[code]
	if !ok {
		return nil, fmt.Errorf("unknown code %q", code)
	}
	return tokens, nil
}

// SignOut implements gateway.Auth
func (f *FakeAuth) SignOut(_ context.Context, token string) error {
	f.SignedOut = append(f.SignedOut, token)
	return f.Err
}

// MemoryFiles is a gateway.FileStore that keeps uploads in a map
type MemoryFiles struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

// NewMemoryFiles returns an empty file store
func NewMemoryFiles() *MemoryFiles {
	return &MemoryFiles{Files: map[string][]byte{}}
}

// UploadFile implements gateway.FileStore
func (f *MemoryFiles) UploadFile(_ context.Context, bucket, path, _ string, data []byte) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[bucket+"/"+path] = data
	return gateway.PublicObjectURL("https://files.test", bucket, path), nil
}

// NewGateway wires all three fakes into a gateway with admin role "admin"
func NewGateway() (*gateway.Gateway, *MemoryStore, *FakeAuth, *MemoryFiles) {
	store := NewMemoryStore()
	auth := NewFakeAuth()
	files := NewMemoryFiles()
	return gateway.New(store, auth, files, "admin"), store, auth, files
}
