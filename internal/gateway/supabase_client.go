package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cricket-hub/internal/config"
	"cricket-hub/internal/domain"
	"cricket-hub/pkg/logger"

	"golang.org/x/oauth2"
)

// StatusError is a non-2xx answer from Supabase
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Supabase returned status %d: %s", e.StatusCode, e.Body)
}

// SupabaseClient talks to PostgREST, GoTrue and Storage over HTTP
type SupabaseClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSupabaseClient creates a new Supabase client
func NewSupabaseClient(cfg *config.Config, logger *logger.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimRight(cfg.SupabaseURL, "/"),
		anonKey: cfg.SupabaseAnonKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	raw     []byte
	headers map[string]string
	token   string
}

// clientFor returns an HTTP client that authenticates as token, or as the
// anon key when token is empty
func (s *SupabaseClient) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return s.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

func (s *SupabaseClient) do(ctx context.Context, r request, out interface{}) error {
	endpoint := s.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	switch {
	case r.raw != nil:
		body = bytes.NewReader(r.raw)
	case r.body != nil:
		jsonBody, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", s.anonKey)
	if r.token == "" {
		req.Header.Set("Authorization", "Bearer "+s.anonKey)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.clientFor(ctx, r.token).Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Supabase: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"path":        r.path,
			"status_code": resp.StatusCode,
		}).Error("Failed to parse Supabase response")
		return fmt.Errorf("failed to parse Supabase response: %w", err)
	}
	return nil
}

func tokenFrom(ctx context.Context) string {
	token, _ := AccessTokenFrom(ctx)
	return token
}

func tablePath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

var representation = map[string]string{"Prefer": "return=representation"}

// Query implements Store
func (s *SupabaseClient) Query(ctx context.Context, table string, q Query) ([]Record, error) {
	params := encodeFilters(q.Filters)
	params.Set("select", "*")
	if order := encodeOrder(q.Order); order != "" {
		params.Set("order", order)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var rows []Record
	err := s.do(ctx, request{method: http.MethodGet, path: tablePath(table), query: params, token: tokenFrom(ctx)}, &rows)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"table": table,
		"rows":  len(rows),
	}).Debug("Supabase query completed")
	return rows, nil
}

// Insert implements Store
func (s *SupabaseClient) Insert(ctx context.Context, table string, record Record) (Record, error) {
	var rows []Record
	err := s.do(ctx, request{
		method:  http.MethodPost,
		path:    tablePath(table),
		body:    record,
		headers: representation,
		token:   tokenFrom(ctx),
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s: no row returned", table)
	}
	return rows[0], nil
}

// InsertMany implements Store; PostgREST inserts an array in one statement
func (s *SupabaseClient) InsertMany(ctx context.Context, table string, records []Record) ([]Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	var rows []Record
	err := s.do(ctx, request{
		method:  http.MethodPost,
		path:    tablePath(table),
		body:    records,
		headers: representation,
		token:   tokenFrom(ctx),
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("bulk insert into %s: %w", table, err)
	}
	return rows, nil
}

// Update implements Store
func (s *SupabaseClient) Update(ctx context.Context, table, id string, patch Record) (Record, error) {
	var rows []Record
	err := s.do(ctx, request{
		method:  http.MethodPatch,
		path:    tablePath(table),
		query:   encodeFilters([]Filter{Eq("id", id)}),
		body:    patch,
		headers: representation,
		token:   tokenFrom(ctx),
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Delete implements Store
func (s *SupabaseClient) Delete(ctx context.Context, table, id string) error {
	var rows []Record
	err := s.do(ctx, request{
		method:  http.MethodDelete,
		path:    tablePath(table),
		query:   encodeFilters([]Filter{Eq("id", id)}),
		headers: representation,
		token:   tokenFrom(ctx),
	}, &rows)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere implements Store. At least one filter is required.
func (s *SupabaseClient) DeleteWhere(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("delete from %s: refusing to delete without a filter", table)
	}
	err := s.do(ctx, request{
		method: http.MethodDelete,
		path:   tablePath(table),
		query:  encodeFilters(filters),
		token:  tokenFrom(ctx),
	}, nil)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// CurrentUser implements Auth
func (s *SupabaseClient) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, nil
	}
	var user domain.User
	err := s.do(ctx, request{method: http.MethodGet, path: "/auth/v1/user", token: accessToken}, &user)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return nil, nil
		}
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &user, nil
}

// SignInWithProvider implements Auth using the PKCE flow
func (s *SupabaseClient) SignInWithProvider(provider, redirectTo string) (*domain.SignInRedirect, error) {
	if strings.TrimSpace(provider) == "" {
		return nil, fmt.Errorf("provider is required")
	}
	verifier := oauth2.GenerateVerifier()

	params := url.Values{}
	params.Set("provider", provider)
	if redirectTo != "" {
		params.Set("redirect_to", redirectTo)
	}
	params.Set("code_challenge", oauth2.S256ChallengeFromVerifier(verifier))
	params.Set("code_challenge_method", "s256")

	return &domain.SignInRedirect{
		URL:          s.baseURL + "/auth/v1/authorize?" + params.Encode(),
		CodeVerifier: verifier,
	}, nil
}

// ExchangeCode implements Auth
func (s *SupabaseClient) ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*domain.AuthTokens, error) {
	var tokens domain.AuthTokens
	err := s.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": []string{"pkce"}},
		body: map[string]string{
			"auth_code":     authCode,
			"code_verifier": codeVerifier,
		},
	}, &tokens)
	if err != nil {
		return nil, fmt.Errorf("exchange auth code: %w", err)
	}
	return &tokens, nil
}

// SignOut implements Auth
func (s *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", token: accessToken}, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// UploadFile implements FileStore through the Storage REST API
func (s *SupabaseClient) UploadFile(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapeObjectPath(path)
	err := s.do(ctx, request{
		method: http.MethodPost,
		path:   objectPath,
		raw:    data,
		headers: map[string]string{
			"Content-Type": contentType,
			"x-upsert":     "true",
		},
		token: tokenFrom(ctx),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	return PublicObjectURL(s.baseURL, bucket, path), nil
}

// PublicObjectURL is where Supabase serves a public bucket object
func PublicObjectURL(baseURL, bucket, path string) string {
	return strings.TrimRight(baseURL, "/") + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapeObjectPath(path)
}

func escapeObjectPath(path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// encodeFilters renders filters in PostgREST's col=op.value syntax
func encodeFilters(filters []Filter) url.Values {
	params := url.Values{}
	for _, f := range filters {
		if f.Op == OpIn {
			values, _ := f.Value.([]interface{})
			quoted := make([]string, 0, len(values))
			for _, v := range values {
				quoted = append(quoted, quoteListValue(formatValue(v)))
			}
			params.Add(f.Column, "in.("+strings.Join(quoted, ",")+")")
			continue
		}
		params.Add(f.Column, string(f.Op)+"."+formatValue(f.Value))
	}
	return params
}

func encodeOrder(orders []Order) string {
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		parts = append(parts, o.Column+"."+dir)
	}
	return strings.Join(parts, ",")
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

func quoteListValue(s string) string {
	if strings.ContainsAny(s, ",()\" ") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
