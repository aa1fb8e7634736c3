package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"cricket-hub/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxBeginner is the part of *pgxpool.Pool the store needs
type pgxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store over a direct Postgres connection. When the
// context carries an access token, statements run as the "authenticated" role
// with the token's claims so row-level security applies as it does through
// PostgREST.
type PostgresStore struct {
	db     pgxBeginner
	logger *logger.Logger
}

// NewPostgresStore creates a store on top of a pgx pool
func NewPostgresStore(db pgxBeginner, logger *logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

var sqlOperators = map[Operator]string{
	OpEq:  "=",
	OpNeq: "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if token, ok := AccessTokenFrom(ctx); ok {
		if err := impersonate(ctx, tx, token); err != nil {
			return err
		}
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// impersonate sets the claims Supabase's RLS policies read via auth.uid().
// The token was already verified by the auth layer.
func impersonate(ctx context.Context, tx pgx.Tx, token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("failed to read token claims: %w", err)
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to encode token claims: %w", err)
	}
	if _, err := tx.Exec(ctx, "SELECT set_config('request.jwt.claims', $1, true)", string(raw)); err != nil {
		return fmt.Errorf("failed to set request claims: %w", err)
	}
	if _, err := tx.Exec(ctx, "SET LOCAL ROLE authenticated"); err != nil {
		return fmt.Errorf("failed to switch role: %w", err)
	}
	return nil
}

// Query implements Store
func (s *PostgresStore) Query(ctx context.Context, table string, q Query) ([]Record, error) {
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}

	var out []Record
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = collectRecords(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"table": table,
		"rows":  len(out),
	}).Debug("Postgres query completed")
	return out, nil
}

// Insert implements Store
func (s *PostgresStore) Insert(ctx context.Context, table string, record Record) (Record, error) {
	rows, err := s.InsertMany(ctx, table, []Record{record})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s: no row returned", table)
	}
	return rows[0], nil
}

// InsertMany implements Store. All rows are written in one transaction.
func (s *PostgresStore) InsertMany(ctx context.Context, table string, records []Record) ([]Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]Record, 0, len(records))
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range records {
			sql, args, err := buildInsert(table, rec)
			if err != nil {
				return err
			}
			row, err := scanRecord(tx.QueryRow(ctx, sql, args...))
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	return out, nil
}

// Update implements Store
func (s *PostgresStore) Update(ctx context.Context, table, id string, patch Record) (Record, error) {
	sql, args, err := buildUpdate(table, id, patch)
	if err != nil {
		return nil, err
	}
	var out Record
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		out, err = scanRecord(tx.QueryRow(ctx, sql, args...))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return out, nil
}

// Delete implements Store
func (s *PostgresStore) Delete(ctx context.Context, table, id string) error {
	sql, args, err := buildDelete(table, []Filter{Eq("id", id)})
	if err != nil {
		return err
	}
	var tag pgconn.CommandTag
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err = tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere implements Store. At least one filter is required.
func (s *PostgresStore) DeleteWhere(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("delete from %s: refusing to delete without a filter", table)
	}
	sql, args, err := buildDelete(table, filters)
	if err != nil {
		return err
	}
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return rec, nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// sqlArgs numbers placeholders as they are appended
type sqlArgs []interface{}

func (a *sqlArgs) add(v interface{}) string {
	*a = append(*a, sqlValue(v))
	return "$" + strconv.Itoa(len(*a))
}

func buildWhere(filters []Filter, a *sqlArgs) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		col := "r." + ident(f.Column)
		if f.Op == OpIn {
			values, _ := f.Value.([]interface{})
			if len(values) == 0 {
				clauses = append(clauses, "FALSE")
				continue
			}
			ph := make([]string, len(values))
			for i, v := range values {
				ph[i] = a.add(v)
			}
			clauses = append(clauses, col+" IN ("+strings.Join(ph, ", ")+")")
			continue
		}
		op, ok := sqlOperators[f.Op]
		if !ok {
			return "", fmt.Errorf("unsupported operator %q", f.Op)
		}
		if f.Value == nil && (f.Op == OpEq || f.Op == OpNeq) {
			if f.Op == OpEq {
				clauses = append(clauses, col+" IS NULL")
			} else {
				clauses = append(clauses, col+" IS NOT NULL")
			}
			continue
		}
		clauses = append(clauses, col+" "+op+" "+a.add(f.Value))
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func buildSelect(table string, q Query) (string, []interface{}, error) {
	var a sqlArgs
	where, err := buildWhere(q.Filters, &a)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT to_jsonb(r) FROM ")
	b.WriteString(ident(table))
	b.WriteString(" AS r")
	b.WriteString(where)
	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = "r." + ident(o.Column) + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String(), a, nil
}

func sortedColumns(rec Record) []string {
	cols := make([]string, 0, len(rec))
	for k := range rec {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func buildInsert(table string, rec Record) (string, []interface{}, error) {
	if len(rec) == 0 {
		return "", nil, fmt.Errorf("insert into %s: empty record", table)
	}
	var a sqlArgs
	cols := sortedColumns(rec)
	names := make([]string, len(cols))
	ph := make([]string, len(cols))
	for i, c := range cols {
		names[i] = ident(c)
		ph[i] = a.add(rec[c])
	}
	sql := fmt.Sprintf("INSERT INTO %s AS r (%s) VALUES (%s) RETURNING to_jsonb(r)",
		ident(table), strings.Join(names, ", "), strings.Join(ph, ", "))
	return sql, a, nil
}

func buildUpdate(table, id string, patch Record) (string, []interface{}, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("update %s: empty patch", table)
	}
	var a sqlArgs
	cols := sortedColumns(patch)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = ident(c) + " = " + a.add(patch[c])
	}
	idPh := a.add(id)
	sql := fmt.Sprintf("UPDATE %s AS r SET %s WHERE r.%s = %s RETURNING to_jsonb(r)",
		ident(table), strings.Join(sets, ", "), ident("id"), idPh)
	return sql, a, nil
}

func buildDelete(table string, filters []Filter) (string, []interface{}, error) {
	var a sqlArgs
	where, err := buildWhere(filters, &a)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + ident(table) + " AS r" + where, a, nil
}

// sqlValue adapts JSON-decoded values for the simple protocol: integral
// floats become integers and nested objects become JSON text.
func sqlValue(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(raw)
	default:
		return v
	}
}
