package database

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"datasync/core/provider"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fetcher serves table snapshots as provider responses. "/table" returns every
// row as a JSON array; "/table/<key>" returns the single row whose key column
// equals key.
type Fetcher struct {
	db        *gorm.DB
	keyColumn string
}

// NewFetcher returns a fetcher over db matching single-row requests against
// keyColumn ("id" when empty).
func NewFetcher(db *gorm.DB, keyColumn string) *Fetcher {
	if keyColumn == "" {
		keyColumn = "id"
	}
	return &Fetcher{db: db, keyColumn: keyColumn}
}

// Fetch implements provider.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if f.db == nil {
		return nil, errors.New("database connection is nil")
	}
	if req.Method != "" && req.Method != http.MethodGet {
		return errorResponse(http.StatusMethodNotAllowed, "database source is read-only"), nil
	}

	table, key, err := parseTarget(req.URL)
	if err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	columns, err := GetTableColumns(f.db.WithContext(ctx), table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return errorResponse(http.StatusNotFound, "table "+table+" not found"), nil
	}
	hasKey := false
	for _, col := range columns {
		if col.Field == f.keyColumn {
			hasKey = true
			break
		}
	}

	if key == "" {
		return f.all(ctx, table, hasKey)
	}
	if !hasKey {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("table %s has no %s column", table, f.keyColumn)), nil
	}
	return f.one(ctx, table, key)
}

func (f *Fetcher) all(ctx context.Context, table string, ordered bool) (*provider.Response, error) {
	q := f.db.WithContext(ctx).Table(table)
	if ordered {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: f.keyColumn}})
	}
	var rows []map[string]any
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	for _, row := range rows {
		normalizeRow(row)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return jsonResponse(rows)
}

func (f *Fetcher) one(ctx context.Context, table, key string) (*provider.Response, error) {
	row := map[string]any{}
	err := f.db.WithContext(ctx).Table(table).
		Where(clause.Eq{Column: clause.Column{Name: f.keyColumn}, Value: key}).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(http.StatusNotFound, fmt.Sprintf("no row in %s with %s %s", table, f.keyColumn, key)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read row %s from %s: %w", key, table, err)
	}
	normalizeRow(row)
	return jsonResponse(row)
}

// parseTarget splits a request URL into table and optional key.
func parseTarget(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid url %q", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 2 || parts[0] == "" {
		return "", "", fmt.Errorf("expected /table or /table/key, got %q", u.Path)
	}
	if !ValidTableName(parts[0]) {
		return "", "", fmt.Errorf("invalid table name %q", parts[0])
	}
	if len(parts) == 2 {
		key, err := url.PathUnescape(parts[1])
		if err != nil {
			return "", "", fmt.Errorf("invalid key %q", parts[1])
		}
		return parts[0], key, nil
	}
	return parts[0], "", nil
}

// normalizeRow converts driver values into JSON friendly ones.
func normalizeRow(row map[string]any) {
	for k, v := range row {
		switch val := v.(type) {
		case []byte:
			row[k] = string(val)
		case time.Time:
			row[k] = val.UTC()
		}
	}
}

func jsonResponse(v any) (*provider.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	return &provider.Response{
		StatusCode:  http.StatusOK,
		Status:      http.StatusText(http.StatusOK),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func errorResponse(status int, reason string) *provider.Response {
	body, _ := json.Marshal(map[string]any{"reason": reason, "code": status})
	return &provider.Response{
		StatusCode:  status,
		Status:      http.StatusText(status),
		ContentType: "application/json",
		Body:        body,
	}
}
