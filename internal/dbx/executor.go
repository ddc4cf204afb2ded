package dbx

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Executor runs a single parameterized SQL statement and returns its rows.
// Placeholders are written as '?'; implementations rebind them when their
// backend needs another style.
//
// It is implemented by the libsql HTTP client and by sqlexec.DB.
type Executor interface {
	Execute(ctx context.Context, sql string, params []any) (*Result, error)
}

// Row is one result row keyed by column name. Values are nil, int64,
// float64, string, []byte or bool.
type Row map[string]any

// Result is the normalized outcome of a statement. Statements that produce
// no rows yield an empty Rows slice, never an error.
type Result struct {
	Rows            []Row
	AffectedRows    int64
	LastInsertRowID *int64
}

// First returns the first row, or nil when the result is empty.
func (r *Result) First() Row {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// String returns the column value in its string form; NULL and missing
// columns yield "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer. Text holding digits is parsed;
// anything else yields 0.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// IsNull reports whether the column is NULL or absent.
func (r Row) IsNull(col string) bool {
	return r[col] == nil
}

// Time parses the column as a stored timestamp (see TimeLayout).
func (r Row) Time(col string) (time.Time, error) {
	t, err := ParseTime(r.String(col))
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

var selectRe = regexp.MustCompile(`(?i)^\s*select`)

// WantsRows reports whether the statement is row-producing, i.e. it starts
// with SELECT after optional whitespace.
func WantsRows(sql string) bool {
	return selectRe.MatchString(sql)
}

// TimeLayout is the fixed-width UTC layout used for every stored timestamp,
// so that text comparison matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout (or RFC 3339) timestamp.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
