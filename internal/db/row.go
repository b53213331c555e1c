package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04"
	TimestampLayout = "2006-01-02 15:04"
)

// Row is one result row keyed by column name. Values arrive in whatever shape the
// driver produces (SQLite text and floats, PostgreSQL native dates and numerics);
// the accessors normalise them to the formats the domain uses.
type Row map[string]any

// Int64 returns the column as an integer, or 0 when NULL or missing.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case int16:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case pgtype.Numeric:
		return r.Decimal(col).IntPart()
	}
	return 0
}

// Int returns the column as an int.
func (r Row) Int(col string) int {
	return int(r.Int64(col))
}

// String returns the column as text, or "" when NULL.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(TimestampLayout)
	default:
		return fmt.Sprint(v)
	}
}

// Date returns the column formatted as YYYY-MM-DD.
func (r Row) Date(col string) string {
	switch v := r[col].(type) {
	case time.Time:
		return v.Format(DateLayout)
	case pgtype.Date:
		if !v.Valid {
			return ""
		}
		return v.Time.Format(DateLayout)
	}
	return prefix(r.String(col), len(DateLayout))
}

// NullDate is Date for nullable columns.
func (r Row) NullDate(col string) *string {
	if r[col] == nil {
		return nil
	}
	d := r.Date(col)
	if d == "" {
		return nil
	}
	return &d
}

// Clock returns a time-of-day column formatted as HH:MM.
func (r Row) Clock(col string) string {
	switch v := r[col].(type) {
	case pgtype.Time:
		if !v.Valid {
			return ""
		}
		minutes := v.Microseconds / int64(time.Minute/time.Microsecond)
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	case time.Time:
		return v.Format(ClockLayout)
	}
	return prefix(r.String(col), len(ClockLayout))
}

// Timestamp returns the column formatted as YYYY-MM-DD HH:MM.
func (r Row) Timestamp(col string) string {
	if t, ok := r[col].(time.Time); ok {
		return t.Format(TimestampLayout)
	}
	s := strings.Replace(r.String(col), "T", " ", 1)
	return prefix(s, len(TimestampLayout))
}

// Decimal returns a numeric column as a decimal, or zero when NULL.
func (r Row) Decimal(col string) decimal.Decimal {
	switch v := r[col].(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int64:
		return decimal.NewFromInt(v)
	case int32:
		return decimal.NewFromInt32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, _ := decimal.NewFromString(v)
		return d
	case []byte:
		d, _ := decimal.NewFromString(string(v))
		return d
	case pgtype.Numeric:
		if !v.Valid || v.NaN {
			return decimal.Zero
		}
		if v.Int == nil {
			return decimal.Zero
		}
		return decimal.NewFromBigInt(v.Int, v.Exp)
	}
	return decimal.Zero
}

// Float64 returns a numeric column as a float. Used only at reporting boundaries.
func (r Row) Float64(col string) float64 {
	return r.Decimal(col).InexactFloat64()
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
