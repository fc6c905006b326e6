package driver

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Warehouses disagree on value types: Snowflake hands back NUMBER as text,
// SQLite has no booleans, Postgres returns numerics as float64. The
// accessors below accept any of those encodings.

func (r Row) Value(col string) (interface{}, bool) {
	v, ok := r[strings.ToUpper(col)]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r Row) String(col string) string {
	v, ok := r.Value(col)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// NullableString returns nil for SQL NULL and for empty strings.
func (r Row) NullableString(col string) *string {
	s := r.String(col)
	if s == "" {
		return nil
	}
	return &s
}

func (r Row) NullableFloat(col string) *float64 {
	v, ok := r.Value(col)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func (r Row) Float(col string) float64 {
	if f := r.NullableFloat(col); f != nil {
		return *f
	}
	return 0
}

func (r Row) Int(col string) int64 {
	v, ok := r.Value(col)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	default:
		f, _ := toFloat(v)
		return int64(f)
	}
}

func (r Row) Bool(col string) bool {
	v, ok := r.Value(col)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case []byte:
		return truthy(string(t))
	case string:
		return truthy(t)
	default:
		return truthy(fmt.Sprint(t))
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes":
		return true
	default:
		return false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (r Row) Time(col string) time.Time {
	v, ok := r.Value(col)
	if !ok {
		return time.Time{}
	}
	if t, ok := v.(time.Time); ok {
		return t
	}
	s := strings.TrimSpace(r.String(col))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r Row) NullableTime(col string) *time.Time {
	t := r.Time(col)
	if t.IsZero() {
		return nil
	}
	return &t
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		return f, err == nil
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(t), 64)
		return f, err == nil
	}
}

func normalizeRow(raw map[string]interface{}) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[strings.ToUpper(k)] = v
	}
	return row
}
