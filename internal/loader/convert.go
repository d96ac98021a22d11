package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vvka-141/songplays/internal/schema"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// convert turns a decoded JSON value into the Go value pgx encodes for the
// column type. JSON null, a missing key, and an empty string for a non-text
// column all load as NULL.
func convert(v any, t schema.ColumnType, epochMillis bool) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && t != schema.Text && t != schema.Char && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	switch t {
	case schema.Text, schema.Char:
		return toText(v)
	case schema.Integer:
		return toInteger(v)
	case schema.Float:
		return toFloat(v)
	case schema.Timestamp:
		return toTimestamp(v, epochMillis)
	default:
		return nil, fmt.Errorf("unsupported column type %s", t)
	}
}

func toText(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return nil, fmt.Errorf("cannot load %T as text", v)
	}
}

func toInteger(v any) (any, error) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return nil, fmt.Errorf("cannot load %T as integer", v)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	return int64(f), nil
}

func toFloat(v any) (any, error) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return nil, fmt.Errorf("cannot load %T as float", v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

func toTimestamp(v any, epochMillis bool) (any, error) {
	if n, ok := v.(json.Number); ok {
		if !epochMillis {
			return nil, fmt.Errorf("numeric timestamp %s needs epoch milliseconds format", n)
		}
		ms, err := toInteger(n)
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(ms.(int64)).UTC(), nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot load %T as timestamp", v)
	}
	s = strings.TrimSpace(s)
	if epochMillis {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return nil, fmt.Errorf("%q is not a timestamp", s)
}
