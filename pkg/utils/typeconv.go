package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeyString renders a legacy key column value as its canonical string
// form. Drivers hand back integer keys as int64 or []byte depending on
// the dialect; both must map to the same identity-map key.
func KeyString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ConvertToString coerces a driver value to a string, "" for NULL.
func ConvertToString(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ConvertToInt64 coerces a driver value to an int64.
func ConvertToInt64(val interface{}) (int64, error) {
	switch v := val.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", val)
	}
}

// ConvertToBool maps legacy tinyint flags (and their string forms) to a
// bool. NULL and unrecognized values are false.
func ConvertToBool(val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case []byte:
		return string(v) == "1"
	case string:
		return v == "1"
	default:
		return false
	}
}

// ConvertDateTime parses the datetime shapes the legacy store produces.
func ConvertDateTime(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case string:
		return parseDateTime(v)
	case []byte:
		return parseDateTime(string(v))
	default:
		return time.Time{}, false
	}
}

// DateTimeOr is ConvertDateTime with a fallback for NULL or unparseable
// values; the legacy schema carries zero dates in several audit columns.
func DateTimeOr(val interface{}, fallback time.Time) time.Time {
	if t, ok := ConvertDateTime(val); ok && !t.IsZero() {
		return t
	}
	return fallback
}

func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return time.Time{}, false
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
