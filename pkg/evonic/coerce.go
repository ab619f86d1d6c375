package evonic

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CoerceInt converts a wire value to an integer.
//
// Integers pass through unchanged and numeric strings are parsed. Everything else,
// including empty strings and fractional numbers, is a decode error rather than zero.
func CoerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, NewDecodeError(fmt.Sprintf("%s is not an integer", n), err)
		}
		return i, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, NewDecodeError(fmt.Sprintf("%v is not an integer", n), nil)
		}
		return int(n), nil
	case string:
		s := strings.TrimSpace(n)
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, NewDecodeError(fmt.Sprintf("%q is not numeric", n), err)
		}
		return i, nil
	default:
		return 0, NewDecodeError(fmt.Sprintf("cannot coerce %T to integer", v), nil)
	}
}

// CoerceBool converts a wire flag to a bool.
func CoerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case json.Number, int, int64, float64:
		i, err := CoerceInt(b)
		if err != nil {
			return false, err
		}
		if i != 0 && i != 1 {
			return false, NewDecodeError(fmt.Sprintf("%d is not a flag", i), nil)
		}
		return i == 1, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "on":
			return true, nil
		case "0", "false", "off":
			return false, nil
		}
		return false, NewDecodeError(fmt.Sprintf("%q is not a flag", b), nil)
	default:
		return false, NewDecodeError(fmt.Sprintf("cannot coerce %T to bool", v), nil)
	}
}

// CoerceString converts a wire value to a string. Numbers are rendered in decimal.
func CoerceString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	case int:
		return strconv.Itoa(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", NewDecodeError(fmt.Sprintf("cannot coerce %T to string", v), nil)
	}
}

// CoerceStringList converts a JSON array, or a comma separated string, to a list.
func CoerceStringList(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case []any:
		out := make([]string, 0, len(l))
		for i, item := range l {
			s, err := CoerceString(item)
			if err != nil {
				return nil, NewDecodeError(fmt.Sprintf("item %d", i), err)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		out := []string{}
		for _, part := range strings.Split(l, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return nil, NewDecodeError(fmt.Sprintf("cannot coerce %T to list", v), nil)
	}
}
