package tablesync

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

func rowID(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, id != ""
	case bool:
		if !id {
			return "", false
		}
		return "true", true
	default:
		n, ok := numberValue(v)
		if !ok {
			return "", false
		}
		if n == 0 || math.IsNaN(n) {
			return "", false
		}
		return formatNumber(n), true
	}
}

// numberValue converts the numeric kinds produced by Go literals, JSON and
// YAML decoding into a float64.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// joinNumbers flattens a numeric sequence into "1,2,3". Any slice or array
// is accepted; non-numeric items are rendered with their string form.
func joinNumbers(v any) string {
	var parts []string
	switch seq := v.(type) {
	case nil:
		return ""
	case []int:
		parts = make([]string, len(seq))
		for i, n := range seq {
			parts[i] = strconv.Itoa(n)
		}
	case []int64:
		parts = make([]string, len(seq))
		for i, n := range seq {
			parts[i] = strconv.FormatInt(n, 10)
		}
	case []float64:
		parts = make([]string, len(seq))
		for i, n := range seq {
			parts[i] = formatNumber(n)
		}
	case []any:
		parts = make([]string, len(seq))
		for i, item := range seq {
			parts[i] = scalarString(item)
		}
	case string:
		return seq
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return scalarString(v)
		}
		parts = make([]string, rv.Len())
		for i := range parts {
			parts[i] = scalarString(rv.Index(i).Interface())
		}
	}
	return strings.Join(parts, ",")
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	if n, ok := numberValue(v); ok {
		return formatNumber(n)
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func isIntegral(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	if n, ok := numberValue(v); ok {
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	}
	return false
}

// sumCounts adds numeric values, keeping an int result when every operand
// is integral.
func sumCounts(values ...any) any {
	total := 0.0
	integral := true
	for _, v := range values {
		n, ok := numberValue(v)
		if !ok {
			continue
		}
		total += n
		if !isIntegral(v) {
			integral = false
		}
	}
	if integral && math.Abs(total) < 1<<53 {
		return int64(total)
	}
	return total
}
