// Package confval converts raw configuration values into the typed results
// promised by driven.ConfigStore. TOML decodes integers as int64 and arrays
// as []any, while values set in process keep their Go types; both shapes
// are accepted.
package confval

// Values supplies the typed getters of driven.ConfigStore on top of a raw
// lookup. Stores embed it and point Lookup at their own Get.
type Values struct {
	Lookup func(key string) (any, bool)
}

// GetString returns "" for missing or non-string values.
func (v Values) GetString(key string) string {
	s, _ := v.raw(key).(string)
	return s
}

// GetInt truncates floats. Missing or non-numeric values are 0.
func (v Values) GetInt(key string) int {
	switch n := v.raw(key).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// GetFloat widens integers. Missing or non-numeric values are 0.
func (v Values) GetFloat(key string) float64 {
	switch n := v.raw(key).(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// GetBool returns false for missing or non-bool values.
func (v Values) GetBool(key string) bool {
	b, _ := v.raw(key).(bool)
	return b
}

// GetStringSlice drops non-string elements. The result never aliases the
// stored value.
func (v Values) GetStringSlice(key string) []string {
	switch list := v.raw(key).(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (v Values) raw(key string) any {
	if v.Lookup == nil {
		return nil
	}
	val, _ := v.Lookup(key)
	return val
}
