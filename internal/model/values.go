package model

// Values holds form input keyed by field key. Value types depend on the
// field: string, float64, bool, []string/[]any or an ISO date string.
type Values map[string]any

// Clone returns a deep copy so callers can mutate without aliasing.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = deepCopy(value)
	}
	return out
}

// Equal reports whether the stored value for key deep-equals value.
func (v Values) Equal(key string, value any) bool {
	current, ok := v[key]
	if !ok {
		return false
	}
	return deepEqual(current, value)
}

// WithDefaults overlays each field's default onto saved values for keys the
// saved data does not carry. Saved keys always win, including explicit nils.
func WithDefaults(step Step, saved Values) Values {
	out := saved.Clone()
	for _, field := range step.Fields {
		if _, ok := out[field.Key]; ok {
			continue
		}
		if field.DefaultValue == nil {
			continue
		}
		out[field.Key] = deepCopy(field.DefaultValue)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case Values:
		return typed.Clone()
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

func deepEqual(a, b any) bool {
	switch left := a.(type) {
	case []string:
		right, ok := b.([]string)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if left[i] != right[i] {
				return false
			}
		}
		return true
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !deepEqual(left[i], right[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		right, ok := b.(map[string]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for key, value := range left {
			other, ok := right[key]
			if !ok || !deepEqual(value, other) {
				return false
			}
		}
		return true
	default:
		return isComparable(a) && isComparable(b) && a == b
	}
}

func isComparable(value any) bool {
	switch value.(type) {
	case nil, string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
