package content

import (
	"encoding/json"
	"reflect"
)

// StructurallyEqual compares two section values by their JSON shape.
// A nil list and an empty list are equal; list order matters.
func StructurallyEqual(a, b any) bool {
	na, err := canonical(a)
	if err != nil {
		return false
	}
	nb, err := canonical(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func canonical(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return normalize(out), nil
}

// normalize folds null into the empty list and drops empty members so
// omitempty and explicit zero values compare equal.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n := normalize(e)
			if isEmpty(n) {
				continue
			}
			out[k] = n
		}
		return out
	default:
		return t
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}
