package homework

import (
	"encoding/json"
	"math"
)

const opCheck = "check_response"

// CheckResponse verifies the decoded payload v against the documented shape.
//
// v is what encoding/json produces for an arbitrary document (map[string]any,
// []any, json.Number or float64, ...). current_date is optional here: a
// missing or non-integer value only clears HasCurrentDate.
func CheckResponse(v any) (Response, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Response{}, newError(KindShape, opCheck, "response is not an object (got %s)", jsonType(v))
	}
	raw, ok := obj[keyHomeworks]
	if !ok {
		return Response{}, newError(KindMissingField, opCheck, "key %q is missing", keyHomeworks)
	}
	list, ok := raw.([]any)
	if !ok {
		return Response{}, newError(KindShape, opCheck, "%q is not a list (got %s)", keyHomeworks, jsonType(raw))
	}

	resp := Response{Homeworks: make([]Item, 0, len(list))}
	for _, it := range list {
		m, _ := it.(map[string]any)
		// Non-object entries become empty items; ParseStatus reports them
		// if they ever reach the front of the list.
		resp.Homeworks = append(resp.Homeworks, Item(m))
	}
	resp.CurrentDate, resp.HasCurrentDate = asInt64(obj[keyCurrentDate])
	return resp, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return "unknown"
	}
}
