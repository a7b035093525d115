// Package resolve implements the Template Resolver (spec.md §4.3): a pure,
// total tree-walk that substitutes the engine's three reference forms in
// string leaves of a parameter tree, given the current execution context.
//
// The resolver never errors. An unresolvable reference is simply omitted
// from mapping output (or passed through as null inside a sequence, per
// §4.3), matching the original implementation's resolve_variables /
// _resolve_single_value.
package resolve

import (
	"strconv"
	"strings"

	"catoseq/internal/model"
)

// Resolve walks params against ctx and returns the resolved tree. It is
// idempotent: Resolve(Resolve(params, ctx), ctx) == Resolve(params, ctx),
// since every substituted value is either a literal or a value already
// present in ctx, neither of which any reference form in this grammar can
// match.
func Resolve(params model.Value, ctx model.Context) model.Value {
	switch v := params.(type) {
	case map[string]model.Value:
		return resolveMap(v, ctx)
	case model.Record:
		return resolveMap(v, ctx)
	case []model.Value:
		return resolveListKeepingPositions(v, ctx)
	case nil:
		return nil
	case string:
		resolved, miss := resolveString(v, ctx)
		if miss {
			return nil
		}
		return resolved
	default:
		return v
	}
}

// resolveMap recurses key-by-key. A key whose value resolves to "missing"
// (see resolveLeafForMapping) is omitted entirely from the output.
func resolveMap(m map[string]model.Value, ctx model.Context) map[string]model.Value {
	out := make(map[string]model.Value, len(m))
	for key, value := range m {
		resolved, omit := resolveLeafForMapping(value, ctx)
		if omit {
			continue
		}
		out[key] = resolved
	}
	return out
}

// resolveListKeepingPositions recurses element-by-element. Omission never
// applies to sequence positions: an element that would be omitted from a
// mapping is instead passed through as null, per spec.md §4.3.
func resolveListKeepingPositions(list []model.Value, ctx model.Context) []model.Value {
	out := make([]model.Value, len(list))
	for i, item := range list {
		resolved, omit := resolveLeafForMapping(item, ctx)
		if omit {
			out[i] = nil
		} else {
			out[i] = resolved
		}
	}
	return out
}

// resolveLeafForMapping resolves a single tree node and reports whether it
// should be omitted from its enclosing mapping.
func resolveLeafForMapping(value model.Value, ctx model.Context) (resolved model.Value, omit bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		return resolveString(v, ctx)
	case map[string]model.Value:
		return resolveMap(v, ctx), false
	case model.Record:
		return resolveMap(v, ctx), false
	case []model.Value:
		return resolveListKeepingPositions(v, ctx), false
	default:
		// Non-string, non-null leaves (numbers, bools) pass through unchanged.
		return v, false
	}
}

// resolveString applies the three reference forms to a single string leaf.
func resolveString(s string, ctx model.Context) (resolved model.Value, miss bool) {
	switch {
	case strings.HasPrefix(s, "@"):
		return resolveColumnRef(s[1:], ctx)
	case strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") && len(s) >= 3:
		return resolveContextRef(s[2:len(s)-1], ctx)
	default:
		if strings.TrimSpace(s) == "" {
			return nil, true
		}
		return s, false
	}
}

// resolveColumnRef implements the "@col" form: look up col in
// context.iteration_row, omitting if absent or blank after trimming.
func resolveColumnRef(column string, ctx model.Context) (model.Value, bool) {
	row, ok := ctx.IterationRow()
	if !ok {
		return nil, true
	}
	value, ok := row[column]
	if !ok {
		return nil, true
	}
	if value == nil || strings.TrimSpace(valueToString(value)) == "" {
		return nil, true
	}
	return value, false
}

// resolveContextRef implements both "${name}" and "${a.b.c}": the first
// path segment is looked up directly in ctx, then each subsequent segment
// descends into a mapping by key or a sequence by decimal index.
func resolveContextRef(path string, ctx model.Context) (model.Value, bool) {
	segments := strings.Split(path, ".")
	current, ok := ctx[segments[0]]
	if !ok {
		return nil, true
	}
	for _, segment := range segments[1:] {
		current, ok = descend(current, segment)
		if !ok {
			return nil, true
		}
	}
	if current == nil {
		return nil, true
	}
	return current, false
}

// descend indexes into a mapping by key, or a sequence by decimal integer.
func descend(current model.Value, segment string) (model.Value, bool) {
	switch c := current.(type) {
	case map[string]model.Value:
		v, ok := c[segment]
		return v, ok
	case model.Record:
		v, ok := c[segment]
		return v, ok
	case []model.Value:
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

func valueToString(v model.Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	return strings_Sprint(v)
}

// strings_Sprint avoids pulling in fmt solely for the rare non-string
// "@col" value (CSV rows are always strings, but a dataset loaded from
// JSON/YAML/XLSX may carry a number or bool in a column).
func strings_Sprint(v model.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
