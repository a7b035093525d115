// Package condition implements the Condition Evaluator (spec.md §4.4): a
// fixed, five-operator comparison grammar gating whether a step (or a single
// iteration of a step) runs, grounded on the original implementation's
// evaluate_condition.
//
// Equality uses the original's plain Python "==": no numeric-string
// coercion, no bool/string normalization ("5" != 5, True != "True"). A
// CSV-sourced @field is always a string, so an explicit numeric/boolean
// literal in the sequence document will never compare equal to it.
package condition

import (
	"strconv"
	"strings"

	"catoseq/internal/logging"
	"catoseq/internal/model"
)

// Evaluate reports whether cond passes against ctx. A nil or field-less
// condition always passes. An unresolvable field reference fails the
// condition (the gate is closed); an unrecognized operator fails open (the
// gate stays open), matching the original implementation exactly.
func Evaluate(cond *model.ConditionSpec, ctx model.Context) bool {
	if cond.Empty() {
		return true
	}

	fieldValue, ok := resolveOperand(cond.Field, ctx)
	if !ok {
		return false
	}

	compareValue := cond.Value
	if s, isString := compareValue.(string); isString && strings.HasPrefix(s, "@") {
		if resolved, ok := resolveOperand(s, ctx); ok {
			compareValue = resolved
		}
		// If the "@col" reference can't be resolved, the original keeps the
		// literal string "@col" itself as the comparison value.
	}

	operator := cond.Operator
	if operator == "" {
		operator = "=="
	}

	switch operator {
	case "==":
		return valuesEqual(fieldValue, compareValue)
	case "!=":
		return !valuesEqual(fieldValue, compareValue)
	case "in":
		list, ok := asList(compareValue)
		if !ok {
			return false
		}
		return listContains(list, fieldValue)
	case "not_in":
		list, ok := asList(compareValue)
		if !ok {
			return false
		}
		return !listContains(list, fieldValue)
	case "contains":
		return strings.Contains(toDisplayString(fieldValue), toDisplayString(compareValue))
	default:
		logging.Logf(logging.Warning, "condition: unrecognized operator %q, treating condition as satisfied", operator)
		return true
	}
}

// resolveOperand evaluates a condition field in the "@col" / "${name}" /
// literal forms described in spec.md §4.4. It returns ok=false when an
// explicit reference can't be resolved (a bare literal is always ok).
func resolveOperand(field string, ctx model.Context) (model.Value, bool) {
	switch {
	case strings.HasPrefix(field, "@"):
		column := field[1:]
		row, hasRow := ctx.IterationRow()
		if !hasRow {
			return nil, false
		}
		value, present := row[column]
		if !present {
			return nil, false
		}
		return value, true
	case strings.HasPrefix(field, "${") && strings.HasSuffix(field, "}") && len(field) >= 3:
		name := field[2 : len(field)-1]
		value, present := ctx[name]
		if !present || value == nil {
			return nil, false
		}
		return value, true
	default:
		return field, true
	}
}

func asList(v model.Value) ([]model.Value, bool) {
	list, ok := v.([]model.Value)
	return list, ok
}

func listContains(list []model.Value, target model.Value) bool {
	for _, item := range list {
		if valuesEqual(item, target) {
			return true
		}
	}
	return false
}

// valuesEqual compares two dynamic values with the original's strict "=="
// semantics: no numeric-string coercion, no bool/string normalization. A
// slice on either side (a malformed "==" against a list-valued compare
// value) is never equal to anything rather than panicking on an
// uncomparable dynamic type.
func valuesEqual(a, b model.Value) bool {
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func isComparable(v model.Value) bool {
	_, isList := v.([]model.Value)
	return !isList
}

func toDisplayString(v model.Value) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
