// Package transform implements the Dataset Transformer (spec.md §4.5):
// join and filter operations applied to an iterating step's dataset, using
// the outer iteration's row as their source of comparison values.
package transform

import (
	"strings"

	"catoseq/internal/model"
)

// Join keeps only the records whose LocalKey column equals the outer
// context's iteration_row[ContextKey]. If either key is empty, or the
// context carries no iteration_row, or the looked-up value is empty, the
// dataset is returned unchanged.
func Join(dataset model.Dataset, join *model.JoinSpec, ctx model.Context) model.Dataset {
	if join == nil || join.Empty() {
		return dataset
	}
	row, ok := ctx.IterationRow()
	if !ok {
		return dataset
	}
	contextValue, ok := row[join.ContextKey]
	if !ok || isBlank(contextValue) {
		return dataset
	}

	out := make(model.Dataset, 0, len(dataset))
	for _, record := range dataset {
		if valueEquals(record[join.LocalKey], contextValue) {
			out = append(out, record)
		}
	}
	return out
}

// Filter narrows dataset by each (column, expression) clause in filterBy,
// applied in an arbitrary but individually commutative order (each clause
// is a pure equality narrowing). A "${name}" expression resolves against
// the outer iteration_row first, then the context; an unresolvable or
// blank reference makes that clause a no-op. Any other expression value is
// used as a literal to compare against.
func Filter(dataset model.Dataset, filterBy map[string]model.Value, ctx model.Context) model.Dataset {
	filtered := dataset
	for column, expr := range filterBy {
		target, skip := resolveFilterValue(expr, ctx)
		if skip {
			continue
		}
		next := make(model.Dataset, 0, len(filtered))
		for _, record := range filtered {
			if valueEquals(record[column], target) {
				next = append(next, record)
			}
		}
		filtered = next
	}
	return filtered
}

// resolveFilterValue resolves a single filter clause's expression, and
// reports whether the clause should be skipped entirely (left inactive).
func resolveFilterValue(expr model.Value, ctx model.Context) (target model.Value, skip bool) {
	s, isString := expr.(string)
	if !isString || !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") || len(s) < 3 {
		return expr, false
	}

	name := s[2 : len(s)-1]
	var value model.Value
	if row, ok := ctx.IterationRow(); ok {
		if v, present := row[name]; present {
			value = v
		}
	}
	if isBlank(value) {
		value = ctx[name]
	}
	if isBlank(value) {
		return nil, true
	}
	return value, false
}

func isBlank(v model.Value) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// valueEquals compares a dataset cell (always a string for CSV-sourced
// records, but potentially any scalar for JSON/YAML/XLSX sources) against a
// comparison value with plain equality: a string and a number never compare
// equal, even when they spell the same value.
func valueEquals(a, b model.Value) bool {
	if a == b {
		return true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return false
}
