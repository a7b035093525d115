// Package model defines the data shapes shared by every component of the
// sequence engine: records loaded from datasets, the step plan parsed from
// a sequence document, and the mutable execution context threaded through a
// run.
//
// Go has no tagged-union type, so a Value is represented the way the rest
// of this codebase's corpus represents dynamic JSON/YAML-shaped data: a
// plain interface{} that is, by convention, one of nil, string, float64,
// bool, []Value, or map[string]Value. Every consumer is expected to
// type-switch rather than reach for reflection.
package model

// Value is a single cell of dynamic, JSON-like data: nil, string, float64,
// bool, []Value, or map[string]Value.
type Value = interface{}

// Record is one row of a dataset: a mapping from column name to value. As a
// Go map it does not keep the source's column order. A key that is absent from the map means "no value for this
// column in this record" (for CSV sources, an empty-string cell is dropped
// from the map entirely per the loader's contract).
type Record map[string]Value

// Clone returns a shallow copy of the record. Records are never mutated in
// place once created by a loader; callers that need to layer values on top
// of a record (e.g. building a "current record state") should clone first.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Dataset is a finite ordered sequence of records, in file/source order.
type Dataset []Record

// Context is the mutable name -> value mapping threaded through step
// execution. Two keys are reserved while an iteration is active.
type Context map[string]Value

const (
	// IterationRowKey holds the Record currently bound during iteration.
	IterationRowKey = "iteration_row"
	// IterationIndexKey holds the 1-based index of the current iteration.
	IterationIndexKey = "iteration_index"
)

// Clone returns a shallow copy of the context. Used to build a per-iteration
// context that layers iteration_row/iteration_index over the global context
// without mutating it.
func (c Context) Clone() Context {
	clone := make(Context, len(c)+2)
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// IterationRow returns the record bound to the context's iteration_row key,
// and whether one is currently bound.
func (c Context) IterationRow() (Record, bool) {
	v, ok := c[IterationRowKey]
	if !ok {
		return nil, false
	}
	row, ok := v.(Record)
	return row, ok
}

// IterationScope identifies whether a step's iteration is intended to be
// visible beyond its own batch. It is parsed and carried for forward
// compatibility; control flow does not currently branch on it (see
// spec.md §9 and DESIGN.md).
type IterationScope string

const (
	ScopeGlobal IterationScope = "global"
	ScopeLocal  IterationScope = "local"
)

// JoinSpec describes an equi-join between an iterating step's dataset and
// the current outer iteration row.
type JoinSpec struct {
	LocalKey   string
	ContextKey string
}

// Empty reports whether the join spec carries no usable keys.
func (j JoinSpec) Empty() bool {
	return j.LocalKey == "" || j.ContextKey == ""
}

// ConditionSpec describes a single field/operator/value comparison gate.
type ConditionSpec struct {
	Field    string
	Operator string
	Value    Value
}

// Empty reports whether the condition carries no field to test (in which
// case the Condition Evaluator treats it as always-true).
func (c *ConditionSpec) Empty() bool {
	return c == nil || c.Field == ""
}

// Step is an immutable descriptor for one unit of work in a sequence.
type Step struct {
	StepName       string
	Operation      string
	Params         Value // nested tree of strings/numbers/bools/null/maps/lists
	GraphQLQuery   string
	WaitSeconds    float64
	StoreResultAs  string
	IterateOver    string
	IterationScope IterationScope
	DataSourceFile string
	DataSourceType string
	JoinOn         *JoinSpec
	FilterBy       map[string]Value
	Condition      *ConditionSpec
	Enabled        bool
}

// Plan is the validated, immutable in-memory form of a sequence document.
type Plan struct {
	MasterDataSource     string
	MasterDataSourceType string
	MasterIterateOver    string
	Steps                []Step
}
