// Package sequence implements the Sequence Document Loader (spec.md §4.2):
// parsing a JSON sequence document into a validated, immutable in-memory
// Plan, grounded on the original implementation's JSONSequenceLoader.
package sequence

import (
	"encoding/json"
	"fmt"
	"os"

	"catoseq/internal/apperr"
	"catoseq/internal/model"
)

const (
	defaultWaitSeconds    = 1.0
	defaultIterationScope = model.ScopeGlobal
)

// Load reads the JSON sequence document at path and returns the validated
// Plan. Steps with enabled=false are dropped; default step_<index> names
// are computed from the step's position before that filtering.
func Load(path string) (*model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.InputNotFound, fmt.Sprintf("sequence document '%s' not found", path), err)
		}
		return nil, err
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("sequence document '%s' could not be parsed", path), err)
	}
	if doc.Sequence == nil {
		return nil, apperr.New(apperr.SpecInvalid, fmt.Sprintf("sequence document '%s' is missing a 'sequence' array", path))
	}

	plan := &model.Plan{
		MasterDataSource:     doc.MasterDataSource,
		MasterDataSourceType: doc.MasterDataSourceType,
		MasterIterateOver:    doc.MasterIterateOver,
	}

	for idx, raw := range doc.Sequence {
		var rs rawStep
		if err := json.Unmarshal(raw, &rs); err != nil {
			return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("sequence document '%s' step %d could not be parsed", path, idx+1), err)
		}
		if rs.Enabled != nil && !*rs.Enabled {
			continue
		}
		plan.Steps = append(plan.Steps, rs.toStep(idx+1))
	}

	return plan, nil
}

// rawDocument mirrors the top-level sequence document shape (spec.md §6).
// Sequence is a slice of json.RawMessage so each step can be decoded
// independently and normalized field-by-field.
type rawDocument struct {
	MasterDataSource     string            `json:"master_data_source"`
	MasterDataSourceType string            `json:"master_data_source_type"`
	MasterIterateOver    string            `json:"master_iterate_over"`
	Sequence             []json.RawMessage `json:"sequence"`
}

// rawStep mirrors one element of "sequence" before defaulting. Pointer
// fields distinguish "absent" from "explicit zero value".
type rawStep struct {
	StepName       string                 `json:"step_name"`
	Operation      string                 `json:"operation"`
	Params         map[string]model.Value `json:"params"`
	GraphQLQuery   string                 `json:"graphql_query"`
	WaitSeconds    *float64               `json:"wait_seconds"`
	StoreResultAs  string                 `json:"store_result_as"`
	IterateOver    string                 `json:"iterate_over"`
	IterationScope string                 `json:"iteration_scope"`
	DataSourceFile string                 `json:"data_source_file"`
	DataSourceType string                 `json:"data_source_type"`
	JoinOn         *rawJoin               `json:"join_on"`
	FilterBy       map[string]model.Value `json:"filter_by"`
	Condition      *rawCondition          `json:"condition"`
	Enabled        *bool                  `json:"enabled"`
}

type rawJoin struct {
	LocalKey   string `json:"local_key"`
	ContextKey string `json:"context_key"`
}

type rawCondition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    model.Value `json:"value"`
}

// toStep applies spec.md §4.2's defaults: enabled=true (filtered above
// before reaching here), wait_seconds=1.0, iteration_scope=global, empty
// strings/objects for optional fields left unset.
func (rs rawStep) toStep(position int) model.Step {
	step := model.Step{
		StepName:       rs.StepName,
		Operation:      rs.Operation,
		GraphQLQuery:   rs.GraphQLQuery,
		WaitSeconds:    defaultWaitSeconds,
		StoreResultAs:  rs.StoreResultAs,
		IterateOver:    rs.IterateOver,
		IterationScope: defaultIterationScope,
		DataSourceFile: rs.DataSourceFile,
		DataSourceType: rs.DataSourceType,
		Enabled:        true,
	}
	if step.StepName == "" {
		step.StepName = fmt.Sprintf("step_%d", position)
	}
	if rs.WaitSeconds != nil {
		step.WaitSeconds = *rs.WaitSeconds
	}
	if rs.IterationScope != "" {
		step.IterationScope = model.IterationScope(rs.IterationScope)
	}
	if rs.Params != nil {
		step.Params = rs.Params
	} else {
		step.Params = map[string]model.Value{}
	}
	if rs.FilterBy != nil {
		step.FilterBy = rs.FilterBy
	}
	if rs.JoinOn != nil && (rs.JoinOn.LocalKey != "" || rs.JoinOn.ContextKey != "") {
		step.JoinOn = &model.JoinSpec{
			LocalKey:   rs.JoinOn.LocalKey,
			ContextKey: rs.JoinOn.ContextKey,
		}
	}
	if rs.Condition != nil && rs.Condition.Field != "" {
		step.Condition = &model.ConditionSpec{
			Field:    rs.Condition.Field,
			Operator: rs.Condition.Operator,
			Value:    rs.Condition.Value,
		}
	}
	return step
}
