// Package orchestrator implements the Orchestrator (spec.md §4.7): it owns
// the execution context, drives master iteration, per-step iteration,
// conditional gating, result storage, and inter-call pacing, grounded on
// the original implementation's ProvisioningOrchestrator.
package orchestrator

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mohae/deepcopy"

	"catoseq/internal/apperr"
	"catoseq/internal/condition"
	"catoseq/internal/dataset"
	"catoseq/internal/logging"
	"catoseq/internal/model"
	"catoseq/internal/resolve"
	"catoseq/internal/transform"
)

// Executor is the subset of the GraphQL Transport Adapter the orchestrator
// depends on, letting tests substitute a fake transport.
type Executor interface {
	Execute(query string, variables map[string]model.Value) (model.Value, error)
}

// Result is one step outcome record, matching spec.md §4.7.1's shape.
type Result struct {
	StepName  string      `json:"step_name"`
	Operation string      `json:"operation"`
	Status    string      `json:"status"`
	Result    model.Value `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	Params    model.Value `json:"params"`
	Timestamp string      `json:"timestamp"`
}

// Orchestrator drives a Plan's execution against a transport Executor.
type Orchestrator struct {
	Client    Executor
	AccountID string
	// Datasets holds named datasets already loaded (by master/per-step
	// iteration), keyed by the name used in iterate_over/master_iterate_over.
	Datasets map[string]model.Dataset
	Sleep    func(time.Duration)
	Now      func() time.Time
}

// New builds an Orchestrator with real time/sleep behavior.
func New(client Executor, accountID string) *Orchestrator {
	return &Orchestrator{
		Client:    client,
		AccountID: accountID,
		Datasets:  map[string]model.Dataset{},
		Sleep:     time.Sleep,
		Now:       time.Now,
	}
}

// Run executes plan end-to-end and returns every step outcome record in
// execution order. It returns an error only for a fatal engine condition
// (spec.md §4.7's failure policy); per-step failures are captured in the
// returned results instead.
func (o *Orchestrator) Run(plan *model.Plan) ([]Result, error) {
	if plan.MasterIterateOver == "" {
		return o.executeSteps(plan.Steps, model.Context{})
	}

	if err := o.ensureDatasetLoaded(plan.MasterIterateOver, plan.MasterDataSource, plan.MasterDataSourceType); err != nil {
		return nil, err
	}
	masterDataset := o.Datasets[plan.MasterIterateOver]

	globalContext := model.Context{}
	var results []Result
	for idx, row := range masterDataset {
		globalContext = globalContext.Clone()
		globalContext[model.IterationRowKey] = row
		globalContext[model.IterationIndexKey] = idx + 1

		batchResults, err := o.executeSteps(plan.Steps, globalContext)
		if err != nil {
			return nil, err
		}
		results = append(results, batchResults...)
	}
	return results, nil
}

// executeSteps drives one batch's step list against ctx (the current
// global context; for a non-iterating step this map is mutated directly).
func (o *Orchestrator) executeSteps(steps []model.Step, ctx model.Context) ([]Result, error) {
	var results []Result
	for _, step := range steps {
		if step.Condition != nil && step.IterateOver == "" {
			if !condition.Evaluate(step.Condition, ctx) {
				continue
			}
		}

		if step.IterateOver != "" {
			stepResults, err := o.executeIteratingStep(step, ctx)
			if err != nil {
				return nil, err
			}
			results = append(results, stepResults...)
			continue
		}

		result := o.executeSingleStep(step, ctx)
		o.storeIfSuccessful(step, ctx, result)
		results = append(results, result)
		if result.Status == "success" && step.WaitSeconds > 0 {
			o.Sleep(secondsToDuration(step.WaitSeconds))
		}
	}
	return results, nil
}

// executeIteratingStep resolves the step's dataset (loading a per-step
// data_source_file first if given), applies join/filter, and runs the
// step once per surviving row with a per-row context built on top of the
// batch's global context.
func (o *Orchestrator) executeIteratingStep(step model.Step, globalContext model.Context) ([]Result, error) {
	if step.DataSourceFile != "" && dataSourceExists(step.DataSourceFile) {
		logging.StepLogf(logging.Debug, step.StepName, "loading data source '%s' as '%s'", step.DataSourceFile, step.IterateOver)
		if err := o.loadDatasetNamed(step.IterateOver, step.DataSourceFile, step.DataSourceType); err != nil {
			return nil, err
		}
	}

	rows, ok := o.Datasets[step.IterateOver]
	if !ok {
		return nil, apperr.New(apperr.SpecInvalid, fmt.Sprintf("data source '%s' not found for step '%s'", step.IterateOver, step.StepName))
	}
	rows = transform.Join(rows, step.JoinOn, globalContext)
	rows = transform.Filter(rows, step.FilterBy, globalContext)

	var results []Result
	for idx, row := range rows {
		iterationContext := globalContext.Clone()
		iterationContext[model.IterationRowKey] = row
		iterationContext[model.IterationIndexKey] = idx + 1

		if step.Condition != nil && !condition.Evaluate(step.Condition, iterationContext) {
			continue
		}

		result := o.executeSingleStep(step, iterationContext)
		if result.Status == "success" {
			o.storeIfSuccessful(step, globalContext, result)
			results = append(results, result)
			if idx < len(rows)-1 && step.WaitSeconds > 0 {
				o.Sleep(secondsToDuration(step.WaitSeconds))
			}
		} else {
			results = append(results, result)
		}
	}
	return results, nil
}

// executeSingleStep implements spec.md §4.7.1: resolve params, inject
// accountId, call the transport, and shape the outcome record. It never
// mutates ctx; storing the result is the caller's responsibility.
func (o *Orchestrator) executeSingleStep(step model.Step, ctx model.Context) Result {
	resolved := resolve.Resolve(step.Params, ctx)
	params, ok := resolved.(map[string]model.Value)
	if !ok {
		params = map[string]model.Value{}
	}
	params["accountId"] = o.AccountID

	timestamp := o.Now().Format(time.RFC3339)

	if step.GraphQLQuery == "" {
		return Result{
			StepName:  step.StepName,
			Operation: step.Operation,
			Status:    "error",
			Error:     fmt.Sprintf("no graphql_query configured for step '%s'", step.StepName),
			Params:    params,
			Timestamp: timestamp,
		}
	}

	body, err := o.Client.Execute(step.GraphQLQuery, params)
	if err != nil {
		return Result{
			StepName:  step.StepName,
			Operation: step.Operation,
			Status:    "error",
			Error:     err.Error(),
			Params:    params,
			Timestamp: timestamp,
		}
	}

	return Result{
		StepName:  step.StepName,
		Operation: step.Operation,
		Status:    "success",
		Result:    body,
		Params:    params,
		Timestamp: timestamp,
	}
}

// storeIfSuccessful binds a successful step's response body into the
// global context under store_result_as, deep-copying it so a later
// mutation of a resolved params tree (or another binding sharing a
// sub-structure) can never alias back into it.
func (o *Orchestrator) storeIfSuccessful(step model.Step, globalContext model.Context, result Result) {
	if result.Status != "success" || step.StoreResultAs == "" {
		return
	}
	globalContext[step.StoreResultAs] = deepcopy.Copy(result.Result)
}

// ensureDatasetLoaded implements spec.md §4.7 step 1 and §9 Open Question
// (a): load masterFile under name if it exists and isn't already loaded,
// then fail fatally if the name still isn't resolvable.
func (o *Orchestrator) ensureDatasetLoaded(name, masterFile, masterFileType string) error {
	if masterFile != "" && dataSourceExists(masterFile) {
		logging.Logf(logging.Debug, "loading master data source '%s' as '%s'", masterFile, name)
		if err := o.loadDatasetNamed(name, masterFile, masterFileType); err != nil {
			return err
		}
	}
	if _, ok := o.Datasets[name]; !ok {
		return apperr.New(apperr.SpecInvalid, fmt.Sprintf("master dataset '%s' not found", name))
	}
	return nil
}

// dataSourceExists reports whether a data source descriptor is loadable.
// A postgres://... descriptor (internal/dataset.ForPath's query-source
// convention) has no filesystem existence to check; only a plain file path
// needs the stat guard that used to gate loadDatasetNamed unconditionally.
func dataSourceExists(path string) bool {
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func (o *Orchestrator) loadDatasetNamed(name, path, explicitType string) error {
	loader, err := dataset.ForPathWithType(path, explicitType)
	if err != nil {
		return apperr.Wrap(apperr.SpecInvalid, fmt.Sprintf("cannot load dataset '%s'", name), err)
	}
	rows, err := loader.Load(path)
	if err != nil {
		return err
	}
	o.Datasets[name] = rows
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
