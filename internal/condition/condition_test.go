package condition

import (
	"testing"

	"catoseq/internal/model"
)

func TestEvaluate_NilConditionAlwaysPasses(t *testing.T) {
	if !Evaluate(nil, model.Context{}) {
		t.Fatal("expected nil condition to pass")
	}
	if !Evaluate(&model.ConditionSpec{}, model.Context{}) {
		t.Fatal("expected field-less condition to pass")
	}
}

func TestEvaluate_EqualsColumnRef(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"env": "prod"}}
	cond := &model.ConditionSpec{Field: "@env", Operator: "==", Value: "prod"}
	if !Evaluate(cond, ctx) {
		t.Fatal("expected @env == prod to pass")
	}
	cond.Value = "staging"
	if Evaluate(cond, ctx) {
		t.Fatal("expected @env == staging to fail")
	}
}

func TestEvaluate_MissingFieldFailsClosed(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{}}
	cond := &model.ConditionSpec{Field: "@missing", Operator: "==", Value: "x"}
	if Evaluate(cond, ctx) {
		t.Fatal("expected unresolvable @field condition to fail closed")
	}
}

func TestEvaluate_ContextRefNotEquals(t *testing.T) {
	ctx := model.Context{"status": "active"}
	cond := &model.ConditionSpec{Field: "${status}", Operator: "!=", Value: "inactive"}
	if !Evaluate(cond, ctx) {
		t.Fatal("expected ${status} != inactive to pass")
	}
}

func TestEvaluate_InOperator(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"region": "eu-west"}}
	cond := &model.ConditionSpec{
		Field:    "@region",
		Operator: "in",
		Value:    []model.Value{"us-east", "eu-west"},
	}
	if !Evaluate(cond, ctx) {
		t.Fatal("expected eu-west to be in the list")
	}
}

func TestEvaluate_InOperatorNonListCompareValueFails(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"region": "eu-west"}}
	cond := &model.ConditionSpec{Field: "@region", Operator: "in", Value: "eu-west"}
	if Evaluate(cond, ctx) {
		t.Fatal("expected 'in' against a non-list compare value to fail")
	}
}

func TestEvaluate_NotInOperator(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"region": "ap-south"}}
	cond := &model.ConditionSpec{
		Field:    "@region",
		Operator: "not_in",
		Value:    []model.Value{"us-east", "eu-west"},
	}
	if !Evaluate(cond, ctx) {
		t.Fatal("expected ap-south not_in [us-east, eu-west] to pass")
	}
}

func TestEvaluate_NotInOperatorNonListCompareValueFails(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"region": "ap-south"}}
	cond := &model.ConditionSpec{Field: "@region", Operator: "not_in", Value: "ap-south"}
	if Evaluate(cond, ctx) {
		t.Fatal("expected 'not_in' against a non-list compare value to fail, not fail open")
	}
}

func TestEvaluate_ContainsIsRightInLeft(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"message": "provisioning complete"}}
	cond := &model.ConditionSpec{Field: "@message", Operator: "contains", Value: "complete"}
	if !Evaluate(cond, ctx) {
		t.Fatal("expected 'complete' to be found in the field's string form")
	}

	reversed := &model.ConditionSpec{Field: "@message", Operator: "contains", Value: "provisioning complete and then some"}
	if Evaluate(reversed, ctx) {
		t.Fatal("contains must not match when the value is longer than the field")
	}
}

func TestEvaluate_UnknownOperatorFailsOpen(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"x": "y"}}
	cond := &model.ConditionSpec{Field: "@x", Operator: "matches_regex", Value: "z"}
	if !Evaluate(cond, ctx) {
		t.Fatal("expected unknown operator to fail open (pass)")
	}
}

func TestEvaluate_StrictEqualityNoNumericCoercion(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"count": "3"}}
	cond := &model.ConditionSpec{Field: "@count", Operator: "==", Value: float64(3)}
	if Evaluate(cond, ctx) {
		t.Fatal("expected CSV string \"3\" to NOT equal numeric literal 3, matching the original's plain ==")
	}
	cond.Value = "3"
	if !Evaluate(cond, ctx) {
		t.Fatal("expected CSV string \"3\" to equal string literal \"3\"")
	}
}

func TestEvaluate_StrictEqualityNoBoolCoercion(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"flag": "True"}}
	cond := &model.ConditionSpec{Field: "@flag", Operator: "==", Value: true}
	if Evaluate(cond, ctx) {
		t.Fatal("expected CSV string \"True\" to NOT equal boolean literal true, matching the original's plain ==")
	}
}

func TestEvaluate_EqualityAgainstListCompareValueNeverPanics(t *testing.T) {
	ctx := model.Context{model.IterationRowKey: model.Record{"region": "eu-west"}}
	cond := &model.ConditionSpec{Field: "@region", Operator: "==", Value: []model.Value{"eu-west"}}
	if Evaluate(cond, ctx) {
		t.Fatal("expected '==' against a list compare value to fail, not match")
	}
}
