package rules

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Evaluator compiles and evaluates operator-defined CEL filter
// expressions over a change event. The event is exposed as a single
// `event` map mirroring its JSON shape, e.g.
// `event.namespace == 0 && !event.bot`.
type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

// ValidateFilterExpression compiles an expression and checks it yields
// a boolean. Used at startup so bad rules fail deployment, not events.
func (e *Evaluator) ValidateFilterExpression(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	return nil
}

// EvaluateFilter evaluates a boolean expression against the event map.
func (e *Evaluator) EvaluateFilter(ctx context.Context, expression string, eventVars map[string]interface{}) (bool, error) {
	program, err := e.CompileExpression(expression)
	if err != nil {
		return false, err
	}

	result, _, err := program.ContextEval(ctx, map[string]interface{}{
		"event": eventVars,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

func (e *Evaluator) CompileExpression(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return program, nil
}
