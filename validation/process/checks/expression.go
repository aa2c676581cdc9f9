package checks

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/georgepadayatti/adesverdict/validation/policy"
	"github.com/georgepadayatti/adesverdict/validation/process"
)

// ExpressionEngine compiles and evaluates CEL constraints over signature
// facts. The facts are exposed as the map variable "signature".
type ExpressionEngine struct {
	env      *cel.Env
	prgCache map[string]cel.Program
	mu       sync.RWMutex
}

// NewExpressionEngine creates an engine with an empty program cache.
func NewExpressionEngine() (*ExpressionEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("signature", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &ExpressionEngine{
		env:      env,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// Compile compiles expression and caches the program.
func (e *ExpressionEngine) Compile(expression string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.prgCache[expression]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.prgCache[expression]; hit {
		return prg, nil
	}
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("CEL expression must return bool, got %s", ast.OutputType())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	e.prgCache[expression] = prg
	return prg, nil
}

// Evaluate runs expression against facts.
func (e *ExpressionEngine) Evaluate(expression string, facts map[string]any) (bool, error) {
	prg, err := e.Compile(expression)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]any{"signature": facts})
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("result not boolean")
	}
	return result, nil
}

// ExpressionCheck evaluates a custom policy constraint. Evaluation errors
// make the check fail.
type ExpressionCheck struct {
	process.BaseCheck
	engine     *ExpressionEngine
	constraint *policy.ExpressionConstraint
	facts      map[string]any
	logger     *slog.Logger
}

// NewExpressionCheck creates the check of constraint for the signature
// identified by sigID.
func NewExpressionCheck(engine *ExpressionEngine, constraint *policy.ExpressionConstraint, sigID string, facts map[string]any, logger *slog.Logger) *ExpressionCheck {
	if logger == nil {
		logger = slog.Default()
	}
	indication := process.IndicationIndeterminate
	if i, ok := process.ParseIndication(constraint.Indication); ok && i != process.IndicationPassed {
		indication = i
	}
	sub := process.SubIndication(constraint.SubIndication)
	if sub == "" {
		sub = process.SubIndicationSigConstraintsFailure
	}
	return &ExpressionCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sigID,
			Tag:           process.TagCustomConstraint,
			Indication:    indication,
			SubIndication: sub,
		},
		engine:     engine,
		constraint: constraint,
		facts:      facts,
		logger:     logger,
	}
}

// Process implements process.Check.
func (c *ExpressionCheck) Process() bool {
	ok, err := c.engine.Evaluate(c.constraint.Expression, c.facts)
	if err != nil {
		c.logger.Warn("custom constraint could not be evaluated",
			slog.String("constraint", c.constraint.ID),
			slog.String("signature", c.TokenID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return ok
}

// MessageArgs implements process.MessageArgsProvider.
func (c *ExpressionCheck) MessageArgs() []any {
	if c.constraint.Description != "" {
		return []any{c.constraint.Description}
	}
	return []any{c.constraint.ID}
}
