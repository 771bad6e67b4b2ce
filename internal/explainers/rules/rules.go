// Package rules evaluates user-defined CEL conformance rules against every
// indexed declaration.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/cel-go/cel"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/config"
	"github.com/dejo1307/swiftdecl/internal/index"
	"github.com/dejo1307/swiftdecl/internal/model"
	"github.com/dejo1307/swiftdecl/internal/typedesc"
)

// ErrNotBoolean is returned when a rule expression does not yield a bool.
var ErrNotBoolean = errors.Base("rule expression must evaluate to bool")

type compiled struct {
	rule  config.Rule
	kinds []model.Kind
	prg   cel.Program
}

// RuleExplainer reports declarations for which a rule expression is true.
type RuleExplainer struct {
	rules []compiled
}

// Env returns the CEL environment rules are compiled in. Each declaration
// is exposed through these variables.
func Env() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("qualified_name", cel.StringType),
		cel.Variable("parent", cel.StringType),
		cel.Variable("depth", cel.IntType),
		cel.Variable("file", cel.StringType),
		cel.Variable("modifiers", cel.ListType(cel.StringType)),
		cel.Variable("attributes", cel.ListType(cel.StringType)),
		cel.Variable("inherited", cel.ListType(cel.StringType)),
		cel.Variable("generics", cel.ListType(cel.StringType)),
		cel.Variable("property_count", cel.IntType),
		cel.Variable("function_count", cel.IntType),
	)
}

// New compiles rules. A rule that fails to compile or type-check aborts
// construction.
func New(rules []config.Rule) (*RuleExplainer, error) {
	env, err := Env()
	if err != nil {
		return nil, errors.Errorf("creating CEL environment: %w", err)
	}
	e := &RuleExplainer{}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, errors.Errorf("compiling rule %q: %w", r.Name, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, errors.WithDetails(ErrNotBoolean, "rule", r.Name, "type", ast.OutputType().String())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, errors.Errorf("building rule %q: %w", r.Name, err)
		}
		c := compiled{rule: r, prg: prg}
		for _, k := range r.Kinds {
			c.kinds = append(c.kinds, model.Kind(k))
		}
		e.rules = append(e.rules, c)
	}
	return e, nil
}

func (e *RuleExplainer) Name() string {
	return "rules"
}

// Explain evaluates every rule against every matching declaration.
// Evaluation errors are logged and the declaration is skipped.
func (e *RuleExplainer) Explain(ctx context.Context, idx *index.Index) ([]model.Insight, error) {
	logger := slogctx.FromCtx(ctx).With("component", "rules")

	entries := idx.Declarations()
	var insights []model.Insight
	for _, r := range e.rules {
		for _, entry := range entries {
			if len(r.kinds) > 0 && !slices.Contains(r.kinds, entry.Declaration.Kind) {
				continue
			}
			out, _, err := r.prg.Eval(Activation(entry))
			if err != nil {
				logger.Warn("rule evaluation failed",
					"rule", r.rule.Name,
					"declaration", entry.QualifiedName,
					slog.Any("error", err),
				)
				continue
			}
			if matched, ok := out.Value().(bool); !ok || !matched {
				continue
			}
			insights = append(insights, insight(r.rule, entry))
		}
	}
	return insights, nil
}

// Activation returns the variable bindings for one declaration.
func Activation(entry index.Entry) map[string]any {
	d := entry.Declaration
	inherited := make([]string, 0, len(d.InheritedTypes))
	for _, t := range d.InheritedTypes {
		inherited = append(inherited, typedesc.AsSource(t))
	}
	generics := make([]string, 0, len(d.GenericParameters))
	for _, g := range d.GenericParameters {
		generics = append(generics, g.Name)
	}
	attributes := d.Attributes
	if attributes == nil {
		attributes = []string{}
	}
	return map[string]any{
		"name":           d.Name,
		"kind":           string(d.Kind),
		"qualified_name": entry.QualifiedName,
		"parent":         d.ParentPath.String(),
		"depth":          d.Depth(),
		"file":           entry.File,
		"modifiers":      d.Modifiers.Strings(),
		"attributes":     attributes,
		"inherited":      inherited,
		"generics":       generics,
		"property_count": len(d.Properties),
		"function_count": len(d.Functions),
	}
}

func insight(r config.Rule, entry index.Entry) model.Insight {
	msg := r.Message
	if msg == "" {
		msg = fmt.Sprintf("matches %s", r.Expr)
	}
	return model.Insight{
		Title:       fmt.Sprintf("Rule %s: %s", r.Name, entry.QualifiedName),
		Description: fmt.Sprintf("%s %q %s.", entry.Declaration.Kind, entry.QualifiedName, msg),
		Confidence:  1.0,
		Evidence: []model.Evidence{{
			File:        entry.File,
			Line:        entry.Declaration.Line,
			Declaration: entry.QualifiedName,
			Detail:      r.Expr,
		}},
	}
}
