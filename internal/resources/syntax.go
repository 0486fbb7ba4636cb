package resources

import (
	"github.com/expr-lang/expr"
	"github.com/itchyny/gojq"

	"github.com/alexisbeaulieu97/blueprint/internal/validation"
	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

// ExpressionChecker compiles the condition of conditional and loop nodes. The
// expression must yield a boolean; variables are resolved at run time, so
// unknown names are allowed.
func ExpressionChecker() validation.ResourceChecker {
	return func(node workflow.Node) []string {
		if node.Type != workflow.TypeConditional && node.Type != workflow.TypeLoop {
			return nil
		}
		condition, ok := node.StringConfig(workflow.ConfigCondition)
		if !ok || condition == "" {
			return nil
		}

		if _, err := expr.Compile(condition, expr.AllowUndefinedVariables(), expr.AsBool()); err != nil {
			return problem(node, "condition", err)
		}
		return nil
	}
}

// QueryChecker parses and compiles the jq query of datasource nodes.
func QueryChecker() validation.ResourceChecker {
	return func(node workflow.Node) []string {
		if node.Type != workflow.TypeDatasource {
			return nil
		}
		query, ok := node.StringConfig(workflow.ConfigQuery)
		if !ok || query == "" {
			return nil
		}

		parsed, err := gojq.Parse(query)
		if err != nil {
			return problem(node, "query", err)
		}
		if _, err := gojq.Compile(parsed); err != nil {
			return problem(node, "query", err)
		}
		return nil
	}
}
