package accesspattern

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"github.com/okvist/tablesmith/keypattern"
	"github.com/okvist/tablesmith/model"
)

// ExampleKeyCondition renders a pattern's key condition as a built DynamoDB
// expression, with the given values substituted into the key templates. This
// is a documentation artifact: the CLI embeds the resulting expression strings
// in the access-pattern reference so readers see the exact wire-level shape.
// Scan patterns have no key condition and return an error.
func ExampleKeyCondition(p model.AccessPattern, values map[string]string) (expression.Expression, error) {
	if p.PartitionAttr == "" {
		return expression.Expression{}, fmt.Errorf("pattern %q is a %s and has no key condition", p.Name, p.Operation)
	}

	cond := expression.Key(p.PartitionAttr).
		Equal(expression.Value(keypattern.Resolve(p.PartitionTemplate, values)))

	switch p.SortOperator {
	case model.SortEquals:
		cond = cond.And(expression.Key(p.SortAttr).
			Equal(expression.Value(keypattern.Resolve(p.SortTemplate, values))))
	case model.SortBeginsWith:
		cond = cond.And(expression.Key(p.SortAttr).
			BeginsWith(keypattern.Resolve(p.SortTemplate, values)))
	case model.SortNone:
	}

	expr, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build key condition for %q: %w", p.Name, err)
	}
	return expr, nil
}
