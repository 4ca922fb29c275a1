package vectorstore

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"github.com/spf13/cast"

	"github.com/ragcore-ai/engine/ai/vectorstore/filter/ast"
	"github.com/ragcore-ai/engine/ai/vectorstore/filter/token"
	"github.com/ragcore-ai/engine/pkg/ptr"
)

var _ ast.Visitor = (*qdrantConverter)(nil)

// qdrantConverter translates an AST filter expression into a native Qdrant
// filter, adapted from the teacher's qdrant converter (same visitor-per-node
// shape, trimmed to the operators the ast package emits).
type qdrantConverter struct {
	err      error
	filter   *qdrant.Filter
	curKey   string
	curValue any
}

func newQdrantConverter() *qdrantConverter {
	return &qdrantConverter{filter: &qdrant.Filter{}}
}

func (c *qdrantConverter) Filter() *qdrant.Filter {
	if c.err != nil {
		return nil
	}
	return c.filter
}

func (c *qdrantConverter) Error() error { return c.err }

func (c *qdrantConverter) Visit(expr ast.Expr) ast.Visitor {
	c.err = c.visit(expr)
	return nil
}

func (c *qdrantConverter) visit(expr ast.Expr) error {
	if expr == nil {
		return fmt.Errorf("qdrant filter: nil expression")
	}
	switch node := expr.(type) {
	case *ast.BinaryExpr:
		return c.visitBinary(node)
	case *ast.UnaryExpr:
		return c.visitUnary(node)
	case *ast.Ident:
		c.curKey = node.Value
		return nil
	case *ast.Literal:
		v, err := c.literalValue(node)
		if err != nil {
			return err
		}
		c.curValue = v
		return nil
	case *ast.ListLiteral:
		values := make([]any, 0, len(node.Values))
		for _, lit := range node.Values {
			v, err := c.literalValue(lit)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		c.curValue = values
		return nil
	default:
		return fmt.Errorf("qdrant filter: unsupported expression type %T", node)
	}
}

func (c *qdrantConverter) literalValue(lit *ast.Literal) (any, error) {
	switch {
	case lit.IsString():
		return lit.AsString()
	case lit.IsNumber():
		return lit.AsNumber()
	case lit.IsBool():
		return lit.AsBool()
	default:
		return nil, fmt.Errorf("qdrant filter: unsupported literal %q", lit.Value)
	}
}

func (c *qdrantConverter) nested(expr ast.Expr) (*qdrant.Condition, error) {
	sub := newQdrantConverter()
	ast.Walk(sub, expr)
	if sub.err != nil {
		return nil, sub.err
	}
	return qdrant.NewFilterAsCondition(sub.filter), nil
}

func (c *qdrantConverter) visitUnary(expr *ast.UnaryExpr) error {
	if expr.Op.Kind != token.NOT {
		return fmt.Errorf("qdrant filter: unsupported unary operator %q", expr.Op.Literal)
	}
	cond, err := c.nested(expr.Right)
	if err != nil {
		return err
	}
	c.filter.MustNot = append(c.filter.MustNot, cond)
	return nil
}

func (c *qdrantConverter) visitBinary(expr *ast.BinaryExpr) error {
	switch expr.Op.Kind {
	case token.AND:
		left, err := c.nested(expr.Left)
		if err != nil {
			return err
		}
		right, err := c.nested(expr.Right)
		if err != nil {
			return err
		}
		c.filter.Must = append(c.filter.Must, left, right)
		return nil
	case token.OR:
		left, err := c.nested(expr.Left)
		if err != nil {
			return err
		}
		right, err := c.nested(expr.Right)
		if err != nil {
			return err
		}
		c.filter.Should = append(c.filter.Should, left, right)
		return nil
	case token.EQ, token.NE:
		return c.visitEquality(expr)
	case token.LT, token.LE, token.GT, token.GE:
		return c.visitOrdering(expr)
	case token.IN:
		return c.visitIn(expr)
	default:
		return fmt.Errorf("qdrant filter: unsupported binary operator %q", expr.Op.Literal)
	}
}

func (c *qdrantConverter) extractKey(expr ast.Expr) (string, error) {
	sub := newQdrantConverter()
	if err := sub.visit(expr); err != nil {
		return "", err
	}
	return sub.curKey, nil
}

func (c *qdrantConverter) extractValue(expr ast.Expr) (any, error) {
	sub := newQdrantConverter()
	if err := sub.visit(expr); err != nil {
		return nil, err
	}
	return sub.curValue, nil
}

func (c *qdrantConverter) matchCondition(key string, value any) (*qdrant.Condition, error) {
	switch v := value.(type) {
	case string:
		return qdrant.NewMatchKeyword(key, v), nil
	case float64:
		return qdrant.NewMatchInt(key, int64(v)), nil
	case bool:
		return qdrant.NewMatchBool(key, v), nil
	default:
		return nil, fmt.Errorf("qdrant filter: unsupported match value type %T", value)
	}
}

func (c *qdrantConverter) visitEquality(expr *ast.BinaryExpr) error {
	key, err := c.extractKey(expr.Left)
	if err != nil {
		return err
	}
	value, err := c.extractValue(expr.Right)
	if err != nil {
		return err
	}
	cond, err := c.matchCondition(key, value)
	if err != nil {
		return err
	}
	if expr.Op.Kind == token.EQ {
		c.filter.Must = append(c.filter.Must, cond)
	} else {
		c.filter.MustNot = append(c.filter.MustNot, cond)
	}
	return nil
}

func (c *qdrantConverter) visitOrdering(expr *ast.BinaryExpr) error {
	key, err := c.extractKey(expr.Left)
	if err != nil {
		return err
	}
	raw, err := c.extractValue(expr.Right)
	if err != nil {
		return err
	}
	num, err := cast.ToFloat64E(raw)
	if err != nil {
		return fmt.Errorf("qdrant filter: ordering operand must be numeric: %w", err)
	}

	rng := &qdrant.Range{}
	switch expr.Op.Kind {
	case token.LT:
		rng.Lt = ptr.Pointer(num)
	case token.LE:
		rng.Lte = ptr.Pointer(num)
	case token.GT:
		rng.Gt = ptr.Pointer(num)
	case token.GE:
		rng.Gte = ptr.Pointer(num)
	}
	c.filter.Must = append(c.filter.Must, qdrant.NewRange(key, rng))
	return nil
}

func (c *qdrantConverter) visitIn(expr *ast.BinaryExpr) error {
	key, err := c.extractKey(expr.Left)
	if err != nil {
		return err
	}
	raw, err := c.extractValue(expr.Right)
	if err != nil {
		return err
	}
	values, ok := raw.([]any)
	if !ok || len(values) == 0 {
		return fmt.Errorf("qdrant filter: IN requires a non-empty list")
	}

	switch values[0].(type) {
	case string:
		keywords := make([]string, len(values))
		for i, v := range values {
			keywords[i] = v.(string)
		}
		c.filter.Must = append(c.filter.Must, qdrant.NewMatchKeywords(key, keywords...))
	case float64:
		ints := make([]int64, len(values))
		for i, v := range values {
			ints[i] = int64(v.(float64))
		}
		c.filter.Must = append(c.filter.Must, qdrant.NewMatchInts(key, ints...))
	default:
		return fmt.Errorf("qdrant filter: unsupported IN element type %T", values[0])
	}
	return nil
}

// toQdrantFilter renders an AST filter expression into a native Qdrant
// filter, or nil if expr is nil.
func toQdrantFilter(expr ast.Expr) (*qdrant.Filter, error) {
	if expr == nil {
		return nil, nil
	}
	c := newQdrantConverter()
	ast.Walk(c, expr)
	if c.err != nil {
		return nil, c.err
	}
	return c.Filter(), nil
}
