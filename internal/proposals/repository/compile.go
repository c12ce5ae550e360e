package repository

import (
	"strconv"
	"strings"

	"fdpg_backend/internal/proposals/filter"
)

// Compile translates a filter predicate into a SQL condition over the doc
// column and its positional arguments.
func Compile(pred filter.Predicate) (string, []any) {
	c := &compiler{}
	return c.compile(pred), c.args
}

type compiler struct {
	args []any
}

func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

func (c *compiler) compile(pred filter.Predicate) string {
	switch pred.Op {
	case filter.OpEq:
		return textPath("doc", pred.Field) + " = " + c.bind(pred.Value)
	case filter.OpIn:
		return textPath("doc", pred.Field) + " = ANY(" + c.bind(pred.Values) + "::text[])"
	case filter.OpContains:
		return "COALESCE(" + jsonPath("doc", pred.Field) + " @> jsonb_build_array(" + c.bind(pred.Value) + "::text), false)"
	case filter.OpElemMatch:
		arr := jsonPath("doc", pred.Field)
		return "EXISTS (SELECT 1 FROM jsonb_array_elements(CASE WHEN jsonb_typeof(" + arr + ") = 'array' THEN " + arr +
			" ELSE '[]'::jsonb END) AS elem WHERE " + textPath("elem", pred.Inner) + " = " + c.bind(pred.Value) + ")"
	case filter.OpAnd:
		return c.join(pred.Children, " AND ", "TRUE")
	case filter.OpOr:
		return c.join(pred.Children, " OR ", "FALSE")
	default:
		return "FALSE"
	}
}

func (c *compiler) join(children []filter.Predicate, sep, empty string) string {
	if len(children) == 0 {
		return empty
	}
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = c.compile(child)
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// textPath and jsonPath only ever receive field names defined in code.
func textPath(column, field string) string {
	return column + " #>> '{" + strings.Join(filter.Path(field), ",") + "}'"
}

func jsonPath(column, field string) string {
	return column + " #> '{" + strings.Join(filter.Path(field), ",") + "}'"
}
