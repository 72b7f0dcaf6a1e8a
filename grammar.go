package querystr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

/*
Field-list tuple, for example `["name", "desc"]` for "name.desc" or `["id"]`
for "id". Used for both orderings (qualifier is the direction) and groupings
(qualifier usually absent).
*/
type FieldSpec []string

// First element: the field name.
func (self FieldSpec) Field() string {
	if len(self) > 0 {
		return self[0]
	}
	return ``
}

// Second element, if any: the direction for orderings.
func (self FieldSpec) Qualifier() string {
	if len(self) > 1 {
		return self[1]
	}
	return ``
}

/*
Parses comma-separated field lists such as "id.asc,name.desc" from any number
of values. Each token is split on "." into a `FieldSpec`. Empty tokens are
skipped. Input order is preserved.
*/
func ParseFieldList(vals ...string) []FieldSpec {
	var out []FieldSpec
	for _, token := range splitList(vals) {
		out = append(out, FieldSpec(strings.Split(token, `.`)))
	}
	return out
}

/*
Parses a filter expression: "operatorName:value", "operatorName:v1,v2,..." or
a bare literal. Splits on the first colon only, so values may contain colons.

A known operator prefix produces `{symbol: "value"}`, or `{symbol: ["v1",
"v2"]}` when the remainder contains commas. Without a colon, or with an
unknown prefix, the whole input is a literal string scalar. Values are never
coerced.
*/
func ParseFilterExpr(ops Operators, input string) Node {
	name, rest, ok := strings.Cut(input, `:`)
	if !ok {
		return Str(input)
	}

	sym, ok := ops.Symbol(name)
	if !ok {
		return Str(input)
	}

	if !strings.Contains(rest, `,`) {
		return Obj(E(sym, Str(rest)))
	}

	parts := strings.Split(rest, `,`)
	vals := make(Array, len(parts))
	for i, part := range parts {
		vals[i] = Str(part)
	}
	return Obj(E(sym, vals))
}

/*
Combines repeated filter values for one field, such as "age=gt:1&age=lt:9",
into one object of operator entries: `{"$gt": "1", "$lt": "9"}`. A single value
is returned as-is.

Literals among repeated values are kept as well: one literal is stored under
the "eq" symbol, several literals under the "in" symbol as a list. Values that
would overwrite each other are an error rather than being dropped: an operator
given twice, a literal colliding with an explicit "eq" or "in", or literals
when the table lacks the symbol they need.
*/
func parseFilterExprs(ops Operators, vals []string) (Node, error) {
	if len(vals) == 1 {
		return ParseFilterExpr(ops, vals[0]), nil
	}

	out := NewObject(len(vals))
	var literals Array

	for _, val := range vals {
		switch node := ParseFilterExpr(ops, val).(type) {
		case *Object:
			for _, entry := range node.Entries() {
				if _, ok := out.Get(entry.Key); ok {
					return nil, fmt.Errorf(`conflicting values for operator %q`, entry.Key)
				}
				out.Set(entry.Key, entry.Value)
			}
		default:
			literals = append(literals, node)
		}
	}

	if len(literals) == 0 {
		return out, nil
	}

	name, val := `eq`, Node(nil)
	if len(literals) == 1 {
		val = literals[0]
	} else {
		name, val = `in`, literals
	}

	sym, ok := ops.Symbol(name)
	if !ok {
		return nil, fmt.Errorf(`literal values require operator %q, which is not supported`, name)
	}
	if _, ok := out.Get(sym); ok {
		return nil, fmt.Errorf(`conflicting values for operator %q`, sym)
	}
	out.Set(sym, val)
	return out, nil
}

/*
Parses the leading integer of the input, with the semantics of JavaScript's
`parseInt`: leading whitespace is skipped, an optional sign is accepted, and
anything after the digits is ignored. "12abc" is 12; "abc" is an error.
Values outside the int range saturate to `math.MaxInt` or `math.MinInt`, so
that callers can clamp them.
*/
func parseLeadingInt(input string) (int, error) {
	str := strings.TrimLeft(input, " \t\n\r\v\f")

	end := 0
	if end < len(str) && (str[end] == '+' || str[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, fmt.Errorf(`expected an integer, got %q`, input)
	}

	// On overflow, `ParseInt` returns the saturated value with `ErrRange`.
	val, err := strconv.ParseInt(str[:end], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	if val > math.MaxInt {
		return math.MaxInt, nil
	}
	if val < math.MinInt {
		return math.MinInt, nil
	}
	return int(val), nil
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Comma-separated tokens of every value, without empty ones.
func splitList(vals []string) []string {
	var out []string
	for _, val := range vals {
		for _, token := range strings.Split(val, `,`) {
			if token != `` {
				out = append(out, token)
			}
		}
	}
	return out
}
