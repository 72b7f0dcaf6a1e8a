package sqlrender

import (
	"fmt"
	"strings"

	"github.com/mitranim/querystr"
	"github.com/mitranim/sqlb"
)

/*
Short for "orderings". Structured representation of an SQL ordering such as:

	`order by "some_col" asc`

	`order by "some_col" asc, ("nested")."other_col" desc`

When encoding to a string, identifiers are quoted for safety. Empty `Ords`
represent no ordering: "".

`Ords` implements `sqlb.Expr` and can be directly used as a sub-expression.
*/
type Ords []Ord

var _ = sqlb.Expr(Ords(nil))

/*
Converts descriptor orderings such as `["name", "desc"]` into `Ords`, mapping
field names to column paths through the given function. The direction is
case-insensitive and defaults to ascending; anything other than "asc" or
"desc" is an error.
*/
func OrdsFrom(specs []querystr.FieldSpec, column func(string) ([]string, error)) (Ords, error) {
	out := make(Ords, 0, len(specs))

	for _, spec := range specs {
		if len(spec) == 0 || len(spec) > 2 {
			return nil, fmt.Errorf(`[sqlrender] %q is not a valid ordering; expected format: "<ident>.asc|desc"`, strings.Join(spec, `.`))
		}

		path, err := column(spec.Field())
		if err != nil {
			return nil, err
		}

		var isDesc bool
		switch dir := spec.Qualifier(); {
		case dir == ``, strings.EqualFold(dir, `asc`):
		case strings.EqualFold(dir, `desc`):
			isDesc = true
		default:
			return nil, fmt.Errorf(`[sqlrender] invalid ordering direction %q for %q`, dir, spec.Field())
		}

		out = append(out, Ord{Path: path, IsDesc: isDesc})
	}
	return out, nil
}

/*
Implement `sqlb.Expr`. Appends an SQL string like:

	`order by "some_col" asc, "other_col" desc`

If the sequence is empty, appends nothing.
*/
func (self Ords) AppendExpr(text []byte, args []interface{}) ([]byte, []interface{}) {
	for i, ord := range self {
		if i == 0 {
			text = appendSpaceIfNeeded(text)
			text = append(text, `order by `...)
		} else {
			text = append(text, `, `...)
		}
		text, args = ord.AppendExpr(text, args)
	}
	return text, args
}

// Returns the SQL string. See `.AppendExpr`.
func (self Ords) String() string {
	text, _ := self.AppendExpr(nil, nil)
	return string(text)
}

/*
Short for "ordering". Describes an SQL ordering like:

	`"some_col" asc`

	`("nested")."other_col" desc`

but in a structured format. The default `IsDesc = false` corresponds to
"ascending", which is the default in SQL.
*/
type Ord struct {
	Path   []string
	IsDesc bool
}

// Shortcut for an ascending ordering.
func OrdAsc(path ...string) Ord { return Ord{Path: path, IsDesc: false} }

// Shortcut for a descending ordering.
func OrdDesc(path ...string) Ord { return Ord{Path: path, IsDesc: true} }

// Implement `sqlb.Expr`.
func (self Ord) AppendExpr(text []byte, args []interface{}) ([]byte, []interface{}) {
	text = appendSqlPath(text, self.Path)
	if self.IsDesc {
		text = append(text, ` desc`...)
	} else {
		text = append(text, ` asc`...)
	}
	return text, args
}

func (self Ord) String() string {
	text, _ := self.AppendExpr(nil, nil)
	return string(text)
}
