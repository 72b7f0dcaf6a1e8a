/*
Package sqlrender is a reference storage-engine adapter: it renders
`querystr.Descriptor` values into parametrized SQL with ordinal placeholders
such as $1, for Postgres-compatible databases.

Rendering consults the same `querystr.Operators` table that was given to the
translator, converting operator symbols back to names. An optional
`model.Model` maps JSON field names to column names and rejects unknown
fields; without one, field names must be plain dotted identifiers and are
used as column names.

	ren := sqlrender.New(querystr.DefaultOperators(), users)
	text, args, err := ren.Render(`users`, desc)

Rendering never executes anything. Includes are not rendered: joins are left
to the engine.
*/
package sqlrender

import (
	"fmt"

	"github.com/mitranim/querystr"
	"github.com/mitranim/querystr/model"
	"github.com/mitranim/sqlb"
)

/*
Renders descriptors and filter trees into SQL. The zero value has an empty
operator table, where every key is a field name.
*/
type Renderer struct {
	Ops   querystr.Operators
	Model *model.Model
}

// Shortcut for creating a renderer. The model may be nil.
func New(ops querystr.Operators, val *model.Model) Renderer {
	return Renderer{Ops: ops, Model: val}
}

// Returns an expression for the given filter tree.
func (self Renderer) Where(where *querystr.Object) Cond {
	return Cond{Renderer: self, Where: where}
}

// Returns an expression for a full select statement.
func (self Renderer) Select(table string, desc *querystr.Descriptor) Select {
	return Select{Renderer: self, Table: table, Desc: desc}
}

/*
Renders a full select statement for the given table, returning the query text
and the arguments for its placeholders.
*/
func (self Renderer) Render(table string, desc *querystr.Descriptor) (text string, args []interface{}, err error) {
	defer rec(&err)
	text, args = sqlb.Reify(self.Select(table, desc))
	return
}

// Renders only the condition of the given filter tree. See `Cond`.
func (self Renderer) RenderWhere(where *querystr.Object) (text string, args []interface{}, err error) {
	defer rec(&err)
	text, args = sqlb.Reify(self.Where(where))
	return
}

/*
Maps a JSON field name or dotted path to a column path, via the model if any.
Panics on invalid input; rendering methods recover.
*/
func (self Renderer) column(field string) []string {
	path, err := self.columnPath(field)
	try(err)
	return path
}

func (self Renderer) columnPath(field string) ([]string, error) {
	if self.Model != nil {
		return self.Model.Column(field)
	}
	return model.IdentPath(field)
}

/*
Condition rendered from a filter tree. Entries of an object are joined with
"and"; an empty tree renders as "true". Implements `sqlb.Expr`; rendering
panics on unsupported trees, so prefer `Renderer.RenderWhere` for untrusted
input.
*/
type Cond struct {
	Renderer
	Where *querystr.Object
}

var _ = sqlb.Expr(Cond{})

// Implement `sqlb.Expr`.
func (self Cond) AppendExpr(text []byte, args []interface{}) ([]byte, []interface{}) {
	bui := builder{Renderer: self.Renderer, text: text, args: args}
	bui.object(self.Where, nil, false)
	return bui.text, bui.args
}

/*
Select statement rendered from a descriptor:

	select <attributes|*> from "<table>"
	[where <cond>] [group by <cols>] [order by <ords>]
	limit $N offset $M

Implements `sqlb.Expr`. See `Cond` regarding panics.
*/
type Select struct {
	Renderer
	Table string
	Desc  *querystr.Descriptor
}

var _ = sqlb.Expr(Select{})

// Implement `sqlb.Expr`.
func (self Select) AppendExpr(text []byte, args []interface{}) ([]byte, []interface{}) {
	if !model.IsIdent(self.Table) {
		panic(fmt.Errorf(`[sqlrender] invalid table name %q`, self.Table))
	}

	desc := self.Desc
	if desc == nil {
		desc = querystr.NewDescriptor()
	}

	bui := builder{Renderer: self.Renderer, text: appendSpaceIfNeeded(text), args: args}

	bui.str(`select `)
	if len(desc.Attributes) == 0 {
		bui.str(`*`)
	}
	for i, attr := range desc.Attributes {
		if i > 0 {
			bui.str(`, `)
		}
		bui.ident(self.column(attr))
	}

	bui.str(` from `)
	bui.ident([]string{self.Table})

	if desc.Where.Len() > 0 {
		bui.str(` where `)
		bui.object(desc.Where, nil, false)
	}

	for i, spec := range desc.Group {
		if i == 0 {
			bui.str(` group by `)
		} else {
			bui.str(`, `)
		}
		bui.ident(self.column(spec.Field()))
	}

	ords, err := OrdsFrom(desc.Order, self.columnPath)
	try(err)
	bui.expr(ords)

	bui.str(` limit `)
	bui.arg(desc.Limit)
	bui.str(` offset `)
	bui.arg(desc.Offset)

	return bui.text, bui.args
}

// Accumulates query text and arguments.
type builder struct {
	Renderer
	text []byte
	args []interface{}
}

func (self *builder) str(str string) { self.text = append(self.text, str...) }

func (self *builder) ident(path []string) { self.text = appendSqlPath(self.text, path) }

func (self *builder) arg(val interface{}) {
	self.text, self.args = appendArg(self.text, self.args, argValue(val))
}

func (self *builder) expr(val sqlb.Expr) {
	self.text, self.args = val.AppendExpr(self.text, self.args)
}

/*
Appends items joined with the given logical operator, parenthesized when
there's more than one item or when `paren` is set.
*/
func (self *builder) join(count int, op string, paren bool, fun func(int)) {
	paren = paren || count > 1
	if paren {
		self.str(`(`)
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			self.str(` ` + op + ` `)
		}
		fun(i)
	}
	if paren {
		self.str(`)`)
	}
}

/*
Appends the conjunction of the object's entries. `col` is the column the
entries apply to, or nil at the top level.
*/
func (self *builder) object(obj *querystr.Object, col []string, paren bool) {
	entries := obj.Entries()
	if len(entries) == 0 {
		self.str(`true`)
		return
	}
	self.join(len(entries), `and`, paren, func(i int) {
		self.entry(entries[i], col)
	})
}

func (self *builder) entry(entry querystr.Entry, col []string) {
	name, isOp := self.Ops.Name(entry.Key)
	if !isOp {
		if col != nil {
			panic(fmt.Errorf(`[sqlrender] unexpected field %q nested under field %q`, entry.Key, col))
		}
		self.field(self.column(entry.Key), entry.Value)
		return
	}

	op, ok := SqlOps[name]
	if !ok {
		panic(fmt.Errorf(`[sqlrender] unsupported operator %q`, name))
	}

	switch op.Syntax {
	case SqlLogical:
		self.logical(op.Text, entry.Value, col)
	case SqlNot:
		self.not(entry.Value, col)
	default:
		if col == nil {
			panic(fmt.Errorf(`[sqlrender] operator %q must be nested under a field`, name))
		}
		self.compare(name, op, col, entry.Value)
	}
}

// Literal field value: equality for scalars, membership for arrays.
func (self *builder) field(col []string, val querystr.Node) {
	switch val := val.(type) {
	case *querystr.Object:
		self.object(val, col, false)
	case querystr.Array:
		self.list(col, `in`, val)
	case querystr.Scalar:
		self.equal(col, `=`, val)
	default:
		panic(fmt.Errorf(`[sqlrender] unsupported value %T for field %q`, val, col))
	}
}

func (self *builder) logical(op string, val querystr.Node, col []string) {
	switch val := val.(type) {
	case *querystr.Object:
		entries := val.Entries()
		if len(entries) == 0 {
			self.str(emptyLogical(op))
			return
		}
		self.join(len(entries), op, false, func(i int) {
			self.entry(entries[i], col)
		})

	case querystr.Array:
		if len(val) == 0 {
			self.str(emptyLogical(op))
			return
		}
		self.join(len(val), op, false, func(i int) {
			self.operand(val[i], col)
		})

	default:
		panic(fmt.Errorf(`[sqlrender] operator %q requires an object or an array, got %T`, op, val))
	}
}

// Element of an "and" / "or" array.
func (self *builder) operand(val querystr.Node, col []string) {
	switch val := val.(type) {
	case *querystr.Object:
		self.object(val, col, true)
	case querystr.Scalar:
		if col == nil {
			panic(fmt.Errorf(`[sqlrender] unexpected scalar %v outside of a field`, val.Value))
		}
		self.equal(col, `=`, val)
	default:
		panic(fmt.Errorf(`[sqlrender] unsupported logical operand %T`, val))
	}
}

func (self *builder) not(val querystr.Node, col []string) {
	switch val := val.(type) {
	case querystr.Scalar:
		if col == nil {
			panic(fmt.Errorf(`[sqlrender] operator "not" with a scalar must be nested under a field`))
		}
		switch inner := val.Value.(type) {
		case nil:
			self.ident(col)
			self.str(` is not null`)
		case bool:
			self.ident(col)
			if inner {
				self.str(` is not true`)
			} else {
				self.str(` is not false`)
			}
		default:
			self.equal(col, `<>`, val)
		}

	case *querystr.Object:
		self.str(`not `)
		self.object(val, col, true)

	case querystr.Array:
		self.str(`not `)
		self.join(len(val), `and`, true, func(i int) {
			self.operand(val[i], col)
		})

	default:
		panic(fmt.Errorf(`[sqlrender] unsupported operand %T for "not"`, val))
	}
}

func (self *builder) compare(name string, op SqlOp, col []string, val querystr.Node) {
	switch op.Syntax {
	case SqlInfix:
		scalar, ok := val.(querystr.Scalar)
		if !ok {
			panic(fmt.Errorf(`[sqlrender] operator %q requires a scalar, got %T`, name, val))
		}
		self.equal(col, op.Text, scalar)

	case SqlList:
		switch val := val.(type) {
		case querystr.Array:
			self.list(col, op.Text, val)
		case querystr.Scalar:
			self.list(col, op.Text, querystr.Arr(val))
		default:
			panic(fmt.Errorf(`[sqlrender] operator %q requires a list, got %T`, name, val))
		}

	case SqlBetween:
		list, ok := val.(querystr.Array)
		if !ok || len(list) != 2 {
			panic(fmt.Errorf(`[sqlrender] operator %q requires exactly 2 values`, name))
		}
		self.ident(col)
		self.str(` ` + op.Text + ` `)
		self.scalar(list[0])
		self.str(` and `)
		self.scalar(list[1])

	default:
		panic(fmt.Errorf(`[sqlrender] unsupported syntax for operator %q`, name))
	}
}

/*
Binary comparison. Comparing with null uses "is null" / "is not null", since
"= null" is never true in SQL.
*/
func (self *builder) equal(col []string, op string, val querystr.Scalar) {
	self.ident(col)

	if val.Value == nil {
		switch op {
		case `=`:
			self.str(` is null`)
			return
		case `<>`:
			self.str(` is not null`)
			return
		}
	}

	self.str(` ` + op + ` `)
	self.arg(val.Value)
}

func (self *builder) list(col []string, op string, vals querystr.Array) {
	if len(vals) == 0 {
		// "in ()" is a syntax error.
		if op == `in` {
			self.str(`false`)
		} else {
			self.str(`true`)
		}
		return
	}

	self.ident(col)
	self.str(` ` + op + ` (`)
	for i, val := range vals {
		if i > 0 {
			self.str(`, `)
		}
		self.scalar(val)
	}
	self.str(`)`)
}

func (self *builder) scalar(val querystr.Node) {
	scalar, ok := val.(querystr.Scalar)
	if !ok {
		panic(fmt.Errorf(`[sqlrender] expected a scalar value, got %T`, val))
	}
	self.arg(scalar.Value)
}

func emptyLogical(op string) string {
	if op == `or` {
		return `false`
	}
	return `true`
}
