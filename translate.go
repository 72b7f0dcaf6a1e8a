package querystr

import (
	"fmt"
	"math"
	"net/url"
)

// Reserved parameter names. Every other name is a filter field.
const (
	ParamFields  = `fields`
	ParamLimit   = `limit`
	ParamOffset  = `offset`
	ParamSortBy  = `sort_by`
	ParamGroupBy = `group_by`
	ParamQuery   = `query`
	ParamInclude = `include`
)

// Single query-string parameter with all of its values, in order.
type Param struct {
	Key    string
	Values []string
}

// Translator option. See `New`.
type Option func(*Translator)

/*
Sets the resolver consulted for `model` names in `include` trees. Without a
resolver, `model` values are left as literal strings.
*/
func WithResolver(resolver Resolver) Option {
	return func(self *Translator) { self.resolver = resolver }
}

/*
Sets the upper bound for `limit`, which is also the default page size.
Values below `MinLimit` are ignored.
*/
func WithMaxLimit(max int) Option {
	return func(self *Translator) {
		if max >= MinLimit {
			self.maxLimit = max
		}
	}
}

/*
Translates query-string parameters into structured query descriptors. The
operator table and resolver are fixed at construction. A translator holds no
mutable state and is safe for concurrent use.
*/
type Translator struct {
	ops      Operators
	resolver Resolver
	maxLimit int
}

// Creates a translator for the given operator table.
func New(ops Operators, options ...Option) *Translator {
	out := &Translator{ops: ops, maxLimit: DefaultLimit}
	for _, fun := range options {
		fun(out)
	}
	return out
}

// Operator table used by this translator.
func (self *Translator) Operators() Operators { return self.ops }

// Upper bound and default for the page size.
func (self *Translator) MaxLimit() int { return self.maxLimit }

/*
Translates decoded query parameters. Keys are processed in sorted order, so
the result is deterministic. On failure, returns a `*ParseError` and no
descriptor.
*/
func (self *Translator) Translate(vals url.Values) (*Descriptor, error) {
	return self.TranslateParams(paramsFromValues(vals))
}

/*
Translates a raw query string such as `r.URL.RawQuery`. Parameters are
processed in the order in which their names first appear.
*/
func (self *Translator) TranslateQuery(raw string) (*Descriptor, error) {
	return self.TranslateParams(paramsFromQuery(raw))
}

// Translates parameters in the given order. See `Translate`.
func (self *Translator) TranslateParams(params []Param) (_ *Descriptor, err error) {
	state := translation{
		Translator: self,
		out:        NewDescriptor(),
		rewrite:    rewriter{ops: self.ops, resolver: self.resolver},
	}
	state.out.Limit = self.maxLimit

	for _, param := range params {
		err = state.apply(param)
		if err != nil {
			return nil, parseErr(normalizeKey(param.Key), err)
		}
	}

	err = state.finish()
	if err != nil {
		return nil, parseErr(ParamOffset, err)
	}
	return state.out, nil
}

// State of a single translation call.
type translation struct {
	*Translator
	out     *Descriptor
	rewrite rewriter
	page    int
}

func (self *translation) apply(param Param) (err error) {
	defer rec(&err)

	key, vals := normalizeKey(param.Key), param.Values
	if len(vals) == 0 {
		vals = []string{``}
	}

	switch key {
	case ParamFields:
		self.fields(vals)
	case ParamLimit:
		self.limit(lastOf(vals))
	case ParamOffset:
		self.offset(lastOf(vals))
	case ParamSortBy:
		self.out.Order = append(self.out.Order, ParseFieldList(vals...)...)
	case ParamGroupBy:
		self.out.Group = append(self.out.Group, ParseFieldList(vals...)...)
	case ParamQuery:
		self.query(vals)
	case ParamInclude:
		self.include(vals)
	default:
		node, err := parseFilterExprs(self.ops, vals)
		try(err)
		self.out.Where.Set(key, node)
	}
	return nil
}

func (self *translation) fields(vals []string) {
	attrs := splitList(vals)
	if len(attrs) > 0 {
		self.out.Attributes = attrs
	}
}

func (self *translation) limit(val string) {
	num, err := parseLeadingInt(val)
	try(err)
	self.out.Limit = clampInt(num, MinLimit, self.maxLimit)
}

func (self *translation) offset(val string) {
	num, err := parseLeadingInt(val)
	try(err)
	self.page = clampInt(num, 0, math.MaxInt)
}

func (self *translation) query(vals []string) {
	for _, val := range vals {
		node := self.decode(val)

		obj, ok := node.(*Object)
		if !ok {
			panic(fmt.Errorf(`expected a JSON object, got %s`, nodeKind(node)))
		}
		self.out.Where.Merge(self.rewrite.object(obj))
	}
}

func (self *translation) include(vals []string) {
	if len(vals) == 1 {
		self.out.Include = self.rewrite.node(self.decode(vals[0]))
		return
	}

	out := make(Array, len(vals))
	for i, val := range vals {
		out[i] = self.rewrite.node(self.decode(val))
	}
	self.out.Include = out
}

func (self *translation) decode(val string) Node {
	node, err := decodeJSON([]byte(unescapeJSON(val)))
	try(err)
	return node
}

// The caller-facing offset is a page index; the descriptor's is a row offset.
func (self *translation) finish() error {
	if self.page > 0 && self.out.Limit > math.MaxInt/self.page {
		return fmt.Errorf(`page %v of size %v is out of range`, self.page, self.out.Limit)
	}
	self.out.Offset = self.page * self.out.Limit
	return nil
}

func nodeKind(val Node) string {
	switch val := val.(type) {
	case *Object:
		return `object`
	case Array:
		return `array`
	case Scalar:
		switch val.Value.(type) {
		case nil:
			return `null`
		case string:
			return `string`
		case bool:
			return `boolean`
		default:
			return `number`
		}
	default:
		return fmt.Sprintf(`%T`, val)
	}
}
