package querystr

import "sort"

/*
Canonical operator names recognized in filter expressions and in `query` /
`include` trees. Each must be mapped to a symbol by the `Operators` table
supplied to the translator; names missing from the table are treated as
literal field names.
*/
var OperatorNames = []string{
	`gt`,
	`gte`,
	`lt`,
	`lte`,
	`ne`,
	`eq`,
	`not`,
	`like`,
	`notLike`,
	`regexp`,
	`notRegexp`,
	`and`,
	`or`,
	`between`,
	`notBetween`,
	`in`,
	`notIn`,
}

/*
Immutable mapping from short operator names such as "gt" to engine-specific
operator symbols such as "$gt". The symbol space belongs to the storage engine
and is opaque to the translator beyond table lookup.

The zero value is an empty table: every name is a literal field. Use
`NewOperators` or `DefaultOperators` to build one. Safe for concurrent use.
*/
type Operators struct {
	symbols map[string]string
	names   map[string]string
}

/*
Builds an operator table from the given name → symbol mapping. The input is
copied; later mutations of the map don't affect the table.
*/
func NewOperators(symbols map[string]string) Operators {
	out := Operators{
		symbols: make(map[string]string, len(symbols)),
		names:   make(map[string]string, len(symbols)),
	}
	for name, sym := range symbols {
		out.symbols[name] = sym
		out.names[sym] = name
	}
	return out
}

/*
Returns the table used by document stores: every canonical name is mapped to
itself prefixed with "$", for example "notIn" → "$notIn".
*/
func DefaultOperators() Operators {
	symbols := make(map[string]string, len(OperatorNames))
	for _, name := range OperatorNames {
		symbols[name] = `$` + name
	}
	return NewOperators(symbols)
}

// Returns the symbol for the given operator name.
func (self Operators) Symbol(name string) (string, bool) {
	sym, ok := self.symbols[name]
	return sym, ok
}

/*
Reverse lookup: returns the operator name for the given symbol. Used by
storage engines to interpret descriptor trees.
*/
func (self Operators) Name(sym string) (string, bool) {
	name, ok := self.names[sym]
	return name, ok
}

// True if the given name is a reserved operator name.
func (self Operators) Has(name string) bool {
	_, ok := self.symbols[name]
	return ok
}

// Sorted operator names known to this table.
func (self Operators) Names() []string {
	out := make([]string, 0, len(self.symbols))
	for name := range self.symbols {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Number of operators in the table.
func (self Operators) Len() int { return len(self.symbols) }
