package sqlrender

/*
Describes the syntax used for a specific operator. Allows us to convert
descriptor trees into SQL-style operations that use infix, lists, etc.
*/
type SqlOpSyntax byte

const (
	SqlInfix SqlOpSyntax = iota + 1
	SqlList
	SqlBetween
	SqlNot
	SqlLogical
)

// SQL rendering of a single operator.
type SqlOp struct {
	Syntax SqlOpSyntax
	Text   string
}

/*
Operators supported by the renderer, keyed by canonical operator name (see
`querystr.OperatorNames`). Descriptor trees carry symbols; the renderer
converts them back to names through the same `querystr.Operators` table that
was given to the translator.
*/
var SqlOps = map[string]SqlOp{
	`and`:        {SqlLogical, `and`},
	`or`:         {SqlLogical, `or`},
	`not`:        {SqlNot, `not`},
	`eq`:         {SqlInfix, `=`},
	`ne`:         {SqlInfix, `<>`},
	`gt`:         {SqlInfix, `>`},
	`gte`:        {SqlInfix, `>=`},
	`lt`:         {SqlInfix, `<`},
	`lte`:        {SqlInfix, `<=`},
	`like`:       {SqlInfix, `like`},
	`notLike`:    {SqlInfix, `not like`},
	`regexp`:     {SqlInfix, `~`},
	`notRegexp`:  {SqlInfix, `!~`},
	`in`:         {SqlList, `in`},
	`notIn`:      {SqlList, `not in`},
	`between`:    {SqlBetween, `between`},
	`notBetween`: {SqlBetween, `not between`},
}
