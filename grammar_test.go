package querystr

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldList(t *testing.T) {
	assert.Nil(t, ParseFieldList())
	assert.Nil(t, ParseFieldList(``, `,,`))

	assert.Equal(t,
		[]FieldSpec{{`id`, `asc`}, {`name`, `desc`}, {`age`}},
		ParseFieldList(`id.asc,name.desc`, `age`),
	)

	assert.Equal(t,
		[]FieldSpec{{`owner`, `name`, `desc`}},
		ParseFieldList(`owner.name.desc`),
	)
}

func TestFieldSpec(t *testing.T) {
	t.Run(`full`, func(t *testing.T) {
		spec := FieldSpec{`name`, `desc`}
		assert.Equal(t, `name`, spec.Field())
		assert.Equal(t, `desc`, spec.Qualifier())
	})
	t.Run(`field only`, func(t *testing.T) {
		spec := FieldSpec{`name`}
		assert.Equal(t, `name`, spec.Field())
		assert.Equal(t, ``, spec.Qualifier())
	})
	t.Run(`empty`, func(t *testing.T) {
		var spec FieldSpec
		assert.Equal(t, ``, spec.Field())
		assert.Equal(t, ``, spec.Qualifier())
	})
}

func TestParseFilterExpr(t *testing.T) {
	ops := DefaultOperators()

	cases := []struct {
		input string
		exp   Node
	}{
		{`active`, Str(`active`)},
		{``, Str(``)},
		{`gt:18`, Obj(E(`$gt`, Str(`18`)))},
		{`notLike:%x`, Obj(E(`$notLike`, Str(`%x`)))},
		{`regexp:^a.*b$`, Obj(E(`$regexp`, Str(`^a.*b$`)))},
		{`in:a,b`, Obj(E(`$in`, Arr(Str(`a`), Str(`b`))))},
		{`in:,`, Obj(E(`$in`, Arr(Str(``), Str(``))))},
		{`eq:a:b,c`, Obj(E(`$eq`, Arr(Str(`a:b`), Str(`c`))))},
		{`GT:1`, Str(`GT:1`)},
		{`:1`, Str(`:1`)},
		{`http://host`, Str(`http://host`)},
		{`a,b`, Str(`a,b`)},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.exp, ParseFilterExpr(ops, tc.input))
		})
	}

	t.Run(`empty table`, func(t *testing.T) {
		assert.Equal(t, Str(`gt:1`), ParseFilterExpr(Operators{}, `gt:1`))
	})
}

func TestParseFilterExprs(t *testing.T) {
	ops := DefaultOperators()

	parse := func(ops Operators, vals ...string) Node {
		t.Helper()
		node, err := parseFilterExprs(ops, vals)
		require.NoError(t, err)
		return node
	}

	assert.Equal(t, Str(`x`), parse(ops, `x`))

	assert.Equal(t,
		Obj(E(`$gt`, Str(`1`)), E(`$lt`, Str(`9`))),
		parse(ops, `gt:1`, `lt:9`),
	)

	t.Run(`one literal goes under eq`, func(t *testing.T) {
		assert.Equal(t,
			Obj(E(`$gte`, Str(`1`)), E(`$lte`, Str(`9`)), E(`$eq`, Str(`3`))),
			parse(ops, `gte:1`, `lte:9`, `3`),
		)
	})

	t.Run(`several literals go under in`, func(t *testing.T) {
		assert.Equal(t,
			Obj(E(`$gte`, Str(`1`)), E(`$lte`, Str(`9`)), E(`$in`, Arr(Str(`2`), Str(`3`)))),
			parse(ops, `gte:1`, `2`, `lte:9`, `3`),
		)
	})

	t.Run(`literals without eq`, func(t *testing.T) {
		ops := NewOperators(map[string]string{`gt`: `>`, `in`: `IN`})

		assert.Equal(t,
			Obj(E(`IN`, Arr(Str(`1`), Str(`2`)))),
			parse(ops, `1`, `2`),
		)

		_, err := parseFilterExprs(ops, []string{`gt:1`, `5`})
		assert.EqualError(t, err, `literal values require operator "eq", which is not supported`)
	})

	for _, vals := range [][]string{
		{`gt:1`, `gt:5`},
		{`eq:1`, `2`},
		{`in:1,2`, `3`, `4`},
	} {
		t.Run(fmt.Sprint(`conflict `, vals), func(t *testing.T) {
			_, err := parseFilterExprs(ops, vals)
			assert.ErrorContains(t, err, `conflicting values for operator`)
		})
	}
}

func TestParseLeadingInt(t *testing.T) {
	valid := []struct {
		input string
		exp   int
	}{
		{`0`, 0},
		{`42`, 42},
		{`-7`, -7},
		{`+7`, 7},
		{`  12`, 12},
		{"\t3", 3},
		{`12abc`, 12},
		{`3.9`, 3},
		{`007`, 7},
		{fmt.Sprint(math.MaxInt), math.MaxInt},
		{`99999999999999999999999`, math.MaxInt},
		{`-99999999999999999999999`, math.MinInt},
		{`123456789012345678901234xyz`, math.MaxInt},
	}

	for _, tc := range valid {
		t.Run(tc.input, func(t *testing.T) {
			val, err := parseLeadingInt(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, val)
		})
	}

	for _, input := range []string{``, ` `, `abc`, `-`, `+`, `.5`, `- 1`} {
		t.Run(`invalid `+input, func(t *testing.T) {
			_, err := parseLeadingInt(input)
			assert.Error(t, err)
		})
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 1, clampInt(-5, 1, 200))
	assert.Equal(t, 1, clampInt(0, 1, 200))
	assert.Equal(t, 50, clampInt(50, 1, 200))
	assert.Equal(t, 200, clampInt(201, 1, 200))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(nil))
	assert.Equal(t, []string{`a`, `b`, `c`}, splitList([]string{`a,,b`, ``, `c,`}))
}
