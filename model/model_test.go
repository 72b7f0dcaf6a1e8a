package model

import (
	"sync"
	"testing"
	"time"

	"github.com/mitranim/querystr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Internal struct {
	InternalTime *time.Time `json:"internalTime" db:"internal_time"`
}

type Embedded struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type External struct {
	Embedded
	ExternalName string    `json:"externalName" db:"external_name"`
	Internal     Internal  `json:"internal"     db:"internal"`
	Tags         []string  `json:"tags"         db:"tags"`
	Computed     string    `json:"computed"`
	Parent       *Internal `json:"parent"       db:"parent"`
}

func TestIdent(t *testing.T) {
	for _, str := range []string{`a`, `first_name`, `A1`} {
		assert.True(t, IsIdent(str), str)
	}
	for _, str := range []string{``, `a.b`, `a b`, `na"me`, `users; drop`} {
		assert.False(t, IsIdent(str), str)
	}
}

func TestIdentPath(t *testing.T) {
	path, err := IdentPath(`owner.id`)
	require.NoError(t, err)
	assert.Equal(t, []string{`owner`, `id`}, path)

	path, err = IdentPath(`id`)
	require.NoError(t, err)
	assert.Equal(t, []string{`id`}, path)

	for _, str := range []string{``, `.`, `a.`, `.a`, `a..b`, `a.b c`, `na"me`} {
		_, err := IdentPath(str)
		assert.Error(t, err, str)
	}
}

func TestFor(t *testing.T) {
	t.Run(`struct`, func(t *testing.T) {
		val, err := For(`External`, `externals`, External{})
		require.NoError(t, err)
		assert.Equal(t, `External`, val.EntityName())
		assert.Equal(t, `externals`, val.Table)
		assert.Equal(t, `External(externals)`, val.String())
	})

	t.Run(`pointer`, func(t *testing.T) {
		val, err := For(`External`, `externals`, (*External)(nil))
		require.NoError(t, err)
		assert.Equal(t, `External`, val.Type.Name())
	})

	t.Run(`invalid`, func(t *testing.T) {
		_, err := For(``, `externals`, External{})
		assert.Error(t, err)

		_, err = For(`External`, `bad table`, External{})
		assert.Error(t, err)

		_, err = For(`External`, `externals`, 10)
		assert.Error(t, err)

		_, err = For(`External`, `externals`, nil)
		assert.Error(t, err)
	})

	t.Run(`must`, func(t *testing.T) {
		assert.Panics(t, func() { MustFor(`Bad`, `bad`, `str`) })
		assert.NotPanics(t, func() { MustFor(`External`, `externals`, External{}) })
	})
}

func TestModelColumn(t *testing.T) {
	val := MustFor(`External`, `externals`, External{})

	valid := map[string][]string{
		`externalName`:          {`external_name`},
		`createdAt`:             {`created_at`},
		`internal`:              {`internal`},
		`internal.internalTime`: {`internal`, `internal_time`},
		`parent.internalTime`:   {`parent`, `internal_time`},
	}
	for path, exp := range valid {
		t.Run(path, func(t *testing.T) {
			cols, err := val.Column(path)
			require.NoError(t, err)
			assert.Equal(t, exp, cols)
		})
	}

	for _, path := range []string{``, `missing`, `computed`, `internal.missing`, `externalName.nested`, `a..b`, `a; drop`} {
		t.Run(`invalid `+path, func(t *testing.T) {
			_, err := val.Column(path)
			assert.Error(t, err)
		})
	}
}

func TestModelFields(t *testing.T) {
	val := MustFor(`Internal`, `internals`, Internal{})
	assert.Equal(t, []string{`internalTime`}, val.Fields())
}

func TestRegistry(t *testing.T) {
	users := MustFor(`External`, `externals`, External{})
	internals := MustFor(`Internal`, `internals`, Internal{})
	reg := NewRegistry(users, internals)

	assert.Equal(t, []string{`External`, `Internal`}, reg.Names())

	found, ok := reg.Lookup(`External`)
	assert.True(t, ok)
	assert.Same(t, users, found)

	entity, ok := reg.ResolveEntity(`Internal`)
	assert.True(t, ok)
	assert.Equal(t, querystr.Entity(internals), entity)

	entity, ok = reg.ResolveEntity(`Missing`)
	assert.False(t, ok)
	assert.Nil(t, entity)

	assert.Error(t, reg.Register(MustFor(`External`, `other`, Internal{})))
	assert.Error(t, reg.Register(nil))
	assert.Panics(t, func() { NewRegistry(users, users) })
}

func TestRegistryZero(t *testing.T) {
	var reg Registry
	_, ok := reg.ResolveEntity(`External`)
	assert.False(t, ok)

	require.NoError(t, reg.Register(MustFor(`External`, `externals`, External{})))
	assert.Equal(t, []string{`External`}, reg.Names())
}

func TestRegistryConcurrent(t *testing.T) {
	reg := NewRegistry()
	var group sync.WaitGroup

	for _, name := range []string{`A`, `B`, `C`, `D`} {
		name := name
		group.Add(2)
		go func() {
			defer group.Done()
			assert.NoError(t, reg.Register(MustFor(name, `t`, Internal{})))
		}()
		go func() {
			defer group.Done()
			reg.ResolveEntity(name)
		}()
	}

	group.Wait()
	assert.Equal(t, []string{`A`, `B`, `C`, `D`}, reg.Names())
}

func TestTranslatorIntegration(t *testing.T) {
	internals := MustFor(`Internal`, `internals`, Internal{})
	tr := querystr.New(querystr.DefaultOperators(), querystr.WithResolver(NewRegistry(internals)))

	desc, err := tr.TranslateQuery(`include=` + `%7B%22model%22%3A%22Internal%22%7D`)
	require.NoError(t, err)

	model, ok := desc.Include.(*querystr.Object).Get(`model`)
	require.True(t, ok)
	assert.Equal(t, querystr.Ref{Name: `Internal`, Entity: internals}, model)
}
