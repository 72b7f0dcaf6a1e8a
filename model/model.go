/*
Package model describes entities that descriptors may refer to: Go struct
types whose `json` and `db` tags map external field names to database
columns. A `Registry` resolves entity names for the translator's `include`
trees and gives storage engines access to column mappings.

	type User struct {
		ID        string `json:"id"        db:"id"`
		FirstName string `json:"firstName" db:"first_name"`
	}

	users, err := model.For(`User`, `users`, User{})
	reg := model.NewRegistry(users)
	tr := querystr.New(querystr.DefaultOperators(), querystr.WithResolver(reg))
*/
package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/mitranim/querystr"
	"github.com/mitranim/refut"
	"github.com/mitranim/sqlb"
)

const dottedPath = `(?:\w+\.)*\w+`

var (
	dottedPathReg = regexp.MustCompile(`^` + dottedPath + `$`)
	identReg      = regexp.MustCompile(`^\w+$`)
)

var errBreak = errors.New(``)

// True if the string is a plain identifier: one or more word characters.
func IsIdent(str string) bool { return identReg.MatchString(str) }

/*
Splits a dotted identifier such as "one.two" into segments, each satisfying
`IsIdent`. Used for field paths and column paths alike.
*/
func IdentPath(str string) ([]string, error) {
	if !dottedPathReg.MatchString(str) {
		return nil, fmt.Errorf(`[model] expected a valid dot-separated identifier, got %q`, str)
	}
	return strings.Split(str, `.`), nil
}

/*
Entity backed by a struct type. Implements `querystr.Entity`. Immutable after
creation.
*/
type Model struct {
	Name  string
	Table string
	Type  reflect.Type
}

var _ = querystr.Entity((*Model)(nil))

/*
Creates a model from the type of the given value, which must be a struct or a
pointer to one. The value is used only as a type carrier.
*/
func For(name, table string, typ interface{}) (*Model, error) {
	if name == `` {
		return nil, fmt.Errorf(`[model] missing entity name`)
	}
	if !IsIdent(table) {
		return nil, fmt.Errorf(`[model] invalid table name %q for entity %q`, table, name)
	}

	rtype := typeElem(reflect.TypeOf(typ))
	if rtype == nil || rtype.Kind() != reflect.Struct {
		return nil, fmt.Errorf(`[model] entity %q must be a struct type, got %v`, name, reflect.TypeOf(typ))
	}

	return &Model{Name: name, Table: table, Type: rtype}, nil
}

// Like `For`, but panics on error. Intended for package-level declarations.
func MustFor(name, table string, typ interface{}) *Model {
	out, err := For(name, table, typ)
	if err != nil {
		panic(err)
	}
	return out
}

// Implements `querystr.Entity`.
func (self *Model) EntityName() string { return self.Name }

func (self *Model) String() string {
	return fmt.Sprintf(`%v(%v)`, self.Name, self.Table)
}

/*
Takes a dot-separated path of JSON field names like "one.two.three". Finds the
nested struct field corresponding to that path, and returns the path of
column names, or an error if a field could not be found or has no `db` tag.
*/
func (self *Model) Column(pathStr string) ([]string, error) {
	_, path, err := fieldByJsonPath(self.Type, pathStr)
	return path, err
}

/*
Returns the JSON names of the top-level fields that have a column, including
fields of embedded structs, in declaration order.
*/
func (self *Model) Fields() []string {
	var out []string
	_ = refut.TraverseStructRtype(self.Type, func(sfield reflect.StructField, _ []int) error {
		name := sqlb.FieldJsonName(sfield)
		if name != `` && sqlb.FieldDbName(sfield) != `` {
			out = append(out, name)
		}
		return nil
	})
	return out
}

/*
Finds the struct field that has the given JSON field name. The field may be in
an embedded struct, but not in any non-embedded nested structs.
*/
func fieldByJsonName(rtype reflect.Type, name string, out *reflect.StructField) error {
	if rtype == nil {
		return fmt.Errorf(`[model] can't find field %q: no type provided`, name)
	}
	if rtype.Kind() != reflect.Struct {
		return fmt.Errorf(`[model] can't find field %q in non-struct type %v`, name, rtype)
	}

	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		if sqlb.FieldJsonName(sfield) == name {
			*out = sfield
			return errBreak
		}
		return nil
	})
	if errors.Is(err, errBreak) {
		return nil
	}
	if err != nil {
		return err
	}

	return fmt.Errorf(`[model] no struct field corresponding to JSON field name %q in type %v`, name, rtype)
}

/*
Note that this can't use `reflect.Type.FieldByName` because it searches by
JSON field name, not by Go field name.
*/
func fieldByJsonPath(rtype reflect.Type, pathStr string) (sfield reflect.StructField, path []string, err error) {
	path, err = IdentPath(pathStr)
	if err != nil {
		return
	}

	if rtype == nil {
		err = fmt.Errorf(`[model] can't find field by path %q: no type provided`, pathStr)
		return
	}

	for i, segment := range path {
		err = fieldByJsonName(rtype, segment, &sfield)
		if err != nil {
			return
		}

		colName := sqlb.FieldDbName(sfield)
		if colName == `` {
			err = fmt.Errorf(`[model] no column name corresponding to %q in type %v for path %q`,
				segment, rtype, pathStr)
			return
		}

		path[i] = colName
		rtype = typeElem(sfield.Type)
	}
	return
}

func typeElem(typ reflect.Type) reflect.Type {
	for typ != nil && (typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice) {
		typ = typ.Elem()
	}
	return typ
}
