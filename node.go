package querystr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

/*
Node of a parsed `query` or `include` tree. Closed union: the only
implementations are `*Object`, `Array`, `Scalar` and `Ref`.
*/
type Node interface {
	isNode()
}

/*
JSON object with insertion order preserved. Iteration order matters for the
rewrite pass and for the final descriptor, which is why plain Go maps aren't
used. Setting an existing key replaces its value in place.

Create with `NewObject` or `Obj`. Not safe for concurrent mutation.
*/
type Object struct {
	keys []string
	vals map[string]Node
}

// Single key-value pair of an `Object`.
type Entry struct {
	Key   string
	Value Node
}

// JSON array.
type Array []Node

/*
JSON scalar: nil, bool, string or `json.Number`. Numbers are kept in their
textual form; the translator never coerces values.
*/
type Scalar struct {
	Value interface{}
}

/*
Resolved entity handle, produced by the rewrite pass for `model` keys in
`include` trees when the resolver recognizes the name. Encodes to JSON as the
original name.
*/
type Ref struct {
	Name   string
	Entity Entity
}

func (*Object) isNode() {}
func (Array) isNode()   {}
func (Scalar) isNode()  {}
func (Ref) isNode()     {}

// Allocates an empty object with room for the given number of keys.
func NewObject(capacity int) *Object {
	return &Object{
		keys: make([]string, 0, capacity),
		vals: make(map[string]Node, capacity),
	}
}

// Shortcut for building an object from entries, in order.
func Obj(entries ...Entry) *Object {
	out := NewObject(len(entries))
	for _, entry := range entries {
		out.Set(entry.Key, entry.Value)
	}
	return out
}

// Shortcut for `Entry{key, val}`.
func E(key string, val Node) Entry { return Entry{Key: key, Value: val} }

// Shortcut for a non-nil array of the given nodes.
func Arr(vals ...Node) Array { return append(Array{}, vals...) }

// Shortcut for a string scalar.
func Str(val string) Scalar { return Scalar{val} }

// Shortcut for a numeric scalar in textual form.
func Num(val string) Scalar { return Scalar{json.Number(val)} }

// Shortcut for a boolean scalar.
func Bool(val bool) Scalar { return Scalar{val} }

// Null scalar.
var Null = Scalar{}

// Number of keys.
func (self *Object) Len() int {
	if self == nil {
		return 0
	}
	return len(self.keys)
}

// Returns the value for the given key.
func (self *Object) Get(key string) (Node, bool) {
	if self == nil {
		return nil, false
	}
	val, ok := self.vals[key]
	return val, ok
}

/*
Sets the value for the given key. A new key is appended at the end; an
existing key keeps its position and gets the new value. Like assignment to a
nil map, panics on a nil object.
*/
func (self *Object) Set(key string, val Node) {
	if self == nil {
		panic(errors.New(`[querystr] assignment to entry in nil object`))
	}
	if self.vals == nil {
		self.vals = map[string]Node{}
	}
	if _, ok := self.vals[key]; !ok {
		self.keys = append(self.keys, key)
	}
	self.vals[key] = val
}

// Removes the given key, if present, preserving the order of the others.
func (self *Object) Delete(key string) {
	if self == nil {
		return
	}
	if _, ok := self.vals[key]; !ok {
		return
	}
	delete(self.vals, key)
	for i, str := range self.keys {
		if str == key {
			self.keys = append(self.keys[:i], self.keys[i+1:]...)
			return
		}
	}
}

// Copy of the keys, in order.
func (self *Object) Keys() []string {
	if self == nil {
		return nil
	}
	return append([]string(nil), self.keys...)
}

// Copy of the entries, in order.
func (self *Object) Entries() []Entry {
	if self == nil {
		return nil
	}
	out := make([]Entry, 0, len(self.keys))
	for _, key := range self.keys {
		out = append(out, Entry{key, self.vals[key]})
	}
	return out
}

// Copies every entry of the other object into this one, in order.
func (self *Object) Merge(other *Object) {
	for _, entry := range other.Entries() {
		self.Set(entry.Key, entry.Value)
	}
}

// Encodes as a JSON object, preserving key order.
func (self *Object) MarshalJSON() ([]byte, error) {
	if self == nil {
		return []byte(`null`), nil
	}

	buf := []byte{'{'}
	for i, key := range self.keys {
		if i > 0 {
			buf = append(buf, ',')
		}

		chunk, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
		buf = append(buf, ':')

		chunk, err = marshalNode(self.vals[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
	}
	return append(buf, '}'), nil
}

// Encodes as a JSON array.
func (self Array) MarshalJSON() ([]byte, error) {
	buf := []byte{'['}
	for i, val := range self {
		if i > 0 {
			buf = append(buf, ',')
		}
		chunk, err := marshalNode(val)
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
	}
	return append(buf, ']'), nil
}

// Encodes the underlying value.
func (self Scalar) MarshalJSON() ([]byte, error) { return json.Marshal(self.Value) }

// Encodes as the entity name.
func (self Ref) MarshalJSON() ([]byte, error) { return json.Marshal(self.Name) }

func marshalNode(val Node) ([]byte, error) {
	if val == nil {
		return []byte(`null`), nil
	}
	return json.Marshal(val)
}

/*
Converts a node into plain Go values: `map[string]interface{}` for objects,
`[]interface{}` for arrays, the underlying value for scalars and the entity
handle for refs. Key order is lost.
*/
func Plain(val Node) interface{} {
	switch val := val.(type) {
	case *Object:
		if val == nil {
			return nil
		}
		out := make(map[string]interface{}, val.Len())
		for _, key := range val.keys {
			out[key] = Plain(val.vals[key])
		}
		return out

	case Array:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = Plain(elem)
		}
		return out

	case Scalar:
		return val.Value

	case Ref:
		return val.Entity

	default:
		return nil
	}
}

/*
Decodes arbitrary JSON into a node tree, preserving object key order. Numbers
become `json.Number`. Trailing non-whitespace input is an error.
*/
func DecodeJSON(input []byte) (Node, error) {
	out, err := decodeJSON(input)
	if err != nil {
		return nil, fmt.Errorf(`[querystr] %w`, err)
	}
	return out, nil
}

// Same as `DecodeJSON`, with errors meant to be wrapped into `ParseError`.
func decodeJSON(input []byte) (Node, error) {
	if len(bytes.TrimSpace(input)) == 0 {
		return nil, errors.New(`unexpected empty JSON input`)
	}

	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()

	val, err := decodeNode(dec)
	if err != nil {
		return nil, err
	}

	_, err = dec.Token()
	if err != io.EOF {
		return nil, fmt.Errorf(`unexpected trailing data after JSON value in %q`, input)
	}
	return val, nil
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf(`malformed JSON: %w`, err)
	}

	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf(`malformed JSON: unexpected %q`, tok)

	default:
		return Scalar{tok}, nil
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	out := NewObject(0)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf(`malformed JSON: %w`, err)
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf(`malformed JSON: expected object key, found %v`, tok)
		}

		val, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		out.Set(key, val)
	}

	return out, closeDelim(dec, '}')
}

func decodeArray(dec *json.Decoder) (Node, error) {
	out := Array{}

	for dec.More() {
		val, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}

	return out, closeDelim(dec, ']')
}

func closeDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf(`malformed JSON: %w`, err)
	}
	if tok != delim {
		return fmt.Errorf(`malformed JSON: expected %q, found %v`, delim, tok)
	}
	return nil
}
