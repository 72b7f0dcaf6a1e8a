package querystr

// Key whose string value names an entity in `include` trees.
const ModelKey = `model`

/*
Entity handle, as known to the storage engine. The translator treats it as an
opaque value; see `Resolver`.
*/
type Entity interface {
	EntityName() string
}

/*
Capability supplied by the storage engine: resolves entity names found under
`model` keys into entity handles. Implementations must be safe for concurrent
use if the translator is shared.
*/
type Resolver interface {
	ResolveEntity(name string) (Entity, bool)
}

/*
Operator-rewrite pass over a parsed `query` or `include` tree. Produces a new
tree where keys naming operators are replaced with operator symbols and
`model` names are replaced with entity handles. The input is never mutated.
*/
type rewriter struct {
	ops      Operators
	resolver Resolver
}

func (self rewriter) node(val Node) Node {
	switch val := val.(type) {
	case *Object:
		return self.object(val)
	case Array:
		return self.array(val)
	default:
		return val
	}
}

func (self rewriter) object(src *Object) *Object {
	out := NewObject(src.Len())

	for _, entry := range src.Entries() {
		key, val := entry.Key, entry.Value

		if isComposite(val) {
			out.Set(self.key(key), self.node(val))
			continue
		}

		if key == ModelKey {
			ref, ok := self.resolve(val)
			if ok {
				out.Set(key, ref)
				continue
			}
		}

		out.Set(self.key(key), val)
	}

	return out
}

func (self rewriter) array(src Array) Array {
	out := make(Array, len(src))
	for i, val := range src {
		out[i] = self.node(val)
	}
	return out
}

func (self rewriter) key(key string) string {
	sym, ok := self.ops.Symbol(key)
	if ok {
		return sym
	}
	return key
}

func (self rewriter) resolve(val Node) (Ref, bool) {
	if self.resolver == nil {
		return Ref{}, false
	}

	scalar, ok := val.(Scalar)
	if !ok {
		return Ref{}, false
	}

	name, ok := scalar.Value.(string)
	if !ok {
		return Ref{}, false
	}

	entity, ok := self.resolver.ResolveEntity(name)
	if !ok || entity == nil {
		return Ref{}, false
	}
	return Ref{Name: name, Entity: entity}, true
}

// Non-null object or array.
func isComposite(val Node) bool {
	switch val := val.(type) {
	case *Object:
		return val != nil
	case Array:
		return val != nil
	default:
		return false
	}
}
