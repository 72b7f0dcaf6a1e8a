package querystr

// Page size bounds. `DefaultLimit` is also the default upper bound, see
// `WithMaxLimit`.
const (
	DefaultLimit = 200
	MinLimit     = 1
)

/*
Structured query descriptor: the output of translation, consumed by a
data-storage engine. Filter and include trees use operator symbols, not names,
as keys wherever an operator applies.

`.Offset` is an absolute row offset: the page index requested by the caller
multiplied by `.Limit`.
*/
type Descriptor struct {
	Attributes []string    `json:"attributes,omitempty"`
	Where      *Object     `json:"where"`
	Order      []FieldSpec `json:"order,omitempty"`
	Group      []FieldSpec `json:"group,omitempty"`
	Include    Node        `json:"include,omitempty"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

// Fresh descriptor with an empty filter tree and default pagination.
func NewDescriptor() *Descriptor {
	return &Descriptor{
		Where: NewObject(0),
		Limit: DefaultLimit,
	}
}

/*
Converts the descriptor into a plain nested mapping with the keys
"attributes", "where", "order", "group", "include", "limit" and "offset".
Optional keys are omitted when empty. See `Plain` for tree conversion.
*/
func (self *Descriptor) Map() map[string]interface{} {
	out := map[string]interface{}{
		`where`:  Plain(self.Where),
		`limit`:  self.Limit,
		`offset`: self.Offset,
	}

	if self.Where == nil {
		out[`where`] = map[string]interface{}{}
	}
	if len(self.Attributes) > 0 {
		out[`attributes`] = append([]string(nil), self.Attributes...)
	}
	if len(self.Order) > 0 {
		out[`order`] = fieldSpecsPlain(self.Order)
	}
	if len(self.Group) > 0 {
		out[`group`] = fieldSpecsPlain(self.Group)
	}
	if self.Include != nil {
		out[`include`] = Plain(self.Include)
	}
	return out
}

func fieldSpecsPlain(specs []FieldSpec) [][]string {
	out := make([][]string, len(specs))
	for i, spec := range specs {
		out[i] = append([]string(nil), spec...)
	}
	return out
}
