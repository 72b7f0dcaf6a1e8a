/*
Translates HTTP query strings into structured query descriptors: filters,
sorting, pagination, grouping, field selection and relational includes. The
descriptor is consumed by a data-access layer; this package never executes
queries and doesn't validate field names against any schema.

Example request:

	GET /users?fields=id,name&sort_by=name.desc&limit=20&offset=2&firstName=like:Reza%25

The resulting descriptor, as JSON, with the default "$"-prefixed symbols:

	{
	  "attributes": ["id", "name"],
	  "where": {"firstName": {"$like": "Reza%"}},
	  "order": [["name", "desc"]],
	  "limit": 20,
	  "offset": 40
	}

# Parameters

Reserved names:

	fields=f1,f2           attribute projection
	limit=<int>            page size, clamped to [1, 200]
	offset=<int>           page index (not a row offset), at least 0
	sort_by=f1.dir,f2.dir  ordering
	group_by=f1,f2         grouping
	query=<json>           filter tree with operator names as keys
	include=<json>         relational include tree, with "model" resolution

Any other name is a filter field. Its value is either a literal, implying
equality, or an operator expression:

	status=active      → {"status": "active"}
	id=gt:1            → {"id": {"$gt": "1"}}
	id=in:1,2,3        → {"id": {"$in": ["1", "2", "3"]}}

Values are never coerced: "1" stays a string. Only the first colon separates
the operator, so values may contain colons. Unknown operator prefixes are
treated as part of a literal value.

A field repeated in the query string combines its values into one object.
A single literal among them goes under "eq", several literals go under "in":

	age=gt:1&age=lt:9  → {"age": {"$gt": "1", "$lt": "9"}}
	age=gte:1&age=2&age=3  → {"age": {"$gte": "1", "$in": ["2", "3"]}}

Values that would overwrite each other, such as "age=gt:1&age=gt:2", fail the
translation.

Invalid percent-encoding in the raw query string is kept verbatim rather than
rejected, so "firstName=like:Reza%" filters on "Reza%".

# Pagination

The caller-facing `offset` is a page number. The descriptor's `.Offset` is
the absolute row offset: page index × page size. Parsing follows JavaScript's
`parseInt`: "12abc" is 12. Integers beyond the machine range saturate and are
then clamped, so a huge `limit` is the maximum page size. Values without
leading digits fail the whole translation.

# Operators

Operator names are mapped to engine-specific symbols through an `Operators`
table supplied at construction. Names present in the table are reserved: a
field literally named "and" is always treated as the operator. See
`OperatorNames` for the canonical set and `DefaultOperators` for the default
symbols.

# Trees

`query` and `include` values are percent-decoded, parsed as JSON into `Node`
trees that preserve key order, and passed through the same rewrite pass: keys
naming operators become symbols, recursively. In addition, a "model" key with
a string value is resolved through the `Resolver` capability into a `Ref`.

	query={"or":[{"firstName":"A"},{"id":{"gt":1}}]}

becomes

	{"$or": [{"firstName": "A"}, {"id": {"$gt": 1}}]}

and is merged into the descriptor's `.Where`.

# Errors

Translation is all-or-nothing. Any failure is reported as a `*ParseError`
carrying the offending parameter name and the original error; no partial
descriptor is returned.
*/
package querystr
