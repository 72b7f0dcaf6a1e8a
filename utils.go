package querystr

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

/*
Converts a panic into an error assigned to the pointer. Panics carrying
non-errors are wrapped, so that a misbehaving resolver can't crash the caller.
*/
func rec(ptr *error) {
	val := recover()
	if val == nil {
		return
	}

	err, ok := val.(error)
	if ok {
		*ptr = err
		return
	}
	*ptr = fmt.Errorf(`unexpected panic: %v`, val)
}

func try(err error) {
	if err != nil {
		panic(err)
	}
}

// Strips the "[]" suffix used by form encoders for repeated names.
func normalizeKey(key string) string {
	return strings.TrimSuffix(key, `[]`)
}

func lastOf(vals []string) string {
	if len(vals) > 0 {
		return vals[len(vals)-1]
	}
	return ``
}

/*
Converts `url.Values` into parameters in sorted key order. Keys that differ
only by the "[]" suffix are combined.
*/
func paramsFromValues(vals url.Values) []Param {
	keys := make([]string, 0, len(vals))
	for key := range vals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out paramList
	for _, key := range keys {
		out.add(key, vals[key]...)
	}
	return out.params
}

/*
Parses a raw query string such as "a=1&b=2&a=3", keeping the order in which
each name first appears. A name or value that isn't valid percent-encoding,
such as the bare "%" in "name=like:Reza%", is used as-is rather than being
rejected or skipped.
*/
func paramsFromQuery(raw string) []Param {
	raw = strings.TrimPrefix(raw, `?`)

	var out paramList
	for _, pair := range strings.Split(raw, `&`) {
		if pair == `` {
			continue
		}
		key, val, _ := strings.Cut(pair, `=`)
		out.add(unescapeQuery(key), unescapeQuery(val))
	}
	return out.params
}

func unescapeQuery(val string) string {
	out, err := url.QueryUnescape(val)
	if err != nil {
		return val
	}
	return out
}

type paramList struct {
	params []Param
	index  map[string]int
}

func (self *paramList) add(key string, vals ...string) {
	key = normalizeKey(key)

	if self.index == nil {
		self.index = map[string]int{}
	}

	i, ok := self.index[key]
	if !ok {
		i = len(self.params)
		self.index[key] = i
		self.params = append(self.params, Param{Key: key})
	}
	self.params[i].Values = append(self.params[i].Values, vals...)
}

/*
Undoes one more level of percent-encoding, for clients that double-encode JSON
parameters. Input that isn't valid percent-encoding is returned unchanged.
"+" is left as-is.
*/
func unescapeJSON(val string) string {
	out, err := url.PathUnescape(val)
	if err != nil {
		return val
	}
	return out
}
