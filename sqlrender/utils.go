package sqlrender

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

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

	*ptr = fmt.Errorf(`[sqlrender] unexpected panic: %v`, val)
}

func try(err error) {
	if err != nil {
		panic(err)
	}
}

func appendSqlPath(buf []byte, path []string) []byte {
	for i, str := range path {
		// Just a sanity check. We shouldn't allow to decode such identifiers in
		// the first place.
		if strings.Contains(str, `"`) {
			panic(fmt.Errorf(`[sqlrender] unexpected %q in SQL identifier %q`, `"`, str))
		}

		if i == 0 {
			if len(path) > 1 {
				buf = appendEnclosed(buf, `("`, str, `")`)
			} else {
				buf = appendEnclosed(buf, `"`, str, `"`)
			}
		} else {
			buf = append(buf, `.`...)
			buf = appendEnclosed(buf, `"`, str, `"`)
		}
	}
	return buf
}

func appendEnclosed(buf []byte, prefix, infix, suffix string) []byte {
	buf = append(buf, prefix...)
	buf = append(buf, infix...)
	return append(buf, suffix...)
}

// Appends the argument and its ordinal placeholder such as "$3".
func appendArg(text []byte, args []interface{}, val interface{}) ([]byte, []interface{}) {
	args = append(args, val)
	text = append(text, '$')
	text = strconv.AppendInt(text, int64(len(args)), 10)
	return text, args
}

/*
Converts a descriptor scalar into a query argument. Numbers from JSON trees
become `int64` when integral, otherwise `float64`. Strings from filter
expressions are passed as-is; the database does any coercion.
*/
func argValue(val interface{}) interface{} {
	num, ok := val.(json.Number)
	if !ok {
		return val
	}
	if out, err := num.Int64(); err == nil {
		return out
	}
	if out, err := num.Float64(); err == nil {
		return out
	}
	return num.String()
}

func appendSpaceIfNeeded(buf []byte) []byte {
	if len(buf) > 0 && !endsWithWhitespace(buf) {
		buf = append(buf, ` `...)
	}
	return buf
}

func endsWithWhitespace(chunk []byte) bool {
	char, _ := utf8.DecodeLastRune(chunk)
	return isWhitespaceChar(char)
}

func isWhitespaceChar(char rune) bool {
	switch char {
	case ' ', '\n', '\r', '\t', '\v':
		return true
	default:
		return false
	}
}
