package querystr

import (
	"errors"
	"fmt"
)

/*
Returned by the translator when any parameter fails to parse: malformed JSON
in `query` or `include`, a non-integer `limit` or `offset`, conflicting
repeated filter values, or a failure raised while rewriting a tree.
Translation is all-or-nothing: when this is returned, no descriptor is.

`.Param` is the offending parameter name, if known. Use `errors.As` to detect.
*/
type ParseError struct {
	Param string
	Err   error
}

func (self *ParseError) Error() string {
	if self.Param == `` {
		return fmt.Sprintf(`[querystr] invalid query string: %v`, self.Err)
	}
	return fmt.Sprintf(`[querystr] invalid %q: %v`, self.Param, self.Err)
}

func (self *ParseError) Unwrap() error { return self.Err }

// True if the error is or wraps a `*ParseError`.
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

func parseErr(param string, err error) *ParseError {
	var target *ParseError
	if errors.As(err, &target) {
		return target
	}
	return &ParseError{Param: param, Err: err}
}
