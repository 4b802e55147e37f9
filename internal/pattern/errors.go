package pattern

import (
	"errors"
	"fmt"
)

// ErrDuplicatePattern is returned when a pattern ID is already registered.
var ErrDuplicatePattern = errors.New("pattern already registered")

// DefinitionError reports a malformed pattern source.
type DefinitionError struct {
	Source string
	Line   int
	Column int
	Msg    string
}

func (e *DefinitionError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("pattern: %s:%d:%d: %s", src, e.Line, e.Column, e.Msg)
}
