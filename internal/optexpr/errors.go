package optexpr

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("options expression syntax error")

// SyntaxError reports an options expression that matches none of the
// supported forms. Offending holds the part of the expression at fault.
type SyntaxError struct {
	Expression string
	Offending  string
	Reason     string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Offending == "" || e.Offending == e.Expression {
		return fmt.Sprintf("invalid options expression %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("invalid options expression %q: %s near %q", e.Expression, e.Reason, e.Offending)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func syntaxErr(expr, offending, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Expression: expr,
		Offending:  offending,
		Reason:     fmt.Sprintf(format, args...),
	}
}
