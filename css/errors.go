package css

import (
	"errors"
	"fmt"
)

// ErrorKind classifies conditions the parser can detect in a stylesheet.
type ErrorKind int

const (
	// ErrEmptyValue - property has a colon but no usable value before the
	// semicolon, "!important" or end of block.
	ErrEmptyValue ErrorKind = iota
	// ErrMalformedDeclaration - declaration lacks a colon separating
	// property from value, or has only a property name.
	ErrMalformedDeclaration
	// ErrInvalidSelector - selector is empty, whitespace-only, or begins
	// with a combinator.
	ErrInvalidSelector
	// ErrInvalidSelectorSyntax - selector contains disallowed character
	// sequences; invalidates the whole comma-separated selector list.
	ErrInvalidSelectorSyntax
	// ErrMalformedAtRule - @media/@supports header missing its required
	// query or condition.
	ErrMalformedAtRule
	// ErrUnclosedBlock - EOF reached with open brace(s) outstanding.
	ErrUnclosedBlock
)

// String returns the symbolic name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrEmptyValue:
		return "empty_value"
	case ErrMalformedDeclaration:
		return "malformed_declaration"
	case ErrInvalidSelector:
		return "invalid_selector"
	case ErrInvalidSelectorSyntax:
		return "invalid_selector_syntax"
	case ErrMalformedAtRule:
		return "malformed_at_rule"
	case ErrUnclosedBlock:
		return "unclosed_block"
	default:
		return "unknown"
	}
}

// ParseErrorKind maps a symbolic name back to an ErrorKind.
func ParseErrorKind(name string) (ErrorKind, error) {
	for k := ErrEmptyValue; k <= ErrUnclosedBlock; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", name)
}

// ParseError is a structured parse problem with a 1-based source position.
// In lenient mode parse errors are collected on the stylesheet; in strict
// mode the first enabled error aborts the parse.
type ParseError struct {
	Kind    ErrorKind
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Message)
}

// AsParseError unwraps err into a *ParseError if possible.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ErrValueTooLong is a usage error, not a parse error: it is returned when a
// declaration value exceeds the input-size guard of the shorthand engine.
var ErrValueTooLong = errors.New("css: declaration value exceeds maximum supported length")
