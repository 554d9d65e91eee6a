// errors.go — error types and caret-snippet rendering.
//
// The lexer and parser report positioned failures (*LexError,
// *ParseError); the evaluator reports *TypeError and *ReferenceError.
// WrapErrorWithName turns the positioned ones into a readable snippet
// with a caret under the offending column:
//
//	PARSE ERROR in sample.scp at 3:12: expected ')'
//
//	   2 | var x = (1 + 2
//	   3 |              ;
//	     |            ^
//	   4 | x
//
// Runtime errors have no source position and pass through with their
// kind prefix intact.
package scope

import (
	"fmt"
	"strings"
)

// LexError is a tokenization failure at a source position. AtEOF is
// set when the failure is running out of input, which the REPL uses to
// keep reading instead of reporting.
type LexError struct {
	Line  int // 1-based
	Col   int // 0-based
	Msg   string
	AtEOF bool
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// ParseError is a syntax failure at a source position. AtEOF marks
// errors caused by truncated input.
type ParseError struct {
	Line  int // 1-based
	Col   int // 0-based
	Msg   string
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// IsIncomplete reports whether err means the input ended mid-construct
// and more lines could complete it.
func IsIncomplete(err error) bool {
	switch e := err.(type) {
	case *LexError:
		return e.AtEOF
	case *ParseError:
		return e.AtEOF
	}
	return false
}

// TypeError reports an operation applied to a value of the wrong kind,
// such as calling a number or indexing a boolean.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return "TypeError: " + e.Msg }

// ReferenceError reports a name that could not be resolved or a member
// access on a value that has no members.
type ReferenceError struct {
	Msg string
}

func (e *ReferenceError) Error() string { return "ReferenceError: " + e.Msg }

func typeErrorf(format string, args ...interface{}) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

func referenceErrorf(format string, args ...interface{}) *ReferenceError {
	return &ReferenceError{Msg: fmt.Sprintf(format, args...)}
}

// WrapErrorWithSource is WrapErrorWithName without a source label.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName augments lex and parse errors with a caret-annotated
// snippet of the source. Other errors are returned unchanged.
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Col is stored 0-based; render 1-based.
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettyErrorStringLabeled(src, "PARSE ERROR", srcName, e.Line, e.Col+1, e.Msg))
	default:
		return err
	}
}

// prettyErrorStringLabeled builds a snippet with a header and a caret.
// It shows at most one previous and one next line when available.
// Coordinates are treated as 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad < 0 {
		caretPad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
