// Package pegerrors defines the error taxonomy used throughout the PEG
// parser-generator: grammar-parse failures, validation failures, emission
// bugs, and the syntax errors raised by generated parsers at parse time.
package pegerrors

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// sourceWrapWidth is the column width used when word-wrapping the
// human-facing portion of a SyntaxError's FullMessage.
const sourceWrapWidth = 100

// GrammarError indicates that the meta-syntax for a grammar file could not be
// parsed. It is always anchored at the farthest position the tokenizer
// reached before failing.
type GrammarError struct {
	msg      string
	Filename string
	Line     int
	Column   int
	LineText string
	wrap     error
}

func (e *GrammarError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.msg)
	}
	return e.msg
}

// Unwrap gives the error that the GrammarError wraps, if it wraps one.
func (e *GrammarError) Unwrap() error {
	return e.wrap
}

// WithLineText attaches the source line text for display and returns the
// receiver, for convenient chaining at the call site.
func (e *GrammarError) WithLineText(lineText string) *GrammarError {
	e.LineText = lineText
	return e
}

// Grammar returns a new GrammarError describing a meta-syntax parse failure
// at the given file position.
func Grammar(msg string, filename string, line, column int) *GrammarError {
	return &GrammarError{msg: msg, Filename: filename, Line: line, Column: column}
}

// WrapGrammar is as Grammar but also records an underlying cause.
func WrapGrammar(cause error, msg string, filename string, line, column int) *GrammarError {
	return &GrammarError{msg: msg, Filename: filename, Line: line, Column: column, wrap: cause}
}

// ValidationError indicates that a grammar parsed syntactically but failed
// one of the Analyzer's static checks: an unresolved name, a duplicate
// declaration, a reserved-prefix violation, a shadowed alternative, a missing
// start rule/trailer, or a left-recursive SCC with no leadership candidate.
type ValidationError struct {
	msg  string
	Rule string
}

func (e *ValidationError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("rule %q: %s", e.Rule, e.msg)
	}
	return e.msg
}

// Validation returns a new ValidationError not attributed to any single rule.
func Validation(msg string) error {
	return &ValidationError{msg: msg}
}

// ValidationIn returns a new ValidationError attributed to the named rule.
func ValidationIn(rule, msg string) error {
	return &ValidationError{msg: msg, Rule: rule}
}

// EmissionError indicates an internal invariant was violated while walking a
// validated grammar to produce target code. It should never occur on input
// that passed validation; surfacing one is a generator bug report, not a
// user-facing diagnostic.
type EmissionError struct {
	msg string
}

func (e *EmissionError) Error() string {
	return "internal error during code emission: " + e.msg
}

// Emission returns a new EmissionError.
func Emission(format string, a ...interface{}) error {
	return &EmissionError{msg: fmt.Sprintf(format, a...)}
}

// SyntaxError is the error surfaced by a generated parser's top-level parse
// failure, built from the tokenizer's farthest-reached position. A Forced
// (&&) item failure is the one sub-kind that is raised immediately rather
// than being discovered only after every alternative has been exhausted;
// Expected is non-empty exactly for that sub-kind.
type SyntaxError struct {
	Message  string
	Filename string
	Line     int
	Column   int
	LineText string

	// Expected holds the source form of the forced node that failed to
	// match, when this SyntaxError was raised by a Forced ("&&") item.
	Expected string
}

func (e *SyntaxError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// FullMessage renders a caret-pointing, line-wrapped rendition of the error
// suitable for display to a human, in the same spirit as
// engine's separation of a technical Error() from a human-facing message.
func (e *SyntaxError) FullMessage() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if e.LineText != "" {
		sb.WriteRune('\n')
		wrapped := rosed.Edit(e.LineText).
			WithOptions(rosed.Options{ParagraphSeparator: "\n"}).
			Wrap(sourceWrapWidth).
			String()
		sb.WriteString(wrapped)
		sb.WriteRune('\n')
		col := e.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", col-1))
		sb.WriteRune('^')
	}
	return sb.String()
}

// Syntax returns a new SyntaxError anchored at the given position.
func Syntax(message, filename string, line, column int, lineText string) *SyntaxError {
	return &SyntaxError{Message: message, Filename: filename, Line: line, Column: column, LineText: lineText}
}

// Forced returns a new SyntaxError describing a failed Forced ("&&") item,
// anchored at the given position.
func Forced(expected, filename string, line, column int, lineText string) *SyntaxError {
	return &SyntaxError{
		Message:  fmt.Sprintf("expected %s", expected),
		Filename: filename,
		Line:     line,
		Column:   column,
		LineText: lineText,
		Expected: expected,
	}
}
