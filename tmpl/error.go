package tmpl

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Sentinel errors. Use [errors.Is] to classify an error returned by this
// package; the values returned carry additional attributes but compare equal
// to their sentinel.
var (
	ErrParse             = NewError("parse error")
	ErrUnterminated      = NewError("unterminated expression")
	ErrUnbalanced        = NewError("unbalanced block")
	ErrUnsafeAccess      = NewError("unsafe property access")
	ErrUnknownHelper     = NewError("unknown helper")
	ErrArity             = NewError("wrong number of helper arguments")
	ErrNotNumeric        = NewError("operand is not numeric")
	ErrDivideByZero      = NewError("division by zero")
	ErrMaxDepthExceeded  = NewError("maximum nesting depth exceeded")
	ErrMaxOutputExceeded = NewError("maximum output size exceeded")
	ErrInvalidData       = NewError("invalid data context")
	ErrInvalidExpression = NewError("invalid expression")
)

// Error is an error with structured logging attributes.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns an Error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err into an *Error, returning it unchanged if it
// already is one.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error joins the message and the wrapped cause with ": ".
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// values derived with [Error.With] and [Error.Wrap] match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: merged}
}

// ParseError reports a structural problem in a format string.
type ParseError struct {
	// Kind is the sentinel classifying the problem: [ErrUnterminated],
	// [ErrUnbalanced], [ErrMaxDepthExceeded] or [ErrParse].
	Kind   *Error
	Msg    string
	Source string
	Pos    Position
}

func newParseError(kind *Error, pos Position, source, msg string) *ParseError {
	return &ParseError{Kind: kind, Msg: msg, Source: source, Pos: pos}
}

// Error renders the location, the message, and the offending source line
// with a caret under the reported column.
func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString("parse error at line ")
	b.WriteString(strconv.Itoa(e.Pos.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(e.Pos.Column))
	b.WriteString(": ")

	if e.Kind != nil && e.Kind != ErrParse {
		b.WriteString(e.Kind.msg)

		if e.Msg != "" {
			b.WriteString(": ")
		}
	}

	b.WriteString(e.Msg)
	b.WriteString(e.Snippet())

	return b.String()
}

// Snippet returns the source line containing the error followed by a caret
// line, or "" when the position lies outside the source.
func (e *ParseError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Pos.Line)

	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(lines[e.Pos.Line-1])
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat(" ", len(num)+3))

	if e.Pos.Column > 1 {
		b.WriteString(strings.Repeat(" ", e.Pos.Column-1))
	}

	b.WriteByte('^')

	return b.String()
}

// Is matches [ErrParse] and the error's Kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Is(ErrParse) || (e.Kind != nil && e.Kind.Is(t))
}

// LogValue implements [slog.LogValuer].
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", ErrParse.msg),
		slog.String("reason", e.Msg),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	}

	if e.Kind != nil && e.Kind != ErrParse {
		attrs = append(attrs, slog.String("kind", e.Kind.msg))
	}

	return slog.GroupValue(attrs...)
}
