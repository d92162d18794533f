package a1c

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrorType enumerates this package's decode/encode failure kinds.
type ErrorType int

const (
	ErrOK ErrorType = iota
	ErrBadAlloc
	ErrTruncated
	ErrInvalidItemHeader
	ErrLargeIntegersUnsupported
	ErrIntegerOverflow
	ErrInvalidChunkedString
	ErrMaxDepthExceeded
	ErrInvalidSimpleEncoding
	ErrBreakNotAllowed
	ErrWriteFailed
	ErrInvalidSimpleValue
	ErrFormatError
	ErrTrailingData
	ErrJSONUTF8Unsupported
)

func (t ErrorType) String() string {
	switch t {
	case ErrOK:
		return "ok"
	case ErrBadAlloc:
		return "badAlloc"
	case ErrTruncated:
		return "truncated"
	case ErrInvalidItemHeader:
		return "invalidItemHeader"
	case ErrLargeIntegersUnsupported:
		return "largeIntegersUnsupported"
	case ErrIntegerOverflow:
		return "integerOverflow"
	case ErrInvalidChunkedString:
		return "invalidChunkedString"
	case ErrMaxDepthExceeded:
		return "maxDepthExceeded"
	case ErrInvalidSimpleEncoding:
		return "invalidSimpleEncoding"
	case ErrBreakNotAllowed:
		return "breakNotAllowed"
	case ErrWriteFailed:
		return "writeFailed"
	case ErrInvalidSimpleValue:
		return "invalidSimpleValue"
	case ErrFormatError:
		return "formatError"
	case ErrTrailingData:
		return "trailingData"
	case ErrJSONUTF8Unsupported:
		return "jsonUTF8Unsupported"
	default:
		return "unknown"
	}
}

// Error is the typed error record produced by every decode/encode
// step, carrying the failure kind, source position, nesting depth, the
// partially built item, and the call site that raised it. Decode and
// encode stop at the first Error; partial trees built so far remain
// safe to inspect.
type Error struct {
	Type   ErrorType
	SrcPos int
	Depth  int
	Item   *Item
	File   string
	Line   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("a1c: %s at pos %d depth %d (%s:%d)", e.Type, e.SrcPos, e.Depth, e.File, e.Line)
}

func newErr(typ ErrorType, pos, depth int, item *Item) *Error {
	_, file, line, _ := runtime.Caller(1)
	return &Error{Type: typ, SrcPos: pos, Depth: depth, Item: item, File: filepath.Base(file), Line: line}
}
