// Package zlerror defines the error taxonomy shared by every package in
// this module: a typed Kind enum, a wrapping Error type, and a small
// per-call OperationContext used to recover a human-readable message
// after the fact.
package zlerror

import (
	"errors"
	"fmt"
)

// Kind enumerates the error kinds the module's packages report.
type Kind int

const (
	Unknown Kind = iota
	Allocation
	Generic
	LogicError
	Corruption
	FormatVersionUnsupported
	GraphInvalid
	GraphNonserializable
	GraphParameterInvalid
	NodeInvalidInput
	NodeParameterInvalid
	NodeParameterInvalidValue
	ParameterInvalid
	TemporaryLibraryLimitation
	InvalidName
	SrcSizeTooSmall
	TransformExecutionFailure
	InputTypeUnsupported
	GraphInvalidNumInputs
	InternalBufferTooSmall
)

var kindNames = map[Kind]string{
	Unknown:                    "unknown",
	Allocation:                 "allocation",
	Generic:                    "GENERIC",
	LogicError:                 "logicError",
	Corruption:                 "corruption",
	FormatVersionUnsupported:   "formatVersion_unsupported",
	GraphInvalid:               "graph_invalid",
	GraphNonserializable:       "graph_nonserializable",
	GraphParameterInvalid:      "graphParameter_invalid",
	NodeInvalidInput:           "node_invalid_input",
	NodeParameterInvalid:       "nodeParameter_invalid",
	NodeParameterInvalidValue:  "nodeParameter_invalidValue",
	ParameterInvalid:           "parameter_invalid",
	TemporaryLibraryLimitation: "temporaryLibraryLimitation",
	InvalidName:                "invalidName",
	SrcSizeTooSmall:            "srcSize_tooSmall",
	TransformExecutionFailure:  "transform_executionFailure",
	InputTypeUnsupported:       "inputType_unsupported",
	GraphInvalidNumInputs:      "graph_invalidNumInputs",
	InternalBufferTooSmall:     "internalBuffer_tooSmall",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the wrapped error type returned across the package boundary.
// It carries a Kind for programmatic dispatch (via errors.As) plus a
// human message and an optional wrapped cause.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

// KindOf extracts the Kind from err if it is (or wraps) a *Error, and
// Generic otherwise.
func KindOf(err error) Kind {
	var zl *Error
	if errors.As(err, &zl) {
		return zl.kind
	}
	return Generic
}
