package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a run failed so callers do not have to parse messages
type ErrorKind uint8

const (
	KindInvalidInput ErrorKind = iota
	KindUpstreamDataUnavailable
	KindMissingNormalizationSeries
	KindComputation
)

var (
	ErrNoData               = errors.New("No data available for the specified date range")
	ErrInsufficientHistory  = errors.New("insufficient price history: at least two trading days are required")
	ErrMissingNormalization = errors.New("normalization ticker not found")
	ErrNoInputFile          = errors.New("No input file provided")
)

func (k ErrorKind) Name() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindUpstreamDataUnavailable:
		return "UpstreamDataUnavailable"
	case KindMissingNormalizationSeries:
		return "MissingNormalizationSeries"
	case KindComputation:
		return "ComputationError"
	default:
		return ""
	}
}

// ExitCode is 1 for problems with the invocation itself, computation level
// failures are reported in the payload and exit 0
func (k ErrorKind) ExitCode() int {
	if k == KindInvalidInput {
		return 1
	}
	return 0
}

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Name()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func missingNormalizationError(ticker string) *Error {
	return &Error{
		Kind:    KindMissingNormalizationSeries,
		Message: fmt.Sprintf("Normalization ticker %s not found in data", ticker),
		Err:     ErrMissingNormalization,
	}
}

// KindOf reports the kind of err, anything that is not an *Error is a computation failure
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindComputation
}
