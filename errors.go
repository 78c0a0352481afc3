package mdsync

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	invalidArgumentCode = "INVALID_ARGUMENT"
	invalidSelectorCode = "INVALID_SELECTOR"
	noMatchCode         = "NO_MATCH"
	contextCanceledCode = "CONTEXT_CANCELED"
	contextTimeoutCode  = "CONTEXT_TIMEOUT"
)

// ErrInvalidArgument reports a nil input to an entry point. It is wrapped in
// a go-errors validation error carrying the operation name.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNoMatch reports that a selector matched nothing in the page.
var ErrNoMatch = errors.New("selector matched no element")

func invalidArgument(op, msg string) error {
	return goerrors.Wrap(ErrInvalidArgument, goerrors.CategoryValidation, op+": "+msg).
		WithTextCode(invalidArgumentCode)
}

func invalidSelector(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "select: invalid selector").
		WithTextCode(invalidSelectorCode)
}

func noMatch(selector string) error {
	return goerrors.Wrap(ErrNoMatch, goerrors.CategoryValidation, "select: nothing matches "+selector).
		WithTextCode(noMatchCode)
}

// ContextError wraps a context error as a go-errors command error. Errors
// that are already wrapped pass through unchanged.
func ContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "deadline exceeded").
			WithTextCode(contextTimeoutCode)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "cancelled").
		WithTextCode(contextCanceledCode)
}
