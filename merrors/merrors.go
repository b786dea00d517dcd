// Package merrors collects the sentinel errors shared across memorax's
// packages, wrapped with github.com/pkg/errors so call sites get a stack
// trace attached to the first wrap without needing to carry one by hand.
package merrors

import "github.com/pkg/errors"

var (
	// ErrParse signals a malformed model description (fixture YAML or a
	// malformed literal encountered while building a StaticMachine).
	ErrParse = errors.New("parse error")

	// ErrUnsupportedCombination signals a machine/abstraction combination
	// the engine cannot analyze, e.g. a PDual locked block writing more
	// than one location.
	ErrUnsupportedCombination = errors.New("unsupported machine/abstraction combination")

	// ErrInvalidArgument signals a CLI flag value the selected task cannot
	// use (cmd/memorax); utils.ParseArgs exits directly on invalid enum
	// values instead of returning it.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLogic signals an internal invariant violation: a bug in memorax
	// itself rather than in the input model.
	ErrLogic = errors.New("internal logic error")

	// ErrRefinementBudgetExhausted is returned by cegar.PbCegar when its
	// configured refinement budget runs out before reachability is
	// decided.
	ErrRefinementBudgetExhausted = errors.New("predicate refinement budget exhausted")
)

// Wrap attaches msg as context to err, or returns nil if err is nil.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf is the Printf-style variant of Wrap.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Assert panics with ErrLogic wrapped by msg if cond is false. A failing
// Assert indicates a memorax bug, not a bad input model. No package in
// this repository calls it at present.
func Assert(cond bool, msg string) {
	if !cond {
		panic(Wrap(ErrLogic, msg))
	}
}
