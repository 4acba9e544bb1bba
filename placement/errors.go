package placement

import (
	"errors"
	"fmt"

	"github.com/tsawler/textpos/contentstream"
	"github.com/tsawler/textpos/core"
)

// ErrTooFewOperands is the sentinel wrapped by every *ArityError.
var ErrTooFewOperands = errors.New("too few operands")

// ArityError reports an operator that received fewer operands than it
// needs.
type ArityError struct {
	Op   contentstream.Operator
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: need %d operands, got %d", e.Op, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error {
	return ErrTooFewOperands
}

// DecodeError reports a string fragment that is not valid UTF-8 under the
// Strict policy.
type DecodeError struct {
	Op    contentstream.Operator
	Bytes core.ByteString
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: cannot decode %s: %v", e.Op, e.Bytes, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Skip describes an operation, or part of one, that the engine ignored.
// Err is an *ArityError, a *core.TypeError or a *DecodeError.
type Skip struct {
	// Page is the page number given by WithPage, or 0.
	Page int
	// Index is the position of the operation in the engine's input.
	Index int
	Op    contentstream.Operation
	Err   error
}

func (s Skip) String() string {
	if s.Page > 0 {
		return fmt.Sprintf("page %d, operation %d (%s): %v", s.Page, s.Index, s.Op.Operator, s.Err)
	}
	return fmt.Sprintf("operation %d (%s): %v", s.Index, s.Op.Operator, s.Err)
}

// Observer receives skip notifications.
type Observer func(Skip)
