package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// The accounting core reports every rejection through one of five error
// categories. The first three are raised locally, before any instruction is
// submitted to the ledger runtime; AccountNotFoundError and
// TransactionFailedError may also originate from the runtime itself.

// ValidationError reports malformed or out-of-range input: a negative
// amount, a missing metric, a fee rate above 100%.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InsufficientFundsError reports a reserve, settle or withdraw that exceeds
// the relevant balance. Requested and Available are never mutated after
// construction.
type InsufficientFundsError struct {
	Op        string
	Requested *big.Int
	Available *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: insufficient funds: requested %s, available %s", e.Op, e.Requested, e.Available)
}

// InvalidStateTransitionError reports an action that is not permitted from
// the entity's current state, such as booking an already booked location or
// cancelling a settled booking.
type InvalidStateTransitionError struct {
	Entity string
	From   string
	Action string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s", e.Entity, e.Action, e.From)
}

// AccountNotFoundError reports a fetch against an address with no backing
// account data.
type AccountNotFoundError struct {
	Address Address
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.Address)
}

// TransactionFailedError wraps a rejection from the ledger runtime with the
// attempted action and any diagnostic log lines the runtime returned.
type TransactionFailedError struct {
	Op   string
	Logs []string
	Err  error
}

func (e *TransactionFailedError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Logs) > 0 {
		msg += " [" + strings.Join(e.Logs, "; ") + "]"
	}
	return msg
}

func (e *TransactionFailedError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, an AccountNotFoundError.
func IsNotFound(err error) bool {
	var nf *AccountNotFoundError
	return errors.As(err, &nf)
}

// validAmount rejects nil, negative and (when requirePositive) zero amounts.
func validAmount(field string, amount *big.Int, requirePositive bool) error {
	switch {
	case amount == nil:
		return &ValidationError{Field: field, Reason: "amount is required"}
	case amount.Sign() < 0:
		return &ValidationError{Field: field, Reason: "amount must be non-negative"}
	case requirePositive && amount.Sign() == 0:
		return &ValidationError{Field: field, Reason: "amount must be positive"}
	}
	return nil
}
