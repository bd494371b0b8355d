package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrCostLimitExceeded indicates the accumulated evaluation cost went over
	// the context's hard limit. It is always fatal and aborts the whole
	// verification, it is never subject to soft-fork tolerance.
	ErrCostLimitExceeded = newRuleError("ErrCostLimitExceeded")

	// ErrScriptMalformed indicates a script (or an embedded sub-script) is
	// malformed in some way, for example it fails to parse or is truncated.
	ErrScriptMalformed = newRuleError("ErrScriptMalformed")

	// ErrInterpreter indicates an invariant violation that means either the
	// caller broke its contract (e.g. version ordering) or the interpreter
	// reached a state that should be unreachable. Always fatal.
	ErrInterpreter = newRuleError("ErrInterpreter")

	// ErrScriptVersionTooHigh indicates the script declares a version above
	// the network's currently activated script version.
	ErrScriptVersionTooHigh = newRuleError("ErrScriptVersionTooHigh")

	// ErrProofVerificationFailed indicates the supplied proof did not check
	// out against the reduced sigma proposition. This value is used for
	// diagnostics only; proof failure is reported as a false verdict, not
	// as an error.
	ErrProofVerificationFailed = newRuleError("ErrProofVerificationFailed")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a script failed due to one of the validation rules. The
// caller can use type assertions to determine if a failure was specifically
// due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrBudgetExceeded carries the exact cost accounting state at the moment the
// budget was blown.
type ErrBudgetExceeded struct {
	Accumulated uint64
	Delta       uint64
	Limit       uint64
}

func (e ErrBudgetExceeded) Error() string {
	return fmt.Sprintf("cost %d + %d is over the limit of %d", e.Accumulated, e.Delta, e.Limit)
}

// NewErrBudgetExceeded creates a new ErrBudgetExceeded wrapped in a RuleError
func NewErrBudgetExceeded(accumulated, delta, limit uint64) error {
	return errors.WithStack(RuleError{
		message: "ErrCostLimitExceeded",
		inner:   ErrBudgetExceeded{Accumulated: accumulated, Delta: delta, Limit: limit},
	})
}

// ErrUnknownOpCode indicates a serialized script used an opcode with no
// registered decoder.
type ErrUnknownOpCode struct {
	OpCode byte
}

func (e ErrUnknownOpCode) Error() string {
	return fmt.Sprintf("no decoder is registered for opcode %#02x", e.OpCode)
}

// NewErrUnknownOpCode creates a new ErrUnknownOpCode wrapped in a RuleError
func NewErrUnknownOpCode(opCode byte) error {
	return errors.WithStack(RuleError{
		message: "ErrScriptMalformed",
		inner:   ErrUnknownOpCode{OpCode: opCode},
	})
}

// ErrMissingValidationRule indicates the running code consulted a rule the
// active registry doesn't contain. The registry must contain every rule the
// code knows about, so this is a configuration defect.
type ErrMissingValidationRule struct {
	RuleID uint16
}

func (e ErrMissingValidationRule) Error() string {
	return fmt.Sprintf("validation rule %d is missing from the registry", e.RuleID)
}

// NewErrMissingValidationRule creates a new ErrMissingValidationRule wrapped in a RuleError
func NewErrMissingValidationRule(ruleID uint16) error {
	return errors.WithStack(RuleError{
		message: "ErrInterpreter",
		inner:   ErrMissingValidationRule{RuleID: ruleID},
	})
}
