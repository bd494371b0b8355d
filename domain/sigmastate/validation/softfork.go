package validation

import (
	"fmt"

	"github.com/pkg/errors"
)

// SoftForkError is not a true failure. It is the control-transfer value
// meaning "this would be invalid under the rules this build knows, but the
// active validation configuration says a later fork relaxed them". It must be
// absorbed at a designated soft-fork-tolerant scope and converted into the
// scope's trivial result; if it reaches the caller of a verification it is a
// programming defect.
type SoftForkError struct {
	RuleID uint16
	Status RuleStatus
}

func (e SoftForkError) Error() string {
	return fmt.Sprintf("validation rule %d is not enabled, its status is %s", e.RuleID, e.Status)
}

// NewSoftForkError creates a soft-fork signal for the given rule and its
// non-enabled status.
func NewSoftForkError(ruleID uint16, status RuleStatus) error {
	return errors.WithStack(SoftForkError{RuleID: ruleID, Status: status})
}

// IsSoftForkSignal reports whether err carries a SoftForkError anywhere in
// its chain.
func IsSoftForkSignal(err error) bool {
	var signal SoftForkError
	return errors.As(err, &signal)
}

// Absorb implements a soft-fork-tolerant scope boundary over an error-shaped
// computation result. A soft-fork signal is absorbed and reported through the
// tolerated return value; any other error passes through as a hard failure.
func Absorb(err error) (tolerated bool, hardErr error) {
	if err == nil {
		return false, nil
	}
	if IsSoftForkSignal(err) {
		return true, nil
	}
	return false, err
}
