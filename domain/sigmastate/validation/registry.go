package validation

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
)

// Registry maps every known validation rule to its current status. A registry
// is an immutable configuration snapshot: it is constructed once and then
// only read, so a single instance may be shared by any number of concurrent
// verifications.
type Registry struct {
	statuses map[uint16]RuleStatus
}

// NewRegistry returns a registry with every catalog rule enabled. This is the
// configuration of a node that is exactly at the network's protocol level.
func NewRegistry() *Registry {
	statuses := make(map[uint16]RuleStatus, len(ruleCatalog))
	for _, rule := range ruleCatalog {
		statuses[rule.ID] = StatusEnabled{}
	}
	return &Registry{statuses: statuses}
}

// WithStatus returns a copy of the registry with the given rule's status
// overridden. The receiver is left untouched.
func (r *Registry) WithStatus(ruleID uint16, status RuleStatus) *Registry {
	statuses := make(map[uint16]RuleStatus, len(r.statuses))
	for id, s := range r.statuses {
		statuses[id] = s
	}
	statuses[ruleID] = status
	return &Registry{statuses: statuses}
}

// Status returns the rule's current status. The second return value is false
// when the rule isn't in the registry at all.
func (r *Registry) Status(ruleID uint16) (RuleStatus, bool) {
	status, ok := r.statuses[ruleID]
	return status, ok
}

// Validate evaluates a guarded condition against the rule's current status.
//
// Disabled skips the condition entirely. Enabled checks it and fails with
// ruleErr on violation. Replaced and Changed never check the condition and
// raise a soft-fork signal instead, which the nearest tolerant scope either
// absorbs or escalates. A rule id that isn't in the registry is a fatal
// configuration error.
func (r *Registry) Validate(ruleID uint16, condition func() bool, ruleErr func() error) error {
	status, ok := r.statuses[ruleID]
	if !ok {
		return ruleerrors.NewErrMissingValidationRule(ruleID)
	}
	switch status := status.(type) {
	case StatusDisabled:
		return nil
	case StatusEnabled:
		if !condition() {
			return ruleErr()
		}
		return nil
	case StatusReplaced:
		return NewSoftForkError(ruleID, status)
	case StatusChanged:
		return NewSoftForkError(ruleID, status)
	default:
		return errors.Wrapf(ruleerrors.ErrInterpreter, "unknown status %T for validation rule %d", status, ruleID)
	}
}

// ValidateValue is Validate for rules guarding a single byte value (currently
// only opcode registration). For a Changed status the violation degrades to a
// soft-fork signal only when the offending value is covered by the changed
// parameter bytes; an uncovered value stays a hard failure even under a
// tolerant scope.
func (r *Registry) ValidateValue(ruleID uint16, value byte, condition func() bool, ruleErr func() error) error {
	status, ok := r.statuses[ruleID]
	if !ok {
		return ruleerrors.NewErrMissingValidationRule(ruleID)
	}
	if changed, isChanged := status.(StatusChanged); isChanged {
		if condition() {
			return nil
		}
		if bytes.IndexByte(changed.NewValue, value) >= 0 {
			return NewSoftForkError(ruleID, status)
		}
		return ruleErr()
	}
	return r.Validate(ruleID, condition, ruleErr)
}

// SoftForkAccepts reports whether the registry's configuration tolerates the
// given recorded failure. It accepts a soft-fork signal as-is, and an
// unknown-opcode failure whose opcode is covered by a Changed status of the
// opcode-registration rule.
func (r *Registry) SoftForkAccepts(err error) bool {
	if err == nil {
		return false
	}
	if IsSoftForkSignal(err) {
		return true
	}
	var unknownOpCode ruleerrors.ErrUnknownOpCode
	if errors.As(err, &unknownOpCode) {
		if changed, ok := r.statuses[CheckValidOpCode].(StatusChanged); ok {
			return bytes.IndexByte(changed.NewValue, unknownOpCode.OpCode) >= 0
		}
	}
	return false
}

// Fingerprint returns a deterministic byte encoding of the registry's rule
// statuses. Two registries with the same fingerprint validate identically, so
// the fingerprint may key caches of validation-dependent artifacts.
func (r *Registry) Fingerprint() []byte {
	ids := make([]uint16, 0, len(r.statuses))
	for id := range r.statuses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var buf bytes.Buffer
	for _, id := range ids {
		var idBytes [2]byte
		binary.BigEndian.PutUint16(idBytes[:], id)
		buf.Write(idBytes[:])
		switch status := r.statuses[id].(type) {
		case StatusEnabled:
			buf.WriteByte(0x01)
		case StatusDisabled:
			buf.WriteByte(0x00)
		case StatusReplaced:
			buf.WriteByte(0x02)
			binary.BigEndian.PutUint16(idBytes[:], status.NewRuleID)
			buf.Write(idBytes[:])
		case StatusChanged:
			buf.WriteByte(0x03)
			// A two-byte length: a single byte would truncate at 256 and make
			// distinct payloads fingerprint-ambiguous.
			binary.BigEndian.PutUint16(idBytes[:], uint16(len(status.NewValue)))
			buf.Write(idBytes[:])
			buf.Write(status.NewValue)
		}
	}
	return buf.Bytes()
}
