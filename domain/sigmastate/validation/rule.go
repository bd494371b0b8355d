package validation

import "fmt"

// Rule identifiers. Identifiers are consensus-critical: the whole network
// must agree on what each id guards.
const (
	// CheckDeserializedScriptType is violated when a sub-script deserialized
	// out of a context variable doesn't type-match the slot it is spliced
	// into.
	CheckDeserializedScriptType uint16 = 1000

	// CheckDeserializedScriptIsSigmaProp is violated when a deserialized root
	// script doesn't ultimately reduce to a sigma-proposition type.
	CheckDeserializedScriptIsSigmaProp uint16 = 1001

	// CheckValidOpCode is violated when an opcode encountered during script
	// deserialization has no registered decoder.
	CheckValidOpCode uint16 = 1002
)

// Rule describes one validation rule in the catalog.
type Rule struct {
	ID          uint16
	Description string
}

// RuleStatus is the current disposition of a validation rule. It is a closed
// set of variants.
type RuleStatus interface {
	isRuleStatus()
	fmt.Stringer
}

// StatusEnabled means the rule's condition is checked and a violation is a
// hard failure.
type StatusEnabled struct{}

func (StatusEnabled) isRuleStatus() {}
func (StatusEnabled) String() string {
	return "Enabled"
}

// StatusDisabled means the rule's condition is skipped entirely. This is how
// rules retired by a later fork stay forward compatible.
type StatusDisabled struct{}

func (StatusDisabled) isRuleStatus() {}
func (StatusDisabled) String() string {
	return "Disabled"
}

// StatusReplaced means a newer fork replaced the rule with another one this
// build may not know. A violation becomes a soft-fork signal rather than a
// hard failure.
type StatusReplaced struct {
	NewRuleID uint16
}

func (StatusReplaced) isRuleStatus() {}
func (s StatusReplaced) String() string {
	return fmt.Sprintf("Replaced(%d)", s.NewRuleID)
}

// StatusChanged means a newer fork changed the rule's parameters. NewValue
// carries the changed parameter bytes so a tolerant caller can inspect
// whether its specific violation is covered by the change.
type StatusChanged struct {
	NewValue []byte
}

func (StatusChanged) isRuleStatus() {}
func (s StatusChanged) String() string {
	return fmt.Sprintf("Changed(%x)", s.NewValue)
}

// ruleCatalog is the fixed set of rules this build knows about. A registry
// snapshot is built from this catalog once at startup, the catalog itself is
// never consulted during validation.
var ruleCatalog = []Rule{
	{CheckDeserializedScriptType, "Deserialized sub-script type matches the expected slot type"},
	{CheckDeserializedScriptIsSigmaProp, "Deserialized root script is of a sigma-proposition type"},
	{CheckValidOpCode, "Script opcode has a registered decoder"},
}
