package externalapi

// ExtensionValue is one prover-supplied context variable. Only byte-array
// typed values can be spliced in as deserialized sub-scripts; other types are
// opaque to this core and flow through to the expression evaluator.
type ExtensionValue struct {
	IsByteArray bool
	Bytes       []byte
}

// ContextExtension is the prover-supplied variable map, keyed by a small
// integer id.
type ContextExtension map[uint8]ExtensionValue
