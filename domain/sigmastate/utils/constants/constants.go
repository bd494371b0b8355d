package constants

const (
	// MaxSupportedScriptVersion is the highest script version this build fully
	// understands. Scripts declaring a higher version than the network's
	// activated version are rejected; an activated version above this value
	// means the network has moved past this build, and verification defers to
	// the nodes that do understand it.
	MaxSupportedScriptVersion = 1

	// SoundnessBytes is the byte width of a sigma-protocol challenge. 192 bits
	// of soundness.
	SoundnessBytes = 24

	// GroupElementSize is the byte size of a compressed group element.
	GroupElementSize = 33

	// ResponseSize is the byte size of a serialized prover response (a scalar
	// modulo the group order).
	ResponseSize = 32

	// DefaultCostLimit is the cost budget used when a caller doesn't supply
	// its own hard limit.
	DefaultCostLimit = 1_000_000

	// InterpreterInitCost is the base cost charged for setting up an
	// evaluation before any script node is visited.
	InterpreterInitCost = 10_000
)
