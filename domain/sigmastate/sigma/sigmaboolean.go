package sigma

// Node opcodes of the canonical sigma-proposition encoding.
const (
	OpTrivialFalse byte = 0x00
	OpTrivialTrue  byte = 0x01
	OpAnd          byte = 0x96
	OpOr           byte = 0x97
	OpThreshold    byte = 0x98
	OpProveDlog    byte = 0xCD
	OpProveDHTuple byte = 0xCE
)

// SigmaBoolean is a proposition provable via a sigma protocol: a tree of
// public-key leaves composed with AND/OR/THRESHOLD connectives. The trivial
// true/false leaves short-circuit to plain booleans.
type SigmaBoolean interface {
	OpCode() byte
	isSigmaBoolean()
}

// TrivialProp is a proposition that is unconditionally true or false.
type TrivialProp struct {
	Value bool
}

func (p *TrivialProp) isSigmaBoolean() {}

// OpCode returns the node's canonical opcode
func (p *TrivialProp) OpCode() byte {
	if p.Value {
		return OpTrivialTrue
	}
	return OpTrivialFalse
}

// The two canonical trivial propositions. Reductions must return these exact
// values so callers can compare against them directly.
var (
	TrivialTrueProp  = &TrivialProp{Value: true}
	TrivialFalseProp = &TrivialProp{Value: false}
)

// ProveDlog is a statement of knowledge of the discrete logarithm of H to the
// group generator. H is the public key.
type ProveDlog struct {
	H *GroupElement
}

func (p *ProveDlog) isSigmaBoolean() {}

// OpCode returns the node's canonical opcode
func (p *ProveDlog) OpCode() byte { return OpProveDlog }

// ProveDHTuple is a statement of knowledge of a scalar w such that U = G^w
// and V = H^w, a Diffie-Hellman tuple.
type ProveDHTuple struct {
	G *GroupElement
	H *GroupElement
	U *GroupElement
	V *GroupElement
}

func (p *ProveDHTuple) isSigmaBoolean() {}

// OpCode returns the node's canonical opcode
func (p *ProveDHTuple) OpCode() byte { return OpProveDHTuple }

// And is a conjunction: every child must be proven.
type And struct {
	Children []SigmaBoolean
}

func (p *And) isSigmaBoolean() {}

// OpCode returns the node's canonical opcode
func (p *And) OpCode() byte { return OpAnd }

// Or is a disjunction: at least one child must be proven, without revealing
// which.
type Or struct {
	Children []SigmaBoolean
}

func (p *Or) isSigmaBoolean() {}

// OpCode returns the node's canonical opcode
func (p *Or) OpCode() byte { return OpOr }

// Threshold requires any K of the children to be proven, without revealing
// which.
type Threshold struct {
	K        uint8
	Children []SigmaBoolean
}

func (p *Threshold) isSigmaBoolean() {}

// OpCode returns the node's canonical opcode
func (p *Threshold) OpCode() byte { return OpThreshold }

// Equal reports whether two propositions are the same statement, compared by
// canonical encoding.
func Equal(a, b SigmaBoolean) bool {
	return string(Serialize(a)) == string(Serialize(b))
}

// StructuralSize returns the number of nodes in the proposition tree. It is
// the size metric fixed costs are scaled by.
func StructuralSize(proposition SigmaBoolean) uint64 {
	switch proposition := proposition.(type) {
	case *And:
		return sizeOfChildren(proposition.Children)
	case *Or:
		return sizeOfChildren(proposition.Children)
	case *Threshold:
		return sizeOfChildren(proposition.Children)
	default:
		return 1
	}
}

func sizeOfChildren(children []SigmaBoolean) uint64 {
	size := uint64(1)
	for _, child := range children {
		size += StructuralSize(child)
	}
	return size
}
