package exprs

import (
	"io"

	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
)

// Expression opcodes. Every opcode a script may contain must have a decoder
// registered below; hitting an unregistered one consults the opcode
// registration rule, so a soft fork can introduce opcodes this build doesn't
// know without scripts using them becoming hard-invalid.
const (
	OpFalse               byte = 0x00
	OpTrue                byte = 0x01
	OpSigmaPropConstant   byte = 0xC0
	OpBinAnd              byte = 0xA0
	OpBinOr               byte = 0xA1
	OpDeserializeContext  byte = 0xB4
	OpConstantPlaceholder byte = 0x76
)

const maxExprDepth = 64

type exprDecoder func(*exprReader, *validation.Registry, int) (Expr, error)

// decoderRegistry maps opcodes to their decoders. It is populated once in
// init (the connective decoders recurse through it, so a composite literal
// would form an initialization cycle); rule 1002 governs what happens on a
// miss.
var decoderRegistry map[byte]exprDecoder

func init() {
	decoderRegistry = map[byte]exprDecoder{
		OpFalse: func(*exprReader, *validation.Registry, int) (Expr, error) {
			return &BoolConstant{Value: false}, nil
		},
		OpTrue: func(*exprReader, *validation.Registry, int) (Expr, error) {
			return &BoolConstant{Value: true}, nil
		},
		OpSigmaPropConstant: decodeSigmaPropConstant,
		OpBinAnd: func(reader *exprReader, registry *validation.Registry, depth int) (Expr, error) {
			left, right, err := decodeOperands(reader, registry, depth)
			if err != nil {
				return nil, err
			}
			return &BinAnd{Left: left, Right: right}, nil
		},
		OpBinOr: func(reader *exprReader, registry *validation.Registry, depth int) (Expr, error) {
			left, right, err := decodeOperands(reader, registry, depth)
			if err != nil {
				return nil, err
			}
			return &BinOr{Left: left, Right: right}, nil
		},
		OpDeserializeContext: func(reader *exprReader, _ *validation.Registry, _ int) (Expr, error) {
			varID, err := reader.readByte()
			if err != nil {
				return nil, err
			}
			return &DeserializeContext{VarID: varID}, nil
		},
		OpConstantPlaceholder: func(reader *exprReader, _ *validation.Registry, _ int) (Expr, error) {
			index, err := reader.readByte()
			if err != nil {
				return nil, err
			}
			return &ConstantPlaceholder{Index: index}, nil
		},
	}
}

// SerializeExpr returns the canonical byte encoding of the expression.
func SerializeExpr(expr Expr) []byte {
	return appendExpr(nil, expr)
}

func appendExpr(buf []byte, expr Expr) []byte {
	switch expr := expr.(type) {
	case *BoolConstant:
		if expr.Value {
			return append(buf, OpTrue)
		}
		return append(buf, OpFalse)
	case *SigmaPropConstant:
		buf = append(buf, OpSigmaPropConstant)
		return append(buf, sigma.Serialize(expr.Value)...)
	case *BinAnd:
		buf = append(buf, OpBinAnd)
		buf = appendExpr(buf, expr.Left)
		return appendExpr(buf, expr.Right)
	case *BinOr:
		buf = append(buf, OpBinOr)
		buf = appendExpr(buf, expr.Left)
		return appendExpr(buf, expr.Right)
	case *DeserializeContext:
		return append(buf, OpDeserializeContext, expr.VarID)
	case *ConstantPlaceholder:
		return append(buf, OpConstantPlaceholder, expr.Index)
	default:
		// Unknown nodes can't originate from DeserializeExpr, this is a
		// caller defect.
		panic(errors.Errorf("can't serialize expression type %T", expr))
	}
}

// DeserializeExpr parses a canonically encoded expression, requiring full
// consumption of the input. Unknown opcodes go through the opcode
// registration rule of the supplied registry.
func DeserializeExpr(encoded []byte, registry *validation.Registry) (Expr, error) {
	reader := &exprReader{buf: encoded}
	expr, err := readExpr(reader, registry, 0)
	if err != nil {
		return nil, err
	}
	if !reader.empty() {
		return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"%d trailing bytes after a complete expression", reader.remaining())
	}
	return expr, nil
}

func readExpr(reader *exprReader, registry *validation.Registry, depth int) (Expr, error) {
	if depth > maxExprDepth {
		return nil, errors.Wrapf(ruleerrors.ErrScriptMalformed,
			"expression is nested deeper than %d levels", maxExprDepth)
	}
	opCode, err := reader.readByte()
	if err != nil {
		return nil, err
	}
	decoder, registered := decoderRegistry[opCode]
	err = registry.ValidateValue(validation.CheckValidOpCode,
		opCode,
		func() bool { return registered },
		func() error { return ruleerrors.NewErrUnknownOpCode(opCode) })
	if err != nil {
		return nil, err
	}
	if decoder == nil {
		// The rule may be disabled, but with no decoder there's nothing to
		// run regardless.
		return nil, ruleerrors.NewErrUnknownOpCode(opCode)
	}
	return decoder(reader, registry, depth)
}

func decodeOperands(reader *exprReader, registry *validation.Registry, depth int) (Expr, Expr, error) {
	left, err := readExpr(reader, registry, depth+1)
	if err != nil {
		return nil, nil, err
	}
	right, err := readExpr(reader, registry, depth+1)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func decodeSigmaPropConstant(reader *exprReader, _ *validation.Registry, _ int) (Expr, error) {
	proposition, consumed, err := sigma.DeserializePrefix(reader.rest())
	if err != nil {
		return nil, err
	}
	reader.skip(consumed)
	return &SigmaPropConstant{Value: proposition}, nil
}

type exprReader struct {
	buf []byte
	pos int
}

func (r *exprReader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errors.Wrap(ruleerrors.ErrScriptMalformed, io.ErrUnexpectedEOF.Error())
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *exprReader) rest() []byte {
	return r.buf[r.pos:]
}

func (r *exprReader) skip(n int) {
	r.pos += n
}

func (r *exprReader) empty() bool {
	return r.pos == len(r.buf)
}

func (r *exprReader) remaining() int {
	return len(r.buf) - r.pos
}
