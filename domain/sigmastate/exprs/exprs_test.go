package exprs

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
)

func testSigmaProp(t *testing.T, secret uint32) *SigmaPropConstant {
	t.Helper()
	w := new(secp256k1.ModNScalar).SetInt(secret)
	return &SigmaPropConstant{Value: &sigma.ProveDlog{H: sigma.ExpGenerator(w)}}
}

func exprEqual(a, b Expr) bool {
	return bytes.Equal(SerializeExpr(a), SerializeExpr(b))
}

func TestExprSerializationRoundTrip(t *testing.T) {
	registry := validation.NewRegistry()
	pk := testSigmaProp(t, 5)

	tests := []struct {
		name string
		expr Expr
	}{
		{name: "false", expr: &BoolConstant{Value: false}},
		{name: "true", expr: &BoolConstant{Value: true}},
		{name: "sigma constant", expr: pk},
		{name: "deserialize placeholder", expr: &DeserializeContext{VarID: 7}},
		{name: "constant placeholder", expr: &ConstantPlaceholder{Index: 2}},
		{
			name: "nested connectives",
			expr: &BinOr{
				Left:  &BinAnd{Left: pk, Right: &BoolConstant{Value: true}},
				Right: &DeserializeContext{VarID: 1},
			},
		},
	}

	for _, test := range tests {
		encoded := SerializeExpr(test.expr)
		decoded, err := DeserializeExpr(encoded, registry)
		if err != nil {
			t.Errorf("%s: failed to deserialize: %+v", test.name, err)
			continue
		}
		if !exprEqual(decoded, test.expr) {
			t.Errorf("%s: round-trip mismatch.\nwant: %s\ngot: %s",
				test.name, spew.Sdump(test.expr), spew.Sdump(decoded))
		}
	}
}

func TestDeserializeExprUnknownOpCode(t *testing.T) {
	// Under the default registry an unregistered opcode is a hard failure.
	_, err := DeserializeExpr([]byte{0xE7}, validation.NewRegistry())
	var unknown ruleerrors.ErrUnknownOpCode
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownOpCode, got %+v", err)
	}

	// A Changed status covering the opcode degrades it to a soft-fork signal.
	covering := validation.NewRegistry().
		WithStatus(validation.CheckValidOpCode, validation.StatusChanged{NewValue: []byte{0xE7}})
	_, err = DeserializeExpr([]byte{0xE7}, covering)
	if !validation.IsSoftForkSignal(err) {
		t.Fatalf("expected a soft-fork signal for a covered opcode, got %+v", err)
	}

	// A Changed status not covering it stays hard.
	notCovering := validation.NewRegistry().
		WithStatus(validation.CheckValidOpCode, validation.StatusChanged{NewValue: []byte{0xE8}})
	_, err = DeserializeExpr([]byte{0xE7}, notCovering)
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownOpCode for an uncovered opcode, got %+v", err)
	}
}

func TestDeserializeExprMalformed(t *testing.T) {
	registry := validation.NewRegistry()
	pk := testSigmaProp(t, 6)

	tests := []struct {
		name    string
		encoded []byte
	}{
		{name: "empty input", encoded: []byte{}},
		{name: "truncated operand", encoded: []byte{OpBinAnd, OpTrue}},
		{name: "trailing bytes", encoded: append(SerializeExpr(pk), 0x00)},
		{name: "truncated sigma constant", encoded: SerializeExpr(pk)[:5]},
	}

	for _, test := range tests {
		_, err := DeserializeExpr(test.encoded, registry)
		if !errors.Is(err, ruleerrors.ErrScriptMalformed) {
			t.Errorf("%s: expected ErrScriptMalformed, got %+v", test.name, err)
		}
	}
}

func TestErgoTreeRoundTrip(t *testing.T) {
	pk := testSigmaProp(t, 7)
	registry := validation.NewRegistry()
	original := NewErgoTree(1, &BinAnd{Left: pk, Right: &BoolConstant{Value: true}})

	parsed := ParseErgoTree(original.Bytes, registry)
	if parsed.ParseError != nil {
		t.Fatalf("failed to parse a valid container: %+v", parsed.ParseError)
	}
	if parsed.Version != 1 {
		t.Errorf("expected version 1, got %d", parsed.Version)
	}
	if parsed.SegregatedConstants {
		t.Error("the container shouldn't be marked constant-segregated")
	}
	if !exprEqual(parsed.Root, original.Root) {
		t.Error("the root expression didn't round-trip")
	}
	if parsed.Complexity != StructuralComplexity(original.Root) {
		t.Errorf("expected complexity %d, got %d",
			StructuralComplexity(original.Root), parsed.Complexity)
	}
}

func TestErgoTreeConstantSegregation(t *testing.T) {
	pk := testSigmaProp(t, 8)
	registry := validation.NewRegistry()
	tree := &ErgoTree{
		Version:             0,
		SegregatedConstants: true,
		Constants:           []Expr{pk, &BoolConstant{Value: true}},
		Root: &BinAnd{
			Left:  &ConstantPlaceholder{Index: 0},
			Right: &ConstantPlaceholder{Index: 1},
		},
	}
	encoded := SerializeErgoTree(tree)

	parsed := ParseErgoTree(encoded, registry)
	if parsed.ParseError != nil {
		t.Fatalf("failed to parse a segregated container: %+v", parsed.ParseError)
	}
	if !parsed.SegregatedConstants {
		t.Fatal("the segregation flag was lost")
	}
	if len(parsed.Constants) != 2 {
		t.Fatalf("expected 2 pool constants, got %d", len(parsed.Constants))
	}

	proposition, err := parsed.Proposition()
	if err != nil {
		t.Fatalf("failed to propositionize: %+v", err)
	}
	expected := &BinAnd{Left: pk, Right: &BoolConstant{Value: true}}
	if !exprEqual(proposition, expected) {
		t.Errorf("placeholders weren't inlined.\nwant: %s\ngot: %s",
			spew.Sdump(expected), spew.Sdump(proposition))
	}
}

func TestErgoTreeRecordsParseErrors(t *testing.T) {
	registry := validation.NewRegistry()

	tests := []struct {
		name    string
		encoded []byte
	}{
		{name: "empty", encoded: []byte{}},
		{name: "unknown opcode", encoded: []byte{0x00, 0xE7}},
		{name: "truncated", encoded: []byte{0x00, OpBinAnd, OpTrue}},
		{name: "trailing bytes", encoded: []byte{0x00, OpTrue, OpTrue}},
		{name: "non-constant pool entry", encoded: []byte{0x10, 1, OpBinAnd, OpTrue, OpTrue, OpTrue}},
	}

	for _, test := range tests {
		tree := ParseErgoTree(test.encoded, registry)
		if tree.ParseError == nil {
			t.Errorf("%s: expected a recorded parse error", test.name)
			continue
		}
		if tree.Root != nil {
			t.Errorf("%s: a failed parse shouldn't leave a root", test.name)
		}
	}
}

func TestErgoTreePropositionOutOfRangePlaceholder(t *testing.T) {
	tree := &ErgoTree{
		SegregatedConstants: true,
		Constants:           []Expr{&BoolConstant{Value: true}},
		Root:                &ConstantPlaceholder{Index: 5},
	}
	_, err := tree.Proposition()
	if !errors.Is(err, ruleerrors.ErrScriptMalformed) {
		t.Fatalf("expected ErrScriptMalformed, got %+v", err)
	}
}

func TestRewriteIsBottomUpAndImmutable(t *testing.T) {
	original := &BinAnd{
		Left:  &DeserializeContext{VarID: 1},
		Right: &BinOr{Left: &BoolConstant{Value: false}, Right: &DeserializeContext{VarID: 2}},
	}
	originalBytes := SerializeExpr(original)

	rewritten, err := Rewrite(original, func(expr Expr) (Expr, error) {
		if _, ok := expr.(*DeserializeContext); ok {
			return &BoolConstant{Value: true}, nil
		}
		return expr, nil
	})
	if err != nil {
		t.Fatalf("rewrite failed: %+v", err)
	}
	if ContainsDeserialize(rewritten) {
		t.Error("the rewrite left placeholders behind")
	}
	if !bytes.Equal(SerializeExpr(original), originalBytes) {
		t.Error("the rewrite mutated its input")
	}
}

func TestIsSigmaShaped(t *testing.T) {
	pk := testSigmaProp(t, 9)

	tests := []struct {
		name     string
		expr     Expr
		expected bool
	}{
		{name: "bool constant", expr: &BoolConstant{Value: true}, expected: true},
		{name: "sigma constant", expr: pk, expected: true},
		{name: "connective over constants", expr: &BinAnd{Left: pk, Right: pk}, expected: true},
		{name: "unresolved placeholder", expr: &DeserializeContext{VarID: 1}, expected: false},
		{
			name:     "placeholder under a connective",
			expr:     &BinOr{Left: pk, Right: &DeserializeContext{VarID: 1}},
			expected: false,
		},
		{name: "constant placeholder", expr: &ConstantPlaceholder{Index: 0}, expected: false},
	}

	for _, test := range tests {
		if got := IsSigmaShaped(test.expr); got != test.expected {
			t.Errorf("%s: expected %t, got %t", test.name, test.expected, got)
		}
	}
}

func TestDecoderRegistryCoversEveryOpcode(t *testing.T) {
	opcodes := []byte{OpFalse, OpTrue, OpSigmaPropConstant, OpBinAnd, OpBinOr,
		OpDeserializeContext, OpConstantPlaceholder}
	for _, opCode := range opcodes {
		if decoderRegistry[opCode] == nil {
			t.Errorf("opcode 0x%02X has no registered decoder", opCode)
		}
	}
}
