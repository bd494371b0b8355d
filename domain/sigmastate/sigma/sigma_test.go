package sigma

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
)

func scalarFromInt(t *testing.T, value uint32) *secp256k1.ModNScalar {
	t.Helper()
	return new(secp256k1.ModNScalar).SetInt(value)
}

func testDlog(t *testing.T, secret uint32) *ProveDlog {
	t.Helper()
	return &ProveDlog{H: ExpGenerator(scalarFromInt(t, secret))}
}

func TestGroupElementArithmetic(t *testing.T) {
	g := Generator()
	two := scalarFromInt(t, 2)
	three := scalarFromInt(t, 3)
	five := scalarFromInt(t, 5)

	// g^2 * g^3 == g^5
	product := g.Exp(two).Mul(g.Exp(three))
	if !product.Equal(g.Exp(five)) {
		t.Error("g^2 * g^3 != g^5")
	}

	// An element times its inverse is the identity.
	if !g.Exp(two).Mul(g.Exp(two).Inverse()).IsIdentity() {
		t.Error("g^2 * (g^2)^-1 is not the identity")
	}

	// The identity is the neutral element.
	identity := &GroupElement{}
	if !identity.Mul(g).Equal(g) || !g.Mul(identity).Equal(g) {
		t.Error("the identity is not neutral under Mul")
	}
	if !g.Exp(new(secp256k1.ModNScalar)).IsIdentity() {
		t.Error("g^0 is not the identity")
	}
}

func TestGroupElementEncoding(t *testing.T) {
	g := Generator()
	element := g.Exp(scalarFromInt(t, 7))

	decoded, err := DecodeGroupElement(element.Encode())
	if err != nil {
		t.Fatalf("failed to decode a valid encoding: %+v", err)
	}
	if !decoded.Equal(element) {
		t.Error("the encoding didn't round-trip")
	}

	identity := &GroupElement{}
	decodedIdentity, err := DecodeGroupElement(identity.Encode())
	if err != nil {
		t.Fatalf("failed to decode the identity encoding: %+v", err)
	}
	if !decodedIdentity.IsIdentity() {
		t.Error("the identity encoding didn't round-trip")
	}

	_, err = DecodeGroupElement(make([]byte, 32))
	if err == nil {
		t.Error("expected a size error for a 32-byte encoding")
	}
	garbage := make([]byte, 33)
	garbage[0] = 0x05
	_, err = DecodeGroupElement(garbage)
	if err == nil {
		t.Error("expected a parse error for an invalid prefix")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	pk1 := testDlog(t, 11)
	pk2 := testDlog(t, 12)
	pk3 := testDlog(t, 13)
	g := Generator()
	h := g.Exp(scalarFromInt(t, 17))
	dht := &ProveDHTuple{
		G: g,
		H: h,
		U: g.Exp(scalarFromInt(t, 19)),
		V: h.Exp(scalarFromInt(t, 19)),
	}

	tests := []struct {
		name        string
		proposition SigmaBoolean
	}{
		{name: "trivial true", proposition: TrivialTrueProp},
		{name: "trivial false", proposition: TrivialFalseProp},
		{name: "dlog leaf", proposition: pk1},
		{name: "dh-tuple leaf", proposition: dht},
		{name: "and", proposition: &And{Children: []SigmaBoolean{pk1, pk2}}},
		{name: "or", proposition: &Or{Children: []SigmaBoolean{pk1, dht}}},
		{name: "threshold", proposition: &Threshold{K: 2, Children: []SigmaBoolean{pk1, pk2, pk3}}},
		{
			name: "nested",
			proposition: &Or{Children: []SigmaBoolean{
				&And{Children: []SigmaBoolean{pk1, pk2}},
				&Threshold{K: 2, Children: []SigmaBoolean{pk1, pk2, pk3}},
			}},
		},
	}

	for _, test := range tests {
		encoded := Serialize(test.proposition)
		decoded, err := Deserialize(encoded)
		if err != nil {
			t.Errorf("%s: failed to deserialize: %+v", test.name, err)
			continue
		}
		if !Equal(decoded, test.proposition) {
			t.Errorf("%s: round-trip mismatch.\nwant: %s\ngot: %s",
				test.name, spew.Sdump(test.proposition), spew.Sdump(decoded))
		}
	}
}

func TestDeserializeRejectsMalformedInput(t *testing.T) {
	pk := testDlog(t, 21)

	tests := []struct {
		name    string
		encoded []byte
	}{
		{name: "empty input", encoded: []byte{}},
		{name: "truncated leaf", encoded: Serialize(pk)[:10]},
		{name: "trailing bytes", encoded: append(Serialize(pk), 0x00)},
		{name: "single-child connective", encoded: []byte{OpAnd, 1, OpTrivialTrue}},
		{name: "threshold k over children", encoded: append([]byte{OpThreshold, 3, 2}, append(Serialize(pk), Serialize(pk)...)...)},
	}

	for _, test := range tests {
		_, err := Deserialize(test.encoded)
		if !errors.Is(err, ruleerrors.ErrScriptMalformed) {
			t.Errorf("%s: expected ErrScriptMalformed, got %+v", test.name, err)
		}
	}
}

func TestDeserializeUnknownOpCode(t *testing.T) {
	_, err := Deserialize([]byte{0xEE})
	var unknown ruleerrors.ErrUnknownOpCode
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownOpCode, got %+v", err)
	}
	if unknown.OpCode != 0xEE {
		t.Errorf("expected opcode 0xEE in the error, got %#02x", unknown.OpCode)
	}
}

func TestDeserializeDepthLimit(t *testing.T) {
	encoded := Serialize(testDlog(t, 22))
	for i := 0; i < 100; i++ {
		encoded = append([]byte{OpAnd, 2, OpTrivialTrue}, encoded...)
	}
	_, err := Deserialize(encoded)
	if !errors.Is(err, ruleerrors.ErrScriptMalformed) {
		t.Fatalf("expected a depth-limit rejection, got %+v", err)
	}
}

func TestNormalization(t *testing.T) {
	pk1 := testDlog(t, 31)
	pk2 := testDlog(t, 32)
	pk3 := testDlog(t, 33)

	tests := []struct {
		name        string
		proposition SigmaBoolean
		expected    SigmaBoolean
	}{
		{name: "and short-circuits on false", proposition: NewAnd(pk1, TrivialFalseProp, pk2), expected: TrivialFalseProp},
		{name: "and drops true children", proposition: NewAnd(TrivialTrueProp, pk1), expected: pk1},
		{name: "and of nothing is true", proposition: NewAnd(TrivialTrueProp, TrivialTrueProp), expected: TrivialTrueProp},
		{name: "or short-circuits on true", proposition: NewOr(pk1, TrivialTrueProp), expected: TrivialTrueProp},
		{name: "or drops false children", proposition: NewOr(TrivialFalseProp, pk2), expected: pk2},
		{name: "or of nothing is false", proposition: NewOr(TrivialFalseProp), expected: TrivialFalseProp},
		{name: "threshold k<=0 is true", proposition: NewThreshold(1, TrivialTrueProp, pk1), expected: TrivialTrueProp},
		{name: "threshold k>n is false", proposition: NewThreshold(3, pk1, TrivialFalseProp, pk2), expected: TrivialFalseProp},
		{name: "threshold k==1 is an or", proposition: NewThreshold(1, pk1, pk2), expected: &Or{Children: []SigmaBoolean{pk1, pk2}}},
		{name: "threshold k==n is an and", proposition: NewThreshold(2, pk1, pk2), expected: &And{Children: []SigmaBoolean{pk1, pk2}}},
		{
			name:        "threshold stays a threshold",
			proposition: NewThreshold(2, pk1, pk2, pk3),
			expected:    &Threshold{K: 2, Children: []SigmaBoolean{pk1, pk2, pk3}},
		},
		{
			name:        "threshold adjusts for trivial children",
			proposition: NewThreshold(2, TrivialTrueProp, pk1, pk2, pk3),
			expected:    &Or{Children: []SigmaBoolean{pk1, pk2, pk3}},
		},
	}

	for _, test := range tests {
		if !Equal(test.proposition, test.expected) {
			t.Errorf("%s:\nwant: %s\ngot: %s",
				test.name, spew.Sdump(test.expected), spew.Sdump(test.proposition))
		}
	}
}

func TestStructuralSize(t *testing.T) {
	pk1 := testDlog(t, 41)
	pk2 := testDlog(t, 42)

	if size := StructuralSize(pk1); size != 1 {
		t.Errorf("expected a leaf to have size 1, got %d", size)
	}
	nested := &Or{Children: []SigmaBoolean{
		&And{Children: []SigmaBoolean{pk1, pk2}},
		pk1,
	}}
	if size := StructuralSize(nested); size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}
}
