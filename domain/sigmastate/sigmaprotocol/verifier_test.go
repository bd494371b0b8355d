package sigmaprotocol

import (
	"testing"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/sigma"
)

func newDlogInput(t *testing.T) *DlogProverInput {
	t.Helper()
	input, err := NewDlogProverInput()
	if err != nil {
		t.Fatalf("failed to generate a dlog secret: %+v", err)
	}
	return input
}

func newDHTupleInput(t *testing.T) *DHTupleProverInput {
	t.Helper()
	g := sigma.Generator()
	hSecret, err := randomScalar()
	if err != nil {
		t.Fatalf("failed to generate a base: %+v", err)
	}
	input, err := NewDHTupleProverInput(g, g.Exp(hSecret))
	if err != nil {
		t.Fatalf("failed to generate a dh-tuple secret: %+v", err)
	}
	return input
}

func proveOrFatal(t *testing.T, prover *Prover, proposition sigma.SigmaBoolean, message []byte) []byte {
	t.Helper()
	proof, err := prover.Prove(proposition, message)
	if err != nil {
		t.Fatalf("failed to prove: %+v", err)
	}
	return proof
}

func TestDlogRoundTrip(t *testing.T) {
	input := newDlogInput(t)
	message := []byte("spend box 1")

	proof := proveOrFatal(t, NewProver(input), input.PublicImage(), message)
	if !Verify(input.PublicImage(), message, proof) {
		t.Fatal("a valid dlog proof was rejected")
	}
}

func TestDHTupleRoundTrip(t *testing.T) {
	input := newDHTupleInput(t)
	message := []byte("spend box 2")

	proof := proveOrFatal(t, NewProver(input), input.PublicImage(), message)
	if !Verify(input.PublicImage(), message, proof) {
		t.Fatal("a valid dh-tuple proof was rejected")
	}
}

func TestAndBothSecrets(t *testing.T) {
	input1 := newDlogInput(t)
	input2 := newDlogInput(t)
	proposition := &sigma.And{Children: []sigma.SigmaBoolean{
		input1.PublicImage(), input2.PublicImage(),
	}}
	message := []byte("two-signer spend")

	proof := proveOrFatal(t, NewProver(input1, input2), proposition, message)
	if !Verify(proposition, message, proof) {
		t.Fatal("a valid AND proof was rejected")
	}

	// Flipping any message byte must invalidate the proof.
	for i := range message {
		tampered := append([]byte{}, message...)
		tampered[i] ^= 0x01
		if Verify(proposition, tampered, proof) {
			t.Fatalf("the proof verified under a message with byte %d flipped", i)
		}
	}
}

func TestAndMissingSecret(t *testing.T) {
	input1 := newDlogInput(t)
	input2 := newDlogInput(t)
	proposition := &sigma.And{Children: []sigma.SigmaBoolean{
		input1.PublicImage(), input2.PublicImage(),
	}}

	_, err := NewProver(input1).Prove(proposition, []byte("msg"))
	if err == nil {
		t.Fatal("proving an AND without all secrets should fail")
	}
}

func TestOrOneSecret(t *testing.T) {
	held := newDlogInput(t)
	notHeld := newDlogInput(t)
	message := []byte("either signer spend")

	// Whichever side holds the secret, the simulated branch must still check
	// out under commitment reconstruction.
	propositions := []*sigma.Or{
		{Children: []sigma.SigmaBoolean{held.PublicImage(), notHeld.PublicImage()}},
		{Children: []sigma.SigmaBoolean{notHeld.PublicImage(), held.PublicImage()}},
	}
	for i, proposition := range propositions {
		proof := proveOrFatal(t, NewProver(held), proposition, message)
		if !Verify(proposition, message, proof) {
			t.Fatalf("a valid OR proof (variant %d) was rejected", i)
		}
	}
}

func TestOrMixedLeafKinds(t *testing.T) {
	held := newDHTupleInput(t)
	notHeld := newDlogInput(t)
	proposition := &sigma.Or{Children: []sigma.SigmaBoolean{
		notHeld.PublicImage(), held.PublicImage(),
	}}
	message := []byte("dht or dlog")

	proof := proveOrFatal(t, NewProver(held), proposition, message)
	if !Verify(proposition, message, proof) {
		t.Fatal("a valid mixed OR proof was rejected")
	}
}

func TestThresholdTwoOfThree(t *testing.T) {
	input1 := newDlogInput(t)
	input2 := newDlogInput(t)
	input3 := newDlogInput(t)
	proposition := &sigma.Threshold{K: 2, Children: []sigma.SigmaBoolean{
		input1.PublicImage(), input2.PublicImage(), input3.PublicImage(),
	}}
	message := []byte("2-of-3 spend")

	// Any pair of secrets suffices.
	pairs := [][]PrivateInput{
		{input1, input2},
		{input1, input3},
		{input2, input3},
	}
	for i, pair := range pairs {
		proof := proveOrFatal(t, NewProver(pair...), proposition, message)
		if !Verify(proposition, message, proof) {
			t.Fatalf("a valid threshold proof (pair %d) was rejected", i)
		}
	}

	// Too few secrets can't prove.
	_, err := NewProver(input1).Prove(proposition, message)
	if err == nil {
		t.Fatal("proving a 2-of-3 with one secret should fail")
	}
	_, err = NewProver().Prove(proposition, message)
	if err == nil {
		t.Fatal("proving a 2-of-3 with no secrets should fail")
	}
}

func TestNestedComposition(t *testing.T) {
	input1 := newDlogInput(t)
	input2 := newDlogInput(t)
	notHeld := newDlogInput(t)
	proposition := &sigma.And{Children: []sigma.SigmaBoolean{
		input1.PublicImage(),
		&sigma.Or{Children: []sigma.SigmaBoolean{
			notHeld.PublicImage(), input2.PublicImage(),
		}},
	}}
	message := []byte("nested spend")

	proof := proveOrFatal(t, NewProver(input1, input2), proposition, message)
	if !Verify(proposition, message, proof) {
		t.Fatal("a valid nested proof was rejected")
	}
}

func TestTamperedProofRejected(t *testing.T) {
	input := newDlogInput(t)
	message := []byte("tamper target")
	proof := proveOrFatal(t, NewProver(input), input.PublicImage(), message)

	// Flipping any byte of the root challenge must fail deterministically.
	for i := 0; i < challengeSize; i++ {
		tampered := append([]byte{}, proof...)
		tampered[i] ^= 0x01
		if Verify(input.PublicImage(), message, tampered) {
			t.Fatalf("the proof verified with challenge byte %d flipped", i)
		}
	}

	// Truncated and padded proofs are parse failures, not panics.
	if Verify(input.PublicImage(), message, proof[:len(proof)-1]) {
		t.Fatal("a truncated proof verified")
	}
	if Verify(input.PublicImage(), message, append(append([]byte{}, proof...), 0x00)) {
		t.Fatal("a padded proof verified")
	}
	if Verify(input.PublicImage(), message, nil) {
		t.Fatal("an empty proof verified against a nontrivial proposition")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	input := newDlogInput(t)
	other := newDlogInput(t)
	message := []byte("wrong key")

	// A proof built for one key must not verify against another.
	proof := proveOrFatal(t, NewProver(input), input.PublicImage(), message)
	if Verify(other.PublicImage(), message, proof) {
		t.Fatal("a proof verified against a different public key")
	}
}

func TestTrivialPropositions(t *testing.T) {
	if !Verify(sigma.TrivialTrueProp, []byte("msg"), nil) {
		t.Error("the trivially true proposition with an empty proof was rejected")
	}
	if Verify(sigma.TrivialTrueProp, []byte("msg"), []byte{0x01}) {
		t.Error("the trivially true proposition accepted a nonempty proof")
	}
	if Verify(sigma.TrivialFalseProp, []byte("msg"), nil) {
		t.Error("the trivially false proposition was accepted")
	}

	proof, err := NewProver().Prove(sigma.TrivialTrueProp, []byte("msg"))
	if err != nil {
		t.Fatalf("proving the trivially true proposition failed: %+v", err)
	}
	if len(proof) != 0 {
		t.Errorf("expected an empty proof, got %d bytes", len(proof))
	}
	_, err = NewProver().Prove(sigma.TrivialFalseProp, []byte("msg"))
	if err == nil {
		t.Error("proving the trivially false proposition should fail")
	}
}
