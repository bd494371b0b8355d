package hashes

import (
	"hash"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/model/externalapi"
)

const (
	fiatShamirDomain = "FiatShamirTranscriptHash"
	treeDigestDomain = "ScriptTreeDigestHash"
)

// HashWriter is used to incrementally hash data without concatenating all of
// the data to a single buffer. It exposes an io.Writer api and a Finalize
// function to get the resulting hash. The used hash function is blake2b.
// This can only be created via one of the domain separated constructors.
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(sum[:0]))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

func newDomainSeparatedWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewFiatShamirHashWriter returns a new HashWriter used for hashing
// sigma-protocol transcripts into challenges.
func NewFiatShamirHashWriter() HashWriter {
	return newDomainSeparatedWriter(fiatShamirDomain)
}

// NewTreeDigestHashWriter returns a new HashWriter used for fingerprinting
// serialized script trees (cache keys, diagnostics).
func NewTreeDigestHashWriter() HashWriter {
	return newDomainSeparatedWriter(treeDigestDomain)
}
