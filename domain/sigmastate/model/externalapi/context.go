package externalapi

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/validation"
)

// VerificationContext is the read-only snapshot a single script verification
// runs against. Its invariants are checked once at construction and assumed
// everywhere downstream.
type VerificationContext struct {
	Height             uint64
	LastBlockStateRoot []byte
	Headers            []*DomainHeader
	PreHeader          *DomainPreHeader
	SpentInputs        []*DomainBox
	DataInputs         []*DomainBox
	Transaction        *DomainTransaction
	SelfIndex          int
	Extension          ContextExtension
	Registry           *validation.Registry
	CostLimit          uint64
	InitCost           uint64
	ActivatedVersion   uint8
}

// NewVerificationContext checks the context contract and returns the
// snapshot. The checks cover only internal consistency; the caller is
// responsible for the snapshot actually describing the chain state.
func NewVerificationContext(height uint64, lastBlockStateRoot []byte, headers []*DomainHeader,
	preHeader *DomainPreHeader, spentInputs []*DomainBox, dataInputs []*DomainBox,
	transaction *DomainTransaction, selfIndex int, extension ContextExtension,
	registry *validation.Registry, costLimit uint64, initCost uint64, activatedVersion uint8) (*VerificationContext, error) {

	if selfIndex < 0 || selfIndex >= len(spentInputs) {
		return nil, errors.Errorf("self index %d doesn't address any of the %d spent inputs",
			selfIndex, len(spentInputs))
	}
	if transaction == nil {
		return nil, errors.New("the spending transaction is missing")
	}
	if len(dataInputs) != len(transaction.DataInputIDs) {
		return nil, errors.Errorf("%d data inputs were supplied but the transaction declares %d references",
			len(dataInputs), len(transaction.DataInputIDs))
	}
	for i, dataInput := range dataInputs {
		if !dataInput.ID.Equal(transaction.DataInputIDs[i]) {
			return nil, errors.Errorf("data input %d is %s but the transaction references %s",
				i, dataInput.ID, transaction.DataInputIDs[i])
		}
	}
	err := checkHeaderChain(headers, lastBlockStateRoot, preHeader)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, errors.New("a validation registry is required")
	}

	return &VerificationContext{
		Height:             height,
		LastBlockStateRoot: lastBlockStateRoot,
		Headers:            headers,
		PreHeader:          preHeader,
		SpentInputs:        spentInputs,
		DataInputs:         dataInputs,
		Transaction:        transaction,
		SelfIndex:          selfIndex,
		Extension:          extension,
		Registry:           registry,
		CostLimit:          costLimit,
		InitCost:           initCost,
		ActivatedVersion:   activatedVersion,
	}, nil
}

// checkHeaderChain verifies that the recent-headers list is newest first and
// parent-linked, that its newest entry carries the supplied state root, and
// that the pre-header extends it.
func checkHeaderChain(headers []*DomainHeader, lastBlockStateRoot []byte, preHeader *DomainPreHeader) error {
	if len(headers) == 0 {
		return nil
	}
	for i := 0; i+1 < len(headers); i++ {
		if !headers[i].ParentID.Equal(headers[i+1].ID) {
			return errors.Errorf("header %d has parent %s but the next older header is %s",
				i, headers[i].ParentID, headers[i+1].ID)
		}
	}
	if !bytes.Equal(headers[0].StateRoot, lastBlockStateRoot) {
		return errors.Errorf("the newest header's state root %x doesn't match the supplied last-block root %x",
			headers[0].StateRoot, lastBlockStateRoot)
	}
	if preHeader != nil && !preHeader.ParentID.Equal(headers[0].ID) {
		return errors.Errorf("the pre-header's parent %s isn't the newest header %s",
			preHeader.ParentID, headers[0].ID)
	}
	return nil
}

// Self returns the box whose script is being verified.
func (ctx *VerificationContext) Self() *DomainBox {
	return ctx.SpentInputs[ctx.SelfIndex]
}
