package externalapi

// DomainBox is a spendable unit: a value guarded by a serialized script.
type DomainBox struct {
	ID             *DomainHash
	Value          uint64
	ScriptBytes    []byte
	CreationHeight uint64
}

// DomainTransaction is the spending transaction as seen by script
// verification: the boxes it creates plus the ids of the read-only boxes it
// declares as references.
type DomainTransaction struct {
	Outputs      []*DomainBox
	DataInputIDs []*DomainHash
}
