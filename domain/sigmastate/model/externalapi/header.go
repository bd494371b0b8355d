package externalapi

// DomainHeader is the slice of a block header the verification context
// exposes to scripts. Headers are listed newest first and must be
// parent-linked.
type DomainHeader struct {
	ID        *DomainHash
	ParentID  *DomainHash
	Version   uint8
	StateRoot []byte
	Timestamp int64
	Height    uint64
}

// DomainPreHeader is the header-in-the-making of the block the spending
// transaction is being validated for. Its parent must be the newest full
// header.
type DomainPreHeader struct {
	ParentID       *DomainHash
	Version        uint8
	Timestamp      int64
	Height         uint64
	MinerPublicKey []byte
}
