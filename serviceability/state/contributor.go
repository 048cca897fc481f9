package state

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Contributor is an operator contributing devices and links to the fabric.
// OpsManagerPK may sign operational instructions on the owner's behalf.
type Contributor struct {
	Owner          solana.PublicKey
	Index          bin.Uint128
	BumpSeed       uint8
	ReferenceCount uint32
	Status         ContributorStatus
	OpsManagerPK   solana.PublicKey
	Code           string
}

// Type implements Record.
func (c *Contributor) Type() AccountType { return AccountTypeContributor }

// SizeGivenCodeLen returns the serialized size for the given code length.
func (c *Contributor) SizeGivenCodeLen(code int) int {
	return 1 + pubkeySize + 16 + 1 + 4 + 1 + pubkeySize + (4 + code)
}

// Size returns the current serialized size.
func (c *Contributor) Size() int {
	return c.SizeGivenCodeLen(len(c.Code))
}

// Serialize renders the record in its account layout.
func (c *Contributor) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeContributor))
	e.Pubkey(c.Owner)
	e.U128(c.Index)
	e.U8(c.BumpSeed)
	e.U32(c.ReferenceCount)
	e.U8(uint8(c.Status))
	e.Pubkey(c.OpsManagerPK)
	e.String(c.Code)
	return e.Bytes()
}

// DeserializeContributor parses a Contributor account.
func DeserializeContributor(data []byte) (*Contributor, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeContributor); err != nil {
		return nil, err
	}
	c := &Contributor{}
	c.Owner = d.Pubkey()
	c.Index = d.U128()
	c.BumpSeed = d.U8()
	c.ReferenceCount = d.U32()
	c.Status = ContributorStatus(d.U8())
	c.OpsManagerPK = d.Pubkey()
	c.Code = d.String()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Signer reports whether key may act for this contributor.
func (c *Contributor) Signer(key solana.PublicKey) bool {
	return key == c.Owner || key == c.OpsManagerPK
}
