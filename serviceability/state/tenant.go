package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Tenant is a legacy (pre-v3) record kept so old deployments keep
// deserializing. New tenancy goes through AccessPass tenant allowlists.
type Tenant struct {
	Owner           solana.PublicKey
	BumpSeed        uint8
	AdministratorPK solana.PublicKey
	TokenAccountPK  solana.PublicKey
	VrfID           uint16
	Code            string
}

// Type implements Record.
func (t *Tenant) Type() AccountType { return AccountTypeTenant }

// SizeGivenCodeLen returns the serialized size for the given code length.
func (t *Tenant) SizeGivenCodeLen(code int) int {
	return 1 + pubkeySize + 1 + 2*pubkeySize + 2 + (4 + code)
}

// Size returns the current serialized size.
func (t *Tenant) Size() int {
	return t.SizeGivenCodeLen(len(t.Code))
}

// Serialize renders the record in its account layout.
func (t *Tenant) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeTenant))
	e.Pubkey(t.Owner)
	e.U8(t.BumpSeed)
	e.Pubkey(t.AdministratorPK)
	e.Pubkey(t.TokenAccountPK)
	e.U16(t.VrfID)
	e.String(t.Code)
	return e.Bytes()
}

// DeserializeTenant parses a Tenant account.
func DeserializeTenant(data []byte) (*Tenant, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeTenant); err != nil {
		return nil, err
	}
	t := &Tenant{}
	t.Owner = d.Pubkey()
	t.BumpSeed = d.U8()
	t.AdministratorPK = d.Pubkey()
	t.TokenAccountPK = d.Pubkey()
	t.VrfID = d.U16()
	t.Code = d.String()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
