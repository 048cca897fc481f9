package state

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Exchange is a metro interconnection point. Up to two devices anchor the
// exchange's BGP presence; their slots are zero when unset.
type Exchange struct {
	Owner          solana.PublicKey
	Index          bin.Uint128
	BumpSeed       uint8
	ReferenceCount uint32
	Status         ExchangeStatus
	Device1PK      solana.PublicKey
	Device2PK      solana.PublicKey
	BGPCommunity   uint32
	Code           string
	Name           string
	Lat            float64
	Lng            float64
}

// Type implements Record.
func (x *Exchange) Type() AccountType { return AccountTypeExchange }

// SizeGivenStringLens returns the serialized size for the given string
// field lengths.
func (x *Exchange) SizeGivenStringLens(code, name int) int {
	return 1 + pubkeySize + 16 + 1 + 4 + 1 + 2*pubkeySize + 4 + (4 + code) + (4 + name) + 8 + 8
}

// Size returns the current serialized size.
func (x *Exchange) Size() int {
	return x.SizeGivenStringLens(len(x.Code), len(x.Name))
}

// Serialize renders the record in its account layout.
func (x *Exchange) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeExchange))
	e.Pubkey(x.Owner)
	e.U128(x.Index)
	e.U8(x.BumpSeed)
	e.U32(x.ReferenceCount)
	e.U8(uint8(x.Status))
	e.Pubkey(x.Device1PK)
	e.Pubkey(x.Device2PK)
	e.U32(x.BGPCommunity)
	e.String(x.Code)
	e.String(x.Name)
	e.F64(x.Lat)
	e.F64(x.Lng)
	return e.Bytes()
}

// DeserializeExchange parses an Exchange account.
func DeserializeExchange(data []byte) (*Exchange, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeExchange); err != nil {
		return nil, err
	}
	x := &Exchange{}
	x.Owner = d.Pubkey()
	x.Index = d.U128()
	x.BumpSeed = d.U8()
	x.ReferenceCount = d.U32()
	x.Status = ExchangeStatus(d.U8())
	x.Device1PK = d.Pubkey()
	x.Device2PK = d.Pubkey()
	x.BGPCommunity = d.U32()
	x.Code = d.String()
	x.Name = d.String()
	x.Lat = d.F64()
	x.Lng = d.F64()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return x, nil
}
