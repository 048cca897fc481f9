package state

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Location is a physical site devices are installed at.
type Location struct {
	Owner          solana.PublicKey
	Index          bin.Uint128
	BumpSeed       uint8
	ReferenceCount uint32
	Status         LocationStatus
	Code           string
	Name           string
	Country        string
	Lat            float64
	Lng            float64
}

// Type implements Record.
func (l *Location) Type() AccountType { return AccountTypeLocation }

// SizeGivenStringLens returns the serialized size for the given string
// field lengths.
func (l *Location) SizeGivenStringLens(code, name, country int) int {
	return 1 + pubkeySize + 16 + 1 + 4 + 1 + (4 + code) + (4 + name) + (4 + country) + 8 + 8
}

// Size returns the current serialized size.
func (l *Location) Size() int {
	return l.SizeGivenStringLens(len(l.Code), len(l.Name), len(l.Country))
}

// Serialize renders the record in its account layout.
func (l *Location) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeLocation))
	e.Pubkey(l.Owner)
	e.U128(l.Index)
	e.U8(l.BumpSeed)
	e.U32(l.ReferenceCount)
	e.U8(uint8(l.Status))
	e.String(l.Code)
	e.String(l.Name)
	e.String(l.Country)
	e.F64(l.Lat)
	e.F64(l.Lng)
	return e.Bytes()
}

// DeserializeLocation parses a Location account.
func DeserializeLocation(data []byte) (*Location, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeLocation); err != nil {
		return nil, err
	}
	l := &Location{}
	l.Owner = d.Pubkey()
	l.Index = d.U128()
	l.BumpSeed = d.U8()
	l.ReferenceCount = d.U32()
	l.Status = LocationStatus(d.U8())
	l.Code = d.String()
	l.Name = d.String()
	l.Country = d.String()
	l.Lat = d.F64()
	l.Lng = d.F64()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return l, nil
}
