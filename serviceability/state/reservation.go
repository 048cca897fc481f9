package state

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Reservation holds one seat on a device for a client IP ahead of its user
// creation. While it lives, the seat counts against the device's max_users.
type Reservation struct {
	Owner    solana.PublicKey
	BumpSeed uint8
	DevicePK solana.PublicKey
	ClientIP netip.Addr
}

// Type implements Record.
func (r *Reservation) Type() AccountType { return AccountTypeReservation }

// Size returns the serialized size; Reservation is fixed-width.
func (r *Reservation) Size() int {
	return 1 + pubkeySize + 1 + pubkeySize + ipv4Size
}

// Serialize renders the record in its account layout.
func (r *Reservation) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeReservation))
	e.Pubkey(r.Owner)
	e.U8(r.BumpSeed)
	e.Pubkey(r.DevicePK)
	e.IPv4(orZero4(r.ClientIP))
	return e.Bytes()
}

// DeserializeReservation parses a Reservation account.
func DeserializeReservation(data []byte) (*Reservation, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeReservation); err != nil {
		return nil, err
	}
	r := &Reservation{}
	r.Owner = d.Pubkey()
	r.BumpSeed = d.U8()
	r.DevicePK = d.Pubkey()
	r.ClientIP = d.IPv4()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return r, nil
}
