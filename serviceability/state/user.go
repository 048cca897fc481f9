package state

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// User is an end-user tunnel terminated on a device. Publishers and
// Subscribers list the multicast groups the user is joined to in each
// role.
type User struct {
	Owner           solana.PublicKey
	BumpSeed        uint8
	UserType        UserType
	CyoaType        UserCYOA
	Status          UserStatus
	TenantPK        solana.PublicKey
	DevicePK        solana.PublicKey
	ClientIP        netip.Addr
	DzIP            netip.Addr
	TunnelID        uint16
	TunnelNet       netip.Prefix
	ValidatorPubkey solana.PublicKey
	Publishers      []solana.PublicKey
	Subscribers     []solana.PublicKey
}

// Type implements Record.
func (u *User) Type() AccountType { return AccountTypeUser }

// SizeGivenGroupLens returns the serialized size for the given multicast
// membership counts.
func (u *User) SizeGivenGroupLens(publishers, subscribers int) int {
	return 1 + pubkeySize + 1 + 3 +
		2*pubkeySize + 2*ipv4Size + 2 + ipv4NetSize + pubkeySize +
		vecSize(publishers, pubkeySize) + vecSize(subscribers, pubkeySize)
}

// Size returns the current serialized size.
func (u *User) Size() int {
	return u.SizeGivenGroupLens(len(u.Publishers), len(u.Subscribers))
}

// Serialize renders the record in its account layout.
func (u *User) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeUser))
	e.Pubkey(u.Owner)
	e.U8(u.BumpSeed)
	e.U8(uint8(u.UserType))
	e.U8(uint8(u.CyoaType))
	e.U8(uint8(u.Status))
	e.Pubkey(u.TenantPK)
	e.Pubkey(u.DevicePK)
	e.IPv4(orZero4(u.ClientIP))
	e.IPv4(orZero4(u.DzIP))
	e.U16(u.TunnelID)
	e.IPv4Net(orZeroNet(u.TunnelNet))
	e.Pubkey(u.ValidatorPubkey)
	e.VecLen(len(u.Publishers))
	for _, k := range u.Publishers {
		e.Pubkey(k)
	}
	e.VecLen(len(u.Subscribers))
	for _, k := range u.Subscribers {
		e.Pubkey(k)
	}
	return e.Bytes()
}

// DeserializeUser parses a User account.
func DeserializeUser(data []byte) (*User, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeUser); err != nil {
		return nil, err
	}
	u := &User{}
	u.Owner = d.Pubkey()
	u.BumpSeed = d.U8()
	u.UserType = UserType(d.U8())
	u.CyoaType = UserCYOA(d.U8())
	u.Status = UserStatus(d.U8())
	u.TenantPK = d.Pubkey()
	u.DevicePK = d.Pubkey()
	u.ClientIP = d.IPv4()
	u.DzIP = d.IPv4()
	u.TunnelID = d.U16()
	u.TunnelNet = d.IPv4Net()
	u.ValidatorPubkey = d.Pubkey()
	for n := d.VecLen(); n > 0; n-- {
		u.Publishers = append(u.Publishers, d.Pubkey())
	}
	for n := d.VecLen(); n > 0; n-- {
		u.Subscribers = append(u.Subscribers, d.Pubkey())
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// IsPublisher reports whether the user publishes to group.
func (u *User) IsPublisher(group solana.PublicKey) bool {
	return containsKey(u.Publishers, group)
}

// IsSubscriber reports whether the user subscribes to group.
func (u *User) IsSubscriber(group solana.PublicKey) bool {
	return containsKey(u.Subscribers, group)
}

func containsKey(keys []solana.PublicKey, key solana.PublicKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func removeKey(keys []solana.PublicKey, key solana.PublicKey) []solana.PublicKey {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
