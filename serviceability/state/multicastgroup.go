package state

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// MulticastGroup is a multicast distribution tree with a group IP drawn
// from the multicast block. Counts track live publisher/subscriber
// memberships across users and gate deletion.
type MulticastGroup struct {
	Owner           solana.PublicKey
	Index           bin.Uint128
	BumpSeed        uint8
	TenantPK        solana.PublicKey
	Status          MulticastGroupStatus
	MulticastIP     netip.Addr
	MaxBandwidth    uint64
	PublisherCount  uint32
	SubscriberCount uint32
	Code            string
}

// Type implements Record.
func (g *MulticastGroup) Type() AccountType { return AccountTypeMulticastGroup }

// SizeGivenCodeLen returns the serialized size for the given code length.
func (g *MulticastGroup) SizeGivenCodeLen(code int) int {
	return 1 + pubkeySize + 16 + 1 + pubkeySize + 1 + ipv4Size + 8 + 4 + 4 + (4 + code)
}

// Size returns the current serialized size.
func (g *MulticastGroup) Size() int {
	return g.SizeGivenCodeLen(len(g.Code))
}

// Serialize renders the record in its account layout.
func (g *MulticastGroup) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeMulticastGroup))
	e.Pubkey(g.Owner)
	e.U128(g.Index)
	e.U8(g.BumpSeed)
	e.Pubkey(g.TenantPK)
	e.U8(uint8(g.Status))
	e.IPv4(orZero4(g.MulticastIP))
	e.U64(g.MaxBandwidth)
	e.U32(g.PublisherCount)
	e.U32(g.SubscriberCount)
	e.String(g.Code)
	return e.Bytes()
}

// DeserializeMulticastGroup parses a MulticastGroup account.
func DeserializeMulticastGroup(data []byte) (*MulticastGroup, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeMulticastGroup); err != nil {
		return nil, err
	}
	g := &MulticastGroup{}
	g.Owner = d.Pubkey()
	g.Index = d.U128()
	g.BumpSeed = d.U8()
	g.TenantPK = d.Pubkey()
	g.Status = MulticastGroupStatus(d.U8())
	g.MulticastIP = d.IPv4()
	g.MaxBandwidth = d.U64()
	g.PublisherCount = d.U32()
	g.SubscriberCount = d.U32()
	g.Code = d.String()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Empty reports whether no membership references the group.
func (g *MulticastGroup) Empty() bool {
	return g.PublisherCount == 0 && g.SubscriberCount == 0
}
