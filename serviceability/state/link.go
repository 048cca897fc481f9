package state

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Link is a bidirectional circuit between two devices. Side A/Z ordering is
// an authoring convention. OnchainAllocated records whether tunnel_id and
// tunnel_net were drawn from resource extensions, so the close path frees
// exactly what activation took.
type Link struct {
	Owner            solana.PublicKey
	Index            bin.Uint128
	BumpSeed         uint8
	SideAPK          solana.PublicKey
	SideZPK          solana.PublicKey
	ContributorPK    solana.PublicKey
	LinkType         LinkType
	Status           LinkStatus
	DesiredStatus    LinkStatus
	Health           LinkHealth
	Code             string
	SideAIfaceName   string
	SideZIfaceName   string
	Bandwidth        uint64
	MTU              uint16
	DelayNs          uint64
	JitterNs         uint64
	DelayOverrideNs  uint64
	TunnelID         uint16
	TunnelNet        netip.Prefix
	OnchainAllocated bool
}

// Type implements Record.
func (l *Link) Type() AccountType { return AccountTypeLink }

// SizeGivenStringLens returns the serialized size for the given string
// field lengths.
func (l *Link) SizeGivenStringLens(code, sideAIface, sideZIface int) int {
	return 1 + pubkeySize + 16 + 1 +
		3*pubkeySize + 4 +
		(4 + code) + (4 + sideAIface) + (4 + sideZIface) +
		8 + 2 + 8 + 8 + 8 + 2 + ipv4NetSize + 1
}

// Size returns the current serialized size.
func (l *Link) Size() int {
	return l.SizeGivenStringLens(len(l.Code), len(l.SideAIfaceName), len(l.SideZIfaceName))
}

// Serialize renders the record in its account layout.
func (l *Link) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeLink))
	e.Pubkey(l.Owner)
	e.U128(l.Index)
	e.U8(l.BumpSeed)
	e.Pubkey(l.SideAPK)
	e.Pubkey(l.SideZPK)
	e.Pubkey(l.ContributorPK)
	e.U8(uint8(l.LinkType))
	e.U8(uint8(l.Status))
	e.U8(uint8(l.DesiredStatus))
	e.U8(uint8(l.Health))
	e.String(l.Code)
	e.String(l.SideAIfaceName)
	e.String(l.SideZIfaceName)
	e.U64(l.Bandwidth)
	e.U16(l.MTU)
	e.U64(l.DelayNs)
	e.U64(l.JitterNs)
	e.U64(l.DelayOverrideNs)
	e.U16(l.TunnelID)
	e.IPv4Net(orZeroNet(l.TunnelNet))
	e.Bool(l.OnchainAllocated)
	return e.Bytes()
}

// DeserializeLink parses a Link account.
func DeserializeLink(data []byte) (*Link, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeLink); err != nil {
		return nil, err
	}
	l := &Link{}
	l.Owner = d.Pubkey()
	l.Index = d.U128()
	l.BumpSeed = d.U8()
	l.SideAPK = d.Pubkey()
	l.SideZPK = d.Pubkey()
	l.ContributorPK = d.Pubkey()
	l.LinkType = LinkType(d.U8())
	l.Status = LinkStatus(d.U8())
	l.DesiredStatus = LinkStatus(d.U8())
	l.Health = LinkHealth(d.U8())
	l.Code = d.String()
	l.SideAIfaceName = d.String()
	l.SideZIfaceName = d.String()
	l.Bandwidth = d.U64()
	l.MTU = d.U16()
	l.DelayNs = d.U64()
	l.JitterNs = d.U64()
	l.DelayOverrideNs = d.U64()
	l.TunnelID = d.U16()
	l.TunnelNet = d.IPv4Net()
	l.OnchainAllocated = d.Bool()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return l, nil
}
