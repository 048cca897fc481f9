package state

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// GlobalConfig is the network-numbering singleton: ASNs, the tunnel and
// multicast blocks global resource pools are carved from, and the next BGP
// community handed to exchanges.
type GlobalConfig struct {
	Owner               solana.PublicKey
	BumpSeed            uint8
	LocalASN            uint32
	RemoteASN           uint32
	DeviceTunnelBlock   netip.Prefix
	UserTunnelBlock     netip.Prefix
	MulticastGroupBlock netip.Prefix
	NextBGPCommunity    uint32
}

// Type implements Record.
func (g *GlobalConfig) Type() AccountType { return AccountTypeGlobalConfig }

// Size returns the serialized size; GlobalConfig is fixed-width.
func (g *GlobalConfig) Size() int {
	return 1 + pubkeySize + 1 + 4 + 4 + 3*ipv4NetSize + 4
}

// Serialize renders the record in its account layout.
func (g *GlobalConfig) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeGlobalConfig))
	e.Pubkey(g.Owner)
	e.U8(g.BumpSeed)
	e.U32(g.LocalASN)
	e.U32(g.RemoteASN)
	e.IPv4Net(orZeroNet(g.DeviceTunnelBlock))
	e.IPv4Net(orZeroNet(g.UserTunnelBlock))
	e.IPv4Net(orZeroNet(g.MulticastGroupBlock))
	e.U32(g.NextBGPCommunity)
	return e.Bytes()
}

// DeserializeGlobalConfig parses a GlobalConfig account.
func DeserializeGlobalConfig(data []byte) (*GlobalConfig, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeGlobalConfig); err != nil {
		return nil, err
	}
	g := &GlobalConfig{}
	g.Owner = d.Pubkey()
	g.BumpSeed = d.U8()
	g.LocalASN = d.U32()
	g.RemoteASN = d.U32()
	g.DeviceTunnelBlock = d.IPv4Net()
	g.UserTunnelBlock = d.IPv4Net()
	g.MulticastGroupBlock = d.IPv4Net()
	g.NextBGPCommunity = d.U32()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return g, nil
}
