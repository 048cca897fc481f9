package instructions

import (
	"net/netip"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/doublezero/doublezero-contract/serviceability/state"
)

func roundTrip(t *testing.T, ins Instruction) Instruction {
	t.Helper()
	raw, err := Encode(ins)
	require.NoError(t, err)
	require.Equal(t, uint8(ins.Opcode()), raw[0])
	out, err := Decode(raw)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	member := solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

	for _, ins := range []Instruction{
		&InitGlobalState{},
		&SetGlobalConfig{
			LocalASN:            65100,
			RemoteASN:           65001,
			DeviceTunnelBlock:   netip.MustParsePrefix("172.16.0.0/16"),
			UserTunnelBlock:     netip.MustParsePrefix("169.254.0.0/16"),
			MulticastGroupBlock: netip.MustParsePrefix("233.84.178.0/24"),
		},
		&SetProgramConfig{
			Version:       state.Version{Major: 1, Minor: 4, Patch: 0},
			MinCompatible: state.Version{Major: 1, Minor: 2, Patch: 0},
		},
		&SetAuthority{Kind: state.AuthorityKindSentinel, Authority: member},
		&AddFoundationAllowlist{Member: member},
		&CreateLocation{
			Index:    bin.Uint128{Lo: 7},
			BumpSeed: 254,
			Code:     "ams",
			Name:     "Amsterdam",
			Country:  "NL",
			Lat:      52.37,
			Lng:      4.89,
		},
		&SetExchangeDevice{Slot: 1},
		&CreateDevice{
			Index:      bin.Uint128{Lo: 9},
			BumpSeed:   251,
			Code:       "ams-dz01",
			DeviceType: state.DeviceTypeSwitch,
			PublicIP:   netip.MustParseAddr("195.12.1.1"),
			DzPrefixes: []netip.Prefix{netip.MustParsePrefix("100.0.0.0/24")},
			MgmtVrf:    "mgmt",
			MaxUsers:   128,
		},
		&CreateDeviceInterface{
			Name:          "Ethernet1",
			InterfaceType: state.InterfaceTypePhysical,
			Bandwidth:     10_000_000_000,
			MTU:           9100,
			VlanID:        400,
		},
		&ActivateDeviceInterface{
			Name:           "Ethernet1",
			IpNet:          netip.MustParsePrefix("10.1.0.1/31"),
			NodeSegmentIdx: 11,
		},
		&CreateLink{
			Index:          bin.Uint128{Lo: 12},
			BumpSeed:       250,
			Code:           "ams-fra-1",
			LinkType:       state.LinkTypeWAN,
			Bandwidth:      100_000_000_000,
			MTU:            9100,
			DelayNs:        6_200_000,
			JitterNs:       150_000,
			SideAIfaceName: "Ethernet1",
		},
		&ActivateLink{
			UseOnchainAllocation: true,
			TunnelNet:            netip.MustParsePrefix("0.0.0.0/0"),
		},
		&CreateUser{
			UserType: state.UserTypeIBRL,
			CyoaType: state.UserCYOAGREOverDIA,
			ClientIP: netip.MustParseAddr("100.0.0.1"),
			BumpSeed: 253,
		},
		&ActivateUser{
			TunnelID:  500,
			TunnelNet: netip.MustParsePrefix("169.254.0.0/31"),
			DzIP:      netip.MustParseAddr("100.0.0.10"),
		},
		&SubscribeMulticastGroup{Publisher: true},
		&CreateAccessPass{
			PassType: state.AccessPassType{
				Kind: state.AccessPassKindSolanaValidator,
				Key:  member,
			},
			ClientIP: netip.MustParseAddr("100.0.0.1"),
			BumpSeed: 252,
			Flags:    state.AccessPassFlagAllowMultipleIP,
		},
		&ReserveConnection{ClientIP: netip.MustParseAddr("100.0.0.2"), BumpSeed: 249},
		&InitResourceExtension{
			Kind:       state.ResourceKindTunnelIds,
			BumpSeed:   248,
			RangeStart: 500,
			RangeEnd:   1500,
			BaseNet:    netip.MustParsePrefix("0.0.0.0/0"),
		},
		&AllocateResource{
			Kind:  state.ResourceKindLinkIds,
			Value: ResourceValue{Kind: ResourceValueId, Id: 42},
		},
		&DeallocateResource{
			Kind:  state.ResourceKindDeviceTunnelBlock,
			Value: ResourceValue{Kind: ResourceValueIpBlock, Block: netip.MustParsePrefix("172.16.0.2/31")},
		},
		&CreateTenant{
			BumpSeed:      247,
			Code:          "jump",
			Administrator: member,
			TokenAccount:  member,
			VrfID:         101,
		},
		&CloseAccountLink{UseOnchainDeallocation: true},
		&CloseTenant{},
	} {
		t.Run(ins.Opcode().String(), func(t *testing.T) {
			require.Equal(t, ins, roundTrip(t, ins))
		})
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	_, err := Decode([]byte{0xff})
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedArgs(t *testing.T) {
	raw, err := Encode(&AddFoundationAllowlist{
		Member: solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111"),
	})
	require.NoError(t, err)
	_, err = Decode(raw[:len(raw)-1])
	require.Error(t, err)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	raw, err := Encode(&SetDeviceMaxUsers{MaxUsers: 64})
	require.NoError(t, err)
	out, err := Decode(append(raw, 0xde, 0xad))
	require.NoError(t, err)
	require.Equal(t, &SetDeviceMaxUsers{MaxUsers: 64}, out)
}

func TestEveryOpcodeConstructs(t *testing.T) {
	for op := Opcode(0); op < opCount; op++ {
		ins := newInstruction(op)
		require.NotNil(t, ins, op.String())
		require.Equal(t, op, ins.Opcode())
	}
	require.Nil(t, newInstruction(opCount))
}
