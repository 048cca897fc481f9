package instructions

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// InitGlobalState creates the singleton state and config accounts. The
// payer becomes the first foundation allowlist member.
type InitGlobalState struct {
	noArgs
}

func (*InitGlobalState) Opcode() Opcode { return OpInitGlobalState }

// SetGlobalConfig replaces the network-wide tunables.
type SetGlobalConfig struct {
	LocalASN            uint32
	RemoteASN           uint32
	DeviceTunnelBlock   netip.Prefix
	UserTunnelBlock     netip.Prefix
	MulticastGroupBlock netip.Prefix
}

func (*SetGlobalConfig) Opcode() Opcode { return OpSetGlobalConfig }

func (ins *SetGlobalConfig) encode(e *codec.Encoder) {
	e.U32(ins.LocalASN)
	e.U32(ins.RemoteASN)
	e.IPv4Net(ins.DeviceTunnelBlock)
	e.IPv4Net(ins.UserTunnelBlock)
	e.IPv4Net(ins.MulticastGroupBlock)
}

func (ins *SetGlobalConfig) decode(d *codec.Decoder) {
	ins.LocalASN = d.U32()
	ins.RemoteASN = d.U32()
	ins.DeviceTunnelBlock = d.IPv4Net()
	ins.UserTunnelBlock = d.IPv4Net()
	ins.MulticastGroupBlock = d.IPv4Net()
}

// SetProgramConfig records the deployed program version and the minimum
// client version still admitted.
type SetProgramConfig struct {
	Version       state.Version
	MinCompatible state.Version
}

func (*SetProgramConfig) Opcode() Opcode { return OpSetProgramConfig }

func (ins *SetProgramConfig) encode(e *codec.Encoder) {
	encodeVersion(e, ins.Version)
	encodeVersion(e, ins.MinCompatible)
}

func (ins *SetProgramConfig) decode(d *codec.Decoder) {
	ins.Version = decodeVersion(d)
	ins.MinCompatible = decodeVersion(d)
}

func encodeVersion(e *codec.Encoder, v state.Version) {
	e.U32(v.Major)
	e.U32(v.Minor)
	e.U32(v.Patch)
}

func decodeVersion(d *codec.Decoder) state.Version {
	return state.Version{Major: d.U32(), Minor: d.U32(), Patch: d.U32()}
}

// SetAuthority rotates one of the privileged keys held in GlobalState.
type SetAuthority struct {
	Kind      state.AuthorityKind
	Authority solana.PublicKey
}

func (*SetAuthority) Opcode() Opcode { return OpSetAuthority }

func (ins *SetAuthority) encode(e *codec.Encoder) {
	e.U8(uint8(ins.Kind))
	e.Pubkey(ins.Authority)
}

func (ins *SetAuthority) decode(d *codec.Decoder) {
	ins.Kind = state.AuthorityKind(d.U8())
	ins.Authority = d.Pubkey()
}

// SetAirdropAmounts adjusts the lamports granted to fresh user and
// device accounts.
type SetAirdropAmounts struct {
	UserAirdropLamports   uint64
	DeviceAirdropLamports uint64
}

func (*SetAirdropAmounts) Opcode() Opcode { return OpSetAirdropAmounts }

func (ins *SetAirdropAmounts) encode(e *codec.Encoder) {
	e.U64(ins.UserAirdropLamports)
	e.U64(ins.DeviceAirdropLamports)
}

func (ins *SetAirdropAmounts) decode(d *codec.Decoder) {
	ins.UserAirdropLamports = d.U64()
	ins.DeviceAirdropLamports = d.U64()
}

// AddFoundationAllowlist admits a key to foundation membership.
type AddFoundationAllowlist struct {
	Member solana.PublicKey
}

func (*AddFoundationAllowlist) Opcode() Opcode { return OpAddFoundationAllowlist }

func (ins *AddFoundationAllowlist) encode(e *codec.Encoder) { e.Pubkey(ins.Member) }
func (ins *AddFoundationAllowlist) decode(d *codec.Decoder) { ins.Member = d.Pubkey() }

// RemoveFoundationAllowlist revokes foundation membership.
type RemoveFoundationAllowlist struct {
	Member solana.PublicKey
}

func (*RemoveFoundationAllowlist) Opcode() Opcode { return OpRemoveFoundationAllowlist }

func (ins *RemoveFoundationAllowlist) encode(e *codec.Encoder) { e.Pubkey(ins.Member) }
func (ins *RemoveFoundationAllowlist) decode(d *codec.Decoder) { ins.Member = d.Pubkey() }

// AddQAAllowlist admits a key to the QA allowlist.
type AddQAAllowlist struct {
	Member solana.PublicKey
}

func (*AddQAAllowlist) Opcode() Opcode { return OpAddQAAllowlist }

func (ins *AddQAAllowlist) encode(e *codec.Encoder) { e.Pubkey(ins.Member) }
func (ins *AddQAAllowlist) decode(d *codec.Decoder) { ins.Member = d.Pubkey() }

// RemoveQAAllowlist revokes QA membership.
type RemoveQAAllowlist struct {
	Member solana.PublicKey
}

func (*RemoveQAAllowlist) Opcode() Opcode { return OpRemoveQAAllowlist }

func (ins *RemoveQAAllowlist) encode(e *codec.Encoder) { e.Pubkey(ins.Member) }
func (ins *RemoveQAAllowlist) decode(d *codec.Decoder) { ins.Member = d.Pubkey() }
