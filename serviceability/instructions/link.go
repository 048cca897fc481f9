package instructions

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// CreateLink requests a link between two devices (side A and side Z,
// passed as accounts) and pins side A's interface by name.
type CreateLink struct {
	Index          bin.Uint128
	BumpSeed       uint8
	Code           string
	LinkType       state.LinkType
	Bandwidth      uint64
	MTU            uint16
	DelayNs        uint64
	JitterNs       uint64
	SideAIfaceName string
}

func (*CreateLink) Opcode() Opcode { return OpCreateLink }

func (ins *CreateLink) encode(e *codec.Encoder) {
	e.U128(ins.Index)
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.U8(uint8(ins.LinkType))
	e.U64(ins.Bandwidth)
	e.U16(ins.MTU)
	e.U64(ins.DelayNs)
	e.U64(ins.JitterNs)
	e.String(ins.SideAIfaceName)
}

func (ins *CreateLink) decode(d *codec.Decoder) {
	ins.Index = d.U128()
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.LinkType = state.LinkType(d.U8())
	ins.Bandwidth = d.U64()
	ins.MTU = d.U16()
	ins.DelayNs = d.U64()
	ins.JitterNs = d.U64()
	ins.SideAIfaceName = d.String()
}

// AcceptLink is signed by the side-Z contributor and pins its interface.
type AcceptLink struct {
	SideZIfaceName string
}

func (*AcceptLink) Opcode() Opcode { return OpAcceptLink }

func (ins *AcceptLink) encode(e *codec.Encoder) { e.String(ins.SideZIfaceName) }
func (ins *AcceptLink) decode(d *codec.Decoder) { ins.SideZIfaceName = d.String() }

// ActivateLink assigns the tunnel id and /31 tunnel net. With
// UseOnchainAllocation both are taken from the resource extensions
// passed as accounts and the provided values are ignored; otherwise the
// activator supplies them.
type ActivateLink struct {
	UseOnchainAllocation bool
	TunnelID             uint16
	TunnelNet            netip.Prefix
}

func (*ActivateLink) Opcode() Opcode { return OpActivateLink }

func (ins *ActivateLink) encode(e *codec.Encoder) {
	e.Bool(ins.UseOnchainAllocation)
	e.U16(ins.TunnelID)
	e.IPv4Net(ins.TunnelNet)
}

func (ins *ActivateLink) decode(d *codec.Decoder) {
	ins.UseOnchainAllocation = d.Bool()
	ins.TunnelID = d.U16()
	ins.TunnelNet = d.IPv4Net()
}

// UpdateLink replaces the mutable traffic parameters.
type UpdateLink struct {
	Bandwidth       uint64
	MTU             uint16
	DelayNs         uint64
	JitterNs        uint64
	DelayOverrideNs uint64
}

func (*UpdateLink) Opcode() Opcode { return OpUpdateLink }

func (ins *UpdateLink) encode(e *codec.Encoder) {
	e.U64(ins.Bandwidth)
	e.U16(ins.MTU)
	e.U64(ins.DelayNs)
	e.U64(ins.JitterNs)
	e.U64(ins.DelayOverrideNs)
}

func (ins *UpdateLink) decode(d *codec.Decoder) {
	ins.Bandwidth = d.U64()
	ins.MTU = d.U16()
	ins.DelayNs = d.U64()
	ins.JitterNs = d.U64()
	ins.DelayOverrideNs = d.U64()
}

type SuspendLink struct{ noArgs }

func (*SuspendLink) Opcode() Opcode { return OpSuspendLink }

type ResumeLink struct{ noArgs }

func (*ResumeLink) Opcode() Opcode { return OpResumeLink }

type SoftDrainLink struct{ noArgs }

func (*SoftDrainLink) Opcode() Opcode { return OpSoftDrainLink }

type HardDrainLink struct{ noArgs }

func (*HardDrainLink) Opcode() Opcode { return OpHardDrainLink }

// SetLinkHealth is written by the health oracle only.
type SetLinkHealth struct {
	Health state.LinkHealth
}

func (*SetLinkHealth) Opcode() Opcode { return OpSetLinkHealth }

func (ins *SetLinkHealth) encode(e *codec.Encoder) { e.U8(uint8(ins.Health)) }
func (ins *SetLinkHealth) decode(d *codec.Decoder) { ins.Health = state.LinkHealth(d.U8()) }

type DeleteLink struct{ noArgs }

func (*DeleteLink) Opcode() Opcode { return OpDeleteLink }

// CloseAccountLink reclaims the account. With UseOnchainDeallocation the
// tunnel id and net go back to their pools; links activated in legacy
// mode must pass false.
type CloseAccountLink struct {
	UseOnchainDeallocation bool
}

func (*CloseAccountLink) Opcode() Opcode { return OpCloseAccountLink }

func (ins *CloseAccountLink) encode(e *codec.Encoder) { e.Bool(ins.UseOnchainDeallocation) }
func (ins *CloseAccountLink) decode(d *codec.Decoder) { ins.UseOnchainDeallocation = d.Bool() }
