package instructions

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"

	"github.com/doublezero/doublezero-contract/codec"
)

// CreateMulticastGroup registers a multicast group under the tenant
// passed as an account.
type CreateMulticastGroup struct {
	Index        bin.Uint128
	BumpSeed     uint8
	Code         string
	MaxBandwidth uint64
}

func (*CreateMulticastGroup) Opcode() Opcode { return OpCreateMulticastGroup }

func (ins *CreateMulticastGroup) encode(e *codec.Encoder) {
	e.U128(ins.Index)
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.U64(ins.MaxBandwidth)
}

func (ins *CreateMulticastGroup) decode(d *codec.Decoder) {
	ins.Index = d.U128()
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.MaxBandwidth = d.U64()
}

// ActivateMulticastGroup assigns the group address. With
// UseOnchainAllocation it comes from the multicast block pool and the
// provided address is ignored.
type ActivateMulticastGroup struct {
	UseOnchainAllocation bool
	MulticastIP          netip.Addr
}

func (*ActivateMulticastGroup) Opcode() Opcode { return OpActivateMulticastGroup }

func (ins *ActivateMulticastGroup) encode(e *codec.Encoder) {
	e.Bool(ins.UseOnchainAllocation)
	e.IPv4(ins.MulticastIP)
}

func (ins *ActivateMulticastGroup) decode(d *codec.Decoder) {
	ins.UseOnchainAllocation = d.Bool()
	ins.MulticastIP = d.IPv4()
}

// UpdateMulticastGroup replaces the mutable metadata.
type UpdateMulticastGroup struct {
	Code         string
	MaxBandwidth uint64
}

func (*UpdateMulticastGroup) Opcode() Opcode { return OpUpdateMulticastGroup }

func (ins *UpdateMulticastGroup) encode(e *codec.Encoder) {
	e.String(ins.Code)
	e.U64(ins.MaxBandwidth)
}

func (ins *UpdateMulticastGroup) decode(d *codec.Decoder) {
	ins.Code = d.String()
	ins.MaxBandwidth = d.U64()
}

type SuspendMulticastGroup struct{ noArgs }

func (*SuspendMulticastGroup) Opcode() Opcode { return OpSuspendMulticastGroup }

type ResumeMulticastGroup struct{ noArgs }

func (*ResumeMulticastGroup) Opcode() Opcode { return OpResumeMulticastGroup }

type DeleteMulticastGroup struct{ noArgs }

func (*DeleteMulticastGroup) Opcode() Opcode { return OpDeleteMulticastGroup }

// CloseAccountMulticastGroup reclaims the account. With
// UseOnchainDeallocation the group address goes back to the pool.
type CloseAccountMulticastGroup struct {
	UseOnchainDeallocation bool
}

func (*CloseAccountMulticastGroup) Opcode() Opcode { return OpCloseAccountMulticastGroup }

func (ins *CloseAccountMulticastGroup) encode(e *codec.Encoder) { e.Bool(ins.UseOnchainDeallocation) }
func (ins *CloseAccountMulticastGroup) decode(d *codec.Decoder) {
	ins.UseOnchainDeallocation = d.Bool()
}

// SubscribeMulticastGroup joins the user passed as an account to the
// group, in either or both roles. Roles already held are no-ops.
type SubscribeMulticastGroup struct {
	Publisher  bool
	Subscriber bool
}

func (*SubscribeMulticastGroup) Opcode() Opcode { return OpSubscribeMulticastGroup }

func (ins *SubscribeMulticastGroup) encode(e *codec.Encoder) {
	e.Bool(ins.Publisher)
	e.Bool(ins.Subscriber)
}

func (ins *SubscribeMulticastGroup) decode(d *codec.Decoder) {
	ins.Publisher = d.Bool()
	ins.Subscriber = d.Bool()
}

// UnsubscribeMulticastGroup drops the named roles. Roles not held are
// no-ops.
type UnsubscribeMulticastGroup struct {
	Publisher  bool
	Subscriber bool
}

func (*UnsubscribeMulticastGroup) Opcode() Opcode { return OpUnsubscribeMulticastGroup }

func (ins *UnsubscribeMulticastGroup) encode(e *codec.Encoder) {
	e.Bool(ins.Publisher)
	e.Bool(ins.Subscriber)
}

func (ins *UnsubscribeMulticastGroup) decode(d *codec.Decoder) {
	ins.Publisher = d.Bool()
	ins.Subscriber = d.Bool()
}
