package instructions

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// CreateAccessPass issues a pass for (ClientIP, payer). Signed by the
// sentinel or a foundation member; QA members may issue prepaid passes
// for themselves.
type CreateAccessPass struct {
	PassType state.AccessPassType
	ClientIP netip.Addr
	BumpSeed uint8
	Flags    uint8
}

func (*CreateAccessPass) Opcode() Opcode { return OpCreateAccessPass }

func (ins *CreateAccessPass) encode(e *codec.Encoder) {
	ins.PassType.Encode(e)
	e.IPv4(ins.ClientIP)
	e.U8(ins.BumpSeed)
	e.U8(ins.Flags)
}

func (ins *CreateAccessPass) decode(d *codec.Decoder) {
	ins.PassType = state.DecodeAccessPassType(d)
	ins.ClientIP = d.IPv4()
	ins.BumpSeed = d.U8()
	ins.Flags = d.U8()
}

// UpdateAccessPass replaces the pass classification and flags.
type UpdateAccessPass struct {
	PassType state.AccessPassType
	Flags    uint8
}

func (*UpdateAccessPass) Opcode() Opcode { return OpUpdateAccessPass }

func (ins *UpdateAccessPass) encode(e *codec.Encoder) {
	ins.PassType.Encode(e)
	e.U8(ins.Flags)
}

func (ins *UpdateAccessPass) decode(d *codec.Decoder) {
	ins.PassType = state.DecodeAccessPassType(d)
	ins.Flags = d.U8()
}

type ConnectAccessPass struct{ noArgs }

func (*ConnectAccessPass) Opcode() Opcode { return OpConnectAccessPass }

type DisconnectAccessPass struct{ noArgs }

func (*DisconnectAccessPass) Opcode() Opcode { return OpDisconnectAccessPass }

type CloseAccessPass struct{ noArgs }

func (*CloseAccessPass) Opcode() Opcode { return OpCloseAccessPass }

// AddAccessPassMgroupPub allows the pass to publish to a group.
type AddAccessPassMgroupPub struct {
	Group solana.PublicKey
}

func (*AddAccessPassMgroupPub) Opcode() Opcode { return OpAddAccessPassMgroupPub }

func (ins *AddAccessPassMgroupPub) encode(e *codec.Encoder) { e.Pubkey(ins.Group) }
func (ins *AddAccessPassMgroupPub) decode(d *codec.Decoder) { ins.Group = d.Pubkey() }

type RemoveAccessPassMgroupPub struct {
	Group solana.PublicKey
}

func (*RemoveAccessPassMgroupPub) Opcode() Opcode { return OpRemoveAccessPassMgroupPub }

func (ins *RemoveAccessPassMgroupPub) encode(e *codec.Encoder) { e.Pubkey(ins.Group) }
func (ins *RemoveAccessPassMgroupPub) decode(d *codec.Decoder) { ins.Group = d.Pubkey() }

// AddAccessPassMgroupSub allows the pass to subscribe to a group.
type AddAccessPassMgroupSub struct {
	Group solana.PublicKey
}

func (*AddAccessPassMgroupSub) Opcode() Opcode { return OpAddAccessPassMgroupSub }

func (ins *AddAccessPassMgroupSub) encode(e *codec.Encoder) { e.Pubkey(ins.Group) }
func (ins *AddAccessPassMgroupSub) decode(d *codec.Decoder) { ins.Group = d.Pubkey() }

type RemoveAccessPassMgroupSub struct {
	Group solana.PublicKey
}

func (*RemoveAccessPassMgroupSub) Opcode() Opcode { return OpRemoveAccessPassMgroupSub }

func (ins *RemoveAccessPassMgroupSub) encode(e *codec.Encoder) { e.Pubkey(ins.Group) }
func (ins *RemoveAccessPassMgroupSub) decode(d *codec.Decoder) { ins.Group = d.Pubkey() }

// AddAccessPassTenant scopes the pass to a tenant. An empty tenant
// allowlist means any tenant.
type AddAccessPassTenant struct {
	Tenant solana.PublicKey
}

func (*AddAccessPassTenant) Opcode() Opcode { return OpAddAccessPassTenant }

func (ins *AddAccessPassTenant) encode(e *codec.Encoder) { e.Pubkey(ins.Tenant) }
func (ins *AddAccessPassTenant) decode(d *codec.Decoder) { ins.Tenant = d.Pubkey() }

type RemoveAccessPassTenant struct {
	Tenant solana.PublicKey
}

func (*RemoveAccessPassTenant) Opcode() Opcode { return OpRemoveAccessPassTenant }

func (ins *RemoveAccessPassTenant) encode(e *codec.Encoder) { e.Pubkey(ins.Tenant) }
func (ins *RemoveAccessPassTenant) decode(d *codec.Decoder) { ins.Tenant = d.Pubkey() }
