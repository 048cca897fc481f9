package instructions

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// CreateUser admits a client onto the device passed as an account. The
// access pass for (ClientIP, payer) must be valid; admission consumes a
// device seat and a reservation if one exists.
type CreateUser struct {
	UserType state.UserType
	CyoaType state.UserCYOA
	ClientIP netip.Addr
	BumpSeed uint8
}

func (*CreateUser) Opcode() Opcode { return OpCreateUser }

func (ins *CreateUser) encode(e *codec.Encoder) {
	e.U8(uint8(ins.UserType))
	e.U8(uint8(ins.CyoaType))
	e.IPv4(ins.ClientIP)
	e.U8(ins.BumpSeed)
}

func (ins *CreateUser) decode(d *codec.Decoder) {
	ins.UserType = state.UserType(d.U8())
	ins.CyoaType = state.UserCYOA(d.U8())
	ins.ClientIP = d.IPv4()
	ins.BumpSeed = d.U8()
}

// ActivateUser provisions the tunnel. With UseOnchainAllocation the
// tunnel id, net and DZ address come from the device's resource
// extensions and the provided values are ignored.
type ActivateUser struct {
	UseOnchainAllocation bool
	TunnelID             uint16
	TunnelNet            netip.Prefix
	DzIP                 netip.Addr
}

func (*ActivateUser) Opcode() Opcode { return OpActivateUser }

func (ins *ActivateUser) encode(e *codec.Encoder) {
	e.Bool(ins.UseOnchainAllocation)
	e.U16(ins.TunnelID)
	e.IPv4Net(ins.TunnelNet)
	e.IPv4(ins.DzIP)
}

func (ins *ActivateUser) decode(d *codec.Decoder) {
	ins.UseOnchainAllocation = d.Bool()
	ins.TunnelID = d.U16()
	ins.TunnelNet = d.IPv4Net()
	ins.DzIP = d.IPv4()
}

// UpdateUser replaces the CYOA mode and validator identity.
type UpdateUser struct {
	CyoaType        state.UserCYOA
	ValidatorPubkey solana.PublicKey
}

func (*UpdateUser) Opcode() Opcode { return OpUpdateUser }

func (ins *UpdateUser) encode(e *codec.Encoder) {
	e.U8(uint8(ins.CyoaType))
	e.Pubkey(ins.ValidatorPubkey)
}

func (ins *UpdateUser) decode(d *codec.Decoder) {
	ins.CyoaType = state.UserCYOA(d.U8())
	ins.ValidatorPubkey = d.Pubkey()
}

// RequestBanUser is signed by the sentinel; the activator completes the
// ban after tearing the tunnel down.
type RequestBanUser struct{ noArgs }

func (*RequestBanUser) Opcode() Opcode { return OpRequestBanUser }

type BanUser struct{ noArgs }

func (*BanUser) Opcode() Opcode { return OpBanUser }

type DeleteUser struct{ noArgs }

func (*DeleteUser) Opcode() Opcode { return OpDeleteUser }

// CloseAccountUser reclaims the account and releases the device seat.
// With UseOnchainDeallocation the tunnel resources go back to their
// pools.
type CloseAccountUser struct {
	UseOnchainDeallocation bool
}

func (*CloseAccountUser) Opcode() Opcode { return OpCloseAccountUser }

func (ins *CloseAccountUser) encode(e *codec.Encoder) { e.Bool(ins.UseOnchainDeallocation) }
func (ins *CloseAccountUser) decode(d *codec.Decoder) { ins.UseOnchainDeallocation = d.Bool() }
