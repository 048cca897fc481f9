package instructions

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// ReserveConnection holds a seat on the device passed as an account for
// the given client before the user exists. Signed by the reservation
// authority.
type ReserveConnection struct {
	ClientIP netip.Addr
	BumpSeed uint8
}

func (*ReserveConnection) Opcode() Opcode { return OpReserveConnection }

func (ins *ReserveConnection) encode(e *codec.Encoder) {
	e.IPv4(ins.ClientIP)
	e.U8(ins.BumpSeed)
}

func (ins *ReserveConnection) decode(d *codec.Decoder) {
	ins.ClientIP = d.IPv4()
	ins.BumpSeed = d.U8()
}

type CloseReservation struct{ noArgs }

func (*CloseReservation) Opcode() Opcode { return OpCloseReservation }

// InitResourceExtension creates the allocator pool account for one
// resource kind. Id-ranged kinds take the index range; per-device ip
// kinds take the base network and the prefix ordinal. Global ip kinds
// read their base from GlobalConfig and ignore BaseNet.
type InitResourceExtension struct {
	Kind       state.ResourceKind
	BumpSeed   uint8
	Ordinal    uint8
	RangeStart uint16
	RangeEnd   uint16
	BaseNet    netip.Prefix
}

func (*InitResourceExtension) Opcode() Opcode { return OpInitResourceExtension }

func (ins *InitResourceExtension) encode(e *codec.Encoder) {
	e.U8(uint8(ins.Kind))
	e.U8(ins.BumpSeed)
	e.U8(ins.Ordinal)
	e.U16(ins.RangeStart)
	e.U16(ins.RangeEnd)
	e.IPv4Net(ins.BaseNet)
}

func (ins *InitResourceExtension) decode(d *codec.Decoder) {
	ins.Kind = state.ResourceKind(d.U8())
	ins.BumpSeed = d.U8()
	ins.Ordinal = d.U8()
	ins.RangeStart = d.U16()
	ins.RangeEnd = d.U16()
	ins.BaseNet = d.IPv4Net()
}

// AllocateResource marks a resource used without going through an
// entity operation. Used by repair tooling to converge pools on
// observed usage.
type AllocateResource struct {
	Kind  state.ResourceKind
	Value ResourceValue
}

func (*AllocateResource) Opcode() Opcode { return OpAllocateResource }

func (ins *AllocateResource) encode(e *codec.Encoder) {
	e.U8(uint8(ins.Kind))
	ins.Value.encode(e)
}

func (ins *AllocateResource) decode(d *codec.Decoder) {
	ins.Kind = state.ResourceKind(d.U8())
	ins.Value.decode(d)
}

// DeallocateResource is the inverse of AllocateResource.
type DeallocateResource struct {
	Kind  state.ResourceKind
	Value ResourceValue
}

func (*DeallocateResource) Opcode() Opcode { return OpDeallocateResource }

func (ins *DeallocateResource) encode(e *codec.Encoder) {
	e.U8(uint8(ins.Kind))
	ins.Value.encode(e)
}

func (ins *DeallocateResource) decode(d *codec.Decoder) {
	ins.Kind = state.ResourceKind(d.U8())
	ins.Value.decode(d)
}

// CreateTenant registers a tenant organization.
type CreateTenant struct {
	BumpSeed      uint8
	Code          string
	Administrator solana.PublicKey
	TokenAccount  solana.PublicKey
	VrfID         uint16
}

func (*CreateTenant) Opcode() Opcode { return OpCreateTenant }

func (ins *CreateTenant) encode(e *codec.Encoder) {
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.Pubkey(ins.Administrator)
	e.Pubkey(ins.TokenAccount)
	e.U16(ins.VrfID)
}

func (ins *CreateTenant) decode(d *codec.Decoder) {
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.Administrator = d.Pubkey()
	ins.TokenAccount = d.Pubkey()
	ins.VrfID = d.U16()
}

type CloseTenant struct{ noArgs }

func (*CloseTenant) Opcode() Opcode { return OpCloseTenant }
