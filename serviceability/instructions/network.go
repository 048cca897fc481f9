package instructions

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// CreateLocation registers a physical site. Index and BumpSeed must match
// the PDA the client derived from account_index+1; the handler re-derives
// and rejects mismatches.
type CreateLocation struct {
	Index    bin.Uint128
	BumpSeed uint8
	Code     string
	Name     string
	Country  string
	Lat      float64
	Lng      float64
}

func (*CreateLocation) Opcode() Opcode { return OpCreateLocation }

func (ins *CreateLocation) encode(e *codec.Encoder) {
	e.U128(ins.Index)
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.String(ins.Name)
	e.String(ins.Country)
	e.F64(ins.Lat)
	e.F64(ins.Lng)
}

func (ins *CreateLocation) decode(d *codec.Decoder) {
	ins.Index = d.U128()
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.Name = d.String()
	ins.Country = d.String()
	ins.Lat = d.F64()
	ins.Lng = d.F64()
}

// UpdateLocation replaces the mutable metadata of a location.
type UpdateLocation struct {
	Code    string
	Name    string
	Country string
	Lat     float64
	Lng     float64
}

func (*UpdateLocation) Opcode() Opcode { return OpUpdateLocation }

func (ins *UpdateLocation) encode(e *codec.Encoder) {
	e.String(ins.Code)
	e.String(ins.Name)
	e.String(ins.Country)
	e.F64(ins.Lat)
	e.F64(ins.Lng)
}

func (ins *UpdateLocation) decode(d *codec.Decoder) {
	ins.Code = d.String()
	ins.Name = d.String()
	ins.Country = d.String()
	ins.Lat = d.F64()
	ins.Lng = d.F64()
}

type SuspendLocation struct{ noArgs }

func (*SuspendLocation) Opcode() Opcode { return OpSuspendLocation }

type ResumeLocation struct{ noArgs }

func (*ResumeLocation) Opcode() Opcode { return OpResumeLocation }

type DeleteLocation struct{ noArgs }

func (*DeleteLocation) Opcode() Opcode { return OpDeleteLocation }

type CloseAccountLocation struct{ noArgs }

func (*CloseAccountLocation) Opcode() Opcode { return OpCloseAccountLocation }

// CreateExchange registers an exchange point.
type CreateExchange struct {
	Index    bin.Uint128
	BumpSeed uint8
	Code     string
	Name     string
	Lat      float64
	Lng      float64
}

func (*CreateExchange) Opcode() Opcode { return OpCreateExchange }

func (ins *CreateExchange) encode(e *codec.Encoder) {
	e.U128(ins.Index)
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.String(ins.Name)
	e.F64(ins.Lat)
	e.F64(ins.Lng)
}

func (ins *CreateExchange) decode(d *codec.Decoder) {
	ins.Index = d.U128()
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.Name = d.String()
	ins.Lat = d.F64()
	ins.Lng = d.F64()
}

// UpdateExchange replaces the mutable metadata of an exchange.
type UpdateExchange struct {
	Code string
	Name string
	Lat  float64
	Lng  float64
}

func (*UpdateExchange) Opcode() Opcode { return OpUpdateExchange }

func (ins *UpdateExchange) encode(e *codec.Encoder) {
	e.String(ins.Code)
	e.String(ins.Name)
	e.F64(ins.Lat)
	e.F64(ins.Lng)
}

func (ins *UpdateExchange) decode(d *codec.Decoder) {
	ins.Code = d.String()
	ins.Name = d.String()
	ins.Lat = d.F64()
	ins.Lng = d.F64()
}

// SetExchangeDevice binds the device account passed alongside to one of
// the exchange's two switch slots.
type SetExchangeDevice struct {
	Slot uint8
}

func (*SetExchangeDevice) Opcode() Opcode { return OpSetExchangeDevice }

func (ins *SetExchangeDevice) encode(e *codec.Encoder) { e.U8(ins.Slot) }
func (ins *SetExchangeDevice) decode(d *codec.Decoder) { ins.Slot = d.U8() }

type SuspendExchange struct{ noArgs }

func (*SuspendExchange) Opcode() Opcode { return OpSuspendExchange }

type ResumeExchange struct{ noArgs }

func (*ResumeExchange) Opcode() Opcode { return OpResumeExchange }

type DeleteExchange struct{ noArgs }

func (*DeleteExchange) Opcode() Opcode { return OpDeleteExchange }

type CloseAccountExchange struct{ noArgs }

func (*CloseAccountExchange) Opcode() Opcode { return OpCloseAccountExchange }

// CreateContributor registers a network contributor organization.
type CreateContributor struct {
	Index      bin.Uint128
	BumpSeed   uint8
	Code       string
	OpsManager solana.PublicKey
}

func (*CreateContributor) Opcode() Opcode { return OpCreateContributor }

func (ins *CreateContributor) encode(e *codec.Encoder) {
	e.U128(ins.Index)
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.Pubkey(ins.OpsManager)
}

func (ins *CreateContributor) decode(d *codec.Decoder) {
	ins.Index = d.U128()
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.OpsManager = d.Pubkey()
}

// UpdateContributor replaces the contributor code and operations key.
type UpdateContributor struct {
	Code       string
	OpsManager solana.PublicKey
}

func (*UpdateContributor) Opcode() Opcode { return OpUpdateContributor }

func (ins *UpdateContributor) encode(e *codec.Encoder) {
	e.String(ins.Code)
	e.Pubkey(ins.OpsManager)
}

func (ins *UpdateContributor) decode(d *codec.Decoder) {
	ins.Code = d.String()
	ins.OpsManager = d.Pubkey()
}

type SuspendContributor struct{ noArgs }

func (*SuspendContributor) Opcode() Opcode { return OpSuspendContributor }

type ResumeContributor struct{ noArgs }

func (*ResumeContributor) Opcode() Opcode { return OpResumeContributor }

type DeleteContributor struct{ noArgs }

func (*DeleteContributor) Opcode() Opcode { return OpDeleteContributor }

type CloseAccountContributor struct{ noArgs }

func (*CloseAccountContributor) Opcode() Opcode { return OpCloseAccountContributor }
