package instructions

import (
	"net/netip"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

// Instruction is one decoded serviceability instruction. Concrete types
// live in the per-entity files of this package.
type Instruction interface {
	Opcode() Opcode
	encode(e *codec.Encoder)
	decode(d *codec.Decoder)
}

// Encode renders the instruction as opcode byte plus arguments.
func Encode(ins Instruction) ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(ins.Opcode()))
	ins.encode(e)
	return e.Bytes()
}

// Decode parses instruction data. Unknown opcodes and short argument
// buffers fail with InvalidInstructionData; trailing bytes are ignored,
// matching the account codec.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, runtime.ErrInvalidInstructionData
	}
	ins := newInstruction(Opcode(data[0]))
	if ins == nil {
		return nil, runtime.ErrInvalidInstructionData
	}
	d := codec.NewDecoder(data[1:])
	ins.decode(d)
	if err := d.Err(); err != nil {
		return nil, err
	}
	return ins, nil
}

func newInstruction(op Opcode) Instruction {
	switch op {
	case OpInitGlobalState:
		return &InitGlobalState{}
	case OpSetGlobalConfig:
		return &SetGlobalConfig{}
	case OpSetProgramConfig:
		return &SetProgramConfig{}
	case OpSetAuthority:
		return &SetAuthority{}
	case OpSetAirdropAmounts:
		return &SetAirdropAmounts{}
	case OpAddFoundationAllowlist:
		return &AddFoundationAllowlist{}
	case OpRemoveFoundationAllowlist:
		return &RemoveFoundationAllowlist{}
	case OpAddQAAllowlist:
		return &AddQAAllowlist{}
	case OpRemoveQAAllowlist:
		return &RemoveQAAllowlist{}
	case OpCreateLocation:
		return &CreateLocation{}
	case OpUpdateLocation:
		return &UpdateLocation{}
	case OpSuspendLocation:
		return &SuspendLocation{}
	case OpResumeLocation:
		return &ResumeLocation{}
	case OpDeleteLocation:
		return &DeleteLocation{}
	case OpCloseAccountLocation:
		return &CloseAccountLocation{}
	case OpCreateExchange:
		return &CreateExchange{}
	case OpUpdateExchange:
		return &UpdateExchange{}
	case OpSetExchangeDevice:
		return &SetExchangeDevice{}
	case OpSuspendExchange:
		return &SuspendExchange{}
	case OpResumeExchange:
		return &ResumeExchange{}
	case OpDeleteExchange:
		return &DeleteExchange{}
	case OpCloseAccountExchange:
		return &CloseAccountExchange{}
	case OpCreateContributor:
		return &CreateContributor{}
	case OpUpdateContributor:
		return &UpdateContributor{}
	case OpSuspendContributor:
		return &SuspendContributor{}
	case OpResumeContributor:
		return &ResumeContributor{}
	case OpDeleteContributor:
		return &DeleteContributor{}
	case OpCloseAccountContributor:
		return &CloseAccountContributor{}
	case OpCreateDevice:
		return &CreateDevice{}
	case OpUpdateDevice:
		return &UpdateDevice{}
	case OpActivateDevice:
		return &ActivateDevice{}
	case OpRejectDevice:
		return &RejectDevice{}
	case OpSuspendDevice:
		return &SuspendDevice{}
	case OpResumeDevice:
		return &ResumeDevice{}
	case OpSoftDrainDevice:
		return &SoftDrainDevice{}
	case OpHardDrainDevice:
		return &HardDrainDevice{}
	case OpSetDeviceHealth:
		return &SetDeviceHealth{}
	case OpSetDeviceMaxUsers:
		return &SetDeviceMaxUsers{}
	case OpDeleteDevice:
		return &DeleteDevice{}
	case OpCloseAccountDevice:
		return &CloseAccountDevice{}
	case OpCreateDeviceInterface:
		return &CreateDeviceInterface{}
	case OpActivateDeviceInterface:
		return &ActivateDeviceInterface{}
	case OpRejectDeviceInterface:
		return &RejectDeviceInterface{}
	case OpUnlinkDeviceInterface:
		return &UnlinkDeviceInterface{}
	case OpRemoveDeviceInterface:
		return &RemoveDeviceInterface{}
	case OpCreateLink:
		return &CreateLink{}
	case OpAcceptLink:
		return &AcceptLink{}
	case OpActivateLink:
		return &ActivateLink{}
	case OpUpdateLink:
		return &UpdateLink{}
	case OpSuspendLink:
		return &SuspendLink{}
	case OpResumeLink:
		return &ResumeLink{}
	case OpSoftDrainLink:
		return &SoftDrainLink{}
	case OpHardDrainLink:
		return &HardDrainLink{}
	case OpSetLinkHealth:
		return &SetLinkHealth{}
	case OpDeleteLink:
		return &DeleteLink{}
	case OpCloseAccountLink:
		return &CloseAccountLink{}
	case OpCreateUser:
		return &CreateUser{}
	case OpActivateUser:
		return &ActivateUser{}
	case OpUpdateUser:
		return &UpdateUser{}
	case OpRequestBanUser:
		return &RequestBanUser{}
	case OpBanUser:
		return &BanUser{}
	case OpDeleteUser:
		return &DeleteUser{}
	case OpCloseAccountUser:
		return &CloseAccountUser{}
	case OpCreateMulticastGroup:
		return &CreateMulticastGroup{}
	case OpActivateMulticastGroup:
		return &ActivateMulticastGroup{}
	case OpUpdateMulticastGroup:
		return &UpdateMulticastGroup{}
	case OpSuspendMulticastGroup:
		return &SuspendMulticastGroup{}
	case OpResumeMulticastGroup:
		return &ResumeMulticastGroup{}
	case OpDeleteMulticastGroup:
		return &DeleteMulticastGroup{}
	case OpCloseAccountMulticastGroup:
		return &CloseAccountMulticastGroup{}
	case OpSubscribeMulticastGroup:
		return &SubscribeMulticastGroup{}
	case OpUnsubscribeMulticastGroup:
		return &UnsubscribeMulticastGroup{}
	case OpCreateAccessPass:
		return &CreateAccessPass{}
	case OpUpdateAccessPass:
		return &UpdateAccessPass{}
	case OpConnectAccessPass:
		return &ConnectAccessPass{}
	case OpDisconnectAccessPass:
		return &DisconnectAccessPass{}
	case OpCloseAccessPass:
		return &CloseAccessPass{}
	case OpAddAccessPassMgroupPub:
		return &AddAccessPassMgroupPub{}
	case OpRemoveAccessPassMgroupPub:
		return &RemoveAccessPassMgroupPub{}
	case OpAddAccessPassMgroupSub:
		return &AddAccessPassMgroupSub{}
	case OpRemoveAccessPassMgroupSub:
		return &RemoveAccessPassMgroupSub{}
	case OpAddAccessPassTenant:
		return &AddAccessPassTenant{}
	case OpRemoveAccessPassTenant:
		return &RemoveAccessPassTenant{}
	case OpReserveConnection:
		return &ReserveConnection{}
	case OpCloseReservation:
		return &CloseReservation{}
	case OpInitResourceExtension:
		return &InitResourceExtension{}
	case OpAllocateResource:
		return &AllocateResource{}
	case OpDeallocateResource:
		return &DeallocateResource{}
	case OpCreateTenant:
		return &CreateTenant{}
	case OpCloseTenant:
		return &CloseTenant{}
	}
	return nil
}

// noArgs is embedded by instructions whose opcode carries everything;
// their accounts do the talking.
type noArgs struct{}

func (noArgs) encode(*codec.Encoder) {}
func (noArgs) decode(*codec.Decoder) {}

// ResourceValueKind discriminates ResourceValue.
type ResourceValueKind uint8

const (
	ResourceValueNone    ResourceValueKind = 0
	ResourceValueId      ResourceValueKind = 1
	ResourceValueIp      ResourceValueKind = 2
	ResourceValueIpBlock ResourceValueKind = 3
)

// ResourceValue names a concrete resource inside a pool, or None to let
// the allocator pick.
type ResourceValue struct {
	Kind  ResourceValueKind
	Id    uint16
	Ip    netip.Addr
	Block netip.Prefix
}

func (v *ResourceValue) encode(e *codec.Encoder) {
	e.U8(uint8(v.Kind))
	switch v.Kind {
	case ResourceValueNone:
	case ResourceValueId:
		e.U16(v.Id)
	case ResourceValueIp:
		e.IPv4(v.Ip)
	case ResourceValueIpBlock:
		e.IPv4Net(v.Block)
	}
}

func (v *ResourceValue) decode(d *codec.Decoder) {
	v.Kind = ResourceValueKind(d.U8())
	switch v.Kind {
	case ResourceValueNone:
	case ResourceValueId:
		v.Id = d.U16()
	case ResourceValueIp:
		v.Ip = d.IPv4()
	case ResourceValueIpBlock:
		v.Block = d.IPv4Net()
	default:
		d.Fail("unknown resource value variant")
	}
}
