package instructions

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// CreateDevice registers a network device under a contributor at a
// location and exchange (both passed as accounts).
type CreateDevice struct {
	Index            bin.Uint128
	BumpSeed         uint8
	Code             string
	DeviceType       state.DeviceType
	PublicIP         netip.Addr
	DzPrefixes       []netip.Prefix
	MgmtVrf          string
	MetricsPublisher solana.PublicKey
	MaxUsers         uint16
}

func (*CreateDevice) Opcode() Opcode { return OpCreateDevice }

func (ins *CreateDevice) encode(e *codec.Encoder) {
	e.U128(ins.Index)
	e.U8(ins.BumpSeed)
	e.String(ins.Code)
	e.U8(uint8(ins.DeviceType))
	e.IPv4(ins.PublicIP)
	e.VecLen(len(ins.DzPrefixes))
	for _, p := range ins.DzPrefixes {
		e.IPv4Net(p)
	}
	e.String(ins.MgmtVrf)
	e.Pubkey(ins.MetricsPublisher)
	e.U16(ins.MaxUsers)
}

func (ins *CreateDevice) decode(d *codec.Decoder) {
	ins.Index = d.U128()
	ins.BumpSeed = d.U8()
	ins.Code = d.String()
	ins.DeviceType = state.DeviceType(d.U8())
	ins.PublicIP = d.IPv4()
	n := d.VecLen()
	ins.DzPrefixes = make([]netip.Prefix, 0, n)
	for i := 0; i < n; i++ {
		ins.DzPrefixes = append(ins.DzPrefixes, d.IPv4Net())
	}
	ins.MgmtVrf = d.String()
	ins.MetricsPublisher = d.Pubkey()
	ins.MaxUsers = d.U16()
}

// UpdateDevice replaces the mutable device metadata. Prefix and address
// changes only take effect for future users.
type UpdateDevice struct {
	Code             string
	DeviceType       state.DeviceType
	PublicIP         netip.Addr
	DzPrefixes       []netip.Prefix
	MgmtVrf          string
	MetricsPublisher solana.PublicKey
	MaxUsers         uint16
}

func (*UpdateDevice) Opcode() Opcode { return OpUpdateDevice }

func (ins *UpdateDevice) encode(e *codec.Encoder) {
	e.String(ins.Code)
	e.U8(uint8(ins.DeviceType))
	e.IPv4(ins.PublicIP)
	e.VecLen(len(ins.DzPrefixes))
	for _, p := range ins.DzPrefixes {
		e.IPv4Net(p)
	}
	e.String(ins.MgmtVrf)
	e.Pubkey(ins.MetricsPublisher)
	e.U16(ins.MaxUsers)
}

func (ins *UpdateDevice) decode(d *codec.Decoder) {
	ins.Code = d.String()
	ins.DeviceType = state.DeviceType(d.U8())
	ins.PublicIP = d.IPv4()
	n := d.VecLen()
	ins.DzPrefixes = make([]netip.Prefix, 0, n)
	for i := 0; i < n; i++ {
		ins.DzPrefixes = append(ins.DzPrefixes, d.IPv4Net())
	}
	ins.MgmtVrf = d.String()
	ins.MetricsPublisher = d.Pubkey()
	ins.MaxUsers = d.U16()
}

type ActivateDevice struct{ noArgs }

func (*ActivateDevice) Opcode() Opcode { return OpActivateDevice }

type RejectDevice struct{ noArgs }

func (*RejectDevice) Opcode() Opcode { return OpRejectDevice }

type SuspendDevice struct{ noArgs }

func (*SuspendDevice) Opcode() Opcode { return OpSuspendDevice }

type ResumeDevice struct{ noArgs }

func (*ResumeDevice) Opcode() Opcode { return OpResumeDevice }

type SoftDrainDevice struct{ noArgs }

func (*SoftDrainDevice) Opcode() Opcode { return OpSoftDrainDevice }

type HardDrainDevice struct{ noArgs }

func (*HardDrainDevice) Opcode() Opcode { return OpHardDrainDevice }

// SetDeviceHealth is written by the health oracle only.
type SetDeviceHealth struct {
	Health state.DeviceHealth
}

func (*SetDeviceHealth) Opcode() Opcode { return OpSetDeviceHealth }

func (ins *SetDeviceHealth) encode(e *codec.Encoder) { e.U8(uint8(ins.Health)) }
func (ins *SetDeviceHealth) decode(d *codec.Decoder) { ins.Health = state.DeviceHealth(d.U8()) }

// SetDeviceMaxUsers resizes the seat count; it never evicts existing
// users, only caps future admissions.
type SetDeviceMaxUsers struct {
	MaxUsers uint16
}

func (*SetDeviceMaxUsers) Opcode() Opcode { return OpSetDeviceMaxUsers }

func (ins *SetDeviceMaxUsers) encode(e *codec.Encoder) { e.U16(ins.MaxUsers) }
func (ins *SetDeviceMaxUsers) decode(d *codec.Decoder) { ins.MaxUsers = d.U16() }

type DeleteDevice struct{ noArgs }

func (*DeleteDevice) Opcode() Opcode { return OpDeleteDevice }

type CloseAccountDevice struct{ noArgs }

func (*CloseAccountDevice) Opcode() Opcode { return OpCloseAccountDevice }

// CreateDeviceInterface appends an interface to the device. New
// interfaces are always written in the current variant; address and
// segment are assigned at activation.
type CreateDeviceInterface struct {
	Name               string
	InterfaceType      state.InterfaceType
	InterfaceCYOA      state.InterfaceCYOA
	InterfaceDIA       state.InterfaceDIA
	LoopbackType       state.LoopbackType
	Bandwidth          uint64
	CIR                uint64
	MTU                uint16
	RoutingMode        state.RoutingMode
	VlanID             uint16
	UserTunnelEndpoint bool
}

func (*CreateDeviceInterface) Opcode() Opcode { return OpCreateDeviceInterface }

func (ins *CreateDeviceInterface) encode(e *codec.Encoder) {
	e.String(ins.Name)
	e.U8(uint8(ins.InterfaceType))
	e.U8(uint8(ins.InterfaceCYOA))
	e.U8(uint8(ins.InterfaceDIA))
	e.U8(uint8(ins.LoopbackType))
	e.U64(ins.Bandwidth)
	e.U64(ins.CIR)
	e.U16(ins.MTU)
	e.U8(uint8(ins.RoutingMode))
	e.U16(ins.VlanID)
	e.Bool(ins.UserTunnelEndpoint)
}

func (ins *CreateDeviceInterface) decode(d *codec.Decoder) {
	ins.Name = d.String()
	ins.InterfaceType = state.InterfaceType(d.U8())
	ins.InterfaceCYOA = state.InterfaceCYOA(d.U8())
	ins.InterfaceDIA = state.InterfaceDIA(d.U8())
	ins.LoopbackType = state.LoopbackType(d.U8())
	ins.Bandwidth = d.U64()
	ins.CIR = d.U64()
	ins.MTU = d.U16()
	ins.RoutingMode = state.RoutingMode(d.U8())
	ins.VlanID = d.U16()
	ins.UserTunnelEndpoint = d.Bool()
}

// ActivateDeviceInterface assigns the interface its address and node
// segment and moves it to Activated.
type ActivateDeviceInterface struct {
	Name           string
	IpNet          netip.Prefix
	NodeSegmentIdx uint16
}

func (*ActivateDeviceInterface) Opcode() Opcode { return OpActivateDeviceInterface }

func (ins *ActivateDeviceInterface) encode(e *codec.Encoder) {
	e.String(ins.Name)
	e.IPv4Net(ins.IpNet)
	e.U16(ins.NodeSegmentIdx)
}

func (ins *ActivateDeviceInterface) decode(d *codec.Decoder) {
	ins.Name = d.String()
	ins.IpNet = d.IPv4Net()
	ins.NodeSegmentIdx = d.U16()
}

// RejectDeviceInterface moves a pending interface to Rejected.
type RejectDeviceInterface struct {
	Name string
}

func (*RejectDeviceInterface) Opcode() Opcode { return OpRejectDeviceInterface }

func (ins *RejectDeviceInterface) encode(e *codec.Encoder) { e.String(ins.Name) }
func (ins *RejectDeviceInterface) decode(d *codec.Decoder) { ins.Name = d.String() }

// UnlinkDeviceInterface detaches an interface from its link.
type UnlinkDeviceInterface struct {
	Name string
}

func (*UnlinkDeviceInterface) Opcode() Opcode { return OpUnlinkDeviceInterface }

func (ins *UnlinkDeviceInterface) encode(e *codec.Encoder) { e.String(ins.Name) }
func (ins *UnlinkDeviceInterface) decode(d *codec.Decoder) { ins.Name = d.String() }

// RemoveDeviceInterface deletes an interface from the device list.
type RemoveDeviceInterface struct {
	Name string
}

func (*RemoveDeviceInterface) Opcode() Opcode { return OpRemoveDeviceInterface }

func (ins *RemoveDeviceInterface) encode(e *codec.Encoder) { e.String(ins.Name) }
func (ins *RemoveDeviceInterface) decode(d *codec.Decoder) { ins.Name = d.String() }
