package state

import (
	"net/netip"
	"strings"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

// Interface variant tags. The tag is written in addition to the
// surrounding vector length inside Device.
const (
	interfaceTagV1 = 0
	interfaceTagV2 = 1
)

// Defaults applied when widening a V1 interface into the current view.
const (
	interfaceDefaultMTU = 1500
	maxVlanID           = 4094
	maxInterfaceName    = 64
)

// Interface is the normalized (V2) view of one device interface. Version
// records which variant the account stores: legacy V1 interfaces widen on
// read but are written back in their stored form until an update touches
// the V2-only fields.
type Interface struct {
	Version            uint8
	Status             InterfaceStatus
	Name               string
	InterfaceType      InterfaceType
	InterfaceCYOA      InterfaceCYOA
	InterfaceDIA       InterfaceDIA
	LoopbackType       LoopbackType
	Bandwidth          uint64
	CIR                uint64
	MTU                uint16
	RoutingMode        RoutingMode
	VlanID             uint16
	IpNet              netip.Prefix
	NodeSegmentIdx     uint16
	UserTunnelEndpoint bool
}

// WidenV1 fills the V2-only fields of a legacy interface with their
// defaults. Pure; the stored variant is untouched.
func WidenV1(v1 Interface) Interface {
	v1.InterfaceCYOA = InterfaceCYOANone
	v1.InterfaceDIA = InterfaceDIANone
	v1.Bandwidth = 0
	v1.CIR = 0
	v1.MTU = interfaceDefaultMTU
	v1.RoutingMode = RoutingModeStatic
	return v1
}

// Upgrade rewrites the stored variant to V2, keeping the widened view.
func (i *Interface) Upgrade() {
	i.Version = interfaceTagV2
}

// Size returns the encoded size of the interface in its stored variant.
func (i *Interface) Size() int {
	if i.Version == interfaceTagV1 {
		// tag + status + name + type + loopback + vlan + ip_net + segment + endpoint
		return 1 + 1 + stringSize(i.Name) + 1 + 1 + 2 + ipv4NetSize + 2 + 1
	}
	return 1 + 1 + stringSize(i.Name) + 1 + 1 + 1 + 1 + 8 + 8 + 2 + 1 + 2 + ipv4NetSize + 2 + 1
}

func (i *Interface) serialize(e *codec.Encoder) {
	e.U8(i.Version)
	e.U8(uint8(i.Status))
	e.String(i.Name)
	e.U8(uint8(i.InterfaceType))
	if i.Version == interfaceTagV1 {
		e.U8(uint8(i.LoopbackType))
		e.U16(i.VlanID)
		e.IPv4Net(orZeroNet(i.IpNet))
		e.U16(i.NodeSegmentIdx)
		e.Bool(i.UserTunnelEndpoint)
		return
	}
	e.U8(uint8(i.InterfaceCYOA))
	e.U8(uint8(i.InterfaceDIA))
	e.U8(uint8(i.LoopbackType))
	e.U64(i.Bandwidth)
	e.U64(i.CIR)
	e.U16(i.MTU)
	e.U8(uint8(i.RoutingMode))
	e.U16(i.VlanID)
	e.IPv4Net(orZeroNet(i.IpNet))
	e.U16(i.NodeSegmentIdx)
	e.Bool(i.UserTunnelEndpoint)
}

func deserializeInterface(d *codec.Decoder) Interface {
	var i Interface
	i.Version = d.U8()
	switch i.Version {
	case interfaceTagV1:
		i.Status = InterfaceStatus(d.U8())
		i.Name = d.String()
		i.InterfaceType = InterfaceType(d.U8())
		i.LoopbackType = LoopbackType(d.U8())
		i.VlanID = d.U16()
		i.IpNet = d.IPv4Net()
		i.NodeSegmentIdx = d.U16()
		i.UserTunnelEndpoint = d.Bool()
		i = WidenV1(i)
	case interfaceTagV2:
		i.Status = InterfaceStatus(d.U8())
		i.Name = d.String()
		i.InterfaceType = InterfaceType(d.U8())
		i.InterfaceCYOA = InterfaceCYOA(d.U8())
		i.InterfaceDIA = InterfaceDIA(d.U8())
		i.LoopbackType = LoopbackType(d.U8())
		i.Bandwidth = d.U64()
		i.CIR = d.U64()
		i.MTU = d.U16()
		i.RoutingMode = RoutingMode(d.U8())
		i.VlanID = d.U16()
		i.IpNet = d.IPv4Net()
		i.NodeSegmentIdx = d.U16()
		i.UserTunnelEndpoint = d.Bool()
	default:
		d.Fail("unknown interface variant")
	}
	return i
}

// Validate applies the interface-level domain rules.
func (i *Interface) Validate() error {
	name := strings.TrimSpace(i.Name)
	if name == "" || name != i.Name || len(i.Name) > maxInterfaceName {
		return runtime.ErrInvalidInterfaceName
	}
	if i.VlanID > maxVlanID {
		return runtime.ErrInvalidVlanId
	}
	if i.InterfaceCYOA != InterfaceCYOANone && i.InterfaceType != InterfaceTypePhysical {
		return runtime.ErrCyoaRequiresPhysical
	}
	if err := i.validateIP(); err != nil {
		return err
	}
	return nil
}

// validateIP enforces the address-class rules: interfaces that are neither
// CYOA nor DIA must carry private or link-local addresses, except
// loopbacks flagged as user tunnel endpoints.
func (i *Interface) validateIP() error {
	if !i.IpNet.IsValid() || i.IpNet == netip.PrefixFrom(zeroAddr, 0) {
		return nil
	}
	if i.InterfaceCYOA != InterfaceCYOANone || i.InterfaceDIA != InterfaceDIANone {
		return nil
	}
	if i.InterfaceType == InterfaceTypeLoopback && i.UserTunnelEndpoint {
		return nil
	}
	addr := i.IpNet.Addr()
	if addr.IsPrivate() || addr.IsLinkLocalUnicast() {
		return nil
	}
	return runtime.ErrInvalidInterfaceIp
}
