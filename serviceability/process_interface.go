package serviceability

import (
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Interface instructions share the device account layouts: the
// contributor-facing ones take 0 signer, 1 globalstate, 2 device
// (writable), 3 contributor; the activator-facing ones drop the
// contributor.

func processCreateDeviceInterface(ctx *runtime.Context, ins *instructions.CreateDeviceInterface) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	iface := state.Interface{
		Version:            1,
		Status:             state.InterfaceStatusPending,
		Name:               ins.Name,
		InterfaceType:      ins.InterfaceType,
		InterfaceCYOA:      ins.InterfaceCYOA,
		InterfaceDIA:       ins.InterfaceDIA,
		LoopbackType:       ins.LoopbackType,
		Bandwidth:          ins.Bandwidth,
		CIR:                ins.CIR,
		MTU:                ins.MTU,
		RoutingMode:        ins.RoutingMode,
		VlanID:             ins.VlanID,
		UserTunnelEndpoint: ins.UserTunnelEndpoint,
	}
	if err := dev.AddInterface(iface); err != nil {
		return err
	}
	return store(devAcc, dev)
}

func processActivateDeviceInterface(ctx *runtime.Context, ins *instructions.ActivateDeviceInterface) error {
	dev, devAcc, err := activatorDevice(ctx)
	if err != nil {
		return err
	}
	i := dev.FindInterface(ins.Name)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	iface := &dev.Interfaces[i]
	switch iface.Status {
	case state.InterfaceStatusPending, state.InterfaceStatusUnlinked:
	default:
		return runtime.ErrInvalidStatus
	}
	iface.IpNet = ins.IpNet
	iface.NodeSegmentIdx = ins.NodeSegmentIdx
	iface.Status = state.InterfaceStatusActivated
	if err := iface.Validate(); err != nil {
		return err
	}
	return store(devAcc, dev)
}

func processRejectDeviceInterface(ctx *runtime.Context, ins *instructions.RejectDeviceInterface) error {
	dev, devAcc, err := activatorDevice(ctx)
	if err != nil {
		return err
	}
	i := dev.FindInterface(ins.Name)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	if dev.Interfaces[i].Status != state.InterfaceStatusPending {
		return runtime.ErrInvalidStatus
	}
	dev.Interfaces[i].Status = state.InterfaceStatusRejected
	return store(devAcc, dev)
}

// An optional link account at 3 ties the unlink to a teardown: when
// passed, the link must already be Deleting.
func processUnlinkDeviceInterface(ctx *runtime.Context, ins *instructions.UnlinkDeviceInterface) error {
	dev, devAcc, err := activatorDevice(ctx)
	if err != nil {
		return err
	}
	i := dev.FindInterface(ins.Name)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	if dev.Interfaces[i].Status != state.InterfaceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	if len(ctx.Accounts) > 3 {
		linkAcc, err := readAccount(ctx, 3)
		if err != nil {
			return err
		}
		link, err := state.DeserializeLink(linkAcc.Data)
		if err != nil {
			return err
		}
		if link.Status != state.LinkStatusDeleting {
			return runtime.ErrInvalidStatus
		}
	}
	dev.Interfaces[i].Status = state.InterfaceStatusUnlinked
	return store(devAcc, dev)
}

// Activated interfaces must be unlinked before removal.
func processRemoveDeviceInterface(ctx *runtime.Context, ins *instructions.RemoveDeviceInterface) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	i := dev.FindInterface(ins.Name)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	if dev.Interfaces[i].Status == state.InterfaceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	if err := dev.RemoveInterface(ins.Name); err != nil {
		return err
	}
	return store(devAcc, dev)
}
