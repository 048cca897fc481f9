package serviceability

import (
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate (writable), 2 link,
// 3 contributor (writable), 4 side-A device (writable), 5 side-Z device
// (writable). Both devices and the contributor take a reference. The
// link starts Requested; the side-Z contributor accepts it separately.
func processCreateLink(ctx *runtime.Context, ins *instructions.CreateLink) error {
	payer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gsAcc, err := writeAccount(ctx, 1)
	if err != nil {
		return err
	}
	gs, err := state.DeserializeGlobalState(gsAcc.Data)
	if err != nil {
		return err
	}
	linkAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	conAcc, err := writeAccount(ctx, 3)
	if err != nil {
		return err
	}
	con, err := state.DeserializeContributor(conAcc.Data)
	if err != nil {
		return err
	}
	if err := requireContributor(gs, con, payer.Key); err != nil {
		return err
	}
	if con.Status != state.ContributorStatusActivated {
		return runtime.ErrInvalidStatus
	}
	sideAAcc, err := writeAccount(ctx, 4)
	if err != nil {
		return err
	}
	sideA, err := state.DeserializeDevice(sideAAcc.Data)
	if err != nil {
		return err
	}
	sideZAcc, err := writeAccount(ctx, 5)
	if err != nil {
		return err
	}
	sideZ, err := state.DeserializeDevice(sideZAcc.Data)
	if err != nil {
		return err
	}
	if sideAAcc.Key.Equals(sideZAcc.Key) {
		return runtime.ErrInvalidLinkEndpoints
	}
	if sideA.Status != state.DeviceStatusActivated || sideZ.Status != state.DeviceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	if !sideA.ContributorPK.Equals(conAcc.Key) {
		return runtime.ErrContributorMismatch
	}
	i := sideA.FindInterface(ins.SideAIfaceName)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	if sideA.Interfaces[i].Status == state.InterfaceStatusRejected {
		return runtime.ErrInvalidStatus
	}

	if err := claimIndex(gs, ins.Index); err != nil {
		return err
	}
	key, bump, err := pda.DeriveLinkPDA(ctx.ProgramID, ins.Index)
	if err != nil {
		return err
	}
	if err := expectKey(linkAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	link := &state.Link{
		Owner:          payer.Key,
		Index:          ins.Index,
		BumpSeed:       bump,
		SideAPK:        sideAAcc.Key,
		SideZPK:        sideZAcc.Key,
		ContributorPK:  conAcc.Key,
		LinkType:       ins.LinkType,
		Status:         state.LinkStatusRequested,
		DesiredStatus:  state.LinkStatusActivated,
		Health:         state.LinkHealthUnknown,
		Code:           ins.Code,
		SideAIfaceName: ins.SideAIfaceName,
		Bandwidth:      ins.Bandwidth,
		MTU:            ins.MTU,
		DelayNs:        ins.DelayNs,
		JitterNs:       ins.JitterNs,
	}
	con.ReferenceCount++
	sideA.ReferenceCount++
	sideZ.ReferenceCount++
	if err := store(linkAcc, link); err != nil {
		return err
	}
	if err := store(conAcc, con); err != nil {
		return err
	}
	if err := store(sideAAcc, sideA); err != nil {
		return err
	}
	if err := store(sideZAcc, sideZ); err != nil {
		return err
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate, 2 link (writable), 3 side-Z device,
// 4 side-Z contributor. The accepting signer must act for the side-Z
// device's contributor, which may differ from the link's owner.
func processAcceptLink(ctx *runtime.Context, ins *instructions.AcceptLink) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	linkAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	link, err := state.DeserializeLink(linkAcc.Data)
	if err != nil {
		return err
	}
	if link.Status != state.LinkStatusRequested {
		return runtime.ErrInvalidStatus
	}
	sideZAcc, err := readAccount(ctx, 3)
	if err != nil {
		return err
	}
	if !sideZAcc.Key.Equals(link.SideZPK) {
		return runtime.ErrInvalidLinkEndpoints
	}
	sideZ, err := state.DeserializeDevice(sideZAcc.Data)
	if err != nil {
		return err
	}
	conAcc, err := readAccount(ctx, 4)
	if err != nil {
		return err
	}
	if !conAcc.Key.Equals(sideZ.ContributorPK) {
		return runtime.ErrContributorMismatch
	}
	con, err := state.DeserializeContributor(conAcc.Data)
	if err != nil {
		return err
	}
	if err := requireContributor(gs, con, signer.Key); err != nil {
		return err
	}
	i := sideZ.FindInterface(ins.SideZIfaceName)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	if sideZ.Interfaces[i].Status == state.InterfaceStatusRejected {
		return runtime.ErrInvalidStatus
	}

	link.SideZIfaceName = ins.SideZIfaceName
	link.Status = state.LinkStatusPending
	return store(linkAcc, link)
}

// Accounts: 0 signer, 1 globalstate, 2 link (writable); with on-chain
// allocation additionally 3 link-ids extension (writable) and 4
// device-tunnel-block extension (writable). Legacy mode trusts the
// activator's values and leaves the pools untouched; the two modes are
// remembered on the record so close can tell them apart.
func processActivateLink(ctx *runtime.Context, ins *instructions.ActivateLink) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireActivator(gs, signer.Key); err != nil {
		return err
	}
	linkAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	link, err := state.DeserializeLink(linkAcc.Data)
	if err != nil {
		return err
	}
	if link.Status != state.LinkStatusPending {
		return runtime.ErrInvalidStatus
	}

	if ins.UseOnchainAllocation {
		idExt, idAcc, err := loadExtension(ctx, 3, state.AllocatorTypeId)
		if err != nil {
			return err
		}
		netExt, netAcc, err := loadExtension(ctx, 4, state.AllocatorTypeIp)
		if err != nil {
			return err
		}
		ids, err := idExt.IdAllocator()
		if err != nil {
			return err
		}
		id, err := ids.Allocate()
		if err != nil {
			return err
		}
		nets, err := netExt.IpAllocator()
		if err != nil {
			return err
		}
		tunnelNet, err := nets.AllocateBlock(31)
		if err != nil {
			return err
		}
		idExt.SyncId(ids)
		netExt.SyncIp(nets)
		if err := idExt.StoreHeader(idAcc.Data); err != nil {
			return err
		}
		if err := netExt.StoreHeader(netAcc.Data); err != nil {
			return err
		}
		link.TunnelID = id
		link.TunnelNet = tunnelNet
		link.OnchainAllocated = true
	} else {
		link.TunnelID = ins.TunnelID
		link.TunnelNet = ins.TunnelNet
		link.OnchainAllocated = false
	}
	link.Status = state.LinkStatusActivated
	return store(linkAcc, link)
}

// Accounts: 0 signer, 1 globalstate, 2 link (writable), 3 contributor.
func processUpdateLink(ctx *runtime.Context, ins *instructions.UpdateLink) error {
	link, linkAcc, err := mutableLink(ctx)
	if err != nil {
		return err
	}
	link.Bandwidth = ins.Bandwidth
	link.MTU = ins.MTU
	link.DelayNs = ins.DelayNs
	link.JitterNs = ins.JitterNs
	link.DelayOverrideNs = ins.DelayOverrideNs
	return store(linkAcc, link)
}

func processSuspendLink(ctx *runtime.Context) error {
	link, linkAcc, err := mutableLink(ctx)
	if err != nil {
		return err
	}
	if link.Status != state.LinkStatusActivated {
		return runtime.ErrInvalidStatus
	}
	link.Status = state.LinkStatusSuspended
	return store(linkAcc, link)
}

func processResumeLink(ctx *runtime.Context) error {
	link, linkAcc, err := mutableLink(ctx)
	if err != nil {
		return err
	}
	switch link.Status {
	case state.LinkStatusSuspended, state.LinkStatusSoftDrained, state.LinkStatusHardDrained:
	default:
		return runtime.ErrInvalidStatus
	}
	link.Status = state.LinkStatusActivated
	link.DesiredStatus = state.LinkStatusActivated
	return store(linkAcc, link)
}

func processSoftDrainLink(ctx *runtime.Context) error {
	link, linkAcc, err := mutableLink(ctx)
	if err != nil {
		return err
	}
	if link.Status != state.LinkStatusActivated {
		return runtime.ErrInvalidStatus
	}
	link.Status = state.LinkStatusSoftDrained
	link.DesiredStatus = state.LinkStatusSoftDrained
	return store(linkAcc, link)
}

func processHardDrainLink(ctx *runtime.Context) error {
	link, linkAcc, err := mutableLink(ctx)
	if err != nil {
		return err
	}
	switch link.Status {
	case state.LinkStatusActivated, state.LinkStatusSoftDrained:
	default:
		return runtime.ErrInvalidStatus
	}
	link.Status = state.LinkStatusHardDrained
	link.DesiredStatus = state.LinkStatusHardDrained
	return store(linkAcc, link)
}

// Accounts: 0 signer (health oracle), 1 globalstate, 2 link (writable).
func processSetLinkHealth(ctx *runtime.Context, ins *instructions.SetLinkHealth) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireHealthOracle(gs, signer.Key); err != nil {
		return err
	}
	linkAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	link, err := state.DeserializeLink(linkAcc.Data)
	if err != nil {
		return err
	}
	link.Health = ins.Health
	return store(linkAcc, link)
}

// Accounts: 0 signer, 1 globalstate, 2 link (writable), 3 contributor,
// 4 side-A device, 5 side-Z device. A link whose endpoint interfaces
// are still carrying traffic cannot start deleting unless it was
// drained first.
func processDeleteLink(ctx *runtime.Context) error {
	link, linkAcc, err := mutableLink(ctx)
	if err != nil {
		return err
	}
	if link.Status == state.LinkStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	drained := link.Status == state.LinkStatusSoftDrained ||
		link.Status == state.LinkStatusHardDrained
	if !drained {
		if err := requireEndpointDetached(ctx, 4, link.SideAPK, link.SideAIfaceName); err != nil {
			return err
		}
		if err := requireEndpointDetached(ctx, 5, link.SideZPK, link.SideZIfaceName); err != nil {
			return err
		}
	}
	link.Status = state.LinkStatusDeleting
	return store(linkAcc, link)
}

// requireEndpointDetached fails with the status error while the named
// interface on the endpoint device is still Activated.
func requireEndpointDetached(ctx *runtime.Context, idx int, devKey solana.PublicKey, ifaceName string) error {
	devAcc, err := readAccount(ctx, idx)
	if err != nil {
		return err
	}
	if !devAcc.Key.Equals(devKey) {
		return runtime.ErrInvalidLinkEndpoints
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return err
	}
	if i := dev.FindInterface(ifaceName); i >= 0 &&
		dev.Interfaces[i].Status == state.InterfaceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	return nil
}

// Accounts: 0 signer, 1 globalstate, 2 link (writable), 3 recipient
// (writable), 4 contributor (writable), 5 side-A device (writable),
// 6 side-Z device (writable); with on-chain deallocation additionally
// 7 link-ids extension (writable) and 8 device-tunnel-block extension
// (writable).
func processCloseAccountLink(ctx *runtime.Context, ins *instructions.CloseAccountLink) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireActivator(gs, signer.Key); err != nil {
		return err
	}
	linkAcc, err := writeAccount(ctx, 2)
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
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	conAcc, err := writeAccount(ctx, 4)
	if err != nil {
		return err
	}
	con, err := state.DeserializeContributor(conAcc.Data)
	if err != nil {
		return err
	}
	sideAAcc, err := writeAccount(ctx, 5)
	if err != nil {
		return err
	}
	sideA, err := state.DeserializeDevice(sideAAcc.Data)
	if err != nil {
		return err
	}
	sideZAcc, err := writeAccount(ctx, 6)
	if err != nil {
		return err
	}
	sideZ, err := state.DeserializeDevice(sideZAcc.Data)
	if err != nil {
		return err
	}
	if !conAcc.Key.Equals(link.ContributorPK) || !sideAAcc.Key.Equals(link.SideAPK) || !sideZAcc.Key.Equals(link.SideZPK) {
		return runtime.ErrDanglingReference
	}

	if ins.UseOnchainDeallocation {
		if !link.OnchainAllocated {
			return runtime.ErrNotAllocated
		}
		idExt, idAcc, err := loadExtension(ctx, 7, state.AllocatorTypeId)
		if err != nil {
			return err
		}
		netExt, netAcc, err := loadExtension(ctx, 8, state.AllocatorTypeIp)
		if err != nil {
			return err
		}
		ids, err := idExt.IdAllocator()
		if err != nil {
			return err
		}
		ids.Deallocate(link.TunnelID)
		nets, err := netExt.IpAllocator()
		if err != nil {
			return err
		}
		nets.DeallocateBlock(link.TunnelNet)
		idExt.SyncId(ids)
		netExt.SyncIp(nets)
		if err := idExt.StoreHeader(idAcc.Data); err != nil {
			return err
		}
		if err := netExt.StoreHeader(netAcc.Data); err != nil {
			return err
		}
	}

	if con.ReferenceCount > 0 {
		con.ReferenceCount--
	}
	if sideA.ReferenceCount > 0 {
		sideA.ReferenceCount--
	}
	if sideZ.ReferenceCount > 0 {
		sideZ.ReferenceCount--
	}
	if err := store(conAcc, con); err != nil {
		return err
	}
	if err := store(sideAAcc, sideA); err != nil {
		return err
	}
	if err := store(sideZAcc, sideZ); err != nil {
		return err
	}
	closeInto(linkAcc, recipient)
	return nil
}

// mutableLink is the shared prologue of the contributor-facing link
// instructions: signer at 0, globalstate at 1, writable link at 2,
// contributor at 3.
func mutableLink(ctx *runtime.Context) (*state.Link, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	linkAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	link, err := state.DeserializeLink(linkAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	conAcc, err := readAccount(ctx, 3)
	if err != nil {
		return nil, nil, err
	}
	if !conAcc.Key.Equals(link.ContributorPK) {
		return nil, nil, runtime.ErrContributorMismatch
	}
	con, err := state.DeserializeContributor(conAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireContributor(gs, con, signer.Key); err != nil {
		return nil, nil, err
	}
	return link, linkAcc, nil
}
