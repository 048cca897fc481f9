package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate (writable), 2 group,
// 3 tenant. Foundation members or the tenant's administrator may create
// groups under the tenant.
func processCreateMulticastGroup(ctx *runtime.Context, ins *instructions.CreateMulticastGroup) error {
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
	grpAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	tenantAcc, err := readAccount(ctx, 3)
	if err != nil {
		return err
	}
	tenant, err := state.DeserializeTenant(tenantAcc.Data)
	if err != nil {
		return err
	}
	if !payer.Key.Equals(tenant.AdministratorPK) && !gs.IsFoundationMember(payer.Key) {
		return runtime.ErrUnauthorized
	}

	if err := claimIndex(gs, ins.Index); err != nil {
		return err
	}
	key, bump, err := pda.DeriveMulticastGroupPDA(ctx.ProgramID, ins.Index)
	if err != nil {
		return err
	}
	if err := expectKey(grpAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	grp := &state.MulticastGroup{
		Owner:        payer.Key,
		Index:        ins.Index,
		BumpSeed:     bump,
		TenantPK:     tenantAcc.Key,
		Status:       state.MulticastGroupStatusPending,
		MaxBandwidth: ins.MaxBandwidth,
		Code:         ins.Code,
	}
	if err := store(grpAcc, grp); err != nil {
		return err
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate, 2 group (writable); with on-chain
// allocation additionally 3 multicast-block extension (writable).
func processActivateMulticastGroup(ctx *runtime.Context, ins *instructions.ActivateMulticastGroup) error {
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
	grpAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	grp, err := state.DeserializeMulticastGroup(grpAcc.Data)
	if err != nil {
		return err
	}
	if grp.Status != state.MulticastGroupStatusPending {
		return runtime.ErrInvalidStatus
	}

	if ins.UseOnchainAllocation {
		ext, extAcc, err := loadExtension(ctx, 3, state.AllocatorTypeIp)
		if err != nil {
			return err
		}
		ips, err := ext.IpAllocator()
		if err != nil {
			return err
		}
		ip, err := ips.Allocate()
		if err != nil {
			return err
		}
		ext.SyncIp(ips)
		if err := ext.StoreHeader(extAcc.Data); err != nil {
			return err
		}
		grp.MulticastIP = ip
	} else {
		grp.MulticastIP = ins.MulticastIP
	}
	grp.Status = state.MulticastGroupStatusActivated
	return store(grpAcc, grp)
}

// mutableMulticastGroup is the prologue of the owner-gated group
// operations: 0 signer (owner), 1 globalstate, 2 group (writable).
func mutableMulticastGroup(ctx *runtime.Context) (*state.MulticastGroup, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	grpAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	grp, err := state.DeserializeMulticastGroup(grpAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOwner(gs, grp.Owner, signer.Key); err != nil {
		return nil, nil, err
	}
	return grp, grpAcc, nil
}

// Accounts: 0 signer, 1 globalstate, 2 group (writable).
func processUpdateMulticastGroup(ctx *runtime.Context, ins *instructions.UpdateMulticastGroup) error {
	grp, grpAcc, err := mutableMulticastGroup(ctx)
	if err != nil {
		return err
	}
	grp.Code = ins.Code
	grp.MaxBandwidth = ins.MaxBandwidth
	return store(grpAcc, grp)
}

func processSuspendMulticastGroup(ctx *runtime.Context) error {
	grp, grpAcc, err := mutableMulticastGroup(ctx)
	if err != nil {
		return err
	}
	if grp.Status != state.MulticastGroupStatusActivated {
		return runtime.ErrInvalidStatus
	}
	grp.Status = state.MulticastGroupStatusSuspended
	return store(grpAcc, grp)
}

func processResumeMulticastGroup(ctx *runtime.Context) error {
	grp, grpAcc, err := mutableMulticastGroup(ctx)
	if err != nil {
		return err
	}
	if grp.Status != state.MulticastGroupStatusSuspended {
		return runtime.ErrInvalidStatus
	}
	grp.Status = state.MulticastGroupStatusActivated
	return store(grpAcc, grp)
}

// Delete refuses while the group still has members. Only an activated
// group can start deleting; Pending and Suspended groups are rejected
// with the status error, not the membership one.
func processDeleteMulticastGroup(ctx *runtime.Context) error {
	grp, grpAcc, err := mutableMulticastGroup(ctx)
	if err != nil {
		return err
	}
	if grp.Status != state.MulticastGroupStatusActivated {
		return runtime.ErrInvalidStatus
	}
	if !grp.Empty() {
		return runtime.ErrMulticastGroupNotEmpty
	}
	grp.Status = state.MulticastGroupStatusDeleting
	return store(grpAcc, grp)
}

// Accounts: 0 signer, 1 globalstate, 2 group (writable), 3 recipient
// (writable); with on-chain deallocation additionally 4 multicast-block
// extension (writable).
func processCloseAccountMulticastGroup(ctx *runtime.Context, ins *instructions.CloseAccountMulticastGroup) error {
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
	grpAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	grp, err := state.DeserializeMulticastGroup(grpAcc.Data)
	if err != nil {
		return err
	}
	if grp.Status != state.MulticastGroupStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	if !grp.Empty() {
		return runtime.ErrMulticastGroupStillReferenced
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	if ins.UseOnchainDeallocation {
		ext, extAcc, err := loadExtension(ctx, 4, state.AllocatorTypeIp)
		if err != nil {
			return err
		}
		ips, err := ext.IpAllocator()
		if err != nil {
			return err
		}
		ips.Deallocate(grp.MulticastIP)
		ext.SyncIp(ips)
		if err := ext.StoreHeader(extAcc.Data); err != nil {
			return err
		}
	}
	closeInto(grpAcc, recipient)
	return nil
}

// Accounts: 0 signer (user owner), 1 globalstate, 2 group (writable),
// 3 user (writable), 4 access pass. Roles already held are no-ops.
// Only the user's first publisher role changes its provisioned shape,
// so later publisher additions and all subscriber-only changes leave
// the user status alone.
func processSubscribeMulticastGroup(ctx *runtime.Context, ins *instructions.SubscribeMulticastGroup) error {
	grp, grpAcc, user, userAcc, pass, err := multicastMembership(ctx)
	if err != nil {
		return err
	}
	if grp.Status != state.MulticastGroupStatusActivated {
		return runtime.ErrInvalidStatus
	}
	changed := false
	reprovision := false
	if ins.Publisher && !user.IsPublisher(grpAcc.Key) {
		if !pass.AllowsPublish(grpAcc.Key) {
			return runtime.ErrMulticastGroupNotAllowed
		}
		reprovision = len(user.Publishers) == 0
		user.Publishers = append(user.Publishers, grpAcc.Key)
		grp.PublisherCount++
		changed = true
	}
	if ins.Subscriber && !user.IsSubscriber(grpAcc.Key) {
		if !pass.AllowsSubscribe(grpAcc.Key) {
			return runtime.ErrMulticastGroupNotAllowed
		}
		user.Subscribers = append(user.Subscribers, grpAcc.Key)
		grp.SubscriberCount++
		changed = true
	}
	if !changed {
		return nil
	}
	if reprovision && user.Status == state.UserStatusActivated {
		user.Status = state.UserStatusUpdating
	}
	if err := store(grpAcc, grp); err != nil {
		return err
	}
	return store(userAcc, user)
}

// Accounts: as SubscribeMulticastGroup. Dropping the user's last
// publisher role forces a reprovision; earlier drops keep the shape.
func processUnsubscribeMulticastGroup(ctx *runtime.Context, ins *instructions.UnsubscribeMulticastGroup) error {
	grp, grpAcc, user, userAcc, _, err := multicastMembership(ctx)
	if err != nil {
		return err
	}
	changed := false
	reprovision := false
	if ins.Publisher && user.IsPublisher(grpAcc.Key) {
		user.Publishers = removeMember(user.Publishers, grpAcc.Key)
		if grp.PublisherCount > 0 {
			grp.PublisherCount--
		}
		changed = true
		reprovision = len(user.Publishers) == 0
	}
	if ins.Subscriber && user.IsSubscriber(grpAcc.Key) {
		user.Subscribers = removeMember(user.Subscribers, grpAcc.Key)
		if grp.SubscriberCount > 0 {
			grp.SubscriberCount--
		}
		changed = true
	}
	if !changed {
		return nil
	}
	if reprovision && user.Status == state.UserStatusActivated {
		user.Status = state.UserStatusUpdating
	}
	if err := store(grpAcc, grp); err != nil {
		return err
	}
	return store(userAcc, user)
}

// multicastMembership loads the membership account set and enforces that
// the user's owner signs and the access pass at 4 is the pass the user
// was admitted under.
func multicastMembership(ctx *runtime.Context) (*state.MulticastGroup, *runtime.Account, *state.User, *runtime.Account, *state.AccessPass, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	grpAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	grp, err := state.DeserializeMulticastGroup(grpAcc.Data)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	userAcc, err := writeAccount(ctx, 3)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if err := requireOwner(gs, user.Owner, signer.Key); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if user.UserType != state.UserTypeMulticast {
		return nil, nil, nil, nil, nil, runtime.ErrInvalidStatus
	}
	passAcc, err := readAccount(ctx, 4)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	passKey, _, err := pda.DeriveAccessPassPDA(ctx.ProgramID, user.ClientIP, user.Owner)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if !passAcc.Key.Equals(passKey) {
		return nil, nil, nil, nil, nil, runtime.ErrUnauthorized
	}
	pass, err := state.DeserializeAccessPass(passAcc.Data)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return grp, grpAcc, user, userAcc, pass, nil
}
