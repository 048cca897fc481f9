package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 signer, 1 globalstate, 2 access pass, 3 user payer. The
// sentinel and foundation issue passes for anyone; a QA member may issue
// a prepaid pass for themselves.
func processCreateAccessPass(ctx *runtime.Context, ins *instructions.CreateAccessPass) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	payerAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	if err := requireSentinel(gs, signer.Key); err != nil {
		qaSelf := gs.IsQAMember(signer.Key) &&
			signer.Key.Equals(payerAcc.Key) &&
			ins.PassType.Kind == state.AccessPassKindPrepaid
		if !qaSelf {
			return err
		}
	}
	passAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	key, bump, err := pda.DeriveAccessPassPDA(ctx.ProgramID, ins.ClientIP, payerAcc.Key)
	if err != nil {
		return err
	}
	if err := expectKey(passAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	pass := &state.AccessPass{
		Owner:           signer.Key,
		BumpSeed:        bump,
		PassType:        ins.PassType,
		ClientIP:        ins.ClientIP,
		UserPayer:       payerAcc.Key,
		LastAccessEpoch: ctx.Epoch,
		Status:          state.AccessPassStatusRequested,
		Flags:           ins.Flags,
	}
	return store(passAcc, pass)
}

// Accounts: 0 signer, 1 globalstate, 2 access pass (writable).
func processUpdateAccessPass(ctx *runtime.Context, ins *instructions.UpdateAccessPass) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	pass.PassType = ins.PassType
	pass.Flags = ins.Flags
	return store(passAcc, pass)
}

func processConnectAccessPass(ctx *runtime.Context) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	switch pass.Status {
	case state.AccessPassStatusRequested, state.AccessPassStatusDisconnected:
	default:
		return runtime.ErrInvalidStatus
	}
	pass.Status = state.AccessPassStatusConnected
	pass.LastAccessEpoch = ctx.Epoch
	return store(passAcc, pass)
}

// Disconnect records that the last tunnel is gone; it refuses while
// connections remain.
func processDisconnectAccessPass(ctx *runtime.Context) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	if pass.ConnectionCount != 0 {
		return runtime.ErrAccessPassStillConnected
	}
	if pass.Status != state.AccessPassStatusConnected {
		return runtime.ErrInvalidStatus
	}
	pass.Status = state.AccessPassStatusDisconnected
	pass.LastAccessEpoch = ctx.Epoch
	return store(passAcc, pass)
}

// Accounts: 0 signer, 1 globalstate, 2 access pass (writable),
// 3 recipient (writable).
func processCloseAccessPass(ctx *runtime.Context) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	if pass.ConnectionCount != 0 {
		return runtime.ErrAccessPassStillConnected
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	closeInto(passAcc, recipient)
	return nil
}

func processAddAccessPassMgroupPub(ctx *runtime.Context, ins *instructions.AddAccessPassMgroupPub) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	if pass.AllowsPublish(ins.Group) {
		return nil
	}
	pass.MgroupPubAllowlist = append(pass.MgroupPubAllowlist, ins.Group)
	return store(passAcc, pass)
}

func processRemoveAccessPassMgroupPub(ctx *runtime.Context, ins *instructions.RemoveAccessPassMgroupPub) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	pass.MgroupPubAllowlist = removeMember(pass.MgroupPubAllowlist, ins.Group)
	return store(passAcc, pass)
}

func processAddAccessPassMgroupSub(ctx *runtime.Context, ins *instructions.AddAccessPassMgroupSub) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	if pass.AllowsSubscribe(ins.Group) {
		return nil
	}
	pass.MgroupSubAllowlist = append(pass.MgroupSubAllowlist, ins.Group)
	return store(passAcc, pass)
}

func processRemoveAccessPassMgroupSub(ctx *runtime.Context, ins *instructions.RemoveAccessPassMgroupSub) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	pass.MgroupSubAllowlist = removeMember(pass.MgroupSubAllowlist, ins.Group)
	return store(passAcc, pass)
}

func processAddAccessPassTenant(ctx *runtime.Context, ins *instructions.AddAccessPassTenant) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	for _, t := range pass.TenantAllowlist {
		if t.Equals(ins.Tenant) {
			return nil
		}
	}
	pass.TenantAllowlist = append(pass.TenantAllowlist, ins.Tenant)
	return store(passAcc, pass)
}

func processRemoveAccessPassTenant(ctx *runtime.Context, ins *instructions.RemoveAccessPassTenant) error {
	pass, passAcc, err := sentinelAccessPass(ctx)
	if err != nil {
		return err
	}
	pass.TenantAllowlist = removeMember(pass.TenantAllowlist, ins.Tenant)
	return store(passAcc, pass)
}

// sentinelAccessPass is the shared prologue of the pass maintenance
// instructions: signer at 0, globalstate at 1, writable pass at 2,
// sentinel authority required.
func sentinelAccessPass(ctx *runtime.Context) (*state.AccessPass, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSentinel(gs, signer.Key); err != nil {
		return nil, nil, err
	}
	passAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	pass, err := state.DeserializeAccessPass(passAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	return pass, passAcc, nil
}
