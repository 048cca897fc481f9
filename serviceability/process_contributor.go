package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate (writable), 2 contributor.
func processCreateContributor(ctx *runtime.Context, ins *instructions.CreateContributor) error {
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
	if err := requireFoundation(gs, payer.Key); err != nil {
		return err
	}
	cAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	if err := claimIndex(gs, ins.Index); err != nil {
		return err
	}
	key, bump, err := pda.DeriveContributorPDA(ctx.ProgramID, ins.Index)
	if err != nil {
		return err
	}
	if err := expectKey(cAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	c := &state.Contributor{
		Owner:        payer.Key,
		Index:        ins.Index,
		BumpSeed:     bump,
		Status:       state.ContributorStatusActivated,
		OpsManagerPK: ins.OpsManager,
		Code:         ins.Code,
	}
	if err := store(cAcc, c); err != nil {
		return err
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate, 2 contributor (writable).
func processUpdateContributor(ctx *runtime.Context, ins *instructions.UpdateContributor) error {
	c, cAcc, err := mutableContributor(ctx)
	if err != nil {
		return err
	}
	c.Code = ins.Code
	c.OpsManagerPK = ins.OpsManager
	return store(cAcc, c)
}

func processSuspendContributor(ctx *runtime.Context) error {
	c, cAcc, err := mutableContributor(ctx)
	if err != nil {
		return err
	}
	if c.Status != state.ContributorStatusActivated {
		return runtime.ErrInvalidStatus
	}
	c.Status = state.ContributorStatusSuspended
	return store(cAcc, c)
}

func processResumeContributor(ctx *runtime.Context) error {
	c, cAcc, err := mutableContributor(ctx)
	if err != nil {
		return err
	}
	if c.Status != state.ContributorStatusSuspended {
		return runtime.ErrInvalidStatus
	}
	c.Status = state.ContributorStatusActivated
	return store(cAcc, c)
}

func processDeleteContributor(ctx *runtime.Context) error {
	c, cAcc, err := mutableContributor(ctx)
	if err != nil {
		return err
	}
	if c.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	if c.Status == state.ContributorStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	c.Status = state.ContributorStatusDeleting
	return store(cAcc, c)
}

// Accounts: 0 signer, 1 globalstate, 2 contributor (writable),
// 3 recipient (writable).
func processCloseAccountContributor(ctx *runtime.Context) error {
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
	cAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	c, err := state.DeserializeContributor(cAcc.Data)
	if err != nil {
		return err
	}
	if c.Status != state.ContributorStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	if c.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	closeInto(cAcc, recipient)
	return nil
}

func mutableContributor(ctx *runtime.Context) (*state.Contributor, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	cAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	c, err := state.DeserializeContributor(cAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireContributor(gs, c, signer.Key); err != nil {
		return nil, nil, err
	}
	return c, cAcc, nil
}
