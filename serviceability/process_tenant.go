package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (foundation), 1 globalstate, 2 tenant.
func processCreateTenant(ctx *runtime.Context, ins *instructions.CreateTenant) error {
	payer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireFoundation(gs, payer.Key); err != nil {
		return err
	}
	tenAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	key, bump, err := pda.DeriveTenantPDA(ctx.ProgramID, ins.Code)
	if err != nil {
		return err
	}
	if err := expectKey(tenAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	ten := &state.Tenant{
		Owner:           payer.Key,
		BumpSeed:        bump,
		AdministratorPK: ins.Administrator,
		TokenAccountPK:  ins.TokenAccount,
		VrfID:           ins.VrfID,
		Code:            ins.Code,
	}
	return store(tenAcc, ten)
}

// Accounts: 0 signer (foundation), 1 globalstate, 2 tenant (writable),
// 3 recipient (writable).
func processCloseTenant(ctx *runtime.Context) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireFoundation(gs, signer.Key); err != nil {
		return err
	}
	tenAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	if _, err := state.DeserializeTenant(tenAcc.Data); err != nil {
		return err
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	closeInto(tenAcc, recipient)
	return nil
}
