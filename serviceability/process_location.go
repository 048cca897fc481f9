package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate (writable), 2 location.
func processCreateLocation(ctx *runtime.Context, ins *instructions.CreateLocation) error {
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
	locAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	if err := claimIndex(gs, ins.Index); err != nil {
		return err
	}
	key, bump, err := pda.DeriveLocationPDA(ctx.ProgramID, ins.Index)
	if err != nil {
		return err
	}
	if err := expectKey(locAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	loc := &state.Location{
		Owner:    payer.Key,
		Index:    ins.Index,
		BumpSeed: bump,
		Status:   state.LocationStatusActivated,
		Code:     ins.Code,
		Name:     ins.Name,
		Country:  ins.Country,
		Lat:      ins.Lat,
		Lng:      ins.Lng,
	}
	if err := store(locAcc, loc); err != nil {
		return err
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate, 2 location (writable).
func processUpdateLocation(ctx *runtime.Context, ins *instructions.UpdateLocation) error {
	loc, locAcc, err := mutableLocation(ctx)
	if err != nil {
		return err
	}
	loc.Code = ins.Code
	loc.Name = ins.Name
	loc.Country = ins.Country
	loc.Lat = ins.Lat
	loc.Lng = ins.Lng
	return store(locAcc, loc)
}

func processSuspendLocation(ctx *runtime.Context) error {
	loc, locAcc, err := mutableLocation(ctx)
	if err != nil {
		return err
	}
	if loc.Status != state.LocationStatusActivated {
		return runtime.ErrInvalidStatus
	}
	loc.Status = state.LocationStatusSuspended
	return store(locAcc, loc)
}

func processResumeLocation(ctx *runtime.Context) error {
	loc, locAcc, err := mutableLocation(ctx)
	if err != nil {
		return err
	}
	if loc.Status != state.LocationStatusSuspended {
		return runtime.ErrInvalidStatus
	}
	loc.Status = state.LocationStatusActivated
	return store(locAcc, loc)
}

// Delete refuses while devices still point here; the close must not
// leave dangling references behind.
func processDeleteLocation(ctx *runtime.Context) error {
	loc, locAcc, err := mutableLocation(ctx)
	if err != nil {
		return err
	}
	if loc.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	if loc.Status == state.LocationStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	loc.Status = state.LocationStatusDeleting
	return store(locAcc, loc)
}

// Accounts: 0 signer, 1 globalstate, 2 location (writable),
// 3 recipient (writable).
func processCloseAccountLocation(ctx *runtime.Context) error {
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
	locAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	loc, err := state.DeserializeLocation(locAcc.Data)
	if err != nil {
		return err
	}
	if loc.Status != state.LocationStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	if loc.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	closeInto(locAcc, recipient)
	return nil
}

// mutableLocation is the shared prologue of the metadata and status
// instructions: signer at 0, globalstate at 1, writable location at 2,
// owner or foundation required.
func mutableLocation(ctx *runtime.Context) (*state.Location, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	locAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	loc, err := state.DeserializeLocation(locAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOwner(gs, loc.Owner, signer.Key); err != nil {
		return nil, nil, err
	}
	return loc, locAcc, nil
}
