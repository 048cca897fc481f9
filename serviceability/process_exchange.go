package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate (writable), 2 exchange,
// 3 globalconfig (writable, supplies the BGP community counter).
func processCreateExchange(ctx *runtime.Context, ins *instructions.CreateExchange) error {
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
	exAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	if err := claimIndex(gs, ins.Index); err != nil {
		return err
	}
	key, bump, err := pda.DeriveExchangePDA(ctx.ProgramID, ins.Index)
	if err != nil {
		return err
	}
	if err := expectKey(exAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}
	cfgAcc, err := writeAccount(ctx, 3)
	if err != nil {
		return err
	}
	cfg, err := state.DeserializeGlobalConfig(cfgAcc.Data)
	if err != nil {
		return err
	}

	ex := &state.Exchange{
		Owner:        payer.Key,
		Index:        ins.Index,
		BumpSeed:     bump,
		Status:       state.ExchangeStatusActivated,
		BGPCommunity: cfg.NextBGPCommunity,
		Code:         ins.Code,
		Name:         ins.Name,
		Lat:          ins.Lat,
		Lng:          ins.Lng,
	}
	cfg.NextBGPCommunity++
	if err := store(exAcc, ex); err != nil {
		return err
	}
	if err := store(cfgAcc, cfg); err != nil {
		return err
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate, 2 exchange (writable).
func processUpdateExchange(ctx *runtime.Context, ins *instructions.UpdateExchange) error {
	ex, exAcc, err := mutableExchange(ctx)
	if err != nil {
		return err
	}
	ex.Code = ins.Code
	ex.Name = ins.Name
	ex.Lat = ins.Lat
	ex.Lng = ins.Lng
	return store(exAcc, ex)
}

// Accounts: 0 signer, 1 globalstate, 2 exchange (writable), 3 device.
// Slot selects which of the two switch seats the device takes; a zero
// device key clears the seat.
func processSetExchangeDevice(ctx *runtime.Context, ins *instructions.SetExchangeDevice) error {
	ex, exAcc, err := mutableExchange(ctx)
	if err != nil {
		return err
	}
	devAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	if devAcc.Exists() {
		if _, err := state.DeserializeDevice(devAcc.Data); err != nil {
			return err
		}
	}
	switch ins.Slot {
	case 0:
		ex.Device1PK = devAcc.Key
	case 1:
		ex.Device2PK = devAcc.Key
	default:
		return runtime.ErrInvalidInstructionData
	}
	return store(exAcc, ex)
}

func processSuspendExchange(ctx *runtime.Context) error {
	ex, exAcc, err := mutableExchange(ctx)
	if err != nil {
		return err
	}
	if ex.Status != state.ExchangeStatusActivated {
		return runtime.ErrInvalidStatus
	}
	ex.Status = state.ExchangeStatusSuspended
	return store(exAcc, ex)
}

func processResumeExchange(ctx *runtime.Context) error {
	ex, exAcc, err := mutableExchange(ctx)
	if err != nil {
		return err
	}
	if ex.Status != state.ExchangeStatusSuspended {
		return runtime.ErrInvalidStatus
	}
	ex.Status = state.ExchangeStatusActivated
	return store(exAcc, ex)
}

func processDeleteExchange(ctx *runtime.Context) error {
	ex, exAcc, err := mutableExchange(ctx)
	if err != nil {
		return err
	}
	if ex.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	if ex.Status == state.ExchangeStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	ex.Status = state.ExchangeStatusDeleting
	return store(exAcc, ex)
}

// Accounts: 0 signer, 1 globalstate, 2 exchange (writable),
// 3 recipient (writable).
func processCloseAccountExchange(ctx *runtime.Context) error {
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
	exAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	ex, err := state.DeserializeExchange(exAcc.Data)
	if err != nil {
		return err
	}
	if ex.Status != state.ExchangeStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	if ex.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	closeInto(exAcc, recipient)
	return nil
}

func mutableExchange(ctx *runtime.Context) (*state.Exchange, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	exAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	ex, err := state.DeserializeExchange(exAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOwner(gs, ex.Owner, signer.Key); err != nil {
		return nil, nil, err
	}
	return ex, exAcc, nil
}
