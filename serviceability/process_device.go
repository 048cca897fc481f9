package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate (writable), 2 device,
// 3 contributor (writable), 4 location (writable), 5 exchange
// (writable). The three parents take a reference each.
func processCreateDevice(ctx *runtime.Context, ins *instructions.CreateDevice) error {
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
	devAcc, err := newAccount(ctx, 2)
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
	locAcc, err := writeAccount(ctx, 4)
	if err != nil {
		return err
	}
	loc, err := state.DeserializeLocation(locAcc.Data)
	if err != nil {
		return err
	}
	if loc.Status != state.LocationStatusActivated {
		return runtime.ErrInvalidStatus
	}
	exAcc, err := writeAccount(ctx, 5)
	if err != nil {
		return err
	}
	ex, err := state.DeserializeExchange(exAcc.Data)
	if err != nil {
		return err
	}
	if ex.Status != state.ExchangeStatusActivated {
		return runtime.ErrInvalidStatus
	}

	if err := claimIndex(gs, ins.Index); err != nil {
		return err
	}
	key, bump, err := pda.DeriveDevicePDA(ctx.ProgramID, ins.Index)
	if err != nil {
		return err
	}
	if err := expectKey(devAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	dev := &state.Device{
		Owner:              payer.Key,
		Index:              ins.Index,
		BumpSeed:           bump,
		LocationPK:         locAcc.Key,
		ExchangePK:         exAcc.Key,
		ContributorPK:      conAcc.Key,
		MetricsPublisherPK: ins.MetricsPublisher,
		DeviceType:         ins.DeviceType,
		PublicIP:           ins.PublicIP,
		Status:             state.DeviceStatusPending,
		DesiredStatus:      state.DeviceStatusActivated,
		Health:             state.DeviceHealthUnknown,
		Code:               ins.Code,
		MgmtVrf:            ins.MgmtVrf,
		DzPrefixes:         ins.DzPrefixes,
		MaxUsers:           ins.MaxUsers,
	}
	if err := dev.Validate(); err != nil {
		return err
	}
	devAcc.Lamports += gs.DeviceAirdropLamports

	con.ReferenceCount++
	loc.ReferenceCount++
	ex.ReferenceCount++
	if err := store(devAcc, dev); err != nil {
		return err
	}
	if err := store(conAcc, con); err != nil {
		return err
	}
	if err := store(locAcc, loc); err != nil {
		return err
	}
	if err := store(exAcc, ex); err != nil {
		return err
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate, 2 device (writable),
// 3 contributor.
func processUpdateDevice(ctx *runtime.Context, ins *instructions.UpdateDevice) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	dev.Code = ins.Code
	dev.DeviceType = ins.DeviceType
	dev.PublicIP = ins.PublicIP
	dev.DzPrefixes = ins.DzPrefixes
	dev.MgmtVrf = ins.MgmtVrf
	dev.MetricsPublisherPK = ins.MetricsPublisher
	dev.MaxUsers = ins.MaxUsers
	if err := dev.Validate(); err != nil {
		return err
	}
	return store(devAcc, dev)
}

// Accounts: 0 signer, 1 globalstate, 2 device (writable).
func processActivateDevice(ctx *runtime.Context) error {
	dev, devAcc, err := activatorDevice(ctx)
	if err != nil {
		return err
	}
	if dev.Status != state.DeviceStatusPending {
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusActivated
	return store(devAcc, dev)
}

func processRejectDevice(ctx *runtime.Context) error {
	dev, devAcc, err := activatorDevice(ctx)
	if err != nil {
		return err
	}
	if dev.Status != state.DeviceStatusPending {
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusRejected
	return store(devAcc, dev)
}

func processSuspendDevice(ctx *runtime.Context) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	if dev.Status != state.DeviceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusSuspended
	return store(devAcc, dev)
}

// Resume recovers from Suspended and both drain states.
func processResumeDevice(ctx *runtime.Context) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	switch dev.Status {
	case state.DeviceStatusSuspended, state.DeviceStatusSoftDrained, state.DeviceStatusHardDrained:
	default:
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusActivated
	dev.DesiredStatus = state.DeviceStatusActivated
	return store(devAcc, dev)
}

// SoftDrain stops new admissions but keeps existing tunnels up.
func processSoftDrainDevice(ctx *runtime.Context) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	if dev.Status != state.DeviceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusSoftDrained
	dev.DesiredStatus = state.DeviceStatusSoftDrained
	return store(devAcc, dev)
}

// HardDrain additionally signals existing users to move off.
func processHardDrainDevice(ctx *runtime.Context) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	switch dev.Status {
	case state.DeviceStatusActivated, state.DeviceStatusSoftDrained:
	default:
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusHardDrained
	dev.DesiredStatus = state.DeviceStatusHardDrained
	return store(devAcc, dev)
}

// Accounts: 0 signer (health oracle), 1 globalstate, 2 device (writable).
func processSetDeviceHealth(ctx *runtime.Context, ins *instructions.SetDeviceHealth) error {
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
	devAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return err
	}
	dev.Health = ins.Health
	return store(devAcc, dev)
}

// The cap may shrink below the current population; existing users stay,
// new admissions stop until attrition catches up.
func processSetDeviceMaxUsers(ctx *runtime.Context, ins *instructions.SetDeviceMaxUsers) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	dev.MaxUsers = ins.MaxUsers
	return store(devAcc, dev)
}

func processDeleteDevice(ctx *runtime.Context) error {
	dev, devAcc, err := mutableDevice(ctx)
	if err != nil {
		return err
	}
	if dev.UsersCount != 0 || dev.ReservedSeats != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	if dev.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
	}
	if dev.Status == state.DeviceStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	dev.Status = state.DeviceStatusDeleting
	return store(devAcc, dev)
}

// Accounts: 0 signer, 1 globalstate, 2 device (writable), 3 recipient
// (writable), 4 contributor (writable), 5 location (writable),
// 6 exchange (writable). Parents give their reference back.
func processCloseAccountDevice(ctx *runtime.Context) error {
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
	devAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return err
	}
	if dev.Status != state.DeviceStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	if dev.UsersCount != 0 || dev.ReservedSeats != 0 || dev.ReferenceCount != 0 {
		return runtime.ErrReferenceCountNonZero
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
	locAcc, err := writeAccount(ctx, 5)
	if err != nil {
		return err
	}
	loc, err := state.DeserializeLocation(locAcc.Data)
	if err != nil {
		return err
	}
	exAcc, err := writeAccount(ctx, 6)
	if err != nil {
		return err
	}
	ex, err := state.DeserializeExchange(exAcc.Data)
	if err != nil {
		return err
	}
	if !conAcc.Key.Equals(dev.ContributorPK) || !locAcc.Key.Equals(dev.LocationPK) || !exAcc.Key.Equals(dev.ExchangePK) {
		return runtime.ErrDanglingReference
	}

	if con.ReferenceCount > 0 {
		con.ReferenceCount--
	}
	if loc.ReferenceCount > 0 {
		loc.ReferenceCount--
	}
	if ex.ReferenceCount > 0 {
		ex.ReferenceCount--
	}
	if err := store(conAcc, con); err != nil {
		return err
	}
	if err := store(locAcc, loc); err != nil {
		return err
	}
	if err := store(exAcc, ex); err != nil {
		return err
	}
	closeInto(devAcc, recipient)
	return nil
}

// mutableDevice is the shared prologue of the contributor-facing device
// instructions: signer at 0, globalstate at 1, writable device at 2,
// contributor at 3 for the authority check.
func mutableDevice(ctx *runtime.Context) (*state.Device, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	devAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	conAcc, err := readAccount(ctx, 3)
	if err != nil {
		return nil, nil, err
	}
	if !conAcc.Key.Equals(dev.ContributorPK) {
		return nil, nil, runtime.ErrContributorMismatch
	}
	con, err := state.DeserializeContributor(conAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireContributor(gs, con, signer.Key); err != nil {
		return nil, nil, err
	}
	return dev, devAcc, nil
}

// activatorDevice is the shared prologue of the activator-facing device
// instructions: signer at 0, globalstate at 1, writable device at 2.
func activatorDevice(ctx *runtime.Context) (*state.Device, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	if err := requireActivator(gs, signer.Key); err != nil {
		return nil, nil, err
	}
	devAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return nil, nil, err
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	return dev, devAcc, nil
}
