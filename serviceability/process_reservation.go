package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 signer (reservation authority), 1 globalstate,
// 2 reservation, 3 device (writable). The reservation takes a seat on
// the device immediately; admission under it converts the seat instead
// of taking a second one.
func processReserveConnection(ctx *runtime.Context, ins *instructions.ReserveConnection) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireReservation(gs, signer.Key); err != nil {
		return err
	}
	resAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	devAcc, err := writeAccount(ctx, 3)
	if err != nil {
		return err
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return err
	}
	if dev.Status != state.DeviceStatusActivated {
		return runtime.ErrInvalidStatus
	}
	if !dev.SeatsAvailable() {
		return runtime.ErrMaxUsersExceeded
	}
	key, bump, err := pda.DeriveReservationPDA(ctx.ProgramID, devAcc.Key, ins.ClientIP)
	if err != nil {
		return err
	}
	if err := expectKey(resAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	res := &state.Reservation{
		Owner:    signer.Key,
		BumpSeed: bump,
		DevicePK: devAcc.Key,
		ClientIP: ins.ClientIP,
	}
	dev.ReservedSeats++
	if err := store(resAcc, res); err != nil {
		return err
	}
	return store(devAcc, dev)
}

// Accounts: 0 signer, 1 globalstate, 2 reservation (writable), 3 device
// (writable), 4 recipient (writable). The seat goes back to the device.
func processCloseReservation(ctx *runtime.Context) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireReservation(gs, signer.Key); err != nil {
		return err
	}
	resAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	res, err := state.DeserializeReservation(resAcc.Data)
	if err != nil {
		return err
	}
	devAcc, err := writeAccount(ctx, 3)
	if err != nil {
		return err
	}
	if !devAcc.Key.Equals(res.DevicePK) {
		return runtime.ErrDanglingReference
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return err
	}
	recipient, err := ctx.WritableAccount(4)
	if err != nil {
		return err
	}
	if dev.ReservedSeats > 0 {
		dev.ReservedSeats--
	}
	if err := store(devAcc, dev); err != nil {
		return err
	}
	closeInto(resAcc, recipient)
	return nil
}
