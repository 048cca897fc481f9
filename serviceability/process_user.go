package serviceability

import (
	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate, 2 user, 3 device
// (writable), 4 access pass (writable), optional 5 reservation
// (writable). Admission is self-service: the access pass for
// (client IP, payer) is the authority. A reservation, when present,
// converts its held seat instead of taking a fresh one.
func processCreateUser(ctx *runtime.Context, ins *instructions.CreateUser) error {
	payer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	userAcc, err := newAccount(ctx, 2)
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
	passAcc, err := writeAccount(ctx, 4)
	if err != nil {
		return err
	}
	pass, err := state.DeserializeAccessPass(passAcc.Data)
	if err != nil {
		return err
	}
	if pass.Status == state.AccessPassStatusClosed {
		return runtime.ErrInvalidStatus
	}
	if !pass.UserPayer.Equals(payer.Key) {
		return runtime.ErrUnauthorized
	}
	if pass.Flags&state.AccessPassFlagAllowMultipleIP == 0 && pass.ClientIP != ins.ClientIP {
		return runtime.ErrInvalidClientIp
	}

	key, bump, err := pda.DeriveUserPDA(ctx.ProgramID, ins.ClientIP, uint8(ins.UserType))
	if err != nil {
		return err
	}
	if err := expectKey(userAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	// A reservation held for this client carries its own seat.
	reserved := false
	if len(ctx.Accounts) > 5 {
		resAcc, err := writeAccount(ctx, 5)
		if err != nil {
			return err
		}
		res, err := state.DeserializeReservation(resAcc.Data)
		if err != nil {
			return err
		}
		if !res.DevicePK.Equals(devAcc.Key) || res.ClientIP != ins.ClientIP {
			return runtime.ErrReservationUnauthorized
		}
		if dev.ReservedSeats == 0 {
			return runtime.ErrReservationUnauthorized
		}
		dev.ReservedSeats--
		closeInto(resAcc, payer)
		reserved = true
	}
	if !reserved && !dev.SeatsAvailable() {
		return runtime.ErrMaxUsersExceeded
	}

	user := &state.User{
		Owner:    payer.Key,
		BumpSeed: bump,
		UserType: ins.UserType,
		CyoaType: ins.CyoaType,
		Status:   state.UserStatusPending,
		DevicePK: devAcc.Key,
		ClientIP: ins.ClientIP,
	}
	userAcc.Lamports += gs.UserAirdropLamports

	dev.UsersCount++
	if ins.UserType == state.UserTypeMulticast {
		dev.MulticastUsersCount++
	} else {
		dev.UnicastUsersCount++
	}
	pass.ConnectionCount++
	pass.Status = state.AccessPassStatusConnected
	pass.LastAccessEpoch = ctx.Epoch

	if err := store(userAcc, user); err != nil {
		return err
	}
	if err := store(devAcc, dev); err != nil {
		return err
	}
	return store(passAcc, pass)
}

// Accounts: 0 signer, 1 globalstate, 2 user (writable), 3 device; with
// on-chain allocation additionally 4 tunnel-ids extension (writable),
// 5 user-tunnel-block extension (writable), and, for allocated-IP user
// types, 6 dz-prefix extension (writable).
func processActivateUser(ctx *runtime.Context, ins *instructions.ActivateUser) error {
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
	userAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return err
	}
	switch user.Status {
	case state.UserStatusPending, state.UserStatusUpdating:
	default:
		return runtime.ErrInvalidStatus
	}
	devAcc, err := readAccount(ctx, 3)
	if err != nil {
		return err
	}
	if !devAcc.Key.Equals(user.DevicePK) {
		return runtime.ErrDanglingReference
	}

	if ins.UseOnchainAllocation {
		idExt, idAcc, err := loadExtension(ctx, 4, state.AllocatorTypeId)
		if err != nil {
			return err
		}
		netExt, netAcc, err := loadExtension(ctx, 5, state.AllocatorTypeIp)
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
		user.TunnelID = id
		user.TunnelNet = tunnelNet

		if user.UserType == state.UserTypeIBRLWithAllocatedIP {
			dzExt, dzAcc, err := loadExtension(ctx, 6, state.AllocatorTypeIp)
			if err != nil {
				return err
			}
			dzs, err := dzExt.IpAllocator()
			if err != nil {
				return err
			}
			dzIP, err := dzs.Allocate()
			if err != nil {
				return err
			}
			dzExt.SyncIp(dzs)
			if err := dzExt.StoreHeader(dzAcc.Data); err != nil {
				return err
			}
			user.DzIP = dzIP
		} else {
			user.DzIP = user.ClientIP
		}
	} else {
		user.TunnelID = ins.TunnelID
		user.TunnelNet = ins.TunnelNet
		user.DzIP = ins.DzIP
	}
	user.Status = state.UserStatusActivated
	return store(userAcc, user)
}

// Accounts: 0 signer, 1 globalstate, 2 user (writable). An activated
// user falls back to Updating until the activator reprovisions the
// tunnel with the new parameters.
func processUpdateUser(ctx *runtime.Context, ins *instructions.UpdateUser) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	userAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return err
	}
	if err := requireOwner(gs, user.Owner, signer.Key); err != nil {
		return err
	}
	switch user.Status {
	case state.UserStatusPendingBan, state.UserStatusBanned, state.UserStatusDeleting:
		return runtime.ErrInvalidStatus
	}
	user.CyoaType = ins.CyoaType
	user.ValidatorPubkey = ins.ValidatorPubkey
	if user.Status == state.UserStatusActivated {
		user.Status = state.UserStatusUpdating
	}
	return store(userAcc, user)
}

// Accounts: 0 signer (sentinel), 1 globalstate, 2 user (writable).
func processRequestBanUser(ctx *runtime.Context) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireSentinel(gs, signer.Key); err != nil {
		return err
	}
	userAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return err
	}
	switch user.Status {
	case state.UserStatusPendingBan, state.UserStatusBanned, state.UserStatusDeleting:
		return runtime.ErrInvalidStatus
	}
	user.Status = state.UserStatusPendingBan
	return store(userAcc, user)
}

// Accounts: 0 signer (activator), 1 globalstate, 2 user (writable). The
// activator confirms the tunnel is down before the ban lands.
func processBanUser(ctx *runtime.Context) error {
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
	userAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return err
	}
	if user.Status != state.UserStatusPendingBan {
		return runtime.ErrInvalidStatus
	}
	user.Status = state.UserStatusBanned
	return store(userAcc, user)
}

// Accounts: 0 signer, 1 globalstate, 2 user (writable). The owner or the
// sentinel may request deletion.
func processDeleteUser(ctx *runtime.Context) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	userAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return err
	}
	if !signer.Key.Equals(user.Owner) && !signer.Key.Equals(gs.SentinelAuthority) && !gs.IsFoundationMember(signer.Key) {
		return runtime.ErrUnauthorized
	}
	if user.Status == state.UserStatusDeleting {
		return runtime.ErrInvalidStatus
	}
	user.Status = state.UserStatusDeleting
	return store(userAcc, user)
}

// Accounts: 0 signer, 1 globalstate, 2 user (writable), 3 recipient
// (writable), 4 device (writable), 5 access pass (writable); with
// on-chain deallocation additionally 6 tunnel-ids extension (writable),
// 7 user-tunnel-block extension (writable), and, for allocated-IP user
// types, 8 dz-prefix extension (writable).
func processCloseAccountUser(ctx *runtime.Context, ins *instructions.CloseAccountUser) error {
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
	userAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	user, err := state.DeserializeUser(userAcc.Data)
	if err != nil {
		return err
	}
	switch user.Status {
	case state.UserStatusDeleting, state.UserStatusBanned, state.UserStatusRejected:
	default:
		return runtime.ErrInvalidStatus
	}
	recipient, err := ctx.WritableAccount(3)
	if err != nil {
		return err
	}
	devAcc, err := writeAccount(ctx, 4)
	if err != nil {
		return err
	}
	dev, err := state.DeserializeDevice(devAcc.Data)
	if err != nil {
		return err
	}
	if !devAcc.Key.Equals(user.DevicePK) {
		return runtime.ErrDanglingReference
	}
	passAcc, err := writeAccount(ctx, 5)
	if err != nil {
		return err
	}
	pass, err := state.DeserializeAccessPass(passAcc.Data)
	if err != nil {
		return err
	}

	if ins.UseOnchainDeallocation {
		idExt, idAcc, err := loadExtension(ctx, 6, state.AllocatorTypeId)
		if err != nil {
			return err
		}
		netExt, netAcc, err := loadExtension(ctx, 7, state.AllocatorTypeIp)
		if err != nil {
			return err
		}
		ids, err := idExt.IdAllocator()
		if err != nil {
			return err
		}
		ids.Deallocate(user.TunnelID)
		nets, err := netExt.IpAllocator()
		if err != nil {
			return err
		}
		nets.DeallocateBlock(user.TunnelNet)
		idExt.SyncId(ids)
		netExt.SyncIp(nets)
		if err := idExt.StoreHeader(idAcc.Data); err != nil {
			return err
		}
		if err := netExt.StoreHeader(netAcc.Data); err != nil {
			return err
		}
		if user.UserType == state.UserTypeIBRLWithAllocatedIP {
			dzExt, dzAcc, err := loadExtension(ctx, 8, state.AllocatorTypeIp)
			if err != nil {
				return err
			}
			dzs, err := dzExt.IpAllocator()
			if err != nil {
				return err
			}
			dzs.Deallocate(user.DzIP)
			dzExt.SyncIp(dzs)
			if err := dzExt.StoreHeader(dzAcc.Data); err != nil {
				return err
			}
		}
	}

	if dev.UsersCount > 0 {
		dev.UsersCount--
	}
	if user.UserType == state.UserTypeMulticast {
		if dev.MulticastUsersCount > 0 {
			dev.MulticastUsersCount--
		}
	} else if dev.UnicastUsersCount > 0 {
		dev.UnicastUsersCount--
	}
	if pass.ConnectionCount > 0 {
		pass.ConnectionCount--
	}
	if pass.ConnectionCount == 0 && pass.Status == state.AccessPassStatusConnected {
		pass.Status = state.AccessPassStatusDisconnected
		pass.LastAccessEpoch = ctx.Epoch
	}
	if err := store(devAcc, dev); err != nil {
		return err
	}
	if err := store(passAcc, pass); err != nil {
		return err
	}
	closeInto(userAcc, recipient)
	return nil
}
