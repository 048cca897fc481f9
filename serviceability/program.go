package serviceability

import (
	"go.uber.org/zap"

	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/runtime"
)

// Process is the program entrypoint: decode, dispatch, and let the host
// commit or roll back.
func Process(ctx *runtime.Context) error {
	ins, err := instructions.Decode(ctx.Data)
	if err != nil {
		return err
	}
	if ctx.Logger != nil {
		ctx.Logger.Debug("processing instruction",
			zap.Stringer("opcode", ins.Opcode()),
			zap.Int("accounts", len(ctx.Accounts)),
			zap.Uint64("epoch", ctx.Epoch))
	}

	switch ins := ins.(type) {
	case *instructions.InitGlobalState:
		return processInitGlobalState(ctx)
	case *instructions.SetGlobalConfig:
		return processSetGlobalConfig(ctx, ins)
	case *instructions.SetProgramConfig:
		return processSetProgramConfig(ctx, ins)
	case *instructions.SetAuthority:
		return processSetAuthority(ctx, ins)
	case *instructions.SetAirdropAmounts:
		return processSetAirdropAmounts(ctx, ins)
	case *instructions.AddFoundationAllowlist:
		return processAddFoundationAllowlist(ctx, ins)
	case *instructions.RemoveFoundationAllowlist:
		return processRemoveFoundationAllowlist(ctx, ins)
	case *instructions.AddQAAllowlist:
		return processAddQAAllowlist(ctx, ins)
	case *instructions.RemoveQAAllowlist:
		return processRemoveQAAllowlist(ctx, ins)
	case *instructions.CreateLocation:
		return processCreateLocation(ctx, ins)
	case *instructions.UpdateLocation:
		return processUpdateLocation(ctx, ins)
	case *instructions.SuspendLocation:
		return processSuspendLocation(ctx)
	case *instructions.ResumeLocation:
		return processResumeLocation(ctx)
	case *instructions.DeleteLocation:
		return processDeleteLocation(ctx)
	case *instructions.CloseAccountLocation:
		return processCloseAccountLocation(ctx)
	case *instructions.CreateExchange:
		return processCreateExchange(ctx, ins)
	case *instructions.UpdateExchange:
		return processUpdateExchange(ctx, ins)
	case *instructions.SetExchangeDevice:
		return processSetExchangeDevice(ctx, ins)
	case *instructions.SuspendExchange:
		return processSuspendExchange(ctx)
	case *instructions.ResumeExchange:
		return processResumeExchange(ctx)
	case *instructions.DeleteExchange:
		return processDeleteExchange(ctx)
	case *instructions.CloseAccountExchange:
		return processCloseAccountExchange(ctx)
	case *instructions.CreateContributor:
		return processCreateContributor(ctx, ins)
	case *instructions.UpdateContributor:
		return processUpdateContributor(ctx, ins)
	case *instructions.SuspendContributor:
		return processSuspendContributor(ctx)
	case *instructions.ResumeContributor:
		return processResumeContributor(ctx)
	case *instructions.DeleteContributor:
		return processDeleteContributor(ctx)
	case *instructions.CloseAccountContributor:
		return processCloseAccountContributor(ctx)
	case *instructions.CreateDevice:
		return processCreateDevice(ctx, ins)
	case *instructions.UpdateDevice:
		return processUpdateDevice(ctx, ins)
	case *instructions.ActivateDevice:
		return processActivateDevice(ctx)
	case *instructions.RejectDevice:
		return processRejectDevice(ctx)
	case *instructions.SuspendDevice:
		return processSuspendDevice(ctx)
	case *instructions.ResumeDevice:
		return processResumeDevice(ctx)
	case *instructions.SoftDrainDevice:
		return processSoftDrainDevice(ctx)
	case *instructions.HardDrainDevice:
		return processHardDrainDevice(ctx)
	case *instructions.SetDeviceHealth:
		return processSetDeviceHealth(ctx, ins)
	case *instructions.SetDeviceMaxUsers:
		return processSetDeviceMaxUsers(ctx, ins)
	case *instructions.DeleteDevice:
		return processDeleteDevice(ctx)
	case *instructions.CloseAccountDevice:
		return processCloseAccountDevice(ctx)
	case *instructions.CreateDeviceInterface:
		return processCreateDeviceInterface(ctx, ins)
	case *instructions.ActivateDeviceInterface:
		return processActivateDeviceInterface(ctx, ins)
	case *instructions.RejectDeviceInterface:
		return processRejectDeviceInterface(ctx, ins)
	case *instructions.UnlinkDeviceInterface:
		return processUnlinkDeviceInterface(ctx, ins)
	case *instructions.RemoveDeviceInterface:
		return processRemoveDeviceInterface(ctx, ins)
	case *instructions.CreateLink:
		return processCreateLink(ctx, ins)
	case *instructions.AcceptLink:
		return processAcceptLink(ctx, ins)
	case *instructions.ActivateLink:
		return processActivateLink(ctx, ins)
	case *instructions.UpdateLink:
		return processUpdateLink(ctx, ins)
	case *instructions.SuspendLink:
		return processSuspendLink(ctx)
	case *instructions.ResumeLink:
		return processResumeLink(ctx)
	case *instructions.SoftDrainLink:
		return processSoftDrainLink(ctx)
	case *instructions.HardDrainLink:
		return processHardDrainLink(ctx)
	case *instructions.SetLinkHealth:
		return processSetLinkHealth(ctx, ins)
	case *instructions.DeleteLink:
		return processDeleteLink(ctx)
	case *instructions.CloseAccountLink:
		return processCloseAccountLink(ctx, ins)
	case *instructions.CreateUser:
		return processCreateUser(ctx, ins)
	case *instructions.ActivateUser:
		return processActivateUser(ctx, ins)
	case *instructions.UpdateUser:
		return processUpdateUser(ctx, ins)
	case *instructions.RequestBanUser:
		return processRequestBanUser(ctx)
	case *instructions.BanUser:
		return processBanUser(ctx)
	case *instructions.DeleteUser:
		return processDeleteUser(ctx)
	case *instructions.CloseAccountUser:
		return processCloseAccountUser(ctx, ins)
	case *instructions.CreateMulticastGroup:
		return processCreateMulticastGroup(ctx, ins)
	case *instructions.ActivateMulticastGroup:
		return processActivateMulticastGroup(ctx, ins)
	case *instructions.UpdateMulticastGroup:
		return processUpdateMulticastGroup(ctx, ins)
	case *instructions.SuspendMulticastGroup:
		return processSuspendMulticastGroup(ctx)
	case *instructions.ResumeMulticastGroup:
		return processResumeMulticastGroup(ctx)
	case *instructions.DeleteMulticastGroup:
		return processDeleteMulticastGroup(ctx)
	case *instructions.CloseAccountMulticastGroup:
		return processCloseAccountMulticastGroup(ctx, ins)
	case *instructions.SubscribeMulticastGroup:
		return processSubscribeMulticastGroup(ctx, ins)
	case *instructions.UnsubscribeMulticastGroup:
		return processUnsubscribeMulticastGroup(ctx, ins)
	case *instructions.CreateAccessPass:
		return processCreateAccessPass(ctx, ins)
	case *instructions.UpdateAccessPass:
		return processUpdateAccessPass(ctx, ins)
	case *instructions.ConnectAccessPass:
		return processConnectAccessPass(ctx)
	case *instructions.DisconnectAccessPass:
		return processDisconnectAccessPass(ctx)
	case *instructions.CloseAccessPass:
		return processCloseAccessPass(ctx)
	case *instructions.AddAccessPassMgroupPub:
		return processAddAccessPassMgroupPub(ctx, ins)
	case *instructions.RemoveAccessPassMgroupPub:
		return processRemoveAccessPassMgroupPub(ctx, ins)
	case *instructions.AddAccessPassMgroupSub:
		return processAddAccessPassMgroupSub(ctx, ins)
	case *instructions.RemoveAccessPassMgroupSub:
		return processRemoveAccessPassMgroupSub(ctx, ins)
	case *instructions.AddAccessPassTenant:
		return processAddAccessPassTenant(ctx, ins)
	case *instructions.RemoveAccessPassTenant:
		return processRemoveAccessPassTenant(ctx, ins)
	case *instructions.ReserveConnection:
		return processReserveConnection(ctx, ins)
	case *instructions.CloseReservation:
		return processCloseReservation(ctx)
	case *instructions.InitResourceExtension:
		return processInitResourceExtension(ctx, ins)
	case *instructions.AllocateResource:
		return processAllocateResource(ctx, ins)
	case *instructions.DeallocateResource:
		return processDeallocateResource(ctx, ins)
	case *instructions.CreateTenant:
		return processCreateTenant(ctx, ins)
	case *instructions.CloseTenant:
		return processCloseTenant(ctx)
	}
	return runtime.ErrInvalidInstructionData
}
