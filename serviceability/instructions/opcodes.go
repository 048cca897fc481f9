package instructions

import "fmt"

// Opcode is the first byte of every serviceability instruction.
type Opcode uint8

const (
	OpInitGlobalState Opcode = iota
	OpSetGlobalConfig
	OpSetProgramConfig
	OpSetAuthority
	OpSetAirdropAmounts
	OpAddFoundationAllowlist
	OpRemoveFoundationAllowlist
	OpAddQAAllowlist
	OpRemoveQAAllowlist
	OpCreateLocation
	OpUpdateLocation
	OpSuspendLocation
	OpResumeLocation
	OpDeleteLocation
	OpCloseAccountLocation
	OpCreateExchange
	OpUpdateExchange
	OpSetExchangeDevice
	OpSuspendExchange
	OpResumeExchange
	OpDeleteExchange
	OpCloseAccountExchange
	OpCreateContributor
	OpUpdateContributor
	OpSuspendContributor
	OpResumeContributor
	OpDeleteContributor
	OpCloseAccountContributor
	OpCreateDevice
	OpUpdateDevice
	OpActivateDevice
	OpRejectDevice
	OpSuspendDevice
	OpResumeDevice
	OpSoftDrainDevice
	OpHardDrainDevice
	OpSetDeviceHealth
	OpSetDeviceMaxUsers
	OpDeleteDevice
	OpCloseAccountDevice
	OpCreateDeviceInterface
	OpActivateDeviceInterface
	OpRejectDeviceInterface
	OpUnlinkDeviceInterface
	OpRemoveDeviceInterface
	OpCreateLink
	OpAcceptLink
	OpActivateLink
	OpUpdateLink
	OpSuspendLink
	OpResumeLink
	OpSoftDrainLink
	OpHardDrainLink
	OpSetLinkHealth
	OpDeleteLink
	OpCloseAccountLink
	OpCreateUser
	OpActivateUser
	OpUpdateUser
	OpRequestBanUser
	OpBanUser
	OpDeleteUser
	OpCloseAccountUser
	OpCreateMulticastGroup
	OpActivateMulticastGroup
	OpUpdateMulticastGroup
	OpSuspendMulticastGroup
	OpResumeMulticastGroup
	OpDeleteMulticastGroup
	OpCloseAccountMulticastGroup
	OpSubscribeMulticastGroup
	OpUnsubscribeMulticastGroup
	OpCreateAccessPass
	OpUpdateAccessPass
	OpConnectAccessPass
	OpDisconnectAccessPass
	OpCloseAccessPass
	OpAddAccessPassMgroupPub
	OpRemoveAccessPassMgroupPub
	OpAddAccessPassMgroupSub
	OpRemoveAccessPassMgroupSub
	OpAddAccessPassTenant
	OpRemoveAccessPassTenant
	OpReserveConnection
	OpCloseReservation
	OpInitResourceExtension
	OpAllocateResource
	OpDeallocateResource
	OpCreateTenant
	OpCloseTenant

	opCount
)

var opcodeNames = [opCount]string{
	OpInitGlobalState:            "InitGlobalState",
	OpSetGlobalConfig:            "SetGlobalConfig",
	OpSetProgramConfig:           "SetProgramConfig",
	OpSetAuthority:               "SetAuthority",
	OpSetAirdropAmounts:          "SetAirdropAmounts",
	OpAddFoundationAllowlist:     "AddFoundationAllowlist",
	OpRemoveFoundationAllowlist:  "RemoveFoundationAllowlist",
	OpAddQAAllowlist:             "AddQAAllowlist",
	OpRemoveQAAllowlist:          "RemoveQAAllowlist",
	OpCreateLocation:             "CreateLocation",
	OpUpdateLocation:             "UpdateLocation",
	OpSuspendLocation:            "SuspendLocation",
	OpResumeLocation:             "ResumeLocation",
	OpDeleteLocation:             "DeleteLocation",
	OpCloseAccountLocation:       "CloseAccountLocation",
	OpCreateExchange:             "CreateExchange",
	OpUpdateExchange:             "UpdateExchange",
	OpSetExchangeDevice:          "SetExchangeDevice",
	OpSuspendExchange:            "SuspendExchange",
	OpResumeExchange:             "ResumeExchange",
	OpDeleteExchange:             "DeleteExchange",
	OpCloseAccountExchange:       "CloseAccountExchange",
	OpCreateContributor:          "CreateContributor",
	OpUpdateContributor:          "UpdateContributor",
	OpSuspendContributor:         "SuspendContributor",
	OpResumeContributor:          "ResumeContributor",
	OpDeleteContributor:          "DeleteContributor",
	OpCloseAccountContributor:    "CloseAccountContributor",
	OpCreateDevice:               "CreateDevice",
	OpUpdateDevice:               "UpdateDevice",
	OpActivateDevice:             "ActivateDevice",
	OpRejectDevice:               "RejectDevice",
	OpSuspendDevice:              "SuspendDevice",
	OpResumeDevice:               "ResumeDevice",
	OpSoftDrainDevice:            "SoftDrainDevice",
	OpHardDrainDevice:            "HardDrainDevice",
	OpSetDeviceHealth:            "SetDeviceHealth",
	OpSetDeviceMaxUsers:          "SetDeviceMaxUsers",
	OpDeleteDevice:               "DeleteDevice",
	OpCloseAccountDevice:         "CloseAccountDevice",
	OpCreateDeviceInterface:      "CreateDeviceInterface",
	OpActivateDeviceInterface:    "ActivateDeviceInterface",
	OpRejectDeviceInterface:      "RejectDeviceInterface",
	OpUnlinkDeviceInterface:      "UnlinkDeviceInterface",
	OpRemoveDeviceInterface:      "RemoveDeviceInterface",
	OpCreateLink:                 "CreateLink",
	OpAcceptLink:                 "AcceptLink",
	OpActivateLink:               "ActivateLink",
	OpUpdateLink:                 "UpdateLink",
	OpSuspendLink:                "SuspendLink",
	OpResumeLink:                 "ResumeLink",
	OpSoftDrainLink:              "SoftDrainLink",
	OpHardDrainLink:              "HardDrainLink",
	OpSetLinkHealth:              "SetLinkHealth",
	OpDeleteLink:                 "DeleteLink",
	OpCloseAccountLink:           "CloseAccountLink",
	OpCreateUser:                 "CreateUser",
	OpActivateUser:               "ActivateUser",
	OpUpdateUser:                 "UpdateUser",
	OpRequestBanUser:             "RequestBanUser",
	OpBanUser:                    "BanUser",
	OpDeleteUser:                 "DeleteUser",
	OpCloseAccountUser:           "CloseAccountUser",
	OpCreateMulticastGroup:       "CreateMulticastGroup",
	OpActivateMulticastGroup:     "ActivateMulticastGroup",
	OpUpdateMulticastGroup:       "UpdateMulticastGroup",
	OpSuspendMulticastGroup:      "SuspendMulticastGroup",
	OpResumeMulticastGroup:       "ResumeMulticastGroup",
	OpDeleteMulticastGroup:       "DeleteMulticastGroup",
	OpCloseAccountMulticastGroup: "CloseAccountMulticastGroup",
	OpSubscribeMulticastGroup:    "SubscribeMulticastGroup",
	OpUnsubscribeMulticastGroup:  "UnsubscribeMulticastGroup",
	OpCreateAccessPass:           "CreateAccessPass",
	OpUpdateAccessPass:           "UpdateAccessPass",
	OpConnectAccessPass:          "ConnectAccessPass",
	OpDisconnectAccessPass:       "DisconnectAccessPass",
	OpCloseAccessPass:            "CloseAccessPass",
	OpAddAccessPassMgroupPub:     "AddAccessPassMgroupPub",
	OpRemoveAccessPassMgroupPub:  "RemoveAccessPassMgroupPub",
	OpAddAccessPassMgroupSub:     "AddAccessPassMgroupSub",
	OpRemoveAccessPassMgroupSub:  "RemoveAccessPassMgroupSub",
	OpAddAccessPassTenant:        "AddAccessPassTenant",
	OpRemoveAccessPassTenant:     "RemoveAccessPassTenant",
	OpReserveConnection:          "ReserveConnection",
	OpCloseReservation:           "CloseReservation",
	OpInitResourceExtension:      "InitResourceExtension",
	OpAllocateResource:           "AllocateResource",
	OpDeallocateResource:         "DeallocateResource",
	OpCreateTenant:               "CreateTenant",
	OpCloseTenant:                "CloseTenant",
}

func (op Opcode) String() string {
	if op < opCount {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}
