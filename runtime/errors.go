package runtime

import "fmt"

// ProgramError is a domain failure with a stable numeric code. Clients
// discriminate on the code ("custom program error: 0xNN"), so codes are
// frozen: adding kinds is fine, renumbering is not.
type ProgramError struct {
	Code uint32
	Name string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("custom program error: %#x (%s)", e.Code, e.Name)
}

func newError(code uint32, name string) *ProgramError {
	return &ProgramError{Code: code, Name: name}
}

var (
	ErrUnauthorized             = newError(0x01, "Unauthorized")
	ErrAccountTypeMismatch      = newError(0x02, "AccountTypeMismatch")
	ErrDeserializationFailure   = newError(0x03, "DeserializationFailure")
	ErrInvalidIndex             = newError(0x04, "InvalidIndex")
	ErrInvalidAccountOwner      = newError(0x05, "InvalidAccountOwner")
	ErrMissingSigner            = newError(0x06, "MissingSigner")
	ErrInvalidStatus            = newError(0x07, "InvalidStatus")
	ErrInvalidInstructionData   = newError(0x08, "InvalidInstructionData")
	ErrReferenceCountNonZero    = newError(0x09, "ReferenceCountNonZero")
	ErrDanglingReference        = newError(0x0a, "DanglingReference")
	ErrActivatorRequired        = newError(0x0b, "ActivatorRequired")
	ErrSentinelRequired         = newError(0x0c, "SentinelRequired")
	ErrHealthOracleRequired     = newError(0x0d, "HealthOracleRequired")
	ErrReservationUnauthorized  = newError(0x0e, "ReservationUnauthorized")
	ErrNoResourcesAvailable     = newError(0x0f, "NoResourcesAvailable")
	ErrAlreadyAllocated         = newError(0x10, "AlreadyAllocated")
	ErrNotAllocated             = newError(0x11, "NotAllocated")
	ErrExtensionMissing         = newError(0x12, "ExtensionMissing")
	ErrAccessPassStillConnected = newError(0x13, "AccessPassStillConnected")
	ErrMaxUsersExceeded         = newError(0x14, "MaxUsersExceeded")
	ErrInvalidInterfaceName     = newError(0x15, "InvalidInterfaceName")
	ErrInvalidVlanId            = newError(0x16, "InvalidVlanId")
	ErrCyoaRequiresPhysical     = newError(0x17, "CyoaRequiresPhysical")
	ErrInvalidInterfaceIp       = newError(0x18, "InvalidInterfaceIp")
	ErrAccountShapeMismatch     = newError(0x19, "AccountShapeMismatch")
	ErrAccountNotWritable       = newError(0x1a, "AccountNotWritable")
	ErrInvalidClientIp          = newError(0x1b, "InvalidClientIp")
	ErrTenantNotAllowed         = newError(0x1c, "TenantNotAllowed")
	ErrInterfaceNotFound        = newError(0x1d, "InterfaceNotFound")
	ErrAccountAlreadyExists     = newError(0x1e, "AccountAlreadyExists")
	ErrInvalidLinkEndpoints     = newError(0x1f, "InvalidLinkEndpoints")
	ErrContributorMismatch      = newError(0x20, "ContributorMismatch")
	ErrMulticastGroupNotAllowed = newError(0x21, "MulticastGroupNotAllowed")
	ErrSamplesAccountFull       = newError(0x22, "SamplesAccountFull")
	ErrEpochMismatch            = newError(0x23, "EpochMismatch")
	ErrInterfaceAlreadyExists   = newError(0x38, "InterfaceAlreadyExists")
	ErrMulticastGroupNotEmpty   = newError(0x47, "MulticastGroupNotEmpty")
	// Emitted by the close-account path; clients distinguish it from the
	// delete path's 0x47.
	ErrMulticastGroupStillReferenced = newError(0x71, "MulticastGroupNotEmpty")
)
