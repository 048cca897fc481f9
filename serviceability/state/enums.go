package state

// AccountType discriminates every record kind; byte 0 of each account holds
// its numeric value.
type AccountType uint8

const (
	AccountTypeGlobalState       AccountType = 1
	AccountTypeGlobalConfig      AccountType = 2
	AccountTypeLocation          AccountType = 3
	AccountTypeExchange          AccountType = 4
	AccountTypeDevice            AccountType = 5
	AccountTypeLink              AccountType = 6
	AccountTypeUser              AccountType = 7
	AccountTypeMulticastGroup    AccountType = 8
	AccountTypeProgramConfig     AccountType = 9
	AccountTypeContributor       AccountType = 10
	AccountTypeAccessPass        AccountType = 11
	AccountTypeResourceExtension AccountType = 12
	AccountTypeReservation       AccountType = 13
	// Legacy, kept only for pre-v3 deployments.
	AccountTypeTenant AccountType = 14
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeGlobalState:
		return "globalstate"
	case AccountTypeGlobalConfig:
		return "globalconfig"
	case AccountTypeLocation:
		return "location"
	case AccountTypeExchange:
		return "exchange"
	case AccountTypeDevice:
		return "device"
	case AccountTypeLink:
		return "link"
	case AccountTypeUser:
		return "user"
	case AccountTypeMulticastGroup:
		return "multicastgroup"
	case AccountTypeProgramConfig:
		return "programconfig"
	case AccountTypeContributor:
		return "contributor"
	case AccountTypeAccessPass:
		return "accesspass"
	case AccountTypeResourceExtension:
		return "resource_extension"
	case AccountTypeReservation:
		return "reservation"
	case AccountTypeTenant:
		return "tenant"
	default:
		return "invalid"
	}
}

// LocationStatus is the Location lifecycle.
type LocationStatus uint8

const (
	LocationStatusPending   LocationStatus = 0
	LocationStatusActivated LocationStatus = 1
	LocationStatusSuspended LocationStatus = 2
	LocationStatusDeleting  LocationStatus = 3
)

// ExchangeStatus is the Exchange lifecycle.
type ExchangeStatus uint8

const (
	ExchangeStatusPending   ExchangeStatus = 0
	ExchangeStatusActivated ExchangeStatus = 1
	ExchangeStatusSuspended ExchangeStatus = 2
	ExchangeStatusDeleting  ExchangeStatus = 3
)

// ContributorStatus is the Contributor lifecycle.
type ContributorStatus uint8

const (
	ContributorStatusPending   ContributorStatus = 0
	ContributorStatusActivated ContributorStatus = 1
	ContributorStatusSuspended ContributorStatus = 2
	ContributorStatusDeleting  ContributorStatus = 3
)

// DeviceStatus is the observed Device lifecycle; DesiredStatus uses the
// same values to express operator intent.
type DeviceStatus uint8

const (
	DeviceStatusPending     DeviceStatus = 0
	DeviceStatusActivated   DeviceStatus = 1
	DeviceStatusSuspended   DeviceStatus = 2
	DeviceStatusDeleting    DeviceStatus = 3
	DeviceStatusDeleted     DeviceStatus = 4
	DeviceStatusRejected    DeviceStatus = 5
	DeviceStatusSoftDrained DeviceStatus = 6
	DeviceStatusHardDrained DeviceStatus = 7
)

// DeviceHealth is the data-plane condition reported by the health oracle.
type DeviceHealth uint8

const (
	DeviceHealthUnknown       DeviceHealth = 0
	DeviceHealthNotReady      DeviceHealth = 1
	DeviceHealthWarning       DeviceHealth = 2
	DeviceHealthReadyForUsers DeviceHealth = 3
)

// DeviceType classifies a device's role in the fabric.
type DeviceType uint8

const (
	DeviceTypeInvalid DeviceType = 0
	DeviceTypeSwitch  DeviceType = 1
	// Edge devices act as a switch-and-router hybrid.
	DeviceTypeEdge   DeviceType = 2
	DeviceTypeRouter DeviceType = 3
)

// LinkStatus is the Link lifecycle.
type LinkStatus uint8

const (
	LinkStatusPending     LinkStatus = 0
	LinkStatusActivated   LinkStatus = 1
	LinkStatusSuspended   LinkStatus = 2
	LinkStatusDeleting    LinkStatus = 3
	LinkStatusDeleted     LinkStatus = 4
	LinkStatusRejected    LinkStatus = 5
	LinkStatusRequested   LinkStatus = 6
	LinkStatusSoftDrained LinkStatus = 7
	LinkStatusHardDrained LinkStatus = 8
)

// LinkHealth mirrors DeviceHealth for links.
type LinkHealth uint8

const (
	LinkHealthUnknown  LinkHealth = 0
	LinkHealthNotReady LinkHealth = 1
	LinkHealthWarning  LinkHealth = 2
	LinkHealthReady    LinkHealth = 3
)

// LinkType distinguishes inter-metro WAN links from intra-metro DZX links.
type LinkType uint8

const (
	LinkTypeInvalid LinkType = 0
	LinkTypeWAN     LinkType = 1
	LinkTypeDZX     LinkType = 2
)

// UserStatus is the User lifecycle. Updating marks a user whose device-side
// IP must be reallocated by the activator.
type UserStatus uint8

const (
	UserStatusPending    UserStatus = 0
	UserStatusActivated  UserStatus = 1
	UserStatusSuspended  UserStatus = 2
	UserStatusDeleting   UserStatus = 3
	UserStatusDeleted    UserStatus = 4
	UserStatusRejected   UserStatus = 5
	UserStatusPendingBan UserStatus = 6
	UserStatusBanned     UserStatus = 7
	UserStatusUpdating   UserStatus = 8
)

// UserType classifies the connection kind.
type UserType uint8

const (
	UserTypeIBRL                UserType = 1
	UserTypeIBRLWithAllocatedIP UserType = 2
	UserTypeMulticast           UserType = 3
	UserTypeEdgeFiltering       UserType = 4
)

// UserCYOA is the tunnel encapsulation chosen by the user.
type UserCYOA uint8

const (
	UserCYOANone                  UserCYOA = 0
	UserCYOAGREOverDIA            UserCYOA = 1
	UserCYOAGREOverFabric         UserCYOA = 2
	UserCYOAGREOverPrivatePeering UserCYOA = 3
	UserCYOAGREOverPublicPeering  UserCYOA = 4
	UserCYOAGREOverCable          UserCYOA = 5
)

// MulticastGroupStatus is the MulticastGroup lifecycle.
type MulticastGroupStatus uint8

const (
	MulticastGroupStatusPending   MulticastGroupStatus = 0
	MulticastGroupStatusActivated MulticastGroupStatus = 1
	MulticastGroupStatusSuspended MulticastGroupStatus = 2
	MulticastGroupStatusDeleting  MulticastGroupStatus = 3
)

// AccessPassStatus is the AccessPass lifecycle.
type AccessPassStatus uint8

const (
	AccessPassStatusRequested    AccessPassStatus = 0
	AccessPassStatusConnected    AccessPassStatus = 1
	AccessPassStatusDisconnected AccessPassStatus = 2
	AccessPassStatusClosed       AccessPassStatus = 3
)

// InterfaceStatus is the per-interface lifecycle inside Device. Rejected is
// a terminal sink; Unmanaged marks externally-declared interfaces.
type InterfaceStatus uint8

const (
	InterfaceStatusInvalid   InterfaceStatus = 0
	InterfaceStatusUnmanaged InterfaceStatus = 1
	InterfaceStatusPending   InterfaceStatus = 2
	InterfaceStatusActivated InterfaceStatus = 3
	InterfaceStatusDeleting  InterfaceStatus = 4
	InterfaceStatusRejected  InterfaceStatus = 5
	InterfaceStatusUnlinked  InterfaceStatus = 6
)

// InterfaceType distinguishes loopbacks from physical ports.
type InterfaceType uint8

const (
	InterfaceTypeInvalid  InterfaceType = 0
	InterfaceTypeLoopback InterfaceType = 1
	InterfaceTypePhysical InterfaceType = 2
)

// LoopbackType tags the role of a loopback interface.
type LoopbackType uint8

const (
	LoopbackTypeNone      LoopbackType = 0
	LoopbackTypeVpnv4     LoopbackType = 1
	LoopbackTypeIpv4      LoopbackType = 2
	LoopbackTypePimRpAddr LoopbackType = 3
)

// InterfaceCYOA is the customer-provided encapsulation on an interface.
type InterfaceCYOA uint8

const (
	InterfaceCYOANone                  InterfaceCYOA = 0
	InterfaceCYOAGREOverDIA            InterfaceCYOA = 1
	InterfaceCYOAGREOverFabric         InterfaceCYOA = 2
	InterfaceCYOAGREOverPrivatePeering InterfaceCYOA = 3
	InterfaceCYOAGREOverPublicPeering  InterfaceCYOA = 4
	InterfaceCYOAGREOverCable          InterfaceCYOA = 5
)

// InterfaceDIA flags direct-internet-access interfaces.
type InterfaceDIA uint8

const (
	InterfaceDIANone InterfaceDIA = 0
	InterfaceDIADIA  InterfaceDIA = 1
)

// RoutingMode selects how routes are learned on an interface.
type RoutingMode uint8

const (
	RoutingModeStatic RoutingMode = 0
	RoutingModeBGP    RoutingMode = 1
)

// ResourceKind identifies a resource pool backed by a ResourceExtension.
type ResourceKind uint8

const (
	ResourceKindUserTunnelBlock         ResourceKind = 0
	ResourceKindDeviceTunnelBlock       ResourceKind = 1
	ResourceKindMulticastGroupBlock     ResourceKind = 2
	ResourceKindLinkIds                 ResourceKind = 3
	ResourceKindSegmentRoutingIds       ResourceKind = 4
	ResourceKindTunnelIds               ResourceKind = 5
	ResourceKindDzPrefixBlock           ResourceKind = 6
	ResourceKindVrfIds                  ResourceKind = 7
	ResourceKindMulticastPublisherBlock ResourceKind = 8
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceKindUserTunnelBlock:
		return "user_tunnel_block"
	case ResourceKindDeviceTunnelBlock:
		return "device_tunnel_block"
	case ResourceKindMulticastGroupBlock:
		return "multicastgroup_block"
	case ResourceKindLinkIds:
		return "link_ids"
	case ResourceKindSegmentRoutingIds:
		return "segment_routing_ids"
	case ResourceKindTunnelIds:
		return "tunnel_ids"
	case ResourceKindDzPrefixBlock:
		return "dz_prefix_block"
	case ResourceKindVrfIds:
		return "vrf_ids"
	case ResourceKindMulticastPublisherBlock:
		return "multicast_publisher_block"
	default:
		return "invalid"
	}
}

// Global reports whether the pool is a singleton (derived without aux
// seeds) as opposed to a per-device, ordinal-indexed pool.
func (k ResourceKind) Global() bool {
	switch k {
	case ResourceKindTunnelIds, ResourceKindDzPrefixBlock:
		return false
	default:
		return true
	}
}

// Allocator returns the allocator variant backing pools of this kind.
func (k ResourceKind) Allocator() AllocatorType {
	switch k {
	case ResourceKindLinkIds, ResourceKindSegmentRoutingIds, ResourceKindTunnelIds, ResourceKindVrfIds:
		return AllocatorTypeId
	default:
		return AllocatorTypeIp
	}
}

// AllocatorType discriminates the ResourceExtension allocator variant.
type AllocatorType uint8

const (
	AllocatorTypeId AllocatorType = 0
	AllocatorTypeIp AllocatorType = 1
)

// AuthorityKind selects which GlobalState principal a SetAuthority
// instruction replaces.
type AuthorityKind uint8

const (
	AuthorityKindActivator    AuthorityKind = 0
	AuthorityKindSentinel     AuthorityKind = 1
	AuthorityKindHealthOracle AuthorityKind = 2
	AuthorityKindReservation  AuthorityKind = 3
)
