package state

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

// Device is a deployed network element. It points at its location,
// exchange, and contributor; carries its interface list inline; and tracks
// seat occupancy for user admission.
//
// The per-kind user counters are authoritative; UsersCount is maintained as
// their sum at every mutation site.
type Device struct {
	Owner               solana.PublicKey
	Index               bin.Uint128
	BumpSeed            uint8
	ReferenceCount      uint32
	LocationPK          solana.PublicKey
	ExchangePK          solana.PublicKey
	ContributorPK       solana.PublicKey
	MetricsPublisherPK  solana.PublicKey
	DeviceType          DeviceType
	PublicIP            netip.Addr
	Status              DeviceStatus
	DesiredStatus       DeviceStatus
	Health              DeviceHealth
	Code                string
	MgmtVrf             string
	DzPrefixes          []netip.Prefix
	Interfaces          []Interface
	UsersCount          uint16
	UnicastUsersCount   uint16
	MulticastUsersCount uint16
	MaxUsers            uint16
	ReservedSeats       uint16
}

// Type implements Record.
func (dev *Device) Type() AccountType { return AccountTypeDevice }

// SizeGivenLens returns the serialized size for the given variable-length
// content: string lengths, prefix count, and the total encoded size of the
// interface list.
func (dev *Device) SizeGivenLens(code, vrf, prefixes, interfaceBytes int) int {
	return 1 + pubkeySize + 16 + 1 + 4 +
		4*pubkeySize + 1 + ipv4Size + 3 +
		(4 + code) + (4 + vrf) +
		vecSize(prefixes, ipv4NetSize) +
		4 + interfaceBytes +
		5*2
}

// Size returns the current serialized size.
func (dev *Device) Size() int {
	ifaces := 0
	for i := range dev.Interfaces {
		ifaces += dev.Interfaces[i].Size()
	}
	return dev.SizeGivenLens(len(dev.Code), len(dev.MgmtVrf), len(dev.DzPrefixes), ifaces)
}

// Serialize renders the record in its account layout.
func (dev *Device) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeDevice))
	e.Pubkey(dev.Owner)
	e.U128(dev.Index)
	e.U8(dev.BumpSeed)
	e.U32(dev.ReferenceCount)
	e.Pubkey(dev.LocationPK)
	e.Pubkey(dev.ExchangePK)
	e.Pubkey(dev.ContributorPK)
	e.Pubkey(dev.MetricsPublisherPK)
	e.U8(uint8(dev.DeviceType))
	e.IPv4(orZero4(dev.PublicIP))
	e.U8(uint8(dev.Status))
	e.U8(uint8(dev.DesiredStatus))
	e.U8(uint8(dev.Health))
	e.String(dev.Code)
	e.String(dev.MgmtVrf)
	e.VecLen(len(dev.DzPrefixes))
	for _, p := range dev.DzPrefixes {
		e.IPv4Net(p)
	}
	e.VecLen(len(dev.Interfaces))
	for i := range dev.Interfaces {
		dev.Interfaces[i].serialize(e)
	}
	e.U16(dev.UsersCount)
	e.U16(dev.UnicastUsersCount)
	e.U16(dev.MulticastUsersCount)
	e.U16(dev.MaxUsers)
	e.U16(dev.ReservedSeats)
	return e.Bytes()
}

// DeserializeDevice parses a Device account. Legacy V1 interfaces are
// widened into the current view; their stored variant is preserved.
func DeserializeDevice(data []byte) (*Device, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeDevice); err != nil {
		return nil, err
	}
	dev := &Device{}
	dev.Owner = d.Pubkey()
	dev.Index = d.U128()
	dev.BumpSeed = d.U8()
	dev.ReferenceCount = d.U32()
	dev.LocationPK = d.Pubkey()
	dev.ExchangePK = d.Pubkey()
	dev.ContributorPK = d.Pubkey()
	dev.MetricsPublisherPK = d.Pubkey()
	dev.DeviceType = DeviceType(d.U8())
	dev.PublicIP = d.IPv4()
	dev.Status = DeviceStatus(d.U8())
	dev.DesiredStatus = DeviceStatus(d.U8())
	dev.Health = DeviceHealth(d.U8())
	dev.Code = d.String()
	dev.MgmtVrf = d.String()
	for n := d.VecLen(); n > 0; n-- {
		dev.DzPrefixes = append(dev.DzPrefixes, d.IPv4Net())
	}
	for n := d.VecLen(); n > 0; n-- {
		dev.Interfaces = append(dev.Interfaces, deserializeInterface(d))
	}
	dev.UsersCount = d.U16()
	dev.UnicastUsersCount = d.U16()
	dev.MulticastUsersCount = d.U16()
	dev.MaxUsers = d.U16()
	dev.ReservedSeats = d.U16()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return dev, nil
}

// FindInterface returns the index of the named interface, or -1.
func (dev *Device) FindInterface(name string) int {
	for i := range dev.Interfaces {
		if dev.Interfaces[i].Name == name {
			return i
		}
	}
	return -1
}

// AddInterface appends a validated interface; duplicates by name fail with
// InterfaceAlreadyExists.
func (dev *Device) AddInterface(iface Interface) error {
	if err := iface.Validate(); err != nil {
		return err
	}
	if dev.FindInterface(iface.Name) >= 0 {
		return runtime.ErrInterfaceAlreadyExists
	}
	dev.Interfaces = append(dev.Interfaces, iface)
	return nil
}

// RemoveInterface drops the named interface. Rejected interfaces are a
// terminal sink and cannot be removed.
func (dev *Device) RemoveInterface(name string) error {
	i := dev.FindInterface(name)
	if i < 0 {
		return runtime.ErrInterfaceNotFound
	}
	if dev.Interfaces[i].Status == InterfaceStatusRejected {
		return runtime.ErrInvalidStatus
	}
	dev.Interfaces = append(dev.Interfaces[:i], dev.Interfaces[i+1:]...)
	return nil
}

// SeatsAvailable reports whether one more user or reservation fits.
func (dev *Device) SeatsAvailable() bool {
	return uint32(dev.UsersCount)+uint32(dev.ReservedSeats) < uint32(dev.MaxUsers)
}

// Validate applies device-level domain rules to the record and every
// interface it carries.
func (dev *Device) Validate() error {
	if dev.Code == "" {
		return runtime.ErrInvalidInstructionData
	}
	for i := range dev.Interfaces {
		if err := dev.Interfaces[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
