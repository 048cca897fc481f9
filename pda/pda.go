package pda

import (
	"encoding/binary"
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Seed material. The prefix is shared by every serviceability record; the
// telemetry program has its own prefix.
var (
	seedPrefix            = []byte("doublezero")
	seedGlobalState       = []byte("globalstate")
	seedGlobalConfig      = []byte("config")
	seedProgramConfig     = []byte("programconfig")
	seedLocation          = []byte("location")
	seedExchange          = []byte("exchange")
	seedContributor       = []byte("contributor")
	seedDevice            = []byte("device")
	seedLink              = []byte("link")
	seedUser              = []byte("user")
	seedMulticastGroup    = []byte("multicastgroup")
	seedAccessPass        = []byte("accesspass")
	seedResourceExtension = []byte("resource_extension")
	seedReservation       = []byte("reservation")
	seedTenant            = []byte("tenant")

	seedTelemetryPrefix  = []byte("telemetry")
	seedDZLatencySamples = []byte("dz_latency")
)

func derive(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}

// indexSeed renders a record index as its 16 little-endian bytes.
func indexSeed(index bin.Uint128) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[:8], index.Lo)
	binary.LittleEndian.PutUint64(b[8:], index.Hi)
	return b
}

func ipSeed(a netip.Addr) []byte {
	b := a.As4()
	return b[:]
}

func epochSeed(epoch uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, epoch)
	return b
}

// DeriveGlobalStatePDA derives the GlobalState singleton address.
func DeriveGlobalStatePDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedGlobalState)
}

// DeriveGlobalConfigPDA derives the GlobalConfig singleton address.
func DeriveGlobalConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedGlobalConfig)
}

// DeriveProgramConfigPDA derives the ProgramConfig singleton address.
func DeriveProgramConfigPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedProgramConfig)
}

// DeriveLocationPDA derives a Location address from its record index.
func DeriveLocationPDA(programID solana.PublicKey, index bin.Uint128) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedLocation, indexSeed(index))
}

// DeriveExchangePDA derives an Exchange address from its record index.
func DeriveExchangePDA(programID solana.PublicKey, index bin.Uint128) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedExchange, indexSeed(index))
}

// DeriveContributorPDA derives a Contributor address from its record index.
func DeriveContributorPDA(programID solana.PublicKey, index bin.Uint128) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedContributor, indexSeed(index))
}

// DeriveDevicePDA derives a Device address from its record index.
func DeriveDevicePDA(programID solana.PublicKey, index bin.Uint128) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedDevice, indexSeed(index))
}

// DeriveLinkPDA derives a Link address from its record index.
func DeriveLinkPDA(programID solana.PublicKey, index bin.Uint128) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedLink, indexSeed(index))
}

// DeriveMulticastGroupPDA derives a MulticastGroup address from its record
// index.
func DeriveMulticastGroupPDA(programID solana.PublicKey, index bin.Uint128) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedMulticastGroup, indexSeed(index))
}

// DeriveUserPDA derives a User address from its client IP and user type.
func DeriveUserPDA(programID solana.PublicKey, clientIP netip.Addr, userType uint8) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedUser, ipSeed(clientIP), []byte{userType})
}

// DeriveAccessPassPDA derives an AccessPass address from its client IP and
// paying principal.
func DeriveAccessPassPDA(programID solana.PublicKey, clientIP netip.Addr, payer solana.PublicKey) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedAccessPass, ipSeed(clientIP), payer.Bytes())
}

// DeriveReservationPDA derives a Reservation address from the device it
// holds a seat on and the reserving client IP.
func DeriveReservationPDA(programID solana.PublicKey, device solana.PublicKey, clientIP netip.Addr) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedReservation, device.Bytes(), ipSeed(clientIP))
}

// DeriveTenantPDA derives a legacy Tenant address from its code.
func DeriveTenantPDA(programID solana.PublicKey, code string) (solana.PublicKey, uint8, error) {
	return derive(programID, seedPrefix, seedTenant, []byte(code))
}

// DeriveResourceExtensionPDA derives a ResourceExtension address. kind is
// the numeric resource kind; aux carries the per-entity seed material of
// non-global pools (owning account key, pool ordinal).
func DeriveResourceExtensionPDA(programID solana.PublicKey, kind uint8, aux ...[]byte) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{seedPrefix, seedResourceExtension, {kind}}
	seeds = append(seeds, aux...)
	return derive(programID, seeds...)
}

// DeriveDeviceLatencySamplesPDA derives the telemetry samples account for
// one (origin, target, link, epoch) tuple.
func DeriveDeviceLatencySamplesPDA(programID solana.PublicKey, origin, target, link solana.PublicKey, epoch uint64) (solana.PublicKey, uint8, error) {
	return derive(programID, seedTelemetryPrefix, seedDZLatencySamples,
		origin.Bytes(), target.Bytes(), link.Bytes(), epochSeed(epoch))
}
