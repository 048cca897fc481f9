package serviceability

import (
	"net/netip"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func addr(s string) netip.Addr     { return netip.MustParseAddr(s) }
func prefix(s string) netip.Prefix { return netip.MustParsePrefix(s) }

// fixture is a provisioned control plane on the emulator: global state
// with the full authority set, a populated global config, and helpers
// that drive instructions the way a client would.
type fixture struct {
	t  *testing.T
	em *runtime.Emulator

	programID  solana.PublicKey
	foundation solana.PublicKey
	activator  solana.PublicKey
	sentinel   solana.PublicKey
	oracle     solana.PublicKey
	reserver   solana.PublicKey

	gsKey  solana.PublicKey
	cfgKey solana.PublicKey
	pcKey  solana.PublicKey

	indexCount uint64
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		t:          t,
		em:         runtime.NewEmulator(nil),
		programID:  testKey(0xff),
		foundation: testKey(0x01),
		activator:  testKey(0x02),
		sentinel:   testKey(0x03),
		oracle:     testKey(0x04),
		reserver:   testKey(0x05),
		indexCount: 2, // the two config singletons hold indices 1 and 2
	}
	f.em.Register(f.programID, Process)
	f.em.SetEpoch(7)

	var err error
	f.gsKey, _, err = pda.DeriveGlobalStatePDA(f.programID)
	require.NoError(t, err)
	f.cfgKey, _, err = pda.DeriveGlobalConfigPDA(f.programID)
	require.NoError(t, err)
	f.pcKey, _, err = pda.DeriveProgramConfigPDA(f.programID)
	require.NoError(t, err)

	f.mustExec(&instructions.InitGlobalState{},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(f.cfgKey),
		runtime.WritableMeta(f.pcKey))

	for kind, authority := range map[state.AuthorityKind]solana.PublicKey{
		state.AuthorityKindActivator:    f.activator,
		state.AuthorityKindSentinel:     f.sentinel,
		state.AuthorityKindHealthOracle: f.oracle,
		state.AuthorityKindReservation:  f.reserver,
	} {
		f.mustExec(&instructions.SetAuthority{Kind: kind, Authority: authority},
			runtime.SignerMeta(f.foundation),
			runtime.WritableMeta(f.gsKey))
	}

	f.mustExec(&instructions.SetGlobalConfig{
		LocalASN:            65000,
		RemoteASN:           65001,
		DeviceTunnelBlock:   prefix("172.16.0.0/24"),
		UserTunnelBlock:     prefix("169.254.0.0/24"),
		MulticastGroupBlock: prefix("233.84.178.0/24"),
	},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(f.cfgKey))
	return f
}

func (f *fixture) exec(ins instructions.Instruction, metas ...runtime.AccountMeta) error {
	data, err := instructions.Encode(ins)
	require.NoError(f.t, err)
	_, err = f.em.Execute(f.programID, metas, data)
	return err
}

func (f *fixture) mustExec(ins instructions.Instruction, metas ...runtime.AccountMeta) {
	f.t.Helper()
	require.NoError(f.t, f.exec(ins, metas...))
}

// claimIndex returns the index the program will accept for the next
// indexed-entity creation.
func (f *fixture) claimIndex() bin.Uint128 {
	f.indexCount++
	return bin.Uint128{Lo: f.indexCount}
}

func (f *fixture) globalState() *state.GlobalState {
	acc, ok := f.em.Account(f.gsKey)
	require.True(f.t, ok)
	gs, err := state.DeserializeGlobalState(acc.Data)
	require.NoError(f.t, err)
	return gs
}

func (f *fixture) location(key solana.PublicKey) *state.Location {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	loc, err := state.DeserializeLocation(acc.Data)
	require.NoError(f.t, err)
	return loc
}

func (f *fixture) exchange(key solana.PublicKey) *state.Exchange {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	ex, err := state.DeserializeExchange(acc.Data)
	require.NoError(f.t, err)
	return ex
}

func (f *fixture) contributor(key solana.PublicKey) *state.Contributor {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	con, err := state.DeserializeContributor(acc.Data)
	require.NoError(f.t, err)
	return con
}

func (f *fixture) device(key solana.PublicKey) *state.Device {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	dev, err := state.DeserializeDevice(acc.Data)
	require.NoError(f.t, err)
	return dev
}

func (f *fixture) link(key solana.PublicKey) *state.Link {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	link, err := state.DeserializeLink(acc.Data)
	require.NoError(f.t, err)
	return link
}

func (f *fixture) user(key solana.PublicKey) *state.User {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	user, err := state.DeserializeUser(acc.Data)
	require.NoError(f.t, err)
	return user
}

func (f *fixture) accessPass(key solana.PublicKey) *state.AccessPass {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	pass, err := state.DeserializeAccessPass(acc.Data)
	require.NoError(f.t, err)
	return pass
}

func (f *fixture) multicastGroup(key solana.PublicKey) *state.MulticastGroup {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	grp, err := state.DeserializeMulticastGroup(acc.Data)
	require.NoError(f.t, err)
	return grp
}

func (f *fixture) extension(key solana.PublicKey) *state.ResourceExtension {
	acc, ok := f.em.Account(key)
	require.True(f.t, ok)
	ext, err := state.DeserializeResourceExtension(acc.Data)
	require.NoError(f.t, err)
	return ext
}

func (f *fixture) createLocation(code string) solana.PublicKey {
	f.t.Helper()
	idx := f.claimIndex()
	key, bump, err := pda.DeriveLocationPDA(f.programID, idx)
	require.NoError(f.t, err)
	f.mustExec(&instructions.CreateLocation{
		Index: idx, BumpSeed: bump,
		Code: code, Name: code, Country: "US", Lat: 40.7, Lng: -74.0,
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(key))
	return key
}

func (f *fixture) createExchange(code string) solana.PublicKey {
	f.t.Helper()
	idx := f.claimIndex()
	key, bump, err := pda.DeriveExchangePDA(f.programID, idx)
	require.NoError(f.t, err)
	f.mustExec(&instructions.CreateExchange{
		Index: idx, BumpSeed: bump,
		Code: code, Name: code, Lat: 40.7, Lng: -74.0,
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(key),
		runtime.WritableMeta(f.cfgKey))
	return key
}

func (f *fixture) createContributor(code string, opsManager solana.PublicKey) solana.PublicKey {
	f.t.Helper()
	idx := f.claimIndex()
	key, bump, err := pda.DeriveContributorPDA(f.programID, idx)
	require.NoError(f.t, err)
	f.mustExec(&instructions.CreateContributor{
		Index: idx, BumpSeed: bump, Code: code, OpsManager: opsManager,
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(key))
	return key
}

func (f *fixture) createDevice(code string, publicIP netip.Addr, con, loc, ex solana.PublicKey) solana.PublicKey {
	f.t.Helper()
	idx := f.claimIndex()
	key, bump, err := pda.DeriveDevicePDA(f.programID, idx)
	require.NoError(f.t, err)
	f.mustExec(&instructions.CreateDevice{
		Index: idx, BumpSeed: bump,
		Code:             code,
		DeviceType:       state.DeviceTypeSwitch,
		PublicIP:         publicIP,
		DzPrefixes:       []netip.Prefix{prefix("100.64.0.0/28")},
		MgmtVrf:          "mgmt",
		MetricsPublisher: testKey(0x30),
		MaxUsers:         8,
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(key),
		runtime.WritableMeta(con),
		runtime.WritableMeta(loc),
		runtime.WritableMeta(ex))
	return key
}

func (f *fixture) activateDevice(dev solana.PublicKey) {
	f.t.Helper()
	f.mustExec(&instructions.ActivateDevice{},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev))
}

func (f *fixture) createInterface(dev, con solana.PublicKey, name string) {
	f.t.Helper()
	f.mustExec(&instructions.CreateDeviceInterface{
		Name:          name,
		InterfaceType: state.InterfaceTypePhysical,
		Bandwidth:     10_000_000_000,
		MTU:           9100,
		RoutingMode:   state.RoutingModeBGP,
	},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
		runtime.Meta(con))
}

// activatedDevice builds location, exchange, contributor and one
// activated device with a physical interface.
func (f *fixture) activatedDevice(code string, publicIP netip.Addr) (dev, con, loc, ex solana.PublicKey) {
	f.t.Helper()
	loc = f.createLocation("loc-" + code)
	ex = f.createExchange("ex-" + code)
	con = f.createContributor("con-"+code, testKey(0x20))
	dev = f.createDevice(code, publicIP, con, loc, ex)
	f.createInterface(dev, con, "Ethernet1")
	f.activateDevice(dev)
	return dev, con, loc, ex
}

// initExtension creates a resource pool account. assoc carries the
// associated account for kinds that take one; ignored for global id
// pools.
func (f *fixture) initExtension(ins *instructions.InitResourceExtension, assoc ...runtime.AccountMeta) solana.PublicKey {
	f.t.Helper()
	var aux [][]byte
	if !ins.Kind.Global() {
		require.NotEmpty(f.t, assoc)
		aux = [][]byte{assoc[0].Key.Bytes(), {ins.Ordinal}}
	}
	key, bump, err := pda.DeriveResourceExtensionPDA(f.programID, uint8(ins.Kind), aux...)
	require.NoError(f.t, err)
	ins.BumpSeed = bump
	metas := []runtime.AccountMeta{
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(key),
	}
	metas = append(metas, assoc...)
	f.mustExec(ins, metas...)
	return key
}

func (f *fixture) createAccessPass(clientIP netip.Addr, payer solana.PublicKey, flags uint8) solana.PublicKey {
	f.t.Helper()
	key, bump, err := pda.DeriveAccessPassPDA(f.programID, clientIP, payer)
	require.NoError(f.t, err)
	f.mustExec(&instructions.CreateAccessPass{
		PassType: state.AccessPassType{Kind: state.AccessPassKindPrepaid},
		ClientIP: clientIP,
		BumpSeed: bump,
		Flags:    flags,
	},
		runtime.SignerMeta(f.sentinel),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(key),
		runtime.Meta(payer))
	return key
}

func TestInitGlobalState(t *testing.T) {
	f := newFixture(t)

	gs := f.globalState()
	require.Equal(t, []solana.PublicKey{f.foundation}, gs.FoundationAllowlist)
	require.Equal(t, f.activator, gs.ActivatorAuthority)
	require.Equal(t, f.sentinel, gs.SentinelAuthority)
	require.Equal(t, f.oracle, gs.HealthOracleAuthority)
	require.Equal(t, f.reserver, gs.ReservationAuthority)

	err := f.exec(&instructions.InitGlobalState{},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(f.cfgKey),
		runtime.WritableMeta(f.pcKey))
	require.ErrorIs(t, err, runtime.ErrAccountAlreadyExists)
}

func TestFoundationAllowlist(t *testing.T) {
	f := newFixture(t)
	second := testKey(0x11)

	f.mustExec(&instructions.AddFoundationAllowlist{Member: second},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey))
	require.Len(t, f.globalState().FoundationAllowlist, 2)

	// Adding twice is a no-op.
	f.mustExec(&instructions.AddFoundationAllowlist{Member: second},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey))
	require.Len(t, f.globalState().FoundationAllowlist, 2)

	// The new member can act as foundation.
	f.mustExec(&instructions.RemoveFoundationAllowlist{Member: f.foundation},
		runtime.SignerMeta(second),
		runtime.WritableMeta(f.gsKey))
	gs := f.globalState()
	require.Equal(t, []solana.PublicKey{second}, gs.FoundationAllowlist)

	// The last member cannot remove itself.
	err := f.exec(&instructions.RemoveFoundationAllowlist{Member: second},
		runtime.SignerMeta(second),
		runtime.WritableMeta(f.gsKey))
	require.ErrorIs(t, err, runtime.ErrUnauthorized)

	// Outsiders are refused.
	err = f.exec(&instructions.AddFoundationAllowlist{Member: testKey(0x12)},
		runtime.SignerMeta(testKey(0x12)),
		runtime.WritableMeta(f.gsKey))
	require.ErrorIs(t, err, runtime.ErrUnauthorized)
}

func TestCreateLocationIndexProtocol(t *testing.T) {
	f := newFixture(t)

	// A stale index is refused and nothing is written.
	idx := bin.Uint128{Lo: 42}
	key, bump, err := pda.DeriveLocationPDA(f.programID, idx)
	require.NoError(t, err)
	err = f.exec(&instructions.CreateLocation{
		Index: idx, BumpSeed: bump, Code: "la", Name: "LA", Country: "US",
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(key))
	require.ErrorIs(t, err, runtime.ErrInvalidIndex)
	require.True(t, state.SameIndex(bin.Uint128{Lo: 2}, f.globalState().AccountIndex))

	locKey := f.createLocation("ny")
	loc := f.location(locKey)
	require.Equal(t, state.LocationStatusActivated, loc.Status)
	require.Equal(t, "ny", loc.Code)
	require.True(t, state.SameIndex(bin.Uint128{Lo: 3}, f.globalState().AccountIndex))
}

func TestLocationLifecycle(t *testing.T) {
	f := newFixture(t)
	locKey := f.createLocation("ams")

	metas := []runtime.AccountMeta{
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(locKey),
	}
	f.mustExec(&instructions.UpdateLocation{Code: "ams", Name: "Amsterdam", Country: "NL", Lat: 52.3, Lng: 4.9}, metas...)
	require.Equal(t, "Amsterdam", f.location(locKey).Name)

	f.mustExec(&instructions.SuspendLocation{}, metas...)
	require.Equal(t, state.LocationStatusSuspended, f.location(locKey).Status)
	f.mustExec(&instructions.ResumeLocation{}, metas...)
	require.Equal(t, state.LocationStatusActivated, f.location(locKey).Status)

	f.mustExec(&instructions.DeleteLocation{}, metas...)
	require.Equal(t, state.LocationStatusDeleting, f.location(locKey).Status)
	require.ErrorIs(t, f.exec(&instructions.DeleteLocation{}, metas...), runtime.ErrInvalidStatus)

	f.mustExec(&instructions.CloseAccountLocation{},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(locKey),
		runtime.WritableMeta(f.foundation))
	acc, _ := f.em.Account(locKey)
	require.False(t, acc.Exists())
}

func TestExchangeAssignsBGPCommunities(t *testing.T) {
	f := newFixture(t)
	first := f.createExchange("xny")
	second := f.createExchange("xla")

	a := f.exchange(first)
	b := f.exchange(second)
	require.Equal(t, a.BGPCommunity+1, b.BGPCommunity)

	// Slot assignment points the exchange at a device account.
	devKey := testKey(0x40)
	f.mustExec(&instructions.SetExchangeDevice{Slot: 0},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(first),
		runtime.Meta(devKey))
	require.Equal(t, devKey, f.exchange(first).Device1PK)
}

func TestDeviceLifecycle(t *testing.T) {
	f := newFixture(t)
	loc := f.createLocation("chi")
	ex := f.createExchange("xchi")
	opsManager := testKey(0x20)
	con := f.createContributor("acme", opsManager)

	dev := f.createDevice("chi-sw01", addr("203.0.113.10"), con, loc, ex)
	// With the two config singletons at 1 and 2, the fourth indexed
	// creation lands on 6.
	require.True(t, state.SameIndex(bin.Uint128{Lo: 6}, f.device(dev).Index))
	require.True(t, state.SameIndex(bin.Uint128{Lo: 6}, f.globalState().AccountIndex))
	require.Equal(t, uint32(1), f.location(loc).ReferenceCount)
	require.Equal(t, uint32(1), f.exchange(ex).ReferenceCount)
	require.Equal(t, uint32(1), f.contributor(con).ReferenceCount)
	require.Equal(t, state.DeviceStatusPending, f.device(dev).Status)

	// The location cannot be deleted while the device references it.
	err := f.exec(&instructions.DeleteLocation{},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(loc))
	require.ErrorIs(t, err, runtime.ErrReferenceCountNonZero)

	// Only the activator moves Pending forward.
	err = f.exec(&instructions.ActivateDevice{},
		runtime.SignerMeta(opsManager),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev))
	require.ErrorIs(t, err, runtime.ErrActivatorRequired)
	f.activateDevice(dev)
	require.Equal(t, state.DeviceStatusActivated, f.device(dev).Status)

	// The ops manager can drain and resume its own device.
	conMetas := []runtime.AccountMeta{
		runtime.SignerMeta(opsManager),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
		runtime.Meta(con),
	}
	f.mustExec(&instructions.SoftDrainDevice{}, conMetas...)
	require.Equal(t, state.DeviceStatusSoftDrained, f.device(dev).Status)
	f.mustExec(&instructions.HardDrainDevice{}, conMetas...)
	require.Equal(t, state.DeviceStatusHardDrained, f.device(dev).Status)
	f.mustExec(&instructions.ResumeDevice{}, conMetas...)
	require.Equal(t, state.DeviceStatusActivated, f.device(dev).Status)

	f.mustExec(&instructions.SetDeviceMaxUsers{MaxUsers: 2}, conMetas...)
	require.Equal(t, uint16(2), f.device(dev).MaxUsers)

	// Health is the oracle's alone.
	err = f.exec(&instructions.SetDeviceHealth{Health: state.DeviceHealthReadyForUsers},
		runtime.SignerMeta(opsManager),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev))
	require.ErrorIs(t, err, runtime.ErrHealthOracleRequired)
	f.mustExec(&instructions.SetDeviceHealth{Health: state.DeviceHealthReadyForUsers},
		runtime.SignerMeta(f.oracle),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev))
	require.Equal(t, state.DeviceHealthReadyForUsers, f.device(dev).Health)

	f.mustExec(&instructions.DeleteDevice{}, conMetas...)
	f.mustExec(&instructions.CloseAccountDevice{},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(f.foundation),
		runtime.WritableMeta(con),
		runtime.WritableMeta(loc),
		runtime.WritableMeta(ex))
	require.Equal(t, uint32(0), f.location(loc).ReferenceCount)
	require.Equal(t, uint32(0), f.contributor(con).ReferenceCount)
	acc, _ := f.em.Account(dev)
	require.False(t, acc.Exists())
}

func TestDeviceInterfaces(t *testing.T) {
	f := newFixture(t)
	dev, con, _, _ := f.activatedDevice("ord-sw01", addr("203.0.113.20"))

	// Duplicate names are refused.
	err := f.exec(&instructions.CreateDeviceInterface{
		Name:          "Ethernet1",
		InterfaceType: state.InterfaceTypePhysical,
	},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
		runtime.Meta(con))
	require.ErrorIs(t, err, runtime.ErrInterfaceAlreadyExists)

	actMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
	}
	f.mustExec(&instructions.ActivateDeviceInterface{
		Name:           "Ethernet1",
		IpNet:          prefix("10.1.0.1/31"),
		NodeSegmentIdx: 11,
	}, actMetas...)
	d := f.device(dev)
	i := d.FindInterface("Ethernet1")
	require.GreaterOrEqual(t, i, 0)
	require.Equal(t, state.InterfaceStatusActivated, d.Interfaces[i].Status)
	require.Equal(t, uint16(11), d.Interfaces[i].NodeSegmentIdx)

	// Removing an activated interface is refused until it is unlinked.
	conMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
		runtime.Meta(con),
	}
	err = f.exec(&instructions.RemoveDeviceInterface{Name: "Ethernet1"}, conMetas...)
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)
	f.mustExec(&instructions.UnlinkDeviceInterface{Name: "Ethernet1"}, actMetas...)
	f.mustExec(&instructions.RemoveDeviceInterface{Name: "Ethernet1"}, conMetas...)
	require.Equal(t, -1, f.device(dev).FindInterface("Ethernet1"))
}

func TestLinkOnchainLifecycle(t *testing.T) {
	f := newFixture(t)
	devA, conA, _, _ := f.activatedDevice("nyc-sw01", addr("203.0.113.1"))
	devZ, conZ, _, _ := f.activatedDevice("lon-sw01", addr("203.0.113.2"))

	linkIdsExt := f.initExtension(&instructions.InitResourceExtension{
		Kind:       state.ResourceKindLinkIds,
		RangeStart: 500,
		RangeEnd:   600,
	})
	devTunnelExt := f.initExtension(&instructions.InitResourceExtension{
		Kind: state.ResourceKindDeviceTunnelBlock,
	}, runtime.Meta(f.cfgKey))

	idx := f.claimIndex()
	linkKey, bump, err := pda.DeriveLinkPDA(f.programID, idx)
	require.NoError(t, err)

	// Both endpoints on one device is malformed.
	err = f.exec(&instructions.CreateLink{
		Index: idx, BumpSeed: bump, Code: "nyc-nyc",
		LinkType: state.LinkTypeWAN, SideAIfaceName: "Ethernet1",
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.WritableMeta(conA),
		runtime.WritableMeta(devA),
		runtime.WritableMeta(devA))
	require.ErrorIs(t, err, runtime.ErrInvalidLinkEndpoints)

	f.mustExec(&instructions.CreateLink{
		Index: idx, BumpSeed: bump, Code: "nyc-lon",
		LinkType:       state.LinkTypeWAN,
		Bandwidth:      100_000_000_000,
		MTU:            9100,
		DelayNs:        35_000_000,
		JitterNs:       500_000,
		SideAIfaceName: "Ethernet1",
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.WritableMeta(conA),
		runtime.WritableMeta(devA),
		runtime.WritableMeta(devZ))
	require.Equal(t, state.LinkStatusRequested, f.link(linkKey).Status)
	require.Equal(t, uint32(1), f.device(devA).ReferenceCount)

	// Activation before acceptance is out of order.
	err = f.exec(&instructions.ActivateLink{UseOnchainAllocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.WritableMeta(linkIdsExt),
		runtime.WritableMeta(devTunnelExt))
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	f.mustExec(&instructions.AcceptLink{SideZIfaceName: "Ethernet1"},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.Meta(devZ),
		runtime.Meta(conZ))
	require.Equal(t, state.LinkStatusPending, f.link(linkKey).Status)

	f.mustExec(&instructions.ActivateLink{UseOnchainAllocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.WritableMeta(linkIdsExt),
		runtime.WritableMeta(devTunnelExt))
	link := f.link(linkKey)
	require.Equal(t, state.LinkStatusActivated, link.Status)
	require.Equal(t, uint16(500), link.TunnelID)
	// .0 is the reserved network address, so the first aligned free /31
	// starts at .2.
	require.Equal(t, prefix("172.16.0.2/31"), link.TunnelNet)
	require.True(t, link.OnchainAllocated)

	// Put the side-A endpoint interface in service.
	f.mustExec(&instructions.ActivateDeviceInterface{
		Name:           "Ethernet1",
		IpNet:          prefix("10.9.0.1/31"),
		NodeSegmentIdx: 21,
	},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(devA))

	deleteMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.Meta(conA),
		runtime.Meta(devA),
		runtime.Meta(devZ),
	}
	// An undrained link with an activated endpoint interface stays.
	err = f.exec(&instructions.DeleteLink{}, deleteMetas...)
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	// The interface cannot leave the still-activated link either.
	err = f.exec(&instructions.UnlinkDeviceInterface{Name: "Ethernet1"},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(devA),
		runtime.Meta(linkKey))
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	f.mustExec(&instructions.SoftDrainLink{},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.Meta(conA))
	require.Equal(t, state.LinkStatusSoftDrained, f.link(linkKey).Status)

	f.mustExec(&instructions.DeleteLink{}, deleteMetas...)
	require.Equal(t, state.LinkStatusDeleting, f.link(linkKey).Status)

	// With the link deleting, the endpoint interface detaches.
	f.mustExec(&instructions.UnlinkDeviceInterface{Name: "Ethernet1"},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(devA),
		runtime.Meta(linkKey))
	d := f.device(devA)
	require.Equal(t, state.InterfaceStatusUnlinked, d.Interfaces[d.FindInterface("Ethernet1")].Status)

	f.mustExec(&instructions.CloseAccountLink{UseOnchainDeallocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(linkKey),
		runtime.WritableMeta(f.foundation),
		runtime.WritableMeta(conA),
		runtime.WritableMeta(devA),
		runtime.WritableMeta(devZ),
		runtime.WritableMeta(linkIdsExt),
		runtime.WritableMeta(devTunnelExt))

	// Both resources returned to their pools.
	ids, err := f.extension(linkIdsExt).IdAllocator()
	require.NoError(t, err)
	require.Empty(t, ids.Allocated())
	nets, err := f.extension(devTunnelExt).IpAllocator()
	require.NoError(t, err)
	require.Empty(t, nets.Allocated())
	require.Equal(t, uint32(0), f.device(devA).ReferenceCount)
}

func TestUserAdmission(t *testing.T) {
	f := newFixture(t)
	dev, _, _, _ := f.activatedDevice("sfo-sw01", addr("203.0.113.30"))
	payer := testKey(0x50)
	clientIP := addr("198.51.100.7")
	passKey := f.createAccessPass(clientIP, payer, 0)

	tunnelIdsExt := f.initExtension(&instructions.InitResourceExtension{
		Kind:       state.ResourceKindTunnelIds,
		RangeStart: 1,
		RangeEnd:   100,
	}, runtime.Meta(dev))
	userTunnelExt := f.initExtension(&instructions.InitResourceExtension{
		Kind: state.ResourceKindUserTunnelBlock,
	}, runtime.Meta(f.cfgKey))

	userKey, bump, err := pda.DeriveUserPDA(f.programID, clientIP, uint8(state.UserTypeIBRL))
	require.NoError(t, err)

	// Only the pass's payer may admit.
	err = f.exec(&instructions.CreateUser{
		UserType: state.UserTypeIBRL, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: clientIP, BumpSeed: bump,
	},
		runtime.SignerMeta(testKey(0x51)),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))
	require.ErrorIs(t, err, runtime.ErrUnauthorized)

	// A different client IP is refused without the multiple-IP flag.
	otherKey, otherBump, err := pda.DeriveUserPDA(f.programID, addr("198.51.100.8"), uint8(state.UserTypeIBRL))
	require.NoError(t, err)
	err = f.exec(&instructions.CreateUser{
		UserType: state.UserTypeIBRL, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: addr("198.51.100.8"), BumpSeed: otherBump,
	},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(otherKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))
	require.ErrorIs(t, err, runtime.ErrInvalidClientIp)

	f.mustExec(&instructions.CreateUser{
		UserType: state.UserTypeIBRL, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: clientIP, BumpSeed: bump,
	},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))
	require.Equal(t, state.UserStatusPending, f.user(userKey).Status)
	require.Equal(t, uint16(1), f.device(dev).UsersCount)
	require.Equal(t, uint16(1), f.device(dev).UnicastUsersCount)
	pass := f.accessPass(passKey)
	require.Equal(t, state.AccessPassStatusConnected, pass.Status)
	require.Equal(t, uint16(1), pass.ConnectionCount)
	require.Equal(t, uint64(7), pass.LastAccessEpoch)

	f.mustExec(&instructions.ActivateUser{UseOnchainAllocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(dev),
		runtime.WritableMeta(tunnelIdsExt),
		runtime.WritableMeta(userTunnelExt))
	user := f.user(userKey)
	require.Equal(t, state.UserStatusActivated, user.Status)
	require.Equal(t, uint16(1), user.TunnelID)
	require.Equal(t, prefix("169.254.0.2/31"), user.TunnelNet)
	// Plain IBRL users keep their client address on the network side.
	require.Equal(t, clientIP, user.DzIP)

	// Owner updates force a reprovision.
	f.mustExec(&instructions.UpdateUser{CyoaType: state.UserCYOAGREOverFabric},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey))
	require.Equal(t, state.UserStatusUpdating, f.user(userKey).Status)
	f.mustExec(&instructions.ActivateUser{UseOnchainAllocation: false, TunnelID: 1, TunnelNet: prefix("169.254.0.2/31"), DzIP: clientIP},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(dev))
	require.Equal(t, state.UserStatusActivated, f.user(userKey).Status)

	f.mustExec(&instructions.DeleteUser{},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey))
	f.mustExec(&instructions.CloseAccountUser{UseOnchainDeallocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(payer),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey),
		runtime.WritableMeta(tunnelIdsExt),
		runtime.WritableMeta(userTunnelExt))
	require.Equal(t, uint16(0), f.device(dev).UsersCount)
	pass = f.accessPass(passKey)
	require.Equal(t, state.AccessPassStatusDisconnected, pass.Status)
	require.Equal(t, uint16(0), pass.ConnectionCount)
	ids, err := f.extension(tunnelIdsExt).IdAllocator()
	require.NoError(t, err)
	require.Empty(t, ids.Allocated())
}

func TestUserBanFlow(t *testing.T) {
	f := newFixture(t)
	dev, _, _, _ := f.activatedDevice("mia-sw01", addr("203.0.113.40"))
	payer := testKey(0x52)
	clientIP := addr("198.51.100.9")
	passKey := f.createAccessPass(clientIP, payer, 0)

	userKey, bump, err := pda.DeriveUserPDA(f.programID, clientIP, uint8(state.UserTypeIBRL))
	require.NoError(t, err)
	f.mustExec(&instructions.CreateUser{
		UserType: state.UserTypeIBRL, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: clientIP, BumpSeed: bump,
	},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))

	userMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.sentinel),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
	}
	// The ban lands only after the sentinel requests it.
	err = f.exec(&instructions.BanUser{},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey))
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	f.mustExec(&instructions.RequestBanUser{}, userMetas...)
	require.Equal(t, state.UserStatusPendingBan, f.user(userKey).Status)

	// A pending-ban user cannot be updated by its owner.
	err = f.exec(&instructions.UpdateUser{CyoaType: state.UserCYOAGREOverFabric},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey))
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	f.mustExec(&instructions.BanUser{},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey))
	require.Equal(t, state.UserStatusBanned, f.user(userKey).Status)

	// Banned users close directly.
	f.mustExec(&instructions.CloseAccountUser{},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(payer),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))
	acc, _ := f.em.Account(userKey)
	require.False(t, acc.Exists())
}

func TestReservationConsumesSeat(t *testing.T) {
	f := newFixture(t)
	dev, con, _, _ := f.activatedDevice("den-sw01", addr("203.0.113.50"))
	payer := testKey(0x53)
	clientIP := addr("198.51.100.10")
	passKey := f.createAccessPass(clientIP, payer, 0)

	conMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(dev),
		runtime.Meta(con),
	}
	f.mustExec(&instructions.SetDeviceMaxUsers{MaxUsers: 1}, conMetas...)

	resKey, resBump, err := pda.DeriveReservationPDA(f.programID, dev, clientIP)
	require.NoError(t, err)
	f.mustExec(&instructions.ReserveConnection{ClientIP: clientIP, BumpSeed: resBump},
		runtime.SignerMeta(f.reserver),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(resKey),
		runtime.WritableMeta(dev))
	require.Equal(t, uint16(1), f.device(dev).ReservedSeats)

	// The device is now full for everyone else.
	otherRes, otherBump, err := pda.DeriveReservationPDA(f.programID, dev, addr("198.51.100.11"))
	require.NoError(t, err)
	err = f.exec(&instructions.ReserveConnection{ClientIP: addr("198.51.100.11"), BumpSeed: otherBump},
		runtime.SignerMeta(f.reserver),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(otherRes),
		runtime.WritableMeta(dev))
	require.ErrorIs(t, err, runtime.ErrMaxUsersExceeded)

	// Admission under the reservation converts the held seat.
	userKey, bump, err := pda.DeriveUserPDA(f.programID, clientIP, uint8(state.UserTypeIBRL))
	require.NoError(t, err)
	f.mustExec(&instructions.CreateUser{
		UserType: state.UserTypeIBRL, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: clientIP, BumpSeed: bump,
	},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey),
		runtime.WritableMeta(resKey))
	d := f.device(dev)
	require.Equal(t, uint16(1), d.UsersCount)
	require.Equal(t, uint16(0), d.ReservedSeats)
	resAcc, _ := f.em.Account(resKey)
	require.False(t, resAcc.Exists())
}

func TestMulticastGroupMembership(t *testing.T) {
	f := newFixture(t)
	dev, _, _, _ := f.activatedDevice("sea-sw01", addr("203.0.113.60"))
	payer := testKey(0x54)
	clientIP := addr("198.51.100.12")
	passKey := f.createAccessPass(clientIP, payer, 0)

	admin := testKey(0x60)
	tenantKey, tenantBump, err := pda.DeriveTenantPDA(f.programID, "jump")
	require.NoError(t, err)
	f.mustExec(&instructions.CreateTenant{
		BumpSeed: tenantBump, Code: "jump", Administrator: admin,
		TokenAccount: testKey(0x61), VrfID: 100,
	},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(tenantKey))

	mgroupExt := f.initExtension(&instructions.InitResourceExtension{
		Kind: state.ResourceKindMulticastGroupBlock,
	}, runtime.Meta(f.cfgKey))

	idx := f.claimIndex()
	grpKey, grpBump, err := pda.DeriveMulticastGroupPDA(f.programID, idx)
	require.NoError(t, err)
	f.mustExec(&instructions.CreateMulticastGroup{
		Index: idx, BumpSeed: grpBump, Code: "feed-a", MaxBandwidth: 1_000_000_000,
	},
		runtime.SignerMeta(admin),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(grpKey),
		runtime.Meta(tenantKey))
	require.Equal(t, tenantKey, f.multicastGroup(grpKey).TenantPK)

	f.mustExec(&instructions.ActivateMulticastGroup{UseOnchainAllocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpKey),
		runtime.WritableMeta(mgroupExt))
	grp := f.multicastGroup(grpKey)
	require.Equal(t, state.MulticastGroupStatusActivated, grp.Status)
	require.Equal(t, addr("233.84.178.1"), grp.MulticastIP)

	userKey, bump, err := pda.DeriveUserPDA(f.programID, clientIP, uint8(state.UserTypeMulticast))
	require.NoError(t, err)
	f.mustExec(&instructions.CreateUser{
		UserType: state.UserTypeMulticast, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: clientIP, BumpSeed: bump,
	},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))
	f.mustExec(&instructions.ActivateUser{TunnelID: 7, TunnelNet: prefix("169.254.0.2/31"), DzIP: clientIP},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(dev))

	memberMetas := []runtime.AccountMeta{
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(passKey),
	}

	// Publishing requires the pass allowlist.
	err = f.exec(&instructions.SubscribeMulticastGroup{Publisher: true}, memberMetas...)
	require.ErrorIs(t, err, runtime.ErrMulticastGroupNotAllowed)

	passMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.sentinel),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(passKey),
	}
	f.mustExec(&instructions.AddAccessPassMgroupPub{Group: grpKey}, passMetas...)
	f.mustExec(&instructions.AddAccessPassMgroupSub{Group: grpKey}, passMetas...)

	// Gaining the publisher role reprovisions the user.
	f.mustExec(&instructions.SubscribeMulticastGroup{Publisher: true}, memberMetas...)
	require.Equal(t, state.UserStatusUpdating, f.user(userKey).Status)
	require.Equal(t, uint32(1), f.multicastGroup(grpKey).PublisherCount)

	// Re-subscribing an existing role is a no-op.
	f.mustExec(&instructions.SubscribeMulticastGroup{Publisher: true}, memberMetas...)
	require.Equal(t, uint32(1), f.multicastGroup(grpKey).PublisherCount)

	f.mustExec(&instructions.ActivateUser{TunnelID: 7, TunnelNet: prefix("169.254.0.2/31"), DzIP: clientIP},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(dev))

	// Subscriber-only changes never touch the user status.
	f.mustExec(&instructions.SubscribeMulticastGroup{Subscriber: true}, memberMetas...)
	require.Equal(t, state.UserStatusActivated, f.user(userKey).Status)
	require.Equal(t, uint32(1), f.multicastGroup(grpKey).SubscriberCount)

	// A populated group refuses deletion.
	err = f.exec(&instructions.DeleteMulticastGroup{},
		runtime.SignerMeta(admin),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpKey))
	require.ErrorIs(t, err, runtime.ErrMulticastGroupNotEmpty)

	f.mustExec(&instructions.UnsubscribeMulticastGroup{Publisher: true, Subscriber: true}, memberMetas...)
	grp = f.multicastGroup(grpKey)
	require.True(t, grp.Empty())
	require.Equal(t, state.UserStatusUpdating, f.user(userKey).Status)

	f.mustExec(&instructions.DeleteMulticastGroup{},
		runtime.SignerMeta(admin),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpKey))
	f.mustExec(&instructions.CloseAccountMulticastGroup{UseOnchainDeallocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpKey),
		runtime.WritableMeta(f.foundation),
		runtime.WritableMeta(mgroupExt))
	ips, err := f.extension(mgroupExt).IpAllocator()
	require.NoError(t, err)
	require.Empty(t, ips.Allocated())
}

// createActivatedMulticastGroup builds one group under the tenant and
// activates it against the multicast block pool.
func (f *fixture) createActivatedMulticastGroup(code string, admin, tenantKey, mgroupExt solana.PublicKey) solana.PublicKey {
	f.t.Helper()
	idx := f.claimIndex()
	grpKey, grpBump, err := pda.DeriveMulticastGroupPDA(f.programID, idx)
	require.NoError(f.t, err)
	f.mustExec(&instructions.CreateMulticastGroup{
		Index: idx, BumpSeed: grpBump, Code: code, MaxBandwidth: 1_000_000_000,
	},
		runtime.SignerMeta(admin),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(grpKey),
		runtime.Meta(tenantKey))
	f.mustExec(&instructions.ActivateMulticastGroup{UseOnchainAllocation: true},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpKey),
		runtime.WritableMeta(mgroupExt))
	return grpKey
}

func TestMulticastPublisherReprovisionEdges(t *testing.T) {
	f := newFixture(t)
	dev, _, _, _ := f.activatedDevice("gru-sw01", addr("203.0.113.80"))
	payer := testKey(0x55)
	clientIP := addr("198.51.100.13")
	passKey := f.createAccessPass(clientIP, payer, 0)

	admin := testKey(0x62)
	tenantKey, tenantBump, err := pda.DeriveTenantPDA(f.programID, "firedancer")
	require.NoError(t, err)
	f.mustExec(&instructions.CreateTenant{
		BumpSeed: tenantBump, Code: "firedancer", Administrator: admin,
		TokenAccount: testKey(0x63), VrfID: 101,
	},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(tenantKey))
	mgroupExt := f.initExtension(&instructions.InitResourceExtension{
		Kind: state.ResourceKindMulticastGroupBlock,
	}, runtime.Meta(f.cfgKey))

	grpA := f.createActivatedMulticastGroup("feed-a", admin, tenantKey, mgroupExt)
	grpB := f.createActivatedMulticastGroup("feed-b", admin, tenantKey, mgroupExt)

	// A group that never activated cannot start deleting.
	idx := f.claimIndex()
	pendingKey, pendingBump, err := pda.DeriveMulticastGroupPDA(f.programID, idx)
	require.NoError(t, err)
	f.mustExec(&instructions.CreateMulticastGroup{
		Index: idx, BumpSeed: pendingBump, Code: "feed-c", MaxBandwidth: 1_000_000_000,
	},
		runtime.SignerMeta(admin),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(pendingKey),
		runtime.Meta(tenantKey))
	err = f.exec(&instructions.DeleteMulticastGroup{},
		runtime.SignerMeta(admin),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(pendingKey))
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	userKey, bump, err := pda.DeriveUserPDA(f.programID, clientIP, uint8(state.UserTypeMulticast))
	require.NoError(t, err)
	f.mustExec(&instructions.CreateUser{
		UserType: state.UserTypeMulticast, CyoaType: state.UserCYOAGREOverDIA,
		ClientIP: clientIP, BumpSeed: bump,
	},
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.WritableMeta(dev),
		runtime.WritableMeta(passKey))
	f.mustExec(&instructions.ActivateUser{TunnelID: 8, TunnelNet: prefix("169.254.0.4/31"), DzIP: clientIP},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(dev))

	passMetas := []runtime.AccountMeta{
		runtime.SignerMeta(f.sentinel),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(passKey),
	}
	f.mustExec(&instructions.AddAccessPassMgroupPub{Group: grpA}, passMetas...)
	f.mustExec(&instructions.AddAccessPassMgroupPub{Group: grpB}, passMetas...)

	memberA := []runtime.AccountMeta{
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpA),
		runtime.WritableMeta(userKey),
		runtime.Meta(passKey),
	}
	memberB := []runtime.AccountMeta{
		runtime.SignerMeta(payer),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(grpB),
		runtime.WritableMeta(userKey),
		runtime.Meta(passKey),
	}

	// The first publisher role changes the user's provisioned shape.
	f.mustExec(&instructions.SubscribeMulticastGroup{Publisher: true}, memberA...)
	require.Equal(t, state.UserStatusUpdating, f.user(userKey).Status)
	require.Equal(t, uint32(1), f.multicastGroup(grpA).PublisherCount)

	f.mustExec(&instructions.ActivateUser{TunnelID: 8, TunnelNet: prefix("169.254.0.4/31"), DzIP: clientIP},
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(userKey),
		runtime.Meta(dev))

	// A second publisher role does not: the user is already shaped as
	// a publisher.
	f.mustExec(&instructions.SubscribeMulticastGroup{Publisher: true}, memberB...)
	require.Equal(t, state.UserStatusActivated, f.user(userKey).Status)
	require.Equal(t, uint32(1), f.multicastGroup(grpB).PublisherCount)

	// Dropping one of two publisher roles keeps the shape.
	f.mustExec(&instructions.UnsubscribeMulticastGroup{Publisher: true}, memberA...)
	require.Equal(t, state.UserStatusActivated, f.user(userKey).Status)
	require.Equal(t, uint32(0), f.multicastGroup(grpA).PublisherCount)

	// Dropping the last one forces the reprovision.
	f.mustExec(&instructions.UnsubscribeMulticastGroup{Publisher: true}, memberB...)
	require.Equal(t, state.UserStatusUpdating, f.user(userKey).Status)
	require.Equal(t, uint32(0), f.multicastGroup(grpB).PublisherCount)
}

func TestResourceRepairOperations(t *testing.T) {
	f := newFixture(t)
	extKey := f.initExtension(&instructions.InitResourceExtension{
		Kind:       state.ResourceKindLinkIds,
		RangeStart: 500,
		RangeEnd:   600,
	})

	metas := []runtime.AccountMeta{
		runtime.SignerMeta(f.activator),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(extKey),
	}
	f.mustExec(&instructions.AllocateResource{
		Kind:  state.ResourceKindLinkIds,
		Value: instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: 542},
	}, metas...)
	ids, err := f.extension(extKey).IdAllocator()
	require.NoError(t, err)
	require.True(t, ids.IsAllocated(542))

	// Double allocation reports the conflict.
	err = f.exec(&instructions.AllocateResource{
		Kind:  state.ResourceKindLinkIds,
		Value: instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: 542},
	}, metas...)
	require.ErrorIs(t, err, runtime.ErrAlreadyAllocated)

	f.mustExec(&instructions.DeallocateResource{
		Kind:  state.ResourceKindLinkIds,
		Value: instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: 542},
	}, metas...)
	err = f.exec(&instructions.DeallocateResource{
		Kind:  state.ResourceKindLinkIds,
		Value: instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: 542},
	}, metas...)
	require.ErrorIs(t, err, runtime.ErrNotAllocated)

	// Repair is gated on the activator.
	err = f.exec(&instructions.AllocateResource{
		Kind:  state.ResourceKindLinkIds,
		Value: instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: 542},
	},
		runtime.SignerMeta(testKey(0x70)),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(extKey))
	require.ErrorIs(t, err, runtime.ErrActivatorRequired)
}

func TestFailedInstructionRollsBack(t *testing.T) {
	f := newFixture(t)
	loc := f.createLocation("rio")
	ex := f.createExchange("xrio")
	con := f.createContributor("carrier", testKey(0x20))

	// Suspend the location so device creation fails midway, after the
	// handler has already claimed the index in its working copy.
	f.mustExec(&instructions.SuspendLocation{},
		runtime.SignerMeta(f.foundation),
		runtime.Meta(f.gsKey),
		runtime.WritableMeta(loc))

	idx := f.claimIndex()
	devKey, bump, err := pda.DeriveDevicePDA(f.programID, idx)
	require.NoError(t, err)
	err = f.exec(&instructions.CreateDevice{
		Index: idx, BumpSeed: bump, Code: "rio-sw01",
		DeviceType: state.DeviceTypeSwitch,
		PublicIP:   addr("203.0.113.70"),
		DzPrefixes: []netip.Prefix{prefix("100.64.1.0/28")},
		MaxUsers:   8,
	},
		runtime.SignerMeta(f.foundation),
		runtime.WritableMeta(f.gsKey),
		runtime.WritableMeta(devKey),
		runtime.WritableMeta(con),
		runtime.WritableMeta(loc),
		runtime.WritableMeta(ex))
	require.ErrorIs(t, err, runtime.ErrInvalidStatus)

	// Nothing stuck: no device account, no claimed index, no refs.
	acc, _ := f.em.Account(devKey)
	require.False(t, acc.Exists())
	require.True(t, state.SameIndex(bin.Uint128{Lo: 5}, f.globalState().AccountIndex))
	require.Equal(t, uint32(0), f.contributor(con).ReferenceCount)
	f.indexCount--
}
