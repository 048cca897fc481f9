package state

import (
	"net/netip"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doublezero/doublezero-contract/runtime"
)

var (
	testOwner  = solana.MustPublicKeyFromBase58("7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2")
	testKeyA   = solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	testKeyB   = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	testClient = netip.AddrFrom4([4]byte{100, 0, 0, 1})
)

func testDevice() *Device {
	return &Device{
		Owner:              testOwner,
		Index:              bin.Uint128{Lo: 6},
		BumpSeed:           254,
		ReferenceCount:     1,
		LocationPK:         testKeyA,
		ExchangePK:         testKeyB,
		ContributorPK:      testKeyA,
		MetricsPublisherPK: testKeyB,
		DeviceType:         DeviceTypeEdge,
		PublicIP:           netip.AddrFrom4([4]byte{203, 0, 113, 10}),
		Status:             DeviceStatusActivated,
		DesiredStatus:      DeviceStatusActivated,
		Health:             DeviceHealthReadyForUsers,
		Code:               "la1",
		MgmtVrf:            "mgmt",
		DzPrefixes:         []netip.Prefix{netip.MustParsePrefix("10.160.0.0/27")},
		Interfaces: []Interface{
			{
				Version:       1,
				Status:        InterfaceStatusActivated,
				Name:          "Ethernet1",
				InterfaceType: InterfaceTypePhysical,
				MTU:           9100,
				RoutingMode:   RoutingModeBGP,
				IpNet:         netip.MustParsePrefix("10.0.0.1/31"),
			},
		},
		UsersCount:        2,
		UnicastUsersCount: 1,
		MulticastUsersCount: 1,
		MaxUsers:          128,
		ReservedSeats:     3,
	}
}

func TestDeviceRoundTrip(t *testing.T) {
	dev := testDevice()
	data, err := dev.Serialize()
	require.NoError(t, err)
	assert.Len(t, data, dev.Size())
	got, err := DeserializeDevice(data)
	require.NoError(t, err)
	assert.Equal(t, dev, got)
}

func TestRecordRoundTrips(t *testing.T) {
	records := []struct {
		name string
		rec  interface {
			Serialize() ([]byte, error)
			Type() AccountType
		}
		parse func([]byte) (any, error)
	}{
		{
			name: "globalstate",
			rec: &GlobalState{
				Owner:                 testOwner,
				BumpSeed:              255,
				AccountIndex:          bin.Uint128{Lo: 42},
				FoundationAllowlist:   []solana.PublicKey{testOwner},
				QAAllowlist:           []solana.PublicKey{testKeyA, testKeyB},
				ActivatorAuthority:    testKeyA,
				SentinelAuthority:     testKeyB,
				HealthOracleAuthority: testKeyA,
				ReservationAuthority:  testKeyB,
				UserAirdropLamports:   1_000_000,
				DeviceAirdropLamports: 5_000_000,
			},
			parse: func(b []byte) (any, error) { return DeserializeGlobalState(b) },
		},
		{
			name: "globalconfig",
			rec: &GlobalConfig{
				Owner:               testOwner,
				BumpSeed:            253,
				LocalASN:            65342,
				RemoteASN:           65000,
				DeviceTunnelBlock:   netip.MustParsePrefix("172.16.0.0/16"),
				UserTunnelBlock:     netip.MustParsePrefix("169.254.0.0/16"),
				MulticastGroupBlock: netip.MustParsePrefix("233.84.178.0/24"),
				NextBGPCommunity:    7,
			},
			parse: func(b []byte) (any, error) { return DeserializeGlobalConfig(b) },
		},
		{
			name: "link",
			rec: &Link{
				Owner:          testOwner,
				Index:          bin.Uint128{Lo: 8},
				BumpSeed:       251,
				SideAPK:        testKeyA,
				SideZPK:        testKeyB,
				ContributorPK:  testOwner,
				LinkType:       LinkTypeDZX,
				Status:         LinkStatusActivated,
				DesiredStatus:  LinkStatusActivated,
				Health:         LinkHealthReady,
				Code:           "la-ny1",
				SideAIfaceName: "Ethernet1",
				SideZIfaceName: "Ethernet2",
				Bandwidth:      100_000_000_000,
				MTU:            1900,
				DelayNs:        12_000_000,
				JitterNs:       1_000_000,
				TunnelID:       1,
				TunnelNet:      netip.MustParsePrefix("10.31.0.0/31"),
			},
			parse: func(b []byte) (any, error) { return DeserializeLink(b) },
		},
		{
			name: "user",
			rec: &User{
				Owner:           testOwner,
				BumpSeed:        250,
				UserType:        UserTypeIBRL,
				CyoaType:        UserCYOAGREOverDIA,
				Status:          UserStatusActivated,
				TenantPK:        testKeyA,
				DevicePK:        testKeyB,
				ClientIP:        testClient,
				DzIP:            netip.AddrFrom4([4]byte{10, 2, 0, 1}),
				TunnelID:        1,
				TunnelNet:       netip.MustParsePrefix("10.0.0.0/24"),
				ValidatorPubkey: testKeyA,
				Publishers:      []solana.PublicKey{testKeyB},
			},
			parse: func(b []byte) (any, error) { return DeserializeUser(b) },
		},
		{
			name: "accesspass",
			rec: &AccessPass{
				Owner:           testOwner,
				BumpSeed:        249,
				PassType:        AccessPassType{Kind: AccessPassKindSolanaValidator, Key: testKeyA},
				ClientIP:        testClient,
				UserPayer:       testKeyB,
				LastAccessEpoch: 812,
				ConnectionCount: 1,
				Status:          AccessPassStatusConnected,
				Flags:           AccessPassFlagAllowMultipleIP,
				TenantAllowlist: []solana.PublicKey{testKeyA},
			},
			parse: func(b []byte) (any, error) { return DeserializeAccessPass(b) },
		},
		{
			name: "multicastgroup",
			rec: &MulticastGroup{
				Owner:        testOwner,
				Index:        bin.Uint128{Lo: 11},
				BumpSeed:     248,
				TenantPK:     testKeyA,
				Status:       MulticastGroupStatusActivated,
				MulticastIP:  netip.AddrFrom4([4]byte{233, 84, 178, 1}),
				MaxBandwidth: 2_000_000_000,
				Code:         "mg01",
			},
			parse: func(b []byte) (any, error) { return DeserializeMulticastGroup(b) },
		},
		{
			name: "reservation",
			rec: &Reservation{
				Owner:    testOwner,
				BumpSeed: 247,
				DevicePK: testKeyA,
				ClientIP: testClient,
			},
			parse: func(b []byte) (any, error) { return DeserializeReservation(b) },
		},
		{
			name: "tenant",
			rec: &Tenant{
				Owner:           testOwner,
				BumpSeed:        246,
				AdministratorPK: testKeyA,
				TokenAccountPK:  testKeyB,
				VrfID:           12,
				Code:            "tn01",
			},
			parse: func(b []byte) (any, error) { return DeserializeTenant(b) },
		},
	}

	for _, tc := range records {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.rec.Serialize()
			require.NoError(t, err)
			require.NotEmpty(t, data)
			assert.Equal(t, uint8(tc.rec.Type()), data[0], "discriminator byte")
			got, err := tc.parse(data)
			require.NoError(t, err)
			assert.Equal(t, tc.rec, got)
		})
	}
}

func TestAccountTypeMismatch(t *testing.T) {
	loc := &Location{Owner: testOwner, Code: "la", Name: "Los Angeles", Country: "US"}
	data, err := loc.Serialize()
	require.NoError(t, err)
	_, err = DeserializeDevice(data)
	assert.ErrorIs(t, err, runtime.ErrAccountTypeMismatch)
}

func TestTruncatedAccountFails(t *testing.T) {
	dev := testDevice()
	data, err := dev.Serialize()
	require.NoError(t, err)
	_, err = DeserializeDevice(data[:len(data)-3])
	assert.ErrorIs(t, err, runtime.ErrDeserializationFailure)
}

func TestInterfaceV1Widening(t *testing.T) {
	v1 := Interface{
		Version:        0,
		Status:         InterfaceStatusActivated,
		Name:           "Loopback100",
		InterfaceType:  InterfaceTypeLoopback,
		LoopbackType:   LoopbackTypeVpnv4,
		IpNet:          netip.MustParsePrefix("10.160.0.1/32"),
		NodeSegmentIdx: 17,
	}
	dev := &Device{Owner: testOwner, Code: "dz1", Interfaces: []Interface{v1}}
	data, err := dev.Serialize()
	require.NoError(t, err)

	got, err := DeserializeDevice(data)
	require.NoError(t, err)
	iface := got.Interfaces[0]
	assert.Equal(t, uint8(0), iface.Version, "stored variant preserved")
	assert.Equal(t, uint16(1500), iface.MTU)
	assert.Equal(t, RoutingModeStatic, iface.RoutingMode)
	assert.Equal(t, InterfaceCYOANone, iface.InterfaceCYOA)
	assert.Equal(t, InterfaceDIANone, iface.InterfaceDIA)
	assert.Zero(t, iface.Bandwidth)
	assert.Zero(t, iface.CIR)

	// re-serializing writes the V1 variant byte-identically
	again, err := got.Serialize()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestInterfaceValidate(t *testing.T) {
	base := Interface{
		Version:       1,
		Name:          "Ethernet3",
		InterfaceType: InterfaceTypePhysical,
		MTU:           1500,
	}

	t.Run("ok", func(t *testing.T) {
		i := base
		assert.NoError(t, i.Validate())
	})
	t.Run("empty name", func(t *testing.T) {
		i := base
		i.Name = ""
		assert.ErrorIs(t, i.Validate(), runtime.ErrInvalidInterfaceName)
	})
	t.Run("vlan out of range", func(t *testing.T) {
		i := base
		i.VlanID = 4095
		assert.ErrorIs(t, i.Validate(), runtime.ErrInvalidVlanId)
	})
	t.Run("cyoa requires physical", func(t *testing.T) {
		i := base
		i.InterfaceType = InterfaceTypeLoopback
		i.InterfaceCYOA = InterfaceCYOAGREOverFabric
		assert.ErrorIs(t, i.Validate(), runtime.ErrCyoaRequiresPhysical)
	})
	t.Run("public ip rejected on plain interface", func(t *testing.T) {
		i := base
		i.IpNet = netip.MustParsePrefix("203.0.113.1/31")
		assert.ErrorIs(t, i.Validate(), runtime.ErrInvalidInterfaceIp)
	})
	t.Run("public ip allowed with dia", func(t *testing.T) {
		i := base
		i.InterfaceDIA = InterfaceDIADIA
		i.IpNet = netip.MustParsePrefix("203.0.113.1/31")
		assert.NoError(t, i.Validate())
	})
	t.Run("public ip allowed on user tunnel loopback", func(t *testing.T) {
		i := base
		i.InterfaceType = InterfaceTypeLoopback
		i.UserTunnelEndpoint = true
		i.IpNet = netip.MustParsePrefix("203.0.113.1/32")
		assert.NoError(t, i.Validate())
	})
	t.Run("link local allowed", func(t *testing.T) {
		i := base
		i.IpNet = netip.MustParsePrefix("169.254.0.1/31")
		assert.NoError(t, i.Validate())
	})
}

func TestDeviceInterfaceList(t *testing.T) {
	dev := testDevice()
	err := dev.AddInterface(Interface{Version: 1, Name: "Ethernet1", InterfaceType: InterfaceTypePhysical})
	assert.ErrorIs(t, err, runtime.ErrInterfaceAlreadyExists)

	require.NoError(t, dev.AddInterface(Interface{
		Version:       1,
		Name:          "Ethernet2",
		InterfaceType: InterfaceTypePhysical,
		Status:        InterfaceStatusPending,
	}))
	assert.Equal(t, 1, dev.FindInterface("Ethernet2"))

	dev.Interfaces[1].Status = InterfaceStatusRejected
	assert.ErrorIs(t, dev.RemoveInterface("Ethernet2"), runtime.ErrInvalidStatus)
	assert.NoError(t, dev.RemoveInterface("Ethernet1"))
	assert.Equal(t, -1, dev.FindInterface("Ethernet1"))
}

func TestResourceExtensionLayout(t *testing.T) {
	ext := &ResourceExtension{
		Owner:          testOwner,
		BumpSeed:       244,
		AssociatedWith: testKeyA,
		AllocatorType:  AllocatorTypeId,
		RangeStart:     0,
		RangeEnd:       64,
		FirstFree:      0,
		Bitmap:         make([]byte, 8),
	}
	data, err := ext.Serialize()
	require.NoError(t, err)
	require.Len(t, data, BitmapOffset+8)
	assert.Equal(t, SizeForIdRange(0, 64), len(data))

	got, err := DeserializeResourceExtension(data)
	require.NoError(t, err)

	// the bitmap view aliases the account bytes
	alloc, err := got.IdAllocator()
	require.NoError(t, err)
	id, err := alloc.Allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), id)
	assert.Equal(t, byte(0x01), data[BitmapOffset])

	got.SyncId(alloc)
	require.NoError(t, got.StoreHeader(data))
	reread, err := DeserializeResourceExtension(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reread.FirstFree)
}

func TestResourceExtensionIpVariant(t *testing.T) {
	base := netip.MustParsePrefix("172.16.0.0/24")
	ext := &ResourceExtension{
		Owner:          testOwner,
		BumpSeed:       243,
		AssociatedWith: testKeyB,
		AllocatorType:  AllocatorTypeIp,
		BaseNet:        base,
		Bitmap:         make([]byte, 32),
	}
	data, err := ext.Serialize()
	require.NoError(t, err)
	assert.Equal(t, SizeForIpBlock(base), len(data))

	got, err := DeserializeResourceExtension(data)
	require.NoError(t, err)
	alloc, err := got.IpAllocator()
	require.NoError(t, err)
	addr, err := alloc.Allocate()
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("172.16.0.1"), addr)
	// wrong-variant access fails
	_, err = got.IdAllocator()
	assert.ErrorIs(t, err, runtime.ErrExtensionMissing)
}

func TestNextIndexCarry(t *testing.T) {
	assert.Equal(t, bin.Uint128{Lo: 1}, NextIndex(bin.Uint128{}))
	assert.Equal(t, bin.Uint128{Lo: 0, Hi: 1}, NextIndex(bin.Uint128{Lo: ^uint64(0)}))
}
