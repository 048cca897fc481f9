package allocator

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doublezero/doublezero-contract/runtime"
)

func TestBitmapSize(t *testing.T) {
	assert.Equal(t, 8, BitmapSize(0))
	assert.Equal(t, 8, BitmapSize(1))
	assert.Equal(t, 8, BitmapSize(64))
	assert.Equal(t, 16, BitmapSize(65))
	assert.Equal(t, 8192, BitmapSize(65536))
}

func TestIDAllocateSequence(t *testing.T) {
	bits := make([]byte, BitmapSize(16))
	a, err := NewID(100, 116, 0, bits)
	require.NoError(t, err)

	for want := uint16(100); want < 116; want++ {
		got, err := a.Allocate()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, a.Capacity(), a.FirstFree)
	_, err = a.Allocate()
	assert.ErrorIs(t, err, runtime.ErrNoResourcesAvailable)
}

func TestIDHintRecoversFromStaleness(t *testing.T) {
	bits := make([]byte, BitmapSize(8))
	a, err := NewID(0, 8, 0, bits)
	require.NoError(t, err)

	require.True(t, a.AllocateRequested(0))
	require.True(t, a.AllocateRequested(1))
	// stale hint pointing at a taken bit
	a.FirstFree = 0
	got, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), got)
	// hint now rests on a clear bit
	assert.False(t, a.IsAllocated(uint16(a.FirstFree)))
}

func TestIDDeallocateLowersHint(t *testing.T) {
	bits := make([]byte, BitmapSize(8))
	a, _ := NewID(0, 8, 0, bits)
	for i := 0; i < 5; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	require.True(t, a.Deallocate(2))
	assert.Equal(t, uint64(2), a.FirstFree)
	assert.False(t, a.Deallocate(2), "double free")
	got, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), got)
}

func TestIDAllocateRequestedKeepsHintInvariant(t *testing.T) {
	bits := make([]byte, BitmapSize(8))
	a, _ := NewID(0, 8, 0, bits)
	require.True(t, a.AllocateRequested(0))
	assert.Equal(t, uint64(1), a.FirstFree)
	require.True(t, a.AllocateRequested(5))
	assert.Equal(t, uint64(1), a.FirstFree)
	assert.False(t, a.AllocateRequested(5))
	assert.False(t, a.AllocateRequested(200), "out of range")
}

func TestIDEmptyRange(t *testing.T) {
	a, err := NewID(7, 7, 0, make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), a.Capacity())
	_, err = a.Allocate()
	assert.ErrorIs(t, err, runtime.ErrNoResourcesAvailable)
}

func TestIDPhysicalBitsBeyondCapacity(t *testing.T) {
	bits := make([]byte, 8)
	bits[0] = 0xf0 // garbage beyond a 4-bit capacity
	a, err := NewID(0, 4, 0, bits)
	require.NoError(t, err)
	assert.Empty(t, a.Allocated())
	for i := 0; i < 4; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	_, err = a.Allocate()
	assert.ErrorIs(t, err, runtime.ErrNoResourcesAvailable)
}

func TestIPReservedAddresses(t *testing.T) {
	base := netip.MustParsePrefix("10.0.0.0/29")
	a, err := NewIP(base, 0, make([]byte, BitmapSize(8)))
	require.NoError(t, err)

	first, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), first, "network address skipped")

	assert.False(t, a.AllocateRequested(netip.MustParseAddr("10.0.0.0")))
	assert.False(t, a.AllocateRequested(netip.MustParseAddr("10.0.0.7")), "broadcast reserved")

	for i := 0; i < 5; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	_, err = a.Allocate()
	assert.ErrorIs(t, err, runtime.ErrNoResourcesAvailable)
}

func TestIPSlash31AndSlash32FullyUsable(t *testing.T) {
	a31, err := NewIP(netip.MustParsePrefix("10.31.0.0/31"), 0, make([]byte, 8))
	require.NoError(t, err)
	one, err := a31.Allocate()
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("10.31.0.0"), one)
	two, err := a31.Allocate()
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("10.31.0.1"), two)

	a32, err := NewIP(netip.MustParsePrefix("192.0.2.5/32"), 0, make([]byte, 8))
	require.NoError(t, err)
	only, err := a32.Allocate()
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("192.0.2.5"), only)
	_, err = a32.Allocate()
	assert.ErrorIs(t, err, runtime.ErrNoResourcesAvailable)
}

func TestIPBlockAllocation(t *testing.T) {
	base := netip.MustParsePrefix("172.16.0.0/24")
	a, err := NewIP(base, 0, make([]byte, BitmapSize(256)))
	require.NoError(t, err)

	// the first /31 overlaps the reserved network address
	blk, err := a.AllocateBlock(31)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("172.16.0.2/31"), blk)

	blk2, err := a.AllocateBlock(31)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("172.16.0.4/31"), blk2)
	assert.NotEqual(t, blk, blk2)

	require.True(t, a.DeallocateBlock(blk))
	assert.False(t, a.DeallocateBlock(blk), "double free")
	again, err := a.AllocateBlock(31)
	require.NoError(t, err)
	assert.Equal(t, blk, again)
}

func TestIPAllocateRequestedBlock(t *testing.T) {
	base := netip.MustParsePrefix("172.16.0.0/24")
	a, err := NewIP(base, 0, make([]byte, BitmapSize(256)))
	require.NoError(t, err)

	want := netip.MustParsePrefix("172.16.0.8/30")
	require.True(t, a.AllocateRequestedBlock(want))
	assert.False(t, a.AllocateRequestedBlock(want), "already taken")
	assert.False(t, a.AllocateRequestedBlock(netip.MustParsePrefix("172.16.0.10/31")), "overlap")
	assert.False(t, a.AllocateRequestedBlock(netip.MustParsePrefix("10.0.0.0/31")), "outside pool")

	for _, ip := range []string{"172.16.0.8", "172.16.0.9", "172.16.0.10", "172.16.0.11"} {
		assert.True(t, a.IsAllocated(netip.MustParseAddr(ip)))
	}
}

func TestIPDeallocateUpdatesHint(t *testing.T) {
	base := netip.MustParsePrefix("10.2.0.0/28")
	a, err := NewIP(base, 0, make([]byte, BitmapSize(16)))
	require.NoError(t, err)
	var addrs []netip.Addr
	for i := 0; i < 4; i++ {
		addr, err := a.Allocate()
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	require.True(t, a.Deallocate(addrs[1]))
	back, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, addrs[1], back)
}
