package pda

import (
	"net/netip"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2")

func TestDerivationIsDeterministic(t *testing.T) {
	a1, b1, err := DeriveGlobalStatePDA(testProgramID)
	require.NoError(t, err)
	a2, b2, err := DeriveGlobalStatePDA(testProgramID)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestDistinctSeedsDistinctAddresses(t *testing.T) {
	idx := bin.Uint128{Lo: 3}
	loc, _, err := DeriveLocationPDA(testProgramID, idx)
	require.NoError(t, err)
	exch, _, err := DeriveExchangePDA(testProgramID, idx)
	require.NoError(t, err)
	dev, _, err := DeriveDevicePDA(testProgramID, idx)
	require.NoError(t, err)
	assert.NotEqual(t, loc, exch)
	assert.NotEqual(t, loc, dev)
	assert.NotEqual(t, exch, dev)

	dev4, _, err := DeriveDevicePDA(testProgramID, bin.Uint128{Lo: 4})
	require.NoError(t, err)
	assert.NotEqual(t, dev, dev4)
}

func TestBumpMatchesCreateProgramAddress(t *testing.T) {
	addr, bump, err := DeriveGlobalConfigPDA(testProgramID)
	require.NoError(t, err)
	recreated, err := solana.CreateProgramAddress(
		[][]byte{[]byte("doublezero"), []byte("config"), {bump}}, testProgramID)
	require.NoError(t, err)
	assert.Equal(t, addr, recreated)
}

func TestUserSeedsIncludeTypeByte(t *testing.T) {
	ip := netip.AddrFrom4([4]byte{100, 0, 0, 1})
	ibrl, _, err := DeriveUserPDA(testProgramID, ip, 1)
	require.NoError(t, err)
	mcast, _, err := DeriveUserPDA(testProgramID, ip, 3)
	require.NoError(t, err)
	assert.NotEqual(t, ibrl, mcast)
}

func TestResourceExtensionAuxSeeds(t *testing.T) {
	device := solana.MustPublicKeyFromBase58("11111111111111111111111111111112")
	p0, _, err := DeriveResourceExtensionPDA(testProgramID, 5, device.Bytes(), []byte{0})
	require.NoError(t, err)
	p1, _, err := DeriveResourceExtensionPDA(testProgramID, 5, device.Bytes(), []byte{1})
	require.NoError(t, err)
	assert.NotEqual(t, p0, p1)
}
