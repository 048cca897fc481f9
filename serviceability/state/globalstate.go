package state

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// GlobalState is the control-plane singleton: privileged principals, the
// monotonic account index every indexed record draws from, and airdrop
// amounts granted on user and device onboarding.
type GlobalState struct {
	Owner                 solana.PublicKey
	BumpSeed              uint8
	AccountIndex          bin.Uint128
	FoundationAllowlist   []solana.PublicKey
	QAAllowlist           []solana.PublicKey
	ActivatorAuthority    solana.PublicKey
	SentinelAuthority     solana.PublicKey
	HealthOracleAuthority solana.PublicKey
	ReservationAuthority  solana.PublicKey
	UserAirdropLamports   uint64
	DeviceAirdropLamports uint64
}

// Type implements Record.
func (g *GlobalState) Type() AccountType { return AccountTypeGlobalState }

// SizeGivenAllowlistLens returns the serialized size for the given
// allowlist populations, for account pre-allocation.
func SizeGivenAllowlistLens(foundation, qa int) int {
	return 1 + pubkeySize + 1 + 16 +
		vecSize(foundation, pubkeySize) + vecSize(qa, pubkeySize) +
		4*pubkeySize + 8 + 8
}

// Size returns the current serialized size.
func (g *GlobalState) Size() int {
	return SizeGivenAllowlistLens(len(g.FoundationAllowlist), len(g.QAAllowlist))
}

// Serialize renders the record in its account layout.
func (g *GlobalState) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeGlobalState))
	e.Pubkey(g.Owner)
	e.U8(g.BumpSeed)
	e.U128(g.AccountIndex)
	e.VecLen(len(g.FoundationAllowlist))
	for _, k := range g.FoundationAllowlist {
		e.Pubkey(k)
	}
	e.VecLen(len(g.QAAllowlist))
	for _, k := range g.QAAllowlist {
		e.Pubkey(k)
	}
	e.Pubkey(g.ActivatorAuthority)
	e.Pubkey(g.SentinelAuthority)
	e.Pubkey(g.HealthOracleAuthority)
	e.Pubkey(g.ReservationAuthority)
	e.U64(g.UserAirdropLamports)
	e.U64(g.DeviceAirdropLamports)
	return e.Bytes()
}

// DeserializeGlobalState parses a GlobalState account.
func DeserializeGlobalState(data []byte) (*GlobalState, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeGlobalState); err != nil {
		return nil, err
	}
	g := &GlobalState{}
	g.Owner = d.Pubkey()
	g.BumpSeed = d.U8()
	g.AccountIndex = d.U128()
	for n := d.VecLen(); n > 0; n-- {
		g.FoundationAllowlist = append(g.FoundationAllowlist, d.Pubkey())
	}
	for n := d.VecLen(); n > 0; n-- {
		g.QAAllowlist = append(g.QAAllowlist, d.Pubkey())
	}
	g.ActivatorAuthority = d.Pubkey()
	g.SentinelAuthority = d.Pubkey()
	g.HealthOracleAuthority = d.Pubkey()
	g.ReservationAuthority = d.Pubkey()
	g.UserAirdropLamports = d.U64()
	g.DeviceAirdropLamports = d.U64()
	if err := d.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// IsFoundationMember reports whether key sits on the foundation allowlist.
// Foundation membership satisfies every authority gate.
func (g *GlobalState) IsFoundationMember(key solana.PublicKey) bool {
	for _, k := range g.FoundationAllowlist {
		if k == key {
			return true
		}
	}
	return false
}

// IsQAMember reports whether key sits on the QA allowlist.
func (g *GlobalState) IsQAMember(key solana.PublicKey) bool {
	for _, k := range g.QAAllowlist {
		if k == key {
			return true
		}
	}
	return false
}
