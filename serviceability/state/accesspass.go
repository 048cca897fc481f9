package state

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// AccessPassKind discriminates the AccessPassType sum type. Variant order
// is frozen by the fixtures.
type AccessPassKind uint8

const (
	AccessPassKindPrepaid                   AccessPassKind = 0
	AccessPassKindSolanaValidator           AccessPassKind = 1
	AccessPassKindSolanaRPC                 AccessPassKind = 2
	AccessPassKindSolanaMulticastPublisher  AccessPassKind = 3
	AccessPassKindSolanaMulticastSubscriber AccessPassKind = 4
	AccessPassKindOthers                    AccessPassKind = 5
)

// AccessPassType is the pass classification. Key carries the associated
// Solana identity for the Solana* variants and Others; Name is set only
// for Others.
type AccessPassType struct {
	Kind AccessPassKind
	Key  solana.PublicKey
	Name string
}

func (t *AccessPassType) size() int {
	switch t.Kind {
	case AccessPassKindPrepaid:
		return 1
	case AccessPassKindOthers:
		return 1 + stringSize(t.Name) + pubkeySize
	default:
		return 1 + pubkeySize
	}
}

// Encode writes the variant in its wire form.
func (t *AccessPassType) Encode(e *codec.Encoder) {
	e.U8(uint8(t.Kind))
	switch t.Kind {
	case AccessPassKindPrepaid:
	case AccessPassKindOthers:
		e.String(t.Name)
		e.Pubkey(t.Key)
	default:
		e.Pubkey(t.Key)
	}
}

// DecodeAccessPassType reads the variant written by Encode.
func DecodeAccessPassType(d *codec.Decoder) AccessPassType {
	var t AccessPassType
	t.Kind = AccessPassKind(d.U8())
	switch t.Kind {
	case AccessPassKindPrepaid:
	case AccessPassKindSolanaValidator, AccessPassKindSolanaRPC,
		AccessPassKindSolanaMulticastPublisher, AccessPassKindSolanaMulticastSubscriber:
		t.Key = d.Pubkey()
	case AccessPassKindOthers:
		t.Name = d.String()
		t.Key = d.Pubkey()
	default:
		d.Fail("unknown access pass variant")
	}
	return t
}

// AccessPass flag bits.
const (
	AccessPassFlagAllowMultipleIP uint8 = 1 << 0
)

// AccessPass grants a client IP admission to the network on behalf of a
// paying principal and scopes which multicast groups and tenants it may
// touch.
type AccessPass struct {
	Owner              solana.PublicKey
	BumpSeed           uint8
	PassType           AccessPassType
	ClientIP           netip.Addr
	UserPayer          solana.PublicKey
	LastAccessEpoch    uint64
	ConnectionCount    uint16
	Status             AccessPassStatus
	Flags              uint8
	MgroupPubAllowlist []solana.PublicKey
	MgroupSubAllowlist []solana.PublicKey
	TenantAllowlist    []solana.PublicKey
}

// Type implements Record.
func (p *AccessPass) Type() AccountType { return AccountTypeAccessPass }

// SizeGivenAllowlistLens returns the serialized size for the given
// allowlist populations and the current pass type.
func (p *AccessPass) SizeGivenAllowlistLens(pub, sub, tenants int) int {
	return 1 + pubkeySize + 1 + p.PassType.size() +
		ipv4Size + pubkeySize + 8 + 2 + 1 + 1 +
		vecSize(pub, pubkeySize) + vecSize(sub, pubkeySize) + vecSize(tenants, pubkeySize)
}

// Size returns the current serialized size.
func (p *AccessPass) Size() int {
	return p.SizeGivenAllowlistLens(len(p.MgroupPubAllowlist), len(p.MgroupSubAllowlist), len(p.TenantAllowlist))
}

// Serialize renders the record in its account layout.
func (p *AccessPass) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeAccessPass))
	e.Pubkey(p.Owner)
	e.U8(p.BumpSeed)
	p.PassType.Encode(e)
	e.IPv4(orZero4(p.ClientIP))
	e.Pubkey(p.UserPayer)
	e.U64(p.LastAccessEpoch)
	e.U16(p.ConnectionCount)
	e.U8(uint8(p.Status))
	e.U8(p.Flags)
	e.VecLen(len(p.MgroupPubAllowlist))
	for _, k := range p.MgroupPubAllowlist {
		e.Pubkey(k)
	}
	e.VecLen(len(p.MgroupSubAllowlist))
	for _, k := range p.MgroupSubAllowlist {
		e.Pubkey(k)
	}
	e.VecLen(len(p.TenantAllowlist))
	for _, k := range p.TenantAllowlist {
		e.Pubkey(k)
	}
	return e.Bytes()
}

// DeserializeAccessPass parses an AccessPass account.
func DeserializeAccessPass(data []byte) (*AccessPass, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeAccessPass); err != nil {
		return nil, err
	}
	p := &AccessPass{}
	p.Owner = d.Pubkey()
	p.BumpSeed = d.U8()
	p.PassType = DecodeAccessPassType(d)
	p.ClientIP = d.IPv4()
	p.UserPayer = d.Pubkey()
	p.LastAccessEpoch = d.U64()
	p.ConnectionCount = d.U16()
	p.Status = AccessPassStatus(d.U8())
	p.Flags = d.U8()
	for n := d.VecLen(); n > 0; n-- {
		p.MgroupPubAllowlist = append(p.MgroupPubAllowlist, d.Pubkey())
	}
	for n := d.VecLen(); n > 0; n-- {
		p.MgroupSubAllowlist = append(p.MgroupSubAllowlist, d.Pubkey())
	}
	for n := d.VecLen(); n > 0; n-- {
		p.TenantAllowlist = append(p.TenantAllowlist, d.Pubkey())
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// AllowsPublish reports whether the pass allowlists group for publishing.
func (p *AccessPass) AllowsPublish(group solana.PublicKey) bool {
	return containsKey(p.MgroupPubAllowlist, group)
}

// AllowsSubscribe reports whether the pass allowlists group for
// subscription.
func (p *AccessPass) AllowsSubscribe(group solana.PublicKey) bool {
	return containsKey(p.MgroupSubAllowlist, group)
}

// AllowsTenant reports whether the pass may attach to tenant. An empty
// allowlist allows any tenant.
func (p *AccessPass) AllowsTenant(tenant solana.PublicKey) bool {
	if len(p.TenantAllowlist) == 0 {
		return true
	}
	return containsKey(p.TenantAllowlist, tenant)
}
