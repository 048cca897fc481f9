// Package verifier reconciles resource pools against their consumers. It
// walks a snapshot of every program-owned account, derives the set of
// in-use ids and addresses from the live records, diffs that against the
// pool bitmaps, and reports each mismatch. The companion planner turns a
// report into repair instructions.
package verifier

import (
	"bytes"
	"net/netip"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Cause classifies one discrepancy.
type Cause uint8

const (
	CauseAllocatedButNotUsed Cause = iota
	CauseUsedButNotAllocated
	CauseExtensionNotFound
)

func (c Cause) String() string {
	switch c {
	case CauseAllocatedButNotUsed:
		return "AllocatedButNotUsed"
	case CauseUsedButNotAllocated:
		return "UsedButNotAllocated"
	case CauseExtensionNotFound:
		return "ExtensionNotFound"
	}
	return "Unknown"
}

// Discrepancy is one value on which a pool and its consumers disagree.
// Extension names the pool account; it is zero when the pool itself is
// missing.
type Discrepancy struct {
	Kind      state.ResourceKind
	Extension solana.PublicKey
	Value     instructions.ResourceValue
	Cause     Cause
}

// Snapshot is the parsed account set of one deployment.
type Snapshot struct {
	ProgramID solana.PublicKey

	Devices map[solana.PublicKey]*state.Device
	Links   map[solana.PublicKey]*state.Link
	Users   map[solana.PublicKey]*state.User
	Groups  map[solana.PublicKey]*state.MulticastGroup
	Tenants map[solana.PublicKey]*state.Tenant

	pools []pool
}

// pool is one classified extension account.
type pool struct {
	key  solana.PublicKey
	kind state.ResourceKind
	ext  *state.ResourceExtension
}

// Parse deserializes a raw account snapshot, classifying each extension
// by its derived address or its associated device. Account kinds the
// verifier does not reconcile are skipped.
func Parse(programID solana.PublicKey, accounts map[solana.PublicKey][]byte) (*Snapshot, error) {
	s := &Snapshot{
		ProgramID: programID,
		Devices:   make(map[solana.PublicKey]*state.Device),
		Links:     make(map[solana.PublicKey]*state.Link),
		Users:     make(map[solana.PublicKey]*state.User),
		Groups:    make(map[solana.PublicKey]*state.MulticastGroup),
		Tenants:   make(map[solana.PublicKey]*state.Tenant),
	}

	globalKinds := make(map[solana.PublicKey]state.ResourceKind)
	for kind := state.ResourceKindUserTunnelBlock; kind <= state.ResourceKindMulticastPublisherBlock; kind++ {
		if !kind.Global() {
			continue
		}
		key, _, err := pda.DeriveResourceExtensionPDA(programID, uint8(kind))
		if err != nil {
			return nil, err
		}
		globalKinds[key] = kind
	}

	var extensions []pool
	for key, data := range accounts {
		typ, err := state.AccountTypeOf(data)
		if err != nil {
			return nil, err
		}
		switch typ {
		case state.AccountTypeDevice:
			dev, err := state.DeserializeDevice(data)
			if err != nil {
				return nil, err
			}
			s.Devices[key] = dev
		case state.AccountTypeLink:
			link, err := state.DeserializeLink(data)
			if err != nil {
				return nil, err
			}
			s.Links[key] = link
		case state.AccountTypeUser:
			user, err := state.DeserializeUser(data)
			if err != nil {
				return nil, err
			}
			s.Users[key] = user
		case state.AccountTypeMulticastGroup:
			grp, err := state.DeserializeMulticastGroup(data)
			if err != nil {
				return nil, err
			}
			s.Groups[key] = grp
		case state.AccountTypeTenant:
			ten, err := state.DeserializeTenant(data)
			if err != nil {
				return nil, err
			}
			s.Tenants[key] = ten
		case state.AccountTypeResourceExtension:
			ext, err := state.DeserializeResourceExtension(data)
			if err != nil {
				return nil, err
			}
			extensions = append(extensions, pool{key: key, ext: ext})
		}
	}

	// Classification after the full walk so device-associated pools can
	// be told apart from the global ones. A device owns at most one id
	// pool kind and one address pool kind, so the allocator variant
	// decides.
	for _, p := range extensions {
		if kind, ok := globalKinds[p.key]; ok {
			p.kind = kind
		} else if _, ok := s.Devices[p.ext.AssociatedWith]; ok {
			if p.ext.AllocatorType == state.AllocatorTypeId {
				p.kind = state.ResourceKindTunnelIds
			} else {
				p.kind = state.ResourceKindDzPrefixBlock
			}
		} else {
			continue
		}
		s.pools = append(s.pools, p)
	}
	sort.Slice(s.pools, func(i, j int) bool {
		return bytes.Compare(s.pools[i].key[:], s.pools[j].key[:]) < 0
	})
	return s, nil
}

// usage is the in-use value set of one pool scope.
type usage struct {
	ids    map[uint16]bool
	addrs  map[netip.Addr]bool
	blocks map[netip.Prefix]bool
}

func newUsage() *usage {
	return &usage{
		ids:    make(map[uint16]bool),
		addrs:  make(map[netip.Addr]bool),
		blocks: make(map[netip.Prefix]bool),
	}
}

// Verify diffs every pool against its consumers and reports each
// mismatch. The report is ordered by pool key, then value.
func (s *Snapshot) Verify() ([]Discrepancy, error) {
	global := map[state.ResourceKind]*usage{}
	for kind := state.ResourceKindUserTunnelBlock; kind <= state.ResourceKindMulticastPublisherBlock; kind++ {
		if kind.Global() {
			global[kind] = newUsage()
		}
	}
	tunnelIds := make(map[solana.PublicKey]*usage) // keyed by device
	dzAddrs := make(map[netip.Addr]bool)           // allocated-IP users

	for _, link := range s.Links {
		if !link.TunnelNet.IsValid() {
			continue
		}
		global[state.ResourceKindLinkIds].ids[link.TunnelID] = true
		global[state.ResourceKindDeviceTunnelBlock].blocks[link.TunnelNet.Masked()] = true
	}
	for _, user := range s.Users {
		if user.TunnelNet.IsValid() {
			u := tunnelIds[user.DevicePK]
			if u == nil {
				u = newUsage()
				tunnelIds[user.DevicePK] = u
			}
			u.ids[user.TunnelID] = true
			global[state.ResourceKindUserTunnelBlock].blocks[user.TunnelNet.Masked()] = true
		}
		if user.UserType == state.UserTypeIBRLWithAllocatedIP && user.DzIP.IsValid() {
			dzAddrs[user.DzIP] = true
		}
	}
	for _, grp := range s.Groups {
		if grp.MulticastIP.IsValid() {
			global[state.ResourceKindMulticastGroupBlock].addrs[grp.MulticastIP] = true
		}
	}
	for _, dev := range s.Devices {
		for _, iface := range dev.Interfaces {
			if iface.Status == state.InterfaceStatusActivated && iface.NodeSegmentIdx != 0 {
				global[state.ResourceKindSegmentRoutingIds].ids[iface.NodeSegmentIdx] = true
			}
		}
	}
	for _, ten := range s.Tenants {
		if ten.VrfID != 0 {
			global[state.ResourceKindVrfIds].ids[ten.VrfID] = true
		}
	}

	var out []Discrepancy
	seenGlobal := make(map[state.ResourceKind]bool)
	seenTunnelIds := make(map[solana.PublicKey]bool)
	for _, p := range s.pools {
		switch p.kind {
		case state.ResourceKindTunnelIds:
			u := tunnelIds[p.ext.AssociatedWith]
			if u == nil {
				u = newUsage()
			}
			ds, err := diffIds(p, u.ids)
			if err != nil {
				return nil, err
			}
			out = append(out, ds...)
			seenTunnelIds[p.ext.AssociatedWith] = true
		case state.ResourceKindDzPrefixBlock:
			ds, err := diffDzPool(p, dzAddrs)
			if err != nil {
				return nil, err
			}
			out = append(out, ds...)
		default:
			u := global[p.kind]
			var ds []Discrepancy
			var err error
			if p.ext.AllocatorType == state.AllocatorTypeId {
				ds, err = diffIds(p, u.ids)
			} else {
				ds, err = diffAddrs(p, u.addrs, u.blocks)
			}
			if err != nil {
				return nil, err
			}
			out = append(out, ds...)
			seenGlobal[p.kind] = true
		}
	}

	// Consumers pointing at pools that do not exist. Missing pools
	// cannot be repaired in place, only reported.
	for kind := state.ResourceKindUserTunnelBlock; kind <= state.ResourceKindMulticastPublisherBlock; kind++ {
		u, ok := global[kind]
		if !ok || seenGlobal[kind] {
			continue
		}
		out = append(out, missing(kind, u)...)
	}
	devKeys := make([]solana.PublicKey, 0, len(tunnelIds))
	for devKey := range tunnelIds {
		devKeys = append(devKeys, devKey)
	}
	sort.Slice(devKeys, func(i, j int) bool {
		return bytes.Compare(devKeys[i][:], devKeys[j][:]) < 0
	})
	for _, devKey := range devKeys {
		if !seenTunnelIds[devKey] {
			out = append(out, missing(state.ResourceKindTunnelIds, tunnelIds[devKey])...)
		}
	}
	for _, addr := range sortedAddrs(dzAddrs) {
		covered := false
		for _, p := range s.pools {
			if p.kind == state.ResourceKindDzPrefixBlock && p.ext.BaseNet.Contains(addr) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, Discrepancy{
				Kind:  state.ResourceKindDzPrefixBlock,
				Value: instructions.ResourceValue{Kind: instructions.ResourceValueIp, Ip: addr},
				Cause: CauseExtensionNotFound,
			})
		}
	}
	return out, nil
}

func missing(kind state.ResourceKind, u *usage) []Discrepancy {
	var out []Discrepancy
	for _, id := range sortedIds(u.ids) {
		out = append(out, Discrepancy{
			Kind:  kind,
			Value: instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: id},
			Cause: CauseExtensionNotFound,
		})
	}
	for _, addr := range sortedAddrs(u.addrs) {
		out = append(out, Discrepancy{
			Kind:  kind,
			Value: instructions.ResourceValue{Kind: instructions.ResourceValueIp, Ip: addr},
			Cause: CauseExtensionNotFound,
		})
	}
	for _, block := range sortedBlocks(u.blocks) {
		out = append(out, Discrepancy{
			Kind:  kind,
			Value: instructions.ResourceValue{Kind: instructions.ResourceValueIpBlock, Block: block},
			Cause: CauseExtensionNotFound,
		})
	}
	return out
}

// diffIds reports the symmetric difference between an id pool and its
// in-use set.
func diffIds(p pool, used map[uint16]bool) ([]Discrepancy, error) {
	ids, err := p.ext.IdAllocator()
	if err != nil {
		return nil, err
	}
	var out []Discrepancy
	for _, id := range ids.Allocated() {
		if !used[id] {
			out = append(out, Discrepancy{
				Kind:      p.kind,
				Extension: p.key,
				Value:     instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: id},
				Cause:     CauseAllocatedButNotUsed,
			})
		}
	}
	for _, id := range sortedIds(used) {
		if !ids.IsAllocated(id) {
			out = append(out, Discrepancy{
				Kind:      p.kind,
				Extension: p.key,
				Value:     instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: id},
				Cause:     CauseUsedButNotAllocated,
			})
		}
	}
	return out, nil
}

// diffAddrs reports the symmetric difference for an address pool whose
// consumers hold single addresses and aligned blocks.
func diffAddrs(p pool, addrs map[netip.Addr]bool, blocks map[netip.Prefix]bool) ([]Discrepancy, error) {
	ips, err := p.ext.IpAllocator()
	if err != nil {
		return nil, err
	}
	covered := make(map[netip.Addr]bool)
	for addr := range addrs {
		covered[addr] = true
	}
	for block := range blocks {
		for addr := block.Masked().Addr(); block.Contains(addr); addr = addr.Next() {
			covered[addr] = true
		}
	}

	var out []Discrepancy
	for _, addr := range ips.Allocated() {
		if !covered[addr] {
			out = append(out, Discrepancy{
				Kind:      p.kind,
				Extension: p.key,
				Value:     instructions.ResourceValue{Kind: instructions.ResourceValueIp, Ip: addr},
				Cause:     CauseAllocatedButNotUsed,
			})
		}
	}
	for _, addr := range sortedAddrs(addrs) {
		if !ips.IsAllocated(addr) {
			out = append(out, Discrepancy{
				Kind:      p.kind,
				Extension: p.key,
				Value:     instructions.ResourceValue{Kind: instructions.ResourceValueIp, Ip: addr},
				Cause:     CauseUsedButNotAllocated,
			})
		}
	}
	for _, block := range sortedBlocks(blocks) {
		complete := true
		for addr := block.Masked().Addr(); block.Contains(addr); addr = addr.Next() {
			if !ips.IsAllocated(addr) {
				complete = false
				break
			}
		}
		if !complete {
			out = append(out, Discrepancy{
				Kind:      p.kind,
				Extension: p.key,
				Value:     instructions.ResourceValue{Kind: instructions.ResourceValueIpBlock, Block: block},
				Cause:     CauseUsedButNotAllocated,
			})
		}
	}
	return out, nil
}

// diffDzPool reconciles one device address pool. The pool's first usable
// address is the device's own and always counts as in use.
func diffDzPool(p pool, dzAddrs map[netip.Addr]bool) ([]Discrepancy, error) {
	used := make(map[netip.Addr]bool)
	used[firstUsable(p.ext.BaseNet)] = true
	for addr := range dzAddrs {
		if p.ext.BaseNet.Contains(addr) {
			used[addr] = true
		}
	}
	return diffAddrs(p, used, nil)
}

// firstUsable returns the device's reserved self address within a dz
// prefix: the first host address, or the network address on /31 and /32
// prefixes where none is reserved.
func firstUsable(base netip.Prefix) netip.Addr {
	addr := base.Masked().Addr()
	if base.Bits() >= 31 {
		return addr
	}
	return addr.Next()
}

func sortedIds(m map[uint16]bool) []uint16 {
	out := make([]uint16, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedAddrs(m map[netip.Addr]bool) []netip.Addr {
	out := make([]netip.Addr, 0, len(m))
	for addr := range m {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func sortedBlocks(m map[netip.Prefix]bool) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(m))
	for block := range m {
		out = append(out, block)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Addr() != out[j].Addr() {
			return out[i].Addr().Less(out[j].Addr())
		}
		return out[i].Bits() < out[j].Bits()
	})
	return out
}
