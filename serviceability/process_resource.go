package serviceability

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 signer (foundation), 1 globalstate, 2 extension, plus the
// associated account at 3 for kinds that have one: the global config for
// config-backed address pools, the owning device for per-device pools.
// Global id pools associate with the global state itself.
func processInitResourceExtension(ctx *runtime.Context, ins *instructions.InitResourceExtension) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, gsAcc, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireFoundation(gs, signer.Key); err != nil {
		return err
	}
	extAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}

	kind := ins.Kind
	ext := &state.ResourceExtension{
		Owner:         signer.Key,
		AllocatorType: kind.Allocator(),
	}

	var aux [][]byte
	var assocKey solana.PublicKey
	switch {
	case !kind.Global():
		devAcc, err := readAccount(ctx, 3)
		if err != nil {
			return err
		}
		assocKey = devAcc.Key
		aux = [][]byte{devAcc.Key.Bytes(), {ins.Ordinal}}
		if kind == state.ResourceKindDzPrefixBlock {
			dev, err := state.DeserializeDevice(devAcc.Data)
			if err != nil {
				return err
			}
			if !containsPrefix(dev.DzPrefixes, ins.BaseNet) {
				return runtime.ErrInvalidInstructionData
			}
			ext.BaseNet = ins.BaseNet
		}
	case kind == state.ResourceKindUserTunnelBlock,
		kind == state.ResourceKindDeviceTunnelBlock,
		kind == state.ResourceKindMulticastGroupBlock:
		cfgAcc, err := readAccount(ctx, 3)
		if err != nil {
			return err
		}
		cfg, err := state.DeserializeGlobalConfig(cfgAcc.Data)
		if err != nil {
			return err
		}
		assocKey = cfgAcc.Key
		switch kind {
		case state.ResourceKindUserTunnelBlock:
			ext.BaseNet = cfg.UserTunnelBlock
		case state.ResourceKindDeviceTunnelBlock:
			ext.BaseNet = cfg.DeviceTunnelBlock
		case state.ResourceKindMulticastGroupBlock:
			ext.BaseNet = cfg.MulticastGroupBlock
		}
	case kind == state.ResourceKindMulticastPublisherBlock:
		assocKey = gsAcc.Key
		ext.BaseNet = ins.BaseNet
	default:
		assocKey = gsAcc.Key
	}

	var size int
	switch ext.AllocatorType {
	case state.AllocatorTypeId:
		if ins.RangeEnd <= ins.RangeStart {
			return runtime.ErrInvalidInstructionData
		}
		ext.RangeStart = ins.RangeStart
		ext.RangeEnd = ins.RangeEnd
		size = state.SizeForIdRange(ins.RangeStart, ins.RangeEnd)
	case state.AllocatorTypeIp:
		if !ext.BaseNet.IsValid() {
			return runtime.ErrInvalidInstructionData
		}
		size = state.SizeForIpBlock(ext.BaseNet)
	}

	key, bump, err := pda.DeriveResourceExtensionPDA(ctx.ProgramID, uint8(kind), aux...)
	if err != nil {
		return err
	}
	if err := expectKey(extAcc, key); err != nil {
		return err
	}
	if bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	ext.BumpSeed = bump
	ext.AssociatedWith = assocKey
	ext.Bitmap = make([]byte, size-state.BitmapOffset)
	return store(extAcc, ext)
}

// Accounts: 0 signer (activator), 1 globalstate, 2 extension (writable).
// Converges a pool on externally observed usage; entity operations keep
// allocating through their own paths.
func processAllocateResource(ctx *runtime.Context, ins *instructions.AllocateResource) error {
	ext, extAcc, err := resourcePool(ctx, ins.Kind)
	if err != nil {
		return err
	}
	switch ext.AllocatorType {
	case state.AllocatorTypeId:
		ids, err := ext.IdAllocator()
		if err != nil {
			return err
		}
		switch ins.Value.Kind {
		case instructions.ResourceValueNone:
			if _, err := ids.Allocate(); err != nil {
				return err
			}
		case instructions.ResourceValueId:
			if !ids.AllocateRequested(ins.Value.Id) {
				return runtime.ErrAlreadyAllocated
			}
		default:
			return runtime.ErrInvalidInstructionData
		}
		ext.SyncId(ids)
	case state.AllocatorTypeIp:
		ips, err := ext.IpAllocator()
		if err != nil {
			return err
		}
		switch ins.Value.Kind {
		case instructions.ResourceValueNone:
			if _, err := ips.Allocate(); err != nil {
				return err
			}
		case instructions.ResourceValueIp:
			if !ips.AllocateRequested(ins.Value.Ip) {
				return runtime.ErrAlreadyAllocated
			}
		case instructions.ResourceValueIpBlock:
			if !ips.AllocateRequestedBlock(ins.Value.Block) {
				return runtime.ErrAlreadyAllocated
			}
		default:
			return runtime.ErrInvalidInstructionData
		}
		ext.SyncIp(ips)
	}
	return ext.StoreHeader(extAcc.Data)
}

// Accounts: same layout as AllocateResource.
func processDeallocateResource(ctx *runtime.Context, ins *instructions.DeallocateResource) error {
	ext, extAcc, err := resourcePool(ctx, ins.Kind)
	if err != nil {
		return err
	}
	switch ext.AllocatorType {
	case state.AllocatorTypeId:
		ids, err := ext.IdAllocator()
		if err != nil {
			return err
		}
		if ins.Value.Kind != instructions.ResourceValueId {
			return runtime.ErrInvalidInstructionData
		}
		if !ids.Deallocate(ins.Value.Id) {
			return runtime.ErrNotAllocated
		}
		ext.SyncId(ids)
	case state.AllocatorTypeIp:
		ips, err := ext.IpAllocator()
		if err != nil {
			return err
		}
		switch ins.Value.Kind {
		case instructions.ResourceValueIp:
			if !ips.Deallocate(ins.Value.Ip) {
				return runtime.ErrNotAllocated
			}
		case instructions.ResourceValueIpBlock:
			if !ips.DeallocateBlock(ins.Value.Block) {
				return runtime.ErrNotAllocated
			}
		default:
			return runtime.ErrInvalidInstructionData
		}
		ext.SyncIp(ips)
	}
	return ext.StoreHeader(extAcc.Data)
}

func resourcePool(ctx *runtime.Context, kind state.ResourceKind) (*state.ResourceExtension, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	if err := requireActivator(gs, signer.Key); err != nil {
		return nil, nil, err
	}
	return loadExtension(ctx, 2, kind.Allocator())
}

func containsPrefix(prefixes []netip.Prefix, p netip.Prefix) bool {
	for _, have := range prefixes {
		if have == p {
			return true
		}
	}
	return false
}
