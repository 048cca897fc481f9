package serviceability

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

type record interface {
	Serialize() ([]byte, error)
}

// store rewrites the account with the record's current layout. Records
// may grow or shrink; the host charges rent elsewhere.
func store(acc *runtime.Account, rec record) error {
	data, err := rec.Serialize()
	if err != nil {
		return err
	}
	acc.Data = data
	return nil
}

// readAccount returns an existing program-owned account without
// requiring writability.
func readAccount(ctx *runtime.Context, idx int) (*runtime.Account, error) {
	acc, err := ctx.Account(idx)
	if err != nil {
		return nil, err
	}
	if !acc.Exists() {
		return nil, runtime.ErrAccountShapeMismatch
	}
	if !acc.Owner.Equals(ctx.ProgramID) {
		return nil, runtime.ErrInvalidAccountOwner
	}
	return acc, nil
}

// writeAccount is readAccount plus a writability check.
func writeAccount(ctx *runtime.Context, idx int) (*runtime.Account, error) {
	acc, err := readAccount(ctx, idx)
	if err != nil {
		return nil, err
	}
	if !acc.IsWritable {
		return nil, runtime.ErrAccountNotWritable
	}
	return acc, nil
}

// newAccount claims an empty writable account for the program.
func newAccount(ctx *runtime.Context, idx int) (*runtime.Account, error) {
	acc, err := ctx.WritableAccount(idx)
	if err != nil {
		return nil, err
	}
	if acc.Exists() {
		return nil, runtime.ErrAccountAlreadyExists
	}
	acc.Owner = ctx.ProgramID
	return acc, nil
}

// closeInto drains the account into the recipient and clears its data.
func closeInto(acc, recipient *runtime.Account) {
	recipient.Lamports += acc.Lamports
	acc.Lamports = 0
	acc.Data = nil
}

// expectKey fails with InvalidIndex unless the account sits at the
// derived address.
func expectKey(acc *runtime.Account, derived solana.PublicKey) error {
	if !acc.Key.Equals(derived) {
		return runtime.ErrInvalidIndex
	}
	return nil
}

// globalState loads the singleton from the given position.
func globalState(ctx *runtime.Context, idx int) (*state.GlobalState, *runtime.Account, error) {
	acc, err := readAccount(ctx, idx)
	if err != nil {
		return nil, nil, err
	}
	gs, err := state.DeserializeGlobalState(acc.Data)
	if err != nil {
		return nil, nil, err
	}
	return gs, acc, nil
}

// loadExtension loads a resource pool account and checks its allocator
// variant. The returned extension's bitmap aliases the account data, so
// allocator writes land directly; callers persist the header afterwards.
func loadExtension(ctx *runtime.Context, idx int, want state.AllocatorType) (*state.ResourceExtension, *runtime.Account, error) {
	acc, err := writeAccount(ctx, idx)
	if err != nil {
		return nil, nil, err
	}
	ext, err := state.DeserializeResourceExtension(acc.Data)
	if err != nil {
		return nil, nil, err
	}
	if ext.AllocatorType != want {
		return nil, nil, runtime.ErrExtensionMissing
	}
	return ext, acc, nil
}

// removeMember drops key from the list, preserving order. Absent keys
// are a no-op.
func removeMember(keys []solana.PublicKey, key solana.PublicKey) []solana.PublicKey {
	out := keys[:0]
	for _, k := range keys {
		if !k.Equals(key) {
			out = append(out, k)
		}
	}
	return out
}

// claimIndex enforces the create protocol: the instruction's index must
// be exactly account_index+1. On success the counter is advanced on the
// in-memory record; the caller persists it with the rest of the write.
func claimIndex(gs *state.GlobalState, index bin.Uint128) error {
	if !state.SameIndex(index, state.NextIndex(gs.AccountIndex)) {
		return runtime.ErrInvalidIndex
	}
	gs.AccountIndex = index
	return nil
}
