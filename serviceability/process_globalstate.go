package serviceability

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Accounts: 0 payer (signer), 1 globalstate, 2 globalconfig,
// 3 programconfig. All three singletons are created in one shot and the
// payer becomes the first foundation member.
func processInitGlobalState(ctx *runtime.Context) error {
	payer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gsAcc, err := newAccount(ctx, 1)
	if err != nil {
		return err
	}
	cfgAcc, err := newAccount(ctx, 2)
	if err != nil {
		return err
	}
	pcAcc, err := newAccount(ctx, 3)
	if err != nil {
		return err
	}

	gsKey, gsBump, err := pda.DeriveGlobalStatePDA(ctx.ProgramID)
	if err != nil {
		return err
	}
	if err := expectKey(gsAcc, gsKey); err != nil {
		return err
	}
	cfgKey, cfgBump, err := pda.DeriveGlobalConfigPDA(ctx.ProgramID)
	if err != nil {
		return err
	}
	if err := expectKey(cfgAcc, cfgKey); err != nil {
		return err
	}
	pcKey, pcBump, err := pda.DeriveProgramConfigPDA(ctx.ProgramID)
	if err != nil {
		return err
	}
	if err := expectKey(pcAcc, pcKey); err != nil {
		return err
	}

	// The globalstate and globalconfig singletons occupy the first two
	// slots of the account-index sequence; indexed entities start at 3.
	gs := &state.GlobalState{
		Owner:               payer.Key,
		BumpSeed:            gsBump,
		AccountIndex:        bin.Uint128{Lo: 2},
		FoundationAllowlist: []solana.PublicKey{payer.Key},
	}
	if err := store(gsAcc, gs); err != nil {
		return err
	}
	cfg := &state.GlobalConfig{Owner: payer.Key, BumpSeed: cfgBump}
	if err := store(cfgAcc, cfg); err != nil {
		return err
	}
	pc := &state.ProgramConfig{Owner: payer.Key, BumpSeed: pcBump}
	return store(pcAcc, pc)
}

// Accounts: 0 signer, 1 globalstate, 2 globalconfig.
func processSetGlobalConfig(ctx *runtime.Context, ins *instructions.SetGlobalConfig) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireFoundation(gs, signer.Key); err != nil {
		return err
	}
	cfgAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	cfg, err := state.DeserializeGlobalConfig(cfgAcc.Data)
	if err != nil {
		return err
	}
	cfg.LocalASN = ins.LocalASN
	cfg.RemoteASN = ins.RemoteASN
	cfg.DeviceTunnelBlock = ins.DeviceTunnelBlock
	cfg.UserTunnelBlock = ins.UserTunnelBlock
	cfg.MulticastGroupBlock = ins.MulticastGroupBlock
	return store(cfgAcc, cfg)
}

// Accounts: 0 signer, 1 globalstate, 2 programconfig.
func processSetProgramConfig(ctx *runtime.Context, ins *instructions.SetProgramConfig) error {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	gs, _, err := globalState(ctx, 1)
	if err != nil {
		return err
	}
	if err := requireFoundation(gs, signer.Key); err != nil {
		return err
	}
	pcAcc, err := writeAccount(ctx, 2)
	if err != nil {
		return err
	}
	pc, err := state.DeserializeProgramConfig(pcAcc.Data)
	if err != nil {
		return err
	}
	pc.Version = ins.Version
	pc.MinCompatVersion = ins.MinCompatible
	return store(pcAcc, pc)
}

// Accounts: 0 signer, 1 globalstate.
func processSetAuthority(ctx *runtime.Context, ins *instructions.SetAuthority) error {
	gs, gsAcc, err := foundationMutableGlobalState(ctx)
	if err != nil {
		return err
	}
	switch ins.Kind {
	case state.AuthorityKindActivator:
		gs.ActivatorAuthority = ins.Authority
	case state.AuthorityKindSentinel:
		gs.SentinelAuthority = ins.Authority
	case state.AuthorityKindHealthOracle:
		gs.HealthOracleAuthority = ins.Authority
	case state.AuthorityKindReservation:
		gs.ReservationAuthority = ins.Authority
	default:
		return runtime.ErrInvalidInstructionData
	}
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate.
func processSetAirdropAmounts(ctx *runtime.Context, ins *instructions.SetAirdropAmounts) error {
	gs, gsAcc, err := foundationMutableGlobalState(ctx)
	if err != nil {
		return err
	}
	gs.UserAirdropLamports = ins.UserAirdropLamports
	gs.DeviceAirdropLamports = ins.DeviceAirdropLamports
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate.
func processAddFoundationAllowlist(ctx *runtime.Context, ins *instructions.AddFoundationAllowlist) error {
	gs, gsAcc, err := foundationMutableGlobalState(ctx)
	if err != nil {
		return err
	}
	if gs.IsFoundationMember(ins.Member) {
		return nil
	}
	gs.FoundationAllowlist = append(gs.FoundationAllowlist, ins.Member)
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate. Removing the last member is
// refused; the allowlist is the root of every authority chain.
func processRemoveFoundationAllowlist(ctx *runtime.Context, ins *instructions.RemoveFoundationAllowlist) error {
	gs, gsAcc, err := foundationMutableGlobalState(ctx)
	if err != nil {
		return err
	}
	if len(gs.FoundationAllowlist) == 1 && gs.FoundationAllowlist[0].Equals(ins.Member) {
		return runtime.ErrUnauthorized
	}
	gs.FoundationAllowlist = removeMember(gs.FoundationAllowlist, ins.Member)
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate.
func processAddQAAllowlist(ctx *runtime.Context, ins *instructions.AddQAAllowlist) error {
	gs, gsAcc, err := foundationMutableGlobalState(ctx)
	if err != nil {
		return err
	}
	if gs.IsQAMember(ins.Member) {
		return nil
	}
	gs.QAAllowlist = append(gs.QAAllowlist, ins.Member)
	return store(gsAcc, gs)
}

// Accounts: 0 signer, 1 globalstate.
func processRemoveQAAllowlist(ctx *runtime.Context, ins *instructions.RemoveQAAllowlist) error {
	gs, gsAcc, err := foundationMutableGlobalState(ctx)
	if err != nil {
		return err
	}
	gs.QAAllowlist = removeMember(gs.QAAllowlist, ins.Member)
	return store(gsAcc, gs)
}

// foundationMutableGlobalState is the shared prologue of the allowlist
// and authority instructions: signer at 0, writable globalstate at 1,
// foundation membership required.
func foundationMutableGlobalState(ctx *runtime.Context) (*state.GlobalState, *runtime.Account, error) {
	signer, err := ctx.SignerAccount(0)
	if err != nil {
		return nil, nil, err
	}
	gsAcc, err := writeAccount(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	gs, err := state.DeserializeGlobalState(gsAcc.Data)
	if err != nil {
		return nil, nil, err
	}
	if err := requireFoundation(gs, signer.Key); err != nil {
		return nil, nil, err
	}
	return gs, gsAcc, nil
}
