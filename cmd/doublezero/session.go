package main

import (
	"fmt"
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// session is one CLI invocation bound to a config, a ledger snapshot,
// and a signing identity.
type session struct {
	log        *zap.Logger
	em         *runtime.Emulator
	programID  solana.PublicKey
	signer     solana.PublicKey
	gsKey      solana.PublicKey
	cfgKey     solana.PublicKey
	pcKey      solana.PublicKey
	ledgerPath string
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	logger, err := buildLogger(c.GlobalBool("verbose"))
	if err != nil {
		return nil, err
	}

	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("config: bad program_id: %w", err)
	}
	signer, err := solana.PublicKeyFromBase58(cfg.Signer)
	if err != nil {
		return nil, fmt.Errorf("config: bad signer: %w", err)
	}

	em := runtime.NewEmulator(logger)
	em.Register(programID, serviceability.Process)
	if err := loadLedger(cfg.Ledger, em, programID, cfg.Epoch); err != nil {
		return nil, err
	}

	s := &session{
		log:        logger,
		em:         em,
		programID:  programID,
		signer:     signer,
		ledgerPath: cfg.Ledger,
	}
	if s.gsKey, _, err = pda.DeriveGlobalStatePDA(programID); err != nil {
		return nil, err
	}
	if s.cfgKey, _, err = pda.DeriveGlobalConfigPDA(programID); err != nil {
		return nil, err
	}
	if s.pcKey, _, err = pda.DeriveProgramConfigPDA(programID); err != nil {
		return nil, err
	}
	return s, nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// submit encodes the instruction, executes it against the ledger, prints
// the fabricated signature, and persists the snapshot.
func (s *session) submit(ins instructions.Instruction, metas ...runtime.AccountMeta) error {
	data, err := instructions.Encode(ins)
	if err != nil {
		return err
	}
	request := uuid.NewString()
	s.log.Info("submitting instruction",
		zap.String("request", request),
		zap.Stringer("opcode", ins.Opcode()))
	sig, err := s.em.Execute(s.programID, metas, data)
	if err != nil {
		return fmt.Errorf("%s: %w", ins.Opcode(), err)
	}
	fmt.Printf("signature: %s\n", base58.Encode(sig[:]))
	return saveLedger(s.ledgerPath, s.em, s.programID)
}

func (s *session) globalState() (*state.GlobalState, error) {
	acc, ok := s.em.Account(s.gsKey)
	if !ok {
		return nil, fmt.Errorf("global state not initialized (run 'doublezero init')")
	}
	return state.DeserializeGlobalState(acc.Data)
}

// nextIndex returns the index the program will accept for the next
// indexed-entity creation.
func (s *session) nextIndex() (bin.Uint128, error) {
	gs, err := s.globalState()
	if err != nil {
		return bin.Uint128{}, err
	}
	idx := gs.AccountIndex
	idx.Lo++
	if idx.Lo == 0 {
		idx.Hi++
	}
	return idx, nil
}

func keyFlag(c *cli.Context, name string) (solana.PublicKey, error) {
	v := c.String(name)
	if v == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return key, nil
}

func addrFlag(c *cli.Context, name string) (netip.Addr, error) {
	v := c.String(name)
	if v == "" {
		return netip.Addr{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := netip.ParseAddr(v)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

func prefixFlag(c *cli.Context, name string) (netip.Prefix, error) {
	v := c.String(name)
	if v == "" {
		return netip.Prefix{}, fmt.Errorf("--%s is required", name)
	}
	p, err := netip.ParsePrefix(v)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("--%s: %w", name, err)
	}
	return p, nil
}
