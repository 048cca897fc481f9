// Package telemetry is the sibling program storing raw latency samples
// per (origin device, target device, link, epoch). Only the origin
// device's metrics publisher may create or extend a samples account;
// aggregation happens off-chain over the stored buffers.
package telemetry

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Program dispatches telemetry instructions. It is keyed by the
// serviceability program's id, which owns the device and link accounts
// the handlers authenticate against.
type Program struct {
	serviceabilityID solana.PublicKey
}

// NewProgram returns a program bound to the serviceability deployment.
func NewProgram(serviceabilityID solana.PublicKey) *Program {
	return &Program{serviceabilityID: serviceabilityID}
}

// Process is the program entrypoint.
func (p *Program) Process(ctx *runtime.Context) error {
	ins, err := Decode(ctx.Data)
	if err != nil {
		return err
	}
	if ctx.Logger != nil {
		ctx.Logger.Debug("processing telemetry instruction",
			zap.Stringer("opcode", ins.Opcode()),
			zap.Uint64("epoch", ctx.Epoch))
	}

	switch ins := ins.(type) {
	case *InitializeDeviceLatencySamples:
		return p.processInitialize(ctx, ins)
	case *WriteDeviceLatencySamples:
		return p.processWrite(ctx, ins)
	}
	return runtime.ErrInvalidInstructionData
}

// originDevice loads a serviceability-owned device account and checks the
// signer is its metrics publisher.
func (p *Program) originDevice(ctx *runtime.Context, idx int, signer solana.PublicKey) (*state.Device, *runtime.Account, error) {
	acc, err := ctx.Account(idx)
	if err != nil {
		return nil, nil, err
	}
	if !acc.Exists() || !acc.Owner.Equals(p.serviceabilityID) {
		return nil, nil, runtime.ErrInvalidAccountOwner
	}
	dev, err := state.DeserializeDevice(acc.Data)
	if err != nil {
		return nil, nil, err
	}
	if !dev.MetricsPublisherPK.Equals(signer) {
		return nil, nil, runtime.ErrUnauthorized
	}
	return dev, acc, nil
}

// Accounts: 0 agent (signer), 1 samples, 2 origin device, 3 target
// device, 4 link. The samples account must sit at the PDA for the tuple
// and the epoch must be current.
func (p *Program) processInitialize(ctx *runtime.Context, ins *InitializeDeviceLatencySamples) error {
	agent, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	samplesAcc, err := ctx.WritableAccount(1)
	if err != nil {
		return err
	}
	if samplesAcc.Exists() {
		return runtime.ErrAccountAlreadyExists
	}
	samplesAcc.Owner = ctx.ProgramID
	_, originAcc, err := p.originDevice(ctx, 2, agent.Key)
	if err != nil {
		return err
	}
	targetAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	if !targetAcc.Exists() || !targetAcc.Owner.Equals(p.serviceabilityID) {
		return runtime.ErrInvalidAccountOwner
	}
	linkAcc, err := ctx.Account(4)
	if err != nil {
		return err
	}
	if !linkAcc.Exists() || !linkAcc.Owner.Equals(p.serviceabilityID) {
		return runtime.ErrInvalidAccountOwner
	}
	if ins.Epoch != ctx.Epoch {
		return runtime.ErrEpochMismatch
	}

	key, bump, err := pda.DeriveDeviceLatencySamplesPDA(ctx.ProgramID, originAcc.Key, targetAcc.Key, linkAcc.Key, ins.Epoch)
	if err != nil {
		return err
	}
	if !samplesAcc.Key.Equals(key) || bump != ins.BumpSeed {
		return runtime.ErrInvalidIndex
	}

	rec := &DeviceLatencySamples{
		OriginDevicePK:         originAcc.Key,
		TargetDevicePK:         targetAcc.Key,
		LinkPK:                 linkAcc.Key,
		BumpSeed:               bump,
		Epoch:                  ins.Epoch,
		SamplingIntervalMicros: ins.SamplingIntervalMicros,
	}
	data, err := rec.Serialize()
	if err != nil {
		return err
	}
	samplesAcc.Data = data
	return nil
}

// Accounts: 0 agent (signer), 1 samples (writable), 2 origin device. A
// write after the epoch rolled over is refused; the agent initializes a
// fresh account instead.
func (p *Program) processWrite(ctx *runtime.Context, ins *WriteDeviceLatencySamples) error {
	agent, err := ctx.SignerAccount(0)
	if err != nil {
		return err
	}
	samplesAcc, err := ctx.WritableAccount(1)
	if err != nil {
		return err
	}
	if !samplesAcc.Exists() || !samplesAcc.Owner.Equals(ctx.ProgramID) {
		return runtime.ErrInvalidAccountOwner
	}
	rec, err := DeserializeDeviceLatencySamples(samplesAcc.Data)
	if err != nil {
		return err
	}
	_, originAcc, err := p.originDevice(ctx, 2, agent.Key)
	if err != nil {
		return err
	}
	if !originAcc.Key.Equals(rec.OriginDevicePK) {
		return runtime.ErrDanglingReference
	}
	if rec.Epoch != ctx.Epoch {
		return runtime.ErrEpochMismatch
	}
	if len(ins.Samples) == 0 || len(ins.Samples) > MaxSamplesPerWrite {
		return runtime.ErrInvalidInstructionData
	}
	if len(ins.Samples) > rec.Free() {
		return runtime.ErrSamplesAccountFull
	}

	if rec.StartTimestampMicros == 0 {
		rec.StartTimestampMicros = ins.StartTimestampMicros
	}
	rec.Samples = append(rec.Samples, ins.Samples...)
	data, err := rec.Serialize()
	if err != nil {
		return err
	}
	samplesAcc.Data = data
	return nil
}
