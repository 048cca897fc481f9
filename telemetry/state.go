package telemetry

import (
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

const (
	accountTypeDeviceLatencySamples uint8 = 1

	// MaxSamplesPerWrite bounds one write instruction; larger batches
	// must be split by the agent.
	MaxSamplesPerWrite = 1000

	// MaxAccountSize is the hard cap on a samples account. Writes that
	// would grow past it are refused; the agent rolls to the next epoch
	// account instead.
	MaxAccountSize = 10240
)

// headerSize is the serialized size of everything before the samples
// vector's elements.
const headerSize = 1 + 3*32 + 1 + 3*8 + 4

// DeviceLatencySamples is one epoch's worth of raw RTT measurements for a
// (origin, target, link) triple. Samples are microseconds, appended in
// measurement order at a fixed interval from the start timestamp.
type DeviceLatencySamples struct {
	OriginDevicePK         solana.PublicKey
	TargetDevicePK         solana.PublicKey
	LinkPK                 solana.PublicKey
	BumpSeed               uint8
	Epoch                  uint64
	SamplingIntervalMicros uint64
	StartTimestampMicros   uint64
	Samples                []uint32
}

// Free reports how many more samples fit under the account cap.
func (r *DeviceLatencySamples) Free() int {
	return (MaxAccountSize - headerSize - 4*len(r.Samples)) / 4
}

// Serialize renders the record in its account layout.
func (r *DeviceLatencySamples) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(accountTypeDeviceLatencySamples)
	e.Pubkey(r.OriginDevicePK)
	e.Pubkey(r.TargetDevicePK)
	e.Pubkey(r.LinkPK)
	e.U8(r.BumpSeed)
	e.U64(r.Epoch)
	e.U64(r.SamplingIntervalMicros)
	e.U64(r.StartTimestampMicros)
	e.VecLen(len(r.Samples))
	for _, s := range r.Samples {
		e.U32(s)
	}
	return e.Bytes()
}

// DeserializeDeviceLatencySamples parses a samples account.
func DeserializeDeviceLatencySamples(data []byte) (*DeviceLatencySamples, error) {
	d := codec.NewDecoder(data)
	if d.U8() != accountTypeDeviceLatencySamples {
		return nil, runtime.ErrAccountTypeMismatch
	}
	r := &DeviceLatencySamples{}
	r.OriginDevicePK = d.Pubkey()
	r.TargetDevicePK = d.Pubkey()
	r.LinkPK = d.Pubkey()
	r.BumpSeed = d.U8()
	r.Epoch = d.U64()
	r.SamplingIntervalMicros = d.U64()
	r.StartTimestampMicros = d.U64()
	n := d.VecLen()
	if n > 0 {
		r.Samples = make([]uint32, n)
		for i := range r.Samples {
			r.Samples[i] = d.U32()
		}
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return r, nil
}
