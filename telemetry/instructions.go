package telemetry

import (
	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

// Opcode is the first byte of telemetry instruction data.
type Opcode uint8

const (
	OpInitializeDeviceLatencySamples Opcode = 0
	OpWriteDeviceLatencySamples      Opcode = 1
)

func (op Opcode) String() string {
	switch op {
	case OpInitializeDeviceLatencySamples:
		return "InitializeDeviceLatencySamples"
	case OpWriteDeviceLatencySamples:
		return "WriteDeviceLatencySamples"
	}
	return "Unknown"
}

// Instruction is one decoded telemetry instruction.
type Instruction interface {
	Opcode() Opcode
	encode(e *codec.Encoder)
	decode(d *codec.Decoder)
}

// InitializeDeviceLatencySamples creates the samples account for one
// (origin, target, link, epoch) tuple.
type InitializeDeviceLatencySamples struct {
	Epoch                  uint64
	SamplingIntervalMicros uint64
	BumpSeed               uint8
}

func (*InitializeDeviceLatencySamples) Opcode() Opcode { return OpInitializeDeviceLatencySamples }

func (ins *InitializeDeviceLatencySamples) encode(e *codec.Encoder) {
	e.U64(ins.Epoch)
	e.U64(ins.SamplingIntervalMicros)
	e.U8(ins.BumpSeed)
}

func (ins *InitializeDeviceLatencySamples) decode(d *codec.Decoder) {
	ins.Epoch = d.U64()
	ins.SamplingIntervalMicros = d.U64()
	ins.BumpSeed = d.U8()
}

// WriteDeviceLatencySamples appends a batch of measurements. The start
// timestamp is recorded on the first write and ignored afterwards.
type WriteDeviceLatencySamples struct {
	StartTimestampMicros uint64
	Samples              []uint32
}

func (*WriteDeviceLatencySamples) Opcode() Opcode { return OpWriteDeviceLatencySamples }

func (ins *WriteDeviceLatencySamples) encode(e *codec.Encoder) {
	e.U64(ins.StartTimestampMicros)
	e.VecLen(len(ins.Samples))
	for _, s := range ins.Samples {
		e.U32(s)
	}
}

func (ins *WriteDeviceLatencySamples) decode(d *codec.Decoder) {
	ins.StartTimestampMicros = d.U64()
	n := d.VecLen()
	if n > 0 {
		ins.Samples = make([]uint32, n)
		for i := range ins.Samples {
			ins.Samples[i] = d.U32()
		}
	}
}

// Encode renders the instruction as opcode byte plus arguments.
func Encode(ins Instruction) ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(ins.Opcode()))
	ins.encode(e)
	return e.Bytes()
}

// Decode parses telemetry instruction data.
func Decode(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, runtime.ErrInvalidInstructionData
	}
	var ins Instruction
	switch Opcode(data[0]) {
	case OpInitializeDeviceLatencySamples:
		ins = &InitializeDeviceLatencySamples{}
	case OpWriteDeviceLatencySamples:
		ins = &WriteDeviceLatencySamples{}
	default:
		return nil, runtime.ErrInvalidInstructionData
	}
	d := codec.NewDecoder(data[1:])
	ins.decode(d)
	if err := d.Err(); err != nil {
		return nil, err
	}
	return ins, nil
}
