package state

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/codec"
)

// Version is a semantic program version triple.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v >= other.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch >= other.Patch
}

// ProgramConfig pins the deployed program version and the minimum client
// version it stays wire-compatible with.
type ProgramConfig struct {
	Owner            solana.PublicKey
	BumpSeed         uint8
	Version          Version
	MinCompatVersion Version
}

// Type implements Record.
func (p *ProgramConfig) Type() AccountType { return AccountTypeProgramConfig }

// Size returns the serialized size; ProgramConfig is fixed-width.
func (p *ProgramConfig) Size() int {
	return 1 + pubkeySize + 1 + 12 + 12
}

// Serialize renders the record in its account layout.
func (p *ProgramConfig) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	e.U8(uint8(AccountTypeProgramConfig))
	e.Pubkey(p.Owner)
	e.U8(p.BumpSeed)
	e.U32(p.Version.Major)
	e.U32(p.Version.Minor)
	e.U32(p.Version.Patch)
	e.U32(p.MinCompatVersion.Major)
	e.U32(p.MinCompatVersion.Minor)
	e.U32(p.MinCompatVersion.Patch)
	return e.Bytes()
}

// DeserializeProgramConfig parses a ProgramConfig account.
func DeserializeProgramConfig(data []byte) (*ProgramConfig, error) {
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeProgramConfig); err != nil {
		return nil, err
	}
	p := &ProgramConfig{}
	p.Owner = d.Pubkey()
	p.BumpSeed = d.U8()
	p.Version = Version{Major: d.U32(), Minor: d.U32(), Patch: d.U32()}
	p.MinCompatVersion = Version{Major: d.U32(), Minor: d.U32(), Patch: d.U32()}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
