package runtime

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// AccountMeta names one account a transaction touches.
type AccountMeta struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// Meta is shorthand for a read-only, non-signing account reference.
func Meta(key solana.PublicKey) AccountMeta {
	return AccountMeta{Key: key}
}

// WritableMeta names a writable account.
func WritableMeta(key solana.PublicKey) AccountMeta {
	return AccountMeta{Key: key, IsWritable: true}
}

// SignerMeta names a signing account.
func SignerMeta(key solana.PublicKey) AccountMeta {
	return AccountMeta{Key: key, IsSigner: true}
}

// WritableSignerMeta names a writable signing account (payers).
func WritableSignerMeta(key solana.PublicKey) AccountMeta {
	return AccountMeta{Key: key, IsSigner: true, IsWritable: true}
}

// Emulator is a deterministic single-threaded host. It executes one
// instruction at a time against its account store, rolling back every
// touched account when the entrypoint errors. It exists for package tests
// and the CLI's local ledger; it performs no signature cryptography, the
// caller's metas are trusted.
type Emulator struct {
	programs map[solana.PublicKey]Entrypoint
	accounts map[solana.PublicKey]*Account
	epoch    uint64
	nonce    uint64
	logger   *zap.Logger
}

// NewEmulator returns an empty emulator logging through logger.
func NewEmulator(logger *zap.Logger) *Emulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emulator{
		programs: make(map[solana.PublicKey]Entrypoint),
		accounts: make(map[solana.PublicKey]*Account),
		logger:   logger,
	}
}

// Register installs a program entrypoint under its id.
func (m *Emulator) Register(programID solana.PublicKey, ep Entrypoint) {
	m.programs[programID] = ep
}

// SetEpoch advances the host clock. Epochs only move forward.
func (m *Emulator) SetEpoch(epoch uint64) {
	if epoch > m.epoch {
		m.epoch = epoch
	}
}

// Epoch returns the current host epoch.
func (m *Emulator) Epoch() uint64 { return m.epoch }

// Account returns a copy of the stored account, if any.
func (m *Emulator) Account(key solana.PublicKey) (Account, bool) {
	acc, ok := m.accounts[key]
	if !ok {
		return Account{}, false
	}
	cp := *acc
	cp.Data = append([]byte(nil), acc.Data...)
	return cp, true
}

// Accounts returns a snapshot of every account owned by owner.
func (m *Emulator) Accounts(owner solana.PublicKey) map[solana.PublicKey][]byte {
	out := make(map[solana.PublicKey][]byte)
	for key, acc := range m.accounts {
		if acc.Owner == owner && len(acc.Data) > 0 {
			out[key] = append([]byte(nil), acc.Data...)
		}
	}
	return out
}

// SetAccount installs an account record directly, bypassing program
// execution. Used to seed ledger snapshots.
func (m *Emulator) SetAccount(key, owner solana.PublicKey, data []byte) {
	m.accounts[key] = &Account{
		Key:   key,
		Owner: owner,
		Data:  append([]byte(nil), data...),
	}
}

// SetLamports credits an account, creating an empty record if needed.
// Models transfers landing on a PDA before its creation instruction.
func (m *Emulator) SetLamports(key solana.PublicKey, lamports uint64) {
	acc, ok := m.accounts[key]
	if !ok {
		acc = &Account{Key: key}
		m.accounts[key] = acc
	}
	acc.Lamports = lamports
}

// Execute runs one instruction. Unknown accounts materialize as empty
// records owned by the invoked program, mirroring PDA creation. On error
// all touched accounts revert and the error is returned unchanged.
func (m *Emulator) Execute(programID solana.PublicKey, metas []AccountMeta, data []byte) (solana.Signature, error) {
	ep, ok := m.programs[programID]
	if !ok {
		return solana.Signature{}, ErrInvalidAccountOwner
	}

	views := make([]*Account, len(metas))
	saved := make([]Account, len(metas))
	for i, meta := range metas {
		acc, ok := m.accounts[meta.Key]
		if !ok {
			acc = &Account{Key: meta.Key, Owner: programID}
			m.accounts[meta.Key] = acc
		}
		saved[i] = *acc
		saved[i].Data = append([]byte(nil), acc.Data...)

		view := *acc
		view.Data = append([]byte(nil), acc.Data...)
		view.IsSigner = meta.IsSigner
		view.IsWritable = meta.IsWritable
		views[i] = &view
	}

	ctx := &Context{
		ProgramID: programID,
		Accounts:  views,
		Data:      data,
		Epoch:     m.epoch,
		Logger:    m.logger,
	}

	if err := ep(ctx); err != nil {
		for i, meta := range metas {
			restored := saved[i]
			m.accounts[meta.Key] = &restored
		}
		return solana.Signature{}, err
	}

	for i, meta := range metas {
		if !meta.IsWritable {
			continue
		}
		stored := m.accounts[meta.Key]
		stored.Owner = views[i].Owner
		stored.Lamports = views[i].Lamports
		stored.Data = views[i].Data
	}

	m.nonce++
	return m.signature(programID, data), nil
}

// signature fabricates a unique, deterministic transaction signature.
func (m *Emulator) signature(programID solana.PublicKey, data []byte) solana.Signature {
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], m.nonce)
	h1 := sha256.Sum256(append(append(programID.Bytes(), nonce[:]...), data...))
	h2 := sha256.Sum256(h1[:])
	var sig solana.Signature
	copy(sig[:32], h1[:])
	copy(sig[32:], h2[:])
	return sig
}
