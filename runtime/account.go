package runtime

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Account is the host's view of a single persistent account as handed to a
// program entrypoint. Data mutations made by a handler become visible only
// if the whole instruction succeeds.
type Account struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
}

// Exists reports whether the account carries any data. Fresh PDA accounts
// arrive with a nil data slice.
func (a *Account) Exists() bool {
	return len(a.Data) > 0
}

// Context carries everything a program entrypoint may consume: the program
// id under which it runs, the positional account list named by the
// transaction, the raw instruction payload, and the host clock.
type Context struct {
	ProgramID solana.PublicKey
	Accounts  []*Account
	Data      []byte
	Epoch     uint64
	Logger    *zap.Logger
}

// Account returns the positional account at idx, or AccountShapeMismatch if
// the transaction named fewer accounts than the instruction requires.
func (c *Context) Account(idx int) (*Account, error) {
	if idx < 0 || idx >= len(c.Accounts) {
		return nil, ErrAccountShapeMismatch
	}
	return c.Accounts[idx], nil
}

// WritableAccount is Account plus a writability check.
func (c *Context) WritableAccount(idx int) (*Account, error) {
	acc, err := c.Account(idx)
	if err != nil {
		return nil, err
	}
	if !acc.IsWritable {
		return nil, ErrAccountNotWritable
	}
	return acc, nil
}

// SignerAccount is Account plus a signature check.
func (c *Context) SignerAccount(idx int) (*Account, error) {
	acc, err := c.Account(idx)
	if err != nil {
		return nil, err
	}
	if !acc.IsSigner {
		return nil, ErrMissingSigner
	}
	return acc, nil
}

// Entrypoint is the signature every program exposes to the host.
type Entrypoint func(*Context) error
