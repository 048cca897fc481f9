package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"

	"github.com/doublezero/doublezero-contract/runtime"
)

// config is the operator-side YAML configuration.
type config struct {
	ProgramID string `yaml:"program_id"`
	Signer    string `yaml:"signer"`
	Ledger    string `yaml:"ledger"`
	Epoch     uint64 `yaml:"epoch"`
}

func loadConfig(path string) (config, error) {
	cfg := config{Ledger: "ledger.yaml", Epoch: 1}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ProgramID == "" {
		return cfg, errors.New("config: program_id is required")
	}
	if cfg.Signer == "" {
		return cfg, errors.New("config: signer is required")
	}
	return cfg, nil
}

// ledgerFile is the on-disk account snapshot the CLI operates against.
// Keys are base58, account data is base64.
type ledgerFile struct {
	Epoch    uint64        `yaml:"epoch"`
	Accounts []ledgerEntry `yaml:"accounts"`
}

type ledgerEntry struct {
	Key  string `yaml:"key"`
	Data string `yaml:"data"`
}

// loadLedger seeds the emulator from a snapshot file. A missing file is
// an empty ledger.
func loadLedger(path string, em *runtime.Emulator, owner solana.PublicKey, epoch uint64) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		em.SetEpoch(epoch)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	var lf ledgerFile
	if err := yaml.Unmarshal(raw, &lf); err != nil {
		return fmt.Errorf("parse ledger: %w", err)
	}
	em.SetEpoch(lf.Epoch)
	if epoch > lf.Epoch {
		em.SetEpoch(epoch)
	}
	for _, entry := range lf.Accounts {
		rawKey, err := base58.Decode(entry.Key)
		if err != nil || len(rawKey) != solana.PublicKeyLength {
			return fmt.Errorf("ledger: bad account key %q", entry.Key)
		}
		data, err := base64.StdEncoding.DecodeString(entry.Data)
		if err != nil {
			return fmt.Errorf("ledger: bad account data for %s: %w", entry.Key, err)
		}
		em.SetAccount(solana.PublicKeyFromBytes(rawKey), owner, data)
	}
	return nil
}

// saveLedger writes the current account set back to the snapshot file.
func saveLedger(path string, em *runtime.Emulator, owner solana.PublicKey) error {
	lf := ledgerFile{Epoch: em.Epoch()}
	for key, data := range em.Accounts(owner) {
		lf.Accounts = append(lf.Accounts, ledgerEntry{
			Key:  base58.Encode(key[:]),
			Data: base64.StdEncoding.EncodeToString(data),
		})
	}
	sort.Slice(lf.Accounts, func(i, j int) bool {
		return lf.Accounts[i].Key < lf.Accounts[j].Key
	})
	raw, err := yaml.Marshal(&lf)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
