package serviceability

import (
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

// Authority gates. Foundation membership is the universal fallback: a
// foundation signer may act in place of any delegated authority, so a
// lost key never bricks the network.

func requireFoundation(gs *state.GlobalState, signer solana.PublicKey) error {
	if !gs.IsFoundationMember(signer) {
		return runtime.ErrUnauthorized
	}
	return nil
}

func requireActivator(gs *state.GlobalState, signer solana.PublicKey) error {
	if signer.Equals(gs.ActivatorAuthority) || gs.IsFoundationMember(signer) {
		return nil
	}
	return runtime.ErrActivatorRequired
}

func requireSentinel(gs *state.GlobalState, signer solana.PublicKey) error {
	if signer.Equals(gs.SentinelAuthority) || gs.IsFoundationMember(signer) {
		return nil
	}
	return runtime.ErrSentinelRequired
}

func requireHealthOracle(gs *state.GlobalState, signer solana.PublicKey) error {
	if signer.Equals(gs.HealthOracleAuthority) || gs.IsFoundationMember(signer) {
		return nil
	}
	return runtime.ErrHealthOracleRequired
}

func requireReservation(gs *state.GlobalState, signer solana.PublicKey) error {
	if signer.Equals(gs.ReservationAuthority) || gs.IsFoundationMember(signer) {
		return nil
	}
	return runtime.ErrReservationUnauthorized
}

// requireContributor admits the contributor's owner or ops manager, with
// the foundation fallback.
func requireContributor(gs *state.GlobalState, c *state.Contributor, signer solana.PublicKey) error {
	if c.Signer(signer) || gs.IsFoundationMember(signer) {
		return nil
	}
	return runtime.ErrContributorMismatch
}

// requireOwner admits the record owner, with the foundation fallback.
func requireOwner(gs *state.GlobalState, owner, signer solana.PublicKey) error {
	if signer.Equals(owner) || gs.IsFoundationMember(signer) {
		return nil
	}
	return runtime.ErrUnauthorized
}
