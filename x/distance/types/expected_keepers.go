package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
)

// BankKeeper defines the expected bank keeper interface
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// AccountKeeper defines the expected account keeper interface
type AccountKeeper interface {
	GetModuleAddress(moduleName string) sdk.AccAddress
}

// StakingKeeper defines the expected staking keeper interface
type StakingKeeper interface {
	GetValidator(ctx context.Context, addr sdk.ValAddress) (stakingtypes.Validator, error)
}

// IdentityKeeper resolves accounts to identities and decides eligibility.
type IdentityKeeper interface {
	// IdentityIndexOf returns the identity owned by addr.
	IdentityIndexOf(ctx context.Context, addr sdk.AccAddress) (uint32, bool)
	IsMember(ctx context.Context, identity uint32) bool
	// CheckRequestEvaluation rejects identities that may not be evaluated.
	CheckRequestEvaluation(ctx context.Context, identity uint32) error
}

// DistanceHooks receives settlement verdicts. Errors are logged by the caller
// and never abort settlement.
type DistanceHooks interface {
	OnValidDistanceStatus(ctx context.Context, identity uint32) error
	OnInvalidDistanceStatus(ctx context.Context, identity uint32) error
}

// MultiDistanceHooks combines multiple hooks into one that calls all of them.
type MultiDistanceHooks []DistanceHooks

func NewMultiDistanceHooks(hooks ...DistanceHooks) MultiDistanceHooks {
	return hooks
}

func (h MultiDistanceHooks) OnValidDistanceStatus(ctx context.Context, identity uint32) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.OnValidDistanceStatus(ctx, identity); err != nil {
			return err
		}
	}
	return nil
}

func (h MultiDistanceHooks) OnInvalidDistanceStatus(ctx context.Context, identity uint32) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.OnInvalidDistanceStatus(ctx, identity); err != nil {
			return err
		}
	}
	return nil
}

// WotReader exposes the certification graph to the oracle's snapshot query.
// It reads the state of the context it is given, so callers pick the height by
// choosing the context.
type WotReader interface {
	// Members returns the current members.
	Members(ctx context.Context) ([]uint32, error)
	// ReceivedCertifications maps each receiver to the identities that certified it.
	ReceivedCertifications(ctx context.Context) (map[uint32][]uint32, error)
}
