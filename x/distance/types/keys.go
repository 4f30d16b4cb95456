package types

import (
	"cosmossdk.io/collections"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
)

const (
	// ModuleName defines the module name. It is also the name of the module
	// account holding evaluation stakes.
	ModuleName = "distance"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// BurnSink is the SlashSink value meaning slashed stakes are burned instead
	// of being moved to another module account.
	BurnSink = "burn"

	// NumPools is the number of rotating evaluation pools.
	NumPools = 3
)

var (
	ParamsKey               = collections.NewPrefix(0)
	CurrentPeriodKey        = collections.NewPrefix(1)
	EvaluationHeightKey     = collections.NewPrefix(2)
	PoolsPrefix             = collections.NewPrefix(3)
	RequestsPrefix          = collections.NewPrefix(4)
	StatusesPrefix          = collections.NewPrefix(5)
	StatusExpiryPrefix      = collections.NewPrefix(6)
	LastSubmissionHeightKey = collections.NewPrefix(7)
)

// DefaultAuthority returns the governance module address as the only allowed
// authority for parameter updates and administrative overrides.
func DefaultAuthority() string {
	return authtypes.NewModuleAddress(govtypes.ModuleName).String()
}
