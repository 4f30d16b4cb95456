package types

import (
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Params are the governance-controlled settings of the distance module.
type Params struct {
	// PeriodLength is the number of blocks in an evaluation period.
	PeriodLength int64 `json:"period_length"`
	// EvaluationPrice is held from the requester until settlement.
	EvaluationPrice sdk.Coin `json:"evaluation_price"`
	// MinAccessibleReferees is the share of referees an identity must reach.
	MinAccessibleReferees Perbill `json:"min_accessible_referees"`
	// MaxRefereeDistance bounds the backward traversal depth.
	MaxRefereeDistance uint32 `json:"max_referee_distance"`
	// MaxEvaluationsPerPeriod bounds the number of requests a pool accepts.
	MaxEvaluationsPerPeriod uint32 `json:"max_evaluations_per_period"`
	// MaxEvaluatorsPerPeriod bounds witnesses per period and accumulator capacity.
	MaxEvaluatorsPerPeriod uint32 `json:"max_evaluators_per_period"`
	// ResultExpiration is the number of periods a Valid status lasts.
	ResultExpiration uint64 `json:"result_expiration"`
	// SlashSink names the module account receiving slashed stakes, or BurnSink.
	SlashSink string `json:"slash_sink"`
}

// DefaultParams returns default distance parameters
func DefaultParams() Params {
	return Params{
		PeriodLength:            600, // ~1 hour at 6s blocks
		EvaluationPrice:         sdk.NewCoin(sdk.DefaultBondDenom, sdkmath.NewInt(1000)),
		MinAccessibleReferees:   PerbillFromPercent(80),
		MaxRefereeDistance:      5,
		MaxEvaluationsPerPeriod: 1300,
		MaxEvaluatorsPerPeriod:  100,
		ResultExpiration:        720, // ~30 days of periods
		SlashSink:               BurnSink,
	}
}

// Validate checks parameter bounds.
func (p Params) Validate() error {
	if p.PeriodLength <= 0 {
		return ErrInvalidParams.Wrapf("period length must be positive, got %d", p.PeriodLength)
	}
	if err := p.EvaluationPrice.Validate(); err != nil {
		return ErrInvalidParams.Wrapf("evaluation price: %s", err)
	}
	if err := p.MinAccessibleReferees.Validate(); err != nil {
		return ErrInvalidParams.Wrapf("min accessible referees: %s", err)
	}
	if p.MaxRefereeDistance == 0 {
		return ErrInvalidParams.Wrap("max referee distance must be at least 1")
	}
	if p.MaxEvaluationsPerPeriod == 0 {
		return ErrInvalidParams.Wrap("max evaluations per period must be positive")
	}
	if p.MaxEvaluatorsPerPeriod == 0 {
		return ErrInvalidParams.Wrap("max evaluators per period must be positive")
	}
	if p.ResultExpiration == 0 {
		return ErrInvalidParams.Wrap("result expiration must be positive")
	}
	if strings.TrimSpace(p.SlashSink) == "" {
		return ErrInvalidParams.Wrap("slash sink cannot be empty")
	}
	if p.SlashSink == ModuleName {
		return ErrInvalidParams.Wrapf("slash sink cannot be the %s module itself", ModuleName)
	}
	return nil
}
