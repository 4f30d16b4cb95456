package types

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"
)

func TestDefaultGenesisValidates(t *testing.T) {
	gs := DefaultGenesis()
	require.NoError(t, gs.Validate())
	require.Len(t, gs.Pools, NumPools)
}

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()
	require.NoError(t, params.Validate())
	require.Equal(t, Perbill(800_000_000), params.MinAccessibleReferees)
	require.Equal(t, uint32(5), params.MaxRefereeDistance)
	require.Equal(t, BurnSink, params.SlashSink)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero period", func(p *Params) { p.PeriodLength = 0 }},
		{"threshold above one", func(p *Params) { p.MinAccessibleReferees = PerbillOne + 1 }},
		{"zero depth", func(p *Params) { p.MaxRefereeDistance = 0 }},
		{"zero evaluations", func(p *Params) { p.MaxEvaluationsPerPeriod = 0 }},
		{"zero evaluators", func(p *Params) { p.MaxEvaluatorsPerPeriod = 0 }},
		{"zero expiration", func(p *Params) { p.ResultExpiration = 0 }},
		{"empty sink", func(p *Params) { p.SlashSink = " " }},
		{"self sink", func(p *Params) { p.SlashSink = ModuleName }},
		{"bad price", func(p *Params) { p.EvaluationPrice = sdk.Coin{Denom: "", Amount: sdkmath.NewInt(1)} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := DefaultParams()
			tc.mutate(&params)
			require.ErrorIs(t, params.Validate(), ErrInvalidParams)
		})
	}
}

func TestGenesisValidate(t *testing.T) {
	requester := authtypes.NewModuleAddress("requester").String()
	price := DefaultParams().EvaluationPrice

	withRequest := func() *GenesisState {
		gs := DefaultGenesis()
		require.NoError(t, gs.Pools[1].Pool.Enqueue(4, 10, 10))
		gs.Requests = append(gs.Requests, EvaluationRequest{Identity: 4, Requester: requester, Held: price})
		return gs
	}
	require.NoError(t, withRequest().Validate())

	gs := withRequest()
	gs.Requests = nil
	require.ErrorIs(t, gs.Validate(), ErrInvalidGenesis)

	gs = withRequest()
	require.NoError(t, gs.Pools[2].Pool.Enqueue(4, 10, 10))
	require.ErrorIs(t, gs.Validate(), ErrInvalidGenesis)

	gs = withRequest()
	gs.Pools = gs.Pools[:2]
	require.ErrorIs(t, gs.Validate(), ErrInvalidGenesis)

	gs = withRequest()
	gs.CurrentPeriod = 10
	gs.Statuses = []DistanceStatus{{Identity: 4, Requester: requester, ExpiresOn: 10}}
	require.ErrorIs(t, gs.Validate(), ErrInvalidGenesis)
}

func TestJSONValueCodec(t *testing.T) {
	pool := NewEvaluationPool()
	require.NoError(t, pool.Enqueue(3, 5, 5))
	require.NoError(t, pool.ApplyResult(ComputationResult{Distances: []Perbill{42}}))

	bz, err := EvaluationPoolValue.Encode(pool)
	require.NoError(t, err)
	decoded, err := EvaluationPoolValue.Decode(bz)
	require.NoError(t, err)
	require.Equal(t, pool, decoded)

	_, err = EvaluationPoolValue.Decode([]byte("{"))
	require.Error(t, err)
}
