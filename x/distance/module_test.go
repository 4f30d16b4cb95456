package distance_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/distance/testutil/keeper"
	"github.com/paw-chain/distance/x/distance"
	"github.com/paw-chain/distance/x/distance/types"
)

func TestAppModuleGenesis(t *testing.T) {
	k, _, ctx := keepertest.DistanceKeeper(t)
	am := distance.NewAppModule(k)

	require.Equal(t, types.ModuleName, am.Name())

	bz := am.DefaultGenesis(nil)
	require.NoError(t, am.ValidateGenesis(nil, nil, bz))
	require.ErrorIs(t, am.ValidateGenesis(nil, nil, json.RawMessage(`{"pools":[]}`)), types.ErrInvalidParams)
	require.ErrorIs(t, am.ValidateGenesis(nil, nil, json.RawMessage(`{`)), types.ErrInvalidGenesis)

	exported := am.ExportGenesis(ctx, nil)
	var gs types.GenesisState
	require.NoError(t, json.Unmarshal(exported, &gs))
	require.Equal(t, *types.DefaultGenesis(), gs)
}

func TestAppModuleEndBlock(t *testing.T) {
	k, _, ctx := keepertest.DistanceKeeper(t)
	am := distance.NewAppModule(k)

	params := types.DefaultParams()
	ctx = ctx.WithBlockHeight(params.PeriodLength)
	require.NoError(t, am.EndBlock(ctx))

	period, err := k.GetCurrentPeriod(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), period)
}
