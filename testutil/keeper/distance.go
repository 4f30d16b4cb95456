package keeper

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/distance/x/distance/keeper"
	"github.com/paw-chain/distance/x/distance/types"
)

// DistanceMocks bundles the collaborators of a test distance keeper.
type DistanceMocks struct {
	Bank     *MockBankKeeper
	Staking  *MockStakingKeeper
	Identity *MockIdentityKeeper
	Hooks    *MockDistanceHooks
}

// DistanceKeeper creates a test keeper for the distance module over an
// in-memory store, initialised with the default genesis.
func DistanceKeeper(t testing.TB) (*keeper.Keeper, DistanceMocks, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	mocks := DistanceMocks{
		Bank:     NewMockBankKeeper(),
		Staking:  NewMockStakingKeeper(),
		Identity: NewMockIdentityKeeper(),
		Hooks:    &MockDistanceHooks{},
	}

	k := keeper.NewKeeper(
		runtime.NewKVStoreService(storeKey),
		mocks.Bank,
		mocks.Staking,
		mocks.Identity,
		types.DefaultAuthority(),
	)
	k.SetHooks(mocks.Hooks)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, ChainID: "distance-test-1"}, false, log.NewNopLogger())
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, mocks, ctx
}
