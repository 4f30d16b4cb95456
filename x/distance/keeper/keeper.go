package keeper

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/distance/x/distance/types"
	sharedkeeper "github.com/paw-chain/distance/x/shared/keeper"
)

var _ sharedkeeper.DistanceKeeperV1Extended = Keeper{}

// Keeper owns the rotating evaluation pools, the outstanding requests and the
// distance statuses of the distance module.
type Keeper struct {
	storeService   store.KVStoreService
	bankKeeper     types.BankKeeper
	stakingKeeper  types.StakingKeeper
	identityKeeper types.IdentityKeeper
	hooks          types.DistanceHooks
	authority      string // module authority (usually governance module account)
	metrics        *DistanceMetrics

	Schema               collections.Schema
	Params               collections.Item[types.Params]
	CurrentPeriod        collections.Item[uint64]
	EvaluationHeight     collections.Item[int64]
	LastSubmissionHeight collections.Item[int64]
	Pools                collections.Map[uint32, types.EvaluationPool]
	Requests             collections.Map[uint32, types.EvaluationRequest]
	Statuses             collections.Map[uint32, types.DistanceStatus]
	// StatusExpiry indexes Valid statuses by (expires_on, identity).
	StatusExpiry collections.KeySet[collections.Pair[uint64, uint32]]
}

// NewKeeper creates a new distance Keeper instance
func NewKeeper(
	storeService store.KVStoreService,
	bankKeeper types.BankKeeper,
	stakingKeeper types.StakingKeeper,
	identityKeeper types.IdentityKeeper,
	authority string,
) *Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := &Keeper{
		storeService:   storeService,
		bankKeeper:     bankKeeper,
		stakingKeeper:  stakingKeeper,
		identityKeeper: identityKeeper,
		authority:      authority,
		metrics:        NewDistanceMetrics(),

		Params:               collections.NewItem(sb, types.ParamsKey, "params", types.ParamsValue),
		CurrentPeriod:        collections.NewItem(sb, types.CurrentPeriodKey, "current_period", collections.Uint64Value),
		EvaluationHeight:     collections.NewItem(sb, types.EvaluationHeightKey, "evaluation_height", collections.Int64Value),
		LastSubmissionHeight: collections.NewItem(sb, types.LastSubmissionHeightKey, "last_submission_height", collections.Int64Value),
		Pools:                collections.NewMap(sb, types.PoolsPrefix, "pools", collections.Uint32Key, types.EvaluationPoolValue),
		Requests:             collections.NewMap(sb, types.RequestsPrefix, "requests", collections.Uint32Key, types.EvaluationRequestValue),
		Statuses:             collections.NewMap(sb, types.StatusesPrefix, "statuses", collections.Uint32Key, types.DistanceStatusValue),
		StatusExpiry: collections.NewKeySet(
			sb, types.StatusExpiryPrefix, "status_expiry",
			collections.PairKeyCodec(collections.Uint64Key, collections.Uint32Key),
		),
	}

	schema, err := sb.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build distance schema: %s", err))
	}
	k.Schema = schema
	return k
}

// SetHooks installs the consumer of settlement verdicts. It may be called once.
func (k *Keeper) SetHooks(hooks types.DistanceHooks) *Keeper {
	if k.hooks != nil {
		panic("cannot set distance hooks twice")
	}
	k.hooks = hooks
	return k
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the module's authority (governance account)
func (k Keeper) GetAuthority() string {
	return k.authority
}

// GetParams gets all parameters from the store
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	params, err := k.Params.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.DefaultParams(), nil
	}
	return params, err
}

// SetParams sets the module parameters
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return k.Params.Set(ctx, params)
}

// GetCurrentPeriod returns the current evaluation period, zero before the
// first rotation.
func (k Keeper) GetCurrentPeriod(ctx context.Context) (uint64, error) {
	period, err := k.CurrentPeriod.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return 0, nil
	}
	return period, err
}

// GetEvaluationHeight returns the height at which the current computation
// pool was frozen.
func (k Keeper) GetEvaluationHeight(ctx context.Context) (int64, error) {
	height, err := k.EvaluationHeight.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return 0, nil
	}
	return height, err
}

// GetPool returns the pool serving role in the current period.
func (k Keeper) GetPool(ctx context.Context, role types.PoolRole) (types.EvaluationPool, uint32, error) {
	period, err := k.GetCurrentPeriod(ctx)
	if err != nil {
		return types.EvaluationPool{}, 0, err
	}
	slot := types.PoolSlot(period, role)
	pool, err := k.getPoolBySlot(ctx, slot)
	return pool, slot, err
}

func (k Keeper) getPoolBySlot(ctx context.Context, slot uint32) (types.EvaluationPool, error) {
	pool, err := k.Pools.Get(ctx, slot)
	if errors.Is(err, collections.ErrNotFound) {
		return types.NewEvaluationPool(), nil
	}
	if err != nil {
		return types.EvaluationPool{}, types.ErrPoolNotFound.Wrapf("slot %d: %s", slot, err)
	}
	return pool, nil
}
