package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/collections"

	"github.com/paw-chain/distance/x/distance/types"
)

// InitGenesis initializes the module's state from a provided genesis state.
// All three pool slots are written so that every slot exists afterwards.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}
	if err := k.CurrentPeriod.Set(ctx, genState.CurrentPeriod); err != nil {
		return err
	}
	if err := k.EvaluationHeight.Set(ctx, genState.EvaluationHeight); err != nil {
		return err
	}
	for _, entry := range genState.Pools {
		if err := k.Pools.Set(ctx, entry.Slot, entry.Pool); err != nil {
			return fmt.Errorf("failed to set pool %d: %w", entry.Slot, err)
		}
	}
	for _, request := range genState.Requests {
		if err := k.Requests.Set(ctx, request.Identity, request); err != nil {
			return fmt.Errorf("failed to set request %d: %w", request.Identity, err)
		}
	}
	for _, status := range genState.Statuses {
		if err := k.setValidStatus(ctx, status.Identity, status.Requester, status.ExpiresOn); err != nil {
			return fmt.Errorf("failed to set status %d: %w", status.Identity, err)
		}
	}

	k.Logger(ctx).Info("distance module genesis initialized",
		"period", genState.CurrentPeriod,
		"requests", len(genState.Requests),
		"statuses", len(genState.Statuses),
	)
	return nil
}

// ExportGenesis returns the module's exported genesis state.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	period, err := k.GetCurrentPeriod(ctx)
	if err != nil {
		return nil, err
	}
	height, err := k.GetEvaluationHeight(ctx)
	if err != nil {
		return nil, err
	}

	gs := &types.GenesisState{
		Params:           params,
		CurrentPeriod:    period,
		EvaluationHeight: height,
		Pools:            make([]types.PoolEntry, 0, types.NumPools),
		Requests:         []types.EvaluationRequest{},
		Statuses:         []types.DistanceStatus{},
	}
	for slot := uint32(0); slot < types.NumPools; slot++ {
		pool, err := k.getPoolBySlot(ctx, slot)
		if err != nil {
			return nil, err
		}
		gs.Pools = append(gs.Pools, types.PoolEntry{Slot: slot, Pool: pool})
	}

	err = k.Requests.Walk(ctx, nil, func(_ uint32, request types.EvaluationRequest) (bool, error) {
		gs.Requests = append(gs.Requests, request)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	err = k.Statuses.Walk(ctx, nil, func(_ uint32, status types.DistanceStatus) (bool, error) {
		gs.Statuses = append(gs.Statuses, status)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}

// expiryIndex lists the (expires_on, identity) pairs of the expiry index.
func (k Keeper) expiryIndex(ctx context.Context) ([]collections.Pair[uint64, uint32], error) {
	var keys []collections.Pair[uint64, uint32]
	err := k.StatusExpiry.Walk(ctx, nil, func(key collections.Pair[uint64, uint32]) (bool, error) {
		keys = append(keys, key)
		return false, nil
	})
	return keys, err
}
