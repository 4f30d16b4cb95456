package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// EndBlocker rotates the evaluation pools on the last block of each period.
func (k Keeper) EndBlocker(ctx context.Context) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	params, err := k.GetParams(ctx)
	if err != nil {
		sdkCtx.Logger().Error("failed to load distance params", "error", err)
		return nil
	}
	if sdkCtx.BlockHeight()%params.PeriodLength != 0 {
		return nil
	}

	// A failed rotation is discarded whole and retried at the next boundary.
	cacheCtx, write := sdkCtx.CacheContext()
	if err := k.AdvancePeriod(cacheCtx); err != nil {
		sdkCtx.Logger().Error("failed to advance distance period", "height", sdkCtx.BlockHeight(), "error", err)
		// Don't return error - log and continue to prevent block production halt
		return nil
	}
	write()
	return nil
}
