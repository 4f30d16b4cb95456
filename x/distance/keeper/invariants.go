package keeper

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/paw-chain/distance/x/distance/types"
)

// RegisterInvariants registers all distance module invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "escrow-coverage", EscrowCoverageInvariant(k))
	ir.RegisterRoute(types.ModuleName, "request-pool-consistency", RequestPoolConsistencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "accumulator-capacity", AccumulatorCapacityInvariant(k))
	ir.RegisterRoute(types.ModuleName, "status-expiry-index", StatusExpiryIndexInvariant(k))
}

// AllInvariants runs all invariants of the distance module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for _, inv := range []func(Keeper) sdk.Invariant{
			EscrowCoverageInvariant,
			RequestPoolConsistencyInvariant,
			AccumulatorCapacityInvariant,
		} {
			if res, stop := inv(k)(ctx); stop {
				return res, stop
			}
		}
		return StatusExpiryIndexInvariant(k)(ctx)
	}
}

// EscrowCoverageInvariant checks that the module account holds at least the
// sum of all held evaluation prices.
func EscrowCoverageInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		held := make(map[string]sdkmath.Int)
		err := k.Requests.Walk(ctx, nil, func(_ uint32, request types.EvaluationRequest) (bool, error) {
			sum, ok := held[request.Held.Denom]
			if !ok {
				sum = sdkmath.ZeroInt()
			}
			held[request.Held.Denom] = sum.Add(request.Held.Amount)
			return false, nil
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "escrow-coverage", err.Error()), true
		}

		moduleAddr := authtypes.NewModuleAddress(types.ModuleName)
		var msg string
		broken := false
		for denom, sum := range held {
			balance := k.bankKeeper.GetBalance(ctx, moduleAddr, denom)
			if balance.Amount.LT(sum) {
				broken = true
				msg += fmt.Sprintf("  - %s: held %s, balance %s\n", denom, sum, balance.Amount)
			}
		}
		return sdk.FormatInvariant(types.ModuleName, "escrow-coverage", msg), broken
	}
}

// RequestPoolConsistencyInvariant checks that every queued evaluation has
// exactly one request record and vice versa.
func RequestPoolConsistencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		queued := make(map[uint32]int)
		for slot := uint32(0); slot < types.NumPools; slot++ {
			pool, err := k.getPoolBySlot(ctx, slot)
			if err != nil {
				return sdk.FormatInvariant(types.ModuleName, "request-pool-consistency", err.Error()), true
			}
			for _, id := range pool.Identities() {
				queued[id]++
			}
		}

		var issues []string
		err := k.Requests.Walk(ctx, nil, func(id uint32, _ types.EvaluationRequest) (bool, error) {
			if queued[id] != 1 {
				issues = append(issues, fmt.Sprintf("request %d queued %d times", id, queued[id]))
			}
			delete(queued, id)
			return false, nil
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "request-pool-consistency", err.Error()), true
		}
		for id := range queued {
			issues = append(issues, fmt.Sprintf("identity %d queued without request", id))
		}

		msg := ""
		for _, issue := range issues {
			msg += fmt.Sprintf("  - %s\n", issue)
		}
		return sdk.FormatInvariant(types.ModuleName, "request-pool-consistency", msg), len(issues) > 0
	}
}

// AccumulatorCapacityInvariant checks that no accumulator exceeds its
// capacity and evaluator sets hold no duplicates.
func AccumulatorCapacityInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for slot := uint32(0); slot < types.NumPools; slot++ {
			pool, err := k.getPoolBySlot(ctx, slot)
			if err == nil {
				err = pool.Validate()
			}
			if err != nil {
				return sdk.FormatInvariant(types.ModuleName, "accumulator-capacity",
					fmt.Sprintf("pool %d: %s", slot, err)), true
			}
		}
		return sdk.FormatInvariant(types.ModuleName, "accumulator-capacity", ""), false
	}
}

// StatusExpiryIndexInvariant checks that the expiry index and the statuses
// describe the same set.
func StatusExpiryIndexInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		keys, err := k.expiryIndex(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "status-expiry-index", err.Error()), true
		}
		indexed := make(map[uint32]uint64, len(keys))
		for _, key := range keys {
			indexed[key.K2()] = key.K1()
		}

		var msg string
		broken := false
		count := 0
		err = k.Statuses.Walk(ctx, nil, func(id uint32, status types.DistanceStatus) (bool, error) {
			count++
			if expiresOn, ok := indexed[id]; !ok || expiresOn != status.ExpiresOn {
				broken = true
				msg += fmt.Sprintf("  - status %d not indexed at %d\n", id, status.ExpiresOn)
			}
			return false, nil
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "status-expiry-index", err.Error()), true
		}
		if count != len(keys) {
			broken = true
			msg += fmt.Sprintf("  - %d statuses but %d index entries\n", count, len(keys))
		}
		return sdk.FormatInvariant(types.ModuleName, "status-expiry-index", msg), broken
	}
}
