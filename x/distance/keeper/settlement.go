package keeper

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/distance/x/distance/types"
	"github.com/paw-chain/distance/x/shared/abci"
)

// AdvancePeriod rotates the pools: the period counter moves forward, the
// evaluation height is recorded, due statuses expire and the slot that now
// receives requests is settled and drained. Only store failures are returned;
// settlement problems are logged and skipped.
func (k Keeper) AdvancePeriod(ctx context.Context) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	period, err := k.GetCurrentPeriod(ctx)
	if err != nil {
		return err
	}
	period++
	if err := k.CurrentPeriod.Set(ctx, period); err != nil {
		return err
	}
	if err := k.EvaluationHeight.Set(ctx, sdkCtx.BlockHeight()); err != nil {
		return err
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}

	handler := abci.NewBlockerErrorHandler(sdkCtx, types.ModuleName)
	handler.WrapError("expire_statuses", abci.SeverityLow, k.expireStatuses(sdkCtx, period))

	settled, err := k.settlePool(sdkCtx, handler, params, period)
	if err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePeriodAdvanced,
			sdk.NewAttribute(types.AttributeKeyPeriod, fmt.Sprintf("%d", period)),
			sdk.NewAttribute(types.AttributeKeyHeight, fmt.Sprintf("%d", sdkCtx.BlockHeight())),
			sdk.NewAttribute(types.AttributeKeyCount, fmt.Sprintf("%d", settled)),
		),
	)
	k.metrics.CurrentPeriod.Set(float64(period))
	k.metrics.PoolSize.WithLabelValues(types.RoleRequests.String()).Set(0)

	k.Logger(ctx).Info("distance period advanced",
		"period", period,
		"height", sdkCtx.BlockHeight(),
		"settled", settled,
		"anomalies", handler.Handled(),
	)
	return nil
}

// settlePool resolves every evaluation of the slot pending settlement in
// queue order and empties it.
func (k Keeper) settlePool(ctx sdk.Context, handler *abci.BlockerErrorHandler, params types.Params, period uint64) (int, error) {
	slot := types.PoolSlot(period, types.RoleRequests)
	pool, err := k.getPoolBySlot(ctx, slot)
	if err != nil {
		return 0, err
	}
	for _, evaluation := range pool.Evaluations {
		outcome := k.settleEvaluation(ctx, handler, params, period, evaluation)
		k.metrics.Settlements.WithLabelValues(outcome.String()).Inc()
		telemetry.IncrCounterWithLabels(
			[]string{types.ModuleName, "settlements"},
			1,
			[]metrics.Label{telemetry.NewLabel("outcome", outcome.String())},
		)
	}
	return pool.Len(), k.Pools.Set(ctx, slot, types.NewEvaluationPool())
}

// settleEvaluation never fails: a missing request, a failed transfer or a
// rejected hook is reported as an anomaly and the entry is still resolved.
func (k Keeper) settleEvaluation(
	ctx sdk.Context,
	handler *abci.BlockerErrorHandler,
	params types.Params,
	period uint64,
	evaluation types.Evaluation,
) types.SettlementOutcome {
	identity := evaluation.Identity

	request, err := k.Requests.Get(ctx, identity)
	hasRequest := err == nil
	if !hasRequest {
		k.anomaly(ctx, handler, "load_request", abci.SeverityCritical, identity,
			types.ErrRequestNotFound.Wrapf("identity %d: %s", identity, err))
	}

	median, evaluated := evaluation.Accumulator.Median()
	var outcome types.SettlementOutcome
	switch {
	case !evaluated:
		outcome = types.OutcomeNoResult
		if hasRequest {
			k.releaseStake(ctx, handler, request)
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeNotEvaluated,
				sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
			),
		)

	case median.Value() >= params.MinAccessibleReferees:
		outcome = types.OutcomeValid
		if hasRequest {
			k.releaseStake(ctx, handler, request)
		}
		expiresOn := period + params.ResultExpiration
		if err := k.setValidStatus(ctx, identity, request.Requester, expiresOn); err != nil {
			k.anomaly(ctx, handler, "set_status", abci.SeverityHigh, identity, err)
		}
		k.callHook(ctx, handler, "hook_valid", identity, k.hookValid)
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeEvaluatedValid,
				sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
				sdk.NewAttribute(types.AttributeKeyDistance, median.Value().String()),
				sdk.NewAttribute(types.AttributeKeyExpiresOn, fmt.Sprintf("%d", expiresOn)),
			),
		)

	default:
		outcome = types.OutcomeInvalid
		if hasRequest {
			k.slashStake(ctx, handler, params, request)
		}
		if err := k.clearStatus(ctx, identity); err != nil {
			k.anomaly(ctx, handler, "clear_status", abci.SeverityHigh, identity, err)
		}
		k.callHook(ctx, handler, "hook_invalid", identity, k.hookInvalid)
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeEvaluatedInvalid,
				sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
				sdk.NewAttribute(types.AttributeKeyDistance, median.Value().String()),
				sdk.NewAttribute(types.AttributeKeyThreshold, params.MinAccessibleReferees.String()),
				sdk.NewAttribute(types.AttributeKeySink, params.SlashSink),
			),
		)
	}

	if evaluated {
		k.metrics.MedianDistance.Observe(float64(median.Value()) / types.PerbillDenominator)
	}
	if hasRequest {
		if err := k.Requests.Remove(ctx, identity); err != nil {
			k.anomaly(ctx, handler, "remove_request", abci.SeverityCritical, identity, err)
		}
	}
	return outcome
}

func (k Keeper) releaseStake(ctx sdk.Context, handler *abci.BlockerErrorHandler, request types.EvaluationRequest) {
	if request.Held.IsZero() {
		return
	}
	requester, err := sdk.AccAddressFromBech32(request.Requester)
	if err == nil {
		err = k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, requester, sdk.NewCoins(request.Held))
	}
	if err != nil {
		k.anomaly(ctx, handler, "release_stake", abci.SeverityHigh, request.Identity, err)
	}
}

func (k Keeper) slashStake(ctx sdk.Context, handler *abci.BlockerErrorHandler, params types.Params, request types.EvaluationRequest) {
	if request.Held.IsZero() {
		return
	}
	coins := sdk.NewCoins(request.Held)
	var err error
	if params.SlashSink == types.BurnSink {
		err = k.bankKeeper.BurnCoins(ctx, types.ModuleName, coins)
	} else {
		err = k.bankKeeper.SendCoinsFromModuleToModule(ctx, types.ModuleName, params.SlashSink, coins)
	}
	if err != nil {
		k.anomaly(ctx, handler, "slash_stake", abci.SeverityHigh, request.Identity, err)
	}
}

func (k Keeper) hookValid(ctx context.Context, identity uint32) error {
	return k.hooks.OnValidDistanceStatus(ctx, identity)
}

func (k Keeper) hookInvalid(ctx context.Context, identity uint32) error {
	return k.hooks.OnInvalidDistanceStatus(ctx, identity)
}

// callHook runs a hook in a cached context so a failing consumer leaves no
// partial writes behind.
func (k Keeper) callHook(
	ctx sdk.Context,
	handler *abci.BlockerErrorHandler,
	operation string,
	identity uint32,
	hook func(context.Context, uint32) error,
) {
	if k.hooks == nil {
		return
	}
	cacheCtx, write := ctx.CacheContext()
	if err := hook(cacheCtx, identity); err != nil {
		k.anomaly(ctx, handler, operation, abci.SeverityMedium, identity, err)
		return
	}
	write()
}

func (k Keeper) anomaly(
	ctx sdk.Context,
	handler *abci.BlockerErrorHandler,
	operation string,
	severity abci.ErrorSeverity,
	identity uint32,
	err error,
) {
	handler.HandleError(operation, severity, err, types.AttributeKeyIdentity, fmt.Sprintf("%d", identity))
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSettlementAnomaly,
			sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
			sdk.NewAttribute(types.AttributeKeyReason, operation),
		),
	)
	k.metrics.SettlementAnomalies.WithLabelValues(operation).Inc()
}

// setValidStatus stores a Valid status and moves its expiry index entry.
func (k Keeper) setValidStatus(ctx context.Context, identity uint32, requester string, expiresOn uint64) error {
	if err := k.clearStatus(ctx, identity); err != nil {
		return err
	}
	status := types.DistanceStatus{Identity: identity, Requester: requester, ExpiresOn: expiresOn}
	if err := k.Statuses.Set(ctx, identity, status); err != nil {
		return err
	}
	return k.StatusExpiry.Set(ctx, collections.Join(expiresOn, identity))
}

func (k Keeper) clearStatus(ctx context.Context, identity uint32) error {
	status, err := k.Statuses.Get(ctx, identity)
	if errors.Is(err, collections.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := k.StatusExpiry.Remove(ctx, collections.Join(status.ExpiresOn, identity)); err != nil {
		return err
	}
	return k.Statuses.Remove(ctx, identity)
}

// expireStatuses removes the Valid statuses due at period.
func (k Keeper) expireStatuses(ctx sdk.Context, period uint64) error {
	var due []uint32
	err := k.StatusExpiry.Walk(ctx, collections.NewPrefixedPairRange[uint64, uint32](period),
		func(key collections.Pair[uint64, uint32]) (bool, error) {
			due = append(due, key.K2())
			return false, nil
		})
	if err != nil {
		return err
	}

	for _, identity := range due {
		if err := k.StatusExpiry.Remove(ctx, collections.Join(period, identity)); err != nil {
			return err
		}
		if err := k.Statuses.Remove(ctx, identity); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeStatusExpired,
				sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
				sdk.NewAttribute(types.AttributeKeyPeriod, fmt.Sprintf("%d", period)),
			),
		)
		k.metrics.StatusesExpired.Inc()
	}
	return nil
}

// ForceSetDistanceStatus marks identity Valid for ResultExpiration periods
// without an evaluation and notifies the hooks.
func (k Keeper) ForceSetDistanceStatus(ctx context.Context, identity uint32, requester string) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	period, err := k.GetCurrentPeriod(ctx)
	if err != nil {
		return err
	}
	expiresOn := period + params.ResultExpiration
	if err := k.setValidStatus(ctx, identity, requester, expiresOn); err != nil {
		return err
	}
	if k.hooks != nil {
		if err := k.hooks.OnValidDistanceStatus(ctx, identity); err != nil {
			return err
		}
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeStatusForceSet,
			sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
			sdk.NewAttribute(types.AttributeKeyRequester, requester),
			sdk.NewAttribute(types.AttributeKeyExpiresOn, fmt.Sprintf("%d", expiresOn)),
		),
	)
	return nil
}

// GetStatus returns the distance state of identity. A pending evaluation
// takes precedence over an existing Valid status.
func (k Keeper) GetStatus(ctx context.Context, identity uint32) (types.Status, types.DistanceStatus, error) {
	pending, err := k.Requests.Has(ctx, identity)
	if err != nil {
		return types.StatusNone, types.DistanceStatus{}, err
	}
	status, err := k.Statuses.Get(ctx, identity)
	found := err == nil
	if err != nil && !errors.Is(err, collections.ErrNotFound) {
		return types.StatusNone, types.DistanceStatus{}, err
	}
	switch {
	case pending:
		return types.StatusPending, status, nil
	case found:
		return types.StatusValid, status, nil
	default:
		return types.StatusNone, types.DistanceStatus{}, nil
	}
}

// IsValid reports whether identity holds an unexpired Valid status.
func (k Keeper) IsValid(ctx context.Context, identity uint32) bool {
	has, err := k.Statuses.Has(ctx, identity)
	return err == nil && has
}

// IsPending reports whether an evaluation of identity is outstanding.
func (k Keeper) IsPending(ctx context.Context, identity uint32) bool {
	has, err := k.Requests.Has(ctx, identity)
	return err == nil && has
}

// ValidUntil returns the expiry period of the Valid status of identity.
func (k Keeper) ValidUntil(ctx context.Context, identity uint32) (uint64, bool) {
	status, err := k.Statuses.Get(ctx, identity)
	if err != nil {
		return 0, false
	}
	return status.ExpiresOn, true
}
