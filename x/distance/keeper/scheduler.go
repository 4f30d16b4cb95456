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
)

// RequestEvaluation queues identity in the pool receiving requests and holds
// the evaluation price from requester until settlement. Every check runs
// before the hold, so a rejected request changes nothing.
func (k Keeper) RequestEvaluation(ctx context.Context, requester sdk.AccAddress, identity uint32) (uint64, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return 0, err
	}
	period, err := k.GetCurrentPeriod(ctx)
	if err != nil {
		return 0, err
	}

	pending, err := k.Requests.Has(ctx, identity)
	if err != nil {
		return 0, err
	}
	if pending {
		k.metrics.RequestRejections.WithLabelValues("already_in_evaluation").Inc()
		return 0, types.WrapWithRecovery(types.ErrAlreadyInEvaluation, "identity %d", identity)
	}

	slot := types.PoolSlot(period, types.RoleRequests)
	pool, err := k.getPoolBySlot(ctx, slot)
	if err != nil {
		return 0, err
	}
	if err := pool.Enqueue(identity, params.MaxEvaluatorsPerPeriod, params.MaxEvaluationsPerPeriod); err != nil {
		k.metrics.RequestRejections.WithLabelValues("queue_full").Inc()
		return 0, types.WrapWithRecovery(types.ErrQueueFull, "period %d", period)
	}

	if err := k.identityKeeper.CheckRequestEvaluation(ctx, identity); err != nil {
		k.metrics.RequestRejections.WithLabelValues("not_eligible").Inc()
		return 0, types.WrapWithRecovery(types.ErrNotEligible, "identity %d: %s", identity, err)
	}

	if !params.EvaluationPrice.IsZero() {
		held := sdk.NewCoins(params.EvaluationPrice)
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, requester, types.ModuleName, held); err != nil {
			k.metrics.RequestRejections.WithLabelValues("cannot_hold").Inc()
			return 0, types.WrapWithRecovery(types.ErrCannotHold, "%s from %s: %s", params.EvaluationPrice, requester, err)
		}
	}

	if err := k.Pools.Set(ctx, slot, pool); err != nil {
		return 0, err
	}
	request := types.EvaluationRequest{
		Identity:  identity,
		Requester: requester.String(),
		Held:      params.EvaluationPrice,
		Period:    period,
	}
	if err := k.Requests.Set(ctx, identity, request); err != nil {
		return 0, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEvaluationRequested,
			sdk.NewAttribute(types.AttributeKeyIdentity, fmt.Sprintf("%d", identity)),
			sdk.NewAttribute(types.AttributeKeyRequester, requester.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, params.EvaluationPrice.String()),
			sdk.NewAttribute(types.AttributeKeyPeriod, fmt.Sprintf("%d", period)),
		),
	)
	telemetry.IncrCounter(1, types.ModuleName, "requests")
	k.metrics.PoolSize.WithLabelValues(types.RoleRequests.String()).Set(float64(pool.Len()))

	k.Logger(ctx).Debug("evaluation requested", "identity", identity, "requester", requester.String(), "period", period)
	return period, nil
}

// RequestOwnEvaluation resolves the identity owned by requester and queues it.
func (k Keeper) RequestOwnEvaluation(ctx context.Context, requester sdk.AccAddress) (uint32, uint64, error) {
	identity, found := k.identityKeeper.IdentityIndexOf(ctx, requester)
	if !found {
		return 0, 0, types.WrapWithRecovery(types.ErrCallerHasNoIdentity, "%s", requester)
	}
	period, err := k.RequestEvaluation(ctx, requester, identity)
	return identity, period, err
}

// RequestEvaluationFor queues target on behalf of requester, who must own a
// member identity.
func (k Keeper) RequestEvaluationFor(ctx context.Context, requester sdk.AccAddress, target uint32) (uint64, error) {
	caller, found := k.identityKeeper.IdentityIndexOf(ctx, requester)
	if !found {
		return 0, types.WrapWithRecovery(types.ErrCallerHasNoIdentity, "%s", requester)
	}
	if !k.identityKeeper.IsMember(ctx, caller) {
		return 0, types.WrapWithRecovery(types.ErrCallerNotMember, "identity %d", caller)
	}
	return k.RequestEvaluation(ctx, requester, target)
}

// SubmitEvaluation records the result of a bonded validator for the pool open
// for submissions. The result is validated whole before anything is written.
func (k Keeper) SubmitEvaluation(ctx context.Context, witness sdk.ValAddress, result types.ComputationResult) error {
	validator, err := k.stakingKeeper.GetValidator(ctx, witness)
	if err != nil || !validator.IsBonded() {
		k.metrics.SubmissionRejections.WithLabelValues("not_witness").Inc()
		return types.WrapWithRecovery(types.ErrNotWitness, "%s", witness)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	lastHeight, err := k.LastSubmissionHeight.Get(ctx)
	switch {
	case err == nil && lastHeight == sdkCtx.BlockHeight():
		k.metrics.SubmissionRejections.WithLabelValues("many_in_block").Inc()
		return types.WrapWithRecovery(types.ErrManyEvaluationsInBlock, "height %d", lastHeight)
	case err != nil && !errors.Is(err, collections.ErrNotFound):
		return err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	pool, slot, err := k.GetPool(ctx, types.RoleSubmissions)
	if err != nil {
		return err
	}
	if len(result.Distances) != pool.Len() {
		k.metrics.SubmissionRejections.WithLabelValues("wrong_length").Inc()
		return types.WrapWithRecovery(types.ErrWrongResultLength, "got %d distances, pool holds %d", len(result.Distances), pool.Len())
	}
	// pool is a copy: nothing below is stored unless every step succeeds.
	if err := pool.AddEvaluator(witness.String(), params.MaxEvaluatorsPerPeriod); err != nil {
		k.metrics.SubmissionRejections.WithLabelValues("evaluator_set").Inc()
		return err
	}
	if err := pool.ApplyResult(result); err != nil {
		k.metrics.SubmissionRejections.WithLabelValues("invalid_result").Inc()
		return err
	}

	if err := k.Pools.Set(ctx, slot, pool); err != nil {
		return err
	}
	if err := k.LastSubmissionHeight.Set(ctx, sdkCtx.BlockHeight()); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEvaluationSubmitted,
			sdk.NewAttribute(types.AttributeKeyWitness, witness.String()),
			sdk.NewAttribute(types.AttributeKeyCount, fmt.Sprintf("%d", len(result.Distances))),
		),
	)
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "submissions"},
		1,
		[]metrics.Label{telemetry.NewLabel("source", "witness")},
	)
	k.metrics.Submissions.WithLabelValues("witness").Inc()
	return nil
}

// ForceSubmitEvaluation applies a result on behalf of evaluator without
// recording it in the evaluator set and without the bonded or per-block
// checks. Length, range and capacity checks still apply.
func (k Keeper) ForceSubmitEvaluation(ctx context.Context, evaluator string, result types.ComputationResult) error {
	pool, slot, err := k.GetPool(ctx, types.RoleSubmissions)
	if err != nil {
		return err
	}
	if err := pool.ApplyResult(result); err != nil {
		return err
	}
	if err := k.Pools.Set(ctx, slot, pool); err != nil {
		return err
	}

	sdk.UnwrapSDKContext(ctx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEvaluationForceSubmitted,
			sdk.NewAttribute(types.AttributeKeyEvaluator, evaluator),
			sdk.NewAttribute(types.AttributeKeyCount, fmt.Sprintf("%d", len(result.Distances))),
		),
	)
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "submissions"},
		1,
		[]metrics.Label{telemetry.NewLabel("source", "force")},
	)
	k.metrics.Submissions.WithLabelValues("force").Inc()
	return nil
}
