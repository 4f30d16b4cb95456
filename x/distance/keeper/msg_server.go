package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/distance/x/distance/types"
	sharedkeeper "github.com/paw-chain/distance/x/shared/keeper"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

// RequestEvaluation queues the signer's own identity
func (ms msgServer) RequestEvaluation(goCtx context.Context, msg *types.MsgRequestEvaluation) (*types.MsgRequestEvaluationResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	requester, _ := sdk.AccAddressFromBech32(msg.Requester)

	identity, period, err := ms.RequestOwnEvaluation(goCtx, requester)
	if err != nil {
		return nil, err
	}
	ms.metrics.EvaluationRequests.WithLabelValues("self").Inc()
	return &types.MsgRequestEvaluationResponse{Identity: identity, Period: period}, nil
}

// RequestEvaluationFor queues another identity on behalf of a member
func (ms msgServer) RequestEvaluationFor(goCtx context.Context, msg *types.MsgRequestEvaluationFor) (*types.MsgRequestEvaluationForResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	requester, _ := sdk.AccAddressFromBech32(msg.Requester)

	period, err := ms.Keeper.RequestEvaluationFor(goCtx, requester, msg.Target)
	if err != nil {
		return nil, err
	}
	ms.metrics.EvaluationRequests.WithLabelValues("for").Inc()
	return &types.MsgRequestEvaluationForResponse{Period: period}, nil
}

// SubmitEvaluation handles witness results
func (ms msgServer) SubmitEvaluation(goCtx context.Context, msg *types.MsgSubmitEvaluation) (*types.MsgSubmitEvaluationResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	witness, _ := sdk.ValAddressFromBech32(msg.Witness)

	if err := ms.Keeper.SubmitEvaluation(goCtx, witness, msg.Result); err != nil {
		ms.Logger(goCtx).Debug("evaluation rejected", "witness", msg.Witness, "error", err)
		return nil, err
	}
	return &types.MsgSubmitEvaluationResponse{}, nil
}

// ForceSubmitEvaluation applies a result chosen by the authority
func (ms msgServer) ForceSubmitEvaluation(goCtx context.Context, msg *types.MsgForceSubmitEvaluation) (*types.MsgForceSubmitEvaluationResponse, error) {
	if err := sharedkeeper.ValidateAuthority(ms.authority, msg.Authority); err != nil {
		return nil, err
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ForceSubmitEvaluation(goCtx, msg.Evaluator, msg.Result); err != nil {
		return nil, err
	}
	return &types.MsgForceSubmitEvaluationResponse{}, nil
}

// ForceSetDistanceStatus marks an identity Valid on behalf of the authority
func (ms msgServer) ForceSetDistanceStatus(goCtx context.Context, msg *types.MsgForceSetDistanceStatus) (*types.MsgForceSetDistanceStatusResponse, error) {
	if err := sharedkeeper.ValidateAuthority(ms.authority, msg.Authority); err != nil {
		return nil, err
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := ms.Keeper.ForceSetDistanceStatus(goCtx, msg.Identity, msg.Requester); err != nil {
		return nil, err
	}
	return &types.MsgForceSetDistanceStatusResponse{}, nil
}

// UpdateParams updates module parameters through governance
func (ms msgServer) UpdateParams(goCtx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if err := sharedkeeper.ValidateAuthority(ms.authority, msg.Authority); err != nil {
		return nil, err
	}
	if err := ms.SetParams(goCtx, msg.Params); err != nil {
		return nil, err
	}

	sdk.UnwrapSDKContext(goCtx).EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeDistanceParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyAuthority, msg.Authority),
		),
	)
	return &types.MsgUpdateParamsResponse{}, nil
}
