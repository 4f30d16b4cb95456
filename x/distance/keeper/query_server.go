package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/distance/x/distance/types"
)

type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns an implementation of the QueryServer interface
func NewQueryServerImpl(keeper Keeper) types.QueryServer {
	return &queryServer{Keeper: keeper}
}

var _ types.QueryServer = queryServer{}

// Params queries the module parameters
func (qs queryServer) Params(goCtx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	params, err := qs.GetParams(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryParamsResponse{Params: params}, nil
}

// Period queries the rotation state
func (qs queryServer) Period(goCtx context.Context, req *types.QueryPeriodRequest) (*types.QueryPeriodResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	period, err := qs.GetCurrentPeriod(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	height, err := qs.GetEvaluationHeight(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	params, err := qs.GetParams(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	current := sdk.UnwrapSDKContext(goCtx).BlockHeight()
	next := (current/params.PeriodLength + 1) * params.PeriodLength
	return &types.QueryPeriodResponse{
		CurrentPeriod:      period,
		EvaluationHeight:   height,
		NextRotationHeight: next,
	}, nil
}

// Pool queries the pool serving a role in the current period
func (qs queryServer) Pool(goCtx context.Context, req *types.QueryPoolRequest) (*types.QueryPoolResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	if req.Role > types.RoleRequests {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %d", req.Role)
	}
	period, err := qs.GetCurrentPeriod(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	pool, slot, err := qs.GetPool(goCtx, req.Role)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryPoolResponse{
		Period: period,
		Role:   req.Role.String(),
		Slot:   slot,
		Pool:   pool,
	}, nil
}

// Status queries the distance state of an identity
func (qs queryServer) Status(goCtx context.Context, req *types.QueryStatusRequest) (*types.QueryStatusResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	st, record, err := qs.GetStatus(goCtx, req.Identity)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryStatusResponse{
		Identity:  req.Identity,
		Status:    st.String(),
		Requester: record.Requester,
		ExpiresOn: record.ExpiresOn,
	}, nil
}

// PendingRequest queries the outstanding request of an identity
func (qs queryServer) PendingRequest(goCtx context.Context, req *types.QueryPendingRequestRequest) (*types.QueryPendingRequestResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	request, err := qs.Requests.Get(goCtx, req.Identity)
	if errors.Is(err, collections.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "no pending request for identity %d", req.Identity)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryPendingRequestResponse{Request: request}, nil
}
