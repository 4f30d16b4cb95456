package keeper_test

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/distance/x/distance/keeper"
	"github.com/paw-chain/distance/x/distance/types"
)

func (s *KeeperTestSuite) TestQueryServer() {
	qs := keeper.NewQueryServerImpl(*s.keeper)
	alice := s.funded("alice")

	_, err := s.keeper.RequestEvaluation(s.ctx, alice, 8)
	s.Require().NoError(err)

	params, err := qs.Params(s.ctx, &types.QueryParamsRequest{})
	s.Require().NoError(err)
	s.Require().Equal(s.params, params.Params)

	s.ctx = s.ctx.WithBlockHeight(13)
	period, err := qs.Period(s.ctx, &types.QueryPeriodRequest{})
	s.Require().NoError(err)
	s.Require().Equal(uint64(0), period.CurrentPeriod)
	s.Require().Equal(int64(20), period.NextRotationHeight)

	pool, err := qs.Pool(s.ctx, &types.QueryPoolRequest{Role: types.RoleRequests})
	s.Require().NoError(err)
	s.Require().Equal("requests", pool.Role)
	s.Require().Equal(types.PoolSlot(0, types.RoleRequests), pool.Slot)
	s.Require().Equal([]uint32{8}, pool.Pool.Identities())

	_, err = qs.Pool(s.ctx, &types.QueryPoolRequest{Role: types.PoolRole(7)})
	s.Require().Equal(codes.InvalidArgument, status.Code(err))

	st, err := qs.Status(s.ctx, &types.QueryStatusRequest{Identity: 8})
	s.Require().NoError(err)
	s.Require().Equal("pending", st.Status)

	st, err = qs.Status(s.ctx, &types.QueryStatusRequest{Identity: 9})
	s.Require().NoError(err)
	s.Require().Equal("none", st.Status)

	pending, err := qs.PendingRequest(s.ctx, &types.QueryPendingRequestRequest{Identity: 8})
	s.Require().NoError(err)
	s.Require().Equal(alice.String(), pending.Request.Requester)

	_, err = qs.PendingRequest(s.ctx, &types.QueryPendingRequestRequest{Identity: 9})
	s.Require().Equal(codes.NotFound, status.Code(err))

	_, err = qs.Params(s.ctx, nil)
	s.Require().Equal(codes.InvalidArgument, status.Code(err))
}
