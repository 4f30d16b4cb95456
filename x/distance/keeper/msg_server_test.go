package keeper_test

import (
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/paw-chain/distance/x/distance/keeper"
	"github.com/paw-chain/distance/x/distance/types"
)

func (s *KeeperTestSuite) TestMsgServerRequestEvaluation() {
	ms := keeper.NewMsgServerImpl(*s.keeper)
	alice := s.funded("alice")
	s.mocks.Identity.SetIdentity(alice, 3, true)

	resp, err := ms.RequestEvaluation(s.ctx, types.NewMsgRequestEvaluation(alice.String()))
	s.Require().NoError(err)
	s.Require().Equal(uint32(3), resp.Identity)

	_, err = ms.RequestEvaluation(s.ctx, types.NewMsgRequestEvaluation("not-an-address"))
	s.Require().Error(err)

	_, err = ms.RequestEvaluationFor(s.ctx, types.NewMsgRequestEvaluationFor(alice.String(), 4))
	s.Require().NoError(err)
	s.Require().Equal([]uint32{3, 4}, s.pool(types.RoleRequests).Identities())
}

func (s *KeeperTestSuite) TestMsgServerSubmitEvaluation() {
	ms := keeper.NewMsgServerImpl(*s.keeper)
	s.queueForSubmission(1)
	w1 := s.witness("w1")

	_, err := ms.SubmitEvaluation(s.ctx, types.NewMsgSubmitEvaluation(w1.String(), []types.Perbill{types.PerbillOne + 1}))
	s.Require().ErrorIs(err, types.ErrInvalidDistance)

	_, err = ms.SubmitEvaluation(s.ctx, types.NewMsgSubmitEvaluation(w1.String(), []types.Perbill{types.PerbillOne}))
	s.Require().NoError(err)
}

func (s *KeeperTestSuite) TestMsgServerAuthority() {
	ms := keeper.NewMsgServerImpl(*s.keeper)
	authority := s.keeper.GetAuthority()
	stranger := accAddr("stranger").String()

	params := s.params
	params.MaxRefereeDistance = 3
	_, err := ms.UpdateParams(s.ctx, types.NewMsgUpdateParams(stranger, params))
	s.Require().ErrorIs(err, govtypes.ErrInvalidSigner)

	_, err = ms.UpdateParams(s.ctx, types.NewMsgUpdateParams(authority, params))
	s.Require().NoError(err)
	stored, err := s.keeper.GetParams(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint32(3), stored.MaxRefereeDistance)

	params.PeriodLength = 0
	_, err = ms.UpdateParams(s.ctx, types.NewMsgUpdateParams(authority, params))
	s.Require().ErrorIs(err, types.ErrInvalidParams)

	force := &types.MsgForceSetDistanceStatus{Authority: stranger, Identity: 5, Requester: stranger}
	_, err = ms.ForceSetDistanceStatus(s.ctx, force)
	s.Require().ErrorIs(err, govtypes.ErrInvalidSigner)

	force.Authority = authority
	_, err = ms.ForceSetDistanceStatus(s.ctx, force)
	s.Require().NoError(err)
	s.Require().True(s.keeper.IsValid(s.ctx, 5))
	s.Require().Equal([]uint32{5}, s.mocks.Hooks.Valid)

	submit := &types.MsgForceSubmitEvaluation{Authority: stranger, Evaluator: "ops", Result: types.ComputationResult{}}
	_, err = ms.ForceSubmitEvaluation(s.ctx, submit)
	s.Require().ErrorIs(err, govtypes.ErrInvalidSigner)

	submit.Authority = authority
	_, err = ms.ForceSubmitEvaluation(s.ctx, submit)
	s.Require().NoError(err)
}
