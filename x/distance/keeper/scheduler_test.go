package keeper_test

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/distance/x/distance/types"
)

func (s *KeeperTestSuite) TestRequestEvaluationHoldsPrice() {
	alice := s.funded("alice")

	period, err := s.keeper.RequestEvaluation(s.ctx, alice, 7)
	s.Require().NoError(err)
	s.Require().Equal(uint64(0), period)

	s.Require().Equal(sdkmath.NewInt(9_000), s.mocks.Bank.Balance(alice, testDenom))
	s.Require().Equal(sdkmath.NewInt(1_000), s.mocks.Bank.ModuleBalance(types.ModuleName, testDenom))
	s.Require().Equal([]uint32{7}, s.pool(types.RoleRequests).Identities())

	request, err := s.keeper.Requests.Get(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Equal(alice.String(), request.Requester)
	s.Require().Equal(s.params.EvaluationPrice, request.Held)
	s.Require().True(s.hasEvent(types.EventTypeEvaluationRequested))
	s.Require().True(s.keeper.IsPending(s.ctx, 7))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestRequestEvaluationRejectionsMutateNothing() {
	alice := s.funded("alice")
	broke := accAddr("broke")

	_, err := s.keeper.RequestEvaluation(s.ctx, alice, 1)
	s.Require().NoError(err)

	_, err = s.keeper.RequestEvaluation(s.ctx, alice, 1)
	s.Require().ErrorIs(err, types.ErrAlreadyInEvaluation)

	s.mocks.Identity.SetIneligible(2)
	_, err = s.keeper.RequestEvaluation(s.ctx, alice, 2)
	s.Require().ErrorIs(err, types.ErrNotEligible)

	_, err = s.keeper.RequestEvaluation(s.ctx, broke, 3)
	s.Require().ErrorIs(err, types.ErrCannotHold)
	s.Require().Equal(types.GetRecoverySuggestion(err), types.RecoverySuggestions[types.ErrCannotHold])

	s.Require().Equal([]uint32{1}, s.pool(types.RoleRequests).Identities())
	s.Require().Equal(sdkmath.NewInt(9_000), s.mocks.Bank.Balance(alice, testDenom))
	s.Require().False(s.keeper.IsPending(s.ctx, 2))
	s.Require().False(s.keeper.IsPending(s.ctx, 3))
}

// A pool bounded to two evaluations rejects the third request of the period
// and accepts it again once the pools rotate.
func (s *KeeperTestSuite) TestRequestEvaluationQueueFull() {
	alice := s.funded("alice")
	for _, id := range []uint32{1, 2} {
		_, err := s.keeper.RequestEvaluation(s.ctx, alice, id)
		s.Require().NoError(err)
	}

	_, err := s.keeper.RequestEvaluation(s.ctx, alice, 3)
	s.Require().ErrorIs(err, types.ErrQueueFull)
	s.Require().Equal(sdkmath.NewInt(8_000), s.mocks.Bank.Balance(alice, testDenom))

	s.rotate()
	_, err = s.keeper.RequestEvaluation(s.ctx, alice, 3)
	s.Require().NoError(err)
}

func (s *KeeperTestSuite) TestRequestOwnAndForOtherIdentity() {
	alice := s.funded("alice")
	bob := s.funded("bob")
	carol := s.funded("carol")
	s.mocks.Identity.SetIdentity(alice, 10, true)
	s.mocks.Identity.SetIdentity(bob, 11, false)

	identity, _, err := s.keeper.RequestOwnEvaluation(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Equal(uint32(10), identity)

	_, _, err = s.keeper.RequestOwnEvaluation(s.ctx, carol)
	s.Require().ErrorIs(err, types.ErrCallerHasNoIdentity)

	_, err = s.keeper.RequestEvaluationFor(s.ctx, bob, 12)
	s.Require().ErrorIs(err, types.ErrCallerNotMember)

	_, err = s.keeper.RequestEvaluationFor(s.ctx, carol, 12)
	s.Require().ErrorIs(err, types.ErrCallerHasNoIdentity)

	_, err = s.keeper.RequestEvaluationFor(s.ctx, alice, 11)
	s.Require().NoError(err)

	request, err := s.keeper.Requests.Get(s.ctx, 11)
	s.Require().NoError(err)
	s.Require().Equal(alice.String(), request.Requester)
}

// queueForSubmission requests identities and rotates twice so that they sit
// in the pool open for submissions.
func (s *KeeperTestSuite) queueForSubmission(ids ...uint32) sdk.AccAddress {
	requester := s.funded("requester")
	for _, id := range ids {
		_, err := s.keeper.RequestEvaluation(s.ctx, requester, id)
		s.Require().NoError(err)
	}
	s.rotate()
	s.Require().Equal(ids, s.pool(types.RoleComputation).Identities())
	s.rotate()
	s.Require().Equal(ids, s.pool(types.RoleSubmissions).Identities())
	return requester
}

func (s *KeeperTestSuite) TestSubmitEvaluation() {
	s.queueForSubmission(1, 2)
	w1 := s.witness("w1")

	err := s.keeper.SubmitEvaluation(s.ctx, w1, types.ComputationResult{Distances: []types.Perbill{900_000_000, 100}})
	s.Require().NoError(err)

	pool := s.pool(types.RoleSubmissions)
	s.Require().True(pool.HasEvaluator(w1.String()))
	s.Require().Equal([]types.Perbill{900_000_000}, pool.Evaluations[0].Accumulator.Samples)
	s.Require().Equal([]types.Perbill{100}, pool.Evaluations[1].Accumulator.Samples)
	s.Require().True(s.hasEvent(types.EventTypeEvaluationSubmitted))
}

func (s *KeeperTestSuite) TestSubmitEvaluationRejections() {
	s.queueForSubmission(1, 2)
	result := types.ComputationResult{Distances: []types.Perbill{1, 2}}

	unbonded := valAddr("unbonded")
	s.mocks.Staking.SetBonded(unbonded, false)
	s.Require().ErrorIs(s.keeper.SubmitEvaluation(s.ctx, unbonded, result), types.ErrNotWitness)
	s.Require().ErrorIs(s.keeper.SubmitEvaluation(s.ctx, valAddr("unknown"), result), types.ErrNotWitness)

	w1 := s.witness("w1")
	short := types.ComputationResult{Distances: []types.Perbill{1}}
	s.Require().ErrorIs(s.keeper.SubmitEvaluation(s.ctx, w1, short), types.ErrWrongResultLength)
	s.Require().Zero(s.pool(types.RoleSubmissions).Evaluations[0].Accumulator.Len())
	s.Require().False(s.pool(types.RoleSubmissions).HasEvaluator(w1.String()))

	s.Require().NoError(s.keeper.SubmitEvaluation(s.ctx, w1, result))

	// Same block, different witness.
	w2 := s.witness("w2")
	s.Require().ErrorIs(s.keeper.SubmitEvaluation(s.ctx, w2, result), types.ErrManyEvaluationsInBlock)

	// Same witness, later block.
	s.nextBlock()
	s.Require().ErrorIs(s.keeper.SubmitEvaluation(s.ctx, w1, result), types.ErrDuplicateWitness)
	pool := s.pool(types.RoleSubmissions)
	s.Require().Equal(1, pool.Evaluations[0].Accumulator.Len())
	s.Require().Len(pool.Evaluators, 1)
}

func (s *KeeperTestSuite) TestSubmitEvaluationTooManyEvaluators() {
	s.queueForSubmission(1)
	result := types.ComputationResult{Distances: []types.Perbill{types.PerbillOne}}

	for _, name := range []string{"w1", "w2", "w3"} {
		s.nextBlock()
		s.Require().NoError(s.keeper.SubmitEvaluation(s.ctx, s.witness(name), result))
	}
	s.nextBlock()
	s.Require().ErrorIs(s.keeper.SubmitEvaluation(s.ctx, s.witness("w4"), result), types.ErrTooManyEvaluators)
	s.Require().Equal(3, s.pool(types.RoleSubmissions).Evaluations[0].Accumulator.Len())
}

func (s *KeeperTestSuite) TestSubmitEvaluationToEmptyPool() {
	w1 := s.witness("w1")
	s.Require().NoError(s.keeper.SubmitEvaluation(s.ctx, w1, types.ComputationResult{}))
	s.nextBlock()
	err := s.keeper.SubmitEvaluation(s.ctx, s.witness("w2"), types.ComputationResult{Distances: []types.Perbill{1}})
	s.Require().ErrorIs(err, types.ErrWrongResultLength)
}

func (s *KeeperTestSuite) TestForceSubmitEvaluationBypassesWitnessBookkeeping() {
	s.queueForSubmission(1)
	result := types.ComputationResult{Distances: []types.Perbill{5}}

	s.Require().NoError(s.keeper.ForceSubmitEvaluation(s.ctx, "anyone", result))
	s.Require().NoError(s.keeper.ForceSubmitEvaluation(s.ctx, "anyone", result))

	pool := s.pool(types.RoleSubmissions)
	s.Require().Empty(pool.Evaluators)
	s.Require().Equal(2, pool.Evaluations[0].Accumulator.Len())

	err := s.keeper.ForceSubmitEvaluation(s.ctx, "anyone", types.ComputationResult{})
	s.Require().ErrorIs(err, types.ErrWrongResultLength)
}
