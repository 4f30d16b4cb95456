package keeper_test

import (
	sdkmath "cosmossdk.io/math"

	"github.com/paw-chain/distance/x/distance/types"
)

func (s *KeeperTestSuite) submitAll(results ...[]types.Perbill) {
	for i, distances := range results {
		s.nextBlock()
		witness := s.witness(string(rune('a' + i)))
		s.Require().NoError(s.keeper.SubmitEvaluation(s.ctx, witness, types.ComputationResult{Distances: distances}))
	}
}

func (s *KeeperTestSuite) TestSettlementValidAndInvalidConserveFunds() {
	requester := s.queueForSubmission(1, 2)
	supply := s.mocks.Bank.Supply(testDenom)

	s.submitAll(
		[]types.Perbill{900_000_000, 100},
		[]types.Perbill{800_000_000, 200},
		[]types.Perbill{100, 300},
	)
	s.rotate()
	s.Require().Equal(uint64(3), s.period())

	s.Require().True(s.hasEvent(types.EventTypeEvaluatedValid))
	s.Require().True(s.hasEvent(types.EventTypeEvaluatedInvalid))
	s.Require().Equal([]uint32{1}, s.mocks.Hooks.Valid)
	s.Require().Equal([]uint32{2}, s.mocks.Hooks.Invalid)

	s.Require().Equal(sdkmath.NewInt(9_000), s.mocks.Bank.Balance(requester, testDenom))
	s.Require().Equal(sdkmath.NewInt(1_000), s.mocks.Bank.Burned(testDenom))
	s.Require().True(s.mocks.Bank.ModuleBalance(types.ModuleName, testDenom).IsZero())
	s.Require().Equal(supply, s.mocks.Bank.Supply(testDenom))

	s.Require().True(s.keeper.IsValid(s.ctx, 1))
	s.Require().False(s.keeper.IsValid(s.ctx, 2))
	expiresOn, ok := s.keeper.ValidUntil(s.ctx, 1)
	s.Require().True(ok)
	s.Require().Equal(uint64(3+4), expiresOn)

	s.Require().False(s.keeper.IsPending(s.ctx, 1))
	s.Require().False(s.keeper.IsPending(s.ctx, 2))
	s.Require().Zero(s.pool(types.RoleRequests).Len())
	s.requireInvariants()
}

// Two samples straddling the threshold resolve to their rounded-down
// midpoint, which falls just below it.
func (s *KeeperTestSuite) TestSettlementEvenMedianUsesMidpoint() {
	s.queueForSubmission(1)
	s.submitAll(
		[]types.Perbill{800_000_000},
		[]types.Perbill{799_999_998},
	)
	s.rotate()
	s.Require().Equal([]uint32{1}, s.mocks.Hooks.Invalid)
	s.Require().False(s.keeper.IsValid(s.ctx, 1))
}

func (s *KeeperTestSuite) TestSettlementTimeoutReleasesStake() {
	requester := s.queueForSubmission(4)
	s.rotate()

	s.Require().True(s.hasEvent(types.EventTypeNotEvaluated))
	s.Require().Equal(sdkmath.NewInt(10_000), s.mocks.Bank.Balance(requester, testDenom))
	s.Require().Empty(s.mocks.Hooks.Valid)
	s.Require().Empty(s.mocks.Hooks.Invalid)

	status, _, err := s.keeper.GetStatus(s.ctx, 4)
	s.Require().NoError(err)
	s.Require().Equal(types.StatusNone, status)

	// The identity may be requested again once settled.
	_, err = s.keeper.RequestEvaluation(s.ctx, requester, 4)
	s.Require().NoError(err)
}

func (s *KeeperTestSuite) TestSettlementSlashesToModuleSink() {
	s.params.SlashSink = "treasury"
	s.Require().NoError(s.keeper.SetParams(s.ctx, s.params))

	s.queueForSubmission(1)
	s.submitAll([]types.Perbill{0})
	s.rotate()

	s.Require().Equal(sdkmath.NewInt(1_000), s.mocks.Bank.ModuleBalance("treasury", testDenom))
	s.Require().True(s.mocks.Bank.Burned(testDenom).IsZero())
}

func (s *KeeperTestSuite) TestInvalidVerdictClearsExistingStatus() {
	s.Require().NoError(s.keeper.ForceSetDistanceStatus(s.ctx, 1, accAddr("admin").String()))
	s.Require().True(s.keeper.IsValid(s.ctx, 1))

	s.queueForSubmission(1)
	s.Require().Equal(types.StatusPending, s.statusOf(1))
	s.submitAll([]types.Perbill{0})
	s.rotate()

	s.Require().False(s.keeper.IsValid(s.ctx, 1))
	s.requireInvariants()
}

func (s *KeeperTestSuite) statusOf(identity uint32) types.Status {
	status, _, err := s.keeper.GetStatus(s.ctx, identity)
	s.Require().NoError(err)
	return status
}

func (s *KeeperTestSuite) TestValidStatusExpires() {
	s.queueForSubmission(1)
	s.submitAll([]types.Perbill{types.PerbillOne})
	s.rotate()
	s.Require().Equal(types.StatusValid, s.statusOf(1))

	for s.period() < 6 {
		s.rotate()
		s.Require().True(s.keeper.IsValid(s.ctx, 1), "period %d", s.period())
	}
	s.rotate()
	s.Require().Equal(uint64(7), s.period())
	s.Require().False(s.keeper.IsValid(s.ctx, 1))
	s.Require().True(s.hasEvent(types.EventTypeStatusExpired))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestSettlementContinuesAfterTransferFailure() {
	s.queueForSubmission(1, 2)
	s.submitAll([]types.Perbill{types.PerbillOne, 0})

	s.mocks.Bank.FailModuleTransfers = true
	s.rotate()

	s.Require().True(s.hasEvent(types.EventTypeSettlementAnomaly))
	s.Require().False(s.keeper.IsPending(s.ctx, 1))
	s.Require().False(s.keeper.IsPending(s.ctx, 2))
	s.Require().True(s.keeper.IsValid(s.ctx, 1))
	s.Require().Equal(sdkmath.NewInt(2_000), s.mocks.Bank.ModuleBalance(types.ModuleName, testDenom))
	s.requireInvariants()
}

func (s *KeeperTestSuite) TestSettlementToleratesMissingRequest() {
	s.queueForSubmission(1)
	s.Require().NoError(s.keeper.Requests.Remove(s.ctx, 1))

	s.rotate()
	s.Require().True(s.hasEvent(types.EventTypeSettlementAnomaly))
	s.Require().True(s.hasEvent(types.EventTypeNotEvaluated))
	s.Require().Zero(s.pool(types.RoleRequests).Len())
}

func (s *KeeperTestSuite) TestSettlementToleratesHookFailure() {
	s.queueForSubmission(1)
	s.submitAll([]types.Perbill{types.PerbillOne})

	s.mocks.Hooks.Fail = true
	s.rotate()

	s.Require().True(s.hasEvent(types.EventTypeSettlementAnomaly))
	s.Require().True(s.keeper.IsValid(s.ctx, 1))
	s.Require().Empty(s.mocks.Hooks.Valid)
}

func (s *KeeperTestSuite) TestRequestLifecycleAcrossRotations() {
	requester := s.funded("alice")
	_, err := s.keeper.RequestEvaluation(s.ctx, requester, 9)
	s.Require().NoError(err)

	// p+1: frozen for computation, not yet open for submissions.
	s.rotate()
	s.Require().Equal([]uint32{9}, s.pool(types.RoleComputation).Identities())
	s.Require().Zero(s.pool(types.RoleSubmissions).Len())
	s.Require().Equal(s.ctx.BlockHeight(), s.evaluationHeight())

	// p+2: open for submissions.
	s.rotate()
	s.Require().Equal([]uint32{9}, s.pool(types.RoleSubmissions).Identities())
	s.Require().True(s.keeper.IsPending(s.ctx, 9))

	// p+3: settled.
	s.rotate()
	s.Require().False(s.keeper.IsPending(s.ctx, 9))
	for _, role := range types.AllRoles() {
		s.Require().Zero(s.pool(role).Len(), role.String())
	}
}

func (s *KeeperTestSuite) evaluationHeight() int64 {
	height, err := s.keeper.GetEvaluationHeight(s.ctx)
	s.Require().NoError(err)
	return height
}

func (s *KeeperTestSuite) TestEndBlockerRotatesOnPeriodBoundary() {
	s.ctx = s.ctx.WithBlockHeight(9)
	s.Require().NoError(s.keeper.EndBlocker(s.ctx))
	s.Require().Equal(uint64(0), s.period())

	s.ctx = s.ctx.WithBlockHeight(10)
	s.Require().NoError(s.keeper.EndBlocker(s.ctx))
	s.Require().Equal(uint64(1), s.period())
	s.Require().Equal(int64(10), s.evaluationHeight())

	s.ctx = s.ctx.WithBlockHeight(11)
	s.Require().NoError(s.keeper.EndBlocker(s.ctx))
	s.Require().Equal(uint64(1), s.period())
}
