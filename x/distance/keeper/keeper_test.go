package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/distance/testutil/keeper"
	"github.com/paw-chain/distance/x/distance/keeper"
	"github.com/paw-chain/distance/x/distance/types"
)

var testDenom = sdk.DefaultBondDenom

type KeeperTestSuite struct {
	suite.Suite

	keeper *keeper.Keeper
	mocks  keepertest.DistanceMocks
	ctx    sdk.Context
	params types.Params
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (s *KeeperTestSuite) SetupTest() {
	s.keeper, s.mocks, s.ctx = keepertest.DistanceKeeper(s.T())

	s.params = types.DefaultParams()
	s.params.PeriodLength = 10
	s.params.EvaluationPrice = sdk.NewCoin(testDenom, sdkmath.NewInt(1000))
	s.params.MaxEvaluationsPerPeriod = 2
	s.params.MaxEvaluatorsPerPeriod = 3
	s.params.ResultExpiration = 4
	s.Require().NoError(s.keeper.SetParams(s.ctx, s.params))
}

func accAddr(name string) sdk.AccAddress {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.AccAddress(bz)
}

func valAddr(name string) sdk.ValAddress {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.ValAddress(bz)
}

// funded returns an account holding enough for several requests.
func (s *KeeperTestSuite) funded(name string) sdk.AccAddress {
	addr := accAddr(name)
	s.mocks.Bank.Fund(addr, sdk.NewCoin(testDenom, sdkmath.NewInt(10_000)))
	return addr
}

func (s *KeeperTestSuite) witness(name string) sdk.ValAddress {
	addr := valAddr(name)
	s.mocks.Staking.SetBonded(addr, true)
	return addr
}

// nextBlock moves to the next height without rotating.
func (s *KeeperTestSuite) nextBlock() {
	s.ctx = s.ctx.WithBlockHeight(s.ctx.BlockHeight() + 1).WithEventManager(sdk.NewEventManager())
}

// rotate runs the period boundary.
func (s *KeeperTestSuite) rotate() {
	s.nextBlock()
	s.Require().NoError(s.keeper.AdvancePeriod(s.ctx))
}

func (s *KeeperTestSuite) period() uint64 {
	period, err := s.keeper.GetCurrentPeriod(s.ctx)
	s.Require().NoError(err)
	return period
}

func (s *KeeperTestSuite) pool(role types.PoolRole) types.EvaluationPool {
	pool, _, err := s.keeper.GetPool(s.ctx, role)
	s.Require().NoError(err)
	return pool
}

func (s *KeeperTestSuite) hasEvent(eventType string) bool {
	for _, ev := range s.ctx.EventManager().Events() {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

func (s *KeeperTestSuite) requireInvariants() {
	msg, broken := keeper.AllInvariants(*s.keeper)(s.ctx)
	s.Require().False(broken, msg)
}

func (s *KeeperTestSuite) TestDefaultStateAfterGenesis() {
	s.Require().Equal(uint64(0), s.period())
	for _, role := range types.AllRoles() {
		s.Require().Zero(s.pool(role).Len())
	}
	for slot := uint32(0); slot < types.NumPools; slot++ {
		has, err := s.keeper.Pools.Has(s.ctx, slot)
		s.Require().NoError(err)
		s.Require().True(has, "slot %d must exist", slot)
	}
}

func (s *KeeperTestSuite) TestSetParamsRejectsInvalid() {
	params := s.params
	params.MaxRefereeDistance = 0
	s.Require().ErrorIs(s.keeper.SetParams(s.ctx, params), types.ErrInvalidParams)
}
