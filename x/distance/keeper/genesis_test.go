package keeper_test

import (
	keepertest "github.com/paw-chain/distance/testutil/keeper"
	"github.com/paw-chain/distance/x/distance/types"
)

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	s.queueForSubmission(1, 2)
	s.submitAll([]types.Perbill{types.PerbillOne, 5})
	_, err := s.keeper.RequestEvaluation(s.ctx, s.funded("bob"), 3)
	s.Require().NoError(err)
	s.Require().NoError(s.keeper.ForceSetDistanceStatus(s.ctx, 4, accAddr("bob").String()))

	exported, err := s.keeper.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(exported.Validate())
	s.Require().Len(exported.Requests, 3)
	s.Require().Len(exported.Statuses, 1)

	other, _, ctx := keepertest.DistanceKeeper(s.T())
	s.Require().NoError(other.InitGenesis(ctx, *exported))
	reexported, err := other.ExportGenesis(ctx)
	s.Require().NoError(err)
	s.Require().Equal(exported, reexported)

	status, _, err := other.GetStatus(ctx, 4)
	s.Require().NoError(err)
	s.Require().Equal(types.StatusValid, status)
}

func (s *KeeperTestSuite) TestInitGenesisRejectsInvalidState() {
	gs := types.DefaultGenesis()
	gs.Pools = gs.Pools[:1]
	s.Require().ErrorIs(s.keeper.InitGenesis(s.ctx, *gs), types.ErrInvalidGenesis)
}
