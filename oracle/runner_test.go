package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/distance/oracle/artifact"
	"github.com/paw-chain/distance/x/distance/types"
)

type fakeClient struct {
	params   types.Params
	period   types.QueryPeriodResponse
	pool     types.QueryPoolResponse
	snapshot types.QuerySnapshotResponse
	err      error

	snapshotHeights []int64
}

func (f *fakeClient) Params(context.Context) (types.Params, error) { return f.params, f.err }

func (f *fakeClient) Period(context.Context) (types.QueryPeriodResponse, error) {
	return f.period, f.err
}

func (f *fakeClient) Pool(_ context.Context, role types.PoolRole) (types.QueryPoolResponse, error) {
	if role != types.RoleComputation {
		return types.QueryPoolResponse{}, errors.New("unexpected role")
	}
	return f.pool, f.err
}

func (f *fakeClient) Snapshot(_ context.Context, height int64) (types.QuerySnapshotResponse, error) {
	f.snapshotHeights = append(f.snapshotHeights, height)
	return f.snapshot, f.err
}

// completeGraph returns four members certifying each other; all are referees
// at depth 5.
func completeGraph() types.QuerySnapshotResponse {
	members := []uint32{1, 2, 3, 4}
	resp := types.QuerySnapshotResponse{Height: 20, Members: members}
	for _, receiver := range members {
		var issuers []uint32
		for _, issuer := range members {
			if issuer != receiver {
				issuers = append(issuers, issuer)
			}
		}
		resp.Certifications = append(resp.Certifications, types.Certification{Receiver: receiver, Issuers: issuers})
	}
	// 6 is certified by a member, 7 by nobody
	resp.Certifications = append(resp.Certifications, types.Certification{Receiver: 6, Issuers: []uint32{1}})
	return resp
}

func poolOf(identities ...uint32) types.EvaluationPool {
	pool := types.NewEvaluationPool()
	for _, id := range identities {
		if err := pool.Enqueue(id, 3, 10); err != nil {
			panic(err)
		}
	}
	return pool
}

func newFixture(t *testing.T) (*Runner, *fakeClient, *artifact.Store) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir(), log.NewNopLogger())
	require.NoError(t, err)

	client := &fakeClient{
		params:   types.DefaultParams(),
		period:   types.QueryPeriodResponse{CurrentPeriod: 4, EvaluationHeight: 20},
		pool:     types.QueryPoolResponse{Period: 4, Role: types.RoleComputation.String(), Pool: poolOf(6, 7)},
		snapshot: completeGraph(),
	}
	runner, err := NewRunner(client, store, Config{Workers: 2}, log.NewNopLogger(), nil)
	require.NoError(t, err)
	return runner, client, store
}

func TestRunWritesNextPeriodArtifact(t *testing.T) {
	runner, client, store := newFixture(t)

	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(5), res.Period)
	require.Equal(t, 2, res.Identities)
	require.Equal(t, 4, res.Referees)
	require.Equal(t, uint32(2), res.Threshold)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, []int64{20}, client.snapshotHeights)

	a, err := store.Read(5)
	require.NoError(t, err)
	require.Equal(t, []types.Perbill{types.PerbillOne, 0}, a.Distances)
}

func TestRunIsIdempotent(t *testing.T) {
	runner, client, store := newFixture(t)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	// a different graph must not overwrite the first result
	client.snapshot = types.QuerySnapshotResponse{Members: []uint32{1, 2, 3, 4}}
	_, err = runner.Run(context.Background())
	require.ErrorIs(t, err, ErrNothingToDo)
	require.Len(t, client.snapshotHeights, 1)

	a, err := store.Read(5)
	require.NoError(t, err)
	require.Equal(t, []types.Perbill{types.PerbillOne, 0}, a.Distances)
}

func TestRunEmptyPool(t *testing.T) {
	runner, client, store := newFixture(t)
	client.pool.Pool = types.NewEvaluationPool()

	_, err := runner.Run(context.Background())
	require.ErrorIs(t, err, ErrNothingToDo)

	exists, err := store.Exists(5)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunPeriodAdvanced(t *testing.T) {
	runner, client, _ := newFixture(t)
	client.pool.Period = 5

	_, err := runner.Run(context.Background())
	require.ErrorContains(t, err, "period advanced")
	require.NotErrorIs(t, err, ErrNothingToDo)
}

func TestRunClientError(t *testing.T) {
	runner, client, _ := newFixture(t)
	client.err = errors.New("node down")

	_, err := runner.Run(context.Background())
	require.ErrorContains(t, err, "node down")
}

func TestRunPrunesOldArtifacts(t *testing.T) {
	runner, _, store := newFixture(t)
	for p := uint64(1); p <= 4; p++ {
		_, err := store.Write(artifact.Artifact{Period: p})
		require.NoError(t, err)
	}

	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, res.Pruned)

	periods, err := store.Periods()
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 5}, periods)
}

func TestRunCancelled(t *testing.T) {
	runner, _, store := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	exists, err := store.Exists(5)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	runner, _, store := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runner.RunEvery(ctx, time.Hour) }()

	require.Eventually(t, func() bool {
		exists, _ := store.Exists(5)
		return exists
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
