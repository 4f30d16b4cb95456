// Package bridge turns the oracle's local artifact into the witness
// submission of the running validator.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/distance/oracle/artifact"
	"github.com/paw-chain/distance/x/distance/types"
)

// PoolReader is the keeper surface the provider reads.
type PoolReader interface {
	GetCurrentPeriod(ctx context.Context) (uint64, error)
	GetPool(ctx context.Context, role types.PoolRole) (types.EvaluationPool, uint32, error)
}

// Provider builds MsgSubmitEvaluation from the artifact of the current period.
// A validator node calls Prepare once per block from its proposal or
// vote-extension path and broadcasts the returned message when non-nil.
type Provider struct {
	store   *artifact.Store
	pools   PoolReader
	witness sdk.ValAddress
	logger  log.Logger
}

// NewProvider creates a provider submitting as witness.
func NewProvider(store *artifact.Store, pools PoolReader, witness sdk.ValAddress, logger log.Logger) *Provider {
	return &Provider{
		store:   store,
		pools:   pools,
		witness: witness,
		logger:  logger.With("module", "x/distance/bridge"),
	}
}

// Prepare returns the submission for the current period, or nil when there
// is nothing to submit: the witness already submitted, the pool is empty, the
// artifact is missing or unrecognised, or its length does not match the pool.
func (p *Provider) Prepare(ctx context.Context) (*types.MsgSubmitEvaluation, error) {
	period, err := p.pools.GetCurrentPeriod(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read period: %w", err)
	}
	pool, _, err := p.pools.GetPool(ctx, types.RoleSubmissions)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission pool: %w", err)
	}
	if pool.Len() == 0 {
		return nil, nil
	}
	if pool.HasEvaluator(p.witness.String()) {
		p.logger.Debug("already submitted", "period", period)
		return nil, nil
	}

	a, err := p.store.Read(period)
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		p.logger.Debug("no artifact for period", "period", period)
		return nil, nil
	case errors.Is(err, artifact.ErrUnrecognizedVersion):
		p.logger.Warn("ignoring artifact of another version", "period", period, "error", err)
		return nil, nil
	case err != nil:
		return nil, err
	}

	if len(a.Distances) != pool.Len() {
		p.logger.Warn("artifact does not match submission pool",
			"period", period,
			"distances", len(a.Distances),
			"pool", pool.Len(),
		)
		return nil, nil
	}

	return types.NewMsgSubmitEvaluation(p.witness.String(), a.Distances), nil
}
