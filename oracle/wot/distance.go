package wot

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/paw-chain/distance/x/distance/types"
)

type frame struct {
	identity uint32
	budget   uint32
}

// Reachable returns the referees reachable from identity by walking
// certifications backwards at most maxDepth steps. identity itself is
// included when it is a referee.
func Reachable(identity uint32, snapshot *Snapshot, referees RefereeSet, maxDepth uint32) map[uint32]struct{} {
	accessible := make(map[uint32]struct{})
	// Best remaining budget with which each identity was expanded.
	seen := make(map[uint32]uint32)

	stack := []frame{{identity: identity, budget: maxDepth}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if best, ok := seen[f.identity]; ok && best >= f.budget {
			continue
		}
		seen[f.identity] = f.budget

		if referees.Contains(f.identity) {
			accessible[f.identity] = struct{}{}
		}
		if f.budget == 0 {
			continue
		}
		for _, certifier := range snapshot.Certifiers(f.identity) {
			if best, ok := seen[certifier]; ok && best >= f.budget-1 {
				continue
			}
			stack = append(stack, frame{identity: certifier, budget: f.budget - 1})
		}
	}
	return accessible
}

// Score returns the share of referees reachable from identity, rounded down
// to the nearest billionth. A referee does not count itself. With no other
// referee to reach the score is one.
func Score(identity uint32, snapshot *Snapshot, referees RefereeSet, maxDepth uint32) types.Perbill {
	reachable := uint64(len(Reachable(identity, snapshot, referees, maxDepth)))
	total := uint64(len(referees))
	if referees.Contains(identity) {
		reachable--
		total--
	}
	return types.PerbillFromRational(reachable, total)
}

// Evaluate scores identities in parallel on at most workers goroutines.
// Results are returned in the order of identities.
func Evaluate(
	ctx context.Context,
	snapshot *Snapshot,
	referees RefereeSet,
	maxDepth uint32,
	identities []uint32,
	workers int,
) ([]types.Perbill, error) {
	if maxDepth == 0 {
		return nil, ErrInvalidDepth
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]types.Perbill, len(identities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, identity := range identities {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Score(identity, snapshot, referees, maxDepth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Wait cancels gctx; a cancelled caller is checked on its own context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
