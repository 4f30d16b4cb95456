package keeper

import (
	"context"
)

// DistanceKeeperV1 is the minimal view of the distance keeper for modules
// that act on evaluation verdicts. Depend on this rather than the concrete
// keeper.
type DistanceKeeperV1 interface {
	// IsValid reports whether identity holds an unexpired Valid status.
	IsValid(ctx context.Context, identity uint32) bool
}

// DistanceKeeperV1Extended adds pending-request visibility.
type DistanceKeeperV1Extended interface {
	DistanceKeeperV1

	// IsPending reports whether an evaluation of identity is outstanding.
	IsPending(ctx context.Context, identity uint32) bool

	// ValidUntil returns the period at which the Valid status of identity
	// expires, and whether one exists.
	ValidUntil(ctx context.Context, identity uint32) (uint64, bool)
}

// DistanceKeeperVersion is the current distance keeper interface version.
const DistanceKeeperVersion = "v1"
