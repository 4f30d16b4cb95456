package wot

import (
	"errors"
	"math"
)

// ErrInvalidDepth is returned for a traversal depth of zero.
var ErrInvalidDepth = errors.New("max referee distance must be at least 1")

// RefereeSet is the set of members an identity must reach.
type RefereeSet map[uint32]struct{}

// Contains reports whether identity is a referee.
func (r RefereeSet) Contains(identity uint32) bool {
	_, ok := r[identity]
	return ok
}

// RefereeThreshold returns ceil(memberCount^(1/maxDepth)), computed as the
// smallest t with t^maxDepth >= memberCount.
func RefereeThreshold(memberCount int, maxDepth uint32) (uint32, error) {
	if maxDepth == 0 {
		return 0, ErrInvalidDepth
	}
	if memberCount <= 1 {
		return uint32(memberCount), nil
	}
	n := uint64(memberCount)
	// Start just below the floating point estimate and step up exactly.
	t := uint64(math.Pow(float64(n), 1/float64(maxDepth)))
	if t > 1 {
		t--
	}
	for !powAtLeast(t, maxDepth, n) {
		t++
	}
	return uint32(t), nil
}

// powAtLeast reports whether base^exp >= n without overflowing.
func powAtLeast(base uint64, exp uint32, n uint64) bool {
	acc := uint64(1)
	for i := uint32(0); i < exp; i++ {
		if base != 0 && acc > n/base {
			return true
		}
		acc *= base
		if acc >= n {
			return true
		}
	}
	return acc >= n
}

// SelectReferees returns the members that both received and issued at least
// the threshold number of certifications.
func SelectReferees(snapshot *Snapshot, maxDepth uint32) (RefereeSet, uint32, error) {
	threshold, err := RefereeThreshold(snapshot.MemberCount(), maxDepth)
	if err != nil {
		return nil, 0, err
	}
	referees := make(RefereeSet)
	for m := range snapshot.members {
		if snapshot.ReceivedCount(m) >= threshold && snapshot.IssuedCount(m) >= threshold {
			referees[m] = struct{}{}
		}
	}
	return referees, threshold, nil
}
