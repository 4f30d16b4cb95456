// Package wot evaluates the distance rule over a snapshot of the
// certification graph.
package wot

import (
	"slices"
)

// Snapshot is an immutable view of the certification graph at one height.
// It is safe for concurrent readers.
type Snapshot struct {
	members  map[uint32]struct{}
	received map[uint32][]uint32
	issued   map[uint32]uint32
}

// NewSnapshot builds a snapshot from the member set and the certifiers of
// each receiver. Issued counts only include edges whose issuer is a member.
// The inputs are copied.
func NewSnapshot(members []uint32, received map[uint32][]uint32) *Snapshot {
	s := &Snapshot{
		members:  make(map[uint32]struct{}, len(members)),
		received: make(map[uint32][]uint32, len(received)),
		issued:   make(map[uint32]uint32, len(members)),
	}
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	for receiver, issuers := range received {
		s.received[receiver] = slices.Clone(issuers)
		for _, issuer := range issuers {
			if _, ok := s.members[issuer]; ok {
				s.issued[issuer]++
			}
		}
	}
	return s
}

// MemberCount returns the number of members.
func (s *Snapshot) MemberCount() int {
	return len(s.members)
}

// Members returns the members in ascending order.
func (s *Snapshot) Members() []uint32 {
	out := make([]uint32, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// IsMember reports whether identity is a member.
func (s *Snapshot) IsMember(identity uint32) bool {
	_, ok := s.members[identity]
	return ok
}

// Certifiers returns the issuers of certifications received by identity.
// The returned slice must not be modified.
func (s *Snapshot) Certifiers(identity uint32) []uint32 {
	return s.received[identity]
}

// ReceivedCount is the number of certifications received by identity.
func (s *Snapshot) ReceivedCount(identity uint32) uint32 {
	return uint32(len(s.received[identity]))
}

// IssuedCount is the number of certifications identity issued, counted
// only when identity is a member.
func (s *Snapshot) IssuedCount(identity uint32) uint32 {
	return s.issued[identity]
}
