package types

import (
	"slices"
)

// MedianAccumulator collects the distances reported by witnesses for one
// identity. Samples are kept sorted so the median is read without a sort.
type MedianAccumulator struct {
	Samples  []Perbill `json:"samples"`
	Capacity uint32    `json:"capacity"`
}

// MedianResult is the median of an accumulator. An even sample count yields
// the two middle values.
type MedianResult struct {
	Lo  Perbill `json:"lo"`
	Hi  Perbill `json:"hi"`
	Two bool    `json:"two"`
}

// NewMedianAccumulator returns an empty accumulator bounded to capacity samples.
func NewMedianAccumulator(capacity uint32) MedianAccumulator {
	return MedianAccumulator{Samples: []Perbill{}, Capacity: capacity}
}

// Len returns the number of samples.
func (m MedianAccumulator) Len() int {
	return len(m.Samples)
}

// Full reports whether another Push would be rejected.
func (m MedianAccumulator) Full() bool {
	return uint32(len(m.Samples)) >= m.Capacity
}

// Push inserts v at its sorted position.
func (m *MedianAccumulator) Push(v Perbill) error {
	if m.Full() {
		return ErrAccumulatorFull.Wrapf("capacity %d", m.Capacity)
	}
	idx, _ := slices.BinarySearch(m.Samples, v)
	m.Samples = slices.Insert(m.Samples, idx, v)
	return nil
}

// Median returns false when no sample was pushed.
func (m MedianAccumulator) Median() (MedianResult, bool) {
	n := len(m.Samples)
	if n == 0 {
		return MedianResult{}, false
	}
	if n%2 == 1 {
		v := m.Samples[n/2]
		return MedianResult{Lo: v, Hi: v}, true
	}
	return MedianResult{Lo: m.Samples[n/2-1], Hi: m.Samples[n/2], Two: true}, true
}

// Value collapses the result to a single distance. Two-valued medians resolve
// to the midpoint, rounded down.
func (r MedianResult) Value() Perbill {
	if !r.Two {
		return r.Lo
	}
	return Midpoint(r.Lo, r.Hi)
}

// Validate checks sortedness, range and the capacity bound.
func (m MedianAccumulator) Validate() error {
	if uint32(len(m.Samples)) > m.Capacity {
		return ErrAccumulatorFull.Wrapf("%d samples exceed capacity %d", len(m.Samples), m.Capacity)
	}
	for i, s := range m.Samples {
		if err := s.Validate(); err != nil {
			return ErrInvalidDistance.Wrap(err.Error())
		}
		if i > 0 && m.Samples[i-1] > s {
			return ErrInvalidGenesis.Wrapf("samples not sorted at index %d", i)
		}
	}
	return nil
}
