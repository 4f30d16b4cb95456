package types

import (
	"fmt"
	"math/bits"
)

// PerbillDenominator is the fixed-point scale of a Perbill.
const PerbillDenominator = 1_000_000_000

// PerbillOne is the Perbill representing the whole (100%).
const PerbillOne Perbill = PerbillDenominator

// Perbill is a fraction in [0, 1] expressed in billionths. Distances travel
// on-chain and between witnesses in this form so that independent evaluators
// produce bit-identical values.
type Perbill uint32

// PerbillFromRational returns num/den rounded down to the nearest billionth.
// A zero denominator yields PerbillOne and ratios above one are clamped.
func PerbillFromRational(num, den uint64) Perbill {
	if den == 0 || num >= den {
		return PerbillOne
	}
	// num < den so the quotient fits in 30 bits; the 128-bit product never
	// overflows the division.
	hi, lo := bits.Mul64(num, PerbillDenominator)
	quo, _ := bits.Div64(hi, lo, den)
	return Perbill(quo)
}

// PerbillFromPercent returns p percent, clamped to 100.
func PerbillFromPercent(p uint32) Perbill {
	if p >= 100 {
		return PerbillOne
	}
	return Perbill(p * (PerbillDenominator / 100))
}

// Validate checks that the value lies in [0, 1].
func (p Perbill) Validate() error {
	if p > PerbillOne {
		return fmt.Errorf("perbill %d exceeds %d", uint32(p), uint32(PerbillOne))
	}
	return nil
}

// Midpoint returns lo + (hi-lo)/2, which never overflows for lo <= hi.
func Midpoint(lo, hi Perbill) Perbill {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + (hi-lo)/2
}

// String renders the fraction as a decimal, e.g. 0.800000000.
func (p Perbill) String() string {
	return fmt.Sprintf("%d.%09d", uint32(p)/PerbillDenominator, uint32(p)%PerbillDenominator)
}
