// Package keeper provides interfaces and helpers shared by the keepers that
// consume or administer distance evaluation.
package keeper

import (
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
)

// ValidateAuthority checks that the signer of an administrative message is
// the configured authority. An unconfigured authority rejects every signer.
//
//	if err := keeper.ValidateAuthority(k.GetAuthority(), msg.Authority); err != nil {
//	    return nil, err
//	}
func ValidateAuthority(expected, actual string) error {
	if expected == "" {
		return govtypes.ErrInvalidSigner.Wrap("module authority is not configured")
	}
	if expected != actual {
		return govtypes.ErrInvalidSigner.Wrapf(
			"invalid authority; expected %s, got %s",
			expected,
			actual,
		)
	}
	return nil
}
