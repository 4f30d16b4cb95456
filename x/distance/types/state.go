package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// EvaluationRequest records who paid for an outstanding evaluation and what
// is held on their behalf. It exists from request until settlement.
type EvaluationRequest struct {
	Identity  uint32   `json:"identity"`
	Requester string   `json:"requester"`
	Held      sdk.Coin `json:"held"`
	// Period in which the request was queued.
	Period uint64 `json:"period"`
}

func (r EvaluationRequest) Validate() error {
	if _, err := sdk.AccAddressFromBech32(r.Requester); err != nil {
		return ErrInvalidGenesis.Wrapf("request for %d: invalid requester: %s", r.Identity, err)
	}
	if err := r.Held.Validate(); err != nil {
		return ErrInvalidGenesis.Wrapf("request for %d: invalid held amount: %s", r.Identity, err)
	}
	return nil
}

// DistanceStatus is a Valid verdict that lasts until ExpiresOn.
type DistanceStatus struct {
	Identity  uint32 `json:"identity"`
	Requester string `json:"requester"`
	// ExpiresOn is the period at whose start the status is removed.
	ExpiresOn uint64 `json:"expires_on"`
}

// Status is the externally visible distance state of an identity.
type Status uint8

const (
	StatusNone Status = iota
	StatusPending
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPending:
		return "pending"
	case StatusValid:
		return "valid"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// SettlementOutcome is the verdict reached for one evaluation at rotation.
type SettlementOutcome uint8

const (
	OutcomeNoResult SettlementOutcome = iota
	OutcomeValid
	OutcomeInvalid
)

func (o SettlementOutcome) String() string {
	switch o {
	case OutcomeNoResult:
		return "no_result"
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("SettlementOutcome(%d)", uint8(o))
	}
}

// ComputationResult carries one distance per queued identity, in queue order.
type ComputationResult struct {
	Distances []Perbill `json:"distances"`
}

func (r ComputationResult) ValidateBasic() error {
	for i, d := range r.Distances {
		if err := d.Validate(); err != nil {
			return ErrInvalidDistance.Wrapf("index %d: %s", i, err)
		}
	}
	return nil
}
