package types

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message type URLs
const (
	TypeMsgRequestEvaluation      = "request_evaluation"
	TypeMsgRequestEvaluationFor   = "request_evaluation_for"
	TypeMsgSubmitEvaluation       = "submit_evaluation"
	TypeMsgForceSubmitEvaluation  = "force_submit_evaluation"
	TypeMsgForceSetDistanceStatus = "force_set_distance_status"
	TypeMsgUpdateParams           = "update_params"
)

// MsgRequestEvaluation asks for an evaluation of the signer's own identity.
type MsgRequestEvaluation struct {
	Requester string `json:"requester"`
}

type MsgRequestEvaluationResponse struct {
	Identity uint32 `json:"identity"`
	Period   uint64 `json:"period"`
}

// MsgRequestEvaluationFor asks for an evaluation of another identity. The
// signer must own a member identity.
type MsgRequestEvaluationFor struct {
	Requester string `json:"requester"`
	Target    uint32 `json:"target"`
}

type MsgRequestEvaluationForResponse struct {
	Period uint64 `json:"period"`
}

// MsgSubmitEvaluation carries a witness result for the submission pool.
type MsgSubmitEvaluation struct {
	// Witness is the validator operator address.
	Witness string            `json:"witness"`
	Result  ComputationResult `json:"result"`
}

type MsgSubmitEvaluationResponse struct{}

// MsgForceSubmitEvaluation lets the authority push a result on behalf of an
// arbitrary evaluator without witness bookkeeping.
type MsgForceSubmitEvaluation struct {
	Authority string            `json:"authority"`
	Evaluator string            `json:"evaluator"`
	Result    ComputationResult `json:"result"`
}

type MsgForceSubmitEvaluationResponse struct{}

// MsgForceSetDistanceStatus marks an identity Valid without an evaluation.
type MsgForceSetDistanceStatus struct {
	Authority string `json:"authority"`
	Identity  uint32 `json:"identity"`
	Requester string `json:"requester"`
}

type MsgForceSetDistanceStatusResponse struct{}

type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

type MsgUpdateParamsResponse struct{}

// MsgServer is the transaction surface of the module.
type MsgServer interface {
	RequestEvaluation(context.Context, *MsgRequestEvaluation) (*MsgRequestEvaluationResponse, error)
	RequestEvaluationFor(context.Context, *MsgRequestEvaluationFor) (*MsgRequestEvaluationForResponse, error)
	SubmitEvaluation(context.Context, *MsgSubmitEvaluation) (*MsgSubmitEvaluationResponse, error)
	ForceSubmitEvaluation(context.Context, *MsgForceSubmitEvaluation) (*MsgForceSubmitEvaluationResponse, error)
	ForceSetDistanceStatus(context.Context, *MsgForceSetDistanceStatus) (*MsgForceSetDistanceStatusResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

// NewMsgRequestEvaluation creates a new MsgRequestEvaluation instance
func NewMsgRequestEvaluation(requester string) *MsgRequestEvaluation {
	return &MsgRequestEvaluation{Requester: requester}
}

// Type implements the legacy message type accessor
func (msg *MsgRequestEvaluation) Type() string { return TypeMsgRequestEvaluation }

// GetSigners assumes the address is valid (validated in ValidateBasic)
func (msg *MsgRequestEvaluation) GetSigners() []sdk.AccAddress {
	requester, _ := sdk.AccAddressFromBech32(msg.Requester)
	return []sdk.AccAddress{requester}
}

// ValidateBasic performs stateless checks
func (msg *MsgRequestEvaluation) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Requester); err != nil {
		return ErrCallerHasNoIdentity.Wrapf("invalid requester address: %s", err)
	}
	return nil
}

// NewMsgRequestEvaluationFor creates a new MsgRequestEvaluationFor instance
func NewMsgRequestEvaluationFor(requester string, target uint32) *MsgRequestEvaluationFor {
	return &MsgRequestEvaluationFor{Requester: requester, Target: target}
}

func (msg *MsgRequestEvaluationFor) Type() string { return TypeMsgRequestEvaluationFor }

func (msg *MsgRequestEvaluationFor) GetSigners() []sdk.AccAddress {
	requester, _ := sdk.AccAddressFromBech32(msg.Requester)
	return []sdk.AccAddress{requester}
}

func (msg *MsgRequestEvaluationFor) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Requester); err != nil {
		return ErrCallerHasNoIdentity.Wrapf("invalid requester address: %s", err)
	}
	return nil
}

// NewMsgSubmitEvaluation creates a new MsgSubmitEvaluation instance
func NewMsgSubmitEvaluation(witness string, distances []Perbill) *MsgSubmitEvaluation {
	return &MsgSubmitEvaluation{
		Witness: witness,
		Result:  ComputationResult{Distances: distances},
	}
}

func (msg *MsgSubmitEvaluation) Type() string { return TypeMsgSubmitEvaluation }

// GetSigners returns the operator account of the witness.
func (msg *MsgSubmitEvaluation) GetSigners() []sdk.AccAddress {
	witness, _ := sdk.ValAddressFromBech32(msg.Witness)
	return []sdk.AccAddress{sdk.AccAddress(witness)}
}

func (msg *MsgSubmitEvaluation) ValidateBasic() error {
	if _, err := sdk.ValAddressFromBech32(msg.Witness); err != nil {
		return ErrNotWitness.Wrapf("invalid witness address: %s", err)
	}
	return msg.Result.ValidateBasic()
}

func (msg *MsgForceSubmitEvaluation) Type() string { return TypeMsgForceSubmitEvaluation }

func (msg *MsgForceSubmitEvaluation) GetSigners() []sdk.AccAddress {
	authority, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{authority}
}

func (msg *MsgForceSubmitEvaluation) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return ErrInvalidParams.Wrapf("invalid authority address: %s", err)
	}
	if msg.Evaluator == "" {
		return ErrNotWitness.Wrap("evaluator cannot be empty")
	}
	return msg.Result.ValidateBasic()
}

func (msg *MsgForceSetDistanceStatus) Type() string { return TypeMsgForceSetDistanceStatus }

func (msg *MsgForceSetDistanceStatus) GetSigners() []sdk.AccAddress {
	authority, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{authority}
}

func (msg *MsgForceSetDistanceStatus) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return ErrInvalidParams.Wrapf("invalid authority address: %s", err)
	}
	if _, err := sdk.AccAddressFromBech32(msg.Requester); err != nil {
		return ErrInvalidIdentity.Wrapf("invalid requester address: %s", err)
	}
	return nil
}

// NewMsgUpdateParams creates a new MsgUpdateParams instance
func NewMsgUpdateParams(authority string, params Params) *MsgUpdateParams {
	return &MsgUpdateParams{Authority: authority, Params: params}
}

func (msg *MsgUpdateParams) Type() string { return TypeMsgUpdateParams }

func (msg *MsgUpdateParams) GetSigners() []sdk.AccAddress {
	authority, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{authority}
}

func (msg *MsgUpdateParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return ErrInvalidParams.Wrapf("invalid authority address: %s", err)
	}
	return msg.Params.Validate()
}
