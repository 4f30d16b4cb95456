package types

import (
	"errors"

	sdkerrors "cosmossdk.io/errors"
)

// Distance module sentinel errors
var (
	ErrInvalidParams = sdkerrors.Register(ModuleName, 2, "invalid params")

	// Request errors
	ErrAlreadyInEvaluation = sdkerrors.Register(ModuleName, 3, "identity already in evaluation")
	ErrQueueFull           = sdkerrors.Register(ModuleName, 4, "evaluation queue full")
	ErrNotEligible         = sdkerrors.Register(ModuleName, 5, "identity not eligible for evaluation")
	ErrCannotHold          = sdkerrors.Register(ModuleName, 6, "cannot hold evaluation price")
	ErrCallerHasNoIdentity = sdkerrors.Register(ModuleName, 7, "caller has no identity")
	ErrCallerNotMember     = sdkerrors.Register(ModuleName, 8, "caller is not a member")

	// Submission errors
	ErrWrongResultLength      = sdkerrors.Register(ModuleName, 10, "result length does not match evaluation pool")
	ErrDuplicateWitness       = sdkerrors.Register(ModuleName, 11, "witness already submitted this period")
	ErrTooManyEvaluators      = sdkerrors.Register(ModuleName, 12, "too many evaluators this period")
	ErrManyEvaluationsInBlock = sdkerrors.Register(ModuleName, 13, "an evaluation was already submitted in this block")
	ErrNotWitness             = sdkerrors.Register(ModuleName, 14, "submitter is not a bonded validator")
	ErrAccumulatorFull        = sdkerrors.Register(ModuleName, 15, "median accumulator full")
	ErrInvalidDistance        = sdkerrors.Register(ModuleName, 16, "distance out of range")

	// Lookup errors
	ErrPoolNotFound    = sdkerrors.Register(ModuleName, 20, "evaluation pool not found")
	ErrRequestNotFound = sdkerrors.Register(ModuleName, 21, "evaluation request not found")
	ErrInvalidIdentity = sdkerrors.Register(ModuleName, 22, "invalid identity")
	ErrInvalidRole     = sdkerrors.Register(ModuleName, 23, "invalid pool role")

	ErrInvalidGenesis = sdkerrors.Register(ModuleName, 30, "invalid genesis state")
)

// ErrorWithRecovery wraps an error with recovery suggestions
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string {
	return e.Err.Error()
}

func (e *ErrorWithRecovery) Unwrap() error {
	return e.Err
}

// RecoverySuggestions provides actionable recovery steps for user-facing errors
var RecoverySuggestions = map[error]string{
	ErrAlreadyInEvaluation: "An evaluation for this identity is already queued. Wait for it to settle (three periods) before requesting again.",
	ErrQueueFull:           "The request pool for this period is full. Retry after the next period rotation.",
	ErrNotEligible:         "The identity module rejected the request. Check the identity status and certification requirements.",
	ErrCannotHold:          "The evaluation price could not be held. Ensure the requester has enough spendable balance.",
	ErrCallerHasNoIdentity: "The signing account is not linked to an identity. Create and confirm an identity first.",
	ErrCallerNotMember:     "Only members may request evaluations for other identities.",

	ErrWrongResultLength:      "The oracle computed a different pool than the one open for submissions. Rerun the oracle for the current period.",
	ErrDuplicateWitness:       "This witness already submitted a result for the current period. Wait for the next period.",
	ErrTooManyEvaluators:      "The evaluator set for this period is full. Results are no longer accepted until rotation.",
	ErrManyEvaluationsInBlock: "Only one evaluation is accepted per block. Resubmit in a later block.",
	ErrNotWitness:             "Only bonded validators may submit evaluations.",
}

// WrapWithRecovery wraps an error with recovery suggestion
func WrapWithRecovery(err error, msg string, args ...interface{}) error {
	wrapped := sdkerrors.Wrapf(err, msg, args...)

	if suggestion, ok := RecoverySuggestions[err]; ok {
		return &ErrorWithRecovery{
			Err:      wrapped,
			Recovery: suggestion,
		}
	}

	return wrapped
}

// GetRecoverySuggestion returns the recovery suggestion for an error
func GetRecoverySuggestion(err error) string {
	for _, sentinel := range recoverableErrors {
		if errors.Is(err, sentinel) {
			return RecoverySuggestions[sentinel]
		}
	}
	return "No recovery suggestion available. Query the distance module state for details."
}

var recoverableErrors = []error{
	ErrAlreadyInEvaluation, ErrQueueFull, ErrNotEligible, ErrCannotHold,
	ErrCallerHasNoIdentity, ErrCallerNotMember, ErrWrongResultLength,
	ErrDuplicateWitness, ErrTooManyEvaluators, ErrManyEvaluationsInBlock, ErrNotWitness,
}
