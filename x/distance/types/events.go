package types

// Event types for the distance module
// All event types use lowercase with underscore separator (module_action format)
const (
	// Request events
	EventTypeEvaluationRequested = "distance_evaluation_requested"

	// Submission events
	EventTypeEvaluationSubmitted      = "distance_evaluation_submitted"
	EventTypeEvaluationForceSubmitted = "distance_evaluation_force_submitted"

	// Settlement events
	EventTypeNotEvaluated          = "distance_not_evaluated"
	EventTypeEvaluatedValid        = "distance_evaluated_valid"
	EventTypeEvaluatedInvalid      = "distance_evaluated_invalid"
	EventTypeSettlementAnomaly     = "distance_settlement_anomaly"
	EventTypeStatusExpired         = "distance_status_expired"
	EventTypeStatusForceSet        = "distance_status_force_set"
	EventTypePeriodAdvanced        = "distance_period_advanced"
	EventTypeDistanceParamsUpdated = "distance_params_updated"
)

// Event attribute keys for the distance module
const (
	AttributeKeyIdentity  = "identity"
	AttributeKeyRequester = "requester"
	AttributeKeyTarget    = "target"
	AttributeKeyAmount    = "amount"
	AttributeKeyPeriod    = "period"
	AttributeKeyWitness   = "witness"
	AttributeKeyEvaluator = "evaluator"
	AttributeKeyCount     = "count"
	AttributeKeyDistance  = "distance"
	AttributeKeyThreshold = "threshold"
	AttributeKeySink      = "sink"
	AttributeKeyExpiresOn = "expires_on"
	AttributeKeyHeight    = "height"
	AttributeKeyReason    = "reason"
	AttributeKeyAuthority = "authority"
)
