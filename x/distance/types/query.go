package types

import "context"

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryPeriodRequest struct{}

// QueryPeriodResponse reports the rotation state the oracle keys its work on.
type QueryPeriodResponse struct {
	CurrentPeriod uint64 `json:"current_period"`
	// EvaluationHeight is the block height at which the computation pool was frozen.
	EvaluationHeight int64 `json:"evaluation_height"`
	// NextRotationHeight is the first height of the next period.
	NextRotationHeight int64 `json:"next_rotation_height"`
}

type QueryPoolRequest struct {
	Role PoolRole `json:"role"`
}

type QueryPoolResponse struct {
	Period uint64         `json:"period"`
	Role   string         `json:"role"`
	Slot   uint32         `json:"slot"`
	Pool   EvaluationPool `json:"pool"`
}

type QueryStatusRequest struct {
	Identity uint32 `json:"identity"`
}

type QueryStatusResponse struct {
	Identity  uint32 `json:"identity"`
	Status    string `json:"status"`
	Requester string `json:"requester,omitempty"`
	ExpiresOn uint64 `json:"expires_on,omitempty"`
}

type QueryPendingRequestRequest struct {
	Identity uint32 `json:"identity"`
}

type QueryPendingRequestResponse struct {
	Request EvaluationRequest `json:"request"`
}

// QueryServer is the read surface of the module.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Period(context.Context, *QueryPeriodRequest) (*QueryPeriodResponse, error)
	Pool(context.Context, *QueryPoolRequest) (*QueryPoolResponse, error)
	Status(context.Context, *QueryStatusRequest) (*QueryStatusResponse, error)
	PendingRequest(context.Context, *QueryPendingRequestRequest) (*QueryPendingRequestResponse, error)
}

// Certification lists the issuers that certified a receiver.
type Certification struct {
	Receiver uint32   `json:"receiver"`
	Issuers  []uint32 `json:"issuers"`
}

// QuerySnapshotResponse is the certification graph at the evaluation height.
type QuerySnapshotResponse struct {
	Height         int64           `json:"height"`
	Members        []uint32        `json:"members"`
	Certifications []Certification `json:"certifications"`
}

// ReceivedMap returns the certifications keyed by receiver.
func (r QuerySnapshotResponse) ReceivedMap() map[uint32][]uint32 {
	out := make(map[uint32][]uint32, len(r.Certifications))
	for _, c := range r.Certifications {
		out[c.Receiver] = append(out[c.Receiver], c.Issuers...)
	}
	return out
}
