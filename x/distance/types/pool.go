package types

import (
	"fmt"
	"slices"
	"strings"
)

// Evaluation is one queued identity together with the witness reports
// received for it.
type Evaluation struct {
	Identity    uint32            `json:"identity"`
	Accumulator MedianAccumulator `json:"accumulator"`
}

// EvaluationPool is one of the three rotating slots. Evaluations keep queue
// order; that order is the positional contract with computation results.
type EvaluationPool struct {
	Evaluations []Evaluation `json:"evaluations"`
	// Evaluators holds the witnesses that contributed this period, sorted.
	Evaluators []string `json:"evaluators"`
}

// NewEvaluationPool returns an empty pool.
func NewEvaluationPool() EvaluationPool {
	return EvaluationPool{Evaluations: []Evaluation{}, Evaluators: []string{}}
}

func (p EvaluationPool) Len() int {
	return len(p.Evaluations)
}

// Identities returns the queued identities in queue order.
func (p EvaluationPool) Identities() []uint32 {
	out := make([]uint32, len(p.Evaluations))
	for i, e := range p.Evaluations {
		out[i] = e.Identity
	}
	return out
}

// Contains reports whether identity is queued in the pool.
func (p EvaluationPool) Contains(identity uint32) bool {
	return slices.ContainsFunc(p.Evaluations, func(e Evaluation) bool { return e.Identity == identity })
}

func (p EvaluationPool) HasEvaluator(addr string) bool {
	_, found := slices.BinarySearch(p.Evaluators, addr)
	return found
}

// Enqueue appends identity with an empty accumulator bounded to capacity.
func (p *EvaluationPool) Enqueue(identity, capacity, maxQueue uint32) error {
	if uint32(len(p.Evaluations)) >= maxQueue {
		return ErrQueueFull.Wrapf("pool holds %d evaluations", len(p.Evaluations))
	}
	p.Evaluations = append(p.Evaluations, Evaluation{
		Identity:    identity,
		Accumulator: NewMedianAccumulator(capacity),
	})
	return nil
}

// CheckResult validates a result against the pool without mutating it.
func (p EvaluationPool) CheckResult(result ComputationResult) error {
	if len(result.Distances) != len(p.Evaluations) {
		return ErrWrongResultLength.Wrapf("got %d distances, pool holds %d", len(result.Distances), len(p.Evaluations))
	}
	for i, e := range p.Evaluations {
		if err := result.Distances[i].Validate(); err != nil {
			return ErrInvalidDistance.Wrapf("index %d: %s", i, err)
		}
		if e.Accumulator.Full() {
			return ErrAccumulatorFull.Wrapf("identity %d", e.Identity)
		}
	}
	return nil
}

// ApplyResult pushes each distance into the positionally aligned accumulator.
// The result is checked first so that a rejected result leaves the pool as it was.
func (p *EvaluationPool) ApplyResult(result ComputationResult) error {
	if err := p.CheckResult(result); err != nil {
		return err
	}
	for i := range p.Evaluations {
		if err := p.Evaluations[i].Accumulator.Push(result.Distances[i]); err != nil {
			return err
		}
	}
	return nil
}

// AddEvaluator records addr as a contributor for this period.
func (p *EvaluationPool) AddEvaluator(addr string, maxEvaluators uint32) error {
	idx, found := slices.BinarySearch(p.Evaluators, addr)
	if found {
		return ErrDuplicateWitness.Wrapf("witness %s", addr)
	}
	if uint32(len(p.Evaluators)) >= maxEvaluators {
		return ErrTooManyEvaluators.Wrapf("limit %d", maxEvaluators)
	}
	p.Evaluators = slices.Insert(p.Evaluators, idx, addr)
	return nil
}

// Validate checks the structural invariants of a stored pool.
func (p EvaluationPool) Validate() error {
	seen := make(map[uint32]struct{}, len(p.Evaluations))
	for _, e := range p.Evaluations {
		if _, dup := seen[e.Identity]; dup {
			return ErrInvalidGenesis.Wrapf("identity %d queued twice", e.Identity)
		}
		seen[e.Identity] = struct{}{}
		if err := e.Accumulator.Validate(); err != nil {
			return err
		}
	}
	if !slices.IsSorted(p.Evaluators) {
		return ErrInvalidGenesis.Wrap("evaluators not sorted")
	}
	for i := 1; i < len(p.Evaluators); i++ {
		if p.Evaluators[i] == p.Evaluators[i-1] {
			return ErrInvalidGenesis.Wrapf("duplicate evaluator %s", p.Evaluators[i])
		}
	}
	return nil
}

// PoolRole is the function a slot serves during a period.
type PoolRole uint8

const (
	// RoleSubmissions is open for witness results.
	RoleSubmissions PoolRole = iota
	// RoleComputation is frozen and read by the oracle.
	RoleComputation
	// RoleRequests receives new requests. Right after a rotation it holds the
	// entries pending settlement and is drained first.
	RoleRequests
)

var roleOffsets = [NumPools]uint64{
	RoleSubmissions: 0,
	RoleComputation: 1,
	RoleRequests:    2,
}

var roleNames = [NumPools]string{
	RoleSubmissions: "submissions",
	RoleComputation: "computation",
	RoleRequests:    "requests",
}

// PoolSlot returns the storage slot serving role during period.
func PoolSlot(period uint64, role PoolRole) uint32 {
	return uint32((period + roleOffsets[role]) % NumPools)
}

// AllRoles lists the roles in slot-offset order.
func AllRoles() []PoolRole {
	return []PoolRole{RoleSubmissions, RoleComputation, RoleRequests}
}

func (r PoolRole) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("PoolRole(%d)", uint8(r))
}

// ParsePoolRole accepts the names returned by PoolRole.String.
func ParsePoolRole(s string) (PoolRole, error) {
	for i, name := range roleNames {
		if strings.EqualFold(s, name) {
			return PoolRole(i), nil
		}
	}
	return 0, ErrInvalidRole.Wrapf("%q", s)
}
