package types

import (
	"fmt"
)

// PoolEntry is one rotating slot in genesis.
type PoolEntry struct {
	Slot uint32         `json:"slot"`
	Pool EvaluationPool `json:"pool"`
}

// GenesisState is the exported scheduler state.
type GenesisState struct {
	Params           Params              `json:"params"`
	CurrentPeriod    uint64              `json:"current_period"`
	EvaluationHeight int64               `json:"evaluation_height"`
	Pools            []PoolEntry         `json:"pools"`
	Requests         []EvaluationRequest `json:"requests"`
	Statuses         []DistanceStatus    `json:"statuses"`
}

// DefaultGenesis returns the default genesis state for the distance module.
func DefaultGenesis() *GenesisState {
	pools := make([]PoolEntry, NumPools)
	for slot := range pools {
		pools[slot] = PoolEntry{Slot: uint32(slot), Pool: NewEvaluationPool()}
	}
	return &GenesisState{
		Params:   DefaultParams(),
		Pools:    pools,
		Requests: []EvaluationRequest{},
		Statuses: []DistanceStatus{},
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	if gs.EvaluationHeight < 0 {
		return ErrInvalidGenesis.Wrap("evaluation height cannot be negative")
	}

	if len(gs.Pools) != NumPools {
		return ErrInvalidGenesis.Wrapf("expected %d pools, got %d", NumPools, len(gs.Pools))
	}
	queued := make(map[uint32]struct{})
	slots := make(map[uint32]struct{}, NumPools)
	for _, entry := range gs.Pools {
		if entry.Slot >= NumPools {
			return ErrInvalidGenesis.Wrapf("pool slot %d out of range", entry.Slot)
		}
		if _, dup := slots[entry.Slot]; dup {
			return ErrInvalidGenesis.Wrapf("pool slot %d listed twice", entry.Slot)
		}
		slots[entry.Slot] = struct{}{}
		if err := entry.Pool.Validate(); err != nil {
			return fmt.Errorf("pool %d: %w", entry.Slot, err)
		}
		if uint32(entry.Pool.Len()) > gs.Params.MaxEvaluationsPerPeriod {
			return ErrInvalidGenesis.Wrapf("pool %d exceeds max evaluations per period", entry.Slot)
		}
		for _, id := range entry.Pool.Identities() {
			if _, dup := queued[id]; dup {
				return ErrInvalidGenesis.Wrapf("identity %d queued in two pools", id)
			}
			queued[id] = struct{}{}
		}
	}

	requested := make(map[uint32]struct{}, len(gs.Requests))
	for _, req := range gs.Requests {
		if err := req.Validate(); err != nil {
			return err
		}
		if _, dup := requested[req.Identity]; dup {
			return ErrInvalidGenesis.Wrapf("identity %d has two requests", req.Identity)
		}
		if _, ok := queued[req.Identity]; !ok {
			return ErrInvalidGenesis.Wrapf("request for %d has no pool entry", req.Identity)
		}
		requested[req.Identity] = struct{}{}
	}
	if len(requested) != len(queued) {
		return ErrInvalidGenesis.Wrapf("%d pool entries but %d requests", len(queued), len(requested))
	}

	seen := make(map[uint32]struct{}, len(gs.Statuses))
	for _, st := range gs.Statuses {
		if _, dup := seen[st.Identity]; dup {
			return ErrInvalidGenesis.Wrapf("identity %d has two statuses", st.Identity)
		}
		seen[st.Identity] = struct{}{}
		if st.ExpiresOn <= gs.CurrentPeriod {
			return ErrInvalidGenesis.Wrapf("status of %d already expired", st.Identity)
		}
	}
	return nil
}
