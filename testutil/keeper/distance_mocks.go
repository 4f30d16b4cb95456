package keeper

import (
	"context"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"

	"github.com/paw-chain/distance/x/distance/types"
)

// MockBankKeeper is an in-memory ledger. Module accounts are addressed by
// their derived module address, so balances can be checked from either side.
type MockBankKeeper struct {
	balances map[string]sdk.Coins
	burned   sdk.Coins
	// FailModuleTransfers makes every transfer out of a module fail.
	FailModuleTransfers bool
}

func NewMockBankKeeper() *MockBankKeeper {
	return &MockBankKeeper{balances: make(map[string]sdk.Coins)}
}

// Fund credits addr out of thin air.
func (b *MockBankKeeper) Fund(addr sdk.AccAddress, coins ...sdk.Coin) {
	b.balances[addr.String()] = b.balances[addr.String()].Add(coins...)
}

func (b *MockBankKeeper) Balance(addr sdk.AccAddress, denom string) sdkmath.Int {
	return b.balances[addr.String()].AmountOf(denom)
}

func (b *MockBankKeeper) ModuleBalance(module, denom string) sdkmath.Int {
	return b.Balance(authtypes.NewModuleAddress(module), denom)
}

func (b *MockBankKeeper) Burned(denom string) sdkmath.Int {
	return b.burned.AmountOf(denom)
}

// Supply is the sum of every balance plus burned coins, which transfers
// between accounts never change.
func (b *MockBankKeeper) Supply(denom string) sdkmath.Int {
	total := b.Burned(denom)
	keys := make([]string, 0, len(b.balances))
	for k := range b.balances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		total = total.Add(b.balances[k].AmountOf(denom))
	}
	return total
}

func (b *MockBankKeeper) move(from, to sdk.AccAddress, amt sdk.Coins) error {
	balance := b.balances[from.String()]
	remaining, negative := balance.SafeSub(amt...)
	if negative {
		return fmt.Errorf("insufficient funds: %s < %s", balance, amt)
	}
	b.balances[from.String()] = remaining
	if to != nil {
		b.balances[to.String()] = b.balances[to.String()].Add(amt...)
	}
	return nil
}

func (b *MockBankKeeper) SendCoinsFromAccountToModule(_ context.Context, sender sdk.AccAddress, module string, amt sdk.Coins) error {
	return b.move(sender, authtypes.NewModuleAddress(module), amt)
}

func (b *MockBankKeeper) SendCoinsFromModuleToAccount(_ context.Context, module string, recipient sdk.AccAddress, amt sdk.Coins) error {
	if b.FailModuleTransfers {
		return fmt.Errorf("module transfers disabled")
	}
	return b.move(authtypes.NewModuleAddress(module), recipient, amt)
}

func (b *MockBankKeeper) SendCoinsFromModuleToModule(_ context.Context, sender, recipient string, amt sdk.Coins) error {
	if b.FailModuleTransfers {
		return fmt.Errorf("module transfers disabled")
	}
	return b.move(authtypes.NewModuleAddress(sender), authtypes.NewModuleAddress(recipient), amt)
}

func (b *MockBankKeeper) BurnCoins(_ context.Context, module string, amt sdk.Coins) error {
	if b.FailModuleTransfers {
		return fmt.Errorf("module transfers disabled")
	}
	if err := b.move(authtypes.NewModuleAddress(module), nil, amt); err != nil {
		return err
	}
	b.burned = b.burned.Add(amt...)
	return nil
}

func (b *MockBankKeeper) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, b.Balance(addr, denom))
}

// MockStakingKeeper returns validators registered with SetBonded.
type MockStakingKeeper struct {
	validators map[string]stakingtypes.Validator
}

func NewMockStakingKeeper() *MockStakingKeeper {
	return &MockStakingKeeper{validators: make(map[string]stakingtypes.Validator)}
}

func (s *MockStakingKeeper) SetBonded(addr sdk.ValAddress, bonded bool) {
	status := stakingtypes.Unbonded
	if bonded {
		status = stakingtypes.Bonded
	}
	s.validators[addr.String()] = stakingtypes.Validator{
		OperatorAddress: addr.String(),
		Status:          status,
		Tokens:          sdkmath.NewInt(1_000_000),
	}
}

func (s *MockStakingKeeper) GetValidator(_ context.Context, addr sdk.ValAddress) (stakingtypes.Validator, error) {
	val, ok := s.validators[addr.String()]
	if !ok {
		return stakingtypes.Validator{}, stakingtypes.ErrNoValidatorFound
	}
	return val, nil
}

// MockIdentityKeeper maps accounts to identities.
type MockIdentityKeeper struct {
	owners     map[string]uint32
	members    map[uint32]bool
	ineligible map[uint32]bool
	received   map[uint32][]uint32
}

func NewMockIdentityKeeper() *MockIdentityKeeper {
	return &MockIdentityKeeper{
		owners:     make(map[string]uint32),
		members:    make(map[uint32]bool),
		ineligible: make(map[uint32]bool),
		received:   make(map[uint32][]uint32),
	}
}

// SetMember adds or removes identity from the member set without an owner.
func (m *MockIdentityKeeper) SetMember(identity uint32, member bool) {
	m.members[identity] = member
}

// Certify records that issuer certified receiver.
func (m *MockIdentityKeeper) Certify(issuer, receiver uint32) {
	m.received[receiver] = append(m.received[receiver], issuer)
}

func (m *MockIdentityKeeper) SetIdentity(addr sdk.AccAddress, identity uint32, member bool) {
	m.owners[addr.String()] = identity
	m.members[identity] = member
}

func (m *MockIdentityKeeper) SetIneligible(identity uint32) {
	m.ineligible[identity] = true
}

func (m *MockIdentityKeeper) IdentityIndexOf(_ context.Context, addr sdk.AccAddress) (uint32, bool) {
	id, ok := m.owners[addr.String()]
	return id, ok
}

func (m *MockIdentityKeeper) IsMember(_ context.Context, identity uint32) bool {
	return m.members[identity]
}

func (m *MockIdentityKeeper) CheckRequestEvaluation(_ context.Context, identity uint32) error {
	if m.ineligible[identity] {
		return fmt.Errorf("identity %d is not eligible", identity)
	}
	return nil
}

// MockDistanceHooks records verdict notifications.
type MockDistanceHooks struct {
	Valid   []uint32
	Invalid []uint32
	// Fail makes every hook return an error.
	Fail bool
}

var _ types.DistanceHooks = (*MockDistanceHooks)(nil)

func (h *MockDistanceHooks) OnValidDistanceStatus(_ context.Context, identity uint32) error {
	if h.Fail {
		return fmt.Errorf("hook rejected %d", identity)
	}
	h.Valid = append(h.Valid, identity)
	return nil
}

func (h *MockDistanceHooks) OnInvalidDistanceStatus(_ context.Context, identity uint32) error {
	if h.Fail {
		return fmt.Errorf("hook rejected %d", identity)
	}
	h.Invalid = append(h.Invalid, identity)
	return nil
}

func (m *MockIdentityKeeper) Members(_ context.Context) ([]uint32, error) {
	out := make([]uint32, 0, len(m.members))
	for identity, member := range m.members {
		if member {
			out = append(out, identity)
		}
	}
	return out, nil
}

func (m *MockIdentityKeeper) ReceivedCertifications(_ context.Context) (map[uint32][]uint32, error) {
	out := make(map[uint32][]uint32, len(m.received))
	for receiver, issuers := range m.received {
		out[receiver] = append([]uint32(nil), issuers...)
	}
	return out, nil
}

var (
	_ types.IdentityKeeper = (*MockIdentityKeeper)(nil)
	_ types.WotReader      = (*MockIdentityKeeper)(nil)
)
