package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID ItemID
	items  map[ItemID]Item
}

// NewMemoryStore creates an empty store whose first id is 0.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[ItemID]Item)}
}

func (s *MemoryStore) AllocateID(_ context.Context) (ItemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *MemoryStore) NextID(_ context.Context) (ItemID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

func (s *MemoryStore) Item(_ context.Context, id ItemID) (Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok, nil
}

func (s *MemoryStore) PutItem(_ context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len returns the number of live items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// MemoryBank is a Bank keeping balances in a map.
type MemoryBank struct {
	mu       sync.RWMutex
	balances map[Account]Amount
}

// NewMemoryBank creates a bank where every account starts at zero.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[Account]Amount)}
}

// Deposit credits an account. It fails with ErrBalanceOverflow, leaving the
// balance untouched, if the result would not fit in an Amount.
func (b *MemoryBank) Deposit(account Account, amount Amount) error {
	account = account.Normalize()
	b.mu.Lock()
	defer b.mu.Unlock()
	sum, ok := b.balances[account].Add(amount)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, account)
	}
	b.balances[account] = sum
	return nil
}

// Balance returns the funds held by account.
func (b *MemoryBank) Balance(account Account) Amount {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[account.Normalize()]
}

// Settle computes every new balance before writing any of them, so a failed
// settlement moves nothing.
func (b *MemoryBank) Settle(_ context.Context, s Settlement) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make(map[Account]Amount, 3)
	balance := func(a Account) Amount {
		if v, ok := next[a]; ok {
			return v
		}
		return b.balances[a]
	}

	payer := s.Payer.Normalize()
	have := balance(payer)
	debited, ok := have.Sub(s.Payment)
	if !ok {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, payer, have, s.Payment)
	}
	next[payer] = debited

	for _, credit := range []struct {
		to     Account
		amount Amount
	}{
		{s.Seller.Normalize(), s.Proceeds},
		{s.Operator.Normalize(), s.Commission},
	} {
		sum, ok := balance(credit.to).Add(credit.amount)
		if !ok {
			return fmt.Errorf("%w: %s", ErrBalanceOverflow, credit.to)
		}
		next[credit.to] = sum
	}

	for a, v := range next {
		b.balances[a] = v
	}
	return nil
}

// Recorder is an Emitter that keeps every event in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
