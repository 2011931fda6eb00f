package ledger

import (
	"context"
	"fmt"
)

// Store persists items and the identifier counter.
type Store interface {
	// AllocateID returns the current counter value and increments it.
	AllocateID(ctx context.Context) (ItemID, error)
	// NextID returns the identifier the next mint will receive.
	NextID(ctx context.Context) (ItemID, error)
	// Item returns the item and whether it exists.
	Item(ctx context.Context, id ItemID) (Item, bool, error)
	// PutItem creates or replaces an item.
	PutItem(ctx context.Context, item Item) error
	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, id ItemID) error
}

// Bank moves funds for a purchase.
type Bank interface {
	// Settle debits the payer and credits seller and operator, all or nothing.
	// It returns ErrInsufficientFunds without moving anything if the payer cannot cover Payment.
	Settle(ctx context.Context, s Settlement) error
}

// Emitter receives events of committed operations.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Ledger is the item registry and sale engine.
type Ledger struct {
	operator Account
	store    Store
	bank     Bank
	events   Emitter
}

// New creates a ledger whose commissions are credited to operator.
func New(operator Account, store Store, bank Bank, events Emitter) (*Ledger, error) {
	operator = operator.Normalize()
	if !operator.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, operator)
	}
	return &Ledger{
		operator: operator,
		store:    store,
		bank:     bank,
		events:   events,
	}, nil
}

// Operator returns the account that receives commissions.
func (l *Ledger) Operator() Account {
	return l.operator
}

// NextID returns the identifier the next mint will receive.
func (l *Ledger) NextID(ctx context.Context) (ItemID, error) {
	return l.store.NextID(ctx)
}

// Mint creates a new item owned by to and returns its identifier.
// The resource URI and price are stored as given.
func (l *Ledger) Mint(ctx context.Context, to Account, resourceURI string, forSale bool, salePrice Amount) (ItemID, error) {
	to = to.Normalize()
	if !to.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}

	id, err := l.store.AllocateID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate item id: %w", err)
	}

	item := Item{
		ID:          id,
		Owner:       to,
		ResourceURI: resourceURI,
		ForSale:     forSale,
		SalePrice:   salePrice,
	}
	if err := l.store.PutItem(ctx, item); err != nil {
		return 0, fmt.Errorf("failed to store item %d: %w", id, err)
	}

	if err := l.emit(ctx, ItemMinted{To: to, ID: id, ResourceURI: resourceURI, ForSale: forSale}); err != nil {
		return 0, err
	}
	return id, nil
}

// Item returns a copy of the item.
func (l *Ledger) Item(ctx context.Context, id ItemID) (Item, error) {
	item, ok, err := l.store.Item(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("failed to load item %d: %w", id, err)
	}
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrNonexistentItem, id)
	}
	return item, nil
}

// OwnerOf returns the current owner of an item.
func (l *Ledger) OwnerOf(ctx context.Context, id ItemID) (Account, error) {
	item, err := l.Item(ctx, id)
	if err != nil {
		return "", err
	}
	return item.Owner, nil
}

// SalePrice returns the stored price regardless of the sale flag.
func (l *Ledger) SalePrice(ctx context.Context, id ItemID) (Amount, error) {
	item, err := l.Item(ctx, id)
	if err != nil {
		return Amount{}, err
	}
	return item.SalePrice, nil
}

// Purchase transfers a listed item to buyer against an exact payment.
// The seller receives the price minus commission, the operator the commission,
// and the item leaves the market. On error nothing changes.
func (l *Ledger) Purchase(ctx context.Context, id ItemID, payment Amount, buyer Account) (Settlement, error) {
	item, err := l.Item(ctx, id)
	if err != nil {
		return Settlement{}, err
	}
	buyer = buyer.Normalize()
	if !buyer.Valid() {
		return Settlement{}, fmt.Errorf("%w: %q", ErrInvalidBuyer, buyer)
	}
	if !item.ForSale {
		return Settlement{}, fmt.Errorf("%w: %d", ErrNotForSale, id)
	}
	if payment != item.SalePrice {
		return Settlement{}, fmt.Errorf("%w: got %s, price is %s", ErrIncorrectPayment, payment, item.SalePrice)
	}

	proceeds, commission := Split(item.SalePrice)
	s := Settlement{
		ItemID:     id,
		Payer:      buyer,
		Payment:    payment,
		Seller:     item.Owner,
		Proceeds:   proceeds,
		Operator:   l.operator,
		Commission: commission,
	}
	if err := l.bank.Settle(ctx, s); err != nil {
		return Settlement{}, fmt.Errorf("failed to settle purchase of item %d: %w", id, err)
	}

	item.Owner = buyer
	item.ForSale = false
	if err := l.store.PutItem(ctx, item); err != nil {
		return Settlement{}, fmt.Errorf("failed to store item %d: %w", id, err)
	}

	if err := l.emit(ctx, ItemPurchased{
		ID:         id,
		Seller:     s.Seller,
		Buyer:      buyer,
		Price:      item.SalePrice,
		Commission: commission,
	}); err != nil {
		return Settlement{}, err
	}
	return s, nil
}

// Burn permanently removes an item. Only the current owner may burn it.
func (l *Ledger) Burn(ctx context.Context, id ItemID, caller Account) error {
	item, err := l.Item(ctx, id)
	if err != nil {
		return err
	}
	if caller.Normalize() != item.Owner.Normalize() {
		return fmt.Errorf("%w: %q does not own item %d", ErrNotAuthorized, caller, id)
	}

	if err := l.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return l.emit(ctx, ItemBurned{ID: id})
}

func (l *Ledger) emit(ctx context.Context, ev Event) error {
	if l.events == nil {
		return nil
	}
	if err := l.events.Emit(ctx, ev); err != nil {
		return fmt.Errorf("failed to emit %s: %w", ev.EventName(), err)
	}
	return nil
}
