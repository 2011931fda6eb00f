package market

import (
	"context"
	"sync"

	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/models"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs ledger operations against the database.
//
// Mint, Purchase, Burn and Deposit are serialised by a mutex and each runs in
// one transaction. Reads use the database directly and see committed state.
type Service struct {
	db        *gorm.DB
	publisher *journal.Publisher
	logger    *zap.Logger

	mu sync.Mutex
}

// NewService creates a market service. publisher may be nil to disable the
// object storage journal.
func NewService(db *gorm.DB, publisher *journal.Publisher, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		logger:    logger,
	}
}

// MintRequest holds the arguments of Mint.
type MintRequest struct {
	To          ledger.Account
	ResourceURI string
	ForSale     bool
	SalePrice   ledger.Amount
}

// Deploy records the marketplace operator.
func (s *Service) Deploy(ctx context.Context, operator ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.New(s.db).Deploy(ctx, operator); err != nil {
		return err
	}
	s.logger.Info("Ledger deployed", zap.String("operator", string(operator)))
	return nil
}

// Operator returns the deployed operator account.
func (s *Service) Operator(ctx context.Context) (ledger.Account, error) {
	return store.New(s.db).Operator(ctx)
}

// Mint creates a new item and returns its id.
func (s *Service) Mint(ctx context.Context, req MintRequest) (ledger.ItemID, error) {
	var id ledger.ItemID
	err := s.apply(ctx, func(l *ledger.Ledger) error {
		var err error
		id, err = l.Mint(ctx, req.To, req.ResourceURI, req.ForSale, req.SalePrice)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Item minted",
		zap.Uint64("id", uint64(id)),
		zap.String("to", string(req.To)),
		zap.Bool("for_sale", req.ForSale),
	)
	return id, nil
}

// Purchase buys a listed item for buyer with an exact payment.
func (s *Service) Purchase(ctx context.Context, id ledger.ItemID, payment ledger.Amount, buyer ledger.Account) (ledger.Settlement, error) {
	var settlement ledger.Settlement
	err := s.apply(ctx, func(l *ledger.Ledger) error {
		var err error
		settlement, err = l.Purchase(ctx, id, payment, buyer)
		return err
	})
	if err != nil {
		return ledger.Settlement{}, err
	}
	s.logger.Info("Item purchased",
		zap.Uint64("id", uint64(id)),
		zap.String("seller", string(settlement.Seller)),
		zap.String("buyer", string(buyer)),
		zap.Stringer("commission", settlement.Commission),
	)
	return settlement, nil
}

// Burn destroys an item on behalf of caller.
func (s *Service) Burn(ctx context.Context, id ledger.ItemID, caller ledger.Account) error {
	err := s.apply(ctx, func(l *ledger.Ledger) error {
		return l.Burn(ctx, id, caller)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Item burned", zap.Uint64("id", uint64(id)))
	return nil
}

// Deposit credits funds to an account and returns the new balance.
func (s *Service) Deposit(ctx context.Context, account ledger.Account, amount ledger.Amount) (ledger.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance ledger.Amount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		if err := st.Deposit(ctx, account, amount); err != nil {
			return err
		}
		var err error
		balance, err = st.Balance(ctx, account)
		return err
	})
	if err != nil {
		return ledger.Amount{}, err
	}
	return balance, nil
}

// Item returns an item.
func (s *Service) Item(ctx context.Context, id ledger.ItemID) (ledger.Item, error) {
	l, err := s.reader(ctx)
	if err != nil {
		return ledger.Item{}, err
	}
	return l.Item(ctx, id)
}

// OwnerOf returns the current owner of an item.
func (s *Service) OwnerOf(ctx context.Context, id ledger.ItemID) (ledger.Account, error) {
	l, err := s.reader(ctx)
	if err != nil {
		return "", err
	}
	return l.OwnerOf(ctx, id)
}

// SalePrice returns the stored sale price of an item.
func (s *Service) SalePrice(ctx context.Context, id ledger.ItemID) (ledger.Amount, error) {
	l, err := s.reader(ctx)
	if err != nil {
		return ledger.Amount{}, err
	}
	return l.SalePrice(ctx, id)
}

// NextID returns the id the next mint will receive.
func (s *Service) NextID(ctx context.Context) (ledger.ItemID, error) {
	return store.New(s.db).NextID(ctx)
}

// Balance returns the funds held by an account.
func (s *Service) Balance(ctx context.Context, account ledger.Account) (ledger.Amount, error) {
	return store.New(s.db).Balance(ctx, account)
}

// Events returns journal rows after the given sequence number.
func (s *Service) Events(ctx context.Context, after uint64, limit int) ([]models.Event, error) {
	return store.New(s.db).Events(ctx, after, limit)
}

func (s *Service) reader(ctx context.Context) (*ledger.Ledger, error) {
	st := store.New(s.db)
	operator, err := st.Operator(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.New(operator, st, st, nil)
}

// apply runs fn on a ledger bound to a fresh transaction and publishes the
// emitted events once the transaction has committed.
func (s *Service) apply(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &recorder{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := store.New(tx)
		operator, err := st.Operator(ctx)
		if err != nil {
			return err
		}
		rec.store = st
		l, err := ledger.New(operator, st, st, rec)
		if err != nil {
			return err
		}
		return fn(l)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, rec.events)
	return nil
}

func (s *Service) publish(ctx context.Context, events []models.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		seqs := make([]uint64, 0, len(events))
		for _, ev := range events {
			seqs = append(seqs, ev.Seq)
		}
		s.logger.Warn("Failed to publish ledger events", zap.Uint64s("seq", seqs), zap.Error(err))
	}
}

// recorder appends events to the transaction's journal and remembers the rows.
type recorder struct {
	store  *store.Store
	events []models.Event
}

func (r *recorder) Emit(ctx context.Context, ev ledger.Event) error {
	row, err := r.store.AppendEvent(ctx, ev)
	if err != nil {
		return err
	}
	r.events = append(r.events, row)
	return nil
}
