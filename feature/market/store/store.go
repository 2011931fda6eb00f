package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotDeployed is returned before the ledger has an operator.
	ErrNotDeployed = errors.New("ledger not deployed")
	// ErrAlreadyDeployed is returned when deploying with a different operator.
	ErrAlreadyDeployed = errors.New("ledger already deployed")
)

// Store implements ledger.Store, ledger.Bank and ledger.Emitter on top of gorm.
// Use it on a transaction handle so that one ledger operation commits or
// rolls back as a whole.
type Store struct {
	db *gorm.DB
}

// New wraps a gorm handle, usually the tx of db.Transaction.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate ledger tables: %w", err)
	}
	return nil
}

// Deploy records the operator. Deploying again with the same operator is a no-op.
func (s *Store) Deploy(ctx context.Context, operator ledger.Account) error {
	if !operator.Valid() {
		return fmt.Errorf("%w: %q", ledger.ErrInvalidOperator, operator)
	}
	operator = operator.Normalize()

	meta, err := s.meta(ctx, false)
	switch {
	case err == nil:
		if meta.Operator != string(operator) {
			return fmt.Errorf("%w with operator %s", ErrAlreadyDeployed, meta.Operator)
		}
		return nil
	case !errors.Is(err, ErrNotDeployed):
		return err
	}

	meta = models.LedgerMeta{
		ID:         models.MetaRowID,
		Operator:   string(operator),
		NextID:     0,
		DeployedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&meta).Error; err != nil {
		return fmt.Errorf("failed to deploy ledger: %w", err)
	}
	return nil
}

// Operator returns the deployed operator account.
func (s *Store) Operator(ctx context.Context) (ledger.Account, error) {
	meta, err := s.meta(ctx, false)
	if err != nil {
		return "", err
	}
	return ledger.Account(meta.Operator), nil
}

func (s *Store) meta(ctx context.Context, forUpdate bool) (models.LedgerMeta, error) {
	var meta models.LedgerMeta
	q := s.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("id = ?", models.MetaRowID).Take(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return meta, ErrNotDeployed
	}
	if err != nil {
		return meta, fmt.Errorf("failed to load ledger meta: %w", err)
	}
	return meta, nil
}

func (s *Store) AllocateID(ctx context.Context) (ledger.ItemID, error) {
	meta, err := s.meta(ctx, true)
	if err != nil {
		return 0, err
	}
	err = s.db.WithContext(ctx).Model(&models.LedgerMeta{}).
		Where("id = ?", models.MetaRowID).
		Update("next_id", gorm.Expr("next_id + 1")).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance item counter: %w", err)
	}
	return ledger.ItemID(meta.NextID), nil
}

func (s *Store) NextID(ctx context.Context) (ledger.ItemID, error) {
	meta, err := s.meta(ctx, false)
	if err != nil {
		return 0, err
	}
	return ledger.ItemID(meta.NextID), nil
}

func (s *Store) Item(ctx context.Context, id ledger.ItemID) (ledger.Item, bool, error) {
	var row models.Item
	err := s.db.WithContext(ctx).Where("id = ?", uint64(id)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.Item{}, false, nil
	}
	if err != nil {
		return ledger.Item{}, false, err
	}
	return toItem(row), true, nil
}

func (s *Store) PutItem(ctx context.Context, item ledger.Item) error {
	row := models.Item{
		ID:          uint64(item.ID),
		Owner:       string(item.Owner.Normalize()),
		ResourceURI: item.ResourceURI,
		ForSale:     item.ForSale,
		SalePrice:   item.SalePrice,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *Store) DeleteItem(ctx context.Context, id ledger.ItemID) error {
	return s.db.WithContext(ctx).Where("id = ?", uint64(id)).Delete(&models.Item{}).Error
}

// Items returns every live item ordered by id.
func (s *Store) Items(ctx context.Context) ([]ledger.Item, error) {
	var rows []models.Item
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items := make([]ledger.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, toItem(r))
	}
	return items, nil
}

func toItem(r models.Item) ledger.Item {
	return ledger.Item{
		ID:          ledger.ItemID(r.ID),
		Owner:       ledger.Account(r.Owner),
		ResourceURI: r.ResourceURI,
		ForSale:     r.ForSale,
		SalePrice:   r.SalePrice,
	}
}

// Settle applies a purchase settlement. Balances are read, computed and
// written back inside the surrounding transaction, which also undoes the
// debit if a credit fails.
func (s *Store) Settle(ctx context.Context, st ledger.Settlement) error {
	payer := st.Payer.Normalize()
	if !st.Payment.IsZero() {
		have, err := s.Balance(ctx, payer)
		if err != nil {
			return err
		}
		left, ok := have.Sub(st.Payment)
		if !ok {
			return fmt.Errorf("%w: %s cannot pay %s", ledger.ErrInsufficientFunds, payer, st.Payment)
		}
		if err := s.putBalance(ctx, payer, left); err != nil {
			return fmt.Errorf("failed to debit %s: %w", payer, err)
		}
	}
	if err := s.credit(ctx, st.Seller, st.Proceeds); err != nil {
		return err
	}
	return s.credit(ctx, st.Operator, st.Commission)
}

// Deposit credits funds to an account.
func (s *Store) Deposit(ctx context.Context, account ledger.Account, amount ledger.Amount) error {
	if !account.Valid() {
		return fmt.Errorf("%w: %q", ledger.ErrInvalidRecipient, account)
	}
	return s.credit(ctx, account, amount)
}

func (s *Store) credit(ctx context.Context, account ledger.Account, amount ledger.Amount) error {
	if amount.IsZero() {
		return nil
	}
	account = account.Normalize()
	have, err := s.Balance(ctx, account)
	if err != nil {
		return err
	}
	sum, ok := have.Add(amount)
	if !ok {
		return fmt.Errorf("%w: crediting %s to %s", ledger.ErrBalanceOverflow, amount, account)
	}
	if err := s.putBalance(ctx, account, sum); err != nil {
		return fmt.Errorf("failed to credit %s: %w", account, err)
	}
	return nil
}

func (s *Store) putBalance(ctx context.Context, account ledger.Account, amount ledger.Amount) error {
	row := models.Balance{Account: string(account), Amount: amount}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&row).Error
}

// Balance returns the funds held by account; unknown accounts hold zero.
func (s *Store) Balance(ctx context.Context, account ledger.Account) (ledger.Amount, error) {
	account = account.Normalize()
	var rows []models.Balance
	err := s.db.WithContext(ctx).Where("account = ?", string(account)).Limit(1).Find(&rows).Error
	if err != nil {
		return ledger.Amount{}, fmt.Errorf("failed to load balance of %s: %w", account, err)
	}
	if len(rows) == 0 {
		return ledger.Amount{}, nil
	}
	return rows[0].Amount, nil
}

// Emit appends an event to the journal table.
func (s *Store) Emit(ctx context.Context, ev ledger.Event) error {
	_, err := s.AppendEvent(ctx, ev)
	return err
}

// AppendEvent stores an event and returns the row with its sequence number.
func (s *Store) AppendEvent(ctx context.Context, ev ledger.Event) (models.Event, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to encode %s: %w", ev.EventName(), err)
	}
	row := models.Event{
		Name:      ev.EventName(),
		ItemID:    uint64(ev.Item()),
		Payload:   string(payload),
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Event{}, fmt.Errorf("failed to append %s: %w", ev.EventName(), err)
	}
	return row, nil
}

// Events returns up to limit events with a sequence number greater than after.
// A limit of zero or less returns all of them.
func (s *Store) Events(ctx context.Context, after uint64, limit int) ([]models.Event, error) {
	var rows []models.Event
	q := s.db.WithContext(ctx).Where("seq > ?", after).Order("seq")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return rows, nil
}
