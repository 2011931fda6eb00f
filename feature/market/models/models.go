package models

import (
	"time"

	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
)

// LedgerMeta is the single row recording deployment state.
type LedgerMeta struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	Operator   string    `gorm:"column:operator;type:varchar(128);not null"`
	NextID     uint64    `gorm:"column:next_id;not null"`
	DeployedAt time.Time `gorm:"column:deployed_at"`
}

// TableName overrides the table name.
func (LedgerMeta) TableName() string {
	return "ledger_meta"
}

// MetaRowID is the primary key of the only LedgerMeta row.
const MetaRowID = 1

// Item is a live ledger item. Burned items are deleted.
type Item struct {
	ID          uint64        `gorm:"column:id;primaryKey;autoIncrement:false"`
	Owner       string        `gorm:"column:owner;type:varchar(128);not null;index"`
	ResourceURI string        `gorm:"column:resource_uri;type:text"`
	ForSale     bool          `gorm:"column:for_sale;not null"`
	SalePrice   ledger.Amount `gorm:"column:sale_price;type:varchar(78);not null"`
	UpdatedAt   time.Time     `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Item) TableName() string {
	return "items"
}

// Balance holds the funds of one account. Amounts are stored as decimal
// strings; arithmetic happens in Go.
type Balance struct {
	Account string        `gorm:"column:account;type:varchar(128);primaryKey"`
	Amount  ledger.Amount `gorm:"column:amount;type:varchar(78);not null"`
}

// TableName overrides the table name.
func (Balance) TableName() string {
	return "balances"
}

// Event is one journal entry. Seq orders events globally.
type Event struct {
	Seq       uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:varchar(64);not null;index"`
	ItemID    uint64    `gorm:"column:item_id;not null;index"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (Event) TableName() string {
	return "ledger_events"
}

// All returns every model, in migration order.
func All() []any {
	return []any{&LedgerMeta{}, &Item{}, &Balance{}, &Event{}}
}
