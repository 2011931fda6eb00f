package ledger

import (
	"encoding/json"
	"fmt"
)

// Event names as they appear in the journal.
const (
	EventItemMinted    = "ItemMinted"
	EventItemPurchased = "ItemPurchased"
	EventItemBurned    = "ItemBurned"
)

// Event is a lifecycle notification emitted after a successful operation.
type Event interface {
	EventName() string
	Item() ItemID
}

// ItemMinted is emitted exactly once per successful Mint. ForSale records
// the initial listing so a journal replay knows which items were purchasable.
type ItemMinted struct {
	To          Account `json:"to"`
	ID          ItemID  `json:"id"`
	ResourceURI string  `json:"resource_uri"`
	ForSale     bool    `json:"for_sale"`
}

func (ItemMinted) EventName() string { return EventItemMinted }
func (e ItemMinted) Item() ItemID    { return e.ID }

// ItemPurchased is emitted exactly once per successful Purchase.
type ItemPurchased struct {
	ID         ItemID  `json:"id"`
	Seller     Account `json:"seller"`
	Buyer      Account `json:"buyer"`
	Price      Amount  `json:"price"`
	Commission Amount  `json:"commission"`
}

func (ItemPurchased) EventName() string { return EventItemPurchased }
func (e ItemPurchased) Item() ItemID    { return e.ID }

// ItemBurned is emitted exactly once per successful Burn.
type ItemBurned struct {
	ID ItemID `json:"id"`
}

func (ItemBurned) EventName() string { return EventItemBurned }
func (e ItemBurned) Item() ItemID    { return e.ID }

// DecodeEvent rebuilds an event from its name and JSON payload.
func DecodeEvent(name string, payload []byte) (Event, error) {
	var (
		ev  Event
		err error
	)
	switch name {
	case EventItemMinted:
		var e ItemMinted
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventItemPurchased:
		var e ItemPurchased
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventItemBurned:
		var e ItemBurned
		err = json.Unmarshal(payload, &e)
		ev = e
	default:
		return nil, fmt.Errorf("unknown event %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return ev, nil
}
