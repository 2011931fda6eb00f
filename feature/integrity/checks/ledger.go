package checks

import (
	"context"
	"fmt"

	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"gorm.io/gorm"
)

// LedgerReport is the result of replaying the event journal against the item table.
type LedgerReport struct {
	Operator  string   `json:"operator"`
	NextID    uint64   `json:"next_id"`
	Items     int      `json:"items"`
	Minted    int      `json:"minted"`
	Purchased int      `json:"purchased"`
	Burned    int      `json:"burned"`
	Matched   bool     `json:"matched"`
	Issues    []string `json:"issues"`
}

func (r *LedgerReport) issue(format string, args ...any) {
	r.Matched = false
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

type replayed struct {
	owner     ledger.Account
	listed    bool
	purchased bool
}

// CheckLedger verifies the ledger invariants: every live item has a valid
// owner, ids are below the counter and were minted exactly once, and
// replaying the journal yields the same owners and sale flags as the item table.
func CheckLedger(ctx context.Context, db *gorm.DB) (*LedgerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	st := store.New(db)

	operator, err := st.Operator(ctx)
	if err != nil {
		return nil, err
	}
	next, err := st.NextID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := st.Items(ctx)
	if err != nil {
		return nil, err
	}
	events, err := st.Events(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	report := &LedgerReport{
		Operator: string(operator),
		NextID:   uint64(next),
		Items:    len(items),
		Matched:  true,
		Issues:   []string{},
	}

	state := make(map[ledger.ItemID]*replayed)
	minted := make(map[ledger.ItemID]bool)
	for _, row := range events {
		ev, err := ledger.DecodeEvent(row.Name, []byte(row.Payload))
		if err != nil {
			report.issue("event %d: %v", row.Seq, err)
			continue
		}
		switch e := ev.(type) {
		case ledger.ItemMinted:
			report.Minted++
			if minted[e.ID] {
				report.issue("event %d: item %d minted twice", row.Seq, e.ID)
			}
			minted[e.ID] = true
			state[e.ID] = &replayed{owner: e.To, listed: e.ForSale}
		case ledger.ItemPurchased:
			report.Purchased++
			cur, ok := state[e.ID]
			if !ok {
				report.issue("event %d: purchase of nonexistent item %d", row.Seq, e.ID)
				continue
			}
			if cur.owner != e.Seller {
				report.issue("event %d: item %d sold by %s but owned by %s", row.Seq, e.ID, e.Seller, cur.owner)
			}
			if !cur.listed {
				report.issue("event %d: item %d purchased while not for sale", row.Seq, e.ID)
			}
			if want := ledger.Commission(e.Price); e.Commission != want {
				report.issue("event %d: commission %s, expected %s", row.Seq, e.Commission, want)
			}
			cur.owner = e.Buyer
			cur.listed = false
			cur.purchased = true
		case ledger.ItemBurned:
			report.Burned++
			if _, ok := state[e.ID]; !ok {
				report.issue("event %d: burn of nonexistent item %d", row.Seq, e.ID)
			}
			delete(state, e.ID)
		}
	}

	if uint64(report.Minted) != report.NextID {
		report.issue("counter is %d but %d mint events exist", report.NextID, report.Minted)
	}

	live := make(map[ledger.ItemID]bool, len(items))
	for _, item := range items {
		live[item.ID] = true
		if !item.Owner.Valid() {
			report.issue("item %d has no owner", item.ID)
		}
		if uint64(item.ID) >= report.NextID {
			report.issue("item %d is not below the counter %d", item.ID, report.NextID)
		}

		want, ok := state[item.ID]
		if !ok {
			report.issue("item %d has no live history in the journal", item.ID)
			continue
		}
		if want.owner != item.Owner {
			report.issue("item %d owned by %s, journal says %s", item.ID, item.Owner, want.owner)
		}
		switch {
		case item.ForSale && want.purchased:
			report.issue("item %d is listed after a purchase", item.ID)
		case item.ForSale != want.listed:
			report.issue("item %d sale flag is %t, journal says %t", item.ID, item.ForSale, want.listed)
		}
	}
	for id := range state {
		if !live[id] {
			report.issue("item %d is live in the journal but missing from the ledger", id)
		}
	}

	return report, nil
}
