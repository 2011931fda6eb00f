// Package store persists the marketplace ledger with gorm.
//
// A Store wraps a gorm handle and implements the ledger's Store, Bank and
// Emitter interfaces. The market service creates one per transaction:
//
//	err := db.Transaction(func(tx *gorm.DB) error {
//	    st := store.New(tx)
//	    l, err := ledger.New(operator, st, st, st)
//	    ...
//	})
//
// Balances are debited with a conditional UPDATE so an account never goes
// negative, and credited with an upsert.
package store
