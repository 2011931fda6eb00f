// Package ledger implements the item ledger and its sale state machine.
//
// A Ledger tracks uniquely identified items, who owns them, whether they are
// listed for sale and at which price. It mints new items with sequential
// identifiers, settles purchases (splitting the price between the seller and
// the marketplace operator) and burns items permanently.
//
// # Collaborators
//
// The Ledger does not hold state itself. It works against three interfaces:
//
//   - Store: item records and the identifier counter.
//   - Bank: applies a Settlement (payer debit, seller and operator credits) atomically.
//   - Emitter: receives lifecycle events after a successful operation.
//
// MemoryStore, MemoryBank and Recorder are in-process implementations used by
// tests and by callers that do not need persistence. The gorm-backed
// implementations live in the store package.
//
// # Item lifecycle
//
//	[nonexistent] --Mint--> [owned, for sale or not]
//	[owned, for sale] --Purchase--> [owned by buyer, not for sale]
//	[owned] --Burn--> [nonexistent] (terminal, the id is never reused)
//
// There is no operation that lists an item again once its sale flag is false.
//
// # Concurrency
//
// A Ledger performs no locking. Callers must run state-changing operations one
// at a time; market.Service provides that ordering.
package ledger
