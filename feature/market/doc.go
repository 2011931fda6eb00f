// Package market implements the marketplace feature.
//
// It binds the ledger state machine (package ledger) to the gorm store, the
// object storage journal and the HTTP API.
//
// # Components
//
//   - Service: serialises writes, runs each operation in a transaction and publishes events after commit.
//   - Handler: exposes the HTTP endpoints below.
//   - Feature: registers the feature with the loader.
//
// # HTTP Endpoints
//
//   - POST /market/items : Mint an item.
//   - GET /market/items/:id : Item details (also /owner and /price).
//   - POST /market/items/:id/purchase : Buy a listed item.
//   - POST /market/items/:id/burn : Burn an item (owner only).
//   - GET /market/accounts/:account/balance : Account funds.
//   - POST /market/accounts/:account/deposit : Credit funds.
//   - GET /market/operator : Operator, commission rate and next id.
//   - GET /market/events : Journal entries (?after=&limit=).
package market
