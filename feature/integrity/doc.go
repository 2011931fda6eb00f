// Package integrity provides health checks for the marketplace ledger.
//
// # Checks Provided
//
//   - Structure: Checks that the journal bucket and its events/ folder exist.
//   - Schema: Validates the database tables against the ledger models (columns, types).
//   - Ledger: Replays the event journal and compares owners, sale flags and the id counter with the item table.
//   - Journal: Lists events stored in the database but missing from the bucket.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/ledger : Runs ledger replay check.
//   - GET /integrity/journal : Runs journal check (supports ?fix=true).
package integrity
