// Package journal mirrors the ledger event table into object storage.
//
// Every committed event becomes one object, events/<seq>.json, holding an
// Entry document. Indexers read the bucket in key order to follow the ledger
// without database access. Publishing happens after the database commit, so a
// failed upload leaves a gap that the integrity journal check reports and
// repairs.
package journal
