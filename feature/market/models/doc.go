// Package models contains the gorm models of the marketplace ledger.
//
// Items hold live entries only; a burned item's row is deleted while its
// identifier stays consumed through LedgerMeta.NextID. Event rows form the
// append-only journal from which ownership can be replayed.
package models
