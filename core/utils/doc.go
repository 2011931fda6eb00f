// Package utils provides common helpers shared by the HTTP handlers and CLI
// commands, mainly conversion between ether-style decimal strings and the
// smallest currency unit stored by the ledger.
package utils
