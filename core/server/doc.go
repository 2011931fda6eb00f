// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines
// the listening port, the API key protecting every route and the marketplace
// operator account used when the ledger is deployed for the first time.
//
// # Usage
//
// This package is embedded by core/config and read by the start and deploy
// commands.
package server
