package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Operator is the marketplace account credited with sale commissions.
	// It is recorded once, when the ledger is deployed.
	Operator string `mapstructure:"operator" default:""`
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

// HasOperator reports whether a usable operator account is configured.
func (c Config) HasOperator() bool {
	op := strings.TrimSpace(c.Operator)
	return op != "" && !strings.EqualFold(op, zeroAddress)
}
