package configs

import (
	"time"

	"adboard/internal/core/domain"
)

// Ledger holds the connection settings for the ledger node and the program
// whose accounts this service manages.
type Ledger struct {
	// RPCAddr is the node's JSON-RPC HTTP endpoint.
	RPCAddr string `env:"RPC_ADDRESS" envDefault:"http://localhost:8899"`
	// WSAddr is the node's websocket endpoint for account subscriptions.
	WSAddr string `env:"WS_ADDRESS" envDefault:"ws://localhost:8900"`
	// AuthToken, when set, is sent as a bearer token on every RPC call.
	AuthToken string `env:"AUTH_TOKEN"`
	// Program is the base58 address of the marketplace program.
	Program string `env:"PROGRAM" envDefault:"7UwRFgiVTTbYpSgB4d5T8b7dkqWn9yZrKyUEXkAkY1uB"`
	// SyncInterval is the period between mirror sync passes. Zero disables
	// the syncer.
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"30s"`
}

// ProgramAddress parses the configured program address.
func (c Ledger) ProgramAddress() (domain.Address, error) {
	return domain.ParseAddress(c.Program)
}
