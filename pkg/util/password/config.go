package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/journihealth/journi_backend/config"
)

// Config holds bcrypt password hashing parameters
type Config struct {
	// Cost is the bcrypt work factor (10 default)
	Cost int
}

// DefaultConfig returns the default work factor for password hashing
func DefaultConfig() Config {
	return Config{Cost: DefaultCost}
}

// FromCentralConfig converts central config.PasswordConfig to package Config
func FromCentralConfig(c config.PasswordConfig) Config {
	cost := c.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return Config{Cost: cost}
}
