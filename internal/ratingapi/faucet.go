package ratingapi

import (
	"errors"
	"fmt"

	"github.com/tos-network/ratingd/params"
	"golang.org/x/time/rate"
)

var (
	errFaucetDisabled = errors.New("faucet disabled")
	errFaucetLimited  = errors.New("faucet rate limit exceeded")
	errFaucetAmount   = errors.New("faucet amount out of range")
)

// FaucetConfig controls the development airdrop endpoint.
type FaucetConfig struct {
	Enabled     bool    `toml:",omitempty"`
	MaxLamports uint64  `toml:",omitempty"` // Largest single airdrop.
	Rate        float64 `toml:",omitempty"` // Airdrops per second, process wide.
	Burst       int     `toml:",omitempty"`
}

// DefaultFaucetConfig is off; development nodes turn it on.
var DefaultFaucetConfig = FaucetConfig{
	Enabled:     false,
	MaxLamports: 10 * params.LamportsPerTOS,
	Rate:        1,
	Burst:       5,
}

type faucet struct {
	cfg     FaucetConfig
	limiter *rate.Limiter
}

func newFaucet(cfg FaucetConfig) *faucet {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &faucet{cfg: cfg, limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)}
}

// admit decides whether an airdrop of lamports may proceed now.
func (f *faucet) admit(lamports uint64) error {
	if !f.cfg.Enabled {
		return errFaucetDisabled
	}
	if lamports == 0 || lamports > f.cfg.MaxLamports {
		return fmt.Errorf("%w: %d not in [1, %d]", errFaucetAmount, lamports, f.cfg.MaxLamports)
	}
	if !f.limiter.Allow() {
		return errFaucetLimited
	}
	return nil
}
