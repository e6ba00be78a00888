// Package authcode derives time-window authentication codes from shared secrets.
package authcode

import (
	"errors"
	"fmt"
	"time"
)

// Supported values for the codes.algorithm setting.
const (
	AlgorithmSteam = "steam"
	AlgorithmTOTP  = "totp"
)

// DefaultPeriod is the length of one code time-step.
const DefaultPeriod = 30 * time.Second

// ErrInvalidSecret is returned when a shared secret cannot be decoded.
var ErrInvalidSecret = errors.New("invalid shared secret")

// Generator maps a shared secret to the code valid at a given instant.
// Implementations are pure: the same secret inside the same time-step
// always yields the same code.
type Generator interface {
	Generate(secret string, at time.Time) (string, error)
}

// Options configures New.
type Options struct {
	Algorithm string
	Digits    int
	Period    time.Duration
}

// New returns the Generator for opts.Algorithm.
func New(opts Options) (Generator, error) {
	period := opts.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	switch opts.Algorithm {
	case AlgorithmSteam, "":
		return Steam{Period: period}, nil
	case AlgorithmTOTP:
		gen, err := NewTOTP(opts.Digits, period)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unsupported code algorithm %q", opts.Algorithm)
	}
}

// counterAt returns the time-step index for t.
func counterAt(t time.Time, period time.Duration) uint64 {
	return uint64(t.Unix()) / uint64(period/time.Second) //nolint:gosec // unix time is positive
}
