package events

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"sync"
	"time"
)

// ErrInvalidChoice is returned by sources asked to choose among fewer than one option.
var ErrInvalidChoice = errors.New("choice count must be positive")

// RandomSource supplies entropy for event draws.
// Implementations may fail; the generator treats failure as "no event".
type RandomSource interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() (float64, error)

	// IntN returns a uniform value in [0, n).
	IntN(n int) (int, error)
}

// MathSource is a PCG-backed source. Safe for concurrent use.
type MathSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewMathSource creates a source. Seed 0 seeds from the clock.
func NewMathSource(seed uint64) *MathSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &MathSource{
		rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Float64 returns a uniform value in [0, 1).
func (s *MathSource) Float64() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64(), nil
}

// IntN returns a uniform value in [0, n).
func (s *MathSource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidChoice
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n), nil
}

// CryptoSource draws from the operating system's entropy pool.
type CryptoSource struct{}

// Float64 returns a uniform value in [0, 1) using 53 random bits.
func (CryptoSource) Float64() (float64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read entropy: %w", err)
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53), nil
}

// IntN returns a uniform value in [0, n).
func (CryptoSource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidChoice
	}
	// Rejection sampling keeps the draw unbiased.
	limit := ^uint64(0) - (^uint64(0) % uint64(n))
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("read entropy: %w", err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % uint64(n)), nil
		}
	}
}

var (
	_ RandomSource = (*MathSource)(nil)
	_ RandomSource = CryptoSource{}
)
