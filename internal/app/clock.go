package app

import (
	"math/rand/v2"
	"time"
)

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements ports.Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// MathRandom draws from the process-wide generator in math/rand/v2.
type MathRandom struct{}

// IntN implements ports.RandomSource.
func (MathRandom) IntN(n int) int { return rand.IntN(n) }
