// Package tripcode generates the short public codes riders use to share and
// look up a trip.
package tripcode

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pkordes/tripshare/internal/domain"
)

const (
	// Alphabet is the symbol set codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the number of symbols in a code.
	Length = 5
	// MaxAttempts bounds how many candidates Generate tries before giving up.
	MaxAttempts = 10

	retryDelay = time.Millisecond
)

// Lookup is the slice of the trip repository the generator needs.
// FindByCode must return domain.ErrNotFound when no active trip has the code.
type Lookup interface {
	FindByCode(ctx context.Context, code string) (domain.Trip, error)
}

// Generator draws random codes and checks them against the store.
// The check is an optimization only: the store's unique index on active
// trip codes remains the authority.
type Generator struct {
	lookup   Lookup
	draw     func() string
	attempts uint64
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSource replaces the random draw, for tests.
func WithSource(draw func() string) Option {
	return func(g *Generator) { g.draw = draw }
}

// New constructs a Generator that checks candidates against lookup.
func New(lookup Lookup, opts ...Option) *Generator {
	g := &Generator{lookup: lookup, draw: Random, attempts: MaxAttempts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var errTaken = errors.New("trip code already in use")

// Generate returns a code that no active trip currently uses.
// After MaxAttempts collisions it fails with domain.ErrResourceExhausted.
// Lookup failures other than ErrNotFound abort immediately.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	var code string
	b := retry.WithMaxRetries(g.attempts-1, retry.NewConstant(retryDelay))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		candidate := g.draw()
		_, err := g.lookup.FindByCode(ctx, candidate)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			code = candidate
			return nil
		case err != nil:
			return fmt.Errorf("tripcode.Generate: lookup %q: %w", candidate, err)
		default:
			return retry.RetryableError(errTaken)
		}
	})
	if errors.Is(err, errTaken) {
		return "", domain.ResourceExhausted("could not generate a unique trip code after %d attempts", g.attempts)
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// Random draws Length symbols uniformly from Alphabet.
func Random() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = Alphabet[rand.IntN(len(Alphabet))]
	}
	return string(b)
}

// Valid reports whether code has the shape Generate produces.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
