package tripcode_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripshare/internal/domain"
	"github.com/pkordes/tripshare/internal/tripcode"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{5}$`)

// setLookup is an in-memory Lookup backed by a set of taken codes.
type setLookup struct {
	taken map[string]bool
	calls int
	err   error
}

func (s *setLookup) FindByCode(_ context.Context, code string) (domain.Trip, error) {
	s.calls++
	if s.err != nil {
		return domain.Trip{}, s.err
	}
	if s.taken[code] {
		return domain.Trip{TripCode: code}, nil
	}
	return domain.Trip{}, domain.ErrNotFound
}

var _ tripcode.Lookup = (*setLookup)(nil)

// sequence returns a draw function that yields codes in order, then repeats the last.
func sequence(codes ...string) func() string {
	i := 0
	return func() string {
		c := codes[min(i, len(codes)-1)]
		i++
		return c
	}
}

func TestRandom_Shape(t *testing.T) {
	for range 1000 {
		c := tripcode.Random()
		require.Regexp(t, codePattern, c)
		require.True(t, tripcode.Valid(c))
	}
}

func TestRandom_UsesWholeAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	for range 2000 {
		for _, r := range tripcode.Random() {
			seen[r] = true
		}
	}
	assert.Len(t, seen, len(tripcode.Alphabet))
}

func TestValid(t *testing.T) {
	assert.True(t, tripcode.Valid("AB12Z"))
	assert.False(t, tripcode.Valid("ab12z"))
	assert.False(t, tripcode.Valid("AB12"))
	assert.False(t, tripcode.Valid("AB12Z9"))
	assert.False(t, tripcode.Valid("AB-2Z"))
}

func TestGenerate_FirstMiss(t *testing.T) {
	lookup := &setLookup{taken: map[string]bool{}}
	g := tripcode.New(lookup, tripcode.WithSource(sequence("AAAAA")))

	code, err := g.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "AAAAA", code)
	assert.Equal(t, 1, lookup.calls)
}

func TestGenerate_RetriesPastCollisions(t *testing.T) {
	lookup := &setLookup{taken: map[string]bool{"AAAAA": true, "BBBBB": true}}
	g := tripcode.New(lookup, tripcode.WithSource(sequence("AAAAA", "BBBBB", "CCCCC")))

	code, err := g.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "CCCCC", code)
	assert.Equal(t, 3, lookup.calls)
}

func TestGenerate_ExhaustsAfterMaxAttempts(t *testing.T) {
	lookup := &setLookup{taken: map[string]bool{"ZZZZZ": true}}
	g := tripcode.New(lookup, tripcode.WithSource(sequence("ZZZZZ")))

	_, err := g.Generate(context.Background())

	require.ErrorIs(t, err, domain.ErrResourceExhausted)
	assert.Equal(t, tripcode.MaxAttempts, lookup.calls)
}

func TestGenerate_SucceedsOnLastAttempt(t *testing.T) {
	taken := []string{"A0000", "A0001", "A0002", "A0003", "A0004", "A0005", "A0006", "A0007", "A0008"}
	lookup := &setLookup{taken: map[string]bool{}}
	for _, c := range taken {
		lookup.taken[c] = true
	}
	g := tripcode.New(lookup, tripcode.WithSource(sequence(append(taken, "FREE1")...)))

	code, err := g.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "FREE1", code)
	assert.Equal(t, 10, lookup.calls)
}

func TestGenerate_LookupErrorAborts(t *testing.T) {
	dbErr := errors.New("connection reset")
	lookup := &setLookup{err: dbErr}
	g := tripcode.New(lookup)

	_, err := g.Generate(context.Background())

	require.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, domain.ErrResourceExhausted)
	assert.Equal(t, 1, lookup.calls)
}

// TestGenerate_NeverReturnsTakenCode draws 10,000 codes against a store
// pre-seeded with 100 codes; none of the returned codes may be taken.
func TestGenerate_NeverReturnsTakenCode(t *testing.T) {
	lookup := &setLookup{taken: map[string]bool{}}
	for len(lookup.taken) < 100 {
		lookup.taken[tripcode.Random()] = true
	}
	g := tripcode.New(lookup)

	for range 10_000 {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		require.Regexp(t, codePattern, code)
		require.False(t, lookup.taken[code], "generator returned taken code %s", code)
	}
}

// TestGenerate_ForcedCollisionsAgainstSeededStore feeds the generator seeded
// codes first, so every returned code proves the collision check ran.
func TestGenerate_ForcedCollisionsAgainstSeededStore(t *testing.T) {
	lookup := &setLookup{taken: map[string]bool{}}
	var seeded []string
	for len(seeded) < 100 {
		c := tripcode.Random()
		if !lookup.taken[c] {
			lookup.taken[c] = true
			seeded = append(seeded, c)
		}
	}

	i := 0
	draw := func() string {
		// Alternate: three seeded codes, then a fresh random one.
		i++
		if i%4 != 0 {
			return seeded[i%len(seeded)]
		}
		return tripcode.Random()
	}
	g := tripcode.New(lookup, tripcode.WithSource(draw))

	for range 1000 {
		code, err := g.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, lookup.taken[code])
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	lookup := &setLookup{taken: map[string]bool{"ZZZZZ": true}}
	g := tripcode.New(lookup, tripcode.WithSource(sequence("ZZZZZ")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx)

	assert.Error(t, err)
}
