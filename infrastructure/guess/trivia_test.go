package guess

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-geomean/internal/domain"
)

func TestNewTriviaGuesses(t *testing.T) {
	tests := []struct {
		name      string
		correct   uint64
		logStdDev float64
		wantErr   error
	}{
		{name: "valid", correct: 100, logStdDev: 1},
		{name: "zero spread", correct: 100, logStdDev: 0},
		{name: "maximum spread", correct: 100, logStdDev: 50},
		{name: "zero correct answer", correct: 0, logStdDev: 1, wantErr: ErrZeroCorrectAnswer},
		{name: "negative spread", correct: 100, logStdDev: -1, wantErr: domain.ErrInvalidSpread},
		{name: "NaN spread", correct: 100, logStdDev: math.NaN(), wantErr: domain.ErrInvalidSpread},
		{name: "infinite spread", correct: 100, logStdDev: math.Inf(1), wantErr: domain.ErrInvalidSpread},
		{name: "spread too large", correct: 100, logStdDev: 51, wantErr: domain.ErrInvalidSpread},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewTriviaGuesses(tt.correct, tt.logStdDev)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}
}

func TestRoundTrivia(t *testing.T) {
	tests := []struct {
		raw  float64
		want uint64
	}{
		{raw: 0.3, want: 1},
		{raw: 1, want: 1},
		{raw: 7.6, want: 7},
		{raw: 1000, want: 1000},
		{raw: 1234, want: 1250},
		{raw: 1210, want: 1200},
		{raw: 2150, want: 2200},
		{raw: 2140, want: 2100},
		{raw: 5200, want: 5000},
		{raw: 5300, want: 5500},
		{raw: 9800, want: 10_000},
		{raw: 47_000_000, want: 47_000_000},
		{raw: 1e20, want: math.MaxUint64},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundTrivia(tt.raw), "raw=%v", tt.raw)
	}
}

func TestTriviaGuesses_ZeroSpreadIsDeterministic(t *testing.T) {
	d, err := NewTriviaGuesses(1234, 0)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(42, 42))
	for range 5 {
		assert.Equal(t, uint64(1250), d.Sample(rng))
	}
}

func TestTriviaGuesses_SamplesArePositive(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		correct := 1 + rng.Uint64N(1_000_000_000)
		d, err := NewTriviaGuesses(correct, rng.Float64()*25)
		require.NoError(t, err)
		assert.Positive(t, d.Sample(rng))
	}
}

func TestTriviaGuesses_ClustersAroundCorrectAnswer(t *testing.T) {
	d, err := NewTriviaGuesses(10_000, 0.3)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(5, 5))
	var logSum float64
	const n = 2000
	for range n {
		logSum += math.Log(float64(d.Sample(rng)))
	}
	assert.InDelta(t, math.Log(10_000), logSum/n, 0.05)
}

func TestTrivia_Guesses(t *testing.T) {
	g := NewTrivia()

	first, err := g.Guesses(rand.New(rand.NewPCG(9, 9)), 500, 1, 4)
	require.NoError(t, err)
	assert.Len(t, first, 4)

	second, err := g.Guesses(rand.New(rand.NewPCG(9, 9)), 500, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second, "the same seed must give the same guesses")

	_, err = g.Guesses(rand.New(rand.NewPCG(9, 9)), 0, 1, 4)
	assert.ErrorIs(t, err, ErrZeroCorrectAnswer)
}
