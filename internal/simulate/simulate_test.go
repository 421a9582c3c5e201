package simulate

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/game"
)

func engine(t *testing.T) *game.Engine {
	t.Helper()
	e, err := game.NewEngine([]string{"azul", "rojo", "blanco", "negro", "verde", "purpura"}, 4)
	require.NoError(t, err)
	return e
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	e := engine(t)
	ctx := context.Background()

	a, err := Run(ctx, e, Options{Games: 40, Seed: 7, Workers: 4})
	require.NoError(t, err)
	b, err := Run(ctx, e, Options{Games: 40, Seed: 7, Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 40, a.Games)
	assert.Equal(t, 40, a.States["solved"])
	assert.LessOrEqual(t, a.MaxAttempts, 8)
	assert.GreaterOrEqual(t, a.MinAttempts, 1)
	require.NotEmpty(t, a.AvgSearchSpace)
	assert.Equal(t, 1296.0, a.AvgSearchSpace[0])
}

func TestRunExhaustive(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive simulation")
	}
	rep, err := Run(context.Background(), engine(t), Options{Exhaustive: true})
	require.NoError(t, err)

	assert.Equal(t, 1296, rep.Games)
	assert.Equal(t, map[string]int{"solved": 1296}, rep.States)
	assert.Equal(t, 8, rep.MaxAttempts)
	assert.Equal(t, 1, rep.MinAttempts)
	assert.InDelta(t, 6508.0/1296.0, rep.MeanAttempts, 1e-9)
	assert.Equal(t, map[int]int{1: 1, 2: 12, 3: 71, 4: 253, 5: 588, 6: 286, 7: 78, 8: 7}, rep.Distribution)
}

func TestRunRejectsNoGames(t *testing.T) {
	_, err := Run(context.Background(), engine(t), Options{Games: 0})
	assert.Error(t, err)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, engine(t), Options{Games: 10, Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregatePadsHistories(t *testing.T) {
	results := []game.Result{
		{Attempts: 1, State: game.Solved},
		{Attempts: 3, State: game.Solved, SearchSpaceHistory: []int{1296, 208}},
		{Attempts: 2, State: game.Contradiction, SearchSpaceHistory: []int{1296}},
	}
	rep := Aggregate(results, 1296)

	assert.Equal(t, 3, rep.Games)
	assert.Equal(t, 2.0, rep.MeanAttempts)
	assert.Equal(t, 1, rep.MinAttempts)
	assert.Equal(t, 3, rep.MaxAttempts)
	assert.Equal(t, map[string]int{"solved": 2, "contradiction": 1}, rep.States)
	assert.Equal(t, []float64{1296, (1296.0 + 208 + 1296) / 3}, rep.AvgSearchSpace)
}

func TestRender(t *testing.T) {
	rep := Aggregate([]game.Result{
		{Attempts: 2, State: game.Solved, SearchSpaceHistory: []int{1296}},
		{Attempts: 4, State: game.Solved, SearchSpaceHistory: []int{1296, 256, 81}},
	}, 1296)

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "Games:                 2")
	assert.Contains(t, out, "Mean attempts:         3.00")
	assert.Contains(t, out, "solved:")
	assert.Contains(t, out, "   2 | ")
	assert.Contains(t, out, "   3 |")
	assert.Contains(t, out, "attempt  3:")
}
