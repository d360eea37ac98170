package pixel2svg

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/vec"
)

func randomAnchors(rnd *rand.Rand, n int) []vec.Vec2 {
	anchors := make([]vec.Vec2, n)
	for i := range anchors {
		anchors[i] = vec.Vec2{X: float64(rnd.Intn(100)), Y: float64(rnd.Intn(100))}
	}
	return anchors
}

// openPathCost sums the distances between consecutive anchors.
func openPathCost(anchors []vec.Vec2, order []int) float64 {
	var cost float64
	for i := 1; i < len(order); i++ {
		cost += anchors[order[i-1]].Sub(anchors[order[i]]).Length()
	}
	return cost
}

func TestOptimize_DistanceMatrix(t *testing.T) {
	anchors := []vec.Vec2{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 8}}

	dist, err := DistanceMatrix(anchors)
	require.NoError(t, err)
	require.Len(t, dist, 3)

	for i := range dist {
		assert.Zero(t, dist[i][0], "the first column must be zero")
	}
	assert.InDelta(t, 5, dist[0][1], 1e-12)
	assert.InDelta(t, 10, dist[0][2], 1e-12)
	assert.InDelta(t, 5, dist[2][1], 1e-12)
	assert.Equal(t, dist[1][2], dist[2][1])
}

func TestOptimize_DistanceMatrixRejectsNaN(t *testing.T) {
	anchors := []vec.Vec2{{X: 0, Y: 0}, {X: math.NaN(), Y: 1}}

	_, err := DistanceMatrix(anchors)
	assert.ErrorIs(t, err, ErrOptimization)
}

func TestOptimize_SolveRejectsInvalidMatrix(t *testing.T) {
	opt := NewOptimizer(1)

	_, err := opt.Solve([][]float64{{0, 1}, {0}})
	assert.ErrorIs(t, err, ErrOptimization)
}

func TestOptimize_TrivialSizes(t *testing.T) {
	opt := NewOptimizer(1)

	for n := 0; n <= 2; n++ {
		dist, err := DistanceMatrix(randomAnchors(rand.New(rand.NewSource(1)), n))
		require.NoError(t, err)
		order, err := opt.Solve(dist)
		require.NoError(t, err)
		assert.Equal(t, identity(n), order)
	}

	// With three points only the order of the last two can change.
	anchors := []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 1, Y: 0}}
	dist, err := DistanceMatrix(anchors)
	require.NoError(t, err)
	order, err := opt.Solve(dist)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, order)
}

func TestOptimize_OrderIsPermutationStartingAtZero(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))

	for _, n := range []int{4, 5, 10, 40, 120} {
		anchors := randomAnchors(rnd, n)
		dist, err := DistanceMatrix(anchors)
		require.NoError(t, err)

		order, err := NewOptimizer(int64(n)).Solve(dist)
		require.NoError(t, err)
		require.Len(t, order, n)
		assert.True(t, isPermutation(order))
		assert.Equal(t, 0, order[0])

		// Never worse than the emission order.
		assert.LessOrEqual(t, openPathCost(anchors, order), openPathCost(anchors, identity(n))+1e-9)
	}
}

func TestOptimize_ImprovesZigZag(t *testing.T) {
	// Points on a line visited back and forth by the emission order.
	var anchors []vec.Vec2
	for i := 0; i < 10; i++ {
		x := float64(i)
		if i%2 == 1 {
			x = float64(100 - i)
		}
		anchors = append(anchors, vec.Vec2{X: x})
	}
	dist, err := DistanceMatrix(anchors)
	require.NoError(t, err)

	order, err := NewOptimizer(3).Solve(dist)
	require.NoError(t, err)
	assert.Less(t, openPathCost(anchors, order), openPathCost(anchors, identity(len(anchors))))
}

func TestOptimize_DeterministicWithSeed(t *testing.T) {
	anchors := randomAnchors(rand.New(rand.NewSource(9)), 30)
	dist, err := DistanceMatrix(anchors)
	require.NoError(t, err)

	first, err := NewOptimizer(42).Solve(dist)
	require.NoError(t, err)
	second, err := NewOptimizer(42).Solve(dist)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOptimize_IterationBudgetAndTimeout(t *testing.T) {
	anchors := randomAnchors(rand.New(rand.NewSource(2)), 50)
	dist, err := DistanceMatrix(anchors)
	require.NoError(t, err)

	opt := NewOptimizer(1)
	opt.MaxIterations = 1
	order, err := opt.Solve(dist)
	require.NoError(t, err)
	assert.True(t, isPermutation(order))

	opt = NewOptimizer(1)
	opt.Timeout = time.Nanosecond
	order, err = opt.Solve(dist)
	require.NoError(t, err)
	assert.Equal(t, 0, order[0])
}

func TestOptimize_OrderRejectsTooManyPoints(t *testing.T) {
	rects := make([]Rect, 11)
	for i := range rects {
		rects[i] = Rect{X: i, W: 1, H: 1}
	}
	opt := NewOptimizer(1)
	opt.MaxPoints = 10

	_, err := opt.Order(rects)
	assert.ErrorIs(t, err, ErrOptimization)

	opt.MaxPoints = 11
	order, err := opt.Order(rects)
	require.NoError(t, err)
	assert.Len(t, order, 11)
}

func TestOptimize_ReversalDelta(t *testing.T) {
	anchors := randomAnchors(rand.New(rand.NewSource(8)), 12)
	dist, err := DistanceMatrix(anchors)
	require.NoError(t, err)

	perm := identity(len(anchors))
	for i := 1; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			before := pathCost(dist, perm)
			delta := reversalDelta(dist, perm, i, j)
			reverseSegment(perm, i, j)
			assert.InDelta(t, pathCost(dist, perm)-before, delta, 1e-9, "reversing %d..%d", i, j)
			reverseSegment(perm, i, j)
		}
	}
}
