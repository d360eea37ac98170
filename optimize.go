package pixel2svg

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"seehuhn.de/go/geom/vec"
)

const (
	// DefaultMaxIterations bounds the number of moves evaluated by the annealer.
	DefaultMaxIterations = 100000
	// DefaultCooling is the factor applied to the temperature after each epoch.
	DefaultCooling = 0.9
	// DefaultMaxPoints caps the size of the dense distance matrix.
	DefaultMaxPoints = 4096
)

// Optimizer computes a low travel cost visiting order over a set of anchor points
// using simulated annealing with 2-opt segment reversal moves.
// The first point is pinned at the start of the path.
type Optimizer struct {
	MaxIterations int
	Timeout       time.Duration
	Cooling       float64
	MaxPoints     int
	Seed          int64

	rnd *rand.Rand
}

// NewOptimizer returns an optimizer using the default iteration budget.
func NewOptimizer(seed int64) *Optimizer {
	return &Optimizer{
		MaxIterations: DefaultMaxIterations,
		Cooling:       DefaultCooling,
		MaxPoints:     DefaultMaxPoints,
		Seed:          seed,
	}
}

// DistanceMatrix builds the pairwise euclidean distance matrix over the anchors.
// The first column is forced to zero: returning to the first anchor is free,
// which turns the closed tour into an open path starting at index 0.
func DistanceMatrix(anchors []vec.Vec2) ([][]float64, error) {
	n := len(anchors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := 1; j < n; j++ {
			d := anchors[i].Sub(anchors[j]).Length()
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, fmt.Errorf("%w: degenerate distance between anchors %d and %d", ErrOptimization, i, j)
			}
			dist[i][j] = d
		}
	}
	return dist, nil
}

// Order returns the visiting order of the rectangles.
func (o *Optimizer) Order(rects []Rect) ([]int, error) {
	maxPoints := o.MaxPoints
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if len(rects) > maxPoints {
		return nil, fmt.Errorf("%w: %d anchors exceed the limit of %d", ErrOptimization, len(rects), maxPoints)
	}
	anchors := make([]vec.Vec2, len(rects))
	for i, r := range rects {
		anchors[i] = r.Anchor()
	}
	dist, err := DistanceMatrix(anchors)
	if err != nil {
		return nil, err
	}
	return o.Solve(dist)
}

// Solve returns a permutation of the matrix indices starting with 0.
// The result is a heuristic: it is never worse than the identity order,
// but it is not guaranteed to be optimal.
func (o *Optimizer) Solve(dist [][]float64) ([]int, error) {
	n := len(dist)
	for i := range dist {
		if len(dist[i]) != n {
			return nil, fmt.Errorf("%w: distance matrix is not square", ErrOptimization)
		}
	}
	perm := identity(n)
	if n <= 3 {
		// Every ordering of two free points is reachable by one reversal.
		if n == 3 && dist[0][2]+dist[2][1] < dist[0][1]+dist[1][2] {
			perm[1], perm[2] = 2, 1
		}
		return perm, nil
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(o.Seed))
	}
	maxIter := o.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	cooling := o.Cooling
	if cooling <= 0 || cooling >= 1 {
		cooling = DefaultCooling
	}
	var deadline time.Time
	if o.Timeout > 0 {
		deadline = time.Now().Add(o.Timeout)
	}

	cost := pathCost(dist, perm)
	best := append([]int(nil), perm...)
	bestCost := cost

	temp := o.initialTemperature(dist, perm)
	epoch := n * n
	if epoch > 2000 {
		epoch = 2000
	}

	for iter := 0; iter < maxIter; {
		accepted := 0
		for k := 0; k < epoch && iter < maxIter; k, iter = k+1, iter+1 {
			i, j := o.segment(n)
			delta := reversalDelta(dist, perm, i, j)
			if delta < 0 || (temp > 0 && o.rnd.Float64() < math.Exp(-delta/temp)) {
				reverseSegment(perm, i, j)
				cost += delta
				accepted++
				if cost < bestCost-1e-9 {
					bestCost = cost
					copy(best, perm)
				}
			}
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if accepted == 0 {
			break
		}
		temp *= cooling
	}

	if math.IsNaN(bestCost) || !isPermutation(best) || best[0] != 0 {
		return nil, fmt.Errorf("%w: solver produced an invalid order", ErrOptimization)
	}
	return best, nil
}

// initialTemperature samples random moves and picks the temperature at which
// an average uphill move is accepted with a probability of one half.
func (o *Optimizer) initialTemperature(dist [][]float64, perm []int) float64 {
	const samples = 100

	var sum float64
	var count int
	for k := 0; k < samples; k++ {
		i, j := o.segment(len(perm))
		if d := reversalDelta(dist, perm, i, j); d > 0 {
			sum += d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return (sum / float64(count)) / math.Ln2
}

// segment picks two distinct positions 1 <= i < j < n.
func (o *Optimizer) segment(n int) (int, int) {
	i := 1 + o.rnd.Intn(n-1)
	j := 1 + o.rnd.Intn(n-2)
	if j >= i {
		j++
	}
	if i > j {
		i, j = j, i
	}
	return i, j
}

// pathCost returns the cost of the closed tour, which equals
// the open path cost since every edge back to index 0 is free.
func pathCost(dist [][]float64, perm []int) float64 {
	var cost float64
	for i := range perm {
		cost += dist[perm[i]][perm[(i+1)%len(perm)]]
	}
	return cost
}

// reversalDelta returns the cost change caused by reversing perm[i..j].
// Segment positions never hold index 0, so the inner edges are symmetric.
func reversalDelta(dist [][]float64, perm []int, i, j int) float64 {
	prev := perm[i-1]
	next := perm[(j+1)%len(perm)]
	a, b := perm[i], perm[j]
	return dist[prev][b] + dist[a][next] - dist[prev][a] - dist[b][next]
}

func reverseSegment(perm []int, i, j int) {
	for ; i < j; i, j = i+1, j-1 {
		perm[i], perm[j] = perm[j], perm[i]
	}
}

func isPermutation(perm []int) bool {
	seen := make([]bool, len(perm))
	for _, v := range perm {
		if v < 0 || v >= len(perm) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
