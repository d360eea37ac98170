package pixel2svg

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	green       = color.NRGBA{G: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	transparent = color.NRGBA{}
)

func makeGrid(t testing.TB, width, height int, pix ...color.NRGBA) *Grid {
	t.Helper()

	g, err := NewGrid(width, height, pix)
	require.NoError(t, err)
	return g
}

// randomGrid returns a grid drawn from a small palette, so that coalescing has something to merge.
func randomGrid(rnd *rand.Rand, width, height int) *Grid {
	palette := []color.NRGBA{
		red, green, blue, transparent,
		{R: 250, G: 2, B: 1, A: 255},
		{R: 255, A: 128},
		{R: 255, A: 0},
	}
	pix := make([]color.NRGBA, width*height)
	for i := range pix {
		// Favor runs of identical pixels.
		if i > 0 && rnd.Intn(3) > 0 {
			pix[i] = pix[i-1]
			continue
		}
		pix[i] = palette[rnd.Intn(len(palette))]
	}
	return &Grid{Width: width, Height: height, Pix: pix}
}

// checkCoverage verifies that the rectangles cover every non transparent pixel exactly once,
// and that every covered pixel matches the seed color of its rectangle.
func checkCoverage(t *testing.T, g *Grid, rects []Rect, sensitivity int) {
	t.Helper()

	covered := make([]int, g.Width*g.Height)
	for _, r := range rects {
		require.True(t, r.W >= 1 && r.H >= 1, "empty rectangle %+v", r)
		require.True(t, r.Bounds().In(image.Rect(0, 0, g.Width, g.Height)), "rectangle %+v out of bounds", r)

		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				covered[y*g.Width+x]++
				assert.True(t, Similar(g.At(x, y), r.Color, sensitivity),
					"pixel (%d,%d) %v does not match the seed %v", x, y, g.At(x, y), r.Color)
			}
		}
	}
	for i, c := range covered {
		want := 0
		if g.Pix[i].A != 0 {
			want = 1
		}
		assert.Equal(t, want, c, "pixel (%d,%d) covered %d times", i%g.Width, i/g.Width, c)
	}
}

func TestCoalesce_CombineHorizontalPair(t *testing.T) {
	g := makeGrid(t, 2, 1, red, red)

	rects := Coalesce(g, 0, true)
	assert.Equal(t, []Rect{{X: 0, Y: 0, W: 2, H: 1, Color: red}}, rects)
}

func TestCoalesce_SingleDifferentPixel(t *testing.T) {
	g := makeGrid(t, 2, 2,
		blue, blue,
		blue, green,
	)

	rects := Coalesce(g, 0, true)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 2, H: 1, Color: blue},
		{X: 0, Y: 1, W: 1, H: 1, Color: blue},
		{X: 1, Y: 1, W: 1, H: 1, Color: green},
	}, rects)
	checkCoverage(t, g, rects, 0)
}

func TestCoalesce_TransparentGrid(t *testing.T) {
	g := makeGrid(t, 3, 2,
		transparent, transparent, transparent,
		transparent, transparent, color.NRGBA{R: 10, G: 20, B: 30},
	)

	assert.Empty(t, Coalesce(g, 0, true))
	assert.Empty(t, Coalesce(g, 1000, false))
}

func TestCoalesce_GrowsDownward(t *testing.T) {
	g := makeGrid(t, 3, 3,
		red, red, green,
		red, red, green,
		red, blue, green,
	)

	rects := Coalesce(g, 0, true)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 2, H: 2, Color: red},
		{X: 2, Y: 0, W: 1, H: 3, Color: green},
		{X: 0, Y: 2, W: 1, H: 1, Color: red},
		{X: 1, Y: 2, W: 1, H: 1, Color: blue},
	}, rects)
}

func TestCoalesce_WidthIsLockedOnSeedRow(t *testing.T) {
	// A taller but narrower first rectangle would need fewer rectangles,
	// the greedy scan still keeps the width found on the seed row.
	g := makeGrid(t, 2, 3,
		red, red,
		red, blue,
		red, blue,
	)

	rects := Coalesce(g, 0, true)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 2, H: 1, Color: red},
		{X: 0, Y: 1, W: 1, H: 2, Color: red},
		{X: 1, Y: 1, W: 1, H: 2, Color: blue},
	}, rects)
}

func TestCoalesce_SkipsConsumedPixels(t *testing.T) {
	g := makeGrid(t, 2, 2,
		transparent, red,
		red, red,
	)

	rects := Coalesce(g, 0, true)
	assert.Equal(t, []Rect{
		{X: 1, Y: 0, W: 1, H: 2, Color: red},
		{X: 0, Y: 1, W: 1, H: 1, Color: red},
	}, rects)
	checkCoverage(t, g, rects, 0)
}

func TestCoalesce_DoesNotAbsorbTransparentPixels(t *testing.T) {
	hidden := color.NRGBA{R: 255}
	g := makeGrid(t, 3, 1, red, hidden, red)

	// The transparent pixel has the same RGB value: it must break the run anyway.
	rects := Coalesce(g, 10, true)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 1, H: 1, Color: red},
		{X: 2, Y: 0, W: 1, H: 1, Color: red},
	}, rects)
}

func TestCoalesce_SemiTransparentPixels(t *testing.T) {
	half := color.NRGBA{R: 255, A: 128}
	g := makeGrid(t, 3, 1, half, half, red)

	rects := Coalesce(g, 0, true)
	require.Len(t, rects, 2)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 2, H: 1, Color: half}, rects[0])
	assert.False(t, rects[0].Opaque())
	assert.InDelta(t, 128.0/255, rects[0].Opacity(), 1e-9)
	assert.True(t, rects[1].Opaque())
}

func TestCoalesce_SimilarityIsAnchoredToSeed(t *testing.T) {
	g := makeGrid(t, 4, 1,
		color.NRGBA{R: 0, A: 255},
		color.NRGBA{R: 1, A: 255},
		color.NRGBA{R: 2, A: 255},
		color.NRGBA{R: 3, A: 255},
	)

	// Each pixel is within the threshold of its left neighbour,
	// but only the second one is within the threshold of the seed.
	rects := Coalesce(g, 2, true)
	assert.Equal(t, []Rect{
		{X: 0, Y: 0, W: 2, H: 1, Color: color.NRGBA{R: 0, A: 255}},
		{X: 2, Y: 0, W: 2, H: 1, Color: color.NRGBA{R: 2, A: 255}},
	}, rects)
}

func TestCoalesce_WithoutCombineEmitsSinglePixels(t *testing.T) {
	g := makeGrid(t, 3, 2,
		red, red, transparent,
		red, red, red,
	)

	rects := Coalesce(g, 1000, false)
	require.Len(t, rects, 5)
	for _, r := range rects {
		assert.Equal(t, 1, r.W)
		assert.Equal(t, 1, r.H)
	}
	checkCoverage(t, g, rects, 0)
}

func TestCoalesce_CoverageProperty(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		w, h := 1+rnd.Intn(12), 1+rnd.Intn(12)
		g := randomGrid(rnd, w, h)
		for _, sensitivity := range []int{0, 50, 100000} {
			for _, combine := range []bool{true, false} {
				rects := Coalesce(g, sensitivity, combine)
				checkCoverage(t, g, rects, sensitivity)
			}
		}
	}
}

func TestCoalesce_Deterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	g := randomGrid(rnd, 16, 16)
	orig := append([]color.NRGBA(nil), g.Pix...)

	first := Coalesce(g, 30, true)
	second := Coalesce(g, 30, true)
	assert.Equal(t, first, second)

	// The source grid is never modified.
	assert.Equal(t, orig, g.Pix)
}

func TestCoalesce_VisitedBitmap(t *testing.T) {
	g := makeGrid(t, 2, 2, red, red, red, transparent)

	c := NewCoalescer(g, 0, true)
	rects := c.Run()
	assert.Len(t, rects, 2)
	assert.Equal(t, 3, c.visited.count())
	assert.False(t, c.available(0, 0))
	assert.False(t, c.available(1, 1))
}

func BenchmarkCoalesce(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	g := randomGrid(rnd, 256, 256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Coalesce(g, 0, true)
	}
}
