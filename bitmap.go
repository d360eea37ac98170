package pixel2svg

import "math/bits"

// word packs multiple bits of the visited bitmap.
type word uint64

const wordBits = 64

// bitmap marks the grid cells already consumed by an emitted rectangle.
// The n-th scanline starts at map[n*dy]; the leftmost cell of a scanline
// is the most significant bit of its first word.
type bitmap struct {
	w, h int
	dy   int // words per scanline
	m    []word
}

func newBitmap(w, h int) *bitmap {
	dy := 0
	if w != 0 {
		dy = (w-1)/wordBits + 1
	}
	return &bitmap{
		w: w, h: h,
		dy: dy, m: make([]word, dy*h),
	}
}

func (bm *bitmap) index(x, y int) *word { return &bm.m[y*bm.dy+x/wordBits] }
func (bm *bitmap) mask(x int) word      { return word(1) << (wordBits - 1 - x%wordBits) }

// get returns the bit at the given coordinates. Cells outside the bitmap read as set.
func (bm *bitmap) get(x, y int) bool {
	if x >= 0 && x < bm.w && y >= 0 && y < bm.h {
		return *bm.index(x, y)&bm.mask(x) != 0
	}
	return true
}

func (bm *bitmap) set(x, y int) {
	if x >= 0 && x < bm.w && y >= 0 && y < bm.h {
		*bm.index(x, y) |= bm.mask(x)
	}
}

// fill sets every bit of the w*h block anchored at (x, y).
func (bm *bitmap) fill(x, y, w, h int) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			bm.set(i, j)
		}
	}
}

// count returns the number of set bits.
func (bm *bitmap) count() int {
	n := 0
	for _, v := range bm.m {
		n += bits.OnesCount64(uint64(v))
	}
	return n
}
