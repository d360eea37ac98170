package pixel2svg

import "image/color"

// Group holds the rectangles sharing the same representative color.
type Group struct {
	Color color.NRGBA
	Name  string
	Rects []Rect
}

// GroupRects partitions the rectangles by exact color equality.
// Groups are returned in first-seen order and each group keeps the emission order.
func GroupRects(rects []Rect) []Group {
	var groups []Group
	index := make(map[color.NRGBA]int)

	for _, r := range rects {
		i, ok := index[r.Color]
		if !ok {
			i = len(groups)
			index[r.Color] = i
			groups = append(groups, Group{Color: r.Color})
		}
		groups[i].Rects = append(groups[i].Rects, r)
	}
	return groups
}

// Label returns the human readable name of the group followed by its hex value.
func (g Group) Label() string {
	if g.Name == "" {
		return Hex(g.Color)
	}
	return g.Name + " " + Hex(g.Color)
}

// Permute reorders the group rectangles following the visiting order.
func (g *Group) Permute(order []int) {
	rects := make([]Rect, len(order))
	for i, idx := range order {
		rects[i] = g.Rects[idx]
	}
	g.Rects = rects
}

// Reverse reverses the order of the integers in place.
func Reverse(order []int) {
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
}

// identity returns the permutation 0..n-1.
func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
