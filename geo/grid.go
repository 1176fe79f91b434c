package geo

import "slicecore/model"

// DefaultCellSize is the default LocToLineGrid cell size (2mm in object
// space, spec.md §4.A).
const DefaultCellSize model.Micrometer = 2000

type segmentRef struct {
	PathIndex int
	SegStart  int
}

// LocToLineGrid is a uniform-cell spatial index over the segments of one
// Paths target, built once and reused for many closest-segment queries
// (spec.md §4.A).
type LocToLineGrid struct {
	cellSize model.Micrometer
	cells    map[cellKey][]segmentRef
	target   model.Paths
}

type cellKey struct{ cx, cy int64 }

func (g *LocToLineGrid) cellOf(p model.Point) cellKey {
	return cellKey{int64(p.X()) / int64(g.cellSize), int64(p.Y()) / int64(g.cellSize)}
}

// NewLocToLineGrid builds a grid over target's segments with the given
// cell size. A cellSize <= 0 selects DefaultCellSize.
func NewLocToLineGrid(target model.Paths, cellSize model.Micrometer) *LocToLineGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &LocToLineGrid{
		cellSize: cellSize,
		cells:    map[cellKey][]segmentRef{},
		target:   target,
	}

	for pi, path := range target {
		n := len(path)
		for si := 0; si < n; si++ {
			a := path[si]
			b := path[(si+1)%n]
			ref := segmentRef{PathIndex: pi, SegStart: si}
			for _, key := range g.cellsForSegment(a, b) {
				g.cells[key] = append(g.cells[key], ref)
			}
		}
	}
	return g
}

// cellsForSegment returns every grid cell the segment's bounding box
// touches -- a coarse but conservative conflation, cheap to compute and
// sufficient for a nearest-segment candidate filter.
func (g *LocToLineGrid) cellsForSegment(a, b model.Point) []cellKey {
	minX, maxX := a.X(), b.X()
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y(), b.Y()
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	c0 := g.cellOf(model.NewPoint(minX, minY))
	c1 := g.cellOf(model.NewPoint(maxX, maxY))

	var keys []cellKey
	for cx := c0.cx; cx <= c1.cx; cx++ {
		for cy := c0.cy; cy <= c1.cy; cy++ {
			keys = append(keys, cellKey{cx, cy})
		}
	}
	return keys
}

// SegmentsNear returns every target segment whose bounding box falls in a
// cell the query segment a-b's own bounding box touches, deduplicated --
// a coarse candidate set for an exact segment-intersection test, used by
// the comber to avoid scanning every boundary segment per query
// (spec.md §4.A, consumed by comb.segmentCrossesAny).
func (g *LocToLineGrid) SegmentsNear(a, b model.Point) [][2]model.Point {
	seenCell := map[cellKey]bool{}
	seenSeg := map[segmentRef]bool{}
	var out [][2]model.Point
	for _, key := range g.cellsForSegment(a, b) {
		if seenCell[key] {
			continue
		}
		seenCell[key] = true
		for _, ref := range g.cells[key] {
			if seenSeg[ref] {
				continue
			}
			seenSeg[ref] = true
			path := g.target[ref.PathIndex]
			n := len(path)
			out = append(out, [2]model.Point{path[ref.SegStart], path[(ref.SegStart+1)%n]})
		}
	}
	return out
}

// FindClosest returns the closest segment to p among the cells p's own
// cell and its 8 neighbours cover, falling back to nil/false if nothing is
// nearby (caller should widen the search or fall back to a full scan).
func (g *LocToLineGrid) FindClosest(p model.Point) (ClosestPointResult, bool) {
	center := g.cellOf(p)
	best := ClosestPointResult{PolyIndex: -1}
	found := false

	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			key := cellKey{center.cx + dx, center.cy + dy}
			for _, ref := range g.cells[key] {
				path := g.target[ref.PathIndex]
				n := len(path)
				a := path[ref.SegStart]
				b := path[(ref.SegStart+1)%n]
				closest, d2 := closestOnSegment(p, a, b)
				if !found || d2 < best.Dist2 {
					best = ClosestPointResult{Point: closest, PolyIndex: ref.PathIndex, SegStart: ref.SegStart, Dist2: d2}
					found = true
				}
			}
		}
	}
	return best, found
}
