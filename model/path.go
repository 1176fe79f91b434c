package model

import "math"

// Path is an ordered sequence of Points: either a closed loop (the outer
// loop or a hole of a SliceLayerPart, winding direction encodes which) or
// an open polyline (e.g. one infill line). Equal consecutive points are
// tolerated; Simplify removes them.
type Path []Point

// Paths is a set of Path, interpreted by even-odd winding for boolean ops
// -- the level-0 equivalent of spec.md's "Polygons".
type Paths []Path

// Min returns the minimum X/Y over all points of p. Returns the zero Point
// for an empty path.
func (p Path) Min() Point {
	if len(p) == 0 {
		return Point{}
	}
	min := p[0]
	for _, pt := range p[1:] {
		if pt.x < min.x {
			min.x = pt.x
		}
		if pt.y < min.y {
			min.y = pt.y
		}
	}
	return min
}

// Max returns the maximum X/Y over all points of p.
func (p Path) Max() Point {
	if len(p) == 0 {
		return Point{}
	}
	max := p[0]
	for _, pt := range p[1:] {
		if pt.x > max.x {
			max.x = pt.x
		}
		if pt.y > max.y {
			max.y = pt.y
		}
	}
	return max
}

// Size returns the (min, max) bounding corners of p.
func (p Path) Size() (Point, Point) {
	return p.Min(), p.Max()
}

// Length returns the total length of p treated as an open polyline.
func (p Path) Length() Micrometer {
	var total Micrometer
	for i := 1; i < len(p); i++ {
		total += p[i].Sub(p[i-1]).Size()
	}
	return total
}

// Area returns the signed area of p treated as a closed loop (shoelace
// formula). Positive for counter-clockwise winding (outer loops), negative
// for clockwise winding (holes), following go.clipper's convention.
func (p Path) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum int64
	for i := range p {
		j := (i + 1) % len(p)
		sum += int64(p[i].x)*int64(p[j].y) - int64(p[j].x)*int64(p[i].y)
	}
	return float64(sum) / 2
}

// Orientation reports whether p winds counter-clockwise (true, outer loop
// by go.clipper convention) or clockwise (false, hole).
func (p Path) Orientation() bool {
	return p.Area() >= 0
}

// IsAlmostFinished reports whether the first and last point of p are
// within snapDistance of each other, i.e. p is "almost" a closed loop.
func (p Path) IsAlmostFinished(snapDistance Micrometer) bool {
	if len(p) < 2 {
		return false
	}
	return p[len(p)-1].Sub(p[0]).ShorterThan(snapDistance)
}

// Closed returns p with a copy of its first point appended, unless it is
// already closed exactly.
func (p Path) Closed() Path {
	if len(p) == 0 || p[0].Eq(p[len(p)-1]) {
		return p
	}
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = p[0]
	return out
}

// Simplify removes collinear/too-short segments. Points closer than
// segmentEps to the last kept point are dropped regardless of how far
// that moves the contour; then each vertex within deviationEps of the line
// through its neighbours is removed. Negative values select the package
// defaults (matching go.clipper's Path.Simplify(-1,-1) call convention
// used throughout the teacher's clip package).
func (p Path) Simplify(segmentEps, deviationEps Micrometer) Path {
	if segmentEps < 0 {
		segmentEps = 10
	}
	if deviationEps < 0 {
		deviationEps = 10
	}
	if len(p) < 3 {
		return p
	}

	out := make(Path, 0, len(p))
	out = append(out, p[0])
	for i := 1; i < len(p); i++ {
		last := out[len(out)-1]
		cur := p[i]
		if last.Dist(cur) < segmentEps {
			continue
		}
		out = append(out, cur)
	}

	if len(out) < 3 {
		return out
	}

	// Drop vertices that deviate from the line between their neighbours by
	// less than deviationEps (perpendicular distance).
	pruned := make(Path, 0, len(out))
	n := len(out)
	for i := 0; i < n; i++ {
		prev := out[(i-1+n)%n]
		cur := out[i]
		next := out[(i+1)%n]
		if perpendicularDistance(cur, prev, next) < float64(deviationEps) {
			continue
		}
		pruned = append(pruned, cur)
	}
	if len(pruned) < 3 {
		return out
	}
	return pruned
}

func perpendicularDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLen := ab.Size()
	if abLen == 0 {
		return float64(p.Dist(a))
	}
	cross := ab.Cross(p.Sub(a))
	if cross < 0 {
		cross = -cross
	}
	return float64(cross) / float64(abLen)
}

// Reversed returns a copy of p with point order reversed.
func (p Path) Reversed() Path {
	out := make(Path, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// Clone returns a shallow copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// TotalLength returns the sum of the lengths of every path in ps.
func (ps Paths) TotalLength() Micrometer {
	var total Micrometer
	for _, p := range ps {
		total += p.Length()
	}
	return total
}

// Min returns the bounding minimum over every path in ps.
func (ps Paths) Min() Point {
	if len(ps) == 0 {
		return Point{}
	}
	min := ps[0].Min()
	for _, p := range ps[1:] {
		m := p.Min()
		if m.x < min.x {
			min.x = m.x
		}
		if m.y < min.y {
			min.y = m.y
		}
	}
	return min
}

// Max returns the bounding maximum over every path in ps.
func (ps Paths) Max() Point {
	if len(ps) == 0 {
		return Point{}
	}
	max := ps[0].Max()
	for _, p := range ps[1:] {
		m := p.Max()
		if m.x > max.x {
			max.x = m.x
		}
		if m.y > max.y {
			max.y = m.y
		}
	}
	return max
}

// Area returns the sum of the absolute area of every path in ps; holes add
// to the total rather than subtracting from it.
func (ps Paths) Area() float64 {
	var a float64
	for _, p := range ps {
		a += math.Abs(p.Area())
	}
	return a
}

// Clone deep-copies ps.
func (ps Paths) Clone() Paths {
	out := make(Paths, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}
