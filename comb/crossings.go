package comb

import (
	"math"
	"sort"

	"slicecore/geo"
	"slicecore/model"
)

// crossingRange records, for one boundary polygon, the smallest and largest
// x at which the rotated travel scanline crosses it, and the start-vertex
// index of the polygon segment each of those crossings lies on.
type crossingRange struct {
	pathIndex  int
	minX, maxX float64
	minIdx     int // vertex index (in rotated-space polygon copy) of the min-x crossing
	maxIdx     int
}

// rotated is a polygon boundary translated so `origin` is (0,0) and rotated
// so `axis` lies along +X.
type rotated struct {
	points model.Path
	sin    float64
	cos    float64
	origin model.Point
}

func buildRotation(origin, axis model.Point) rotated {
	angle := math.Atan2(float64(axis.Y()), float64(axis.X()))
	return rotated{sin: math.Sin(-angle), cos: math.Cos(-angle), origin: origin}
}

func (r rotated) apply(p model.Point) (x, y float64) {
	d := p.Sub(r.origin)
	fx, fy := float64(d.X()), float64(d.Y())
	return fx*r.cos - fy*r.sin, fx*r.sin + fy*r.cos
}

func (r rotated) invert(x, y float64) model.Point {
	// inverse rotation is by +angle, i.e. (cos, -sin; sin, cos) using the
	// stored (sin,cos) of -angle: invert by swapping sin's sign.
	fx := x*r.cos + y*r.sin
	fy := -x*r.sin + y*r.cos
	return model.NewPoint(model.Micrometer(fx), model.Micrometer(fy)).Add(r.origin)
}

// linePolygonsCrossings walks the start->end scanline through boundary and
// detours around every polygon it would otherwise cross, offsetting each
// detour inward by insetOffset (spec.md §4.E step 4). It returns the
// detoured polyline in original coordinates, including start and end. grid
// is boundary's precomputed LocToLineGrid (spec.md §4.A), used to narrow
// down dropRedundant's crossing checks; nil falls back to a full scan.
func linePolygonsCrossings(boundary model.Paths, start, end model.Point, insetOffset model.Micrometer, grid *geo.LocToLineGrid) model.Path {
	axis := end.Sub(start)
	if axis.Size() == 0 {
		return model.Path{start, end}
	}
	rot := buildRotation(start, axis)

	endX, _ := rot.apply(end)

	type rpoly struct {
		orig  model.Path
		rx    []float64
		ry    []float64
	}
	rpolys := make([]rpoly, len(boundary))
	for pi, path := range boundary {
		rp := rpoly{orig: path, rx: make([]float64, len(path)), ry: make([]float64, len(path))}
		for i, p := range path {
			rp.rx[i], rp.ry[i] = rot.apply(p)
		}
		rpolys[pi] = rp
	}

	var ranges []crossingRange
	for pi, rp := range rpolys {
		n := len(rp.orig)
		if n < 2 {
			continue
		}
		minX, maxX := math.Inf(1), math.Inf(-1)
		minIdx, maxIdx := -1, -1
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			y0, y1 := rp.ry[i], rp.ry[j]
			if (y0 > 0) == (y1 > 0) {
				continue
			}
			t := y0 / (y0 - y1)
			x := rp.rx[i] + t*(rp.rx[j]-rp.rx[i])
			if x < minX {
				minX = x
				minIdx = i
			}
			if x > maxX {
				maxX = x
				maxIdx = i
			}
		}
		if minIdx == -1 {
			continue
		}
		if maxX < 0 || minX > endX {
			continue
		}
		ranges = append(ranges, crossingRange{pathIndex: pi, minX: minX, maxX: maxX, minIdx: minIdx, maxIdx: maxIdx})
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].minX < ranges[j].minX })

	result := model.Path{start}
	for _, cr := range ranges {
		rp := rpolys[cr.pathIndex]
		detour := detourAlongPolygon(rp.orig, cr.minIdx, cr.maxIdx, insetOffset)
		result = append(result, detour...)
	}
	result = append(result, end)

	return dropRedundant(result, boundary, grid)
}

// detourAlongPolygon walks rp's vertices from the segment starting at
// fromIdx to the segment starting at toIdx, in whichever winding direction
// visits fewer vertices, offsetting each point inward.
func detourAlongPolygon(p model.Path, fromIdx, toIdx int, insetOffset model.Micrometer) model.Path {
	n := len(p)
	if n == 0 {
		return nil
	}

	forward := stepsForward(fromIdx, toIdx, n)
	backward := n - forward

	var out model.Path
	inward := true // the left side is the filled side of CCW outer loops and CW holes
	if forward <= backward {
		for i := (fromIdx + 1) % n; ; i = (i + 1) % n {
			out = append(out, offsetVertex(p, i, insetOffset, inward))
			if i == toIdx {
				break
			}
		}
	} else {
		for i := fromIdx; ; i = (i - 1 + n) % n {
			out = append(out, offsetVertex(p, i, insetOffset, inward))
			if i == (toIdx+1)%n {
				break
			}
		}
	}
	return out
}

func stepsForward(from, to, n int) int {
	d := to - from
	if d < 0 {
		d += n
	}
	return d
}

func offsetVertex(p model.Path, i int, dist model.Micrometer, inward bool) model.Point {
	n := len(p)
	prev := p[(i-1+n)%n]
	next := p[(i+1)%n]
	v := p[i]

	// Average the inward normals of the two adjacent edges.
	e1 := v.Sub(prev)
	e2 := next.Sub(v)
	perp1 := model.NewPoint(-e1.Y(), e1.X())
	perp2 := model.NewPoint(-e2.Y(), e2.X())
	if !inward {
		perp1 = model.NewPoint(e1.Y(), -e1.X())
		perp2 = model.NewPoint(e2.Y(), -e2.X())
	}
	avg := perp1.Normal(1000).Add(perp2.Normal(1000))
	return v.Add(avg.Normal(dist))
}

// dropRedundant removes intermediate points whose direct neighbour-to-
// neighbour segment no longer crosses any boundary polygon (spec.md §4.E
// step 4d).
func dropRedundant(path model.Path, boundary model.Paths, grid *geo.LocToLineGrid) model.Path {
	if len(path) <= 2 {
		return path
	}
	out := model.Path{path[0]}
	i := 0
	for i < len(path)-1 {
		// Try to skip as far ahead as possible from out's last point.
		j := len(path) - 1
		for j > i+1 {
			if !segmentCrossesAny(out[len(out)-1], path[j], boundary, grid) {
				break
			}
			j--
		}
		out = append(out, path[j])
		i = j
	}
	return out
}

// segmentCrossesAny reports whether a-b crosses any segment of boundary.
// When grid is non-nil it checks only the candidate segments the grid
// returns for a-b's own cells instead of every boundary segment
// (spec.md §4.A LocToLineGrid, consumed here as the comber's nearest/
// crossing-candidate index).
func segmentCrossesAny(a, b model.Point, boundary model.Paths, grid *geo.LocToLineGrid) bool {
	if grid != nil {
		for _, seg := range grid.SegmentsNear(a, b) {
			if segmentsIntersect(a, b, seg[0], seg[1]) {
				return true
			}
		}
		return false
	}
	for _, path := range boundary {
		n := len(path)
		for i := 0; i < n; i++ {
			c := path[i]
			d := path[(i+1)%n]
			if segmentsIntersect(a, b, c, d) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(a, b, c, d model.Point) bool {
	d1 := direction(c, d, a)
	d2 := direction(c, d, b)
	d3 := direction(a, b, c)
	d4 := direction(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func direction(a, b, c model.Point) int64 {
	return b.Sub(a).Cross(c.Sub(a))
}
