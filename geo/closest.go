package geo

import (
	"math"

	"slicecore/core"
	"slicecore/model"
)

// ClosestPointResult describes a point on a polygon boundary nearest some
// query point.
type ClosestPointResult struct {
	Point      model.Point
	PolyIndex  int
	SegStart   int // index of the vertex preceding the closest point
	Dist2      int64
}

func closestOnSegment(p, a, b model.Point) (model.Point, int64) {
	ab := b.Sub(a)
	ab2 := ab.Dot(ab)
	if ab2 == 0 {
		return a, p.Dist2(a)
	}
	t := float64(ab.Dot(p.Sub(a))) / float64(ab2)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := model.Lerp(a, b, t)
	return closest, p.Dist2(closest)
}

// FindClosestOnPath returns the closest point on path's boundary to p, and
// the index of the preceding vertex (spec.md §4.A findClosest).
func FindClosestOnPath(p model.Point, path model.Path) (ClosestPointResult, error) {
	if len(path) == 0 {
		return ClosestPointResult{}, core.ErrEmpty
	}
	if len(path) == 1 {
		return ClosestPointResult{Point: path[0], SegStart: 0, Dist2: p.Dist2(path[0])}, nil
	}

	best := ClosestPointResult{Dist2: math.MaxInt64}
	n := len(path)
	for i := 0; i < n; i++ {
		a := path[i]
		b := path[(i+1)%n]
		closest, d2 := closestOnSegment(p, a, b)
		if d2 < best.Dist2 {
			best = ClosestPointResult{Point: closest, SegStart: i, Dist2: d2}
		}
	}
	return best, nil
}

// FindClosestInPaths returns the closest point on any path of polygons to p.
func FindClosestInPaths(p model.Point, polygons model.Paths) (ClosestPointResult, error) {
	if len(polygons) == 0 {
		return ClosestPointResult{}, core.ErrEmpty
	}

	best := ClosestPointResult{Dist2: math.MaxInt64, PolyIndex: -1}
	for i, path := range polygons {
		r, err := FindClosestOnPath(p, path)
		if err != nil {
			continue
		}
		if r.Dist2 < best.Dist2 {
			r.PolyIndex = i
			best = r
		}
	}
	if best.PolyIndex == -1 {
		return ClosestPointResult{}, core.ErrEmpty
	}
	return best, nil
}

// normalAt returns the inward unit normal (scaled to len) of the segment
// starting at path[segStart].
func normalAt(path model.Path, segStart int, inward bool, length model.Micrometer) model.Point {
	n := len(path)
	a := path[segStart]
	b := path[(segStart+1)%n]
	edge := b.Sub(a)
	// perpendicular, rotate +90deg: the left side of the edge, which is the
	// filled side of a CCW (outer) loop and of a CW hole alike
	perp := model.NewPoint(-edge.Y(), edge.X())
	if !inward {
		perp = model.NewPoint(edge.Y(), -edge.X())
	}
	return perp.Normal(length)
}

// MoveInside mutates point so that it lies at orthogonal distance
// `distance` inside the nearest polygon boundary, and returns the index of
// that polygon. If no polygon lies within sqrt(maxAttempt2) of point, it
// fails with core.ErrNoFit and leaves point unchanged (spec.md §4.A).
func MoveInside(polygons model.Paths, point *model.Point, distance model.Micrometer, maxAttempt2 int64) (int, error) {
	closest, err := FindClosestInPaths(*point, polygons)
	if err != nil {
		return -1, err
	}
	if closest.Dist2 > maxAttempt2 {
		return -1, core.ErrNoFit
	}

	path := polygons[closest.PolyIndex]
	inward := true // CCW outer loops and CW holes both have the filled side on the left
	offset := normalAt(path, closest.SegStart, inward, distance)
	*point = closest.Point.Add(offset)
	return closest.PolyIndex, nil
}

// EnsureInsideOrOutside displaces point the minimum amount necessary so
// that it lies strictly inside (preferredDist > 0) or outside (< 0)
// polygons, and then, if possible, preferredDist further (spec.md §4.A).
func EnsureInsideOrOutside(polygons model.Paths, point *model.Point, preferredDist model.Micrometer) error {
	wantInside := preferredDist > 0
	isInside := PointInside(polygons, *point)
	if isInside == wantInside {
		// Already on the correct side; still try to push preferredDist further.
		closest, err := FindClosestInPaths(*point, polygons)
		if err != nil {
			return nil
		}
		path := polygons[closest.PolyIndex]
		offset := normalAt(path, closest.SegStart, wantInside, absMicrometer(preferredDist))
		candidate := closest.Point.Add(offset)
		if PointInside(polygons, candidate) == wantInside {
			*point = candidate
		}
		return nil
	}

	closest, err := FindClosestInPaths(*point, polygons)
	if err != nil {
		return core.ErrNoFit
	}
	path := polygons[closest.PolyIndex]
	offset := normalAt(path, closest.SegStart, wantInside, absMicrometer(preferredDist)+1)
	*point = closest.Point.Add(offset)
	return nil
}

func absMicrometer(m model.Micrometer) model.Micrometer {
	if m < 0 {
		return -m
	}
	return m
}
