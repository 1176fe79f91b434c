package geo

import (
	convexHull2d "github.com/furstenheim/go-convex-hull-2d"

	"slicecore/model"
)

// ConvexHull returns the convex hull of every point across polygons, using
// github.com/furstenheim/go-convex-hull-2d's flat-array entry point. It is
// used as a cheap pre-filter by the comber (spec.md §4.E) before running
// the exact LinePolygonsCrossings routine: if a travel segment lies
// entirely outside the hull of all parts, it cannot possibly cross into
// any of them via a detour, so the expensive exact check can be skipped.
func ConvexHull(polygons model.Paths) model.Path {
	var flat []float64
	for _, path := range polygons {
		for _, p := range path {
			flat = append(flat, float64(p.X()), float64(p.Y()))
		}
	}
	if len(flat) < 6 {
		// Fewer than 3 points: no hull to compute, return the input as-is.
		var out model.Path
		for _, path := range polygons {
			out = append(out, path...)
		}
		return out
	}

	hullFlat := convexHull2d.ConvexHullArrayInput(flat)

	out := make(model.Path, 0, len(hullFlat)/2)
	for i := 0; i+1 < len(hullFlat); i += 2 {
		out = append(out, model.NewPoint(model.Micrometer(hullFlat[i]), model.Micrometer(hullFlat[i+1])))
	}
	return out
}

// SegmentEntirelyOutside reports whether both endpoints of the segment a-b
// lie outside the (already-computed) convex hull and the segment's
// bounding box doesn't overlap the hull's bounding box -- a conservative,
// cheap rejection test, not an exact one (a segment can graze a concave
// hull without being "entirely outside" by this test passing through its
// bbox; callers must still run the exact check when this returns false).
func SegmentEntirelyOutside(hull model.Path, a, b model.Point) bool {
	if len(hull) < 3 {
		return false
	}
	if PointInsidePath(hull, a) || PointInsidePath(hull, b) {
		return false
	}

	hMin, hMax := hull.Min(), hull.Max()
	segMin := model.NewPoint(minM(a.X(), b.X()), minM(a.Y(), b.Y()))
	segMax := model.NewPoint(maxM(a.X(), b.X()), maxM(a.Y(), b.Y()))

	if segMax.X() < hMin.X() || segMin.X() > hMax.X() {
		return true
	}
	if segMax.Y() < hMin.Y() || segMin.Y() > hMax.Y() {
		return true
	}
	return false
}

func minM(a, b model.Micrometer) model.Micrometer {
	if a < b {
		return a
	}
	return b
}

func maxM(a, b model.Micrometer) model.Micrometer {
	if a > b {
		return a
	}
	return b
}
