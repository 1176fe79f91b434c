package meshsource

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hschendel/stl"

	"slicecore/model"
)

var pointComparer = cmp.Comparer(func(a, b model.Point) bool { return a.Eq(b) })

func tri(x0, y0, z0, x1, y1, z1, x2, y2, z2 float32) stl.Triangle {
	return stl.Triangle{
		Vertices: [3]stl.Vec3{
			{x0, y0, z0},
			{x1, y1, z1},
			{x2, y2, z2},
		},
	}
}

// TestTrianglePlaneIntersectionCrossing checks a triangle straddling the
// plane yields exactly one segment (two intersection points).
func TestTrianglePlaneIntersectionCrossing(t *testing.T) {
	triangle := tri(0, 0, -1, 10, 0, 1, 0, 10, 1)
	pts := trianglePlaneIntersection(triangle, 0)
	if len(pts) != 2 {
		t.Fatalf("expected 2 intersection points, got %d", len(pts))
	}
}

// TestTrianglePlaneIntersectionMiss checks a triangle entirely above the
// plane yields nothing.
func TestTrianglePlaneIntersectionMiss(t *testing.T) {
	triangle := tri(0, 0, 5, 10, 0, 5, 0, 10, 6)
	pts := trianglePlaneIntersection(triangle, 0)
	if len(pts) != 0 {
		t.Fatalf("expected no intersection points, got %d", len(pts))
	}
}

// TestStitchClosesASquareFromFourSegments checks stitch joins four
// disjoint segments sharing endpoints into one closed quadrilateral.
func TestStitchClosesASquareFromFourSegments(t *testing.T) {
	segs := []segment{
		{a: model.NewPoint(0, 0), b: model.NewPoint(10000, 0)},
		{a: model.NewPoint(10000, 0), b: model.NewPoint(10000, 10000)},
		{a: model.NewPoint(10000, 10000), b: model.NewPoint(0, 10000)},
		{a: model.NewPoint(0, 10000), b: model.NewPoint(0, 0)},
	}

	polys := stitch(segs, 100)
	if len(polys) != 1 {
		t.Fatalf("expected 1 closed polygon, got %d", len(polys))
	}
	if len(polys[0]) < 4 {
		t.Fatalf("expected at least 4 vertices, got %d", len(polys[0]))
	}

	want := model.Path{
		model.NewPoint(0, 0),
		model.NewPoint(10000, 0),
		model.NewPoint(10000, 10000),
		model.NewPoint(0, 10000),
		model.NewPoint(0, 0),
	}
	if diff := cmp.Diff(want, polys[0], pointComparer); diff != "" {
		t.Fatalf("stitched polygon mismatch (-want +got):\n%s", diff)
	}
}

// TestBoundsZFindsMinAndMax sanity-checks the bounding-box scan over a
// two-triangle solid.
func TestBoundsZFindsMinAndMax(t *testing.T) {
	solid := &stl.Solid{
		Triangles: []stl.Triangle{
			tri(0, 0, -5, 1, 0, 2, 0, 1, 0),
			tri(0, 0, 3, 1, 0, 8, 0, 1, 4),
		},
	}
	min, max := boundsZ(solid)
	if min != -5 {
		t.Fatalf("expected min -5, got %v", min)
	}
	if max != 8 {
		t.Fatalf("expected max 8, got %v", max)
	}
}
