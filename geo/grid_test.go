package geo

import (
	"testing"

	"slicecore/model"
)

// TestLocToLineGridFindClosestFindsNearestSegment checks FindClosest
// returns the segment nearest a query point, not just any segment in a
// neighbouring cell.
func TestLocToLineGridFindClosestFindsNearestSegment(t *testing.T) {
	boundary := model.Paths{square(0, 0, 10000, 10000)}
	grid := NewLocToLineGrid(boundary, 2000)

	result, ok := grid.FindClosest(model.NewPoint(0, 5000))
	if !ok {
		t.Fatal("expected a closest segment to be found")
	}
	if result.Point.X() > 100 {
		t.Fatalf("expected the closest point to sit near the left edge, got %+v", result.Point)
	}
}

// TestLocToLineGridSegmentsNearReturnsCandidatesNearQuery checks
// SegmentsNear returns the boundary segments sharing a cell with the
// query segment, and excludes segments far from it.
func TestLocToLineGridSegmentsNearReturnsCandidatesNearQuery(t *testing.T) {
	boundary := model.Paths{square(0, 0, 10000, 10000)}
	grid := NewLocToLineGrid(boundary, 2000)

	// A query segment crossing the left edge (x=0) should surface that
	// edge's segments among its candidates.
	candidates := grid.SegmentsNear(model.NewPoint(-1000, 4000), model.NewPoint(1000, 4000))
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate segment near the query")
	}

	var sawLeftEdge bool
	for _, seg := range candidates {
		if seg[0].X() == 0 && seg[1].X() == 0 {
			sawLeftEdge = true
		}
	}
	if !sawLeftEdge {
		t.Fatalf("expected the left edge segment among candidates, got %+v", candidates)
	}
}

// TestLocToLineGridSegmentsNearEmptyFarFromBoundary checks a query segment
// whose bounding box touches no populated cell returns no candidates.
func TestLocToLineGridSegmentsNearEmptyFarFromBoundary(t *testing.T) {
	boundary := model.Paths{square(0, 0, 10000, 10000)}
	grid := NewLocToLineGrid(boundary, 2000)

	candidates := grid.SegmentsNear(model.NewPoint(100000, 100000), model.NewPoint(101000, 100000))
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates far from the boundary, got %+v", candidates)
	}
}
