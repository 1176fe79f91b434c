package layerplan

import (
	"testing"

	"slicecore/comb"
	"slicecore/model"
)

func squarePart(x0, y0, x1, y1 model.Micrometer) model.SliceLayerPart {
	outer := model.Path{
		model.NewPoint(x0, y0),
		model.NewPoint(x1, y0),
		model.NewPoint(x1, y1),
		model.NewPoint(x0, y1),
	}
	return model.NewSliceLayerPart(outer, nil)
}

// TestScenarioThreeRetractionOnLongAirTravel mirrors spec.md §8 scenario 3:
// a single retraction (with z-hop) is issued for a long travel between two
// isolated parts.
func TestScenarioThreeRetractionOnLongAirTravel(t *testing.T) {
	partA := squarePart(0, 0, 10000, 10000)
	partB := squarePart(60000, 0, 70000, 10000)

	combCfg := comb.Config{
		InsideDist1:           200,
		InsideDist2:           400,
		AvoidDistance:         600,
		MaxMoveInsideDistance: 2000,
		IgnoredGap:            10,
		DistToOutside:         100,
		MaxTravelResolution:   100,
	}
	state := comb.NewState([]model.SliceLayerPart{partA, partB}, combCfg)

	lp := NewLayerPlan(0, 200, state, Config{
		CombingEnabled:      true,
		MaxTravelResolution: 100,
	})

	start := model.NewPoint(5000, 5000)
	end := model.NewPoint(65000, 5000)
	lp.AddTravelSimple(start)

	retraction := &RetractionConfig{
		MinTravel:          1000,
		CombingMaxDistance: 1500,
		HopEnabled:         true,
	}
	lp.AddTravel(end, false, retraction)

	retractCount := 0
	plan := lp.currentPlan()
	for _, p := range plan.Paths {
		if p.Retract {
			retractCount++
			if !p.PerformZHop {
				t.Error("expected perform_z_hop=true on the retracted travel")
			}
		}
	}
	if retractCount != 1 {
		t.Fatalf("expected exactly one retraction, got %d", retractCount)
	}

	last, ok := lp.LastPosition()
	if !ok || !last.Eq(end) {
		t.Fatalf("expected last position %v, got %v (ok=%v)", end, last, ok)
	}
}

// TestSetExtruderRejectsReuse checks the ExtruderReused fatal invariant
// (spec.md §7).
func TestSetExtruderRejectsReuse(t *testing.T) {
	lp := NewLayerPlan(0, 200, nil, Config{LayerIndex: 3})

	if err := lp.SetExtruder(0, nil, model.NewPoint(0, 0)); err != nil {
		t.Fatalf("unexpected error on first use: %v", err)
	}
	if err := lp.SetExtruder(1, nil, model.NewPoint(1000, 0)); err != nil {
		t.Fatalf("unexpected error switching extruder: %v", err)
	}
	if err := lp.SetExtruder(0, nil, model.NewPoint(2000, 0)); err == nil {
		t.Fatal("expected a fatal error reusing extruder 0 on the same layer")
	}
}

// TestAddPolygonTravelsAndClosesLoop exercises the basic wall-emission path
// used throughout component F.
func TestAddPolygonTravelsAndClosesLoop(t *testing.T) {
	lp := NewLayerPlan(0, 200, nil, Config{})

	poly := model.Path{
		model.NewPoint(0, 0),
		model.NewPoint(10000, 0),
		model.NewPoint(10000, 10000),
		model.NewPoint(0, 10000),
	}
	cfg := &GCodePathConfig{Label: "outer-wall", Speed: 60, LineWidth: 400, LayerHeight: 200}

	lp.AddPolygon(poly, 0, cfg, nil, 0, false, 1, false)

	plan := lp.currentPlan()
	if plan == nil || len(plan.Paths) == 0 {
		t.Fatal("expected at least one path")
	}
	var wallPath *GCodePath
	for _, p := range plan.Paths {
		if p.Config == cfg {
			wallPath = p
		}
	}
	if wallPath == nil {
		t.Fatal("expected a wall path with the given config")
	}
	if len(wallPath.Points) != len(poly)+1 {
		t.Fatalf("expected %d points (closed loop), got %d", len(poly)+1, len(wallPath.Points))
	}
	if !wallPath.Points[0].Eq(poly[0]) || !wallPath.Points[len(wallPath.Points)-1].Eq(poly[0]) {
		t.Fatal("expected the wall path to start and end at the seam vertex")
	}
}
