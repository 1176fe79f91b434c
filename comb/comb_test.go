package comb

import (
	"testing"

	"slicecore/model"
)

func square(x0, y0, x1, y1 model.Micrometer) model.Path {
	return model.Path{
		model.NewPoint(x0, y0),
		model.NewPoint(x1, y0),
		model.NewPoint(x1, y1),
		model.NewPoint(x0, y1),
	}
}

func defaultConfig() Config {
	return Config{
		InsideDist1:           200,
		InsideDist2:           400,
		AvoidDistance:         600,
		MaxMoveInsideDistance: 2000,
		IgnoredGap:            10,
		DistToOutside:         100,
		MaxTravelResolution:   100,
	}
}

// TestScenarioTwoCombThroughHole mirrors spec.md §8 scenario 2.
func TestScenarioTwoCombThroughHole(t *testing.T) {
	outer := square(0, 0, 20000, 20000)
	hole := square(8000, 8000, 12000, 12000).Reversed()

	part := model.NewSliceLayerPart(outer, model.Paths{hole})
	state := NewState([]model.SliceLayerPart{part}, defaultConfig())

	start := model.NewPoint(2000, 10000)
	end := model.NewPoint(18000, 10000)

	result, err := state.Comb(start, end)
	if err != nil {
		t.Fatalf("expected combing to succeed, got %v", err)
	}
	if result.ThroughAir {
		t.Fatal("expected the detour to stay inside the part, not go through air")
	}
	if len(result.Paths) != 1 {
		t.Fatalf("expected a single sub-path, got %d", len(result.Paths))
	}
}

func TestCombStraightLineWhenUnobstructed(t *testing.T) {
	part := model.NewSliceLayerPart(square(0, 0, 20000, 20000), nil)
	state := NewState([]model.SliceLayerPart{part}, defaultConfig())

	result, err := state.Comb(model.NewPoint(2000, 2000), model.NewPoint(18000, 18000))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 1 || len(result.Paths[0]) != 2 {
		t.Fatalf("expected a direct 2-point path, got %+v", result.Paths)
	}
}

func TestCombTrivialGap(t *testing.T) {
	part := model.NewSliceLayerPart(square(0, 0, 20000, 20000), nil)
	state := NewState([]model.SliceLayerPart{part}, defaultConfig())

	start := model.NewPoint(5000, 5000)
	end := start.Add(model.NewPoint(1, 1))
	result, err := state.Comb(start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Paths) != 1 || len(result.Paths[0]) != 2 {
		t.Fatalf("expected trivial 2-point path for a sub-ignored-gap move")
	}
}
