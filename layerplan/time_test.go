package layerplan

import (
	"math"
	"testing"

	"slicecore/model"
)

// TestScenarioFiveMinimumLayerTimeSlowdown mirrors spec.md §8 scenario 5.
func TestScenarioFiveMinimumLayerTimeSlowdown(t *testing.T) {
	lp := NewLayerPlan(0, 200, nil, Config{})

	extrudeCfg := &GCodePathConfig{Label: "wall", Speed: 60, LineWidth: 400, LayerHeight: 200}

	// Travel: 150 mm at the 150 mm/s travel speed = 1 s.
	travelPath := &GCodePath{Config: travelConfig, SpeedFactor: 1}
	travelPath.Points = []model.Point{model.NewPoint(0, 0), model.NewPoint(150000, 0)}

	// Extrusion: 180 mm at 60 mm/s = 3 s.
	extrudePath := &GCodePath{Config: extrudeCfg, SpeedFactor: 1}
	extrudePath.Points = []model.Point{model.NewPoint(150000, 0), model.NewPoint(330000, 0)}

	plan := &ExtruderPlan{Extruder: 0, Paths: []*GCodePath{travelPath, extrudePath}}
	lp.ExtruderPlans = []*ExtruderPlan{plan}

	cfg := TimeConfig{
		MinimumLayerTimeSec: 10,
		MinimumSpeed:        10,
		TravelSpeed:         150,
	}

	lp.EstimateTimes(cfg)
	if math.Abs(plan.TravelTimeSec-1) > 1e-6 {
		t.Fatalf("expected travel time 1s, got %v", plan.TravelTimeSec)
	}
	if math.Abs(plan.ExtrudeTimeSec-3) > 1e-6 {
		t.Fatalf("expected extrude time 3s, got %v", plan.ExtrudeTimeSec)
	}

	lp.ApplyMinimumLayerTime(cfg)

	wantFactor := 3.0 / (10.0 - 1.0)
	if math.Abs(extrudePath.SpeedFactor-wantFactor) > 1e-3 {
		t.Fatalf("expected speed factor %.4f, got %.4f", wantFactor, extrudePath.SpeedFactor)
	}
	total := plan.TravelTimeSec + plan.ExtrudeTimeSec + plan.ExtraTime
	if math.Abs(total-10) > 1e-3 {
		t.Fatalf("expected total layer time ~10s, got %v", total)
	}
}

// TestApplyMinimumLayerTimeNoopWhenAlreadySlowEnough checks that a layer
// already at or above the minimum is left untouched.
func TestApplyMinimumLayerTimeNoopWhenAlreadySlowEnough(t *testing.T) {
	lp := NewLayerPlan(0, 200, nil, Config{})
	cfg := &GCodePathConfig{Label: "wall", Speed: 60, LineWidth: 400, LayerHeight: 200}
	path := &GCodePath{Config: cfg, SpeedFactor: 1, Points: []model.Point{model.NewPoint(0, 0), model.NewPoint(1200000, 0)}}
	plan := &ExtruderPlan{Extruder: 0, Paths: []*GCodePath{path}}
	lp.ExtruderPlans = []*ExtruderPlan{plan}

	tcfg := TimeConfig{MinimumLayerTimeSec: 10, MinimumSpeed: 10, TravelSpeed: 150}
	lp.ProcessFanSpeedAndMinimalLayerTime(tcfg)

	if path.SpeedFactor != 1 {
		t.Fatalf("expected speed factor untouched, got %v", path.SpeedFactor)
	}
}
