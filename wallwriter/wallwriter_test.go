package wallwriter

import (
	"math"
	"testing"

	"slicecore/layerplan"
	"slicecore/model"
)

func scenarioSixConfig() BridgeConfig {
	return BridgeConfig{
		MinLength:          1000,
		CoastPercent:       1.0, // bridge_wall_coast = 100%
		MaxNonBridgeVolume: 1e9,
		AccelerationSegLen: 1000,
		AccelerationFactor: 2.0 / 9, // (1 - 20/60) / 3: reaches 1.0 after 3 one-mm steps
		NonBridgeSpeed:     60,
		NonBridgeFlow:      1.0,
		BridgeSpeed:        20,
		BridgeFlow:         0.8,
	}
}

// TestCoastDistanceMatchesScenarioSixFormula mirrors spec.md §8 scenario 6's
// coast_dist formula directly.
func TestCoastDistanceMatchesScenarioSixFormula(t *testing.T) {
	cfg := scenarioSixConfig()
	accumulated := 12.0 // mm^3, arbitrary accumulated non-bridge volume

	got := coastDistance(accumulated, cfg)

	ratio := 20.0 * 0.8 / (60.0 * 1.0)
	wantMM := accumulated * (1 - ratio) * cfg.CoastPercent / 40
	want := model.Micrometer(wantMM * 1000)

	if math.Abs(float64(got-want)) > 1 {
		t.Fatalf("coastDistance = %v, want %v", got, want)
	}
}

// TestRampUpRecoversOverThreeMillimeterSteps mirrors scenario 6's "ramp
// speed factor from 20/60 back to 1.0 over successive 1mm sub-segments".
func TestRampUpRecoversOverThreeMillimeterSteps(t *testing.T) {
	cfg := scenarioSixConfig()
	factor := 20.0 / 60.0

	for i := 0; i < 2; i++ {
		factor = rampUp(factor, 1000, cfg)
		if factor >= 1 {
			t.Fatalf("expected factor still below 1 after %d steps, got %v", i+1, factor)
		}
	}
	factor = rampUp(factor, 1000, cfg)
	if math.Abs(factor-1) > 1e-9 {
		t.Fatalf("expected factor to reach 1.0 after 3 steps, got %v", factor)
	}
}

// TestClassifySegmentSplitsAtBridgeMask checks the over-air/over-solid
// classification against a rectangular bridge mask.
func TestClassifySegmentSplitsAtBridgeMask(t *testing.T) {
	mask := model.Paths{{
		model.NewPoint(4000, -1000),
		model.NewPoint(8000, -1000),
		model.NewPoint(8000, 1000),
		model.NewPoint(4000, 1000),
	}}

	p0 := model.NewPoint(0, 0)
	p1 := model.NewPoint(12000, 0)

	segs := classifySegment(p0, p1, mask)
	if len(segs) != 3 {
		t.Fatalf("expected 3 sub-segments, got %d", len(segs))
	}
	if segs[0].overAir || segs[2].overAir {
		t.Fatal("expected the first and last sub-segments to be over solid")
	}
	if !segs[1].overAir {
		t.Fatal("expected the middle sub-segment to be over air")
	}
	bridgeLen := segs[1].a.Dist(segs[1].b)
	if math.Abs(float64(bridgeLen)-4000) > 1 {
		t.Fatalf("expected the bridge sub-segment to be 4mm, got %v um", bridgeLen)
	}
}

// TestAddWallEmitsBridgeConfigOverMask exercises the full AddWall path
// against a real layer plan and checks a bridge-config path with roughly
// the expected length is emitted.
func TestAddWallEmitsBridgeConfigOverMask(t *testing.T) {
	lp := layerplan.NewLayerPlan(0, 200, nil, layerplan.Config{})
	nonBridgeCfg := &layerplan.GCodePathConfig{Label: "outer-wall", Speed: 60, LineWidth: 400, LayerHeight: 200}
	bridgeCfg := &layerplan.GCodePathConfig{Label: "bridge-wall", Speed: 20, LineWidth: 400, LayerHeight: 200, IsBridge: true}

	wall := model.Path{
		model.NewPoint(0, 0),
		model.NewPoint(20000, 0),
		model.NewPoint(20000, 10000),
		model.NewPoint(0, 10000),
	}
	mask := model.Paths{{
		model.NewPoint(4000, -1000),
		model.NewPoint(8000, -1000),
		model.NewPoint(8000, 1000),
		model.NewPoint(4000, 1000),
	}}

	AddWall(lp, wall, 0, nonBridgeCfg, bridgeCfg, 0, 1.0, false, mask, scenarioSixConfig())

	found := false
	for _, plan := range lp.ExtruderPlans {
		for _, p := range plan.Paths {
			if p.Config == bridgeCfg {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected at least one path emitted with the bridge config")
	}
}
