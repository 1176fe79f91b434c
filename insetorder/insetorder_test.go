package insetorder

import (
	"testing"

	"slicecore/layerplan"
	"slicecore/model"
	"slicecore/pathorder"
	"slicecore/wallwriter"
)

func loopLine(pts model.Path, insetIndex int) model.ExtrusionLine {
	junctions := make([]model.ExtrusionJunction, len(pts))
	for i, p := range pts {
		junctions[i] = model.ExtrusionJunction{Point: p, Width: 400}
	}
	return model.ExtrusionLine{Junctions: junctions, InsetIndex: insetIndex}
}

func square(x0, y0, x1, y1 model.Micrometer) model.Path {
	return model.Path{
		model.NewPoint(x0, y0),
		model.NewPoint(x1, y0),
		model.NewPoint(x1, y1),
		model.NewPoint(x0, y1),
	}
}

// TestOrderPlacesOuterBeforeInner checks that a two-wall nested part is
// scheduled outer loop first, inner loop second (spec.md §4.D).
func TestOrderPlacesOuterBeforeInner(t *testing.T) {
	outer := loopLine(square(0, 0, 20000, 20000), 0)
	inner := loopLine(square(2000, 2000, 18000, 18000), 1)

	lines := []model.ExtrusionLine{outer, inner}
	order := Order(model.NewPoint(0, 0), lines, pathorder.Config{SeamType: pathorder.SeamShortest})

	if len(order) != 2 {
		t.Fatalf("expected 2 scheduled loops, got %d", len(order))
	}
	if order[0].Line.InsetIndex != 0 {
		t.Fatalf("expected the outer wall scheduled first, got inset index %d", order[0].Line.InsetIndex)
	}
	if order[1].Line.InsetIndex != 1 {
		t.Fatalf("expected the inner wall scheduled second, got inset index %d", order[1].Line.InsetIndex)
	}
}

// TestOrderPlacesOddWallAfterEnclosingLoop checks the odd-wall-after-
// enclosing-even-loop rule.
func TestOrderPlacesOddWallAfterEnclosingLoop(t *testing.T) {
	outer := loopLine(square(0, 0, 20000, 20000), 0)
	odd := model.ExtrusionLine{
		Junctions: []model.ExtrusionJunction{
			{Point: model.NewPoint(5000, 5000), Width: 500},
			{Point: model.NewPoint(15000, 5000), Width: 500},
		},
		IsOdd:      true,
		InsetIndex: 1,
	}

	lines := []model.ExtrusionLine{outer, odd}
	order := Order(model.NewPoint(0, 0), lines, pathorder.Config{SeamType: pathorder.SeamShortest})

	if len(order) != 2 {
		t.Fatalf("expected 2 scheduled entries, got %d", len(order))
	}
	if order[0].Line.IsOdd {
		t.Fatal("expected the enclosing loop scheduled before the odd wall")
	}
	if !order[1].Line.IsOdd {
		t.Fatal("expected the odd wall scheduled last")
	}
}

// TestEmitWritesPathsForEveryLoop exercises Order+Emit end to end against a
// real LayerPlan.
func TestEmitWritesPathsForEveryLoop(t *testing.T) {
	outer := loopLine(square(0, 0, 20000, 20000), 0)
	inner := loopLine(square(2000, 2000, 18000, 18000), 1)
	lines := []model.ExtrusionLine{outer, inner}

	lp := layerplan.NewLayerPlan(0, 200, nil, layerplan.Config{})
	cfg := Config{
		OuterConfig: &layerplan.GCodePathConfig{Label: "outer-wall", Speed: 60, LineWidth: 400, LayerHeight: 200},
		InnerConfig: &layerplan.GCodePathConfig{Label: "inner-wall", Speed: 80, LineWidth: 400, LayerHeight: 200},
		Flow:        1.0,
		SeamConfig:  pathorder.Config{SeamType: pathorder.SeamShortest},
	}

	emitted := OrderPart(lp, lines, cfg)
	if !emitted {
		t.Fatal("expected OrderPart to report it emitted something")
	}

	var sawOuter, sawInner bool
	for _, plan := range lp.ExtruderPlans {
		for _, p := range plan.Paths {
			if p.Config == cfg.OuterConfig {
				sawOuter = true
			}
			if p.Config == cfg.InnerConfig {
				sawInner = true
			}
		}
	}
	if !sawOuter || !sawInner {
		t.Fatalf("expected both outer and inner wall paths emitted, sawOuter=%v sawInner=%v", sawOuter, sawInner)
	}
}

// TestEmitRoutesOuterWallThroughBridgeConfigUnderMask checks that when a
// bridge mask fully covers the outer wall, Emit's wallwriter.AddWall call
// produces paths carrying OuterBridgeConfig rather than the ordinary
// OuterConfig (spec.md §4.G).
func TestEmitRoutesOuterWallThroughBridgeConfigUnderMask(t *testing.T) {
	outerLoop := square(0, 0, 20000, 20000)
	outer := loopLine(outerLoop, 0)

	lp := layerplan.NewLayerPlan(0, 200, nil, layerplan.Config{})
	outerBridgeCfg := &layerplan.GCodePathConfig{Label: "outer-wall-bridge", Speed: 20, LineWidth: 400, LayerHeight: 200}
	cfg := Config{
		OuterConfig:       &layerplan.GCodePathConfig{Label: "outer-wall", Speed: 60, LineWidth: 400, LayerHeight: 200},
		InnerConfig:       &layerplan.GCodePathConfig{Label: "inner-wall", Speed: 80, LineWidth: 400, LayerHeight: 200},
		OuterBridgeConfig: outerBridgeCfg,
		BridgeMask:        model.Paths{outerLoop},
		BridgeCfg: wallwriter.BridgeConfig{
			MinLength:      0,
			NonBridgeSpeed: 60,
			NonBridgeFlow:  1,
			BridgeSpeed:    20,
			BridgeFlow:     1,
		},
		Flow:       1.0,
		SeamConfig: pathorder.Config{SeamType: pathorder.SeamShortest},
	}

	emitted := OrderPart(lp, []model.ExtrusionLine{outer}, cfg)
	if !emitted {
		t.Fatal("expected OrderPart to report it emitted something")
	}

	var sawBridge bool
	for _, plan := range lp.ExtruderPlans {
		for _, p := range plan.Paths {
			if p.Config == outerBridgeCfg {
				sawBridge = true
			}
		}
	}
	if !sawBridge {
		t.Fatal("expected at least one path under the bridge mask to use OuterBridgeConfig")
	}
}
