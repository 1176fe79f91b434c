package primetower

import (
	"testing"

	"slicecore/layerplan"
	"slicecore/model"
)

func testConfig() Config {
	return Config{
		Position: model.NewPoint(0, 0),
		Radius:   5000,
		ConfigPerExtruder: []*layerplan.GCodePathConfig{
			{Label: "prime-tower-0", Speed: 40, LineWidth: 400, LayerHeight: 200},
			{Label: "prime-tower-1", Speed: 40, LineWidth: 400, LayerHeight: 200},
		},
		OozeShieldEnabled: true,
		OozeShieldOffset:  1000,
	}
}

// TestNewBuildsGroundPolyAndWipeLocations checks the tower's footprint and
// wipe-location ring are populated and the ring visits distinct points.
func TestNewBuildsGroundPolyAndWipeLocations(t *testing.T) {
	tower := New(testConfig())

	if len(tower.GroundPoly) == 0 || len(tower.GroundPoly[0]) == 0 {
		t.Fatal("expected a non-empty ground polygon")
	}
	if len(tower.wipeLocations) != numberOfWipeLocations {
		t.Fatalf("expected %d wipe locations, got %d", numberOfWipeLocations, len(tower.wipeLocations))
	}
}

// TestNextWipeLocationRotatesWithoutImmediateRepeat checks the rotation
// skip never returns the same point on consecutive calls (PrimeTower.h's
// wipe_location_skip property), since skip and count are coprime.
func TestNextWipeLocationRotatesWithoutImmediateRepeat(t *testing.T) {
	tower := New(testConfig())

	first := tower.NextWipeLocation()
	second := tower.NextWipeLocation()
	if first.Eq(second) {
		t.Fatal("expected consecutive wipe locations to differ")
	}

	seen := map[[2]model.Micrometer]bool{}
	seen[[2]model.Micrometer{first.X(), first.Y()}] = true
	loc := first
	for i := 0; i < numberOfWipeLocations-1; i++ {
		loc = tower.NextWipeLocation()
		key := [2]model.Micrometer{loc.X(), loc.Y()}
		if seen[key] && i < numberOfWipeLocations-2 {
			t.Fatalf("wipe location repeated too early at step %d", i)
		}
		seen[key] = true
	}
}

// TestAddToLayerEmitsPurgeRing checks AddToLayer writes a polygon using
// the extruder's own config.
func TestAddToLayerEmitsPurgeRing(t *testing.T) {
	tower := New(testConfig())
	lp := layerplan.NewLayerPlan(0, 200, nil, layerplan.Config{})
	if err := lp.SetExtruder(0, nil, model.NewPoint(0, 0)); err != nil {
		t.Fatalf("SetExtruder: %v", err)
	}

	tower.AddToLayer(lp, 1, nil, 1.0)

	found := false
	for _, plan := range lp.ExtruderPlans {
		for _, p := range plan.Paths {
			if p.Config == tower.cfg.ConfigPerExtruder[1] {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected a path using extruder 1's prime-tower config")
	}
}

// TestOozeShieldDisabledByDefault checks OozeShield returns nothing when
// the option is off.
func TestOozeShieldDisabledByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.OozeShieldEnabled = false
	tower := New(cfg)

	outlines := model.Paths{{
		model.NewPoint(-10000, -10000),
		model.NewPoint(10000, -10000),
		model.NewPoint(10000, 10000),
		model.NewPoint(-10000, 10000),
	}}
	if shield := tower.OozeShield(outlines); shield != nil {
		t.Fatalf("expected no ooze shield when disabled, got %v", shield)
	}
}

// TestOozeShieldEnabledProducesOutline checks the enabled case returns a
// non-empty offset outline.
func TestOozeShieldEnabledProducesOutline(t *testing.T) {
	tower := New(testConfig())

	outlines := model.Paths{{
		model.NewPoint(-10000, -10000),
		model.NewPoint(10000, -10000),
		model.NewPoint(10000, 10000),
		model.NewPoint(-10000, 10000),
	}}
	shield := tower.OozeShield(outlines)
	if len(shield) == 0 {
		t.Fatal("expected a non-empty ooze shield outline")
	}
}
