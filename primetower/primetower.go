// Package primetower is the prime-tower / ooze-shield planner (spec.md
// component I): it builds the purge structure's footprint, rotates
// through a fixed set of wipe locations at extruder changes, and
// optionally maintains an ooze shield around the whole print.
package primetower

import (
	"math"

	"slicecore/geo"
	"slicecore/layerplan"
	"slicecore/model"
)

// wipeLocationSkip and numberOfWipeLocations are consecutive Fibonacci
// numbers: stepping by the smaller one through a ring of the larger one
// visits every location exactly once before repeating, spreading wear
// evenly around the tower wall (ground on PrimeTower.h's wipe_location_skip
// / number_of_wipe_locations pair).
const (
	wipeLocationSkip      = 8
	numberOfWipeLocations = 13
)

// Config holds the prime tower's static layout parameters.
type Config struct {
	Position model.Point
	Radius   model.Micrometer

	ExtruderCount int
	ConfigPerExtruder []*layerplan.GCodePathConfig

	OozeShieldEnabled bool
	OozeShieldOffset  model.Micrometer
}

// Tower is one sliced print's prime tower state: its ground outline and
// the precomputed wipe-location ring.
type Tower struct {
	cfg Config

	GroundPoly model.Paths

	wipeLocations       []model.Point
	currentWipeLocation int
}

// New builds a circular prime tower footprint centered at cfg.Position
// with the given radius, and precomputes its wipe-location ring
// (ground on PrimeTower.h's generateGroundpoly/generateWipeLocations).
func New(cfg Config) *Tower {
	t := &Tower{cfg: cfg}
	t.GroundPoly = model.Paths{circle(cfg.Position, cfg.Radius, 32)}
	t.generateWipeLocations()
	return t
}

func circle(center model.Point, radius model.Micrometer, segments int) model.Path {
	path := make(model.Path, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		dx := model.Micrometer(float64(radius) * math.Cos(angle))
		dy := model.Micrometer(float64(radius) * math.Sin(angle))
		path[i] = model.NewPoint(center.X()+dx, center.Y()+dy)
	}
	return path
}

// generateWipeLocations samples numberOfWipeLocations points evenly around
// the tower's ground outline.
func (t *Tower) generateWipeLocations() {
	if len(t.GroundPoly) == 0 || len(t.GroundPoly[0]) == 0 {
		return
	}
	poly := t.GroundPoly[0]
	n := len(poly)
	t.wipeLocations = make([]model.Point, numberOfWipeLocations)
	for i := 0; i < numberOfWipeLocations; i++ {
		idx := (i * n) / numberOfWipeLocations
		t.wipeLocations[i] = poly[idx%n]
	}
}

// NextWipeLocation advances the rotating wipe-location index by
// wipeLocationSkip (mod numberOfWipeLocations) and returns the new
// current location, matching PrimeTower.h's preWipe rotation.
func (t *Tower) NextWipeLocation() model.Point {
	if len(t.wipeLocations) == 0 {
		return t.cfg.Position
	}
	t.currentWipeLocation = (t.currentWipeLocation + wipeLocationSkip) % len(t.wipeLocations)
	return t.wipeLocations[t.currentWipeLocation]
}

// AddToLayer emits one purge ring for extruder e into lp at the current
// layer: the ground outline at full radius on every call. The ring does
// not shrink with the extruder's previous visits, and no denser infill
// pattern is printed.
func (t *Tower) AddToLayer(lp *layerplan.LayerPlan, extruder model.ExtruderIndex, retraction *layerplan.RetractionConfig, flow model.Ratio) {
	if extruder < 0 || int(extruder) >= len(t.cfg.ConfigPerExtruder) {
		return
	}
	cfg := t.cfg.ConfigPerExtruder[extruder]
	if cfg == nil || len(t.GroundPoly) == 0 {
		return
	}
	for _, poly := range t.GroundPoly {
		lp.AddPolygon(poly, 0, cfg, retraction, 0, false, flow, true)
	}
}

// OozeShield builds this layer's ooze-shield outline: every part's
// outline offset outward by cfg.OozeShieldOffset and unioned together
// (spec.md SUPPLEMENTED FEATURES, grounded on PrimeTower.h's conditional
// ooze-shield emission).
func (t *Tower) OozeShield(partOutlines model.Paths) model.Paths {
	if !t.cfg.OozeShieldEnabled || len(partOutlines) == 0 {
		return nil
	}
	offset := geo.Offset(partOutlines, t.cfg.OozeShieldOffset, geo.JoinRound)
	union, _ := geo.Union(offset, nil)
	return union
}
