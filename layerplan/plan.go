package layerplan

import (
	"slicecore/comb"
	"slicecore/core"
	"slicecore/geo"
	"slicecore/model"
	"slicecore/pathorder"
)


// Config holds the per-layer planning parameters that don't belong to any
// one GCodePathConfig (spec.md §4.F/§7).
type Config struct {
	ExtruderCount int

	CombingEnabled      bool
	MaxTravelResolution model.Micrometer // point filter for combed travel in AddTravel; independent of comb.Config.MaxTravelResolution

	WipeAvoidDistance model.Micrometer // "move inside by one wall-line-width" on a failed comb

	LayerIndex model.LayerIndex
}

// LayerPlan accumulates one layer's extruder plans (spec.md §3).
type LayerPlan struct {
	cfg Config

	Z         model.Micrometer
	Thickness model.Micrometer

	ExtruderPlans []*ExtruderPlan

	lastPosition    *model.Point
	lastExtruder    model.ExtruderIndex
	hasLastExtruder bool
	wasInside       bool

	Comb *comb.State

	BridgeWallMask model.Paths

	usedExtruders map[model.ExtruderIndex]bool

	retractionWindow []retractionEvent
	extrudedSoFar    model.Micrometer
}

type retractionEvent struct {
	atExtrudedLength model.Micrometer
}

// NewLayerPlan builds an empty LayerPlan for one Z height.
func NewLayerPlan(z, thickness model.Micrometer, combState *comb.State, cfg Config) *LayerPlan {
	return &LayerPlan{
		cfg:           cfg,
		Z:             z,
		Thickness:     thickness,
		Comb:          combState,
		usedExtruders: map[model.ExtruderIndex]bool{},
	}
}

// LastPosition returns the last planned position, or ok=false if none has
// been planned yet (spec.md §3 invariant: absent means "not yet known").
func (lp *LayerPlan) LastPosition() (model.Point, bool) {
	if lp.lastPosition == nil {
		return model.Point{}, false
	}
	return *lp.lastPosition, true
}

func (lp *LayerPlan) currentPlan() *ExtruderPlan {
	if len(lp.ExtruderPlans) == 0 {
		return nil
	}
	return lp.ExtruderPlans[len(lp.ExtruderPlans)-1]
}

// SetExtruder opens a new ExtruderPlan for extruder n. If n is already the
// current extruder, it's a no-op. Using the same extruder twice in one
// layer is a fatal invariant violation (spec.md §3 invariant, §7
// ExtruderReused).
func (lp *LayerPlan) SetExtruder(n model.ExtruderIndex, retraction *RetractionConfig, startPos model.Point) error {
	cur := lp.currentPlan()
	if cur != nil && cur.Extruder == n {
		return nil
	}

	if lp.usedExtruders[n] {
		return core.NewFatal(core.ExtruderReused, int(lp.cfg.LayerIndex), -1,
			"extruder already used on this layer")
	}

	if cur != nil {
		// Travel to the current extruder's end position before switching
		// -- the caller is expected to have already placed the head there
		// via AddTravel; this just closes the plan out.
		end := cur.endPosition()
		lp.AddTravelSimple(end)
	}

	lp.ExtruderPlans = append(lp.ExtruderPlans, &ExtruderPlan{
		Extruder:   n,
		Layer:      lp.cfg.LayerIndex,
		Retraction: retraction,
	})
	lp.usedExtruders[n] = true

	lp.AddTravelSimple(startPos)
	return nil
}

func (e *ExtruderPlan) endPosition() model.Point {
	for i := len(e.Paths) - 1; i >= 0; i-- {
		pts := e.Paths[i].Points
		if len(pts) > 0 {
			return pts[len(pts)-1]
		}
	}
	return model.Point{}
}

// findOrOpenPath returns the latest path of the current ExtruderPlan if
// its config/flow/speedFactor match, or opens a new one.
func (lp *LayerPlan) findOrOpenPath(cfg *GCodePathConfig, space SpaceFillKind, flow model.Ratio, spiralize bool, speedFactor float64, fanSpeed float64) *GCodePath {
	plan := lp.currentPlan()
	if plan == nil {
		// lazily open extruder 0's plan if the caller never called SetExtruder
		plan = &ExtruderPlan{Extruder: 0, Layer: lp.cfg.LayerIndex}
		lp.ExtruderPlans = append(lp.ExtruderPlans, plan)
		lp.usedExtruders[0] = true
	}

	if n := len(plan.Paths); n > 0 {
		last := plan.Paths[n-1]
		if !last.Done && last.Config == cfg && last.Flow == flow &&
			last.Spiralize == spiralize && last.SpeedFactor == speedFactor &&
			last.SpaceFill == space {
			return last
		}
	}

	p := &GCodePath{
		Config:                cfg,
		SpaceFill:             space,
		Flow:                  flow,
		Spiralize:             spiralize,
		SpeedFactor:           speedFactor,
		FanSpeedOverride:      fanSpeed,
		UpdateExtrusionOffset: true,
	}
	plan.Paths = append(plan.Paths, p)
	return p
}

// travelConfig is the always-present config used for travel moves.
var travelConfig = &GCodePathConfig{
	Kind:     PathKind{Base: KindTravel},
	Label:    "travel",
	IsTravel: true,
}

// AddTravelSimple appends an unconditional travel to p with no retraction
// logic (spec.md §4.F addTravel_simple).
func (lp *LayerPlan) AddTravelSimple(p model.Point) {
	path := lp.findOrOpenPath(travelConfig, SpaceFillNone, 0, false, 1, -1)
	path.Points = append(path.Points, p)
	pt := p
	lp.lastPosition = &pt
}

// AddTravel appends a travel path to p, deciding retraction/combing/Z-hop
// per spec.md §4.F addTravel.
func (lp *LayerPlan) AddTravel(p model.Point, forceRetract bool, retraction *RetractionConfig) {
	path := lp.findOrOpenPath(travelConfig, SpaceFillNone, 0, false, 1, -1)

	last, known := lp.LastPosition()
	if !known {
		// First travel of the layer: a no-op teleport, resolved by the
		// buffer when it stitches this layer onto the prior one (spec.md
		// §3 invariant).
		path.Points = append(path.Points, p)
		pt := p
		lp.lastPosition = &pt
		lp.wasInside = lp.isInside(p)
		return
	}

	isInside := lp.isInside(p)

	combed := false
	throughAir := false
	if lp.cfg.CombingEnabled && lp.Comb != nil && !forceRetract {
		result, err := lp.Comb.Comb(last, p)
		if err == nil {
			combed = true
			throughAir = result.ThroughAir
			for _, sub := range result.Paths {
				var prev model.Point
				havePrev := false
				for _, pt := range sub {
					if havePrev && pt.Sub(prev).ShorterThan(lp.cfg.MaxTravelResolution) {
						continue
					}
					path.Points = append(path.Points, pt)
					prev = pt
					havePrev = true
				}
			}
			if retraction != nil {
				dist := result.CombDistance()
				needsRetract := len(result.Paths) > 1 || result.CrossesBoundary() ||
					dist > retraction.CombingMaxDistance
				if needsRetract {
					path.Retract = true
					path.PerformZHop = retraction.HopEnabled
				}
			}
		}
	}

	if !combed {
		if lp.wasInside {
			// Move inside by one wall-line-width first to avoid an ooze
			// scar on the outer surface (spec.md §4.F step 4).
			avoided := last
			if lp.Comb != nil {
				allOutlines := lp.allOutlines()
				_ = geo.EnsureInsideOrOutside(allOutlines, &avoided, lp.cfg.WipeAvoidDistance)
				path.Points = append(path.Points, avoided)
			}
		}
		travelLen := last.Dist(p)
		doRetract := forceRetract
		if retraction != nil && travelLen >= retraction.MinTravel {
			doRetract = true
		}
		if doRetract && retraction != nil && lp.retractionSuppressed(retraction) {
			doRetract = forceRetract
		}
		if doRetract {
			path.Retract = true
			if retraction != nil {
				path.PerformZHop = retraction.HopEnabled
			}
			lp.recordRetraction()
		}
		path.Points = append(path.Points, p)
	}

	pt := p
	lp.lastPosition = &pt
	lp.wasInside = isInside
	_ = throughAir
}

func (lp *LayerPlan) isInside(p model.Point) bool {
	return geo.PointInside(lp.allOutlines(), p)
}

func (lp *LayerPlan) allOutlines() model.Paths {
	if lp.Comb == nil {
		return nil
	}
	var all model.Paths
	for _, parts := range lp.Comb.Parts() {
		all = append(all, parts...)
	}
	return all
}

// retractionSuppressed reports whether a retraction right now would exceed
// RetractionConfig.CountMax within the ExtrusionWindow (spec.md §8
// "Retraction count exceeding retraction_count_max ... is suppressed").
func (lp *LayerPlan) retractionSuppressed(cfg *RetractionConfig) bool {
	if cfg.CountMax <= 0 {
		return false
	}
	cutoff := lp.extrudedSoFar - cfg.ExtrusionWindow
	count := 0
	kept := lp.retractionWindow[:0]
	for _, ev := range lp.retractionWindow {
		if ev.atExtrudedLength >= cutoff {
			kept = append(kept, ev)
			count++
		}
	}
	lp.retractionWindow = kept
	return count >= cfg.CountMax
}

func (lp *LayerPlan) recordRetraction() {
	lp.retractionWindow = append(lp.retractionWindow, retractionEvent{atExtrudedLength: lp.extrudedSoFar})
}

// AddExtrusionMove appends one extrusion move to the current extruder plan
// (spec.md §4.F addExtrusionMove).
func (lp *LayerPlan) AddExtrusionMove(p model.Point, cfg *GCodePathConfig, flow model.Ratio, spiralize bool, speedFactor float64, fanSpeed float64) {
	path := lp.findOrOpenPath(cfg, SpaceFillLines, flow, spiralize, speedFactor, fanSpeed)
	path.Points = append(path.Points, p)
	if last, known := lp.LastPosition(); known {
		lp.extrudedSoFar += last.Dist(p)
	}
	pt := p
	lp.lastPosition = &pt
	lp.wasInside = true
}

// AddPolygon travels to poly[startIdx] (possibly retracting), extrudes
// every subsequent vertex in order, closes the loop, then optionally wipes
// wipeDist further along the polygon (spec.md §4.F addPolygon).
func (lp *LayerPlan) AddPolygon(poly model.Path, startIdx int, cfg *GCodePathConfig, retraction *RetractionConfig, wipeDist model.Micrometer, spiralize bool, flow model.Ratio, alwaysRetract bool) {
	if len(poly) < 3 {
		return
	}
	n := len(poly)
	start := poly[startIdx%n]
	lp.AddTravel(start, alwaysRetract, retraction)

	path := lp.findOrOpenPath(cfg, SpaceFillPolygon, flow, spiralize, 1, -1)
	if len(path.Points) == 0 {
		path.Points = append(path.Points, start)
	}
	for i := 1; i <= n; i++ {
		idx := (startIdx + i) % n
		path.Points = append(path.Points, poly[idx])
	}

	lp.extrudedSoFar += model.Path(poly).Length()
	pt := poly[startIdx%n]
	lp.lastPosition = &pt

	if wipeDist > 0 {
		lp.wipeAlong(poly, startIdx, wipeDist)
	}
}

// wipeAlong appends a travel walking wipeDist further along poly from
// startIdx, hiding the seam (spec.md §4.F addPolygon).
func (lp *LayerPlan) wipeAlong(poly model.Path, startIdx int, wipeDist model.Micrometer) {
	n := len(poly)
	remaining := wipeDist
	from := poly[startIdx%n]
	travelPath := lp.findOrOpenPath(travelConfig, SpaceFillNone, 0, false, 1, -1)
	for i := 1; i <= n && remaining > 0; i++ {
		to := poly[(startIdx+i)%n]
		seg := to.Sub(from).Size()
		if seg >= remaining {
			to = model.Lerp(from, to, float64(remaining)/float64(seg))
			travelPath.Points = append(travelPath.Points, to)
			pt := to
			lp.lastPosition = &pt
			return
		}
		travelPath.Points = append(travelPath.Points, to)
		remaining -= seg
		from = to
	}
	pt := from
	lp.lastPosition = &pt
}

// AddPolygonsByOptimizer runs the path-order optimizer over polys and
// dispatches each to AddPolygon (spec.md §4.F addPolygonsByOptimizer).
func (lp *LayerPlan) AddPolygonsByOptimizer(polys model.Paths, cfg *GCodePathConfig, retraction *RetractionConfig, orderCfg pathorder.Config, wipeDist model.Micrometer, spiralize bool, flow model.Ratio) {
	if len(polys) == 0 {
		return
	}
	start, _ := lp.LastPosition()

	inputs := make([]pathorder.Input, len(polys))
	for i, p := range polys {
		inputs[i] = pathorder.Input{Path: p, Closed: true}
	}

	ordered := pathorder.Order(start, inputs, orderCfg)
	for _, o := range ordered {
		lp.AddPolygon(polys[o.SourceIndex], o.StartVertex, cfg, retraction, wipeDist, spiralize, flow, false)
	}
}

// AddLinesByOptimizer runs the optimizer in "lines" mode (no seam) and
// emits each as an open extrusion, optionally wiping between consecutive
// lines (spec.md §4.F addLinesByOptimizer).
func (lp *LayerPlan) AddLinesByOptimizer(lines model.Paths, cfg *GCodePathConfig, retraction *RetractionConfig, wipeDist model.Micrometer, flow model.Ratio) {
	if len(lines) == 0 {
		return
	}
	start, _ := lp.LastPosition()

	inputs := make([]pathorder.Input, len(lines))
	for i, l := range lines {
		inputs[i] = pathorder.Input{Path: l, Closed: false}
	}
	ordered := pathorder.Order(start, inputs, pathorder.Config{SeamType: pathorder.SeamShortest})

	for idx, o := range ordered {
		line := lines[o.SourceIndex]
		from, to := line[0], line[len(line)-1]
		if o.Backwards {
			from, to = to, from
		}

		lp.AddTravel(from, false, retraction)
		path := lp.findOrOpenPath(cfg, SpaceFillLines, flow, false, 1, -1)
		if o.Backwards {
			for i := len(line) - 1; i >= 0; i-- {
				path.Points = append(path.Points, line[i])
			}
		} else {
			path.Points = append(path.Points, line...)
		}
		pt := to
		lp.lastPosition = &pt

		if wipeDist > 0 && idx < len(ordered)-1 {
			next := lines[ordered[idx+1].SourceIndex]
			nextStart := next[0]
			if ordered[idx+1].Backwards {
				nextStart = next[len(next)-1]
			}
			if to.Dist(nextStart) > 2*cfg.LineWidth {
				lp.wipeAlong(model.Path{to, nextStart}, 0, wipeDist)
			}
		}
	}
}

// SpiralizeWallSlice emits wall, starting at seamVertex, as one continuous
// extrusion path of 2D points; the path records no per-point Z, so the Z
// ramp from prevTopZ to lp.Z+lp.Thickness is not part of its output. With
// smooth set, the point at vertex step i of n is blended toward the
// prevWall vertex at prevSeamVertex + (i/n)*len(prevWall), weighted by
// i/n: it uses that index-proportional vertex, not the closest point on
// prevWall, and a vertex-count fraction, not arc length (spec.md §4.F
// spiralizeWallSlice). It must be
// called within a single ExtruderPlan; straddling a SetExtruder call is a
// fatal invariant violation (spec.md §7 SpiralizeBroken).
func (lp *LayerPlan) SpiralizeWallSlice(cfg *GCodePathConfig, wall model.Path, prevWall model.Path, seamVertex, prevSeamVertex int, prevTopZ model.Micrometer, smooth bool) error {
	plan := lp.currentPlan()
	if plan == nil {
		return core.NewFatal(core.SpiralizeBroken, int(lp.cfg.LayerIndex), -1, "spiralizeWallSlice called with no open extruder plan")
	}
	startPlan := plan

	n := len(wall)
	if n == 0 {
		return nil
	}
	closedLen := n + 1
	topZ := lp.Z + lp.Thickness

	path := lp.findOrOpenPath(cfg, SpaceFillPolygon, 1, true, 1, -1)

	for i := 0; i <= n; i++ {
		idx := (seamVertex + i) % n
		p := wall[idx]

		if smooth && len(prevWall) > 0 {
			frac := float64(i) / float64(closedLen-1)
			m := len(prevWall)
			prevIdx := (prevSeamVertex + int(frac*float64(m))) % m
			closest := prevWall[prevIdx]
			p = model.Lerp(closest, p, frac)
		}

		path.Points = append(path.Points, p)

		z := prevTopZ + model.Micrometer(float64(topZ-prevTopZ)*float64(i)/float64(closedLen-1))
		_ = z // model.Point is 2D, so this ramp value is not stored; no writer in this repo
		      // reconstructs it from the path index and lp.Z/Thickness
	}

	lp.extrudedSoFar += model.Path(wall).Length()
	pt := wall[seamVertex%n]
	lp.lastPosition = &pt

	if lp.currentPlan() != startPlan {
		return core.NewFatal(core.SpiralizeBroken, int(lp.cfg.LayerIndex), -1, "extruder plan changed mid-spiralize")
	}
	return nil
}
