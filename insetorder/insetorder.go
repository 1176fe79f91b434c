// Package insetorder is the inset-order optimizer (spec.md §4.D): given all
// wall toolpaths for one part, it determines parent/child nesting,
// linearises a valid visit order outer-to-inner, and schedules travels
// between loops via the comber.
package insetorder

import (
	"slicecore/geo"
	"slicecore/layerplan"
	"slicecore/model"
	"slicecore/pathorder"
	"slicecore/wallwriter"
)

// Config holds the per-part inset-order tunables.
type Config struct {
	OuterConfig       *layerplan.GCodePathConfig
	InnerConfig       *layerplan.GCodePathConfig
	OuterBridgeConfig *layerplan.GCodePathConfig
	InnerBridgeConfig *layerplan.GCodePathConfig

	// BridgeMask is the current layer's unsupported-from-below region
	// (spec.md §4.A/§4.G); every non-odd wall loop is routed through
	// wallwriter.AddWall against this mask. Empty disables bridging and
	// falls back to a plain polygon emission.
	BridgeMask model.Paths
	BridgeCfg  wallwriter.BridgeConfig

	// Fuzzy perturbs the outer wall (InsetIndex 0) only.
	Fuzzy wallwriter.FuzzyConfig

	RetractBeforeOuterWall bool
	RetractionRegionOffset model.Micrometer

	SeamConfig pathorder.Config

	WipeDist model.Micrometer
	Flow     model.Ratio

	Retraction *layerplan.RetractionConfig
}

// Scheduled is one wall loop or odd-wall line placed in visit order.
type Scheduled struct {
	Line        model.ExtrusionLine
	StartVertex int
}

// parentOf returns, for each non-odd line, the index of the immediately
// enclosing non-odd line at one shallower inset index, or -1 if none.
func parentOf(lines []model.ExtrusionLine) []int {
	parents := make([]int, len(lines))
	for i := range parents {
		parents[i] = -1
	}
	for i, li := range lines {
		if li.IsOdd || len(li.Junctions) == 0 {
			continue
		}
		bestDepth := -1
		best := -1
		for j, lj := range lines {
			if i == j || lj.IsOdd || lj.InsetIndex >= li.InsetIndex || len(lj.Junctions) == 0 {
				continue
			}
			if pointInsideLoop(li.Junctions[0].Point, lj) {
				if lj.InsetIndex > bestDepth {
					bestDepth = lj.InsetIndex
					best = j
				}
			}
		}
		parents[i] = best
	}
	return parents
}

func pointInsideLoop(p model.Point, loop model.ExtrusionLine) bool {
	path := make(model.Path, len(loop.Junctions))
	for i, j := range loop.Junctions {
		path[i] = j.Point
	}
	return geo.PointInside(model.Paths{path}, p)
}

func oddParent(lines []model.ExtrusionLine, oddIdx int) int {
	li := lines[oddIdx]
	best := -1
	bestDepth := -1
	for j, lj := range lines {
		if lj.IsOdd || len(lj.Junctions) == 0 || lj.InsetIndex > li.InsetIndex {
			continue
		}
		if pointInsideLoop(li.Junctions[0].Point, lj) && lj.InsetIndex > bestDepth {
			bestDepth = lj.InsetIndex
			best = j
		}
	}
	return best
}

// Order linearises lines outer-to-inner: a loop at inset index k precedes
// every loop at k+1 it encloses, and an odd-wall always follows its
// enclosing even loop (spec.md §4.D).
func Order(start model.Point, lines []model.ExtrusionLine, seamCfg pathorder.Config) []Scheduled {
	if len(lines) == 0 {
		return nil
	}

	maxDepth := 0
	for _, l := range lines {
		if l.InsetIndex > maxDepth {
			maxDepth = l.InsetIndex
		}
	}

	parents := parentOf(lines)

	var result []Scheduled
	current := start
	scheduled := make([]bool, len(lines))

	for depth := 0; depth <= maxDepth; depth++ {
		var levelIdx []int
		for i, l := range lines {
			if l.IsOdd || l.InsetIndex != depth || scheduled[i] {
				continue
			}
			if parents[i] != -1 && !scheduled[parents[i]] {
				// Parent hasn't been visited yet at this depth pass;
				// skip for now (only matters if caller passes an
				// inconsistent depth ordering -- normally parents are
				// always at depth-1 and already scheduled).
				continue
			}
			levelIdx = append(levelIdx, i)
		}

		inputs := make([]pathorder.Input, len(levelIdx))
		for k, i := range levelIdx {
			inputs[k] = pathorder.Input{Path: junctionPoints(lines[i]), Closed: true}
		}
		ordered := pathorder.Order(current, inputs, seamCfg)

		for _, o := range ordered {
			i := levelIdx[o.SourceIndex]
			result = append(result, Scheduled{Line: lines[i], StartVertex: o.StartVertex})
			scheduled[i] = true
			current = lines[i].Junctions[o.StartVertex%len(lines[i].Junctions)].Point

			// Emit any odd-walls whose enclosing loop is exactly this one,
			// immediately after it (spec.md §4.D "odd-walls ... always
			// come after the enclosing even loop").
			for j, l := range lines {
				if !l.IsOdd || scheduled[j] {
					continue
				}
				if oddParent(lines, j) == i {
					result = append(result, Scheduled{Line: l, StartVertex: 0})
					scheduled[j] = true
					if len(l.Junctions) > 0 {
						current = l.Junctions[len(l.Junctions)-1].Point
					}
				}
			}
		}
	}

	return result
}

func junctionPoints(l model.ExtrusionLine) model.Path {
	out := make(model.Path, len(l.Junctions))
	for i, j := range l.Junctions {
		out[i] = j.Point
	}
	return out
}

// OrderPart is the Order/Emit entry point used by one part: it linearises
// part's wall toolpaths using cfg.SeamConfig and writes them into lp,
// returning whether anything was emitted (spec.md §4.D "Return whether
// anything was emitted").
func OrderPart(lp *layerplan.LayerPlan, lines []model.ExtrusionLine, cfg Config) bool {
	start, _ := lp.LastPosition()
	order := Order(start, lines, cfg.SeamConfig)
	return Emit(lp, order, cfg)
}

// Emit writes every scheduled loop/line of order into lp (travels between
// loops are dispatched via lp's own comb state), marking the outer wall's
// incoming travel as a forced retraction when cfg.RetractBeforeOuterWall is
// set (spec.md §4.D). Non-odd loops are routed through wallwriter.AddWall so
// cfg.BridgeMask's bridging/coasting and cfg.Fuzzy's outer-wall fuzzy skin
// (spec.md §4.G) apply to the real slice, not just to wallwriter's own tests.
func Emit(lp *layerplan.LayerPlan, order []Scheduled, cfg Config) bool {
	emitted := false
	for _, s := range order {
		pts := junctionPoints(s.Line)
		if len(pts) < 2 {
			continue
		}

		isOuter := s.Line.InsetIndex == 0

		pathCfg := cfg.InnerConfig
		if isOuter {
			pathCfg = cfg.OuterConfig
		}
		if pathCfg == nil {
			pathCfg = &layerplan.GCodePathConfig{}
		}

		forceRetract := false
		if isOuter && cfg.RetractBeforeOuterWall {
			forceRetract = true
		}

		if s.Line.IsOdd {
			lp.AddLinesByOptimizer(model.Paths{pts}, pathCfg, cfg.Retraction, cfg.WipeDist, cfg.Flow)
			emitted = true
			continue
		}

		startIdx := s.StartVertex
		if isOuter && cfg.Fuzzy.Enabled {
			// ApplyFuzzySkin densifies and reindexes the loop, so rotate
			// StartVertex to position 0 first and emit from there.
			pts = rotateToStart(pts, startIdx)
			pts = wallwriter.ApplyFuzzySkin(pts, cfg.Fuzzy)
			startIdx = 0
		}

		bridgeCfg := cfg.InnerBridgeConfig
		if isOuter {
			bridgeCfg = cfg.OuterBridgeConfig
		}
		if bridgeCfg == nil {
			bridgeCfg = pathCfg
		}

		wallwriter.AddWall(lp, pts, startIdx, pathCfg, bridgeCfg, cfg.WipeDist, cfg.Flow, forceRetract, cfg.BridgeMask, cfg.BridgeCfg)
		emitted = true
	}
	return emitted
}

// rotateToStart returns pts rotated so the point at index start becomes
// index 0, preserving winding order.
func rotateToStart(pts model.Path, start int) model.Path {
	n := len(pts)
	if n == 0 {
		return pts
	}
	start %= n
	if start < 0 {
		start += n
	}
	if start == 0 {
		return pts
	}
	out := make(model.Path, n)
	for i := 0; i < n; i++ {
		out[i] = pts[(start+i)%n]
	}
	return out
}

// RetractionRegion returns the outer wall offset inward by
// cfg.RetractionRegionOffset, the region within which the head must land
// after a pre-outer-wall retraction so it isn't left sitting on the outer
// surface (spec.md §4.D).
func RetractionRegion(outerWall model.Path, offset model.Micrometer) model.Paths {
	if len(outerWall) == 0 {
		return nil
	}
	return geo.Offset(model.Paths{outerWall}, -offset, geo.JoinRound)
}
