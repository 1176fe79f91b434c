// Package wallwriter is the wall writer (spec.md §4.G): it emits one closed
// wall loop into a layer plan, splitting it into bridge/non-bridge
// sub-segments against a bridge_wall_mask, coasting the tail of each
// non-bridge run, and ramping the post-bridge speed factor back up.
package wallwriter

import (
	"math/rand"

	"slicecore/layerplan"
	"slicecore/model"
)

// BridgeConfig holds the bridge/coasting tunables (spec.md §4.G).
type BridgeConfig struct {
	MinLength            model.Micrometer
	CoastPercent         float64 // bridge_wall_coast as a ratio (1.0 for 100%), matching the /40 formula directly
	MaxNonBridgeVolume   float64 // mm^3
	AccelerationSegLen   model.Micrometer
	AccelerationFactor   float64 // speed-factor increase per AccelerationSegLen step, capped at 1.0
	NonBridgeSpeed       model.Velocity
	NonBridgeFlow        model.Ratio
	BridgeSpeed          model.Velocity
	BridgeFlow           model.Ratio
}

// FuzzyConfig holds the fuzzy-skin tunables (spec.md §4.G), applied to the
// outer wall only.
type FuzzyConfig struct {
	Enabled       bool
	Amplitude     model.Micrometer
	PointDistance model.Micrometer
	Rand          *rand.Rand
}

// crossing is one point where the wall's boundary enters or leaves the
// bridge mask, expressed as (segment index, t along that segment).
type crossing struct {
	segIdx int
	t      float64
	pt     model.Point
}

// AddWall emits wall as one closed loop starting at startIdx, splitting it
// against bridgeMask when bridgeMask is non-empty (spec.md §4.G addWall).
func AddWall(lp *layerplan.LayerPlan, wall model.Path, startIdx int, nonBridgeCfg, bridgeCfg *layerplan.GCodePathConfig, wipeDist model.Micrometer, flow model.Ratio, alwaysRetract bool, bridgeMask model.Paths, bcfg BridgeConfig) {
	n := len(wall)
	if n < 3 {
		return
	}

	if len(bridgeMask) == 0 {
		lp.AddPolygon(wall, startIdx, nonBridgeCfg, nil, wipeDist, false, flow, alwaysRetract)
		return
	}

	startIdx = advanceOffAir(wall, startIdx, bridgeMask)

	start := wall[startIdx%n]
	lp.AddTravel(start, alwaysRetract, nil)

	var nonBridgeVolume float64
	speedFactor := 1.0

	for i := 0; i < n; i++ {
		p0 := wall[(startIdx+i)%n]
		p1 := wall[(startIdx+i+1)%n]

		segs := classifySegment(p0, p1, bridgeMask)
		for si, seg := range segs {
			segLen := seg.a.Dist(seg.b)

			if seg.overAir {
				if segLen >= bcfg.MinLength {
					lp.AddExtrusionMove(seg.b, bridgeCfg, bcfg.BridgeFlow, false, 1, -1)
					nonBridgeVolume = 0
					if bcfg.NonBridgeSpeed > 0 {
						speedFactor = float64(bcfg.BridgeSpeed / bcfg.NonBridgeSpeed)
						if speedFactor > 1 {
							speedFactor = 1
						}
					}
					continue
				}
				// Too short to count as a bridge; treat as ordinary wall.
			}

			coastDist := coastDistance(nonBridgeVolume, bcfg)
			remainingToNextBridge := remainingBeforeNextBridge(segs, si, wall, startIdx+i, n, bridgeMask)

			if speedFactor < 1 {
				speedFactor = rampUp(speedFactor, segLen, bcfg)
			}

			if coastDist > 0 && remainingToNextBridge <= coastDist {
				coastStart := stepBack(seg.b, seg.a, coastDist)
				lp.AddExtrusionMove(coastStart, nonBridgeCfg, flow, false, speedFactor, -1)
				lp.AddExtrusionMove(seg.b, nonBridgeCfg, 0, false, speedFactor, -1)
			} else {
				lp.AddExtrusionMove(seg.b, nonBridgeCfg, flow, false, speedFactor, -1)
				vol := float64(segLen) / 1000 * float64(flow) * speedFactor * float64(bcfg.NonBridgeSpeed)
				nonBridgeVolume += vol
				if nonBridgeVolume > bcfg.MaxNonBridgeVolume {
					nonBridgeVolume = bcfg.MaxNonBridgeVolume
				}
			}
		}
	}

	if wipeDist > 0 {
		wipeEnd := stepAlongLoop(wall, startIdx, wipeDist)
		lp.AddTravelSimple(wipeEnd)
	}
}

// coastDistance computes the coast distance from the accumulated
// non-bridge extrusion volume (spec.md §4.G coasting formula).
func coastDistance(nonBridgeVolume float64, cfg BridgeConfig) model.Micrometer {
	if cfg.NonBridgeSpeed <= 0 || cfg.NonBridgeFlow <= 0 {
		return 0
	}
	v := nonBridgeVolume
	if v > cfg.MaxNonBridgeVolume {
		v = cfg.MaxNonBridgeVolume
	}
	ratio := float64(cfg.BridgeSpeed) * float64(cfg.BridgeFlow) / (float64(cfg.NonBridgeSpeed) * float64(cfg.NonBridgeFlow))
	dist := v * (1 - ratio) * cfg.CoastPercent / 40
	if dist < 0 {
		return 0
	}
	return model.Micrometer(dist * 1000)
}

// rampUp recovers speedFactor toward 1.0 in steps of AccelerationSegLen,
// at AccelerationFactor recovery per step, over the length actually
// advanced (spec.md §4.G "ramp it back to 1.0 in equal steps").
func rampUp(factor float64, advanced model.Micrometer, cfg BridgeConfig) float64 {
	if cfg.AccelerationSegLen <= 0 {
		return 1
	}
	steps := float64(advanced) / float64(cfg.AccelerationSegLen)
	factor += steps * cfg.AccelerationFactor
	if factor > 1 {
		factor = 1
	}
	return factor
}

type subSegment struct {
	a, b    model.Point
	overAir bool
}

// classifySegment splits p0->p1 into sub-segments classified as over-air
// (inside bridgeMask) or over-solid, in order from p0 to p1 (spec.md §4.G
// step 2a).
func classifySegment(p0, p1 model.Point, bridgeMask model.Paths) []subSegment {
	crossings := segmentCrossings(p0, p1, bridgeMask)
	if len(crossings) == 0 {
		return []subSegment{{a: p0, b: p1, overAir: pointInsideMask(p0, bridgeMask)}}
	}

	pts := []model.Point{p0}
	for _, c := range crossings {
		pts = append(pts, c.pt)
	}
	pts = append(pts, p1)

	var out []subSegment
	inside := pointInsideMask(p0, bridgeMask)
	for i := 0; i < len(pts)-1; i++ {
		out = append(out, subSegment{a: pts[i], b: pts[i+1], overAir: inside})
		inside = !inside
	}
	return out
}

func pointInsideMask(p model.Point, mask model.Paths) bool {
	inside := false
	for _, path := range mask {
		if pointInPolygon(path, p) {
			inside = !inside
		}
	}
	return inside
}

func pointInPolygon(path model.Path, p model.Point) bool {
	inside := false
	n := len(path)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := path[i], path[j]
		if (pi.Y() > p.Y()) != (pj.Y() > p.Y()) {
			xIntersect := float64(pj.X()-pi.X())*float64(p.Y()-pi.Y())/float64(pj.Y()-pi.Y()) + float64(pi.X())
			if float64(p.X()) < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

func segmentCrossings(p0, p1 model.Point, mask model.Paths) []crossing {
	var out []crossing
	dx := float64(p1.X() - p0.X())
	dy := float64(p1.Y() - p0.Y())

	for _, path := range mask {
		n := len(path)
		for i := 0; i < n; i++ {
			a := path[i]
			b := path[(i+1)%n]
			t, u, ok := lineIntersectParam(p0, p1, a, b)
			if !ok || t < 0 || t > 1 || u < 0 || u > 1 {
				continue
			}
			pt := model.NewPoint(p0.X()+model.Micrometer(dx*t), p0.Y()+model.Micrometer(dy*t))
			out = append(out, crossing{t: t, pt: pt})
		}
	}

	// sort by t (insertion sort; crossing counts per segment are tiny)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].t < out[j-1].t; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func lineIntersectParam(p0, p1, a, b model.Point) (t, u float64, ok bool) {
	x1, y1 := float64(p0.X()), float64(p0.Y())
	x2, y2 := float64(p1.X()), float64(p1.Y())
	x3, y3 := float64(a.X()), float64(a.Y())
	x4, y4 := float64(b.X()), float64(b.Y())

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom == 0 {
		return 0, 0, false
	}
	t = ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	u = -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / denom
	return t, u, true
}

// advanceOffAir walks forward from startIdx to the first vertex that isn't
// over air, so the wall begins on supported material (spec.md §4.G step 1).
func advanceOffAir(wall model.Path, startIdx int, bridgeMask model.Paths) int {
	n := len(wall)
	for i := 0; i < n; i++ {
		idx := (startIdx + i) % n
		if !pointInsideMask(wall[idx], bridgeMask) {
			return idx
		}
	}
	return startIdx
}

// remainingBeforeNextBridge estimates how far along the wall (from the end
// of the current non-air sub-segment) the next over-air sub-segment
// begins, for the coasting decision (spec.md §4.G step 2c).
func remainingBeforeNextBridge(segs []subSegment, fromIdx int, wall model.Path, globalIdx, n int, bridgeMask model.Paths) model.Micrometer {
	var total model.Micrometer
	for i := fromIdx + 1; i < len(segs); i++ {
		if segs[i].overAir {
			return total
		}
		total += segs[i].a.Dist(segs[i].b)
	}
	// continue scanning ahead into subsequent wall segments up to a full loop
	for i := 1; i <= n; i++ {
		p0 := wall[(globalIdx+i)%n]
		p1 := wall[(globalIdx+i+1)%n]
		next := classifySegment(p0, p1, bridgeMask)
		for _, s := range next {
			if s.overAir {
				return total
			}
			total += s.a.Dist(s.b)
		}
	}
	return total
}

func stepBack(from, towards model.Point, dist model.Micrometer) model.Point {
	full := from.Dist(towards)
	if full == 0 {
		return from
	}
	t := 1 - float64(dist)/float64(full)
	if t < 0 {
		t = 0
	}
	return model.Lerp(from, towards, t)
}

func stepAlongLoop(wall model.Path, startIdx int, dist model.Micrometer) model.Point {
	n := len(wall)
	remaining := dist
	from := wall[startIdx%n]
	for i := 1; i <= n && remaining > 0; i++ {
		to := wall[(startIdx+i)%n]
		seg := to.Sub(from).Size()
		if seg >= remaining {
			return model.Lerp(from, to, float64(remaining)/float64(seg))
		}
		remaining -= seg
		from = to
	}
	return from
}

// ApplyFuzzySkin perturbs wall's vertices along their outward normal by a
// uniform random offset, after inserting extra vertices at roughly
// PointDistance intervals (spec.md §4.G fuzzy skin, outer wall only).
func ApplyFuzzySkin(wall model.Path, cfg FuzzyConfig) model.Path {
	if !cfg.Enabled || len(wall) < 3 {
		return wall
	}
	r := cfg.Rand
	if r == nil {
		r = rand.New(rand.NewSource(1))
	}

	densified := densify(wall, cfg.PointDistance)
	n := len(densified)
	out := make(model.Path, n)
	for i, v := range densified {
		prev := densified[(i-1+n)%n]
		next := densified[(i+1)%n]
		e1 := v.Sub(prev)
		e2 := next.Sub(v)
		perp := model.NewPoint(e1.Y()+e2.Y(), -(e1.X() + e2.X()))
		offset := float64(cfg.Amplitude) * (2*r.Float64() - 1)
		out[i] = v.Add(perp.Normal(model.Micrometer(offset)))
	}
	return out
}

func densify(wall model.Path, step model.Micrometer) model.Path {
	if step <= 0 {
		return wall
	}
	n := len(wall)
	out := make(model.Path, 0, n)
	for i := 0; i < n; i++ {
		a := wall[i]
		b := wall[(i+1)%n]
		out = append(out, a)
		segLen := a.Dist(b)
		steps := int(segLen / step)
		for s := 1; s < steps; s++ {
			out = append(out, model.Lerp(a, b, float64(s)/float64(steps)))
		}
	}
	return out
}
