// Package comb is the comber (spec.md §4.E): it computes a travel polyline
// from a start to an end point that stays inside the print where possible,
// falling back to a straight travel (with retraction) when it cannot.
package comb

import (
	"slicecore/core"
	"slicecore/geo"
	"slicecore/model"
)

// Config holds the comber's tunables (spec.md §4.E, §4.D "retraction
// region").
type Config struct {
	InsideDist1              model.Micrometer // narrower comb boundary inset depth
	InsideDist2              model.Micrometer // wider comb boundary inset depth
	AvoidDistance            model.Micrometer // outside boundary expansion
	MaxMoveInsideDistance    model.Micrometer
	IgnoredGap               model.Micrometer
	DistToOutside            model.Micrometer // detour inward offset
	ViaOutsideMakesCombingFail bool
	FailOnUnavoidableObstacles bool

	// MaxTravelResolution is not read anywhere in this package: the
	// crossing search does no simplification, and the travel point filter
	// uses layerplan.Config.MaxTravelResolution, a separate field.
	MaxTravelResolution model.Micrometer
}

// CombPath is one polyline segment of a combed travel.
type CombPath model.Path

// Result is the outcome of a successful Comb call.
type Result struct {
	Paths      []CombPath
	ThroughAir bool
}

// State caches one layer's comb boundaries, lazily computing the
// expensive "outside" boundary and convex hull only if a travel actually
// needs them (spec.md §3 "Comb state").
type State struct {
	cfg   Config
	parts []model.SliceLayerPart

	inside1 []model.Paths // per part, at InsideDist1
	inside2 []model.Paths // per part, at InsideDist2

	// insideGrid1/2 index inside1/2's segments (spec.md §4.A LocToLineGrid),
	// built once per part alongside the boundary itself and reused for
	// every travel query that lands in that part.
	insideGrid1 []*geo.LocToLineGrid
	insideGrid2 []*geo.LocToLineGrid

	outside         model.Paths
	outsideGrid     *geo.LocToLineGrid
	outsideComputed bool

	hull         model.Path
	hullComputed bool
}

// NewState precomputes the inside boundaries for every part of one layer.
func NewState(parts []model.SliceLayerPart, cfg Config) *State {
	s := &State{cfg: cfg, parts: parts}
	s.inside1 = make([]model.Paths, len(parts))
	s.inside2 = make([]model.Paths, len(parts))
	s.insideGrid1 = make([]*geo.LocToLineGrid, len(parts))
	s.insideGrid2 = make([]*geo.LocToLineGrid, len(parts))
	for i, p := range parts {
		s.inside1[i] = geo.Offset(p.Outline, -cfg.InsideDist1, geo.JoinRound)
		s.inside2[i] = geo.Offset(p.Outline, -cfg.InsideDist2, geo.JoinRound)
		if len(s.inside1[i]) > 0 {
			s.insideGrid1[i] = geo.NewLocToLineGrid(s.inside1[i], 0)
		}
		if len(s.inside2[i]) > 0 {
			s.insideGrid2[i] = geo.NewLocToLineGrid(s.inside2[i], 0)
		}
	}
	return s
}

// Parts returns the outlines of every part this State was built from, for
// callers (layerplan's ooze-avoidance move-inside) that need the raw
// boundary rather than a combing-specific inset of it.
func (s *State) Parts() []model.Paths {
	out := make([]model.Paths, len(s.parts))
	for i, p := range s.parts {
		out[i] = p.Outline
	}
	return out
}

func (s *State) outsideBoundary() model.Paths {
	if s.outsideComputed {
		return s.outside
	}
	var all model.Paths
	for _, p := range s.parts {
		all = append(all, p.Outline...)
	}
	union, ok := geo.Union(all, nil)
	if ok {
		s.outside = geo.Offset(union, s.cfg.AvoidDistance, geo.JoinRound)
		if len(s.outside) > 0 {
			s.outsideGrid = geo.NewLocToLineGrid(s.outside, 0)
		}
	}
	s.outsideComputed = true
	return s.outside
}

func (s *State) convexHull() model.Path {
	if s.hullComputed {
		return s.hull
	}
	var all model.Paths
	for _, p := range s.parts {
		all = append(all, p.Outline...)
	}
	s.hull = geo.ConvexHull(all)
	s.hullComputed = true
	return s.hull
}

// partIndexAt finds which part's inside2 boundary contains p, moving p in
// if it's outside but within MaxMoveInsideDistance. Returns -1 if no part
// is reachable.
func (s *State) partIndexAt(p *model.Point) int {
	for i, bounds := range s.inside2 {
		if geo.PointInside(bounds, *p) {
			return i
		}
	}
	// not inside any part's inside2: try to move it in.
	for i, bounds := range s.inside2 {
		if len(bounds) == 0 {
			continue
		}
		cand := *p
		maxAttempt2 := int64(s.cfg.MaxMoveInsideDistance) * int64(s.cfg.MaxMoveInsideDistance)
		if _, err := geo.MoveInside(bounds, &cand, s.cfg.InsideDist2, maxAttempt2); err == nil {
			*p = cand
			return i
		}
	}
	return -1
}

// Comb computes a travel path from start to end (spec.md §4.E algorithm).
func (s *State) Comb(start, end model.Point) (Result, error) {
	if start.Dist2(end) <= int64(s.cfg.IgnoredGap)*int64(s.cfg.IgnoredGap) {
		return Result{Paths: []CombPath{{start, end}}}, nil
	}

	startPt, endPt := start, end
	startPart := s.partIndexAt(&startPt)
	endPart := s.partIndexAt(&endPt)

	if startPart != -1 && startPart == endPart {
		bounds := s.inside2[startPart]
		if !segmentCrossesAny(startPt, endPt, bounds, s.insideGrid2[startPart]) {
			return Result{Paths: []CombPath{pathOf(start, startPt, endPt, end)}}, nil
		}

		detourBounds := s.inside1[startPart]
		detourGrid := s.insideGrid1[startPart]
		if len(detourBounds) == 0 {
			detourBounds = bounds
			detourGrid = s.insideGrid2[startPart]
		}
		poly := linePolygonsCrossings(detourBounds, startPt, endPt, s.cfg.DistToOutside, detourGrid)
		full := prependAppend(start, poly, end)
		return Result{Paths: []CombPath{CombPath(full)}}, nil
	}

	// Different parts (or one/both outside everything): route via the
	// outside boundary.
	if s.cfg.ViaOutsideMakesCombingFail {
		return Result{}, core.ErrCombFail
	}

	hull := s.convexHull()
	if geo.SegmentEntirelyOutside(hull, start, end) {
		// Fast path: nothing to detour around at all.
		return Result{Paths: []CombPath{{start, end}}, ThroughAir: true}, nil
	}

	outside := s.outsideBoundary()
	if len(outside) == 0 {
		if s.cfg.FailOnUnavoidableObstacles {
			return Result{}, core.ErrCombFail
		}
		return Result{Paths: []CombPath{{start, end}}, ThroughAir: true}, nil
	}

	poly := linePolygonsCrossings(outside, startPt, endPt, s.cfg.DistToOutside, s.outsideGrid)
	full := prependAppend(start, poly, end)

	return Result{Paths: []CombPath{CombPath(full)}, ThroughAir: true}, nil
}

func pathOf(pts ...model.Point) CombPath {
	out := make(CombPath, 0, len(pts))
	seen := pts[0]
	out = append(out, seen)
	for _, p := range pts[1:] {
		if p.Eq(seen) {
			continue
		}
		out = append(out, p)
		seen = p
	}
	return out
}

func prependAppend(start model.Point, mid model.Path, end model.Point) model.Path {
	out := model.Path{start}
	for _, p := range mid {
		if !p.Eq(out[len(out)-1]) {
			out = append(out, p)
		}
	}
	if !end.Eq(out[len(out)-1]) {
		out = append(out, end)
	}
	return out
}

// CombDistance returns the total length of a Result's paths, used by the
// caller to decide whether RetractionCombingMaxDistance was exceeded
// (spec.md §4.E step 7).
func (r Result) CombDistance() model.Micrometer {
	var total model.Micrometer
	for _, p := range r.Paths {
		total += model.Path(p).Length()
	}
	return total
}

// CrossesBoundary reports whether any sub-path of r required a detour
// (more than its trivial two endpoints), used by the caller's retraction
// decision (spec.md §4.E step 7, "any sub-path crosses a boundary").
func (r Result) CrossesBoundary() bool {
	for _, p := range r.Paths {
		if len(p) > 2 {
			return true
		}
	}
	return false
}
