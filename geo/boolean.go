package geo

import (
	clipper "github.com/aligator/go.clipper"

	"slicecore/core"
	"slicecore/model"
)

// boolOp runs one clipper boolean operation with even-odd fill, mirroring
// clipperClipper.GenerateLayerParts's clip.Execute2(..., PftEvenOdd, PftEvenOdd).
func boolOp(op clipper.ClipType, subject, clip model.Paths) (model.Paths, bool) {
	c := clipper.NewClipper(clipper.IoNone)
	if len(subject) > 0 {
		c.AddPaths(toClipperPaths(subject), clipper.PtSubject, true)
	}
	if len(clip) > 0 {
		c.AddPaths(toClipperPaths(clip), clipper.PtClip, true)
	}
	tree, ok := c.Execute2(op, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok {
		return nil, false
	}
	return polyTreeToPaths(tree), true
}

// Union returns the union of a and b.
func Union(a, b model.Paths) (model.Paths, bool) {
	return boolOp(clipper.CtUnion, a, b)
}

// Difference returns a minus b.
func Difference(a, b model.Paths) (model.Paths, bool) {
	return boolOp(clipper.CtDifference, a, b)
}

// Intersection returns the overlap of a and b.
func Intersection(a, b model.Paths) (model.Paths, bool) {
	return boolOp(clipper.CtIntersection, a, b)
}

// Xor returns the symmetric difference of a and b.
func Xor(a, b model.Paths) (model.Paths, bool) {
	return boolOp(clipper.CtXor, a, b)
}

// JoinStyle selects the corner style used by Offset.
type JoinStyle int

const (
	JoinMiter JoinStyle = iota
	JoinRound
	JoinSquare
)

// Offset returns the Minkowski sum (d>0) or erosion (d<0) of polygons with
// a disc of radius |d|. Grounded on clip/clipper.go's Inset, which always
// builds a fresh ClipperOffset per call and sets MiterLimit = 2.
func Offset(polygons model.Paths, d model.Micrometer, join JoinStyle) model.Paths {
	if len(polygons) == 0 {
		return nil
	}
	o := clipper.NewClipperOffset()
	o.MiterLimit = 2

	var jt clipper.JoinType
	switch join {
	case JoinRound:
		jt = clipper.JtRound
	case JoinSquare:
		jt = clipper.JtSquare
	default:
		jt = clipper.JtMiter
	}

	o.AddPaths(toClipperPaths(polygons), jt, clipper.EtClosedPolygon)
	tree := o.Execute2(float64(d))
	return Simplify(polyTreeToPaths(tree), maxResolution, maxDeviation)
}

// maxResolution/maxDeviation are the default simplify tolerances applied
// after every offset, matching spec.md §4.C ("simplify with segment_eps =
// max_resolution, deviation_eps = max_deviation").
const (
	maxResolution model.Micrometer = 10
	maxDeviation  model.Micrometer = 5
)

// Simplify removes segments shorter than segmentEps and vertices within
// deviationEps of the line through their neighbours (spec.md §4.A). The
// short-segment removal does not check deviationEps, so it can move the
// contour by more than that.
func Simplify(polygons model.Paths, segmentEps, deviationEps model.Micrometer) model.Paths {
	out := make(model.Paths, 0, len(polygons))
	for _, p := range polygons {
		simplified := p.Simplify(segmentEps, deviationEps)
		if len(simplified) == 0 {
			continue
		}
		out = append(out, simplified)
	}
	return out
}

// SplitIntoParts partitions polygons into (outer, holes...) groups using
// the same PolyTree nesting clipperClipper.GenerateLayerParts relies on.
func SplitIntoParts(polygons model.Paths) ([]model.SliceLayerPart, error) {
	if len(polygons) == 0 {
		return nil, core.ErrEmpty
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toClipperPaths(polygons), clipper.PtSubject, true)
	tree, ok := c.Execute2(clipper.CtUnion, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok {
		return nil, core.ErrEmpty
	}

	var parts []model.SliceLayerPart
	var walkOuter func(nodes []*clipper.PolyNode)
	walkOuter = func(nodes []*clipper.PolyNode) {
		for _, outer := range nodes {
			var holes model.Paths
			var grandchildren []*clipper.PolyNode
			for _, hole := range outer.Childs() {
				holes = append(holes, fromClipperPath(hole.Contour()))
				grandchildren = append(grandchildren, hole.Childs()...)
			}
			parts = append(parts, model.NewSliceLayerPart(fromClipperPath(outer.Contour()), holes))
			walkOuter(grandchildren)
		}
	}
	walkOuter(tree.Childs())
	return parts, nil
}

// IntersectionPolyLines keeps only the sub-segments of each line in lines
// that lie inside polys (spec.md §4.A).
func IntersectionPolyLines(polys model.Paths, lines model.Paths) model.Paths {
	if len(polys) == 0 || len(lines) == 0 {
		return nil
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(toClipperPaths(polys), clipper.PtClip, true)
	c.AddPaths(toClipperPaths(lines), clipper.PtSubject, false)
	tree, ok := c.Execute2(clipper.CtIntersection, clipper.PftEvenOdd, clipper.PftEvenOdd)
	if !ok {
		return nil
	}
	return polyTreeToPaths(tree)
}
