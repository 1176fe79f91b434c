// Package geo is the 2D geometry kernel (spec.md §4.A): fixed-point
// integer polygon boolean ops, offsets, spatial queries and move-inside
// projections, all built on github.com/aligator/go.clipper exactly the
// way the teacher's clip package uses it.
package geo

import (
	clipper "github.com/aligator/go.clipper"

	"slicecore/model"
)

func toClipperPoint(p model.Point) *clipper.IntPoint {
	return &clipper.IntPoint{
		X: clipper.CInt(p.X()),
		Y: clipper.CInt(p.Y()),
	}
}

func toClipperPath(p model.Path) clipper.Path {
	out := make(clipper.Path, 0, len(p))
	for _, pt := range p {
		out = append(out, toClipperPoint(pt))
	}
	return out
}

func toClipperPaths(ps model.Paths) clipper.Paths {
	out := make(clipper.Paths, 0, len(ps))
	for _, p := range ps {
		out = append(out, toClipperPath(p))
	}
	return out
}

func fromClipperPoint(p *clipper.IntPoint) model.Point {
	return model.NewPoint(model.Micrometer(p.X), model.Micrometer(p.Y))
}

func fromClipperPath(p clipper.Path) model.Path {
	out := make(model.Path, 0, len(p))
	for _, pt := range p {
		out = append(out, fromClipperPoint(pt))
	}
	return out
}

func fromClipperPaths(ps clipper.Paths) model.Paths {
	out := make(model.Paths, 0, len(ps))
	for _, p := range ps {
		out = append(out, fromClipperPath(p))
	}
	return out
}

// polyTreeToPaths flattens a PolyTree's contours into a Paths, depth first,
// the same way clipperClipper.polyTreeToLayerParts walks PolyNode.Childs().
func polyTreeToPaths(tree *clipper.PolyTree) model.Paths {
	var out model.Paths
	var walk func(nodes []*clipper.PolyNode)
	walk = func(nodes []*clipper.PolyNode) {
		for _, n := range nodes {
			out = append(out, fromClipperPath(n.Contour()))
			walk(n.Childs())
		}
	}
	walk(tree.Childs())
	return out
}
