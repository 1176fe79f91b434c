// Package meshsource is an example implementation of the mesh input
// contract (spec.md §6.1) that loads a binary or ASCII STL file with
// github.com/hschendel/stl and planar-slices it into per-layer outlines.
// It is a collaborator used only by cmd/slicecore; the core packages
// never import it.
package meshsource

import (
	"github.com/hschendel/stl"

	"slicecore/geo"
	"slicecore/handler"
	"slicecore/model"
)

// Config holds the slicing parameters needed to turn a mesh into layers.
type Config struct {
	LayerHeight  model.Micrometer
	InitialLayer model.Micrometer // first layer's thickness, may differ from LayerHeight
	// SnapDistance joins segment endpoints left open by a non-manifold mesh
	// into closed polygons (ground on slicer/slice/layer.go's snapDistance).
	SnapDistance model.Micrometer
}

// STLSource loads one STL file and slices it on demand.
type STLSource struct {
	name string
	cfg  Config
	solid *stl.Solid
}

// Open reads path via hschendel/stl and returns a MeshSource over it.
func Open(path string, cfg Config) (*STLSource, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if cfg.SnapDistance <= 0 {
		cfg.SnapDistance = 1000
	}
	return &STLSource{name: solid.Name, cfg: cfg, solid: solid}, nil
}

func (s *STLSource) Name() string {
	if s.name != "" {
		return s.name
	}
	return "mesh"
}

// segment is one triangle's intersection with a z-plane.
type segment struct {
	a, b model.Point
}

// Layers slices the mesh into the handler.MeshLayer contract, one entry
// per layer from the mesh's minimum Z to its maximum Z (spec.md §6.1).
func (s *STLSource) Layers() ([]handler.MeshLayer, error) {
	minZMM, maxZMM := boundsZ(s.solid)
	minZ := model.Micrometer(minZMM * 1000)
	maxZ := model.Micrometer(maxZMM * 1000)
	if maxZ <= minZ {
		return nil, nil
	}

	var layers []handler.MeshLayer
	z := minZ + s.cfg.InitialLayer/2
	thickness := s.cfg.InitialLayer
	idx := model.LayerIndex(0)

	for z <= maxZ {
		segs := s.sliceAt(micrometerToMM(z))
		polys := stitch(segs, s.cfg.SnapDistance)

		parts, err := splitIntoParts(polys)
		if err != nil {
			return nil, err
		}

		layers = append(layers, handler.MeshLayer{
			Index:     idx,
			Z:         z,
			Thickness: thickness,
			Parts:     parts,
		})

		idx++
		z += s.cfg.LayerHeight
		thickness = s.cfg.LayerHeight
	}
	return layers, nil
}

func boundsZ(solid *stl.Solid) (min, max float32) {
	first := true
	for _, tri := range solid.Triangles {
		for _, v := range tri.Vertices {
			if first {
				min, max = v[2], v[2]
				first = false
				continue
			}
			if v[2] < min {
				min = v[2]
			}
			if v[2] > max {
				max = v[2]
			}
		}
	}
	return min, max
}

func micrometerToMM(z model.Micrometer) float32 {
	return float32(z) / 1000
}

// sliceAt intersects every triangle of the mesh with the plane Z=zMM,
// emitting one segment per triangle that straddles it (ground on
// slicer/slice/layer.go's per-face segment generation).
func (s *STLSource) sliceAt(zMM float32) []segment {
	var segs []segment
	for _, tri := range s.solid.Triangles {
		pts := trianglePlaneIntersection(tri, zMM)
		if len(pts) == 2 {
			segs = append(segs, segment{a: pts[0], b: pts[1]})
		}
	}
	return segs
}

func trianglePlaneIntersection(tri stl.Triangle, zMM float32) []model.Point {
	var pts []model.Point
	v := tri.Vertices
	for i := 0; i < 3; i++ {
		p0, p1 := v[i], v[(i+1)%3]
		z0, z1 := p0[2], p1[2]
		if (z0 < zMM) == (z1 < zMM) {
			continue
		}
		t := (zMM - z0) / (z1 - z0)
		x := p0[0] + t*(p1[0]-p0[0])
		y := p0[1] + t*(p1[1]-p0[1])
		pts = append(pts, model.NewPoint(model.Micrometer(x*1000), model.Micrometer(y*1000)))
	}
	return pts
}

// stitch greedily joins open segments endpoint-to-nearest-endpoint into
// closed polygons, within snapDistance (ground on slicer/slice/layer.go's
// "connect polygons that are not closed yet" pass).
func stitch(segs []segment, snapDistance model.Micrometer) model.Paths {
	if len(segs) == 0 {
		return nil
	}

	remaining := make([]segment, len(segs))
	copy(remaining, segs)

	var polys model.Paths
	for len(remaining) > 0 {
		poly := model.Path{remaining[0].a, remaining[0].b}
		remaining = remaining[1:]

		for {
			end := poly[len(poly)-1]
			best := -1
			bestDist := snapDistance + 1
			bestReversed := false
			for i, seg := range remaining {
				if d := end.Dist(seg.a); d < bestDist {
					bestDist, best, bestReversed = d, i, false
				}
				if d := end.Dist(seg.b); d < bestDist {
					bestDist, best, bestReversed = d, i, true
				}
			}
			if best == -1 {
				break
			}
			seg := remaining[best]
			remaining = append(remaining[:best], remaining[best+1:]...)
			if bestReversed {
				poly = append(poly, seg.a)
			} else {
				poly = append(poly, seg.b)
			}
			if poly[0].Dist(poly[len(poly)-1]) <= snapDistance {
				break
			}
		}

		if len(poly) >= 3 {
			polys = append(polys, poly)
		}
	}
	return polys
}

// splitIntoParts partitions the raw stitched loops into outer-loop-plus-
// holes parts with geo.SplitIntoParts. An empty input isn't an error here -- a layer can
// legitimately have no triangles crossing it near the mesh's tips.
func splitIntoParts(polys model.Paths) ([]model.SliceLayerPart, error) {
	if len(polys) == 0 {
		return nil, nil
	}
	return geo.SplitIntoParts(polys)
}
