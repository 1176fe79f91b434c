package model

// ExtrusionJunction is one point of a variable-width wall toolpath: a
// position plus the extrusion width to use up to the next junction.
type ExtrusionJunction struct {
	Point Point
	Width Micrometer
}

// ExtrusionLine is one variable-width wall path, as produced by the
// medial-axis wall variant (spec.md §4.C "Variable-width variant").
type ExtrusionLine struct {
	Junctions []ExtrusionJunction
	// IsOdd marks an odd-wall (a narrow-region filler line rather than a
	// full loop around a part) -- these are always ordered after their
	// enclosing even loop by the inset-order optimizer.
	IsOdd bool
	// InsetIndex is the nesting depth this line was generated at.
	InsetIndex int
}

// Length returns the sum of segment lengths between junctions.
func (e ExtrusionLine) Length() Micrometer {
	var total Micrometer
	for i := 1; i < len(e.Junctions); i++ {
		total += e.Junctions[i].Point.Sub(e.Junctions[i-1].Point).Size()
	}
	return total
}

// SliceLayerPart is one connected region of a layer: an outer loop plus
// its holes, and everything derived from it by the wall computer.
// outline[0] is the sole outer loop; all subsequent polygons are holes of
// opposite orientation and lie strictly inside it.
type SliceLayerPart struct {
	Outline Paths

	// Insets holds one Paths per generated wall, insets[0] the outermost.
	Insets []Paths

	// WallToolpaths holds the variable-width decomposition when the wall
	// computer is run in that mode; nil otherwise.
	WallToolpaths []ExtrusionLine

	// InnerArea is what remains after the last wall -- the region
	// available for (external) infill generation.
	InnerArea Paths

	// PerimeterGaps is the area between adjacent insets too thin for
	// another wall line.
	PerimeterGaps Paths

	// SkinParts and InfillArea are produced by the (out-of-scope) infill
	// pattern generator; the core only carries the regions through.
	SkinParts  Paths
	InfillArea Paths

	// Attributes is a free-form per-part annotation map; NewSliceLayerPart
	// initialises it empty.
	Attributes map[string]interface{}
}

// NewSliceLayerPart builds a part from an outer loop and its holes.
func NewSliceLayerPart(outer Path, holes Paths) SliceLayerPart {
	outline := make(Paths, 0, 1+len(holes))
	outline = append(outline, outer)
	outline = append(outline, holes...)
	return SliceLayerPart{
		Outline:    outline,
		Attributes: map[string]interface{}{},
	}
}

// Outer returns the sole outer loop of the part.
func (p SliceLayerPart) Outer() Path {
	if len(p.Outline) == 0 {
		return nil
	}
	return p.Outline[0]
}

// Holes returns the holes of the part (everything in Outline but the first).
func (p SliceLayerPart) Holes() Paths {
	if len(p.Outline) < 2 {
		return nil
	}
	return p.Outline[1:]
}

// InnermostInsets returns the last generated wall, or nil if no wall was generated.
func (p SliceLayerPart) InnermostInsets() Paths {
	if len(p.Insets) == 0 {
		return nil
	}
	return p.Insets[len(p.Insets)-1]
}

// SliceLayer is one Z height of one mesh: the set of connected parts found
// by partitioning the slicer's raw outline, plus the layer's thickness.
type SliceLayer struct {
	Z         Micrometer
	Thickness Micrometer
	Parts     []SliceLayerPart

	// BridgeWallMask is the region of this layer considered unsupported
	// from below (spec.md §4.G bridge logic). Nothing in this repository
	// fills or reads it; the wall writer takes its mask from
	// insetorder.Config.BridgeMask, and the driver sets
	// layerplan.LayerPlan.BridgeWallMask.
	BridgeWallMask Paths
}

// SliceMeshStorage holds every layer produced for one mesh. Per-mesh
// settings are not stored here -- per the §9 "global state" redesign note,
// callers thread a settings view alongside via an explicit context rather
// than embedding it in the storage arena.
type SliceMeshStorage struct {
	Name   string
	Layers []SliceLayer
}

// SliceDataStorage is the top-level arena for one slice: every mesh plus
// shared areas (support, raft, prime tower) that span meshes.
type SliceDataStorage struct {
	Meshes []SliceMeshStorage

	// SupportAreas[layer] is the support region computed for that layer
	// (spec.md §2 component overview, "Support-structure generation" is an
	// external collaborator; this is just the storage slot it fills).
	SupportAreas []Paths

	// RaftOutline is the (externally generated) raft outline, if any.
	RaftOutline Paths

	// PrimeTowerOutline is the reserved area for the prime tower / ooze
	// shield planner (component I).
	PrimeTowerOutline Paths
}

// LayerCount returns the number of layers of the mesh with the most layers.
func (s SliceDataStorage) LayerCount() int {
	max := 0
	for _, m := range s.Meshes {
		if len(m.Layers) > max {
			max = len(m.Layers)
		}
	}
	return max
}
