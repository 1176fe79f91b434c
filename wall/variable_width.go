package wall

import (
	"slicecore/geo"
	"slicecore/model"
)

// GenerateVariableWidthWalls produces part.WallToolpaths: a discrete
// approximation of CuraEngine's medial-axis wall decomposition
// (original_source/src/SkeletalTrapezoidation.cpp), simplified to a
// per-inset-depth walk rather than a true half-edge skeleton (the §9
// "cyclic shapes -> arena of nodes/edges" redesign is not needed here
// because this simplified version never builds a graph). At each
// uniform-offset step identical to GenerateInsets, if the step would
// collapse the region to empty, a single centerline is emitted for the
// remaining narrow area instead of simply stopping, with its width set to
// the estimated remaining thickness (clamped to between half and twice the
// nominal width) so that narrow regions still get printed, with fewer
// lines (spec.md §4.C).
func GenerateVariableWidthWalls(part *model.SliceLayerPart, cfg Config) {
	part.WallToolpaths = nil

	current := part.Outline
	for k := 0; k < cfg.WallCount; k++ {
		width := cfg.LineWidthX
		if k == 0 {
			width = cfg.LineWidth0
		}

		step := width
		if k == 0 {
			step = width / 2 // outer wall centerline sits half its width inside the outline
		}
		next := geo.Offset(current, -step, geo.JoinRound)
		if len(next) > 0 {
			part.WallToolpaths = append(part.WallToolpaths, pathsToLines(next, width, k, false)...)
			current = next
			continue
		}

		// The next uniform step would vanish: this region is narrower
		// than one more full wall. Measure what's left and, if anything
		// is left at all, emit it as one odd (narrower-than-usual nesting
		// depth) centerline, sized to the remaining thickness.
		halfStep := geo.Offset(current, -width/2, geo.JoinRound)
		if len(halfStep) == 0 {
			break
		}
		remainingWidth := estimateThickness(current, halfStep, width)
		part.WallToolpaths = append(part.WallToolpaths, pathsToLines(halfStep, remainingWidth, k, true)...)
		current = nil
		break
	}

	if current != nil {
		part.InnerArea = geo.Offset(current, -cfg.LineWidthX/2, geo.JoinRound)
	} else if len(part.WallToolpaths) == 0 {
		part.InnerArea = part.Outline
	} else {
		part.InnerArea = nil
	}
}

// pathsToLines converts plain offset loops into ExtrusionLines at a
// uniform width -- the simplified stand-in for per-junction varying width.
func pathsToLines(paths model.Paths, width model.Micrometer, insetIndex int, odd bool) []model.ExtrusionLine {
	lines := make([]model.ExtrusionLine, 0, len(paths))
	for _, p := range paths {
		junctions := make([]model.ExtrusionJunction, 0, len(p))
		for _, pt := range p {
			junctions = append(junctions, model.ExtrusionJunction{Point: pt, Width: width})
		}
		lines = append(lines, model.ExtrusionLine{Junctions: junctions, IsOdd: odd, InsetIndex: insetIndex})
	}
	return lines
}

// estimateThickness approximates the remaining material thickness of a
// narrow region as twice the area-to-perimeter ratio of what's left,
// clamped so the emitted line is never narrower than half a normal width
// nor wider than two full widths.
func estimateThickness(current, eroded model.Paths, nominalWidth model.Micrometer) model.Micrometer {
	area := current.Area()
	perimeter := current.TotalLength()
	if perimeter == 0 {
		return nominalWidth
	}
	thickness := model.Micrometer(2 * area / float64(perimeter))
	if thickness < nominalWidth/2 {
		return nominalWidth / 2
	}
	if thickness > nominalWidth*2 {
		return nominalWidth * 2
	}
	return thickness
}
