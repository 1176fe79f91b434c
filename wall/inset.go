// Package wall is the wall/inset computer (spec.md §4.C): it turns a
// layer part's filled outline into a sequence of concentric wall loops,
// the remaining infill region, and the thin leftover "perimeter gaps".
package wall

import (
	"slicecore/geo"
	"slicecore/model"
)

// Config holds the per-mesh wall generation parameters.
type Config struct {
	LineWidth0 model.Micrometer // outer wall line width
	LineWidthX model.Micrometer // all other wall line widths
	WallCount  int
}

// GenerateInsets fills part.Insets, part.InnerArea and
// part.PerimeterGaps from part.Outline (spec.md §4.C generateInsets).
func GenerateInsets(part *model.SliceLayerPart, cfg Config) {
	part.Insets = nil

	if cfg.WallCount <= 0 {
		part.InnerArea = part.Outline
		part.PerimeterGaps = nil
		return
	}

	current := part.Outline
	for k := 0; k < cfg.WallCount; k++ {
		var d model.Micrometer
		if k == 0 {
			d = -cfg.LineWidth0 / 2
		} else {
			d = -(cfg.LineWidthX/2 + cfg.LineWidthX/2) // full step from the previous centerline
		}
		next := geo.Offset(current, d, geo.JoinRound)
		if len(next) == 0 {
			break
		}
		part.Insets = append(part.Insets, next)
		current = next
	}

	if len(part.Insets) == 0 {
		// First inset is empty: no walls, the whole outline is available
		// for infill (spec.md §4.C edge-case policy).
		part.InnerArea = part.Outline
		part.PerimeterGaps = nil
		return
	}

	last := part.Insets[len(part.Insets)-1]
	part.InnerArea = geo.Offset(last, -cfg.LineWidthX/2, geo.JoinRound)
	part.PerimeterGaps = computePerimeterGaps(part, cfg)
}

// computePerimeterGaps approximates spec.md §4.C's "set difference of
// adjacent inset regions offset back and forth such that residual thin
// regions are preserved": it unions every wall's actual stroke area (the
// inset centerline offset by ± half its line width) plus the inner area,
// and returns whatever part of the outline that coverage misses -- the
// regions too thin to have received a full wall stroke.
func computePerimeterGaps(part *model.SliceLayerPart, cfg Config) model.Paths {
	coverage := part.InnerArea
	for k, inset := range part.Insets {
		width := cfg.LineWidthX
		if k == 0 {
			width = cfg.LineWidth0
		}
		outer := geo.Offset(inset, width/2, geo.JoinRound)
		inner := geo.Offset(inset, -width/2, geo.JoinRound)
		stroke, ok := geo.Difference(outer, inner)
		if !ok {
			continue
		}
		unioned, ok := geo.Union(coverage, stroke)
		if ok {
			coverage = unioned
		}
	}

	gaps, ok := geo.Difference(part.Outline, coverage)
	if !ok {
		return nil
	}
	return gaps
}
