package wall

import (
	"testing"

	"slicecore/model"
)

func square(x0, y0, x1, y1 model.Micrometer) model.Path {
	return model.Path{
		model.NewPoint(x0, y0),
		model.NewPoint(x1, y0),
		model.NewPoint(x1, y1),
		model.NewPoint(x0, y1),
	}
}

// TestScenarioOneSquareTwoWalls mirrors spec.md §8 scenario 1.
func TestScenarioOneSquareTwoWalls(t *testing.T) {
	part := model.NewSliceLayerPart(square(0, 0, 10000, 10000), nil)
	cfg := Config{LineWidth0: 400, LineWidthX: 400, WallCount: 2}

	GenerateInsets(&part, cfg)

	if len(part.Insets) != 2 {
		t.Fatalf("expected 2 insets, got %d", len(part.Insets))
	}

	checkBBox := func(paths model.Paths, wantMin, wantMax model.Micrometer) {
		t.Helper()
		min, max := paths.Min(), paths.Max()
		const tol = 50
		if abs(min.X()-wantMin) > tol || abs(min.Y()-wantMin) > tol {
			t.Errorf("min = %+v, want ~(%d,%d)", min, wantMin, wantMin)
		}
		if abs(max.X()-wantMax) > tol || abs(max.Y()-wantMax) > tol {
			t.Errorf("max = %+v, want ~(%d,%d)", max, wantMax, wantMax)
		}
	}

	checkBBox(part.Insets[0], 200, 9800)
	checkBBox(part.Insets[1], 600, 9400)
	checkBBox(part.InnerArea, 800, 9200)
}

func TestWallCountZeroPassesThrough(t *testing.T) {
	part := model.NewSliceLayerPart(square(0, 0, 10000, 10000), nil)
	GenerateInsets(&part, Config{WallCount: 0})

	if len(part.Insets) != 0 {
		t.Fatalf("expected no insets, got %d", len(part.Insets))
	}
	if part.InnerArea.Area() != part.Outline.Area() {
		t.Fatalf("inner area should equal outline when wall_count=0")
	}
}

func TestEmptyOutlineProducesNoInsets(t *testing.T) {
	part := model.SliceLayerPart{}
	GenerateInsets(&part, Config{LineWidth0: 400, LineWidthX: 400, WallCount: 3})

	if len(part.Insets) != 0 {
		t.Fatalf("expected no insets for empty outline")
	}
	if len(part.PerimeterGaps) != 0 {
		t.Fatalf("expected no perimeter gaps for empty outline")
	}
}

func abs(m model.Micrometer) model.Micrometer {
	if m < 0 {
		return -m
	}
	return m
}
