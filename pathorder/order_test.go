package pathorder

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

func TestOrderVisitsEverything(t *testing.T) {
	inputs := []Input{
		{Path: square(0, 0, 1000, 1000), Closed: true},
		{Path: square(5000, 5000, 6000, 6000), Closed: true},
		{Path: model.Path{model.NewPoint(2000, 0), model.NewPoint(3000, 0)}, Closed: false},
	}

	result := Order(model.NewPoint(0, 0), inputs, Config{SeamType: SeamShortest})
	if len(result) != len(inputs) {
		t.Fatalf("expected %d visits, got %d", len(inputs), len(result))
	}

	seen := make([]bool, len(inputs))
	for _, o := range result {
		seen[o.SourceIndex] = true
	}
	for i, s := range seen {
		if !s {
			t.Errorf("input %d never visited", i)
		}
	}
}

func TestOrderNearestFirst(t *testing.T) {
	inputs := []Input{
		{Path: square(10000, 10000, 11000, 11000), Closed: true},
		{Path: square(0, 0, 500, 500), Closed: true},
	}
	result := Order(model.NewPoint(0, 0), inputs, Config{SeamType: SeamShortest})
	if result[0].SourceIndex != 1 {
		t.Fatalf("expected the nearer square to be visited first, got source %d", result[0].SourceIndex)
	}
}

func TestOrderEmptyInput(t *testing.T) {
	result := Order(model.NewPoint(0, 0), nil, Config{})
	if len(result) != 0 {
		t.Fatalf("expected empty result for empty input, got %d", len(result))
	}
}

func TestDetectChainsClosesLoop(t *testing.T) {
	almostClosed := model.Path{
		model.NewPoint(0, 0),
		model.NewPoint(1000, 0),
		model.NewPoint(1000, 1000),
		model.NewPoint(2, 1), // within 5um of origin
	}
	inputs := []Input{{Path: almostClosed, Closed: false}}
	result := Order(model.NewPoint(0, 0), inputs, Config{SeamType: SeamShortest, DetectChains: true})
	if !result[0].IsClosed {
		t.Fatal("expected chain detection to mark the near-closed polyline as closed")
	}
}

func TestOpenPathChoosesNearerEndpoint(t *testing.T) {
	line := model.Path{model.NewPoint(1000, 0), model.NewPoint(0, 0)}
	result := Order(model.NewPoint(0, 0), []Input{{Path: line, Closed: false}}, Config{SeamType: SeamShortest})
	if !result[0].Backwards {
		t.Fatalf("expected to start from the end (nearer point), got backwards=%v start=%d", result[0].Backwards, result[0].StartVertex)
	}
}
