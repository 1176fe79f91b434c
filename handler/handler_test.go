package handler

import (
	"testing"

	"slicecore/layerplan"
	"slicecore/model"
)

// fakeWriter records every call WriteLayerPlan makes so the tests can
// assert on bracketing, travel speed and acceleration/jerk deltas.
type fakeWriter struct {
	accelJerk   [][2]float64
	travelSpeed []model.Velocity
}

func (w *fakeWriter) SetBedTemperature(model.Temperature) error { return nil }
func (w *fakeWriter) SetExtruderTemperature(model.ExtruderIndex, model.Temperature, bool) error {
	return nil
}
func (w *fakeWriter) SwitchExtruder(model.ExtruderIndex, *layerplan.RetractionConfig) error {
	return nil
}
func (w *fakeWriter) WriteMaxZFeedrate(model.Velocity) error { return nil }

func (w *fakeWriter) Travel(_ model.Point, speed model.Velocity) error {
	w.travelSpeed = append(w.travelSpeed, speed)
	return nil
}
func (w *fakeWriter) Extrude(model.Point, model.Velocity, float64, layerplan.PathKind, bool) error {
	return nil
}

func (w *fakeWriter) Retract() error   { return nil }
func (w *fakeWriter) ZHopStart() error { return nil }
func (w *fakeWriter) ZHopEnd() error   { return nil }

func (w *fakeWriter) SetAccelerationJerk(acceleration, jerk float64) error {
	w.accelJerk = append(w.accelJerk, [2]float64{acceleration, jerk})
	return nil
}

func (w *fakeWriter) LiftHead(float64) error { return nil }

// TestWriteLayerPlanThreadsTravelSpeed checks every travel move is emitted
// with the caller-supplied travel speed, not a hardcoded zero.
func TestWriteLayerPlanThreadsTravelSpeed(t *testing.T) {
	lp := layerplan.NewLayerPlan(0, 200, nil, layerplan.Config{})
	if err := lp.SetExtruder(0, nil, model.NewPoint(0, 0)); err != nil {
		t.Fatalf("SetExtruder: %v", err)
	}
	lp.AddTravelSimple(model.NewPoint(10000, 0))

	w := &fakeWriter{}
	if err := WriteLayerPlan(lp, w, NullMessageBus{}, 150); err != nil {
		t.Fatalf("WriteLayerPlan: %v", err)
	}

	if len(w.travelSpeed) == 0 {
		t.Fatal("expected at least one travel move")
	}
	for _, speed := range w.travelSpeed {
		if speed != 150 {
			t.Fatalf("travel speed = %v, want 150", speed)
		}
	}
}

// TestWriteLayerPlanEmitsAccelerationJerkOnChange checks acceleration/jerk
// is emitted once per distinct config and skipped when unchanged.
func TestWriteLayerPlanEmitsAccelerationJerkOnChange(t *testing.T) {
	outerCfg := &layerplan.GCodePathConfig{Speed: 40, LineWidth: 400, LayerHeight: 200, Acceleration: 1500, Jerk: 8}
	innerCfg := &layerplan.GCodePathConfig{Speed: 60, LineWidth: 400, LayerHeight: 200, Acceleration: 3000, Jerk: 15}

	lp := layerplan.NewLayerPlan(0, 200, nil, layerplan.Config{})
	if err := lp.SetExtruder(0, nil, model.NewPoint(0, 0)); err != nil {
		t.Fatalf("SetExtruder: %v", err)
	}

	square := model.Path{
		model.NewPoint(0, 0),
		model.NewPoint(10000, 0),
		model.NewPoint(10000, 10000),
		model.NewPoint(0, 10000),
	}
	lp.AddPolygon(square, 0, outerCfg, nil, 0, false, 1.0, false)
	lp.AddPolygon(square, 0, outerCfg, nil, 0, false, 1.0, false)
	lp.AddPolygon(square, 0, innerCfg, nil, 0, false, 1.0, false)

	w := &fakeWriter{}
	if err := WriteLayerPlan(lp, w, NullMessageBus{}, 150); err != nil {
		t.Fatalf("WriteLayerPlan: %v", err)
	}

	want := [][2]float64{{1500, 8}, {3000, 15}}
	if len(w.accelJerk) != len(want) {
		t.Fatalf("accelJerk calls = %v, want %v", w.accelJerk, want)
	}
	for i, v := range want {
		if w.accelJerk[i] != v {
			t.Fatalf("accelJerk[%d] = %v, want %v", i, w.accelJerk[i], v)
		}
	}
}
