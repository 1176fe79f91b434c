// Package handler declares three of the external interface contracts the
// core is built against (spec.md §6): mesh input, the g-code writer, and
// the optional message-bus observer. The settings view is settings.View,
// declared in package settings. The core depends
// only on these interfaces; concrete implementations (STL mesh loading,
// g-code emission) live outside the core, e.g. in meshsource and
// cmd/slicecore.
package handler

import (
	"slicecore/layerplan"
	"slicecore/model"
)

// MeshLayer is one (layer_index, z, thickness, outlines) tuple the mesh
// input contract streams per mesh (spec.md §6.1).
type MeshLayer struct {
	Index     model.LayerIndex
	Z         model.Micrometer
	Thickness model.Micrometer
	Parts     []model.SliceLayerPart
}

// MeshSource streams a mesh's layers (spec.md §6.1). It carries no
// per-mesh settings view; settings reach the core only as the settings.View
// the driver builds.
type MeshSource interface {
	Name() string
	Layers() ([]MeshLayer, error)
}

// Writer is the g-code writer contract (spec.md §6.3): per layer, for each
// ExtruderPlan in order, it receives the temperature/extruder-switch
// bracketing and then every path's moves.
type Writer interface {
	SetBedTemperature(temp model.Temperature) error
	SetExtruderTemperature(extruder model.ExtruderIndex, temp model.Temperature, wait bool) error
	SwitchExtruder(extruder model.ExtruderIndex, retraction *layerplan.RetractionConfig) error
	WriteMaxZFeedrate(speed model.Velocity) error

	Travel(p model.Point, speed model.Velocity) error
	Extrude(p model.Point, speed model.Velocity, mm3PerMM float64, kind layerplan.PathKind, updateOffset bool) error

	Retract() error
	ZHopStart() error
	ZHopEnd() error
	SetAccelerationJerk(acceleration, jerk float64) error

	// LiftHead emits the small delay requested when an extruder plan fell
	// short of the minimum layer time even after slowdown.
	LiftHead(seconds float64) error
}

// MessageBus is the optional observer contract (spec.md §6.4).
type MessageBus interface {
	LayerStarted(layerNr model.LayerIndex, z, thickness model.Micrometer)
	Line(kind layerplan.PathKind, to model.Point, lineWidth, layerHeight model.Micrometer, speed model.Velocity)
	LayerComplete(layerNr model.LayerIndex)
}

// NullMessageBus implements MessageBus as a no-op, for callers that don't
// need an observer.
type NullMessageBus struct{}

func (NullMessageBus) LayerStarted(model.LayerIndex, model.Micrometer, model.Micrometer) {}
func (NullMessageBus) Line(layerplan.PathKind, model.Point, model.Micrometer, model.Micrometer, model.Velocity) {
}
func (NullMessageBus) LayerComplete(model.LayerIndex) {}

// WriteLayerPlan drains lp into w and bus, in ExtruderPlan order, following
// the Writer contract's bracketing (spec.md §6.3). travelSpeed is the
// feedrate used for every travel move (spec.md §6.3 `travel(point, speed)`).
func WriteLayerPlan(lp *layerplan.LayerPlan, w Writer, bus MessageBus, travelSpeed model.Velocity) error {
	bus.LayerStarted(model.LayerIndex(0), lp.Z, lp.Thickness)

	var lastExtruder model.ExtruderIndex
	haveLast := false

	var lastAccel, lastJerk float64
	haveAccelJerk := false

	for _, plan := range lp.ExtruderPlans {
		if !haveLast || lastExtruder != plan.Extruder {
			if err := w.SwitchExtruder(plan.Extruder, plan.Retraction); err != nil {
				return err
			}
			lastExtruder = plan.Extruder
			haveLast = true
		}
		if plan.RequiredTemp > 0 {
			if err := w.SetExtruderTemperature(plan.Extruder, plan.RequiredTemp, false); err != nil {
				return err
			}
		}

		for i, path := range plan.Paths {
			for _, ins := range plan.PendingTempInserts {
				if ins.BeforePathIndex == i {
					if err := w.SetExtruderTemperature(plan.Extruder, ins.Temperature, ins.Wait); err != nil {
						return err
					}
				}
			}

			// Per-path acceleration/jerk, emitted only when it differs from
			// the previous path's (CuraEngine's LayerPlan.cpp writes these
			// ahead of every path; configs that never set them stay silent).
			if path.Config.Acceleration != 0 || path.Config.Jerk != 0 {
				if !haveAccelJerk || path.Config.Acceleration != lastAccel || path.Config.Jerk != lastJerk {
					if err := w.SetAccelerationJerk(path.Config.Acceleration, path.Config.Jerk); err != nil {
						return err
					}
					lastAccel, lastJerk = path.Config.Acceleration, path.Config.Jerk
					haveAccelJerk = true
				}
			}

			if path.Retract {
				if err := w.Retract(); err != nil {
					return err
				}
			}
			if path.PerformZHop {
				if err := w.ZHopStart(); err != nil {
					return err
				}
			}
			for _, p := range path.Points {
				var err error
				if path.Config.IsTravel {
					err = w.Travel(p, travelSpeed)
				} else {
					speed := path.Config.Speed * model.Velocity(path.SpeedFactor)
					mm3 := float64(path.Config.LineWidth) / 1000 * float64(path.Config.LayerHeight) / 1000 * float64(path.Flow)
					err = w.Extrude(p, speed, mm3, path.Config.Kind, path.UpdateExtrusionOffset)
					bus.Line(path.Config.Kind, p, path.Config.LineWidth, path.Config.LayerHeight, speed)
				}
				if err != nil {
					return err
				}
			}
			if path.PerformZHop {
				if err := w.ZHopEnd(); err != nil {
					return err
				}
			}
		}
		for _, ins := range plan.PendingTempInserts {
			if ins.BeforePathIndex >= len(plan.Paths) {
				if err := w.SetExtruderTemperature(plan.Extruder, ins.Temperature, ins.Wait); err != nil {
					return err
				}
			}
		}

		if plan.ExtraTime > 0 {
			if err := w.LiftHead(plan.ExtraTime); err != nil {
				return err
			}
		}
	}

	bus.LayerComplete(model.LayerIndex(0))
	return nil
}
