// Package layerplan is the layer plan (spec.md §4.F): it accumulates, for
// one layer, an ordered sequence of per-extruder sub-plans holding paths
// with retraction, Z-hop, spiralization, fan speed and time/material
// estimates.
package layerplan

import "slicecore/model"

// BaseKind is the print-feature tag a path carries, replacing the
// teacher's/CuraEngine's virtual dispatch on config type with a flat
// tagged enum (spec.md §9 "dynamic dispatch on print-feature type").
type BaseKind int

const (
	KindOuterWall BaseKind = iota
	KindInnerWall
	KindSkin
	KindInfill
	KindSupport
	KindTravel
	KindBridge
)

// PathKind is the full tagged-enum value: Infill carries a density,
// Bridge wraps the kind it is bridging (spec.md §9 `PathKind{...
// Infill(density), ... Bridge(of: PathKind)}`).
type PathKind struct {
	Base          BaseKind
	InfillDensity model.Ratio
	BridgeOf      BaseKind
}

// SpaceFillKind selects how a GCodePath's points are interpreted.
type SpaceFillKind int

const (
	SpaceFillNone SpaceFillKind = iota
	SpaceFillPolygon
	SpaceFillLines
)

// GCodePathConfig holds the printing parameters for one kind of path
// (spec.md §3). Components share pointers to configs the driver builds
// rather than allocating one per path.
type GCodePathConfig struct {
	Kind         PathKind
	Label        string
	Speed        model.Velocity
	Acceleration float64
	Jerk         float64
	LineWidth    model.Micrometer
	LayerHeight  model.Micrometer
	Flow         model.Ratio
	IsTravel     bool
	IsBridge     bool
}

// GCodePath is one emitted segment group (spec.md §3).
type GCodePath struct {
	Config    *GCodePathConfig
	SpaceFill SpaceFillKind
	Flow      model.Ratio
	Spiralize bool

	// FanSpeedOverride, when >= 0, overrides the layer/extruder-plan fan
	// speed for this path only.
	FanSpeedOverride float64

	// SpeedFactor is <= 1 to ramp acceleration/deceleration or enforce a
	// minimum layer time (spec.md §4.F processFanSpeedAndMinimalLayerTime).
	SpeedFactor float64

	Retract        bool
	PerformZHop    bool
	PerformPrime   bool
	Points         []model.Point
	Done           bool

	// UpdateExtrusionOffset is set to true on every path findOrOpenPath
	// opens, including the one a config change opens; nothing in this
	// package sets it to false, skipped travels included.
	UpdateExtrusionOffset bool

	EstimatedTimeSec     float64
	EstimatedMaterialMM3 float64
}

// Length returns the total length of the path's points.
func (g *GCodePath) Length() model.Micrometer {
	return model.Path(g.Points).Length()
}

// RetractionConfig is the per-extruder retraction/Z-hop configuration
// (spec.md §3 "ExtruderPlan ... retraction config reference").
type RetractionConfig struct {
	Speed               model.Velocity
	Amount              model.Micrometer
	MinTravel           model.Micrometer
	CombingMaxDistance  model.Micrometer
	CountMax            int
	ExtrusionWindow     model.Micrometer
	HopEnabled          bool
	HopHeight           model.Micrometer
}

// TempInsert is a pending temperature command scheduled to land at a
// specific point within an ExtruderPlan's path sequence (spec.md §4.H).
type TempInsert struct {
	BeforePathIndex int
	Temperature     model.Temperature
	Wait            bool
}

// ExtruderPlan is all paths executed by one extruder on one layer in one
// contiguous block (spec.md §3).
type ExtruderPlan struct {
	Extruder       model.ExtruderIndex
	Layer          model.LayerIndex
	IsInitialLayer bool
	IsRaft         bool

	RequiredTemp            model.Temperature
	PrevExtruderStandbyTemp *model.Temperature

	FanSpeed float64

	Paths              []*GCodePath
	PendingTempInserts []TempInsert

	Retraction *RetractionConfig

	EstimatedTimeSec       float64
	EstimatedMaterialMM3   float64
	ExtrudeTimeSec         float64
	TravelTimeSec          float64
	TimeCorrectionFactor   float64

	// ExtraTime is a head-lift delay recorded when minimum-layer-time
	// slowdown alone couldn't reach the target without dropping below the
	// minimum feedrate (spec.md §8 scenario 5).
	ExtraTime float64
}
