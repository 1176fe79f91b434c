// Package model holds the core data entities shared by every planning
// component: coordinates, polygons, per-layer geometry and the mesh/layer
// storage arenas. It owns no behaviour beyond simple geometric helpers --
// the planning packages (geo, wall, comb, layerplan, ...) operate on these
// types from the outside.
package model

import "math"

// Micrometer is the base integer length unit used throughout the core.
// All coordinates and most lengths are expressed in Micrometer so that
// geometry is bit-exact given the same integer inputs.
type Micrometer int64

// Millimeter is a convenience unit for settings expressed by humans.
type Millimeter float64

// ToMicrometer converts a millimeter value to the internal integer unit.
func (m Millimeter) ToMicrometer() Micrometer {
	return Micrometer(math.Round(float64(m) * 1000))
}

// ToMillimeter converts back to millimeters, e.g. for reporting/material estimates.
func (m Micrometer) ToMillimeter() Millimeter {
	return Millimeter(m) / 1000
}

// Ratio is a dimensionless ratio, e.g. flow or overlap (0..1, occasionally beyond).
type Ratio float64

// Velocity is a speed in mm/s.
type Velocity float64

// Temperature is in degrees Celsius.
type Temperature float64

// Angle is in radians.
type Angle float64

// ToRadians converts a degree value to radians.
func ToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// ToDegrees converts a radian value to degrees.
func ToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}

// LayerIndex indexes SliceMeshStorage.Layers / SliceDataStorage layers.
type LayerIndex int

// PartIndex indexes the parts of one layer.
type PartIndex int

// ExtruderIndex identifies one physical extruder.
type ExtruderIndex int
