// Package settings provides the generic, string-keyed settings view the
// core reads configuration through (spec.md §6.2), generalizing the
// teacher's nested data.Options struct into a single map with typed,
// lazily-parsed and cached accessors (the §9 "deep inheritance" redesign
// note: a lookup chain through owned strings with a lazy cache keyed by
// setting name).
package settings

import (
	"strconv"

	"slicecore/core"
	"slicecore/model"
)

// View is a read-only, string-keyed settings source with typed accessors.
// A zero View is usable; Set populates it (normally done once, by the CLI
// layer or a test fixture, before the core ever reads from it).
type View struct {
	raw    map[string]string
	parent *View // inheritance chain, e.g. mesh-level falling back to global

	cacheBool  map[string]bool
	cacheInt   map[string]int
	cacheCoord map[string]model.Micrometer
	cacheRatio map[string]model.Ratio
	cacheVel   map[string]model.Velocity
	cacheTemp  map[string]model.Temperature
	cacheAngle map[string]model.Angle
}

// New builds an empty View.
func New() *View {
	return &View{raw: map[string]string{}}
}

// WithParent returns a View that falls back to parent for keys it doesn't
// have itself -- used to model per-mesh settings overriding global ones.
func (v *View) WithParent(parent *View) *View {
	child := New()
	child.parent = parent
	return child
}

// Set stores the raw string form of a setting. Overwriting a key also
// invalidates any cached typed value for it.
func (v *View) Set(key, value string) {
	if v.raw == nil {
		v.raw = map[string]string{}
	}
	v.raw[key] = value
	delete(v.cacheBool, key)
	delete(v.cacheInt, key)
	delete(v.cacheCoord, key)
	delete(v.cacheRatio, key)
	delete(v.cacheVel, key)
	delete(v.cacheTemp, key)
	delete(v.cacheAngle, key)
}

func (v *View) lookup(key string) (string, bool) {
	if s, ok := v.raw[key]; ok {
		return s, true
	}
	if v.parent != nil {
		return v.parent.lookup(key)
	}
	return "", false
}

// Has reports whether key is set anywhere in the inheritance chain.
func (v *View) Has(key string) bool {
	_, ok := v.lookup(key)
	return ok
}

// Bool returns key parsed as a boolean.
func (v *View) Bool(key string) (bool, error) {
	if v.cacheBool == nil {
		v.cacheBool = map[string]bool{}
	}
	if c, ok := v.cacheBool[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return false, core.MissingSetting(key)
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, core.BadSettingType(key, "bool")
	}
	v.cacheBool[key] = parsed
	return parsed, nil
}

// Int returns key parsed as an integer (size_t and int settings share this accessor).
func (v *View) Int(key string) (int, error) {
	if v.cacheInt == nil {
		v.cacheInt = map[string]int{}
	}
	if c, ok := v.cacheInt[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return 0, core.MissingSetting(key)
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.BadSettingType(key, "int")
	}
	v.cacheInt[key] = parsed
	return parsed, nil
}

// Coord returns key parsed as a micrometer-integer coordinate/length.
func (v *View) Coord(key string) (model.Micrometer, error) {
	if v.cacheCoord == nil {
		v.cacheCoord = map[string]model.Micrometer{}
	}
	if c, ok := v.cacheCoord[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return 0, core.MissingSetting(key)
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.BadSettingType(key, "coord")
	}
	v.cacheCoord[key] = model.Micrometer(parsed)
	return model.Micrometer(parsed), nil
}

// Ratio returns key parsed as a dimensionless ratio (0..1, occasionally beyond).
func (v *View) Ratio(key string) (model.Ratio, error) {
	if v.cacheRatio == nil {
		v.cacheRatio = map[string]model.Ratio{}
	}
	if c, ok := v.cacheRatio[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return 0, core.MissingSetting(key)
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.BadSettingType(key, "ratio")
	}
	v.cacheRatio[key] = model.Ratio(parsed)
	return model.Ratio(parsed), nil
}

// Velocity returns key parsed as a speed in mm/s.
func (v *View) Velocity(key string) (model.Velocity, error) {
	if v.cacheVel == nil {
		v.cacheVel = map[string]model.Velocity{}
	}
	if c, ok := v.cacheVel[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return 0, core.MissingSetting(key)
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.BadSettingType(key, "velocity")
	}
	v.cacheVel[key] = model.Velocity(parsed)
	return model.Velocity(parsed), nil
}

// Temperature returns key parsed as a temperature in °C.
func (v *View) Temperature(key string) (model.Temperature, error) {
	if v.cacheTemp == nil {
		v.cacheTemp = map[string]model.Temperature{}
	}
	if c, ok := v.cacheTemp[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return 0, core.MissingSetting(key)
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.BadSettingType(key, "temperature")
	}
	v.cacheTemp[key] = model.Temperature(parsed)
	return model.Temperature(parsed), nil
}

// Angle returns key parsed as an angle in radians.
func (v *View) Angle(key string) (model.Angle, error) {
	if v.cacheAngle == nil {
		v.cacheAngle = map[string]model.Angle{}
	}
	if c, ok := v.cacheAngle[key]; ok {
		return c, nil
	}
	raw, ok := v.lookup(key)
	if !ok {
		return 0, core.MissingSetting(key)
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, core.BadSettingType(key, "angle")
	}
	v.cacheAngle[key] = model.Angle(parsed)
	return model.Angle(parsed), nil
}

// Enum returns the raw string for key, for enum-valued settings (e.g. seam
// type, join style) which the caller maps to its own constants.
func (v *View) Enum(key string) (string, error) {
	raw, ok := v.lookup(key)
	if !ok {
		return "", core.MissingSetting(key)
	}
	return raw, nil
}

// MustCoord is a convenience that panics on error. The planning packages
// do not use it (they handle the error per §7); cmd/slicecore uses it for
// values it has just set itself.
func (v *View) MustCoord(key string) model.Micrometer {
	c, err := v.Coord(key)
	if err != nil {
		panic(err)
	}
	return c
}
