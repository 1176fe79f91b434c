// Package core holds the error kinds shared by every planning component
// (spec.md §7); the cross-cutting context struct lives in package slicectx.
package core

import (
	"errors"
	"fmt"
)

// Recoverable pure-geometry conditions (spec.md §7). Callers recover
// locally; they never need to propagate past the component that raised
// them.
var (
	// ErrEmpty is returned by a polygon operation that received an empty
	// polygon where one was required.
	ErrEmpty = errors.New("core: empty polygon")

	// ErrNoFit is returned by moveInside/ensureInside when the preferred
	// distance cannot be reached within the search radius.
	ErrNoFit = errors.New("core: no fit within search radius")

	// ErrCombFail is returned by the comber when no in-material path can
	// be found under the active policy.
	ErrCombFail = errors.New("core: combing failed")
)

// SettingsError is returned by the settings view (spec.md §6.2).
type SettingsError struct {
	Key string
	Msg string
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("core: setting %q: %s", e.Key, e.Msg)
}

// MissingSetting builds the "unknown key" settings error.
func MissingSetting(key string) error {
	return &SettingsError{Key: key, Msg: "missing setting"}
}

// BadSettingType builds the "type mismatch" settings error.
func BadSettingType(key, wantType string) error {
	return &SettingsError{Key: key, Msg: fmt.Sprintf("expected type %s", wantType)}
}

// FatalKind tags a logic-invariant violation that must terminate the slice
// (spec.md §7).
type FatalKind string

const (
	// ExtruderReused fires when inset-order optimization (or any other
	// component) would use the same extruder twice within one LayerPlan.
	ExtruderReused FatalKind = "ExtruderReused"

	// SpiralizeBroken fires when a run of spiralize paths straddles an
	// ExtruderPlan boundary.
	SpiralizeBroken FatalKind = "SpiralizeBroken"
)

// FatalError is a logic-invariant violation. It identifies the layer, the
// part (if applicable) and the invariant that was broken, so that the
// caller can log the single structured message spec.md §7 requires before
// exiting.
type FatalError struct {
	Kind    FatalKind
	Layer   int
	Part    int
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("core: fatal %s at layer=%d part=%d: %s", e.Kind, e.Layer, e.Part, e.Message)
}

// NewFatal builds a FatalError.
func NewFatal(kind FatalKind, layer, part int, message string) *FatalError {
	return &FatalError{Kind: kind, Layer: layer, Part: part, Message: message}
}

// IsFatal reports whether err is a *FatalError, for callers deciding
// whether to abort the whole slice versus recover locally.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}
