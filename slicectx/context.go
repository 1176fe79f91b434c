// Package slicectx provides an explicit context struct in place of the
// teacher's implicit "Application" singleton (spec.md §9, "global state"
// redesign note). Only cmd/slicecore builds and uses it; the planning
// packages' constructors take their own Config structs and do not
// receive it.
package slicectx

import (
	"log"

	"slicecore/settings"
)

// Context bundles the settings view and a logger. It carries no mutable
// per-slice state of its own -- that lives in the model.SliceDataStorage
// arena and the per-component structs.
type Context struct {
	Settings *settings.View
	Logger   *log.Logger
}

// New builds a Context with the given settings view. If logger is nil,
// log.Default() is used, matching the teacher's plain stdlib logging
// (goslice.go threads a *log.Logger the same way).
func New(view *settings.View, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	return &Context{Settings: view, Logger: logger}
}
