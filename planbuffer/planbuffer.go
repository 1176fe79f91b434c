// Package planbuffer is the layer plan buffer (spec.md §4.H): a sliding
// FIFO window of recent LayerPlans. It inserts pre-heat/standby
// temperature commands at the right moment in time, invokes minimum
// layer time enforcement on the oldest plan before it is flushed, and
// hands finished plans to a writer in strict FIFO order.
package planbuffer

import (
	"slicecore/handler"
	"slicecore/layerplan"
	"slicecore/model"
)

// PreheatTable supplies the temperature knowledge the buffer needs to
// schedule preheat commands: the temperature a given average flow
// requires, how long it takes to get there from a colder temperature,
// and the standby temperature an idle extruder is parked at.
type PreheatTable interface {
	RequiredTemp(extruder model.ExtruderIndex, avgFlow model.Ratio) model.Temperature
	HeatupTime(extruder model.ExtruderIndex, from, to model.Temperature) float64
	StandbyTemp(extruder model.ExtruderIndex) model.Temperature
}

// Buffer holds plans until preheat_horizon is exceeded, then flushes the
// oldest to a handler.Writer/handler.MessageBus pair (spec.md §4.H).
type Buffer struct {
	horizon int
	table   PreheatTable
	timeCfg layerplan.TimeConfig
	writer  handler.Writer
	bus     handler.MessageBus

	plans []*layerplan.LayerPlan
}

// NewBuffer builds a Buffer with the given preheat horizon (clamped to at
// least 2, per spec.md's `preheat_horizon (>= 2)`).
func NewBuffer(horizon int, table PreheatTable, timeCfg layerplan.TimeConfig, w handler.Writer, bus handler.MessageBus) *Buffer {
	if horizon < 2 {
		horizon = 2
	}
	if bus == nil {
		bus = handler.NullMessageBus{}
	}
	return &Buffer{horizon: horizon, table: table, timeCfg: timeCfg, writer: w, bus: bus}
}

// Push appends lp to the buffer, schedules its preheat commands against
// the plans already buffered, then flushes the oldest plan(s) to the
// writer while the buffer exceeds its horizon.
func (b *Buffer) Push(lp *layerplan.LayerPlan) error {
	lp.EstimateTimes(b.timeCfg)
	b.plans = append(b.plans, lp)
	b.schedulePreheat()

	for len(b.plans) > b.horizon {
		oldest := b.plans[0]
		b.plans = b.plans[1:]
		if err := b.flush(oldest); err != nil {
			return err
		}
	}
	return nil
}

// Flush drains every remaining buffered plan, in FIFO order. Call once
// after the last layer has been pushed.
func (b *Buffer) Flush() error {
	for len(b.plans) > 0 {
		oldest := b.plans[0]
		b.plans = b.plans[1:]
		if err := b.flush(oldest); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) flush(lp *layerplan.LayerPlan) error {
	lp.ApplyMinimumLayerTime(b.timeCfg)
	lp.ApplyFanSpeed(b.timeCfg)
	return handler.WriteLayerPlan(lp, b.writer, b.bus, b.timeCfg.TravelSpeed)
}

// timeline flattens every buffered plan's ExtruderPlans into print order.
func (b *Buffer) timeline() []*layerplan.ExtruderPlan {
	var out []*layerplan.ExtruderPlan
	for _, lp := range b.plans {
		out = append(out, lp.ExtruderPlans...)
	}
	return out
}

// schedulePreheat runs the per-layer preheat insertion algorithm
// (spec.md §4.H) over the ExtruderPlans of the most recently pushed
// layer.
func (b *Buffer) schedulePreheat() {
	if b.table == nil || len(b.plans) == 0 {
		return
	}
	newest := b.plans[len(b.plans)-1]
	tl := b.timeline()
	start := len(tl) - len(newest.ExtruderPlans)

	for i := start; i < len(tl); i++ {
		e := tl[i]
		avgFlow := averageFlow(e)
		if avgFlow <= 0 {
			continue
		}
		e.RequiredTemp = b.table.RequiredTemp(e.Extruder, avgFlow)

		if i == 0 {
			continue
		}
		prev := tl[i-1]

		if prev.Extruder == e.Extruder {
			insertHalfway(prev, e.RequiredTemp)
		} else {
			standby := b.table.StandbyTemp(e.Extruder)
			leadTime := b.table.HeatupTime(e.Extruder, standby, e.RequiredTemp)
			insertLeadTime(tl, i, leadTime, e.RequiredTemp)
		}

		prev.PrevExtruderStandbyTemp = b.table.StandbyTemp(prev.Extruder)
	}
}

func averageFlow(e *layerplan.ExtruderPlan) model.Ratio {
	var sum model.Ratio
	var n int
	for _, p := range e.Paths {
		if p.Config == nil || p.Config.IsTravel {
			continue
		}
		sum += p.Flow
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / model.Ratio(n)
}

// insertHalfway implements the "immediately preceded by the same
// extruder" case: the temperature change is scheduled halfway through
// the preceding plan, so it completes right at the layer boundary.
func insertHalfway(prev *layerplan.ExtruderPlan, temp model.Temperature) {
	half := prev.EstimatedTimeSec / 2
	idx := pathIndexAtElapsed(prev, half)
	prev.PendingTempInserts = append(prev.PendingTempInserts, layerplan.TempInsert{
		BeforePathIndex: idx,
		Temperature:     temp,
		Wait:            false,
	})
}

func pathIndexAtElapsed(plan *layerplan.ExtruderPlan, elapsed float64) int {
	acc := 0.0
	for i, p := range plan.Paths {
		acc += p.EstimatedTimeSec
		if acc >= elapsed {
			return i
		}
	}
	return len(plan.Paths)
}

// insertLeadTime implements the "different prior extruder" case: walk
// backwards through the timeline accumulating elapsed plan time until
// leadTime is spent, then place the command that far before e's start.
// If leadTime exceeds all buffered time, the command lands at the very
// start of the buffer.
func insertLeadTime(tl []*layerplan.ExtruderPlan, eIdx int, leadTime float64, temp model.Temperature) {
	remaining := leadTime
	for j := eIdx - 1; j >= 0; j-- {
		plan := tl[j]
		if plan.EstimatedTimeSec >= remaining {
			idx := pathIndexFromEnd(plan, remaining)
			plan.PendingTempInserts = append(plan.PendingTempInserts, layerplan.TempInsert{
				BeforePathIndex: idx,
				Temperature:     temp,
				Wait:            true,
			})
			return
		}
		remaining -= plan.EstimatedTimeSec
	}
	if len(tl) > 0 {
		tl[0].PendingTempInserts = append(tl[0].PendingTempInserts, layerplan.TempInsert{
			BeforePathIndex: 0,
			Temperature:     temp,
			Wait:            true,
		})
	}
}

// pathIndexFromEnd returns the path index at which exactly `remaining`
// seconds of path-time are left until the plan's end.
func pathIndexFromEnd(plan *layerplan.ExtruderPlan, remaining float64) int {
	acc := 0.0
	for i := len(plan.Paths) - 1; i >= 0; i-- {
		acc += plan.Paths[i].EstimatedTimeSec
		if acc >= remaining {
			return i
		}
	}
	return 0
}
