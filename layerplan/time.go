package layerplan

import "slicecore/model"

// TimeConfig holds the tunables for time estimation, minimum layer time
// slowdown and fan speed mapping (spec.md §4.F processFanSpeedAndMinimalLayerTime).
type TimeConfig struct {
	MinimumLayerTimeSec float64
	MinimumSpeed        model.Velocity // floor when slowing down can't reach MinimumLayerTimeSec
	TravelSpeed         model.Velocity

	// FanSpeedNormal/Max bound the layer-time-triggered fan ramp; FanSpeedMax
	// is reached when a layer takes MinimumLayerTimeSec or less, interpolated
	// down to FanSpeedNormal at MinimumLayerTimeFanSpeedMax seconds (spec.md
	// §4.F fan-speed LUT).
	FanSpeedNormal             float64
	FanSpeedMax                float64
	MinimumLayerTimeFanSpeedMax float64
}

// EstimateTimes fills in EstimatedTimeSec/EstimatedMaterialMM3 for every
// path and rolls them up into each ExtruderPlan (spec.md §4.F).
func (lp *LayerPlan) EstimateTimes(cfg TimeConfig) {
	for _, plan := range lp.ExtruderPlans {
		plan.ExtrudeTimeSec = 0
		plan.TravelTimeSec = 0
		plan.EstimatedMaterialMM3 = 0

		var prev model.Point
		havePrev := false
		for _, path := range plan.Paths {
			speed := path.Config.Speed * model.Velocity(path.SpeedFactor)
			if path.Config.IsTravel {
				speed = cfg.TravelSpeed
			}
			if speed <= 0 {
				speed = 1
			}

			var length model.Micrometer
			for _, pt := range path.Points {
				if havePrev {
					length += pt.Sub(prev).Size()
				}
				prev = pt
				havePrev = true
			}

			lengthMM := float64(length) / 1000
			t := lengthMM / float64(speed)
			path.EstimatedTimeSec = t

			if path.Config.IsTravel {
				plan.TravelTimeSec += t
			} else {
				plan.ExtrudeTimeSec += t
				area := float64(path.Config.LineWidth) / 1000 * float64(path.Config.LayerHeight) / 1000
				path.EstimatedMaterialMM3 = lengthMM * area * float64(path.Flow)
				plan.EstimatedMaterialMM3 += path.EstimatedMaterialMM3
			}
		}

		plan.EstimatedTimeSec = plan.ExtrudeTimeSec + plan.TravelTimeSec
	}
}

// ApplyMinimumLayerTime slows extrusion moves (never travels) until the
// layer's total estimated time reaches cfg.MinimumLayerTimeSec, or parks
// the shortfall in ExtraTime if the speed floor is hit first -- spec.md §8
// scenario 5 exactly: speed_factor = max(cool_min_speed / original_speed,
// extrude_time / (min_layer_time - travel_time)).
func (lp *LayerPlan) ApplyMinimumLayerTime(cfg TimeConfig) {
	var travelTime, extrudeTime float64
	var slowestConfigSpeed model.Velocity = -1
	for _, plan := range lp.ExtruderPlans {
		travelTime += plan.TravelTimeSec
		extrudeTime += plan.ExtrudeTimeSec
		for _, path := range plan.Paths {
			if path.Config.IsTravel {
				continue
			}
			if slowestConfigSpeed < 0 || path.Config.Speed < slowestConfigSpeed {
				slowestConfigSpeed = path.Config.Speed
			}
		}
	}

	totalTime := travelTime + extrudeTime
	if totalTime >= cfg.MinimumLayerTimeSec || extrudeTime <= 0 {
		return
	}

	targetExtrudeTime := cfg.MinimumLayerTimeSec - travelTime
	idealFactor := 1.0
	if targetExtrudeTime > 0 {
		idealFactor = extrudeTime / targetExtrudeTime
	}

	floorFactor := 0.0
	if cfg.MinimumSpeed > 0 && slowestConfigSpeed > 0 {
		floorFactor = float64(cfg.MinimumSpeed / slowestConfigSpeed)
	}

	appliedFactor := idealFactor
	if appliedFactor < floorFactor {
		appliedFactor = floorFactor
	}
	if appliedFactor > 1 {
		appliedFactor = 1
	}

	var newExtrudeTime float64
	for _, plan := range lp.ExtruderPlans {
		planNewExtrude := 0.0
		for _, path := range plan.Paths {
			if path.Config.IsTravel {
				continue
			}
			path.SpeedFactor *= appliedFactor
			path.EstimatedTimeSec /= appliedFactor
			planNewExtrude += path.EstimatedTimeSec
		}
		plan.ExtrudeTimeSec = planNewExtrude
		plan.EstimatedTimeSec = plan.ExtrudeTimeSec + plan.TravelTimeSec
		newExtrudeTime += planNewExtrude
	}

	if idealFactor < floorFactor {
		// The speed floor was hit before reaching the target time: record
		// the remaining deficit as a dwell instead of slowing further.
		shortfall := cfg.MinimumLayerTimeSec - (travelTime + newExtrudeTime)
		if shortfall > 0 && len(lp.ExtruderPlans) > 0 {
			last := lp.ExtruderPlans[len(lp.ExtruderPlans)-1]
			last.ExtraTime += shortfall
			last.EstimatedTimeSec += shortfall
		}
	}
}

// ApplyFanSpeed sets each ExtruderPlan's FanSpeed from its own
// EstimatedTimeSec using the piecewise-linear ramp described in spec.md
// §4.F: full FanSpeedMax at or below MinimumLayerTimeSec, ramping linearly
// down to FanSpeedNormal by MinimumLayerTimeFanSpeedMax seconds, and
// FanSpeedNormal beyond that.
func (lp *LayerPlan) ApplyFanSpeed(cfg TimeConfig) {
	for _, plan := range lp.ExtruderPlans {
		t := plan.EstimatedTimeSec
		switch {
		case t <= cfg.MinimumLayerTimeSec:
			plan.FanSpeed = cfg.FanSpeedMax
		case t >= cfg.MinimumLayerTimeFanSpeedMax:
			plan.FanSpeed = cfg.FanSpeedNormal
		default:
			span := cfg.MinimumLayerTimeFanSpeedMax - cfg.MinimumLayerTimeSec
			frac := (t - cfg.MinimumLayerTimeSec) / span
			plan.FanSpeed = cfg.FanSpeedMax + frac*(cfg.FanSpeedNormal-cfg.FanSpeedMax)
		}
	}
}

// ProcessFanSpeedAndMinimalLayerTime runs EstimateTimes, then
// ApplyMinimumLayerTime, then ApplyFanSpeed in sequence, matching the
// teacher's combined entry point (spec.md §4.F
// processFanSpeedAndMinimalLayerTime).
func (lp *LayerPlan) ProcessFanSpeedAndMinimalLayerTime(cfg TimeConfig) {
	lp.EstimateTimes(cfg)
	lp.ApplyMinimumLayerTime(cfg)
	lp.ApplyFanSpeed(cfg)
}
