// Command slicecore is a thin example driver: it loads an STL file,
// slices it layer by layer, runs each layer through the wall computer,
// the inset-order optimizer and the layer plan, and drains the result
// through the layer plan buffer to a text g-code file. It is grounded on
// cmd/goslice/slicer.go's Process() sequencing and logging style.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"slicecore/comb"
	"slicecore/geo"
	"slicecore/handler"
	"slicecore/insetorder"
	"slicecore/layerplan"
	"slicecore/meshsource"
	"slicecore/model"
	"slicecore/pathorder"
	"slicecore/planbuffer"
	"slicecore/settings"
	"slicecore/slicectx"
	"slicecore/wall"
	"slicecore/wallwriter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inputPath    = pflag.StringP("input", "i", "", "input STL file")
		outputPath   = pflag.StringP("output", "o", "out.gcode", "output g-code file")
		layerHeight  = pflag.Float64("layer-height", 0.2, "layer height in mm")
		initialLayer = pflag.Float64("initial-layer-height", 0.3, "first layer height in mm")
		wallCount    = pflag.Int("wall-count", 2, "number of wall loops")
		lineWidth0   = pflag.Float64("line-width-0", 0.4, "outer wall line width in mm")
		lineWidthX   = pflag.Float64("line-width-x", 0.4, "inner wall line width in mm")
		printSpeed   = pflag.Float64("speed", 60, "print speed in mm/s")
		travelSpeed  = pflag.Float64("travel-speed", 150, "travel speed in mm/s")
		bedTemp      = pflag.Float64("bed-temp", 60, "bed temperature in C")
		nozzleTemp   = pflag.Float64("nozzle-temp", 200, "nozzle temperature in C")
		minLayerTime = pflag.Float64("min-layer-time", 5, "minimum layer time in seconds")
		minSpeed     = pflag.Float64("min-speed", 10, "speed floor when slowing for min layer time, mm/s")
		preheatHorizon = pflag.Int("preheat-horizon", 2, "layer plan buffer horizon")

		bridgeEnabled  = pflag.Bool("bridge-enable", true, "enable bridge/coasting wall writer pass")
		bridgeCoast    = pflag.Float64("bridge-wall-coast", 1.0, "bridge_wall_coast ratio (1.0 = 100%)")
		bridgeSpeedPct = pflag.Float64("bridge-wall-speed", 0.5, "bridge speed as a fraction of print speed")
		fuzzySkin      = pflag.Bool("fuzzy-skin", false, "perturb the outer wall with fuzzy skin")
		fuzzyAmplitude = pflag.Float64("fuzzy-skin-thickness", 0.3, "fuzzy skin amplitude in mm")
		fuzzyPointDist = pflag.Float64("fuzzy-skin-point-dist", 0.8, "fuzzy skin point spacing in mm")
	)
	pflag.Parse()

	if *inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	view := settings.New()
	view.Set("layer_height", strconv.FormatFloat(*layerHeight*1000, 'f', -1, 64))
	view.Set("wall_line_width_0", strconv.FormatFloat(*lineWidth0*1000, 'f', -1, 64))
	view.Set("wall_line_width_x", strconv.FormatFloat(*lineWidthX*1000, 'f', -1, 64))
	view.Set("speed_print", strconv.FormatFloat(*printSpeed, 'f', -1, 64))
	view.Set("speed_travel", strconv.FormatFloat(*travelSpeed, 'f', -1, 64))
	view.Set("material_bed_temperature", strconv.FormatFloat(*bedTemp, 'f', -1, 64))
	view.Set("material_print_temperature", strconv.FormatFloat(*nozzleTemp, 'f', -1, 64))
	view.Set("cool_min_layer_time", strconv.FormatFloat(*minLayerTime, 'f', -1, 64))
	view.Set("cool_min_speed", strconv.FormatFloat(*minSpeed, 'f', -1, 64))

	ctx := slicectx.New(view, log.Default())

	startTime := time.Now()

	// 1. Load model.
	source, err := meshsource.Open(*inputPath, meshsource.Config{
		LayerHeight:  view.MustCoord("layer_height"),
		InitialLayer: model.Micrometer(*initialLayer * 1000),
		SnapDistance: 1000,
	})
	if err != nil {
		return err
	}
	ctx.Logger.Printf("Model loaded: %s\n", source.Name())

	// 2. Slice model into layers.
	layers, err := source.Layers()
	if err != nil {
		return err
	}
	ctx.Logger.Printf("Model sliced to %v layers\n", len(layers))

	layerHeightUM := view.MustCoord("layer_height")
	lineWidth0UM := view.MustCoord("wall_line_width_0")
	lineWidthXUM := view.MustCoord("wall_line_width_x")

	speed, _ := view.Velocity("speed_print")
	travelSpd, _ := view.Velocity("speed_travel")
	bed, _ := view.Temperature("material_bed_temperature")
	nozzle, _ := view.Temperature("material_print_temperature")
	minSpd, _ := view.Velocity("cool_min_speed")
	minTime := *minLayerTime

	outerCfg := &layerplan.GCodePathConfig{
		Kind:      layerplan.PathKind{Base: layerplan.KindOuterWall},
		Label:     "outer-wall",
		Speed:     speed,
		LineWidth: lineWidth0UM,
	}
	innerCfg := &layerplan.GCodePathConfig{
		Kind:      layerplan.PathKind{Base: layerplan.KindInnerWall},
		Label:     "inner-wall",
		Speed:     speed,
		LineWidth: lineWidthXUM,
	}

	bridgeSpeed := model.Velocity(float64(speed) * *bridgeSpeedPct)
	outerBridgeCfg := &layerplan.GCodePathConfig{
		Kind:      layerplan.PathKind{Base: layerplan.KindOuterWall},
		Label:     "outer-wall-bridge",
		Speed:     bridgeSpeed,
		LineWidth: lineWidth0UM,
	}
	innerBridgeCfg := &layerplan.GCodePathConfig{
		Kind:      layerplan.PathKind{Base: layerplan.KindInnerWall},
		Label:     "inner-wall-bridge",
		Speed:     bridgeSpeed,
		LineWidth: lineWidthXUM,
	}

	timeCfg := layerplan.TimeConfig{
		MinimumLayerTimeSec:        minTime,
		MinimumSpeed:               minSpd,
		TravelSpeed:                travelSpd,
		FanSpeedNormal:             0,
		FanSpeedMax:                100,
		MinimumLayerTimeFanSpeedMax: minTime * 2,
	}

	bridgeCfg := wallwriter.BridgeConfig{
		MinLength:          lineWidthXUM,
		CoastPercent:       *bridgeCoast,
		MaxNonBridgeVolume: float64(lineWidth0UM) / 1000 * float64(layerHeightUM) / 1000 * 10,
		AccelerationSegLen: lineWidth0UM * 4,
		AccelerationFactor: 0.5,
		NonBridgeSpeed:     speed,
		NonBridgeFlow:      1.0,
		BridgeSpeed:        bridgeSpeed,
		BridgeFlow:         1.0,
	}
	if !*bridgeEnabled {
		bridgeCfg = wallwriter.BridgeConfig{}
	}
	fuzzyCfg := wallwriter.FuzzyConfig{
		Enabled:       *fuzzySkin,
		Amplitude:     model.Micrometer(*fuzzyAmplitude * 1000),
		PointDistance: model.Micrometer(*fuzzyPointDist * 1000),
	}

	gw := newGcodeWriter()
	gw.buf.WriteString(fmt.Sprintf("M140 S%v\n", bed))
	gw.buf.WriteString(fmt.Sprintf("M104 S%v\n", nozzle))

	buf := planbuffer.NewBuffer(*preheatHorizon, staticPreheatTable{nozzle: nozzle}, timeCfg, gw, handler.NullMessageBus{})

	var prevOutlines model.Paths
	for _, meshLayer := range layers {
		var bridgeMask model.Paths
		if *bridgeEnabled {
			bridgeMask = bridgeMaskFor(meshLayer, prevOutlines)
		}

		lp := buildLayerPlan(meshLayer, wall.Config{
			LineWidth0: lineWidth0UM,
			LineWidthX: lineWidthXUM,
			WallCount:  *wallCount,
		}, outerCfg, innerCfg, outerBridgeCfg, innerBridgeCfg, bridgeCfg, fuzzyCfg, bridgeMask)

		if err := buf.Push(lp); err != nil {
			return err
		}

		prevOutlines = prevOutlines[:0]
		for _, p := range meshLayer.Parts {
			prevOutlines = append(prevOutlines, p.Outline...)
		}
	}
	if err := buf.Flush(); err != nil {
		return err
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.WriteString(gw.buf.String()); err != nil {
		return err
	}

	ctx.Logger.Printf("full processing time: %v\n", time.Since(startTime))
	return nil
}

// buildLayerPlan runs one mesh layer through the wall computer, the
// inset-order optimizer and the comber, producing a fully planned
// layerplan.LayerPlan (ground on goslice.go's per-layer modifier loop,
// generalized to this core's own pipeline). bridgeMask is the region of
// this layer unsupported by the layer below, consulted by the wall writer
// for bridge/coasting (spec.md §4.G).
func buildLayerPlan(meshLayer handler.MeshLayer, wallCfg wall.Config, outerCfg, innerCfg, outerBridgeCfg, innerBridgeCfg *layerplan.GCodePathConfig, bridgeCfg wallwriter.BridgeConfig, fuzzyCfg wallwriter.FuzzyConfig, bridgeMask model.Paths) *layerplan.LayerPlan {
	for i := range meshLayer.Parts {
		wall.GenerateInsets(&meshLayer.Parts[i], wallCfg)
	}

	combState := comb.NewState(meshLayer.Parts, comb.Config{
		InsideDist1:   wallCfg.LineWidthX,
		InsideDist2:   wallCfg.LineWidthX * 2,
		AvoidDistance: wallCfg.LineWidthX,
	})

	lp := layerplan.NewLayerPlan(meshLayer.Z, meshLayer.Thickness, combState, layerplan.Config{
		ExtruderCount:  1,
		CombingEnabled: true,
		LayerIndex:     meshLayer.Index,
	})
	lp.BridgeWallMask = bridgeMask

	cfg := insetorder.Config{
		OuterConfig:       outerCfg,
		InnerConfig:       innerCfg,
		OuterBridgeConfig: outerBridgeCfg,
		InnerBridgeConfig: innerBridgeCfg,
		BridgeMask:        bridgeMask,
		BridgeCfg:         bridgeCfg,
		Fuzzy:             fuzzyCfg,
		Flow:              1.0,
		SeamConfig:        pathorder.Config{SeamType: pathorder.SeamShortest},
	}

	for _, part := range meshLayer.Parts {
		lines := insetsToExtrusionLines(part.Insets, outerCfg.LineWidth, innerCfg.LineWidth)
		insetorder.OrderPart(lp, lines, cfg)
	}

	return lp
}

// bridgeMaskFor computes the current layer's unsupported-from-below region:
// its outline minus the previous layer's outline (spec.md §4.A/§4.G
// bridge_wall_mask). The first layer has no "below" and gets an empty mask.
func bridgeMaskFor(meshLayer handler.MeshLayer, prevOutlines model.Paths) model.Paths {
	if len(prevOutlines) == 0 {
		return nil
	}
	var outlines model.Paths
	for _, p := range meshLayer.Parts {
		outlines = append(outlines, p.Outline...)
	}
	mask, ok := geo.Difference(outlines, prevOutlines)
	if !ok {
		return nil
	}
	return mask
}

// insetsToExtrusionLines turns a part's constant-width wall loops
// (wall.GenerateInsets's output) into the ExtrusionLine form the
// inset-order optimizer consumes, one line per loop at constant width.
func insetsToExtrusionLines(insets []model.Paths, width0, widthX model.Micrometer) []model.ExtrusionLine {
	var lines []model.ExtrusionLine
	for depth, paths := range insets {
		width := widthX
		if depth == 0 {
			width = width0
		}
		for _, poly := range paths {
			junctions := make([]model.ExtrusionJunction, len(poly))
			for i, p := range poly {
				junctions[i] = model.ExtrusionJunction{Point: p, Width: width}
			}
			lines = append(lines, model.ExtrusionLine{Junctions: junctions, InsetIndex: depth})
		}
	}
	return lines
}

// staticPreheatTable is a minimal PreheatTable: one fixed nozzle
// temperature regardless of extruder/flow, a flat heat-up rate, and a
// standby temperature 20C below print temperature.
type staticPreheatTable struct {
	nozzle model.Temperature
}

func (t staticPreheatTable) RequiredTemp(model.ExtruderIndex, model.Ratio) model.Temperature {
	return t.nozzle
}

func (t staticPreheatTable) HeatupTime(_ model.ExtruderIndex, from, to model.Temperature) float64 {
	delta := float64(to - from)
	if delta <= 0 {
		return 0
	}
	const degreesPerSecond = 5
	return delta / degreesPerSecond
}

func (t staticPreheatTable) StandbyTemp(model.ExtruderIndex) model.Temperature {
	return t.nozzle - 20
}

// gcodeWriter is a minimal handler.Writer that renders a plain-text
// trace of the commands it receives, in the style of the teacher's
// writer.Writer() (build up a string, write it to a file once at the
// end).
type gcodeWriter struct {
	buf strings.Builder
}

func newGcodeWriter() *gcodeWriter { return &gcodeWriter{} }

func (w *gcodeWriter) SetBedTemperature(temp model.Temperature) error {
	fmt.Fprintf(&w.buf, "M140 S%v\n", temp)
	return nil
}

func (w *gcodeWriter) SetExtruderTemperature(extruder model.ExtruderIndex, temp model.Temperature, wait bool) error {
	cmd := "M104"
	if wait {
		cmd = "M109"
	}
	fmt.Fprintf(&w.buf, "%s T%d S%v\n", cmd, extruder, temp)
	return nil
}

func (w *gcodeWriter) SwitchExtruder(extruder model.ExtruderIndex, _ *layerplan.RetractionConfig) error {
	fmt.Fprintf(&w.buf, "T%d\n", extruder)
	return nil
}

func (w *gcodeWriter) WriteMaxZFeedrate(speed model.Velocity) error {
	fmt.Fprintf(&w.buf, "M203 Z%v\n", speed)
	return nil
}

func (w *gcodeWriter) Travel(p model.Point, speed model.Velocity) error {
	fmt.Fprintf(&w.buf, "G0 X%.3f Y%.3f F%v\n", float64(p.X())/1000, float64(p.Y())/1000, speed*60)
	return nil
}

func (w *gcodeWriter) Extrude(p model.Point, speed model.Velocity, mm3PerMM float64, kind layerplan.PathKind, _ bool) error {
	fmt.Fprintf(&w.buf, "G1 X%.3f Y%.3f F%v ; %v\n", float64(p.X())/1000, float64(p.Y())/1000, speed*60, kind.Base)
	return nil
}

func (w *gcodeWriter) Retract() error {
	w.buf.WriteString("G10\n")
	return nil
}

func (w *gcodeWriter) ZHopStart() error {
	w.buf.WriteString("; z-hop start\n")
	return nil
}

func (w *gcodeWriter) ZHopEnd() error {
	w.buf.WriteString("; z-hop end\n")
	return nil
}

func (w *gcodeWriter) SetAccelerationJerk(acceleration, jerk float64) error {
	fmt.Fprintf(&w.buf, "M204 S%v\nM205 X%v\n", acceleration, jerk)
	return nil
}

func (w *gcodeWriter) LiftHead(seconds float64) error {
	fmt.Fprintf(&w.buf, "G4 P%v\n", seconds*1000)
	return nil
}
