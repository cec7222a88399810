package registry

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/table/computers"
	"github.com/paulmthompson/seriestable/timeframe"
)

// NewBuiltin creates a registry pre-populated with every built-in computer
// and adapter.
func NewBuiltin(logger *slog.Logger) *Registry {
	r := New(logger)
	registerReductions(r)
	registerEventComputers(r)
	registerIntervalComputers(r)
	registerTimestampComputers(r)
	registerLineComputers(r)
	registerAdapters(r)
	return r
}

func analogOf(src source.Handle) (source.AnalogSource, error) {
	s, ok := src.Analog()
	if !ok {
		return nil, errors.WrapTypeMismatch(errors.ErrSourceKindMismatch, "Registry", "CreateComputer", "analog source check")
	}
	return s, nil
}

func eventOf(src source.Handle) (source.EventSource, error) {
	s, ok := src.Event()
	if !ok {
		return nil, errors.WrapTypeMismatch(errors.ErrSourceKindMismatch, "Registry", "CreateComputer", "event source check")
	}
	return s, nil
}

func intervalOf(src source.Handle) (source.IntervalSource, error) {
	s, ok := src.Interval()
	if !ok {
		return nil, errors.WrapTypeMismatch(errors.ErrSourceKindMismatch, "Registry", "CreateComputer", "interval source check")
	}
	return s, nil
}

func lineOf(src source.Handle) (source.LineSource, error) {
	s, ok := src.Line()
	if !ok {
		return nil, errors.WrapTypeMismatch(errors.ErrSourceKindMismatch, "Registry", "CreateComputer", "line source check")
	}
	return s, nil
}

func registerReductions(r *Registry) {
	reductions := []struct {
		name string
		desc string
		op   computers.ReductionOp
	}{
		{"Interval Mean", "Mean of analog samples inside each row interval", computers.ReduceMean},
		{"Interval Max", "Maximum analog sample inside each row interval", computers.ReduceMax},
		{"Interval Min", "Minimum analog sample inside each row interval", computers.ReduceMin},
		{"Interval Standard Deviation", "Population standard deviation of analog samples inside each row interval", computers.ReduceStdDev},
		{"Interval Sum", "Sum of analog samples inside each row interval", computers.ReduceSum},
		{"Interval Count", "Number of analog samples inside each row interval", computers.ReduceCount},
	}
	for _, red := range reductions {
		op := red.op
		r.RegisterComputer(ComputerInfo{
			Name:        red.name,
			Description: red.desc,
			Output:      table.ValueFloat64,
			Selector:    table.SelectorInterval,
			Source:      source.KindAnalog,
		}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
			s, err := analogOf(src)
			if err != nil {
				return nil, err
			}
			return computers.NewIntervalReduction(s, op)
		})
	}
}

func registerEventComputers(r *Registry) {
	r.RegisterComputer(ComputerInfo{
		Name:        "Event Presence",
		Description: "Whether any event falls inside each row interval",
		Output:      table.ValueBool,
		Selector:    table.SelectorInterval,
		Source:      source.KindEvent,
	}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
		s, err := eventOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewEventPresence(s)
	})

	r.RegisterComputer(ComputerInfo{
		Name:        "Event Count",
		Description: "Number of events inside each row interval",
		Output:      table.ValueInt64,
		Selector:    table.SelectorInterval,
		Source:      source.KindEvent,
	}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
		s, err := eventOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewEventCount(s)
	})

	r.RegisterComputer(ComputerInfo{
		Name:        "Event Gather",
		Description: "Event times inside each row interval, absolute or relative to the interval center",
		Output:      table.ValueFloatVector,
		Selector:    table.SelectorInterval,
		Source:      source.KindEvent,
		Params: []ParamDescriptor{{
			Name:        "mode",
			Description: "Reference frame of gathered times",
			Type:        "enum",
			Default:     "absolute",
			Enum:        []string{"absolute", "centered"},
		}},
	}, func(src source.Handle, params map[string]string) (table.Computer, error) {
		s, err := eventOf(src)
		if err != nil {
			return nil, err
		}
		mode := computers.GatherAbsolute
		if raw, ok := params["mode"]; ok {
			mode = computers.GatherModeFromString(raw)
			if mode == 0 {
				return nil, errors.WrapConfig(
					fmt.Errorf("mode %q: %w", raw, errors.ErrInvalidParam),
					"Registry", "CreateComputer", "mode parse")
			}
		}
		return computers.NewEventGather(s, mode)
	})
}

func registerIntervalComputers(r *Registry) {
	properties := []struct {
		name string
		desc string
		op   computers.PropertyOp
	}{
		{"Interval Start", "Start index of each row interval", computers.PropertyStart},
		{"Interval End", "End index of each row interval", computers.PropertyEnd},
		{"Interval Duration", "End minus start of each row interval", computers.PropertyDuration},
	}
	for _, prop := range properties {
		op := prop.op
		r.RegisterComputer(ComputerInfo{
			Name:        prop.name,
			Description: prop.desc,
			Output:      table.ValueInt64,
			Selector:    table.SelectorInterval,
			Source:      source.KindInterval,
		}, func(_ source.Handle, _ map[string]string) (table.Computer, error) {
			return computers.NewIntervalProperty(op)
		})
	}

	overlaps := []struct {
		name string
		desc string
		op   computers.OverlapOp
	}{
		{"Interval Overlap Assign ID", "Ordinal of the source interval covering each row interval", computers.OverlapAssignID},
		{"Interval Overlap Count", "Number of source intervals overlapping each row interval", computers.OverlapCount},
		{"Interval Overlap Assign Start", "Row-frame start index of the covering source interval", computers.OverlapAssignStart},
		{"Interval Overlap Assign End", "Row-frame end index of the covering source interval", computers.OverlapAssignEnd},
	}
	for _, ov := range overlaps {
		op := ov.op
		r.RegisterComputer(ComputerInfo{
			Name:        ov.name,
			Description: ov.desc,
			Output:      table.ValueInt64,
			Selector:    table.SelectorInterval,
			Source:      source.KindInterval,
		}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
			s, err := intervalOf(src)
			if err != nil {
				return nil, err
			}
			return computers.NewIntervalOverlap(s, op)
		})
	}

	r.RegisterComputer(ComputerInfo{
		Name:        "Analog Slice Gatherer",
		Description: "Raw analog samples inside each row interval",
		Output:      table.ValueFloatVector,
		Selector:    table.SelectorInterval,
		Source:      source.KindAnalog,
	}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
		s, err := analogOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewAnalogSliceGatherer(s)
	})
}

func registerTimestampComputers(r *Registry) {
	r.RegisterComputer(ComputerInfo{
		Name:        "Timestamp Value",
		Description: "Analog sample at each row timestamp",
		Output:      table.ValueFloat64,
		Selector:    table.SelectorTimestamp,
		Source:      source.KindAnalog,
	}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
		s, err := analogOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewTimestampValue(s)
	})

	r.RegisterComputer(ComputerInfo{
		Name:        "Timestamp In Interval",
		Description: "Whether each row timestamp falls inside a source interval",
		Output:      table.ValueBool,
		Selector:    table.SelectorTimestamp,
		Source:      source.KindInterval,
	}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
		s, err := intervalOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewTimestampInInterval(s)
	})

	r.RegisterMultiComputer(ComputerInfo{
		Name:        "Analog Timestamp Offsets",
		Description: "Analog samples at fixed integer offsets from each row timestamp",
		Output:      table.ValueFloat64,
		Selector:    table.SelectorTimestamp,
		Source:      source.KindAnalog,
		Params: []ParamDescriptor{{
			Name:        "offsets",
			Description: "Comma-separated integer offsets",
			Type:        "string",
			Default:     "0",
		}},
		OutputSuffixes: func(params map[string]string) []string {
			offsets, err := parseOffsets(params["offsets"])
			if err != nil || len(offsets) == 0 {
				return []string{".t+0"}
			}
			suffixes := make([]string, len(offsets))
			for i, off := range offsets {
				if off >= 0 {
					suffixes[i] = fmt.Sprintf(".t+%d", off)
				} else {
					suffixes[i] = fmt.Sprintf(".t%d", off)
				}
			}
			return suffixes
		},
	}, func(src source.Handle, params map[string]string) (table.MultiComputer, error) {
		s, err := analogOf(src)
		if err != nil {
			return nil, err
		}
		offsets, err := parseOffsets(params["offsets"])
		if err != nil {
			return nil, err
		}
		return computers.NewAnalogOffsets(s, offsets)
	})
}

func registerLineComputers(r *Registry) {
	r.RegisterComputer(ComputerInfo{
		Name:        "Line Timestamp",
		Description: "Owning timestamp index of every polyline at each row timestamp",
		Output:      table.ValueInt64,
		Selector:    table.SelectorTimestamp,
		Source:      source.KindLine,
	}, func(src source.Handle, _ map[string]string) (table.Computer, error) {
		s, err := lineOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewLineTimestamp(s)
	})

	r.RegisterMultiComputer(ComputerInfo{
		Name:        "Line Sample XY",
		Description: "Polyline coordinates sampled at evenly spaced arc-length fractions",
		Output:      table.ValueFloat64,
		Selector:    table.SelectorTimestamp,
		Source:      source.KindLine,
		Params: []ParamDescriptor{{
			Name:        "segments",
			Description: "Number of arc-length segments; samples segments+1 positions",
			Type:        "int",
			Default:     "1",
		}},
		OutputSuffixes: func(params map[string]string) []string {
			segments := parseSegments(params["segments"])
			suffixes := make([]string, 0, (segments+1)*2)
			for s := 0; s <= segments; s++ {
				frac := float64(s) / float64(segments)
				suffixes = append(suffixes,
					fmt.Sprintf(".x@%.3f", frac),
					fmt.Sprintf(".y@%.3f", frac))
			}
			return suffixes
		},
	}, func(src source.Handle, params map[string]string) (table.MultiComputer, error) {
		s, err := lineOf(src)
		if err != nil {
			return nil, err
		}
		return computers.NewLineSamplingMulti(s, parseSegments(params["segments"]))
	})
}

func registerAdapters(r *Registry) {
	components := []struct {
		name      string
		desc      string
		component source.Component
	}{
		{"Point X Component", "X coordinates of a point source viewed as an analog signal", source.ComponentX},
		{"Point Y Component", "Y coordinates of a point source viewed as an analog signal", source.ComponentY},
	}
	for _, comp := range components {
		component := comp.component
		r.RegisterAdapter(AdapterInfo{
			Name:        comp.name,
			Description: comp.desc,
			Input:       source.KindPoint,
			Output:      source.KindAnalog,
		}, func(name string, src source.Handle, frame timeframe.TimeFrame) (source.Handle, error) {
			s, ok := src.Point()
			if !ok {
				return source.Handle{}, errors.WrapTypeMismatch(
					errors.ErrSourceKindMismatch, "Registry", "CreateAdapter", "point source check")
			}
			adapted, err := source.NewPointComponentAdapter(name, s, frame, component)
			if err != nil {
				return source.Handle{}, err
			}
			return source.AnalogHandle(adapted), nil
		})
	}
}

// parseOffsets splits a comma-separated integer list. Empty input means the
// default zero offset.
func parseOffsets(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var offsets []int64
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		off, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, errors.WrapConfig(
				fmt.Errorf("offset %q: %w", token, errors.ErrInvalidParam),
				"Registry", "CreateComputer", "offsets parse")
		}
		offsets = append(offsets, off)
	}
	return offsets, nil
}

// parseSegments parses the segments parameter, falling back to 1 for
// missing or malformed values.
func parseSegments(raw string) int {
	segments, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || segments < 1 {
		return 1
	}
	return segments
}
