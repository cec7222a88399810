// Package pipeline executes declarative table configurations: it resolves
// named sources and time frames, instantiates registered computers, builds
// each table sequentially, and stores the results. One failed table never
// aborts the batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/registry"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/tablestore"
	"github.com/paulmthompson/seriestable/timeframe"
)

// Progress reports one table's outcome as the batch advances. Index counts
// from 1 to Total.
type Progress struct {
	TableID string
	Index   int
	Total   int
	Err     error
}

// ProgressFunc receives progress synchronously after each table.
type ProgressFunc func(Progress)

// Result is the outcome of one configured table.
type Result struct {
	TableID string
	StoreID string
	Err     error
}

// Pipeline builds the tables of a configuration against a data store,
// using a computer registry, and deposits successes in a table store.
type Pipeline struct {
	registry *registry.Registry
	data     DataStore
	store    *tablestore.Store
	logger   *slog.Logger
	observer table.BuildObserver
	configs  []TableConfig
}

// New creates a pipeline over a registry, data store, and table store.
func New(reg *registry.Registry, data DataStore, store *tablestore.Store, logger *slog.Logger) (*Pipeline, error) {
	if reg == nil || data == nil || store == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "Pipeline", "New", "dependency check")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry: reg,
		data:     data,
		store:    store,
		logger:   logger.With("component", "Pipeline"),
	}, nil
}

// WithObserver attaches a build observer forwarded to every table build.
func (p *Pipeline) WithObserver(o table.BuildObserver) *Pipeline {
	p.observer = o
	return p
}

// Load replaces the pipeline's table configurations.
func (p *Pipeline) Load(cfg Config) {
	p.configs = cfg.Tables
	p.logger.Info("configuration loaded", "name", cfg.Metadata.Name, "tables", len(cfg.Tables))
}

// LoadJSON parses and loads a JSON configuration.
func (p *Pipeline) LoadJSON(data []byte) error {
	cfg, err := ParseConfig(data)
	if err != nil {
		return err
	}
	p.Load(cfg)
	return nil
}

// TableConfigurations returns the loaded table configurations.
func (p *Pipeline) TableConfigurations() []TableConfig {
	return p.configs
}

// Run builds every loaded table in order. Failures are recorded and logged;
// the batch continues. The context is checked between tables.
func (p *Pipeline) Run(ctx context.Context, progress ProgressFunc) []Result {
	results := make([]Result, 0, len(p.configs))
	for i, tc := range p.configs {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{TableID: tc.TableID, Err: err})
			continue
		}

		storeID, err := p.buildTable(tc)
		if err != nil {
			p.logger.Error("table build failed", "table", tc.TableID, "error", err)
		} else {
			p.logger.Info("table built", "table", tc.TableID, "store_id", storeID)
		}
		results = append(results, Result{TableID: tc.TableID, StoreID: storeID, Err: err})
		if progress != nil {
			progress(Progress{TableID: tc.TableID, Index: i + 1, Total: len(p.configs), Err: err})
		}
	}
	return results
}

func (p *Pipeline) buildTable(tc TableConfig) (string, error) {
	selector, err := p.resolveSelector(tc)
	if err != nil {
		return "", err
	}

	builder := table.NewBuilder(selector, p.logger)
	if p.observer != nil {
		builder.WithObserver(p.observer)
	}

	for _, col := range tc.Columns {
		if err := p.addColumn(builder, tc, col); err != nil {
			// Misconfigured columns are logged and dropped; the rest of
			// the table still builds.
			p.logger.Warn("column skipped", "table", tc.TableID, "column", col.Name, "error", err)
		}
	}

	view, err := builder.Build()
	if err != nil {
		return "", err
	}
	return p.store.Put(tc.TableID, tc.Name, tc.Description, view)
}

func (p *Pipeline) resolveSelector(tc TableConfig) (table.RowSelector, error) {
	sel := tc.RowSelector
	switch sel.Type {
	case "interval":
		if sel.Source != "" {
			h, ok := p.data.Source(sel.Source)
			if !ok {
				return table.RowSelector{}, errors.WrapConfig(
					fmt.Errorf("source %q: %w", sel.Source, errors.ErrUnknownSource),
					"Pipeline", "Run", "row source lookup")
			}
			src, ok := h.Interval()
			if !ok {
				return table.RowSelector{}, errors.WrapTypeMismatch(
					fmt.Errorf("source %q is %s: %w", sel.Source, h.Kind(), errors.ErrSourceKindMismatch),
					"Pipeline", "Run", "row source kind check")
			}
			frame := src.TimeFrame()
			intervals := src.IntervalsInRange(0, frame.NumTimes()-1, nil)
			return table.NewIntervalSelector(intervals, frame), nil
		}
		frame, err := p.lookupFrame(sel.TimeFrame)
		if err != nil {
			return table.RowSelector{}, err
		}
		intervals := make([]source.Interval, len(sel.Intervals))
		for i, pair := range sel.Intervals {
			intervals[i] = source.Interval{Start: pair[0], End: pair[1]}
		}
		return table.NewIntervalSelector(intervals, frame), nil

	case "timestamp":
		frame, err := p.lookupFrame(sel.TimeFrame)
		if err != nil {
			return table.RowSelector{}, err
		}
		timestamps := sel.Timestamps
		if len(timestamps) == 0 && frame != nil {
			// No explicit rows: every index of the named frame.
			timestamps = make([]int64, frame.NumTimes())
			for i := range timestamps {
				timestamps[i] = int64(i)
			}
		}
		return table.NewTimestampSelector(timestamps, frame), nil

	default:
		return table.RowSelector{}, errors.WrapConfig(
			fmt.Errorf("selector type %q: %w", sel.Type, errors.ErrInvalidParam),
			"Pipeline", "Run", "row selector type check")
	}
}

func (p *Pipeline) lookupFrame(name string) (timeframe.TimeFrame, error) {
	if name == "" {
		return nil, nil
	}
	frame, ok := p.data.TimeFrame(name)
	if !ok {
		return nil, errors.WrapConfig(
			fmt.Errorf("timeframe %q: %w", name, errors.ErrUnknownFrame),
			"Pipeline", "Run", "timeframe lookup")
	}
	return frame, nil
}

func (p *Pipeline) addColumn(builder *table.Builder, tc TableConfig, col ColumnConfig) error {
	h, ok := p.data.Source(col.DataSource)
	if !ok {
		return errors.WrapConfig(
			fmt.Errorf("source %q: %w", col.DataSource, errors.ErrUnknownSource),
			"Pipeline", "Run", "column source lookup")
	}

	if col.Adapter != "" {
		frame, err := p.lookupFrame(tc.RowSelector.TimeFrame)
		if err != nil {
			return err
		}
		if frame == nil {
			frame = h.TimeFrame()
		}
		h = p.registry.CreateAdapter(col.Adapter, col.DataSource, h, frame)
		if h.IsZero() {
			return errors.WrapConfig(
				fmt.Errorf("adapter %q on %q: %w", col.Adapter, col.DataSource, errors.ErrUnknownAdapter),
				"Pipeline", "Run", "adapter creation")
		}
	}

	info, ok := p.registry.FindComputerInfo(col.Computer)
	if !ok {
		return errors.WrapConfig(
			fmt.Errorf("computer %q: %w", col.Computer, errors.ErrUnknownComputer),
			"Pipeline", "Run", "computer lookup")
	}

	if info.MultiOutput {
		m := p.registry.CreateMultiComputer(col.Computer, h, col.Parameters)
		if m == nil {
			return errors.WrapConfig(
				fmt.Errorf("computer %q: %w", col.Computer, errors.ErrUnknownComputer),
				"Pipeline", "Run", "computer creation")
		}
		builder.AddMultiColumn(col.Name, m)
		return nil
	}

	c := p.registry.CreateComputer(col.Computer, h, col.Parameters)
	if c == nil {
		return errors.WrapConfig(
			fmt.Errorf("computer %q: %w", col.Computer, errors.ErrUnknownComputer),
			"Pipeline", "Run", "computer creation")
	}
	builder.AddColumn(col.Name, c)
	return nil
}
