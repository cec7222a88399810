package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/paulmthompson/seriestable/errors"
)

// Config is the declarative description of a batch of tables to build.
type Config struct {
	Metadata Metadata      `json:"metadata"`
	Tables   []TableConfig `json:"tables"`
}

// Metadata names the configuration itself.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TableConfig describes one table: its identity, row selector, and columns.
type TableConfig struct {
	TableID     string         `json:"table_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	RowSelector SelectorConfig `json:"row_selector"`
	Columns     []ColumnConfig `json:"columns"`
}

// SelectorConfig describes the row selector. Type is "interval" or
// "timestamp". Rows come either from an explicit list or from a named
// source: an interval source contributes its stored intervals, and a
// timeframe with no explicit timestamps contributes every index.
type SelectorConfig struct {
	Type       string     `json:"type"`
	Source     string     `json:"source,omitempty"`
	TimeFrame  string     `json:"timeframe,omitempty"`
	Timestamps []int64    `json:"timestamps,omitempty"`
	Intervals  [][2]int64 `json:"intervals,omitempty"`
}

// ColumnConfig binds one column to a data source and a registered computer.
// An optional adapter re-views the source before the computer binds it.
type ColumnConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	DataSource  string            `json:"data_source"`
	Adapter     string            `json:"adapter,omitempty"`
	Computer    string            `json:"computer"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// ParseConfig decodes and validates a JSON configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.WrapConfig(err, "Pipeline", "ParseConfig", "json decode")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]struct{}, len(c.Tables))
	for _, tc := range c.Tables {
		if tc.TableID == "" {
			return errors.WrapConfig(
				fmt.Errorf("table %q has no table_id: %w", tc.Name, errors.ErrInvalidParam),
				"Pipeline", "ParseConfig", "table id check")
		}
		if _, dup := seen[tc.TableID]; dup {
			return errors.WrapConfig(
				fmt.Errorf("table %q: %w", tc.TableID, errors.ErrDuplicateTable),
				"Pipeline", "ParseConfig", "table id uniqueness check")
		}
		seen[tc.TableID] = struct{}{}

		switch tc.RowSelector.Type {
		case "interval":
			if tc.RowSelector.Source == "" && len(tc.RowSelector.Intervals) == 0 {
				return errors.WrapConfig(
					fmt.Errorf("table %q: interval selector needs a source or explicit intervals: %w",
						tc.TableID, errors.ErrInvalidParam),
					"Pipeline", "ParseConfig", "row selector check")
			}
		case "timestamp":
			if tc.RowSelector.TimeFrame == "" && len(tc.RowSelector.Timestamps) == 0 {
				return errors.WrapConfig(
					fmt.Errorf("table %q: timestamp selector needs a timeframe or explicit timestamps: %w",
						tc.TableID, errors.ErrInvalidParam),
					"Pipeline", "ParseConfig", "row selector check")
			}
		default:
			return errors.WrapConfig(
				fmt.Errorf("table %q: selector type %q: %w",
					tc.TableID, tc.RowSelector.Type, errors.ErrInvalidParam),
				"Pipeline", "ParseConfig", "row selector type check")
		}

		for _, col := range tc.Columns {
			if col.Name == "" || col.Computer == "" {
				return errors.WrapConfig(
					fmt.Errorf("table %q: column needs a name and a computer: %w",
						tc.TableID, errors.ErrInvalidParam),
					"Pipeline", "ParseConfig", "column check")
			}
		}
	}
	return nil
}
