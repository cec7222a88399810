// Package seriestable assembles heterogeneous, independently-sampled
// scientific time series into flat tabular views on demand.
//
// # Architecture
//
// The engine is layered from leaf to root:
//
//	┌─────────────────────────────────────┐
//	│       Table Builder / View          │  Plan resolution, per-column
//	│  (build, reconcile, freeze)         │  computation, row expansion
//	└─────────────────────────────────────┘
//	           ↓ consumes
//	┌─────────────────────────────────────┐
//	│        Column Computers             │  Reductions, event counting,
//	│  (created by the registry)          │  interval properties, sampling
//	└─────────────────────────────────────┘
//	           ↓ range-query
//	┌─────────────────────────────────────┐
//	│       Capability Sources            │  Analog, Event, Interval,
//	│  (and adapters synthesizing them)   │  Line, Point
//	└─────────────────────────────────────┘
//
// Sources never know about tables; they only answer range queries, converting
// between their native time frame and whatever destination frame the caller
// supplies. Two sources in one table may therefore be sampled at different
// rates or clocks.
//
// Packages:
//   - timeframe: the time coordinate system interface and a concrete Clock
//   - entity: stable per-item identifiers for geometric entities
//   - source: the closed capability union and slice-backed sources
//   - table: row selectors, execution plans, builder, and the immutable view
//   - table/computers: the column computation algorithms
//   - registry: name-keyed computer and adapter discovery and construction
//   - tablestore: storage of completed views under string keys
//   - pipeline: JSON-driven sequential batch builds
//   - metric: prometheus build metrics
//   - errors: classified error handling shared by all of the above
//
// The engine is single-threaded and synchronous: no operation blocks on I/O
// or spawns concurrent work. The registry is populated once and is thereafter
// safe for concurrent reads from multiple simultaneous table builds.
package seriestable
