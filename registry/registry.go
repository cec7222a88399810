// Package registry catalogs the available column computers and source
// adapters: static metadata for discovery, factories for creation, and
// derived indices answering "what can run here". Creation failures are
// contained: a bad name, source kind, or parameter yields a nil computer
// and a log line, never a panic crossing the registry boundary.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/timeframe"
)

// ParamDescriptor documents one computer parameter for UI and config
// validation.
type ParamDescriptor struct {
	Name        string
	Description string
	// Type is "int", "string", or "enum".
	Type string
	Required bool
	Default  string
	// Enum lists the accepted values for enum-typed parameters.
	Enum []string
}

// ComputerInfo is the static metadata of one registered computer.
type ComputerInfo struct {
	Name        string
	Description string
	// Output is the column value kind the computer produces.
	Output table.ValueKind
	// Selector is the plan shape the computer consumes.
	Selector table.SelectorKind
	// Source is the capability kind the computer binds.
	Source source.Kind
	// MultiOutput marks computers that fan out into suffixed sub-columns.
	MultiOutput bool
	Params      []ParamDescriptor
	// OutputSuffixes previews a multi-output computer's sub-column names
	// for a parameter set; nil for single-output computers.
	OutputSuffixes func(params map[string]string) []string
}

// AdapterInfo is the static metadata of one registered source adapter.
type AdapterInfo struct {
	Name        string
	Description string
	// Input is the capability kind the adapter consumes.
	Input source.Kind
	// Output is the capability kind the adapter presents.
	Output source.Kind
}

// ComputerFactory builds a bound computer from a source handle and string
// parameters.
type ComputerFactory func(src source.Handle, params map[string]string) (table.Computer, error)

// MultiComputerFactory builds a bound multi-output computer.
type MultiComputerFactory func(src source.Handle, params map[string]string) (table.MultiComputer, error)

// AdapterFactory builds an adapted source view over the input handle,
// materialized lazily against the given frame.
type AdapterFactory func(name string, src source.Handle, frame timeframe.TimeFrame) (source.Handle, error)

type computerEntry struct {
	info    ComputerInfo
	factory ComputerFactory
	multi   MultiComputerFactory
}

type adapterEntry struct {
	info    AdapterInfo
	factory AdapterFactory
}

type selectorSourceKey struct {
	selector table.SelectorKind
	source   source.Kind
}

// Registry holds the computer and adapter catalogs plus the derived
// discovery indices. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	computers map[string]computerEntry
	adapters  map[string]adapterEntry

	// derived indices, rebuilt incrementally on registration
	bySelectorSource map[selectorSourceKey][]string
	byInput          map[source.Kind][]string
}

// New creates an empty registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:           logger.With("component", "Registry"),
		computers:        make(map[string]computerEntry),
		adapters:         make(map[string]adapterEntry),
		bySelectorSource: make(map[selectorSourceKey][]string),
		byInput:          make(map[source.Kind][]string),
	}
}

// RegisterComputer adds a single-output computer. Re-registering a name is a
// logged no-op: the first registration wins.
func (r *Registry) RegisterComputer(info ComputerInfo, factory ComputerFactory) {
	r.register(info, computerEntry{info: info, factory: factory})
}

// RegisterMultiComputer adds a multi-output computer under the same
// first-wins rule.
func (r *Registry) RegisterMultiComputer(info ComputerInfo, factory MultiComputerFactory) {
	info.MultiOutput = true
	r.register(info, computerEntry{info: info, multi: factory})
}

func (r *Registry) register(info ComputerInfo, entry computerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.computers[info.Name]; dup {
		r.logger.Warn("duplicate computer registration ignored", "name", info.Name)
		return
	}
	r.computers[info.Name] = entry
	key := selectorSourceKey{selector: info.Selector, source: info.Source}
	r.bySelectorSource[key] = append(r.bySelectorSource[key], info.Name)
}

// RegisterAdapter adds a source adapter under the same first-wins rule.
func (r *Registry) RegisterAdapter(info AdapterInfo, factory AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.adapters[info.Name]; dup {
		r.logger.Warn("duplicate adapter registration ignored", "name", info.Name)
		return
	}
	r.adapters[info.Name] = adapterEntry{info: info, factory: factory}
	r.byInput[info.Input] = append(r.byInput[info.Input], info.Name)
}

// CreateComputer builds the named single-output computer over the source
// handle. Returns nil when the name is unknown, the source kind does not
// match, the parameters are invalid, or the factory fails; every failure is
// logged and contained.
func (r *Registry) CreateComputer(name string, src source.Handle, params map[string]string) table.Computer {
	entry, ok := r.lookupComputer(name, src)
	if !ok || entry.factory == nil {
		if ok {
			r.logger.Warn("computer is multi-output", "name", name)
		}
		return nil
	}

	c, err := r.invoke(name, func() (any, error) { return entry.factory(src, params) })
	if err != nil || c == nil {
		return nil
	}
	return c.(table.Computer)
}

// CreateMultiComputer builds the named multi-output computer over the source
// handle, under the same containment rules as CreateComputer.
func (r *Registry) CreateMultiComputer(name string, src source.Handle, params map[string]string) table.MultiComputer {
	entry, ok := r.lookupComputer(name, src)
	if !ok || entry.multi == nil {
		if ok {
			r.logger.Warn("computer is single-output", "name", name)
		}
		return nil
	}

	m, err := r.invoke(name, func() (any, error) { return entry.multi(src, params) })
	if err != nil || m == nil {
		return nil
	}
	return m.(table.MultiComputer)
}

// CreateAdapter builds the named adapter over the input handle. Returns the
// zero Handle on any failure.
func (r *Registry) CreateAdapter(adapterName, sourceName string, src source.Handle, frame timeframe.TimeFrame) source.Handle {
	r.mu.RLock()
	entry, ok := r.adapters[adapterName]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("unknown adapter", "name", adapterName)
		return source.Handle{}
	}
	if src.Kind() != entry.info.Input {
		r.logger.Warn("adapter input kind mismatch",
			"name", adapterName, "want", entry.info.Input, "got", src.Kind())
		return source.Handle{}
	}

	out, err := r.invoke(adapterName, func() (any, error) { return entry.factory(sourceName, src, frame) })
	if err != nil || out == nil {
		return source.Handle{}
	}
	return out.(source.Handle)
}

// lookupComputer resolves the entry and pre-checks the source kind. A kind
// mismatch is the nil-result path: the computer simply cannot run on this
// source.
func (r *Registry) lookupComputer(name string, src source.Handle) (computerEntry, bool) {
	r.mu.RLock()
	entry, ok := r.computers[name]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("unknown computer", "name", name)
		return computerEntry{}, false
	}
	if entry.info.Source != 0 && src.Kind() != entry.info.Source {
		r.logger.Warn("computer source kind mismatch",
			"name", name, "want", entry.info.Source, "got", src.Kind(),
			"error", errors.WrapTypeMismatch(errors.ErrSourceKindMismatch, "Registry", "CreateComputer", "source kind check"))
		return computerEntry{}, false
	}
	return entry, true
}

// invoke runs a factory behind a recover barrier so a panicking factory
// cannot take down the caller.
func (r *Registry) invoke(name string, f func() (any, error)) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("factory panicked", "name", name, "panic", p)
			out, err = nil, fmt.Errorf("factory %q panicked", name)
		}
	}()
	out, err = f()
	if err != nil {
		r.logger.Warn("factory failed", "name", name, "error", err)
		return nil, err
	}
	return out, nil
}

// FindComputerInfo returns the named computer's metadata.
func (r *Registry) FindComputerInfo(name string) (ComputerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.computers[name]
	return entry.info, ok
}

// FindAdapterInfo returns the named adapter's metadata.
func (r *Registry) FindAdapterInfo(name string) (AdapterInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.adapters[name]
	return entry.info, ok
}

// AvailableComputers lists, sorted by name, the computers that can run for a
// selector shape and source kind.
func (r *Registry) AvailableComputers(selector table.SelectorKind, kind source.Kind) []ComputerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := r.bySelectorSource[selectorSourceKey{selector: selector, source: kind}]
	out := make([]ComputerInfo, 0, len(names))
	for _, n := range names {
		out = append(out, r.computers[n].info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AvailableAdapters lists, sorted by name, the adapters accepting a source
// kind.
func (r *Registry) AvailableAdapters(input source.Kind) []AdapterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := r.byInput[input]
	out := make([]AdapterInfo, 0, len(names))
	for _, n := range names {
		out = append(out, r.adapters[n].info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AllComputerNames lists every registered computer name, sorted.
func (r *Registry) AllComputerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.computers))
	for n := range r.computers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AllAdapterNames lists every registered adapter name, sorted.
func (r *Registry) AllAdapterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
