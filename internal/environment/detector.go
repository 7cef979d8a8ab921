package environment

import "sync/atomic"

// Source supplies a host signal. Probe must not block for long and must
// never fail: an unavailable signal is SignalUnknown.
type Source interface {
	Name() string
	Probe() Signal
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	Label string
	Fn    func() Signal
}

func (f SourceFunc) Name() string { return f.Label }

func (f SourceFunc) Probe() Signal {
	if f.Fn == nil {
		return SignalUnknown
	}
	return f.Fn()
}

// Fixed returns a Source that always reports sig.
func Fixed(name string, sig Signal) Source {
	return SourceFunc{Label: name, Fn: func() Signal { return sig }}
}

// Observation is what a single source reported.
type Observation struct {
	Source string `json:"source"`
	Signal Signal `json:"-"`
	Value  string `json:"signal"`
}

// Explain probes every source without memoising anything.
func Explain(sources ...Source) []Observation {
	obs := make([]Observation, 0, len(sources))
	for _, src := range sources {
		sig := src.Probe()
		obs = append(obs, Observation{Source: src.Name(), Signal: sig, Value: sig.String()})
	}
	return obs
}

const (
	stateUnqueried uint32 = iota
	stateSimulated
	statePhysical
)

// Detector computes the Environment once and caches it.
// The zero value has no sources and detects Physical.
type Detector struct {
	sources []Source
	state   atomic.Uint32
}

// New returns a detector consulting sources in order.
func New(sources ...Source) *Detector {
	return &Detector{sources: sources}
}

// Detect returns the cached classification, computing it on first use.
// The first decisive source wins. Concurrent first calls may each probe,
// but only the first result is published and every caller returns it.
func (d *Detector) Detect() Environment {
	if st := d.state.Load(); st != stateUnqueried {
		return fromState(st)
	}

	env := Physical
	for _, src := range d.sources {
		if sig := src.Probe(); sig.Decisive() {
			env = sig.Environment()
			break
		}
	}

	d.state.CompareAndSwap(stateUnqueried, toState(env))
	return fromState(d.state.Load())
}

// Computed reports whether Detect has already settled the classification.
func (d *Detector) Computed() bool {
	return d.state.Load() != stateUnqueried
}

// Sources returns the sources the detector consults, in order.
func (d *Detector) Sources() []Source {
	return append([]Source(nil), d.sources...)
}

func toState(env Environment) uint32 {
	if env == Simulated {
		return stateSimulated
	}
	return statePhysical
}

func fromState(st uint32) Environment {
	if st == stateSimulated {
		return Simulated
	}
	return Physical
}
