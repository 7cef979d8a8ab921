// Package environment classifies the running process as executing under an
// emulation or virtualisation layer, or directly on physical hardware.
//
// The classification is derived from host signals supplied by Sources and is
// computed at most once per Detector. Ambiguous or missing signals resolve to
// Physical.
package environment

import "strings"

// Environment is the two-valued execution classification.
type Environment string

const (
	// Simulated means the process runs under an emulator, simulator or
	// hypervisor mimicking the target hardware.
	Simulated Environment = "simulated"
	// Physical means the process runs directly on the target hardware.
	Physical Environment = "physical"
)

func (e Environment) String() string { return string(e) }

// Valid reports whether e is one of the two known variants.
func (e Environment) Valid() bool {
	return e == Simulated || e == Physical
}

// Signal is the tri-state host signal a Source reports.
type Signal int8

const (
	// SignalUnknown means the source could not tell.
	SignalUnknown Signal = iota
	SignalSimulated
	SignalPhysical
)

func (s Signal) String() string {
	switch s {
	case SignalSimulated:
		return "simulated"
	case SignalPhysical:
		return "physical"
	default:
		return "unknown"
	}
}

// Decisive reports whether the signal settles the classification.
func (s Signal) Decisive() bool {
	return s == SignalSimulated || s == SignalPhysical
}

// Environment normalises the signal. Unknown becomes Physical.
func (s Signal) Environment() Environment {
	if s == SignalSimulated {
		return Simulated
	}
	return Physical
}

// Resolve returns the environment named by the first decisive signal,
// or Physical when none is decisive.
func Resolve(signals ...Signal) Environment {
	for _, s := range signals {
		if s.Decisive() {
			return s.Environment()
		}
	}
	return Physical
}

// ParseSignal parses an operator-supplied value such as an environment
// variable. Empty, "auto" and "unknown" parse to SignalUnknown with ok set;
// anything unrecognised returns SignalUnknown and ok false.
func ParseSignal(value string) (sig Signal, ok bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto", "unknown":
		return SignalUnknown, true
	case "simulated", "simulator", "emulated", "emulator", "virtual", "vm",
		"1", "true", "yes", "on":
		return SignalSimulated, true
	case "physical", "device", "hardware", "metal",
		"0", "false", "no", "off":
		return SignalPhysical, true
	}
	return SignalUnknown, false
}
