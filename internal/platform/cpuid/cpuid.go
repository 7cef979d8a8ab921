// Package cpuid reads the hypervisor-present bit from CPUID.
package cpuid

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/mbrock/hostenv/internal/environment"
)

// Source reports SignalSimulated when CPUID leaf 1 advertises a hypervisor.
// A clear bit is not decisive: hypervisors may hide it, and non-x86 CPUs
// have no such bit.
type Source struct {
	vm func() bool
}

func NewSource() *Source {
	return &Source{vm: cpuid.CPU.VM}
}

func (s *Source) Name() string { return "cpuid" }

func (s *Source) Probe() environment.Signal {
	if s.vm != nil && s.vm() {
		return environment.SignalSimulated
	}
	return environment.SignalUnknown
}
