// Package sysctl reads the kernel's own hypervisor report on darwin.
package sysctl

import (
	"strings"

	"github.com/mbrock/hostenv/internal/environment"
)

// Source queries kern.hv_vmm_present, falling back to the VMM bit in
// machdep.cpu.features. On other systems it always reports unknown.
type Source struct {
	read reader
}

// reader abstracts the two sysctls; ok is false when a key is missing.
type reader interface {
	vmmPresent() (value uint32, ok bool)
	cpuFeatures() (features string, ok bool)
}

func NewSource() *Source {
	return &Source{read: hostReader{}}
}

func (s *Source) Name() string { return "sysctl" }

func (s *Source) Probe() environment.Signal {
	if s.read == nil {
		return environment.SignalUnknown
	}
	return classify(s.read)
}

func classify(r reader) environment.Signal {
	if v, ok := r.vmmPresent(); ok {
		if v != 0 {
			return environment.SignalSimulated
		}
		return environment.SignalPhysical
	}
	if features, ok := r.cpuFeatures(); ok {
		for _, f := range strings.Fields(features) {
			if strings.EqualFold(f, "VMM") {
				return environment.SignalSimulated
			}
		}
	}
	return environment.SignalUnknown
}
