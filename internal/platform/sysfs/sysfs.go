// Package sysfs looks for hypervisor fingerprints in DMI identifiers and
// the CPU feature flags the kernel exposes.
package sysfs

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/prometheus/procfs"
	procsys "github.com/prometheus/procfs/sysfs"

	"github.com/mbrock/hostenv/internal/environment"
)

// vendors are lower-cased substrings of DMI vendor and product strings
// written by common hypervisors.
var vendors = []string{
	"qemu",
	"kvm",
	"vmware",
	"virtualbox",
	"innotek",
	"xen",
	"bochs",
	"parallels",
	"virtual machine",
	"amazon ec2",
	"google compute engine",
	"bhyve",
	"apple virtualization",
	"openstack",
	"cloud hypervisor",
}

// Source inspects /sys/class/dmi/id and /proc/cpuinfo.
type Source struct {
	procRoot string
	sysRoot  string
}

// NewSource returns a Source reading the live /proc and /sys.
func NewSource() *Source {
	return newSourceAt(procfs.DefaultMountPoint, procsys.DefaultMountPoint)
}

// newSourceAt points the source at synthetic trees in tests.
func newSourceAt(procRoot, sysRoot string) *Source {
	return &Source{procRoot: procRoot, sysRoot: sysRoot}
}

func (s *Source) Name() string { return "sysfs" }

// Probe reports SignalSimulated on a fingerprint match and SignalUnknown
// otherwise; the absence of a fingerprint does not prove bare metal.
func (s *Source) Probe() environment.Signal {
	if ident, ok := s.dmiMatch(); ok {
		slog.Debug("dmi hypervisor fingerprint", "ident", ident)
		return environment.SignalSimulated
	}
	if s.hypervisorFlag() {
		slog.Debug("cpuinfo hypervisor flag set")
		return environment.SignalSimulated
	}
	return environment.SignalUnknown
}

func (s *Source) dmiMatch() (string, bool) {
	fs, err := procsys.NewFS(s.sysRoot)
	if err != nil {
		slog.Debug("sysfs unavailable", "root", s.sysRoot, "error", err)
		return "", false
	}
	dmi, err := fs.DMIClass()
	if err != nil {
		slog.Debug("dmi unavailable", "error", err)
		return "", false
	}
	for _, field := range []*string{dmi.SystemVendor, dmi.ProductName, dmi.BoardVendor, dmi.BiosVendor} {
		if field == nil {
			continue
		}
		if MatchVendor(*field) {
			return *field, true
		}
	}
	return "", false
}

func (s *Source) hypervisorFlag() bool {
	fs, err := procfs.NewFS(s.procRoot)
	if err != nil {
		slog.Debug("procfs unavailable", "root", s.procRoot, "error", err)
		return false
	}
	cpus, err := fs.CPUInfo()
	if err != nil {
		slog.Debug("cpuinfo unavailable", "error", err)
		return false
	}
	for _, cpu := range cpus {
		if slices.Contains(cpu.Flags, "hypervisor") {
			return true
		}
	}
	return false
}

// MatchVendor reports whether a DMI string names a known hypervisor.
func MatchVendor(ident string) bool {
	ident = strings.ToLower(strings.TrimSpace(ident))
	if ident == "" {
		return false
	}
	for _, v := range vendors {
		if strings.Contains(ident, v) {
			return true
		}
	}
	return false
}
