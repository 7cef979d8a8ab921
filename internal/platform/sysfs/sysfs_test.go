package sysfs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mbrock/hostenv/internal/environment"
)

// writeTree creates files relative to root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func newTestSource(t *testing.T, proc, sys map[string]string) *Source {
	t.Helper()
	dir := t.TempDir()
	procRoot := filepath.Join(dir, "proc")
	sysRoot := filepath.Join(dir, "sys")
	for _, root := range []string{procRoot, sysRoot} {
		if err := os.MkdirAll(root, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	writeTree(t, procRoot, proc)
	writeTree(t, sysRoot, sys)
	return newSourceAt(procRoot, sysRoot)
}

func TestProbe_DMIVendor(t *testing.T) {
	s := newTestSource(t, nil, map[string]string{
		"class/dmi/id/sys_vendor":   "QEMU\n",
		"class/dmi/id/product_name": "Standard PC (Q35 + ICH9, 2009)\n",
	})
	if got := s.Probe(); got != environment.SignalSimulated {
		t.Fatalf("Probe() = %v, want simulated", got)
	}
}

func TestProbe_DMIProductName(t *testing.T) {
	s := newTestSource(t, nil, map[string]string{
		"class/dmi/id/sys_vendor":   "innotek GmbH\n",
		"class/dmi/id/product_name": "VirtualBox\n",
	})
	if got := s.Probe(); got != environment.SignalSimulated {
		t.Fatalf("Probe() = %v, want simulated", got)
	}
}

func TestProbe_HardwareVendorIsNotDecisive(t *testing.T) {
	s := newTestSource(t, nil, map[string]string{
		"class/dmi/id/sys_vendor":   "LENOVO\n",
		"class/dmi/id/product_name": "20XW0026US\n",
		"class/dmi/id/bios_vendor":  "LENOVO\n",
	})
	if got := s.Probe(); got != environment.SignalUnknown {
		t.Fatalf("Probe() = %v, want unknown", got)
	}
}

func TestProbe_MissingTrees(t *testing.T) {
	s := newSourceAt(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "nope"))
	if got := s.Probe(); got != environment.SignalUnknown {
		t.Fatalf("Probe() = %v, want unknown", got)
	}
}

func TestProbe_CPUInfoHypervisorFlag(t *testing.T) {
	// procfs picks its cpuinfo parser by GOARCH; the fixture is x86 format.
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "386" {
		t.Skipf("x86 cpuinfo fixture on %s", runtime.GOARCH)
	}
	cpuinfo := "processor\t: 0\n" +
		"vendor_id\t: GenuineIntel\n" +
		"model name\t: Intel(R) Xeon(R) CPU\n" +
		"flags\t\t: fpu vme de pse tsc msr hypervisor lahf_lm\n\n"
	s := newTestSource(t, map[string]string{"cpuinfo": cpuinfo}, nil)
	if got := s.Probe(); got != environment.SignalSimulated {
		t.Fatalf("Probe() = %v, want simulated", got)
	}
}

func TestMatchVendor(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"VMware, Inc.", true},
		{"Microsoft Corporation Virtual Machine", true},
		{"Amazon EC2", true},
		{"Xen", true},
		{"Dell Inc.", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := MatchVendor(tt.in); got != tt.want {
			t.Errorf("MatchVendor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
