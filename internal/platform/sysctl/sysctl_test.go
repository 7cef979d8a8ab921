package sysctl

import (
	"runtime"
	"testing"

	"github.com/mbrock/hostenv/internal/environment"
)

type fakeReader struct {
	vmm      uint32
	vmmOK    bool
	features string
	featOK   bool
}

func (f fakeReader) vmmPresent() (uint32, bool)  { return f.vmm, f.vmmOK }
func (f fakeReader) cpuFeatures() (string, bool) { return f.features, f.featOK }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		r    fakeReader
		want environment.Signal
	}{
		{"vmm present", fakeReader{vmm: 1, vmmOK: true}, environment.SignalSimulated},
		{"vmm absent", fakeReader{vmm: 0, vmmOK: true}, environment.SignalPhysical},
		{"features vmm", fakeReader{features: "FPU VME DE VMM SSE", featOK: true}, environment.SignalSimulated},
		{"features plain", fakeReader{features: "FPU VME DE SSE", featOK: true}, environment.SignalUnknown},
		{"nothing readable", fakeReader{}, environment.SignalUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Source{read: tt.r}
			if got := s.Probe(); got != tt.want {
				t.Fatalf("Probe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHostReader_NonDarwin(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("live sysctls on darwin")
	}
	if got := NewSource().Probe(); got != environment.SignalUnknown {
		t.Fatalf("Probe() = %v, want unknown off darwin", got)
	}
}
