// Package platform assembles the host signal sources into a detector and
// owns the process-wide classification.
package platform

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mbrock/hostenv/internal/config"
	"github.com/mbrock/hostenv/internal/environment"
	"github.com/mbrock/hostenv/internal/platform/cpuid"
	"github.com/mbrock/hostenv/internal/platform/mobile"
	"github.com/mbrock/hostenv/internal/platform/sysctl"
	"github.com/mbrock/hostenv/internal/platform/sysfs"
	"github.com/mbrock/hostenv/internal/platform/systemd"
)

// Sources builds the configured source chain in order. Unknown names are
// skipped with a warning.
func Sources(cfg config.Config) []environment.Source {
	sources := make([]environment.Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		src := newSource(name, cfg)
		if src == nil {
			slog.Warn("unknown environment source", "source", name)
			continue
		}
		sources = append(sources, src)
	}
	return sources
}

func newSource(name string, cfg config.Config) environment.Source {
	switch name {
	case config.SourceOverride:
		return Override(cfg.Override)
	case config.SourceMobile:
		return mobile.NewSource()
	case config.SourceSystemd:
		return systemd.NewSource(cfg.SystemdTimeout)
	case config.SourceSysfs:
		return sysfs.NewSource()
	case config.SourceSysctl:
		return sysctl.NewSource()
	case config.SourceCPUID:
		return cpuid.NewSource()
	}
	return nil
}

// Detector returns a fresh detector for cfg.
func Detector(cfg config.Config) *environment.Detector {
	return environment.New(Sources(cfg)...)
}

// ErrInitialized is returned by Init once the process detector has been built.
var ErrInitialized = errors.New("process detector already built")

// processDetector builds one detector lazily. Init may supply its config
// up to the first use; without Init the config file and HOSTENV_*
// variables are read.
type processDetector struct {
	mu    sync.Mutex
	cfg   *config.Config
	built bool
	get   func() *environment.Detector
}

func newProcessDetector() *processDetector {
	p := &processDetector{}
	p.get = sync.OnceValue(p.build)
	return p
}

func (p *processDetector) init(cfg config.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.built {
		return ErrInitialized
	}
	p.cfg = &cfg
	return nil
}

func (p *processDetector) build() *environment.Detector {
	p.mu.Lock()
	p.built = true
	cfg := p.cfg
	p.mu.Unlock()

	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			slog.Warn("using default environment sources", "error", err)
			loaded = config.Default()
		}
		cfg = &loaded
	}
	return Detector(*cfg)
}

var process = newProcessDetector()

// Init sets the config the process detector is built from. It must run
// before the first Process or Detect call.
func Init(cfg config.Config) error {
	return process.init(cfg)
}

// Process returns the detector shared by the whole process.
func Process() *environment.Detector {
	return process.get()
}

// Detect returns the process-wide execution environment. The first call
// probes the host; every later call returns the same value.
func Detect() environment.Environment {
	return Process().Detect()
}
