// Package mobile recognises the iOS simulator and the Android emulator.
package mobile

import (
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/magiconair/properties"

	"github.com/mbrock/hostenv/internal/environment"
)

// BuildPropPath is where Android keeps its system properties.
const BuildPropPath = "/system/build.prop"

// simulatorVars are set by the iOS simulator in every process it launches.
var simulatorVars = []string{
	"SIMULATOR_UDID",
	"SIMULATOR_DEVICE_NAME",
	"SIMULATOR_RUNTIME_VERSION",
}

// Source checks mobile simulator markers.
type Source struct {
	goos      string
	goarch    string
	buildProp string
	getenv    func(string) string
}

func NewSource() *Source {
	return &Source{
		goos:      runtime.GOOS,
		goarch:    runtime.GOARCH,
		buildProp: BuildPropPath,
		getenv:    os.Getenv,
	}
}

func (s *Source) Name() string { return "mobile" }

// Probe reports simulated on any simulator marker. On ios and android
// without a marker it reports physical; elsewhere it does not decide.
func (s *Source) Probe() environment.Signal {
	for _, key := range simulatorVars {
		if s.getenv(key) != "" {
			slog.Debug("ios simulator marker", "var", key)
			return environment.SignalSimulated
		}
	}

	switch s.goos {
	case "ios":
		// ios/amd64 binaries only run in the simulator.
		if s.goarch == "amd64" {
			return environment.SignalSimulated
		}
		return environment.SignalPhysical
	case "android":
		if s.androidEmulator() {
			return environment.SignalSimulated
		}
		return environment.SignalPhysical
	}

	// Linux-based tooling can still see an emulator image's build.prop.
	if s.androidEmulator() {
		return environment.SignalSimulated
	}
	return environment.SignalUnknown
}

func (s *Source) androidEmulator() bool {
	if _, err := os.Stat(s.buildProp); err != nil {
		return false
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadFile(s.buildProp)
	if err != nil {
		slog.Debug("reading build.prop", "path", s.buildProp, "error", err)
		return false
	}
	return IsEmulator(props)
}

// IsEmulator inspects Android system properties for emulator builds.
func IsEmulator(props *properties.Properties) bool {
	if props.GetString("ro.kernel.qemu", "") == "1" || props.GetString("ro.boot.qemu", "") == "1" {
		return true
	}
	switch props.GetString("ro.hardware", "") {
	case "goldfish", "ranchu":
		return true
	}
	model := props.GetString("ro.product.model", "")
	return strings.Contains(model, "sdk_gphone") || strings.Contains(model, "Emulator")
}
