//go:build !darwin

package sysctl

// hostReader has nothing to read outside darwin.
type hostReader struct{}

func (hostReader) vmmPresent() (uint32, bool) { return 0, false }

func (hostReader) cpuFeatures() (string, bool) { return "", false }
