//go:build darwin

package sysctl

import "golang.org/x/sys/unix"

type hostReader struct{}

func (hostReader) vmmPresent() (uint32, bool) {
	v, err := unix.SysctlUint32("kern.hv_vmm_present")
	if err != nil {
		return 0, false
	}
	return v, true
}

func (hostReader) cpuFeatures() (string, bool) {
	v, err := unix.Sysctl("machdep.cpu.features")
	if err != nil {
		return "", false
	}
	return v, true
}
