// Package systemd reads systemd's own virtualization detection over D-Bus.
package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"

	"github.com/mbrock/hostenv/internal/environment"
)

const (
	busName      = "org.freedesktop.systemd1"
	propertyName = "Virtualization"

	// DefaultTimeout bounds one D-Bus round trip.
	DefaultTimeout = 2 * time.Second
)

// containers lists the identifiers systemd reports for container managers.
// A container shares the host kernel and says nothing about the hardware.
var containers = map[string]bool{
	"openvz":          true,
	"lxc":             true,
	"lxc-libvirt":     true,
	"systemd-nspawn":  true,
	"docker":          true,
	"podman":          true,
	"rkt":             true,
	"wsl":             true,
	"proot":           true,
	"pouch":           true,
	"container-other": true,
}

// ParseVirtualization maps the manager's Virtualization property to a signal.
// Empty and "none" mean bare metal; container ids are not decisive; any
// other id (kvm, qemu, vmware, microsoft, apple, vm-other, ...) is a VM.
func ParseVirtualization(id string) environment.Signal {
	id = strings.ToLower(strings.TrimSpace(id))
	switch {
	case id == "" || id == "none":
		return environment.SignalPhysical
	case containers[id]:
		return environment.SignalUnknown
	default:
		return environment.SignalSimulated
	}
}

// manager is the slice of the systemd manager API the source needs.
type manager interface {
	GetManagerProperty(ctx context.Context, prop string) (string, error)
	Close()
}

// Source asks systemd (system instance, then user instance) what kind of
// virtualization it detected at boot.
type Source struct {
	// Timeout bounds the whole lookup, bus discovery included.
	Timeout time.Duration

	// connect opens a manager connection; replaced in tests.
	connect func(ctx context.Context) (manager, error)
}

// NewSource returns a Source talking to the real buses.
func NewSource(timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{Timeout: timeout, connect: connectManager}
}

func (s *Source) Name() string { return "systemd" }

// Probe returns SignalUnknown whenever systemd is unreachable or does not
// answer within Timeout.
func (s *Source) Probe() environment.Signal {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	id, err := s.virtualization(ctx)
	if err != nil {
		slog.Debug("systemd virtualization unavailable", "error", err)
		return environment.SignalUnknown
	}
	sig := ParseVirtualization(id)
	slog.Debug("systemd virtualization", "id", id, "signal", sig)
	return sig
}

type lookup struct {
	id  string
	err error
}

// virtualization returns once ctx is done even if the bus never answers.
// The abandoned lookup finishes in the background and closes its connection.
func (s *Source) virtualization(ctx context.Context) (string, error) {
	connect := s.connect
	if connect == nil {
		connect = connectManager
	}

	done := make(chan lookup, 1)
	go func() {
		id, err := readProperty(ctx, connect)
		done <- lookup{id, err}
	}()

	select {
	case r := <-done:
		return r.id, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for %s: %w", busName, ctx.Err())
	}
}

func readProperty(ctx context.Context, connect func(context.Context) (manager, error)) (string, error) {
	m, err := connect(ctx)
	if err != nil {
		return "", err
	}
	defer m.Close()

	raw, err := m.GetManagerProperty(ctx, propertyName)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", propertyName, err)
	}
	return unquote(raw), nil
}

// unquote strips GVariant text quoting: the property comes back as "\"kvm\"".
func unquote(raw string) string {
	if v, err := strconv.Unquote(raw); err == nil {
		return v
	}
	return strings.Trim(raw, `"'`)
}

// systemdConn adapts a go-systemd connection, whose property getter takes
// no context, to manager.
type systemdConn struct {
	conn *dbus.Conn
}

func (c systemdConn) GetManagerProperty(ctx context.Context, prop string) (string, error) {
	done := make(chan lookup, 1)
	go func() {
		v, err := c.conn.GetManagerProperty(prop)
		done <- lookup{v, err}
	}()
	select {
	case r := <-done:
		return r.id, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c systemdConn) Close() { c.conn.Close() }

// connectManager prefers the system manager and falls back to the user one.
func connectManager(ctx context.Context) (manager, error) {
	if hasSystemd(ctx, godbus.ConnectSystemBus) {
		conn, err := dbus.NewSystemConnectionContext(ctx)
		if err == nil {
			return systemdConn{conn}, nil
		}
		slog.Debug("systemd system connection failed", "error", err)
	}
	if hasSystemd(ctx, godbus.ConnectSessionBus) {
		conn, err := dbus.NewUserConnectionContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("connecting to user systemd: %w", err)
		}
		return systemdConn{conn}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%s is not on any bus", busName)
}

// hasSystemd checks that systemd owns its well-known name on the bus, so a
// D-Bus daemon running under another init is not mistaken for systemd.
func hasSystemd(ctx context.Context, dial func(...godbus.ConnOption) (*godbus.Conn, error)) bool {
	conn, err := dial(godbus.WithContext(ctx))
	if err != nil {
		return false
	}
	defer conn.Close()

	var owner string
	err = conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus").
		CallWithContext(ctx, "org.freedesktop.DBus.GetNameOwner", 0, busName).
		Store(&owner)

	return err == nil && owner != ""
}
