// Package dirs resolves where hostenv keeps its config file and sockets.
package dirs

import (
	"os"
	"path/filepath"
	"strconv"
)

// ConfigDir returns the directory holding config.yaml.
// Priority: $HOSTENV_CONFIG_DIR > $XDG_CONFIG_HOME/hostenv > ~/.config/hostenv
func ConfigDir() string {
	if v := os.Getenv("HOSTENV_CONFIG_DIR"); v != "" {
		return v
	}
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "hostenv")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "hostenv")
	}
	return filepath.Join(os.TempDir(), "hostenv-config")
}

// ConfigFile returns the default config file path. It may not exist.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// RuntimeDir returns the directory for ephemeral runtime data (sockets).
// Priority: $HOSTENV_RUNTIME_DIR > $XDG_RUNTIME_DIR/hostenv >
// /run/user/$UID/hostenv > /var/run/user/$UID/hostenv > $TMPDIR/hostenv-$UID
func RuntimeDir() string {
	if v := os.Getenv("HOSTENV_RUNTIME_DIR"); v != "" {
		return v
	}
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "hostenv")
	}

	uid := os.Getuid()
	if uid < 0 {
		// No uids on this platform.
		return filepath.Join(os.TempDir(), "hostenv")
	}
	id := strconv.Itoa(uid)
	if root := firstDir("/run/user/"+id, "/var/run/user/"+id); root != "" {
		return filepath.Join(root, "hostenv")
	}
	return filepath.Join(os.TempDir(), "hostenv-"+id)
}

// SocketPath is the default unix socket for `hostenv serve --unix`.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "web.sock")
}

// firstDir returns the first path that is an existing directory, or "".
func firstDir(paths ...string) string {
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p
		}
	}
	return ""
}
