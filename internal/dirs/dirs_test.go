package dirs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDir(t *testing.T) {
	t.Setenv("HOSTENV_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != filepath.Join("/xdg", "hostenv") {
		t.Fatalf("ConfigDir() = %q", got)
	}

	t.Setenv("HOSTENV_CONFIG_DIR", "/etc/hostenv")
	if got := ConfigFile(); got != "/etc/hostenv/config.yaml" {
		t.Fatalf("ConfigFile() = %q", got)
	}
}

func TestRuntimeDir(t *testing.T) {
	t.Setenv("HOSTENV_RUNTIME_DIR", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := RuntimeDir(); got != "/run/user/1000/hostenv" {
		t.Fatalf("RuntimeDir() = %q", got)
	}

	t.Setenv("HOSTENV_RUNTIME_DIR", "/tmp/he")
	if got := SocketPath(); got != "/tmp/he/web.sock" {
		t.Fatalf("SocketPath() = %q", got)
	}
}

func TestRuntimeDir_WithoutXDG(t *testing.T) {
	t.Setenv("HOSTENV_RUNTIME_DIR", "")
	t.Setenv("XDG_RUNTIME_DIR", "")

	got := RuntimeDir()
	if !strings.HasPrefix(filepath.Base(got), "hostenv") {
		t.Fatalf("RuntimeDir() = %q, want a hostenv directory", got)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("RuntimeDir() = %q is relative", got)
	}
}

func TestFirstDir(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	dir := filepath.Join(tmp, "dir")
	if err := os.Mkdir(dir, 0o700); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	if got := firstDir(filepath.Join(tmp, "missing"), file, dir, tmp); got != dir {
		t.Fatalf("firstDir = %q, want %q", got, dir)
	}
	if got := firstDir(file); got != "" {
		t.Fatalf("firstDir(file) = %q, want empty", got)
	}
	if got := firstDir(); got != "" {
		t.Fatalf("firstDir() = %q, want empty", got)
	}
}
