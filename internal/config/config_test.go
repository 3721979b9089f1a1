package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hollis-dev/gatelink/internal/dialer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gatelink.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
target = "mc.example.net:25565"
require_proxy = true

[proxy]
type = "socks5"
host = "proxy.example.com"
port = 1080
username = "user"
password = "secret"
`)

	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if f.Target != "mc.example.net:25565" {
		t.Fatalf("got target %q", f.Target)
	}
	if f.RequireProxy == nil || !*f.RequireProxy {
		t.Fatalf("got require_proxy %v", f.RequireProxy)
	}
	if f.Proxy == nil {
		t.Fatal("missing [proxy]")
	}

	pc, err := f.Proxy.ProxyConfig()
	if err != nil {
		t.Fatal(err)
	}
	if pc.Type != dialer.ProxySOCKS5 || pc.Addr() != "proxy.example.com:1080" {
		t.Fatalf("got %+v", *pc)
	}
	if pc.Auth == nil || pc.Auth.Username != "user" || pc.Auth.Password != "secret" {
		t.Fatalf("got auth %+v", pc.Auth)
	}
}

func TestLoadMinimal(t *testing.T) {
	t.Parallel()

	f, err := Load(writeConfig(t, `target = "mc.example.net:25565"`))
	if err != nil {
		t.Fatal(err)
	}
	if f.Proxy != nil || f.RequireProxy != nil {
		t.Fatalf("got %+v", f)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestProxyConfigRejectsUnknownType(t *testing.T) {
	t.Parallel()

	p := Proxy{Type: "ssh", Host: "proxy.example.com", Port: 22}
	if _, err := p.ProxyConfig(); err == nil {
		t.Fatal("expected error")
	}
}

func TestProxyConfigRejectsBadEndpoint(t *testing.T) {
	t.Parallel()

	p := Proxy{Type: "socks5", Host: "", Port: 1080}
	if _, err := p.ProxyConfig(); err == nil {
		t.Fatal("expected error")
	}
}
