// Package config loads the optional TOML configuration file consumed by the
// gatelink entry point. Flags override file values; the file only provides
// defaults.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/hollis-dev/gatelink/internal/dialer"
)

// File is the on-disk configuration.
//
//	target = "mc.example.net:25565"
//	require_proxy = true
//
//	[proxy]
//	type = "socks5"
//	host = "proxy.example.com"
//	port = 1080
//	username = "user"
//	password = "secret"
type File struct {
	Target       string `toml:"target"`
	RequireProxy *bool  `toml:"require_proxy"`
	Proxy        *Proxy `toml:"proxy"`
}

// Proxy mirrors dialer.ProxyConfig in TOML form.
type Proxy struct {
	Type     string `toml:"type"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return f, nil
}

// ProxyConfig converts the TOML proxy table to a validated dialer config.
func (p *Proxy) ProxyConfig() (*dialer.ProxyConfig, error) {
	var typ dialer.ProxyType
	switch p.Type {
	case "socks5":
		typ = dialer.ProxySOCKS5
	case "http":
		typ = dialer.ProxyHTTP
	case "https":
		typ = dialer.ProxyHTTPS
	default:
		return nil, fmt.Errorf("unsupported proxy type: %q", p.Type)
	}

	var auth *dialer.Auth
	if p.Username != "" || p.Password != "" {
		auth = &dialer.Auth{Username: p.Username, Password: p.Password}
	}

	pc := &dialer.ProxyConfig{Host: p.Host, Port: p.Port, Type: typ, Auth: auth}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}
