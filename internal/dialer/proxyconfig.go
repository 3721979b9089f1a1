package dialer

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
)

// ProxyType selects the tunneling protocol spoken toward the proxy.
type ProxyType string

const (
	ProxySOCKS5 ProxyType = "socks5"
	ProxyHTTP   ProxyType = "http"
	ProxyHTTPS  ProxyType = "https"
)

// Auth holds optional proxy credentials.
type Auth struct {
	Username string
	Password string
}

// ProxyConfig describes a forwarding proxy endpoint. It is treated as
// immutable once constructed; callers that need to change routing build a
// new value.
type ProxyConfig struct {
	Host string
	Port int
	Type ProxyType
	Auth *Auth
}

// Validate checks the config for structural problems. It performs no I/O.
func (p ProxyConfig) Validate() error {
	if p.Host == "" {
		return errors.New("empty proxy host")
	}
	if !govalidator.IsIP(p.Host) && !govalidator.IsDNSName(p.Host) {
		return fmt.Errorf("invalid proxy host: %q", p.Host)
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("proxy port out of range: %d", p.Port)
	}
	switch p.Type {
	case ProxySOCKS5, ProxyHTTP, ProxyHTTPS:
	default:
		return fmt.Errorf("unsupported proxy type: %q", p.Type)
	}
	return nil
}

// Addr returns the proxy endpoint in host:port form.
func (p ProxyConfig) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ParseProxyURL parses a proxy description of the form
// socks5://[user:pass@]host:port, http://[user:pass@]host:port, or
// https://[user:pass@]host:port. A missing port defaults to the port
// customary for the scheme.
func ParseProxyURL(raw string) (*ProxyConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}

	if u.Path != "" && u.Path != "/" {
		return nil, errors.New("invalid proxy url: path should be empty")
	}

	var typ ProxyType
	switch strings.ToLower(u.Scheme) {
	case "":
		return nil, errors.New("invalid proxy url: missing scheme")
	case "socks5":
		typ = ProxySOCKS5
	case "http":
		typ = ProxyHTTP
	case "https":
		typ = ProxyHTTPS
	default:
		return nil, fmt.Errorf("invalid proxy url scheme: %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, errors.New("invalid proxy url: missing host")
	}

	port := defaultPortForType(typ)
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url port: %q", p)
		}
	}

	var auth *Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &Auth{Username: u.User.Username(), Password: pass}
	}

	pc := &ProxyConfig{Host: host, Port: port, Type: typ, Auth: auth}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return pc, nil
}

func defaultPortForType(typ ProxyType) int {
	switch typ {
	case ProxySOCKS5:
		return 1080
	case ProxyHTTP:
		return 80
	case ProxyHTTPS:
		return 443
	default:
		return 0
	}
}
