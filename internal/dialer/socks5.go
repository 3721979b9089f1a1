package dialer

import (
	"context"
	"fmt"
	"net"

	"github.com/txthinking/socks5"
)

// SOCKS5Dialer dials outbound TCP connections tunneled through a SOCKS5
// proxy, negotiating the tunnel to the final target as its first action.
type SOCKS5Dialer struct {
	cfg   Config
	proxy ProxyConfig
}

func NewSOCKS5Dialer(cfg Config, proxy ProxyConfig) Dialer {
	return &SOCKS5Dialer{cfg: cfg, proxy: proxy}
}

func (d *SOCKS5Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: %w", network, address, err)
	}
	if network != "tcp" {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: unsupported network", network, address)
	}

	// The socks5 client takes whole-second timeouts covering both TCP
	// connect and negotiation.
	timeout := d.cfg.DialTimeout
	if d.cfg.NegotiationTimeout > timeout {
		timeout = d.cfg.NegotiationTimeout
	}
	tcpTimeout := 0
	if timeout > 0 {
		tcpTimeout = int(timeout.Seconds())
		if tcpTimeout <= 0 {
			tcpTimeout = 1
		}
	}

	var user, pass string
	if d.proxy.Auth != nil {
		user = d.proxy.Auth.Username
		pass = d.proxy.Auth.Password
	}

	client, err := socks5.NewClient(d.proxy.Addr(), user, pass, tcpTimeout, 0)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy init: %w", err)
	}

	var src string
	if d.cfg.LocalAddr != nil {
		src = d.cfg.LocalAddr.String()
	}

	c, err := client.DialWithLocalAddr(network, src, address, nil)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy dial %s %s: %w", network, address, err)
	}
	return c, nil
}
