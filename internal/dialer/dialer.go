package dialer

import (
	"context"
	"fmt"
	"net"
)

// Dialer mirrors the net.Dialer interface.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// New constructs the outbound Dialer for pc.
//
// A nil pc yields a direct dialer; otherwise the dialer tunnels every
// connection through the described proxy. The returned dialer holds no
// mutable state and may be used concurrently.
func New(cfg Config, pc *ProxyConfig) (Dialer, error) {
	if pc == nil {
		return NewDirectDialer(cfg), nil
	}

	if err := pc.Validate(); err != nil {
		return nil, err
	}

	switch pc.Type {
	case ProxySOCKS5:
		return NewSOCKS5Dialer(cfg, *pc), nil
	case ProxyHTTP, ProxyHTTPS:
		return NewHTTPConnectDialer(cfg, *pc), nil
	default:
		return nil, fmt.Errorf("unsupported proxy type: %q", pc.Type)
	}
}
