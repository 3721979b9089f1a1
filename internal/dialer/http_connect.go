package dialer

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPConnectDialer dials outbound TCP connections via an HTTP or HTTPS
// proxy using the HTTP CONNECT method.
type HTTPConnectDialer struct {
	cfg    Config
	proxy  ProxyConfig
	auth   string
	direct Dialer
}

// NewHTTPConnectDialer constructs a CONNECT dialer for proxy.
//
// If credentials are present, Proxy-Authorization is set using HTTP Basic
// auth. For ProxyHTTPS a TLS handshake to the proxy precedes CONNECT.
func NewHTTPConnectDialer(cfg Config, proxy ProxyConfig) Dialer {
	auth := ""
	if proxy.Auth != nil {
		auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(proxy.Auth.Username+":"+proxy.Auth.Password))
	}

	return &HTTPConnectDialer{
		cfg:    cfg,
		proxy:  proxy,
		auth:   auth,
		direct: NewDirectDialer(cfg),
	}
}

// DialContext establishes a TCP connection to address via the configured
// proxy, returned as a net.Conn.
//
// CONNECT negotiation is performed synchronously before returning. If
// NegotiationTimeout is set, a deadline is applied during TLS and CONNECT
// negotiation and cleared before returning.
func (d *HTTPConnectDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("http proxy dial %s %s: unsupported network", network, address)
	}

	c, err := d.direct.DialContext(ctx, network, d.proxy.Addr())
	if err != nil {
		return nil, fmt.Errorf("http proxy: %w", err)
	}

	if d.proxy.Type == ProxyHTTPS {
		tlsConn := tls.Client(c, &tls.Config{MinVersion: tls.VersionTLS12, ServerName: d.proxy.Host})
		if d.cfg.NegotiationTimeout > 0 {
			_ = tlsConn.SetDeadline(time.Now().Add(d.cfg.NegotiationTimeout))
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = tlsConn.Close()
			return nil, fmt.Errorf("http proxy connect tls handshake: %w", err)
		}
		c = tlsConn
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: address},
		Host:   address,
		Header: make(http.Header),
	}
	if d.auth != "" {
		req.Header.Set("Proxy-Authorization", d.auth)
	}

	if d.cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Now().Add(d.cfg.NegotiationTimeout))
	}

	if err := req.Write(c); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("http proxy connect write: %w", err)
	}

	br := bufio.NewReader(c)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("http proxy connect read: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		_ = c.Close()
		return nil, fmt.Errorf("http proxy connect failed: %s", resp.Status)
	}

	if d.cfg.NegotiationTimeout > 0 {
		_ = c.SetDeadline(time.Time{})
	}
	// Tunnel bytes the proxy flushed in the same segment as the response
	// are sitting in br; hand them back before reading the socket.
	if br.Buffered() > 0 {
		c = &bufferedConn{r: br, Conn: c}
	}
	return c, nil
}

type bufferedConn struct {
	r *bufio.Reader
	net.Conn
}

func (b *bufferedConn) Read(p []byte) (int, error) {
	return b.r.Read(p)
}
