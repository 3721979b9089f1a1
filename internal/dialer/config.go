package dialer

import (
	"net"
	"time"
)

type Config struct {
	// DialTimeout bounds DNS lookup and TCP connect for each dial.
	DialTimeout time.Duration

	// NegotiationTimeout bounds the tunnel handshake (SOCKS5 negotiation,
	// TLS to an HTTPS proxy, CONNECT exchange) after the transport is up.
	NegotiationTimeout time.Duration

	// LocalAddr, if non-nil, is bound as the local endpoint before the
	// remote handshake is initiated.
	LocalAddr *net.TCPAddr

	KeepAlive net.KeepAliveConfig
}
