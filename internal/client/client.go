package client

import (
	"context"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/hollis-dev/gatelink/internal/dialer"
	"github.com/hollis-dev/gatelink/internal/session"
)

// Outcome of a ConnectToServer attempt.
type Outcome string

const (
	// OutcomeConnected means the target connection was established and
	// handed to the downstream handler.
	OutcomeConnected Outcome = "connected"

	// OutcomeProxyRequired means the attempt was refused because a proxy
	// session was required but none is active. No dial was performed; this
	// is a precondition outcome, not an error.
	OutcomeProxyRequired Outcome = "proxy required"

	// OutcomeFailed means the dial or tunnel establishment failed.
	OutcomeFailed Outcome = "failed"
)

// Report describes the result of one connection attempt.
type Report struct {
	Outcome Outcome
	Target  string

	// SessionStatus is the proxy session status at the time of the attempt.
	SessionStatus string

	// Err carries the classified failure for OutcomeFailed, nil otherwise.
	Err error
}

// Handler receives an established connection and owns it from then on,
// including closing it.
type Handler func(net.Conn) error

// Client gates target connections on the proxy session and routes them
// through whatever the session manager currently publishes.
type Client struct {
	sessions *session.Manager
	dialCfg  dialer.Config
	handler  Handler
	log      *zap.Logger
}

func New(sessions *session.Manager, dialCfg dialer.Config, handler Handler, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{sessions: sessions, dialCfg: dialCfg, handler: handler, log: log}
}

// ConnectToServer attempts a connection to host:port.
//
// When requireProxy is set and no proxy session is active, the attempt is
// refused before any dial. Otherwise the connection is made through the
// currently published routing state (tunneled when a session is active,
// direct when not) and handed to the handler on success. Failures are
// logged and returned in the Report; they are not raised further.
func (c *Client) ConnectToServer(ctx context.Context, host string, port int, requireProxy bool) Report {
	target := net.JoinHostPort(host, strconv.Itoa(port))

	// One routing snapshot drives the whole attempt; a concurrent session
	// transition cannot split the gate check from the dial.
	active := c.sessions.ActiveConfig()
	r := Report{Target: target, SessionStatus: session.StatusFor(active)}

	if requireProxy && active == nil {
		r.Outcome = OutcomeProxyRequired
		c.log.Warn("proxy session required but not active; refusing to dial",
			zap.String("target", target))
		return r
	}

	d, err := dialer.New(c.dialCfg, active)
	if err != nil {
		r.Outcome = OutcomeFailed
		r.Err = session.Classify(err)
		c.log.Error("building dialer failed", zap.String("target", target), zap.Error(r.Err))
		return r
	}

	dctx := ctx
	if c.dialCfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, c.dialCfg.DialTimeout)
		defer cancel()
	}

	conn, err := d.DialContext(dctx, "tcp", target)
	if err != nil {
		r.Outcome = OutcomeFailed
		r.Err = session.Classify(err)
		c.log.Error("connect failed",
			zap.String("target", target),
			zap.String("session", r.SessionStatus),
			zap.Error(r.Err))
		return r
	}

	r.Outcome = OutcomeConnected
	c.log.Info("connected to server",
		zap.String("target", target),
		zap.String("session", r.SessionStatus))

	if c.handler == nil {
		_ = conn.Close()
		return r
	}
	if err := c.handler(conn); err != nil {
		c.log.Warn("downstream handler", zap.String("target", target), zap.Error(err))
	}
	return r
}
