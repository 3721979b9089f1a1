package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/hollis-dev/gatelink/internal/dialer"
)

const (
	// DefaultProbeTarget is a public DNS resolver used only to confirm the
	// proxy can reach the outside world.
	DefaultProbeTarget  = "8.8.8.8:53"
	DefaultProbeTimeout = 5 * time.Second

	verifyQueryName = "example.com."
)

// ProbeOptions controls a single reachability probe.
type ProbeOptions struct {
	// Target is the host:port the probe tunnels to. Defaults to
	// DefaultProbeTarget.
	Target string

	// Timeout bounds the entire probe. Defaults to DefaultProbeTimeout.
	Timeout time.Duration

	// Verify requests one DNS query over the established tunnel. The
	// default probe only confirms the tunnel comes up; Verify additionally
	// proves the proxy relays application traffic. Requires a Target that
	// answers DNS over TCP.
	Verify bool
}

// Probe validates that the proxy described by pc can establish a tunnel to
// the probe target. The probe connection is closed before returning and is
// never reused; a probe neither reads nor writes session state.
//
// Failures are classified: ErrTimeout if the deadline elapsed, otherwise
// ErrProbeUnreachable.
func Probe(ctx context.Context, pc dialer.ProxyConfig, opts ProbeOptions) error {
	target := opts.Target
	if target == "" {
		target = DefaultProbeTarget
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	d, err := dialer.New(dialer.Config{DialTimeout: timeout, NegotiationTimeout: timeout}, &pc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: probe %s: %v", ErrTimeout, target, err)
		}
		return fmt.Errorf("%w: probe %s: %v", ErrProbeUnreachable, target, err)
	}
	defer conn.Close()

	if opts.Verify {
		if err := verifyDNS(conn, timeout); err != nil {
			if isTimeout(err) {
				return fmt.Errorf("%w: probe %s: %v", ErrTimeout, target, err)
			}
			return fmt.Errorf("%w: probe %s: %v", ErrProbeUnreachable, target, err)
		}
	}

	return nil
}

// verifyDNS sends one query over the established tunnel and requires a
// well-formed response. The probe target is a resolver, so any reply proves
// the proxy relays payload, not just TCP connects.
func verifyDNS(conn net.Conn, timeout time.Duration) error {
	_ = conn.SetDeadline(time.Now().Add(timeout))

	msg := new(dns.Msg)
	msg.SetQuestion(verifyQueryName, dns.TypeA)

	dc := &dns.Conn{Conn: conn}
	if err := dc.WriteMsg(msg); err != nil {
		return fmt.Errorf("probe query write: %w", err)
	}
	resp, err := dc.ReadMsg()
	if err != nil {
		return fmt.Errorf("probe query read: %w", err)
	}
	if resp.Id != msg.Id {
		return errors.New("probe query: mismatched response id")
	}
	return nil
}
