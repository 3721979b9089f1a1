package session

// Package session owns the proxy session lifecycle.
//
// Manager is the single writer of session state: Connect validates a
// ProxyConfig, probes the proxy for reachability, and only then publishes it
// as the active routing state; Disconnect clears it. Connection factories
// handed out by Manager.Dialer read a consistent snapshot of that state and
// never mutate it.
//
// Failures surface as one of four error kinds (ErrInvalidConfig,
// ErrProbeUnreachable, ErrConnectFailed, ErrTimeout) so callers can
// distinguish configuration mistakes from transient reachability problems
// with errors.Is rather than string inspection.
