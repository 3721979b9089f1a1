package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hollis-dev/gatelink/internal/dialer"
)

// Manager owns the single active proxy session for the process.
//
// It is the only component permitted to mutate session state. State moves
// between Disconnected and Connected(config); the transition to Connected
// happens only after a successful reachability probe against that exact
// config, and publication is a single pointer swap under the lock so
// readers never observe a torn update.
type Manager struct {
	probe ProbeOptions
	group singleflight.Group

	mu     sync.RWMutex
	active *dialer.ProxyConfig
}

func NewManager(probe ProbeOptions) *Manager {
	return &Manager{probe: probe}
}

// Connect validates cfg, runs a reachability probe through it, and on
// success publishes it as the active routing state.
//
// A failed probe leaves the prior state untouched, whatever it was. A
// successful probe while already connected atomically replaces the previous
// config; there is no window with no session during a switch. Concurrent
// Connect calls for an identical config share one in-flight probe.
//
// Returns ErrInvalidConfig, ErrProbeUnreachable, or ErrTimeout.
func (m *Manager) Connect(ctx context.Context, cfg dialer.ProxyConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	_, err, _ := m.group.Do(probeKey(cfg), func() (any, error) {
		return nil, Probe(ctx, cfg, m.probe)
	})
	if err != nil {
		return err
	}

	c := cfg
	m.mu.Lock()
	m.active = &c
	m.mu.Unlock()
	return nil
}

// probeKey identifies a config for probe sharing. Credentials are part of
// the identity: a caller may only join an in-flight probe for the exact
// config it is about to publish.
func probeKey(cfg dialer.ProxyConfig) string {
	if cfg.Auth != nil {
		return string(cfg.Type) + "://" + cfg.Auth.Username + ":" + cfg.Auth.Password + "@" + cfg.Addr()
	}
	return string(cfg.Type) + "://" + cfg.Addr()
}

// Disconnect clears the active config and its credentials. It is
// idempotent; disconnecting while disconnected is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
}

// IsConnected reports whether a proxy session is active.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active != nil
}

// ActiveConfig returns a copy of the published config, or nil when
// disconnected. The copy is a consistent snapshot; later transitions do not
// affect it.
func (m *Manager) ActiveConfig() *dialer.ProxyConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil
	}
	c := *m.active
	return &c
}

// Dialer returns a connection factory bound to the currently published
// routing state: tunneled through the active proxy when connected, direct
// otherwise.
func (m *Manager) Dialer(cfg dialer.Config) (dialer.Dialer, error) {
	return dialer.New(cfg, m.ActiveConfig())
}

// Status returns a human-readable session status.
func (m *Manager) Status() string {
	return StatusFor(m.ActiveConfig())
}

// StatusFor renders the status string for a routing snapshot, so callers
// holding a snapshot can report it without re-reading manager state.
func StatusFor(pc *dialer.ProxyConfig) string {
	if pc != nil {
		return "Connected to " + pc.Addr()
	}
	return "Disconnected"
}
