package dialer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hollis-dev/gatelink/internal/testutil"
)

func proxyConfigFor(t *testing.T, ln net.Listener, typ ProxyType, auth *Auth) ProxyConfig {
	t.Helper()

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("unexpected listener addr type %T", ln.Addr())
	}
	return ProxyConfig{Host: "127.0.0.1", Port: addr.Port, Type: typ, Auth: auth}
}

func TestSOCKS5DialerDialSuccess(t *testing.T) {
	tests := []struct {
		name string
		auth *Auth
	}{
		{name: "no_auth"},
		{name: "user_pass", auth: &Auth{Username: "user", Password: "pass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			echoLn := testutil.StartEchoTCPServer(t, ctx)
			defer echoLn.Close()

			var user, pass string
			if tt.auth != nil {
				user, pass = tt.auth.Username, tt.auth.Password
			}
			upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
				_ = testutil.ServeSOCKS5Connect(ctx, c, user, pass)
			})

			d := NewSOCKS5Dialer(Config{DialTimeout: 2 * time.Second}, proxyConfigFor(t, upLn, ProxySOCKS5, tt.auth))

			conn, err := d.DialContext(ctx, "tcp", echoLn.Addr().String())
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()

			testutil.AssertEcho(t, conn, conn, []byte("hello"))

			waitUp()
		})
	}
}

func TestSOCKS5DialerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lc := net.ListenConfig{}
	upLn, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer upLn.Close()

	d := NewSOCKS5Dialer(Config{DialTimeout: 2 * time.Second}, proxyConfigFor(t, upLn, ProxySOCKS5, nil))

	if _, err := d.DialContext(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSOCKS5DialerTunnelRejected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartSingleAcceptServer(t, ctx, func(c net.Conn) {
		testutil.RejectSOCKS5Connect(c)
	})

	d := NewSOCKS5Dialer(Config{DialTimeout: 2 * time.Second}, proxyConfigFor(t, upLn, ProxySOCKS5, nil))

	if _, err := d.DialContext(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}

	waitUp()
}

func TestSOCKS5DialerUnsupportedNetwork(t *testing.T) {
	t.Parallel()

	d := NewSOCKS5Dialer(Config{}, ProxyConfig{Host: "127.0.0.1", Port: 1080, Type: ProxySOCKS5})
	if _, err := d.DialContext(context.Background(), "udp", "127.0.0.1:53"); err == nil {
		t.Fatal("expected error")
	}
}
