// Command gatelink establishes a proxy session and connects to one target
// server through it, illustrating the session/factory contract end to end.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hollis-dev/gatelink/internal/client"
	"github.com/hollis-dev/gatelink/internal/config"
	"github.com/hollis-dev/gatelink/internal/dialer"
	"github.com/hollis-dev/gatelink/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		proxyURL     = pflag.String("proxy", "", "Proxy URL: socks5://[user:pass@]host:port | http://[user:pass@]host:port | https://[user:pass@]host:port. Empty for no proxy session.")
		target       = pflag.String("target", "", "Target server host:port")
		requireProxy = pflag.Bool("require-proxy", true, "Refuse to dial the target unless a proxy session is active")
		configPath   = pflag.String("config", "", "Optional TOML config file; flags override its values")

		dialTimeout  = pflag.Duration("dial-timeout", 10*time.Second, "Timeout for target connection establishment")
		probeTimeout = pflag.Duration("probe-timeout", session.DefaultProbeTimeout, "Timeout for the proxy reachability probe")
		probeTarget  = pflag.String("probe-target", session.DefaultProbeTarget, "host:port the reachability probe tunnels to")
		probeVerify  = pflag.Bool("probe-verify", false, "Send a DNS query through the probe tunnel to verify the proxy relays traffic")
		verbose      = pflag.Bool("verbose", false, "Enable debug logging")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()

	var proxyCfg *dialer.ProxyConfig
	if *proxyURL != "" {
		pc, err := dialer.ParseProxyURL(*proxyURL)
		if err != nil {
			return fmt.Errorf("invalid --proxy: %w", err)
		}
		proxyCfg = pc
	}

	if *configPath != "" {
		f, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		if *target == "" {
			*target = f.Target
		}
		if f.RequireProxy != nil && !pflag.CommandLine.Changed("require-proxy") {
			*requireProxy = *f.RequireProxy
		}
		if proxyCfg == nil && f.Proxy != nil {
			proxyCfg, err = f.Proxy.ProxyConfig()
			if err != nil {
				return fmt.Errorf("invalid [proxy] in %s: %w", *configPath, err)
			}
		}
	}

	if *target == "" {
		return errors.New("no target set (use --target or a config file)")
	}
	host, portStr, err := net.SplitHostPort(*target)
	if err != nil {
		return fmt.Errorf("invalid --target: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid --target port: %q", portStr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := session.NewManager(session.ProbeOptions{
		Target:  *probeTarget,
		Timeout: *probeTimeout,
		Verify:  *probeVerify,
	})

	if proxyCfg != nil {
		if err := mgr.Connect(ctx, *proxyCfg); err != nil {
			return fmt.Errorf("proxy connect: %w", err)
		}
		logger.Info("proxy session established", zap.String("status", mgr.Status()))
		defer func() {
			mgr.Disconnect()
			logger.Info("proxy session closed", zap.String("status", mgr.Status()))
		}()
	}

	// Downstream protocol glue: the handler owns the connection. This demo
	// only announces the hand-off and closes it.
	handler := func(conn net.Conn) error {
		logger.Info("handing connection to protocol layer",
			zap.String("remote", conn.RemoteAddr().String()))
		return conn.Close()
	}

	cl := client.New(mgr, dialer.Config{
		DialTimeout:        *dialTimeout,
		NegotiationTimeout: *dialTimeout,
	}, handler, logger)

	rep := cl.ConnectToServer(ctx, host, port, *requireProxy)
	switch rep.Outcome {
	case client.OutcomeConnected:
		logger.Info("done", zap.String("target", rep.Target), zap.String("session", rep.SessionStatus))
	case client.OutcomeProxyRequired:
		logger.Warn("proxy session not active; connect to a proxy first",
			zap.String("target", rep.Target))
	case client.OutcomeFailed:
		logger.Error("target connect failed", zap.String("target", rep.Target), zap.Error(rep.Err))
	}

	return nil
}

func newLogger(verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stderr), level)
	return zap.New(core)
}
