package session

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds returned by the session and connection layers.
var (
	// ErrInvalidConfig means the proxy config is structurally malformed.
	// It is returned before any I/O takes place.
	ErrInvalidConfig = errors.New("invalid proxy config")

	// ErrProbeUnreachable means the reachability probe could not establish
	// a tunnel through the proxy.
	ErrProbeUnreachable = errors.New("proxy unreachable")

	// ErrConnectFailed means connection establishment was rejected by the
	// proxy or the target.
	ErrConnectFailed = errors.New("connect failed")

	// ErrTimeout means a probe or connect deadline elapsed.
	ErrTimeout = errors.New("connect timeout")
)

// Classify wraps a transport error with the error kind it represents.
// Errors already carrying a kind pass through unchanged; deadline and
// net timeout errors become ErrTimeout, everything else ErrConnectFailed.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrProbeUnreachable),
		errors.Is(err, ErrConnectFailed),
		errors.Is(err, ErrTimeout):
		return err
	case isTimeout(err):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
