package testutil

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
)

// EchoHandler reads once from c and writes the same bytes back. Connections
// that close without writing are ignored.
func EchoHandler(c net.Conn) {
	buf := make([]byte, 1024)
	n, err := c.Read(buf)
	if err != nil {
		return
	}
	_, _ = c.Write(buf[:n])
}

// StartEchoTCPServer listens on loopback and echoes the first read back on
// every accepted connection until the listener is closed.
func StartEchoTCPServer(t *testing.T, ctx context.Context) net.Listener {
	t.Helper()

	return StartAcceptLoopServer(t, ctx, EchoHandler)
}

// AssertEcho writes msg to w and expects to read it back from r.
func AssertEcho(t *testing.T, w io.Writer, r io.Reader, msg []byte) {
	t.Helper()

	if _, err := w.Write(msg); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, len(msg))
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, msg) {
		t.Fatalf("expected %q got %q", string(msg), string(buf))
	}
}
