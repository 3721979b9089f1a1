package testutil

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"

	"github.com/txthinking/socks5"
)

// ServeSOCKS5Connect speaks the server side of a single SOCKS5 CONNECT on c,
// relaying to the requested target. With non-empty user/pass it requires
// RFC 1929 username/password auth.
func ServeSOCKS5Connect(ctx context.Context, c net.Conn, user, pass string) error {
	if _, err := socks5.NewNegotiationRequestFrom(c); err != nil {
		return err
	}

	if user == "" && pass == "" {
		if _, err := socks5.NewNegotiationReply(socks5.MethodNone).WriteTo(c); err != nil {
			return err
		}
	} else {
		if _, err := socks5.NewNegotiationReply(socks5.MethodUsernamePassword).WriteTo(c); err != nil {
			return err
		}

		urq, err := socks5.NewUserPassNegotiationRequestFrom(c)
		if err != nil {
			return err
		}
		if string(urq.Uname) != user || string(urq.Passwd) != pass {
			_, _ = socks5.NewUserPassNegotiationReply(socks5.UserPassStatusFailure).WriteTo(c)
			return nil
		}
		if _, err := socks5.NewUserPassNegotiationReply(socks5.UserPassStatusSuccess).WriteTo(c); err != nil {
			return err
		}
	}

	req, err := socks5.NewRequestFrom(c)
	if err != nil {
		return err
	}
	if req.Cmd != socks5.CmdConnect {
		_, _ = socks5.NewReply(socks5.RepCommandNotSupported, socks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00}).WriteTo(c)
		return nil
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", req.Address())
	if err != nil {
		_, _ = socks5.NewReply(socks5.RepHostUnreachable, socks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00}).WriteTo(c)
		return nil
	}
	defer dst.Close()

	a, addr, port, err := socks5.ParseAddress(dst.LocalAddr().String())
	if err != nil {
		return err
	}
	if a == socks5.ATYPDomain {
		addr = addr[1:]
	}
	if _, err := socks5.NewReply(socks5.RepSuccess, a, addr, port).WriteTo(c); err != nil {
		return err
	}

	go func() {
		_, _ = io.Copy(dst, c)
		_ = dst.Close()
	}()
	_, _ = io.Copy(c, dst)

	return nil
}

// RejectSOCKS5Connect negotiates no-auth and refuses the CONNECT request.
func RejectSOCKS5Connect(c net.Conn) {
	if _, err := socks5.NewNegotiationRequestFrom(c); err != nil {
		return
	}
	if _, err := socks5.NewNegotiationReply(socks5.MethodNone).WriteTo(c); err != nil {
		return
	}
	req, err := socks5.NewRequestFrom(c)
	if err != nil {
		return
	}
	if req.Cmd != socks5.CmdConnect {
		return
	}
	_, _ = socks5.NewReply(socks5.RepConnectionRefused, socks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00}).WriteTo(c)
}

// ServeHTTPConnect speaks the server side of a single HTTP CONNECT on c,
// relaying to the requested target. With non-empty wantAuth, the request must
// carry a matching Proxy-Authorization header.
func ServeHTTPConnect(c net.Conn, wantAuth string) {
	br := bufio.NewReader(c)
	req, err := http.ReadRequest(br)
	if err != nil {
		return
	}
	defer req.Body.Close()

	if req.Method != http.MethodConnect {
		_, _ = io.WriteString(c, "HTTP/1.1 405 Method Not Allowed\r\n\r\n")
		return
	}
	if wantAuth != "" && req.Header.Get("Proxy-Authorization") != wantAuth {
		_, _ = io.WriteString(c, "HTTP/1.1 407 Proxy Authentication Required\r\n\r\n")
		return
	}

	dst, err := net.Dial("tcp", req.Host)
	if err != nil {
		_, _ = io.WriteString(c, "HTTP/1.1 502 Bad Gateway\r\n\r\n")
		return
	}
	defer dst.Close()

	_, _ = io.WriteString(c, "HTTP/1.1 200 Connection Established\r\n\r\n")

	go func() {
		_, _ = io.Copy(dst, br)
		_ = dst.Close()
	}()
	_, _ = io.Copy(c, dst)
}
