package dialer

// Package dialer provides outbound dialing implementations used by gatelink.
//
// Dialers implement a small interface (DialContext) and establish outbound
// connections either directly or tunneled through a forwarding proxy (SOCKS5
// or HTTP/HTTPS CONNECT). The proxy is described by an explicit ProxyConfig
// passed to New; dialers never consult ambient process-wide proxy state.
