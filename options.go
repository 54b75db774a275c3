package ftp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithTimeout sets the timeout applied to the initial connection and to
// every subsequent control/data read or write.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

// WithIdleTimeout sets the maximum idle time before the keep-alive
// goroutine sends a NOOP. Zero (the default) disables automatic keep-alive.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.idleTimeout = timeout
		return nil
	}
}

// tlsMode selects how (or whether) the control connection is secured.
type tlsMode int

const (
	tlsModeNone tlsMode = iota
	tlsModeExplicit
	tlsModeImplicit
)

// WithExplicitTLS enables RFC 4217 explicit FTPS: the client connects in
// plaintext and upgrades via AUTH TLS/PBSZ/PROT immediately after the
// greeting.
func WithExplicitTLS(config *tls.Config) Option {
	return func(c *Client) error {
		if c.tlsMode == tlsModeImplicit {
			return fmt.Errorf("explicit TLS cannot be combined with implicit TLS")
		}
		c.tlsConfig = withSessionCache(config)
		c.tlsMode = tlsModeExplicit
		return nil
	}
}

// WithImplicitTLS enables implicit FTPS: the control connection is TLS from
// the first byte, typically on port 990.
func WithImplicitTLS(config *tls.Config) Option {
	return func(c *Client) error {
		if c.tlsMode == tlsModeExplicit {
			return fmt.Errorf("implicit TLS cannot be combined with explicit TLS")
		}
		c.tlsConfig = withSessionCache(config)
		c.tlsMode = tlsModeImplicit
		return nil
	}
}

func withSessionCache(config *tls.Config) *tls.Config {
	if config == nil {
		config = &tls.Config{}
	}
	if config.ClientSessionCache == nil {
		config.ClientSessionCache = tls.NewLRUClientSessionCache(0)
	}
	return config
}

// WithLogger enables structured debug logging of every command, response,
// and data-channel transition.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithDialer sets a custom net.Dialer for the control connection, e.g. to
// bind a source address or tune keep-alive settings.
func WithDialer(dialer *net.Dialer) Option {
	return func(c *Client) error {
		c.dialer = dialer
		return nil
	}
}

// WithActiveMode selects active mode (PORT): the client listens and
// the server connects back to open each data channel. The default is
// passive mode.
func WithActiveMode() Option {
	return func(c *Client) error {
		c.mode = ModeActive
		return nil
	}
}

// WithDisableEPSV forces PASV even when the server advertises EPSV support.
// Useful for servers whose EPSV implementation is broken.
func WithDisableEPSV() Option {
	return func(c *Client) error {
		c.disableEPSV = true
		return nil
	}
}

// WithBandwidthLimit caps the throughput of every Store/Retrieve/Append
// data stream to bytesPerSecond, via a token-bucket limiter. Without this
// option there is no throttling (the default); a zero or negative
// bytesPerSecond is rejected with an error.
func WithBandwidthLimit(bytesPerSecond int) Option {
	return func(c *Client) error {
		if bytesPerSecond <= 0 {
			return fmt.Errorf("bandwidth limit must be positive")
		}
		c.bandwidthLimit = rate.Limit(bytesPerSecond)
		c.bandwidthBurst = bytesPerSecond
		return nil
	}
}

// WithSOCKS5Proxy routes the control connection through a SOCKS5 proxy at
// addr, optionally authenticating with auth.
func WithSOCKS5Proxy(addr string, auth *proxy.Auth) Option {
	return func(c *Client) error {
		dialer, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to configure SOCKS5 proxy: %w", err)
		}
		c.proxyDialer = dialer
		return nil
	}
}
