package ftp

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
)

// tlsWrapper wraps an authenticated TLS session over a TCP connection. Its
// only reason to exist separately from *tls.Conn is the one-shot detached
// flag: once CCC has moved the raw TCP connection out from under it, the
// wrapper must not attempt a close-notify on a socket it no longer
// exclusively owns.
type tlsWrapper struct {
	conn     *tls.Conn
	detached bool
	logger   *slog.Logger
}

func newTLSWrapper(conn *tls.Conn, logger *slog.Logger) *tlsWrapper {
	return &tlsWrapper{conn: conn, logger: logger}
}

// detach marks the wrapper as no longer owning the underlying socket. Called
// once, by CCC, before the transport drops back to the raw TCP connection.
func (w *tlsWrapper) detach() { w.detached = true }

// release performs the scoped teardown: a best-effort close-notify unless
// the wrapper has been detached, in which case no close-notify is
// attempted because the socket may already be in use elsewhere.
func (w *tlsWrapper) release() error {
	if w.detached {
		return nil
	}
	if err := w.conn.Close(); err != nil {
		if w.logger != nil {
			w.logger.Debug("tls close-notify failed", "error", err)
		}
		return err
	}
	return nil
}

// transport is the polymorphic byte stream the rest of the engine talks to:
// a raw TCP connection, optionally wrapped in TLS. tlsConfig is monotonic —
// once AUTH TLS succeeds it stays set for the engine's lifetime so every
// later data connection is wrapped, even after a CCC downgrade detaches the
// control stream's own TLS session.
type transport struct {
	conn      net.Conn
	tls       *tlsWrapper
	tlsConfig *tls.Config
	logger    *slog.Logger
}

func newTransport(conn net.Conn, logger *slog.Logger) *transport {
	return &transport{conn: conn, logger: logger}
}

// activeConn returns the stream operations should read/write: the TLS
// session if one is attached, otherwise the raw TCP connection.
func (t *transport) activeConn() net.Conn {
	if t.tls != nil {
		return t.tls.conn
	}
	return t.conn
}

func (t *transport) Read(p []byte) (int, error)  { return t.activeConn().Read(p) }
func (t *transport) Write(p []byte) (int, error) { return t.activeConn().Write(p) }

// TCPConn returns the underlying TCP connection, bypassing any TLS layer —
// used for socket-option access and for extracting the local address
// during active-mode PORT setup.
func (t *transport) TCPConn() net.Conn { return t.conn }

// IsSecure reports whether the control stream currently has TLS attached.
func (t *transport) IsSecure() bool { return t.tls != nil }

// HasTLSContext reports whether AUTH TLS has ever succeeded on this engine,
// independent of whether CCC has since detached the control stream's own
// session — this is what governs whether new data connections get wrapped.
func (t *transport) HasTLSContext() bool { return t.tlsConfig != nil }

// upgrade performs the TLS handshake for AUTH TLS (or the implicit-TLS
// dial path) and attaches the resulting session. The config is retained as
// the engine's monotonic tls_ctx for subsequent data-channel connections.
func (t *transport) upgrade(ctx context.Context, cfg *tls.Config) error {
	tlsConn := tls.Client(t.conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return &SecureError{Op: "tls handshake", Err: err}
	}
	t.tls = newTLSWrapper(tlsConn, t.logger)
	t.tlsConfig = cfg
	return nil
}

// wrapDataConn wraps a freshly connected/accepted data-channel TCP stream in
// TLS using the engine's monotonic tls_ctx, per §4.1. The ServerName fixed
// at upgrade time is kept; serverName is used only when that config has
// none. Returns the raw connection unchanged if no TLS context has ever
// been established.
func (t *transport) wrapDataConn(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	if t.tlsConfig == nil {
		return conn, nil
	}
	cfg := t.tlsConfig.Clone()
	if cfg.ServerName == "" && serverName != "" {
		cfg.ServerName = serverName
	}
	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, &SecureError{Op: "data channel tls handshake", Err: err}
	}
	return tlsConn, nil
}

// detachTLS implements the CCC (clear command channel) downgrade: the
// control stream drops back to plain TCP, but tls_ctx remains set so later
// data connections are still wrapped, per RFC 4217.
func (t *transport) detachTLS() {
	if t.tls != nil {
		t.tls.detach()
		t.tls = nil
	}
}

// Release closes the active stream: a best-effort TLS close-notify when
// still attached, otherwise a plain TCP close.
func (t *transport) Release() error {
	if t.tls != nil {
		werr := t.tls.release()
		cerr := t.conn.Close()
		if werr != nil {
			return werr
		}
		return cerr
	}
	return t.conn.Close()
}
