package ftp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// Client is a single control connection to an FTP server. It owns exactly
// one control channel and, at most, one outstanding data stream at a time —
// callers must finalize or abort a data stream before starting another.
type Client struct {
	transport *transport
	reply     *replyReader

	dialer      *net.Dialer
	proxyDialer proxy.Dialer
	tlsConfig   *tls.Config
	tlsMode     tlsMode

	timeout     time.Duration
	idleTimeout time.Duration
	logger      *slog.Logger

	host string
	port string

	mode        Mode
	disableEPSV bool

	bandwidthLimit rate.Limit
	bandwidthBurst int

	currentType FileType
	welcomeMsg  string
	features    map[string]string

	dataOutstanding bool

	mu          sync.Mutex
	lastCommand time.Time
	quitChan    chan struct{}
}

// Dial opens a control connection to addr ("host:port") and completes the
// greeting (and, for explicit TLS, the AUTH TLS upgrade). It does not log
// in — call Login afterward.
func Dial(addr string, options ...Option) (*Client, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, &InvalidAddressError{Input: addr, Err: err}
	}

	c := &Client{
		host:    host,
		port:    port,
		timeout: 30 * time.Second,
		tlsMode: tlsModeNone,
		dialer:  &net.Dialer{},
		logger:  slog.New(slog.NewTextHandler(noopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1})),
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("ftp: applying option: %w", err)
		}
	}
	c.dialer.Timeout = c.timeout

	if err := c.connect(context.Background()); err != nil {
		return nil, err
	}

	c.lastCommand = time.Now()
	c.startKeepAlive()

	return c, nil
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Connect opens a control connection from a URL of the form
// scheme://[user:password@]host[:port][/path], logs in, and changes into
// the URL's path. Supported schemes: ftp, ftps (implicit TLS), ftpes
// (explicit TLS).
func Connect(rawURL string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &InvalidAddressError{Input: rawURL, Err: err}
	}

	host := u.Hostname()
	port := u.Port()
	var options []Option

	switch strings.ToLower(u.Scheme) {
	case "ftp":
		if port == "" {
			port = "21"
		}
	case "ftps":
		if port == "" {
			port = "990"
		}
		options = append(options, WithImplicitTLS(&tls.Config{ServerName: host}))
	case "ftpes":
		if port == "" {
			port = "21"
		}
		options = append(options, WithExplicitTLS(&tls.Config{ServerName: host}))
	default:
		return nil, fmt.Errorf("ftp: unsupported scheme %q", u.Scheme)
	}

	c, err := Dial(net.JoinHostPort(host, port), options...)
	if err != nil {
		return nil, err
	}

	user := u.User.Username()
	pass, hasPass := u.User.Password()
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	} else if !hasPass {
		pass = ""
	}

	if err := c.Login(user, pass); err != nil {
		c.Quit()
		return nil, err
	}
	if u.Path != "" && u.Path != "/" {
		if err := c.Cwd(u.Path); err != nil {
			c.Quit()
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) dial(ctx context.Context, addr string) (net.Conn, error) {
	if c.proxyDialer != nil {
		if cd, ok := c.proxyDialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, "tcp", addr)
		}
		return c.proxyDialer.Dial("tcp", addr)
	}
	return c.dialer.DialContext(ctx, "tcp", addr)
}

// connect performs the TCP (or implicit-TLS) dial and consumes the 220
// greeting, upgrading via AUTH TLS immediately afterward when explicit TLS
// was configured.
func (c *Client) connect(ctx context.Context) error {
	addr := net.JoinHostPort(c.host, c.port)
	c.logger.Debug("connecting", "addr", addr, "tls_mode", c.tlsMode)

	conn, err := c.dial(ctx, addr)
	if err != nil {
		return &ConnectionError{Op: "dial", Err: err}
	}

	c.transport = newTransport(conn, c.logger)

	if c.tlsMode == tlsModeImplicit {
		if err := c.transport.upgrade(ctx, c.tlsConfig); err != nil {
			conn.Close()
			return err
		}
	}

	c.reply = newReplyReader(c.transport)

	resp, err := c.reply.read(Ready)
	if err != nil {
		c.transport.Release()
		return err
	}
	c.welcomeMsg = resp.Body.String()
	c.logger.Debug("greeting", "message", c.welcomeMsg)

	if c.tlsMode == tlsModeExplicit {
		if err := c.IntoSecure(ctx, c.host); err != nil {
			c.transport.Release()
			return err
		}
	}
	return nil
}

// IntoSecure performs the explicit-TLS upgrade sequence: AUTH TLS, the TLS
// handshake, PBSZ 0, PROT P. serverName overrides the configured
// tls.Config's ServerName for certificate validation.
func (c *Client) IntoSecure(ctx context.Context, serverName string) error {
	if _, err := c.sendExpect(CmdAuth(), AuthOk); err != nil {
		return err
	}

	cfg := c.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{}
	}
	cfg = cfg.Clone()
	if serverName != "" {
		cfg.ServerName = serverName
	}

	if err := c.transport.upgrade(ctx, cfg); err != nil {
		return err
	}
	c.reply = newReplyReader(c.transport)

	if _, err := c.sendExpect(CmdPbsz(0), CommandOk); err != nil {
		return err
	}
	if _, err := c.sendExpect(CmdProt(ProtectionPrivate), CommandOk); err != nil {
		return err
	}
	return nil
}

// ClearCommandChannel issues CCC, downgrading the control stream to plain
// TCP while leaving the TLS context armed for subsequent data connections —
// per RFC 4217, data channels remain wrapped even though the control
// channel is no longer.
func (c *Client) ClearCommandChannel() error {
	if _, err := c.sendExpect(CmdCcc(), CommandOk); err != nil {
		return err
	}
	c.transport.detachTLS()
	c.reply = newReplyReader(c.transport)
	return nil
}

// Login authenticates with USER, following up with PASS only if the server
// asked for one (status 331).
func (c *Client) Login(username, password string) error {
	resp, err := c.sendExpect(CmdUser(username), LoggedIn, NeedPassword)
	if err != nil {
		return err
	}
	if resp.Status == LoggedIn {
		return nil
	}
	_, err = c.sendExpect(CmdPass(password), LoggedIn)
	return err
}

// Noop sends NOOP, primarily used internally by the idle keep-alive
// goroutine but also exposed for callers who want to probe liveness.
func (c *Client) Noop() error {
	_, err := c.sendExpect(CmdNoop(), CommandOk)
	return err
}

// Feat requests the server's advertised feature list and returns its body
// lines exactly as framed (leading-space continuation stripped, no
// trailing CR/LF).
func (c *Client) Feat() ([]string, error) {
	resp, err := c.sendExpect(CmdFeat(), System)
	if err != nil {
		return nil, err
	}
	return resp.Body.Lines(), nil
}

// Welcome returns the greeting message text captured at connect time.
func (c *Client) Welcome() string { return c.welcomeMsg }

// Quit stops the keep-alive goroutine, sends QUIT, and releases the
// transport. It does not close an outstanding data stream; the caller
// finalizes or aborts that stream before calling Quit.
func (c *Client) Quit() error {
	if c.transport == nil {
		return nil
	}
	c.stopKeepAlive()

	_, err := c.sendExpect(CmdQuit(), Closing)
	releaseErr := c.transport.Release()
	if err != nil {
		return err
	}
	return releaseErr
}

// writeCommand renders and writes cmd without reading a reply — used by
// Abort, which must send ABOR before consuming any pending reply.
func (c *Client) writeCommand(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCommand = time.Now()

	if c.timeout > 0 {
		if tc, ok := c.transport.activeConn().(interface {
			SetWriteDeadline(time.Time) error
		}); ok {
			_ = tc.SetWriteDeadline(time.Now().Add(c.timeout))
		}
	}
	line := cmd.render()
	c.logger.Debug("command", "line", strings.TrimRight(line, "\r\n"))
	_, err := c.transport.Write([]byte(line))
	if err != nil {
		return &ConnectionError{Op: "write command", Err: err}
	}
	return nil
}

// sendExpect writes cmd and reads the reply, classifying it against
// expected. It serializes all control-channel traffic behind c.mu so
// concurrent callers never interleave command bytes.
func (c *Client) sendExpect(cmd Command, expected ...Status) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCommand = time.Now()

	if c.timeout > 0 {
		if tc, ok := c.transport.activeConn().(interface {
			SetDeadline(time.Time) error
		}); ok {
			_ = tc.SetDeadline(time.Now().Add(c.timeout))
		}
	}

	line := cmd.render()
	c.logger.Debug("command", "line", strings.TrimRight(line, "\r\n"))
	if _, err := c.transport.Write([]byte(line)); err != nil {
		return Response{}, &ConnectionError{Op: "write command", Err: err}
	}

	resp, err := c.reply.read(expected...)
	c.logger.Debug("response", "status", resp.Status, "body", resp.Body.String())
	return resp, err
}

func optionalPath(path string) *string {
	if path == "" {
		return nil
	}
	return &path
}
