package ftp

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
)

var pasvRegex = regexp.MustCompile(`\((\d+),(\d+),(\d+),(\d+),(\d+),(\d+)\)`)
var epsvRegex = regexp.MustCompile(`\(\|\|\|(\d+)\|\)`)

// parseEPSV extracts the port number from an EPSV reply body, e.g.
// "Entering Extended Passive Mode (|||6446|)" -> 6446. RFC 2428 leaves the
// host unspecified: the control connection's remote address is reused.
func parseEPSV(body string) (int, error) {
	m := epsvRegex.FindStringSubmatch(body)
	if m == nil {
		return 0, &InvalidAddressError{Input: body, Err: fmt.Errorf("no EPSV tuple found")}
	}
	port, err := strconv.Atoi(m[1])
	if err != nil || port < 0 || port > 65535 {
		return 0, &InvalidAddressError{Input: body, Err: fmt.Errorf("invalid EPSV port %q", m[1])}
	}
	return port, nil
}

// parsePASV extracts the host:port tuple from a PASV reply body, e.g.
// "Entering Passive Mode (127,0,0,1,4,210)" -> "127.0.0.1:1234". It uses the
// first regex match and ignores any leading text before the tuple.
func parsePASV(body string) (string, error) {
	m := pasvRegex.FindStringSubmatch(body)
	if m == nil {
		return "", &InvalidAddressError{Input: body, Err: fmt.Errorf("no PASV tuple found")}
	}
	var octet [4]int
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v < 0 || v > 255 {
			return "", &InvalidAddressError{Input: body, Err: fmt.Errorf("invalid octet %q", m[i+1])}
		}
		octet[i] = v
	}
	p1, err1 := strconv.Atoi(m[5])
	p2, err2 := strconv.Atoi(m[6])
	if err1 != nil || err2 != nil || p1 < 0 || p1 > 255 || p2 < 0 || p2 > 255 {
		return "", &InvalidAddressError{Input: body, Err: fmt.Errorf("invalid port octets %q,%q", m[5], m[6])}
	}
	port := p1<<8 | p2
	host := fmt.Sprintf("%d.%d.%d.%d", octet[0], octet[1], octet[2], octet[3])
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// formatPORT renders a local TCP endpoint as the PORT command's
// comma-separated argument: "192.168.1.5:50000" -> "192,168,1,5,195,80".
func formatPORT(addr string) (string, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", &InvalidAddressError{Input: addr, Err: err}
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return "", &InvalidAddressError{Input: addr, Err: fmt.Errorf("not an IP address")}
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return "", &InvalidAddressError{Input: addr, Err: fmt.Errorf("PORT requires an IPv4 address")}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", &InvalidAddressError{Input: addr, Err: err}
	}
	p1, p2 := port/256, port%256
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d", ip4[0], ip4[1], ip4[2], ip4[3], p1, p2), nil
}

// openPassive implements the PASV/EPSV half of §4.5: PASV (or, unless
// disabled, EPSV) must complete and the TCP connect must succeed before
// the data command is sent.
func (c *Client) openPassive(ctx context.Context) (net.Conn, error) {
	if !c.disableEPSV {
		conn, err := c.openExtendedPassive(ctx)
		if err == nil {
			return conn, nil
		}
		if _, ok := err.(*BadCommandError); !ok {
			return nil, err
		}
		// Server doesn't implement EPSV; fall back to PASV below.
	}

	resp, err := c.sendExpect(CmdPasv(), PassiveMode)
	if err != nil {
		return nil, err
	}
	addr, err := parsePASV(resp.Body.String())
	if err != nil {
		return nil, err
	}
	host, port, splitErr := net.SplitHostPort(addr)
	if splitErr == nil && host == "0.0.0.0" {
		if controlHost, _, hostErr := net.SplitHostPort(c.transport.TCPConn().RemoteAddr().String()); hostErr == nil {
			addr = net.JoinHostPort(controlHost, port)
		}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Op: "dial data connection", Err: err}
	}
	return c.maybeWrapDataConn(ctx, conn, host)
}

// openExtendedPassive implements RFC 2428 EPSV: the reply carries only a
// port, and the control connection's remote host is reused for the data
// connect.
func (c *Client) openExtendedPassive(ctx context.Context) (net.Conn, error) {
	resp, err := c.sendExpect(CmdEpsv(), ExtendedPassiveMode)
	if err != nil {
		return nil, err
	}
	port, err := parseEPSV(resp.Body.String())
	if err != nil {
		return nil, err
	}
	controlHost, _, err := net.SplitHostPort(c.transport.TCPConn().RemoteAddr().String())
	if err != nil {
		return nil, &InvalidAddressError{Input: c.transport.TCPConn().RemoteAddr().String(), Err: err}
	}
	addr := net.JoinHostPort(controlHost, strconv.Itoa(port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Op: "dial data connection", Err: err}
	}
	return c.maybeWrapDataConn(ctx, conn, controlHost)
}

// activeListener is returned to the caller in place of a bare net.Conn: the
// server's inbound connection is accepted lazily, on first use, because
// §4.5 requires the data command to be sent before the accept happens.
type activeListener struct {
	listener net.Listener
	timeout  time.Duration
	conn     net.Conn
	wrap     func(net.Conn) (net.Conn, error)
}

func (a *activeListener) ensure() error {
	if a.conn != nil {
		return nil
	}
	if a.timeout > 0 {
		if tl, ok := a.listener.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(a.timeout))
		}
	}
	raw, err := a.listener.Accept()
	if err != nil {
		return &ConnectionError{Op: "accept active data connection", Err: err}
	}
	if a.wrap != nil {
		wrapped, err := a.wrap(raw)
		if err != nil {
			raw.Close()
			return err
		}
		raw = wrapped
	}
	a.conn = raw
	return nil
}

func (a *activeListener) Read(p []byte) (int, error) {
	if err := a.ensure(); err != nil {
		return 0, err
	}
	return a.conn.Read(p)
}

func (a *activeListener) Write(p []byte) (int, error) {
	if err := a.ensure(); err != nil {
		return 0, err
	}
	return a.conn.Write(p)
}

func (a *activeListener) Close() error {
	var connErr, listenErr error
	if a.conn != nil {
		connErr = a.conn.Close()
	}
	if a.listener != nil {
		listenErr = a.listener.Close()
	}
	if connErr != nil {
		return connErr
	}
	return listenErr
}

func (a *activeListener) LocalAddr() net.Addr {
	if a.conn != nil {
		return a.conn.LocalAddr()
	}
	return a.listener.Addr()
}

func (a *activeListener) RemoteAddr() net.Addr {
	if a.conn != nil {
		return a.conn.RemoteAddr()
	}
	return nil
}

func (a *activeListener) SetDeadline(t time.Time) error {
	if a.conn != nil {
		return a.conn.SetDeadline(t)
	}
	return nil
}

func (a *activeListener) SetReadDeadline(t time.Time) error {
	if a.conn != nil {
		return a.conn.SetReadDeadline(t)
	}
	return nil
}

func (a *activeListener) SetWriteDeadline(t time.Time) error {
	if a.conn != nil {
		return a.conn.SetWriteDeadline(t)
	}
	return nil
}

// openActive implements the active-mode half of §4.5: the listener must be
// bound and PORT must be acknowledged with 200 before the caller's data
// command is sent; the inbound connection itself is accepted lazily by the
// returned activeListener.
func (c *Client) openActive(ctx context.Context) (net.Conn, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return nil, &ConnectionError{Op: "listen for active data connection", Err: err}
	}
	localHost, _, err := net.SplitHostPort(c.transport.TCPConn().LocalAddr().String())
	if err != nil {
		listener.Close()
		return nil, &InvalidAddressError{Input: c.transport.TCPConn().LocalAddr().String(), Err: err}
	}
	_, listenPort, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		listener.Close()
		return nil, err
	}
	portArg, err := formatPORT(net.JoinHostPort(localHost, listenPort))
	if err != nil {
		listener.Close()
		return nil, err
	}
	if _, err := c.sendExpect(CmdPort(portArg), CommandOk); err != nil {
		listener.Close()
		return nil, err
	}
	al := &activeListener{listener: listener, timeout: c.timeout}
	if c.transport.HasTLSContext() {
		al.wrap = func(conn net.Conn) (net.Conn, error) { return c.transport.wrapDataConn(ctx, conn, localHost) }
	}
	return al, nil
}

// maybeWrapDataConn applies the engine's monotonic TLS context to a freshly
// dialed (passive-mode) data connection.
func (c *Client) maybeWrapDataConn(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	if !c.transport.HasTLSContext() {
		return conn, nil
	}
	return c.transport.wrapDataConn(ctx, conn, serverName)
}

// openDataChannel opens a data connection per the engine's configured mode
// and sends dataCmd over the control channel, expecting a
// preliminary-positive (AboutToSend) or already-open (AlreadyOpen) reply.
func (c *Client) openDataChannel(ctx context.Context, dataCmd Command) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if c.mode == ModeActive {
		conn, err = c.openActive(ctx)
	} else {
		conn, err = c.openPassive(ctx)
	}
	if err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		conn = &deadlineConn{Conn: conn, timeout: c.timeout}
	}
	if _, err := c.sendExpect(dataCmd, AboutToSend, AlreadyOpen); err != nil {
		conn.Close()
		return nil, err
	}
	c.setDataOutstanding(true)
	return conn, nil
}

// finalizeDataChannel closes the data stream and reads the trailing
// completion reply, per the "finalize-or-abort" contract every data-bearing
// operation must honor.
func (c *Client) finalizeDataChannel(conn net.Conn) error {
	closeErr := conn.Close()
	c.setDataOutstanding(false)
	if closeErr != nil {
		return &ConnectionError{Op: "close data connection", Err: closeErr}
	}
	_, err := c.reply.read(ClosingDataConnection, RequestedFileActionOk)
	return err
}
