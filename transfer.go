package ftp

import (
	"context"
	"io"
	"net"

	"golang.org/x/time/rate"

	"github.com/netfleet/ftpclient/internal/ratelimit"
)

// TransferType sends TYPE to switch the representation used by subsequent
// data transfers (ASCII, EBCDIC, Image/Binary, or a local byte-size
// variant).
func (c *Client) TransferType(t FileType) error {
	if _, err := c.sendExpect(CmdType(t), CommandOk); err != nil {
		return err
	}
	c.currentType = t
	return nil
}

// RetrAsStream opens a data channel for RETR and returns the live stream;
// the caller reads from it directly and must call FinalizeRetrStream (or
// Abort) exactly once when done.
func (c *Client) RetrAsStream(ctx context.Context, path string) (net.Conn, error) {
	conn, err := c.openDataChannel(ctx, CmdRetr(path))
	if err != nil {
		return nil, err
	}
	return c.wrapBandwidth(conn), nil
}

// FinalizeRetrStream releases a stream returned by RetrAsStream and
// consumes the trailing completion reply.
func (c *Client) FinalizeRetrStream(conn net.Conn) error {
	return c.finalizeDataChannel(unwrapBandwidth(conn))
}

// PutWithStream opens a data channel for STOR and returns the live stream;
// the caller writes to it directly and must call FinalizePutStream (or
// Abort) exactly once when done.
func (c *Client) PutWithStream(ctx context.Context, path string) (net.Conn, error) {
	conn, err := c.openDataChannel(ctx, CmdStor(path))
	if err != nil {
		return nil, err
	}
	return c.wrapBandwidth(conn), nil
}

// AppendWithStream is PutWithStream's APPE-issuing counterpart, for
// resuming or extending an existing remote file.
func (c *Client) AppendWithStream(ctx context.Context, path string) (net.Conn, error) {
	conn, err := c.openDataChannel(ctx, CmdAppe(path))
	if err != nil {
		return nil, err
	}
	return c.wrapBandwidth(conn), nil
}

// FinalizePutStream releases a stream returned by PutWithStream or
// AppendWithStream and consumes the trailing completion reply.
func (c *Client) FinalizePutStream(conn net.Conn) error {
	return c.finalizeDataChannel(unwrapBandwidth(conn))
}

// ResumeTransfer issues REST so the next RETR/STOR/APPE starts at byte
// offset rather than zero.
func (c *Client) ResumeTransfer(offset int64) error {
	_, err := c.sendExpect(CmdRest(offset), RequestFilePending)
	return err
}

// Retrieve downloads path into w, copying the full RetrAsStream/
// FinalizeRetrStream lifecycle so callers who just want an io.Writer don't
// have to manage the stream themselves. On copy failure the data stream is
// aborted rather than finalized, since the server is still sending bytes
// the caller no longer wants.
func (c *Client) Retrieve(ctx context.Context, path string, w io.Writer) error {
	stream, err := c.RetrAsStream(ctx, path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, stream); err != nil {
		c.Abort(stream)
		return &ConnectionError{Op: "retrieve", Err: err}
	}
	return c.FinalizeRetrStream(stream)
}

// Store uploads r's contents to path via STOR.
func (c *Client) Store(ctx context.Context, path string, r io.Reader) error {
	stream, err := c.PutWithStream(ctx, path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(stream, r); err != nil {
		c.Abort(stream)
		return &ConnectionError{Op: "store", Err: err}
	}
	return c.FinalizePutStream(stream)
}

// Append uploads r's contents to path via APPE, extending an existing
// remote file (or creating it, on servers that treat APPE like STOR when
// the file doesn't exist yet).
func (c *Client) Append(ctx context.Context, path string, r io.Reader) error {
	stream, err := c.AppendWithStream(ctx, path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(stream, r); err != nil {
		c.Abort(stream)
		return &ConnectionError{Op: "append", Err: err}
	}
	return c.FinalizePutStream(stream)
}

// Abort cancels an in-flight transfer: ABOR is sent without first waiting
// for a reply, the data stream is released, and the engine reads the
// completion reply twice before arming the skip_450 one-shot quirk — some
// servers emit a stray 450 after the canonical 226 that the very next
// reply read must silently absorb.
func (c *Client) Abort(stream net.Conn) error {
	writeErr := c.writeCommand(CmdAbor())

	stream = unwrapBandwidth(stream)
	closeErr := stream.Close()
	c.setDataOutstanding(false)

	_, readErr1 := c.reply.read(ClosingDataConnection, TransferAborted)
	_, readErr2 := c.reply.read(ClosingDataConnection)
	c.reply.armSkip450()

	switch {
	case writeErr != nil:
		return writeErr
	case readErr1 != nil:
		return readErr1
	case readErr2 != nil:
		return readErr2
	case closeErr != nil:
		return &ConnectionError{Op: "close data connection", Err: closeErr}
	}
	return nil
}

// bandwidthConn wraps a data connection's Read/Write in a token-bucket
// limiter; unwrapBandwidth recovers the underlying net.Conn for Close and
// for the deadlineConn/activeListener type assertions finalize needs.
type bandwidthConn struct {
	net.Conn
	r *ratelimit.Reader
	w *ratelimit.Writer
}

func (c *Client) wrapBandwidth(conn net.Conn) net.Conn {
	if c.bandwidthLimit <= 0 {
		return conn
	}
	limiter := rate.NewLimiter(c.bandwidthLimit, c.bandwidthBurst)
	return &bandwidthConn{
		Conn: conn,
		r:    ratelimit.NewReader(conn, limiter),
		w:    ratelimit.NewWriter(conn, limiter),
	}
}

func (b *bandwidthConn) Read(p []byte) (int, error)  { return b.r.Read(p) }
func (b *bandwidthConn) Write(p []byte) (int, error) { return b.w.Write(p) }

func unwrapBandwidth(conn net.Conn) net.Conn {
	if b, ok := conn.(*bandwidthConn); ok {
		return b.Conn
	}
	return conn
}

var _ io.ReadWriteCloser = (*bandwidthConn)(nil)
