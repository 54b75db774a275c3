package ftp

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sizeRegex extracts the trailing run of digits from a SIZE reply body,
// e.g. "213 4096" -> "4096". Unanchored at the start, so leading text
// before the digits doesn't prevent a match.
var sizeRegex = regexp.MustCompile(`(\d+)\s*$`)

// mdtmRegex extracts a 14-digit YYYYMMDDhhmmss timestamp from an MDTM
// reply body. Unanchored at both ends, so trailing fractional seconds
// (RFC 3659 §4) don't prevent a match.
var mdtmRegex = regexp.MustCompile(`\b(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})\b`)

// Cwd changes the working directory.
func (c *Client) Cwd(path string) error {
	_, err := c.sendExpect(CmdCwd(path), RequestedFileActionOk)
	return err
}

// Cdup changes to the parent directory. Some servers reply 200 instead of
// the canonical 250; both are accepted.
func (c *Client) Cdup() error {
	_, err := c.sendExpect(CmdCdup(), RequestedFileActionOk, CommandOk)
	return err
}

// Pwd returns the current working directory, extracted from the substring
// strictly between the first and last double-quote of the 257 reply. If
// either quote is missing, or they coincide, the reply is treated as
// UnexpectedResponse rather than BadResponse — framing was fine, the body
// just didn't carry the path the caller asked for.
func (c *Client) Pwd() (string, error) {
	resp, err := c.sendExpect(CmdPwd(), PathCreated)
	if err != nil {
		return "", err
	}
	body := resp.Body.String()
	first := strings.IndexByte(body, '"')
	last := strings.LastIndexByte(body, '"')
	if first == -1 || last == -1 || first == last {
		return "", &UnexpectedResponseError{Response: resp}
	}
	return body[first+1 : last], nil
}

// Mkd creates a directory.
func (c *Client) Mkd(path string) error {
	_, err := c.sendExpect(CmdMkd(path), PathCreated)
	return err
}

// Rmd removes a directory.
func (c *Client) Rmd(path string) error {
	_, err := c.sendExpect(CmdRmd(path), RequestedFileActionOk)
	return err
}

// Dele deletes a file.
func (c *Client) Dele(path string) error {
	_, err := c.sendExpect(CmdDele(path), RequestedFileActionOk)
	return err
}

// Rename moves from to to via the RNFR/RNTO command pair.
func (c *Client) Rename(from, to string) error {
	if _, err := c.sendExpect(CmdRnfr(from), RequestFilePending); err != nil {
		return err
	}
	_, err := c.sendExpect(CmdRnto(to), RequestedFileActionOk)
	return err
}

// Size returns a file's size in bytes via SIZE, parsing the trailing run
// of digits in the reply body and failing with BadResponse if none exists.
func (c *Client) Size(path string) (int64, error) {
	resp, err := c.sendExpect(CmdSize(path), File)
	if err != nil {
		return 0, err
	}
	body := resp.Body.String()
	m := sizeRegex.FindStringSubmatch(body)
	if m == nil {
		return 0, &BadResponseError{Reason: fmt.Sprintf("SIZE reply has no trailing digits: %q", body)}
	}
	size, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, &BadResponseError{Reason: fmt.Sprintf("SIZE reply has no trailing digits: %q", body)}
	}
	return size, nil
}

// Mdtm returns a file's modification time via MDTM, in UTC, extracting the
// 14-digit YYYYMMDDhhmmss timestamp RFC 3659 mandates from anywhere in the
// reply body (so trailing fractional seconds don't prevent a match) and
// failing with BadResponse if no such timestamp appears.
func (c *Client) Mdtm(path string) (time.Time, error) {
	resp, err := c.sendExpect(CmdMdtm(path), File)
	if err != nil {
		return time.Time{}, err
	}
	body := resp.Body.String()
	m := mdtmRegex.FindStringSubmatch(body)
	if m == nil {
		return time.Time{}, &BadResponseError{Reason: fmt.Sprintf("MDTM reply has no timestamp: %q", body)}
	}
	t, err := time.Parse("20060102150405", m[1]+m[2]+m[3]+m[4]+m[5]+m[6])
	if err != nil {
		return time.Time{}, &BadResponseError{Reason: fmt.Sprintf("MDTM reply doesn't parse: %q", body)}
	}
	return t.UTC(), nil
}

// SetModTime sets a file's modification time via MFMT (draft-somers-ftp-mfxx).
func (c *Client) SetModTime(path string, t time.Time) error {
	timestamp := t.UTC().Format("20060102150405")
	_, err := c.sendExpect(cmd("MFMT", timestamp, path), RequestedFileActionOk)
	return err
}

// Chmod changes a file's permissions via SITE CHMOD.
func (c *Client) Chmod(path string, mode os.FileMode) error {
	octal := fmt.Sprintf("%04o", mode&os.ModePerm)
	_, err := c.sendExpect(CmdSite(fmt.Sprintf("CHMOD %s %s", octal, path)), CommandOk)
	return err
}

// Opts sends OPTS name [value].
func (c *Client) Opts(name string, value string) error {
	_, err := c.sendExpect(CmdOpts(name, optionalPath(value)), CommandOk)
	return err
}

// Lang sends LANG [tag].
func (c *Client) Lang(tag string) error {
	_, err := c.sendExpect(CmdLang(optionalPath(tag)), CommandOk)
	return err
}

// Site sends a raw SITE command, e.g. "CHMOD 755 file.txt".
func (c *Client) Site(raw string) error {
	_, err := c.sendExpect(CmdSite(raw), CommandOk)
	return err
}

// Stat requests status information via STAT. A bare STAT (empty path)
// returns server status (211); STAT of a path returns either a directory
// listing (212) or file status (213).
func (c *Client) Stat(path string) ([]string, error) {
	resp, err := c.sendExpect(CmdStat(optionalPath(path)), System, Directory, File)
	if err != nil {
		return nil, err
	}
	return resp.Body.Lines(), nil
}

// List opens a data channel for LIST and returns the raw listing lines.
// Decoding those lines into structured entries is out of scope for the
// engine — see the listing subpackage.
func (c *Client) List(ctx context.Context, path string) ([]string, error) {
	return c.readDataLines(ctx, CmdList(optionalPath(path)))
}

// NameList opens a data channel for NLST and returns the raw name lines.
func (c *Client) NameList(ctx context.Context, path string) ([]string, error) {
	return c.readDataLines(ctx, CmdNlst(optionalPath(path)))
}

// Mlsd opens a data channel for MLSD and returns the raw fact lines, one
// per directory entry. Decoding the fact syntax lives in the listing
// subpackage.
func (c *Client) Mlsd(ctx context.Context, path string) ([]string, error) {
	return c.readDataLines(ctx, CmdMlsd(optionalPath(path)))
}

// Mlst requests a single entry's facts inline over the control channel via
// MLST. The reply must be exactly one multi-line entry; anything else
// (inline, or more than one continuation line) is a BadResponse.
func (c *Client) Mlst(path string) (string, error) {
	resp, err := c.sendExpect(CmdMlst(optionalPath(path)), RequestedFileActionOk)
	if err != nil {
		return "", err
	}
	lines, err := resp.Body.ContinuationLines()
	if err != nil {
		return "", &BadResponseError{Reason: "MLST reply was not multi-line"}
	}
	if len(lines) != 1 {
		return "", &BadResponseError{Reason: fmt.Sprintf("MLST reply must be exactly one entry, got %d", len(lines))}
	}
	return lines[0], nil
}

// readDataLines drives a LIST/NLST/MLSD data channel to completion: open,
// read every line (split on LF, a single trailing CR stripped, empty lines
// skipped), then finalize.
func (c *Client) readDataLines(ctx context.Context, dataCmd Command) ([]string, error) {
	conn, err := c.openDataChannel(ctx, dataCmd)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitLinesLF)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	scanErr := scanner.Err()

	finalizeErr := c.finalizeDataChannel(conn)
	if scanErr != nil {
		return nil, &ConnectionError{Op: "read data stream", Err: scanErr}
	}
	if finalizeErr != nil {
		return nil, finalizeErr
	}
	return lines, nil
}

// splitLinesLF is bufio.ScanLines without its own CR-trimming, since the
// trailing-CR strip above happens exactly once, deliberately, per spec.
func splitLinesLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := indexByte(data, '\n'); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
