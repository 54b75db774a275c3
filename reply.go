package ftp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseStatusDelimTail implements the command codec's inverse-direction
// framing: it requires at least 4 characters, interprets the first three as
// a base-10 status code, demands a space or hyphen at position 3, and
// returns everything after position 3 (trimmed of trailing CR/LF) as the
// tail. Any violation fails with BadResponseError.
func parseStatusDelimTail(line string) (Status, byte, string, error) {
	trimmed := strings.TrimRight(line, "\r\n")
	if len(trimmed) < 4 {
		return 0, 0, "", &BadResponseError{Reason: fmt.Sprintf("reply line too short: %q", trimmed)}
	}
	code, err := strconv.Atoi(trimmed[0:3])
	if err != nil {
		return 0, 0, "", &BadResponseError{Reason: fmt.Sprintf("non-numeric status code: %q", trimmed[0:3])}
	}
	delim := trimmed[3]
	if delim != ' ' && delim != '-' {
		return 0, 0, "", &BadResponseError{Reason: fmt.Sprintf("missing status delimiter: %q", trimmed)}
	}
	return Status(code), delim, trimmed[4:], nil
}

// replyReader consumes complete server replies off a buffered control
// stream per §4.3: a single reply is either inline or multi-line, and the
// reader centralizes the skip_450 one-shot quirk so the engine never has to
// remember to apply it.
type replyReader struct {
	br      *bufio.Reader
	skip450 bool
}

func newReplyReader(r io.Reader) *replyReader {
	return &replyReader{br: bufio.NewReader(r)}
}

// armSkip450 arms the one-shot quirk. The only caller is abort.
func (rr *replyReader) armSkip450() { rr.skip450 = true }

// takeSkip450 reports and clears the armed state. Called once per reply
// read, unconditionally, so the flag never survives past the read that
// tests it.
func (rr *replyReader) takeSkip450() bool {
	armed := rr.skip450
	rr.skip450 = false
	return armed
}

func (rr *replyReader) readLine() (string, error) {
	line, err := rr.br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", &BadResponseError{Reason: "unexpected EOF reading response"}
		}
		return "", &ConnectionError{Op: "read reply", Err: err}
	}
	return line, nil
}

// readFramed reads exactly one logical reply off the wire and applies the
// skip_450 quirk, but does not classify it against an expected-status set.
func (rr *replyReader) readFramed() (Response, error) {
	line0, err := rr.readLine()
	if err != nil {
		return Response{}, err
	}
	code, delim, tail0, err := parseStatusDelimTail(line0)
	if err != nil {
		return Response{}, err
	}

	if rr.takeSkip450() && code == RequestFileActionIgnored {
		line1, err := rr.readLine()
		if err != nil {
			return Response{}, err
		}
		code, delim, tail0, err = parseStatusDelimTail(line1)
		if err != nil {
			return Response{}, err
		}
	}

	if delim == ' ' {
		return Response{Status: code, Body: inlineBody(tail0)}, nil
	}

	// Multi-line: delim == '-'. Read until a line begins with an ASCII
	// digit; every other intermediate line must begin with a space.
	var body []string
	for {
		raw, err := rr.readLine()
		if err != nil {
			return Response{}, err
		}
		line := strings.TrimRight(raw, "\r\n")
		if len(line) == 0 {
			return Response{}, &BadResponseError{Reason: "empty continuation line"}
		}
		if line[0] == ' ' {
			body = append(body, line[1:])
			continue
		}
		if line[0] < '0' || line[0] > '9' {
			return Response{}, &BadResponseError{Reason: fmt.Sprintf("bad continuation line: %q", line)}
		}
		closeCode, closeDelim, closeTail, err := parseStatusDelimTail(raw)
		if err != nil {
			return Response{}, err
		}
		if closeCode != code || closeDelim != ' ' {
			return Response{}, &BadResponseError{Reason: fmt.Sprintf("multi-line closing code mismatch: %q", line)}
		}
		return Response{Status: code, Body: multilineBody(tail0, body, closeTail)}, nil
	}
}

// read consumes one reply and classifies it against expected: a match
// returns the response, otherwise the reply is turned into the appropriate
// BadCommandError/BadParameterError/UnexpectedResponseError per §4.3 step 5.
func (rr *replyReader) read(expected ...Status) (Response, error) {
	resp, err := rr.readFramed()
	if err != nil {
		return Response{}, err
	}
	if statusIn(resp.Status, expected) {
		return resp, nil
	}
	return resp, classifyStatus(resp)
}
