package ftp

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestProgressReaderReportsCumulativeBytes(t *testing.T) {
	t.Parallel()
	var calls []int64
	pr := &ProgressReader{
		Reader:   strings.NewReader("hello world"),
		Callback: func(n int64) { calls = append(calls, n) },
	}
	buf := make([]byte, 4)
	for {
		_, err := pr.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	if len(calls) == 0 {
		t.Fatal("expected at least one callback invocation")
	}
	if calls[len(calls)-1] != 11 {
		t.Errorf("final cumulative total = %d, want 11", calls[len(calls)-1])
	}
}

func TestProgressReaderWithoutCallback(t *testing.T) {
	t.Parallel()
	pr := &ProgressReader{Reader: strings.NewReader("abc")}
	n, err := io.Copy(io.Discard, pr)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 3 {
		t.Errorf("copied %d bytes, want 3", n)
	}
}

func TestProgressWriterReportsCumulativeBytes(t *testing.T) {
	t.Parallel()
	var calls []int64
	var buf bytes.Buffer
	pw := &ProgressWriter{
		Writer:   &buf,
		Callback: func(n int64) { calls = append(calls, n) },
	}
	if _, err := pw.Write([]byte("foo")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := pw.Write([]byte("bar")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(calls) != 2 || calls[0] != 3 || calls[1] != 6 {
		t.Errorf("calls = %v, want [3 6]", calls)
	}
	if buf.String() != "foobar" {
		t.Errorf("buf = %q", buf.String())
	}
}
