package ftp

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
)

func TestRetrieveOverPassive(t *testing.T) {
	t.Parallel()
	f := newFixtureServer(t)
	defer f.close()

	content := []byte("the quick brown fox")
	var wg sync.WaitGroup
	wg.Add(1)
	f.run(func(fc *fixtureConn) {
		defer wg.Done()
		fc.send("220 welcome")
		if line := fc.readLine(); line != "PASV" {
			t.Errorf("got %q, want PASV", line)
		}
		reply, accept := fc.openDataListener()
		fc.send(reply)

		if line := fc.readLine(); line != "RETR x.txt" {
			t.Errorf("got %q, want RETR x.txt", line)
		}
		fc.send("150 opening binary connection")

		data := accept()
		data.Write(content)
		data.Close()

		fc.send("226 transfer complete")
		fc.readLine()
		fc.send("221 bye")
	})

	c := dialFixture(t, f, WithDisableEPSV())
	var buf bytes.Buffer
	if err := c.Retrieve(context.Background(), "x.txt", &buf); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if buf.String() != string(content) {
		t.Errorf("got %q, want %q", buf.String(), content)
	}
	wg.Wait()
}

func TestStoreOverPassive(t *testing.T) {
	t.Parallel()
	f := newFixtureServer(t)
	defer f.close()

	content := []byte("uploaded bytes")
	received := make(chan []byte, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	f.run(func(fc *fixtureConn) {
		defer wg.Done()
		fc.send("220 welcome")
		if line := fc.readLine(); line != "PASV" {
			t.Errorf("got %q, want PASV", line)
		}
		reply, accept := fc.openDataListener()
		fc.send(reply)

		if line := fc.readLine(); line != "STOR y.bin" {
			t.Errorf("got %q, want STOR y.bin", line)
		}
		fc.send("150 ok")

		data := accept()
		got, _ := io.ReadAll(data)
		data.Close()
		received <- got

		fc.send("226 transfer complete")
		fc.readLine()
		fc.send("221 bye")
	})

	c := dialFixture(t, f, WithDisableEPSV())
	if err := c.Store(context.Background(), "y.bin", bytes.NewReader(content)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	wg.Wait()

	got := <-received
	if !bytes.Equal(got, content) {
		t.Errorf("server received %q, want %q", got, content)
	}
}

func TestAbortDuringRetrieve(t *testing.T) {
	t.Parallel()
	f := newFixtureServer(t)
	defer f.close()

	var wg sync.WaitGroup
	wg.Add(1)
	f.run(func(fc *fixtureConn) {
		defer wg.Done()
		fc.send("220 welcome")
		if line := fc.readLine(); line != "PASV" {
			t.Errorf("got %q", line)
		}
		reply, accept := fc.openDataListener()
		fc.send(reply)

		if line := fc.readLine(); line != "RETR big.bin" {
			t.Errorf("got %q", line)
		}
		fc.send("150 opening")
		data := accept()

		if line := fc.readLine(); line != "ABOR" {
			t.Errorf("got %q, want ABOR", line)
		}
		data.Close()
		fc.send("426 Connection closed; transfer aborted.")
		fc.send("226 Closing data connection.")
		fc.send("450 stray reply some servers emit")
		fc.send("220 next normal reply")
	})

	c := dialFixture(t, f, WithDisableEPSV())
	stream, err := c.RetrAsStream(context.Background(), "big.bin")
	if err != nil {
		t.Fatalf("RetrAsStream: %v", err)
	}
	if err := c.Abort(stream); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	// The very next reply read must have silently absorbed the stray 450.
	resp, err := c.reply.read(Ready)
	if err != nil {
		t.Fatalf("post-abort read: %v", err)
	}
	if resp.Status != Ready {
		t.Errorf("status = %v, want %v", resp.Status, Ready)
	}
	wg.Wait()
}
