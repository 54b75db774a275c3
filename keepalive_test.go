package ftp

import (
	"sync"
	"testing"
	"time"
)

func TestKeepAliveSendsNoopWhenIdle(t *testing.T) {
	t.Parallel()
	f := newFixtureServer(t)
	defer f.close()

	var wg sync.WaitGroup
	wg.Add(1)
	f.run(func(fc *fixtureConn) {
		fc.send("220 welcome")
		if line := fc.readLine(); line != "NOOP" {
			t.Errorf("got %q, want NOOP", line)
		}
		fc.send("200 still here")
		wg.Done()
		fc.readLine()
		fc.send("221 bye")
	})

	c, err := Dial(f.addr, WithIdleTimeout(40*time.Millisecond))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	wg.Wait()
	c.Quit()
}

func TestSetDataOutstandingTogglesFlag(t *testing.T) {
	t.Parallel()
	c := &Client{idleTimeout: time.Hour}
	c.setDataOutstanding(true)
	if !c.dataOutstanding {
		t.Fatal("expected dataOutstanding to be true")
	}
	c.setDataOutstanding(false)
	if c.dataOutstanding {
		t.Fatal("expected dataOutstanding to be false")
	}
}

func TestStopKeepAliveIsIdempotentWhenNeverStarted(t *testing.T) {
	t.Parallel()
	c := &Client{}
	c.stopKeepAlive() // must not panic when quitChan is nil
}

func TestStartKeepAliveNoopWhenIdleTimeoutZero(t *testing.T) {
	t.Parallel()
	c := &Client{}
	c.startKeepAlive()
	if c.quitChan != nil {
		t.Error("expected quitChan to remain nil when idleTimeout is zero")
	}
}
