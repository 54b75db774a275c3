package ftp

import "time"

// startKeepAlive launches a goroutine that sends NOOP whenever the control
// channel has been idle for at least idleTimeout. It never fires while a
// data stream is outstanding, since some servers treat an out-of-band NOOP
// during a transfer as a protocol violation.
func (c *Client) startKeepAlive() {
	if c.idleTimeout == 0 {
		return
	}
	c.quitChan = make(chan struct{})
	ticker := time.NewTicker(c.idleTimeout / 2)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				transferring := c.dataOutstanding
				last := c.lastCommand
				c.mu.Unlock()

				if transferring || time.Since(last) < c.idleTimeout {
					continue
				}
				c.logger.Debug("sending keep-alive NOOP")
				_ = c.Noop()
			case <-c.quitChan:
				return
			}
		}
	}()
}

func (c *Client) stopKeepAlive() {
	if c.quitChan != nil {
		close(c.quitChan)
		c.quitChan = nil
	}
}

func (c *Client) setDataOutstanding(v bool) {
	c.mu.Lock()
	c.dataOutstanding = v
	c.mu.Unlock()
}
