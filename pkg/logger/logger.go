// Package logger wraps the standard logger with collapsing of repeated
// messages. Batch scrapes emit the same diagnostic for every step of every
// gig; identical consecutive messages are folded into one line with a count.
package logger

import (
	"fmt"
	"log"
	"sync"
	"time"
)

const flushDelay = 2 * time.Second

type collapser struct {
	mu      sync.Mutex
	last    string
	repeats int
	timer   *time.Timer
}

var std = &collapser{}

// Dedup logs like log.Printf but collapses consecutive identical messages.
func Dedup(format string, args ...any) {
	std.write(fmt.Sprintf(format, args...))
}

func (c *collapser) write(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg != c.last {
		c.emit()
		c.last = msg
		c.repeats = 0
	}
	c.repeats++
	c.schedule()
}

// emit flushes the pending message; callers hold the mutex.
func (c *collapser) emit() {
	switch {
	case c.repeats == 1:
		log.Print(c.last)
	case c.repeats > 1:
		log.Printf("%s (%d)", c.last, c.repeats)
	}
	c.last = ""
	c.repeats = 0
}

func (c *collapser) schedule() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(flushDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.emit()
	})
}
