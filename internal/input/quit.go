// Package input provides the sources of the user-quit signal a session polls
// at every frame boundary.
package input

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Source reports whether a quit was requested. It is polled once per frame.
type Source interface {
	QuitRequested() bool
}

// Latch is a quit request that stays set once made. It is safe to request
// from any goroutine.
type Latch struct {
	requested atomic.Bool
	reason    atomic.Value

	debugEnabled bool
}

// NewLatch creates a cleared latch.
func NewLatch() *Latch {
	return &Latch{}
}

// Request sets the latch. The first reason given is kept.
func (l *Latch) Request(reason string) {
	if l.requested.CompareAndSwap(false, true) {
		l.reason.Store(reason)
		if l.debugEnabled {
			log.Printf("[INPUT_DEBUG] quit requested: %s", reason)
		}
	}
}

// QuitRequested reports whether Request has been called.
func (l *Latch) QuitRequested() bool {
	return l.requested.Load()
}

// Reason returns the reason of the first request, or "".
func (l *Latch) Reason() string {
	if r, ok := l.reason.Load().(string); ok {
		return r
	}
	return ""
}

// EnableDebug enables debug logging for this latch.
func (l *Latch) EnableDebug(enable bool) {
	l.debugEnabled = enable
}

// NotifySignals requests a quit on l when one of the given OS signals
// arrives (SIGINT when none are given). The session still finishes the frame
// in flight. A second signal is logged and ignored. Call the returned
// function to stop listening.
func NotifySignals(l *Latch, sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt}
	}

	c := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(c, sigs...)

	go func() {
		for {
			select {
			case sig := <-c:
				if l.QuitRequested() {
					log.Printf("[INPUT] %v received again, already stopping", sig)
					continue
				}
				log.Printf("[INPUT] %v received, stopping at the next frame", sig)
				l.Request(sig.String())
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(c)
			close(done)
		})
	}
}

// FrameLimiter requests a quit once a number of frames have been presented.
type FrameLimiter struct {
	max   uint64
	polls uint64
}

// FrameLimit returns a source that lets n frames through and requests a
// quit at the following frame boundary. Zero means no limit.
func FrameLimit(n uint64) *FrameLimiter {
	return &FrameLimiter{max: n}
}

// QuitRequested counts frame boundaries.
func (f *FrameLimiter) QuitRequested() bool {
	if f.max == 0 {
		return false
	}
	f.polls++
	return f.polls > f.max
}

// Remaining returns how many frames may still be presented.
func (f *FrameLimiter) Remaining() uint64 {
	if f.polls >= f.max {
		return 0
	}
	return f.max - f.polls
}

// Reached reports whether the limit has stopped a session.
func (f *FrameLimiter) Reached() bool {
	return f.max > 0 && f.polls > f.max
}

type anySource []Source

// Any combines sources. Every source is polled on each call so that event
// queues behind them keep draining.
func Any(sources ...Source) Source {
	var s anySource
	for _, src := range sources {
		if src != nil {
			s = append(s, src)
		}
	}
	return s
}

func (s anySource) QuitRequested() bool {
	quit := false
	for _, src := range s {
		if src.QuitRequested() {
			quit = true
		}
	}
	return quit
}
