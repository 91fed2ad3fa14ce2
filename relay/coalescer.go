package relay

import (
	"context"
	"strings"
	"time"
)

// Coalescer merges streamed deltas into fewer, larger pushes so a client is
// not asked to re-render once per token.
//
// Buffered text is flushed when it reaches MaxBytes, whenever Interval
// elapses, and when the input ends. The zero Coalescer flushes every delta on
// its own.
type Coalescer struct {
	Interval time.Duration
	MaxBytes int
}

// Passthrough reports whether every delta is flushed individually.
func (c Coalescer) Passthrough() bool {
	return c.Interval <= 0 && c.MaxBytes <= 0
}

// Run reads in until it is closed, calling flush with the coalesced text. It
// stops at the first flush error or when ctx is done.
func (c Coalescer) Run(ctx context.Context, in <-chan string, flush func(string) error) error {
	if c.Passthrough() {
		return c.passthrough(ctx, in, flush)
	}

	var tick <-chan time.Time
	if c.Interval > 0 {
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var buf strings.Builder
	drain := func() error {
		if buf.Len() == 0 {
			return nil
		}

		text := buf.String()
		buf.Reset()
		return flush(text)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-tick:
			if err := drain(); err != nil {
				return err
			}

		case delta, ok := <-in:
			if !ok {
				return drain()
			}

			buf.WriteString(delta)
			if c.MaxBytes > 0 && buf.Len() >= c.MaxBytes {
				if err := drain(); err != nil {
					return err
				}
			}
		}
	}
}

func (c Coalescer) passthrough(ctx context.Context, in <-chan string, flush func(string) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case delta, ok := <-in:
			if !ok {
				return nil
			}

			if err := flush(delta); err != nil {
				return err
			}
		}
	}
}
