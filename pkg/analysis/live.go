package analysis

import (
	"sync"
	"time"

	"github.com/japaniel/readlex/pkg/debounce"
)

// DefaultQuiescence is how long input must stay unchanged before Live recomputes.
const DefaultQuiescence = 500 * time.Millisecond

// Live recomputes a report while text is being edited. Each Update restarts the
// quiescence window, and a result is delivered only if no newer Update arrived
// before delivery. onResult runs with Live's lock held, so it must not call
// Update or Stop; an Update from elsewhere waits for it to return.
type Live struct {
	analyzer *Analyzer
	wpm      int
	deb      *debounce.Debouncer
	onResult func(Report)

	mu  sync.Mutex
	gen uint64
}

// NewLive returns a Live that calls onResult with each surviving report.
func NewLive(a *Analyzer, wpm int, quiescence time.Duration, onResult func(Report)) *Live {
	if quiescence <= 0 {
		quiescence = DefaultQuiescence
	}
	return &Live{
		analyzer: a,
		wpm:      wpm,
		deb:      debounce.New(quiescence),
		onResult: onResult,
	}
}

// Update schedules a recompute for text, superseding any earlier input.
func (l *Live) Update(text string) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	l.deb.Trigger(func() {
		r := l.analyzer.Analyze(text, l.wpm)
		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			l.analyzer.logger().Debug("discarding superseded analysis", "generation", gen)
			return
		}
		l.onResult(r)
	})
}

// Stop cancels any pending recompute and discards one already running. After
// Stop returns no further result is delivered.
func (l *Live) Stop() {
	l.mu.Lock()
	l.gen++
	l.mu.Unlock()
	l.deb.Stop()
}
