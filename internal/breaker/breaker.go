package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the circuit is rejecting calls.
var ErrOpen = errors.New("breaker: circuit open")

// State captures circuit breaker states.
type State int

const (
	// StateClosed indicates normal operation.
	StateClosed State = iota
	// StateOpen indicates the breaker is rejecting calls.
	StateOpen
	// StateHalfOpen indicates trial calls are permitted.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Options configures the state-transition thresholds.
type Options struct {
	// FailureRateThreshold is the failure ratio at or above which the
	// circuit opens, in [0,1].
	FailureRateThreshold float64
	// MinimumCalls is how many outcomes must be recorded before the
	// failure rate is evaluated at all.
	MinimumCalls int
	// WaitOpen is how long the circuit stays open before probing.
	WaitOpen time.Duration
	// HalfOpenCalls is how many probe calls are forwarded while
	// half-open.
	HalfOpenCalls int
	// WindowSize is the number of most recent outcomes considered.
	WindowSize int
}

// Breaker is a count-based sliding-window circuit breaker. Callers
// pair Allow with Record around the protected operation; the fallback
// they substitute on ErrOpen is their own.
type Breaker struct {
	mu   sync.Mutex
	opts Options

	state    State
	openedAt time.Time

	// ring of the last WindowSize outcomes, true = failure
	window   []bool
	head     int
	count    int
	failures int

	probesIssued  int
	probesDone    int
	probeFailures int

	now func() time.Time
}

func New(opts Options) *Breaker {
	if opts.FailureRateThreshold <= 0 || opts.FailureRateThreshold > 1 {
		opts.FailureRateThreshold = 0.5
	}
	if opts.MinimumCalls <= 0 {
		opts.MinimumCalls = 10
	}
	if opts.WaitOpen <= 0 {
		opts.WaitOpen = 10 * time.Second
	}
	if opts.HalfOpenCalls <= 0 {
		opts.HalfOpenCalls = 3
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = 20
	}
	return &Breaker{
		opts:   opts,
		state:  StateClosed,
		window: make([]bool, opts.WindowSize),
		now:    time.Now,
	}
}

// Allow reports whether the protected call may proceed. It returns
// ErrOpen while the circuit is open and once the half-open probe
// budget is spent.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.opts.WaitOpen {
			return ErrOpen
		}
		b.toHalfOpen()
		b.probesIssued++
		return nil
	case StateHalfOpen:
		if b.probesIssued < b.opts.HalfOpenCalls {
			b.probesIssued++
			return nil
		}
		return ErrOpen
	default:
		return nil
	}
}

// Record feeds the outcome of a permitted call back into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.push(!success)
		if b.count >= b.opts.MinimumCalls && b.failureRate() >= b.opts.FailureRateThreshold {
			b.toOpen()
		}
	case StateHalfOpen:
		b.probesDone++
		if !success {
			b.probeFailures++
		}
		if b.probesDone >= b.opts.HalfOpenCalls {
			rate := float64(b.probeFailures) / float64(b.probesDone)
			if rate >= b.opts.FailureRateThreshold {
				b.toOpen()
			} else {
				b.toClosed()
			}
		}
	case StateOpen:
		// A call admitted before the transition finished afterwards;
		// its outcome no longer matters.
	}
}

// State returns the current state, accounting for an elapsed open
// interval.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.WaitOpen {
		b.toHalfOpen()
	}
	return b.state
}

func (b *Breaker) push(failure bool) {
	if b.count == len(b.window) {
		// evict the oldest outcome
		if b.window[b.head] {
			b.failures--
		}
	} else {
		b.count++
	}
	b.window[b.head] = failure
	if failure {
		b.failures++
	}
	b.head = (b.head + 1) % len(b.window)
}

func (b *Breaker) failureRate() float64 {
	if b.count == 0 {
		return 0
	}
	return float64(b.failures) / float64(b.count)
}

func (b *Breaker) toOpen() {
	b.state = StateOpen
	b.openedAt = b.now()
}

func (b *Breaker) toHalfOpen() {
	b.state = StateHalfOpen
	b.probesIssued = 0
	b.probesDone = 0
	b.probeFailures = 0
}

func (b *Breaker) toClosed() {
	b.state = StateClosed
	b.head = 0
	b.count = 0
	b.failures = 0
	for i := range b.window {
		b.window[i] = false
	}
}
