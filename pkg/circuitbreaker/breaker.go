package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// CircuitState is the current circuit breaker state.
type CircuitState int

const (
	Closed CircuitState = iota
	Open
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker guards calls to a dependency and opens after repeated failures.
type CircuitBreaker interface {
	Call(func() error) error
	State() CircuitState
	Metrics() Metrics
	Reset()
}

type Config struct {
	FailureThreshold int           // failures before opening
	RecoveryTimeout  time.Duration // wait before moving to HalfOpen
	SuccessThreshold int           // successes needed to close from HalfOpen
	// IsFailure decides whether a returned error counts against the breaker.
	// Errors it rejects are passed through and recorded as successes.
	IsFailure func(error) bool
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	}
}

type Metrics struct {
	State        CircuitState
	FailureCount int
	SuccessCount int
	LastFailure  time.Time
	NextAttempt  time.Time
}

type circuitBreaker struct {
	config      *Config
	now         func() time.Time
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	nextAttempt time.Time
	mutex       sync.RWMutex
}

// NewCircuitBreaker applies defaults when config is nil.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}

	return &circuitBreaker{
		config: config,
		now:    time.Now,
		state:  Closed,
	}
}

func (cb *circuitBreaker) allow() bool {
	if cb.state == Open && cb.now().After(cb.nextAttempt) {
		cb.state = HalfOpen
		cb.successes = 0
	}
	return cb.state != Open
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mutex.Lock()
	allowed := cb.allow()
	cb.mutex.Unlock()

	if !allowed {
		return ErrCircuitOpen
	}

	// fn runs without the lock held.
	err := fn()

	cb.mutex.Lock()
	if err != nil && cb.countsAsFailure(err) {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}
	cb.mutex.Unlock()

	return err
}

func (cb *circuitBreaker) countsAsFailure(err error) bool {
	if cb.config.IsFailure == nil {
		return true
	}
	return cb.config.IsFailure(err)
}

func (cb *circuitBreaker) State() CircuitState {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.state = Closed
	cb.failures = 0
	cb.successes = 0
}

func (cb *circuitBreaker) Metrics() Metrics {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	return Metrics{
		State:        cb.state,
		FailureCount: cb.failures,
		SuccessCount: cb.successes,
		LastFailure:  cb.lastFailure,
		NextAttempt:  cb.nextAttempt,
	}
}

func (cb *circuitBreaker) recordFailure() {
	cb.failures++
	cb.lastFailure = cb.now()

	switch cb.state {
	case Closed:
		if cb.failures >= cb.config.FailureThreshold {
			cb.trip()
		}
	case HalfOpen:
		cb.trip()
	}
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.nextAttempt = cb.now().Add(cb.config.RecoveryTimeout)
}

func (cb *circuitBreaker) recordSuccess() {
	cb.failures = 0

	if cb.state == HalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = Closed
			cb.successes = 0
		}
	}
}
