package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/status"
)

var _ Cache = (*Breaker)(nil)

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Breaker stops calling an unhealthy cache. After maxFailures consecutive
// failures it opens and every call returns status.ErrCircuitOpen until timeout
// has passed. Then a single probe is let through: success closes the breaker,
// failure opens it again. Cache misses are not failures.
type Breaker struct {
	next        Cache
	maxFailures uint32
	timeout     time.Duration
	now         func() time.Time

	mutex    sync.Mutex
	state    State
	failures uint32
	probing  bool
	expiry   time.Time
}

func NewBreaker(next Cache, maxFailures uint32, timeout time.Duration) *Breaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	return &Breaker{
		next:        next,
		maxFailures: maxFailures,
		timeout:     timeout,
		now:         time.Now,
		state:       StateClosed,
	}
}

func (b *Breaker) Get(ctx context.Context, key string) (*ipsqr.Result, error) {
	if err := b.beforeRequest(); err != nil {
		return nil, err
	}
	res, err := b.next.Get(ctx, key)
	b.afterRequest(err == nil || errors.Is(err, status.ErrCacheMiss))
	return res, err
}

func (b *Breaker) Set(ctx context.Context, key string, res *ipsqr.Result) error {
	if err := b.beforeRequest(); err != nil {
		return err
	}
	err := b.next.Set(ctx, key, res)
	b.afterRequest(err == nil)
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.currentState()
}

func (b *Breaker) beforeRequest() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.currentState() {
	case StateOpen:
		return status.ErrCircuitOpen
	case StateHalfOpen:
		if b.probing {
			return status.ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) afterRequest(success bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	state := b.currentState()
	b.probing = false

	if success {
		b.failures = 0
		b.state = StateClosed
		return
	}

	b.failures++
	if state == StateHalfOpen || b.failures >= b.maxFailures {
		b.state = StateOpen
		b.expiry = b.now().Add(b.timeout)
	}
}

// currentState moves an expired open breaker to half-open. Callers hold the mutex.
func (b *Breaker) currentState() State {
	if b.state == StateOpen && !b.now().Before(b.expiry) {
		b.state = StateHalfOpen
		b.probing = false
	}
	return b.state
}
