// Package carrier asks the host telephony service which network country the
// device is attached to.
package carrier

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/metrics"
)

var (
	ErrNoHealthy = errors.New("no healthy carrier providers")
	ErrNoAcquire = errors.New("carrier provider not acquired")
	ErrNoRegion  = errors.New("carrier region unavailable")
	ErrEmptyCode = errors.New("carrier provider returned no country")
)

// Locator spreads lookups over the healthy providers in round-robin order
// and answers with the static fallback once every attempt has failed.
type Locator struct {
	providers []Provider
	rr        atomic.Uint64
	attempts  int
	fallback  string
	log       *zap.Logger
}

func NewLocator(providers []Provider, attempts int, fallback string, log *zap.Logger) *Locator {
	if attempts < 1 {
		attempts = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{providers: providers, attempts: attempts, fallback: fallback, log: log}
}

func (l *Locator) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(l.providers))
	for _, p := range l.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}
	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}
	x := l.rr.Add(1)
	return healthy[int((x-1)%uint64(len(healthy)))], nil
}

func (l *Locator) tryOnce(ctx context.Context) (string, error) {
	p, err := l.selectProvider()
	if err != nil {
		return "", err
	}
	if !p.Acquire() {
		return "", ErrNoAcquire
	}
	code, err := p.RegionCode(ctx)
	if err != nil {
		l.log.Warn("carrier lookup failed", zap.String("provider", p.Name()), zap.Error(err))
		return "", err
	}
	return code, nil
}

// RegionCode returns the network country reported by a provider, or the
// fallback. ErrNoRegion wraps the last failure when there is no fallback.
func (l *Locator) RegionCode(ctx context.Context) (string, error) {
	var last error
	for i := 0; i < l.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := l.tryOnce(ctx)
		if err == nil {
			metrics.CarrierLookups.WithLabelValues("provider").Inc()
			return code, nil
		}
		last = err
	}

	if l.fallback != "" {
		metrics.CarrierLookups.WithLabelValues("fallback").Inc()
		return l.fallback, nil
	}
	metrics.CarrierLookups.WithLabelValues("failed").Inc()
	if last == nil {
		last = ErrNoHealthy
	}
	return "", errors.Join(ErrNoRegion, last)
}
