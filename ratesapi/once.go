package ratesapi

import (
	"context"
	"sync"

	converter "go-currency-converter"
)

// onceService decorates a ratesapi.Service so the underlying API is asked at most once
// per base currency. The first outcome, success or failure, is remembered and handed
// to every later caller. Concurrent first callers share the single in-flight request.
type onceService struct {
	// next the service being decorated
	next Service

	// lock synchronizes access to calls
	lock  sync.Mutex
	calls map[converter.Currency]*call
}

// call outcome of the one request made for a base currency
type call struct {
	done  chan struct{}
	rates Rates
	err   error
}

// NewOnceService returns a Service that fetches each base currency only once
func NewOnceService(s Service) Service {
	return &onceService{
		next:  s,
		calls: map[converter.Currency]*call{},
	}
}

// LatestRates returns the remembered outcome for base, fetching it on first use
func (s *onceService) LatestRates(ctx context.Context, base converter.Currency) (Rates, error) {
	s.lock.Lock()
	c, ok := s.calls[base]
	if !ok {
		c = &call{done: make(chan struct{})}
		s.calls[base] = c
	}
	s.lock.Unlock()

	if !ok {
		c.rates, c.err = s.next.LatestRates(ctx, base)
		close(c.done)
	}

	select {
	case <-c.done:
		return c.rates, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
