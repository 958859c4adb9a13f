package ratesapi

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	converter "go-currency-converter"
)

type mock struct {
	count int32
	delay time.Duration
	err   error
}

func (m *mock) LatestRates(_ context.Context, _ converter.Currency) (Rates, error) {
	atomic.AddInt32(&m.count, 1)
	time.Sleep(m.delay)
	if m.err != nil {
		return nil, m.err
	}
	return Rates{converter.USD: decimal.RequireFromString("0.0114")}, nil
}

func TestOnceService(t *testing.T) {
	var underlyingService mock
	s := NewOnceService(&underlyingService)

	rates, err := s.LatestRates(context.Background(), converter.KGS)
	assert.NoError(t, err)
	assert.Equal(t, "0.0114", rates[converter.USD].String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))

	_, _ = s.LatestRates(context.Background(), converter.KGS)
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))

	_, _ = s.LatestRates(context.Background(), converter.USD)
	assert.Equal(t, int32(2), atomic.LoadInt32(&underlyingService.count), "other base currencies are fetched separately")
}

func TestOnceService_RemembersFailure(t *testing.T) {
	underlyingService := mock{err: errors.New("unavailable")}
	s := NewOnceService(&underlyingService)

	_, err1 := s.LatestRates(context.Background(), converter.KGS)
	_, err2 := s.LatestRates(context.Background(), converter.KGS)

	assert.EqualError(t, err1, "unavailable")
	assert.EqualError(t, err2, "unavailable")
	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count), "no retry")
}

func TestOnceService_Concurrent(t *testing.T) {
	underlyingService := mock{delay: 10 * time.Millisecond}
	s := NewOnceService(&underlyingService)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rates, err := s.LatestRates(context.Background(), converter.KGS)
			assert.NoError(t, err)
			assert.Len(t, rates, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&underlyingService.count))
}

func TestOnceService_WaiterCancelled(t *testing.T) {
	underlyingService := mock{delay: 100 * time.Millisecond}
	s := NewOnceService(&underlyingService)

	go func() { _, _ = s.LatestRates(context.Background(), converter.KGS) }()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := s.LatestRates(ctx, converter.KGS)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLoggingService_LatestRates(t *testing.T) {
	var buf bytes.Buffer
	s := NewLoggingService(log.NewLogfmtLogger(&buf), &mock{})

	_, err := s.LatestRates(context.Background(), converter.KGS)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "method=latest_rates")
	assert.Contains(t, buf.String(), "base=KGS")
	assert.Contains(t, buf.String(), "count=1")
}
