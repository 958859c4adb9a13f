package refresh

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	converter "go-currency-converter"
	"go-currency-converter/ratesapi"
)

type mock struct {
	rates ratesapi.Rates
	err   error
	base  converter.Currency
}

func (m *mock) LatestRates(_ context.Context, base converter.Currency) (ratesapi.Rates, error) {
	m.base = base
	return m.rates, m.err
}

func quotes() ratesapi.Rates {
	return ratesapi.Rates{
		converter.KGS: decimal.NewFromInt(1),
		converter.USD: decimal.RequireFromString("0.0114"),
		converter.EUR: decimal.RequireFromString("0.0098"),
		converter.KZT: decimal.RequireFromString("5.1"),
		converter.RUB: decimal.RequireFromString("0.9"),
		converter.GBP: decimal.RequireFromString("0.0089"),
	}
}

func TestRefresh(t *testing.T) {
	table := converter.NewDefaultTable()
	provider := &mock{rates: quotes()}

	result := Refresh(context.Background(), provider, table)

	require.True(t, result.OK(), "err: %v", result.Err)
	assert.Equal(t, converter.KGS, provider.base)
	assert.Len(t, result.Entries, 4)
	assert.False(t, result.At.IsZero())

	want := map[converter.Currency][2]string{
		converter.USD: {"87.28", "88.16"},
		converter.EUR: {"101.53", "102.55"},
		converter.KZT: {"0.195", "0.197"},
		converter.RUB: {"1.11", "1.12"},
	}
	for code, rates := range want {
		e, err := table.Lookup(code)
		require.NoError(t, err)
		assert.Equal(t, rates[0], e.Buy.String(), "%v buy", code)
		assert.Equal(t, rates[1], e.Sell.String(), "%v sell", code)
	}

	gbp, _ := table.Lookup(converter.GBP)
	assert.Equal(t, "110.5", gbp.Buy.String(), "only reference currencies are refreshed")
}

func TestRefresh_FailureLeavesTableUnchanged(t *testing.T) {
	missingKZT := quotes()
	delete(missingKZT, converter.KZT)

	zeroRUB := quotes()
	zeroRUB[converter.RUB] = decimal.Zero

	huge := quotes()
	huge[converter.USD] = decimal.RequireFromString("1000000")

	tests := []struct {
		name     string
		provider *mock
		wantErr  string
	}{
		{"provider error", &mock{err: errors.New("network down")}, "network down"},
		{"missing currency", &mock{rates: missingKZT}, "missing rate for KZT"},
		{"zero rate", &mock{rates: zeroRUB}, "invalid rate"},
		{"rounds to zero", &mock{rates: huge}, "rounds to zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := converter.NewDefaultTable()
			before := table.Entries()

			var result Result
			assert.NotPanics(t, func() {
				result = Refresh(context.Background(), tt.provider, table)
			})

			assert.False(t, result.OK())
			assert.Contains(t, result.Err.Error(), tt.wantErr)
			assert.Empty(t, result.Entries)
			assert.Equal(t, before, table.Entries())
		})
	}
}

func TestRefresh_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, _ = rw.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	table := converter.NewDefaultTable()
	before := table.Entries()

	result := Refresh(context.Background(), ratesapi.NewService(server.URL, time.Second), table)

	assert.False(t, result.OK())
	assert.Equal(t, before, table.Entries())
}

func TestStart(t *testing.T) {
	table := converter.NewDefaultTable()

	results := Start(context.Background(), &mock{rates: quotes()}, table)

	select {
	case result := <-results:
		assert.True(t, result.OK())
	case <-time.After(time.Second):
		t.Fatal("no result")
	}

	_, open := <-results
	assert.False(t, open, "exactly one result is delivered")

	usd, _ := table.Lookup(converter.USD)
	assert.Equal(t, "87.28", usd.Buy.String())
}
