// Package ratesapi fetches the latest exchange rates from exchangerate-api.com.
package ratesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	converter "go-currency-converter"
)

const ApiUrlBase = "https://api.exchangerate-api.com/v4/latest"

// Rates units of each currency per one unit of the requested base
type Rates map[converter.Currency]decimal.Decimal

// Service wraps the exchange rate REST API
type Service interface {
	LatestRates(ctx context.Context, base converter.Currency) (Rates, error)
}

// service exchange rate API
type service struct {
	// url base API url
	url string

	// client for HTTP requests
	client http.Client
}

// NewService constructs a valid Service. An empty url selects ApiUrlBase,
// a zero timeout leaves requests bounded only by their context.
func NewService(url string, timeout time.Duration) Service {
	if url == "" {
		url = ApiUrlBase
	}
	return &service{
		url: strings.TrimSuffix(url, "/"),
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// LatestRates loads the latest rates of every currency against base.
func (s *service) LatestRates(ctx context.Context, base converter.Currency) (Rates, error) {
	type Response struct {
		Base  string
		Date  string
		Rates map[string]decimal.Decimal // maps currency codes to rates
	}

	url := fmt.Sprintf("%v/%v", s.url, base)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 512))
		return nil, fmt.Errorf("http status %d: %s", httpResponse.StatusCode, strings.TrimSpace(string(body)))
	}

	var response Response
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	if len(response.Rates) == 0 {
		return nil, fmt.Errorf("no rates for [%v]", base)
	}

	rates := Rates{}
	for k, v := range response.Rates {
		rates[converter.Currency(k)] = v
	}

	return rates, nil
}
