package main

import (
	"context"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	converter "go-currency-converter"
	"go-currency-converter/config"
	"go-currency-converter/exchange"
	"go-currency-converter/http"
	"go-currency-converter/ratesapi"
	"go-currency-converter/refresh"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.Load()
	if err != nil {
		level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}
	logger = level.NewFilter(logger, allowed(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table := converter.NewDefaultTable()

	ratesService := ratesapi.NewService(cfg.RatesAPIURL, cfg.HTTPTimeout)
	ratesService = ratesapi.NewLoggingService(log.With(logger, "component", "rates_api"), ratesService)
	ratesService = ratesapi.NewOnceService(ratesService)

	convertService := exchange.NewService(table)
	convertService = exchange.NewLoggingService(log.With(logger, "component", "convert"), convertService)

	handler := http.NewServer(convertService, table, log.With(logger, "component", "http"))

	if cfg.RefreshOnStart {
		results := refresh.Start(ctx, ratesService, table)
		go func() {
			result := <-results
			if !result.OK() {
				level.Warn(logger).Log("msg", "using default rates", "err", result.Err)
				return
			}
			level.Info(logger).Log("msg", "rates refreshed", "currencies", len(result.Entries), "at", result.At)
			handler.Refreshed(result)
		}()
	}

	server := &nhttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	level.Info(logger).Log("msg", "listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != nhttp.ErrServerClosed {
		level.Error(logger).Log("msg", "server failed", "err", err)
		os.Exit(1)
	}
}

// allowed maps a configured log level onto a go-kit level filter
func allowed(logLevel string) level.Option {
	switch logLevel {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
