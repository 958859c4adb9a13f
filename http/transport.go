package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	converter "go-currency-converter"
	"go-currency-converter/display"
	"go-currency-converter/exchange"
	"go-currency-converter/widget"
)

// Server dependencies for HTTP Server functions
type Server struct {
	Service exchange.Service
	Table   widget.Table
	Logger  log.Logger

	router   *mux.Router
	validate *validator.Validate
	upgrader websocket.Upgrader

	lock     sync.Mutex
	sessions map[*session]struct{}
}

func NewServer(s exchange.Service, table widget.Table, logger log.Logger) *Server {
	server := &Server{
		Service:  s,
		Table:    table,
		Logger:   logger,
		router:   mux.NewRouter(),
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[*session]struct{}),
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("/api/convert", s.convert()).Methods(http.MethodPost)
	s.router.Handle("/api/rates", s.rates()).Methods(http.MethodGet)
	s.router.Handle("/api/currencies", s.currencies()).Methods(http.MethodGet)
	s.router.Handle("/ws/widget", s.widgetSession()).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// amountText amount as typed by a user; JSON strings and numbers are both accepted
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		*a = amountText(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(b, &number); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}
	*a = amountText(number.String())
	return nil
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency converter.Currency `json:"fromCurrency" validate:"required,len=3,alpha,uppercase"`
		ToCurrency   converter.Currency `json:"toCurrency" validate:"required,len=3,alpha,uppercase"`
		Amount       amountText         `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange decimal.Decimal `json:"exchange"`
		Amount   decimal.Decimal `json:"amount"`
		Original decimal.Decimal `json:"original"`
		Display  string          `json:"display"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		bytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			s.respondError(rw, http.StatusBadRequest, "invalid request")
			return
		}

		var request request
		err = json.Unmarshal(bytes, &request)
		if err != nil {
			s.respondError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		if err := s.validate.Struct(request); err != nil {
			s.respondError(rw, http.StatusBadRequest, validationMessage(err))
			return
		}

		original := display.ParseAmount(string(request.Amount))
		result, err := s.Service.Convert(r.Context(), original, request.FromCurrency, request.ToCurrency)
		if errors.Is(err, converter.ErrUnknownCurrency) {
			s.respondError(rw, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			s.respondError(rw, http.StatusInternalServerError, "failed conversion")
			return
		}

		s.respondJSON(rw, http.StatusOK, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: original,
			Display:  result.Display,
		})
	}
}

// rates produces HTTP handler listing the rate table
func (s *Server) rates() http.HandlerFunc {

	type rate struct {
		Code converter.Currency `json:"code"`
		Name string             `json:"name"`
		Buy  decimal.Decimal    `json:"buy"`
		Sell decimal.Decimal    `json:"sell"`
	}

	type response struct {
		Base      converter.Currency    `json:"base"`
		Timestamp string                `json:"timestamp"`
		Rates     []rate                `json:"rates"`
		Reference []widget.ReferenceRow `json:"reference"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		entries := s.Table.Entries()
		rates := make([]rate, 0, len(entries))
		for _, e := range entries {
			rates = append(rates, rate{Code: e.Code, Name: e.Name, Buy: e.Buy, Sell: e.Sell})
		}
		s.respondJSON(rw, http.StatusOK, response{
			Base:      s.Table.Base(),
			Timestamp: widget.Timestamp(time.Now()),
			Rates:     rates,
			Reference: widget.Reference(entries),
		})
	}
}

// currencies produces HTTP handler listing the currencies offered by the picker
func (s *Server) currencies() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.respondJSON(rw, http.StatusOK, map[string]interface{}{
			"currencies": widget.Choices(s.Table.Entries(), ""),
		})
	}
}

func (s *Server) respondJSON(rw http.ResponseWriter, status int, data interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(data); err != nil {
		s.Logger.Log("msg", "json encode failed", "err", err)
	}
}

func (s *Server) respondError(rw http.ResponseWriter, status int, message string) {
	s.respondJSON(rw, status, map[string]string{"error": message})
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "invalid request"
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed validation '%s'", e.Field(), e.Tag()))
	}
	return "validation failed: " + strings.Join(messages, "; ")
}
