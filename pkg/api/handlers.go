package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ap2stellar/gateway/pkg/errs"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/models"
)

// errorBody is the envelope returned when no confirmation can be built,
// for example when the request body never parsed into an intent.
type errorBody struct {
	Status string             `json:"status"`
	Error  models.ErrorDetail `json:"error"`
}

// dataBody wraps successful non-confirmation responses.
type dataBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// handlePayment accepts a signed payment intent and settles it synchronously.
// Business failures still produce a confirmation body so callers and their
// callbacks see the same shape either way.
func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var pi models.PaymentIntent
	if err := json.NewDecoder(r.Body).Decode(&pi); err != nil {
		s.writeError(w, http.StatusBadRequest, errs.New(errs.KindValidation, "request body is not a valid payment intent"))
		return
	}

	conf, err := s.payments.Process(r.Context(), &pi)
	if err != nil {
		kind := errs.KindOf(err)
		if conf == nil || kind == errs.KindInternal {
			s.writeError(w, kind.HTTPStatus(), err)
			return
		}
		s.writeJSON(w, kind.HTTPStatus(), conf)
		return
	}
	s.writeJSON(w, http.StatusOK, conf)
}

// handleStatus resolves an intent id to its settlement outcome.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	intentID := chi.URLParam(r, "intentID")
	if intentID == "" {
		s.writeError(w, http.StatusBadRequest, errs.New(errs.KindValidation, "intent id is required"))
		return
	}

	conf, err := s.status.Resolve(r.Context(), intentID)
	if err != nil {
		s.writeError(w, errs.KindOf(err).HTTPStatus(), err)
		return
	}
	s.writeJSON(w, http.StatusOK, conf)
}

// handleQuote estimates a conversion between two supported currencies.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sourceCode := strings.TrimSpace(q.Get("source_currency"))
	destCode := strings.TrimSpace(q.Get("destination_currency"))
	sourceAmount := strings.TrimSpace(q.Get("source_amount"))
	if sourceCode == "" || destCode == "" || sourceAmount == "" {
		s.writeError(w, http.StatusBadRequest,
			errs.New(errs.KindValidation, "source_currency, destination_currency and source_amount are required"))
		return
	}

	amt, err := decimal.NewFromString(sourceAmount)
	if err != nil || amt.Sign() <= 0 {
		s.writeError(w, http.StatusBadRequest, errs.New(errs.KindValidation, "source_amount must be a positive decimal"))
		return
	}

	source, err := s.resolver.Resolve(sourceCode)
	if err != nil {
		s.writeError(w, errs.KindOf(err).HTTPStatus(), err)
		return
	}
	destination, err := s.resolver.Resolve(destCode)
	if err != nil {
		s.writeError(w, errs.KindOf(err).HTTPStatus(), err)
		return
	}

	quote, err := s.quoter.Quote(r.Context(), source, destination, sourceAmount, q.Get("destination_address"), s.baseFee)
	if err != nil {
		s.writeError(w, errs.KindOf(err).HTTPStatus(), err)
		return
	}
	s.writeJSON(w, http.StatusOK, dataBody{Status: "success", Data: quote})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.ErrorWithComponent(logger.API, "failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	kind := errs.KindOf(err)
	s.writeJSON(w, status, errorBody{
		Status: "error",
		Error: models.ErrorDetail{
			Code:    kind.WireCode(),
			Message: errs.PublicMessage(err),
		},
	})
}
