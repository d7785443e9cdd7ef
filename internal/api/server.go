// Package api provides the HTTP surface of the escrow ledger: read
// endpoints for items, config and reputation, role-gated mutating
// endpoints for the deal flow, and the deposit entry point that
// exercises the value ledger's transfer-and-call path.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/simpledeal-network/simpledeal/internal/domain"
	"github.com/simpledeal-network/simpledeal/internal/hashtag"
	"github.com/simpledeal-network/simpledeal/internal/infra/sqlite"
	"github.com/simpledeal-network/simpledeal/internal/infra/token"
)

// actingHeader names the request header carrying the acting ledger
// address. There is no signature scheme here; authenticating principals
// is the deployment's concern (see the superseded signature variants).
const actingHeader = "X-Acting-Address"

// Server is the escrow ledger HTTP API.
type Server struct {
	tag            *hashtag.Hashtag
	ledger         *token.Ledger  // nil outside local/sim mode
	contract       domain.Address // the hashtag's account on the ledger
	events         *sqlite.DB     // nil when running without persistence
	log            zerolog.Logger
	metricsEnabled bool
}

// NewServer creates the API around one hashtag instance.
func NewServer(tag *hashtag.Hashtag, log zerolog.Logger) *Server {
	return &Server{tag: tag, log: log}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetLedger attaches the local value ledger and the contract's account
// address, enabling the /api/deposit endpoint.
func (s *Server) SetLedger(l *token.Ledger, contract domain.Address) {
	s.ledger = l
	s.contract = contract
}

// SetEventDB attaches the change-record log for per-item event reads.
func (s *Server) SetEventDB(db *sqlite.DB) { s.events = db }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Post("/config/payout-address", s.handleSetPayoutAddress)
		r.Post("/config/fee", s.handleSetFee)
		r.Post("/config/metadata", s.handleSetMetadata)

		r.Get("/items", s.handleListItems)
		r.Get("/items/{id}", s.handleGetItem)
		r.Get("/items/{id}/events", s.handleItemEvents)
		r.Post("/items/{id}/reply", s.handleReply)
		r.Post("/items/{id}/select", s.handleSelect)
		r.Post("/items/{id}/payout", s.handlePayout)
		r.Post("/items/{id}/dispute", s.handleDispute)
		r.Post("/items/{id}/resolve", s.handleResolve)
		r.Post("/items/{id}/cancel", s.handleCancel)

		r.Get("/reputation/{address}", s.handleReputation)

		r.Post("/deposit", s.handleDeposit)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requestLogger logs each request at debug level with its status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// actingAddress extracts the acting principal from the request.
func actingAddress(r *http.Request) domain.Address {
	return domain.Address(r.Header.Get(actingHeader))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto an HTTP status and writes the
// typed rejection.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]interface{}{
		"error": map[string]interface{}{
			"message": err.Error(),
			"kind":    kindFor(err),
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrFractionOutOfRange),
		errors.Is(err, domain.ErrOverflow),
		errors.Is(err, domain.ErrBadPayload),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func kindFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, domain.ErrAmountMismatch):
		return "AMOUNT_MISMATCH"
	case errors.Is(err, domain.ErrFractionOutOfRange):
		return "RANGE_ERROR"
	case errors.Is(err, domain.ErrOverflow):
		return "ARITHMETIC_OVERFLOW"
	case errors.Is(err, domain.ErrBadPayload):
		return "BAD_PAYLOAD"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	default:
		return "INTERNAL"
	}
}
