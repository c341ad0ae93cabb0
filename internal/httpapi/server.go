// Package httpapi exposes the notification triggers, the in-app inbox and
// operational endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/events"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/metrics"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/registry"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
)

const maxBodyBytes = 1 << 20

// Inbox is the read side of the in-app notification store.
type Inbox interface {
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error)
	MarkRead(ctx context.Context, id string) error
}

// Check reports the health of one dependency.
type Check func(ctx context.Context) error

// Server wires the HTTP routes.
type Server struct {
	notifier events.Notifier
	handler  *events.Handler
	users    registry.UserDirectory
	inbox    Inbox
	checks   map[string]Check

	// ExposeMetrics mounts /metrics and /status. New enables it.
	ExposeMetrics bool
}

// New builds a server. checks are run by /healthz.
func New(n events.Notifier, users registry.UserDirectory, inbox Inbox, checks map[string]Check) *Server {
	return &Server{
		notifier: n,
		handler:  events.NewHandler(n, users),
		users:    users,
		inbox:    inbox,
		checks:   checks,

		ExposeMetrics: true,
	}
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.health)
	if s.ExposeMetrics {
		r.Handle("/metrics", metrics.PromHandler())
		r.Handle("/status", metrics.JSONHandler())
	}

	r.Route("/notifications", func(r chi.Router) {
		r.Post("/order-confirmation", s.orderConfirmation)
		r.Post("/staff-order-alert", s.staffOrderAlert)
		r.Post("/order-status", s.orderStatus)
		r.Post("/order-note", s.orderNote)
		r.Post("/account-approval", s.accountApproval)
		r.Post("/{id}/read", s.markRead)
	})
	r.Post("/events/{subject}", s.event)
	r.Get("/users/{id}/notifications", s.listNotifications)
	return r
}

type confirmationRequest struct {
	CustomerID      string             `json:"customer_id" validate:"required"`
	Order           domain.Order       `json:"order"`
	Items           []domain.OrderItem `json:"items"`
	DeliveryAddress *domain.Address    `json:"delivery_address,omitempty"`
}

type staffAlertRequest struct {
	Order           domain.Order       `json:"order"`
	Items           []domain.OrderItem `json:"items"`
	CustomerID      string             `json:"customer_id,omitempty"`
	DeliveryAddress *domain.Address    `json:"delivery_address,omitempty"`
}

func (s *Server) orderConfirmation(w http.ResponseWriter, r *http.Request) {
	var req confirmationRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.notifier.SendCustomerOrderConfirmation(r.Context(), req.CustomerID, req.Order, req.Items, req.DeliveryAddress))
}

func (s *Server) staffOrderAlert(w http.ResponseWriter, r *http.Request) {
	var req staffAlertRequest
	if !decode(w, r, &req) {
		return
	}
	customerID := req.CustomerID
	if customerID == "" {
		customerID = req.Order.CustomerID
	}
	writeJSON(w, http.StatusOK, s.notifier.SendStaffOrderAlert(r.Context(), req.Order, req.Items, s.handler.DisplayUser(r.Context(), customerID), req.DeliveryAddress))
}

func (s *Server) orderStatus(w http.ResponseWriter, r *http.Request) {
	var req events.OrderStatusChanged
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.handler.OrderStatusChanged(r.Context(), req))
}

func (s *Server) orderNote(w http.ResponseWriter, r *http.Request) {
	var req events.OrderNoteAdded
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.handler.OrderNoteAdded(r.Context(), req))
}

func (s *Server) accountApproval(w http.ResponseWriter, r *http.Request) {
	var req events.AccountApproved
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.handler.AccountApproved(r.Context(), req))
}

// event accepts the same payloads as the NATS subjects, for publishers that
// cannot reach the broker.
func (s *Server) event(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.handler.Handle(r.Context(), chi.URLParam(r, "subject"), body)
	switch {
	case errors.Is(err, events.ErrUnknownSubject):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusNotImplemented, errors.New("inbox not configured"))
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	recs, err := s.inbox.ListNotifications(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		logging.Get().Error().Err(err).Msg("list notifications failed")
		writeError(w, http.StatusInternalServerError, errors.New("could not load notifications"))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeError(w, http.StatusNotImplemented, errors.New("inbox not configured"))
		return
	}
	err := s.inbox.MarkRead(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		logging.Get().Error().Err(err).Msg("mark read failed")
		writeError(w, http.StatusInternalServerError, errors.New("could not update notification"))
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]string{}
	code := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	writeJSON(w, code, map[string]any{"healthy": code == http.StatusOK, "checks": status})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := events.Validate(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
