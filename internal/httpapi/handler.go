// Package httpapi exposes the scheduling service over a JSON REST API.
// Identity is an external collaborator: the authenticated owner arrives in
// the X-Owner-ID header, placed there by whatever fronts this service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/samber/mo"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/ics"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/recurrence"
	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/scheduler"
)

// OwnerHeader carries the authenticated owner's ID.
const OwnerHeader = "X-Owner-ID"

const mimeTypeCalendar = "text/calendar; charset=utf-8"

type ctxKey int

const ownerKey ctxKey = iota

// Handler holds the HTTP handlers for the calendar API.
type Handler struct {
	svc    *scheduler.Service
	logger *slog.Logger
}

// NewRouter builds the API router around svc.
func NewRouter(svc *scheduler.Service, logger *slog.Logger) http.Handler {
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.accessLog)

	r.Get("/health", handleHealth)

	r.Route("/api/v1/events", func(r chi.Router) {
		r.Use(requireOwner)
		r.Get("/", h.listOccurrences)
		r.Post("/", h.createEvent)
		r.Post("/import", h.importEvent)
		r.Get("/{id}", h.getEvent)
		r.Get("/{id}/ics", h.exportEvent)
		r.Put("/{id}", h.updateEvent)
		r.Delete("/{id}", h.deleteEvent)
	})

	return r
}

// requireOwner rejects requests without an owner identity and threads the
// owner ID through the request context.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(OwnerHeader)
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+OwnerHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey).(string)
	return owner
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error              string `json:"error"`
	ConflictingEventID string `json:"conflictingEventId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps the scheduling error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure and surfaces
// as a bare 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var (
		validation *scheduler.ValidationError
		rule       *recurrence.InvalidRuleError
		conflict   *scheduler.ConflictError
		notFound   *scheduler.NotFoundError
		recurring  *scheduler.RecurringMutationError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &rule):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:              err.Error(),
			ConflictingEventID: conflict.Conflicting.ID,
		})
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &recurring):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createEvent handles POST /api/v1/events
func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var draft scheduler.Draft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.Create(r.Context(), ownerFrom(r), draft)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// getEvent handles GET /api/v1/events/{id}
func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Get(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

type updateRequest struct {
	Title          *string      `json:"title"`
	Description    *string      `json:"description"`
	Start          *time.Time   `json:"start"`
	End            *time.Time   `json:"end"`
	RecurrenceRule *string      `json:"recurrenceRule"`
	ExceptionDates *[]time.Time `json:"exceptionDates"`
}

func optFromPtr[T any](p *T) mo.Option[T] {
	if p == nil {
		return mo.None[T]()
	}
	return mo.Some(*p)
}

func (req updateRequest) patch() scheduler.Patch {
	return scheduler.Patch{
		Title:          optFromPtr(req.Title),
		Description:    optFromPtr(req.Description),
		Start:          optFromPtr(req.Start),
		End:            optFromPtr(req.End),
		RecurrenceRule: optFromPtr(req.RecurrenceRule),
		ExceptionDates: optFromPtr(req.ExceptionDates),
	}
}

// updateEvent handles PUT /api/v1/events/{id}
func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.Update(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// deleteEvent handles DELETE /api/v1/events/{id}
func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), ownerFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listOccurrences handles GET /api/v1/events?start=...&end=...
// Bounds are RFC 3339; omitting both selects the default horizon.
func (h *Handler) listOccurrences(w http.ResponseWriter, r *http.Request) {
	windowStart, err := parseTimeParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	windowEnd, err := parseTimeParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	occurrences, err := h.svc.ListOccurrences(r.Context(), ownerFrom(r), windowStart, windowEnd)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if occurrences == nil {
		occurrences = []scheduler.Occurrence{}
	}
	writeJSON(w, http.StatusOK, occurrences)
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be RFC 3339")
	}
	return t, nil
}

// exportEvent handles GET /api/v1/events/{id}/ics
func (h *Handler) exportEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Get(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	document, err := ics.Encode(event)
	if err != nil {
		h.logger.Error("ics export failed", "event_id", event.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", mimeTypeCalendar)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(document))
}

// importEvent handles POST /api/v1/events/import with a text/calendar body.
// The VEVENT becomes a draft and goes through the same validation and
// conflict checks as a JSON create.
func (h *Handler) importEvent(w http.ResponseWriter, r *http.Request) {
	document, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	imported, err := ics.Decode(string(document))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid icalendar body: "+err.Error())
		return
	}

	draft := scheduler.Draft{
		Title:          imported.Title,
		Description:    imported.Description,
		Start:          imported.Start,
		End:            imported.End,
		IsRecurring:    imported.IsRecurring,
		RecurrenceRule: imported.RecurrenceRule,
		ExceptionDates: imported.ExceptionDates,
	}

	event, err := h.svc.Create(r.Context(), ownerFrom(r), draft)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}
