package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/domain"
	httpinfra "github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/infra/http"
	"github.com/Kartik-Limbachiya/agentic-crm-dashboard/internal/usecase/lifecycle"
)

const maxBodyBytes = 1 << 20

// LogTail отдаёт ленту статуса с позиции since и позицию следующего запроса.
type LogTail interface {
	Tail(since int) ([]domain.LogEntry, int)
}

// Handler — HTTP API дашборда кампаний.
type Handler struct {
	ctrl  *lifecycle.Controller
	logs  LogTail
	clock domain.Clock
	log   zerolog.Logger
}

// NewHandler создаёт обработчики.
func NewHandler(ctrl *lifecycle.Controller, logs LogTail, clock domain.Clock, logger zerolog.Logger) *Handler {
	return &Handler{ctrl: ctrl, logs: logs, clock: clock, log: logger}
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/campaign", h.snapshot)
		r.Post("/campaign/brief", h.submitBrief)
		r.Patch("/campaign/plan/{index}", h.editItem)
		r.Post("/campaign/plan/{index}/rewrite", h.rewrite)
		r.Post("/campaign/audience/analyze", h.analyzeAudience)
		r.Post("/campaign/approve", h.approve)
		r.Get("/campaign/report", h.exportReport)
		r.Get("/campaign/calendar", h.calendar)
		r.Get("/history", h.history)
		r.Post("/history/{id}/load", h.loadHistory)
		r.Get("/logs", h.tailLogs)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) submitBrief(w http.ResponseWriter, r *http.Request) {
	var brief domain.Brief
	if !decodeBody(w, r, &brief) {
		return
	}
	campaign, err := h.ctrl.SubmitBrief(r.Context(), brief)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, campaign)
}

func (h *Handler) editItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	var patch domain.ItemPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	item, err := h.ctrl.EditItem(r.Context(), index, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) rewrite(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	item, err := h.ctrl.RequestAIRewrite(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, item)
}

type analyzeRequest struct {
	Audience string `json:"audience"`
}

func (h *Handler) analyzeAudience(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	insights, err := h.ctrl.AnalyzeAudience(r.Context(), req.Audience)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]string{"insights": insights})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.StartExecution(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusAccepted, h.ctrl.Snapshot())
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	filename, content, err := h.ctrl.ExportReport()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (h *Handler) calendar(w http.ResponseWriter, r *http.Request) {
	month := h.clock.Now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, month.Location())
		if err != nil {
			httpinfra.WriteError(w, r, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		month = parsed
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
		"month":  month.Format("2006-01"),
		"events": h.ctrl.Calendar(month),
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ctrl.History(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *Handler) loadHistory(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ctrl.LoadFromHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) tailLogs(w http.ResponseWriter, r *http.Request) {
	since := 0
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpinfra.WriteError(w, r, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}
	entries, next := h.logs.Tail(since)
	httpinfra.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries, "next": next})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Str("path", r.URL.Path).Msg("httpapi: запрос завершился ошибкой")
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	httpinfra.WriteError(w, r, status, msg)
}

func statusFor(err error) int {
	var (
		validation *domain.ValidationError
		index      *domain.IndexError
		external   *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &index),
		errors.Is(err, domain.ErrNoCampaign),
		errors.Is(err, domain.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRewriteInProgress):
		return http.StatusConflict
	case errors.As(err, &external):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// contentDisposition формирует заголовок вложения; имя экранируется по RFC 2045/2231.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpinfra.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpinfra.WriteError(w, r, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return index, true
}
