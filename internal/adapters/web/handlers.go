package web

import (
	"errors"
	"fmt"
	"net/http"

	"dukaan-guru/internal/app"
	"dukaan-guru/internal/core"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	logger *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	r.Get("/api/setup", h.getSetup)
	r.Post("/api/setup", h.completeSetup)

	r.Post("/api/chat/message", h.chatMessage)
	r.Get("/api/chat/log", h.chatLog)

	r.Get("/api/ledger", h.ledger)

	r.Get("/api/report", h.report)
	r.Get("/api/report/pdf", h.reportPDF)
	r.Post("/api/report/share", h.shareReport)

	r.Get("/api/waitlist", h.waitlistStatus)
	r.Post("/api/waitlist", h.joinWaitlist)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// ── Setup ─────────────────────────────────────────────────────────────────────

type setupRequest struct {
	Name  string `json:"name"`
	Stock string `json:"stock"`
}

func (h *Handler) getSetup(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Setup(r.Context())
	if errors.Is(err, app.ErrNotSetUp) {
		writeError(w, r, err.Error(), "NOT_SET_UP", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec)
}

func (h *Handler) completeSetup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.svc.CompleteSetup(r.Context(), req.Name, req.Stock)
	if errors.Is(err, app.ErrEmptyShopName) {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

// ── Chat ──────────────────────────────────────────────────────────────────────

type chatMessageRequest struct {
	Text string `json:"text"`
}

// chatMessage runs one chat turn. Interpreter failures come back as a
// successful turn carrying the apology message; only submission problems
// (blank text, a turn already in flight) are HTTP errors.
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.SubmitUtterance(r.Context(), req.Text)
	switch {
	case errors.Is(err, app.ErrEmptyUtterance):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	case errors.Is(err, core.ErrTurnInProgress):
		writeError(w, r, err.Error(), "TURN_IN_PROGRESS", http.StatusConflict)
		return
	case err != nil:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) chatLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.svc.ChatLog(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"messages": log})
}

// ── Ledger & report ───────────────────────────────────────────────────────────

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Ledger(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rep)
}

func (h *Handler) reportPDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ReportPDF(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "EXPORT_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="hisab-kitab.pdf"`)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	_, _ = w.Write(doc)
}

type shareRequest struct {
	To string `json:"to"`
}

func (h *Handler) shareReport(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(w, r, "to is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	err := h.svc.ShareReport(r.Context(), req.To)
	switch {
	case errors.Is(err, app.ErrShareDisabled):
		writeError(w, r, err.Error(), "SHARE_DISABLED", http.StatusServiceUnavailable)
		return
	case err != nil:
		writeError(w, r, err.Error(), "SHARE_ERROR", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// ── Waitlist ──────────────────────────────────────────────────────────────────

type waitlistRequest struct {
	ShopName string `json:"shop_name"`
	Phone    string `json:"phone"`
}

func (h *Handler) waitlistStatus(w http.ResponseWriter, r *http.Request) {
	joined, err := h.svc.WaitlistJoined(r.Context())
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"joined": joined})
}

func (h *Handler) joinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.JoinWaitlist(r.Context(), req.ShopName, req.Phone)
	switch {
	case errors.Is(err, app.ErrInvalidPhone):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	case err != nil:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}
