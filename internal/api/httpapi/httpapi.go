// Package httpapi exposes the trigger surface over HTTP: session lifecycle,
// play and kill mutations, read views, and the websocket display feed.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duelboard/duelboard/internal/service"
	"github.com/duelboard/duelboard/internal/tracker"
)

// Subscriber registers a websocket connection for scope display updates.
type Subscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, scope string) error
}

// Handler serves the trigger API over a service instance.
type Handler struct {
	svc *service.Service
	hub Subscriber
}

// New builds the API handler. hub may be nil for deployments without a
// live display feed.
func New(svc *service.Service, hub Subscriber) *Handler {
	return &Handler{svc: svc, hub: hub}
}

// Router assembles the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/sessions/{scope}", func(r chi.Router) {
		r.Post("/", h.startSession)
		r.Post("/plays", h.applyPlay)
		r.Post("/kills", h.adjustKills)
		r.Post("/display", h.bindDisplay)
		r.Get("/remaining", h.remaining)
		r.Get("/overview", h.overview)
		r.Get("/players", h.playerTokens)
		r.Get("/choices", h.operatorChoices)
		r.Get("/ws", h.subscribe)
	})

	return r
}

type startRequest struct {
	OwnerID string `json:"owner_id"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type startResponse struct {
	Scope     string `json:"scope"`
	SessionID string `json:"session_id"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Player1 == "" || req.Player2 == "" {
		writeError(w, http.StatusBadRequest, "both player names are required")
		return
	}

	scope := chi.URLParam(r, "scope")
	sess := h.svc.StartSession(r.Context(), scope, req.OwnerID, req.Player1, req.Player2)

	sess.Lock()
	resp := startResponse{
		Scope:     sess.Key,
		SessionID: sess.ID,
		Player1:   sess.Participant(tracker.SlotP1).Name(),
		Player2:   sess.Participant(tracker.SlotP2).Name(),
	}
	sess.Unlock()
	writeJSON(w, http.StatusCreated, resp)
}

type playRequest struct {
	Player   string `json:"player"`
	Operator string `json:"operator"`
}

type playResponse struct {
	Outcome string `json:"outcome"`
}

func (h *Handler) applyPlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := chi.URLParam(r, "scope")
	outcome, err := h.svc.ApplyPlay(r.Context(), scope, req.Player, req.Operator)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	switch outcome {
	case tracker.OutcomeAlreadyPlayed:
		status = http.StatusConflict
	case tracker.OutcomeUnknownOperator:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, playResponse{Outcome: outcome.String()})
}

type killsRequest struct {
	Player string `json:"player"`
	Delta  int    `json:"delta"`
}

type killsResponse struct {
	Kills int `json:"kills"`
}

func (h *Handler) adjustKills(w http.ResponseWriter, r *http.Request) {
	var req killsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := chi.URLParam(r, "scope")
	kills, err := h.svc.AdjustKills(r.Context(), scope, req.Player, req.Delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, killsResponse{Kills: kills})
}

type displayRequest struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (h *Handler) bindDisplay(w http.ResponseWriter, r *http.Request) {
	var req displayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := chi.URLParam(r, "scope")
	if err := h.svc.BindDisplay(r.Context(), scope, req.ChannelID, req.MessageID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remaining(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	view, err := h.svc.Remaining(r.Context(), scope, r.URL.Query().Get("player"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	view, err := h.svc.Overview(r.Context(), scope)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) playerTokens(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	writeJSON(w, http.StatusOK, map[string][]string{
		"players": h.svc.PlayerTokens(scope),
	})
}

func (h *Handler) operatorChoices(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")
	q := r.URL.Query()
	choices := h.svc.OperatorChoices(scope, q.Get("player"), q.Get("query"))
	writeJSON(w, http.StatusOK, map[string][]string{
		"operators": choices,
	})
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusNotImplemented, "display feed disabled")
		return
	}
	scope := chi.URLParam(r, "scope")
	if err := h.hub.Subscribe(w, r, scope); err != nil {
		// Upgrade failures already wrote a response.
		log.Printf("ws subscribe failed scope=%s err=%v", scope, err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnknownPlayer):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response err=%v", err)
	}
}
