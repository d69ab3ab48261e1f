package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/model"
	"github.com/android254/droidconke-feeds/internal/redis"
	"github.com/android254/droidconke-feeds/internal/repository"
	"github.com/android254/droidconke-feeds/internal/service"
)

type ConferenceHandler struct {
	ConferenceService service.ConferenceServiceInterface
	// Ping checks the cache backend for /health. Defaults to redis.Ping.
	Ping func(ctx context.Context, timeout time.Duration) error
}

func NewConferenceHandler(svc ...service.ConferenceServiceInterface) *ConferenceHandler {
	var conferenceService service.ConferenceServiceInterface
	if len(svc) > 0 && svc[0] != nil {
		conferenceService = svc[0]
	} else {
		conferenceService = service.NewConferenceService()
	}
	return &ConferenceHandler{
		ConferenceService: conferenceService,
		Ping:              redis.Ping,
	}
}

// Register mounts every route of the handler on mux.
func (h *ConferenceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/sponsors", h.HandleSponsors)
	mux.HandleFunc("/sessions", h.HandleSessions)
	mux.HandleFunc("/speakers", h.HandleSpeakers)
	mux.HandleFunc("/health", h.HandleHealth)
}

func (h *ConferenceHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *ConferenceHandler) allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	h.writeJSONResponse(w, http.StatusMethodNotAllowed, model.ErrorResponse("Method not allowed", "Error"))
	return false
}

func (h *ConferenceHandler) writeResult(w http.ResponseWriter, resource string, data any, err error) {
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, repository.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		config.GetLogger().Errorw("Failed to fetch "+resource, "error", err)
		h.writeJSONResponse(w, status, model.ErrorResponse("Failed to fetch "+resource, "Error"))
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.SuccessResponse(data))
}

func (h *ConferenceHandler) HandleSponsors(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	sponsors, err := h.ConferenceService.GetSponsors(r.Context())
	h.writeResult(w, "sponsors", sponsors, err)
}

func (h *ConferenceHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	sessions, err := h.ConferenceService.GetSessions(r.Context())
	h.writeResult(w, "sessions", sessions, err)
}

func (h *ConferenceHandler) HandleSpeakers(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	speakers, err := h.ConferenceService.GetSpeakers(r.Context())
	h.writeResult(w, "speakers", speakers, err)
}

func (h *ConferenceHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	if err := h.Ping(r.Context(), 2*time.Second); err != nil {
		config.GetLogger().Errorw("Health check failed", "error", err)
		h.writeJSONResponse(w, http.StatusServiceUnavailable, model.ErrorResponse("Cache unavailable", "Error"))
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{Message: "OK"})
}
