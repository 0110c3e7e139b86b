package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mindtype-app/mindtype-server/internal/api"
	"github.com/mindtype-app/mindtype-server/internal/challenge"
	"github.com/mindtype-app/mindtype-server/internal/mood"
	"github.com/mindtype-app/mindtype-server/internal/relationship"
)

// Handler exposes the chat pipeline and its read endpoints over HTTP.
type Handler struct {
	chat       *Service
	rels       *relationship.Service
	moods      *mood.Service
	challenges *challenge.Service
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewHandler(chat *Service, rels *relationship.Service, moods *mood.Service, challenges *challenge.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chat:       chat,
		rels:       rels,
		moods:      moods,
		challenges: challenges,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Chat handles POST /api/chat for both solo and group rounds.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrMissingChatFields)
		return
	}
	if req.DeviceID == "" {
		req.DeviceID = "default"
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.ErrMissingChatFields)
		return
	}

	if req.IsGroupChat && len(req.Agents) > 1 {
		resp, err := h.chat.Group(r.Context(), req)
		if err != nil {
			h.logger.Error("group chat failed", "device_id", req.DeviceID, "error", err)
			api.HandleError(w, api.ErrCompletionFailed)
			return
		}
		api.JSON(w, http.StatusOK, resp)
		return
	}

	resp, err := h.chat.Solo(r.Context(), req)
	if err != nil {
		h.logger.Error("solo chat failed", "device_id", req.DeviceID, "error", err)
		api.HandleError(w, api.ErrCompletionFailed)
		return
	}
	api.JSON(w, http.StatusOK, resp)
}

// GetRelationship handles GET /api/relationship/{deviceID}/{companionType}.
func (h *Handler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	companionType := chi.URLParam(r, "companionType")

	snap, err := h.rels.Snapshot(r.Context(), deviceID, companionType)
	if err != nil {
		h.logger.Error("fetching relationship", "device_id", deviceID, "error", err)
		api.JSONErrorMessage(w, http.StatusInternalServerError, "Failed to fetch relationship")
		return
	}
	api.JSON(w, http.StatusOK, snap)
}

// GetMood handles GET /api/mood/{deviceID}/{companionType}.
func (h *Handler) GetMood(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")
	companionType := chi.URLParam(r, "companionType")

	snap, err := h.moods.Snapshot(r.Context(), deviceID, companionType)
	if err != nil {
		h.logger.Error("fetching mood", "device_id", deviceID, "error", err)
		api.JSONErrorMessage(w, http.StatusInternalServerError, "Failed to fetch mood")
		return
	}
	api.JSON(w, http.StatusOK, snap)
}

// GetWeeklyChallenge handles GET /api/weekly-challenge/{deviceID}.
func (h *Handler) GetWeeklyChallenge(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	ch, err := h.challenges.Get(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("fetching weekly challenge", "device_id", deviceID, "error", err)
		api.JSONErrorMessage(w, http.StatusInternalServerError, "Failed to fetch weekly challenge")
		return
	}
	api.JSON(w, http.StatusOK, ch)
}

type claimRequest struct {
	DeviceID string `json:"deviceId" validate:"required"`
}

// ClaimWeeklyReward handles POST /api/weekly-challenge/claim.
func (h *Handler) ClaimWeeklyReward(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.NewBadRequestError("deviceId is required"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewBadRequestError("deviceId is required"))
		return
	}

	result, err := h.challenges.Claim(r.Context(), req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, challenge.ErrNotFound):
			api.HandleError(w, api.ErrChallengeNotFound)
		case errors.Is(err, challenge.ErrNotComplete):
			api.HandleError(w, api.ErrChallengeNotComplete)
		case errors.Is(err, challenge.ErrAlreadyClaimed):
			api.HandleError(w, api.ErrAlreadyClaimed)
		default:
			h.logger.Error("claiming weekly reward", "device_id", req.DeviceID, "error", err)
			api.JSONErrorMessage(w, http.StatusInternalServerError, "Failed to claim reward")
		}
		return
	}
	api.JSON(w, http.StatusOK, result)
}
