package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wacrm/whatsapp-crm-backend/internal/settings"
)

// SettingsHandler exposes the operator-tunable bot configuration
type SettingsHandler struct {
	store  settings.Store
	logger *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store settings.Store, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		store:  store,
		logger: logger,
	}
}

// BotDelayResponse carries the inter-send delay in milliseconds
type BotDelayResponse struct {
	SendDelayMS int64 `json:"send_delay_ms"`
}

// GetBotDelay handles GET /settings/bot-delay
func (h *SettingsHandler) GetBotDelay(w http.ResponseWriter, r *http.Request) {
	delay, err := h.store.SendDelay(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, BotDelayResponse{SendDelayMS: delay.Milliseconds()})
}

// SetBotDelay handles PUT /settings/bot-delay
func (h *SettingsHandler) SetBotDelay(w http.ResponseWriter, r *http.Request) {
	var req BotDelayResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if req.SendDelayMS < 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION", "send_delay_ms must be non-negative")
		return
	}

	delay := time.Duration(req.SendDelayMS) * time.Millisecond
	if err := h.store.SetSendDelay(r.Context(), delay); err != nil {
		handleError(w, err, h.logger)
		return
	}

	h.logger.Info("bot send delay updated", slog.Int64("send_delay_ms", req.SendDelayMS))

	respondSuccess(w, BotDelayResponse{SendDelayMS: req.SendDelayMS})
}
