package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wacrm/whatsapp-crm-backend/internal/models"
	"github.com/wacrm/whatsapp-crm-backend/internal/service"
)

// ContactHandler handles contact HTTP requests
type ContactHandler struct {
	contactService service.ContactService
	logger         *slog.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// ListContacts handles GET /contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	filter := models.ContactFilter{
		SaleStatus: query.Get("sale_status"),
		Search:     query.Get("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	if raw := query.Get("paused"); raw != "" {
		paused, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION", "paused must be a boolean")
			return
		}
		filter.Paused = &paused
	}

	contacts, pagination, err := h.contactService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, service.ContactListResult{
		Data:       contacts,
		Pagination: pagination,
	})
}

// GetContact handles GET /contacts/{phone}
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contactService.Get(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}

// RecordInteraction handles POST /contacts/interaction (inbound-message hook)
func (h *ContactHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req service.InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	contact, err := h.contactService.UpsertOnInteraction(r.Context(), req.PhoneNumber, req.PushName)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}

// ChangeStatus handles PUT /contacts/{phone}/status
func (h *ContactHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req service.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	contact, err := h.contactService.ChangeStatus(
		r.Context(),
		chi.URLParam(r, "phone"),
		req.Status,
		req.Notes,
		req.AppointmentDate,
	)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}

// SetPaused handles PUT /contacts/{phone}/pause
func (h *ContactHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	var req service.SetPausedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	contact, err := h.contactService.SetPaused(r.Context(), chi.URLParam(r, "phone"), req.Paused)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}

// UpdateProfile handles PUT /contacts/{phone}/profile
func (h *ContactHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	contact, err := h.contactService.UpdateProfile(r.Context(), chi.URLParam(r, "phone"), req.Name, req.Score)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}

// ConfirmPayment handles POST /contacts/{phone}/payment/confirm
func (h *ContactHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contactService.ConfirmPayment(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}

// ConfirmAppointment handles POST /contacts/{phone}/appointment/confirm
func (h *ContactHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	var req service.ConfirmAppointmentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
			return
		}
	}

	contact, err := h.contactService.ConfirmAppointment(r.Context(), chi.URLParam(r, "phone"), req.Notes)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, contact)
}
