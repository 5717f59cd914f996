package handlers

import (
	"net/http"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/http/middleware"
	"github.com/bigode/bigode-booking/internal/http/response"
)

func (h *Handlers) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	challenge, err := h.adminService.RequestOTP(r.Context(), req.Phone)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, challenge)
}

func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	login, err := h.adminService.VerifyOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, login)
}

// shopID is the barbershop of the authenticated admin.
func shopID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.Claims(r)
	if claims == nil || claims.BarbershopID == "" {
		response.Unauthorized(w, "admin session required")
		return "", false
	}
	return claims.BarbershopID, true
}

func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := shopID(w, r)
	if !ok {
		return
	}
	stats, err := h.adminService.Dashboard(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, stats)
}

// Agenda handles GET /admin/agenda?date=YYYY-MM-DD, defaulting to today.
func (h *Handlers) Agenda(w http.ResponseWriter, r *http.Request) {
	id, ok := shopID(w, r)
	if !ok {
		return
	}
	day := time.Now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(domain.DateLayout, raw, h.loc)
		if err != nil {
			response.BadRequest(w, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	entries, err := h.adminService.Agenda(r.Context(), id, day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"appointments": entries})
}

func (h *Handlers) AdminBarbers(w http.ResponseWriter, r *http.Request) {
	id, ok := shopID(w, r)
	if !ok {
		return
	}
	barbers, err := h.adminService.Barbers(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if barbers == nil {
		barbers = []domain.Barber{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"barbers": barbers})
}

func (h *Handlers) AdminServices(w http.ResponseWriter, r *http.Request) {
	id, ok := shopID(w, r)
	if !ok {
		return
	}
	services, err := h.adminService.Services(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"services": services})
}

// CreateBookingLink handles POST /auth/booking-link. A missing barbershopId
// defaults to the admin's own barbershop.
func (h *Handlers) CreateBookingLink(w http.ResponseWriter, r *http.Request) {
	id, ok := shopID(w, r)
	if !ok {
		return
	}
	var req domain.BookingLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.BarbershopID == "" {
		req.BarbershopID = id
	}

	link, err := h.adminService.CreateBookingLink(r.Context(), middleware.Claims(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, link)
}
