package handlers

import (
	"net/http"
	"time"

	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/go-chi/chi/v5"
)

// ResolveBookingToken handles GET /auth/booking/{token}
func (h *Handlers) ResolveBookingToken(w http.ResponseWriter, r *http.Request) {
	info, err := h.bookingService.ResolveToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, info)
}

func (h *Handlers) ListBarbers(w http.ResponseWriter, r *http.Request) {
	barbers, err := h.bookingService.Barbers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if barbers == nil {
		barbers = []domain.Barber{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"barbers": barbers})
}

func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.bookingService.Services(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"services": services})
}

// GetAvailability handles GET /availability?barberId=&date=YYYY-MM-DD
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	barberID := r.URL.Query().Get("barberId")
	if barberID == "" {
		response.BadRequest(w, "barberId is required")
		return
	}
	day, err := time.ParseInLocation(domain.DateLayout, r.URL.Query().Get("date"), h.loc)
	if err != nil {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.bookingService.Availability(r.Context(), barberID, day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

func (h *Handlers) ListBarberAppointments(w http.ResponseWriter, r *http.Request) {
	days, err := h.bookingService.BarberAppointments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"appointments": days})
}

// CreateAppointment handles POST /appointments. Retries carrying the same
// Idempotency-Key are answered by the idempotency middleware.
func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.AppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	appt, err := h.bookingService.CreateAppointment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, appt)
}
