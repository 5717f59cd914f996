package handlers

import (
	"net/http"

	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) QueueStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.queueService.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, status)
}

func (h *Handlers) JoinQueue(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	if session == "" {
		response.BadRequest(w, "missing session header")
		return
	}
	ticket, err := h.queueService.Join(r.Context(), chi.URLParam(r, "id"), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ticket)
}

// QueuePosition reports position 0 once the session has been served.
func (h *Handlers) QueuePosition(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.queueService.Position(r.Context(), chi.URLParam(r, "id"), sessionID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handlers) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.queueService.Leave(r.Context(), chi.URLParam(r, "id"), sessionID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Você saiu da fila",
	})
}

// CallNext handles POST /barbers/{id}/queue/next (admin).
func (h *Handlers) CallNext(w http.ResponseWriter, r *http.Request) {
	status, err := h.queueService.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, status)
}

// SetQueueOpen handles POST /barbers/{id}/queue/open and /close (admin) and
// answers with the resulting status.
func (h *Handlers) SetQueueOpen(open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		barberID := chi.URLParam(r, "id")
		if err := h.queueService.SetOpen(r.Context(), barberID, open); err != nil {
			writeServiceError(w, r, err)
			return
		}
		status, err := h.queueService.Status(r.Context(), barberID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, status)
	}
}
