package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bigode/bigode-booking/internal/client"
	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/bigode/bigode-booking/services/devapi/internal/service"
)

type Handlers struct {
	bookingService service.BookingService
	queueService   service.QueueService
	adminService   service.AdminService
	loc            *time.Location
}

func New(bookingService service.BookingService, queueService service.QueueService, adminService service.AdminService, loc *time.Location) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{
		bookingService: bookingService,
		queueService:   queueService,
		adminService:   adminService,
		loc:            loc,
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// sessionID identifies a queue member.
func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(client.SessionHeader))
}

// writeServiceError maps service sentinels onto the JSON error shape the
// client decodes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, "Não encontrado")
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(w, strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "))
	case errors.Is(err, service.ErrPastDateTime):
		response.WriteError(w, http.StatusBadRequest, "Não é possível agendar no passado", response.CodePastDateTime)
	case errors.Is(err, service.ErrSlotUnavailable):
		response.WriteError(w, http.StatusConflict, "Horário indisponível", response.CodeSlotUnavailable)
	case errors.Is(err, service.ErrQueueClosed):
		response.WriteError(w, http.StatusConflict, "A fila está fechada", response.CodeQueueClosed)
	case errors.Is(err, service.ErrNotInQueue):
		response.WriteError(w, http.StatusNotFound, "Você não está na fila", response.CodeNotInQueue)
	case errors.Is(err, service.ErrInvalidOTP):
		response.WriteError(w, http.StatusUnauthorized, "Código inválido ou expirado", response.CodeInvalidOTP)
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, "Acesso negado")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		response.InternalError(w, "Erro interno")
	}
}
