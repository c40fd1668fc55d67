package api

import (
	"errors"
	"net/http"

	"parilka/internal/database"
	"parilka/internal/service"
)

// writeServiceError отображает классифицированную ошибку сервиса в HTTP.
// Каждый сбой дает ровно один ответ; ошибка компенсации логируется
// отдельно — это осиротевшее состояние для ручного вмешательства.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateAccount),
		errors.Is(err, service.ErrInvalidInterval),
		errors.Is(err, service.ErrStartInPast),
		errors.Is(err, service.ErrDurationExceeded),
		errors.Is(err, service.ErrNoActiveMembership),
		errors.Is(err, service.ErrRoomBlockedForTier):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountInactive):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, database.ErrRoomBusy):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())

	case errors.Is(err, service.ErrCompensationFailed):
		s.logger.Error().Err(err).Msg("compensation failed, orphaned account")
		writeError(w, http.StatusInternalServerError, err.Error())

	case errors.Is(err, service.ErrProfileProvisioning),
		errors.Is(err, service.ErrTokenIssuance),
		errors.Is(err, service.ErrMembershipCheck),
		errors.Is(err, service.ErrAccountLookup),
		errors.Is(err, service.ErrPersistence):
		s.logger.Error().Err(err).Msg("dependency failure")
		writeError(w, http.StatusInternalServerError, err.Error())

	default:
		s.logger.Error().Err(err).Msg("unexpected failure")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
