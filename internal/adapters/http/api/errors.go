package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/ranking"
	"github.com/okian/dojo/internal/domain/schedule"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingMember = errors.New("missing " + memberHeader + " header")
)

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingMember):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidRevealItem),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, ranking.ErrInvalidSort),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidPickTarget),
		errors.Is(err, service.ErrQuestionNotInSet):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, model.ErrDuplicatePick):
		return http.StatusConflict, "duplicate_pick"
	case errors.Is(err, model.ErrAlreadyOpened):
		return http.StatusConflict, "already_opened"
	case errors.Is(err, model.ErrAccountExists):
		return http.StatusConflict, "account_exists"
	case errors.Is(err, model.ErrPickNotFound),
		errors.Is(err, model.ErrMemberNotFound),
		errors.Is(err, model.ErrQuestionNotFound),
		errors.Is(err, model.ErrQuestionSetNotFound),
		errors.Is(err, model.ErrQuestionSetNotReady),
		errors.Is(err, model.ErrImageNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, schedule.ErrNoScheduleConfigured),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
