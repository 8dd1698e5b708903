package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/views"
)

// apiResponse is the JSON envelope shared by every endpoint.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// errNotOwner indicates a mutation attempted by someone other than the
// resource owner.
var errNotOwner = errors.New("caller does not own this resource")

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeEnvelope(ctx, w, apiResponse{
		StatusCode: status,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// respondError maps an error onto the taxonomy: bad request, unauthorized,
// forbidden, not found, conflict, or internal. Internal errors never leak
// details to the client.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)

	var (
		status  int
		message string
	)

	switch {
	case errors.Is(err, views.ErrInvalidID),
		errors.Is(err, views.ErrMissingUsername):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, views.ErrCallerRequired),
		errors.Is(err, auth.ErrInvalidAccessToken):
		status = http.StatusUnauthorized
		message = "authentication required"
	case errors.Is(err, errNotOwner):
		status = http.StatusForbidden
		message = errNotOwner.Error()
	case errors.Is(err, repositories.ErrNotFound):
		status = http.StatusNotFound
		message = "resource not found"
	case errors.Is(err, repositories.ErrConflict):
		status = http.StatusConflict
		message = "resource already exists"
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		logger.Error("request failed", "error", err)
	}

	if status < http.StatusInternalServerError {
		logger.Warn("request returned client error", "status", status, "error", err)
	}

	writeEnvelope(ctx, w, apiResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}

func respondBadRequest(ctx context.Context, w http.ResponseWriter, message string) {
	logging.FromContext(ctx).Warn("request returned client error",
		"status", http.StatusBadRequest, "message", message)
	writeEnvelope(ctx, w, apiResponse{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Success:    false,
	})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(payload.StatusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", payload.StatusCode, "error", err)
	}
}

// callerFromContext converts the optional request identity into the explicit
// caller value the composers expect.
func callerFromContext(ctx context.Context) views.Caller {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return views.Caller{}
	}
	return views.Caller{UserID: identity.UserID}
}
