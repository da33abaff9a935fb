package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/repositories"
	"github.com/filmorate/backend/internal/validation"
)

const (
	kindValidation = "validation error"
	kindNotFound   = "not found"
	kindInternal   = "internal server error"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError maps service errors onto HTTP statuses.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: kindValidation, Message: verr.Message})
	case errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, errorResponse{Error: kindNotFound, Message: err.Error()})
	default:
		logging.FromContext(ctx).Error("unhandled service error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: kindInternal, Message: "unexpected error"})
	}
}

func respondBadRequest(ctx context.Context, w http.ResponseWriter, message string) {
	respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: kindValidation, Message: message})
}

func respondUnavailable(ctx context.Context, w http.ResponseWriter, dependency string) {
	logging.FromContext(ctx).Error("handler dependency unavailable", "dependency", dependency)
	respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: kindInternal, Message: dependency + " service unavailable"})
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return id, nil
}

// pathIDs parses two path identifiers, reporting the first malformed one.
func pathIDs(r *http.Request, first, second string) (int64, int64, error) {
	a, err := pathID(r, first)
	if err != nil {
		return 0, 0, err
	}
	b, err := pathID(r, second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
