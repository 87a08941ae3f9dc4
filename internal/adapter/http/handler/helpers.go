package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// writeDomainError writes err with the status of its kind.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapDomainError(err)
	kind := domain.KindOf(err)
	if status == http.StatusBadRequest {
		kind = "bad_request"
	}
	writeError(w, status, kind, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, dto.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", dto.ErrBadRequest, err)
	}
	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	return dto.ParseOptionalDate(&val)
}

// parsePositionQuery reads the date and order query parameters. Without a
// date there is no position; without an order the position is the end of
// the date.
func parsePositionQuery(r *http.Request) (*domain.Position, error) {
	date, err := parseDateQuery(r, "date")
	if err != nil {
		return nil, err
	}

	rawOrder := r.URL.Query().Get("order")
	if date == nil {
		if rawOrder != "" {
			return nil, fmt.Errorf("%w: order needs a date", dto.ErrBadRequest)
		}
		return nil, nil
	}

	pos := domain.EndOfDay(*date)
	if rawOrder != "" {
		order, err := strconv.Atoi(rawOrder)
		if err != nil || order < 0 {
			return nil, fmt.Errorf("%w: invalid order %q", dto.ErrBadRequest, rawOrder)
		}
		pos = domain.NewPosition(*date, order)
	}
	return &pos, nil
}

func parseBoolQuery(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
