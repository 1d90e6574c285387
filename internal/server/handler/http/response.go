package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
	"go.uber.org/zap"
)

// envelope is the JSON body of every API response.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
	Field      string `json:"field,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{StatusCode: status, Message: msg, Data: data})
}

// writeError maps a service error to its HTTP status. Errors outside the
// domain taxonomy are logged and reported as an opaque 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrLimitExceeded),
		errors.Is(err, models.ErrEmptyResult):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	}

	body := envelope{StatusCode: status, Message: "internal error"}
	var e *models.Error
	if status != http.StatusInternalServerError && errors.As(err, &e) {
		body.Message, body.Field = e.Message, e.Field
	} else if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, msg, nil)
}

// readJSON decodes the request body into dst. On failure it writes the
// 400 response, naming the field when the decoder knows it.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		writeError(w, nil, models.Validation(typeErr.Field, typeErr.Field+" has an invalid type"))
		return false
	}
	badRequest(w, "invalid request")
	return false
}

// parseDate accepts "2006-01-02" or RFC 3339. An empty string yields nil.
func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, models.Validation(field, field+" must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}

// pageFromQuery reads page and limit; malformed values fall back to defaults.
func pageFromQuery(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.Page{Page: page, Limit: limit}
}
