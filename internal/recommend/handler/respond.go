package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"recommend-service/internal/directory"
	"recommend-service/internal/fileio"
	"recommend-service/internal/middleware"
)

// errBadRequest marks client mistakes that are not covered by a package
// sentinel.
var errBadRequest = errors.New("bad request")

var errUnauthorized = errors.New("sign in required")

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps package errors onto HTTP statuses.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, directory.ErrDuplicateReview):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, directory.ErrMissingID),
		errors.Is(err, directory.ErrInvalidReview),
		errors.Is(err, directory.ErrInvalidProfile),
		errors.Is(err, fileio.ErrUnsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side errors and answers with a JSON error body.
func fail(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := statusFor(err)
	if status >= 500 {
		log.Error().Err(err).Msg("request failed")
		writeError(w, status, "internal")
		return
	}
	writeError(w, status, err.Error())
}

func reqLogger(r *http.Request, logger zerolog.Logger) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("rid", rid).Logger()
	}
	return logger
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	return nil
}

func atoi(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
