package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leen324/locscope/core"
	"github.com/leen324/locscope/core/agg"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

// statusFor maps an error to its HTTP status and code.
func statusFor(err error) (int, string) {
	var loadErr *core.DataLoadError
	var parseErr *agg.ParseError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, core.ErrNoData):
		return http.StatusServiceUnavailable, "NO_DATA"
	case errors.Is(err, core.ErrUnknownPoint):
		return http.StatusNotFound, "UNKNOWN_POINT"
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "PARSE_ERROR"
	case errors.As(err, &loadErr):
		return http.StatusBadGateway, "LOAD_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeError writes err as a JSON error body with the given status.
func writeError(w http.ResponseWriter, err error, status int) {
	_, code := statusFor(err)
	if status == http.StatusInternalServerError {
		code = "INTERNAL_ERROR"
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// writeMappedError picks the status from the error itself.
func writeMappedError(w http.ResponseWriter, err error) {
	status, _ := statusFor(err)
	writeError(w, err, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
