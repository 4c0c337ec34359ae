package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/orm/crud"
	"github.com/conduit-lang/pgdao/internal/orm/query"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Status int         `json:"status"`
	Path   string      `json:"path,omitempty"`
	Method string      `json:"method,omitempty"`
}

// ErrorDetail contains detailed error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errBadBody marks request bodies that are not JSON objects
var errBadBody = errors.New("request body must be a JSON object")

// classify maps an error to a status code and an error code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, query.ErrInvalidFilterShape),
		errors.Is(err, query.ErrInvalidSortShape),
		errors.Is(err, query.ErrInvalidPagingShape),
		errors.Is(err, crud.ErrInvalidOptions),
		errors.Is(err, crud.ErrMissingID),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest, "BAD_REQUEST"
	case crud.IsNotFound(err):
		return http.StatusNotFound, "NOT_FOUND"
	case crud.IsConstraintViolation(err):
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeError renders err as an ErrorResponse. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, code := classify(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		message = "An unexpected error occurred"
	}

	writeJSONError(w, r, status, code, message)
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:  ErrorDetail{Code: code, Message: message},
		Status: status,
		Path:   r.URL.Path,
		Method: r.Method,
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, r, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		fmt.Sprintf("Method %s is not allowed for this resource", r.Method))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
