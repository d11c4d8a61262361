package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/blog-publishing-backend/errs"
	"github.com/rs/zerolog"
)

// successResponse is the envelope every 2xx payload is wrapped in.
type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorResponse is the envelope for every non-2xx payload. Internal detail
// never reaches the client; it is logged server-side only.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteSuccess writes `{status:"success", message, data}` with the given
// status code. data may be nil for operations with no payload.
func (r Responder) WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	r.writeJSON(w, statusCode, successResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// WriteError maps an ApiErr to `{status:"error", message}` with its status
// code. Anything that is not an ApiErr is logged and collapsed to a generic
// 500 so internal failure detail never leaks.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Msg(err.Error())
		r.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Message: "Internal server error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Msg(apiErr.GetFullError())
		r.writeJSON(w, apiErr.StatusCode, errorResponse{
			Status:  "error",
			Message: "Internal server error",
		})
		return
	}

	r.writeJSON(w, apiErr.StatusCode, errorResponse{
		Status:  "error",
		Message: apiErr.Error(),
	})
}

func (r Responder) writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(statusCode)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}
