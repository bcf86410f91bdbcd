package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/logger"
)

// Envelope is the success envelope:
// {"data": ...}
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody:
// {"error":{"code":"...","message":"...","meta":{...},"request_id":"..."}}
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// JSON writes raw JSON with Content-Type.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data wraps payload with {"data": ...}
func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, Envelope{Data: payload})
}

func Fail(w http.ResponseWriter, status int, code, message string, meta map[string]string, requestID string) {
	JSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: requestID,
		},
	})
}

// Err maps err to a status and error body. Only *domain.AppError details reach the client.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	requestID := RequestIDFromRequest(r)

	var ae *domain.AppError
	if err != nil && errors.As(err, &ae) {
		Fail(w, statusFromCode(ae.Code), string(ae.Code), ae.Message, ae.Meta, requestID)
		return
	}

	// keep details in logs only
	logger.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
	Fail(w, http.StatusInternalServerError, "internal_error", "internal error", nil, requestID)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUpstream:
		return http.StatusBadGateway
	case domain.CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
