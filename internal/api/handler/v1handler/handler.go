// Package v1handler serves version 1 of the scanner HTTP API.
package v1handler

import (
	"context"
	"errors"
	"net/http"
	"sigscan/internal/scan"
	"sigscan/pkg/logger"
	"sigscan/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Deps holds what the v1 handlers need.
type Deps struct {
	Scanner scan.Scanner
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string
	Message string
}

// Encode writes the response as {"code": ..., "message": ...}.
func (r ErrorResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(r.Code)
	e.FieldStart("message")
	e.Str(r.Message)
	e.ObjEnd()
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

// NewError maps err to a status and a client-safe message by its semantic
// kind. Errors without a kind are internal; their details are only logged.
func (h Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	if kind == nil {
		kind = serrors.ErrInternal
	}

	var (
		status int
		msg    string
	)
	switch kind {
	case serrors.ErrBadRequest:
		status, msg = http.StatusBadRequest, messageOr(err, "bad request")
	case serrors.ErrUnauthorized:
		status, msg = http.StatusUnauthorized, messageOr(err, "unauthorized")
	case serrors.ErrConfig:
		// the cause names the missing or unreadable blocklist
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case serrors.ErrCanceled:
		status, msg = http.StatusServiceUnavailable, "scan canceled"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Int("status", status), zap.Error(err))
	}

	return &ErrorStatusCode{
		StatusCode: status,
		Response:   ErrorResponse{Code: kind.Error(), Message: msg},
	}
}

// messageOr returns the message attached to a semantic error, without its
// cause, or fallback when there is none.
func messageOr(err error, fallback string) string {
	var se *serrors.Error
	if errors.As(err, &se) && se.Message() != "" {
		return se.Message()
	}

	return fallback
}

// Routes returns the v1 mux, mounted under /v1/. Every route goes through sec.
func (h *Handler) Routes(sec *SecHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/scans", h.CreateScan)
	mux.HandleFunc("POST /v1/blocklist/invalidate", h.InvalidateBlocklist)

	return sec.Middleware(mux, h.writeError)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(w, res.StatusCode, res.Response.Encode)
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
