package response

import (
	"net/http"

	"github.com/baechuer/church-service/internal/domain"
	reqctx "github.com/baechuer/church-service/internal/pkg/context"
	"github.com/baechuer/church-service/internal/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID prefers the id set by the RequestID middleware and falls back to the header.
func RequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if rid := reqctx.GetRequestID(r.Context()); rid != "" {
		return rid
	}
	return r.Header.Get(requestIDHeader)
}

// Err maps err onto the error envelope. Non-AppErrors become a generic 500
// and only their details are logged.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	rid := RequestID(r)

	if ae, ok := domain.AsAppError(err); ok {
		Fail(w, StatusFromCode(ae.Code), string(ae.Code), ae.Message, ae.Meta, rid)
		return
	}

	l := logger.WithCtx(r.Context())
	l.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	Fail(w, http.StatusInternalServerError, "internal_error", "internal error", nil, rid)
}

func StatusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeConflict:
		return http.StatusBadRequest
	case domain.CodeUnauthorized, domain.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case domain.CodeForbidden, domain.CodeAccountInactive:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
