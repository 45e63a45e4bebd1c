package handlers

import (
	"net/http"

	"github.com/baechuer/church-service/internal/application/auth"
	"github.com/baechuer/church-service/internal/audit"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/middleware"
	"github.com/baechuer/church-service/internal/transport/http/response"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

type AuthHandler struct {
	svc   *auth.Service
	audit *audit.Logger
}

func NewAuthHandler(svc *auth.Service, al *audit.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, audit: al}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if ae, ok := domain.AsAppError(err); ok {
			h.audit.LoginFailed(r.Context(), req.Email, middleware.ClientIP(r), string(ae.Code))
		}
		response.Err(w, r, err)
		return
	}
	h.audit.LoginSucceeded(r.Context(), res.User.ID, res.User.Email, middleware.ClientIP(r))
	response.Data(w, http.StatusOK, dto.LoginResp{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      dto.ToUserResp(*res.User),
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	u, err := h.svc.Register(r.Context(), auth.RegisterCmd{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	claims, _ := middleware.ClaimsFrom(r.Context())
	h.audit.UserRegistered(r.Context(), claims.UserID, u.ID, string(u.Role))
	response.Data(w, http.StatusCreated, dto.ToUserResp(*u))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		response.Err(w, r, domain.ErrUnauthorized("missing identity"))
		return
	}
	u, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToUserResp(*u))
}

func (h *AuthHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	id, err := pathID(r, "user")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	u, err := h.svc.Deactivate(r.Context(), claims.UserID, id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	h.audit.UserDeactivated(r.Context(), claims.UserID, u.ID)
	response.Data(w, http.StatusOK, dto.ToUserResp(*u))
}
