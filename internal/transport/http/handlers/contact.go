package handlers

import (
	"net/http"

	"github.com/baechuer/church-service/internal/application/contact"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/response"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

type ContactHandler struct {
	svc *contact.Service
}

func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	m, err := h.svc.Submit(r.Context(), contact.SubmitCmd{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToContactResp(*m))
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), r.URL.Query().Get("status"), pageFromQuery(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPageResp(page, dto.ToContactResp))
}

func (h *ContactHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contact message")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.ContactStatusReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	m, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToContactResp(*m))
}
