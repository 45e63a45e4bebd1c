package handlers

import (
	"net/http"

	"github.com/baechuer/church-service/internal/application/newsletter"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/response"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

type NewsletterHandler struct {
	svc *newsletter.Service
}

func NewNewsletterHandler(svc *newsletter.Service) *NewsletterHandler {
	return &NewsletterHandler{svc: svc}
}

// Subscribe answers 201 for a new address and 200 when an old one is reactivated.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req dto.SubscribeReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	sub, created, err := h.svc.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Data(w, status, dto.ToSubscriptionResp(*sub))
}

func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req dto.UnsubscribeReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	sub, err := h.svc.Unsubscribe(r.Context(), req.Email)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToSubscriptionResp(*sub))
}
