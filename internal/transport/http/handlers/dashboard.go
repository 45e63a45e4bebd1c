package handlers

import (
	"net/http"

	"github.com/baechuer/church-service/internal/application/dashboard"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/response"
)

type DashboardHandler struct {
	svc *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToDashboardResp(*stats))
}
