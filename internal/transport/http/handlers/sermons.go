package handlers

import (
	"net/http"

	"github.com/baechuer/church-service/internal/application/sermon"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/response"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

type SermonHandler struct {
	svc *sermon.Service
}

func NewSermonHandler(svc *sermon.Service) *SermonHandler {
	return &SermonHandler{svc: svc}
}

func (h *SermonHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), domain.SermonFilter{
		Speaker: q.Get("speaker"),
		Series:  q.Get("series"),
	}, pageFromQuery(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPageResp(page, dto.ToSermonResp))
}

func (h *SermonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sermon")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToSermonResp(*s))
}

func (h *SermonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SermonReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	s, err := h.svc.Create(r.Context(), sermon.CreateCmd{
		Title:       req.Title,
		Speaker:     req.Speaker,
		Date:        *req.Date,
		Scripture:   req.Scripture,
		Description: req.Description,
		Series:      req.Series,
		VideoURL:    req.VideoURL,
		AudioURL:    req.AudioURL,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToSermonResp(*s))
}
