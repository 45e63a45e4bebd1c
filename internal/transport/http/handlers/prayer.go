package handlers

import (
	"net/http"

	"github.com/baechuer/church-service/internal/application/prayer"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/response"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

type PrayerHandler struct {
	svc *prayer.Service
}

func NewPrayerHandler(svc *prayer.Service) *PrayerHandler {
	return &PrayerHandler{svc: svc}
}

func (h *PrayerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.PrayerReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	p, err := h.svc.Submit(r.Context(), prayer.SubmitCmd{
		Name:     req.Name,
		Email:    req.Email,
		Request:  req.Request,
		Category: req.Category,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToPrayerResp(*p))
}

func (h *PrayerHandler) List(w http.ResponseWriter, r *http.Request) {
	var f domain.PrayerFilter
	if c := r.URL.Query().Get("category"); c != "" {
		cat, ok := domain.ParsePrayerCategory(c)
		if !ok {
			response.Err(w, r, domain.ErrValidationMeta("invalid query param", map[string]string{"invalid": "category"}))
			return
		}
		f.Category = cat
	}
	answered, err := queryBool(r, "answered")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	f.Answered = answered

	page, err := h.svc.List(r.Context(), f, pageFromQuery(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPageResp(page, dto.ToPrayerResp))
}

// MarkAnswered sets is_answered (true unless the body says otherwise).
func (h *PrayerHandler) MarkAnswered(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "prayer request")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	answered := true
	if r.ContentLength != 0 {
		var req dto.AnswerPrayerReq
		if err := validate.DecodeJSON(r, &req); err != nil {
			response.Err(w, r, err)
			return
		}
		if req.IsAnswered != nil {
			answered = *req.IsAnswered
		}
	}
	p, err := h.svc.SetAnswered(r.Context(), id, answered)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPrayerResp(*p))
}
