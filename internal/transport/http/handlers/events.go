package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/church-service/internal/application/event"
	"github.com/baechuer/church-service/internal/audit"
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/pkg/metrics"
	"github.com/baechuer/church-service/internal/transport/http/dto"
	"github.com/baechuer/church-service/internal/transport/http/middleware"
	"github.com/baechuer/church-service/internal/transport/http/response"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

// multipart overhead allowed on top of the image limit
const formSlack = 1 << 20

type EventsHandler struct {
	svc      *event.Service
	maxImage int64
	audit    *audit.Logger
}

func NewEventsHandler(svc *event.Service, maxImageBytes int64, al *audit.Logger) *EventsHandler {
	return &EventsHandler{svc: svc, maxImage: maxImageBytes, audit: al}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	upcoming, err := queryBool(r, "upcoming")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), event.ListQuery{
		Category: r.URL.Query().Get("category"),
		Upcoming: upcoming != nil && *upcoming,
		Page:     pageFromQuery(r),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToPageResp(page, dto.ToEventResp))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResp(*e))
}

// Create accepts a JSON body, or multipart/form-data carrying the same
// fields plus an optional "image" file.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req dto.EventReq
		img *event.Image
		err error
	)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		req, img, err = h.readForm(w, r)
	} else {
		err = validate.DecodeJSON(r, &req)
	}
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		response.Err(w, r, err)
		return
	}

	claims, _ := middleware.ClaimsFrom(r.Context())
	e, err := h.svc.Create(r.Context(), event.CreateCmd{
		ActorID:      claims.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Date:         *req.Date,
		EndDate:      req.EndDate,
		Location:     req.Location,
		Category:     req.Category,
		MaxAttendees: req.MaxAttendees,
		IsPublished:  req.IsPublished,
		Image:        img,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToEventResp(*e))
}

func (h *EventsHandler) readForm(w http.ResponseWriter, r *http.Request) (dto.EventReq, *event.Image, error) {
	var req dto.EventReq
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImage+formSlack)
	if err := r.ParseMultipartForm(h.maxImage + formSlack); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return req, nil, domain.ErrPayloadTooLarge("image exceeds the upload size limit")
		}
		return req, nil, domain.ErrValidationMeta("invalid multipart body", map[string]string{"body": "malformed form"})
	}

	invalid := []string{}
	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Location = r.FormValue("location")
	req.Category = r.FormValue("category")
	if v := r.FormValue("date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			req.Date = &t
		} else {
			invalid = append(invalid, "date")
		}
	}
	if v := r.FormValue("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			req.EndDate = &t
		} else {
			invalid = append(invalid, "end_date")
		}
	}
	if v := r.FormValue("max_attendees"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.MaxAttendees = &n
		} else {
			invalid = append(invalid, "max_attendees")
		}
	}
	if v := r.FormValue("is_published"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.IsPublished = &b
		} else {
			invalid = append(invalid, "is_published")
		}
	}
	if len(invalid) > 0 {
		return req, nil, domain.ErrValidationMeta("invalid form fields", map[string]string{
			"invalid": strings.Join(invalid, ","),
		})
	}

	f, fh, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, domain.ErrValidationMeta("invalid image upload", map[string]string{"invalid": "image"})
	}
	defer f.Close()

	// read one byte past the limit so ValidateImage can see the overflow
	data, err := io.ReadAll(io.LimitReader(f, h.maxImage+1))
	if err != nil {
		return req, nil, err
	}
	return req, &event.Image{Filename: fh.Filename, Data: data}, nil
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	claims, _ := middleware.ClaimsFrom(r.Context())
	h.audit.EventDeleted(r.Context(), claims.UserID, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.AttendeeReq
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	e, err := h.svc.Register(r.Context(), id, event.RegisterCmd{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	metrics.RecordRegistration(registrationOutcome(err))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToEventResp(*e))
}

func registrationOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	ae, ok := domain.AsAppError(err)
	switch {
	case ok && ae.Message == domain.MsgEventFull:
		return "full"
	case ok && ae.Message == domain.MsgAlreadyRegistered:
		return "duplicate"
	default:
		return "error"
	}
}
