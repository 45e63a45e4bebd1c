package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/church-service/internal/domain"
)

type Service struct {
	repo     Repo
	images   ImageStore
	notifier Notifier
	clock    Clock

	maxImageBytes int64
}

func NewService(repo Repo, images ImageStore, notifier Notifier, clock Clock, maxImageBytes int64) *Service {
	return &Service{
		repo:          repo,
		images:        images,
		notifier:      notifier,
		clock:         clock,
		maxImageBytes: maxImageBytes,
	}
}

type CreateCmd struct {
	ActorID string

	Title        string
	Description  string
	Date         time.Time
	EndDate      *time.Time
	Location     string
	Category     string
	MaxAttendees *int
	IsPublished  *bool
	Image        *Image
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Event, error) {
	cat, ok := domain.ParseEventCategory(strings.TrimSpace(cmd.Category))
	if !ok {
		return nil, domain.ErrValidationMeta("invalid category", map[string]string{"invalid": "category"})
	}
	if cmd.EndDate != nil && cmd.EndDate.Before(cmd.Date) {
		return nil, domain.ErrValidationMeta("end_date must not be before date", map[string]string{"invalid": "end_date"})
	}
	if cmd.MaxAttendees != nil && *cmd.MaxAttendees < 1 {
		return nil, domain.ErrValidationMeta("max_attendees must be at least 1", map[string]string{"invalid": "max_attendees"})
	}

	now := s.clock.Now()
	e := &domain.Event{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(cmd.Title),
		Description:  strings.TrimSpace(cmd.Description),
		Date:         cmd.Date.UTC(),
		EndDate:      cmd.EndDate,
		Location:     strings.TrimSpace(cmd.Location),
		Category:     cat,
		MaxAttendees: cmd.MaxAttendees,
		IsPublished:  true,
		CreatedBy:    cmd.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if cmd.IsPublished != nil {
		e.IsPublished = *cmd.IsPublished
	}

	var imageKey string
	if cmd.Image != nil {
		contentType, ext, err := ValidateImage(*cmd.Image, s.maxImageBytes)
		if err != nil {
			return nil, err
		}
		imageKey = fmt.Sprintf("events/%s%s", e.ID, ext)
		url, err := s.images.Save(ctx, imageKey, contentType, cmd.Image.Data)
		if err != nil {
			return nil, fmt.Errorf("store event image: %w", err)
		}
		e.ImageURL = url
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if imageKey != "" {
			// the row never existed, so nothing references the object
			if derr := s.images.Delete(context.WithoutCancel(ctx), imageKey); derr != nil {
				zlog.Warn().Err(derr).Str("key", imageKey).Msg("orphaned event image not removed")
			}
		}
		return nil, err
	}
	return e, nil
}

type ListQuery struct {
	Category string
	Upcoming bool
	Page     domain.PageRequest
}

// List returns published events ordered by date.
func (s *Service) List(ctx context.Context, q ListQuery) (domain.Page[domain.Event], error) {
	f := domain.EventFilter{OnlyPublished: true}
	if q.Category != "" {
		cat, ok := domain.ParseEventCategory(q.Category)
		if !ok {
			return domain.Page[domain.Event]{}, domain.ErrValidationMeta("invalid category", map[string]string{"invalid": "category"})
		}
		f.Category = cat
	}
	if q.Upcoming {
		now := s.clock.Now()
		f.UpcomingFrom = &now
	}
	return s.repo.List(ctx, f, q.Page.Normalize())
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPublished {
		return nil, domain.ErrNotFound("event not found")
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

type RegisterCmd struct {
	Name  string
	Email string
	Phone string
}

// Register adds an attendee. Duplicate email and capacity are checked
// atomically with the insert by the repository.
func (s *Service) Register(ctx context.Context, eventID string, cmd RegisterCmd) (*domain.Event, error) {
	a := domain.Attendee{
		Name:         strings.TrimSpace(cmd.Name),
		Email:        domain.NormalizeEmail(cmd.Email),
		Phone:        strings.TrimSpace(cmd.Phone),
		RegisteredAt: s.clock.Now(),
	}

	e, err := s.repo.AddAttendee(ctx, eventID, a)
	if err != nil {
		return nil, err
	}

	n := domain.Notification{
		ID:      uuid.NewString(),
		Kind:    domain.NotifyEventRegistration,
		To:      a.Email,
		Subject: "Registration confirmed: " + e.Title,
		Body: fmt.Sprintf("Hi %s,\n\nYou are registered for %s on %s at %s.\n",
			a.Name, e.Title, e.Date.Format("Monday, January 2, 2006 3:04 PM"), e.Location),
	}
	if err := s.notifier.Enqueue(ctx, n); err != nil {
		zlog.Warn().Err(err).Str("event_id", e.ID).Msg("registration notification enqueue failed")
	}
	return e, nil
}
