package sermon

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/church-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	Create(ctx context.Context, s *domain.Sermon) error
	GetByID(ctx context.Context, id string) (*domain.Sermon, error)
	List(ctx context.Context, f domain.SermonFilter, page domain.PageRequest) (domain.Page[domain.Sermon], error)
}

type Service struct {
	repo  Repo
	clock Clock
}

func NewService(repo Repo, clock Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

// List is ordered newest sermon first.
func (s *Service) List(ctx context.Context, f domain.SermonFilter, page domain.PageRequest) (domain.Page[domain.Sermon], error) {
	f.Speaker = strings.TrimSpace(f.Speaker)
	f.Series = strings.TrimSpace(f.Series)
	return s.repo.List(ctx, f, page.Normalize())
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Sermon, error) {
	return s.repo.GetByID(ctx, id)
}

type CreateCmd struct {
	Title       string
	Speaker     string
	Date        time.Time
	Scripture   string
	Description string
	Series      string
	VideoURL    string
	AudioURL    string
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Sermon, error) {
	sm := &domain.Sermon{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(cmd.Title),
		Speaker:     strings.TrimSpace(cmd.Speaker),
		Date:        cmd.Date.UTC(),
		Scripture:   strings.TrimSpace(cmd.Scripture),
		Description: strings.TrimSpace(cmd.Description),
		Series:      strings.TrimSpace(cmd.Series),
		VideoURL:    strings.TrimSpace(cmd.VideoURL),
		AudioURL:    strings.TrimSpace(cmd.AudioURL),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, sm); err != nil {
		return nil, err
	}
	return sm, nil
}
