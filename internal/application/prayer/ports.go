package prayer

import (
	"context"
	"time"

	"github.com/baechuer/church-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	Create(ctx context.Context, p *domain.PrayerRequest) error
	GetByID(ctx context.Context, id string) (*domain.PrayerRequest, error)
	List(ctx context.Context, f domain.PrayerFilter, page domain.PageRequest) (domain.Page[domain.PrayerRequest], error)
	SetAnswered(ctx context.Context, id string, answered bool, at *time.Time) error
}

// Notifier hands a notification to the async queue.
type Notifier interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}
