package event

import (
	"context"
	"time"

	"github.com/baechuer/church-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, f domain.EventFilter, page domain.PageRequest) (domain.Page[domain.Event], error)
	Delete(ctx context.Context, id string) error

	// AddAttendee runs domain.Event.CheckRegistration and the insert as one
	// atomic step per event.
	AddAttendee(ctx context.Context, eventID string, a domain.Attendee) (*domain.Event, error)
}

// ImageStore persists an uploaded event image and returns its public URL.
// Delete of a missing key is not an error.
type ImageStore interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type Notifier interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}
