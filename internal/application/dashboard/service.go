package dashboard

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/baechuer/church-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type PrayerCounter interface {
	Count(ctx context.Context, f domain.PrayerFilter) (int, error)
	Recent(ctx context.Context, limit int) ([]domain.PrayerRequest, error)
}

type EventCounter interface {
	Count(ctx context.Context, f domain.EventFilter) (int, error)
}

type SermonCounter interface {
	Count(ctx context.Context) (int, error)
}

type SubscriberCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type ContactLister interface {
	Recent(ctx context.Context, limit int) ([]domain.ContactMessage, error)
}

// Cache is an optional short-lived store for the merged stats.
type Cache interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, bool, error)
	SetStats(ctx context.Context, s *domain.DashboardStats, ttl time.Duration) error
}

type Deps struct {
	Prayers     PrayerCounter
	Events      EventCounter
	Sermons     SermonCounter
	Subscribers SubscriberCounter
	Contacts    ContactLister
	Clock       Clock

	Cache    Cache
	CacheTTL time.Duration
}

type Service struct {
	d Deps
}

func NewService(d Deps) *Service {
	return &Service{d: d}
}

// Stats runs six counts and two capped listings concurrently and merges
// them. Any failed query fails the whole call.
func (s *Service) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.d.Cache != nil {
		if cached, ok, err := s.d.Cache.GetStats(ctx); err == nil && ok {
			return cached, nil
		} else if err != nil {
			zlog.Warn().Err(err).Msg("dashboard cache read failed")
		}
	}

	var out domain.DashboardStats
	now := s.d.Clock.Now()
	unanswered := false

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&out.TotalPrayerRequests, func(ctx context.Context) (int, error) {
		return s.d.Prayers.Count(ctx, domain.PrayerFilter{})
	})
	count(&out.UnansweredPrayerRequests, func(ctx context.Context) (int, error) {
		return s.d.Prayers.Count(ctx, domain.PrayerFilter{Answered: &unanswered})
	})
	count(&out.TotalEvents, func(ctx context.Context) (int, error) {
		return s.d.Events.Count(ctx, domain.EventFilter{})
	})
	count(&out.UpcomingEvents, func(ctx context.Context) (int, error) {
		return s.d.Events.Count(ctx, domain.EventFilter{UpcomingFrom: &now})
	})
	count(&out.TotalSermons, s.d.Sermons.Count)
	count(&out.ActiveSubscribers, s.d.Subscribers.CountActive)

	g.Go(func() error {
		items, err := s.d.Prayers.Recent(gctx, domain.DashboardRecentLimit)
		if err != nil {
			return err
		}
		out.RecentPrayerRequests = items
		return nil
	})
	g.Go(func() error {
		items, err := s.d.Contacts.Recent(gctx, domain.DashboardRecentLimit)
		if err != nil {
			return err
		}
		out.RecentContactMessages = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.d.Cache != nil && s.d.CacheTTL > 0 {
		if err := s.d.Cache.SetStats(ctx, &out, s.d.CacheTTL); err != nil {
			zlog.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}
	return &out, nil
}
