// Package seed holds the development fixture: two leadership accounts,
// six events and five sermons.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/church-service/internal/domain"
)

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
}

type EventStore interface {
	Create(ctx context.Context, e *domain.Event) error
}

type SermonStore interface {
	Create(ctx context.Context, s *domain.Sermon) error
}

type Hasher interface {
	Hash(password string) (string, error)
}

type Stores struct {
	Users   UserStore
	Events  EventStore
	Sermons SermonStore
}

type Result struct {
	Users   int
	Events  int
	Sermons int
}

// Load writes the fixture relative to now. Users that already exist are
// skipped so the seeder can be re-run.
func Load(ctx context.Context, st Stores, h Hasher, password string, now time.Time) (Result, error) {
	var res Result
	now = now.UTC()

	hash, err := h.Hash(password)
	if err != nil {
		return res, err
	}
	for _, u := range users(hash, now) {
		err := st.Users.Create(ctx, &u)
		if domain.HasCode(err, domain.CodeConflict) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		res.Users++
	}

	for _, e := range events(now) {
		if err := st.Events.Create(ctx, &e); err != nil {
			return res, fmt.Errorf("seed event %q: %w", e.Title, err)
		}
		res.Events++
	}

	for _, s := range sermons(now) {
		if err := st.Sermons.Create(ctx, &s); err != nil {
			return res, fmt.Errorf("seed sermon %q: %w", s.Title, err)
		}
		res.Sermons++
	}
	return res, nil
}

func users(hash string, now time.Time) []domain.User {
	mk := func(name, email string, role domain.Role) domain.User {
		return domain.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return []domain.User{
		mk("Church Admin", "admin@church.org", domain.RoleAdmin),
		mk("Pastor John", "pastor@church.org", domain.RolePastor),
	}
}

func intp(n int) *int { return &n }

func events(now time.Time) []domain.Event {
	day := func(d int, hour int) time.Time {
		t := now.AddDate(0, 0, d)
		return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, time.UTC)
	}
	mk := func(title, desc, loc string, cat domain.EventCategory, date time.Time, capacity *int) domain.Event {
		return domain.Event{
			ID:           uuid.NewString(),
			Title:        title,
			Description:  desc,
			Date:         date,
			Location:     loc,
			Category:     cat,
			MaxAttendees: capacity,
			IsPublished:  true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return []domain.Event{
		mk("Sunday Worship Service", "Weekly worship with the whole congregation.", "Main Sanctuary", domain.CategoryService, day(3, 10), nil),
		mk("Wednesday Bible Study", "A walk through the Gospel of John.", "Fellowship Hall", domain.CategoryBibleStudy, day(6, 19), intp(40)),
		mk("Youth Night", "Games, worship and small groups for grades 6-12.", "Youth Room", domain.CategoryYouth, day(9, 18), intp(60)),
		mk("Community Food Drive", "Collecting and sorting donations for the local pantry.", "Church Parking Lot", domain.CategoryOutreach, day(14, 9), intp(25)),
		mk("Worship Night", "An evening of music and prayer.", "Main Sanctuary", domain.CategoryMusic, day(21, 19), nil),
		mk("Fellowship Potluck", "Bring a dish and share a meal together.", "Fellowship Hall", domain.CategoryFellowship, day(-7, 12), intp(100)),
	}
}

func sermons(now time.Time) []domain.Sermon {
	sunday := func(weeksAgo int) time.Time {
		t := now.AddDate(0, 0, -7*weeksAgo)
		return time.Date(t.Year(), t.Month(), t.Day(), 10, 0, 0, 0, time.UTC)
	}
	mk := func(title, speaker, scripture, series string, date time.Time) domain.Sermon {
		return domain.Sermon{
			ID:        uuid.NewString(),
			Title:     title,
			Speaker:   speaker,
			Date:      date,
			Scripture: scripture,
			Series:    series,
			CreatedAt: now,
		}
	}
	return []domain.Sermon{
		mk("The Good Shepherd", "Pastor John", "John 10:1-18", "I Am", sunday(1)),
		mk("The Bread of Life", "Pastor John", "John 6:35-51", "I Am", sunday(2)),
		mk("Light of the World", "Pastor John", "John 8:12-20", "I Am", sunday(3)),
		mk("Faith That Works", "Elder Sarah", "James 2:14-26", "Living Faith", sunday(4)),
		mk("Taming the Tongue", "Elder Sarah", "James 3:1-12", "Living Faith", sunday(5)),
	}
}
