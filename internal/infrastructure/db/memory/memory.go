// Package memory holds mutex-guarded repositories used by STORE_DRIVER=memory
// and by tests. They honor the same contracts as the postgres repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/church-service/internal/domain"
)

type Repos struct {
	Users         *UserRepo
	Events        *EventRepo
	Prayers       *PrayerRepo
	Contacts      *ContactRepo
	Subscriptions *SubscriptionRepo
	Sermons       *SermonRepo
}

func New() *Repos {
	return &Repos{
		Users:         &UserRepo{byID: map[string]domain.User{}},
		Events:        &EventRepo{byID: map[string]domain.Event{}},
		Prayers:       &PrayerRepo{byID: map[string]domain.PrayerRequest{}},
		Contacts:      &ContactRepo{byID: map[string]domain.ContactMessage{}},
		Subscriptions: &SubscriptionRepo{byID: map[string]domain.Subscription{}},
		Sermons:       &SermonRepo{byID: map[string]domain.Sermon{}},
	}
}

// ---- users ----

type UserRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.User
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := domain.NormalizeEmail(u.Email)
	for _, existing := range r.byID {
		if existing.Email == email {
			return domain.ErrConflict("email already registered")
		}
	}
	cp := *u
	cp.Email = email
	r.byID[u.ID] = cp
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	for _, u := range r.byID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound("user not found")
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("user not found")
	}
	return &u, nil
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound("user not found")
	}
	u.LastLoginAt = &at
	u.UpdatedAt = at
	r.byID[id] = u
	return nil
}

func (r *UserRepo) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound("user not found")
	}
	u.IsActive = active
	u.UpdatedAt = at
	r.byID[id] = u
	return nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

// ---- events ----

type EventRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Event
}

func cloneEvent(e domain.Event) domain.Event {
	e.Attendees = append([]domain.Attendee(nil), e.Attendees...)
	e.AttendeeCount = len(e.Attendees)
	return e
}

func (r *EventRepo) Create(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = cloneEvent(*e)
	return nil
}

func (r *EventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	cp := cloneEvent(e)
	return &cp, nil
}

func (r *EventRepo) match(e domain.Event, f domain.EventFilter) bool {
	if f.OnlyPublished && !e.IsPublished {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.UpcomingFrom != nil && e.Date.Before(*f.UpcomingFrom) {
		return false
	}
	return true
}

func (r *EventRepo) List(_ context.Context, f domain.EventFilter, page domain.PageRequest) (domain.Page[domain.Event], error) {
	r.mu.RLock()
	all := make([]domain.Event, 0, len(r.byID))
	for _, e := range r.byID {
		if r.match(e, f) {
			all = append(all, cloneEvent(e))
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID < all[j].ID
		}
		return all[i].Date.Before(all[j].Date)
	})
	return domain.Paginate(all, page), nil
}

func (r *EventRepo) Count(_ context.Context, f domain.EventFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.byID {
		if r.match(e, f) {
			n++
		}
	}
	return n, nil
}

func (r *EventRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound("event not found")
	}
	delete(r.byID, id)
	return nil
}

// AddAttendee holds the write lock across check and append, so concurrent
// registrations cannot overbook.
func (r *EventRepo) AddAttendee(_ context.Context, eventID string, a domain.Attendee) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	if err := e.CheckRegistration(a.Email); err != nil {
		return nil, err
	}
	e = cloneEvent(e)
	e.Attendees = append(e.Attendees, a)
	r.byID[eventID] = e

	cp := cloneEvent(e)
	return &cp, nil
}

// ---- prayer requests ----

type PrayerRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.PrayerRequest
}

func (r *PrayerRepo) Create(_ context.Context, p *domain.PrayerRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = *p
	return nil
}

func (r *PrayerRepo) GetByID(_ context.Context, id string) (*domain.PrayerRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("prayer request not found")
	}
	return &p, nil
}

func (r *PrayerRepo) filtered(f domain.PrayerFilter) []domain.PrayerRequest {
	r.mu.RLock()
	out := make([]domain.PrayerRequest, 0, len(r.byID))
	for _, p := range r.byID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Answered != nil && p.IsAnswered != *f.Answered {
			continue
		}
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

func (r *PrayerRepo) List(_ context.Context, f domain.PrayerFilter, page domain.PageRequest) (domain.Page[domain.PrayerRequest], error) {
	return domain.Paginate(r.filtered(f), page), nil
}

func (r *PrayerRepo) Count(_ context.Context, f domain.PrayerFilter) (int, error) {
	return len(r.filtered(f)), nil
}

func (r *PrayerRepo) Recent(_ context.Context, limit int) ([]domain.PrayerRequest, error) {
	all := r.filtered(domain.PrayerFilter{})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *PrayerRepo) SetAnswered(_ context.Context, id string, answered bool, at *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound("prayer request not found")
	}
	p.IsAnswered = answered
	p.AnsweredAt = at
	r.byID[id] = p
	return nil
}

// ---- contact messages ----

type ContactRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.ContactMessage
}

func (r *ContactRepo) Create(_ context.Context, m *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = *m
	return nil
}

func (r *ContactRepo) GetByID(_ context.Context, id string) (*domain.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("contact message not found")
	}
	return &m, nil
}

func (r *ContactRepo) filtered(f domain.ContactFilter) []domain.ContactMessage {
	r.mu.RLock()
	out := make([]domain.ContactMessage, 0, len(r.byID))
	for _, m := range r.byID {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

func (r *ContactRepo) List(_ context.Context, f domain.ContactFilter, page domain.PageRequest) (domain.Page[domain.ContactMessage], error) {
	return domain.Paginate(r.filtered(f), page), nil
}

func (r *ContactRepo) Recent(_ context.Context, limit int) ([]domain.ContactMessage, error) {
	all := r.filtered(domain.ContactFilter{})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *ContactRepo) SetStatus(_ context.Context, id string, status domain.ContactStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound("contact message not found")
	}
	m.Status = status
	r.byID[id] = m
	return nil
}

// ---- newsletter ----

type SubscriptionRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Subscription
}

func (r *SubscriptionRepo) Create(_ context.Context, s *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == s.Email {
			return domain.ErrConflict("email is already subscribed")
		}
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *SubscriptionRepo) GetByEmail(_ context.Context, email string) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	for _, s := range r.byID {
		if s.Email == email {
			cp := s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound("subscription not found")
}

func (r *SubscriptionRepo) Update(_ context.Context, s *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return domain.ErrNotFound("subscription not found")
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *SubscriptionRepo) CountActive(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.byID {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

// ---- sermons ----

type SermonRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Sermon
}

func (r *SermonRepo) Create(_ context.Context, s *domain.Sermon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = *s
	return nil
}

func (r *SermonRepo) GetByID(_ context.Context, id string) (*domain.Sermon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("sermon not found")
	}
	return &s, nil
}

func (r *SermonRepo) List(_ context.Context, f domain.SermonFilter, page domain.PageRequest) (domain.Page[domain.Sermon], error) {
	r.mu.RLock()
	all := make([]domain.Sermon, 0, len(r.byID))
	for _, s := range r.byID {
		if f.Speaker != "" && !strings.EqualFold(s.Speaker, f.Speaker) {
			continue
		}
		if f.Series != "" && !strings.EqualFold(s.Series, f.Series) {
			continue
		}
		all = append(all, s)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return newerFirst(all[i].Date, all[j].Date, all[i].ID, all[j].ID) })
	return domain.Paginate(all, page), nil
}

func (r *SermonRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func newerFirst(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}
