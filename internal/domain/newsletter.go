package domain

import "time"

type Subscription struct {
	ID             string
	Email          string
	Name           string
	IsActive       bool
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
}

// Reactivate flips an unsubscribed record back on, keeping its identity.
func (s *Subscription) Reactivate(now time.Time, name string) {
	s.IsActive = true
	s.UnsubscribedAt = nil
	s.SubscribedAt = now
	if name != "" {
		s.Name = name
	}
}

func (s *Subscription) Deactivate(now time.Time) {
	s.IsActive = false
	s.UnsubscribedAt = &now
}
