package domain

import "time"

type EventCategory string

const (
	CategoryService    EventCategory = "service"
	CategoryBibleStudy EventCategory = "bible-study"
	CategoryYouth      EventCategory = "youth"
	CategoryOutreach   EventCategory = "outreach"
	CategoryFellowship EventCategory = "fellowship"
	CategoryPrayer     EventCategory = "prayer"
	CategoryMusic      EventCategory = "music"
	CategoryOther      EventCategory = "other"
)

func ParseEventCategory(s string) (EventCategory, bool) {
	c := EventCategory(s)
	switch c {
	case CategoryService, CategoryBibleStudy, CategoryYouth, CategoryOutreach,
		CategoryFellowship, CategoryPrayer, CategoryMusic, CategoryOther:
		return c, true
	case "":
		return CategoryOther, true
	default:
		return "", false
	}
}

const (
	MsgEventFull         = "event is full"
	MsgAlreadyRegistered = "already registered for this event"
)

type Event struct {
	ID           string
	Title        string
	Description  string
	Date         time.Time
	EndDate      *time.Time
	Location     string
	Category     EventCategory
	MaxAttendees *int
	ImageURL     string
	IsPublished  bool
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Attendees is loaded for single-event reads; list reads only fill AttendeeCount.
	Attendees     []Attendee
	AttendeeCount int
}

type Attendee struct {
	Name         string
	Email        string
	Phone        string
	RegisteredAt time.Time
}

// HasAttendee reports whether email (already normalized) is registered.
func (e *Event) HasAttendee(email string) bool {
	for _, a := range e.Attendees {
		if NormalizeEmail(a.Email) == email {
			return true
		}
	}
	return false
}

// IsFull reports whether another attendee would exceed the cap. Nil cap means unlimited.
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && len(e.Attendees) >= *e.MaxAttendees
}

// CheckRegistration applies the duplicate and capacity rules for a new attendee.
func (e *Event) CheckRegistration(email string) error {
	if !e.IsPublished {
		return ErrNotFound("event not found")
	}
	if e.HasAttendee(NormalizeEmail(email)) {
		return ErrConflict(MsgAlreadyRegistered)
	}
	if e.IsFull() {
		return ErrConflict(MsgEventFull)
	}
	return nil
}

type EventFilter struct {
	Category      EventCategory
	UpcomingFrom  *time.Time
	OnlyPublished bool
}
