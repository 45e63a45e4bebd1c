package dto

import "time"

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type PageResp[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type UserResp struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type LoginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserResp  `json:"user"`
}

type PrayerResp struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Request    string     `json:"request"`
	Category   string     `json:"category"`
	IsPublic   bool       `json:"is_public"`
	IsAnswered bool       `json:"is_answered"`
	AnsweredAt *time.Time `json:"answered_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EventResp never carries the attendee list, only its size.
type EventResp struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Date           time.Time  `json:"date"`
	EndDate        *time.Time `json:"end_date"`
	Location       string     `json:"location"`
	Category       string     `json:"category"`
	MaxAttendees   *int       `json:"max_attendees"`
	AttendeeCount  int        `json:"attendee_count"`
	SpotsRemaining *int       `json:"spots_remaining"`
	ImageURL       string     `json:"image_url,omitempty"`
	IsPublished    bool       `json:"is_published"`
	CreatedBy      string     `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ContactResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type SubscriptionResp struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	IsActive       bool       `json:"is_active"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at"`
}

type SermonResp struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Speaker     string    `json:"speaker"`
	Date        time.Time `json:"date"`
	Scripture   string    `json:"scripture,omitempty"`
	Description string    `json:"description,omitempty"`
	Series      string    `json:"series,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	AudioURL    string    `json:"audio_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardResp struct {
	TotalPrayerRequests      int           `json:"total_prayer_requests"`
	UnansweredPrayerRequests int           `json:"unanswered_prayer_requests"`
	TotalEvents              int           `json:"total_events"`
	UpcomingEvents           int           `json:"upcoming_events"`
	TotalSermons             int           `json:"total_sermons"`
	ActiveSubscribers        int           `json:"active_subscribers"`
	RecentPrayerRequests     []PrayerResp  `json:"recent_prayer_requests"`
	RecentContactMessages    []ContactResp `json:"recent_contact_messages"`
}

type HealthResp struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
