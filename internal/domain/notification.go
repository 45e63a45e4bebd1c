package domain

type NotificationKind string

const (
	NotifyPrayerRequest     NotificationKind = "prayer_request"
	NotifyEventRegistration NotificationKind = "event_registration"
	NotifyContactMessage    NotificationKind = "contact_message"
	NotifyNewsletterWelcome NotificationKind = "newsletter_welcome"
)

// Notification is one outbound email. ID doubles as the idempotency key.
type Notification struct {
	ID      string           `json:"id"`
	Kind    NotificationKind `json:"kind"`
	To      string           `json:"to"`
	Subject string           `json:"subject"`
	Body    string           `json:"body"`
}
