package domain

import "time"

type ContactStatus string

const (
	ContactNew     ContactStatus = "new"
	ContactRead    ContactStatus = "read"
	ContactReplied ContactStatus = "replied"
)

func ParseContactStatus(s string) (ContactStatus, bool) {
	c := ContactStatus(s)
	switch c {
	case ContactNew, ContactRead, ContactReplied:
		return c, true
	default:
		return "", false
	}
}

type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	Status    ContactStatus
	CreatedAt time.Time
}

type ContactFilter struct {
	Status ContactStatus
}
