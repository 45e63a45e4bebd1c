package domain

import "time"

type PrayerCategory string

const (
	PrayerHealing      PrayerCategory = "healing"
	PrayerFamily       PrayerCategory = "family"
	PrayerGuidance     PrayerCategory = "guidance"
	PrayerThanksgiving PrayerCategory = "thanksgiving"
	PrayerSalvation    PrayerCategory = "salvation"
	PrayerOther        PrayerCategory = "other"
)

func ParsePrayerCategory(s string) (PrayerCategory, bool) {
	c := PrayerCategory(s)
	switch c {
	case PrayerHealing, PrayerFamily, PrayerGuidance, PrayerThanksgiving, PrayerSalvation, PrayerOther:
		return c, true
	case "":
		return PrayerOther, true
	default:
		return "", false
	}
}

const AnonymousName = "Anonymous"

type PrayerRequest struct {
	ID         string
	Name       string
	Email      string
	Request    string
	Category   PrayerCategory
	IsPublic   bool
	IsAnswered bool
	AnsweredAt *time.Time
	CreatedAt  time.Time
}

type PrayerFilter struct {
	Category PrayerCategory
	Answered *bool
}
