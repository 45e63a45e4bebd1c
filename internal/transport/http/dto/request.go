package dto

import "time"

type LoginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterUserReq struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin pastor staff volunteer"`
}

type PrayerReq struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Request  string `json:"request" validate:"notblank,max=5000"`
	Category string `json:"category"`
	IsPublic bool   `json:"is_public"`
}

// AnswerPrayerReq is optional; an empty body marks the request answered.
type AnswerPrayerReq struct {
	IsAnswered *bool `json:"is_answered"`
}

type EventReq struct {
	Title        string     `json:"title" validate:"notblank,max=200"`
	Description  string     `json:"description" validate:"notblank"`
	Date         *time.Time `json:"date" validate:"required"`
	EndDate      *time.Time `json:"end_date"`
	Location     string     `json:"location" validate:"notblank,max=200"`
	Category     string     `json:"category"`
	MaxAttendees *int       `json:"max_attendees" validate:"omitempty,min=1"`
	IsPublished  *bool      `json:"is_published"`
}

type AttendeeReq struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

type ContactReq struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Subject string `json:"subject" validate:"notblank,max=200"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

type ContactStatusReq struct {
	Status string `json:"status" validate:"required,oneof=new read replied"`
}

type SubscribeReq struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=100"`
}

type UnsubscribeReq struct {
	Email string `json:"email" validate:"required,email"`
}

type SermonReq struct {
	Title       string     `json:"title" validate:"notblank,max=200"`
	Speaker     string     `json:"speaker" validate:"notblank,max=100"`
	Date        *time.Time `json:"date" validate:"required"`
	Scripture   string     `json:"scripture"`
	Description string     `json:"description"`
	Series      string     `json:"series"`
	VideoURL    string     `json:"video_url" validate:"omitempty,url"`
	AudioURL    string     `json:"audio_url" validate:"omitempty,url"`
}
