package domain

import "time"

type Sermon struct {
	ID          string
	Title       string
	Speaker     string
	Date        time.Time
	Scripture   string
	Description string
	Series      string
	VideoURL    string
	AudioURL    string
	CreatedAt   time.Time
}

type SermonFilter struct {
	Speaker string
	Series  string
}
