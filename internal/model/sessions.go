package model

type Room struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type SessionData struct {
	ID            int           `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Slug          string        `json:"slug"`
	SessionFormat string        `json:"session_format"`
	SessionLevel  string        `json:"session_level"`
	StartDateTime string        `json:"start_date_time"`
	EndDateTime   string        `json:"end_date_time"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	IsKeynote     bool          `json:"is_keynote"`
	IsBookmarked  bool          `json:"is_bookmarked"`
	SessionImage  string        `json:"session_image,omitempty"`
	Rooms         []Room        `json:"rooms"`
	Speakers      []SpeakerData `json:"speakers"`
}

type SessionsPagedResponse = PagedResponse[SessionData]
