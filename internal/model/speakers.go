package model

type SpeakerData struct {
	Name           string `json:"name"`
	Tagline        string `json:"tagline"`
	Biography      string `json:"biography"`
	Avatar         string `json:"avatar"`
	Twitter        string `json:"twitter,omitempty"`
	Facebook       string `json:"facebook,omitempty"`
	LinkedIn       string `json:"linkedin,omitempty"`
	Instagram      string `json:"instagram,omitempty"`
	Blog           string `json:"blog,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`
}

type SpeakersPagedResponse = PagedResponse[SpeakerData]
