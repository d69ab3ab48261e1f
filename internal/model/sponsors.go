package model

import "encoding/json"

type SponsorsData struct {
	Title     string `json:"title"`
	Topic     string `json:"topic"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	Body      string `json:"body"`
	Image     string `json:"image"`
}

var sponsorsRequiredFields = []string{"title", "topic", "url", "created_at", "body", "image"}

// UnmarshalJSON requires every field to be present and non-null.
// createdAt is accepted as an alias of created_at.
func (s *SponsorsData) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if isAbsent(fields["created_at"]) && !isAbsent(fields["createdAt"]) {
		fields["created_at"] = fields["createdAt"]
	}
	for _, name := range sponsorsRequiredFields {
		if isAbsent(fields[name]) {
			return missingField("sponsor " + name)
		}
	}

	var decoded SponsorsData
	for name, target := range map[string]*string{
		"title":      &decoded.Title,
		"topic":      &decoded.Topic,
		"url":        &decoded.URL,
		"created_at": &decoded.CreatedAt,
		"body":       &decoded.Body,
		"image":      &decoded.Image,
	} {
		if err := json.Unmarshal(fields[name], target); err != nil {
			return err
		}
	}
	*s = decoded
	return nil
}

type SponsorsPagedResponse = PagedResponse[SponsorsData]
