package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSponsorsPagedResponse_RoundTrip(t *testing.T) {
	next := 2
	tests := []struct {
		name string
		page SponsorsPagedResponse
	}{
		{
			name: "without meta",
			page: SponsorsPagedResponse{
				Data: []SponsorsData{{
					Title:     "AABC",
					Topic:     "abc",
					URL:       "abc",
					CreatedAt: "abc",
					Body:      "abc",
					Image:     "abc",
				}},
			},
		},
		{
			name: "with paginator",
			page: SponsorsPagedResponse{
				Data: []SponsorsData{
					{Title: "Google", Topic: "platinum", URL: "https://google.com", CreatedAt: "2022-09-01 10:00:00", Body: "b", Image: "g.png"},
					{Title: "JetBrains", Topic: "gold", URL: "https://jetbrains.com", CreatedAt: "2022-09-02 10:00:00", Body: "b", Image: "j.png"},
				},
				Meta: &PageMeta{Paginator: &Paginator{
					Count:        2,
					PerPage:      10,
					CurrentPage:  1,
					NextPage:     &next,
					HasMorePages: true,
					NextPageURL:  "https://api.droidcon.co.ke/v1/events/droidconke-2022-797/feeds?page=2",
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.page)
			require.NoError(t, err)

			var decoded SponsorsPagedResponse
			require.NoError(t, json.Unmarshal(b, &decoded))
			assert.Equal(t, tt.page, decoded)
		})
	}
}

func TestSponsorsData_WireNames(t *testing.T) {
	body := `{"data":[{"title":"AABC","topic":"abc","url":"u","created_at":"c","body":"b","image":"i"}],"meta":null}`

	var page SponsorsPagedResponse
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "AABC", page.Data[0].Title)
	assert.Equal(t, "c", page.Data[0].CreatedAt)
	assert.Nil(t, page.Meta)
}

func TestSponsorsData_CamelCaseCreatedAt(t *testing.T) {
	body := `{"data":[{"title":"AABC","topic":"abc","url":"u","createdAt":"c","body":"b","image":"i"}]}`

	var page SponsorsPagedResponse
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	assert.Equal(t, "c", page.Data[0].CreatedAt)

	b, err := json.Marshal(page.Data[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"created_at":"c"`)
}

func TestPagedResponse_RejectsMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "null", body: `null`},
		{name: "error payload", body: `{"message":"Unauthenticated."}`},
		{name: "null data", body: `{"data":null}`},
		{name: "empty sponsor", body: `{"data":[{}]}`},
		{name: "null sponsor", body: `{"data":[null]}`},
		{name: "missing image", body: `{"data":[{"title":"AABC","topic":"abc","url":"u","created_at":"c","body":"b"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page SponsorsPagedResponse
			err := json.Unmarshal([]byte(tt.body), &page)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}
}

func TestSessionsPagedResponse_Decode(t *testing.T) {
	body := `{
		"data": [{
			"id": 7,
			"title": "Compose all the things",
			"slug": "compose-all-the-things",
			"session_format": "Session",
			"is_keynote": true,
			"rooms": [{"id": 1, "title": "Room 1"}],
			"speakers": [{"name": "Jane", "tagline": "GDE"}]
		}]
	}`

	var page SessionsPagedResponse
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	require.Len(t, page.Data, 1)
	session := page.Data[0]
	assert.Equal(t, 7, session.ID)
	assert.True(t, session.IsKeynote)
	assert.Equal(t, []Room{{ID: 1, Title: "Room 1"}}, session.Rooms)
	assert.Equal(t, "Jane", session.Speakers[0].Name)
}

func TestNewListing(t *testing.T) {
	listing := NewListing(SpeakersPagedResponse{})
	assert.NotNil(t, listing.Data)
	assert.Empty(t, listing.Data)
	assert.False(t, listing.Cached)

	b, err := json.Marshal(listing)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"cached":false}`, string(b))
}
