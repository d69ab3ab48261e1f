package api

import (
	"context"

	"github.com/android254/droidconke-feeds/internal/model"
)

const SpeakersErrorMessage = "Failed to fetch speakers"

type SpeakersAPI struct {
	client   Getter
	endpoint endpoint
}

func NewSpeakersAPI(client Getter, opts ...Option) *SpeakersAPI {
	return &SpeakersAPI{
		client:   client,
		endpoint: newEndpoint("speakers", opts),
	}
}

func (a *SpeakersAPI) FetchSpeakers(ctx context.Context) model.DataResult[model.SpeakersPagedResponse] {
	return fetchPage[model.SpeakerData](ctx, a.client, a.endpoint, "speakers", SpeakersErrorMessage)
}
