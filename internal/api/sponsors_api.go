package api

import (
	"context"

	"github.com/android254/droidconke-feeds/internal/model"
)

// SponsorsErrorMessage is the message of every failed sponsors fetch.
// The wording does not describe the failure; clients match on it as-is.
const SponsorsErrorMessage = "Login failed"

type SponsorsAPI struct {
	client   Getter
	endpoint endpoint
}

func NewSponsorsAPI(client Getter, opts ...Option) *SponsorsAPI {
	return &SponsorsAPI{
		client:   client,
		endpoint: newEndpoint("sponsors", opts),
	}
}

// FetchSponsors returns the first page of the event's sponsor feed.
func (a *SponsorsAPI) FetchSponsors(ctx context.Context) model.DataResult[model.SponsorsPagedResponse] {
	return fetchPage[model.SponsorsData](ctx, a.client, a.endpoint, "feeds", SponsorsErrorMessage)
}
