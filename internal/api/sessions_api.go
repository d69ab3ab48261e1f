package api

import (
	"context"

	"github.com/android254/droidconke-feeds/internal/model"
)

const SessionsErrorMessage = "Failed to fetch sessions"

type SessionsAPI struct {
	client   Getter
	endpoint endpoint
}

func NewSessionsAPI(client Getter, opts ...Option) *SessionsAPI {
	return &SessionsAPI{
		client:   client,
		endpoint: newEndpoint("sessions", opts),
	}
}

func (a *SessionsAPI) FetchSessions(ctx context.Context) model.DataResult[model.SessionsPagedResponse] {
	return fetchPage[model.SessionData](ctx, a.client, a.endpoint, "sessions", SessionsErrorMessage)
}
