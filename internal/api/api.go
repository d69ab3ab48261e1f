// Package api wraps the DroidconKE REST resources. Every fetch returns a
// model.DataResult; failures never escape as errors or panics.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/model"
)

// Getter is the part of network.Client the wrappers depend on.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

type endpoint struct {
	eventSlug string
	perPage   int
}

type Option func(*endpoint)

func WithEventSlug(slug string) Option {
	return func(e *endpoint) {
		e.eventSlug = slug
	}
}

func WithPerPage(perPage int) Option {
	return func(e *endpoint) {
		if perPage > 0 {
			e.perPage = perPage
		}
	}
}

func newEndpoint(resource string, opts []Option) endpoint {
	e := endpoint{
		eventSlug: config.GetEventSlug(),
		perPage:   config.GetPerPage(resource),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e endpoint) path(resource string) string {
	return fmt.Sprintf("/events/%s/%s", url.PathEscape(e.eventSlug), resource)
}

// fetchPage requests the first page of resource and collapses every failure into errMsg.
func fetchPage[T any](ctx context.Context, client Getter, e endpoint, resource, errMsg string) model.DataResult[model.PagedResponse[T]] {
	path := e.path(resource)
	query := url.Values{"per_page": {strconv.Itoa(e.perPage)}}

	var page model.PagedResponse[T]
	if err := client.Get(ctx, path, query, &page); err != nil {
		config.GetLogger().Errorw("Error fetching "+resource, "path", path, "error", err)
		return model.NewError[model.PagedResponse[T]](errMsg)
	}
	return model.NewSuccess(page)
}
