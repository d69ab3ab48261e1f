package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/android254/droidconke-feeds/internal/api"
	"github.com/android254/droidconke-feeds/internal/circuitbreaker"
	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/model"
	"github.com/android254/droidconke-feeds/internal/redis"
	redisv9 "github.com/redis/go-redis/v9"
)

// Custom error types
var (
	ErrUpstream    = errors.New("upstream API error")
	ErrUnavailable = errors.New("upstream API temporarily unavailable")
)

const (
	resourceSponsors = "sponsors"
	resourceSessions = "sessions"
	resourceSpeakers = "speakers"
)

// ConferenceRepository defines the interface for conference data access
type ConferenceRepository interface {
	GetSponsors(ctx context.Context) (*model.Listing[model.SponsorsData], error)
	GetSessions(ctx context.Context) (*model.Listing[model.SessionData], error)
	GetSpeakers(ctx context.Context) (*model.Listing[model.SpeakerData], error)
}

type SponsorsFetcher interface {
	FetchSponsors(ctx context.Context) model.DataResult[model.SponsorsPagedResponse]
}

type SessionsFetcher interface {
	FetchSessions(ctx context.Context) model.DataResult[model.SessionsPagedResponse]
}

type SpeakersFetcher interface {
	FetchSpeakers(ctx context.Context) model.DataResult[model.SpeakersPagedResponse]
}

// cacheClient is the subset of the Redis client the repository uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// conferenceRepository implements ConferenceRepository
type conferenceRepository struct {
	redisClient cacheClient
	sponsors    SponsorsFetcher
	sessions    SessionsFetcher
	speakers    SpeakersFetcher
	breakers    map[string]*circuitbreaker.Breaker
	eventSlug   string
	expiration  time.Duration
}

// NewConferenceRepository creates a repository reading through the shared
// Redis cache into the DroidconKE API behind client.
func NewConferenceRepository(client api.Getter) ConferenceRepository {
	return &conferenceRepository{
		redisClient: redis.GetClient(),
		sponsors:    api.NewSponsorsAPI(client),
		sessions:    api.NewSessionsAPI(client),
		speakers:    api.NewSpeakersAPI(client),
		breakers: map[string]*circuitbreaker.Breaker{
			resourceSponsors: circuitbreaker.NewFromConfig(resourceSponsors),
			resourceSessions: circuitbreaker.NewFromConfig(resourceSessions),
			resourceSpeakers: circuitbreaker.NewFromConfig(resourceSpeakers),
		},
		eventSlug:  config.GetEventSlug(),
		expiration: config.GetCacheExpiration(),
	}
}

func (r *conferenceRepository) GetSponsors(ctx context.Context) (*model.Listing[model.SponsorsData], error) {
	return getListing(ctx, r, resourceSponsors, r.sponsors.FetchSponsors)
}

func (r *conferenceRepository) GetSessions(ctx context.Context) (*model.Listing[model.SessionData], error) {
	return getListing(ctx, r, resourceSessions, r.sessions.FetchSessions)
}

func (r *conferenceRepository) GetSpeakers(ctx context.Context) (*model.Listing[model.SpeakerData], error) {
	return getListing(ctx, r, resourceSpeakers, r.speakers.FetchSpeakers)
}

// getListing checks the cache first, then the upstream API, and caches what it fetched.
func getListing[T any](
	ctx context.Context,
	r *conferenceRepository,
	resource string,
	fetch func(context.Context) model.DataResult[model.PagedResponse[T]],
) (*model.Listing[T], error) {
	key := redis.CacheKey(r.eventSlug, resource)

	if cached, err := getFromCache[T](ctx, r.redisClient, key); err == nil {
		return cached, nil
	}

	page, err := r.fetchFromExternalAPI(ctx, resource, func() (any, error) {
		page, err := model.Unwrap(fetch(ctx))
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return page, err
	})
	if err != nil {
		return nil, err
	}

	listing := model.NewListing(page.(model.PagedResponse[T]))
	r.cacheListing(ctx, key, listing)
	return listing, nil
}

// fetchFromExternalAPI runs fetch behind the resource's circuit breaker.
func (r *conferenceRepository) fetchFromExternalAPI(ctx context.Context, resource string, fetch func() (any, error)) (any, error) {
	breaker, ok := r.breakers[resource]
	if !ok {
		return nil, fmt.Errorf("no circuit breaker for %s", resource)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	page, err := breaker.Execute(fetch)
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			config.GetLogger().Warnw("Upstream fetch rejected", "resource", resource, "error", err)
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, resource)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return page, nil
}

// getFromCache retrieves a listing from Redis cache
func getFromCache[T any](ctx context.Context, client cacheClient, key string) (*model.Listing[T], error) {
	val, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var listing model.Listing[T]
	if err := json.Unmarshal([]byte(val), &listing); err != nil {
		return nil, err
	}

	listing.Cached = true
	return &listing, nil
}

// cacheListing stores a listing in Redis cache
func (r *conferenceRepository) cacheListing(ctx context.Context, key string, listing any) {
	b, err := json.Marshal(listing)
	if err != nil {
		config.GetLogger().Errorw("Error encoding listing for cache", "key", key, "error", err)
		return
	}
	if err := r.redisClient.Set(ctx, key, b, r.expiration).Err(); err != nil {
		config.GetLogger().Errorw("Error caching listing", "key", key, "error", err)
	}
}
