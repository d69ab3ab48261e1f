package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/android254/droidconke-feeds/internal/api"
	"github.com/android254/droidconke-feeds/internal/circuitbreaker"
	"github.com/android254/droidconke-feeds/internal/model"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRedisClient struct {
	getFunc func(ctx context.Context, key string) *redisv9.StringCmd
	setFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

func (m *mockRedisClient) Get(ctx context.Context, key string) *redisv9.StringCmd {
	return m.getFunc(ctx, key)
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
	return m.setFunc(ctx, key, value, expiration)
}

func cacheMiss() *mockRedisClient {
	return &mockRedisClient{
		getFunc: func(ctx context.Context, key string) *redisv9.StringCmd {
			return redisv9.NewStringResult("", redisv9.Nil)
		},
		setFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
			return redisv9.NewStatusResult("OK", nil)
		},
	}
}

type fakeSponsors struct {
	calls  int
	result model.DataResult[model.SponsorsPagedResponse]
}

func (f *fakeSponsors) FetchSponsors(context.Context) model.DataResult[model.SponsorsPagedResponse] {
	f.calls++
	return f.result
}

type fakeSessions struct {
	result model.DataResult[model.SessionsPagedResponse]
}

func (f *fakeSessions) FetchSessions(context.Context) model.DataResult[model.SessionsPagedResponse] {
	return f.result
}

type fakeSpeakers struct {
	result model.DataResult[model.SpeakersPagedResponse]
}

func (f *fakeSpeakers) FetchSpeakers(context.Context) model.DataResult[model.SpeakersPagedResponse] {
	return f.result
}

func newTestRepository(cache cacheClient, sponsors *fakeSponsors) *conferenceRepository {
	return &conferenceRepository{
		redisClient: cache,
		sponsors:    sponsors,
		sessions:    &fakeSessions{result: model.NewSuccess(model.SessionsPagedResponse{Data: []model.SessionData{{ID: 1, Title: "Keynote"}}})},
		speakers:    &fakeSpeakers{result: model.NewError[model.SpeakersPagedResponse](api.SpeakersErrorMessage)},
		breakers: map[string]*circuitbreaker.Breaker{
			resourceSponsors: circuitbreaker.New(resourceSponsors, 2, time.Minute),
			resourceSessions: circuitbreaker.New(resourceSessions, 2, time.Minute),
			resourceSpeakers: circuitbreaker.New(resourceSpeakers, 2, time.Minute),
		},
		eventSlug:  "droidconke-2022-797",
		expiration: 10 * time.Minute,
	}
}

func sponsorsPage() model.SponsorsPagedResponse {
	return model.SponsorsPagedResponse{Data: []model.SponsorsData{{Title: "AABC", Topic: "abc"}}}
}

func TestGetSponsors_CacheHit(t *testing.T) {
	cached := model.Listing[model.SponsorsData]{Data: []model.SponsorsData{{Title: "Cached sponsor"}}}
	b, _ := json.Marshal(cached)
	mockRedis := &mockRedisClient{
		getFunc: func(ctx context.Context, key string) *redisv9.StringCmd {
			assert.Equal(t, "droidconke:droidconke-2022-797:sponsors", key)
			return redisv9.NewStringResult(string(b), nil)
		},
		setFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
			t.Error("cache hit must not write")
			return redisv9.NewStatusResult("OK", nil)
		},
	}
	sponsors := &fakeSponsors{result: model.NewSuccess(sponsorsPage())}
	repo := newTestRepository(mockRedis, sponsors)

	listing, err := repo.GetSponsors(context.Background())
	require.NoError(t, err)
	assert.True(t, listing.Cached)
	assert.Equal(t, "Cached sponsor", listing.Data[0].Title)
	assert.Zero(t, sponsors.calls)
}

func TestGetSponsors_CacheMiss_APISuccess(t *testing.T) {
	var stored []byte
	var ttl time.Duration
	mockRedis := cacheMiss()
	mockRedis.setFunc = func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
		stored = value.([]byte)
		ttl = expiration
		return redisv9.NewStatusResult("OK", nil)
	}
	sponsors := &fakeSponsors{result: model.NewSuccess(sponsorsPage())}
	repo := newTestRepository(mockRedis, sponsors)

	listing, err := repo.GetSponsors(context.Background())
	require.NoError(t, err)
	assert.False(t, listing.Cached)
	assert.Equal(t, "AABC", listing.Data[0].Title)
	assert.Equal(t, 1, sponsors.calls)
	assert.Equal(t, 10*time.Minute, ttl)
	assert.JSONEq(t, `{"data":[{"title":"AABC","topic":"abc","url":"","created_at":"","body":"","image":""}],"cached":false}`, string(stored))
}

func TestGetSponsors_CacheMiss_APIError(t *testing.T) {
	sponsors := &fakeSponsors{result: model.NewError[model.SponsorsPagedResponse](api.SponsorsErrorMessage)}
	repo := newTestRepository(cacheMiss(), sponsors)

	_, err := repo.GetSponsors(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "Login failed")
}

func TestGetSponsors_BreakerOpens(t *testing.T) {
	sponsors := &fakeSponsors{result: model.NewError[model.SponsorsPagedResponse](api.SponsorsErrorMessage)}
	repo := newTestRepository(cacheMiss(), sponsors)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.GetSponsors(ctx)
		require.ErrorIs(t, err, ErrUpstream)
	}

	_, err := repo.GetSponsors(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, sponsors.calls, "open breaker must not reach upstream")
}

// cancellingSponsors cancels the caller mid-fetch and fails the way the
// wrapper does when its request is aborted.
type cancellingSponsors struct {
	calls  int
	cancel context.CancelFunc
}

func (f *cancellingSponsors) FetchSponsors(ctx context.Context) model.DataResult[model.SponsorsPagedResponse] {
	f.calls++
	if f.cancel != nil {
		f.cancel()
	}
	if ctx.Err() != nil {
		return model.NewError[model.SponsorsPagedResponse](api.SponsorsErrorMessage)
	}
	return model.NewSuccess(sponsorsPage())
}

func TestGetSponsors_CancelledCallersDoNotOpenBreaker(t *testing.T) {
	fetcher := &cancellingSponsors{}
	repo := newTestRepository(cacheMiss(), &fakeSponsors{})
	repo.sponsors = fetcher

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := repo.GetSponsors(ctx)
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Zero(t, fetcher.calls, "cancelled callers must not reach upstream")

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		fetcher.cancel = cancel
		_, err := repo.GetSponsors(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	fetcher.cancel = nil
	listing, err := repo.GetSponsors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AABC", listing.Data[0].Title)
	assert.Equal(t, "closed", repo.breakers[resourceSponsors].State())
}

func TestFetchFromExternalAPI_UnknownResource(t *testing.T) {
	repo := newTestRepository(cacheMiss(), &fakeSponsors{})

	_, err := repo.fetchFromExternalAPI(context.Background(), "workshops", func() (any, error) {
		t.Error("fetch must not run without a breaker")
		return nil, nil
	})
	require.Error(t, err)
	assert.Len(t, repo.breakers, 3)
}

func TestGetSponsors_CacheWriteFailureIsIgnored(t *testing.T) {
	mockRedis := cacheMiss()
	mockRedis.setFunc = func(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd {
		return redisv9.NewStatusResult("", errors.New("redis down"))
	}
	repo := newTestRepository(mockRedis, &fakeSponsors{result: model.NewSuccess(sponsorsPage())})

	listing, err := repo.GetSponsors(context.Background())
	require.NoError(t, err)
	assert.Len(t, listing.Data, 1)
}

func TestGetFromCache_UnmarshalError(t *testing.T) {
	mockRedis := &mockRedisClient{
		getFunc: func(ctx context.Context, key string) *redisv9.StringCmd {
			return redisv9.NewStringResult("not-json", nil)
		},
	}
	_, err := getFromCache[model.SponsorsData](context.Background(), mockRedis, "droidconke:x:sponsors")
	if err == nil {
		t.Fatalf("Expected error, got nil")
	}
}

func TestGetSessions_And_GetSpeakers(t *testing.T) {
	repo := newTestRepository(cacheMiss(), &fakeSponsors{})

	sessions, err := repo.GetSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Keynote", sessions.Data[0].Title)

	_, err = repo.GetSpeakers(context.Background())
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), api.SpeakersErrorMessage)
}

func TestGetSponsors_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	defer client.Close()

	sponsors := &fakeSponsors{result: model.NewSuccess(sponsorsPage())}
	repo := newTestRepository(client, sponsors)
	ctx := context.Background()

	first, err := repo.GetSponsors(ctx)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	key := "droidconke:droidconke-2022-797:sponsors"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	second, err := repo.GetSponsors(ctx)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, sponsors.calls)

	mr.FastForward(11 * time.Minute)
	third, err := repo.GetSponsors(ctx)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, sponsors.calls)
}
