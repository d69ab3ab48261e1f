package integrationtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/android254/droidconke-feeds/internal/handler"
	"github.com/android254/droidconke-feeds/internal/middleware"
	"github.com/android254/droidconke-feeds/internal/network"
	"github.com/android254/droidconke-feeds/internal/repository"
	"github.com/android254/droidconke-feeds/internal/requestid"
	"github.com/android254/droidconke-feeds/internal/service"
)

const eventPath = "/events/droidconke-2022-797"

// fakeUpstream stands in for the DroidconKE API and records what it receives.
type fakeUpstream struct {
	mu         sync.Mutex
	statusCode int
	hits       map[string]int
	authHeader string
	requestID  string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{statusCode: http.StatusOK, hits: make(map[string]int)}
}

func (u *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.hits[r.URL.Path]++
	u.authHeader = r.Header.Get("Authorization")
	u.requestID = r.Header.Get(requestid.Header)
	status := u.statusCode
	u.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	var body string
	switch {
	case r.URL.Path == "/v1"+eventPath+"/feeds" && r.URL.RawQuery == "per_page=10":
		body = `{"data":[{"title":"AABC","topic":"abc","url":"abc","created_at":"abc","body":"abc","image":"abc"}],"meta":null}`
	case r.URL.Path == "/v1"+eventPath+"/sessions" && strings.HasPrefix(r.URL.RawQuery, "per_page="):
		body = `{"data":[{"id":1,"title":"Keynote","is_keynote":true,"rooms":[{"id":1,"title":"Main hall"}],"speakers":[{"name":"Jane"}]}]}`
	case r.URL.Path == "/v1"+eventPath+"/speakers" && strings.HasPrefix(r.URL.RawQuery, "per_page="):
		body = `{"data":[{"name":"Jane","tagline":"GDE"},{"name":"John","tagline":"Android engineer"}]}`
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (u *fakeUpstream) setStatus(code int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.statusCode = code
}

func (u *fakeUpstream) hitCount(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits["/v1"+eventPath+path]
}

func (u *fakeUpstream) lastHeaders() (auth, reqID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.authHeader, u.requestID
}

func createMockRedisServer() *miniredis.Miniredis {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		panic(err)
	}
	return mr
}

// setupIntegrationTestServer wires the real handler chain against the fake upstream.
func setupIntegrationTestServer(upstreamURL string) *httptest.Server {
	client := network.NewHTTPClientFactory(
		network.NewStaticTokenProvider("integration-token"),
		network.WithBaseURL(upstreamURL+"/v1"),
	).Create(nil)

	conferenceService := service.NewConferenceService(repository.NewConferenceRepository(client))

	mux := http.NewServeMux()
	handler.NewConferenceHandler(conferenceService).Register(mux)

	return httptest.NewServer(middleware.RequestID(middleware.AccessLog(mux)))
}
