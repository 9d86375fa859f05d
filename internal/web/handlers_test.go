package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"twfollowers/pkg/auth"
	"twfollowers/pkg/config"
	errs "twfollowers/pkg/errors"
	"twfollowers/pkg/followers"
	"twfollowers/pkg/logger"
	"twfollowers/pkg/ratelimit"
	"twfollowers/pkg/storage"
	"twfollowers/pkg/twitter"
)

type fakeService struct {
	submitResult *followers.SubmissionResult
	submitErr    error
	report       *followers.Report
	reportErr    error

	submitted []string
	reports   int
}

func (f *fakeService) Submit(ctx context.Context, username string) (*followers.SubmissionResult, error) {
	f.submitted = append(f.submitted, username)
	return f.submitResult, f.submitErr
}

func (f *fakeService) BuildReport(ctx context.Context) (*followers.Report, error) {
	f.reports++
	return f.report, f.reportErr
}

func newTestEngine(t *testing.T, svc Service) *gin.Engine {
	t.Helper()
	r, _, err := NewServer(config.DefaultConfig().Server, svc, logger.NewTestLogger())
	require.NoError(t, err)
	return r
}

func doRequest(r http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestEngine(t, &fakeService{})

	w := doRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndexRendersForm(t *testing.T) {
	svc := &fakeService{}
	r := newTestEngine(t, svc)

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		w := doRequest(r, method, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="username"`)
	}
	assert.Empty(t, svc.submitted)
}

func TestIndexSubmitRedirects(t *testing.T) {
	svc := &fakeService{submitResult: &followers.SubmissionResult{Username: "alice", Followers: []string{"bob"}}}
	r := newTestEngine(t, svc)

	w := doRequest(r, http.MethodPost, "/", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/followers/", w.Header().Get("Location"))
	assert.Equal(t, []string{"alice"}, svc.submitted)
}

func TestIndexSubmitErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", errs.New(errs.ErrorTypeValidation, followers.MsgUsernameRequired), http.StatusBadRequest, "Username is required"},
		{"lookup", errs.New(errs.ErrorTypeUpstream, followers.MsgLookupFailed), http.StatusBadGateway, "Failed to retrieve user ID"},
		{"followers status", errs.New(errs.ErrorTypeUpstream, "Error: 429"), http.StatusBadGateway, "Error: 429"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestEngine(t, &fakeService{submitErr: tt.err})

			w := doRequest(r, http.MethodPost, "/", url.Values{"username": {"x"}})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestFollowersReport(t *testing.T) {
	svc := &fakeService{report: &followers.Report{
		Entries: []followers.Entry{
			{Username: "carol", FollowersCount: 1500000, ProfileImageURL: "https://pbs.twimg.com/carol.jpg"},
			{Username: "bob", FollowersCount: 100, ProfileImageURL: "https://pbs.twimg.com/bob.jpg"},
		},
		Failures: []followers.Failure{{Username: "ghost", Err: errors.New("not found")}},
	}}
	r := newTestEngine(t, svc)

	w := doRequest(r, http.MethodGet, "/followers/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "1,500,000")
	assert.Contains(t, body, `src="https://pbs.twimg.com/carol.jpg"`)
	assert.Contains(t, body, "Error: ghost: not found")
	assert.Less(t, strings.Index(body, "@carol"), strings.Index(body, "@bob"))
}

func TestFollowersNonGetRendersEmpty(t *testing.T) {
	svc := &fakeService{}
	r := newTestEngine(t, svc)

	w := doRequest(r, http.MethodPost, "/followers/", url.Values{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No followers to show.")
	assert.Equal(t, 0, svc.reports)
}

func TestFollowersErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"no data", errs.New(errs.ErrorTypeNoData, "No data found in data.json"), http.StatusOK, "No data found in data.json"},
		{"corrupt", errs.New(errs.ErrorTypeCorrupt, "Follower list data.json is corrupt"), http.StatusInternalServerError, "Follower list data.json is corrupt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestEngine(t, &fakeService{reportErr: tt.err})

			w := doRequest(r, http.MethodGet, "/followers/", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newTestEngine(t, &fakeService{})

	w := doRequest(r, http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLoggerWritesAccessLog(t *testing.T) {
	log := logger.NewTestLogger()
	r, _, err := NewServer(config.DefaultConfig().Server, &fakeService{}, log)
	require.NoError(t, err)

	doRequest(r, http.MethodGet, "/health", nil)

	msgs := log.GetMessagesByLevel("INFO")
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, "HTTP request completed", last.Message)
	assert.Equal(t, "/health", last.Fields["path"])
	assert.NotEmpty(t, last.Fields["request_id"])
}

// fakeTwitter is an upstream answering the three API calls
func fakeTwitter(t *testing.T, calls *int32, tokenStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(twitter.UserShowEndpoint, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		counts := map[string]string{
			"alice": `{"id":42,"id_str":"42","screen_name":"alice","followers_count":7}`,
			"bob":   `{"id":1,"id_str":"1","screen_name":"bob","followers_count":100,"profile_image_url_https":"https://img/bob.jpg"}`,
			"carol": `{"id":2,"id_str":"2","screen_name":"carol","followers_count":500,"profile_image_url_https":"https://img/carol.jpg"}`,
		}
		body, ok := counts[r.URL.Query().Get("screen_name")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, body)
	})
	mux.HandleFunc(twitter.TokenEndpoint, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(tokenStatus)
		io.WriteString(w, `{"token_type":"bearer","access_token":"T"}`)
	})
	mux.HandleFunc("/2/users/42/followers", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Header.Get("Authorization") != "Bearer T" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"data":[{"id":"1","username":"bob"},{"id":"2","username":"carol"}],"meta":{"result_count":2}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newEndToEnd(t *testing.T, upstreamURL string) (*gin.Engine, *storage.FollowerStore) {
	t.Helper()
	log := logger.NewTestLogger()
	client := twitter.NewClient(5*time.Second, log, twitter.WithBaseURL(upstreamURL))
	store := storage.NewFollowerStore(filepath.Join(t.TempDir(), "data.json"))
	creds := &auth.Credentials{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessTokenSecret: "ats"}
	svc := followers.NewService(client, store, creds, ratelimit.NewTokenBucket(100, time.Minute), log, followers.Options{Concurrency: 2})

	r, _, err := NewServer(config.DefaultConfig().Server, svc, log)
	require.NoError(t, err)
	return r, store
}

func TestEndToEnd(t *testing.T) {
	var calls int32
	upstream := fakeTwitter(t, &calls, http.StatusOK)
	r, store := newEndToEnd(t, upstream.URL)

	w := doRequest(r, http.MethodGet, "/followers/", nil)
	assert.Equal(t, "No data found in data.json", w.Body.String())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	w = doRequest(r, http.MethodPost, "/", url.Values{"username": {"@alice"}})
	require.Equal(t, http.StatusFound, w.Code)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, stored)

	w = doRequest(r, http.MethodGet, "/followers/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Less(t, strings.Index(body, "@carol"), strings.Index(body, "@bob"))
	assert.NotContains(t, body, `class="error"`)
}

func TestEndToEndTokenFailureKeepsList(t *testing.T) {
	var calls int32
	upstream := fakeTwitter(t, &calls, http.StatusForbidden)
	r, store := newEndToEnd(t, upstream.URL)
	require.NoError(t, store.Save([]string{"x"}))

	w := doRequest(r, http.MethodPost, "/", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to obtain bearer token", w.Body.String())

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, string(raw))
}
