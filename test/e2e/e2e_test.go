// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhangokk/vidnav/internal/common/config"
	"github.com/Yhangokk/vidnav/internal/common/database"
	"github.com/Yhangokk/vidnav/internal/common/logger"
	"github.com/Yhangokk/vidnav/internal/common/observability"
	githubstore "github.com/Yhangokk/vidnav/internal/github"
	"github.com/Yhangokk/vidnav/internal/moderation"
	"github.com/Yhangokk/vidnav/internal/publish"
	"github.com/Yhangokk/vidnav/internal/server"
	"github.com/Yhangokk/vidnav/internal/submission"
)

// ==========================
// In-Memory Issue Store Stub
// ==========================

// issueStoreStub mimics the subset of the GitHub Issues API the service
// uses: create, get, list by label, replace labels, comment.
type issueStoreStub struct {
	mu       sync.Mutex
	issues   map[int]*stubIssue
	next     int
	comments map[int][]string
}

type stubIssue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []label   `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	HTMLURL   string    `json:"html_url"`
}

type label struct {
	Name string `json:"name"`
}

func newIssueStoreStub() *issueStoreStub {
	return &issueStoreStub{issues: map[int]*stubIssue{}, next: 1, comments: map[int][]string{}}
}

func (s *issueStoreStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/directory/issues", s.createIssue)
	mux.HandleFunc("GET /repos/acme/directory/issues", s.listIssues)
	mux.HandleFunc("GET /repos/acme/directory/issues/{number}", s.getIssue)
	mux.HandleFunc("PUT /repos/acme/directory/issues/{number}/labels", s.replaceLabels)
	mux.HandleFunc("POST /repos/acme/directory/issues/{number}/comments", s.addComment)
	return mux
}

func (s *issueStoreStub) createIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string   `json:"title"`
		Body   string   `json:"body"`
		Labels []string `json:"labels"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	labels := make([]label, len(req.Labels))
	for i, l := range req.Labels {
		labels[i] = label{Name: l}
	}
	issue := &stubIssue{
		ID:        int64(1000 + s.next),
		Number:    s.next,
		Title:     req.Title,
		Body:      req.Body,
		Labels:    labels,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		HTMLURL:   fmt.Sprintf("https://github.test/acme/directory/issues/%d", s.next),
	}
	s.issues[s.next] = issue
	s.next++

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(issue)
}

func (s *issueStoreStub) listIssues(w http.ResponseWriter, r *http.Request) {
	wanted := r.URL.Query().Get("labels")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*stubIssue{}
	if page <= 1 {
		for _, issue := range s.issues {
			for _, l := range issue.Labels {
				if l.Name == wanted {
					out = append(out, issue)
					break
				}
			}
		}
	}
	json.NewEncoder(w).Encode(out)
}

func (s *issueStoreStub) getIssue(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))

	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[number]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(issue)
}

func (s *issueStoreStub) replaceLabels(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))

	var req struct {
		Labels []string `json:"labels"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[number]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	labels := make([]label, len(req.Labels))
	for i, l := range req.Labels {
		labels[i] = label{Name: l}
	}
	issue.Labels = labels
	issue.UpdatedAt = time.Now().UTC()
	json.NewEncoder(w).Encode(labels)
}

func (s *issueStoreStub) addComment(w http.ResponseWriter, r *http.Request) {
	number, _ := strconv.Atoi(r.PathValue("number"))

	var req struct {
		Body string `json:"body"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments[number] = append(s.comments[number], req.Body)
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{}`))
}

// ==========================
// Test Environment
// ==========================

type testEnv struct {
	srv       *server.Server
	stub      *issueStoreStub
	redisConn *redis.Client
	channel   string
}

func newTestEnv(t *testing.T) *testEnv {
	stub := newIssueStoreStub()
	storeSrv := httptest.NewServer(stub.handler())
	t.Cleanup(storeSrv.Close)

	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.App.Name = "vidnav-submissions"
	cfg.App.Version = "e2e"
	cfg.Server.ReadTimeout = 10000
	cfg.Server.WriteTimeout = 10000
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "directory"
	cfg.GitHub.BaseURL = storeSrv.URL
	cfg.GitHub.RequestTimeout = 5000
	cfg.GitHub.ReadRetries = 3
	cfg.Redis.Address = mr.Addr()
	cfg.Publish.Channel = "vidnav:submissions:approved"

	log := logger.NewTestLogger(t)

	redisClient, err := database.NewRedis(cfg.Redis)
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	store := githubstore.NewClient(
		"e2e-token", cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.BaseURL,
		time.Duration(cfg.GitHub.RequestTimeout)*time.Millisecond,
		cfg.GitHub.ReadRetries,
	)
	publisher := publish.NewRedisPublisher(redisClient, cfg.Publish.Channel, log)
	engine := moderation.NewEngine(store, publisher, nil, log)
	srv := server.New(cfg, engine, redisClient, observability.New("vidnav-e2e"), log)

	return &testEnv{
		srv:       srv,
		stub:      stub,
		redisConn: redisClient.GetClient(),
		channel:   cfg.Publish.Channel,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	rr := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func submitBody(title string) map[string]string {
	return map[string]string{
		"title":       title,
		"url":         "https://example.com/" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		"description": "A curated example site",
		"category":    "tools",
	}
}

// ==========================
// End-to-End Scenarios
// ==========================

func TestSubmitApprovePublishFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub := env.redisConn.Subscribe(ctx, env.channel)
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	// Submit
	rr := env.do(t, http.MethodPost, "/submissions", submitBody("Example Site"))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		IssueNumber int    `json:"issueNumber"`
		IssueURL    string `json:"issueUrl"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 1, created.IssueNumber)

	// Listed as pending
	rr = env.do(t, http.MethodGet, "/submissions?status=pending", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Count       int                 `json:"count"`
		Submissions []submission.Record `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)
	require.NotNil(t, listed.Submissions[0].Payload)
	assert.Equal(t, "Example Site", listed.Submissions[0].Payload.Title)

	// Approve
	rr = env.do(t, http.MethodPatch, "/submissions/1", map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Approval event lands on the channel
	msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
	require.NoError(t, err)
	m, ok := msg.(*redis.Message)
	require.True(t, ok)

	var evt publish.ApprovedEvent
	require.NoError(t, json.Unmarshal([]byte(m.Payload), &evt))
	assert.Equal(t, 1, evt.IssueNumber)
	require.NotNil(t, evt.Payload)
	assert.Equal(t, "Example Site", evt.Payload.Title)

	// Listed as approved, no longer pending
	rr = env.do(t, http.MethodGet, "/submissions?status=approved", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)

	rr = env.do(t, http.MethodGet, "/submissions?status=pending", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, 0, listed.Count)
}

func TestRejectFlowRecordsReason(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/submissions", submitBody("Spammy Site"))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodPatch, "/submissions/1",
		map[string]string{"action": "reject", "reason": "not a directory fit"})
	require.Equal(t, http.StatusOK, rr.Code)

	env.stub.mu.Lock()
	comments := env.stub.comments[1]
	labels := env.stub.issues[1].Labels
	env.stub.mu.Unlock()

	require.Len(t, comments, 1)
	assert.Contains(t, comments[0], "not a directory fit")

	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	assert.Equal(t, submission.StatusRejected, submission.ResolveStatus(names))
}

func TestModerationIsSingleShot(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/submissions", submitBody("One Shot"))
	rr := env.do(t, http.MethodPatch, "/submissions/1", map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPatch, "/submissions/1", map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPatch, "/submissions/1", map[string]string{"action": "reject"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestMalformedStoredBodyStillListed(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/submissions", submitBody("Will Be Mangled"))

	// An operator edits the body and destroys the JSON block.
	env.stub.mu.Lock()
	env.stub.issues[1].Body = "someone replaced the whole body"
	env.stub.mu.Unlock()

	rr := env.do(t, http.MethodGet, "/submissions?status=pending", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var listed struct {
		Count       int                 `json:"count"`
		Submissions []submission.Record `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)
	assert.Nil(t, listed.Submissions[0].Payload)
}

func TestValidationRejectedBeforeStore(t *testing.T) {
	env := newTestEnv(t)

	body := submitBody("Bad URL Site")
	body["url"] = "not-absolute"

	rr := env.do(t, http.MethodPost, "/submissions", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.stub.mu.Lock()
	defer env.stub.mu.Unlock()
	assert.Empty(t, env.stub.issues)
}

func TestStoreOutageIsServiceUnavailable(t *testing.T) {
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(storeSrv.Close)

	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.App.Name = "vidnav-submissions"
	cfg.Server.ReadTimeout = 10000
	cfg.Server.WriteTimeout = 10000
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "directory"
	cfg.GitHub.BaseURL = storeSrv.URL
	cfg.GitHub.RequestTimeout = 2000
	cfg.GitHub.ReadRetries = 1
	cfg.Redis.Address = mr.Addr()
	cfg.Publish.Channel = "vidnav:submissions:approved"

	log := logger.NewTestLogger(t)
	store := githubstore.NewClient("t", "acme", "directory", storeSrv.URL, 2*time.Second, 1)
	engine := moderation.NewEngine(store, nil, nil, log)
	srv := server.New(cfg, engine, nil, observability.New("vidnav-e2e-outage"), log)

	req := httptest.NewRequest(http.MethodGet, "/submissions", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
