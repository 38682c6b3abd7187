package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aera-dev/aera/internal/storage/memory"
	"github.com/aera-dev/aera/internal/workflow"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	next int
}

func (g *seqIDGen) NewID() (string, error) {
	g.next++
	return string(rune('a'-1+g.next)) + "-id", nil
}

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	clock := fixedClock{now: time.Unix(1700000000, 0).UTC()}
	return NewServer(store, &seqIDGen{}, clock, zap.NewNop()), store
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateWorkflow(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/workflows", map[string]string{
		"user_id":     "user-1",
		"url":         "https://example.com/news",
		"prompt":      "Summarize the headlines.",
		"frequency":   "hourly",
		"notify_type": "email",
		"email":       "user@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Workflow workflow.Workflow `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Workflow.ID)
	require.Equal(t, workflow.StatusActive, resp.Workflow.Status)
	require.Nil(t, resp.Workflow.LastRun)

	stored, err := store.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "https://example.com/news", stored[0].URL)
}

func TestCreateWorkflowValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
		want string
	}{
		{
			name: "missing user",
			body: map[string]string{"url": "https://example.com", "frequency": "daily", "notify_type": "in-app"},
			want: "user_id is required",
		},
		{
			name: "missing url",
			body: map[string]string{"user_id": "u", "frequency": "daily", "notify_type": "in-app"},
			want: "url is required",
		},
		{
			name: "relative url",
			body: map[string]string{"user_id": "u", "url": "/news", "frequency": "daily", "notify_type": "in-app"},
			want: "absolute http or https URL",
		},
		{
			name: "bad frequency",
			body: map[string]string{"user_id": "u", "url": "https://example.com", "frequency": "weekly", "notify_type": "in-app"},
			want: "frequency must be one of",
		},
		{
			name: "bad notify type",
			body: map[string]string{"user_id": "u", "url": "https://example.com", "frequency": "daily", "notify_type": "sms"},
			want: "notify_type must be",
		},
		{
			name: "email notify without address",
			body: map[string]string{"user_id": "u", "url": "https://example.com", "frequency": "daily", "notify_type": "email"},
			want: "email is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/workflows", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestListWorkflowsRequiresUserID(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/workflows", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListWorkflowsEmpty(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/workflows?user_id=nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"workflows":[]}`, rec.Body.String())
}

func TestDeleteWorkflow(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)

	wf, err := store.Create(context.Background(), workflow.Workflow{
		ID: "wf-1", UserID: "user-1", URL: "https://example.com",
		Frequency: workflow.FrequencyDaily, NotifyType: workflow.NotifyInApp,
		Status: workflow.StatusActive,
	})
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodDelete, "/workflows/"+wf.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodDelete, "/workflows/"+wf.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndMarkResults(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)

	_, err := store.Create(context.Background(), workflow.Workflow{
		ID: "wf-1", UserID: "user-1", URL: "https://example.com",
		Frequency: workflow.FrequencyDaily, NotifyType: workflow.NotifyInApp,
		Status: workflow.StatusActive,
	})
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	_, err = store.CreateResult(context.Background(), workflow.Result{
		ID: "res-1", WorkflowID: "wf-1", Summary: "First.", Timestamp: now,
	})
	require.NoError(t, err)
	_, err = store.CreateResult(context.Background(), workflow.Result{
		ID: "res-2", WorkflowID: "wf-1", Summary: "Second.", Timestamp: now.Add(time.Hour),
	})
	require.NoError(t, err)

	rec := doRequest(t, srv, http.MethodGet, "/workflow-results?workflow_id=wf-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Results []workflow.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Results, 2)
	require.Equal(t, "res-2", listResp.Results[0].ID)

	rec = doRequest(t, srv, http.MethodPut, "/workflow-results/res-1/seen", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var seenResp struct {
		Result workflow.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seenResp))
	require.True(t, seenResp.Result.Seen)

	rec = doRequest(t, srv, http.MethodPut, "/workflow-results/missing/seen", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// faultyStore returns a fixed error from the mutating operations to
// model a backend outage or conflict.
type faultyStore struct {
	workflow.Store
	err error
}

func (s faultyStore) Create(context.Context, workflow.Workflow) (workflow.Workflow, error) {
	return workflow.Workflow{}, s.err
}

func (s faultyStore) Delete(context.Context, string) error { return s.err }

func (s faultyStore) MarkResultSeen(context.Context, string) (workflow.Result, error) {
	return workflow.Result{}, s.err
}

func TestCreateWorkflowConflict(t *testing.T) {
	t.Parallel()

	store := faultyStore{Store: memory.New(), err: workflow.ErrExists}
	srv := NewServer(store, &seqIDGen{}, fixedClock{now: time.Unix(1700000000, 0).UTC()}, zap.NewNop())

	rec := doRequest(t, srv, http.MethodPost, "/workflows", map[string]string{
		"user_id":     "user-1",
		"url":         "https://example.com",
		"frequency":   "daily",
		"notify_type": "in-app",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestStoreOutageIsNotNotFound(t *testing.T) {
	t.Parallel()

	store := faultyStore{Store: memory.New(), err: errors.New("connection refused")}
	srv := NewServer(store, &seqIDGen{}, fixedClock{now: time.Unix(1700000000, 0).UTC()}, zap.NewNop())

	rec := doRequest(t, srv, http.MethodDelete, "/workflows/wf-1", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doRequest(t, srv, http.MethodPut, "/workflow-results/res-1/seen", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/workflows", map[string]string{
		"user_id":     "user-1",
		"url":         "https://example.com",
		"frequency":   "daily",
		"notify_type": "in-app",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
