package kommunicate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

// recordedRequest is what the fake API saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// fakeAPI is an httptest server that records every request and replies with
// a fixed status and body.
type fakeAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func newFakeAPI(t *testing.T, status int, body string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{status: status, body: body}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   payload,
		})
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request reached the fake API")
	return f.requests[len(f.requests)-1]
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	client, err := NewClient(Config{APIKey: testAPIKey, BaseURL: f.server.URL}, nil, zerolog.Nop())
	require.NoError(t, err)
	return client
}

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{BaseURL: DefaultBaseURL}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	for _, baseURL := range []string{"ftp://example.com", "not a url", "https://"} {
		_, err := NewClient(Config{APIKey: testAPIKey, BaseURL: baseURL}, nil, zerolog.Nop())
		assert.Error(t, err, baseURL)
	}
}

func TestNewClient_AppliesDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: testAPIKey}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	httpClient, ok := client.doer.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, DefaultTimeout, httpClient.Timeout)
}

func TestCreateConversation(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success","response":{"clientGroupId":"123"}}`)
	client := newTestClient(t, f)

	out, err := client.CreateConversation(context.Background(), CreateConversationParams{
		GroupName:       "Support",
		GroupMemberList: []string{"agent@example.com", "bot"},
	})
	require.NoError(t, err)
	assert.Equal(t, "success", out["status"])

	req := f.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, PathCreateConversation, req.Path)
	assert.Equal(t, testAPIKey, req.Header.Get(HeaderAPIKey))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get(HeaderOfUserID))
	assert.JSONEq(t, `{"groupName":"Support","groupMemberList":["agent@example.com","bot"]}`, string(req.Body))
}

func TestSendMessage(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
	client := newTestClient(t, f)

	_, err := client.SendMessage(context.Background(), SendMessageParams{
		GroupID:      "12345",
		FromUserName: "bot",
		Message:      "Hello",
	})
	require.NoError(t, err)

	req := f.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, PathSendMessage, req.Path)
	assert.JSONEq(t, `{"groupId":"12345","fromUserName":"bot","message":"Hello"}`, string(req.Body))
}

func TestChangeConversationStatus_DefaultsOfUserID(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
	client := newTestClient(t, f)

	_, err := client.ChangeConversationStatus(context.Background(), ChangeStatusParams{
		GroupID: "support-12345",
		Status:  StatusResolved,
	})
	require.NoError(t, err)

	req := f.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, PathChangeStatus, req.Path)
	assert.Equal(t, []string{"support-12345"}, req.Query["groupId"])
	assert.Equal(t, []string{"2"}, req.Query["status"])
	assert.Equal(t, "bot", req.Header.Get(HeaderOfUserID))
	assert.Empty(t, req.Body)
}

func TestChangeConversationStatus_ExplicitOfUserID(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
	client := newTestClient(t, f)

	_, err := client.ChangeConversationStatus(context.Background(), ChangeStatusParams{
		GroupID:  "support-12345",
		Status:   StatusPending,
		OfUserID: Some("user@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", f.last(t).Header.Get(HeaderOfUserID))
}

func TestChangeConversationStatus_RepeatedCallsAreForwarded(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success","response":"already updated"}`)
	client := newTestClient(t, f)
	params := ChangeStatusParams{GroupID: "support-12345", Status: StatusResolved}

	first, err := client.ChangeConversationStatus(context.Background(), params)
	require.NoError(t, err)
	second, err := client.ChangeConversationStatus(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 2, f.count())
	assert.Equal(t, first, second)
	assert.Equal(t, "already updated", second["response"])
}

func TestChangeConversationAssignee(t *testing.T) {
	tests := []struct {
		name         string
		params       ChangeAssigneeParams
		wantNotify   string
		wantTakeOver string
		wantOfUserID string
	}{
		{
			name:         "defaults",
			params:       ChangeAssigneeParams{GroupID: "g1", Assignee: "agent@example.com"},
			wantNotify:   "true",
			wantTakeOver: "true",
			wantOfUserID: "bot",
		},
		{
			name: "explicit false flags",
			params: ChangeAssigneeParams{
				GroupID:           "g1",
				Assignee:          "agent@example.com",
				OfUserID:          Some("admin@example.com"),
				SendNotifyMessage: Some(false),
				TakeOverFromBot:   Some(false),
			},
			wantNotify:   "false",
			wantTakeOver: "false",
			wantOfUserID: "admin@example.com",
		},
		{
			name: "mixed flags",
			params: ChangeAssigneeParams{
				GroupID:           "g1",
				Assignee:          "agent@example.com",
				SendNotifyMessage: Some(false),
			},
			wantNotify:   "false",
			wantTakeOver: "true",
			wantOfUserID: "bot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
			client := newTestClient(t, f)

			_, err := client.ChangeConversationAssignee(context.Background(), tt.params)
			require.NoError(t, err)

			req := f.last(t)
			assert.Equal(t, http.MethodPatch, req.Method)
			assert.Equal(t, PathChangeAssignee, req.Path)
			assert.Equal(t, []string{"g1"}, req.Query["groupId"])
			assert.Equal(t, []string{"agent@example.com"}, req.Query["assignee"])
			assert.Equal(t, []string{tt.wantNotify}, req.Query["sendNotifyMessage"])
			assert.Equal(t, []string{tt.wantTakeOver}, req.Query["takeOverFromBot"])
			assert.Equal(t, tt.wantOfUserID, req.Header.Get(HeaderOfUserID))
		})
	}
}

func TestUpdateUserDetails_OnlySuppliedFields(t *testing.T) {
	metadata := map[string]any{"plan": "pro"}
	tests := []struct {
		name     string
		params   UpdateUserParams
		wantKeys []string
	}{
		{name: "nothing supplied", params: UpdateUserParams{UserID: "u1"}, wantKeys: []string{}},
		{name: "email only", params: UpdateUserParams{UserID: "u1", Email: Some("a@b.c")}, wantKeys: []string{"email"}},
		{name: "empty display name is still sent", params: UpdateUserParams{UserID: "u1", DisplayName: Some("")}, wantKeys: []string{"displayName"}},
		{
			name:     "image and metadata",
			params:   UpdateUserParams{UserID: "u1", ImageLink: Some("https://img"), Metadata: Some(metadata)},
			wantKeys: []string{"imageLink", "metadata"},
		},
		{
			name: "everything",
			params: UpdateUserParams{
				UserID:      "u1",
				Email:       Some("a@b.c"),
				DisplayName: Some("Ann"),
				ImageLink:   Some("https://img"),
				Metadata:    Some(metadata),
			},
			wantKeys: []string{"email", "displayName", "imageLink", "metadata"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
			client := newTestClient(t, f)

			_, err := client.UpdateUserDetails(context.Background(), tt.params)
			require.NoError(t, err)

			req := f.last(t)
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, PathUpdateUser, req.Path)
			assert.Equal(t, "u1", req.Header.Get(HeaderOfUserID))

			body := decodeBody(t, req.Body)
			keys := make([]string, 0, len(body))
			for k := range body {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.wantKeys, keys)
		})
	}
}

func TestGetUserDetails(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `[{"userId":"user123"},{"userId":"user456"}]`)
	client := newTestClient(t, f)

	users, err := client.GetUserDetails(context.Background(), []string{"user123", "user456"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user123", users[0]["userId"])
	assert.Equal(t, "user456", users[1]["userId"])

	req := f.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, PathUserDetails, req.Path)
	assert.JSONEq(t, `{"userIdList":["user123","user456"]}`, string(req.Body))
}

func TestAPIKeyOnEveryOperation(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{}`)
	client := newTestClient(t, f)
	ctx := context.Background()

	calls := []func() error{
		func() error { _, err := client.CreateConversation(ctx, CreateConversationParams{GroupName: "g"}); return err },
		func() error { _, err := client.SendMessage(ctx, SendMessageParams{GroupID: "g"}); return err },
		func() error { _, err := client.ChangeConversationStatus(ctx, ChangeStatusParams{GroupID: "g", Status: 1}); return err },
		func() error { _, err := client.UpdateUserDetails(ctx, UpdateUserParams{UserID: "u"}); return err },
		func() error { _, err := client.ChangeConversationAssignee(ctx, ChangeAssigneeParams{GroupID: "g"}); return err },
	}
	for _, c := range calls {
		require.NoError(t, c())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.requests, len(calls))
	for _, req := range f.requests {
		assert.Equal(t, testAPIKey, req.Header.Get(HeaderAPIKey), req.Path)
	}
}

func TestNonSuccessStatusReturnsRemoteAPIError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		f := newFakeAPI(t, status, `{"status":"error","errorResponse":[{"description":"bad"}]}`)
		client := newTestClient(t, f)

		out, err := client.SendMessage(context.Background(), SendMessageParams{GroupID: "g"})
		require.Error(t, err)
		assert.Nil(t, out)

		remoteErr, ok := AsRemoteAPIError(err)
		require.True(t, ok, "expected RemoteAPIError, got %T", err)
		assert.Equal(t, status, remoteErr.StatusCode)
		assert.Contains(t, remoteErr.Body, "errorResponse")
		assert.Equal(t, PathSendMessage, remoteErr.Path)
	}
}

func TestInvalidJSONReturnsDecodeError(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `<html>oops</html>`)
	client := newTestClient(t, f)

	_, err := client.CreateConversation(context.Background(), CreateConversationParams{GroupName: "g"})
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "<html>oops</html>", decodeErr.Body)
}

func TestGetUserDetails_ObjectBodyIsDecodeError(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
	client := newTestClient(t, f)

	_, err := client.GetUserDetails(context.Background(), []string{"u"})
	assert.True(t, IsDecodeError(err))
}

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func TestTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	client, err := NewClient(Config{APIKey: testAPIKey}, failingDoer{err: cause}, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.GetUserDetails(context.Background(), []string{"u"})
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, cause)
}

func TestTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: testAPIKey, BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), SendMessageParams{GroupID: "g"})
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestContextCancellation(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{}`)
	client := newTestClient(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendMessage(ctx, SendMessageParams{GroupID: "g"})
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.count())
}

func TestBaseURLTrailingSlash(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{}`)
	client, err := NewClient(Config{APIKey: testAPIKey, BaseURL: f.server.URL + "/"}, nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), SendMessageParams{GroupID: "g"})
	require.NoError(t, err)
	assert.Equal(t, PathSendMessage, f.last(t).Path)
}

func TestConcurrentCalls(t *testing.T) {
	f := newFakeAPI(t, http.StatusOK, `{"status":"success"}`)
	client := newTestClient(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ChangeConversationStatus(context.Background(), ChangeStatusParams{GroupID: "g", Status: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, f.count())
}
