package users_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-scenario-client/httpclient"
	"github.com/jrsteele09/go-scenario-client/storage"
	"github.com/jrsteele09/go-scenario-client/token"
	"github.com/jrsteele09/go-scenario-client/users"
	"github.com/stretchr/testify/require"
)

// call is one request the fake API received
type call struct {
	method string
	path   string
	body   any
}

// fakeAPI records calls and answers with canned values
type fakeAPI struct {
	calls  []call
	result httpclient.Result
	body   json.RawMessage
	err    error
}

func (f *fakeAPI) Get(_ context.Context, path string, _ url.Values) httpclient.Result {
	f.calls = append(f.calls, call{method: http.MethodGet, path: path})
	return f.result
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	f.calls = append(f.calls, call{method: http.MethodPost, path: path, body: body})
	return f.body, f.err
}

func (f *fakeAPI) Put(_ context.Context, path string, body any) (json.RawMessage, error) {
	f.calls = append(f.calls, call{method: http.MethodPut, path: path, body: body})
	return f.body, f.err
}

func TestServicePaths(t *testing.T) {
	signup := users.SignupRequest{Email: "john.doe@example.com", Password: "password123"}
	update := users.UpdateRequest{FirstName: "John"}
	change := users.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "new"}

	tests := []struct {
		name string
		run  func(s *users.Service)
		want call
	}{
		{"list", func(s *users.Service) { s.List(context.Background()) }, call{http.MethodGet, "/api/users", nil}},
		{"create", func(s *users.Service) { _, _ = s.Create(context.Background(), signup) }, call{http.MethodPost, "/users/signup", signup}},
		{"get by id", func(s *users.Service) { s.GetByID(context.Background(), "42") }, call{http.MethodGet, "/api/users/42", nil}},
		{"update", func(s *users.Service) { _, _ = s.Update(context.Background(), "42", update) }, call{http.MethodPut, "/api/users/42", update}},
		{"reset password", func(s *users.Service) { _, _ = s.ResetPassword(context.Background(), "john.doe@example.com") }, call{http.MethodPost, "/password-recovery/john.doe@example.com", "john.doe@example.com"}},
		{"change password", func(s *users.Service) { _, _ = s.ChangePassword(context.Background(), change) }, call{http.MethodPost, "/api/auth/change", change}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			tt.run(users.NewService(api))
			require.Equal(t, []call{tt.want}, api.calls)
		})
	}
}

func TestServicePassesResultsThrough(t *testing.T) {
	api := &fakeAPI{
		result: httpclient.Result{Kind: httpclient.ResultUnauthorized},
		body:   json.RawMessage(`{"id":"7"}`),
		err:    httpclient.ErrUnauthorized,
	}
	s := users.NewService(api)

	require.Equal(t, api.result, s.List(context.Background()))

	body, err := s.Create(context.Background(), users.SignupRequest{})
	require.Equal(t, api.body, body)
	require.ErrorIs(t, err, httpclient.ErrUnauthorized)
}

func TestIDPassedThroughUnmodified(t *testing.T) {
	api := &fakeAPI{}
	s := users.NewService(api)
	s.GetByID(context.Background(), "a b")
	_, _ = s.Update(context.Background(), "a b", users.UpdateRequest{})
	_, _ = s.ResetPassword(context.Background(), "john+doe@example.com")
	require.Equal(t, "/api/users/a b", api.calls[0].path)
	require.Equal(t, "/api/users/a b", api.calls[1].path)
	require.Equal(t, "/password-recovery/john+doe@example.com", api.calls[2].path)
}

func TestGetByIDAgainstBackend(t *testing.T) {
	id := uuid.NewString()
	body := `{"id":"42","email":"john.doe@example.com","request":"` + id + `"}`

	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	defer server.Close()

	holder := token.NewStorageHolder(storage.NewInMemory())
	require.NoError(t, holder.SetToken("tok-42"))
	client, err := httpclient.New(server.URL, holder, nil, httpclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	r := users.NewService(client).GetByID(context.Background(), "42")
	require.True(t, r.OK())
	require.Equal(t, body, string(r.Value()))
	require.Equal(t, "/api/users/42", gotPath)
	require.Equal(t, "tok-42", gotAuth)

	u, err := users.Decode(r.Value())
	require.NoError(t, err)
	require.Equal(t, "42", u.ID)
	require.Equal(t, "john.doe@example.com", u.DisplayName())
}

func TestDecode(t *testing.T) {
	u, err := users.Decode(json.RawMessage(`{"id":"1","first_name":"John","last_name":"Doe"}`))
	require.NoError(t, err)
	require.Equal(t, "John Doe", u.DisplayName())

	_, err = users.Decode(nil)
	require.Error(t, err)

	_, err = users.Decode(json.RawMessage(`[`))
	require.Error(t, err)
}
