package httpclient_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-scenario-client/httpclient"
	"github.com/jrsteele09/go-scenario-client/store"
	"github.com/stretchr/testify/require"
)

const loginBody = `{"access_token":"tok-abc","token_type":"bearer","user":{"id":"42","email":"john.doe@example.com"}}`

func TestLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusOK, loginBody))

	var mutations []store.Mutation
	f.store.Subscribe(func(m store.Mutation, _ store.Session) {
		mutations = append(mutations, m)
	})

	result := f.client.Login(context.Background(), httpclient.Credentials{
		Username: "john.doe@example.com",
		Password: "password123",
	}, true)

	require.True(t, result.Success)
	require.Empty(t, result.Msg)
	require.NoError(t, result.Err)
	require.JSONEq(t, loginBody, string(result.Response))
	require.Equal(t, "tok-abc", result.Parsed.AccessToken)
	require.Equal(t, "bearer", result.Parsed.TokenType)
	require.JSONEq(t, `{"id":"42","email":"john.doe@example.com"}`, string(result.Parsed.User))

	// token persisted, both mutations committed exactly once
	require.Equal(t, "tok-abc", f.tokens.Token())
	require.Equal(t, []store.Mutation{store.MutationSetUser, store.MutationSetLogin}, mutations)
	require.True(t, f.store.LoggedIn())
	require.JSONEq(t, `{"id":"42","email":"john.doe@example.com"}`, string(f.store.User()))
	require.Empty(t, f.navigator.Paths())

	// password grant, form encoded
	req := f.lastRequest(t)
	require.Equal(t, http.MethodPost, req.Method)
	require.Equal(t, "application/x-www-form-urlencoded", req.ContentType)
	form, err := url.ParseQuery(string(req.Body))
	require.NoError(t, err)
	require.Equal(t, "password", form.Get("grant_type"))
	require.Equal(t, "john.doe@example.com", form.Get("username"))
	require.Equal(t, "password123", form.Get("password"))
}

func TestLoginTokenUsedByNextRequest(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusOK, loginBody))
	f.mux.HandleFunc("/api/users", respondJSON(http.StatusOK, `[]`))

	require.True(t, f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "p"}, false).Success)
	require.True(t, f.client.Get(context.Background(), "/api/users", nil).OK())
	require.Equal(t, "tok-abc", f.lastRequest(t).Authorization)
}

func TestLoginInvalidCredentials(t *testing.T) {
	tests := []struct {
		name        string
		navigate    bool
		wantNavPath []string
	}{
		{"navigates when requested", true, []string{httpclient.LoginRoute}},
		{"stays when not requested", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`))

			var mutations []store.Mutation
			f.store.Subscribe(func(m store.Mutation, _ store.Session) {
				mutations = append(mutations, m)
			})

			result := f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "bad"}, tt.navigate)
			require.False(t, result.Success)
			require.Equal(t, "Invalid username and/or password. Please try again", result.Msg)
			require.Nil(t, result.Response)
			require.Nil(t, result.Parsed)
			require.True(t, httpclient.IsUnauthorized(result.Err))
			require.ErrorIs(t, result.Err, httpclient.ErrInvalidCredentials)

			require.Equal(t, tt.wantNavPath, f.navigator.Paths())
			require.Empty(t, f.tokens.Token())
			require.Empty(t, mutations)
			require.False(t, f.store.LoggedIn())
		})
	}
}

func TestLoginServerErrorNeverNavigates(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusInternalServerError, `{"detail":"boom"}`))

	result := f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "p"}, true)
	require.False(t, result.Success)
	require.Equal(t, httpclient.LoginFailedMessage, result.Msg)
	require.False(t, httpclient.IsUnauthorized(result.Err))
	require.NotErrorIs(t, result.Err, httpclient.ErrInvalidCredentials)
	require.Empty(t, f.navigator.Paths())
}

func TestLoginMissingUserStillDispatches(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusOK, `{"access_token":"tok-abc","token_type":"bearer"}`))

	var mutations []store.Mutation
	f.store.Subscribe(func(m store.Mutation, _ store.Session) {
		mutations = append(mutations, m)
	})

	result := f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "p"}, false)
	require.True(t, result.Success)
	require.Nil(t, result.Parsed.User)
	require.Equal(t, []store.Mutation{store.MutationSetUser, store.MutationSetLogin}, mutations)
	require.Nil(t, f.store.User())
}

func TestLoginMissingAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusOK, `{"token_type":"bearer"}`))

	result := f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "p"}, false)
	require.False(t, result.Success)
	require.Equal(t, httpclient.LoginFailedMessage, result.Msg)
	require.Empty(t, f.tokens.Token())
}

func TestLoginKeepsBackendBodyVerbatim(t *testing.T) {
	const body = `{"access_token":"tok","token_type":"bearer","role":"admin","user":{"zid":9007199254740993,"a":1}}`
	f := setupTestFixture(t)
	f.mux.HandleFunc(httpclient.LoginPath, respondJSON(http.StatusOK, body))

	result := f.client.Login(context.Background(), httpclient.Credentials{Username: "u", Password: "p"}, false)
	require.True(t, result.Success)
	require.Equal(t, body, string(result.Response))
	require.Equal(t, `{"zid":9007199254740993,"a":1}`, string(result.Parsed.User))

	// the stored user keeps key order and integer precision
	require.Equal(t, `{"zid":9007199254740993,"a":1}`, string(f.store.User()))
}
