package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	clienterrors "github.com/jrsteele09/go-scenario-client/internal/errors"
	"golang.org/x/oauth2"
)

// LoginPath is the password-grant token endpoint
const LoginPath = "/login/access-token"

// LoginFailedMessage is shown to the user for every failed login
const LoginFailedMessage = "Invalid username and/or password. Please try again"

// ErrInvalidCredentials marks a login the backend rejected with 401
var ErrInvalidCredentials = clienterrors.ErrInvalidCredentials

// Credentials are exchanged for an access token at LoginPath
type Credentials struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Scopes   []string `json:"scopes,omitempty"`
}

// LoginResponse is the typed view of the fields the client reads from the
// token response. User holds the backend's bytes unchanged.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type,omitempty"`
	User        json.RawMessage `json:"user,omitempty"`
}

// LoginResult is either a success carrying the backend response, or a
// failure carrying the user-facing message. Login never returns an error.
type LoginResult struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	// Response is the backend's response body, byte for byte
	Response json.RawMessage `json:"-"`
	Parsed   *LoginResponse  `json:"-"`
	Err      error           `json:"-"`
}

func loginFailed(err error) LoginResult {
	return LoginResult{Success: false, Msg: LoginFailedMessage, Err: err}
}

// bodyCapture keeps a copy of the token response so the caller sees the
// body exactly as the backend sent it, not as oauth2 decoded it.
type bodyCapture struct {
	base http.RoundTripper
	body []byte
}

func (b *bodyCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := b.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	b.body = data
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// Login exchanges credentials for a token using the OAuth2 password grant.
// On success the token is stored and ADD_USER then SET_LOGGED_IN(true) are
// dispatched. On 401 the navigator is called only when navigateOnUnauthorized
// is set.
func (c *Client) Login(ctx context.Context, creds Credentials, navigateOnUnauthorized bool) LoginResult {
	cfg := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + LoginPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: creds.Scopes,
	}

	capture := &bodyCapture{base: c.client.Transport}
	hc := *c.client
	hc.Transport = capture
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &hc)

	tok, err := cfg.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		var re *oauth2.RetrieveError
		if clienterrors.As(err, &re) && re.Response != nil {
			statusErr := &StatusError{Method: http.MethodPost, Path: LoginPath, StatusCode: re.Response.StatusCode, Body: re.Body}
			err = statusErr
			if statusErr.StatusCode == http.StatusUnauthorized {
				err = fmt.Errorf("%w: %w", ErrInvalidCredentials, statusErr)
			}
		}
		c.logger.Warn().Err(err).Str("username", creds.Username).Msg("login failed")
		if navigateOnUnauthorized {
			c.redirectIfUnauthorized(err)
		}
		return loginFailed(err)
	}

	if tok.AccessToken == "" {
		return loginFailed(clienterrors.ErrMissingToken)
	}

	parsed := &LoginResponse{AccessToken: tok.AccessToken, TokenType: tok.TokenType}
	var raw json.RawMessage
	if json.Valid(capture.body) {
		raw = json.RawMessage(capture.body)
		if err := json.Unmarshal(raw, parsed); err != nil {
			return loginFailed(clienterrors.Wrapf(err, "[httpclient Login] decode response"))
		}
	}

	if err := c.tokens.SetToken(tok.AccessToken); err != nil {
		c.logger.Error().Err(err).Msg("failed to store access token")
		return loginFailed(err)
	}

	if c.session != nil {
		if err := c.session.AddUser(parsed.User); err != nil {
			c.logger.Error().Err(err).Msg("failed to dispatch ADD_USER")
			return loginFailed(err)
		}
		if err := c.session.SetLoggedIn(true); err != nil {
			c.logger.Error().Err(err).Msg("failed to dispatch SET_LOGGED_IN")
			return loginFailed(err)
		}
	}

	c.logger.Info().Str("username", creds.Username).Msg("logged in")
	return LoginResult{Success: true, Response: raw, Parsed: parsed}
}
