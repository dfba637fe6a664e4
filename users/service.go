package users

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/go-scenario-client/httpclient"
)

const (
	listPath           = "/api/users"
	signupPath         = "/users/signup"
	userPath           = "/api/users/"
	passwordRecovery   = "/password-recovery/"
	changePasswordPath = "/api/auth/change"
)

// API is the subset of the HTTP client the user facade calls
type API interface {
	Get(ctx context.Context, path string, query url.Values) httpclient.Result
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Service maps user-management operations to fixed API paths. It adds no
// retries, caching or validation: each call has exactly the contract of the
// underlying client call.
type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// List fetches all users
func (s *Service) List(ctx context.Context) httpclient.Result {
	return s.api.Get(ctx, listPath, nil)
}

// Create signs up a new user
func (s *Service) Create(ctx context.Context, req SignupRequest) (json.RawMessage, error) {
	return s.api.Post(ctx, signupPath, req)
}

// GetByID fetches one user
func (s *Service) GetByID(ctx context.Context, id string) httpclient.Result {
	return s.api.Get(ctx, userPath+id, nil)
}

// Update changes a user's profile
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (json.RawMessage, error) {
	return s.api.Put(ctx, userPath+id, req)
}

// ResetPassword asks the backend to email a recovery link
func (s *Service) ResetPassword(ctx context.Context, email string) (json.RawMessage, error) {
	return s.api.Post(ctx, passwordRecovery+email, email)
}

// ChangePassword changes the signed-in user's password
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) (json.RawMessage, error) {
	return s.api.Post(ctx, changePasswordPath, req)
}
