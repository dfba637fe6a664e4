package ai

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/go-scenario-client/httpclient"
)

const (
	messagePath    = "/generate/message"
	referencesPath = "/generate/references"
	scenarioPath   = "/generate/scenario"
)

// Chat roles understood by the generation backend
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the prompt sent for generation. The last message is the
// one the backend augments with retrieved context.
type ChatRequest struct {
	Messages []Message `json:"messages"`
	// MetaData keeps the backend model's field name
	MetaData string `json:"metda_data,omitempty"`
}

// ReferencesRequest asks for the sources relevant to a question
type ReferencesRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit,omitempty"`
}

// API is the subset of the HTTP client the AI facade calls
type API interface {
	Get(ctx context.Context, path string, query url.Values) httpclient.Result
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Service maps AI generation operations to fixed API paths
type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// SendMessage sends a chat conversation for a reply
func (s *Service) SendMessage(ctx context.Context, req ChatRequest) (json.RawMessage, error) {
	return s.api.Post(ctx, messagePath, req)
}

// References fetches the references for a question
func (s *Service) References(ctx context.Context, req ReferencesRequest) (json.RawMessage, error) {
	return s.api.Post(ctx, referencesPath, req)
}

// Scenario fetches a freshly generated scenario
func (s *Service) Scenario(ctx context.Context) httpclient.Result {
	return s.api.Get(ctx, scenarioPath, nil)
}
