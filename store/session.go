package store

import (
	"bytes"
	"encoding/json"
)

// Session is the client-held record of the current user's authentication
// and UI state. User and Scenario are opaque backend payloads.
type Session struct {
	User            json.RawMessage `json:"user"`
	LoggedIn        bool            `json:"loggedIn"`
	ImproveAccepted bool            `json:"improveAccepted"`
	Scenario        json.RawMessage `json:"scenario"`
}

var emptyScenario = json.RawMessage(`{}`)

// InitialSession is the state of a fresh, unauthenticated session
func InitialSession() Session {
	return Session{
		User:            nil,
		LoggedIn:        false,
		ImproveAccepted: false,
		Scenario:        cloneRaw(emptyScenario),
	}
}

// HasUser reports whether a user record is set
func (s Session) HasUser() bool {
	return len(s.User) > 0
}

func (s Session) clone() Session {
	s.User = cloneRaw(s.User)
	s.Scenario = cloneRaw(s.Scenario)
	return s
}

func (s *Session) normalise() {
	s.User = normaliseRaw(s.User)
	s.Scenario = normaliseRaw(s.Scenario)
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}

// normaliseRaw maps JSON null to nil so a reloaded session compares equal
// to the one that was persisted.
func normaliseRaw(r json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return r
}

// compactRaw validates v as JSON and returns its compact form, which is the
// form the durable mirror stores.
func compactRaw(v json.RawMessage) (json.RawMessage, error) {
	if normaliseRaw(v) == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
