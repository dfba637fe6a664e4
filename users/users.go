package users

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is the backend's user record. The session store keeps users as
// opaque JSON; Decode is for callers that want to read fields from it.
type User struct {
	ID         string    `json:"id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	IsActive   bool      `json:"is_active,omitempty"`
	IsAdmin    bool      `json:"is_superuser,omitempty"`
	DateJoined time.Time `json:"date_joined,omitempty"`
}

// Decode reads a User out of a raw backend payload
func Decode(raw json.RawMessage) (*User, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("[users Decode] empty user")
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("[users Decode] %w", err)
	}
	return &u, nil
}

// DisplayName returns the best human-readable name for the user
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return u.Email
}

// SignupRequest creates a user
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// UpdateRequest changes profile fields of an existing user
type UpdateRequest struct {
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

// ChangePasswordRequest changes the signed-in user's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
