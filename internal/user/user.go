package user

import (
	"strconv"
	"strings"
)

// Session is the authenticated buyer behind a request.
type Session struct {
	ID    int    `json:"userId"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Owner is the key prefix of every slot the session owns.
func (s Session) Owner() string {
	return strconv.Itoa(s.ID)
}

// Profile is the loggedInUser slot written by the login flow.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	UID   string `json:"uid,omitempty"`
}

// Merge fills the fields the claims did not carry from the stored profile.
func (s Session) Merge(p Profile) Session {
	if strings.TrimSpace(s.Name) == "" {
		s.Name = strings.TrimSpace(p.Name)
	}
	if strings.TrimSpace(s.Email) == "" {
		s.Email = strings.TrimSpace(p.Email)
	}
	return s
}
