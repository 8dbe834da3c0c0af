package state

import "github.com/medflow/medsupply-backend/internal/pharmacy/domain"

// StartSession records a logged-in operator. Credentials are checked by the
// caller before the command is built.
type StartSession struct {
	SessionID string `json:"-" validate:"required"`
	Username  string `json:"username" validate:"notblank"`
}

func (c *StartSession) Kind() string { return "start_session" }

func (c *StartSession) Apply(s *State, env Env) (string, error) {
	s.Session = &domain.Session{ID: c.SessionID, Username: c.Username, LoginAt: env.Now}
	return "Login successful", nil
}

// EndSession logs the operator out
type EndSession struct{}

func (c *EndSession) Kind() string { return "end_session" }

func (c *EndSession) Apply(s *State, env Env) (string, error) {
	s.Session = nil
	return "Logged out", nil
}
