package state

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/pkg/validation"
)

func init() {
	if err := validation.RegisterCustomValidation("date", isDate); err != nil {
		panic(err)
	}
}

// isDate accepts what alerts.ParseDate reads: YYYY-MM-DD or RFC3339
func isDate(fl validator.FieldLevel) bool {
	_, ok := alerts.ParseDate(fl.Field().String(), time.UTC)
	return ok
}

// Env carries the inputs a command may not compute itself
type Env struct {
	Now   time.Time
	NewID func() string
}

// NewEnv returns an Env stamped with now and random UUIDs
func NewEnv(now time.Time) Env {
	return Env{Now: now, NewID: uuid.NewString}
}

// Command is one operator action. Apply mutates s in place and returns the
// notice shown to the operator. Commands are validated from their
// `validate` tags before Apply runs.
type Command interface {
	Kind() string
	Apply(s *State, env Env) (string, error)
}

// Reduce validates cmd and applies it to a copy of s. On error the
// returned state is s itself.
func Reduce(s *State, cmd Command, env Env) (*State, string, error) {
	if err := validation.Struct(cmd); err != nil {
		return s, "", err
	}

	next := s.Clone()
	notice, err := cmd.Apply(next, env)
	if err != nil {
		return s, "", err
	}

	return next, notice, nil
}
