package state

import "github.com/medflow/medsupply-backend/pkg/errors"

// DeletePost removes an activity log entry
type DeletePost struct {
	ID string `validate:"required"`
}

func (c *DeletePost) Kind() string { return "delete_post" }

func (c *DeletePost) Apply(s *State, env Env) (string, error) {
	for i, p := range s.Posts {
		if p.ID == c.ID {
			s.Posts = append(s.Posts[:i], s.Posts[i+1:]...)
			return "Post deleted", nil
		}
	}
	return "", errors.NotFound("post")
}
