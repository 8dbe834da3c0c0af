package state

import (
	"fmt"
	"strings"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/errors"
)

// SaveSupplier adds a supplier, or replaces the one with id EditID.
type SaveSupplier struct {
	EditID string `json:"-"`
	ID     string `json:"id" validate:"notblank"`
	Name   string `json:"name" validate:"notblank"`
	Email  string `json:"email" validate:"notblank,email"`
	Phone  string `json:"phone" validate:"notblank"`
}

func (c *SaveSupplier) Kind() string { return "save_supplier" }

func (c *SaveSupplier) Apply(s *State, env Env) (string, error) {
	c.ID, c.Name = strings.TrimSpace(c.ID), strings.TrimSpace(c.Name)
	c.Email, c.Phone = strings.TrimSpace(c.Email), strings.TrimSpace(c.Phone)

	editing := c.EditID != ""
	idx := -1
	if editing {
		if idx = s.supplierIndex(c.EditID); idx < 0 {
			return "", errors.NotFound("supplier")
		}
	}

	for i, sup := range s.Suppliers {
		if i == idx {
			continue
		}
		switch {
		case sup.ID == c.ID:
			return "", errors.Conflict("Supplier ID already exists!")
		case sup.Email == c.Email:
			return "", errors.Conflict("Email already exists!")
		case sup.Phone == c.Phone:
			return "", errors.Conflict("Phone number already exists!")
		}
	}

	sup := domain.Supplier{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
	if editing {
		s.Suppliers[idx] = sup
		s.addPost(env, fmt.Sprintf("Updated supplier %s", c.Name))
		return "Supplier updated successfully!", nil
	}

	s.Suppliers = append([]domain.Supplier{sup}, s.Suppliers...)
	s.addPost(env, fmt.Sprintf("Added supplier %s", c.Name))
	return "Supplier added successfully!", nil
}

// DeleteSupplier removes a supplier
type DeleteSupplier struct {
	ID string `validate:"required"`
}

func (c *DeleteSupplier) Kind() string { return "delete_supplier" }

func (c *DeleteSupplier) Apply(s *State, env Env) (string, error) {
	idx := s.supplierIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("supplier")
	}

	name := s.Suppliers[idx].Name
	s.Suppliers = append(s.Suppliers[:idx], s.Suppliers[idx+1:]...)
	s.addPost(env, fmt.Sprintf("Deleted supplier %s", name))
	return "Supplier deleted", nil
}
