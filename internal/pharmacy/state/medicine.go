package state

import (
	"fmt"
	"strings"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/errors"
)

// SaveMedicine adds a medicine, or updates the one with id EditID. Editing
// keeps the id and the used counter.
type SaveMedicine struct {
	EditID string `json:"-"`
	Name   string `json:"name" validate:"notblank"`
	Row    string `json:"row" validate:"notblank"`
	Slot   string `json:"slot" validate:"notblank"`
	Stock  int    `json:"stock" validate:"gte=0"`
	Expiry string `json:"expiry" validate:"notblank,date"`

	// Saved is filled in by Apply
	Saved domain.Medicine `json:"-" validate:"-"`
}

func (c *SaveMedicine) Kind() string { return "save_medicine" }

func (c *SaveMedicine) Apply(s *State, env Env) (string, error) {
	c.Name, c.Row, c.Slot = strings.TrimSpace(c.Name), strings.TrimSpace(c.Row), strings.TrimSpace(c.Slot)

	idx := -1
	if c.EditID != "" {
		if idx = s.medicineIndex(c.EditID); idx < 0 {
			return "", errors.NotFound("medicine")
		}
	}

	for i, m := range s.Medicines {
		if i != idx && strings.TrimSpace(m.Slot) == c.Slot {
			return "", errors.Conflict("Slot number already exists.")
		}
	}

	if idx >= 0 {
		m := &s.Medicines[idx]
		m.Name, m.Row, m.Slot, m.Stock, m.Expiry = c.Name, c.Row, c.Slot, c.Stock, c.Expiry
		c.Saved = *m
		s.addPost(env, fmt.Sprintf("Updated medicine: %s", c.Name))
		return fmt.Sprintf("%s updated successfully", c.Name), nil
	}

	c.Saved = domain.Medicine{
		ID:     env.NewID(),
		Name:   c.Name,
		Row:    c.Row,
		Slot:   c.Slot,
		Stock:  c.Stock,
		Expiry: c.Expiry,
	}
	s.Medicines = append([]domain.Medicine{c.Saved}, s.Medicines...)
	s.addPost(env, fmt.Sprintf("Added medicine: %s", c.Name))
	return fmt.Sprintf("%s added successfully", c.Name), nil
}

// DeleteMedicine removes a medicine. Reorder marks for it are left alone;
// they no longer match anything.
type DeleteMedicine struct {
	ID string `validate:"required"`
}

func (c *DeleteMedicine) Kind() string { return "delete_medicine" }

func (c *DeleteMedicine) Apply(s *State, env Env) (string, error) {
	idx := s.medicineIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("medicine")
	}

	name := s.Medicines[idx].Name
	s.Medicines = append(s.Medicines[:idx], s.Medicines[idx+1:]...)
	s.addPost(env, fmt.Sprintf("Deleted medicine: %s", name))
	return fmt.Sprintf("%s deleted", name), nil
}

// UseMedicine dispenses Quantity units: stock goes down, used goes up.
type UseMedicine struct {
	ID       string `json:"-" validate:"required"`
	Quantity int    `json:"quantity"`
}

func (c *UseMedicine) Kind() string { return "use_medicine" }

func (c *UseMedicine) Apply(s *State, env Env) (string, error) {
	idx := s.medicineIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("medicine")
	}

	m := &s.Medicines[idx]
	switch {
	case m.Stock <= 0:
		return "", errors.Invalid(fmt.Sprintf("%s stock is empty. Cannot use medicine.", m.Name))
	case c.Quantity <= 0:
		return "", errors.Validation(map[string]string{"Quantity": "must be greater than 0"})
	case c.Quantity > m.Stock:
		return "", errors.Invalid(fmt.Sprintf("Not enough stock of %s. Available: %d", m.Name, m.Stock))
	}

	m.Stock -= c.Quantity
	m.Used += c.Quantity
	s.addPost(env, fmt.Sprintf("Used medicine: %s (Quantity: %d)", m.Name, c.Quantity))
	return fmt.Sprintf("%s: %d used. Stock updated.", m.Name, c.Quantity), nil
}
