package state

import (
	"fmt"
	"strings"

	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/errors"
)

// SavePatient adds a patient, or replaces the one with id EditID. Phone and
// email must be unused when adding.
type SavePatient struct {
	EditID         string     `json:"-"`
	Name           string     `json:"name" validate:"notblank"`
	Age            domain.Age `json:"age" validate:"gt=0"`
	Gender         string     `json:"gender" validate:"notblank"`
	Phone          string     `json:"phone" validate:"notblank"`
	Email          string     `json:"email" validate:"notblank,email"`
	Address        string     `json:"address" validate:"notblank"`
	Disease        string     `json:"disease" validate:"notblank"`
	MedicineType   string     `json:"medicineType" validate:"notblank"`
	MedicineExpiry string     `json:"medicineExpiry" validate:"notblank,date"`

	Saved domain.Patient `json:"-" validate:"-"`
}

func (c *SavePatient) Kind() string { return "save_patient" }

func (c *SavePatient) Apply(s *State, env Env) (string, error) {
	c.Name, c.Phone, c.Email = strings.TrimSpace(c.Name), strings.TrimSpace(c.Phone), strings.TrimSpace(c.Email)

	p := domain.Patient{
		Name:           c.Name,
		Age:            c.Age,
		Gender:         c.Gender,
		Phone:          c.Phone,
		Email:          c.Email,
		Address:        c.Address,
		Disease:        c.Disease,
		MedicineType:   c.MedicineType,
		MedicineExpiry: c.MedicineExpiry,
	}

	if c.EditID != "" {
		idx := s.patientIndex(c.EditID)
		if idx < 0 {
			return "", errors.NotFound("patient")
		}
		p.ID = c.EditID
		s.Patients[idx] = p
		c.Saved = p
		s.addPost(env, fmt.Sprintf("Updated patient %s", c.Name))
		return "Patient updated successfully!", nil
	}

	for _, other := range s.Patients {
		if other.Phone == c.Phone {
			return "", errors.Conflict("Phone number already exists!")
		}
		if other.Email == c.Email {
			return "", errors.Conflict("Email already exists!")
		}
	}

	p.ID = env.NewID()
	s.Patients = append([]domain.Patient{p}, s.Patients...)
	c.Saved = p
	s.addPost(env, fmt.Sprintf("Added patient %s", c.Name))
	return "Patient added successfully!", nil
}

// DeletePatient removes a patient. The id stays in the contacted set.
type DeletePatient struct {
	ID string `validate:"required"`
}

func (c *DeletePatient) Kind() string { return "delete_patient" }

func (c *DeletePatient) Apply(s *State, env Env) (string, error) {
	idx := s.patientIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("patient")
	}

	name := s.Patients[idx].Name
	s.Patients = append(s.Patients[:idx], s.Patients[idx+1:]...)
	s.addPost(env, fmt.Sprintf("Deleted patient %s", name))
	return "Patient deleted", nil
}

// MarkContacted adds a patient to the contacted set. The set is never
// cleared, so a contacted patient is not reminded again even after their
// medicine expiry changes.
type MarkContacted struct {
	ID string `validate:"required"`
}

func (c *MarkContacted) Kind() string { return "mark_contacted" }

func (c *MarkContacted) Apply(s *State, env Env) (string, error) {
	idx := s.patientIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("patient")
	}

	if _, done := alerts.ContactedSet(s.Contacted)[c.ID]; !done {
		s.Contacted = append(s.Contacted, c.ID)
	}
	return fmt.Sprintf("Contacted %s", s.Patients[idx].Name), nil
}
