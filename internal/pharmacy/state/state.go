// Package state holds the pharmacy snapshot and the commands that change it.
//
// A command never mutates the snapshot it is given: Reduce applies it to a
// clone and returns either the new snapshot or the untouched old one with
// the error.
package state

import (
	"strings"
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

// State is the whole application state. Slices are ordered newest first
// for entities the operator creates.
type State struct {
	Session   *domain.Session      `json:"session,omitempty"`
	Suppliers []domain.Supplier    `json:"suppliers"`
	Medicines []domain.Medicine    `json:"medicines"`
	Orders    []domain.Order       `json:"orders"`
	Posts     []domain.Post        `json:"posts"`
	Patients  []domain.Patient     `json:"patients"`
	Marks     []domain.ReorderMark `json:"marks"`
	Contacted []string             `json:"contacted"`
}

// New returns an empty snapshot
func New() *State {
	return &State{
		Suppliers: []domain.Supplier{},
		Medicines: []domain.Medicine{},
		Orders:    []domain.Order{},
		Posts:     []domain.Post{},
		Patients:  []domain.Patient{},
		Marks:     []domain.ReorderMark{},
		Contacted: []string{},
	}
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := &State{
		Suppliers: append([]domain.Supplier{}, s.Suppliers...),
		Medicines: append([]domain.Medicine{}, s.Medicines...),
		Posts:     append([]domain.Post{}, s.Posts...),
		Patients:  append([]domain.Patient{}, s.Patients...),
		Marks:     append([]domain.ReorderMark{}, s.Marks...),
		Contacted: append([]string{}, s.Contacted...),
		Orders:    make([]domain.Order, len(s.Orders)),
	}

	if s.Session != nil {
		sess := *s.Session
		c.Session = &sess
	}

	for i, o := range s.Orders {
		o.Items = append([]domain.LineItem{}, o.Items...)
		if o.CompletedAt != nil {
			at := *o.CompletedAt
			o.CompletedAt = &at
		}
		c.Orders[i] = o
	}

	return c
}

// AlertInput exposes the snapshot to the alert engine
func (s *State) AlertInput(threshold int) alerts.Input {
	return alerts.Input{
		Suppliers: s.Suppliers,
		Medicines: s.Medicines,
		Patients:  s.Patients,
		Marks:     s.Marks,
		Contacted: s.Contacted,
		Threshold: threshold,
	}
}

// Report derives every alert view from the snapshot
func (s *State) Report(threshold int, now time.Time) alerts.Report {
	return alerts.Build(s.AlertInput(threshold), now)
}

func (s *State) addPost(env Env, desc string) {
	post := domain.Post{ID: env.NewID(), Desc: desc, TS: domain.At(env.Now)}
	s.Posts = append([]domain.Post{post}, s.Posts...)
}

func (s *State) medicineIndex(id string) int {
	for i, m := range s.Medicines {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) medicineByName(name string) int {
	for i, m := range s.Medicines {
		if strings.TrimSpace(m.Name) == name {
			return i
		}
	}
	return -1
}

func (s *State) supplierIndex(id string) int {
	for i, sup := range s.Suppliers {
		if sup.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) orderIndex(id string) int {
	for i, o := range s.Orders {
		if strings.TrimSpace(o.ID) == id {
			return i
		}
	}
	return -1
}

func (s *State) patientIndex(id string) int {
	for i, p := range s.Patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) hasMark(medicineID string) bool {
	for _, mk := range s.Marks {
		if mk.ID == medicineID {
			return true
		}
	}
	return false
}

func (s *State) clearMark(medicineID string) {
	kept := s.Marks[:0]
	for _, mk := range s.Marks {
		if mk.ID != medicineID {
			kept = append(kept, mk)
		}
	}
	s.Marks = kept
}
