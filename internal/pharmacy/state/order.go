package state

import (
	"fmt"
	"strings"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/errors"
)

// OrderLine is one requested medicine of a reorder
type OrderLine struct {
	Medicine string `json:"medicine" validate:"notblank"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// SubmitReorder creates a pending order and marks every matched medicine
// that has no active mark yet. Sending the notification is left to the
// caller, which reads Order after a successful Reduce.
type SubmitReorder struct {
	ID    string      `json:"id" validate:"notblank"`
	Email string      `json:"email" validate:"notblank,email"`
	Items []OrderLine `json:"items" validate:"min=1,dive"`

	// Order is filled in by Apply
	Order domain.Order `json:"-" validate:"-"`
}

func (c *SubmitReorder) Kind() string { return "submit_reorder" }

func (c *SubmitReorder) Apply(s *State, env Env) (string, error) {
	c.ID, c.Email = strings.TrimSpace(c.ID), strings.TrimSpace(c.Email)
	if s.orderIndex(c.ID) >= 0 {
		return "", errors.Conflict("Order ID already exists!")
	}

	items := make([]domain.LineItem, 0, len(c.Items))
	for _, line := range c.Items {
		name := strings.TrimSpace(line.Medicine)
		item := domain.LineItem{Medicine: name, Quantity: line.Quantity}

		if idx := s.medicineByName(name); idx >= 0 {
			id := s.Medicines[idx].ID
			item.MedicineID = id
			if !s.hasMark(id) {
				s.Marks = append(s.Marks, domain.ReorderMark{ID: id, Date: domain.At(env.Now)})
			}
		}
		items = append(items, item)
	}

	c.Order = domain.Order{
		ID:        c.ID,
		Medicine:  domain.Summary(items),
		Quantity:  domain.TotalQuantity(items),
		Email:     c.Email,
		Items:     items,
		CreatedAt: env.Now,
	}
	s.Orders = append([]domain.Order{c.Order}, s.Orders...)
	s.addPost(env, fmt.Sprintf("Order sent for %s (qty %d) to %s", c.Order.Medicine, c.Order.Quantity, c.Email))
	return fmt.Sprintf("Order sent to %s!", c.Email), nil
}

// ReceiveOrder completes a pending order: each line item's quantity is added
// to its medicine and the medicine's reorder mark is cleared. Items whose
// medicine no longer exists are skipped. Receiving a completed order again
// changes nothing.
type ReceiveOrder struct {
	ID string `validate:"required"`

	// Restocked maps medicine id to units added, filled in by Apply
	Restocked map[string]int `validate:"-"`
	// AlreadyCompleted is set when the order had been received before
	AlreadyCompleted bool `validate:"-"`
}

func (c *ReceiveOrder) Kind() string { return "receive_order" }

func (c *ReceiveOrder) Apply(s *State, env Env) (string, error) {
	idx := s.orderIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("order")
	}

	c.Restocked = map[string]int{}
	o := &s.Orders[idx]
	if o.Completed {
		c.AlreadyCompleted = true
		return fmt.Sprintf("Order %s was already received", o.ID), nil
	}

	for _, item := range o.Items {
		m := s.resolveItem(item)
		if m < 0 {
			continue
		}
		med := &s.Medicines[m]
		med.Stock += item.Quantity
		c.Restocked[med.ID] += item.Quantity
		s.clearMark(med.ID)
	}

	now := env.Now
	o.Completed = true
	o.CompletedAt = &now
	s.addPost(env, fmt.Sprintf("Order received: %s (%s)", o.Medicine, o.ID))
	return fmt.Sprintf("Order %s marked as received and stock updated", o.ID), nil
}

// resolveItem finds the medicine a line item refers to: by id when it was
// resolved at submit time, otherwise by name.
func (s *State) resolveItem(item domain.LineItem) int {
	if item.MedicineID != "" {
		return s.medicineIndex(item.MedicineID)
	}
	return s.medicineByName(item.Medicine)
}

// DeleteOrder removes an order whatever its state. Reorder marks stay.
type DeleteOrder struct {
	ID string `validate:"required"`
}

func (c *DeleteOrder) Kind() string { return "delete_order" }

func (c *DeleteOrder) Apply(s *State, env Env) (string, error) {
	idx := s.orderIndex(c.ID)
	if idx < 0 {
		return "", errors.NotFound("order")
	}

	o := s.Orders[idx]
	s.Orders = append(s.Orders[:idx], s.Orders[idx+1:]...)
	s.addPost(env, fmt.Sprintf("Deleted order %s (%s)", o.Medicine, o.ID))
	return "Order deleted!", nil
}
