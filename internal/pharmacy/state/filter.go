package state

import (
	"strings"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

// The filters below match the operator's search box: an empty query keeps
// everything, otherwise a case-insensitive substring match on the listed
// fields.

// FilterSuppliers matches name, email and phone
func FilterSuppliers(list []domain.Supplier, q string) []domain.Supplier {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []domain.Supplier{}
	for _, s := range list {
		if matches(q, s.Name, s.Email, s.Phone) {
			out = append(out, s)
		}
	}
	return out
}

// FilterMedicines matches name, row and slot
func FilterMedicines(list []domain.Medicine, q string) []domain.Medicine {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []domain.Medicine{}
	for _, m := range list {
		if matches(q, m.Name, m.Row, m.Slot) {
			out = append(out, m)
		}
	}
	return out
}

// FilterPatients matches name, phone, email, address, disease and medicine type
func FilterPatients(list []domain.Patient, q string) []domain.Patient {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []domain.Patient{}
	for _, p := range list {
		if matches(q, p.Name, p.Phone, p.Email, p.Address, p.Disease, p.MedicineType) {
			out = append(out, p)
		}
	}
	return out
}

func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
