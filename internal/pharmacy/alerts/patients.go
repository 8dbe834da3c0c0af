package alerts

import (
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

// ContactedSet turns the stored id list into a set. Duplicates in the list
// collapse here.
func ContactedSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// PatientsNeedingContact returns patients whose medicine expires within the
// window and who have not been contacted yet.
func PatientsNeedingContact(patients []domain.Patient, contacted []string, now time.Time) []domain.Patient {
	done := ContactedSet(contacted)
	out := []domain.Patient{}

	for _, p := range patients {
		if _, ok := done[p.ID]; ok {
			continue
		}
		expiry, ok := ParseDate(p.MedicineExpiry, now.Location())
		if !ok || !InWindow(expiry, now) {
			continue
		}
		out = append(out, p)
	}

	return out
}
