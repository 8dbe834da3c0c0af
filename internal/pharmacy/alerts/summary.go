package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

// Summary holds the dashboard counters
type Summary struct {
	SupplierCount int `json:"supplierCount"`
	MedicineCount int `json:"medicineCount"`
	LowStockCount int `json:"lowStockCount"`
	ExpiringCount int `json:"expiringCount"`
	PatientCount  int `json:"patientCount"`
}

// Input is the part of the snapshot the alert views depend on
type Input struct {
	Suppliers []domain.Supplier
	Medicines []domain.Medicine
	Patients  []domain.Patient
	Marks     []domain.ReorderMark
	Contacted []string
	Threshold int
}

// Report bundles every derived view
type Report struct {
	Summary                Summary          `json:"summary"`
	Expiry                 ExpiryReport     `json:"expiry"`
	LowStock               LowStockReport   `json:"lowStock"`
	PatientsNeedingContact []domain.Patient `json:"patientsNeedingContact"`
	Message                string           `json:"message"`
	GeneratedAt            time.Time        `json:"generatedAt"`
}

// Build computes all views for in at now
func Build(in Input, now time.Time) Report {
	expiry := ClassifyExpiry(in.Medicines, now)
	low := ClassifyLowStock(in.Medicines, in.Marks, in.Threshold)

	return Report{
		Summary: Summary{
			SupplierCount: len(in.Suppliers),
			MedicineCount: len(in.Medicines),
			LowStockCount: len(low.LowStock),
			ExpiringCount: len(expiry.ExpiringSoon),
			PatientCount:  len(in.Patients),
		},
		Expiry:                 expiry,
		LowStock:               low,
		PatientsNeedingContact: PatientsNeedingContact(in.Patients, in.Contacted, now),
		Message:                AlertMessage(len(expiry.ExpiringSoon), len(low.LowStock)),
		GeneratedAt:            now,
	}
}

// AlertMessage composes the banner text. Each clause appears only when its
// count is positive; both zero gives "".
func AlertMessage(expiring, lowStock int) string {
	var parts []string
	if expiring > 0 {
		parts = append(parts, fmt.Sprintf("⚠ %d medicine(s) expiring soon.", expiring))
	}
	if lowStock > 0 {
		parts = append(parts, fmt.Sprintf("⚠ %d medicine(s) low in stock.", lowStock))
	}
	return strings.Join(parts, " ")
}
