package alerts

import (
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

// DefaultLowStockThreshold is the stock level below which a medicine needs
// reordering.
const DefaultLowStockThreshold = 20

// OrderedMedicine is a low-stock medicine that already has a reorder out
type OrderedMedicine struct {
	domain.Medicine
	SentAt domain.Timestamp `json:"sentAt"`
}

// LowStockReport holds the low-stock medicines. Only LowStock counts
// towards alerts; AlreadyOrdered is for display.
type LowStockReport struct {
	LowStock       []domain.Medicine `json:"lowStock"`
	AlreadyOrdered []OrderedMedicine `json:"alreadyOrdered"`
}

// ActiveMarks indexes marks by medicine id. On duplicates the first mark
// wins so SentAt reflects the original reorder.
func ActiveMarks(marks []domain.ReorderMark) map[string]domain.ReorderMark {
	active := make(map[string]domain.ReorderMark, len(marks))
	for _, mk := range marks {
		if _, seen := active[mk.ID]; !seen {
			active[mk.ID] = mk
		}
	}
	return active
}

// ClassifyLowStock returns medicines with stock under threshold, split by
// whether a reorder mark is active for them. A threshold <= 0 falls back
// to DefaultLowStockThreshold.
func ClassifyLowStock(medicines []domain.Medicine, marks []domain.ReorderMark, threshold int) LowStockReport {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	active := ActiveMarks(marks)
	report := LowStockReport{
		LowStock:       []domain.Medicine{},
		AlreadyOrdered: []OrderedMedicine{},
	}

	for _, m := range medicines {
		if m.Stock >= threshold {
			continue
		}
		if mk, ok := active[m.ID]; ok {
			report.AlreadyOrdered = append(report.AlreadyOrdered, OrderedMedicine{Medicine: m, SentAt: mk.Date})
			continue
		}
		report.LowStock = append(report.LowStock, m)
	}

	return report
}
