// Package domain holds the pharmacy entities. JSON field names match the
// persisted records so existing data loads unchanged.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Medicine is a stocked product on a shelf location. Slot is unique across
// all medicines. Expiry is kept as entered (YYYY-MM-DD or RFC3339) and may
// be empty.
type Medicine struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Row    string `json:"row"`
	Slot   string `json:"slot"`
	Stock  int    `json:"stock"`
	Used   int    `json:"used"`
	Expiry string `json:"expiry,omitempty"`
}

// LineItem is one medicine/quantity pair of an order. MedicineID is empty
// when the name did not match a medicine at submit time.
type LineItem struct {
	MedicineID string `json:"medicineId,omitempty"`
	Medicine   string `json:"medicine"`
	Quantity   int    `json:"quantity"`
}

// Order is a purchase order sent to a supplier. Medicine and Quantity are
// the display summary and total derived from Items.
type Order struct {
	ID          string     `json:"id"`
	Medicine    string     `json:"medicine"`
	Quantity    int        `json:"quantity"`
	Email       string     `json:"email"`
	Items       []LineItem `json:"items"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Summary renders items as "Amox - 50, Panadol - 20"
func Summary(items []LineItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s - %d", it.Medicine, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

// ParseSummary reads a display summary back into line items. Used for
// orders stored before line items were kept. Parts without a positive
// quantity after the last " - " are dropped.
func ParseSummary(summary string) []LineItem {
	var items []LineItem
	for _, part := range strings.Split(summary, ",") {
		i := strings.LastIndex(part, "-")
		if i < 0 {
			continue
		}
		name := strings.TrimSpace(part[:i])
		qty, err := strconv.Atoi(strings.TrimSpace(part[i+1:]))
		if name == "" || err != nil || qty <= 0 {
			continue
		}
		items = append(items, LineItem{Medicine: name, Quantity: qty})
	}
	return items
}

// TotalQuantity sums the quantities of items
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// ReorderMark suppresses low-stock alerts for a medicine with an
// outstanding order. ID is the medicine id.
type ReorderMark struct {
	ID   string    `json:"id"`
	Date Timestamp `json:"date"`
}

// UnmarshalJSON also accepts the legacy form where a mark was stored as
// the bare medicine id.
func (m *ReorderMark) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*m = ReorderMark{ID: id}
		return nil
	}

	type mark ReorderMark
	var v mark
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = ReorderMark(v)
	return nil
}

// displayLayouts are the toLocaleString formats found in records written by
// the browser app.
var displayLayouts = []string{
	"1/2/2006, 3:04:05 PM",
	"02/01/2006, 15:04:05",
}

// Timestamp is when something happened. Older records carry a locale
// display string rather than RFC3339. Raw keeps that text so it is written
// back unchanged, and Time holds it parsed when the layout is known.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// At stamps t
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// IsZero reports whether nothing was recorded
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero() && t.Raw == ""
}

// ParseTimestamp reads RFC3339 or a known display layout. Any other text is
// kept as Raw with a zero Time.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}
	}
	for _, layout := range displayLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t, Raw: s}
		}
	}
	return Timestamp{Raw: s}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.Raw != "":
		return json.Marshal(t.Raw)
	case t.Time.IsZero():
		return []byte("null"), nil
	default:
		return json.Marshal(t.Time)
	}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = ParseTimestamp(s)
	return nil
}

// Age is a patient's age in years. It also decodes from a numeric string,
// which is how the browser app stored the form value.
type Age int

func (a *Age) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Age(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("age: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*a = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("age %q is not a whole number", s)
	}
	*a = Age(n)
	return nil
}

// Supplier is a contact medicines are ordered from
type Supplier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Patient is a customer with one tracked prescription
type Patient struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Age            Age    `json:"age"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	Disease        string `json:"disease"`
	MedicineType   string `json:"medicineType"`
	MedicineExpiry string `json:"medicineExpiry"`
}

// Post is an activity log entry, stored newest first
type Post struct {
	ID   string    `json:"id"`
	Desc string    `json:"desc"`
	TS   Timestamp `json:"ts"`
}

// Session is the logged-in operator
type Session struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	LoginAt  time.Time `json:"loginAt"`
}

// Flash types
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is the transient message shown to the operator
type Flash struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}
