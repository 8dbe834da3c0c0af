package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

// fullState builds a snapshot through the normal commands so every
// collection is populated.
func fullState(t *testing.T) *state.State {
	t.Helper()
	env := state.NewEnv(fixedNow)

	s := state.New()
	cmds := []state.Command{
		&state.StartSession{SessionID: "sess-1", Username: "test"},
		&state.SaveSupplier{ID: "s1", Name: "Acme", Email: "acme@x.com", Phone: "111"},
		&state.SaveMedicine{Name: "Amox", Row: "A", Slot: "1", Stock: 5, Expiry: "2024-02-01"},
		&state.SaveMedicine{Name: "Panadol", Row: "B", Slot: "2", Stock: 80, Expiry: "2026-01-01"},
		&state.SavePatient{Name: "Ann", Age: 40, Gender: "F", Phone: "555", Email: "ann@x.com",
			Address: "Main St", Disease: "Flu", MedicineType: "Amox", MedicineExpiry: "2024-01-30"},
		&state.SubmitReorder{ID: "o1", Email: "ph@x.com", Items: []state.OrderLine{{Medicine: "Amox", Quantity: 50}}},
		&state.SubmitReorder{ID: "o2", Email: "ph@x.com", Items: []state.OrderLine{{Medicine: "Panadol", Quantity: 10}}},
	}
	for _, cmd := range cmds {
		next, _, err := state.Reduce(s, cmd, env)
		require.NoError(t, err, cmd.Kind())
		s = next
	}

	next, _, err := state.Reduce(s, &state.ReceiveOrder{ID: "o2"}, env)
	require.NoError(t, err)
	next, _, err = state.Reduce(next, &state.MarkContacted{ID: next.Patients[0].ID}, env)
	require.NoError(t, err)
	return next
}

func TestStateStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(NewMemoryKV(), "", logger.Nop())
	want := fullState(t)

	require.NoError(t, store.Save(ctx, want))
	got, err := store.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch after reload (-want +got):\n%s", diff)
	}
}

func TestStateStore_EmptyBackend(t *testing.T) {
	store := NewStateStore(NewMemoryKV(), "", logger.Nop())

	got, err := store.Load(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(state.New(), got); diff != "" {
		t.Errorf("expected empty state (-want +got):\n%s", diff)
	}
}

func TestStateStore_CorruptRecordFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	var logs bytes.Buffer
	store := NewStateStore(kv, "", logger.NewWithWriter("test", &logs))

	require.NoError(t, store.Save(ctx, fullState(t)))
	require.NoError(t, kv.SetMany(ctx, map[string][]byte{
		KeyMedicines: []byte(`[{"id": "m1", "stock": "not a number"`),
		KeyUser:      []byte(`{{{`),
		KeyContacted: []byte(`null`),
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Empty(t, got.Medicines)
	assert.NotNil(t, got.Medicines)
	assert.Nil(t, got.Session)
	assert.NotNil(t, got.Contacted)
	assert.Len(t, got.Suppliers, 1)
	assert.Len(t, got.Orders, 2)
	assert.Contains(t, logs.String(), "corrupt record")
	assert.Contains(t, logs.String(), KeyMedicines)
}

func TestStateStore_LegacyRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStateStore(kv, "", logger.Nop())

	require.NoError(t, kv.SetMany(ctx, map[string][]byte{
		KeyMarks:  []byte(`["m1", {"id": "m2", "date": "2024-01-10T08:00:00Z"}]`),
		KeyOrders: []byte(`[{"id": "o1", "medicine": "Amox - 50, Panadol - 20", "quantity": 70, "email": "ph@x.com", "completed": false}]`),
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Marks, 2)
	assert.Equal(t, "m1", got.Marks[0].ID)
	assert.Equal(t, "m2", got.Marks[1].ID)

	require.Len(t, got.Orders, 1)
	assert.Equal(t, []domain.LineItem{
		{Medicine: "Amox", Quantity: 50},
		{Medicine: "Panadol", Quantity: 20},
	}, got.Orders[0].Items)
}

func TestStateStore_BrowserAppRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStateStore(kv, "", logger.Nop())

	require.NoError(t, kv.SetMany(ctx, map[string][]byte{
		KeyUser:      []byte(`{"username": "test", "loginAt": "2024-01-15T08:59:00.000Z"}`),
		KeyMedicines: []byte(`[{"id": "m1", "name": "Amox", "row": "A", "slot": "1", "stock": 5, "expiry": "2025-06-01", "used": 0}]`),
		KeyMarks:     []byte(`[{"id": "m1", "date": "1/15/2024, 9:00:00 AM"}, {"id": "m2", "date": "15.1.2024, 09:00:00"}]`),
		KeyPosts:     []byte(`[{"id": "p1", "desc": "Added medicine: Amox", "ts": "1/15/2024, 9:00:00 AM"}]`),
		KeyPatients:  []byte(`[{"id": "pt1", "name": "Ann", "age": "40", "gender": "F", "phone": "555", "email": "ann@x.com", "address": "Main St", "disease": "Flu", "medicineType": "Amox", "medicineExpiry": "2024-01-30"}]`),
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, got.Marks, 2)
	assert.Equal(t, "1/15/2024, 9:00:00 AM", got.Marks[0].Date.Raw)
	assert.True(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local).Equal(got.Marks[0].Date.Time))
	assert.Equal(t, "15.1.2024, 09:00:00", got.Marks[1].Date.Raw)
	assert.True(t, got.Marks[1].Date.Time.IsZero())

	require.Len(t, got.Posts, 1)
	assert.Equal(t, "1/15/2024, 9:00:00 AM", got.Posts[0].TS.Raw)

	require.Len(t, got.Patients, 1)
	assert.Equal(t, domain.Age(40), got.Patients[0].Age)

	require.NotNil(t, got.Session)
	assert.Equal(t, "test", got.Session.Username)

	// the outstanding reorder still suppresses the low-stock alert
	report := got.Report(20, fixedNow)
	assert.Empty(t, report.LowStock.LowStock)
	require.Len(t, report.LowStock.AlreadyOrdered, 1)

	require.NoError(t, store.Save(ctx, got))
	raw, err := kv.GetMany(ctx, []string{KeyMarks, KeyPosts})
	require.NoError(t, err)
	assert.Contains(t, string(raw[KeyMarks]), `"date":"1/15/2024, 9:00:00 AM"`)
	assert.Contains(t, string(raw[KeyPosts]), `"ts":"1/15/2024, 9:00:00 AM"`)
}

func TestStateStore_LogoutRemovesUserRecord(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStateStore(kv, "", logger.Nop())

	s := fullState(t)
	require.NoError(t, store.Save(ctx, s))
	raw, _ := kv.GetMany(ctx, []string{KeyUser})
	require.Contains(t, raw, KeyUser)

	s.Session = nil
	require.NoError(t, store.Save(ctx, s))

	raw, _ = kv.GetMany(ctx, []string{KeyUser})
	assert.NotContains(t, raw, KeyUser)
}

func TestStateStore_Prefix(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStateStore(kv, "branch1:", logger.Nop())

	require.NoError(t, store.Save(ctx, fullState(t)))

	raw, err := kv.GetMany(ctx, []string{"branch1:" + KeySuppliers, KeySuppliers})
	require.NoError(t, err)
	assert.Contains(t, raw, "branch1:"+KeySuppliers)
	assert.NotContains(t, raw, KeySuppliers)

	var suppliers []domain.Supplier
	require.NoError(t, json.Unmarshal(raw["branch1:"+KeySuppliers], &suppliers))
	assert.Equal(t, "Acme", suppliers[0].Name)
}
