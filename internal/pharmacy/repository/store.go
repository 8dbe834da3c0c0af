package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/logger"
)

// Record keys, one per collection
const (
	KeyUser      = "ms_user"
	KeySuppliers = "ms_suppliers"
	KeyMedicines = "ms_medicines"
	KeyOrders    = "ms_orders"
	KeyPosts     = "ms_posts"
	KeyPatients  = "ms_patients"
	KeyMarks     = "ms_lowStockOrderSent"
	KeyContacted = "ms_contactedPatients"
)

// AllKeys lists every record key in load order
var AllKeys = []string{
	KeyUser, KeySuppliers, KeyMedicines, KeyOrders,
	KeyPosts, KeyPatients, KeyMarks, KeyContacted,
}

// StateStore loads and saves the snapshot
type StateStore struct {
	kv     KV
	prefix string
	logger *logger.Logger
}

// NewStateStore creates a store over kv. prefix is prepended to every key
// so several deployments can share one backend.
func NewStateStore(kv KV, prefix string, log *logger.Logger) *StateStore {
	return &StateStore{kv: kv, prefix: prefix, logger: log.WithComponent("state_store")}
}

func (s *StateStore) key(k string) string {
	return s.prefix + k
}

// Load reads the snapshot. Missing records load as empty collections and a
// record that does not decode is logged and replaced by its empty default.
// Only backend failures are returned.
func (s *StateStore) Load(ctx context.Context) (*state.State, error) {
	keys := make([]string, len(AllKeys))
	for i, k := range AllKeys {
		keys[i] = s.key(k)
	}

	raw, err := s.kv.GetMany(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := state.New()
	var session *domain.Session

	targets := map[string]interface{}{
		KeyUser:      &session,
		KeySuppliers: &st.Suppliers,
		KeyMedicines: &st.Medicines,
		KeyOrders:    &st.Orders,
		KeyPosts:     &st.Posts,
		KeyPatients:  &st.Patients,
		KeyMarks:     &st.Marks,
		KeyContacted: &st.Contacted,
	}

	for _, k := range AllKeys {
		data, ok := raw[s.key(k)]
		if !ok {
			continue
		}
		if err := json.Unmarshal(data, targets[k]); err != nil {
			s.logger.Warn().Err(err).Str("key", s.key(k)).Msg("corrupt record, using empty default")
			resetDefault(st, k)
			if k == KeyUser {
				session = nil
			}
		}
	}

	st.Session = session
	normalize(st)
	return st, nil
}

// Save writes every collection. A nil session removes the user record.
func (s *StateStore) Save(ctx context.Context, st *state.State) error {
	records := map[string]interface{}{
		KeySuppliers: st.Suppliers,
		KeyMedicines: st.Medicines,
		KeyOrders:    st.Orders,
		KeyPosts:     st.Posts,
		KeyPatients:  st.Patients,
		KeyMarks:     st.Marks,
		KeyContacted: st.Contacted,
	}
	if st.Session != nil {
		records[KeyUser] = st.Session
	}

	values := make(map[string][]byte, len(records))
	for k, v := range records {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", k, err)
		}
		values[s.key(k)] = data
	}

	if err := s.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if st.Session == nil {
		if err := s.kv.Delete(ctx, s.key(KeyUser)); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}

	return nil
}

// Health reports the backend status
func (s *StateStore) Health(ctx context.Context) map[string]string {
	return s.kv.Health(ctx)
}

func resetDefault(st *state.State, key string) {
	empty := state.New()
	switch key {
	case KeySuppliers:
		st.Suppliers = empty.Suppliers
	case KeyMedicines:
		st.Medicines = empty.Medicines
	case KeyOrders:
		st.Orders = empty.Orders
	case KeyPosts:
		st.Posts = empty.Posts
	case KeyPatients:
		st.Patients = empty.Patients
	case KeyMarks:
		st.Marks = empty.Marks
	case KeyContacted:
		st.Contacted = empty.Contacted
	}
}

// normalize turns JSON nulls back into empty collections and fills the
// structured line items of orders written before items were stored.
func normalize(st *state.State) {
	empty := state.New()
	if st.Suppliers == nil {
		st.Suppliers = empty.Suppliers
	}
	if st.Medicines == nil {
		st.Medicines = empty.Medicines
	}
	if st.Orders == nil {
		st.Orders = empty.Orders
	}
	if st.Posts == nil {
		st.Posts = empty.Posts
	}
	if st.Patients == nil {
		st.Patients = empty.Patients
	}
	if st.Marks == nil {
		st.Marks = empty.Marks
	}
	if st.Contacted == nil {
		st.Contacted = empty.Contacted
	}

	for i := range st.Orders {
		if len(st.Orders[i].Items) == 0 && st.Orders[i].Medicine != "" {
			st.Orders[i].Items = domain.ParseSummary(st.Orders[i].Medicine)
		}
	}
}
