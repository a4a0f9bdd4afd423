package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	data *state
}

type state struct {
	categories    map[string]domain.Category
	products      map[string]domain.Product
	menus         map[string]domain.Menu
	tables        map[string]domain.Table
	courts        map[string]domain.Court
	transactions  map[string]domain.Transaction
	invoiceIndex  map[string]string
	sellRecords   []domain.ProductSellRecord
	rentRecords   []domain.ProductRentRecord
	bookings      map[string]domain.Booking
	orderRequests map[string]domain.OrderRequest
	orderIndex    map[string]string
	inventory     map[string]domain.InventoryItem
	adjustments   []domain.InventoryAdjustment
	sequences     map[string]int
	notifications []domain.Notification
	auditLogs     []domain.AuditLog
	users         map[string]domain.UserAccount
}

func newState() *state {
	return &state{
		categories:    make(map[string]domain.Category),
		products:      make(map[string]domain.Product),
		menus:         make(map[string]domain.Menu),
		tables:        make(map[string]domain.Table),
		courts:        make(map[string]domain.Court),
		transactions:  make(map[string]domain.Transaction),
		invoiceIndex:  make(map[string]string),
		bookings:      make(map[string]domain.Booking),
		orderRequests: make(map[string]domain.OrderRequest),
		orderIndex:    make(map[string]string),
		inventory:     make(map[string]domain.InventoryItem),
		sequences:     make(map[string]int),
		users:         make(map[string]domain.UserAccount),
	}
}

// clone copies every map and slice. Pointer fields inside records are shared,
// which is safe because the store only ever replaces them.
func (st *state) clone() *state {
	out := &state{
		categories:    cloneMap(st.categories, nil),
		products:      cloneMap(st.products, nil),
		menus:         cloneMap(st.menus, nil),
		tables:        cloneMap(st.tables, nil),
		courts:        cloneMap(st.courts, nil),
		transactions:  cloneMap(st.transactions, cloneTransaction),
		invoiceIndex:  cloneMap(st.invoiceIndex, nil),
		sellRecords:   slices.Clone(st.sellRecords),
		rentRecords:   slices.Clone(st.rentRecords),
		bookings:      cloneMap(st.bookings, nil),
		orderRequests: cloneMap(st.orderRequests, cloneOrderRequest),
		orderIndex:    cloneMap(st.orderIndex, nil),
		inventory:     cloneMap(st.inventory, nil),
		adjustments:   slices.Clone(st.adjustments),
		sequences:     cloneMap(st.sequences, nil),
		notifications: slices.Clone(st.notifications),
		auditLogs:     slices.Clone(st.auditLogs),
		users:         cloneMap(st.users, nil),
	}
	return out
}

func cloneMap[V any](src map[string]V, deep func(V) V) map[string]V {
	out := make(map[string]V, len(src))
	for k, v := range src {
		if deep != nil {
			v = deep(v)
		}
		out[k] = v
	}
	return out
}

func cloneTransaction(tx domain.Transaction) domain.Transaction {
	tx.Items = slices.Clone(tx.Items)
	return tx
}

func cloneOrderRequest(o domain.OrderRequest) domain.OrderRequest {
	o.Items = slices.Clone(o.Items)
	return o
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newState()}
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Passwords come from SEED_OWNER_PASSWORD, SEED_ADMIN_PASSWORD and
// SEED_KASIR_PASSWORD, falling back to dev defaults with a warning.
func seedUsers(now time.Time) map[string]domain.UserAccount {
	accounts := []struct {
		username string
		env      string
		fallback string
		role     domain.Role
	}{
		{"owner", "SEED_OWNER_PASSWORD", "owner123", domain.RoleOwner},
		{"admin", "SEED_ADMIN_PASSWORD", "admin123", domain.RoleAdmin},
		{"kasir", "SEED_KASIR_PASSWORD", "kasir123", domain.RoleKasir},
	}

	users := make(map[string]domain.UserAccount, len(accounts))
	warned := false
	for _, a := range accounts {
		pwd := os.Getenv(a.env)
		if pwd == "" {
			pwd = a.fallback
			if !warned {
				log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_*_PASSWORD to override.")
				warned = true
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", a.username, err)
		}
		users[a.username] = domain.UserAccount{
			Username:  a.username,
			Password:  string(hash),
			Role:      a.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

// NewSeeded returns a store with a small café and court catalog for dev/demo use.
func NewSeeded() *Store {
	now := time.Now().UTC()
	st := newState()

	for _, c := range []domain.Category{
		{ID: "cat-drinks", Name: "Drinks", Kind: domain.CategoryKindProduct},
		{ID: "cat-equipment", Name: "Equipment", Kind: domain.CategoryKindProduct},
		{ID: "cat-coffee", Name: "Coffee", Kind: domain.CategoryKindMenu},
		{ID: "cat-food", Name: "Food", Kind: domain.CategoryKindMenu},
	} {
		c.IsActive = true
		c.CreatedAt = now
		st.categories[c.ID] = c
	}

	for _, p := range []domain.Product{
		{ID: "prd-water", Name: "Air Mineral 600ml", CategoryID: "cat-drinks", Type: domain.ProductTypeSell, PriceCents: 500000, Stock: 48},
		{ID: "prd-isotonic", Name: "Minuman Isotonik", CategoryID: "cat-drinks", Type: domain.ProductTypeSell, PriceCents: 1000000, Stock: 24},
		{ID: "prd-racket", Name: "Raket Badminton", CategoryID: "cat-equipment", Type: domain.ProductTypeRent, PriceCents: 2500000, Stock: 5},
		{ID: "prd-shoes", Name: "Sepatu Court", CategoryID: "cat-equipment", Type: domain.ProductTypeRent, PriceCents: 3000000, Stock: 4},
	} {
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		st.products[p.ID] = p
	}

	friedRiceStock := 20
	for _, m := range []domain.Menu{
		{ID: "mnu-kopi-susu", Name: "Kopi Susu", CategoryID: "cat-coffee", PriceCents: 2200000},
		{ID: "mnu-americano", Name: "Americano", CategoryID: "cat-coffee", PriceCents: 1800000},
		{ID: "mnu-nasi-goreng", Name: "Nasi Goreng", CategoryID: "cat-food", PriceCents: 3500000, Stock: &friedRiceStock},
	} {
		m.IsActive = true
		m.CreatedAt = now
		m.UpdatedAt = now
		st.menus[m.ID] = m
	}

	for _, code := range []string{"T01", "T02", "T03", "T04", "T05"} {
		id := "tbl-" + strings.ToLower(code)
		st.tables[id] = domain.Table{ID: id, Code: code, Status: domain.TableEmpty, IsActive: true, CreatedAt: now, UpdatedAt: now}
	}

	for _, c := range []domain.Court{
		{ID: "court-a", Name: "Court A", Status: domain.CourtActive, PricePerHourCents: 10000000},
		{ID: "court-b", Name: "Court B", Status: domain.CourtActive, PricePerHourCents: 8000000},
		{ID: "court-c", Name: "Court C", Status: domain.CourtMaintenance, PricePerHourCents: 8000000},
	} {
		c.IsVisible = true
		c.CreatedAt = now
		c.UpdatedAt = now
		st.courts[c.ID] = c
	}

	st.inventory["inv-shuttlecock"] = domain.InventoryItem{
		ID: "inv-shuttlecock", Name: "Shuttlecock tube", Unit: "tube", Quantity: 0, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	st.inventory["inv-net"] = domain.InventoryItem{
		ID: "inv-net", Name: "Court net", Unit: "pcs", Quantity: 0, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}

	st.users = seedUsers(now)
	return &Store{data: st}
}

// Atomic holds the write lock for the whole unit and restores the previous
// state when fn fails. fn must only use tx; calling Store methods from inside
// would deadlock.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, &memTx{st: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.categories[category.ID]; exists {
		return store.ErrDuplicate
	}
	s.data.categories[category.ID] = category
	return nil
}

func (s *Store) ListCategories(_ context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.products[product.ID]; exists {
		return store.ErrDuplicate
	}
	s.data.products[product.ID] = product
	return nil
}

func (s *Store) UpdateProductDetails(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data.products[product.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = product.Name
	existing.CategoryID = product.CategoryID
	existing.Type = product.Type
	existing.PriceCents = product.PriceCents
	existing.CostPriceCents = product.CostPriceCents
	existing.UpdatedAt = product.UpdatedAt
	s.data.products[product.ID] = existing
	return nil
}

func (s *Store) SetProductActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	s.data.products[id] = p
	return nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.data.products))
	for _, p := range s.data.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateMenu(_ context.Context, menu domain.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.menus[menu.ID]; exists {
		return store.ErrDuplicate
	}
	s.data.menus[menu.ID] = menu
	return nil
}

func (s *Store) UpdateMenuDetails(_ context.Context, menu domain.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data.menus[menu.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = menu.Name
	existing.CategoryID = menu.CategoryID
	existing.PriceCents = menu.PriceCents
	existing.CostPriceCents = menu.CostPriceCents
	existing.UpdatedAt = menu.UpdatedAt
	s.data.menus[menu.ID] = existing
	return nil
}

func (s *Store) SetMenuActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.data.menus[id]
	if !ok {
		return store.ErrNotFound
	}
	m.IsActive = active
	m.UpdatedAt = time.Now().UTC()
	s.data.menus[id] = m
	return nil
}

func (s *Store) GetMenu(_ context.Context, id string) (*domain.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.data.menus[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ListMenus(_ context.Context, activeOnly bool) ([]domain.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Menu, 0, len(s.data.menus))
	for _, m := range s.data.menus {
		if activeOnly && !m.IsActive {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateTable(_ context.Context, table domain.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.data.tables {
		if t.Code == table.Code {
			return store.ErrDuplicate
		}
	}
	s.data.tables[table.ID] = table
	return nil
}

func (s *Store) GetTable(_ context.Context, id string) (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.data.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) GetTableByCode(_ context.Context, code string) (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.tableByCode(code)
}

func (st *state) tableByCode(code string) (*domain.Table, error) {
	for _, t := range st.tables {
		if strings.EqualFold(t.Code, code) {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListTables(_ context.Context) ([]domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Table, 0, len(s.data.tables))
	for _, t := range s.data.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) SetTableActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.tables[id]
	if !ok {
		return store.ErrNotFound
	}
	t.IsActive = active
	t.UpdatedAt = time.Now().UTC()
	s.data.tables[id] = t
	return nil
}

func (s *Store) CreateCourt(_ context.Context, court domain.Court) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.courts[court.ID]; exists {
		return store.ErrDuplicate
	}
	s.data.courts[court.ID] = court
	return nil
}

func (s *Store) GetCourt(_ context.Context, id string) (*domain.Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data.courts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCourts(_ context.Context, visibleOnly bool) ([]domain.Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Court, 0, len(s.data.courts))
	for _, c := range s.data.courts {
		if visibleOnly && !c.IsVisible {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SetCourtStatus(_ context.Context, id string, status domain.CourtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data.courts[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	s.data.courts[id] = c
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.data.transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneTransaction(tx)
	return &out, nil
}

func (s *Store) ListTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.data.transactions))
	for _, tx := range s.data.transactions {
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && tx.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !tx.CreatedAt.Before(filter.To) {
			continue
		}
		out = append(out, cloneTransaction(tx))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) ListSellRecords(_ context.Context, transactionID string) ([]domain.ProductSellRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProductSellRecord, 0, 4)
	for _, r := range s.data.sellRecords {
		if r.TransactionID == transactionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListRentRecords(_ context.Context, transactionID string) ([]domain.ProductRentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProductRentRecord, 0, 4)
	for _, r := range s.data.rentRecords {
		if r.TransactionID == transactionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListActiveRentRecords(_ context.Context) ([]domain.ProductRentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ProductRentRecord, 0, 8)
	for _, r := range s.data.rentRecords {
		if r.Status == domain.RecordActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetBooking(_ context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

// ListBookings treats From/To as a window: a booking matches when it
// intersects [From, To).
func (s *Store) ListBookings(_ context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, 0, 8)
	for _, b := range s.data.bookings {
		if filter.CourtID != "" && b.CourtID != filter.CourtID {
			continue
		}
		if filter.Status != "" && b.BookingStatus != filter.Status {
			continue
		}
		if !filter.To.IsZero() && !b.StartTime.Before(filter.To) {
			continue
		}
		if !filter.From.IsZero() && !b.EndTime.After(filter.From) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) GetOrderRequest(_ context.Context, id string) (*domain.OrderRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.data.orderRequests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneOrderRequest(o)
	return &out, nil
}

func (s *Store) ListOrderRequests(_ context.Context, status domain.OrderStatus, limit int) ([]domain.OrderRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.OrderRequest, 0, len(s.data.orderRequests))
	for _, o := range s.data.orderRequests {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, cloneOrderRequest(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountOrderRequests(_ context.Context, from time.Time, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, o := range s.data.orderRequests {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetInventoryItem(_ context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.data.inventory[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *Store) ListInventoryItems(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryItem, 0, len(s.data.inventory))
	for _, item := range s.data.inventory {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListInventoryAdjustments(_ context.Context, inventoryID string, limit int) ([]domain.InventoryAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryAdjustment, 0, 8)
	for i := len(s.data.adjustments) - 1; i >= 0; i-- {
		adj := s.data.adjustments[i]
		if inventoryID != "" && adj.InventoryID != inventoryID {
			continue
		}
		out = append(out, adj)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateNotification(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.notifications = append(s.data.notifications, n)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, username string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0, 16)
	for i := len(s.data.notifications) - 1; i >= 0; i-- {
		n := s.data.notifications[i]
		if n.TargetUser != nil && *n.TargetUser != username {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.notifications {
		if s.data.notifications[i].ID == id {
			s.data.notifications[i].IsRead = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.auditLogs = append(s.data.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditLog, 0, 32)
	for i := len(s.data.auditLogs) - 1; i >= 0; i-- {
		entry := s.data.auditLogs[i]
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if _, exists := s.data.users[user.Username]; exists {
		return store.ErrDuplicate
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.data.users[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserAccount, 0, len(s.data.users))
	for _, u := range s.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	u, ok := s.data.users[username]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = password
	s.data.users[username] = u
	return nil
}
