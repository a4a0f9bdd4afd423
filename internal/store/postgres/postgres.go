package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// Atomic runs fn inside a serializable database transaction. Rows read with
// the Lock* methods are held with SELECT ... FOR UPDATE until commit.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(ctx, &pgTx{tx: sqlTx}); err != nil {
		return mapError(err)
	}
	return mapError(sqlTx.Commit())
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, c.ID, c.Name, c.Kind, c.IsActive, c.CreatedAt)
	return mapError(err)
}

func (s *Store) ListCategories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, is_active, created_at
		FROM categories
		WHERE ($1 = '' OR kind = $1)
		ORDER BY name
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Category, 0, 16)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, is_active, created_at FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Kind, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category_id, type, price_cents, cost_price_cents, stock, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.Name, nullIfEmpty(p.CategoryID), p.Type, p.PriceCents, nullInt64(p.CostPriceCents), p.Stock,
		p.IsActive, p.CreatedAt, p.UpdatedAt)
	return mapError(err)
}

func (s *Store) UpdateProductDetails(ctx context.Context, p domain.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category_id = $3, type = $4, price_cents = $5, cost_price_cents = $6, updated_at = $7
		WHERE id = $1
	`, p.ID, p.Name, nullIfEmpty(p.CategoryID), p.Type, p.PriceCents, nullInt64(p.CostPriceCents), p.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "product", p.ID)
}

func (s *Store) SetProductActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	return requireAffected(res, "product", id)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = false OR is_active = true)
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreateMenu(ctx context.Context, m domain.Menu) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menus (id, name, category_id, price_cents, cost_price_cents, stock, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, m.ID, m.Name, nullIfEmpty(m.CategoryID), m.PriceCents, nullInt64(m.CostPriceCents), nullInt(m.Stock),
		m.IsActive, m.CreatedAt, m.UpdatedAt)
	return mapError(err)
}

func (s *Store) UpdateMenuDetails(ctx context.Context, m domain.Menu) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menus
		SET name = $2, category_id = $3, price_cents = $4, cost_price_cents = $5, updated_at = $6
		WHERE id = $1
	`, m.ID, m.Name, nullIfEmpty(m.CategoryID), m.PriceCents, nullInt64(m.CostPriceCents), m.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "menu", m.ID)
}

func (s *Store) SetMenuActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE menus SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	return requireAffected(res, "menu", id)
}

func (s *Store) GetMenu(ctx context.Context, id string) (*domain.Menu, error) {
	m, err := scanMenu(s.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "menu", id)
	}
	return &m, nil
}

func (s *Store) ListMenus(ctx context.Context, activeOnly bool) ([]domain.Menu, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+menuColumns+`
		FROM menus
		WHERE ($1 = false OR is_active = true)
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Menu, 0, 64)
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateTable(ctx context.Context, t domain.Table) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dining_tables (id, code, status, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, t.ID, t.Code, t.Status, t.IsActive, t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

func (s *Store) GetTable(ctx context.Context, id string) (*domain.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "table", id)
	}
	return &t, nil
}

func (s *Store) GetTableByCode(ctx context.Context, code string) (*domain.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE upper(code) = upper($1)`, code))
	if err != nil {
		return nil, notFound(err, "table", code)
	}
	return &t, nil
}

func (s *Store) ListTables(ctx context.Context) ([]domain.Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tableColumns+` FROM dining_tables ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Table, 0, 32)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SetTableActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE dining_tables SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	return requireAffected(res, "table", id)
}

func (s *Store) CreateCourt(ctx context.Context, c domain.Court) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courts (id, name, description, status, price_per_hour_cents, is_visible, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.Name, c.Description, c.Status, c.PricePerHourCents, c.IsVisible, c.CreatedAt, c.UpdatedAt)
	return mapError(err)
}

func (s *Store) GetCourt(ctx context.Context, id string) (*domain.Court, error) {
	c, err := scanCourt(s.db.QueryRowContext(ctx, `SELECT `+courtColumns+` FROM courts WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "court", id)
	}
	return &c, nil
}

func (s *Store) ListCourts(ctx context.Context, visibleOnly bool) ([]domain.Court, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+courtColumns+`
		FROM courts
		WHERE ($1 = false OR is_visible = true)
		ORDER BY name
	`, visibleOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Court, 0, 8)
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SetCourtStatus(ctx context.Context, id string, status domain.CourtStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE courts SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "court", id)
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return getTransaction(ctx, s.db, id, false)
}

func getTransaction(ctx context.Context, q querier, id string, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	tx, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	items, err := loadTransactionItems(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	tx.Items = items[id]
	return &tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC
		LIMIT $5
	`, string(filter.Type), string(filter.Status), nullZeroTime(filter.From), nullZeroTime(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
		ids = append(ids, tx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	items, err := loadTransactionItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *Store) ListSellRecords(ctx context.Context, transactionID string) ([]domain.ProductSellRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_price_cents, subtotal_cents, status, created_at
		FROM product_sell_records
		WHERE transaction_id = $1
		ORDER BY created_at, id
	`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProductSellRecord, 0, 4)
	for rows.Next() {
		var r domain.ProductSellRecord
		if err := rows.Scan(&r.ID, &r.TransactionID, &r.ProductID, &r.Quantity, &r.UnitPriceCents,
			&r.SubtotalCents, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListRentRecords(ctx context.Context, transactionID string) ([]domain.ProductRentRecord, error) {
	return queryRentRecords(ctx, s.db, `WHERE transaction_id = $1`, transactionID)
}

func (s *Store) ListActiveRentRecords(ctx context.Context) ([]domain.ProductRentRecord, error) {
	return queryRentRecords(ctx, s.db, `WHERE status = $1`, string(domain.RecordActive))
}

func queryRentRecords(ctx context.Context, q querier, where string, args ...any) ([]domain.ProductRentRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, quantity, unit_price_cents, subtotal_cents, status,
		       expected_return_at, returned_at, notes, created_at
		FROM product_rent_records
		`+where+`
		ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProductRentRecord, 0, 8)
	for rows.Next() {
		var r domain.ProductRentRecord
		var expected, returned sql.NullTime
		if err := rows.Scan(&r.ID, &r.TransactionID, &r.ProductID, &r.Quantity, &r.UnitPriceCents,
			&r.SubtotalCents, &r.Status, &expected, &returned, &r.Notes, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.ExpectedReturnAt = timePtr(expected)
		r.ReturnedAt = timePtr(returned)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (s *Store) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE ($1 = '' OR court_id = $1)
		  AND ($2 = '' OR booking_status = $2)
		  AND ($3::timestamptz IS NULL OR end_time > $3)
		  AND ($4::timestamptz IS NULL OR start_time < $4)
		ORDER BY start_time
		LIMIT $5
	`, filter.CourtID, string(filter.Status), nullZeroTime(filter.From), nullZeroTime(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Booking, 0, 16)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetOrderRequest(ctx context.Context, id string) (*domain.OrderRequest, error) {
	return getOrderRequest(ctx, s.db, id, false)
}

func getOrderRequest(ctx context.Context, q querier, id string, forUpdate bool) (*domain.OrderRequest, error) {
	query := `SELECT ` + orderColumns + ` FROM order_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrderRequest(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "order request", id)
	}
	items, err := loadOrderItems(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return &o, nil
}

func (s *Store) ListOrderRequests(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.OrderRequest, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM order_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.OrderRequest, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		o, err := scanOrderRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	items, err := loadOrderItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (s *Store) CountOrderRequests(ctx context.Context, from time.Time, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM order_requests WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&count)
	return count, err
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := scanInventoryItem(s.db.QueryRowContext(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "inventory item", id)
	}
	return &item, nil
}

func (s *Store) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.InventoryItem, 0, 32)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) ListInventoryAdjustments(ctx context.Context, inventoryID string, limit int) ([]domain.InventoryAdjustment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, inventory_id, change_type, quantity_before, quantity_after, change_amount, reason, actor, created_at
		FROM inventory_adjustments
		WHERE ($1 = '' OR inventory_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, inventoryID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.InventoryAdjustment, 0, limit)
	for rows.Next() {
		var a domain.InventoryAdjustment
		if err := rows.Scan(&a.ID, &a.InventoryID, &a.ChangeType, &a.QuantityBefore, &a.QuantityAfter,
			&a.ChangeAmount, &a.Reason, &a.Actor, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateNotification(ctx context.Context, n domain.Notification) error {
	var payload any
	if len(n.Payload) > 0 {
		payload = []byte(n.Payload)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, type, title, message, payload, target_user, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, n.ID, n.Type, n.Title, n.Message, payload, nullString(n.TargetUser), n.IsRead, n.CreatedAt)
	return mapError(err)
}

func (s *Store) ListNotifications(ctx context.Context, username string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, title, message, payload, target_user, is_read, created_at
		FROM notifications
		WHERE (target_user IS NULL OR target_user = $1)
		  AND ($2 = false OR is_read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`, username, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		var payload []byte
		var target sql.NullString
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &payload, &target, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Payload = payload
		n.TargetUser = stringPtr(target)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "notification", id)
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	return mapError(err)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	return requireAffected(res, "user", username)
}

func nullZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
