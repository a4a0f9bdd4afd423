package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx so reads can be shared
// between plain repository calls and atomic units.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, COALESCE(category_id, ''), type, price_cents, cost_price_cents, stock, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var cost sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Type, &p.PriceCents, &cost, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	p.CostPriceCents = int64Ptr(cost)
	return p, err
}

const menuColumns = `id, name, COALESCE(category_id, ''), price_cents, cost_price_cents, stock, is_active, created_at, updated_at`

func scanMenu(row rowScanner) (domain.Menu, error) {
	var m domain.Menu
	var cost, stock sql.NullInt64
	err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.PriceCents, &cost, &stock, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	m.CostPriceCents = int64Ptr(cost)
	if stock.Valid {
		v := int(stock.Int64)
		m.Stock = &v
	}
	return m, err
}

const tableColumns = `id, code, status, current_customer_name, occupied_at, is_active, created_at, updated_at`

func scanTable(row rowScanner) (domain.Table, error) {
	var t domain.Table
	var name sql.NullString
	var occupiedAt sql.NullTime
	err := row.Scan(&t.ID, &t.Code, &t.Status, &name, &occupiedAt, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	t.CurrentCustomerName = stringPtr(name)
	t.OccupiedAt = timePtr(occupiedAt)
	return t, err
}

const courtColumns = `id, name, description, status, price_per_hour_cents, is_visible, created_at, updated_at`

func scanCourt(row rowScanner) (domain.Court, error) {
	var c domain.Court
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.PricePerHourCents, &c.IsVisible, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const transactionColumns = `id, invoice_number, type, table_id, customer_name, payment_method, total_cents, paid_cents,
	change_cents, deposit_cents, status, notes, created_by, created_at, updated_at`

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var tx domain.Transaction
	var tableID sql.NullString
	err := row.Scan(&tx.ID, &tx.InvoiceNumber, &tx.Type, &tableID, &tx.CustomerName, &tx.PaymentMethod,
		&tx.TotalCents, &tx.PaidCents, &tx.ChangeCents, &tx.DepositCents, &tx.Status, &tx.Notes,
		&tx.CreatedBy, &tx.CreatedAt, &tx.UpdatedAt)
	tx.TableID = stringPtr(tableID)
	return tx, err
}

const bookingColumns = `id, booking_number, court_id, customer_name, customer_phone, COALESCE(customer_email, ''),
	start_time, end_time, duration_hours, price_per_hour_cents, total_cents, paid_cents, payment_status,
	booking_status, transaction_id, notes, created_by, created_at, updated_at`

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var txID sql.NullString
	err := row.Scan(&b.ID, &b.BookingNumber, &b.CourtID, &b.CustomerName, &b.CustomerPhone, &b.CustomerEmail,
		&b.StartTime, &b.EndTime, &b.DurationHours, &b.PricePerHourCents, &b.TotalCents, &b.PaidCents,
		&b.PaymentStatus, &b.BookingStatus, &txID, &b.Notes, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	b.TransactionID = stringPtr(txID)
	return b, err
}

const orderColumns = `id, order_number, table_id, table_code, customer_name, status, total_cents, notes,
	approved_by, approved_at, rejected_reason, transaction_id, created_at, updated_at`

func scanOrderRequest(row rowScanner) (domain.OrderRequest, error) {
	var o domain.OrderRequest
	var approvedBy, rejectedReason, txID sql.NullString
	var approvedAt sql.NullTime
	err := row.Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.TableCode, &o.CustomerName, &o.Status, &o.TotalCents,
		&o.Notes, &approvedBy, &approvedAt, &rejectedReason, &txID, &o.CreatedAt, &o.UpdatedAt)
	o.ApprovedBy = stringPtr(approvedBy)
	o.ApprovedAt = timePtr(approvedAt)
	o.RejectedReason = stringPtr(rejectedReason)
	o.TransactionID = stringPtr(txID)
	return o, err
}

const inventoryColumns = `id, name, unit, quantity, is_active, created_at, updated_at`

func scanInventoryItem(row rowScanner) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(&item.ID, &item.Name, &item.Unit, &item.Quantity, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func loadTransactionItems(ctx context.Context, q querier, ids []string) (map[string][]domain.TransactionItem, error) {
	out := make(map[string][]domain.TransactionItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, transaction_id, item_type, item_id, name, quantity, unit_price_cents, subtotal_cents, notes
		FROM transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.TransactionItem
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.ItemType, &item.ItemID, &item.Name,
			&item.Quantity, &item.UnitPriceCents, &item.SubtotalCents, &item.Notes); err != nil {
			return nil, err
		}
		out[item.TransactionID] = append(out[item.TransactionID], item)
	}
	return out, rows.Err()
}

func loadOrderItems(ctx context.Context, q querier, ids []string) (map[string][]domain.OrderRequestItem, error) {
	out := make(map[string][]domain.OrderRequestItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_request_id, menu_id, name, quantity, unit_price_cents, subtotal_cents, notes
		FROM order_request_items
		WHERE order_request_id = ANY($1)
		ORDER BY order_request_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderRequestItem
		if err := rows.Scan(&item.ID, &item.OrderRequestID, &item.MenuID, &item.Name, &item.Quantity,
			&item.UnitPriceCents, &item.SubtotalCents, &item.Notes); err != nil {
			return nil, err
		}
		out[item.OrderRequestID] = append(out[item.OrderRequestID], item)
	}
	return out, rows.Err()
}

// mapError translates driver errors into the store taxonomy. Errors that are
// already domain errors pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	case "23P01":
		return fmt.Errorf("%w: %s", store.ErrBookingOverlap, pgErr.Detail)
	case "23514":
		return fmt.Errorf("%w: check %s violated", store.ErrConflict, pgErr.ConstraintName)
	case "40001", "40P01", "55P03":
		return fmt.Errorf("%w: concurrent update, retry the request", store.ErrConflict)
	}
	return err
}

func isOverlap(err error) bool {
	return errors.Is(err, store.ErrBookingOverlap)
}

func notFound(err error, what string, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, what, id)
	}
	return err
}

func requireAffected(res sql.Result, what string, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %s", store.ErrNotFound, what, id)
	}
	return nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time.UTC()
	return &out
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullString(val *string) any {
	if val == nil {
		return nil
	}
	return *val
}

func nullInt64(val *int64) any {
	if val == nil {
		return nil
	}
	return *val
}

func nullInt(val *int) any {
	if val == nil {
		return nil
	}
	return *val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
