package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) LockProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(t.tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

func (t *pgTx) SetProductStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return store.ErrInsufficientStock
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "product", id)
}

func (t *pgTx) LockMenu(ctx context.Context, id string) (*domain.Menu, error) {
	m, err := scanMenu(t.tx.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "menu", id)
	}
	return &m, nil
}

func (t *pgTx) SetMenuStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return store.ErrInsufficientStock
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE menus SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "menu", id)
}

func (t *pgTx) LockTable(ctx context.Context, id string) (*domain.Table, error) {
	table, err := scanTable(t.tx.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM dining_tables WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "table", id)
	}
	return &table, nil
}

func (t *pgTx) LockTableByCode(ctx context.Context, code string) (*domain.Table, error) {
	table, err := scanTable(t.tx.QueryRowContext(ctx, `
		SELECT `+tableColumns+` FROM dining_tables WHERE upper(code) = upper($1) FOR UPDATE
	`, code))
	if err != nil {
		return nil, notFound(err, "table", code)
	}
	return &table, nil
}

func (t *pgTx) SaveTableOccupancy(ctx context.Context, table domain.Table) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE dining_tables
		SET status = $2, current_customer_name = $3, occupied_at = $4, updated_at = $5
		WHERE id = $1
	`, table.ID, table.Status, nullString(table.CurrentCustomerName), nullTime(table.OccupiedAt), table.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "table", table.ID)
}

func (t *pgTx) LockCourt(ctx context.Context, id string) (*domain.Court, error) {
	c, err := scanCourt(t.tx.QueryRowContext(ctx, `SELECT `+courtColumns+` FROM courts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "court", id)
	}
	return &c, nil
}

// NextSequence relies on the upsert row lock: concurrent callers for the same
// scope and day serialize on the number_sequences row.
func (t *pgTx) NextSequence(ctx context.Context, scope string, day time.Time) (int, error) {
	var value int
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO number_sequences (scope, day, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, day) DO UPDATE SET value = number_sequences.value + 1
		RETURNING value
	`, scope, dateOnly(day)).Scan(&value)
	if err != nil {
		return 0, mapError(err)
	}
	return value, nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, tx domain.Transaction) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions (
			id, invoice_number, type, table_id, customer_name, payment_method, total_cents, paid_cents,
			change_cents, deposit_cents, status, notes, created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, tx.ID, tx.InvoiceNumber, tx.Type, nullString(tx.TableID), tx.CustomerName, tx.PaymentMethod,
		tx.TotalCents, tx.PaidCents, tx.ChangeCents, tx.DepositCents, tx.Status, tx.Notes, tx.CreatedBy,
		tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if len(tx.Items) == 0 {
		return nil
	}

	const cols = 10
	var b strings.Builder
	b.WriteString(`INSERT INTO transaction_items (id, transaction_id, item_type, item_id, name, quantity, unit_price_cents, subtotal_cents, notes, position) VALUES `)
	args := make([]any, 0, len(tx.Items)*cols)
	for i, item := range tx.Items {
		if i > 0 {
			b.WriteString(",")
		}
		writePlaceholders(&b, i*cols, cols)
		args = append(args, item.ID, tx.ID, item.ItemType, item.ItemID, item.Name, item.Quantity,
			item.UnitPriceCents, item.SubtotalCents, item.Notes, i)
	}
	if _, err := t.tx.ExecContext(ctx, b.String(), args...); err != nil {
		return mapError(err)
	}
	return nil
}

func (t *pgTx) LockTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return getTransaction(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateTransactionStatus(ctx context.Context, tx domain.Transaction) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, payment_method = $3, paid_cents = $4, change_cents = $5, updated_at = $6
		WHERE id = $1
	`, tx.ID, tx.Status, tx.PaymentMethod, tx.PaidCents, tx.ChangeCents, tx.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "transaction", tx.ID)
}

func (t *pgTx) InsertSellRecords(ctx context.Context, records []domain.ProductSellRecord) error {
	for _, r := range records {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO product_sell_records (id, transaction_id, product_id, quantity, unit_price_cents, subtotal_cents, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, r.ID, r.TransactionID, r.ProductID, r.Quantity, r.UnitPriceCents, r.SubtotalCents, r.Status, r.CreatedAt)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (t *pgTx) InsertRentRecords(ctx context.Context, records []domain.ProductRentRecord) error {
	for _, r := range records {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO product_rent_records (
				id, transaction_id, product_id, quantity, unit_price_cents, subtotal_cents, status,
				expected_return_at, returned_at, notes, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, r.ID, r.TransactionID, r.ProductID, r.Quantity, r.UnitPriceCents, r.SubtotalCents, r.Status,
			nullTime(r.ExpectedReturnAt), nullTime(r.ReturnedAt), r.Notes, r.CreatedAt)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (t *pgTx) SetSellRecordsStatus(ctx context.Context, transactionID string, status domain.RecordStatus) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE product_sell_records SET status = $2 WHERE transaction_id = $1
	`, transactionID, status)
	return mapError(err)
}

// ActiveRentRecords relies on the caller holding the parent transaction row
// lock; every rent record change goes through that lock.
func (t *pgTx) ActiveRentRecords(ctx context.Context, transactionID string) ([]domain.ProductRentRecord, error) {
	records, err := queryRentRecords(ctx, t.tx, `WHERE transaction_id = $1 AND status = $2`, transactionID, string(domain.RecordActive))
	return records, mapError(err)
}

func (t *pgTx) SetRentRecordsStatus(ctx context.Context, transactionID string, status domain.RecordStatus, returnedAt *time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE product_rent_records
		SET status = $2, returned_at = $3
		WHERE transaction_id = $1 AND status = 'ACTIVE'
	`, transactionID, status, nullTime(returnedAt))
	return mapError(err)
}

func (t *pgTx) FindOverlappingBookings(ctx context.Context, courtID string, start time.Time, end time.Time) ([]domain.Booking, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE court_id = $1
		  AND booking_status <> 'CANCELLED'
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
		FOR UPDATE
	`, courtID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Booking, 0, 2)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *pgTx) InsertBooking(ctx context.Context, b domain.Booking) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, booking_number, court_id, customer_name, customer_phone, customer_email, start_time, end_time,
			duration_hours, price_per_hour_cents, total_cents, paid_cents, payment_status, booking_status,
			transaction_id, notes, created_by, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, b.ID, b.BookingNumber, b.CourtID, b.CustomerName, b.CustomerPhone, nullIfEmpty(b.CustomerEmail),
		b.StartTime, b.EndTime, b.DurationHours, b.PricePerHourCents, b.TotalCents, b.PaidCents,
		b.PaymentStatus, b.BookingStatus, nullString(b.TransactionID), b.Notes, b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		err = mapError(err)
		if isOverlap(err) {
			return &store.OverlapError{CourtID: b.CourtID, StartTime: b.StartTime, EndTime: b.EndTime}
		}
		return err
	}
	return nil
}

func (t *pgTx) LockBooking(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(t.tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (t *pgTx) LockBookingByTransaction(ctx context.Context, transactionID string) (*domain.Booking, error) {
	b, err := scanBooking(t.tx.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE transaction_id = $1 FOR UPDATE
	`, transactionID))
	if err != nil {
		return nil, notFound(err, "booking for transaction", transactionID)
	}
	return &b, nil
}

func (t *pgTx) UpdateBookingStatus(ctx context.Context, b domain.Booking) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE bookings SET booking_status = $2, payment_status = $3, updated_at = $4 WHERE id = $1
	`, b.ID, b.BookingStatus, b.PaymentStatus, b.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "booking", b.ID)
}

func (t *pgTx) InsertOrderRequest(ctx context.Context, o domain.OrderRequest) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_requests (
			id, order_number, table_id, table_code, customer_name, status, total_cents, notes,
			approved_by, approved_at, rejected_reason, transaction_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, o.ID, o.OrderNumber, o.TableID, o.TableCode, o.CustomerName, o.Status, o.TotalCents, o.Notes,
		nullString(o.ApprovedBy), nullTime(o.ApprovedAt), nullString(o.RejectedReason), nullString(o.TransactionID),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if len(o.Items) == 0 {
		return nil
	}

	const cols = 9
	var b strings.Builder
	b.WriteString(`INSERT INTO order_request_items (id, order_request_id, menu_id, name, quantity, unit_price_cents, subtotal_cents, notes, position) VALUES `)
	args := make([]any, 0, len(o.Items)*cols)
	for i, item := range o.Items {
		if i > 0 {
			b.WriteString(",")
		}
		writePlaceholders(&b, i*cols, cols)
		args = append(args, item.ID, o.ID, item.MenuID, item.Name, item.Quantity, item.UnitPriceCents,
			item.SubtotalCents, item.Notes, i)
	}
	if _, err := t.tx.ExecContext(ctx, b.String(), args...); err != nil {
		return mapError(err)
	}
	return nil
}

func (t *pgTx) LockOrderRequest(ctx context.Context, id string) (*domain.OrderRequest, error) {
	return getOrderRequest(ctx, t.tx, id, true)
}

func (t *pgTx) UpdateOrderRequest(ctx context.Context, o domain.OrderRequest) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE order_requests
		SET status = $2, approved_by = $3, approved_at = $4, rejected_reason = $5, transaction_id = $6, updated_at = $7
		WHERE id = $1
	`, o.ID, o.Status, nullString(o.ApprovedBy), nullTime(o.ApprovedAt), nullString(o.RejectedReason),
		nullString(o.TransactionID), o.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "order request", o.ID)
}

func (t *pgTx) InsertInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO inventory_items (id, name, unit, quantity, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, item.Name, item.Unit, item.Quantity, item.IsActive, item.CreatedAt, item.UpdatedAt)
	return mapError(err)
}

func (t *pgTx) LockInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := scanInventoryItem(t.tx.QueryRowContext(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "inventory item", id)
	}
	return &item, nil
}

func (t *pgTx) SetInventoryQuantity(ctx context.Context, id string, quantity int, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE inventory_items SET quantity = $2, updated_at = $3 WHERE id = $1
	`, id, quantity, at)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res, "inventory item", id)
}

func (t *pgTx) InsertInventoryAdjustment(ctx context.Context, a domain.InventoryAdjustment) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO inventory_adjustments (id, inventory_id, change_type, quantity_before, quantity_after, change_amount, reason, actor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, a.ID, a.InventoryID, a.ChangeType, a.QuantityBefore, a.QuantityAfter, a.ChangeAmount, a.Reason, a.Actor, a.CreatedAt)
	return mapError(err)
}

func writePlaceholders(b *strings.Builder, offset int, n int) {
	b.WriteString("(")
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(b, "$%d", offset+i)
	}
	b.WriteString(")")
}
