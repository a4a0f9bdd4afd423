package memory

import (
	"context"
	"fmt"
	"time"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
)

// memTx mutates the live state directly; Store.Atomic already holds the
// write lock and keeps a snapshot for rollback.
type memTx struct {
	st *state
}

func (t *memTx) LockProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := t.st.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
	}
	return &p, nil
}

func (t *memTx) SetProductStock(_ context.Context, id string, stock int) error {
	p, ok := t.st.products[id]
	if !ok {
		return store.ErrNotFound
	}
	if stock < 0 {
		return store.ErrInsufficientStock
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	t.st.products[id] = p
	return nil
}

func (t *memTx) LockMenu(_ context.Context, id string) (*domain.Menu, error) {
	m, ok := t.st.menus[id]
	if !ok {
		return nil, fmt.Errorf("%w: menu %s", store.ErrNotFound, id)
	}
	return &m, nil
}

func (t *memTx) SetMenuStock(_ context.Context, id string, stock int) error {
	m, ok := t.st.menus[id]
	if !ok {
		return store.ErrNotFound
	}
	if stock < 0 {
		return store.ErrInsufficientStock
	}
	next := stock
	m.Stock = &next
	m.UpdatedAt = time.Now().UTC()
	t.st.menus[id] = m
	return nil
}

func (t *memTx) LockTable(_ context.Context, id string) (*domain.Table, error) {
	table, ok := t.st.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: table %s", store.ErrNotFound, id)
	}
	return &table, nil
}

func (t *memTx) LockTableByCode(_ context.Context, code string) (*domain.Table, error) {
	table, err := t.st.tableByCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: table %s", err, code)
	}
	return table, nil
}

func (t *memTx) SaveTableOccupancy(_ context.Context, table domain.Table) error {
	existing, ok := t.st.tables[table.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Status = table.Status
	existing.CurrentCustomerName = table.CurrentCustomerName
	existing.OccupiedAt = table.OccupiedAt
	existing.UpdatedAt = table.UpdatedAt
	t.st.tables[table.ID] = existing
	return nil
}

func (t *memTx) LockCourt(_ context.Context, id string) (*domain.Court, error) {
	c, ok := t.st.courts[id]
	if !ok {
		return nil, fmt.Errorf("%w: court %s", store.ErrNotFound, id)
	}
	return &c, nil
}

func (t *memTx) NextSequence(_ context.Context, scope string, day time.Time) (int, error) {
	key := scope + ":" + day.Format("20060102")
	t.st.sequences[key]++
	return t.st.sequences[key], nil
}

func (t *memTx) InsertTransaction(_ context.Context, tx domain.Transaction) error {
	if _, exists := t.st.transactions[tx.ID]; exists {
		return store.ErrDuplicate
	}
	if _, exists := t.st.invoiceIndex[tx.InvoiceNumber]; exists {
		return fmt.Errorf("%w: invoice %s", store.ErrDuplicate, tx.InvoiceNumber)
	}
	t.st.transactions[tx.ID] = cloneTransaction(tx)
	t.st.invoiceIndex[tx.InvoiceNumber] = tx.ID
	return nil
}

func (t *memTx) LockTransaction(_ context.Context, id string) (*domain.Transaction, error) {
	tx, ok := t.st.transactions[id]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, id)
	}
	out := cloneTransaction(tx)
	return &out, nil
}

func (t *memTx) UpdateTransactionStatus(_ context.Context, tx domain.Transaction) error {
	existing, ok := t.st.transactions[tx.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Status = tx.Status
	existing.PaymentMethod = tx.PaymentMethod
	existing.PaidCents = tx.PaidCents
	existing.ChangeCents = tx.ChangeCents
	existing.UpdatedAt = tx.UpdatedAt
	t.st.transactions[tx.ID] = existing
	return nil
}

func (t *memTx) InsertSellRecords(_ context.Context, records []domain.ProductSellRecord) error {
	t.st.sellRecords = append(t.st.sellRecords, records...)
	return nil
}

func (t *memTx) InsertRentRecords(_ context.Context, records []domain.ProductRentRecord) error {
	t.st.rentRecords = append(t.st.rentRecords, records...)
	return nil
}

func (t *memTx) SetSellRecordsStatus(_ context.Context, transactionID string, status domain.RecordStatus) error {
	for i := range t.st.sellRecords {
		if t.st.sellRecords[i].TransactionID == transactionID {
			t.st.sellRecords[i].Status = status
		}
	}
	return nil
}

func (t *memTx) ActiveRentRecords(_ context.Context, transactionID string) ([]domain.ProductRentRecord, error) {
	out := make([]domain.ProductRentRecord, 0, 2)
	for _, r := range t.st.rentRecords {
		if r.TransactionID == transactionID && r.Status == domain.RecordActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) SetRentRecordsStatus(_ context.Context, transactionID string, status domain.RecordStatus, returnedAt *time.Time) error {
	for i := range t.st.rentRecords {
		r := &t.st.rentRecords[i]
		if r.TransactionID != transactionID || r.Status != domain.RecordActive {
			continue
		}
		r.Status = status
		r.ReturnedAt = returnedAt
	}
	return nil
}

func (t *memTx) FindOverlappingBookings(_ context.Context, courtID string, start time.Time, end time.Time) ([]domain.Booking, error) {
	out := make([]domain.Booking, 0, 2)
	for _, b := range t.st.bookings {
		if b.CourtID != courtID || b.BookingStatus == domain.BookingCancelled {
			continue
		}
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

// InsertBooking re-checks overlap so the store enforces the same invariant as
// the postgres exclusion constraint.
func (t *memTx) InsertBooking(ctx context.Context, booking domain.Booking) error {
	if _, exists := t.st.bookings[booking.ID]; exists {
		return store.ErrDuplicate
	}
	if booking.BookingStatus != domain.BookingCancelled {
		clashes, _ := t.FindOverlappingBookings(ctx, booking.CourtID, booking.StartTime, booking.EndTime)
		if len(clashes) > 0 {
			return &store.OverlapError{
				CourtID:   booking.CourtID,
				BookingID: clashes[0].ID,
				StartTime: clashes[0].StartTime,
				EndTime:   clashes[0].EndTime,
			}
		}
	}
	t.st.bookings[booking.ID] = booking
	return nil
}

func (t *memTx) LockBooking(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := t.st.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %s", store.ErrNotFound, id)
	}
	return &b, nil
}

func (t *memTx) LockBookingByTransaction(_ context.Context, transactionID string) (*domain.Booking, error) {
	for _, b := range t.st.bookings {
		if b.TransactionID != nil && *b.TransactionID == transactionID {
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) UpdateBookingStatus(_ context.Context, booking domain.Booking) error {
	existing, ok := t.st.bookings[booking.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.BookingStatus = booking.BookingStatus
	existing.PaymentStatus = booking.PaymentStatus
	existing.UpdatedAt = booking.UpdatedAt
	t.st.bookings[booking.ID] = existing
	return nil
}

func (t *memTx) InsertOrderRequest(_ context.Context, order domain.OrderRequest) error {
	if _, exists := t.st.orderIndex[order.OrderNumber]; exists {
		return fmt.Errorf("%w: order number %s", store.ErrDuplicate, order.OrderNumber)
	}
	t.st.orderRequests[order.ID] = cloneOrderRequest(order)
	t.st.orderIndex[order.OrderNumber] = order.ID
	return nil
}

func (t *memTx) LockOrderRequest(_ context.Context, id string) (*domain.OrderRequest, error) {
	o, ok := t.st.orderRequests[id]
	if !ok {
		return nil, fmt.Errorf("%w: order request %s", store.ErrNotFound, id)
	}
	out := cloneOrderRequest(o)
	return &out, nil
}

func (t *memTx) UpdateOrderRequest(_ context.Context, order domain.OrderRequest) error {
	existing, ok := t.st.orderRequests[order.ID]
	if !ok {
		return store.ErrNotFound
	}
	existing.Status = order.Status
	existing.ApprovedBy = order.ApprovedBy
	existing.ApprovedAt = order.ApprovedAt
	existing.RejectedReason = order.RejectedReason
	existing.TransactionID = order.TransactionID
	existing.UpdatedAt = order.UpdatedAt
	t.st.orderRequests[order.ID] = existing
	return nil
}

func (t *memTx) InsertInventoryItem(_ context.Context, item domain.InventoryItem) error {
	if _, exists := t.st.inventory[item.ID]; exists {
		return store.ErrDuplicate
	}
	t.st.inventory[item.ID] = item
	return nil
}

func (t *memTx) LockInventoryItem(_ context.Context, id string) (*domain.InventoryItem, error) {
	item, ok := t.st.inventory[id]
	if !ok {
		return nil, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, id)
	}
	return &item, nil
}

func (t *memTx) SetInventoryQuantity(_ context.Context, id string, quantity int, at time.Time) error {
	item, ok := t.st.inventory[id]
	if !ok {
		return store.ErrNotFound
	}
	if quantity < 0 {
		return store.ErrConflict
	}
	item.Quantity = quantity
	item.UpdatedAt = at
	t.st.inventory[id] = item
	return nil
}

func (t *memTx) InsertInventoryAdjustment(_ context.Context, adj domain.InventoryAdjustment) error {
	t.st.adjustments = append(t.st.adjustments, adj)
	return nil
}
