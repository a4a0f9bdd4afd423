package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/xid"
)

const defaultCustomerName = "Guest"

// CreateTransaction runs POS and RENTAL checkout. Stock checks, decrements,
// numbering, records and table occupancy happen in one atomic unit.
func (s *Service) CreateTransaction(ctx context.Context, req domain.CreateTransactionRequest) (domain.Transaction, error) {
	if req.Type == "" {
		req.Type = domain.TransactionPOS
	}
	if req.Type != domain.TransactionPOS && req.Type != domain.TransactionRental {
		return domain.Transaction{}, validationf("type must be POS or RENTAL")
	}
	if len(req.Items) == 0 {
		return domain.Transaction{}, validationf("items are required")
	}
	for i, item := range req.Items {
		if item.ItemType != domain.ItemProduct && item.ItemType != domain.ItemMenu {
			return domain.Transaction{}, validationf("item %d: item_type must be PRODUCT or MENU", i)
		}
		if strings.TrimSpace(item.ItemID) == "" {
			return domain.Transaction{}, validationf("item %d: item_id is required", i)
		}
		if item.Quantity < 1 || item.Quantity > maxLineQuantity {
			return domain.Transaction{}, validationf("item %d: quantity must be between 1 and %d", i, maxLineQuantity)
		}
	}
	if req.PaidCents < 0 || req.DepositCents < 0 {
		return domain.Transaction{}, validationf("paid and deposit must not be negative")
	}

	now := s.now()
	createdBy := actorName(ctx)
	var created domain.Transaction

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		var table *domain.Table
		if req.TableID != nil && strings.TrimSpace(*req.TableID) != "" {
			t, err := tx.LockTable(ctx, strings.TrimSpace(*req.TableID))
			if err != nil {
				return err
			}
			if !t.IsActive {
				return fmt.Errorf("%w: table %s", store.ErrInactive, t.Code)
			}
			table = t
		}

		txID := xid.New("trx")
		items := make([]domain.TransactionItem, 0, len(req.Items))
		sells := make([]domain.ProductSellRecord, 0, len(req.Items))
		rents := make([]domain.ProductRentRecord, 0, len(req.Items))
		var total int64

		for _, in := range req.Items {
			var name string
			var unitPrice int64

			switch in.ItemType {
			case domain.ItemProduct:
				p, err := tx.LockProduct(ctx, in.ItemID)
				if err != nil {
					return err
				}
				if !p.IsActive {
					return fmt.Errorf("%w: product %s", store.ErrInactive, p.Name)
				}
				if p.Stock < in.Quantity {
					return &store.StockError{ItemType: string(domain.ItemProduct), ItemID: p.ID, Name: p.Name, Requested: in.Quantity, Available: p.Stock}
				}
				if err := tx.SetProductStock(ctx, p.ID, p.Stock-in.Quantity); err != nil {
					return err
				}
				name, unitPrice = p.Name, p.PriceCents

				subtotal, err := lineSubtotal(unitPrice, in.Quantity)
				if err != nil {
					return err
				}
				if p.Type == domain.ProductTypeRent {
					rents = append(rents, domain.ProductRentRecord{
						ID:               xid.New("rent"),
						TransactionID:    txID,
						ProductID:        p.ID,
						Quantity:         in.Quantity,
						UnitPriceCents:   unitPrice,
						SubtotalCents:    subtotal,
						Status:           domain.RecordActive,
						ExpectedReturnAt: in.ExpectedReturnAt,
						Notes:            strings.TrimSpace(in.Notes),
						CreatedAt:        now,
					})
				} else {
					sells = append(sells, domain.ProductSellRecord{
						ID:             xid.New("sell"),
						TransactionID:  txID,
						ProductID:      p.ID,
						Quantity:       in.Quantity,
						UnitPriceCents: unitPrice,
						SubtotalCents:  subtotal,
						Status:         domain.RecordActive,
						CreatedAt:      now,
					})
				}

			case domain.ItemMenu:
				m, err := tx.LockMenu(ctx, in.ItemID)
				if err != nil {
					return err
				}
				if !m.IsActive {
					return fmt.Errorf("%w: menu %s", store.ErrInactive, m.Name)
				}
				if m.TracksStock() {
					if *m.Stock < in.Quantity {
						return &store.StockError{ItemType: string(domain.ItemMenu), ItemID: m.ID, Name: m.Name, Requested: in.Quantity, Available: *m.Stock}
					}
					if err := tx.SetMenuStock(ctx, m.ID, *m.Stock-in.Quantity); err != nil {
						return err
					}
				}
				name, unitPrice = m.Name, m.PriceCents
			}

			subtotal, err := lineSubtotal(unitPrice, in.Quantity)
			if err != nil {
				return err
			}
			if total, err = addCents(total, subtotal); err != nil {
				return err
			}
			items = append(items, domain.TransactionItem{
				ID:             xid.New("txi"),
				TransactionID:  txID,
				ItemType:       in.ItemType,
				ItemID:         in.ItemID,
				Name:           name,
				Quantity:       in.Quantity,
				UnitPriceCents: unitPrice,
				SubtotalCents:  subtotal,
				Notes:          strings.TrimSpace(in.Notes),
			})
		}

		change := req.PaidCents - total
		if change < 0 {
			return &store.PaymentError{TotalCents: total, PaidCents: req.PaidCents}
		}

		invoice, err := s.nextInvoiceNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		customer := strings.TrimSpace(req.CustomerName)
		created = domain.Transaction{
			ID:            txID,
			InvoiceNumber: invoice,
			Type:          req.Type,
			CustomerName:  customer,
			PaymentMethod: defaultString(req.PaymentMethod, "cash"),
			TotalCents:    total,
			PaidCents:     req.PaidCents,
			ChangeCents:   change,
			DepositCents:  req.DepositCents,
			Status:        domain.TransactionPaid,
			Notes:         strings.TrimSpace(req.Notes),
			CreatedBy:     createdBy,
			CreatedAt:     now,
			UpdatedAt:     now,
			Items:         items,
		}
		if table != nil {
			tableID := table.ID
			created.TableID = &tableID
		}

		if err := tx.InsertTransaction(ctx, created); err != nil {
			return err
		}
		if len(sells) > 0 {
			if err := tx.InsertSellRecords(ctx, sells); err != nil {
				return err
			}
		}
		if len(rents) > 0 {
			if err := tx.InsertRentRecords(ctx, rents); err != nil {
				return err
			}
		}

		if table != nil {
			table.Occupy(defaultString(customer, defaultCustomerName), now)
			if err := tx.SaveTableOccupancy(ctx, *table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.publish(ctx, domain.NotifyTransactionCreated, "New transaction",
		fmt.Sprintf("%s %s total %d", created.InvoiceNumber, created.Type, created.TotalCents),
		transactionPayload(created))
	s.logAudit(ctx, "transaction_create", "transaction", created.ID,
		fmt.Sprintf("invoice=%s,type=%s,total=%d,paid=%d", created.InvoiceNumber, created.Type, created.TotalCents, created.PaidCents))
	return created, nil
}

// CancelTransaction restores every unit the transaction took and releases its
// table. Cancelling a BOOKING transaction also cancels the booking.
func (s *Service) CancelTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Transaction{}, err
	}

	now := s.now()
	var cancelled domain.Transaction
	var booking *domain.Booking

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		t, err := tx.LockTransaction(ctx, id)
		if err != nil {
			return err
		}
		if !t.Status.CanTransition(domain.TransactionCancelled) {
			return &store.TransitionError{Entity: "transaction", From: string(t.Status), To: string(domain.TransactionCancelled)}
		}

		for _, item := range t.Items {
			if err := restoreItemStock(ctx, tx, item); err != nil {
				return err
			}
		}

		if err := tx.SetSellRecordsStatus(ctx, t.ID, domain.RecordCancelled); err != nil {
			return err
		}
		if err := tx.SetRentRecordsStatus(ctx, t.ID, domain.RecordCancelled, nil); err != nil {
			return err
		}

		t.Status = domain.TransactionCancelled
		t.UpdatedAt = now
		if err := tx.UpdateTransactionStatus(ctx, *t); err != nil {
			return err
		}

		if err := releaseLinkedTable(ctx, tx, t.TableID, now); err != nil {
			return err
		}

		if t.Type == domain.TransactionBooking {
			b, err := tx.LockBookingByTransaction(ctx, t.ID)
			if err != nil && !isNotFound(err) {
				return err
			}
			if b != nil && b.BookingStatus != domain.BookingCancelled {
				b.BookingStatus = domain.BookingCancelled
				b.UpdatedAt = now
				if err := tx.UpdateBookingStatus(ctx, *b); err != nil {
					return err
				}
				booking = b
			}
		}

		cancelled = *t
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if booking != nil {
		s.invalidateAvailability(ctx, *booking)
	}
	s.publish(ctx, domain.NotifyTransactionCancelled, "Transaction cancelled",
		fmt.Sprintf("%s cancelled", cancelled.InvoiceNumber), transactionPayload(cancelled))
	s.logAudit(ctx, "transaction_cancel", "transaction", cancelled.ID, "invoice="+cancelled.InvoiceNumber)
	return cancelled, nil
}

// CompleteTransaction returns rented equipment. SELL items inside a rental
// stay sold.
func (s *Service) CompleteTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Transaction{}, err
	}

	now := s.now()
	var completed domain.Transaction

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		t, err := tx.LockTransaction(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != domain.TransactionRental {
			return fmt.Errorf("%w: only RENTAL transactions can be completed", store.ErrInvalidState)
		}
		if !t.Status.CanTransition(domain.TransactionCompleted) {
			return &store.TransitionError{Entity: "transaction", From: string(t.Status), To: string(domain.TransactionCompleted)}
		}

		// The rent records fix what was rented at checkout; the catalog type
		// may have changed since.
		rents, err := tx.ActiveRentRecords(ctx, t.ID)
		if err != nil {
			return err
		}
		for _, r := range rents {
			p, err := tx.LockProduct(ctx, r.ProductID)
			if err != nil {
				return err
			}
			if err := tx.SetProductStock(ctx, p.ID, p.Stock+r.Quantity); err != nil {
				return err
			}
		}

		returnedAt := now
		if err := tx.SetRentRecordsStatus(ctx, t.ID, domain.RecordReturned, &returnedAt); err != nil {
			return err
		}

		t.Status = domain.TransactionCompleted
		t.UpdatedAt = now
		if err := tx.UpdateTransactionStatus(ctx, *t); err != nil {
			return err
		}
		if err := releaseLinkedTable(ctx, tx, t.TableID, now); err != nil {
			return err
		}

		completed = *t
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.publish(ctx, domain.NotifyRentalReturned, "Rental returned",
		fmt.Sprintf("%s returned", completed.InvoiceNumber), transactionPayload(completed))
	s.logAudit(ctx, "transaction_complete", "transaction", completed.ID, "invoice="+completed.InvoiceNumber)
	return completed, nil
}

// PayTransaction settles a PENDING transaction such as a served order or a
// partially paid booking.
func (s *Service) PayTransaction(ctx context.Context, id string, req domain.PayTransactionRequest) (domain.Transaction, error) {
	if req.PaidCents < 0 {
		return domain.Transaction{}, validationf("paid must not be negative")
	}

	now := s.now()
	var paid domain.Transaction
	var booking *domain.Booking

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		t, err := tx.LockTransaction(ctx, id)
		if err != nil {
			return err
		}
		if !t.Status.CanTransition(domain.TransactionPaid) {
			return &store.TransitionError{Entity: "transaction", From: string(t.Status), To: string(domain.TransactionPaid)}
		}

		change := req.PaidCents - t.TotalCents
		if change < 0 {
			return &store.PaymentError{TotalCents: t.TotalCents, PaidCents: req.PaidCents}
		}

		t.PaidCents = req.PaidCents
		t.ChangeCents = change
		t.PaymentMethod = defaultString(req.PaymentMethod, defaultString(t.PaymentMethod, "cash"))
		t.Status = domain.TransactionPaid
		t.UpdatedAt = now
		if err := tx.UpdateTransactionStatus(ctx, *t); err != nil {
			return err
		}

		if t.Type == domain.TransactionBooking {
			b, err := tx.LockBookingByTransaction(ctx, t.ID)
			if err != nil && !isNotFound(err) {
				return err
			}
			if b != nil && b.BookingStatus != domain.BookingCancelled {
				b.PaymentStatus = domain.PaymentPaid
				if b.BookingStatus == domain.BookingPending {
					b.BookingStatus = domain.BookingConfirmed
				}
				b.UpdatedAt = now
				if err := tx.UpdateBookingStatus(ctx, *b); err != nil {
					return err
				}
				booking = b
			}
		}

		paid = *t
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if booking != nil {
		s.invalidateAvailability(ctx, *booking)
	}
	s.publish(ctx, domain.NotifyTransactionPaid, "Transaction paid",
		fmt.Sprintf("%s paid %d", paid.InvoiceNumber, paid.PaidCents), transactionPayload(paid))
	s.logAudit(ctx, "transaction_pay", "transaction", paid.ID,
		fmt.Sprintf("invoice=%s,method=%s,paid=%d,change=%d", paid.InvoiceNumber, paid.PaymentMethod, paid.PaidCents, paid.ChangeCents))
	return paid, nil
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.TransactionDetail, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return domain.TransactionDetail{}, err
	}
	sells, err := s.repo.ListSellRecords(ctx, id)
	if err != nil {
		return domain.TransactionDetail{}, err
	}
	rents, err := s.repo.ListRentRecords(ctx, id)
	if err != nil {
		return domain.TransactionDetail{}, err
	}
	return domain.TransactionDetail{Transaction: *t, SellRecords: sells, RentRecords: rents}, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) ListActiveRentals(ctx context.Context) ([]domain.ProductRentRecord, error) {
	return s.repo.ListActiveRentRecords(ctx)
}

// restoreItemStock puts an item's quantity back on the shelf.
func restoreItemStock(ctx context.Context, tx store.Tx, item domain.TransactionItem) error {
	switch item.ItemType {
	case domain.ItemProduct:
		p, err := tx.LockProduct(ctx, item.ItemID)
		if err != nil {
			return err
		}
		return tx.SetProductStock(ctx, p.ID, p.Stock+item.Quantity)
	case domain.ItemMenu:
		m, err := tx.LockMenu(ctx, item.ItemID)
		if err != nil {
			return err
		}
		if !m.TracksStock() {
			return nil
		}
		return tx.SetMenuStock(ctx, m.ID, *m.Stock+item.Quantity)
	}
	return nil
}

func releaseLinkedTable(ctx context.Context, tx store.Tx, tableID *string, at time.Time) error {
	if tableID == nil || *tableID == "" {
		return nil
	}
	table, err := tx.LockTable(ctx, *tableID)
	if err != nil {
		return err
	}
	table.Release(at)
	return tx.SaveTableOccupancy(ctx, *table)
}

type transactionEvent struct {
	TransactionID string                   `json:"transaction_id"`
	InvoiceNumber string                   `json:"invoice_number"`
	Type          domain.TransactionType   `json:"type"`
	Status        domain.TransactionStatus `json:"status"`
	TotalCents    int64                    `json:"total_cents"`
	PaidCents     int64                    `json:"paid_cents"`
	TableID       *string                  `json:"table_id,omitempty"`
}

func transactionPayload(t domain.Transaction) transactionEvent {
	return transactionEvent{
		TransactionID: t.ID,
		InvoiceNumber: t.InvoiceNumber,
		Type:          t.Type,
		Status:        t.Status,
		TotalCents:    t.TotalCents,
		PaidCents:     t.PaidCents,
		TableID:       t.TableID,
	}
}
