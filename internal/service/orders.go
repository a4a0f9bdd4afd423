package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/xid"
)

const (
	orderSuffixLength  = 4
	orderNumberRetries = 3
)

// CreateOrderRequest accepts a guest order from a table. Prices come from the
// current catalog; the client only names menus and quantities.
func (s *Service) CreateOrderRequest(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderRequest, error) {
	req.TableCode = strings.TrimSpace(req.TableCode)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.TableCode == "" {
		return domain.OrderRequest{}, validationf("table_code is required")
	}
	if req.CustomerName == "" {
		return domain.OrderRequest{}, validationf("customer_name is required")
	}
	if len(req.Items) == 0 {
		return domain.OrderRequest{}, validationf("items are required")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.MenuID) == "" {
			return domain.OrderRequest{}, validationf("item %d: menu_id is required", i)
		}
		if item.Quantity < 1 || item.Quantity > maxLineQuantity {
			return domain.OrderRequest{}, validationf("item %d: quantity must be between 1 and %d", i, maxLineQuantity)
		}
	}

	var created domain.OrderRequest
	var err error
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		created, err = s.insertOrderRequest(ctx, req)
		if !errors.Is(err, store.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return domain.OrderRequest{}, err
	}

	s.publish(ctx, domain.NotifyOrderCreated, "New order request",
		fmt.Sprintf("%s table %s (%s)", created.OrderNumber, created.TableCode, created.CustomerName),
		orderPayload(created))
	return created, nil
}

func (s *Service) insertOrderRequest(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderRequest, error) {
	now := s.now()
	var created domain.OrderRequest

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		table, err := tx.LockTableByCode(ctx, req.TableCode)
		if err != nil {
			return err
		}
		if !table.IsActive {
			return fmt.Errorf("%w: table %s", store.ErrInactive, table.Code)
		}

		orderID := xid.New("ord")
		items := make([]domain.OrderRequestItem, 0, len(req.Items))
		var total int64
		for _, in := range req.Items {
			m, err := tx.LockMenu(ctx, strings.TrimSpace(in.MenuID))
			if err != nil {
				return err
			}
			if !m.IsActive {
				return fmt.Errorf("%w: menu %s", store.ErrInactive, m.Name)
			}
			subtotal, err := lineSubtotal(m.PriceCents, in.Quantity)
			if err != nil {
				return err
			}
			if total, err = addCents(total, subtotal); err != nil {
				return err
			}
			items = append(items, domain.OrderRequestItem{
				ID:             xid.New("ori"),
				OrderRequestID: orderID,
				MenuID:         m.ID,
				Name:           m.Name,
				Quantity:       in.Quantity,
				UnitPriceCents: m.PriceCents,
				SubtotalCents:  subtotal,
				Notes:          strings.TrimSpace(in.Notes),
			})
		}

		created = domain.OrderRequest{
			ID:           orderID,
			OrderNumber:  fmt.Sprintf("ORD-%s-%s", s.businessDay(now).Format("20060102"), xid.Suffix(orderSuffixLength)),
			TableID:      table.ID,
			TableCode:    table.Code,
			CustomerName: req.CustomerName,
			Status:       domain.OrderPending,
			TotalCents:   total,
			Notes:        strings.TrimSpace(req.Notes),
			CreatedAt:    now,
			UpdatedAt:    now,
			Items:        items,
		}
		return tx.InsertOrderRequest(ctx, created)
	})
	return created, err
}

// UpdateOrderStatus moves an order request through its state machine. SERVED
// is the only step with side effects: it takes menu stock and opens a PENDING
// POS transaction for the table.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, req domain.UpdateOrderStatusRequest) (domain.OrderRequest, error) {
	if !req.Status.Valid() {
		return domain.OrderRequest{}, validationf("unknown order status %q", req.Status)
	}

	now := s.now()
	staff := actorName(ctx)
	var updated domain.OrderRequest

	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		o, err := tx.LockOrderRequest(ctx, id)
		if err != nil {
			return err
		}
		if !o.Status.CanTransition(req.Status) {
			return &store.TransitionError{Entity: "order request", From: string(o.Status), To: string(req.Status)}
		}

		switch req.Status {
		case domain.OrderApproved:
			approvedAt := now
			o.ApprovedBy = &staff
			o.ApprovedAt = &approvedAt
		case domain.OrderRejected:
			if reason := strings.TrimSpace(req.RejectedReason); reason != "" {
				o.RejectedReason = &reason
			}
		case domain.OrderServed:
			txID, err := s.materializeOrder(ctx, tx, o, staff)
			if err != nil {
				return err
			}
			o.TransactionID = &txID
		}

		o.Status = req.Status
		o.UpdatedAt = now
		if err := tx.UpdateOrderRequest(ctx, *o); err != nil {
			return err
		}
		updated = *o
		return nil
	})
	if err != nil {
		return domain.OrderRequest{}, err
	}

	if updated.Status == domain.OrderServed {
		s.publish(ctx, domain.NotifyOrderServed, "Order served",
			fmt.Sprintf("%s served to table %s", updated.OrderNumber, updated.TableCode), orderPayload(updated))
	} else {
		s.publish(ctx, domain.NotifyOrderUpdated, "Order updated",
			fmt.Sprintf("%s is now %s", updated.OrderNumber, updated.Status), orderPayload(updated))
	}
	s.logAudit(ctx, "order_request_status", "order_request", updated.ID,
		fmt.Sprintf("number=%s,status=%s", updated.OrderNumber, updated.Status))
	return updated, nil
}

func (s *Service) materializeOrder(ctx context.Context, tx store.Tx, o *domain.OrderRequest, staff string) (string, error) {
	now := s.now()
	txID := xid.New("trx")
	items := make([]domain.TransactionItem, 0, len(o.Items))
	var total int64

	for _, item := range o.Items {
		m, err := tx.LockMenu(ctx, item.MenuID)
		if err != nil {
			return "", err
		}
		if m.TracksStock() {
			if *m.Stock < item.Quantity {
				return "", &store.StockError{ItemType: string(domain.ItemMenu), ItemID: m.ID, Name: m.Name, Requested: item.Quantity, Available: *m.Stock}
			}
			if err := tx.SetMenuStock(ctx, m.ID, *m.Stock-item.Quantity); err != nil {
				return "", err
			}
		}
		if total, err = addCents(total, item.SubtotalCents); err != nil {
			return "", err
		}
		items = append(items, domain.TransactionItem{
			ID:             xid.New("txi"),
			TransactionID:  txID,
			ItemType:       domain.ItemMenu,
			ItemID:         item.MenuID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			SubtotalCents:  item.SubtotalCents,
			Notes:          item.Notes,
		})
	}

	invoice, err := s.nextInvoiceNumber(ctx, tx, now)
	if err != nil {
		return "", err
	}

	tableID := o.TableID
	t := domain.Transaction{
		ID:            txID,
		InvoiceNumber: invoice,
		Type:          domain.TransactionPOS,
		TableID:       &tableID,
		CustomerName:  o.CustomerName,
		TotalCents:    total,
		Status:        domain.TransactionPending,
		Notes:         "order " + o.OrderNumber,
		CreatedBy:     staff,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         items,
	}
	if err := tx.InsertTransaction(ctx, t); err != nil {
		return "", err
	}
	return txID, nil
}

func (s *Service) GetOrderRequest(ctx context.Context, id string) (domain.OrderRequest, error) {
	o, err := s.repo.GetOrderRequest(ctx, id)
	if err != nil {
		return domain.OrderRequest{}, err
	}
	return *o, nil
}

func (s *Service) ListOrderRequests(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.OrderRequest, error) {
	if status != "" && !status.Valid() {
		return nil, validationf("unknown order status %q", status)
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListOrderRequests(ctx, status, limit)
}

type orderEvent struct {
	OrderRequestID string             `json:"order_request_id"`
	OrderNumber    string             `json:"order_number"`
	TableCode      string             `json:"table_code"`
	CustomerName   string             `json:"customer_name"`
	Status         domain.OrderStatus `json:"status"`
	TotalCents     int64              `json:"total_cents"`
	TransactionID  *string            `json:"transaction_id,omitempty"`
}

func orderPayload(o domain.OrderRequest) orderEvent {
	return orderEvent{
		OrderRequestID: o.ID,
		OrderNumber:    o.OrderNumber,
		TableCode:      o.TableCode,
		CustomerName:   o.CustomerName,
		Status:         o.Status,
		TotalCents:     o.TotalCents,
		TransactionID:  o.TransactionID,
	}
}
