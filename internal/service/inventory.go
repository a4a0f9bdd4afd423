package service

import (
	"context"
	"fmt"
	"strings"

	"venuepos/backend/internal/domain"
	"venuepos/backend/internal/store"
	"venuepos/backend/internal/xid"
)

func (s *Service) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.ListInventoryItems(ctx)
}

func (s *Service) ListInventoryAdjustments(ctx context.Context, inventoryID string, limit int) ([]domain.InventoryAdjustment, error) {
	if _, err := s.repo.GetInventoryItem(ctx, inventoryID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListInventoryAdjustments(ctx, inventoryID, limit)
}

// CreateInventoryItem registers an asset. A non-zero opening quantity is
// booked as an ADD adjustment so the ledger explains every unit.
func (s *Service) CreateInventoryItem(ctx context.Context, req domain.InventoryCreateRequest) (domain.InventoryItem, error) {
	actor, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.InventoryItem{}, validationf("name is required")
	}
	if req.InitialQuantity < 0 {
		return domain.InventoryItem{}, validationf("initial_quantity must not be negative")
	}

	now := s.now()
	item := domain.InventoryItem{
		ID:        xid.New("inv"),
		Name:      name,
		Unit:      defaultString(req.Unit, "pcs"),
		Quantity:  0,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertInventoryItem(ctx, item); err != nil {
			return err
		}
		if req.InitialQuantity == 0 {
			return nil
		}
		if err := tx.InsertInventoryAdjustment(ctx, domain.InventoryAdjustment{
			ID:             xid.New("adj"),
			InventoryID:    item.ID,
			ChangeType:     domain.AdjustAdd,
			QuantityBefore: 0,
			QuantityAfter:  req.InitialQuantity,
			ChangeAmount:   req.InitialQuantity,
			Reason:         "opening balance",
			Actor:          actor.Username,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		item.Quantity = req.InitialQuantity
		return tx.SetInventoryQuantity(ctx, item.ID, item.Quantity, now)
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "inventory_create", "inventory", item.ID, fmt.Sprintf("name=%s,quantity=%d", item.Name, item.Quantity))
	return item, nil
}

// nextQuantity applies an adjustment and returns the new quantity and the
// signed delta.
func nextQuantity(before int, changeType domain.AdjustmentType, amount int) (int, int, error) {
	var after int
	switch changeType {
	case domain.AdjustAdd:
		after = before + amount
	case domain.AdjustRemove:
		after = before - amount
	case domain.AdjustCorrection:
		after = amount
	default:
		return 0, 0, validationf("change_type must be ADD, REMOVE or CORRECTION")
	}
	if after < 0 {
		return 0, 0, fmt.Errorf("%w: quantity would drop to %d", store.ErrInsufficientStock, after)
	}
	return after, after - before, nil
}

// AdjustStock is the only path that changes an inventory quantity.
func (s *Service) AdjustStock(ctx context.Context, inventoryID string, req domain.AdjustStockRequest) (domain.AdjustStockResponse, error) {
	actor, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin)
	if err != nil {
		return domain.AdjustStockResponse{}, err
	}
	if !req.ChangeType.Valid() {
		return domain.AdjustStockResponse{}, validationf("change_type must be ADD, REMOVE or CORRECTION")
	}
	if req.Amount < 0 || (req.Amount == 0 && req.ChangeType != domain.AdjustCorrection) {
		return domain.AdjustStockResponse{}, validationf("amount must be positive")
	}

	now := s.now()
	var resp domain.AdjustStockResponse

	err = s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		item, err := tx.LockInventoryItem(ctx, inventoryID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			return fmt.Errorf("%w: inventory item %s", store.ErrInactive, item.Name)
		}

		after, delta, err := nextQuantity(item.Quantity, req.ChangeType, req.Amount)
		if err != nil {
			return err
		}

		adj := domain.InventoryAdjustment{
			ID:             xid.New("adj"),
			InventoryID:    item.ID,
			ChangeType:     req.ChangeType,
			QuantityBefore: item.Quantity,
			QuantityAfter:  after,
			ChangeAmount:   delta,
			Reason:         strings.TrimSpace(req.Reason),
			Actor:          actor.Username,
			CreatedAt:      now,
		}
		if err := tx.InsertInventoryAdjustment(ctx, adj); err != nil {
			return err
		}
		if err := tx.SetInventoryQuantity(ctx, item.ID, after, now); err != nil {
			return err
		}

		item.Quantity = after
		item.UpdatedAt = now
		resp = domain.AdjustStockResponse{Inventory: *item, Adjustment: adj}
		return nil
	})
	if err != nil {
		return domain.AdjustStockResponse{}, err
	}

	adj := resp.Adjustment
	s.publish(ctx, domain.NotifyStockAdjusted, "Stock adjusted",
		fmt.Sprintf("%s %s %d (now %d)", resp.Inventory.Name, adj.ChangeType, adj.ChangeAmount, adj.QuantityAfter), adj)
	s.logAudit(ctx, "inventory_adjust", "inventory", resp.Inventory.ID,
		fmt.Sprintf("type=%s,before=%d,after=%d,reason=%s", adj.ChangeType, adj.QuantityBefore, adj.QuantityAfter, adj.Reason))
	return resp, nil
}
