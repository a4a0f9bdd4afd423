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

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Category{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Category{}, validationf("name is required")
	}
	if !req.Kind.Valid() {
		return domain.Category{}, validationf("kind must be PRODUCT or MENU")
	}

	category := domain.Category{
		ID:        xid.New("cat"),
		Name:      name,
		Kind:      req.Kind,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}

	s.logAudit(ctx, "category_create", "category", category.ID, fmt.Sprintf("name=%s,kind=%s", category.Name, category.Kind))
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, validationf("unknown category kind %q", kind)
	}
	return s.repo.ListCategories(ctx, kind)
}

func (s *Service) checkCategory(ctx context.Context, id string, kind domain.CategoryKind) error {
	if id == "" {
		return nil
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.Kind != kind {
		return validationf("category %s is not a %s category", id, kind)
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Name == "" {
		return domain.Product{}, validationf("name is required")
	}
	if !req.Type.Valid() {
		return domain.Product{}, validationf("type must be SELL or RENT")
	}
	if req.PriceCents < 0 || req.InitialStock < 0 || (req.CostPriceCents != nil && *req.CostPriceCents < 0) {
		return domain.Product{}, validationf("price, cost and stock must not be negative")
	}
	if err := s.checkCategory(ctx, req.CategoryID, domain.CategoryKindProduct); err != nil {
		return domain.Product{}, err
	}

	now := s.now()
	product := domain.Product{
		ID:             xid.New("prd"),
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		Type:           req.Type,
		PriceCents:     req.PriceCents,
		CostPriceCents: req.CostPriceCents,
		Stock:          req.InitialStock,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", product.ID, fmt.Sprintf("name=%s,type=%s,price=%d,stock=%d", product.Name, product.Type, product.PriceCents, product.Stock))
	return product, nil
}

// UpdateProduct edits catalog details only. Stock is owned by the
// transaction engine.
func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, validationf("name must not be empty")
		}
		updated.Name = name
	}
	if req.CategoryID != nil {
		categoryID := strings.TrimSpace(*req.CategoryID)
		if err := s.checkCategory(ctx, categoryID, domain.CategoryKindProduct); err != nil {
			return domain.Product{}, err
		}
		updated.CategoryID = categoryID
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return domain.Product{}, validationf("type must be SELL or RENT")
		}
		updated.Type = *req.Type
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return domain.Product{}, validationf("price must not be negative")
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.CostPriceCents != nil {
		if *req.CostPriceCents < 0 {
			return domain.Product{}, validationf("cost must not be negative")
		}
		updated.CostPriceCents = req.CostPriceCents
	}
	updated.UpdatedAt = s.now()

	if err := s.repo.UpdateProductDetails(ctx, updated); err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", updated.ID, fmt.Sprintf("name=%s,type=%s,price=%d", updated.Name, updated.Type, updated.PriceCents))
	return updated, nil
}

func (s *Service) SetProductActive(ctx context.Context, id string, active bool) (domain.Product, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Product{}, err
	}
	if err := s.repo.SetProductActive(ctx, id, active); err != nil {
		return domain.Product{}, err
	}
	s.logAudit(ctx, "product_set_active", "product", id, fmt.Sprintf("active=%t", active))
	return s.GetProduct(ctx, id)
}

func (s *Service) ListMenus(ctx context.Context, activeOnly bool) ([]domain.Menu, error) {
	return s.repo.ListMenus(ctx, activeOnly)
}

func (s *Service) GetMenu(ctx context.Context, id string) (domain.Menu, error) {
	m, err := s.repo.GetMenu(ctx, id)
	if err != nil {
		return domain.Menu{}, err
	}
	return *m, nil
}

func (s *Service) CreateMenu(ctx context.Context, req domain.MenuCreateRequest) (domain.Menu, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Menu{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Name == "" {
		return domain.Menu{}, validationf("name is required")
	}
	if req.PriceCents < 0 || (req.CostPriceCents != nil && *req.CostPriceCents < 0) || (req.Stock != nil && *req.Stock < 0) {
		return domain.Menu{}, validationf("price, cost and stock must not be negative")
	}
	if err := s.checkCategory(ctx, req.CategoryID, domain.CategoryKindMenu); err != nil {
		return domain.Menu{}, err
	}

	now := s.now()
	menu := domain.Menu{
		ID:             xid.New("mnu"),
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		PriceCents:     req.PriceCents,
		CostPriceCents: req.CostPriceCents,
		Stock:          req.Stock,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return domain.Menu{}, err
	}

	s.logAudit(ctx, "menu_create", "menu", menu.ID, fmt.Sprintf("name=%s,price=%d,tracked=%t", menu.Name, menu.PriceCents, menu.TracksStock()))
	return menu, nil
}

func (s *Service) UpdateMenu(ctx context.Context, id string, req domain.MenuUpdateRequest) (domain.Menu, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Menu{}, err
	}

	existing, err := s.repo.GetMenu(ctx, id)
	if err != nil {
		return domain.Menu{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Menu{}, validationf("name must not be empty")
		}
		updated.Name = name
	}
	if req.CategoryID != nil {
		categoryID := strings.TrimSpace(*req.CategoryID)
		if err := s.checkCategory(ctx, categoryID, domain.CategoryKindMenu); err != nil {
			return domain.Menu{}, err
		}
		updated.CategoryID = categoryID
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return domain.Menu{}, validationf("price must not be negative")
		}
		updated.PriceCents = *req.PriceCents
	}
	if req.CostPriceCents != nil {
		if *req.CostPriceCents < 0 {
			return domain.Menu{}, validationf("cost must not be negative")
		}
		updated.CostPriceCents = req.CostPriceCents
	}
	updated.UpdatedAt = s.now()

	if err := s.repo.UpdateMenuDetails(ctx, updated); err != nil {
		return domain.Menu{}, err
	}

	s.logAudit(ctx, "menu_update", "menu", updated.ID, fmt.Sprintf("name=%s,price=%d", updated.Name, updated.PriceCents))
	return updated, nil
}

func (s *Service) SetMenuActive(ctx context.Context, id string, active bool) (domain.Menu, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Menu{}, err
	}
	if err := s.repo.SetMenuActive(ctx, id, active); err != nil {
		return domain.Menu{}, err
	}
	s.logAudit(ctx, "menu_set_active", "menu", id, fmt.Sprintf("active=%t", active))
	return s.GetMenu(ctx, id)
}

func (s *Service) ListTables(ctx context.Context) ([]domain.Table, error) {
	return s.repo.ListTables(ctx)
}

func (s *Service) GetTableByCode(ctx context.Context, code string) (domain.Table, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Table{}, validationf("table code is required")
	}
	t, err := s.repo.GetTableByCode(ctx, code)
	if err != nil {
		return domain.Table{}, err
	}
	return *t, nil
}

func (s *Service) CreateTable(ctx context.Context, req domain.TableCreateRequest) (domain.Table, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Table{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Table{}, validationf("table code is required")
	}

	now := s.now()
	table := domain.Table{
		ID:        xid.New("tbl"),
		Code:      code,
		Status:    domain.TableEmpty,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTable(ctx, table); err != nil {
		return domain.Table{}, err
	}

	s.logAudit(ctx, "table_create", "table", table.ID, "code="+table.Code)
	return table, nil
}

func (s *Service) SetTableActive(ctx context.Context, id string, active bool) (domain.Table, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Table{}, err
	}
	if err := s.repo.SetTableActive(ctx, id, active); err != nil {
		return domain.Table{}, err
	}
	s.logAudit(ctx, "table_set_active", "table", id, fmt.Sprintf("active=%t", active))

	t, err := s.repo.GetTable(ctx, id)
	if err != nil {
		return domain.Table{}, err
	}
	return *t, nil
}

// ReleaseTable resets a table to EMPTY without touching its transactions.
func (s *Service) ReleaseTable(ctx context.Context, id string) (domain.Table, error) {
	var released domain.Table
	err := s.repo.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		table, err := tx.LockTable(ctx, id)
		if err != nil {
			return err
		}
		table.Release(s.now())
		if err := tx.SaveTableOccupancy(ctx, *table); err != nil {
			return err
		}
		released = *table
		return nil
	})
	if err != nil {
		return domain.Table{}, err
	}

	s.logAudit(ctx, "table_release", "table", id, "code="+released.Code)
	return released, nil
}

func (s *Service) ListCourts(ctx context.Context, visibleOnly bool) ([]domain.Court, error) {
	return s.repo.ListCourts(ctx, visibleOnly)
}

func (s *Service) CreateCourt(ctx context.Context, req domain.CourtCreateRequest) (domain.Court, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Court{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Court{}, validationf("name is required")
	}
	if req.PricePerHourCents < 0 {
		return domain.Court{}, validationf("price per hour must not be negative")
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}

	now := s.now()
	court := domain.Court{
		ID:                xid.New("court"),
		Name:              name,
		Description:       strings.TrimSpace(req.Description),
		Status:            domain.CourtActive,
		PricePerHourCents: req.PricePerHourCents,
		IsVisible:         visible,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateCourt(ctx, court); err != nil {
		return domain.Court{}, err
	}

	s.logAudit(ctx, "court_create", "court", court.ID, fmt.Sprintf("name=%s,price_per_hour=%d", court.Name, court.PricePerHourCents))
	return court, nil
}

func (s *Service) SetCourtStatus(ctx context.Context, id string, status domain.CourtStatus) (domain.Court, error) {
	if _, err := requireRole(ctx, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Court{}, err
	}
	if !status.Valid() {
		return domain.Court{}, validationf("unknown court status %q", status)
	}
	if err := s.repo.SetCourtStatus(ctx, id, status); err != nil {
		return domain.Court{}, err
	}
	s.logAudit(ctx, "court_set_status", "court", id, "status="+string(status))

	c, err := s.repo.GetCourt(ctx, id)
	if err != nil {
		return domain.Court{}, err
	}
	return *c, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
