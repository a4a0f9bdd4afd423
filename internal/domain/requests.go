package domain

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type CategoryCreateRequest struct {
	Name string       `json:"name"`
	Kind CategoryKind `json:"kind"`
}

type ProductCreateRequest struct {
	Name           string      `json:"name"`
	CategoryID     string      `json:"category_id"`
	Type           ProductType `json:"type"`
	PriceCents     int64       `json:"price_cents"`
	CostPriceCents *int64      `json:"cost_price_cents"`
	InitialStock   int         `json:"initial_stock"`
}

// ProductUpdateRequest deliberately has no stock field.
type ProductUpdateRequest struct {
	Name           *string      `json:"name"`
	CategoryID     *string      `json:"category_id"`
	Type           *ProductType `json:"type"`
	PriceCents     *int64       `json:"price_cents"`
	CostPriceCents *int64       `json:"cost_price_cents"`
}

type MenuCreateRequest struct {
	Name           string `json:"name"`
	CategoryID     string `json:"category_id"`
	PriceCents     int64  `json:"price_cents"`
	CostPriceCents *int64 `json:"cost_price_cents"`
	Stock          *int   `json:"stock"`
}

type MenuUpdateRequest struct {
	Name           *string `json:"name"`
	CategoryID     *string `json:"category_id"`
	PriceCents     *int64  `json:"price_cents"`
	CostPriceCents *int64  `json:"cost_price_cents"`
}

type TableCreateRequest struct {
	Code string `json:"code"`
}

type CourtCreateRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	PricePerHourCents int64  `json:"price_per_hour_cents"`
	IsVisible         *bool  `json:"is_visible"`
}

type CourtStatusRequest struct {
	Status CourtStatus `json:"status"`
}

type TransactionItemInput struct {
	ItemType         ItemType   `json:"item_type"`
	ItemID           string     `json:"item_id"`
	Quantity         int        `json:"quantity"`
	ExpectedReturnAt *time.Time `json:"expected_return_at"`
	Notes            string     `json:"notes"`
}

type CreateTransactionRequest struct {
	Type          TransactionType        `json:"type"`
	TableID       *string                `json:"table_id"`
	CustomerName  string                 `json:"customer_name"`
	PaymentMethod string                 `json:"payment_method"`
	PaidCents     int64                  `json:"paid_cents"`
	DepositCents  int64                  `json:"deposit_cents"`
	Notes         string                 `json:"notes"`
	Items         []TransactionItemInput `json:"items"`
}

type PayTransactionRequest struct {
	PaymentMethod string `json:"payment_method"`
	PaidCents     int64  `json:"paid_cents"`
}

type TransactionFilter struct {
	Type   TransactionType
	Status TransactionStatus
	From   time.Time
	To     time.Time
	Limit  int
}

type TransactionDetail struct {
	Transaction Transaction         `json:"transaction"`
	SellRecords []ProductSellRecord `json:"sell_records"`
	RentRecords []ProductRentRecord `json:"rent_records"`
}

type CreateBookingRequest struct {
	CourtID       string        `json:"court_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	CustomerEmail string        `json:"customer_email"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod string        `json:"payment_method"`
	PaidCents     int64         `json:"paid_cents"`
	Notes         string        `json:"notes"`
}

type BookingResult struct {
	Booking     Booking     `json:"booking"`
	Transaction Transaction `json:"transaction"`
}

type BookingFilter struct {
	CourtID string
	Status  BookingStatus
	From    time.Time
	To      time.Time
	Limit   int
}

type OrderItemInput struct {
	MenuID   string `json:"menu_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type CreateOrderRequest struct {
	TableCode    string           `json:"table_code"`
	CustomerName string           `json:"customer_name"`
	Notes        string           `json:"notes"`
	Items        []OrderItemInput `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status"`
	RejectedReason string      `json:"rejected_reason"`
}

type InventoryCreateRequest struct {
	Name            string `json:"name"`
	Unit            string `json:"unit"`
	InitialQuantity int    `json:"initial_quantity"`
}

type AdjustStockRequest struct {
	ChangeType AdjustmentType `json:"change_type"`
	Amount     int            `json:"amount"`
	Reason     string         `json:"reason"`
}

type AdjustStockResponse struct {
	Inventory  InventoryItem       `json:"inventory"`
	Adjustment InventoryAdjustment `json:"adjustment"`
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
