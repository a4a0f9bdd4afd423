package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Actor struct {
	Username string
	Role     Role
}

type UserAccount struct {
	Username  string
	Password  string
	Role      Role
	Active    bool
	CreatedAt time.Time
}

type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      CategoryKind `json:"kind"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

type Product struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	CategoryID     string      `json:"category_id,omitempty"`
	Type           ProductType `json:"type"`
	PriceCents     int64       `json:"price_cents"`
	CostPriceCents *int64      `json:"cost_price_cents,omitempty"`
	Stock          int         `json:"stock"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Menu stock is optional: nil means the menu is not stock tracked.
type Menu struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CategoryID     string    `json:"category_id,omitempty"`
	PriceCents     int64     `json:"price_cents"`
	CostPriceCents *int64    `json:"cost_price_cents,omitempty"`
	Stock          *int      `json:"stock"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (m Menu) TracksStock() bool {
	return m.Stock != nil
}

type Table struct {
	ID                  string      `json:"id"`
	Code                string      `json:"code"`
	Status              TableStatus `json:"status"`
	CurrentCustomerName *string     `json:"current_customer_name,omitempty"`
	OccupiedAt          *time.Time  `json:"occupied_at,omitempty"`
	IsActive            bool        `json:"is_active"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Occupy and Release are the only mutators of the occupancy fields so that
// status, customer name and occupiedAt always change together.
func (t *Table) Occupy(customerName string, at time.Time) {
	name := customerName
	occupiedAt := at
	t.Status = TableOccupied
	t.CurrentCustomerName = &name
	t.OccupiedAt = &occupiedAt
	t.UpdatedAt = at
}

func (t *Table) Release(at time.Time) {
	t.Status = TableEmpty
	t.CurrentCustomerName = nil
	t.OccupiedAt = nil
	t.UpdatedAt = at
}

type Court struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description,omitempty"`
	Status            CourtStatus `json:"status"`
	PricePerHourCents int64       `json:"price_per_hour_cents"`
	IsVisible         bool        `json:"is_visible"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type Transaction struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	Type          TransactionType   `json:"type"`
	TableID       *string           `json:"table_id,omitempty"`
	CustomerName  string            `json:"customer_name,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	TotalCents    int64             `json:"total_cents"`
	PaidCents     int64             `json:"paid_cents"`
	ChangeCents   int64             `json:"change_cents"`
	DepositCents  int64             `json:"deposit_cents"`
	Status        TransactionStatus `json:"status"`
	Notes         string            `json:"notes,omitempty"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Items         []TransactionItem `json:"items"`
}

type TransactionItem struct {
	ID             string   `json:"id"`
	TransactionID  string   `json:"transaction_id"`
	ItemType       ItemType `json:"item_type"`
	ItemID         string   `json:"item_id"`
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int64    `json:"unit_price_cents"`
	SubtotalCents  int64    `json:"subtotal_cents"`
	Notes          string   `json:"notes,omitempty"`
}

type ProductSellRecord struct {
	ID             string       `json:"id"`
	TransactionID  string       `json:"transaction_id"`
	ProductID      string       `json:"product_id"`
	Quantity       int          `json:"quantity"`
	UnitPriceCents int64        `json:"unit_price_cents"`
	SubtotalCents  int64        `json:"subtotal_cents"`
	Status         RecordStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

type ProductRentRecord struct {
	ID               string       `json:"id"`
	TransactionID    string       `json:"transaction_id"`
	ProductID        string       `json:"product_id"`
	Quantity         int          `json:"quantity"`
	UnitPriceCents   int64        `json:"unit_price_cents"`
	SubtotalCents    int64        `json:"subtotal_cents"`
	Status           RecordStatus `json:"status"`
	ExpectedReturnAt *time.Time   `json:"expected_return_at,omitempty"`
	ReturnedAt       *time.Time   `json:"returned_at,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

type Booking struct {
	ID                string          `json:"id"`
	BookingNumber     string          `json:"booking_number"`
	CourtID           string          `json:"court_id"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     string          `json:"customer_phone"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           time.Time       `json:"end_time"`
	DurationHours     decimal.Decimal `json:"duration_hours"`
	PricePerHourCents int64           `json:"price_per_hour_cents"`
	TotalCents        int64           `json:"total_cents"`
	PaidCents         int64           `json:"paid_cents"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	BookingStatus     BookingStatus   `json:"booking_status"`
	TransactionID     *string         `json:"transaction_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Overlaps applies the half-open interval test: touching endpoints do not clash.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

type OrderRequest struct {
	ID             string             `json:"id"`
	OrderNumber    string             `json:"order_number"`
	TableID        string             `json:"table_id"`
	TableCode      string             `json:"table_code"`
	CustomerName   string             `json:"customer_name"`
	Status         OrderStatus        `json:"status"`
	TotalCents     int64              `json:"total_cents"`
	Notes          string             `json:"notes,omitempty"`
	ApprovedBy     *string            `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time         `json:"approved_at,omitempty"`
	RejectedReason *string            `json:"rejected_reason,omitempty"`
	TransactionID  *string            `json:"transaction_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Items          []OrderRequestItem `json:"items"`
}

type OrderRequestItem struct {
	ID             string `json:"id"`
	OrderRequestID string `json:"order_request_id"`
	MenuID         string `json:"menu_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Notes          string `json:"notes,omitempty"`
}

type InventoryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Quantity  int       `json:"quantity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InventoryAdjustment struct {
	ID             string         `json:"id"`
	InventoryID    string         `json:"inventory_id"`
	ChangeType     AdjustmentType `json:"change_type"`
	QuantityBefore int            `json:"quantity_before"`
	QuantityAfter  int            `json:"quantity_after"`
	ChangeAmount   int            `json:"change_amount"`
	Reason         string         `json:"reason"`
	Actor          string         `json:"actor"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Notification with a nil TargetUser is a broadcast to all staff.
type Notification struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	TargetUser *string         `json:"target_user,omitempty"`
	IsRead     bool            `json:"is_read"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type BusyInterval struct {
	BookingID     string        `json:"booking_id"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	BookingStatus BookingStatus `json:"booking_status"`
}

type CourtAvailability struct {
	CourtID string         `json:"court_id"`
	Date    string         `json:"date"`
	Busy    []BusyInterval `json:"busy"`
}

type DailyReport struct {
	Date               string                 `json:"date"`
	Transactions       int                    `json:"transactions"`
	CancelledCount     int                    `json:"cancelled_count"`
	GrossCents         int64                  `json:"gross_cents"`
	PaidCents          int64                  `json:"paid_cents"`
	BookingHours       decimal.Decimal        `json:"booking_hours"`
	ByType             []DailyReportTypeTotal `json:"by_type"`
	OrderRequestsCount int                    `json:"order_requests_count"`
}

type DailyReportTypeTotal struct {
	Type         TransactionType `json:"type"`
	Transactions int             `json:"transactions"`
	TotalCents   int64           `json:"total_cents"`
}
