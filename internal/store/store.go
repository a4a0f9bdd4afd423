package store

import (
	"context"
	"time"

	"venuepos/backend/internal/domain"
)

// Repository is the persistence boundary. Single-row reads and writes are
// plain methods; anything that must move several rows together goes through
// Atomic.
type Repository interface {
	// Atomic runs fn as one unit of work. If fn returns an error every
	// mutation made through tx is discarded.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	CreateCategory(ctx context.Context, category domain.Category) error
	ListCategories(ctx context.Context, kind domain.CategoryKind) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)

	CreateProduct(ctx context.Context, product domain.Product) error
	UpdateProductDetails(ctx context.Context, product domain.Product) error
	SetProductActive(ctx context.Context, id string, active bool) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)

	CreateMenu(ctx context.Context, menu domain.Menu) error
	UpdateMenuDetails(ctx context.Context, menu domain.Menu) error
	SetMenuActive(ctx context.Context, id string, active bool) error
	GetMenu(ctx context.Context, id string) (*domain.Menu, error)
	ListMenus(ctx context.Context, activeOnly bool) ([]domain.Menu, error)

	CreateTable(ctx context.Context, table domain.Table) error
	GetTable(ctx context.Context, id string) (*domain.Table, error)
	GetTableByCode(ctx context.Context, code string) (*domain.Table, error)
	ListTables(ctx context.Context) ([]domain.Table, error)
	SetTableActive(ctx context.Context, id string, active bool) error

	CreateCourt(ctx context.Context, court domain.Court) error
	GetCourt(ctx context.Context, id string) (*domain.Court, error)
	ListCourts(ctx context.Context, visibleOnly bool) ([]domain.Court, error)
	SetCourtStatus(ctx context.Context, id string, status domain.CourtStatus) error

	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	ListSellRecords(ctx context.Context, transactionID string) ([]domain.ProductSellRecord, error)
	ListRentRecords(ctx context.Context, transactionID string) ([]domain.ProductRentRecord, error)
	ListActiveRentRecords(ctx context.Context) ([]domain.ProductRentRecord, error)

	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)

	GetOrderRequest(ctx context.Context, id string) (*domain.OrderRequest, error)
	ListOrderRequests(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.OrderRequest, error)
	CountOrderRequests(ctx context.Context, from time.Time, to time.Time) (int, error)

	GetInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error)
	ListInventoryAdjustments(ctx context.Context, inventoryID string, limit int) ([]domain.InventoryAdjustment, error)

	CreateNotification(ctx context.Context, n domain.Notification) error
	ListNotifications(ctx context.Context, username string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

// Tx is the set of operations available inside an atomic unit. Lock* methods
// read a row and hold it until the unit ends so check-then-write sequences
// are race free.
type Tx interface {
	LockProduct(ctx context.Context, id string) (*domain.Product, error)
	SetProductStock(ctx context.Context, id string, stock int) error
	LockMenu(ctx context.Context, id string) (*domain.Menu, error)
	SetMenuStock(ctx context.Context, id string, stock int) error

	LockTable(ctx context.Context, id string) (*domain.Table, error)
	LockTableByCode(ctx context.Context, code string) (*domain.Table, error)
	SaveTableOccupancy(ctx context.Context, table domain.Table) error

	LockCourt(ctx context.Context, id string) (*domain.Court, error)

	// NextSequence atomically increments and returns the counter for scope on day.
	NextSequence(ctx context.Context, scope string, day time.Time) (int, error)

	InsertTransaction(ctx context.Context, tx domain.Transaction) error
	LockTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, tx domain.Transaction) error
	InsertSellRecords(ctx context.Context, records []domain.ProductSellRecord) error
	InsertRentRecords(ctx context.Context, records []domain.ProductRentRecord) error
	SetSellRecordsStatus(ctx context.Context, transactionID string, status domain.RecordStatus) error
	ActiveRentRecords(ctx context.Context, transactionID string) ([]domain.ProductRentRecord, error)
	// SetRentRecordsStatus only touches records still ACTIVE.
	SetRentRecordsStatus(ctx context.Context, transactionID string, status domain.RecordStatus, returnedAt *time.Time) error

	FindOverlappingBookings(ctx context.Context, courtID string, start time.Time, end time.Time) ([]domain.Booking, error)
	InsertBooking(ctx context.Context, booking domain.Booking) error
	LockBooking(ctx context.Context, id string) (*domain.Booking, error)
	LockBookingByTransaction(ctx context.Context, transactionID string) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, booking domain.Booking) error

	InsertOrderRequest(ctx context.Context, order domain.OrderRequest) error
	LockOrderRequest(ctx context.Context, id string) (*domain.OrderRequest, error)
	UpdateOrderRequest(ctx context.Context, order domain.OrderRequest) error

	InsertInventoryItem(ctx context.Context, item domain.InventoryItem) error
	LockInventoryItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	SetInventoryQuantity(ctx context.Context, id string, quantity int, at time.Time) error
	InsertInventoryAdjustment(ctx context.Context, adj domain.InventoryAdjustment) error
}
